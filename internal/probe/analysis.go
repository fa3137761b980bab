package probe

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// ErrNoVideoStream is returned when no video stream with both dimensions
// is present.
var ErrNoVideoStream = errors.New("no video stream with width and height found")

// MediaAnalysis is the validated result of probing one input. The only
// way to obtain one is NewAnalysis (or Prober.Analyze), which guarantees a
// chosen video stream with dimensions.
type MediaAnalysis struct {
	chosen   StreamDescriptor
	width    int
	height   int
	streams  []StreamDescriptor
	warnings []string
	duration time.Duration
}

// NewAnalysis selects the first qualifying video stream, in probe order, and
// checks it against the UltraWide profile. A mismatch adds a warning rather
// than failing.
func NewAnalysis(streams []StreamDescriptor, duration time.Duration) (*MediaAnalysis, error) {
	expected := UltraWide
	for _, s := range streams {
		if !s.qualifies() {
			continue
		}
		w, h, _ := s.Dimensions()
		a := &MediaAnalysis{
			chosen:   s,
			width:    w,
			height:   h,
			streams:  append([]StreamDescriptor(nil), streams...),
			duration: duration,
		}
		if w != expected.Width || h != expected.Height {
			a.warnings = append(a.warnings, fmt.Sprintf(
				"video is %dx%d (%s), expected %s; splitting at the horizontal midpoint anyway",
				w, h, AspectRatio(w, h), expected))
		}
		return a, nil
	}
	return nil, errors.WithStack(ErrNoVideoStream)
}

// Chosen returns the stream the split geometry is derived from.
func (a *MediaAnalysis) Chosen() StreamDescriptor { return a.chosen }

func (a *MediaAnalysis) Width() int  { return a.width }
func (a *MediaAnalysis) Height() int { return a.height }

// Streams returns every parsed stream, including ones that did not qualify.
func (a *MediaAnalysis) Streams() []StreamDescriptor {
	return append([]StreamDescriptor(nil), a.streams...)
}

// Warnings returns non-fatal findings in the order they were recorded.
func (a *MediaAnalysis) Warnings() []string {
	return append([]string(nil), a.warnings...)
}

// Duration is the container duration, or zero when the probe omitted it.
func (a *MediaAnalysis) Duration() time.Duration { return a.duration }

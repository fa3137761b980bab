package probe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const maxSnippetBytes = 256

type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  *probeFormat  `json:"format"`
}

type probeStream struct {
	Index     optionalInt `json:"index"`
	CodecType looseString `json:"codec_type"`
	CodecName looseString `json:"codec_name"`
	Width     optionalInt `json:"width"`
	Height    optionalInt `json:"height"`
}

// looseString accepts a JSON string. Any other shape reads as empty.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		v = ""
	}
	*s = looseString(v)
	return nil
}

type probeFormat struct {
	Duration optionalFloat `json:"duration"`
}

// optionalInt accepts a JSON number, a numeric string or null. Any other
// shape leaves it unset rather than failing the whole document.
type optionalInt struct {
	value int
	set   bool
}

func (o *optionalInt) UnmarshalJSON(data []byte) error {
	*o = optionalInt{}
	f, ok := looseNumber(data)
	if !ok || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return nil
	}
	o.value, o.set = int(f), true
	return nil
}

// positive returns the value as a dimension, treating zero and negative
// numbers as absent.
func (o optionalInt) positive() *int {
	if !o.set || o.value <= 0 {
		return nil
	}
	v := o.value
	return &v
}

type optionalFloat struct {
	value float64
	set   bool
}

func (o *optionalFloat) UnmarshalJSON(data []byte) error {
	*o = optionalFloat{}
	if f, ok := looseNumber(data); ok && !math.IsNaN(f) && !math.IsInf(f, 0) {
		o.value, o.set = f, true
	}
	return nil
}

func looseNumber(data []byte) (float64, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return 0, false
	}
	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0, false
		}
		raw = strings.TrimSpace(s)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// MalformedOutputError is returned when the probe output is not a JSON
// object.
type MalformedOutputError struct {
	Err     error
	Snippet string
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("malformed probe output: %v (output: %q)", e.Err, e.Snippet)
}

func (e *MalformedOutputError) Unwrap() error { return e.Err }

// ParseStreams decodes ffprobe JSON into stream descriptors in the order the
// tool reported them, along with the container duration when present.
func ParseStreams(data []byte) ([]StreamDescriptor, time.Duration, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, 0, &MalformedOutputError{
			Err:     errors.New("expected a JSON object"),
			Snippet: snippet(trimmed),
		}
	}

	var out probeOutput
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, 0, &MalformedOutputError{Err: err, Snippet: snippet(trimmed)}
	}

	streams := make([]StreamDescriptor, 0, len(out.Streams))
	for i, s := range out.Streams {
		index := i
		if s.Index.set {
			index = s.Index.value
		}
		streams = append(streams, StreamDescriptor{
			Index:     index,
			CodecType: ParseCodecType(string(s.CodecType)),
			CodecName: string(s.CodecName),
			Width:     s.Width.positive(),
			Height:    s.Height.positive(),
		})
	}

	var duration time.Duration
	if out.Format != nil && out.Format.Duration.set && out.Format.Duration.value > 0 {
		duration = time.Duration(out.Format.Duration.value * float64(time.Second))
	}
	return streams, duration, nil
}

func snippet(b []byte) string {
	if len(b) > maxSnippetBytes {
		return string(b[:maxSnippetBytes]) + "..."
	}
	return string(b)
}

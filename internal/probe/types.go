package probe

import "fmt"

// CodecType is the closed set of stream kinds the splitter distinguishes.
type CodecType int

const (
	CodecOther CodecType = iota
	CodecVideo
	CodecAudio
)

// ParseCodecType maps ffprobe's codec_type string onto CodecType. Anything
// that is not video or audio (subtitle, data, attachment, missing) is Other.
func ParseCodecType(s string) CodecType {
	switch s {
	case "video":
		return CodecVideo
	case "audio":
		return CodecAudio
	default:
		return CodecOther
	}
}

func (c CodecType) String() string {
	switch c {
	case CodecVideo:
		return "video"
	case CodecAudio:
		return "audio"
	case CodecOther:
		return "other"
	}
	return fmt.Sprintf("CodecType(%d)", int(c))
}

// StreamDescriptor is one stream as reported by the probe tool. Width and
// Height are nil whenever the probe did not report a usable value, on any
// kind of stream.
type StreamDescriptor struct {
	Index     int
	CodecType CodecType
	CodecName string
	Width     *int
	Height    *int
}

// Dimensions returns the stream's width and height when both are present.
func (s StreamDescriptor) Dimensions() (width, height int, ok bool) {
	if s.Width == nil || s.Height == nil {
		return 0, 0, false
	}
	return *s.Width, *s.Height, true
}

// qualifies reports whether s can drive the split.
func (s StreamDescriptor) qualifies() bool {
	if s.CodecType != CodecVideo {
		return false
	}
	_, _, ok := s.Dimensions()
	return ok
}

// Profile is the geometry the input is expected to have.
type Profile struct {
	Width  int
	Height int
}

// UltraWide is the 32:9 OBS canvas the splitter is built for.
var UltraWide = Profile{Width: 3840, Height: 1080}

func (p Profile) String() string {
	return fmt.Sprintf("%dx%d (%s)", p.Width, p.Height, AspectRatio(p.Width, p.Height))
}

// AspectRatio reduces width:height by their greatest common divisor.
func AspectRatio(width, height int) string {
	if width <= 0 || height <= 0 {
		return "unknown"
	}
	g := gcd(width, height)
	return fmt.Sprintf("%d:%d", width/g, height/g)
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

package ffmpeg

import (
	"regexp"
	"strconv"
	"time"
)

// Progress is a snapshot of a running encode parsed from ffmpeg's stats line.
type Progress struct {
	Frame   int64
	FPS     float64
	Speed   float64
	Current time.Duration
	Total   time.Duration
	Percent float64
}

// ETA estimates the remaining wall-clock time. ok is false until ffmpeg has
// reported a speed and the total duration is known.
func (p Progress) ETA() (time.Duration, bool) {
	if p.Speed <= 0 || p.Total <= 0 {
		return 0, false
	}
	remaining := p.Total - p.Current
	if remaining <= 0 {
		return 0, true
	}
	return time.Duration(float64(remaining) / p.Speed), true
}

var (
	reDuration = regexp.MustCompile(`Duration:\s*(\d+):(\d{2}):(\d{2})(?:\.(\d+))?`)
	reTime     = regexp.MustCompile(`time=\s*(\d+):(\d{2}):(\d{2})(?:\.(\d+))?`)
	reFrame    = regexp.MustCompile(`frame=\s*(\d+)`)
	reFPS      = regexp.MustCompile(`fps=\s*([\d.]+)`)
	reSpeed    = regexp.MustCompile(`speed=\s*([\d.]+)x`)
)

// ProgressParser turns ffmpeg stderr lines into Progress values. It learns
// the input duration from the banner unless one was supplied up front.
// A parser belongs to a single encode and is not safe for concurrent use.
type ProgressParser struct {
	total time.Duration
}

// NewProgressParser creates a parser. total may be zero when unknown.
func NewProgressParser(total time.Duration) *ProgressParser {
	return &ProgressParser{total: total}
}

// Parse returns the progress carried by line, if any.
func (p *ProgressParser) Parse(line string) (Progress, bool) {
	if p.total <= 0 {
		if m := reDuration.FindStringSubmatch(line); m != nil {
			p.total = clockToDuration(m[1:])
		}
	}

	m := reTime.FindStringSubmatch(line)
	if m == nil {
		return Progress{}, false
	}

	pr := Progress{
		Current: clockToDuration(m[1:]),
		Total:   p.total,
	}
	if m := reFrame.FindStringSubmatch(line); m != nil {
		pr.Frame, _ = strconv.ParseInt(m[1], 10, 64)
	}
	if m := reFPS.FindStringSubmatch(line); m != nil {
		pr.FPS, _ = strconv.ParseFloat(m[1], 64)
	}
	if m := reSpeed.FindStringSubmatch(line); m != nil {
		pr.Speed, _ = strconv.ParseFloat(m[1], 64)
	}
	if pr.Total > 0 {
		pr.Percent = float64(pr.Current) / float64(pr.Total) * 100
		if pr.Percent > 100 {
			pr.Percent = 100
		}
	}
	return pr, true
}

// clockToDuration converts HH, MM, SS and an optional fraction to a duration.
func clockToDuration(parts []string) time.Duration {
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	s, _ := strconv.Atoi(parts[2])
	d := time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second
	if len(parts) > 3 && parts[3] != "" {
		frac, err := strconv.ParseFloat("0."+parts[3], 64)
		if err == nil {
			d += time.Duration(frac * float64(time.Second))
		}
	}
	return d
}

package runner

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

const (
	DefaultTailLines = 20
	maxTailBytes     = 4096
)

// Tail returns the last maxLines non-empty lines of b, capped at 4 KiB.
// Carriage returns are treated as line breaks so ffmpeg progress updates do
// not collapse into a single huge line.
func Tail(b []byte, maxLines int) string {
	if maxLines <= 0 {
		maxLines = DefaultTailLines
	}
	b = bytes.ReplaceAll(b, []byte{'\r'}, []byte{'\n'})

	var kept []string
	for _, line := range strings.Split(string(b), "\n") {
		if line = strings.TrimRight(line, " \t"); line != "" {
			kept = append(kept, line)
		}
	}
	if len(kept) > maxLines {
		kept = kept[len(kept)-maxLines:]
	}

	out := strings.Join(kept, "\n")
	if len(out) > maxTailBytes {
		cut := len(out) - maxTailBytes
		for cut < len(out) && !utf8.RuneStart(out[cut]) {
			cut++
		}
		out = "..." + out[cut:]
	}
	return out
}

package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// TestHelperProcess is not a real test. It is re-executed by the tests
// below to stand in for an external tool.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("RUNNER_HELPER_PROCESS") != "1" {
		return
	}
	switch os.Getenv("RUNNER_HELPER_MODE") {
	case "ok":
		fmt.Fprint(os.Stdout, `{"streams":[]}`)
		fmt.Fprint(os.Stderr, "warming up\n")
		os.Exit(0)
	case "fail":
		fmt.Fprint(os.Stderr, "line one\nConversion failed!\n")
		os.Exit(3)
	case "progress":
		fmt.Fprint(os.Stderr, "frame=  10 time=00:00:01.00\rframe=  20 time=00:00:02.00\rdone\n")
		os.Exit(0)
	case "sleep":
		time.Sleep(30 * time.Second)
		os.Exit(0)
	}
	os.Exit(2)
}

func helperCommand() Command {
	return Command{
		Binary: os.Args[0],
		Args:   []string{"-test.run=TestHelperProcess", "--"},
	}
}

func newTestRunner(t *testing.T, mode string) *ExecRunner {
	t.Helper()
	t.Setenv("RUNNER_HELPER_PROCESS", "1")
	t.Setenv("RUNNER_HELPER_MODE", mode)
	logger := log.New()
	logger.SetOutput(io.Discard)
	return NewExecRunner(logger)
}

func TestRunCapturesStdoutAndStderr(t *testing.T) {
	r := newTestRunner(t, "ok")

	res, err := r.Run(context.Background(), helperCommand())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ExitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", res.ExitCode)
	}
	if !strings.Contains(string(res.Stdout), `{"streams":[]}`) {
		t.Fatalf("stdout not captured: %q", res.Stdout)
	}
	if !strings.Contains(string(res.Stderr), "warming up") {
		t.Fatalf("stderr not captured: %q", res.Stderr)
	}
}

func TestRunNonZeroExitIsNotAnError(t *testing.T) {
	r := newTestRunner(t, "fail")

	res, err := r.Run(context.Background(), helperCommand())
	if err != nil {
		t.Fatalf("non-zero exit must not be an error, got %v", err)
	}
	if res.ExitCode != 3 {
		t.Fatalf("expected exit code 3, got %d", res.ExitCode)
	}
	if !strings.Contains(Tail(res.Stderr, 1), "Conversion failed!") {
		t.Fatalf("unexpected stderr tail: %q", Tail(res.Stderr, 1))
	}
}

func TestRunMissingToolIsToolNotFound(t *testing.T) {
	r := NewExecRunner(nil)

	_, err := r.Run(context.Background(), Command{Binary: "definitely-not-a-real-tool-3840"})
	var notFound *ToolNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ToolNotFoundError, got %T: %v", err, err)
	}
	if notFound.Tool != "definitely-not-a-real-tool-3840" {
		t.Fatalf("unexpected tool name %q", notFound.Tool)
	}
}

func TestLookPathEmptyName(t *testing.T) {
	r := NewExecRunner(nil)
	_, err := r.LookPath("  ")
	var notFound *ToolNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ToolNotFoundError, got %v", err)
	}
}

func TestRunStreamsStderrLines(t *testing.T) {
	r := newTestRunner(t, "progress")

	var mu sync.Mutex
	var lines []string
	cmd := helperCommand()
	cmd.OnStderrLine = func(line string) {
		mu.Lock()
		defer mu.Unlock()
		lines = append(lines, line)
	}

	if _, err := r.Run(context.Background(), cmd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"frame=  10 time=00:00:01.00", "frame=  20 time=00:00:02.00", "done"}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %q", len(want), len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}

func TestRunCancellationKillsChild(t *testing.T) {
	r := newTestRunner(t, "sleep")

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := r.Run(ctx, helperCommand())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Fatalf("child was not killed promptly (%s)", elapsed)
	}
}

func TestTail(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		maxLines int
		want     string
	}{
		{"empty", "", 5, ""},
		{"fewer lines than max", "a\nb\n", 5, "a\nb"},
		{"keeps last lines", "a\nb\nc\nd\n", 2, "c\nd"},
		{"carriage returns split lines", "frame=1\rframe=2\rerror\n", 2, "frame=2\nerror"},
		{"skips blank lines", "a\n\n\nb\n", 5, "a\nb"},
		{"default max", strings.Repeat("x\n", 50), 0, strings.TrimSuffix(strings.Repeat("x\n", DefaultTailLines), "\n")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Tail([]byte(tt.in), tt.maxLines); got != tt.want {
				t.Fatalf("Tail() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTailIsBounded(t *testing.T) {
	long := strings.Repeat("y", 10000)
	got := Tail([]byte(long), 1)
	if len(got) > maxTailBytes+3 {
		t.Fatalf("tail not bounded: %d bytes", len(got))
	}
	if !strings.HasPrefix(got, "...") {
		t.Fatalf("expected truncation marker, got %q", got[:10])
	}
}

func TestTailKeepsRunesWhole(t *testing.T) {
	// 6000 bytes of three-byte runes puts the byte cut inside a rune.
	long := strings.Repeat("€", 2000)
	got := Tail([]byte(long), 1)
	if !utf8.ValidString(got) {
		t.Fatalf("tail split a rune: %q", got[:10])
	}
	if len(got) > maxTailBytes+3 {
		t.Fatalf("tail not bounded: %d bytes", len(got))
	}
	if rest := strings.TrimPrefix(got, "..."); strings.Trim(rest, "€") != "" {
		t.Fatalf("unexpected tail content %.10q", rest)
	}
}

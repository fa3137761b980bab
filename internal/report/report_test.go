package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/ZacxDev/ultrawide-splitter/internal/planner"
	"github.com/ZacxDev/ultrawide-splitter/pkg/types"
	"github.com/pkg/errors"
)

func testMeta() Meta {
	params, _ := planner.Resolve("medium")
	return Meta{
		RunID:     "run-1",
		InputPath: "/videos/in.mp4",
		Width:     3840,
		Height:    1080,
		Params:    params,
	}
}

func TestAssembleBothSucceeded(t *testing.T) {
	left := SideOutcome{Output: &OutputFile{Path: "/videos/in-left.mp4", Size: 10}, Attempts: 1}
	right := SideOutcome{Output: &OutputFile{Path: "/videos/in-right.mp4", Size: 20}, Attempts: 1}

	r := Assemble(testMeta(), left, right, time.Second)
	if !r.Succeeded() {
		t.Fatal("expected success")
	}
	if err := r.Err(); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	outputs := r.Outputs()
	if len(outputs) != 2 || outputs[0].Path != "/videos/in-left.mp4" || outputs[1].Path != "/videos/in-right.mp4" {
		t.Fatalf("unexpected outputs: %+v", outputs)
	}
	if r.Side(types.SideLeft).Side != types.SideLeft || r.Side(types.SideRight).Side != types.SideRight {
		t.Fatal("sides not labelled")
	}
}

func TestAssembleOneSideFailed(t *testing.T) {
	boom := errors.New("encoder exploded")
	left := SideOutcome{Err: boom}
	right := SideOutcome{Output: &OutputFile{Path: "/videos/in-right.mp4", Size: 20}}

	r := Assemble(testMeta(), left, right, time.Second)
	if r.Succeeded() {
		t.Fatal("expected failure")
	}
	if !errors.Is(r.Err(), boom) {
		t.Fatalf("expected joined error to contain the left error, got %v", r.Err())
	}
	outputs := r.Outputs()
	if len(outputs) != 1 || outputs[0].Path != "/videos/in-right.mp4" {
		t.Fatalf("expected only the right output, got %+v", outputs)
	}
}

func TestAssembleCopiesWarnings(t *testing.T) {
	meta := testMeta()
	meta.Warnings = []string{"odd size"}
	r := Assemble(meta, SideOutcome{}, SideOutcome{}, 0)
	meta.Warnings[0] = "changed"
	if r.Warnings[0] != "odd size" {
		t.Fatalf("warnings alias the caller's slice: %v", r.Warnings)
	}
}

func TestRender(t *testing.T) {
	meta := testMeta()
	meta.Warnings = []string{"video is 2560x1440"}
	left := SideOutcome{Output: &OutputFile{Path: "/videos/in-left.mp4", Size: 3 << 20}, Attempts: 1}
	right := SideOutcome{Err: errors.New("exit status 1"), Attempts: 2}

	var buf bytes.Buffer
	if err := Render(&buf, Assemble(meta, left, right, 1500*time.Millisecond), false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"in-left.mp4",
		"3.0 MiB",
		"failed (2 attempts)",
		"warning: video is 2560x1440",
		"right: exit status 1",
		"Finished in 1.5s",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("unexpected color codes without color:\n%s", out)
	}
}

package planner

import (
	"testing"

	"github.com/pkg/errors"
)

func TestResolveKnownPresets(t *testing.T) {
	tests := []struct {
		name string
		want EncodeParameters
	}{
		{"lossless", EncodeParameters{Preset: PresetLossless, Encoder: "libx264", CRF: 0, Speed: "veryslow"}},
		{"high", EncodeParameters{Preset: PresetHigh, Encoder: "libx264", CRF: 18, Speed: "slow"}},
		{"medium", EncodeParameters{Preset: PresetMedium, Encoder: "libx264", CRF: 23, Speed: "medium"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.name)
			if err != nil {
				t.Fatalf("Resolve(%q) error: %v", tt.name, err)
			}
			if got != tt.want {
				t.Fatalf("Resolve(%q) = %+v, want %+v", tt.name, got, tt.want)
			}
		})
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	for _, name := range PresetNames() {
		first, err := Resolve(name)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", name, err)
		}
		first.OutputArgs()["crf"] = 99

		second, _ := Resolve(name)
		if first.CRF == 99 || second.CRF == 99 {
			t.Fatalf("mutating output args leaked into preset %q", name)
		}
		if first != second {
			t.Fatalf("Resolve(%q) not deterministic: %+v vs %+v", name, first, second)
		}
	}
}

func TestResolveUnknownPreset(t *testing.T) {
	for _, name := range []string{"", "ultra", "High", "MEDIUM", " lossless", "low"} {
		t.Run(name, func(t *testing.T) {
			params, err := Resolve(name)
			var unknown *UnknownPresetError
			if !errors.As(err, &unknown) {
				t.Fatalf("Resolve(%q) expected UnknownPresetError, got %v", name, err)
			}
			if unknown.Name != name {
				t.Fatalf("error carries %q, want %q", unknown.Name, name)
			}
			if params != (EncodeParameters{}) {
				t.Fatalf("Resolve(%q) returned non-zero params %+v", name, params)
			}
		})
	}
}

func TestOutputArgs(t *testing.T) {
	params, _ := Resolve("high")
	args := params.OutputArgs()
	if args["c:v"] != "libx264" || args["crf"] != 18 || args["preset"] != "slow" {
		t.Fatalf("unexpected output args: %v", args)
	}
	if _, ok := args["c:a"]; ok {
		t.Fatalf("presets must not decide audio handling: %v", args)
	}
}

func TestPresetNamesOrder(t *testing.T) {
	got := PresetNames()
	want := []string{"lossless", "high", "medium"}
	if len(got) != len(want) {
		t.Fatalf("PresetNames() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("PresetNames()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

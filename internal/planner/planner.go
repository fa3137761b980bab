package planner

import (
	"fmt"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// QualityPreset names a bundle of encoder settings.
type QualityPreset string

const (
	PresetLossless QualityPreset = "lossless"
	PresetHigh     QualityPreset = "high"
	PresetMedium   QualityPreset = "medium"
)

// DefaultPreset is used when the caller does not pick one.
const DefaultPreset = PresetLossless

// EncodeParameters are the concrete video encoder settings for a preset.
type EncodeParameters struct {
	Preset  QualityPreset
	Encoder string
	CRF     int
	Speed   string
}

// OutputArgs returns the video codec options as ffmpeg-go output kwargs.
// The map is freshly allocated on every call.
func (p EncodeParameters) OutputArgs() ffmpeg.KwArgs {
	return ffmpeg.KwArgs{
		"c:v":    p.Encoder,
		"crf":    p.CRF,
		"preset": p.Speed,
	}
}

func (p EncodeParameters) String() string {
	return fmt.Sprintf("%s (%s crf=%d preset=%s)", p.Preset, p.Encoder, p.CRF, p.Speed)
}

// Presets lists every recognised preset, best quality first.
func Presets() []QualityPreset {
	return []QualityPreset{PresetLossless, PresetHigh, PresetMedium}
}

// PresetNames returns Presets as plain strings.
func PresetNames() []string {
	presets := Presets()
	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = string(p)
	}
	return names
}

// Resolve maps a preset name to its encode parameters. Names are
// case-sensitive; anything unrecognised is an error rather than a default.
func Resolve(name string) (EncodeParameters, error) {
	switch QualityPreset(name) {
	case PresetLossless:
		return EncodeParameters{Preset: PresetLossless, Encoder: "libx264", CRF: 0, Speed: "veryslow"}, nil
	case PresetHigh:
		return EncodeParameters{Preset: PresetHigh, Encoder: "libx264", CRF: 18, Speed: "slow"}, nil
	case PresetMedium:
		return EncodeParameters{Preset: PresetMedium, Encoder: "libx264", CRF: 23, Speed: "medium"}, nil
	}
	return EncodeParameters{}, &UnknownPresetError{Name: name}
}

// UnknownPresetError reports a preset name Resolve does not recognise.
type UnknownPresetError struct {
	Name string
}

func (e *UnknownPresetError) Error() string {
	return fmt.Sprintf("unknown quality preset %q (valid: %s)", e.Name, strings.Join(PresetNames(), ", "))
}

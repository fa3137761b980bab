package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZacxDev/ultrawide-splitter/internal/planner"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func load(t *testing.T, args ...string) (Options, error) {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	v := viper.New()
	if err := BindFlags(fs, v); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parsing %v: %v", args, err)
	}
	return Load(v)
}

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	opts, err := load(t)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Options{
		Quality:   string(planner.DefaultPreset),
		FFmpeg:    "ffmpeg",
		FFprobe:   "ffprobe",
		LogFormat: LogFormatText,
	}
	if opts != want {
		t.Fatalf("Load() = %+v, want %+v", opts, want)
	}
}

func TestLoadFlags(t *testing.T) {
	isolate(t)

	opts, err := load(t, "--quality", "high", "--retries", "2", "--timeout", "5m", "-o", "/out", "--format", "mkv", "--sequential", "-v")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Quality != "high" || opts.Retries != 2 || opts.Timeout != 5*time.Minute ||
		opts.OutputDir != "/out" || opts.Format != "mkv" || !opts.Sequential || !opts.Verbose {
		t.Fatalf("flags not applied: %+v", opts)
	}
}

func TestLoadEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("ULTRAWIDE_QUALITY", "medium")
	t.Setenv("ULTRAWIDE_LOG_FORMAT", "JSON")

	opts, err := load(t)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Quality != "medium" || opts.LogFormat != LogFormatJSON {
		t.Fatalf("environment not applied: %+v", opts)
	}

	opts, err = load(t, "--quality", "high")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Quality != "high" {
		t.Fatalf("flag must win over environment, got %q", opts.Quality)
	}
}

func TestLoadDefaultConfigFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "ultrawide-splitter", "config.toml")
	writeFile(t, path, "quality = 'medium'\ntimeout = '90s'\nffmpeg = '/opt/ffmpeg'\n")

	opts, err := load(t)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Quality != "medium" || opts.Timeout != 90*time.Second || opts.FFmpeg != "/opt/ffmpeg" {
		t.Fatalf("config file not applied: %+v", opts)
	}
	if opts.ConfigFile != path {
		t.Fatalf("ConfigFile = %q, want %q", opts.ConfigFile, path)
	}
}

func TestLoadExplicitConfigFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.toml")
	writeFile(t, path, "quality = 'high'\nretries = 1\n")

	opts, err := load(t, "--config", path, "--retries", "3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Quality != "high" || opts.Retries != 3 {
		t.Fatalf("unexpected options %+v", opts)
	}
}

func TestLoadMissingExplicitConfigFile(t *testing.T) {
	dir := isolate(t)
	if _, err := load(t, "--config", filepath.Join(dir, "nope.toml")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestLoadRejectsInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown quality", []string{"--quality", "ultra"}},
		{"quality is case-sensitive", []string{"--quality", "High"}},
		{"negative retries", []string{"--retries", "-1"}},
		{"negative timeout", []string{"--timeout", "-1s"}},
		{"unknown log format", []string{"--log-format", "xml"}},
		{"format with separator", []string{"--format", "../mp4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			if _, err := load(t, tt.args...); err == nil {
				t.Fatalf("expected %v to be rejected", tt.args)
			}
		})
	}
}

func TestLoadUnknownQualityIsTyped(t *testing.T) {
	isolate(t)
	_, err := load(t, "--quality", "ultra")
	var unknown *planner.UnknownPresetError
	if !errors.As(err, &unknown) || unknown.Name != "ultra" {
		t.Fatalf("expected UnknownPresetError, got %v", err)
	}
}

func TestTOMLIsLoadable(t *testing.T) {
	dir := isolate(t)
	opts, err := load(t, "--quality", "medium", "--timeout", "2m", "--sequential", "-o", "/srv/out")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := opts.TOML()
	if err != nil {
		t.Fatalf("TOML: %v", err)
	}
	path := filepath.Join(dir, "dump.toml")
	writeFile(t, path, string(data))

	reloaded, err := load(t, "--config", path)
	if err != nil {
		t.Fatalf("reloading %s: %v\n%s", path, err, data)
	}
	reloaded.ConfigFile = ""
	if reloaded != opts {
		t.Fatalf("reloaded %+v, want %+v\n%s", reloaded, opts, data)
	}
}

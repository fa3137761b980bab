package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZacxDev/ultrawide-splitter/internal/ffmpeg"
	"github.com/ZacxDev/ultrawide-splitter/internal/planner"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/exp/slices"
)

// EnvPrefix prefixes every environment override, e.g. ULTRAWIDE_QUALITY.
const EnvPrefix = "ULTRAWIDE"

// Configuration keys. Flag names, config file keys and environment
// variables all derive from these.
const (
	KeyFormat     = "format"
	KeyQuality    = "quality"
	KeyOutput     = "output"
	KeyFFmpeg     = "ffmpeg"
	KeyFFprobe    = "ffprobe"
	KeySequential = "sequential"
	KeyRetries    = "retries"
	KeyTimeout    = "timeout"
	KeyConfig     = "config"
	KeyLogFormat  = "log-format"
	KeyVerbose    = "verbose"
)

const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// LogFormats lists the accepted log formats.
var LogFormats = []string{LogFormatText, LogFormatJSON}

// Options is the effective configuration of a run.
type Options struct {
	Format     string
	Quality    string
	OutputDir  string
	FFmpeg     string
	FFprobe    string
	Sequential bool
	Retries    int
	Timeout    time.Duration
	LogFormat  string
	Verbose    bool

	// ConfigFile is the file the options were read from, if any.
	ConfigFile string
}

// BindFlags registers every option on fs and binds it into v together with
// ULTRAWIDE_* environment variables.
func BindFlags(fs *pflag.FlagSet, v *viper.Viper) error {
	fs.String(KeyFormat, "", "Output container extension (default: the input's extension)")
	fs.String(KeyQuality, string(planner.DefaultPreset),
		"Quality preset ("+strings.Join(planner.PresetNames(), ", ")+")")
	fs.StringP(KeyOutput, "o", "", "Output directory (default: the input's directory)")
	fs.String(KeyFFmpeg, ffmpeg.DefaultFFmpeg, "ffmpeg executable name or path")
	fs.String(KeyFFprobe, ffmpeg.DefaultFFprobe, "ffprobe executable name or path")
	fs.Bool(KeySequential, false, "Encode the left half before the right instead of both at once")
	fs.Int(KeyRetries, 0, "Extra attempts for an encode that exits with an error")
	fs.Duration(KeyTimeout, 0, "Time limit for each encode attempt (0 disables)")
	fs.String(KeyConfig, "", "Config file (default: "+DefaultConfigPath()+")")
	fs.String(KeyLogFormat, LogFormatText, "Log format ("+strings.Join(LogFormats, ", ")+")")
	fs.BoolP(KeyVerbose, "v", false, "Enable verbose logging")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return errors.Wrap(v.BindPFlags(fs), "binding flags")
}

// DefaultConfigPath is where Load looks for a config file when none is
// given explicitly.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "ultrawide-splitter", "config.toml")
}

// Load reads the optional config file and returns validated options. An
// explicitly named file must exist; the default one may be absent.
func Load(v *viper.Viper) (Options, error) {
	path := v.GetString(KeyConfig)
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}

	var used string
	if path != "" {
		if _, err := os.Stat(path); err == nil || explicit {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return Options{}, errors.Wrapf(err, "reading config file %s", path)
			}
			used = path
		}
	}

	opts := Options{
		Format:     v.GetString(KeyFormat),
		Quality:    v.GetString(KeyQuality),
		OutputDir:  v.GetString(KeyOutput),
		FFmpeg:     v.GetString(KeyFFmpeg),
		FFprobe:    v.GetString(KeyFFprobe),
		Sequential: v.GetBool(KeySequential),
		Retries:    v.GetInt(KeyRetries),
		Timeout:    v.GetDuration(KeyTimeout),
		LogFormat:  strings.ToLower(v.GetString(KeyLogFormat)),
		Verbose:    v.GetBool(KeyVerbose),
		ConfigFile: used,
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Validate checks the options that cannot be checked by flag parsing alone.
func (o Options) Validate() error {
	if !slices.Contains(planner.PresetNames(), o.Quality) {
		return &planner.UnknownPresetError{Name: o.Quality}
	}
	if o.Retries < 0 {
		return errors.Errorf("retries must not be negative, got %d", o.Retries)
	}
	if o.Timeout < 0 {
		return errors.Errorf("timeout must not be negative, got %s", o.Timeout)
	}
	if !slices.Contains(LogFormats, o.LogFormat) {
		return errors.Errorf("unknown log format %q (valid: %s)", o.LogFormat, strings.Join(LogFormats, ", "))
	}
	if strings.ContainsAny(strings.TrimPrefix(o.Format, "."), `/\`) {
		return errors.Errorf("format %q must be a bare extension", o.Format)
	}
	return nil
}

type fileOptions struct {
	Format     string `toml:"format"`
	Quality    string `toml:"quality"`
	Output     string `toml:"output"`
	FFmpeg     string `toml:"ffmpeg"`
	FFprobe    string `toml:"ffprobe"`
	Sequential bool   `toml:"sequential"`
	Retries    int    `toml:"retries"`
	Timeout    string `toml:"timeout"`
	LogFormat  string `toml:"log-format"`
	Verbose    bool   `toml:"verbose"`
}

// TOML renders the options in the config file format Load accepts.
func (o Options) TOML() ([]byte, error) {
	data, err := toml.Marshal(fileOptions{
		Format:     o.Format,
		Quality:    o.Quality,
		Output:     o.OutputDir,
		FFmpeg:     o.FFmpeg,
		FFprobe:    o.FFprobe,
		Sequential: o.Sequential,
		Retries:    o.Retries,
		Timeout:    o.Timeout.String(),
		LogFormat:  o.LogFormat,
		Verbose:    o.Verbose,
	})
	return data, errors.Wrap(err, "encoding config")
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
)

const (
	EnvDestination = "SHOOTPROXY_DESTINATION"
	EnvFFmpeg      = "SHOOTPROXY_FFMPEG"
	EnvVerbose     = "SHOOTPROXY_VERBOSE"
	EnvKeepTemp    = "SHOOTPROXY_KEEP_TEMP"
	EnvConfig      = "SHOOTPROXY_CONFIG"
	EnvArchiveRoot = "SHOOTPROXY_ARCHIVE_ROOT"
)

type Config struct {
	ShootDir          string
	VideoPath         string
	DestinationDir    string
	FFmpegPath        string
	KeepTempOnFailure bool
	Verbose           bool
	TUI               bool
	DryRun            bool
	// Archival writes compressed copies under ArchiveRoot/temp_proxy instead
	// of staging review proxies. An empty ArchiveRoot means the shoot's volume.
	Archival    bool
	ArchiveRoot string
}

// File mirrors config.toml. Pointers distinguish unset from false.
type File struct {
	Destination       string `toml:"destination"`
	FFmpeg            string `toml:"ffmpeg"`
	KeepTempOnFailure *bool  `toml:"keep_temp_on_failure"`
	Verbose           *bool  `toml:"verbose"`
	ArchiveRoot       string `toml:"archive_root"`
}

// Flags holds the values cobra binds for both commands.
type Flags struct {
	ConfigFile  string
	Destination string
	FFmpeg      string
	KeepTemp    bool
	Verbose     bool
	TUI         bool
	DryRun      bool
	Archival    bool
	ArchiveRoot string
}

func Default() Config {
	return Config{
		DestinationDir: defaultDestination(),
		FFmpegPath:     "ffmpeg",
	}
}

func defaultDestination() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "_proxy"
	}
	return filepath.Join(home, "Desktop", "_proxy")
}

// BindCommon registers flags shared by both commands.
func BindCommon(fs *pflag.FlagSet, f *Flags) {
	fs.StringVarP(&f.ConfigFile, "config", "c", "", "Configuration file path")
	fs.StringVar(&f.FFmpeg, "ffmpeg", "", "Path to the ffmpeg binary")
	fs.BoolVarP(&f.Verbose, "verbose", "v", false, "Verbose output")
}

// BindBatch registers the flags only the shoot pipeline uses.
func BindBatch(fs *pflag.FlagSet, f *Flags) {
	fs.StringVarP(&f.Destination, "dest", "d", "", "Destination root for staged proxies (must not exist)")
	fs.BoolVar(&f.KeepTemp, "keep-temp", false, "Keep the <shoot>_proxy working tree when a run fails")
	fs.BoolVar(&f.TUI, "tui", false, "Show interactive progress")
	fs.BoolVar(&f.DryRun, "dry-run", false, "Show what would be staged without encoding or copying")
	fs.BoolVar(&f.Archival, "archival", false, "Compress into <root>/temp_proxy/<YYYY>_<MM>_proxy/<shoot>.proxy")
	fs.StringVar(&f.ArchiveRoot, "archive-root", "", "Root for --archival output (default: the shoot's volume)")
}

// Resolve layers defaults, the config file, environment and explicitly set
// flags, in that order of increasing precedence.
func Resolve(fs *pflag.FlagSet, f Flags) (Config, error) {
	cfg := Default()

	path, explicit := f.ConfigFile, f.ConfigFile != ""
	if !explicit {
		if env := envOrEmpty(EnvConfig); env != "" {
			path, explicit = env, true
		} else {
			path = DefaultPath()
		}
	}
	if path != "" {
		file, err := Load(path)
		switch {
		case err == nil:
			file.apply(&cfg)
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return Config{}, err
		}
	}

	applyEnv(&cfg)

	if changed(fs, "dest") {
		cfg.DestinationDir = f.Destination
	}
	if changed(fs, "ffmpeg") {
		cfg.FFmpegPath = f.FFmpeg
	}
	if changed(fs, "keep-temp") {
		cfg.KeepTempOnFailure = f.KeepTemp
	}
	if changed(fs, "verbose") {
		cfg.Verbose = f.Verbose
	}
	if changed(fs, "tui") {
		cfg.TUI = f.TUI
	}
	if changed(fs, "dry-run") {
		cfg.DryRun = f.DryRun
	}
	if changed(fs, "archival") {
		cfg.Archival = f.Archival
	}
	if changed(fs, "archive-root") {
		cfg.ArchiveRoot = f.ArchiveRoot
	}

	cfg.DestinationDir = expandHome(cfg.DestinationDir)
	cfg.ArchiveRoot = expandHome(cfg.ArchiveRoot)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DestinationDir) == "" {
		return errors.New("destination is required")
	}
	if strings.TrimSpace(c.FFmpegPath) == "" {
		return errors.New("ffmpeg path is required")
	}
	return nil
}

// Load reads a TOML config file, substituting ${VAR} references first.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("reading config: %w", err)
	}

	var file File
	if _, err := toml.Decode(substituteEnvVars(string(data)), &file); err != nil {
		return File{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return file, nil
}

func (f File) apply(cfg *Config) {
	if f.Destination != "" {
		cfg.DestinationDir = f.Destination
	}
	if f.FFmpeg != "" {
		cfg.FFmpegPath = f.FFmpeg
	}
	if f.KeepTempOnFailure != nil {
		cfg.KeepTempOnFailure = *f.KeepTempOnFailure
	}
	if f.Verbose != nil {
		cfg.Verbose = *f.Verbose
	}
	if f.ArchiveRoot != "" {
		cfg.ArchiveRoot = f.ArchiveRoot
	}
}

func applyEnv(cfg *Config) {
	if v := envOrEmpty(EnvDestination); v != "" {
		cfg.DestinationDir = v
	}
	if v := envOrEmpty(EnvFFmpeg); v != "" {
		cfg.FFmpegPath = v
	}
	if envOrEmpty(EnvVerbose) != "" {
		cfg.Verbose = envTruthy(EnvVerbose)
	}
	if envOrEmpty(EnvKeepTemp) != "" {
		cfg.KeepTempOnFailure = envTruthy(EnvKeepTemp)
	}
	if v := envOrEmpty(EnvArchiveRoot); v != "" {
		cfg.ArchiveRoot = v
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/shootproxy/config.toml.
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "shootproxy", "config.toml")
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

func substituteEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		if value, ok := os.LookupEnv(match[2 : len(match)-1]); ok {
			return value
		}
		return match
	})
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func changed(fs *pflag.FlagSet, name string) bool {
	if fs == nil {
		return false
	}
	flag := fs.Lookup(name)
	return flag != nil && flag.Changed
}

func envOrEmpty(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func envTruthy(key string) bool {
	val := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	return val == "1" || val == "true" || val == "yes" || val == "y"
}

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	WorkDir   string `toml:"work_dir"`
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
	APIBind   string `toml:"api_bind"`
}

// ElevenLabs contains configuration for the narration synthesis provider.
type ElevenLabs struct {
	APIKey          string  `toml:"api_key"`
	VoiceID         string  `toml:"voice_id"`
	BaseURL         string  `toml:"base_url"`
	ModelID         string  `toml:"model_id"`
	Stability       float64 `toml:"stability"`
	SimilarityBoost float64 `toml:"similarity_boost"`
	RequestTimeout  int     `toml:"request_timeout"`
}

// Pexels contains configuration for the stock footage provider.
type Pexels struct {
	APIKey          string `toml:"api_key"`
	BaseURL         string `toml:"base_url"`
	RequestTimeout  int    `toml:"request_timeout"`
	DownloadTimeout int    `toml:"download_timeout"`
}

// Video contains the encoding geometry and transcoder settings.
type Video struct {
	Width            int    `toml:"width"`
	Height           int    `toml:"height"`
	MinClips         int    `toml:"min_clips"`
	MaxClips         int    `toml:"max_clips"`
	FFmpegBinary     string `toml:"ffmpeg_binary"`
	FFprobeBinary    string `toml:"ffprobe_binary"`
	Preset           string `toml:"preset"`
	CRF              int    `toml:"crf"`
	AudioBitrate     string `toml:"audio_bitrate"`
	NormalizeTimeout int    `toml:"normalize_timeout"`
	ConcatTimeout    int    `toml:"concat_timeout"`
	MuxTimeout       int    `toml:"mux_timeout"`
	BurnInTimeout    int    `toml:"burnin_timeout"`
}

// Captions contains caption timing and styling settings.
type Captions struct {
	Enabled     bool   `toml:"enabled"`
	WordsPerCue int    `toml:"words_per_cue"`
	Uppercase   bool   `toml:"uppercase"`
	FontName    string `toml:"font_name"`
	FontSize    int    `toml:"font_size"`
	MarginV     int    `toml:"margin_v"`
}

// Workflow contains the concurrency ceiling and retention settings.
type Workflow struct {
	MaxConcurrentTasks int `toml:"max_concurrent_tasks"`
	TaskRetentionHours int `toml:"task_retention_hours"`
	SweepIntervalMins  int `toml:"sweep_interval_minutes"`
	NotifyTimeout      int `toml:"notify_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for reelsmith.
//
// Configuration sections by subsystem:
//   - Paths: scratch/output/log directories and the API bind address
//   - ElevenLabs: narration synthesis credentials and voice settings
//   - Pexels: stock footage credentials and timeouts
//   - Video: target frame geometry, clip limits, ffmpeg settings
//   - Captions: caption timing group size and burn-in styling
//   - Workflow: concurrency ceiling, retention, notification timeout
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	ElevenLabs ElevenLabs `toml:"elevenlabs"`
	Pexels     Pexels     `toml:"pexels"`
	Video      Video      `toml:"video"`
	Captions   Captions   `toml:"captions"`
	Workflow   Workflow   `toml:"workflow"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/reelsmith/config.toml")
}

// SampleConfig returns the embedded annotated sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a file was found at the resolved path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("reelsmith.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the scratch, output, and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.OutputDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

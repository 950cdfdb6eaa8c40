// Package config loads qTunes settings from TOML files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/tejashwikalptaru/qtunes/internal/domain"
)

const fileName = "config.toml"

type Config struct {
	DefaultFolder string   `koanf:"default_folder"` // scanned when no cached library exists
	Extensions    []string `koanf:"extensions"`     // file types picked up by the scanner
	LibraryCache  bool     `koanf:"library_cache"`
	MPRIS         bool     `koanf:"mpris"`

	Log        LogConfig        `koanf:"log"`
	Audio      AudioConfig      `koanf:"audio"`
	Visualizer VisualizerConfig `koanf:"visualizer"`
	Coverflow  CoverflowConfig  `koanf:"coverflow"`
}

type LogConfig struct {
	Level  string `koanf:"level"`  // DEBUG, INFO, WARN or ERROR
	Format string `koanf:"format"` // "text" or "json"
}

type AudioConfig struct {
	SampleRate int `koanf:"sample_rate"`
	BufferMS   int `koanf:"buffer_ms"`
}

type VisualizerConfig struct {
	Bars    int    `koanf:"bars"`
	Speed   string `koanf:"speed"` // slowest, slower, normal, faster, fastest
	FrameMS int    `koanf:"frame_ms"`
}

type CoverflowConfig struct {
	AlbumsShown int `koanf:"albums_shown"` // odd, so one cover sits in the centre
	ShiftMS     int `koanf:"shift_ms"`
	ThumbSize   int `koanf:"thumb_size"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Extensions:   []string{".mp3", ".flac", ".wav", ".ogg"},
		LibraryCache: true,
		MPRIS:        true,
		Log:          LogConfig{Level: "INFO", Format: "text"},
		Audio:        AudioConfig{SampleRate: 44100, BufferMS: 100},
		Visualizer:   VisualizerConfig{Bars: 9, Speed: domain.SpeedNormal.String(), FrameMS: 10},
		Coverflow:    CoverflowConfig{AlbumsShown: 5, ShiftMS: 300, ThumbSize: 200},
	}
}

// Load reads the user config and then ./config.toml; later files win.
// A non-empty explicit path replaces both.
func Load(explicit string) (*Config, error) {
	paths := Paths()
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return nil, fmt.Errorf("config %s: %w", explicit, err)
		}
		paths = []string{explicit}
	}

	k := koanf.New(".")
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.DefaultFolder = expandPath(cfg.DefaultFolder)
	cfg.Extensions = normalizeExtensions(cfg.Extensions)
	cfg.Visualizer.Speed = strings.ToLower(strings.TrimSpace(cfg.Visualizer.Speed))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Paths lists the config files Load reads, lowest priority first.
func Paths() []string {
	return []string{
		filepath.Join(xdg.ConfigHome, "qtunes", fileName),
		fileName,
	}
}

// Validate reports the first setting that is out of range.
func (c *Config) Validate() error {
	switch {
	case len(c.Extensions) == 0:
		return domain.NewValidationError("extensions", c.Extensions, "at least one extension is required")
	case c.Audio.SampleRate < 8000 || c.Audio.SampleRate > 192000:
		return domain.NewValidationError("audio.sample_rate", c.Audio.SampleRate, "must be between 8000 and 192000")
	case c.Audio.BufferMS < 10 || c.Audio.BufferMS > 1000:
		return domain.NewValidationError("audio.buffer_ms", c.Audio.BufferMS, "must be between 10 and 1000")
	case c.Visualizer.Bars < 1 || c.Visualizer.Bars > 64:
		return domain.NewValidationError("visualizer.bars", c.Visualizer.Bars, "must be between 1 and 64")
	case c.Visualizer.FrameMS < 1:
		return domain.NewValidationError("visualizer.frame_ms", c.Visualizer.FrameMS, "must be positive")
	case c.Coverflow.AlbumsShown < 1 || c.Coverflow.AlbumsShown%2 == 0:
		return domain.NewValidationError("coverflow.albums_shown", c.Coverflow.AlbumsShown, "must be a positive odd number")
	case c.Coverflow.ShiftMS < 1:
		return domain.NewValidationError("coverflow.shift_ms", c.Coverflow.ShiftMS, "must be positive")
	case c.Coverflow.ThumbSize < 16:
		return domain.NewValidationError("coverflow.thumb_size", c.Coverflow.ThumbSize, "must be at least 16")
	}
	if _, ok := domain.ParseVisualizerSpeed(c.Visualizer.Speed); !ok {
		return domain.NewValidationError("visualizer.speed", c.Visualizer.Speed, "unknown speed")
	}
	return nil
}

// BufferSize returns the audio buffer as a duration.
func (c AudioConfig) BufferSize() time.Duration {
	return time.Duration(c.BufferMS) * time.Millisecond
}

// DefaultSpeed returns the configured visualizer speed, normal if unknown.
func (c VisualizerConfig) DefaultSpeed() domain.VisualizerSpeed {
	if s, ok := domain.ParseVisualizerSpeed(c.Speed); ok {
		return s
	}
	return domain.SpeedNormal
}

func (c VisualizerConfig) FrameInterval() time.Duration {
	return time.Duration(c.FrameMS) * time.Millisecond
}

func (c CoverflowConfig) ShiftDuration() time.Duration {
	return time.Duration(c.ShiftMS) * time.Millisecond
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// normalizeExtensions lower-cases extensions and adds a missing dot.
func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	seen := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	return out
}

// Package config loads labeler settings from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"image-labeler/internal/imageio"
	"image-labeler/internal/interaction"
	"image-labeler/pkg/colorutil"
)

// ErrInvalid is returned by Validate for out-of-range settings.
var ErrInvalid = errors.New("invalid config")

// Editor theme names.
const (
	ThemeSystem = "system"
	ThemeLight  = "light"
	ThemeDark   = "dark"
)

// EnvPrefix prefixes environment overrides, e.g. LABELER_SERVER_ADDR.
const EnvPrefix = "LABELER"

type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Editor EditorConfig `mapstructure:"editor"`
	Export ExportConfig `mapstructure:"export"`
	Pascal PascalConfig `mapstructure:"pascal"`
	Server ServerConfig `mapstructure:"server"`
	Redis  RedisConfig  `mapstructure:"redis"`
}

type LogConfig struct {
	Mode string `mapstructure:"mode"`
}

type EditorConfig struct {
	HitRadius  float64 `mapstructure:"hit_radius"`
	ZoomFactor float64 `mapstructure:"zoom_factor"`
	MinZoom    float64 `mapstructure:"min_zoom"`
	MaxZoom    float64 `mapstructure:"max_zoom"`

	// Theme is "system", "light" or "dark". Accent is an ARGB hex color
	// for selection and focus highlights in the desktop shell.
	Theme  string `mapstructure:"theme"`
	Accent string `mapstructure:"accent"`
}

type ExportConfig struct {
	Format     string `mapstructure:"format"`
	Quality    int    `mapstructure:"quality"`
	AutoColors bool   `mapstructure:"auto_colors"`
}

type PascalConfig struct {
	Root string `mapstructure:"root"`
}

type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MaxPixels    int           `mapstructure:"max_pixels"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// Load reads the YAML file at path. An empty path loads defaults and
// environment overrides only.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// New loads path, falling back to the defaults if it cannot be read.
func New(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns the built-in settings.
func Default() *Config {
	opts := interaction.DefaultOptions()
	return &Config{
		Log: LogConfig{Mode: "debug"},
		Editor: EditorConfig{
			HitRadius:  opts.HitRadius,
			ZoomFactor: opts.ZoomFactor,
			MinZoom:    opts.MinZoom,
			MaxZoom:    opts.MaxZoom,
			Theme:      ThemeSystem,
			Accent:     "ff0097a7",
		},
		Export: ExportConfig{
			Format:  string(imageio.FormatPNG),
			Quality: 95,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			Mode:         "debug",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			MaxPixels:    64 * 1024 * 1024,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
			TTL:  24 * time.Hour,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("log.mode", d.Log.Mode)

	v.SetDefault("editor.hit_radius", d.Editor.HitRadius)
	v.SetDefault("editor.zoom_factor", d.Editor.ZoomFactor)
	v.SetDefault("editor.min_zoom", d.Editor.MinZoom)
	v.SetDefault("editor.max_zoom", d.Editor.MaxZoom)
	v.SetDefault("editor.theme", d.Editor.Theme)
	v.SetDefault("editor.accent", d.Editor.Accent)

	v.SetDefault("export.format", d.Export.Format)
	v.SetDefault("export.quality", d.Export.Quality)
	v.SetDefault("export.auto_colors", d.Export.AutoColors)

	v.SetDefault("pascal.root", d.Pascal.Root)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.mode", d.Server.Mode)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.max_pixels", d.Server.MaxPixels)

	v.SetDefault("redis.enabled", d.Redis.Enabled)
	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("redis.ttl", d.Redis.TTL)
}

// Validate checks ranges that would otherwise break the editor or export.
func (c *Config) Validate() error {
	e := c.Editor
	switch {
	case e.HitRadius <= 0:
		return fmt.Errorf("%w: editor.hit_radius must be positive", ErrInvalid)
	case e.ZoomFactor <= 1:
		return fmt.Errorf("%w: editor.zoom_factor must exceed 1", ErrInvalid)
	case e.MinZoom <= 0 || e.MaxZoom < e.MinZoom:
		return fmt.Errorf("%w: editor zoom range [%g, %g]", ErrInvalid, e.MinZoom, e.MaxZoom)
	}
	switch e.Theme {
	case ThemeSystem, ThemeLight, ThemeDark:
	default:
		return fmt.Errorf("%w: editor.theme %q, want system, light or dark", ErrInvalid, e.Theme)
	}
	if _, err := colorutil.ParseARGB(e.Accent); err != nil {
		return fmt.Errorf("%w: editor.accent: %v", ErrInvalid, err)
	}
	if _, err := imageio.ParseFormat(c.Export.Format); err != nil {
		return fmt.Errorf("%w: export.format: %v", ErrInvalid, err)
	}
	if c.Export.Quality < 0 || c.Export.Quality > 100 {
		return fmt.Errorf("%w: export.quality %d out of range", ErrInvalid, c.Export.Quality)
	}
	if c.Server.MaxPixels <= 0 {
		return fmt.Errorf("%w: server.max_pixels must be positive", ErrInvalid)
	}
	return nil
}

// EditorOptions converts the editor section for the interaction machine.
func (c *Config) EditorOptions() interaction.Options {
	return interaction.Options{
		HitRadius:  c.Editor.HitRadius,
		ZoomFactor: c.Editor.ZoomFactor,
		MinZoom:    c.Editor.MinZoom,
		MaxZoom:    c.Editor.MaxZoom,
	}
}

// ExportFormat returns the parsed export format. Validate guarantees it.
func (c *Config) ExportFormat() imageio.Format {
	f, err := imageio.ParseFormat(c.Export.Format)
	if err != nil {
		return imageio.FormatPNG
	}
	return f
}

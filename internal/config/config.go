// Package config loads the promoreel.yaml workspace configuration. Missing
// files and omitted fields fall back to documented defaults.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"promoreel/internal/audiomix"
)

// Config captures rendering, audio-safety and transition configuration.
type Config struct {
	Version     int               `yaml:"version"`
	Video       VideoConfig       `yaml:"video"`
	ShortForm   ShortFormConfig   `yaml:"short_form"`
	Audio       AudioConfig       `yaml:"audio"`
	Music       MusicConfig       `yaml:"music"`
	Intro       IntroConfig       `yaml:"intro"`
	Transitions TransitionsConfig `yaml:"transitions"`
	Render      RenderConfig      `yaml:"render"`
	Overlay     OverlayConfig     `yaml:"overlay"`
}

// VideoConfig contains the landscape target frame and encoder quality.
type VideoConfig struct {
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	FPS     int    `yaml:"fps"`
	Quality string `yaml:"quality"`
}

// ShortFormConfig is the vertical target used by the short command.
type ShortFormConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// AudioConfig describes encoding parameters and the safety policy. Ceilings
// are tunable policy, not constants; see audiomix.DefaultPolicy for baselines.
type AudioConfig struct {
	ACodec      string  `yaml:"acodec"`
	BitrateKbps int     `yaml:"bitrate_kbps"`
	SampleRate  int     `yaml:"sample_rate"`
	Channels    int     `yaml:"channels"`
	SafeTotal   float64 `yaml:"safe_total_gain"`
	MinFadeSec  float64 `yaml:"min_fade_s"`
	MaxFadeSec  float64 `yaml:"max_fade_s"`

	Volumes VolumeConfig `yaml:"volumes"`
	Maximum VolumeConfig `yaml:"max_gains"`
}

// VolumeConfig holds one gain value per mixing role.
type VolumeConfig struct {
	Narration       float64 `yaml:"narration"`
	IntroNarration  float64 `yaml:"intro_narration"`
	IntroMusic      float64 `yaml:"intro_music"`
	BackgroundMusic float64 `yaml:"background_music"`
}

// MusicConfig points at the looping background bed.
type MusicConfig struct {
	Path       string  `yaml:"path"`
	FadeInSec  float64 `yaml:"fade_in_s"`
	FadeOutSec float64 `yaml:"fade_out_s"`
}

// IntroConfig describes the optional leading segment.
type IntroConfig struct {
	DurationSec float64 `yaml:"duration_s"`
	ImagePath   string  `yaml:"image"`
	Narration   string  `yaml:"narration"`
}

// TransitionsConfig drives cross-fade selection between product images.
type TransitionsConfig struct {
	DurationSec float64  `yaml:"duration_s"`
	Effects     []string `yaml:"effects"`
}

// RenderConfig bounds the external encoder process.
type RenderConfig struct {
	TimeoutBaseSec    float64 `yaml:"timeout_base_s"`
	TimeoutPerSecond  float64 `yaml:"timeout_per_second"`
	TimeoutCeilingSec float64 `yaml:"timeout_ceiling_s"`
	MinOutputBytes    int64   `yaml:"min_output_bytes"`
}

// OverlayConfig controls the drawtext overlays burned into the video.
type OverlayConfig struct {
	ShowTitle  bool   `yaml:"show_title"`
	ShowBuyURL bool   `yaml:"show_buy_url"`
	FontFile   string `yaml:"font_file"`
	FontColor  string `yaml:"font_color"`
}

// Default returns the baseline configuration.
func Default() Config {
	policy := audiomix.DefaultPolicy()
	return Config{
		Version: 1,
		Video: VideoConfig{
			Width:   1920,
			Height:  1080,
			FPS:     30,
			Quality: "high",
		},
		ShortForm: ShortFormConfig{
			Width:  1080,
			Height: 1920,
		},
		Audio: AudioConfig{
			ACodec:      "aac",
			BitrateKbps: 192,
			SampleRate:  44100,
			Channels:    2,
			SafeTotal:   policy.SafeTotal,
			MinFadeSec:  policy.MinFade,
			MaxFadeSec:  policy.MaxFade,
			Volumes: VolumeConfig{
				Narration:       1.0,
				IntroNarration:  0.9,
				IntroMusic:      0.4,
				BackgroundMusic: 0.2,
			},
			Maximum: VolumeConfig{
				Narration:       policy.MaxGain[audiomix.RoleNarration],
				IntroNarration:  policy.MaxGain[audiomix.RoleIntroNarration],
				IntroMusic:      policy.MaxGain[audiomix.RoleIntroMusic],
				BackgroundMusic: policy.MaxGain[audiomix.RoleBackgroundMusic],
			},
		},
		Music: MusicConfig{
			FadeInSec:  1.0,
			FadeOutSec: 2.0,
		},
		Intro: IntroConfig{
			DurationSec: 5.0,
		},
		Transitions: TransitionsConfig{
			DurationSec: 1.0,
			Effects: []string{
				"fade", "wipeleft", "wiperight", "slideleft", "circleopen", "dissolve",
			},
		},
		Render: RenderConfig{
			TimeoutBaseSec:    120,
			TimeoutPerSecond:  4,
			TimeoutCeilingSec: 1800,
			MinOutputBytes:    1024,
		},
		Overlay: OverlayConfig{
			ShowTitle:  true,
			ShowBuyURL: true,
			FontColor:  "white",
		},
	}
}

// Load reads the YAML configuration from disk if it exists, otherwise returns
// the default configuration.
func Load(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults ensures nested fields fall back to sensible defaults when the
// YAML omits them.
func (c *Config) ApplyDefaults() {
	defaults := Default()

	if c.Version == 0 {
		c.Version = defaults.Version
	}
	if c.Video.Width <= 0 {
		c.Video.Width = defaults.Video.Width
	}
	if c.Video.Height <= 0 {
		c.Video.Height = defaults.Video.Height
	}
	if c.Video.FPS <= 0 {
		c.Video.FPS = defaults.Video.FPS
	}
	if c.Video.Quality == "" {
		c.Video.Quality = defaults.Video.Quality
	}
	if c.ShortForm.Width <= 0 {
		c.ShortForm.Width = defaults.ShortForm.Width
	}
	if c.ShortForm.Height <= 0 {
		c.ShortForm.Height = defaults.ShortForm.Height
	}
	if c.Audio.ACodec == "" {
		c.Audio.ACodec = defaults.Audio.ACodec
	}
	if c.Audio.BitrateKbps <= 0 {
		c.Audio.BitrateKbps = defaults.Audio.BitrateKbps
	}
	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = defaults.Audio.SampleRate
	}
	if c.Audio.Channels <= 0 {
		c.Audio.Channels = defaults.Audio.Channels
	}
	if c.Audio.SafeTotal <= 0 {
		c.Audio.SafeTotal = defaults.Audio.SafeTotal
	}
	if c.Audio.MinFadeSec <= 0 {
		c.Audio.MinFadeSec = defaults.Audio.MinFadeSec
	}
	if c.Audio.MaxFadeSec <= 0 {
		c.Audio.MaxFadeSec = defaults.Audio.MaxFadeSec
	}
	applyVolumeDefaults(&c.Audio.Volumes, defaults.Audio.Volumes)
	applyVolumeDefaults(&c.Audio.Maximum, defaults.Audio.Maximum)
	if c.Music.FadeInSec <= 0 {
		c.Music.FadeInSec = defaults.Music.FadeInSec
	}
	if c.Music.FadeOutSec <= 0 {
		c.Music.FadeOutSec = defaults.Music.FadeOutSec
	}
	if c.Intro.DurationSec <= 0 {
		c.Intro.DurationSec = defaults.Intro.DurationSec
	}
	if c.Transitions.DurationSec < 0 {
		c.Transitions.DurationSec = defaults.Transitions.DurationSec
	}
	if len(c.Transitions.Effects) == 0 {
		c.Transitions.Effects = defaults.Transitions.Effects
	}
	if c.Render.TimeoutBaseSec <= 0 {
		c.Render.TimeoutBaseSec = defaults.Render.TimeoutBaseSec
	}
	if c.Render.TimeoutPerSecond <= 0 {
		c.Render.TimeoutPerSecond = defaults.Render.TimeoutPerSecond
	}
	if c.Render.TimeoutCeilingSec <= 0 {
		c.Render.TimeoutCeilingSec = defaults.Render.TimeoutCeilingSec
	}
	if c.Render.MinOutputBytes <= 0 {
		c.Render.MinOutputBytes = defaults.Render.MinOutputBytes
	}
	if c.Overlay.FontColor == "" {
		c.Overlay.FontColor = defaults.Overlay.FontColor
	}
}

func applyVolumeDefaults(v *VolumeConfig, defaults VolumeConfig) {
	if v.Narration <= 0 {
		v.Narration = defaults.Narration
	}
	if v.IntroNarration <= 0 {
		v.IntroNarration = defaults.IntroNarration
	}
	if v.IntroMusic <= 0 {
		v.IntroMusic = defaults.IntroMusic
	}
	if v.BackgroundMusic <= 0 {
		v.BackgroundMusic = defaults.BackgroundMusic
	}
}

// Policy translates the audio section into an audiomix safety policy.
func (c Config) Policy() audiomix.Policy {
	return audiomix.Policy{
		MaxGain: map[audiomix.Role]float64{
			audiomix.RoleNarration:       c.Audio.Maximum.Narration,
			audiomix.RoleIntroNarration:  c.Audio.Maximum.IntroNarration,
			audiomix.RoleIntroMusic:      c.Audio.Maximum.IntroMusic,
			audiomix.RoleBackgroundMusic: c.Audio.Maximum.BackgroundMusic,
		},
		SafeTotal: c.Audio.SafeTotal,
		MinFade:   c.Audio.MinFadeSec,
		MaxFade:   c.Audio.MaxFadeSec,
	}
}

// Save writes the configuration as YAML.
func (c Config) Save(path string) error {
	out, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

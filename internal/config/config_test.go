package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "promoreel.yaml"))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Video.Width != 1920 || cfg.Video.Height != 1080 {
		t.Fatalf("unexpected default video %dx%d", cfg.Video.Width, cfg.Video.Height)
	}
	if cfg.ShortForm.Width != 1080 || cfg.ShortForm.Height != 1920 {
		t.Fatalf("unexpected short form defaults %dx%d", cfg.ShortForm.Width, cfg.ShortForm.Height)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestLoadAppliesPartialOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "promoreel.yaml")
	content := `
video:
  fps: 24
audio:
  volumes:
    background_music: 0.3
transitions:
  duration_s: 0.5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Video.FPS != 24 {
		t.Fatalf("fps override lost: %d", cfg.Video.FPS)
	}
	if cfg.Video.Width != 1920 {
		t.Fatalf("width default lost: %d", cfg.Video.Width)
	}
	if cfg.Audio.Volumes.BackgroundMusic != 0.3 {
		t.Fatalf("music volume override lost: %v", cfg.Audio.Volumes.BackgroundMusic)
	}
	if cfg.Audio.Volumes.Narration != 1.0 {
		t.Fatalf("narration default lost: %v", cfg.Audio.Volumes.Narration)
	}
	if cfg.Transitions.DurationSec != 0.5 {
		t.Fatalf("transition override lost: %v", cfg.Transitions.DurationSec)
	}
}

func TestValidateRejectsOddDimensions(t *testing.T) {
	cfg := Default()
	cfg.Video.Width = 1921

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "even") {
		t.Fatalf("expected even-dimension error, got %v", err)
	}
}

func TestParseQuality(t *testing.T) {
	cases := []struct {
		in      string
		want    Quality
		wantCRF int
		wantErr bool
	}{
		{"low", QualityLow, 30, false},
		{"medium", QualityMedium, 26, false},
		{"HIGH", QualityHigh, 22, false},
		{"ultra", QualityUltra, 18, false},
		{"", QualityHigh, 22, false},
		{"potato", "", 0, true},
	}

	for _, tc := range cases {
		q, err := ParseQuality(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseQuality(%q) expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseQuality(%q) error: %v", tc.in, err)
		}
		if q != tc.want || q.CRF() != tc.wantCRF {
			t.Fatalf("ParseQuality(%q) = %v (crf %d), want %v (crf %d)", tc.in, q, q.CRF(), tc.want, tc.wantCRF)
		}
	}
}

func TestParseResolution(t *testing.T) {
	width, height, err := ParseResolution("1280x720")
	if err != nil || width != 1280 || height != 720 {
		t.Fatalf("ParseResolution: %d %d %v", width, height, err)
	}
	if _, _, err := ParseResolution("1080p"); err == nil {
		t.Fatalf("expected error for malformed resolution")
	}
}

func TestPolicyReflectsOverrides(t *testing.T) {
	cfg := Default()
	cfg.Audio.Maximum.BackgroundMusic = 0.5
	cfg.Audio.SafeTotal = 1.4

	policy := cfg.Policy()
	if policy.MaxGain["background_music"] != 0.5 {
		t.Fatalf("ceiling override lost: %+v", policy.MaxGain)
	}
	if policy.SafeTotal != 1.4 {
		t.Fatalf("safe total override lost: %v", policy.SafeTotal)
	}
}

package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Validate reports configuration problems that would produce a broken render.
func (c Config) Validate() error {
	var problems []string

	if c.Video.Width <= 0 || c.Video.Height <= 0 {
		problems = append(problems, fmt.Sprintf("video dimensions %dx%d are invalid", c.Video.Width, c.Video.Height))
	}
	if c.Video.Width%2 != 0 || c.Video.Height%2 != 0 {
		problems = append(problems, "video dimensions must be even for yuv420p output")
	}
	if c.Video.FPS <= 0 {
		problems = append(problems, "video fps must be positive")
	}
	if _, err := ParseQuality(c.Video.Quality); err != nil {
		problems = append(problems, err.Error())
	}
	if c.ShortForm.Width%2 != 0 || c.ShortForm.Height%2 != 0 {
		problems = append(problems, "short form dimensions must be even")
	}
	if c.Audio.SafeTotal <= 0 {
		problems = append(problems, "audio safe_total_gain must be positive")
	}
	if c.Audio.MinFadeSec > c.Audio.MaxFadeSec {
		problems = append(problems, "audio min_fade_s exceeds max_fade_s")
	}
	if c.Transitions.DurationSec < 0 {
		problems = append(problems, "transition duration must not be negative")
	}
	for _, effect := range c.Transitions.Effects {
		if strings.TrimSpace(effect) == "" {
			problems = append(problems, "transition effects must not be blank")
			break
		}
	}
	if c.Render.TimeoutCeilingSec < c.Render.TimeoutBaseSec {
		problems = append(problems, "render timeout_ceiling_s is below timeout_base_s")
	}

	if len(problems) > 0 {
		return errors.New("invalid config: " + strings.Join(problems, "; "))
	}
	return nil
}

// ParseResolution splits a "WxH" string into even, positive dimensions.
func ParseResolution(value string) (int, int, error) {
	parts := strings.SplitN(strings.ToLower(strings.TrimSpace(value)), "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("resolution %q is not in WxH form", value)
	}
	width, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("resolution width %q: %w", parts[0], err)
	}
	height, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("resolution height %q: %w", parts[1], err)
	}
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("resolution %q must be positive", value)
	}
	return width, height, nil
}

// Package audiomix enforces volume and fade bounds for the tracks that end up
// mixed into a render, and detects when the combined gains would clip. All
// functions are pure; the caller decides what to do with a recommendation.
package audiomix

import "sort"

// Role identifies which slot of the mix a gain value belongs to.
type Role string

const (
	RoleNarration       Role = "narration"
	RoleIntroNarration  Role = "intro_narration"
	RoleIntroMusic      Role = "intro_music"
	RoleBackgroundMusic Role = "background_music"
)

// Policy holds the tunable safety bounds. The numeric ceilings are policy, not
// derived constants; config may override any of them.
type Policy struct {
	// MaxGain is the per-role ceiling for a single track's gain.
	MaxGain map[Role]float64

	// SafeTotal is the maximum summed gain of simultaneously audible tracks
	// before the mix is considered at risk of clipping.
	SafeTotal float64

	// MinFade and MaxFade bound fade durations in seconds.
	MinFade float64
	MaxFade float64
}

// DefaultPolicy returns the baseline safety policy.
func DefaultPolicy() Policy {
	return Policy{
		MaxGain: map[Role]float64{
			RoleNarration:       1.0,
			RoleIntroNarration:  0.9,
			RoleIntroMusic:      0.4,
			RoleBackgroundMusic: 0.35,
		},
		SafeTotal: 1.25,
		MinFade:   0.25,
		MaxFade:   5.0,
	}
}

// NormalizeVolume clamps a gain to the ceiling configured for its role. The
// second return value reports whether clamping occurred so callers can log it;
// the clamp is never silent. Unknown roles fall back to the narration ceiling.
func (p Policy) NormalizeVolume(value float64, role Role) (float64, bool) {
	if value < 0 {
		return 0, true
	}
	ceiling, ok := p.MaxGain[role]
	if !ok {
		ceiling = p.MaxGain[RoleNarration]
	}
	if ceiling <= 0 {
		ceiling = 1.0
	}
	if value > ceiling {
		return ceiling, true
	}
	return value, false
}

// ClampFade forces a fade duration into the [MinFade, MaxFade] window. Zero or
// negative values clamp to the minimum rather than erroring; a slightly wrong
// fade is not fatal.
func (p Policy) ClampFade(seconds float64) float64 {
	if seconds < p.MinFade {
		return p.MinFade
	}
	if seconds > p.MaxFade {
		return p.MaxFade
	}
	return seconds
}

// Report is the outcome of a clipping check.
type Report struct {
	// TotalGain is the worst-case summed gain of simultaneously active tracks.
	TotalGain float64

	// WillClip is true when TotalGain exceeds the safe ceiling.
	WillClip bool

	// Recommended holds a scaled-down gain set whose sum stays under the
	// ceiling. Nil when no clipping risk was found.
	Recommended map[Role]float64
}

// CheckClipping sums the effective simultaneous gains of every supplied track.
// Intro music plays under the intro narration (and louder than the background
// bed during the pre-narration window), so all supplied roles are treated as
// potentially concurrent and the worst case is the plain sum.
func (p Policy) CheckClipping(gains map[Role]float64) Report {
	total := 0.0
	for _, g := range gains {
		if g > 0 {
			total += g
		}
	}

	report := Report{TotalGain: total}
	if total <= p.SafeTotal || total == 0 {
		return report
	}
	report.WillClip = true

	// Scale every gain proportionally so the sum lands just under the ceiling.
	scale := p.SafeTotal * 0.95 / total
	report.Recommended = make(map[Role]float64, len(gains))
	for _, role := range sortedRoles(gains) {
		report.Recommended[role] = gains[role] * scale
	}
	return report
}

func sortedRoles(gains map[Role]float64) []Role {
	roles := make([]Role, 0, len(gains))
	for role := range gains {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles
}

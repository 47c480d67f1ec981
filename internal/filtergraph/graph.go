// Package filtergraph translates a render plan into ffmpeg's filter_complex
// DSL. Every stream reference uses an index from the canonical input binding
// list; the synthesizer never invents its own numbering.
package filtergraph

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"promoreel/internal/audiomix"
	"promoreel/internal/plan"
)

// Options adjusts synthesis beyond what the plan itself carries.
type Options struct {
	// SampleRate for the mixed audio; defaults to 44100.
	SampleRate int

	// Overlay describes optional drawtext layers burned into the video.
	Overlay Overlay
}

// Synthesize produces the complete filter graph for one render. The result
// exposes exactly two named pads: [vout] and [aout].
func Synthesize(p plan.RenderPlan, bindings plan.Bindings, opts Options) (string, error) {
	if p.Width <= 0 || p.Height <= 0 {
		return "", errors.New("invalid target resolution")
	}
	if p.FPS <= 0 {
		return "", errors.New("invalid target fps")
	}
	if len(p.AudioTracks) == 0 {
		return "", errors.New("plan has no audio tracks")
	}
	if opts.SampleRate <= 0 {
		opts.SampleRate = 44100
	}

	var stmts []string

	videoStmts, err := synthesizeVideo(p, bindings, opts.Overlay)
	if err != nil {
		return "", err
	}
	stmts = append(stmts, videoStmts...)

	audioStmts, err := synthesizeAudio(p, bindings, opts.SampleRate)
	if err != nil {
		return "", err
	}
	stmts = append(stmts, audioStmts...)

	return strings.Join(stmts, ";"), nil
}

func synthesizeVideo(p plan.RenderPlan, bindings plan.Bindings, ov Overlay) ([]string, error) {
	_, hasIntro := p.IntroSegment()
	mains := p.MainSegments()
	if len(mains) == 0 {
		return nil, errors.New("plan has no main image segments")
	}
	hasOverlay := ov.active()

	// Work out what each stage must call its output so the last stage lands
	// on [vout] without a wasted passthrough filter.
	concatOut := "vout"
	if hasOverlay {
		concatOut = "vbase"
	}
	mainOut := concatOut
	if hasIntro {
		mainOut = "vmain"
	}

	var stmts []string

	// Normalize every video input before any transition or concatenation:
	// scale, fill, SAR reset, frame-rate reset. Transitions on un-normalized
	// streams produce corrupt output.
	labels := make(map[int]string, len(p.Segments))
	for segIdx, seg := range p.Segments {
		binding, ok := bindings.ForSegment(segIdx)
		if !ok {
			return nil, fmt.Errorf("no input binding for segment %d", segIdx)
		}

		label := fmt.Sprintf("v%d", segIdx)
		if seg.Kind == plan.SegmentMainImage && len(mains) == 1 {
			// The single main image's normalized stream feeds the next stage
			// directly.
			label = mainOut
		}
		labels[segIdx] = label
		stmts = append(stmts, normalizeChain(binding.Index, label, p))
	}

	// Join the main images: cross-fade chain when transitions exist, plain
	// concat otherwise.
	if len(mains) > 1 {
		mainLabels := make([]string, 0, len(mains))
		for segIdx, seg := range p.Segments {
			if seg.Kind == plan.SegmentMainImage {
				mainLabels = append(mainLabels, labels[segIdx])
			}
		}

		if len(p.Transitions) == 0 {
			var refs strings.Builder
			for _, l := range mainLabels {
				fmt.Fprintf(&refs, "[%s]", l)
			}
			stmts = append(stmts, fmt.Sprintf("%sconcat=n=%d:v=1:a=0[%s]", refs.String(), len(mainLabels), mainOut))
		} else {
			chain, err := xfadeChain(mains, mainLabels, p.Transitions, mainOut)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, chain...)
		}
	}

	if hasIntro {
		introLabel := labels[0]
		stmts = append(stmts, fmt.Sprintf("[%s][%s]concat=n=2:v=1:a=0[%s]", introLabel, mainOut, concatOut))
	}

	if hasOverlay {
		stmts = append(stmts, fmt.Sprintf("[%s]%s[vout]", concatOut, ov.filters()))
	}

	return stmts, nil
}

// normalizeChain builds the deterministic per-input normalization: scale with
// the plan's fill policy, SAR reset, frame-rate reset, pixel format.
func normalizeChain(inputIndex int, outLabel string, p plan.RenderPlan) string {
	var fill string
	switch p.Scaling {
	case plan.ScaleCrop:
		fill = fmt.Sprintf(
			"scale=w=%d:h=%d:force_original_aspect_ratio=increase:flags=lanczos,crop=w=%d:h=%d",
			p.Width, p.Height, p.Width, p.Height)
	default:
		fill = fmt.Sprintf(
			"scale=w=%d:h=%d:force_original_aspect_ratio=decrease:flags=lanczos,pad=w=%d:h=%d:x=(ow-iw)/2:y=(oh-ih)/2:color=black",
			p.Width, p.Height, p.Width, p.Height)
	}
	return fmt.Sprintf("[%d:v]%s,setsar=1,fps=%d,format=yuv420p[%s]", inputIndex, fill, p.FPS, outLabel)
}

// xfadeChain accumulates pairwise cross-fades over the main sequence. Offsets
// sit at the logical segment boundaries; the input feeds were already extended
// by the transition overlap when the bindings were built, so the chain output
// spans exactly the narration window.
func xfadeChain(mains []plan.Segment, labels []string, transitions []plan.TransitionSpec, outLabel string) ([]string, error) {
	if len(transitions) != len(mains)-1 {
		return nil, fmt.Errorf("have %d transitions for %d main segments", len(transitions), len(mains))
	}

	var stmts []string
	current := labels[0]
	offset := mains[0].DurationSeconds

	for i, tr := range transitions {
		out := fmt.Sprintf("x%d", i+1)
		if i == len(transitions)-1 {
			out = outLabel
		}
		stmts = append(stmts, fmt.Sprintf(
			"[%s][%s]xfade=transition=%s:duration=%s:offset=%s[%s]",
			current, labels[i+1], tr.EffectName,
			formatFloat(tr.DurationSeconds), formatFloat(offset), out))
		current = out
		offset += mains[i+1].DurationSeconds
	}

	return stmts, nil
}

func synthesizeAudio(p plan.RenderPlan, bindings plan.Bindings, sampleRate int) ([]string, error) {
	introDur := 0.0
	if intro, ok := p.IntroSegment(); ok {
		introDur = intro.DurationSeconds
	}

	type chain struct {
		label string
		stmt  string
	}
	var chains []chain

	// Fixed mixing precedence: intro narration, main narration, background
	// bed. A track that is present is always mixed, never dropped.
	if track, ok := p.Track(audiomix.RoleIntroNarration); ok {
		binding, bok := bindings.ForRole(audiomix.RoleIntroNarration)
		if !bok {
			return nil, errors.New("intro narration track has no input binding")
		}
		steps := []string{
			fmt.Sprintf("atrim=0:%s", formatFloat(introDur)),
			"asetpts=PTS-STARTPTS",
			fmt.Sprintf("volume=%s", formatFloat(track.Volume)),
		}
		steps = append(steps, resampleSteps(sampleRate)...)
		chains = append(chains, chain{
			label: "aintro",
			stmt:  fmt.Sprintf("[%d:a]%s[aintro]", binding.Index, strings.Join(steps, ",")),
		})
	}

	narration, ok := p.Track(audiomix.RoleNarration)
	if !ok {
		return nil, errors.New("plan has no narration track")
	}
	narrationBinding, ok := bindings.ForRole(audiomix.RoleNarration)
	if !ok {
		return nil, errors.New("narration track has no input binding")
	}
	var steps []string
	if introDur > 0 {
		// Narration starts exactly when the intro ends.
		steps = append(steps, fmt.Sprintf("adelay=%d:all=1", int(introDur*1000)))
	}
	steps = append(steps, fmt.Sprintf("volume=%s", formatFloat(narration.Volume)))
	steps = append(steps, resampleSteps(sampleRate)...)
	chains = append(chains, chain{
		label: "avoice",
		stmt:  fmt.Sprintf("[%d:a]%s[avoice]", narrationBinding.Index, strings.Join(steps, ",")),
	})

	if track, ok := p.Track(audiomix.RoleBackgroundMusic); ok {
		binding, bok := bindings.ForRole(audiomix.RoleBackgroundMusic)
		if !bok {
			return nil, errors.New("background music track has no input binding")
		}
		total := p.TotalDurationSeconds
		steps := []string{
			fmt.Sprintf("atrim=0:%s", formatFloat(total)),
			"asetpts=PTS-STARTPTS",
			fmt.Sprintf("volume=%s", formatFloat(track.Volume)),
		}
		if track.FadeInSeconds > 0 {
			steps = append(steps, fmt.Sprintf("afade=t=in:st=0:d=%s", formatFloat(track.FadeInSeconds)))
		}
		if track.FadeOutSeconds > 0 {
			// The fade-out finishes exactly at the end of the video.
			start := total - track.FadeOutSeconds
			if start < 0 {
				start = 0
			}
			steps = append(steps, fmt.Sprintf("afade=t=out:st=%s:d=%s",
				formatFloat(start), formatFloat(track.FadeOutSeconds)))
		}
		steps = append(steps, resampleSteps(sampleRate)...)
		chains = append(chains, chain{
			label: "abed",
			stmt:  fmt.Sprintf("[%d:a]%s[abed]", binding.Index, strings.Join(steps, ",")),
		})
	}

	var stmts []string
	if len(chains) == 1 {
		// A single track still flows through its shaping chain.
		stmts = append(stmts, strings.Replace(chains[0].stmt, "["+chains[0].label+"]", "[aout]", 1))
		return stmts, nil
	}

	for _, c := range chains {
		stmts = append(stmts, c.stmt)
	}
	var refs strings.Builder
	for _, c := range chains {
		fmt.Fprintf(&refs, "[%s]", c.label)
	}
	stmts = append(stmts, fmt.Sprintf(
		"%samix=inputs=%d:duration=longest:dropout_transition=0:normalize=0[aout]",
		refs.String(), len(chains)))
	return stmts, nil
}

func resampleSteps(sampleRate int) []string {
	return []string{
		"aresample=async=1:first_pts=0",
		fmt.Sprintf("aformat=sample_rates=%d:channel_layouts=stereo", sampleRate),
	}
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

package plan

import (
	"fmt"

	"promoreel/internal/audiomix"
)

// StreamKind says which stream of an input the graph consumes.
type StreamKind string

const (
	StreamVideo StreamKind = "video"
	StreamAudio StreamKind = "audio"
)

// InputBinding is the canonical mapping from a logical asset to the numeric
// input index used by both the process invocation and the filter graph. The
// list is generated exactly once per plan; downstream code looks indices up
// here and never recomputes positions.
type InputBinding struct {
	Index  int
	Asset  MediaAsset
	Stream StreamKind

	// SegmentIndex points into RenderPlan.Segments for video inputs, -1 for
	// audio inputs.
	SegmentIndex int

	// Role is set for audio inputs.
	Role audiomix.Role

	// Loop marks a still image fed with -loop 1.
	Loop bool

	// StreamLoop marks an input tiled indefinitely (-stream_loop -1); only the
	// background bed uses it.
	StreamLoop bool

	// FeedSeconds bounds how long the input is fed into the graph. For still
	// images this is the segment duration plus the overlap consumed by the
	// following cross-fade.
	FeedSeconds float64
}

// Bindings is the ordered input list for one render.
type Bindings []InputBinding

// BuildBindings derives the input order from a plan in a single pass:
// intro image, main images, intro narration, main narration, background music.
func BuildBindings(p RenderPlan) (Bindings, error) {
	if len(p.Segments) == 0 {
		return nil, fmt.Errorf("cannot bind inputs for an empty plan")
	}

	var bindings Bindings
	next := 0

	mainOrdinal := 0
	for segIdx, seg := range p.Segments {
		feed := seg.DurationSeconds
		if seg.Kind == SegmentMainImage {
			// Extend the feed by the following transition's overlap so the
			// cross-fade chain still spans the full narration window.
			if tr, ok := transitionAfter(p.Transitions, mainOrdinal); ok {
				feed += tr.DurationSeconds
			}
			mainOrdinal++
		}
		bindings = append(bindings, InputBinding{
			Index:        next,
			Asset:        seg.Asset,
			Stream:       StreamVideo,
			SegmentIndex: segIdx,
			Loop:         true,
			FeedSeconds:  feed,
		})
		next++
	}

	for _, role := range []audiomix.Role{
		audiomix.RoleIntroNarration,
		audiomix.RoleNarration,
		audiomix.RoleBackgroundMusic,
	} {
		track, ok := p.Track(role)
		if !ok {
			continue
		}
		binding := InputBinding{
			Index:        next,
			Asset:        track.Asset,
			Stream:       StreamAudio,
			SegmentIndex: -1,
			Role:         role,
		}
		if track.Loop {
			binding.StreamLoop = true
			binding.FeedSeconds = p.TotalDurationSeconds
		}
		bindings = append(bindings, binding)
		next++
	}

	return bindings, nil
}

func transitionAfter(transitions []TransitionSpec, mainIndex int) (TransitionSpec, bool) {
	for _, tr := range transitions {
		if tr.BetweenMainIndex == mainIndex {
			return tr, true
		}
	}
	return TransitionSpec{}, false
}

// ForSegment returns the video binding backing a segment index.
func (b Bindings) ForSegment(segmentIndex int) (InputBinding, bool) {
	for _, binding := range b {
		if binding.Stream == StreamVideo && binding.SegmentIndex == segmentIndex {
			return binding, true
		}
	}
	return InputBinding{}, false
}

// ForRole returns the audio binding filling a mix role.
func (b Bindings) ForRole(role audiomix.Role) (InputBinding, bool) {
	for _, binding := range b {
		if binding.Stream == StreamAudio && binding.Role == role {
			return binding, true
		}
	}
	return InputBinding{}, false
}

// AudioCount returns how many audio inputs the render declares.
func (b Bindings) AudioCount() int {
	count := 0
	for _, binding := range b {
		if binding.Stream == StreamAudio {
			count++
		}
	}
	return count
}

// Package plan holds the immutable description of one render job: the segment
// timeline, the audio tracks, the transitions and the canonical input binding
// order. Everything downstream (filter graph, command line) reads from these
// values and never recomputes timing or indices on its own.
package plan

import (
	"fmt"
	"math"

	"promoreel/internal/audiomix"
)

// AssetKind distinguishes still images from audio files.
type AssetKind string

const (
	AssetImage AssetKind = "image"
	AssetAudio AssetKind = "audio"
)

// MediaAsset is a file on disk plus what we know about it. Images carry no
// intrinsic duration; audio durations come from probing. Assets are owned by
// the caller for their lifetime.
type MediaAsset struct {
	Path            string
	Kind            AssetKind
	DurationSeconds float64
}

// AudioTrack is one source in the final mix. Loop is true only for the
// background bed, which tiles to cover the whole output.
type AudioTrack struct {
	Asset           MediaAsset
	Role            audiomix.Role
	Volume          float64
	FadeInSeconds   float64
	FadeOutSeconds  float64
	Loop            bool
}

// SegmentKind identifies the slot a segment fills in the timeline.
type SegmentKind string

const (
	SegmentIntro     SegmentKind = "intro"
	SegmentMainImage SegmentKind = "main_image"
)

// Segment is a time-bounded slice of the output backed by one still image.
// StartSeconds is always derived so segments stay contiguous and
// non-overlapping.
type Segment struct {
	Kind            SegmentKind
	Asset           MediaAsset
	StartSeconds    float64
	DurationSeconds float64
}

// TransitionSpec is a cross-fade between adjacent main-image segments.
// BetweenMainIndex is relative to the main-image sequence: 0 joins the first
// and second product images. The intro never participates in a transition.
type TransitionSpec struct {
	BetweenMainIndex int
	EffectName       string
	DurationSeconds  float64
}

// ScalingMode is the orientation-aware fill policy decided at planning time.
type ScalingMode string

const (
	// ScaleCrop fills the frame by cropping overflow; used for landscape
	// targets where cropping product photos is acceptable.
	ScaleCrop ScalingMode = "crop"

	// ScalePad letterboxes instead of cropping; used for vertical short-form
	// targets where the subject must stay whole.
	ScalePad ScalingMode = "pad"
)

// RenderPlan is the aggregate root consumed by both the filter-graph
// synthesizer and the command builder. It is created fresh per render and
// never mutated after synthesis begins.
type RenderPlan struct {
	Width   int
	Height  int
	FPS     int
	CRF     int
	Scaling ScalingMode

	Segments    []Segment
	AudioTracks []AudioTrack
	Transitions []TransitionSpec

	TotalDurationSeconds float64
}

// MainSegments returns the product-image segments in timeline order.
func (p RenderPlan) MainSegments() []Segment {
	mains := make([]Segment, 0, len(p.Segments))
	for _, seg := range p.Segments {
		if seg.Kind == SegmentMainImage {
			mains = append(mains, seg)
		}
	}
	return mains
}

// IntroSegment returns the leading intro segment if the plan has one.
func (p RenderPlan) IntroSegment() (Segment, bool) {
	if len(p.Segments) > 0 && p.Segments[0].Kind == SegmentIntro {
		return p.Segments[0], true
	}
	return Segment{}, false
}

// Track returns the audio track filling the given role.
func (p RenderPlan) Track(role audiomix.Role) (AudioTrack, bool) {
	for _, track := range p.AudioTracks {
		if track.Role == role {
			return track, true
		}
	}
	return AudioTrack{}, false
}

// Validate checks the structural invariants of a finished plan: contiguous
// segments and a segment sum matching the total duration.
func (p RenderPlan) Validate() error {
	if len(p.Segments) == 0 {
		return fmt.Errorf("plan has no segments")
	}

	sum := 0.0
	cursor := 0.0
	for i, seg := range p.Segments {
		if seg.DurationSeconds <= 0 {
			return fmt.Errorf("segment %d has non-positive duration %v", i, seg.DurationSeconds)
		}
		if math.Abs(seg.StartSeconds-cursor) > timeEpsilon {
			return fmt.Errorf("segment %d starts at %v, expected %v", i, seg.StartSeconds, cursor)
		}
		cursor += seg.DurationSeconds
		sum += seg.DurationSeconds
	}

	if math.Abs(sum-p.TotalDurationSeconds) > timeEpsilon {
		return fmt.Errorf("segment durations sum to %v, total is %v", sum, p.TotalDurationSeconds)
	}

	for _, tr := range p.Transitions {
		mains := p.MainSegments()
		if tr.BetweenMainIndex < 0 || tr.BetweenMainIndex >= len(mains)-1 {
			return fmt.Errorf("transition index %d out of range for %d main segments", tr.BetweenMainIndex, len(mains))
		}
		if tr.DurationSeconds <= 0 {
			return fmt.Errorf("transition %d has non-positive duration %v", tr.BetweenMainIndex, tr.DurationSeconds)
		}
	}

	return nil
}

const timeEpsilon = 1e-6

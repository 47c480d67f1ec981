package plan

import (
	"errors"
	"fmt"
	"math/rand"

	"promoreel/internal/audiomix"
)

// MinSegmentSeconds is the floor for a single image's screen time. Many images
// over a very short narration would otherwise degenerate into zero-length
// segments; flooring stretches the total instead.
const MinSegmentSeconds = 1.0

// defaultIntroSeconds applies when an intro is enabled without an explicit or
// probed duration.
const defaultIntroSeconds = 5.0

// Request carries everything the planner needs. Durations are resolved by the
// caller (probed or defaulted) before planning; the planner itself is pure and
// deterministic for a given Request.
type Request struct {
	Images            []string
	NarrationPath     string
	NarrationDuration float64

	Width  int
	Height int
	FPS    int
	CRF    int

	EnableIntro            bool
	IntroImagePath         string
	IntroDuration          float64
	IntroNarrationPath     string
	IntroNarrationDuration float64

	EnableBackgroundMusic bool
	MusicPath             string
	MusicFadeIn           float64
	MusicFadeOut          float64

	// Volumes are pre-normalized gains per role (see audiomix).
	Volumes map[audiomix.Role]float64

	TransitionDuration float64
	TransitionEffects  []string

	// Seed makes transition effect selection reproducible.
	Seed int64
}

// Plan computes the segment timeline, transition assignment and audio track
// list for one render.
func Plan(req Request) (RenderPlan, error) {
	if len(req.Images) == 0 {
		return RenderPlan{}, errors.New("at least one image is required")
	}
	if req.NarrationDuration <= 0 {
		return RenderPlan{}, fmt.Errorf("narration duration %v must be positive", req.NarrationDuration)
	}
	if req.Width <= 0 || req.Height <= 0 {
		return RenderPlan{}, fmt.Errorf("invalid target resolution %dx%d", req.Width, req.Height)
	}
	if req.FPS <= 0 {
		return RenderPlan{}, errors.New("fps must be positive")
	}
	if req.EnableIntro && req.IntroImagePath == "" {
		return RenderPlan{}, errors.New("intro enabled without an intro image")
	}
	if req.EnableBackgroundMusic && req.MusicPath == "" {
		return RenderPlan{}, errors.New("background music enabled without a music path")
	}

	perImage := req.NarrationDuration / float64(len(req.Images))
	if perImage < MinSegmentSeconds {
		perImage = MinSegmentSeconds
	}

	p := RenderPlan{
		Width:   req.Width,
		Height:  req.Height,
		FPS:     req.FPS,
		CRF:     req.CRF,
		Scaling: scalingFor(req.Width, req.Height),
	}

	cursor := 0.0
	if req.EnableIntro {
		introDur := req.IntroDuration
		if introDur <= 0 {
			introDur = req.IntroNarrationDuration
		}
		if introDur <= 0 {
			introDur = defaultIntroSeconds
		}
		p.Segments = append(p.Segments, Segment{
			Kind:            SegmentIntro,
			Asset:           MediaAsset{Path: req.IntroImagePath, Kind: AssetImage},
			StartSeconds:    cursor,
			DurationSeconds: introDur,
		})
		cursor += introDur
	}

	for _, image := range req.Images {
		p.Segments = append(p.Segments, Segment{
			Kind:            SegmentMainImage,
			Asset:           MediaAsset{Path: image, Kind: AssetImage},
			StartSeconds:    cursor,
			DurationSeconds: perImage,
		})
		cursor += perImage
	}
	p.TotalDurationSeconds = cursor

	p.Transitions = pickTransitions(p.MainSegments(), req)
	p.AudioTracks = buildAudioTracks(req)

	if err := p.Validate(); err != nil {
		return RenderPlan{}, fmt.Errorf("planner produced an invalid plan: %w", err)
	}
	return p, nil
}

// scalingFor decides the orientation-aware fill policy: landscape frames crop
// to fill, vertical (and square) frames letterbox so product photos keep their
// subject intact.
func scalingFor(width, height int) ScalingMode {
	if width > height {
		return ScaleCrop
	}
	return ScalePad
}

// pickTransitions assigns one cross-fade per adjacent pair of main segments.
// Effect choice is random but reproducible under the request seed.
func pickTransitions(mains []Segment, req Request) []TransitionSpec {
	if len(mains) < 2 || req.TransitionDuration <= 0 || len(req.TransitionEffects) == 0 {
		return nil
	}

	rng := rand.New(rand.NewSource(req.Seed))
	specs := make([]TransitionSpec, 0, len(mains)-1)
	for i := 0; i < len(mains)-1; i++ {
		duration := req.TransitionDuration
		// A transition cannot outlast the shorter of its neighbours.
		limit := mains[i].DurationSeconds
		if mains[i+1].DurationSeconds < limit {
			limit = mains[i+1].DurationSeconds
		}
		if duration > limit/2 {
			duration = limit / 2
		}
		specs = append(specs, TransitionSpec{
			BetweenMainIndex: i,
			EffectName:       req.TransitionEffects[rng.Intn(len(req.TransitionEffects))],
			DurationSeconds:  duration,
		})
	}
	return specs
}

func buildAudioTracks(req Request) []AudioTrack {
	var tracks []AudioTrack

	if req.EnableIntro && req.IntroNarrationPath != "" {
		tracks = append(tracks, AudioTrack{
			Asset: MediaAsset{
				Path:            req.IntroNarrationPath,
				Kind:            AssetAudio,
				DurationSeconds: req.IntroNarrationDuration,
			},
			Role:   audiomix.RoleIntroNarration,
			Volume: volumeFor(req.Volumes, audiomix.RoleIntroNarration, 0.9),
		})
	}

	tracks = append(tracks, AudioTrack{
		Asset: MediaAsset{
			Path:            req.NarrationPath,
			Kind:            AssetAudio,
			DurationSeconds: req.NarrationDuration,
		},
		Role:   audiomix.RoleNarration,
		Volume: volumeFor(req.Volumes, audiomix.RoleNarration, 1.0),
	})

	if req.EnableBackgroundMusic {
		tracks = append(tracks, AudioTrack{
			Asset:          MediaAsset{Path: req.MusicPath, Kind: AssetAudio},
			Role:           audiomix.RoleBackgroundMusic,
			Volume:         volumeFor(req.Volumes, audiomix.RoleBackgroundMusic, 0.2),
			FadeInSeconds:  req.MusicFadeIn,
			FadeOutSeconds: req.MusicFadeOut,
			Loop:           true,
		})
	}

	return tracks
}

func volumeFor(volumes map[audiomix.Role]float64, role audiomix.Role, fallback float64) float64 {
	if v, ok := volumes[role]; ok && v > 0 {
		return v
	}
	return fallback
}

package plan

import (
	"math"
	"testing"

	"promoreel/internal/audiomix"
)

func baseRequest(images int) Request {
	paths := make([]string, images)
	for i := range paths {
		paths[i] = "/assets/product_" + string(rune('a'+i)) + ".jpg"
	}
	return Request{
		Images:             paths,
		NarrationPath:      "/assets/voice.mp3",
		NarrationDuration:  9,
		Width:              1920,
		Height:             1080,
		FPS:                30,
		CRF:                22,
		TransitionDuration: 1.0,
		TransitionEffects:  []string{"fade", "wipeleft", "dissolve"},
		Seed:               42,
	}
}

func TestPlanMainSegmentsCoverNarration(t *testing.T) {
	for _, count := range []int{1, 2, 3, 5, 8} {
		req := baseRequest(count)
		req.NarrationDuration = 33.5

		p, err := Plan(req)
		if err != nil {
			t.Fatalf("Plan(%d images): %v", count, err)
		}

		sum := 0.0
		for _, seg := range p.MainSegments() {
			sum += seg.DurationSeconds
		}
		if math.Abs(sum-req.NarrationDuration) > 1e-9 {
			t.Fatalf("%d images: main segments sum to %v, want %v", count, sum, req.NarrationDuration)
		}
		if math.Abs(p.TotalDurationSeconds-req.NarrationDuration) > 1e-9 {
			t.Fatalf("%d images: total %v, want %v", count, p.TotalDurationSeconds, req.NarrationDuration)
		}
	}
}

func TestPlanTransitionCount(t *testing.T) {
	cases := []struct {
		images int
		want   int
	}{
		{1, 0},
		{2, 1},
		{3, 2},
		{7, 6},
	}
	for _, tc := range cases {
		p, err := Plan(baseRequest(tc.images))
		if err != nil {
			t.Fatalf("Plan(%d): %v", tc.images, err)
		}
		if len(p.Transitions) != tc.want {
			t.Fatalf("%d images: got %d transitions, want %d", tc.images, len(p.Transitions), tc.want)
		}
	}
}

func TestPlanIntroExtendsTotal(t *testing.T) {
	req := baseRequest(3)
	req.NarrationDuration = 20
	req.EnableIntro = true
	req.IntroImagePath = "/assets/logo.png"
	req.IntroDuration = 5

	p, err := Plan(req)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if math.Abs(p.TotalDurationSeconds-25) > 1e-9 {
		t.Fatalf("total %v, want 25", p.TotalDurationSeconds)
	}

	intro, ok := p.IntroSegment()
	if !ok {
		t.Fatalf("expected an intro segment")
	}
	if intro.StartSeconds != 0 || intro.DurationSeconds != 5 {
		t.Fatalf("intro segment %+v", intro)
	}

	mains := p.MainSegments()
	if mains[0].StartSeconds != 5 {
		t.Fatalf("first main segment starts at %v, want 5", mains[0].StartSeconds)
	}
}

func TestPlanIntroDurationFromNarration(t *testing.T) {
	req := baseRequest(2)
	req.EnableIntro = true
	req.IntroImagePath = "/assets/logo.png"
	req.IntroNarrationPath = "/assets/hook.mp3"
	req.IntroNarrationDuration = 3.2

	p, err := Plan(req)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	intro, _ := p.IntroSegment()
	if intro.DurationSeconds != 3.2 {
		t.Fatalf("intro duration %v, want probed 3.2", intro.DurationSeconds)
	}
}

func TestPlanMinimumSegmentFloor(t *testing.T) {
	req := baseRequest(10)
	req.NarrationDuration = 4 // 0.4s per image without the floor

	p, err := Plan(req)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	for _, seg := range p.MainSegments() {
		if seg.DurationSeconds < MinSegmentSeconds {
			t.Fatalf("segment duration %v below floor", seg.DurationSeconds)
		}
	}
	// Flooring stretches the total rather than truncating segments.
	if p.TotalDurationSeconds < 10*MinSegmentSeconds {
		t.Fatalf("total %v too short for floored segments", p.TotalDurationSeconds)
	}
}

func TestPlanTransitionSelectionIsSeeded(t *testing.T) {
	first, err := Plan(baseRequest(6))
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	second, err := Plan(baseRequest(6))
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	for i := range first.Transitions {
		if first.Transitions[i].EffectName != second.Transitions[i].EffectName {
			t.Fatalf("same seed produced different effects at %d: %q vs %q",
				i, first.Transitions[i].EffectName, second.Transitions[i].EffectName)
		}
	}
}

func TestPlanTransitionClampedToNeighbours(t *testing.T) {
	req := baseRequest(4)
	req.NarrationDuration = 4.8 // 1.2s per image
	req.TransitionDuration = 1.0

	p, err := Plan(req)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	for _, tr := range p.Transitions {
		if tr.DurationSeconds > 0.6+1e-9 {
			t.Fatalf("transition %v longer than half the shorter neighbour", tr.DurationSeconds)
		}
	}
}

func TestPlanScalingPolicy(t *testing.T) {
	landscape, err := Plan(baseRequest(2))
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if landscape.Scaling != ScaleCrop {
		t.Fatalf("landscape target should crop, got %v", landscape.Scaling)
	}

	req := baseRequest(2)
	req.Width, req.Height = 1080, 1920
	vertical, err := Plan(req)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if vertical.Scaling != ScalePad {
		t.Fatalf("vertical target should pad, got %v", vertical.Scaling)
	}
}

func TestPlanAudioTrackOrderAndMusic(t *testing.T) {
	req := baseRequest(2)
	req.EnableIntro = true
	req.IntroImagePath = "/assets/logo.png"
	req.IntroNarrationPath = "/assets/hook.mp3"
	req.IntroNarrationDuration = 3
	req.EnableBackgroundMusic = true
	req.MusicPath = "/assets/bed.mp3"
	req.MusicFadeIn = 1
	req.MusicFadeOut = 2
	req.Volumes = map[audiomix.Role]float64{
		audiomix.RoleNarration:       1.0,
		audiomix.RoleIntroNarration:  0.9,
		audiomix.RoleBackgroundMusic: 0.2,
	}

	p, err := Plan(req)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(p.AudioTracks) != 3 {
		t.Fatalf("expected 3 audio tracks, got %d", len(p.AudioTracks))
	}

	music, ok := p.Track(audiomix.RoleBackgroundMusic)
	if !ok || !music.Loop {
		t.Fatalf("background music must loop: %+v", music)
	}
	if music.FadeOutSeconds != 2 {
		t.Fatalf("music fade-out %v, want 2", music.FadeOutSeconds)
	}

	narration, ok := p.Track(audiomix.RoleNarration)
	if !ok || narration.Loop {
		t.Fatalf("narration must exist and never loop: %+v", narration)
	}
}

func TestPlanRejectsBadRequests(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Request)
	}{
		{"no images", func(r *Request) { r.Images = nil }},
		{"zero narration", func(r *Request) { r.NarrationDuration = 0 }},
		{"bad resolution", func(r *Request) { r.Width = 0 }},
		{"intro without image", func(r *Request) { r.EnableIntro = true }},
		{"music without path", func(r *Request) { r.EnableBackgroundMusic = true }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := baseRequest(2)
			tc.mutate(&req)
			if _, err := Plan(req); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

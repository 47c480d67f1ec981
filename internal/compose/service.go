// Package compose is the top of the render pipeline: it validates inputs,
// probes durations, applies the audio safety policy, plans the timeline and
// drives the encoder. One Request produces one output file.
package compose

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"promoreel/internal/audiomix"
	"promoreel/internal/config"
	"promoreel/internal/filtergraph"
	"promoreel/internal/paths"
	"promoreel/internal/plan"
	"promoreel/internal/probe"
	"promoreel/internal/proc"
	"promoreel/internal/render"
	"promoreel/internal/tools"
)

// IntroOptions describes the optional leading segment. Zero values fall back
// to the intro config section.
type IntroOptions struct {
	// DurationSeconds fixes the intro length. When zero the intro narration's
	// probed duration applies, then the configured default.
	DurationSeconds float64

	// ImagePath is the intro still, typically a logo card.
	ImagePath string

	// NarrationPath is an optional short narration played over the intro.
	NarrationPath string
}

// Options adjusts one render. Every field has a documented default drawn from
// the workspace config.
type Options struct {
	// Resolution overrides the target frame as "WxH". Empty means the config
	// video (or short-form) section.
	Resolution string

	// FPS overrides the output frame rate. Zero means the configured rate.
	FPS int

	// Quality is one of low, medium, high, ultra. Empty means the configured
	// quality.
	Quality string

	// EnableBackgroundMusic mixes the looping bed under the narration.
	EnableBackgroundMusic bool

	// MusicPath overrides the configured bed file.
	MusicPath string

	// EnableIntro prepends the intro segment.
	EnableIntro bool
	Intro       IntroOptions

	// Title and BuyURL feed the drawtext overlays when the overlay config
	// enables them. Empty values disable the respective layer.
	Title  string
	BuyURL string

	// Seed drives transition effect selection. Zero picks a wall-clock seed;
	// tests pass a fixed value for reproducibility.
	Seed int64
}

// Request is one unit of render work.
type Request struct {
	Images        []string
	NarrationPath string
	OutputPath    string
	Options       Options
}

// Job is what a Reporter learns when a render starts.
type Job struct {
	OutputPath   string
	TotalSeconds float64
}

// Result captures the outcome of a render attempt.
type Result struct {
	OutputPath string
	LogPath    string
	Elapsed    time.Duration
	Err        error
}

// Reporter receives render lifecycle notifications. Progress delivery is
// asynchronous and never gates completion.
type Reporter interface {
	Start(job Job)
	Progress(fraction float64)
	Complete(result Result)
}

// Service coordinates renders for one workspace. Concurrent calls share no
// mutable state beyond the filesystem; callers wanting throughput should bound
// parallelism themselves because each render saturates the encoder.
type Service struct {
	Workspace paths.Workspace
	Config    config.Config
	Runner    proc.Runner
	Logger    *log.Logger
	Reporter  Reporter

	FFmpegPath  string
	FFprobePath string
}

// NewService resolves the encoder binaries and prepares the workspace
// directories.
func NewService(ctx context.Context, ws paths.Workspace, cfg config.Config, runner proc.Runner, logger *log.Logger) (*Service, error) {
	if runner == nil {
		runner = proc.CmdRunner{}
	}
	if err := ws.EnsureDirs(); err != nil {
		return nil, err
	}

	ffmpegPath, err := tools.FFmpeg()
	if err != nil {
		return nil, err
	}
	ffprobePath, err := tools.FFprobe()
	if err != nil {
		return nil, err
	}

	return &Service{
		Workspace:   ws,
		Config:      cfg,
		Runner:      runner,
		Logger:      logger,
		FFmpegPath:  ffmpegPath,
		FFprobePath: ffprobePath,
	}, nil
}

// RenderSlideshow assembles a landscape video from the request's images and
// narration. Single-image and multi-image requests are the same operation.
func (s *Service) RenderSlideshow(ctx context.Context, req Request) (string, error) {
	width, height := s.Config.Video.Width, s.Config.Video.Height
	return s.render(ctx, req, width, height)
}

// RenderShortForm runs the same pipeline against the vertical short-form
// target, which letterboxes instead of cropping.
func (s *Service) RenderShortForm(ctx context.Context, req Request) (string, error) {
	width, height := s.Config.ShortForm.Width, s.Config.ShortForm.Height
	return s.render(ctx, req, width, height)
}

func (s *Service) render(ctx context.Context, req Request, width, height int) (string, error) {
	opts := req.Options

	if res := strings.TrimSpace(opts.Resolution); res != "" {
		w, h, err := config.ParseResolution(res)
		if err != nil {
			return "", err
		}
		width, height = w, h
	}
	fps := opts.FPS
	if fps <= 0 {
		fps = s.Config.Video.FPS
	}
	qualityName := opts.Quality
	if qualityName == "" {
		qualityName = s.Config.Video.Quality
	}
	quality, err := config.ParseQuality(qualityName)
	if err != nil {
		return "", err
	}

	introImage := opts.Intro.ImagePath
	if opts.EnableIntro && introImage == "" {
		introImage = s.Config.Intro.ImagePath
	}
	introNarration := opts.Intro.NarrationPath
	if opts.EnableIntro && introNarration == "" {
		introNarration = s.Config.Intro.Narration
	}
	musicPath := opts.MusicPath
	if opts.EnableBackgroundMusic && musicPath == "" {
		musicPath = s.Config.Music.Path
	}

	if err := s.validateInputs(req, introImage, introNarration, musicPath); err != nil {
		return "", err
	}

	prober := probe.New(s.FFprobePath, s.Runner)
	narrationDuration := prober.DurationOrDefault(ctx, req.NarrationPath, s.Logger)

	introDuration := opts.Intro.DurationSeconds
	introNarrationDuration := 0.0
	if opts.EnableIntro {
		if introNarration != "" {
			introNarrationDuration = prober.DurationOrDefault(ctx, introNarration, s.Logger)
		}
		if introDuration <= 0 && introNarrationDuration <= 0 {
			introDuration = s.Config.Intro.DurationSec
		}
	}

	volumes := s.safeVolumes(opts.EnableIntro && introNarration != "", opts.EnableBackgroundMusic)

	policy := s.Config.Policy()
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	p, err := plan.Plan(plan.Request{
		Images:                 req.Images,
		NarrationPath:          req.NarrationPath,
		NarrationDuration:      narrationDuration,
		Width:                  width,
		Height:                 height,
		FPS:                    fps,
		CRF:                    quality.CRF(),
		EnableIntro:            opts.EnableIntro,
		IntroImagePath:         introImage,
		IntroDuration:          introDuration,
		IntroNarrationPath:     introNarration,
		IntroNarrationDuration: introNarrationDuration,
		EnableBackgroundMusic:  opts.EnableBackgroundMusic,
		MusicPath:              musicPath,
		MusicFadeIn:            policy.ClampFade(s.Config.Music.FadeInSec),
		MusicFadeOut:           policy.ClampFade(s.Config.Music.FadeOutSec),
		Volumes:                volumes,
		TransitionDuration:     s.Config.Transitions.DurationSec,
		TransitionEffects:      s.Config.Transitions.Effects,
		Seed:                   seed,
	})
	if err != nil {
		return "", fmt.Errorf("plan render: %w", err)
	}

	bindings, err := plan.BuildBindings(p)
	if err != nil {
		return "", err
	}

	graph, err := filtergraph.Synthesize(p, bindings, filtergraph.Options{
		SampleRate: s.Config.Audio.SampleRate,
		Overlay:    s.overlayFor(opts, p),
	})
	if err != nil {
		return "", fmt.Errorf("synthesize filter graph: %w", err)
	}

	outputPath := req.OutputPath
	if outputPath == "" {
		outputPath = filepath.Join(s.Workspace.OutputDir, "reel.mp4")
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return "", fmt.Errorf("ensure output directory: %w", err)
	}

	args, err := render.BuildArgs(p, bindings, graph, outputPath, render.Encoding{
		CRF:              quality.CRF(),
		AudioCodec:       s.Config.Audio.ACodec,
		AudioBitrateKbps: s.Config.Audio.BitrateKbps,
		SampleRate:       s.Config.Audio.SampleRate,
		Channels:         s.Config.Audio.Channels,
	})
	if err != nil {
		return "", err
	}

	logPath := s.renderLogPath(outputPath)
	logFile, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("open render log: %w", err)
	}
	defer logFile.Close()

	if s.Reporter != nil {
		s.Reporter.Start(Job{OutputPath: outputPath, TotalSeconds: p.TotalDurationSeconds})
	}

	executor := &render.Executor{
		FFmpegPath: s.FFmpegPath,
		Runner:     s.Runner,
		Limits:     s.limits(),
		Logger:     s.Logger,
		LogSink:    logFile,
	}
	if s.Reporter != nil {
		executor.OnProgress = s.Reporter.Progress
	}

	start := time.Now()
	runErr := executor.Execute(ctx, args, outputPath, p.TotalDurationSeconds)
	result := Result{
		OutputPath: outputPath,
		LogPath:    logPath,
		Elapsed:    time.Since(start),
		Err:        runErr,
	}
	if s.Reporter != nil {
		s.Reporter.Complete(result)
	}
	if runErr != nil {
		return "", runErr
	}
	return outputPath, nil
}

// validateInputs stats every supplied asset before any planning or probing.
func (s *Service) validateInputs(req Request, introImage, introNarration, musicPath string) error {
	if len(req.Images) == 0 {
		return fmt.Errorf("at least one image is required")
	}

	required := make([]string, 0, len(req.Images)+3)
	required = append(required, req.Images...)
	required = append(required, req.NarrationPath)
	if req.Options.EnableIntro {
		required = append(required, introImage)
		if introNarration != "" {
			required = append(required, introNarration)
		}
	}
	if req.Options.EnableBackgroundMusic {
		required = append(required, musicPath)
	}

	for _, path := range required {
		if strings.TrimSpace(path) == "" {
			return &InputNotFoundError{Path: path}
		}
		exists, err := paths.FileExists(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		if !exists {
			return &InputNotFoundError{Path: path}
		}
	}
	return nil
}

// safeVolumes runs the configured gains through the safety policy: per-role
// ceilings first, then a clipping check over the active set. A clipping risk
// applies the recommended scale-down rather than aborting.
func (s *Service) safeVolumes(hasIntroNarration, hasMusic bool) map[audiomix.Role]float64 {
	policy := s.Config.Policy()
	configured := map[audiomix.Role]float64{
		audiomix.RoleNarration: s.Config.Audio.Volumes.Narration,
	}
	if hasIntroNarration {
		configured[audiomix.RoleIntroNarration] = s.Config.Audio.Volumes.IntroNarration
	}
	if hasMusic {
		configured[audiomix.RoleBackgroundMusic] = s.Config.Audio.Volumes.BackgroundMusic
	}

	safe := make(map[audiomix.Role]float64, len(configured))
	for role, value := range configured {
		normalized, clamped := policy.NormalizeVolume(value, role)
		if clamped {
			s.logf("volume for %s clamped from %v to %v", role, value, normalized)
		}
		safe[role] = normalized
	}

	report := policy.CheckClipping(safe)
	if report.WillClip {
		s.logf("mix would clip at total gain %.2f; applying recommended gains", report.TotalGain)
		for role, value := range report.Recommended {
			safe[role] = value
		}
	}
	return safe
}

// overlayFor maps request metadata onto the drawtext overlay config. The
// title card shows over the intro when there is one, otherwise over the first
// seconds of the video.
func (s *Service) overlayFor(opts Options, p plan.RenderPlan) filtergraph.Overlay {
	overlay := filtergraph.Overlay{
		FontFile:  s.Config.Overlay.FontFile,
		FontColor: s.Config.Overlay.FontColor,
	}
	if s.Config.Overlay.ShowTitle && strings.TrimSpace(opts.Title) != "" {
		overlay.Title = opts.Title
		if intro, ok := p.IntroSegment(); ok {
			overlay.TitleEnd = intro.DurationSeconds
		} else {
			overlay.TitleEnd = 4
			if p.TotalDurationSeconds < overlay.TitleEnd {
				overlay.TitleEnd = p.TotalDurationSeconds
			}
		}
	}
	if s.Config.Overlay.ShowBuyURL {
		overlay.BuyURL = opts.BuyURL
	}
	return overlay
}

func (s *Service) limits() render.Limits {
	r := s.Config.Render
	return render.Limits{
		TimeoutBase:      time.Duration(r.TimeoutBaseSec * float64(time.Second)),
		TimeoutPerSecond: time.Duration(r.TimeoutPerSecond * float64(time.Second)),
		TimeoutCeiling:   time.Duration(r.TimeoutCeilingSec * float64(time.Second)),
		MinOutputBytes:   r.MinOutputBytes,
	}
}

func (s *Service) renderLogPath(outputPath string) string {
	base := strings.TrimSuffix(filepath.Base(outputPath), filepath.Ext(outputPath))
	if base == "" {
		base = "render"
	}
	return filepath.Join(s.Workspace.LogsDir, base+".log")
}

func (s *Service) logf(format string, args ...any) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
	}
}

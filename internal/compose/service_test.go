package compose

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"promoreel/internal/audiomix"
	"promoreel/internal/config"
	"promoreel/internal/paths"
	"promoreel/internal/proc"
)

const (
	fakeFFmpeg  = "/opt/fake/ffmpeg"
	fakeFFprobe = "/opt/fake/ffprobe"
)

// pipelineRunner answers ffprobe with a fixed duration and ffmpeg by writing
// a plausible output file.
type pipelineRunner struct {
	duration    string
	ffmpegCalls [][]string
	probeCalls  int
}

func (r *pipelineRunner) Run(ctx context.Context, command string, args []string, opts proc.RunOptions) (proc.RunResult, error) {
	switch command {
	case fakeFFprobe:
		r.probeCalls++
		return proc.RunResult{Stdout: []byte(r.duration + "\n")}, nil
	case fakeFFmpeg:
		r.ffmpegCalls = append(r.ffmpegCalls, args)
		if opts.Stderr != nil {
			fmt.Fprintf(opts.Stderr, "time=00:00:05.00\r")
		}
		output := args[len(args)-1]
		return proc.RunResult{}, os.WriteFile(output, make([]byte, 8192), 0o644)
	default:
		return proc.RunResult{}, fmt.Errorf("unexpected command %s", command)
	}
}

type recordingReporter struct {
	started   []Job
	fractions []float64
	completed []Result
}

func (r *recordingReporter) Start(job Job)              { r.started = append(r.started, job) }
func (r *recordingReporter) Progress(fraction float64) { r.fractions = append(r.fractions, fraction) }
func (r *recordingReporter) Complete(result Result)    { r.completed = append(r.completed, result) }

func testService(t *testing.T, runner proc.Runner) *Service {
	t.Helper()
	root := t.TempDir()
	ws := paths.Workspace{
		Root:       root,
		ConfigFile: filepath.Join(root, "promoreel.yaml"),
		OutputDir:  filepath.Join(root, "out"),
		WorkDir:    filepath.Join(root, "work"),
		LogsDir:    filepath.Join(root, "logs"),
	}
	if err := ws.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs: %v", err)
	}
	return &Service{
		Workspace:   ws,
		Config:      config.Default(),
		Runner:      runner,
		FFmpegPath:  fakeFFmpeg,
		FFprobePath: fakeFFprobe,
	}
}

func writeAsset(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("asset"), 0o644); err != nil {
		t.Fatalf("write asset: %v", err)
	}
	return path
}

func TestRenderSlideshow(t *testing.T) {
	runner := &pipelineRunner{duration: "9.0"}
	svc := testService(t, runner)
	reporter := &recordingReporter{}
	svc.Reporter = reporter

	assets := t.TempDir()
	req := Request{
		Images: []string{
			writeAsset(t, assets, "a.jpg"),
			writeAsset(t, assets, "b.jpg"),
			writeAsset(t, assets, "c.jpg"),
		},
		NarrationPath: writeAsset(t, assets, "voice.mp3"),
		OutputPath:    filepath.Join(svc.Workspace.OutputDir, "reel.mp4"),
		Options:       Options{Seed: 1},
	}

	output, err := svc.RenderSlideshow(context.Background(), req)
	if err != nil {
		t.Fatalf("RenderSlideshow: %v", err)
	}
	if output != req.OutputPath {
		t.Fatalf("output %s, want %s", output, req.OutputPath)
	}

	info, err := os.Stat(output)
	if err != nil || info.Size() < 1024 {
		t.Fatalf("output missing or trivially small: %v %v", info, err)
	}

	if runner.probeCalls != 1 {
		t.Fatalf("probe called %d times, want 1", runner.probeCalls)
	}
	if len(runner.ffmpegCalls) != 1 {
		t.Fatalf("ffmpeg called %d times, want 1", len(runner.ffmpegCalls))
	}
	joined := strings.Join(runner.ffmpegCalls[0], " ")
	if !strings.Contains(joined, "-filter_complex") {
		t.Fatalf("ffmpeg args missing filter graph:\n%s", joined)
	}
	if !strings.Contains(joined, "crop=w=1920:h=1080") {
		t.Fatalf("landscape render should crop to fill:\n%s", joined)
	}

	if len(reporter.started) != 1 || reporter.started[0].TotalSeconds != 9 {
		t.Fatalf("reporter start %+v, want one 9s job", reporter.started)
	}
	if len(reporter.fractions) == 0 {
		t.Fatalf("reporter never saw progress")
	}
	if len(reporter.completed) != 1 || reporter.completed[0].Err != nil {
		t.Fatalf("reporter completion %+v", reporter.completed)
	}

	logPath := reporter.completed[0].LogPath
	if _, err := os.Stat(logPath); err != nil {
		t.Fatalf("render log missing: %v", err)
	}
}

func TestRenderShortFormPads(t *testing.T) {
	runner := &pipelineRunner{duration: "6.0"}
	svc := testService(t, runner)

	assets := t.TempDir()
	req := Request{
		Images:        []string{writeAsset(t, assets, "a.jpg"), writeAsset(t, assets, "b.jpg")},
		NarrationPath: writeAsset(t, assets, "voice.mp3"),
		OutputPath:    filepath.Join(svc.Workspace.OutputDir, "short.mp4"),
		Options:       Options{Seed: 1},
	}

	if _, err := svc.RenderShortForm(context.Background(), req); err != nil {
		t.Fatalf("RenderShortForm: %v", err)
	}

	joined := strings.Join(runner.ffmpegCalls[0], " ")
	if !strings.Contains(joined, "pad=w=1080:h=1920") {
		t.Fatalf("short form must letterbox to the vertical frame:\n%s", joined)
	}
	if strings.Contains(joined, "crop=") {
		t.Fatalf("short form must not crop product photos:\n%s", joined)
	}
}

func TestRenderMissingInput(t *testing.T) {
	runner := &pipelineRunner{duration: "9.0"}
	svc := testService(t, runner)

	assets := t.TempDir()
	req := Request{
		Images:        []string{filepath.Join(assets, "nope.jpg")},
		NarrationPath: writeAsset(t, assets, "voice.mp3"),
	}

	_, err := svc.RenderSlideshow(context.Background(), req)
	var notFound *InputNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected InputNotFoundError, got %v", err)
	}
	if notFound.Path != req.Images[0] {
		t.Fatalf("error names %s, want %s", notFound.Path, req.Images[0])
	}
	if runner.probeCalls != 0 || len(runner.ffmpegCalls) != 0 {
		t.Fatalf("no process may run for missing inputs")
	}
}

func TestRenderWithIntroAndMusic(t *testing.T) {
	runner := &pipelineRunner{duration: "20.0"}
	svc := testService(t, runner)

	assets := t.TempDir()
	req := Request{
		Images:        []string{writeAsset(t, assets, "a.jpg"), writeAsset(t, assets, "b.jpg")},
		NarrationPath: writeAsset(t, assets, "voice.mp3"),
		OutputPath:    filepath.Join(svc.Workspace.OutputDir, "full.mp4"),
		Options: Options{
			Seed:                  1,
			EnableIntro:           true,
			Intro:                 IntroOptions{ImagePath: writeAsset(t, assets, "logo.png"), DurationSeconds: 5},
			EnableBackgroundMusic: true,
			MusicPath:             writeAsset(t, assets, "bed.mp3"),
			Title:                 "Walnut Desk Organizer",
			BuyURL:                "shop.example.com/desk",
		},
	}

	if _, err := svc.RenderSlideshow(context.Background(), req); err != nil {
		t.Fatalf("RenderSlideshow: %v", err)
	}

	joined := strings.Join(runner.ffmpegCalls[0], " ")
	for _, fragment := range []string{
		"-stream_loop -1",
		"concat=n=2:v=1:a=0",
		"amix=inputs=2",
		"drawtext=text='Walnut Desk Organizer'",
		"drawtext=text='shop.example.com/desk'",
		// intro 5s + narration 20s
		"-t 25 ",
	} {
		if !strings.Contains(joined, fragment) {
			t.Fatalf("ffmpeg args missing %q:\n%s", fragment, joined)
		}
	}
}

func TestSafeVolumesAppliesClippingRecommendation(t *testing.T) {
	svc := testService(t, &pipelineRunner{duration: "9.0"})
	svc.Config.Audio.Volumes.Narration = 1.0
	svc.Config.Audio.Volumes.IntroNarration = 0.9
	svc.Config.Audio.Volumes.BackgroundMusic = 0.35

	safe := svc.safeVolumes(true, true)

	total := 0.0
	for _, v := range safe {
		total += v
	}
	if total > svc.Config.Audio.SafeTotal {
		t.Fatalf("total gain %v still exceeds safe ceiling %v", total, svc.Config.Audio.SafeTotal)
	}

	// Relative balance must survive the scale-down.
	if safe[audiomix.RoleNarration] <= safe[audiomix.RoleIntroNarration] {
		t.Fatalf("narration should stay louder than intro narration: %v", safe)
	}
	if safe[audiomix.RoleBackgroundMusic] >= safe[audiomix.RoleNarration] {
		t.Fatalf("bed should stay quieter than narration: %v", safe)
	}
}

func TestSafeVolumesClampsToRoleCeilings(t *testing.T) {
	svc := testService(t, &pipelineRunner{duration: "9.0"})
	svc.Config.Audio.Volumes.BackgroundMusic = 0.9

	safe := svc.safeVolumes(false, true)
	ceiling := svc.Config.Audio.Maximum.BackgroundMusic
	if safe[audiomix.RoleBackgroundMusic] > ceiling {
		t.Fatalf("bed gain %v exceeds ceiling %v", safe[audiomix.RoleBackgroundMusic], ceiling)
	}
}

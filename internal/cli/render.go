package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"promoreel/internal/compose"
	"promoreel/internal/config"
	"promoreel/internal/logx"
	"promoreel/internal/paths"
	"promoreel/internal/tui"
	"promoreel/pkg/jobspec"
)

var (
	renderJobFile    string
	renderImages     []string
	renderNarration  string
	renderOutput     string
	renderTitle      string
	renderBuyURL     string
	renderResolution string
	renderFPS        int
	renderQuality    string
	renderMusic      bool
	renderBed        string
	renderIntro      bool
	renderIntroImage string
	renderSeed       int64
	renderNoProgress bool
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a slideshow video from product images and narration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, false)
		},
	}
	addRenderFlags(cmd)
	return cmd
}

func newShortCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "short",
		Short: "Render a vertical short-form video",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, true)
		},
	}
	addRenderFlags(cmd)
	return cmd
}

func addRenderFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&renderJobFile, "job", "", "YAML job manifest (flags override its fields)")
	cmd.Flags().StringSliceVar(&renderImages, "image", nil, "Product image path (repeat flag for multiple)")
	cmd.Flags().StringVar(&renderNarration, "narration", "", "Narration audio file")
	cmd.Flags().StringVar(&renderOutput, "output", "", "Output video path")
	cmd.Flags().StringVar(&renderTitle, "title", "", "Product title overlay text")
	cmd.Flags().StringVar(&renderBuyURL, "buy-url", "", "Buy URL overlay text")
	cmd.Flags().StringVar(&renderResolution, "resolution", "", "Target resolution as WxH")
	cmd.Flags().IntVar(&renderFPS, "fps", 0, "Output frame rate")
	cmd.Flags().StringVar(&renderQuality, "quality", "", "Encoder quality: low, medium, high or ultra")
	cmd.Flags().BoolVar(&renderMusic, "music", false, "Mix the background music bed")
	cmd.Flags().StringVar(&renderBed, "bed", "", "Background music file (overrides config)")
	cmd.Flags().BoolVar(&renderIntro, "intro", false, "Prepend the configured intro segment")
	cmd.Flags().StringVar(&renderIntroImage, "intro-image", "", "Intro still image (overrides config)")
	cmd.Flags().Int64Var(&renderSeed, "seed", 0, "Transition selection seed (0 = random)")
	cmd.Flags().BoolVar(&renderNoProgress, "no-progress", false, "Disable interactive progress output")
}

func runRender(cmd *cobra.Command, shortForm bool) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	ws, err := paths.Resolve(projectDir)
	if err != nil {
		return err
	}
	cfg, err := config.Load(ws.ConfigFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := ws.EnsureDirs(); err != nil {
		return err
	}

	req, shortFromJob, err := buildRequest()
	if err != nil {
		return err
	}
	shortForm = shortForm || shortFromJob

	logger, closer, err := logx.New(ws)
	if err != nil {
		return err
	}
	defer closer.Close()
	logger.Printf("promoreel render: workspace=%s images=%d short=%v", ws.Root, len(req.Images), shortForm)

	svc, err := compose.NewService(ctx, ws, cfg, nil, logger)
	if err != nil {
		return err
	}

	renderFn := svc.RenderSlideshow
	if shortForm {
		renderFn = svc.RenderShortForm
	}

	if renderNoProgress || outputJSON {
		svc.Reporter = plainReporter{out: cmd.OutOrStdout(), quiet: outputJSON}
		output, err := renderFn(ctx, req)
		if err != nil {
			return err
		}
		return printRenderResult(cmd.OutOrStdout(), output)
	}

	model := tui.NewRenderModel("promoreel render")
	result, err := tui.Run(cmd.OutOrStdout(), model, func(reporter compose.Reporter) error {
		svc.Reporter = reporter
		_, renderErr := renderFn(ctx, req)
		return renderErr
	})
	if err != nil {
		return err
	}
	if result.Err != nil {
		return result.Err
	}
	return printRenderResult(cmd.OutOrStdout(), result.OutputPath)
}

// buildRequest merges the optional job manifest with command-line flags.
// Flags win over manifest fields.
func buildRequest() (compose.Request, bool, error) {
	var req compose.Request
	shortForm := false

	if renderJobFile != "" {
		job, err := jobspec.Load(renderJobFile)
		if err != nil {
			return compose.Request{}, false, fmt.Errorf("load job %s: %w", renderJobFile, err)
		}
		req = compose.Request{
			Images:        job.Images,
			NarrationPath: job.Narration,
			OutputPath:    job.Output,
			Options: compose.Options{
				Resolution:            job.Resolution,
				FPS:                   job.FPS,
				Quality:               job.Quality,
				EnableBackgroundMusic: job.Music,
				MusicPath:             job.Bed,
				EnableIntro:           job.UseIntro,
				Intro: compose.IntroOptions{
					DurationSeconds: job.Intro.DurationSeconds,
					ImagePath:       job.Intro.Image,
					NarrationPath:   job.Intro.Narration,
				},
				Title:  job.Title,
				BuyURL: job.BuyURL,
				Seed:   job.Seed,
			},
		}
		shortForm = job.ShortForm
	}

	if len(renderImages) > 0 {
		req.Images = renderImages
	}
	if renderNarration != "" {
		req.NarrationPath = renderNarration
	}
	if renderOutput != "" {
		req.OutputPath = renderOutput
	}
	if renderTitle != "" {
		req.Options.Title = renderTitle
	}
	if renderBuyURL != "" {
		req.Options.BuyURL = renderBuyURL
	}
	if renderResolution != "" {
		req.Options.Resolution = renderResolution
	}
	if renderFPS > 0 {
		req.Options.FPS = renderFPS
	}
	if renderQuality != "" {
		req.Options.Quality = renderQuality
	}
	if renderMusic {
		req.Options.EnableBackgroundMusic = true
	}
	if renderBed != "" {
		req.Options.MusicPath = renderBed
		req.Options.EnableBackgroundMusic = true
	}
	if renderIntro {
		req.Options.EnableIntro = true
	}
	if renderIntroImage != "" {
		req.Options.Intro.ImagePath = renderIntroImage
		req.Options.EnableIntro = true
	}
	if renderSeed != 0 {
		req.Options.Seed = renderSeed
	}

	if len(req.Images) == 0 {
		return compose.Request{}, false, fmt.Errorf("no images given; use --image or a --job manifest")
	}
	if req.NarrationPath == "" {
		return compose.Request{}, false, fmt.Errorf("no narration given; use --narration or a --job manifest")
	}
	return req, shortForm, nil
}

func printRenderResult(out io.Writer, outputPath string) error {
	if outputJSON {
		return json.NewEncoder(out).Encode(map[string]string{"output": outputPath})
	}
	fmt.Fprintf(out, "rendered %s\n", outputPath)
	return nil
}

// plainReporter prints coarse progress lines for non-interactive runs.
type plainReporter struct {
	out   io.Writer
	quiet bool
}

func (r plainReporter) Start(job compose.Job) {
	if r.quiet {
		return
	}
	fmt.Fprintf(r.out, "rendering %.0fs of video -> %s\n", job.TotalSeconds, job.OutputPath)
}

func (r plainReporter) Progress(fraction float64) {}

func (r plainReporter) Complete(result compose.Result) {
	if r.quiet || result.Err != nil {
		return
	}
	fmt.Fprintf(r.out, "finished in %s (log: %s)\n", result.Elapsed.Round(time.Second), result.LogPath)
}

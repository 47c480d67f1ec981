// Package render turns a finished plan and filter graph into an encoder
// invocation and runs it under a bounded wall clock.
package render

import (
	"errors"
	"fmt"
	"strconv"

	"promoreel/internal/filtergraph"
	"promoreel/internal/plan"
)

// Encoding carries the fixed output parameters appended after the filter
// graph. Values come from the audio/video config sections.
type Encoding struct {
	CRF              int
	AudioCodec       string
	AudioBitrateKbps int
	SampleRate       int
	Channels         int
}

// BuildArgs assembles the complete ffmpeg argument list: inputs in binding
// order, the synthesized graph, output pad mappings and encoding parameters.
// It fails before any process is spawned when the declared inputs and the
// indices referenced in the graph disagree.
func BuildArgs(p plan.RenderPlan, bindings plan.Bindings, graph, outputPath string, enc Encoding) ([]string, error) {
	if len(bindings) == 0 {
		return nil, errors.New("no input bindings")
	}
	if outputPath == "" {
		return nil, errors.New("no output path")
	}
	if err := preflight(bindings, graph); err != nil {
		return nil, err
	}

	args := []string{"-hide_banner", "-y"}

	for _, binding := range bindings {
		if binding.Loop {
			// Still images need an explicit loop plus a feed bound, otherwise
			// ffmpeg emits a single frame.
			args = append(args, "-loop", "1")
		}
		if binding.StreamLoop {
			args = append(args, "-stream_loop", "-1")
		}
		if binding.FeedSeconds > 0 {
			args = append(args, "-t", formatSeconds(binding.FeedSeconds))
		}
		args = append(args, "-i", binding.Asset.Path)
	}

	args = append(args,
		"-filter_complex", graph,
		"-map", "[vout]",
		"-map", "[aout]",
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", strconv.Itoa(enc.CRF),
		"-r", strconv.Itoa(p.FPS),
		"-pix_fmt", "yuv420p",
		"-c:a", enc.AudioCodec,
		"-b:a", fmt.Sprintf("%dk", enc.AudioBitrateKbps),
		"-ar", strconv.Itoa(enc.SampleRate),
		"-ac", strconv.Itoa(enc.Channels),
		"-movflags", "+faststart",
		"-t", formatSeconds(p.TotalDurationSeconds),
		outputPath,
	)

	return args, nil
}

// preflight checks the binding/graph index invariant in both directions.
func preflight(bindings plan.Bindings, graph string) error {
	referenced := filtergraph.InputIndices(graph)

	declared := make(map[int]struct{}, len(bindings))
	var mismatch BindingMismatchError
	for _, binding := range bindings {
		declared[binding.Index] = struct{}{}
		if _, ok := referenced[binding.Index]; !ok {
			mismatch.Unreferenced = append(mismatch.Unreferenced, binding.Index)
		}
	}
	for index := range referenced {
		if _, ok := declared[index]; !ok {
			mismatch.Undeclared = append(mismatch.Undeclared, index)
		}
	}

	if len(mismatch.Unreferenced) > 0 || len(mismatch.Undeclared) > 0 {
		return &mismatch
	}
	return nil
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"promoreel/internal/probe"
	"promoreel/internal/tools"
)

func newProbeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe <file>",
		Short: "Probe an asset's play duration",
		Args:  cobra.ExactArgs(1),
		RunE:  runProbe,
	}
}

func runProbe(cmd *cobra.Command, args []string) error {
	ffprobePath, err := tools.FFprobe()
	if err != nil {
		return err
	}

	prober := probe.New(ffprobePath, nil)
	seconds, err := prober.Duration(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if outputJSON {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
			"path":             args[0],
			"duration_seconds": seconds,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%.3fs\n", seconds)
	return nil
}

// Package cli wires the promoreel commands together.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	projectDir string
	outputJSON bool
)

// Execute runs the root cobra command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "promoreel",
		Short: "Promo video composer",
		Long:  "promoreel assembles short marketing videos from product images and a narration track.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Optional .env for PROMOREEL_FFMPEG / PROMOREEL_FFPROBE overrides.
			_ = godotenv.Load()
		},
	}

	cmd.PersistentFlags().StringVar(&projectDir, "project", "", "Path to workspace directory")
	cmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output machine-readable JSON")

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newProbeCmd())
	cmd.AddCommand(newRenderCmd())
	cmd.AddCommand(newShortCmd())

	return cmd
}

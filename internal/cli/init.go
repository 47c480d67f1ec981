package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"promoreel/internal/config"
	"promoreel/internal/paths"
)

const exampleJobYAML = `# Example render job. Run with: promoreel render --job job.yaml
# images:
#   - assets/front.jpg
#   - assets/side.jpg
# narration: assets/voice.mp3
# output: out/product.mp4
# title: Product Name
# buy_url: shop.example.com/product
# music: true
# bed: assets/bed.mp3
# quality: high
# seed: 42
`

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a promoreel workspace",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := projectDir
	if dir == "" && len(args) > 0 {
		dir = args[0]
	}

	ws, err := paths.Resolve(dir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(ws.Root, 0o755); err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}
	if err := ws.EnsureDirs(); err != nil {
		return err
	}

	if exists, err := paths.FileExists(ws.ConfigFile); err != nil {
		return err
	} else if !exists {
		if err := config.Default().Save(ws.ConfigFile); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", ws.ConfigFile)
	}

	jobPath := filepath.Join(ws.Root, "job.yaml")
	if exists, err := paths.FileExists(jobPath); err != nil {
		return err
	} else if !exists {
		if err := os.WriteFile(jobPath, []byte(exampleJobYAML), 0o644); err != nil {
			return fmt.Errorf("write example job: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", jobPath)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "workspace ready at %s\n", ws.Root)
	return nil
}

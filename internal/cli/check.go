package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"promoreel/internal/config"
	"promoreel/internal/logx"
	"promoreel/internal/paths"
	"promoreel/internal/tools"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check encoder availability and workspace configuration",
		RunE:  runCheck,
	}
}

type checkReport struct {
	Tool    string `json:"tool"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Error   string `json:"error,omitempty"`
}

func runCheck(cmd *cobra.Command, _ []string) error {
	ws, err := paths.Resolve(projectDir)
	if err != nil {
		return err
	}
	if err := ws.EnsureDirs(); err != nil {
		return err
	}

	logger, closer, err := logx.New(ws)
	if err != nil {
		return err
	}
	defer closer.Close()
	logger.Printf("promoreel check: workspace=%s", ws.Root)

	cfg, err := config.Load(ws.ConfigFile)
	if err != nil {
		return err
	}
	configErr := cfg.Validate()

	var reports []checkReport
	failed := false
	for _, tool := range []struct{ name, envVar string }{
		{"ffmpeg", "PROMOREEL_FFMPEG"},
		{"ffprobe", "PROMOREEL_FFPROBE"},
	} {
		status, err := tools.Check(cmd.Context(), nil, tool.name, tool.envVar)
		report := checkReport{Tool: tool.name, Path: status.Path, Version: status.Version}
		if err != nil {
			report.Error = err.Error()
			failed = true
		}
		logger.Printf("tool %s: path=%s version=%q error=%q", tool.name, status.Path, status.Version, report.Error)
		reports = append(reports, report)
	}

	if outputJSON {
		payload := map[string]any{"tools": reports}
		if configErr != nil {
			payload["config_error"] = configErr.Error()
		}
		if err := json.NewEncoder(cmd.OutOrStdout()).Encode(payload); err != nil {
			return err
		}
	} else {
		for _, report := range reports {
			if report.Error != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s MISSING  %s\n", report.Tool, report.Error)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s  %s\n", report.Tool, report.Path, report.Version)
		}
		if configErr != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "config   INVALID  %s\n", configErr)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "config   ok (%s)\n", ws.ConfigFile)
		}
	}

	var problems []string
	if failed {
		problems = append(problems, "missing encoder tools")
	}
	if configErr != nil {
		problems = append(problems, configErr.Error())
	}
	if len(problems) > 0 {
		return fmt.Errorf("check failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/qrvault/internal/preflight"
)

func newDoctorCmd() *cobra.Command {
	var (
		verbose    bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check system requirements and diagnose issues",
		Long: `Run system diagnostics to ensure qrvault can operate correctly.

Checks:
  - Disk space
  - Write permissions on the data directory
  - File descriptor limits
  - ffmpeg availability (required for mux and frame extraction)
  - ffprobe availability (required for stats)`,
		Example: `  qrvault doctor
  qrvault doctor --verbose
  qrvault doctor --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, verbose, jsonOutput)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed diagnostic info")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runDoctor(cmd *cobra.Command, verbose, jsonOutput bool) error {
	cfg, root, err := loadConfig()
	if err != nil {
		return err
	}
	dataDir := filepath.Join(root, dataDirName)

	checker := preflight.New(
		preflight.WithVerbose(verbose),
		preflight.WithOutput(cmd.OutOrStdout()),
		preflight.WithFFmpegPath(cfg.Video.FFmpegPath),
		preflight.WithParallelism(cfg.Runtime.Parallelism),
	)

	results := checker.RunAll(cmd.Context(), dataDir)

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		checker.PrintResults(results)
	}

	if checker.HasCriticalFailures(results) {
		return fmt.Errorf("preflight checks failed")
	}
	return nil
}

// Package cmd provides the CLI commands for qrvault.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/qrvault/internal/logging"
	"github.com/Aman-CERP/qrvault/internal/output"
	"github.com/Aman-CERP/qrvault/pkg/version"
)

var (
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the qrvault CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qrvault",
		Short: "Store text as QR-frame MP4s with semantic search",
		Long: `qrvault stores a corpus of text documents as a pair of artifacts:
a compressed MP4 whose frames are QR codes carrying the original text,
and a vector index mapping semantic embeddings of each chunk to the
frame number that encodes it.

A query is answered by embedding it, finding the nearest chunks in the
index, seeking directly to those frames in the MP4, and decoding the
QR payloads back into text.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("qrvault version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.qrvault/logs/")
	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRunE = stopLogging

	cmd.AddCommand(newAddCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newStatsCmd())
	cmd.AddCommand(newDeleteCmd())
	cmd.AddCommand(newInfoCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newDoctorCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func startLogging(_ *cobra.Command, _ []string) error {
	cfg := logging.DefaultConfig()
	cfg.WriteToStderr = false
	if debugMode {
		cfg = logging.DebugConfig()
	}

	if _, cleanup, err := logging.Setup(cfg); err == nil {
		loggingCleanup = cleanup
	}
	return nil
}

func stopLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// Execute runs the root command, rendering any failure through the
// structured error formatter so VaultErrors surface their hint and code.
func Execute() error {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		output.New(os.Stderr).Error(err)
		return err
	}
	return nil
}

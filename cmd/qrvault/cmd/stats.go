package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/qrvault/internal/output"
)

// statsJSON is the JSON output shape for document statistics.
type statsJSON struct {
	TotalChunks       int     `json:"total_chunks"`
	TotalFrames       int     `json:"total_frames"`
	VideoSizeBytes    int64   `json:"video_size_bytes"`
	OriginalSizeBytes int64   `json:"original_size_bytes"`
	CompressionRatio  float64 `json:"compression_ratio"`
	DurationSeconds   float64 `json:"duration_seconds"`
}

func newStatsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats <text-file> <video.mp4>",
		Short: "Show statistics for an encoded document",
		Long: `Probe the MP4 artifact and re-chunk the original text to report
chunk/frame counts, sizes, compression ratio, and duration.`,
		Example: `  qrvault stats notes.txt notes.mp4
  qrvault stats notes.txt notes.mp4 --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd, args[0], args[1], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runStats(cmd *cobra.Command, textPath, videoPath string, jsonOutput bool) error {
	data, err := os.ReadFile(textPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", textPath, err)
	}

	v, _, err := openVault(cmd.Context())
	if err != nil {
		return err
	}
	defer v.Close()

	stats, err := v.Stats(cmd.Context(), string(data), videoPath)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(statsJSON(stats))
	}

	out := output.New(cmd.OutOrStdout())
	out.Field("chunks", stats.TotalChunks)
	out.Field("frames", stats.TotalFrames)
	out.Field("video size", formatBytes(stats.VideoSizeBytes))
	out.Field("original size", formatBytes(stats.OriginalSizeBytes))
	out.Field("compression ratio", fmt.Sprintf("%.2fx", stats.CompressionRatio))
	out.Field("duration", fmt.Sprintf("%.1fs", stats.DurationSeconds))
	return nil
}

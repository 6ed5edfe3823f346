package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/qrvault/internal/output"
)

func newAddCmd() *cobra.Command {
	var docID string

	cmd := &cobra.Command{
		Use:   "add <text-file> <output.mp4>",
		Short: "Encode a text document into a QR-frame MP4 and index it",
		Long: `Chunk a text file, render each chunk as a QR frame, mux the frames
into an MP4, and upsert the chunk embeddings into the vector index.

The document ID defaults to the text file's base name.`,
		Example: `  # Encode a document
  qrvault add notes.txt notes.mp4

  # Encode under an explicit document ID
  qrvault add notes.txt notes.mp4 --id meeting-notes`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, args[0], args[1], docID)
		},
	}

	cmd.Flags().StringVar(&docID, "id", "", "Document ID (default: text file base name)")

	return cmd
}

func runAdd(cmd *cobra.Command, textPath, videoPath, docID string) error {
	out := output.New(cmd.OutOrStdout())

	data, err := os.ReadFile(textPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", textPath, err)
	}

	if docID == "" {
		docID = strings.TrimSuffix(filepath.Base(textPath), filepath.Ext(textPath))
	}

	v, _, err := openVault(cmd.Context())
	if err != nil {
		return err
	}
	defer v.Close()

	if err := v.AddDocument(cmd.Context(), docID, string(data), videoPath); err != nil {
		return err
	}

	stats, err := v.Stats(cmd.Context(), string(data), videoPath)
	if err != nil {
		// The document is already encoded and indexed; failing the whole
		// command over a stats probe would misreport success.
		out.Successf("encoded %s -> %s (document %s)", textPath, videoPath, docID)
		return nil
	}

	out.Successf("encoded %s -> %s (document %s)", textPath, videoPath, docID)
	out.Infof("chunks: %d  frames: %d  video: %s  ratio: %.2fx",
		stats.TotalChunks, stats.TotalFrames, formatBytes(stats.VideoSizeBytes), stats.CompressionRatio)
	return nil
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/qrvault/internal/output"
)

func newDeleteCmd() *cobra.Command {
	var videoPath string

	cmd := &cobra.Command{
		Use:   "delete <document-id>",
		Short: "Remove a document's entries from the vector index",
		Long: `Delete every index entry for the given document ID. Pass --video to
also remove the MP4 artifact from disk.`,
		Example: `  qrvault delete meeting-notes
  qrvault delete meeting-notes --video notes.mp4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, args[0], videoPath)
		},
	}

	cmd.Flags().StringVar(&videoPath, "video", "", "Also remove this MP4 artifact")

	return cmd
}

func runDelete(cmd *cobra.Command, docID, videoPath string) error {
	out := output.New(cmd.OutOrStdout())

	v, _, err := openVault(cmd.Context())
	if err != nil {
		return err
	}
	defer v.Close()

	if err := v.DeleteDocument(cmd.Context(), docID); err != nil {
		return err
	}

	if videoPath != "" {
		if err := os.Remove(videoPath); err != nil && !os.IsNotExist(err) {
			out.Warningf("index entries deleted, but could not remove %s: %v", videoPath, err)
			return nil
		}
	}

	out.Successf("deleted document %s", docID)
	return nil
}

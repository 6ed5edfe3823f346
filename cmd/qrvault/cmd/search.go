package cmd

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/qrvault/internal/output"
	"github.com/Aman-CERP/qrvault/pkg/qrvault"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	videos []string
	limit  int
	format string
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Semantically search one or more QR-frame MP4 artifacts",
		Long: `Embed the query, find the nearest chunks in the vector index, seek to
their frames in the MP4, decode the QR payloads, and print the
reconstructed text with similarity scores.

With multiple --video flags, each artifact contributes up to the limit
and the merged results are sorted by descending similarity.`,
		Example: `  qrvault search "deployment checklist" --video notes.mp4
  qrvault search "error budget" --video a.mp4 --video b.mp4 -n 3
  qrvault search "quarterly targets" --video notes.mp4 --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return runSearch(cmd, query, opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.videos, "video", nil, "MP4 artifact to search (repeatable)")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 5, "Maximum results per artifact")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	_ = cmd.MarkFlagRequired("video")

	return cmd
}

// searchResultJSON is the JSON output shape for one result.
type searchResultJSON struct {
	ChunkText   string            `json:"chunk_text"`
	Similarity  float32           `json:"similarity"`
	FrameNumber int               `json:"frame_number"`
	DocumentID  string            `json:"document_id"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

func runSearch(cmd *cobra.Command, query string, opts searchOptions) error {
	v, _, err := openVault(cmd.Context())
	if err != nil {
		return err
	}
	defer v.Close()

	var results []qrvault.SearchResult
	if len(opts.videos) == 1 {
		results, err = v.Search(cmd.Context(), query, opts.videos[0], opts.limit)
	} else {
		results, err = v.SearchMultiple(cmd.Context(), query, opts.videos, opts.limit)
	}
	if err != nil {
		return err
	}

	if opts.format == "json" {
		payload := make([]searchResultJSON, len(results))
		for i, r := range results {
			payload[i] = searchResultJSON{
				ChunkText:   r.ChunkText,
				Similarity:  r.Similarity,
				FrameNumber: r.FrameNumber,
				DocumentID:  r.DocumentID,
				Metadata:    r.Metadata,
			}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}

	out := output.New(cmd.OutOrStdout())
	for i, r := range results {
		out.Hit(i+1, r.Similarity, r.DocumentID, r.FrameNumber, r.ChunkText)
	}
	out.HitCount(len(results))
	return nil
}

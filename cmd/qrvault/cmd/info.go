package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/qrvault/internal/output"
)

// infoJSON is the JSON output shape for index introspection.
type infoJSON struct {
	Backend       string `json:"backend"`
	Dimensions    int    `json:"dimensions"`
	EntryCount    int    `json:"entry_count"`
	CacheSize     int    `json:"cache_size"`
	CacheCapacity int    `json:"cache_capacity"`
}

func newInfoCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show vector index and frame cache information",
		Long:  `Report the index backend kind, embedding dimension, entry count, and the retriever's frame cache occupancy.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInfo(cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runInfo(cmd *cobra.Command, jsonOutput bool) error {
	v, _, err := openVault(cmd.Context())
	if err != nil {
		return err
	}
	defer v.Close()

	desc, err := v.DescribeIndex(cmd.Context())
	if err != nil {
		return err
	}
	cache := v.CacheStats()

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(infoJSON{
			Backend:       desc.Backend,
			Dimensions:    desc.Dimensions,
			EntryCount:    desc.EntryCount,
			CacheSize:     cache.Size,
			CacheCapacity: cache.Capacity,
		})
	}

	out := output.New(cmd.OutOrStdout())
	out.Field("backend", desc.Backend)
	out.Field("dimensions", desc.Dimensions)
	out.Field("entries", desc.EntryCount)
	out.Field("frame cache", fmt.Sprintf("%d/%d", cache.Size, cache.Capacity))
	return nil
}

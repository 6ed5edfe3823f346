package vault

import (
	"context"

	"github.com/Aman-CERP/qrvault/internal/video"
)

// Stats describes one encoded document, produced on demand by probing
// the MP4 and re-chunking the original text.
type Stats struct {
	TotalChunks       int
	TotalFrames       int
	VideoSizeBytes    int64
	OriginalSizeBytes int64
	CompressionRatio  float64
	DurationSeconds   float64
}

// Stats probes videoPath via ffprobe and re-chunks originalText
// (chunking is deterministic) to recompute the document's statistics
// without needing a separate stats table alongside the index.
func (v *Vault) Stats(ctx context.Context, originalText, videoPath string) (Stats, error) {
	chunks, err := v.chunker.Chunk(ctx, originalText)
	if err != nil {
		return Stats{}, err
	}

	probe, err := video.Probe(ctx, videoPath, v.ffprobePath)
	if err != nil {
		return Stats{}, err
	}

	originalSize := int64(len(originalText))
	ratio := 0.0
	if originalSize > 0 {
		ratio = float64(probe.SizeBytes) / float64(originalSize)
	}

	return Stats{
		TotalChunks:       len(chunks),
		TotalFrames:       probe.FrameCount,
		VideoSizeBytes:    probe.SizeBytes,
		OriginalSizeBytes: originalSize,
		CompressionRatio:  ratio,
		DurationSeconds:   probe.DurationSeconds,
	}, nil
}

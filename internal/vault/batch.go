package vault

import (
	"context"
	"log/slog"
)

// BatchDocument is one input to AddDocumentsBatch.
type BatchDocument struct {
	DocumentID string
	Text       string
	VideoPath  string
}

// AddDocumentsBatch encodes documents sequentially, one scratch
// directory at a time, keeping peak disk usage predictable. The first
// failing document aborts the batch; documents already encoded stay
// encoded, since each AddDocument is atomic on its own.
func (v *Vault) AddDocumentsBatch(ctx context.Context, docs []BatchDocument) error {
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}

		v.logger.Debug("batch_add_document",
			slog.Int("position", i),
			slog.Int("total", len(docs)),
			slog.String("document_id", doc.DocumentID))

		if err := v.AddDocument(ctx, doc.DocumentID, doc.Text, doc.VideoPath); err != nil {
			return err
		}
	}
	return nil
}

package ingest

import (
	"context"

	"knowledgescout/internal/models"
)

// Ingestor accepts uploads and drives each document through the
// processing -> completed | error state machine in the background.
type Ingestor interface {
	// Submit validates the upload, stores the file and persists the
	// document at status "processing" before returning. The caller never
	// waits on extraction or AI calls.
	Submit(ctx context.Context, userID, originalName, contentType string, data []byte) (*models.Document, error)
	Start(ctx context.Context, numWorkers int)
	Enqueue(docID string)
	// Resume re-enqueues every pending ingest job, picking up documents a
	// previous process left at "processing".
	Resume(ctx context.Context) error
	ProcessOne(ctx context.Context, docID string) error
}

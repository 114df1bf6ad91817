package ingest

import (
	"context"
	"fmt"
	"log"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"knowledgescout/internal/core"
	"knowledgescout/internal/core/extract"
	"knowledgescout/internal/core/responder"
	"knowledgescout/internal/models"
)

// MaxUploadBytes is the hard size ceiling for a single upload.
const MaxUploadBytes = 50 << 20 // 50 MiB

// SummaryUnavailableMessage replaces the summary when the AI call fails
// mid-ingestion. A failed summary never fails the document.
const SummaryUnavailableMessage = "AI summary generation is currently unavailable."

// allowedContentTypes is the upload allow-list. Only PDF and plain text get
// real extraction; the rest are accepted and stored with placeholder text.
var allowedContentTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"text/plain":      true,
	"application/rtf": true,
}

// DocumentIngestor orchestrates the background ingestion pipeline:
//
// db:        persistence for documents and the pending-job ledger.
// obj:       object storage holding the raw uploads.
// extractor: bytes -> text, total.
// ai:        summarization, degradable.
// jobs:      in-memory queue of document IDs; the durable ingest_jobs table
//            backs it across restarts.
type DocumentIngestor struct {
	db        core.DbClient
	obj       core.ObjectClient
	extractor core.DocumentExtractor
	ai        *responder.Responder
	bucket    string
	jobs      chan string
	workers   *errgroup.Group
}

// NewDocumentIngestor constructs the ingestor with a bounded job queue (64).
func NewDocumentIngestor(db core.DbClient, obj core.ObjectClient, extractor core.DocumentExtractor, ai *responder.Responder, bucket string) *DocumentIngestor {
	return &DocumentIngestor{
		db: db, obj: obj, extractor: extractor, ai: ai, bucket: bucket,
		jobs: make(chan string, 64),
	}
}

// Submit validates and persists an upload, then schedules the background
// continuation. Validation failures are *core.ValidationError and leave no
// document behind.
func (i *DocumentIngestor) Submit(ctx context.Context, userID, originalName, contentType string, data []byte) (*models.Document, error) {
	if originalName == "" {
		return nil, core.Validationf("no file uploaded")
	}
	if !allowedContentTypes[contentType] {
		return nil, core.Validationf("Invalid file type. Only PDF, DOC, DOCX, TXT, and RTF files are allowed.")
	}
	if int64(len(data)) > MaxUploadBytes {
		return nil, core.Validationf("file exceeds the 50 MB size limit")
	}

	docID := uuid.NewString()
	cleanName := filepath.Base(originalName)
	storedName := docID + filepath.Ext(cleanName)
	key := path.Join("users", userID, "documents", docID, storedName)

	storagePath, err := i.obj.UploadFile(ctx, i.bucket, key, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	now := time.Now()
	doc := &models.Document{
		ID:           docID,
		UserID:       userID,
		Title:        cleanName,
		FileName:     storedName,
		OriginalName: cleanName,
		StoragePath:  storagePath,
		FileSize:     int64(len(data)),
		ContentType:  contentType,
		Status:       models.StatusProcessing,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := i.db.CreateDocument(ctx, doc); err != nil {
		_ = i.obj.DeleteFile(ctx, i.bucket, key)
		return nil, fmt.Errorf("persist document: %w", err)
	}

	if err := i.db.CreateIngestJob(ctx, &models.IngestJob{DocumentID: docID, EnqueuedAt: now}); err != nil {
		// The in-memory enqueue below still processes it; only crash
		// recovery is lost for this document.
		log.Printf("DocumentIngestor: job ledger write failed for %s: %v", docID, err)
	}

	i.Enqueue(docID)
	return doc, nil
}

// Start runs numWorkers goroutines reading from the jobs channel.
func (i *DocumentIngestor) Start(ctx context.Context, numWorkers int) {
	g, gctx := errgroup.WithContext(ctx)
	for w := 1; w <= numWorkers; w++ {
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					log.Println("DocumentIngestor: worker shutting down.")
					return nil
				case docID := <-i.jobs:
					if err := i.ProcessOne(gctx, docID); err != nil {
						log.Printf("DocumentIngestor: error processing document %s: %v", docID, err)
					}
				}
			}
		})
	}
	i.workers = g
}

// Wait blocks until all workers have exited after the Start context is done.
func (i *DocumentIngestor) Wait() {
	if i.workers != nil {
		_ = i.workers.Wait()
	}
}

// Enqueue schedules a document ID for ingestion.
// If the queue is full, this call will block until space frees up.
func (i *DocumentIngestor) Enqueue(docID string) {
	i.jobs <- docID
}

// Resume re-enqueues all pending jobs from the durable ledger. Called once at
// startup so documents stuck at "processing" by a crash are picked up again.
func (i *DocumentIngestor) Resume(ctx context.Context) error {
	jobs, err := i.db.ListIngestJobs(ctx)
	if err != nil {
		return fmt.Errorf("list ingest jobs: %w", err)
	}
	for _, j := range jobs {
		i.Enqueue(j.DocumentID)
	}
	if len(jobs) > 0 {
		log.Printf("DocumentIngestor: resumed %d pending job(s)", len(jobs))
	}
	return nil
}

// ProcessOne runs the extract-then-summarize continuation for one document
// and moves it to a terminal status. Extraction and AI failures degrade to
// placeholder content; only a failed persistence write flips the document to
// "error".
func (i *DocumentIngestor) ProcessOne(_ context.Context, docID string) error {
	// Fresh context: the continuation outlives the request that enqueued it.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	doc, err := i.db.GetDocumentByID(ctx, docID)
	if err != nil {
		return fmt.Errorf("load document %s: %w", docID, err)
	}
	if doc == nil {
		_ = i.db.DeleteIngestJob(ctx, docID)
		return fmt.Errorf("document not found: %s", docID)
	}
	if doc.Status != models.StatusProcessing {
		// Already terminal; a resumed job can race a finished one.
		_ = i.db.DeleteIngestJob(ctx, docID)
		return nil
	}

	var text string
	data, err := i.obj.GetFile(ctx, i.bucket, doc.StoragePath)
	if err != nil {
		log.Printf("DocumentIngestor: read upload for %s failed: %v", docID, err)
		text = extract.PlaceholderFailed
	} else {
		text = i.extractor.ExtractText(data, doc.ContentType)
	}

	summary, err := i.ai.Summarize(ctx, text)
	if err != nil {
		log.Printf("DocumentIngestor: summary for %s failed: %v", docID, err)
		summary = SummaryUnavailableMessage
	}

	if err := i.db.UpdateDocumentContent(ctx, docID, models.StatusCompleted, text, summary); err != nil {
		_ = i.db.UpdateDocumentStatus(ctx, docID, models.StatusError)
		_ = i.db.DeleteIngestJob(ctx, docID)
		return fmt.Errorf("persist ingestion result for %s: %w", docID, err)
	}

	if err := i.db.DeleteIngestJob(ctx, docID); err != nil {
		log.Printf("DocumentIngestor: job cleanup for %s failed: %v", docID, err)
	}
	return nil
}

var _ Ingestor = (*DocumentIngestor)(nil)

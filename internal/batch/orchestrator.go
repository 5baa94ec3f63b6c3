// Package batch drives the invoice pipeline end to end: enumerate source
// attachments, OCR each new PDF, extract its fields, archive the original
// into its monthly bucket, and append the record to the ledger.
package batch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/evcharge-tools/invoice-tracker/constants"
	"github.com/evcharge-tools/invoice-tracker/internal/archive"
	"github.com/evcharge-tools/invoice-tracker/internal/entity"
	"github.com/evcharge-tools/invoice-tracker/internal/extract"
	"github.com/evcharge-tools/invoice-tracker/internal/ledger"
	"github.com/evcharge-tools/invoice-tracker/internal/ocr"
	"github.com/evcharge-tools/invoice-tracker/internal/source"
)

// Orchestrator wires the pipeline stages together. It is single-threaded:
// order of appends must follow retrieval order, and the ledger backends are
// not built for concurrent writers.
type Orchestrator struct {
	provider  source.Provider
	ocr       ocr.Recognizer
	archive   archive.Store
	ledger    ledger.Store
	extractor *extract.Extractor
	logger    *slog.Logger
}

func NewOrchestrator(provider source.Provider, recognizer ocr.Recognizer,
	archiveStore archive.Store, ledgerStore ledger.Store,
	extractor *extract.Extractor, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if extractor == nil {
		extractor = extract.NewExtractor(nil, logger)
	}
	return &Orchestrator{
		provider:  provider,
		ocr:       recognizer,
		archive:   archiveStore,
		ledger:    ledgerStore,
		extractor: extractor,
		logger:    logger,
	}
}

// Process walks every thread, message, and attachment, handling each PDF not
// yet present in the ledger. A failing attachment is logged and counted, and
// the batch moves on. The run's cancellation flag is polled before each
// thread, message, and attachment, and is cleared when Process returns.
func (o *Orchestrator) Process(ctx context.Context, run *Run) (Result, error) {
	defer run.finish()
	res := Result{RunID: run.ID}

	w, err := ledger.NewWriter(ctx, o.ledger, o.logger)
	if err != nil {
		return res, err
	}

	threads, err := o.provider.Threads(ctx)
	if err != nil {
		return res, fmt.Errorf("enumerate threads: %w", err)
	}
	o.logger.Info("batch.start", "run", run.ID, "threads", len(threads))

	for _, t := range threads {
		if run.Cancelled() {
			res.Stopped = true
			break
		}
		messages, err := t.Messages(ctx)
		if err != nil {
			o.logger.Error("batch.thread.failed", "run", run.ID, "thread", t.ID(), "error", err)
			res.Failed++
			continue
		}
		for _, m := range messages {
			if run.Cancelled() {
				res.Stopped = true
				break
			}
			attachments, err := m.Attachments(ctx)
			if err != nil {
				o.logger.Error("batch.message.failed", "run", run.ID, "message", m.ID(), "error", err)
				res.Failed++
				continue
			}
			for _, a := range attachments {
				if run.Cancelled() {
					res.Stopped = true
					break
				}
				o.handleAttachment(ctx, run, w, a, &res)
			}
			if res.Stopped {
				break
			}
		}
		if res.Stopped {
			break
		}
	}

	o.logger.Info("batch.done", "run", run.ID,
		"new", res.New, "skipped", res.Skipped, "failed", res.Failed, "stopped", res.Stopped)
	return res, nil
}

// Rebuild discards every ledger row and reprocesses the whole source. The
// archive is left alone; placing a file under its key again is idempotent.
func (o *Orchestrator) Rebuild(ctx context.Context, run *Run) (Result, error) {
	o.logger.Warn("batch.rebuild", "run", run.ID)
	if err := o.ledger.Reset(ctx); err != nil {
		return Result{RunID: run.ID}, fmt.Errorf("reset ledger: %w", err)
	}
	return o.Process(ctx, run)
}

// TestOne locates a single attachment by exact file name and runs OCR and
// extraction on it without touching the archive or the ledger. It is the
// dry-run used to check rules against a problem invoice.
func (o *Orchestrator) TestOne(ctx context.Context, fileName string) (entity.InvoiceRecord, error) {
	threads, err := o.provider.Threads(ctx)
	if err != nil {
		return entity.InvoiceRecord{}, fmt.Errorf("enumerate threads: %w", err)
	}
	for _, t := range threads {
		messages, err := t.Messages(ctx)
		if err != nil {
			return entity.InvoiceRecord{}, fmt.Errorf("thread %s: %w", t.ID(), err)
		}
		for _, m := range messages {
			attachments, err := m.Attachments(ctx)
			if err != nil {
				return entity.InvoiceRecord{}, fmt.Errorf("message %s: %w", m.ID(), err)
			}
			for _, a := range attachments {
				if a.Name() != fileName {
					continue
				}
				content, err := a.Content(ctx)
				if err != nil {
					return entity.InvoiceRecord{}, fmt.Errorf("read %s: %w", fileName, err)
				}
				text, err := o.ocr.Recognize(ctx, content, fileName)
				if err != nil {
					return entity.InvoiceRecord{}, fmt.Errorf("recognize %s: %w", fileName, err)
				}
				rec := o.extractor.Extract(text)
				rec.FileName = fileName
				return rec, nil
			}
		}
	}
	return entity.InvoiceRecord{}, fmt.Errorf("attachment %q not found", fileName)
}

func (o *Orchestrator) handleAttachment(ctx context.Context, run *Run, w *ledger.Writer,
	a source.Attachment, res *Result) {
	name := a.Name()
	if !constants.IsPDF(name) {
		return
	}
	if w.AlreadyProcessed(name) {
		o.logger.Debug("batch.attachment.skip", "run", run.ID, "file", name)
		res.Skipped++
		return
	}

	rec, err := o.processAttachment(ctx, a, name)
	if err != nil {
		o.logger.Error("batch.attachment.failed", "run", run.ID, "file", name, "error", err)
		res.Failed++
		return
	}
	appended, err := w.Append(ctx, rec)
	if err != nil {
		o.logger.Error("batch.attachment.failed", "run", run.ID, "file", name, "error", err)
		res.Failed++
		return
	}
	if appended {
		res.New++
	} else {
		res.Skipped++
	}
}

func (o *Orchestrator) processAttachment(ctx context.Context, a source.Attachment,
	name string) (entity.InvoiceRecord, error) {
	content, err := a.Content(ctx)
	if err != nil {
		return entity.InvoiceRecord{}, fmt.Errorf("read attachment: %w", err)
	}
	text, err := o.ocr.Recognize(ctx, content, name)
	if err != nil {
		return entity.InvoiceRecord{}, fmt.Errorf("recognize: %w", err)
	}
	rec := o.extractor.Extract(text)
	rec.FileName = name

	key := archive.BucketKey(rec.BillingDate)
	bucket, err := o.archive.EnsureBucket(ctx, key)
	if err != nil {
		return entity.InvoiceRecord{}, fmt.Errorf("ensure bucket %q: %w", key, err)
	}
	link, err := bucket.Place(ctx, name, content)
	if err != nil {
		return entity.InvoiceRecord{}, fmt.Errorf("archive: %w", err)
	}
	rec.ArchiveLink = link
	return rec, nil
}

/**
 * Worker task.
 *
 * One claimed job end to end: re-validate the stored bytes, OCR with a hard
 * timeout, enrich, finalize, then fire the webhook. Every failure path
 * converts to a FAILED finalize with a human-readable message; panics are
 * recovered the same way. Store errors abandon the iteration and leave the
 * row PROCESSING for the stuck detector.
 */

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	apperrors "github.com/fathomdocs/ocr-service/internal/errors"
	"github.com/fathomdocs/ocr-service/internal/enrich"
	"github.com/fathomdocs/ocr-service/internal/metrics"
	"github.com/fathomdocs/ocr-service/internal/ocr"
	"github.com/fathomdocs/ocr-service/internal/store"
	"github.com/fathomdocs/ocr-service/internal/validate"
)

// runJob processes a single claimed job. It runs on a background context:
// shutdown does not cancel in-flight work.
func (s *Scheduler) runJob(job *store.Job) {
	ctx := context.Background()
	start := time.Now()

	metrics.WorkersInflight.Inc()
	defer metrics.WorkersInflight.Dec()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Job %s] Worker panic: %v", job.ID, r)
			s.finalizeFailed(ctx, job, fmt.Sprintf("Internal processing error: %v", r))
		}
	}()

	log.Printf("[Job %s] Processing started (file=%s, mime=%s, size=%d)",
		job.ID, job.FileName, job.MimeType, len(job.FileData))
	s.events.Publish(ctx, job.ID, string(store.StatusProcessing), "")

	// Defense in depth: the stored MIME is already the detected type, but
	// the bytes may be corrupt or newly disallowed.
	if _, err := validate.File(job.FileData, job.MimeType); err != nil {
		s.finalizeFailed(ctx, job, "File validation failed: "+err.Error())
		return
	}

	pages, err := s.recognize(job)
	if err != nil {
		var perr *apperrors.ProcessingError
		if errors.As(err, &perr) {
			msg := perr.Message
			if perr.Cause != nil {
				msg = fmt.Sprintf("%s: %v", perr.Message, perr.Cause)
			}
			s.finalizeFailed(ctx, job, msg)
		} else {
			s.finalizeFailed(ctx, job, err.Error())
		}
		return
	}

	result := enrich.Enrich(pages, s.language, time.Since(start))
	payload, err := result.Marshal()
	if err != nil {
		s.finalizeFailed(ctx, job, "Failed to serialize OCR result: "+err.Error())
		return
	}

	serialized := string(payload)
	if err := s.store.Finalize(ctx, job.ID, store.StatusCompleted, &serialized, nil); err != nil {
		// Leave the row PROCESSING; the stuck detector will surface it.
		log.Printf("[Job %s] %v", job.ID, apperrors.NewStorageFailedError(job.ID, err))
		return
	}

	elapsed := time.Since(start)
	metrics.JobsFinalizedTotal.WithLabelValues(string(store.StatusCompleted)).Inc()
	metrics.ProcessingDuration.Observe(elapsed.Seconds())
	log.Printf("[Job %s] Completed in %s (%d words)", job.ID, elapsed.Round(time.Millisecond), result.Metadata.WordCount)
	s.events.Publish(ctx, job.ID, string(store.StatusCompleted), "")

	if job.CallbackWebhook != "" {
		if err := s.sink.Send(ctx, job.CallbackWebhook, job.ID, job.Email, serialized); err != nil {
			metrics.WebhookDeliveriesTotal.WithLabelValues("failure").Inc()
		} else {
			metrics.WebhookDeliveriesTotal.WithLabelValues("success").Inc()
		}
	}
}

// recognize races the OCR pipeline against the processing timeout. The
// pipeline goroutine keeps running after a timeout; its result is discarded.
func (s *Scheduler) recognize(job *store.Job) ([]ocr.Page, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.processingTimeout)
	defer cancel()

	type outcome struct {
		pages []ocr.Page
		err   error
	}
	done := make(chan outcome, 1)

	go func() {
		pages, err := s.pipeline.Process(ctx, job.ID, job.FileData, job.MimeType)
		done <- outcome{pages, err}
	}()

	select {
	case <-ctx.Done():
		return nil, apperrors.NewProcessingTimeoutError(job.ID)
	case o := <-done:
		if o.err != nil {
			return nil, apperrors.NewOCRFailedError(job.ID, o.err)
		}
		return o.pages, nil
	}
}

// finalizeFailed writes the FAILED terminal state. A failed write is logged
// and abandoned.
func (s *Scheduler) finalizeFailed(ctx context.Context, job *store.Job, message string) {
	log.Printf("[Job %s] Failed: %s", job.ID, message)
	if err := s.store.Finalize(ctx, job.ID, store.StatusFailed, nil, &message); err != nil {
		log.Printf("[Job %s] %v", job.ID, apperrors.NewStorageFailedError(job.ID, err))
		return
	}
	metrics.JobsFinalizedTotal.WithLabelValues(string(store.StatusFailed)).Inc()
	s.events.Publish(ctx, job.ID, string(store.StatusFailed), message)
}

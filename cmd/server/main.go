/**
 * OCR service - main entry point.
 *
 * One process hosts both halves of the system:
 * - The HTTP surface: upload, status polling, admin, OpenAPI, metrics.
 * - The scheduler loop: claims PENDING jobs from Postgres and runs the
 *   validate -> OCR -> enrich -> finalize pipeline per job.
 *
 * Dispatch goes through the store's atomic claim, so additional processes
 * can be pointed at the same database for horizontal scale.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fathomdocs/ocr-service/internal/api"
	"github.com/fathomdocs/ocr-service/internal/config"
	"github.com/fathomdocs/ocr-service/internal/events"
	"github.com/fathomdocs/ocr-service/internal/ocr"
	"github.com/fathomdocs/ocr-service/internal/scheduler"
	"github.com/fathomdocs/ocr-service/internal/store"
	"github.com/fathomdocs/ocr-service/internal/webhook"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("OCR service starting...")
	log.Printf("Configuration loaded: Port=%d, MaxConcurrentJobs=%d, PDFPageConcurrency=%d",
		cfg.Port, cfg.MaxConcurrentJobs, cfg.PDFPageConcurrency)

	st, err := store.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer st.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := st.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to prepare schema: %v", err)
	}
	log.Printf("Database ready")

	publisher, err := events.NewPublisher(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	if publisher != nil {
		defer publisher.Close()
		log.Printf("Status events enabled on %s", events.Channel)
	}

	pipeline := ocr.NewPipeline(ocr.PipelineConfig{
		Engine:          ocr.NewTesseractEngine(),
		Language:        cfg.TesseractLang,
		PageConcurrency: cfg.PDFPageConcurrency,
		PdftoppmPath:    cfg.PdftoppmPath,
		TempDir:         cfg.TempDir,
	})

	sched := scheduler.New(scheduler.Config{
		Store:             st,
		Pipeline:          pipeline,
		Sink:              webhook.NewSink(cfg.AppDomain),
		Events:            publisher,
		MaxConcurrentJobs: cfg.MaxConcurrentJobs,
		Language:          cfg.TesseractLang,
	})

	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		sched.Run(ctx)
	}()

	router := api.NewRouter(api.NewHandlers(st, publisher, cfg.AppDomain))
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	go func() {
		log.Printf("HTTP server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-sigChan
	log.Printf("Received signal %v, initiating graceful shutdown...", sig)

	// Stop claiming new jobs; in-flight workers finish within their timeout.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	<-schedulerDone
	log.Printf("Shutdown complete")
}

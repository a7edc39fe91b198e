/**
 * Scheduler loop.
 *
 * A single long-lived loop claims PENDING jobs from the store and runs one
 * worker task per claim, bounded by MaxConcurrentJobs. There is no in-memory
 * queue; the store's atomic claim is the dispatch primitive, so any number
 * of scheduler processes can share one table.
 */

package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/fathomdocs/ocr-service/internal/events"
	"github.com/fathomdocs/ocr-service/internal/ocr"
	"github.com/fathomdocs/ocr-service/internal/store"
	"github.com/fathomdocs/ocr-service/internal/webhook"
)

const (
	// ProcessingTimeout bounds the OCR step of a single job.
	ProcessingTimeout = 5 * time.Minute

	defaultPollInterval = 5 * time.Second
	defaultBusyBackoff  = 500 * time.Millisecond
	defaultConcurrency  = 3
)

// Config holds scheduler dependencies and knobs.
type Config struct {
	Store             *store.Store
	Pipeline          *ocr.Pipeline
	Sink              *webhook.Sink
	Events            *events.Publisher
	MaxConcurrentJobs int
	Language          string

	// Overridable in tests.
	PollInterval      time.Duration
	BusyBackoff       time.Duration
	ProcessingTimeout time.Duration
}

// Scheduler claims and processes jobs.
type Scheduler struct {
	store    *store.Store
	pipeline *ocr.Pipeline
	sink     *webhook.Sink
	events   *events.Publisher
	language string

	pollInterval      time.Duration
	busyBackoff       time.Duration
	processingTimeout time.Duration

	slots chan struct{}
	wg    sync.WaitGroup
}

// New creates a scheduler. Store and Pipeline are required.
func New(cfg Config) *Scheduler {
	if cfg.MaxConcurrentJobs <= 0 {
		cfg.MaxConcurrentJobs = defaultConcurrency
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.BusyBackoff <= 0 {
		cfg.BusyBackoff = defaultBusyBackoff
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	if cfg.ProcessingTimeout <= 0 {
		cfg.ProcessingTimeout = ProcessingTimeout
	}

	return &Scheduler{
		store:             cfg.Store,
		pipeline:          cfg.Pipeline,
		sink:              cfg.Sink,
		events:            cfg.Events,
		language:          cfg.Language,
		pollInterval:      cfg.PollInterval,
		busyBackoff:       cfg.BusyBackoff,
		processingTimeout: cfg.ProcessingTimeout,
		slots:             make(chan struct{}, cfg.MaxConcurrentJobs),
	}
}

// Run drives the claim loop until ctx is cancelled, then waits for in-flight
// workers. Workers are not force-cancelled; each is bounded by the
// processing timeout.
func (s *Scheduler) Run(ctx context.Context) {
	log.Printf("Scheduler started (max %d concurrent jobs)", cap(s.slots))

	for {
		select {
		case <-ctx.Done():
			log.Printf("Scheduler stopping, waiting for in-flight workers")
			s.wg.Wait()
			log.Printf("Scheduler stopped")
			return
		default:
		}

		select {
		case s.slots <- struct{}{}:
			job, err := s.store.ClaimOldestPending(ctx)
			if err != nil {
				<-s.slots
				if ctx.Err() == nil {
					log.Printf("Claim failed: %v", err)
				}
				s.sleep(ctx, s.pollInterval)
				continue
			}
			if job == nil {
				<-s.slots
				s.sleep(ctx, s.pollInterval)
				continue
			}

			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				defer func() { <-s.slots }()
				s.runJob(job)
			}()
		default:
			s.sleep(ctx, s.busyBackoff)
		}
	}
}

func (s *Scheduler) sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

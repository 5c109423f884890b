package scheduler

import (
	"context"
	"strings"
	"time"

	"github.com/example/vocab/internal/translate"
	"github.com/example/vocab/pkg/models"
	"github.com/go-co-op/gocron"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Defaults for the back-fill job
const (
	DefaultInterval = time.Hour
	DefaultBatch    = 20
)

// ExampleStore is the part of the word store the back-fill job needs
type ExampleStore interface {
	WordsMissingExamples(ctx context.Context, limit int) ([]models.Word, error)
	UpdateExamples(ctx context.Context, english, examples string) error
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	store     ExampleStore
	source    translate.ExampleSource
	interval  time.Duration
	batch     int
	log       zerolog.Logger
}

// New creates a new scheduler instance
func New(store ExampleStore, source translate.ExampleSource, interval time.Duration, batch int, log zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if batch <= 0 {
		batch = DefaultBatch
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		store:     store,
		source:    source,
		interval:  interval,
		batch:     batch,
		log:       log.With().Str("component", "scheduler").Logger(),
	}
}

// Start begins running all scheduled tasks. The first back-fill runs
// immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.scheduler.Every(s.interval).Do(func() {
		filled, err := s.BackfillExamples(ctx)
		if err != nil {
			s.log.Error().Err(err).Msg("example back-fill failed")
			return
		}
		s.log.Info().Int("filled", filled).Msg("example back-fill finished")
	})
	if err != nil {
		return errors.Wrap(err, "failed to schedule example back-fill")
	}

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// BackfillExamples looks up examples for a batch of words that have none and
// returns how many were filled. Lookup failures skip the word.
func (s *Scheduler) BackfillExamples(ctx context.Context) (int, error) {
	words, err := s.store.WordsMissingExamples(ctx, s.batch)
	if err != nil {
		return 0, errors.Wrap(err, "failed to list words without examples")
	}

	filled := 0
	for _, w := range words {
		if err := ctx.Err(); err != nil {
			return filled, err
		}
		examples, err := s.source.FetchExamples(ctx, w.English)
		if err != nil {
			s.log.Warn().Err(err).Str("word", w.English).Msg("failed to fetch examples")
			continue
		}
		if strings.TrimSpace(examples) == "" {
			continue
		}
		if err := s.store.UpdateExamples(ctx, w.English, examples); err != nil {
			return filled, errors.Wrapf(err, "failed to store examples for %q", w.English)
		}
		filled++
	}
	return filled, nil
}

// Package flashcard implements the self-rated flashcard walk. Every rating
// is written straight back to the word store as a new difficulty.
package flashcard

import (
	"context"
	"math/rand"
	"time"

	"github.com/example/vocab/internal/quiz"
	"github.com/example/vocab/pkg/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var (
	ErrNotActive     = errors.New("flashcard session is not active")
	ErrUnknownRating = errors.New("unknown rating")
)

// Rating is the learner's own judgement of a card
type Rating int

const (
	Know Rating = iota
	Guess
	DontKnow
)

// Difficulty maps a rating to the difficulty stored for the word
func (r Rating) Difficulty() (models.Difficulty, error) {
	switch r {
	case Know:
		return models.DifficultyEasy, nil
	case Guess:
		return models.DifficultyMedium, nil
	case DontKnow:
		return models.DifficultyHard, nil
	}
	return "", errors.Wrapf(ErrUnknownRating, "rating %d", int(r))
}

func (r Rating) String() string {
	switch r {
	case Know:
		return "know"
	case Guess:
		return "guess"
	case DontKnow:
		return "dont_know"
	}
	return "unknown"
}

// ParseRating accepts the names returned by String
func ParseRating(s string) (Rating, error) {
	switch s {
	case "know", "k":
		return Know, nil
	case "guess", "g":
		return Guess, nil
	case "dont_know", "dontknow", "d":
		return DontKnow, nil
	}
	return 0, errors.Wrapf(ErrUnknownRating, "%q", s)
}

type State int

const (
	StateUninitialized State = iota
	StateActive
	StateNoWords
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateActive:
		return "active"
	case StateNoWords:
		return "no_words"
	case StateFinished:
		return "finished"
	}
	return "unknown"
}

// Card is the word on screen; the translation is revealed by the presenter
type Card struct {
	SessionID string
	Word      models.Word
	Position  int
	Total     int
}

// Stats holds the rating counters
type Stats struct {
	SessionID  string
	Know       int
	Guess      int
	DontKnow   int
	Total      int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Rated is the number of cards rated so far
func (s Stats) Rated() int {
	return s.Know + s.Guess + s.DontKnow
}

// Accuracy is the share of known cards in percent, 0 before any rating
func (s Stats) Accuracy() float64 {
	rated := s.Rated()
	if rated == 0 {
		return 0
	}
	return float64(s.Know) / float64(rated) * 100
}

// QuizResult converts the stats for storage; guesses count as correct
func (s Stats) QuizResult() models.QuizResult {
	return models.QuizResult{
		SessionID:  s.SessionID,
		Mode:       models.ModeFlashcards,
		Total:      s.Rated(),
		Correct:    s.Know + s.Guess,
		Wrong:      s.DontKnow,
		StartedAt:  s.StartedAt,
		FinishedAt: s.FinishedAt,
	}
}

// Renderer receives the session transitions
type Renderer interface {
	ShowCard(c Card)
	ShowNoWords()
	ShowSummary(s Stats)
}

// Session walks a shuffled snapshot of words once. It is not safe for
// concurrent use.
type Session struct {
	source   quiz.WordSource
	writer   quiz.DifficultyWriter
	renderer Renderer
	speaker  quiz.Speaker
	rnd      *rand.Rand
	now      func() time.Time
	log      zerolog.Logger

	state    State
	id       string
	words    []models.Word
	index    int
	know     int
	guess    int
	dontKnow int
	started  time.Time
	finished time.Time
}

type Option func(*Session)

func WithRand(rnd *rand.Rand) Option {
	return func(s *Session) { s.rnd = rnd }
}

func WithRenderer(r Renderer) Option {
	return func(s *Session) { s.renderer = r }
}

func WithSpeaker(sp quiz.Speaker) Option {
	return func(s *Session) { s.speaker = sp }
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *Session) { s.log = log }
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// NewSession creates a session reading from source and writing ratings to writer
func NewSession(source quiz.WordSource, writer quiz.DifficultyWriter, opts ...Option) *Session {
	s := &Session{
		source:   source,
		writer:   writer,
		renderer: nopRenderer{},
		speaker:  nopSpeaker{},
		now:      time.Now,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rnd == nil {
		s.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s
}

// Start begins a session over words, or over the whole store when words is nil
func (s *Session) Start(ctx context.Context, words []models.Word) error {
	if words == nil {
		all, err := s.source.AllWords(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to load flashcard words")
		}
		words = all
	}
	s.begin(append([]models.Word(nil), words...))
	return nil
}

// StartFiltered begins a session over the words matching cfg
func (s *Session) StartFiltered(ctx context.Context, cfg quiz.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	words, err := s.source.Words(ctx, cfg.Difficulties, cfg.Groups)
	if err != nil {
		return errors.Wrap(err, "failed to load flashcard words")
	}
	s.begin(quiz.Filter(words, cfg, s.rnd))
	return nil
}

func (s *Session) begin(words []models.Word) {
	s.rnd.Shuffle(len(words), func(i, j int) {
		words[i], words[j] = words[j], words[i]
	})

	s.id = uuid.NewString()
	s.words = words
	s.index = 0
	s.know, s.guess, s.dontKnow = 0, 0, 0
	s.started = s.now()
	s.finished = time.Time{}

	s.log.Debug().Str("session", s.id).Int("cards", len(words)).Msg("flashcard session started")

	if len(words) == 0 {
		s.state = StateNoWords
		s.renderer.ShowNoWords()
		return
	}
	s.state = StateActive
	s.present()
}

func (s *Session) present() {
	c := s.card()
	s.renderer.ShowCard(c)
	s.speaker.Speak(c.Word.English)
}

func (s *Session) card() Card {
	return Card{SessionID: s.id, Word: s.words[s.index], Position: s.index + 1, Total: len(s.words)}
}

// Current returns the card on screen
func (s *Session) Current() (Card, bool) {
	if s.state != StateActive {
		return Card{}, false
	}
	return s.card(), true
}

// Rate records the rating of the current card, writes the mapped difficulty
// to the store and advances. A store failure is returned after the session
// has advanced; the rating still counts.
func (s *Session) Rate(ctx context.Context, r Rating) error {
	if s.state != StateActive {
		return ErrNotActive
	}
	difficulty, err := r.Difficulty()
	if err != nil {
		return err
	}

	w := s.words[s.index]
	writeErr := s.writer.UpdateDifficulty(ctx, w.English, difficulty)
	if writeErr != nil {
		s.log.Error().Err(writeErr).Str("word", w.English).Msg("failed to store rating")
		writeErr = errors.Wrapf(writeErr, "failed to store rating for %q", w.English)
	}

	switch r {
	case Know:
		s.know++
	case Guess:
		s.guess++
	case DontKnow:
		s.dontKnow++
	}

	s.index++
	if s.index >= len(s.words) {
		s.state = StateFinished
		s.finished = s.now()
		s.renderer.ShowSummary(s.Stats())
	} else {
		s.present()
	}
	return writeErr
}

// Restart reshuffles the same words and resets the counters
func (s *Session) Restart() error {
	if s.state == StateUninitialized {
		return ErrNotActive
	}
	s.begin(s.words)
	return nil
}

func (s *Session) State() State {
	return s.state
}

// Stats returns the counters so far
func (s *Session) Stats() Stats {
	return Stats{
		SessionID:  s.id,
		Know:       s.know,
		Guess:      s.guess,
		DontKnow:   s.dontKnow,
		Total:      len(s.words),
		StartedAt:  s.started,
		FinishedAt: s.finished,
	}
}

type nopRenderer struct{}

func (nopRenderer) ShowCard(Card)     {}
func (nopRenderer) ShowNoWords()      {}
func (nopRenderer) ShowSummary(Stats) {}

type nopSpeaker struct{}

func (nopSpeaker) Speak(string) {}

package quiz

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/example/vocab/pkg/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var (
	// ErrNotActive is returned when an operation needs a question on screen
	ErrNotActive = errors.New("quiz session is not active")
	// ErrNoWords is returned when advancing a session whose filters match nothing
	ErrNoWords = errors.New("no words match the current filters")
	// ErrReadOnly is returned when the session has no store to write to
	ErrReadOnly = errors.New("quiz session has no difficulty writer")
)

// State of a quiz session
type State int

const (
	StateUninitialized State = iota
	StateActive
	// StateNoWords is the part of the active phase where the filters matched
	// nothing; no question is presented until the filters change or the
	// session is restarted.
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

// WordSource is the read side of the word store
type WordSource interface {
	AllWords(ctx context.Context) ([]models.Word, error)
	Words(ctx context.Context, difficulties []models.Difficulty, groups []string) ([]models.Word, error)
}

// DifficultyWriter writes a new difficulty through to the word store
type DifficultyWriter interface {
	UpdateDifficulty(ctx context.Context, english string, difficulty models.Difficulty) error
}

// Speaker pronounces a word without blocking the caller
type Speaker interface {
	Speak(text string)
}

// Renderer receives the session transitions. Implementations belong to the
// presentation layer; the engine ignores whatever they do.
type Renderer interface {
	ShowQuestion(q Question)
	ShowVerdict(v Verdict)
	ShowNoWords()
	ShowResults(r Results)
}

// Mistake records a wrong answer
type Mistake struct {
	English string
	Answer  string
	Correct string
}

// Verdict is the outcome of answering the current question
type Verdict struct {
	Correct  bool
	Answer   string
	Expected string
	// Duplicate is set when the question had already been answered; the
	// counters were not touched.
	Duplicate bool
}

// Results summarises a session
type Results struct {
	SessionID  string
	Mode       models.SessionMode
	Correct    int
	Wrong      int
	Presented  int
	Total      int
	Mistakes   []Mistake
	StartedAt  time.Time
	FinishedAt time.Time
}

// QuizResult converts the results for storage
func (r Results) QuizResult() models.QuizResult {
	return models.QuizResult{
		SessionID:  r.SessionID,
		Mode:       r.Mode,
		Total:      r.Presented,
		Correct:    r.Correct,
		Wrong:      r.Wrong,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
}

// Session is a single-actor quiz state machine. It is not safe for
// concurrent use; presenters serialise calls per session.
type Session struct {
	source   WordSource
	writer   DifficultyWriter
	builder  Builder
	renderer Renderer
	speaker  Speaker
	rnd      *rand.Rand
	sampler  *Sampler
	now      func() time.Time
	log      zerolog.Logger

	state    State
	cfg      Config
	dirty    bool
	id       string
	pool     Pool
	universe []models.Word
	cursor   int
	current  *Question
	answered bool
	correct  int
	wrong    int
	mistakes []Mistake
	started  time.Time
	finished time.Time
}

// Option configures a Session
type Option func(*Session)

// WithRand sets the random source used for shuffling and sampling
func WithRand(rnd *rand.Rand) Option {
	return func(s *Session) { s.rnd = rnd }
}

// WithBuilder selects the question kind; Translation is the default
func WithBuilder(b Builder) Option {
	return func(s *Session) { s.builder = b }
}

func WithRenderer(r Renderer) Option {
	return func(s *Session) { s.renderer = r }
}

func WithSpeaker(sp Speaker) Option {
	return func(s *Session) { s.speaker = sp }
}

func WithWriter(w DifficultyWriter) Option {
	return func(s *Session) { s.writer = w }
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *Session) { s.log = log }
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// NewSession creates an uninitialized session reading from source
func NewSession(source WordSource, opts ...Option) *Session {
	s := &Session{
		source:   source,
		builder:  Translation{},
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
	s.sampler = NewSampler(s.rnd)
	return s
}

// Start validates cfg and begins a new session with it
func (s *Session) Start(ctx context.Context, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.cfg = cfg
	return s.initialize(ctx)
}

// Restart begins a new session with the current configuration
func (s *Session) Restart(ctx context.Context) error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}
	return s.initialize(ctx)
}

// SetConfig changes the filters. A running session keeps its current
// question; the new filters take effect on the next advance.
func (s *Session) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.cfg = cfg
	if s.state == StateActive || s.state == StateNoWords {
		s.dirty = true
	}
	return nil
}

// Config returns the current filters
func (s *Session) Config() Config {
	return s.cfg
}

func (s *Session) initialize(ctx context.Context) error {
	words, err := s.source.Words(ctx, s.cfg.Difficulties, s.cfg.Groups)
	if err != nil {
		return errors.Wrap(err, "failed to load quiz words")
	}
	universe, err := s.source.AllWords(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to load answer candidates")
	}

	eligible := make([]models.Word, 0, len(words))
	for _, w := range words {
		if s.builder.Eligible(w) {
			eligible = append(eligible, w)
		}
	}

	s.id = uuid.NewString()
	s.pool = Filter(eligible, s.cfg, s.rnd)
	s.universe = universe
	s.dirty = false
	s.cursor = 0
	s.current = nil
	s.answered = false
	s.correct = 0
	s.wrong = 0
	s.mistakes = nil
	s.started = s.now()
	s.finished = time.Time{}

	s.log.Debug().
		Str("session", s.id).
		Str("mode", string(s.builder.Mode())).
		Int("pool", len(s.pool)).
		Int("candidates", len(universe)).
		Msg("quiz session started")

	if len(s.pool) == 0 {
		s.state = StateNoWords
		s.renderer.ShowNoWords()
		return nil
	}

	s.state = StateActive
	s.present()
	return nil
}

func (s *Session) present() {
	q := s.builder.Build(s.pool[s.cursor], s.universe, s.sampler)
	q.SessionID = s.id
	q.Position = s.cursor + 1
	q.Total = len(s.pool)
	s.current = &q
	s.answered = false

	s.renderer.ShowQuestion(q)
	s.speaker.Speak(q.Word.English)
}

// Current returns the question on screen
func (s *Session) Current() (Question, bool) {
	if s.state != StateActive || s.current == nil {
		return Question{}, false
	}
	q := *s.current
	q.Options = append([]string(nil), s.current.Options...)
	return q, true
}

// Answer scores the current question. Only the first answer per question
// counts. Comparison ignores case and surrounding whitespace.
func (s *Session) Answer(selected string) (Verdict, error) {
	if s.state != StateActive || s.current == nil {
		return Verdict{}, ErrNotActive
	}

	v := Verdict{
		Answer:   selected,
		Expected: s.current.Answer,
		Correct:  answersMatch(selected, s.current.Answer),
	}
	if s.answered {
		v.Duplicate = true
		return v, nil
	}

	s.answered = true
	if v.Correct {
		s.correct++
	} else {
		s.wrong++
		s.mistakes = append(s.mistakes, Mistake{
			English: s.current.Word.English,
			Answer:  selected,
			Correct: s.current.Answer,
		})
	}

	s.renderer.ShowVerdict(v)
	return v, nil
}

// Next advances to the following question. An unanswered question counts
// as wrong. Pending filter changes restart the session instead.
func (s *Session) Next(ctx context.Context) error {
	switch s.state {
	case StateNoWords:
		if s.dirty {
			return s.initialize(ctx)
		}
		return ErrNoWords
	case StateActive:
	default:
		return ErrNotActive
	}

	if !s.answered {
		s.wrong++
	}

	if s.dirty {
		return s.initialize(ctx)
	}

	s.cursor++
	if s.cursor >= len(s.pool) {
		s.finish()
		return nil
	}
	s.present()
	return nil
}

// Stop ends a running session early and returns its results. An unanswered
// question on screen is dropped from the results instead of being scored, so
// Presented stays equal to Correct+Wrong.
func (s *Session) Stop() Results {
	if s.state != StateActive {
		return s.Results()
	}
	if s.answered {
		s.cursor++
	}
	s.finish()
	return s.Results()
}

func (s *Session) finish() {
	s.state = StateFinished
	s.current = nil
	s.finished = s.now()

	res := s.Results()
	s.log.Debug().
		Str("session", s.id).
		Int("correct", res.Correct).
		Int("wrong", res.Wrong).
		Msg("quiz session finished")
	s.renderer.ShowResults(res)
}

// UpdateCurrentDifficulty stores a new difficulty for the word on screen.
// The running pool is a snapshot and is not changed.
func (s *Session) UpdateCurrentDifficulty(ctx context.Context, difficulty models.Difficulty) error {
	if s.state != StateActive || s.current == nil {
		return ErrNotActive
	}
	if s.writer == nil {
		return ErrReadOnly
	}
	return s.writer.UpdateDifficulty(ctx, s.current.Word.English, difficulty)
}

// State returns the current state
func (s *Session) State() State {
	return s.state
}

// Dirty reports whether filter changes wait for the next advance
func (s *Session) Dirty() bool {
	return s.dirty
}

// Results returns the counters so far
func (s *Session) Results() Results {
	presented := 0
	switch s.state {
	case StateActive:
		presented = s.cursor + 1
	case StateFinished:
		presented = s.cursor
	}
	return Results{
		SessionID:  s.id,
		Mode:       s.builder.Mode(),
		Correct:    s.correct,
		Wrong:      s.wrong,
		Presented:  presented,
		Total:      len(s.pool),
		Mistakes:   append([]Mistake(nil), s.mistakes...),
		StartedAt:  s.started,
		FinishedAt: s.finished,
	}
}

func answersMatch(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

type nopRenderer struct{}

func (nopRenderer) ShowQuestion(Question) {}
func (nopRenderer) ShowVerdict(Verdict)   {}
func (nopRenderer) ShowNoWords()          {}
func (nopRenderer) ShowResults(Results)   {}

type nopSpeaker struct{}

func (nopSpeaker) Speak(string) {}

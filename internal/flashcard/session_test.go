package flashcard

import (
	"context"
	"math/rand"
	"testing"

	"github.com/example/vocab/internal/quiz"
	"github.com/example/vocab/pkg/models"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	words  []models.Word
	failOn string
}

func (m *memoryStore) AllWords(context.Context) ([]models.Word, error) {
	return append([]models.Word(nil), m.words...), nil
}

func (m *memoryStore) Words(_ context.Context, difficulties []models.Difficulty, groups []string) ([]models.Word, error) {
	return quiz.Filter(m.words, quiz.Config{Difficulties: difficulties, Groups: groups}, rand.New(rand.NewSource(0))), nil
}

func (m *memoryStore) UpdateDifficulty(_ context.Context, english string, d models.Difficulty) error {
	if english == m.failOn {
		return errors.New("disk full")
	}
	for i := range m.words {
		if m.words[i].English == english {
			m.words[i].Difficulty = d
		}
	}
	return nil
}

func (m *memoryStore) difficulty(english string) models.Difficulty {
	for _, w := range m.words {
		if w.English == english {
			return w.Difficulty
		}
	}
	return ""
}

func newStore() *memoryStore {
	return &memoryStore{words: []models.Word{
		{English: "chore", Translation: "מטלה", Difficulty: models.DifficultyNew},
		{English: "remorse", Translation: "חרטה", Difficulty: models.DifficultyNew},
		{English: "more", Translation: "עוד", Difficulty: models.DifficultyEasy},
		{English: "vigour", Translation: "חוסן", Difficulty: models.DifficultyHard},
		{English: "ample", Translation: "רב", Difficulty: models.DifficultyMedium},
	}}
}

type recorder struct {
	cards   []Card
	noWords int
	summary []Stats
	spoken  []string
}

func (r *recorder) ShowCard(c Card)     { r.cards = append(r.cards, c) }
func (r *recorder) ShowNoWords()        { r.noWords++ }
func (r *recorder) ShowSummary(s Stats) { r.summary = append(r.summary, s) }
func (r *recorder) Speak(text string)   { r.spoken = append(r.spoken, text) }

func TestRatingDifficulty(t *testing.T) {
	tests := []struct {
		rating Rating
		want   models.Difficulty
	}{
		{Know, models.DifficultyEasy},
		{Guess, models.DifficultyMedium},
		{DontKnow, models.DifficultyHard},
	}
	for _, tt := range tests {
		t.Run(tt.rating.String(), func(t *testing.T) {
			got, err := tt.rating.Difficulty()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			parsed, err := ParseRating(tt.rating.String())
			require.NoError(t, err)
			assert.Equal(t, tt.rating, parsed)
		})
	}

	_, err := Rating(9).Difficulty()
	assert.ErrorIs(t, err, ErrUnknownRating)
	_, err = ParseRating("maybe")
	assert.ErrorIs(t, err, ErrUnknownRating)
}

func TestStatsAccuracy(t *testing.T) {
	assert.InDelta(t, 60.0, Stats{Know: 3, Guess: 1, DontKnow: 1}.Accuracy(), 0.0001)
	assert.Equal(t, 0.0, Stats{}.Accuracy())
	assert.InDelta(t, 100.0, Stats{Know: 2}.Accuracy(), 0.0001)
}

func TestSessionRatesWriteThrough(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	rec := &recorder{}
	s := NewSession(store, store, WithRand(rand.New(rand.NewSource(1))), WithRenderer(rec), WithSpeaker(rec))
	assert.Equal(t, StateUninitialized, s.State())

	require.NoError(t, s.Start(ctx, nil))
	assert.Equal(t, StateActive, s.State())

	ratings := []Rating{Know, Know, Know, Guess, DontKnow}
	want := map[string]models.Difficulty{}
	seen := map[string]bool{}
	for i, r := range ratings {
		c, ok := s.Current()
		require.True(t, ok)
		assert.Equal(t, i+1, c.Position)
		assert.Equal(t, 5, c.Total)
		assert.Equal(t, s.Stats().SessionID, c.SessionID)
		seen[c.Word.English] = true

		d, _ := r.Difficulty()
		want[c.Word.English] = d
		require.NoError(t, s.Rate(ctx, r))
		assert.Equal(t, d, store.difficulty(c.Word.English), "rating is stored before the next card")
	}

	assert.Len(t, seen, 5)
	assert.Equal(t, StateFinished, s.State())
	stats := s.Stats()
	assert.Equal(t, 3, stats.Know)
	assert.Equal(t, 1, stats.Guess)
	assert.Equal(t, 1, stats.DontKnow)
	assert.InDelta(t, 60.0, stats.Accuracy(), 0.0001)

	require.Len(t, rec.summary, 1)
	assert.Len(t, rec.cards, 5)
	assert.Len(t, rec.spoken, 5)
	for english, d := range want {
		assert.Equal(t, d, store.difficulty(english))
	}

	_, ok := s.Current()
	assert.False(t, ok)
	assert.ErrorIs(t, s.Rate(ctx, Know), ErrNotActive)
}

func TestSessionExplicitWords(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	s := NewSession(store, store, WithRand(rand.New(rand.NewSource(2))))

	words := store.words[:2]
	require.NoError(t, s.Start(ctx, words))
	c, _ := s.Current()
	assert.Equal(t, 2, c.Total)
	assert.Equal(t, "chore", words[0].English, "caller slice is not reordered")
}

func TestSessionStartFiltered(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	s := NewSession(store, store, WithRand(rand.New(rand.NewSource(3))))

	require.NoError(t, s.StartFiltered(ctx, quiz.Config{Difficulties: []models.Difficulty{models.DifficultyNew}}))
	c, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, 2, c.Total)
	assert.Equal(t, models.DifficultyNew, c.Word.Difficulty)

	assert.ErrorIs(t, s.StartFiltered(ctx, quiz.Config{}), quiz.ErrNoDifficulty)
}

func TestSessionNoWords(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	s := NewSession(&memoryStore{}, &memoryStore{}, WithRenderer(rec))

	require.NoError(t, s.Start(ctx, nil))
	assert.Equal(t, StateNoWords, s.State())
	assert.Equal(t, 1, rec.noWords)
	assert.ErrorIs(t, s.Rate(ctx, Know), ErrNotActive)
	assert.Equal(t, 0.0, s.Stats().Accuracy())
}

func TestSessionStoreFailureStillAdvances(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	s := NewSession(store, store, WithRand(rand.New(rand.NewSource(4))))
	require.NoError(t, s.Start(ctx, store.words[:1]))

	store.failOn = "chore"
	err := s.Rate(ctx, Know)
	assert.Error(t, err)
	assert.Equal(t, StateFinished, s.State())
	assert.Equal(t, 1, s.Stats().Know)
}

func TestSessionRestart(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	s := NewSession(store, store, WithRand(rand.New(rand.NewSource(5))))
	assert.ErrorIs(t, s.Restart(), ErrNotActive)

	require.NoError(t, s.Start(ctx, nil))
	first := s.Stats().SessionID
	for s.State() == StateActive {
		require.NoError(t, s.Rate(ctx, DontKnow))
	}
	assert.Equal(t, 5, s.Stats().DontKnow)

	require.NoError(t, s.Restart())
	assert.Equal(t, StateActive, s.State())
	assert.Equal(t, 0, s.Stats().Rated())
	assert.NotEqual(t, first, s.Stats().SessionID)

	qr := s.Stats().QuizResult()
	assert.Equal(t, models.ModeFlashcards, qr.Mode)
}

package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/example/vocab/pkg/models"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu       sync.Mutex
	missing  []models.Word
	examples map[string]string
	limit    int
}

func (f *fakeStore) WordsMissingExamples(_ context.Context, limit int) ([]models.Word, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.limit = limit
	var out []models.Word
	for _, w := range f.missing {
		if _, ok := f.examples[w.English]; !ok && len(out) < limit {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateExamples(_ context.Context, english, examples string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.examples[english] = examples
	return nil
}

func (f *fakeStore) filled(english string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.examples[english]
	return e, ok
}

type fakeSource map[string]string

func (f fakeSource) FetchExamples(_ context.Context, word string) (string, error) {
	if word == "broken" {
		return "", errors.New("timeout")
	}
	return f[word], nil
}

func newStore(words ...string) *fakeStore {
	s := &fakeStore{examples: map[string]string{}}
	for _, w := range words {
		s.missing = append(s.missing, models.Word{English: w})
	}
	return s
}

func TestBackfillExamples(t *testing.T) {
	store := newStore("chore", "broken", "vigour", "remorse")
	source := fakeSource{"chore": "Washing dishes is a chore.", "remorse": "He showed no remorse."}
	s := New(store, source, time.Hour, 10, zerolog.Nop())

	filled, err := s.BackfillExamples(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, filled)
	assert.Equal(t, 10, store.limit)

	e, ok := store.filled("chore")
	assert.True(t, ok)
	assert.Equal(t, "Washing dishes is a chore.", e)
	_, ok = store.filled("vigour")
	assert.False(t, ok, "empty lookups are not stored")
}

func TestBackfillBatch(t *testing.T) {
	store := newStore("a", "b", "c")
	source := fakeSource{"a": "x", "b": "y", "c": "z"}
	s := New(store, source, time.Hour, 2, zerolog.Nop())

	filled, err := s.BackfillExamples(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, filled)

	filled, err = s.BackfillExamples(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, filled)
}

func TestNewDefaults(t *testing.T) {
	s := New(newStore(), fakeSource{}, 0, 0, zerolog.Nop())
	assert.Equal(t, DefaultInterval, s.interval)
	assert.Equal(t, DefaultBatch, s.batch)
}

func TestStartRunsImmediately(t *testing.T) {
	store := newStore("chore")
	s := New(store, fakeSource{"chore": "Washing dishes is a chore."}, time.Hour, 5, zerolog.Nop())

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool {
		_, ok := store.filled("chore")
		return ok
	}, 2*time.Second, 10*time.Millisecond)
}

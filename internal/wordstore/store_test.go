package wordstore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/example/vocab/internal/database"
	"github.com/example/vocab/internal/translate"
	"github.com/example/vocab/pkg/models"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	translations map[string]string
	examples     map[string]string
	exampleErr   error
	lookups      int
}

func (f *fakeProvider) Translate(_ context.Context, word string) (string, error) {
	f.lookups++
	return f.translations[word], nil
}

func (f *fakeProvider) FetchExamples(_ context.Context, word string) (string, error) {
	if f.exampleErr != nil {
		return "", f.exampleErr
	}
	return f.examples[word], nil
}

func newTestStore(t *testing.T) (*Store, *fakeProvider) {
	t.Helper()
	db, err := database.Connect(database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	provider := &fakeProvider{
		translations: map[string]string{
			"chore":   "מטלה",
			"remorse": "חרטה",
			"more":    "עוד",
			"vigour":  "חוסן",
		},
		examples: map[string]string{"chore": "Washing dishes is a chore."},
	}
	return New(database.NewWordRepository(db), provider, zerolog.Nop()), provider
}

func TestAddWord(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	word, err := store.AddWord(ctx, " Chore ", "book 1")
	require.NoError(t, err)
	assert.Equal(t, "chore", word.English)
	assert.Equal(t, "מטלה", word.Translation)
	assert.Equal(t, "Washing dishes is a chore.", word.ExampleText())
	assert.Equal(t, models.DifficultyNew, word.Difficulty)
	assert.Equal(t, "book 1", word.GroupName())

	word, err = store.AddWord(ctx, "remorse", "")
	require.NoError(t, err)
	assert.False(t, word.Examples.Valid)
	assert.False(t, word.Group.Valid)
}

func TestAddWordUniqueness(t *testing.T) {
	ctx := context.Background()
	store, provider := newTestStore(t)

	_, err := store.AddWord(ctx, "chore", "")
	require.NoError(t, err)

	for _, variant := range []string{"chore", "CHORE", "Chore", "  cHoRe"} {
		_, err := store.AddWord(ctx, variant, "")
		assert.True(t, errors.Is(err, ErrAlreadyExists), "%q: %v", variant, err)
	}
	assert.Equal(t, 1, provider.lookups, "duplicates must not hit the translation provider")

	all, err := store.AllWords(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAddWordTranslationUnavailable(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	_, err := store.AddWord(ctx, "qwzx", "")
	assert.True(t, errors.Is(err, ErrTranslationUnavailable))

	details, err := store.WordDetails(ctx, "qwzx")
	require.NoError(t, err)
	assert.Nil(t, details)

	_, err = store.AddWord(ctx, "   ", "")
	assert.True(t, errors.Is(err, ErrEmptyWord))
}

func TestAddWordExamplesBestEffort(t *testing.T) {
	ctx := context.Background()
	store, provider := newTestStore(t)
	provider.exampleErr = errors.New("timeout")

	word, err := store.AddWord(ctx, "chore", "")
	require.NoError(t, err)
	assert.False(t, word.Examples.Valid)
}

func TestFilteredReads(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	for _, w := range []string{"chore", "remorse", "more", "vigour"} {
		_, err := store.AddWord(ctx, w, "")
		require.NoError(t, err)
	}
	require.NoError(t, store.UpdateDifficulty(ctx, "chore", models.DifficultyEasy))
	require.NoError(t, store.UpdateDifficulty(ctx, "more", models.DifficultyHard))
	require.NoError(t, store.UpdateGroup(ctx, "more", "ch1"))
	require.NoError(t, store.UpdateGroup(ctx, "vigour", "ch2"))

	easy, err := store.WordsByDifficulty(ctx, []models.Difficulty{models.DifficultyEasy})
	require.NoError(t, err)
	require.Len(t, easy, 1)
	assert.Equal(t, "chore", easy[0].English)

	none, err := store.WordsByDifficulty(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)

	grouped, err := store.WordsByGroup(ctx, []string{"ch1", "ch2"})
	require.NoError(t, err)
	assert.Len(t, grouped, 2)

	both, err := store.Words(ctx, []models.Difficulty{models.DifficultyHard}, []string{"ch1", "ch2"})
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, "more", both[0].English)

	groups, err := store.DistinctGroups(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ch1", "ch2"}, groups)

	found, err := store.Search(ctx, "vig")
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestPointUpdatesOnMissingWord(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	assert.True(t, errors.Is(store.UpdateDifficulty(ctx, "ghost", models.DifficultyEasy), ErrNotFound))
	assert.True(t, errors.Is(store.UpdateGroup(ctx, "ghost", "x"), ErrNotFound))
	assert.True(t, errors.Is(store.DeleteWord(ctx, "ghost"), ErrNotFound))
	assert.True(t, errors.Is(store.UpdateDifficulty(ctx, "ghost", "SUPER"), ErrInvalidDifficulty))
}

func TestUpdateDifficultyLastWriteWins(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	_, err := store.AddWord(ctx, "chore", "")
	require.NoError(t, err)

	require.NoError(t, store.UpdateDifficulty(ctx, "chore", models.DifficultyEasy))
	require.NoError(t, store.UpdateDifficulty(ctx, "chore", models.DifficultyHard))

	word, err := store.WordDetails(ctx, "CHORE")
	require.NoError(t, err)
	assert.Equal(t, models.DifficultyHard, word.Difficulty)
}

func TestGroupManagement(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	for _, w := range []string{"chore", "remorse", "more"} {
		_, err := store.AddWord(ctx, w, "old")
		require.NoError(t, err)
	}

	n, err := store.RenameGroup(ctx, "old", "new")
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	_, err = store.RenameGroup(ctx, "old", "newer")
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, store.UpdateGroup(ctx, "more", "other"))
	n, err = store.DeleteGroup(ctx, "new", "")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = store.DeleteGroup(ctx, "other", "kept")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	groups, err := store.DistinctGroups(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"kept"}, groups)

	stats, err := store.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 3, stats.ByDifficulty[models.DifficultyNew])
	assert.Equal(t, map[string]int{"": 2, "kept": 1}, stats.ByGroup)
}

func TestImportWord(t *testing.T) {
	ctx := context.Background()
	store, provider := newTestStore(t)

	created, err := store.ImportWord(ctx, models.Word{English: "Chore", Translation: "מטלה", Difficulty: models.DifficultyHard})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = store.ImportWord(ctx, models.Word{English: "chore", Translation: "עבודה", Difficulty: models.DifficultyEasy, Group: models.NullString("g")})
	require.NoError(t, err)
	assert.False(t, created)

	word, err := store.WordDetails(ctx, "chore")
	require.NoError(t, err)
	assert.Equal(t, "עבודה", word.Translation)
	assert.Equal(t, models.DifficultyEasy, word.Difficulty)
	assert.Equal(t, "g", word.GroupName())
	assert.Zero(t, provider.lookups)

	_, err = store.ImportWord(ctx, models.Word{English: "x", Translation: "y", Difficulty: "WEIRD"})
	assert.True(t, errors.Is(err, ErrInvalidDifficulty))
}

func TestWordsMissingExamples(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	for _, w := range []string{"chore", "remorse", "more"} {
		_, err := store.AddWord(ctx, w, "")
		require.NoError(t, err)
	}

	missing, err := store.WordsMissingExamples(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, missing, 2)

	require.NoError(t, store.UpdateExamples(ctx, "more", "I want more."))
	missing, err = store.WordsMissingExamples(ctx, 10)
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.True(t, strings.HasPrefix(missing[0].English, "remorse"))
}

func TestAddWordFetchesMorfixPageOnce(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`<html><body>
<div class="normal_translation_div">חרטה</div>
<ul class="Translation_ulFooter_enTohe"><li>He showed no remorse.</li></ul>
</body></html>`))
	}))
	t.Cleanup(srv.Close)

	db, err := database.Connect(database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	morfix := translate.NewMorfix(srv.URL, time.Second, zerolog.Nop())
	provider := &translate.Chain{
		Translators: []translate.Translator{morfix},
		Examples:    []translate.ExampleSource{morfix},
		Log:         zerolog.Nop(),
	}
	store := New(database.NewWordRepository(db), provider, zerolog.Nop())

	word, err := store.AddWord(context.Background(), "remorse", "")
	require.NoError(t, err)
	assert.Equal(t, "חרטה", word.Translation)
	assert.Equal(t, "He showed no remorse.", word.ExampleText())
	assert.Equal(t, int32(1), hits.Load())

	_, err = store.AddWord(context.Background(), "vigour", "")
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load(), "the cache lives for one add")
}

package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"testing"

	"github.com/example/vocab/internal/flashcard"
	"github.com/example/vocab/internal/quiz"
	"github.com/example/vocab/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	words []models.Word
}

func (m *memoryStore) AllWords(context.Context) ([]models.Word, error) {
	return append([]models.Word(nil), m.words...), nil
}

func (m *memoryStore) Words(_ context.Context, difficulties []models.Difficulty, groups []string) ([]models.Word, error) {
	return quiz.Filter(m.words, quiz.Config{Difficulties: difficulties, Groups: groups}, rand.New(rand.NewSource(1))), nil
}

func (m *memoryStore) UpdateDifficulty(_ context.Context, english string, d models.Difficulty) error {
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

func newMemoryStore() *memoryStore {
	return &memoryStore{words: []models.Word{
		{English: "chore", Translation: "מטלה", Difficulty: models.DifficultyEasy},
		{English: "remorse", Translation: "חרטה", Difficulty: models.DifficultyEasy},
		{English: "more", Translation: "עוד", Difficulty: models.DifficultyEasy},
		{English: "vigour", Translation: "חוסן", Difficulty: models.DifficultyEasy},
	}}
}

var allEasy = quiz.Config{Difficulties: []models.Difficulty{models.DifficultyEasy}}

// answeringReader types the number of the correct option of whatever
// question is on screen
type answeringReader struct {
	s   *quiz.Session
	buf []byte
}

func (r *answeringReader) Read(p []byte) (int, error) {
	if len(r.buf) == 0 {
		q, ok := r.s.Current()
		if !ok {
			return 0, io.EOF
		}
		for i, o := range q.Options {
			if o == q.Answer {
				r.buf = []byte(fmt.Sprintf("%d\n", i+1))
			}
		}
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

func TestPlayQuizAllCorrect(t *testing.T) {
	var out bytes.Buffer
	s := quiz.NewSession(newMemoryStore(), quiz.WithRenderer(quizPrinter{out: &out}))

	res, err := playQuiz(context.Background(), s, allEasy, &answeringReader{s: s}, &out)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Correct)
	assert.Equal(t, 0, res.Wrong)
	assert.Equal(t, quiz.StateFinished, s.State())
	assert.Contains(t, out.String(), "Correct: 4  Wrong: 0  Questions: 4")
	assert.Equal(t, 4, strings.Count(out.String(), "correct\n"))
}

func TestPlayQuizSkipAndHelp(t *testing.T) {
	var out bytes.Buffer
	s := quiz.NewSession(newMemoryStore(), quiz.WithRenderer(quizPrinter{out: &out}))

	res, err := playQuiz(context.Background(), s, allEasy, strings.NewReader("9\nabc\ns\n\ns\ns\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Correct)
	assert.Equal(t, 4, res.Wrong)
	assert.Empty(t, res.Mistakes)
	assert.Equal(t, 2, strings.Count(out.String(), quizHelp))
}

func TestPlayQuizQuit(t *testing.T) {
	var out bytes.Buffer
	s := quiz.NewSession(newMemoryStore(), quiz.WithRenderer(quizPrinter{out: &out}))

	res, err := playQuiz(context.Background(), s, allEasy, strings.NewReader("s\nq\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Presented)
	assert.Equal(t, 1, res.Wrong)
	assert.Equal(t, res.Presented, res.QuizResult().Total)
	assert.Equal(t, quiz.StateFinished, s.State())
	assert.Contains(t, out.String(), "Correct: 0  Wrong: 1  Questions: 1")
}

func TestPlayQuizInputEnds(t *testing.T) {
	var out bytes.Buffer
	s := quiz.NewSession(newMemoryStore(), quiz.WithRenderer(quizPrinter{out: &out}))

	res, err := playQuiz(context.Background(), s, allEasy, strings.NewReader("s\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Presented)
	assert.Equal(t, res.Presented, res.Correct+res.Wrong)
	assert.Equal(t, quiz.StateFinished, s.State())
}

func TestPlayQuizRerate(t *testing.T) {
	var out bytes.Buffer
	store := newMemoryStore()
	s := quiz.NewSession(store, quiz.WithRenderer(quizPrinter{out: &out}), quiz.WithWriter(store))

	_, err := playQuiz(context.Background(), s, allEasy, strings.NewReader(":hard\n:bogus\nq\n"), &out)
	require.NoError(t, err)

	hard := 0
	for _, w := range store.words {
		if w.Difficulty == models.DifficultyHard {
			hard++
		}
	}
	assert.Equal(t, 1, hard)
	assert.Contains(t, out.String(), "is now Hard")
}

func TestPlayQuizNoWords(t *testing.T) {
	var out bytes.Buffer
	s := quiz.NewSession(newMemoryStore(), quiz.WithRenderer(quizPrinter{out: &out}))

	res, err := playQuiz(context.Background(), s, quiz.Config{Difficulties: []models.Difficulty{models.DifficultyHard}}, strings.NewReader(""), &out)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Presented)
	assert.Contains(t, out.String(), "No words match")
}

func TestPlayFlashcards(t *testing.T) {
	var out bytes.Buffer
	store := newMemoryStore()
	s := flashcard.NewSession(store, store, flashcard.WithRenderer(cardPrinter{out: &out}))
	start := func() error { return s.Start(context.Background(), nil) }

	stats, err := playFlashcards(context.Background(), s, start, strings.NewReader("r\nk\nx\ng\nd\nk\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Know)
	assert.Equal(t, 1, stats.Guess)
	assert.Equal(t, 1, stats.DontKnow)
	assert.Contains(t, out.String(), "Accuracy: 50%")
	assert.Contains(t, out.String(), flashcardHelp)

	changed := 0
	for _, w := range store.words {
		if w.Difficulty != models.DifficultyEasy {
			changed++
		}
	}
	assert.Equal(t, 2, changed)
}

func TestParseDifficulties(t *testing.T) {
	all, err := parseDifficulties(nil)
	require.NoError(t, err)
	assert.Equal(t, models.Difficulties, all)

	some, err := parseDifficulties([]string{"easy", "HARD", "new"})
	require.NoError(t, err)
	assert.Equal(t, []models.Difficulty{models.DifficultyEasy, models.DifficultyHard, models.DifficultyNew}, some)

	_, err = parseDifficulties([]string{"sometimes"})
	assert.Error(t, err)
}

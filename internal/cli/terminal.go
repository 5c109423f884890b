package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/example/vocab/internal/flashcard"
	"github.com/example/vocab/internal/quiz"
)

// quizPrinter renders quiz transitions as plain text
type quizPrinter struct {
	out io.Writer
}

func (p quizPrinter) ShowQuestion(q quiz.Question) {
	fmt.Fprintf(p.out, "\n[%d/%d] %s\n", q.Position, q.Total, q.Prompt)
	for i, o := range q.Options {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, o)
	}
}

func (p quizPrinter) ShowVerdict(v quiz.Verdict) {
	if v.Correct {
		fmt.Fprintln(p.out, "correct")
		return
	}
	fmt.Fprintf(p.out, "wrong, the answer is %s\n", v.Expected)
}

func (p quizPrinter) ShowNoWords() {
	fmt.Fprintln(p.out, "No words match the selected difficulties and groups.")
}

func (p quizPrinter) ShowResults(r quiz.Results) {
	fmt.Fprintf(p.out, "\nCorrect: %d  Wrong: %d  Questions: %d\n", r.Correct, r.Wrong, r.Presented)
	if len(r.Mistakes) == 0 {
		return
	}
	fmt.Fprintln(p.out, "Mistakes:")
	for _, m := range r.Mistakes {
		answer := m.Answer
		if strings.TrimSpace(answer) == "" {
			answer = "-"
		}
		fmt.Fprintf(p.out, "  %s: answered %s, correct %s\n", m.English, answer, m.Correct)
	}
}

// cardPrinter renders flashcard transitions as plain text
type cardPrinter struct {
	out io.Writer
}

func (p cardPrinter) ShowCard(c flashcard.Card) {
	fmt.Fprintf(p.out, "\n[%d/%d] %s\n", c.Position, c.Total, c.Word.English)
}

func (p cardPrinter) ShowNoWords() {
	fmt.Fprintln(p.out, "No words to practise.")
}

func (p cardPrinter) ShowSummary(s flashcard.Stats) {
	fmt.Fprintf(p.out, "\nKnow: %d  Guess: %d  Don't know: %d  Accuracy: %.0f%%\n",
		s.Know, s.Guess, s.DontKnow, s.Accuracy())
}

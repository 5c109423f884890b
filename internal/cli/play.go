package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/vocab/internal/flashcard"
	"github.com/example/vocab/internal/quiz"
	"github.com/example/vocab/pkg/models"
	"github.com/spf13/cobra"
)

type quizMode int

const (
	quizModeTranslation quizMode = iota
	quizModeFillBlank
)

const quizHelp = "answer with 1-4, s to skip, :easy :medium :hard :new to re-rate the word, q to quit"

func newQuizCommand(a *app, mode quizMode) *cobra.Command {
	var (
		difficulties []string
		groups       []string
		limit        int
	)
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Multiple choice quiz: pick the Hebrew translation",
		Args:  cobra.NoArgs,
	}
	builder := quiz.Builder(quiz.Translation{})
	if mode == quizModeFillBlank {
		cmd.Use = "fill-blank"
		cmd.Short = "Multiple choice quiz: fill the missing word into an example sentence"
		builder = quiz.FillBlank{}
	}
	cmd.Flags().StringSliceVarP(&difficulties, "difficulty", "d", nil, "difficulties to practise, all by default")
	cmd.Flags().StringSliceVarP(&groups, "group", "g", nil, "groups to practise, all by default")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of questions, 0 for no limit")

	cmd.RunE = a.withApp(func(ctx context.Context, cmd *cobra.Command, _ []string) error {
		diffs, err := parseDifficulties(difficulties)
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("limit") {
			limit = a.cfg.Quiz.Limit
		}

		out := cmd.OutOrStdout()
		session := quiz.NewSession(a.store,
			quiz.WithBuilder(builder),
			quiz.WithRenderer(quizPrinter{out: out}),
			quiz.WithSpeaker(a.speaker()),
			quiz.WithWriter(a.store),
			quiz.WithLogger(a.log),
		)
		fmt.Fprintln(out, quizHelp)
		results, err := playQuiz(ctx, session, quiz.Config{Difficulties: diffs, Groups: groups, Limit: limit}, cmd.InOrStdin(), out)
		if err != nil {
			return err
		}
		a.saveResult(ctx, results.QuizResult())
		return nil
	})
	return cmd
}

// playQuiz runs a quiz session on line input until the pool is exhausted,
// the user quits or the input ends.
func playQuiz(ctx context.Context, s *quiz.Session, cfg quiz.Config, in io.Reader, out io.Writer) (quiz.Results, error) {
	if err := s.Start(ctx, cfg); err != nil {
		return quiz.Results{}, err
	}
	scanner := bufio.NewScanner(in)
	for s.State() == quiz.StateActive {
		q, _ := s.Current()
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		input := strings.ToLower(strings.TrimSpace(scanner.Text()))

		switch {
		case input == "q":
			return s.Stop(), nil
		case input == "s" || input == "":
			if err := s.Next(ctx); err != nil {
				return s.Results(), err
			}
		case strings.HasPrefix(input, ":"):
			d, err := models.ParseDifficulty(input[1:])
			if err != nil {
				fmt.Fprintln(out, quizHelp)
				continue
			}
			if err := s.UpdateCurrentDifficulty(ctx, d); err != nil {
				return s.Results(), err
			}
			fmt.Fprintf(out, "%s is now %s\n", q.Word.English, d.Label())
		default:
			n, err := strconv.Atoi(input)
			if err != nil || n < 1 || n > len(q.Options) {
				fmt.Fprintln(out, quizHelp)
				continue
			}
			if _, err := s.Answer(q.Options[n-1]); err != nil {
				return s.Results(), err
			}
			if err := s.Next(ctx); err != nil {
				return s.Results(), err
			}
		}
	}
	// input ended mid-quiz
	res := s.Stop()
	return res, scanner.Err()
}

const flashcardHelp = "r to reveal, k know, g guess, d don't know, q to quit"

func newFlashcardsCommand(a *app) *cobra.Command {
	var (
		difficulties []string
		groups       []string
		limit        int
	)
	cmd := &cobra.Command{
		Use:   "flashcards",
		Short: "Rate yourself on each word; ratings update its difficulty",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringSliceVarP(&difficulties, "difficulty", "d", nil, "difficulties to practise, all by default")
	cmd.Flags().StringSliceVarP(&groups, "group", "g", nil, "groups to practise, all by default")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of cards, 0 for no limit")

	cmd.RunE = a.withApp(func(ctx context.Context, cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		session := flashcard.NewSession(a.store, a.store,
			flashcard.WithRenderer(cardPrinter{out: out}),
			flashcard.WithSpeaker(a.speaker()),
			flashcard.WithLogger(a.log),
		)

		filtered := len(difficulties) > 0 || len(groups) > 0 || limit > 0
		var start func() error
		if filtered {
			diffs, err := parseDifficulties(difficulties)
			if err != nil {
				return err
			}
			cfg := quiz.Config{Difficulties: diffs, Groups: groups, Limit: limit}
			start = func() error { return session.StartFiltered(ctx, cfg) }
		} else {
			start = func() error { return session.Start(ctx, nil) }
		}

		fmt.Fprintln(out, flashcardHelp)
		stats, err := playFlashcards(ctx, session, start, cmd.InOrStdin(), out)
		if err != nil {
			return err
		}
		a.saveResult(ctx, stats.QuizResult())
		return nil
	})
	return cmd
}

// playFlashcards runs a flashcard session on line input
func playFlashcards(ctx context.Context, s *flashcard.Session, start func() error, in io.Reader, out io.Writer) (flashcard.Stats, error) {
	if err := start(); err != nil {
		return flashcard.Stats{}, err
	}
	p := cardPrinter{out: out}

	scanner := bufio.NewScanner(in)
	for s.State() == flashcard.StateActive {
		c, _ := s.Current()
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		input := strings.ToLower(strings.TrimSpace(scanner.Text()))

		switch input {
		case "q":
			stats := s.Stats()
			p.ShowSummary(stats)
			return stats, nil
		case "r", "":
			fmt.Fprintf(out, "%s\n", c.Word.Translation)
			if e := c.Word.ExampleText(); e != "" {
				fmt.Fprintln(out, e)
			}
			continue
		}

		rating, err := flashcard.ParseRating(input)
		if err != nil {
			fmt.Fprintln(out, flashcardHelp)
			continue
		}
		if err := s.Rate(ctx, rating); err != nil {
			fmt.Fprintf(out, "rating not saved: %v\n", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return s.Stats(), err
	}
	return s.Stats(), nil
}

package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/example/vocab/internal/excel"
	"github.com/example/vocab/internal/wordstore"
	"github.com/example/vocab/pkg/models"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newAddCommand(a *app) *cobra.Command {
	var group string
	cmd := &cobra.Command{
		Use:   "add WORD...",
		Short: "Translate and store new words",
		Args:  cobra.MinimumNArgs(1),
	}
	cmd.Flags().StringVarP(&group, "group", "g", "", "group for the new words")
	cmd.RunE = a.withApp(func(ctx context.Context, cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		failed := 0
		for _, english := range args {
			word, err := a.store.AddWord(ctx, english, group)
			switch {
			case err == nil:
				fmt.Fprintf(out, "added %s: %s\n", word.English, word.Translation)
			case errors.Is(err, wordstore.ErrAlreadyExists):
				fmt.Fprintf(out, "skipped %s: already in the vocabulary\n", models.NormalizeEnglish(english))
			case errors.Is(err, wordstore.ErrTranslationUnavailable):
				failed++
				fmt.Fprintf(out, "failed %s: no translation found\n", models.NormalizeEnglish(english))
			default:
				return err
			}
		}
		if failed > 0 {
			return errors.Errorf("%d word(s) could not be translated", failed)
		}
		return nil
	})
	return cmd
}

func newListCommand(a *app) *cobra.Command {
	var (
		search       string
		difficulties []string
		groups       []string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List words",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "only words containing this text")
	cmd.Flags().StringSliceVarP(&difficulties, "difficulty", "d", nil, "filter by difficulty (new, easy, medium, hard)")
	cmd.Flags().StringSliceVarP(&groups, "group", "g", nil, "filter by group")
	cmd.RunE = a.withApp(func(ctx context.Context, cmd *cobra.Command, _ []string) error {
		var (
			words []models.Word
			err   error
		)
		if search != "" {
			words, err = a.store.Search(ctx, search)
		} else {
			var diffs []models.Difficulty
			if len(difficulties) > 0 {
				if diffs, err = parseDifficulties(difficulties); err != nil {
					return err
				}
			}
			words, err = a.store.Words(ctx, diffs, groups)
		}
		if err != nil {
			return err
		}
		printWords(cmd.OutOrStdout(), words)
		return nil
	})
	return cmd
}

func newShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show WORD",
		Short: "Show a word with its examples",
		Args:  cobra.ExactArgs(1),
		RunE: a.withApp(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			word, err := a.store.WordDetails(ctx, models.NormalizeEnglish(args[0]))
			if err != nil {
				return err
			}
			if word == nil {
				return errors.Wrapf(wordstore.ErrNotFound, "%q", args[0])
			}
			printWord(cmd.OutOrStdout(), *word)
			return nil
		}),
	}
}

func newGroupsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "groups",
		Short: "List groups",
		Args:  cobra.NoArgs,
		RunE: a.withApp(func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			groups, err := a.store.DistinctGroups(ctx)
			if err != nil {
				return err
			}
			for _, g := range groups {
				fmt.Fprintln(cmd.OutOrStdout(), g)
			}
			return nil
		}),
	}
}

func newStatsCommand(a *app) *cobra.Command {
	var days, recent int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show vocabulary and practice statistics",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().IntVar(&days, "days", 30, "practice history window in days")
	cmd.Flags().IntVar(&recent, "recent", 5, "number of latest sessions to list, 0 to hide them")
	cmd.RunE = a.withApp(func(ctx context.Context, cmd *cobra.Command, _ []string) error {
		stats, err := a.store.Statistics(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		printStatistics(out, stats)

		since := time.Now().AddDate(0, 0, -days)
		modes, err := a.results.StatsByMode(ctx, since)
		if err != nil {
			return err
		}
		if len(modes) > 0 {
			fmt.Fprintf(out, "\nPractice in the last %d days:\n", days)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "MODE\tSESSIONS\tQUESTIONS\tCORRECT")
			for _, m := range modes {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", m.Mode, m.Sessions, m.Total, m.Correct)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
		}

		if recent <= 0 {
			return nil
		}
		results, err := a.results.Recent(ctx, recent)
		if err != nil {
			return err
		}
		printRecent(out, results)
		return nil
	})
	return cmd
}

func newSetDifficultyCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-difficulty WORD DIFFICULTY",
		Short: "Change the difficulty of a word",
		Args:  cobra.ExactArgs(2),
		RunE: a.withApp(func(ctx context.Context, _ *cobra.Command, args []string) error {
			d, err := models.ParseDifficulty(args[1])
			if err != nil {
				return err
			}
			return a.store.UpdateDifficulty(ctx, args[0], d)
		}),
	}
}

func newSetGroupCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-group WORD [GROUP]",
		Short: "Move a word to a group, or out of its group when GROUP is omitted",
		Args:  cobra.RangeArgs(1, 2),
		RunE: a.withApp(func(ctx context.Context, _ *cobra.Command, args []string) error {
			group := ""
			if len(args) == 2 {
				group = args[1]
			}
			return a.store.UpdateGroup(ctx, args[0], group)
		}),
	}
}

func newDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete WORD...",
		Short: "Delete words",
		Args:  cobra.MinimumNArgs(1),
		RunE: a.withApp(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			for _, english := range args {
				if err := a.store.DeleteWord(ctx, english); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", models.NormalizeEnglish(english))
			}
			return nil
		}),
	}
}

func newRenameGroupCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename-group FROM TO",
		Short: "Rename a group",
		Args:  cobra.ExactArgs(2),
		RunE: a.withApp(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			n, err := a.store.RenameGroup(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "moved %d word(s) to %s\n", n, args[1])
			return nil
		}),
	}
}

func newDeleteGroupCommand(a *app) *cobra.Command {
	var reassign string
	cmd := &cobra.Command{
		Use:   "delete-group NAME",
		Short: "Delete a group; its words are kept",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().StringVar(&reassign, "move-to", "", "group receiving the words instead of leaving them ungrouped")
	cmd.RunE = a.withApp(func(ctx context.Context, cmd *cobra.Command, args []string) error {
		n, err := a.store.DeleteGroup(ctx, args[0], reassign)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted group %s (%d word(s))\n", args[0], n)
		return nil
	})
	return cmd
}

func newImportCommand(a *app) *cobra.Command {
	config := excel.DefaultImportConfig()
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import words from an xlsx, csv or txt file",
		Long: "Spreadsheet rows hold english, translation, examples, difficulty and group.\n" +
			"A txt file holds one word per line; every word is translated online.",
		Args: cobra.ExactArgs(1),
	}
	cmd.Flags().StringVar(&config.SheetName, "sheet", "", "sheet to import, the first one by default")
	cmd.Flags().IntVar(&config.StartRow, "start-row", config.StartRow, "first row holding a word")
	cmd.Flags().StringVarP(&config.Group, "group", "g", "", "group for words that carry none")
	cmd.RunE = a.withApp(func(ctx context.Context, cmd *cobra.Command, args []string) error {
		config.FilePath = args[0]
		result, err := excel.Import(ctx, config, a.store)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "processed %d, created %d, updated %d, skipped %d\n",
			result.TotalProcessed, result.Created, result.Updated, result.Skipped)
		for _, e := range result.Errors {
			fmt.Fprintln(out, e)
		}
		a.log.Info().
			Str("file", config.FilePath).
			Int("created", result.Created).
			Int("errors", len(result.Errors)).
			Msg("import finished")
		return nil
	})
	return cmd
}

func newExportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export FILE",
		Short: "Export the vocabulary to an xlsx or csv file",
		Args:  cobra.ExactArgs(1),
		RunE: a.withApp(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			words, err := a.store.AllWords(ctx)
			if err != nil {
				return err
			}
			if err := excel.Export(ctx, args[0], words); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d word(s) to %s\n", len(words), args[0])
			return nil
		}),
	}
}

// parseDifficulties parses flag values; no values selects every difficulty
func parseDifficulties(values []string) ([]models.Difficulty, error) {
	if len(values) == 0 {
		return append([]models.Difficulty(nil), models.Difficulties...), nil
	}
	out := make([]models.Difficulty, 0, len(values))
	for _, v := range values {
		d, err := models.ParseDifficulty(v)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func printWords(out io.Writer, words []models.Word) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ENGLISH\tTRANSLATION\tDIFFICULTY\tGROUP")
	for _, w := range words {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", w.English, w.Translation, w.Difficulty.Label(), w.GroupName())
	}
	tw.Flush()
	fmt.Fprintf(out, "%d word(s)\n", len(words))
}

func printWord(out io.Writer, w models.Word) {
	fmt.Fprintf(out, "%s: %s\n", w.English, w.Translation)
	fmt.Fprintf(out, "difficulty: %s\n", w.Difficulty.Label())
	if g := w.GroupName(); g != "" {
		fmt.Fprintf(out, "group: %s\n", g)
	}
	if e := w.ExampleText(); e != "" {
		fmt.Fprintf(out, "examples:\n%s\n", e)
	}
}

func printRecent(out io.Writer, results []models.QuizResult) {
	if len(results) == 0 {
		return
	}
	fmt.Fprintln(out, "\nRecent sessions:")
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FINISHED\tMODE\tQUESTIONS\tSCORE")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.0f%%\n",
			r.FinishedAt.Local().Format("2006-01-02 15:04"), r.Mode, r.Total, r.Score())
	}
	tw.Flush()
}

func printStatistics(out io.Writer, stats *models.Statistics) {
	fmt.Fprintf(out, "Total words: %d\n", stats.Total)
	for _, d := range models.Difficulties {
		fmt.Fprintf(out, "  %-8s %d\n", d.Label(), stats.ByDifficulty[d])
	}
	if len(stats.ByGroup) == 0 {
		return
	}

	names := make([]string, 0, len(stats.ByGroup))
	for name := range stats.ByGroup {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(out, "Groups:")
	for _, name := range names {
		label := name
		if strings.TrimSpace(label) == "" {
			label = "(none)"
		}
		fmt.Fprintf(out, "  %-12s %d\n", label, stats.ByGroup[name])
	}
}

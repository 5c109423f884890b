package cli

import (
	"context"

	"github.com/example/vocab/internal/bot"
	"github.com/example/vocab/internal/scheduler"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func (a *app) startScheduler(ctx context.Context) (*scheduler.Scheduler, error) {
	s := scheduler.New(a.store, a.provider, a.cfg.Scheduler.Interval, a.cfg.Scheduler.Batch, a.log)
	if err := s.Start(ctx); err != nil {
		return nil, err
	}
	a.log.Info().Dur("interval", a.cfg.Scheduler.Interval).Msg("example back-fill scheduled")
	return s, nil
}

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the background job filling in missing example sentences",
		Args:  cobra.NoArgs,
		RunE: a.withApp(func(ctx context.Context, _ *cobra.Command, _ []string) error {
			s, err := a.startScheduler(ctx)
			if err != nil {
				return err
			}
			<-ctx.Done()
			s.Stop()
			a.log.Info().Msg("scheduler stopped")
			return nil
		}),
	}
}

func newBotCommand(a *app) *cobra.Command {
	var (
		noScheduler bool
		limit       int
	)
	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().BoolVar(&noScheduler, "no-scheduler", false, "do not back-fill examples while the bot runs")
	cmd.Flags().IntVar(&limit, "quiz-limit", bot.DefaultConfig().QuizLimit, "questions per chat quiz, 0 for no limit")
	cmd.RunE = a.withApp(func(ctx context.Context, _ *cobra.Command, _ []string) error {
		config := bot.DefaultConfig()
		config.Token = a.cfg.Telegram.Token
		config.QuizLimit = limit

		b, err := bot.New(config, a.store, a.results, a.log)
		if err != nil {
			return err
		}

		if !noScheduler {
			s, err := a.startScheduler(ctx)
			if err != nil {
				return err
			}
			defer s.Stop()
		}

		a.log.Info().Msg("bot started, press Ctrl+C to stop")
		if err := b.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	return cmd
}

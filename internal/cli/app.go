package cli

import (
	"context"
	"os"

	"github.com/example/vocab/internal/ai"
	"github.com/example/vocab/internal/config"
	"github.com/example/vocab/internal/database"
	"github.com/example/vocab/internal/logger"
	"github.com/example/vocab/internal/quiz"
	"github.com/example/vocab/internal/speech"
	"github.com/example/vocab/internal/translate"
	"github.com/example/vocab/internal/wordstore"
	"github.com/example/vocab/pkg/models"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app holds the dependencies shared by the commands. They are built on first
// use so that commands like help never touch the database.
type app struct {
	v *viper.Viper

	cfg      *config.Config
	log      zerolog.Logger
	db       *sqlx.DB
	store    *wordstore.Store
	results  *database.QuizResultRepository
	provider translate.Provider
}

func (a *app) open() error {
	if a.db != nil {
		return nil
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logger.New(os.Stderr, cfg.Log.Level, cfg.Log.Pretty)

	if err := cfg.EnsureDataDir(); err != nil {
		return err
	}
	db, err := database.Connect(cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		return err
	}
	a.db = db
	a.log.Debug().Str("driver", cfg.DB.Driver).Msg("database connected")

	a.provider = a.newProvider()
	a.store = wordstore.New(database.NewWordRepository(db), a.provider, a.log)
	a.results = database.NewQuizResultRepository(db)
	return nil
}

func (a *app) close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

// newProvider chains the Morfix scraper with the dictionary API and, when an
// API key is configured, the OpenAI example generator.
func (a *app) newProvider() translate.Provider {
	morfix := translate.NewMorfix(a.cfg.Translate.MorfixURL, a.cfg.Translate.Timeout, a.log)
	chain := &translate.Chain{
		Translators: []translate.Translator{morfix},
		Examples: []translate.ExampleSource{
			morfix,
			translate.NewDictionaryAPI(a.cfg.Translate.DictionaryURL, a.cfg.Translate.Timeout),
		},
		Log: a.log,
	}

	if a.cfg.OpenAI.APIKey != "" {
		generator, err := ai.NewExampleGenerator(a.cfg.OpenAI.APIKey, a.cfg.OpenAI.Model)
		if err != nil {
			a.log.Warn().Err(err).Msg("OpenAI example generator disabled")
		} else {
			chain.Examples = append(chain.Examples, generator)
		}
	}
	return chain
}

func (a *app) speaker() quiz.Speaker {
	if !a.cfg.Speech.Enabled {
		return speech.Nop{}
	}
	cmd := speech.NewCommand(speech.Config{
		Command: a.cfg.Speech.Command,
		Rate:    a.cfg.Speech.Rate,
	}, a.log)
	if !cmd.Available() {
		a.log.Debug().Str("command", a.cfg.Speech.Command).Msg("text-to-speech program not found")
		return speech.Nop{}
	}
	return cmd
}

// saveResult stores a finished or abandoned session; empty sessions are skipped
func (a *app) saveResult(ctx context.Context, result models.QuizResult) {
	if result.Total == 0 || result.SessionID == "" {
		return
	}
	if err := a.results.Create(ctx, &result); err != nil {
		a.log.Error().Err(err).Str("session", result.SessionID).Msg("failed to save session result")
	}
}

type runFunc func(ctx context.Context, cmd *cobra.Command, args []string) error

// withApp opens the shared dependencies before running fn
func (a *app) withApp(fn runFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := a.open(); err != nil {
			return errors.Wrap(err, "failed to initialize")
		}
		return fn(cmd.Context(), cmd, args)
	}
}

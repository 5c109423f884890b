// Package cli is the command line front end: word management, terminal quiz
// and flashcard sessions, the Telegram bot and the background scheduler.
package cli

import (
	"github.com/example/vocab/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flag name -> config key
var persistentFlags = map[string]string{
	"data-dir":   "data_dir",
	"db-driver":  "db.driver",
	"db-dsn":     "db.dsn",
	"log-level":  "log.level",
	"log-pretty": "log.pretty",
	"speech":     "speech.enabled",
}

// NewRootCommand builds the vocab command tree
func NewRootCommand() *cobra.Command {
	v := config.New()
	a := &app{v: v}

	root := &cobra.Command{
		Use:           "vocab",
		Short:         "Learn English words with Hebrew translations",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}

	flags := root.PersistentFlags()
	flags.String("data-dir", "data", "directory holding the sqlite database")
	flags.String("db-driver", "sqlite3", "database driver: sqlite3 or postgres")
	flags.String("db-dsn", "", "database connection string")
	flags.String("log-level", "info", "log level")
	flags.Bool("log-pretty", true, "human readable log output")
	flags.Bool("speech", true, "pronounce words while practising")
	bindFlags(v, flags)

	root.AddCommand(
		newAddCommand(a),
		newListCommand(a),
		newShowCommand(a),
		newGroupsCommand(a),
		newStatsCommand(a),
		newSetDifficultyCommand(a),
		newSetGroupCommand(a),
		newDeleteCommand(a),
		newRenameGroupCommand(a),
		newDeleteGroupCommand(a),
		newImportCommand(a),
		newExportCommand(a),
		newQuizCommand(a, quizModeTranslation),
		newQuizCommand(a, quizModeFillBlank),
		newFlashcardsCommand(a),
		newBotCommand(a),
		newServeCommand(a),
	)
	return root
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	for name, key := range persistentFlags {
		// BindPFlag only fails for a nil flag
		_ = v.BindPFlag(key, flags.Lookup(name))
	}
}

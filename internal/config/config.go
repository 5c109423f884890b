package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	DataDir   string
	DB        DBConfig
	Log       LogConfig
	Translate TranslateConfig
	Speech    SpeechConfig
	Scheduler SchedulerConfig
	Quiz      QuizConfig
	Telegram  TelegramConfig
	OpenAI    OpenAIConfig
}

type DBConfig struct {
	Driver string
	DSN    string
}

type LogConfig struct {
	Level  string
	Pretty bool
}

type TranslateConfig struct {
	Timeout   time.Duration
	MorfixURL string
	// DictionaryURL is the free dictionary API used as an examples fallback
	DictionaryURL string
}

type SpeechConfig struct {
	Enabled bool
	Command string
	Rate    int
}

type SchedulerConfig struct {
	Interval time.Duration
	Batch    int
}

type QuizConfig struct {
	Limit int
}

type TelegramConfig struct {
	Token string
}

type OpenAIConfig struct {
	APIKey string
	Model  string
}

// New returns a viper instance with defaults and environment bindings.
// A .env file in the working directory is loaded first when present.
func New() *viper.Viper {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("VOCAB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("data_dir", "data")
	v.SetDefault("db.driver", "sqlite3")
	v.SetDefault("db.dsn", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", true)
	v.SetDefault("translate.timeout", 10*time.Second)
	v.SetDefault("translate.morfix_url", "https://www.morfix.co.il/")
	v.SetDefault("translate.dictionary_url", "https://api.dictionaryapi.dev/api/v2/entries/en/")
	v.SetDefault("speech.enabled", true)
	v.SetDefault("speech.command", "espeak")
	v.SetDefault("speech.rate", 160)
	v.SetDefault("scheduler.interval", time.Hour)
	v.SetDefault("scheduler.batch", 20)
	v.SetDefault("quiz.limit", 0)

	// unprefixed names kept for existing deployments
	_ = v.BindEnv("telegram.token", "VOCAB_TELEGRAM_TOKEN", "TELEGRAM_BOT_TOKEN")
	_ = v.BindEnv("openai.api_key", "VOCAB_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("openai.model", "VOCAB_OPENAI_MODEL", "OPENAI_MODEL")
	v.SetDefault("openai.model", "gpt-4o-mini")

	return v
}

// Load reads the configuration from v
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DataDir: v.GetString("data_dir"),
		DB: DBConfig{
			Driver: v.GetString("db.driver"),
			DSN:    v.GetString("db.dsn"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Pretty: v.GetBool("log.pretty"),
		},
		Translate: TranslateConfig{
			Timeout:       v.GetDuration("translate.timeout"),
			MorfixURL:     v.GetString("translate.morfix_url"),
			DictionaryURL: v.GetString("translate.dictionary_url"),
		},
		Speech: SpeechConfig{
			Enabled: v.GetBool("speech.enabled"),
			Command: v.GetString("speech.command"),
			Rate:    v.GetInt("speech.rate"),
		},
		Scheduler: SchedulerConfig{
			Interval: v.GetDuration("scheduler.interval"),
			Batch:    v.GetInt("scheduler.batch"),
		},
		Quiz: QuizConfig{
			Limit: v.GetInt("quiz.limit"),
		},
		Telegram: TelegramConfig{
			Token: v.GetString("telegram.token"),
		},
		OpenAI: OpenAIConfig{
			APIKey: v.GetString("openai.api_key"),
			Model:  v.GetString("openai.model"),
		},
	}

	switch cfg.DB.Driver {
	case "sqlite3":
		if cfg.DB.DSN == "" {
			cfg.DB.DSN = filepath.Join(cfg.DataDir, "vocabulary.db")
		}
	case "postgres":
		if cfg.DB.DSN == "" {
			return nil, errors.New("db.dsn is required for the postgres driver")
		}
	default:
		return nil, errors.Errorf("unsupported database driver %q", cfg.DB.Driver)
	}

	if cfg.Scheduler.Interval <= 0 {
		return nil, errors.Errorf("scheduler.interval must be positive, got %s", cfg.Scheduler.Interval)
	}
	if cfg.Quiz.Limit < 0 {
		return nil, errors.Errorf("quiz.limit must not be negative, got %d", cfg.Quiz.Limit)
	}

	return cfg, nil
}

// EnsureDataDir creates the data directory for the sqlite database
func (c *Config) EnsureDataDir() error {
	if c.DB.Driver != "sqlite3" {
		return nil
	}
	dir := filepath.Dir(c.DB.DSN)
	if dir == "" || dir == "." || strings.HasPrefix(c.DB.DSN, "file:") {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create data directory")
	}
	return nil
}

package bot

// Config represents the configuration for the bot
type Config struct {
	Token string
	// Long polling timeout in seconds
	UpdateTimeout int
	// Maximum number of questions of a chat quiz, 0 for no limit
	QuizLimit int
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() Config {
	return Config{
		UpdateTimeout: 60,
		QuizLimit:     10,
	}
}

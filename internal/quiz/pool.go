package quiz

import (
	"math/rand"

	"github.com/example/vocab/pkg/models"
	"github.com/pkg/errors"
)

// ErrNoDifficulty is returned for a configuration without any difficulty
var ErrNoDifficulty = errors.New("at least one difficulty must be selected")

// Config selects the words of a session
type Config struct {
	Difficulties []models.Difficulty
	// Groups restricts the pool to these groups when not empty
	Groups []string
	// Limit caps the number of questions; 0 means no limit
	Limit int
}

// Validate checks the configuration
func (c Config) Validate() error {
	if len(c.Difficulties) == 0 {
		return ErrNoDifficulty
	}
	for _, d := range c.Difficulties {
		if !d.Valid() {
			return errors.Errorf("unknown difficulty %q", d)
		}
	}
	if c.Limit < 0 {
		return errors.Errorf("question limit must not be negative, got %d", c.Limit)
	}
	return nil
}

// Pool is the filtered, shuffled and possibly truncated sequence of words
// driving one session. It is a snapshot: later store changes do not affect it.
type Pool []models.Word

// Filter builds a pool from words. Words are kept when their difficulty is
// selected and, if groups are configured, their group is one of them. The
// pool is shuffled before the limit is applied so a limited session is a
// random subset rather than a prefix.
func Filter(words []models.Word, cfg Config, rnd *rand.Rand) Pool {
	difficulties := make(map[models.Difficulty]bool, len(cfg.Difficulties))
	for _, d := range cfg.Difficulties {
		difficulties[d] = true
	}
	groups := make(map[string]bool, len(cfg.Groups))
	for _, g := range cfg.Groups {
		groups[g] = true
	}

	pool := make(Pool, 0, len(words))
	for _, w := range words {
		if !difficulties[w.Difficulty] {
			continue
		}
		if len(groups) > 0 && !groups[w.GroupName()] {
			continue
		}
		pool = append(pool, w)
	}

	rnd.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	if cfg.Limit > 0 && len(pool) > cfg.Limit {
		pool = pool[:cfg.Limit]
	}
	return pool
}

// Package translate looks up Hebrew translations and English example
// sentences for a word. Lookups never fail hard: an empty result with a nil
// error means the source had nothing for the word.
package translate

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// Translator returns the Hebrew translation of an English word
type Translator interface {
	Translate(ctx context.Context, word string) (string, error)
}

// ExampleSource returns example sentences for an English word, one per line
type ExampleSource interface {
	FetchExamples(ctx context.Context, word string) (string, error)
}

// Provider is the full collaborator consumed by the word store
type Provider interface {
	Translator
	ExampleSource
}

// Chain asks each translator and example source in order and returns the
// first non-empty answer. Errors of one source are logged and the next one
// is tried.
type Chain struct {
	Translators []Translator
	Examples    []ExampleSource
	Log         zerolog.Logger
}

// Translate implements Translator
func (c *Chain) Translate(ctx context.Context, word string) (string, error) {
	var lastErr error
	for _, t := range c.Translators {
		res, err := t.Translate(ctx, word)
		if err != nil {
			c.Log.Warn().Err(err).Str("word", word).Msg("translation source failed")
			lastErr = err
			continue
		}
		if res = strings.TrimSpace(res); res != "" {
			return res, nil
		}
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if lastErr != nil {
		c.Log.Debug().Err(lastErr).Str("word", word).Msg("no translation found")
	}
	return "", nil
}

// FetchExamples implements ExampleSource
func (c *Chain) FetchExamples(ctx context.Context, word string) (string, error) {
	for _, src := range c.Examples {
		res, err := src.FetchExamples(ctx, word)
		if err != nil {
			c.Log.Warn().Err(err).Str("word", word).Msg("example source failed")
			continue
		}
		if res = strings.TrimSpace(res); res != "" {
			return res, nil
		}
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	return "", nil
}

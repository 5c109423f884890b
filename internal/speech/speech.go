// Package speech pronounces words through an external text-to-speech
// program. Playback is detached from the caller and never reports back.
package speech

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Speaker pronounces text without blocking
type Speaker interface {
	Speak(text string)
}

// Config holds the text-to-speech settings
type Config struct {
	// Command is the TTS executable, espeak by default
	Command string
	// Rate is the speaking rate in words per minute
	Rate int
	// Timeout bounds a single playback
	Timeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Command: "espeak",
		Rate:    160,
		Timeout: 10 * time.Second,
	}
}

type runner func(ctx context.Context, name string, args ...string) error

// Command speaks by running the configured program once per word
type Command struct {
	config Config
	run    runner
	log    zerolog.Logger
	wg     sync.WaitGroup
}

// NewCommand creates a command speaker
func NewCommand(config Config, log zerolog.Logger) *Command {
	if config.Command == "" {
		config.Command = DefaultConfig().Command
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	return &Command{config: config, run: runCommand, log: log}
}

// Args returns the program arguments used to pronounce text
func (c *Command) Args(text string) []string {
	var args []string
	if c.config.Rate > 0 {
		switch c.config.Command {
		case "say":
			args = append(args, "-r", strconv.Itoa(c.config.Rate))
		default:
			args = append(args, "-s", strconv.Itoa(c.config.Rate))
		}
	}
	return append(args, text)
}

// Speak starts playback in the background. Failures are logged and dropped.
func (c *Command) Speak(text string) {
	if text == "" {
		return
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), c.config.Timeout)
		defer cancel()
		if err := c.run(ctx, c.config.Command, c.Args(text)...); err != nil {
			c.log.Debug().Err(err).Str("text", text).Msg("speech failed")
		}
	}()
}

// Wait blocks until every started playback has ended
func (c *Command) Wait() {
	c.wg.Wait()
}

// Available reports whether the TTS program can be found
func (c *Command) Available() bool {
	_, err := exec.LookPath(c.config.Command)
	return err == nil
}

func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "%s: %s", name, bytes.TrimSpace(stderr.Bytes()))
	}
	return nil
}

// Nop discards everything
type Nop struct{}

func (Nop) Speak(string) {}

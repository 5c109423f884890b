package speech

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	name string
	args []string
}

type fakeRunner struct {
	mu      sync.Mutex
	calls   []call
	err     error
	release chan struct{}
}

func (f *fakeRunner) run(_ context.Context, name string, args ...string) error {
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{name: name, args: args})
	return f.err
}

func TestCommandArgs(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   []string
	}{
		{"espeak", Config{Command: "espeak", Rate: 160}, []string{"-s", "160", "chore"}},
		{"say", Config{Command: "say", Rate: 180}, []string{"-r", "180", "chore"}},
		{"no rate", Config{Command: "espeak"}, []string{"chore"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCommand(tt.config, zerolog.Nop())
			assert.Equal(t, tt.want, c.Args("chore"))
		})
	}
}

func TestSpeakDoesNotBlock(t *testing.T) {
	fake := &fakeRunner{release: make(chan struct{})}
	c := NewCommand(DefaultConfig(), zerolog.Nop())
	c.run = fake.run

	done := make(chan struct{})
	go func() {
		c.Speak("remorse")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Speak blocked on playback")
	}

	close(fake.release)
	c.Wait()
	require.Len(t, fake.calls, 1)
	assert.Equal(t, "espeak", fake.calls[0].name)
	assert.Equal(t, []string{"-s", "160", "remorse"}, fake.calls[0].args)
}

func TestSpeakFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	fake := &fakeRunner{err: errors.New("no audio device")}
	c := NewCommand(DefaultConfig(), zerolog.New(&buf).Level(zerolog.DebugLevel))
	c.run = fake.run

	c.Speak("vigour")
	c.Wait()
	assert.Contains(t, buf.String(), "no audio device")
}

func TestSpeakEmptyText(t *testing.T) {
	fake := &fakeRunner{}
	c := NewCommand(DefaultConfig(), zerolog.Nop())
	c.run = fake.run

	c.Speak("")
	c.Wait()
	assert.Empty(t, fake.calls)
}

func TestNewCommandDefaults(t *testing.T) {
	c := NewCommand(Config{}, zerolog.Nop())
	assert.Equal(t, "espeak", c.config.Command)
	assert.Equal(t, DefaultConfig().Timeout, c.config.Timeout)
}

func TestNop(t *testing.T) {
	var s Speaker = Nop{}
	s.Speak("chore")
}

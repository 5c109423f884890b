package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultModel       = "gpt-4o-mini"
	defaultMaxTokens   = 100
	defaultTemperature = 0.7

	systemPrompt = "You help Hebrew speakers learn English. Write short, natural example sentences for English words."
)

// completer is the part of the OpenAI client used here
type completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ExampleGenerator writes example sentences with a chat completion model.
// It is used as the last example source when scraping finds nothing.
type ExampleGenerator struct {
	client      completer
	model       string
	maxTokens   int
	temperature float32
}

// NewExampleGenerator creates a generator for the given API key
func NewExampleGenerator(apiKey, model string) (*ExampleGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is not set")
	}
	return newExampleGenerator(openai.NewClient(apiKey), model), nil
}

func newExampleGenerator(client completer, model string) *ExampleGenerator {
	if model == "" {
		model = defaultModel
	}
	return &ExampleGenerator{
		client:      client,
		model:       model,
		maxTokens:   defaultMaxTokens,
		temperature: defaultTemperature,
	}
}

// FetchExamples generates a single example sentence for word
func (g *ExampleGenerator) FetchExamples(ctx context.Context, word string) (string, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return "", nil
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(
				"Generate a short, practical example sentence in English that naturally includes the word '%s'. Reply with the sentence only.", word)},
		},
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to generate example")
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no response choices returned")
	}

	return strings.Trim(strings.TrimSpace(resp.Choices[0].Message.Content), `"`), nil
}

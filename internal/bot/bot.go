// Package bot exposes quizzes and flashcards over Telegram. Each chat owns at
// most one running session; updates of one chat are handled one at a time.
package bot

import (
	"context"
	"sync"

	"github.com/example/vocab/internal/flashcard"
	"github.com/example/vocab/internal/quiz"
	"github.com/example/vocab/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Store is the part of the word store used by the bot
type Store interface {
	quiz.WordSource
	quiz.DifficultyWriter
	AddWord(ctx context.Context, english, group string) (*models.Word, error)
	Statistics(ctx context.Context) (*models.Statistics, error)
	DistinctGroups(ctx context.Context) ([]string, error)
}

// ResultSaver stores finished sessions
type ResultSaver interface {
	Create(ctx context.Context, result *models.QuizResult) error
}

// sender is the part of the Telegram API used to talk to chats
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// MainMenuButtons returns the buttons of the main menu
func MainMenuButtons() [][]MenuButton {
	return [][]MenuButton{
		{{Text: "📝 Quiz", CallbackData: "menu:quiz"}, {Text: "✍️ Fill the blank", CallbackData: "menu:fill"}},
		{{Text: "🃏 Flashcards", CallbackData: "menu:flash"}, {Text: "📊 Statistics", CallbackData: "menu:stats"}},
	}
}

// chat holds the running session of one chat
type chat struct {
	mu    sync.Mutex
	quiz  *quiz.Session
	flash *flashcard.Session
}

// Bot represents the Telegram bot application
type Bot struct {
	api     *tgbotapi.BotAPI
	sender  sender
	store   Store
	results ResultSaver
	config  Config
	log     zerolog.Logger

	mu    sync.Mutex
	chats map[int64]*chat
	wg    sync.WaitGroup
	stop  sync.Once
}

// New connects to Telegram with the configured token
func New(config Config, store Store, results ResultSaver, log zerolog.Logger) (*Bot, error) {
	if config.Token == "" {
		return nil, errors.New("telegram bot token is not set")
	}
	api, err := tgbotapi.NewBotAPI(config.Token)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create bot")
	}
	b := newBot(api, config, store, results, log)
	b.api = api
	b.log.Info().Str("account", api.Self.UserName).Msg("authorized on telegram")
	return b, nil
}

func newBot(s sender, config Config, store Store, results ResultSaver, log zerolog.Logger) *Bot {
	if config.UpdateTimeout <= 0 {
		config.UpdateTimeout = DefaultConfig().UpdateTimeout
	}
	return &Bot{
		sender:  s,
		store:   store,
		results: results,
		config:  config,
		log:     log.With().Str("component", "bot").Logger(),
		chats:   make(map[int64]*chat),
	}
}

// Start receives updates until ctx is cancelled
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = b.config.UpdateTimeout
	updates := b.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			b.Stop()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				b.HandleUpdate(ctx, update)
			}()
		}
	}
}

// Stop stops polling and waits for running handlers. It is safe to call
// more than once.
func (b *Bot) Stop() {
	b.stop.Do(func() {
		if b.api != nil {
			b.api.StopReceivingUpdates()
		}
		b.wg.Wait()
		b.log.Info().Msg("bot stopped")
	})
}

// HandleUpdate handles incoming updates from Telegram
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	var err error
	switch {
	case update.Message != nil && update.Message.IsCommand():
		err = b.HandleCommand(ctx, update.Message)
	case update.Message != nil:
		err = b.sendMenu(update.Message.Chat.ID, "Use the menu or /help.")
	case update.CallbackQuery != nil:
		err = b.HandleCallback(ctx, update.CallbackQuery)
	}
	if err != nil {
		b.log.Error().Err(err).Int("update", update.UpdateID).Msg("failed to handle update")
	}
}

// chat returns the state of a chat, creating it on first use
func (b *Bot) chat(chatID int64) *chat {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.chats[chatID]
	if !ok {
		c = &chat{}
		b.chats[chatID] = c
	}
	return c
}

func (b *Bot) sendMessage(msg tgbotapi.MessageConfig) error {
	if _, err := b.sender.Send(msg); err != nil {
		return errors.Wrap(err, "failed to send message")
	}
	return nil
}

func (b *Bot) sendText(chatID int64, text string) error {
	return b.sendMessage(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) sendMenu(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = createKeyboard(MainMenuButtons())
	return b.sendMessage(msg)
}

// saveResult stores a session result; failures are only logged
func (b *Bot) saveResult(ctx context.Context, result models.QuizResult) {
	if b.results == nil || result.Total == 0 {
		return
	}
	if err := b.results.Create(ctx, &result); err != nil {
		b.log.Error().Err(err).Str("session", result.SessionID).Msg("failed to save session result")
	}
}

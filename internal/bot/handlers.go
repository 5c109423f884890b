package bot

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/example/vocab/internal/flashcard"
	"github.com/example/vocab/internal/quiz"
	"github.com/example/vocab/internal/wordstore"
	"github.com/example/vocab/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
)

const helpText = `Commands:
/quiz [difficulty...] - pick the Hebrew translation
/fill [difficulty...] - fill the missing word into a sentence
/flash [difficulty...] - rate yourself on each word
/add word... - translate and store new words
/stats - vocabulary statistics
/groups - list groups

Difficulties: new, easy, medium, hard. Without any, all words are used.`

// HandleCommand handles bot commands
func (b *Bot) HandleCommand(ctx context.Context, message *tgbotapi.Message) error {
	if message == nil || message.Chat == nil {
		return errors.New("invalid message: required fields are missing")
	}
	chatID := message.Chat.ID
	args := strings.Fields(message.CommandArguments())

	switch message.Command() {
	case "start", "menu":
		return b.sendMenu(chatID, "Hi! Let's practise some English words.\n\n"+helpText)
	case "help":
		return b.sendText(chatID, helpText)
	case "quiz":
		return b.startQuiz(ctx, chatID, quiz.Translation{}, args)
	case "fill":
		return b.startQuiz(ctx, chatID, quiz.FillBlank{}, args)
	case "flash":
		return b.startFlashcards(ctx, chatID, args)
	case "add":
		return b.handleAdd(ctx, chatID, args)
	case "stats":
		return b.handleStats(ctx, chatID)
	case "groups":
		return b.handleGroups(ctx, chatID)
	}
	return b.sendMenu(chatID, "Unknown command. Use /help.")
}

func (b *Bot) startQuiz(ctx context.Context, chatID int64, builder quiz.Builder, args []string) error {
	difficulties, err := parseDifficulties(args)
	if err != nil {
		return b.sendText(chatID, err.Error())
	}

	c := b.chat(chatID)
	c.mu.Lock()
	defer c.mu.Unlock()

	c.flash = nil
	c.quiz = quiz.NewSession(b.store,
		quiz.WithBuilder(builder),
		quiz.WithRenderer(quizView{b: b, chatID: chatID}),
		quiz.WithWriter(b.store),
		quiz.WithLogger(b.log),
	)
	cfg := quiz.Config{Difficulties: difficulties, Limit: b.config.QuizLimit}
	if err := c.quiz.Start(ctx, cfg); err != nil {
		c.quiz = nil
		return err
	}
	if c.quiz.State() == quiz.StateNoWords {
		c.quiz = nil
	}
	return nil
}

func (b *Bot) startFlashcards(ctx context.Context, chatID int64, args []string) error {
	c := b.chat(chatID)
	c.mu.Lock()
	defer c.mu.Unlock()

	c.quiz = nil
	c.flash = flashcard.NewSession(b.store, b.store,
		flashcard.WithRenderer(cardView{b: b, chatID: chatID}),
		flashcard.WithLogger(b.log),
	)

	var err error
	if len(args) == 0 {
		err = c.flash.Start(ctx, nil)
	} else {
		var difficulties []models.Difficulty
		if difficulties, err = parseDifficulties(args); err != nil {
			c.flash = nil
			return b.sendText(chatID, err.Error())
		}
		err = c.flash.StartFiltered(ctx, quiz.Config{Difficulties: difficulties})
	}
	if err != nil || c.flash.State() != flashcard.StateActive {
		c.flash = nil
	}
	return err
}

func (b *Bot) handleAdd(ctx context.Context, chatID int64, words []string) error {
	if len(words) == 0 {
		return b.sendText(chatID, "Send the words after the command, for example: /add chore remorse")
	}

	var text strings.Builder
	for _, english := range words {
		word, err := b.store.AddWord(ctx, english, "")
		switch {
		case err == nil:
			fmt.Fprintf(&text, "✅ %s: %s\n", word.English, word.Translation)
		case errors.Is(err, wordstore.ErrAlreadyExists):
			fmt.Fprintf(&text, "➖ %s is already in the vocabulary\n", models.NormalizeEnglish(english))
		case errors.Is(err, wordstore.ErrTranslationUnavailable), errors.Is(err, wordstore.ErrEmptyWord):
			fmt.Fprintf(&text, "❌ %s: no translation found\n", models.NormalizeEnglish(english))
		default:
			return err
		}
	}
	return b.sendText(chatID, text.String())
}

func (b *Bot) handleStats(ctx context.Context, chatID int64) error {
	stats, err := b.store.Statistics(ctx)
	if err != nil {
		return err
	}

	var text strings.Builder
	fmt.Fprintf(&text, "📊 Words: %d\n", stats.Total)
	for _, d := range models.Difficulties {
		fmt.Fprintf(&text, "%s: %d\n", d.Label(), stats.ByDifficulty[d])
	}
	return b.sendMenu(chatID, text.String())
}

func (b *Bot) handleGroups(ctx context.Context, chatID int64) error {
	groups, err := b.store.DistinctGroups(ctx)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		return b.sendText(chatID, "No groups yet.")
	}
	sort.Strings(groups)
	return b.sendText(chatID, "Groups:\n"+strings.Join(groups, "\n"))
}

// callback is the parsed form of "scope:action[:arg]" button data
type callback struct {
	scope  string
	action string
	arg    string
}

func parseCallback(data string) (callback, error) {
	parts := strings.SplitN(data, ":", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return callback{}, errors.Errorf("malformed callback data %q", data)
	}
	cb := callback{scope: parts[0], action: parts[1]}
	if len(parts) == 3 {
		cb.arg = parts[2]
	}
	return cb, nil
}

// sessionTokenLen keeps callback data within Telegram's 64 byte limit
const sessionTokenLen = 8

func sessionToken(sessionID string) string {
	if len(sessionID) > sessionTokenLen {
		return sessionID[:sessionTokenLen]
	}
	return sessionID
}

// buttonRef ties a session button to the session and question it was
// rendered for. It is encoded as the callback argument
// "token.position[.value]".
type buttonRef struct {
	token    string
	position int
	value    string
}

func (r buttonRef) data(scope, action, value string) string {
	data := fmt.Sprintf("%s:%s:%s.%d", scope, action, r.token, r.position)
	if value != "" {
		data += "." + value
	}
	return data
}

func parseButtonRef(arg string) (buttonRef, error) {
	parts := strings.SplitN(arg, ".", 3)
	if len(parts) < 2 || parts[0] == "" {
		return buttonRef{}, errors.Errorf("malformed button reference %q", arg)
	}
	position, err := strconv.Atoi(parts[1])
	if err != nil {
		return buttonRef{}, errors.Wrapf(err, "malformed button reference %q", arg)
	}
	ref := buttonRef{token: parts[0], position: position}
	if len(parts) == 3 {
		ref.value = parts[2]
	}
	return ref, nil
}

// HandleCallback handles inline button presses
func (b *Bot) HandleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if query == nil || query.Message == nil || query.Message.Chat == nil {
		return errors.New("invalid callback data: required fields are missing")
	}
	chatID := query.Message.Chat.ID

	notice, err := b.dispatchCallback(ctx, chatID, query.Data)

	// Always answer the callback query to remove the loading state
	if _, answerErr := b.sender.Request(tgbotapi.NewCallback(query.ID, notice)); answerErr != nil {
		b.log.Warn().Err(answerErr).Msg("failed to answer callback")
	}
	return err
}

// dispatchCallback runs the button action and returns a short notice for
// the callback answer
func (b *Bot) dispatchCallback(ctx context.Context, chatID int64, data string) (string, error) {
	cb, err := parseCallback(data)
	if err != nil {
		return "Unknown action", err
	}

	switch cb.scope {
	case "menu":
		switch cb.action {
		case "quiz":
			return "", b.startQuiz(ctx, chatID, quiz.Translation{}, nil)
		case "fill":
			return "", b.startQuiz(ctx, chatID, quiz.FillBlank{}, nil)
		case "flash":
			return "", b.startFlashcards(ctx, chatID, nil)
		case "stats":
			return "", b.handleStats(ctx, chatID)
		}
	case "quiz":
		return b.handleQuizCallback(ctx, chatID, cb)
	case "flash":
		return b.handleFlashCallback(ctx, chatID, cb)
	}
	return "Unknown action", errors.Errorf("unknown callback %q", data)
}

func (b *Bot) handleQuizCallback(ctx context.Context, chatID int64, cb callback) (string, error) {
	c := b.chat(chatID)
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.quiz == nil || c.quiz.State() != quiz.StateActive {
		return "This quiz is over", nil
	}
	s := c.quiz

	ref, err := parseButtonRef(cb.arg)
	if err != nil {
		return "Unknown action", err
	}
	q, _ := s.Current()
	if ref.token != sessionToken(q.SessionID) {
		return "This quiz is over", nil
	}
	// stop works from any message of the running quiz
	if cb.action != "stop" && ref.position != q.Position {
		return "This question is over", nil
	}

	switch cb.action {
	case "answer":
		option, err := strconv.Atoi(ref.value)
		if err != nil || option < 0 || option >= len(q.Options) {
			return "This question is over", nil
		}
		if _, err := s.Answer(q.Options[option]); err != nil {
			return "", err
		}
	case "skip":
	case "stop":
		b.saveResult(ctx, s.Stop().QuizResult())
		c.quiz = nil
		return "", nil
	default:
		return "Unknown action", errors.Errorf("unknown quiz action %q", cb.action)
	}

	if err := s.Next(ctx); err != nil {
		return "", err
	}
	if s.State() == quiz.StateFinished {
		b.saveResult(ctx, s.Results().QuizResult())
		c.quiz = nil
	}
	return "", nil
}

func (b *Bot) handleFlashCallback(ctx context.Context, chatID int64, cb callback) (string, error) {
	c := b.chat(chatID)
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.flash == nil || c.flash.State() != flashcard.StateActive {
		return "These flashcards are over", nil
	}
	s := c.flash

	ref, err := parseButtonRef(cb.arg)
	if err != nil {
		return "Unknown action", err
	}
	card, _ := s.Current()
	if ref.token != sessionToken(card.SessionID) {
		return "These flashcards are over", nil
	}
	if cb.action != "stop" && ref.position != card.Position {
		return "This card is over", nil
	}

	switch cb.action {
	case "reveal":
		text := card.Word.Translation
		if e := card.Word.ExampleText(); e != "" {
			text += "\n\n" + e
		}
		return "", b.sendText(chatID, text)
	case "rate":
		rating, err := flashcard.ParseRating(ref.value)
		if err != nil {
			return "Unknown action", err
		}
		rateErr := s.Rate(ctx, rating)
		if s.State() == flashcard.StateFinished {
			b.saveResult(ctx, s.Stats().QuizResult())
			c.flash = nil
		}
		if rateErr != nil {
			return "Rating not saved", rateErr
		}
		return "", nil
	case "stop":
		stats := s.Stats()
		cardView{b: b, chatID: chatID}.ShowSummary(stats)
		b.saveResult(ctx, stats.QuizResult())
		c.flash = nil
		return "", nil
	}
	return "Unknown action", errors.Errorf("unknown flashcard action %q", cb.action)
}

func parseDifficulties(args []string) ([]models.Difficulty, error) {
	if len(args) == 0 {
		return append([]models.Difficulty(nil), models.Difficulties...), nil
	}
	out := make([]models.Difficulty, 0, len(args))
	for _, a := range args {
		d, err := models.ParseDifficulty(a)
		if err != nil {
			return nil, errors.Errorf("unknown difficulty %q, use new, easy, medium or hard", a)
		}
		out = append(out, d)
	}
	return out, nil
}

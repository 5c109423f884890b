package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/example/vocab/internal/flashcard"
	"github.com/example/vocab/internal/quiz"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// quizView renders quiz transitions into a chat
type quizView struct {
	b      *Bot
	chatID int64
}

func (v quizView) send(msg tgbotapi.MessageConfig) {
	if err := v.b.sendMessage(msg); err != nil {
		v.b.log.Error().Err(err).Int64("chat", v.chatID).Msg("failed to render quiz")
	}
}

func (v quizView) ShowQuestion(q quiz.Question) {
	ref := buttonRef{token: sessionToken(q.SessionID), position: q.Position}
	buttons := make([][]MenuButton, 0, len(q.Options)+1)
	for i, option := range q.Options {
		buttons = append(buttons, []MenuButton{{
			Text:         option,
			CallbackData: ref.data("quiz", "answer", strconv.Itoa(i)),
		}})
	}
	buttons = append(buttons, []MenuButton{
		{Text: "⏭ Skip", CallbackData: ref.data("quiz", "skip", "")},
		{Text: "⏹ Stop", CallbackData: ref.data("quiz", "stop", "")},
	})

	msg := tgbotapi.NewMessage(v.chatID, fmt.Sprintf("%d/%d\n%s", q.Position, q.Total, q.Prompt))
	msg.ReplyMarkup = createKeyboard(buttons)
	v.send(msg)
}

func (v quizView) ShowVerdict(verdict quiz.Verdict) {
	text := "✅ Correct"
	if !verdict.Correct {
		text = fmt.Sprintf("❌ Wrong, the answer is %s", verdict.Expected)
	}
	v.send(tgbotapi.NewMessage(v.chatID, text))
}

func (v quizView) ShowNoWords() {
	msg := tgbotapi.NewMessage(v.chatID, "No words match these difficulties. Add words with /add or pick other difficulties.")
	msg.ReplyMarkup = createKeyboard(MainMenuButtons())
	v.send(msg)
}

func (v quizView) ShowResults(r quiz.Results) {
	var text strings.Builder
	fmt.Fprintf(&text, "🏁 Done. Correct: %d, wrong: %d of %d\n", r.Correct, r.Wrong, r.Presented)
	for _, m := range r.Mistakes {
		fmt.Fprintf(&text, "• %s: %s\n", m.English, m.Correct)
	}
	msg := tgbotapi.NewMessage(v.chatID, text.String())
	msg.ReplyMarkup = createKeyboard(MainMenuButtons())
	v.send(msg)
}

// cardView renders flashcard transitions into a chat
type cardView struct {
	b      *Bot
	chatID int64
}

func (v cardView) send(msg tgbotapi.MessageConfig) {
	if err := v.b.sendMessage(msg); err != nil {
		v.b.log.Error().Err(err).Int64("chat", v.chatID).Msg("failed to render flashcard")
	}
}

func (v cardView) ShowCard(c flashcard.Card) {
	ref := buttonRef{token: sessionToken(c.SessionID), position: c.Position}
	msg := tgbotapi.NewMessage(v.chatID, fmt.Sprintf("%d/%d\n%s", c.Position, c.Total, c.Word.English))
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{{Text: "👀 Reveal", CallbackData: ref.data("flash", "reveal", "")}},
		{
			{Text: "✅ Know", CallbackData: ref.data("flash", "rate", flashcard.Know.String())},
			{Text: "🤔 Guess", CallbackData: ref.data("flash", "rate", flashcard.Guess.String())},
			{Text: "❌ Don't know", CallbackData: ref.data("flash", "rate", flashcard.DontKnow.String())},
		},
		{{Text: "⏹ Stop", CallbackData: ref.data("flash", "stop", "")}},
	})
	v.send(msg)
}

func (v cardView) ShowNoWords() {
	msg := tgbotapi.NewMessage(v.chatID, "There are no words to practise yet. Add some with /add.")
	msg.ReplyMarkup = createKeyboard(MainMenuButtons())
	v.send(msg)
}

func (v cardView) ShowSummary(s flashcard.Stats) {
	msg := tgbotapi.NewMessage(v.chatID, fmt.Sprintf(
		"🏁 Done. Know: %d, guess: %d, don't know: %d\nAccuracy: %.0f%%",
		s.Know, s.Guess, s.DontKnow, s.Accuracy()))
	msg.ReplyMarkup = createKeyboard(MainMenuButtons())
	v.send(msg)
}

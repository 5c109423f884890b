package quiz

import (
	"regexp"
	"strings"

	"github.com/example/vocab/pkg/models"
)

// Question is what a presenter shows for the current pool position
type Question struct {
	// SessionID identifies the session that presented the question
	SessionID string
	Word      models.Word
	Prompt    string
	Answer    string
	Options   []string
	Position  int
	Total     int
}

// Builder turns a pool word into a question. Eligible decides which words
// may enter the pool at all.
type Builder interface {
	Mode() models.SessionMode
	Eligible(w models.Word) bool
	Build(w models.Word, universe []models.Word, sampler *Sampler) Question
}

// Translation asks for the Hebrew translation of an English word. Distractors
// come from the translations of the whole vocabulary, not the filtered pool.
type Translation struct{}

func (Translation) Mode() models.SessionMode { return models.ModeQuiz }

func (Translation) Eligible(models.Word) bool { return true }

func (Translation) Build(w models.Word, universe []models.Word, sampler *Sampler) Question {
	candidates := make([]string, 0, len(universe))
	for _, u := range universe {
		candidates = append(candidates, u.Translation)
	}
	return Question{
		Word:    w,
		Prompt:  w.English,
		Answer:  w.Translation,
		Options: sampler.Options(w.Translation, candidates),
	}
}

// Blank is the placeholder replacing the word in a fill-in-the-blank sentence
const Blank = "_____"

const minSentenceLength = 10

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

// FillBlank shows an example sentence with the word blanked out and asks
// for the missing English word. Words without a usable example are skipped.
type FillBlank struct{}

func (FillBlank) Mode() models.SessionMode { return models.ModeFillBlank }

func (FillBlank) Eligible(w models.Word) bool {
	return ExtractSentence(w.ExampleText(), w.English) != ""
}

func (FillBlank) Build(w models.Word, universe []models.Word, sampler *Sampler) Question {
	candidates := make([]string, 0, len(universe))
	for _, u := range universe {
		candidates = append(candidates, u.English)
	}
	sentence := ExtractSentence(w.ExampleText(), w.English)
	return Question{
		Word:    w,
		Prompt:  BlankOut(sentence, w.English),
		Answer:  w.English,
		Options: sampler.Options(w.English, candidates),
	}
}

// ExtractSentence returns the first sentence of examples that contains word
// as a whole word and is at least ten characters long, or "".
func ExtractSentence(examples, word string) string {
	if examples == "" || word == "" {
		return ""
	}
	re := wordPattern(word)
	for _, sentence := range sentenceSplit.Split(examples, -1) {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) < minSentenceLength {
			continue
		}
		if re.MatchString(sentence) {
			return sentence + "."
		}
	}
	return ""
}

// BlankOut replaces every whole-word occurrence of word, ignoring case
func BlankOut(sentence, word string) string {
	if word == "" {
		return sentence
	}
	blanked := wordPattern(word).ReplaceAllLiteralString(sentence, Blank)
	if blanked == sentence {
		return sentence + " " + Blank
	}
	return blanked
}

func wordPattern(word string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
}

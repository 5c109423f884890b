package models

import "time"

// SessionMode identifies which kind of session produced a result
type SessionMode string

const (
	ModeQuiz       SessionMode = "quiz"
	ModeFillBlank  SessionMode = "fill_blank"
	ModeFlashcards SessionMode = "flashcards"
)

// QuizResult is the stored summary of a finished quiz or flashcard session
type QuizResult struct {
	ID         int64       `json:"id" db:"id"`
	SessionID  string      `json:"session_id" db:"session_id"`
	Mode       SessionMode `json:"mode" db:"mode"`
	Total      int         `json:"total" db:"total"`
	Correct    int         `json:"correct" db:"correct"`
	Wrong      int         `json:"wrong" db:"wrong"`
	StartedAt  time.Time   `json:"started_at" db:"started_at"`
	FinishedAt time.Time   `json:"finished_at" db:"finished_at"`
}

// Score returns the share of correct answers in percent
func (r QuizResult) Score() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Total) * 100
}

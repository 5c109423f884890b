package models

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Difficulty is the per-word tag used to filter quizzes and flashcards
type Difficulty string

const (
	DifficultyNew    Difficulty = "NEW_WORD"
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// Difficulties lists every difficulty in display order
var Difficulties = []Difficulty{DifficultyNew, DifficultyEasy, DifficultyMedium, DifficultyHard}

// ParseDifficulty accepts the stored names and the short aliases (new, easy, medium, hard)
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "NEW", "NEW_WORD":
		return DifficultyNew, nil
	case "EASY":
		return DifficultyEasy, nil
	case "MEDIUM":
		return DifficultyMedium, nil
	case "HARD":
		return DifficultyHard, nil
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// Valid reports whether d is one of the known difficulties
func (d Difficulty) Valid() bool {
	for _, known := range Difficulties {
		if d == known {
			return true
		}
	}
	return false
}

// Label returns a human readable name
func (d Difficulty) Label() string {
	switch d {
	case DifficultyNew:
		return "New"
	case DifficultyEasy:
		return "Easy"
	case DifficultyMedium:
		return "Medium"
	case DifficultyHard:
		return "Hard"
	}
	return string(d)
}

// Word represents an English word with its Hebrew translation
type Word struct {
	ID          int64          `json:"id" db:"id"`
	English     string         `json:"english" db:"english"`
	Translation string         `json:"translation" db:"translation"`
	Examples    sql.NullString `json:"examples" db:"examples"`
	Difficulty  Difficulty     `json:"difficulty" db:"difficulty"`
	Group       sql.NullString `json:"group" db:"group_name"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// NormalizeEnglish is the canonical form of the english key
func NormalizeEnglish(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// GroupName returns the group or an empty string
func (w Word) GroupName() string {
	if w.Group.Valid {
		return w.Group.String
	}
	return ""
}

// ExampleText returns the examples or an empty string
func (w Word) ExampleText() string {
	if w.Examples.Valid {
		return w.Examples.String
	}
	return ""
}

// NullString converts an empty string to NULL
func NullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}

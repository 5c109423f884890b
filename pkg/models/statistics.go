package models

// Statistics summarises the vocabulary by difficulty and by group
type Statistics struct {
	Total        int                `json:"total"`
	ByDifficulty map[Difficulty]int `json:"by_difficulty"`
	ByGroup      map[string]int     `json:"by_group"`
}

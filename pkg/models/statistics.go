package models

// LevelStats summarises the items of one level
type LevelStats struct {
	LevelTag      int     `json:"level" db:"level_tag"`
	Total         int     `json:"total" db:"total"`
	Unseen        int     `json:"unseen" db:"unseen"`
	Due           int     `json:"due" db:"due"`
	Mastered      int     `json:"mastered" db:"mastered"`
	AvgEaseFactor float64 `json:"avg_ease_factor" db:"avg_ease_factor"`
}

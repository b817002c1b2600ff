package model

import "time"

// LeaderboardEntry is one recorded quiz score. Entries are never updated.
type LeaderboardEntry struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Score     int       `db:"score" json:"score"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ScoreRow is a single entry on the per-game leaderboard
type ScoreRow struct {
	Username    string `db:"username" json:"username"`
	DisplayName string `db:"display_name" json:"display_name"`
	Score       int    `db:"score" json:"score"`
}

// TotalRow is a user's summed score on the aggregate leaderboard
type TotalRow struct {
	Username    string `db:"username" json:"username"`
	DisplayName string `db:"display_name" json:"display_name"`
	TotalScore  int    `db:"total_score" json:"total_score"`
}

// UserStats summarises a user's entries for the profile page
type UserStats struct {
	HighestScore int `db:"highest_score" json:"highest_score"`
	TotalScore   int `db:"total_score" json:"total_score"`
	TimesPlayed  int `db:"times_played" json:"times_played"`
}

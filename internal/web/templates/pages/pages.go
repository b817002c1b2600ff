// Package pages renders the quiz's HTML pages.
package pages

import (
	"github.com/mcoot/trackquiz/internal/model"
	"github.com/mcoot/trackquiz/internal/web/templates/layout"
)

// IndexData is the data for the landing page
type IndexData struct {
	layout.PageData
}

// WelcomeData is the data for the welcome page
type WelcomeData struct {
	layout.PageData
}

// QuizData is the data for the quiz page
type QuizData struct {
	layout.PageData
}

// ResultsData is the data for the results page
type ResultsData struct {
	layout.PageData
	Score int
}

// LeaderboardData is the data for the leaderboard page
type LeaderboardData struct {
	layout.PageData
	Top    []model.ScoreRow
	Totals []model.TotalRow
}

// ProfileData is the data for the profile page
type ProfileData struct {
	layout.PageData
	ProfileName   string
	SpotifyUserID string
	// Guest is set when the stats belong to the shared guest user
	Guest bool
	Stats model.UserStats
}

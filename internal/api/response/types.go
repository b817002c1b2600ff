package response

import "github.com/mcoot/trackquiz/internal/model"

// StatusResponse is returned by endpoints with no other payload
type StatusResponse struct {
	Status string `json:"status"`
}

// QuizDataResponse carries the tracks for one quiz
type QuizDataResponse struct {
	TopTracks []model.Track `json:"top_tracks"`
}

// LeaderboardResponse lists the highest individual scores
type LeaderboardResponse struct {
	Leaderboard []model.ScoreRow `json:"leaderboard"`
}

// TotalLeaderboardResponse lists users by summed score
type TotalLeaderboardResponse struct {
	TotalLeaderboard []model.TotalRow `json:"total_leaderboard"`
}

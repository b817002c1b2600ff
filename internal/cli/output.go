package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"error": err.Error()})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintf(o.w, "Error: %s\n", err)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case StatusResult:
		_, _ = fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	case Leaderboard:
		o.printLeaderboard(v)
	case TotalLeaderboard:
		o.printTotalLeaderboard(v)
	case QuizData:
		o.printQuizData(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// StatusResult response type
type StatusResult struct {
	Status string `json:"status"`
}

// ScoreRow is one row of the top scores table
type ScoreRow struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Score       int    `json:"score"`
}

// TotalRow is one row of the total scores table
type TotalRow struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	TotalScore  int    `json:"total_score"`
}

// Leaderboard response type
type Leaderboard struct {
	Leaderboard []ScoreRow `json:"leaderboard"`
}

// TotalLeaderboard response type
type TotalLeaderboard struct {
	TotalLeaderboard []TotalRow `json:"total_leaderboard"`
}

// Track response type
type Track struct {
	Name       string  `json:"name"`
	Artist     string  `json:"artist"`
	PreviewURL *string `json:"preview_url"`
}

// QuizData response type
type QuizData struct {
	TopTracks []Track `json:"top_tracks"`
}

func (o *Output) printLeaderboard(l Leaderboard) {
	if len(l.Leaderboard) == 0 {
		_, _ = fmt.Fprintln(o.w, "No scores yet")
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "#\tPLAYER\tSCORE")
	for i, row := range l.Leaderboard {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%d\n", i+1, row.DisplayName, row.Score)
	}
	_ = tw.Flush()
}

func (o *Output) printTotalLeaderboard(l TotalLeaderboard) {
	if len(l.TotalLeaderboard) == 0 {
		_, _ = fmt.Fprintln(o.w, "No scores yet")
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "#\tPLAYER\tTOTAL")
	for i, row := range l.TotalLeaderboard {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%d\n", i+1, row.DisplayName, row.TotalScore)
	}
	_ = tw.Flush()
}

func (o *Output) printQuizData(q QuizData) {
	_, _ = fmt.Fprintf(o.w, "%d tracks\n", len(q.TopTracks))
	for i, t := range q.TopTracks {
		preview := "no preview"
		if t.PreviewURL != nil {
			preview = *t.PreviewURL
		}
		_, _ = fmt.Fprintf(o.w, "%2d. %s - %s (%s)\n", i+1, t.Name, t.Artist, preview)
	}
}

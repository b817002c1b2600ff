package request

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// SubmitScoreRequest is the request body for submitting a quiz score
type SubmitScoreRequest struct {
	Score json.RawMessage `json:"score"`
}

// ScoreValue returns the submitted score. A JSON number or a numeric string is
// accepted and fractions are truncated. ok is false when the score is absent,
// null, non-numeric or outside the int32 range.
func (r SubmitScoreRequest) ScoreValue() (score int, ok bool) {
	raw := bytes.TrimSpace(r.Score)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, false
		}
		text = strings.TrimSpace(text)
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	f = math.Trunc(f)
	if f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

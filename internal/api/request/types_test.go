package request

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreValue(t *testing.T) {
	tests := []struct {
		body   string
		want   int
		wantOK bool
	}{
		{`{"score": 42}`, 42, true},
		{`{"score": 0}`, 0, true},
		{`{"score": -3}`, -3, true},
		{`{"score": "17"}`, 17, true},
		{`{"score": " 8 "}`, 8, true},
		{`{"score": 9.9}`, 9, true},
		{`{}`, 0, false},
		{`{"score": null}`, 0, false},
		{`{"score": "abc"}`, 0, false},
		{`{"score": "NaN"}`, 0, false},
		{`{"score": true}`, 0, false},
		{`{"score": [1]}`, 0, false},
		{`{"score": 1e12}`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			var req SubmitScoreRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))

			got, ok := req.ScoreValue()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

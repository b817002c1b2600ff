package response

import (
	"encoding/json"
	"net/http"
)

// JSON writes a JSON response
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// OK writes {"status":"ok"}-style responses
func OK(w http.ResponseWriter, status string) {
	JSON(w, http.StatusOK, StatusResponse{Status: status})
}

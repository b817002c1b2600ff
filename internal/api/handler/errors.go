package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/trackquiz/internal/api/apierr"
)

// writeError writes err as JSON, logging the detail of server-side failures
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	if status := apierr.Status(err); status >= http.StatusInternalServerError {
		logger.Error("request failed", "error", err, "status", status)
	}
	apierr.WriteError(w, err)
}

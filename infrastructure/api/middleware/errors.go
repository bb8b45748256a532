package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// WriteError reports a handler failure to the client. Every failure
// maps to a 500 with a plain-text body carrying the error message.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte("Something went wrong: " + err.Error()))
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

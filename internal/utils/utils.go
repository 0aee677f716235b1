package utils

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Error codes carried in the "code" field of error bodies.
const (
	CodeInvalidDate  = "invalid_date"
	CodeInvalidRange = "invalid_range"
	CodeQueryFailed  = "query_failed"
	CodeUnavailable  = "unavailable"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to write JSON", "error", err)
	}
}

// WriteError writes {"error": msg, "code": code}.
func WriteError(w http.ResponseWriter, status int, code string, msg string) {
	WriteJSON(w, status, map[string]string{
		"error": msg,
		"code":  code,
	})
}

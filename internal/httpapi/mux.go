package httpapi

import (
	"log/slog"
	"net/http"

	"gorm.io/gorm"
)

func NewMux(db *gorm.DB, logger *slog.Logger) *http.ServeMux {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	registerHealthcheck(mux, db, logger)
	return mux
}

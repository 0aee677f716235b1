package httpapi

import (
	"log/slog"
	"net/http"

	"gorm.io/gorm"

	"surfsup-server/internal/db"
	"surfsup-server/internal/modules/climate/repository"
	"surfsup-server/internal/modules/climate/types"
	"surfsup-server/internal/utils"
)

type healthchecker interface {
	handleHealthz(w http.ResponseWriter, r *http.Request)
}

type healthcheckerImpl struct {
	db         *gorm.DB
	repository repository.ClimateRepository
	logger     *slog.Logger
}

type healthResponse struct {
	Status  string               `json:"status"`
	Dataset types.DatasetSummary `json:"dataset"`
}

func NewHealthchecker(db *gorm.DB, logger *slog.Logger) healthchecker {
	return &healthcheckerImpl{db: db, repository: repository.NewRepository(db), logger: logger}
}

func (h *healthcheckerImpl) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := db.Ping(r.Context(), h.db); err != nil {
		h.logger.Error("failed to check database connectivity", "error", err)
		utils.WriteError(w, http.StatusServiceUnavailable, utils.CodeUnavailable, "failed to check database connectivity")
		return
	}
	summary, err := h.repository.GetSummary(r.Context())
	if err != nil {
		h.logger.Error("failed to summarize dataset", "error", err)
		utils.WriteError(w, http.StatusServiceUnavailable, utils.CodeUnavailable, "failed to summarize dataset")
		return
	}
	utils.WriteJSON(w, http.StatusOK, healthResponse{Status: "ok", Dataset: summary})
}

func registerHealthcheck(mux *http.ServeMux, db *gorm.DB, logger *slog.Logger) {
	healthchecker := NewHealthchecker(db, logger)
	mux.HandleFunc("GET /healthz", healthchecker.handleHealthz)
}

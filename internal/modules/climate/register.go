package climate

import (
	"log/slog"
	"net/http"

	"gorm.io/gorm"

	"surfsup-server/internal/modules/climate/controller"
	"surfsup-server/internal/modules/climate/repository"
	"surfsup-server/internal/modules/climate/service"
)

func RegisterFeature(mux *http.ServeMux, db *gorm.DB, window service.Window, logger *slog.Logger) {
	climateRepository := repository.NewRepository(db)
	climateService := service.NewService(climateRepository, window, logger)
	climateController := controller.NewClimateController(climateService, logger)
	climateController.RegisterRoutes(mux)
}

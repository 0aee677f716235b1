package controller

import (
	"bytes"
	"errors"
	"net/http"

	"surfsup-server/internal/modules/climate/service"
	"surfsup-server/internal/modules/climate/views"
	"surfsup-server/internal/utils"
)

func (c *climateControllerImpl) handleWelcome(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := views.RenderWelcome(&buf, views.DefaultWelcome()); err != nil {
		c.logger.Error("welcome template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, utils.CodeQueryFailed, "failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		c.logger.Error("welcome: write response failed", "error", err)
	}
}

func (c *climateControllerImpl) handlePrecipitation(w http.ResponseWriter, r *http.Request) {
	prcp, err := c.service.Precipitation(r.Context())
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, prcp)
}

func (c *climateControllerImpl) handleStations(w http.ResponseWriter, r *http.Request) {
	stations, err := c.service.Stations(r.Context())
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, stations)
}

func (c *climateControllerImpl) handleTobs(w http.ResponseWriter, r *http.Request) {
	obs, err := c.service.MostActiveStationTemperatures(r.Context())
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, obs)
}

func (c *climateControllerImpl) handleStatsFrom(w http.ResponseWriter, r *http.Request) {
	stats, err := c.service.TemperatureStatsFrom(r.Context(), r.PathValue("start"))
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, stats)
}

func (c *climateControllerImpl) handleStatsBetween(w http.ResponseWriter, r *http.Request) {
	stats, err := c.service.TemperatureStatsBetween(r.Context(), r.PathValue("start"), r.PathValue("end"))
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, stats)
}

// writeServiceError maps service errors to a status and error code.
func (c *climateControllerImpl) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDate):
		utils.WriteError(w, http.StatusBadRequest, utils.CodeInvalidDate, err.Error())
	case errors.Is(err, service.ErrInvalidRange):
		utils.WriteError(w, http.StatusBadRequest, utils.CodeInvalidRange, err.Error())
	default:
		c.logger.Error("query failed", "path", r.URL.Path, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, utils.CodeQueryFailed, err.Error())
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"surfsup-server/internal/config"
	"surfsup-server/internal/modules/climate/repository"
	"surfsup-server/internal/modules/climate/types"
)

var (
	// ErrInvalidDate marks a start or end value that is not a calendar date.
	ErrInvalidDate = errors.New("invalid date")
	// ErrInvalidRange marks an end date before its start date.
	ErrInvalidRange = errors.New("invalid date range")
)

type ClimateService interface {
	Precipitation(ctx context.Context) (types.PrecipitationByDate, error)
	Stations(ctx context.Context) ([]string, error)
	MostActiveStationTemperatures(ctx context.Context) ([]types.TemperatureObservation, error)
	TemperatureStatsFrom(ctx context.Context, start string) (types.TemperatureStats, error)
	TemperatureStatsBetween(ctx context.Context, start, end string) (types.TemperatureStats, error)
	Summary(ctx context.Context) (types.DatasetSummary, error)
}

// Window fixes the "last 12 months" lower bound used by the precipitation and
// tobs operations.
type Window struct {
	ReferenceDate time.Time
	LookbackDays  int
}

// Since returns ReferenceDate minus LookbackDays, formatted as a dataset date.
func (w Window) Since() string {
	return w.ReferenceDate.AddDate(0, 0, -w.LookbackDays).Format(config.DateLayout)
}

type serviceImpl struct {
	repository repository.ClimateRepository
	window     Window
	logger     *slog.Logger
}

func NewService(repository repository.ClimateRepository, window Window, logger *slog.Logger) ClimateService {
	if logger == nil {
		logger = slog.Default()
	}
	return &serviceImpl{repository: repository, window: window, logger: logger}
}

func (s *serviceImpl) Precipitation(ctx context.Context) (types.PrecipitationByDate, error) {
	rows, err := s.repository.GetPrecipitation(ctx, s.window.Since())
	if err != nil {
		return nil, err
	}
	// Later rows overwrite earlier ones when several stations report the same date.
	out := make(types.PrecipitationByDate, len(rows))
	for _, row := range rows {
		out[row.Date] = row.Prcp
	}
	return out, nil
}

func (s *serviceImpl) Stations(ctx context.Context) ([]string, error) {
	ids, err := s.repository.GetStationIDs(ctx)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func (s *serviceImpl) MostActiveStationTemperatures(ctx context.Context) ([]types.TemperatureObservation, error) {
	activity, ok, err := s.repository.GetMostActiveStation(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.logger.Warn("no measurements; most active station undefined")
		return []types.TemperatureObservation{}, nil
	}
	s.logger.Debug("most active station",
		"station", activity.Station,
		"observations", activity.Observations,
	)

	obs, err := s.repository.GetTemperatureObservations(ctx, activity.Station, s.window.Since())
	if err != nil {
		return nil, err
	}
	if obs == nil {
		obs = []types.TemperatureObservation{}
	}
	return obs, nil
}

func (s *serviceImpl) TemperatureStatsFrom(ctx context.Context, start string) (types.TemperatureStats, error) {
	from, err := ParseDate("start", start)
	if err != nil {
		return types.TemperatureStats{}, err
	}
	return s.repository.GetTemperatureStats(ctx, from, "")
}

func (s *serviceImpl) TemperatureStatsBetween(ctx context.Context, start, end string) (types.TemperatureStats, error) {
	from, err := ParseDate("start", start)
	if err != nil {
		return types.TemperatureStats{}, err
	}
	to, err := ParseDate("end", end)
	if err != nil {
		return types.TemperatureStats{}, err
	}
	if to < from {
		return types.TemperatureStats{}, fmt.Errorf("%w: end %s is before start %s", ErrInvalidRange, to, from)
	}
	return s.repository.GetTemperatureStats(ctx, from, to)
}

func (s *serviceImpl) Summary(ctx context.Context) (types.DatasetSummary, error) {
	return s.repository.GetSummary(ctx)
}

// ParseDate validates a user supplied date and returns it in dataset form
// (YYYY-MM-DD). RFC 3339 timestamps are accepted and truncated to their date.
func ParseDate(name, value string) (string, error) {
	v := strings.TrimSpace(value)
	if t, err := time.Parse(config.DateLayout, v); err == nil {
		return t.Format(config.DateLayout), nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.Format(config.DateLayout), nil
	}
	return "", fmt.Errorf("%w: %s %q (expected YYYY-MM-DD)", ErrInvalidDate, name, value)
}

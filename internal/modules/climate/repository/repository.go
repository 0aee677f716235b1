package repository

import (
	"context"
	"database/sql"
	"fmt"

	"gorm.io/gorm"

	"surfsup-server/internal/db"
	"surfsup-server/internal/modules/climate/types"
)

// RequiredSchema lists the tables and columns the repository reads.
var RequiredSchema = []db.Table{
	{Model: &types.Station{}, Columns: []string{"id", "station", "name", "latitude", "longitude", "elevation"}},
	{Model: &types.Measurement{}, Columns: []string{"id", "station", "date", "prcp", "tobs"}},
}

type ClimateRepository interface {
	// GetPrecipitation returns (date, prcp) for every measurement on or after since, in row order.
	GetPrecipitation(ctx context.Context, since string) ([]types.Precipitation, error)
	GetStationIDs(ctx context.Context) ([]string, error)
	// GetMostActiveStation returns the station with the most measurement rows,
	// ties going to the smallest station id. ok is false when there are no measurements.
	GetMostActiveStation(ctx context.Context) (activity types.StationActivity, ok bool, err error)
	GetTemperatureObservations(ctx context.Context, station string, since string) ([]types.TemperatureObservation, error)
	// GetTemperatureStats aggregates tobs over [start, end]. An empty end means unbounded.
	GetTemperatureStats(ctx context.Context, start string, end string) (types.TemperatureStats, error)
	GetSummary(ctx context.Context) (types.DatasetSummary, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) ClimateRepository {
	return &repositoryImpl{db: db}
}

// VerifySchema checks the dataset has every table and column in RequiredSchema.
func VerifySchema(ctx context.Context, gdb *gorm.DB) error {
	return db.VerifySchema(ctx, gdb, RequiredSchema...)
}

func (r *repositoryImpl) measurements(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&types.Measurement{})
}

func (r *repositoryImpl) GetPrecipitation(ctx context.Context, since string) ([]types.Precipitation, error) {
	var out []types.Precipitation
	err := r.measurements(ctx).
		Select("date", "prcp").
		Where("date >= ?", since).
		Order("id").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("query precipitation: %w", err)
	}
	return out, nil
}

func (r *repositoryImpl) GetStationIDs(ctx context.Context) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).
		Model(&types.Station{}).
		Order("id").
		Pluck("station", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("query stations: %w", err)
	}
	return ids, nil
}

func (r *repositoryImpl) GetMostActiveStation(ctx context.Context) (types.StationActivity, bool, error) {
	var activity types.StationActivity
	res := r.measurements(ctx).
		Select("station", "COUNT(*) AS observations").
		Where("station IS NOT NULL").
		Group("station").
		Order("observations DESC").
		Order("station ASC").
		Limit(1).
		Scan(&activity)
	if res.Error != nil {
		return types.StationActivity{}, false, fmt.Errorf("query most active station: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return types.StationActivity{}, false, nil
	}
	return activity, true, nil
}

func (r *repositoryImpl) GetTemperatureObservations(ctx context.Context, station string, since string) ([]types.TemperatureObservation, error) {
	out := []types.TemperatureObservation{}
	err := r.measurements(ctx).
		Select("date", "tobs").
		Where("station = ?", station).
		Where("date >= ?", since).
		Order("id").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("query temperature observations for %s: %w", station, err)
	}
	return out, nil
}

func (r *repositoryImpl) GetTemperatureStats(ctx context.Context, start string, end string) (types.TemperatureStats, error) {
	q := r.measurements(ctx).
		Select("MIN(tobs)", "AVG(tobs)", "MAX(tobs)").
		Where("date >= ?", start)
	if end != "" {
		q = q.Where("date <= ?", end)
	}

	var tmin, tavg, tmax sql.NullFloat64
	if err := q.Row().Scan(&tmin, &tavg, &tmax); err != nil {
		return types.TemperatureStats{}, fmt.Errorf("query temperature stats: %w", err)
	}
	return types.TemperatureStats{
		Min: nullableFloat(tmin),
		Avg: nullableFloat(tavg),
		Max: nullableFloat(tmax),
	}, nil
}

func (r *repositoryImpl) GetSummary(ctx context.Context) (types.DatasetSummary, error) {
	var summary types.DatasetSummary
	if err := r.db.WithContext(ctx).Model(&types.Station{}).Count(&summary.Stations).Error; err != nil {
		return types.DatasetSummary{}, fmt.Errorf("count stations: %w", err)
	}

	var first, last sql.NullString
	err := r.measurements(ctx).
		Select("COUNT(*)", "MIN(date)", "MAX(date)").
		Row().
		Scan(&summary.Measurements, &first, &last)
	if err != nil {
		return types.DatasetSummary{}, fmt.Errorf("summarize measurements: %w", err)
	}
	summary.FirstDate = first.String
	summary.LastDate = last.String
	return summary, nil
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// Package dbtest builds in-memory climate datasets for tests.
package dbtest

import (
	"database/sql"
	_ "embed"
	"io"
	"log/slog"
	"testing"

	"gorm.io/gorm"

	"surfsup-server/internal/db"
	"surfsup-server/internal/modules/climate/types"
)

// Schema mirrors the layout of the hawaii.sqlite dataset.
//
//go:embed sql/schema.sql
var Schema string

// Open returns a gorm handle over a fresh in-memory database with Schema
// applied. The pool is pinned to one connection so every query sees the same
// in-memory database.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	gdb := OpenEmpty(t)
	if err := gdb.Exec(Schema).Error; err != nil {
		t.Fatalf("exec schema: %v", err)
	}
	return gdb
}

// OpenEmpty is Open without the schema.
func OpenEmpty(t testing.TB) *gorm.DB {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sqlDB := sql.OpenDB(db.NewQueryLogConnector(":memory:", logger))
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		if err := sqlDB.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})

	gdb, err := db.NewGorm(sqlDB)
	if err != nil {
		t.Fatalf("gorm: %v", err)
	}
	return gdb
}

func InsertStations(t testing.TB, gdb *gorm.DB, stations ...types.Station) {
	t.Helper()
	if len(stations) == 0 {
		return
	}
	if err := gdb.Create(&stations).Error; err != nil {
		t.Fatalf("insert stations: %v", err)
	}
}

func InsertMeasurements(t testing.TB, gdb *gorm.DB, measurements ...types.Measurement) {
	t.Helper()
	if len(measurements) == 0 {
		return
	}
	if err := gdb.Create(&measurements).Error; err != nil {
		t.Fatalf("insert measurements: %v", err)
	}
}

// F returns a pointer to v, for nullable columns.
func F(v float64) *float64 {
	return &v
}

// M builds a measurement row.
func M(station, date string, prcp, tobs *float64) types.Measurement {
	return types.Measurement{Station: station, Date: date, Prcp: prcp, Tobs: tobs}
}

// CreateFile writes a dataset file at path with Schema applied and the given
// rows inserted, and closes it. Use it for code that opens the dataset by path.
func CreateFile(t testing.TB, path string, stations []types.Station, measurements []types.Measurement) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sqlDB := sql.OpenDB(db.NewQueryLogConnector(path, logger))
	sqlDB.SetMaxOpenConns(1)
	defer func() {
		if err := sqlDB.Close(); err != nil {
			t.Errorf("close dataset file: %v", err)
		}
	}()

	gdb, err := db.NewGorm(sqlDB)
	if err != nil {
		t.Fatalf("gorm: %v", err)
	}
	if err := gdb.Exec(Schema).Error; err != nil {
		t.Fatalf("exec schema: %v", err)
	}
	InsertStations(t, gdb, stations...)
	InsertMeasurements(t, gdb, measurements...)
}

package types

import (
	"encoding/json"
)

// Station is a row of the station table.
type Station struct {
	ID        uint    `gorm:"column:id;primaryKey" json:"-"`
	Station   string  `gorm:"column:station" json:"station"`
	Name      string  `gorm:"column:name" json:"name"`
	Latitude  float64 `gorm:"column:latitude" json:"latitude"`
	Longitude float64 `gorm:"column:longitude" json:"longitude"`
	Elevation float64 `gorm:"column:elevation" json:"elevation"`
}

func (Station) TableName() string { return "station" }

// Measurement is one station/date reading. Date is stored as YYYY-MM-DD text.
type Measurement struct {
	ID      uint     `gorm:"column:id;primaryKey" json:"-"`
	Station string   `gorm:"column:station" json:"station"`
	Date    string   `gorm:"column:date" json:"date"`
	Prcp    *float64 `gorm:"column:prcp" json:"prcp"`
	Tobs    *float64 `gorm:"column:tobs" json:"tobs"`
}

func (Measurement) TableName() string { return "measurement" }

// Precipitation is a (date, prcp) pair as read from the measurement table.
type Precipitation struct {
	Date string
	Prcp *float64
}

// PrecipitationByDate maps a date to its precipitation. encoding/json sorts
// map keys, so the encoded form is stable.
type PrecipitationByDate map[string]*float64

type TemperatureObservation struct {
	Date string   `json:"date"`
	Tobs *float64 `json:"tobs"`
}

// TemperatureStats is the min/avg/max of tobs over a date window. All three
// are nil when the window holds no observations.
type TemperatureStats struct {
	Min *float64
	Avg *float64
	Max *float64
}

// MarshalJSON encodes the stats as [min, avg, max].
func (s TemperatureStats) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]*float64{s.Min, s.Avg, s.Max})
}

func (s *TemperatureStats) UnmarshalJSON(b []byte) error {
	var arr [3]*float64
	if err := json.Unmarshal(b, &arr); err != nil {
		return err
	}
	s.Min, s.Avg, s.Max = arr[0], arr[1], arr[2]
	return nil
}

// StationActivity is a station with its measurement row count.
type StationActivity struct {
	Station      string `json:"station"`
	Observations int64  `json:"observations"`
}

type DatasetSummary struct {
	Stations     int64  `json:"stations"`
	Measurements int64  `json:"measurements"`
	FirstDate    string `json:"firstDate,omitempty"`
	LastDate     string `json:"lastDate,omitempty"`
}

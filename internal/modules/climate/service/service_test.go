package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"surfsup-server/internal/db/dbtest"
	"surfsup-server/internal/modules/climate/repository"
	"surfsup-server/internal/modules/climate/types"
)

var f = dbtest.F

var defaultWindow = Window{
	ReferenceDate: time.Date(2017, 8, 23, 0, 0, 0, 0, time.UTC),
	LookbackDays:  365,
}

func newSeededService(t *testing.T) (ClimateService, repository.ClimateRepository) {
	t.Helper()
	gdb := dbtest.Open(t)
	dbtest.InsertStations(t, gdb,
		types.Station{Station: "USC00519397", Name: "WAIKIKI 717.2, HI US"},
		types.Station{Station: "USC00519281", Name: "WAIHEE 837.5, HI US"},
	)
	dbtest.InsertMeasurements(t, gdb,
		dbtest.M("USC00519397", "2016-01-01", f(0.9), f(65)),
		dbtest.M("USC00519397", "2016-08-22", f(1.1), f(70)),
		dbtest.M("USC00519397", "2016-08-23", f(0.2), f(72)),
		dbtest.M("USC00519281", "2016-08-23", f(0.7), f(71)),
		dbtest.M("USC00519281", "2017-01-01", f(10), f(10)),
		dbtest.M("USC00519281", "2017-01-15", nil, f(20)),
		dbtest.M("USC00519281", "2017-01-31", f(0), f(30)),
		dbtest.M("USC00519397", "2017-02-01", f(0.4), f(68)),
	)
	repo := repository.NewRepository(gdb)
	return NewService(repo, defaultWindow, nil), repo
}

func TestWindow_Since(t *testing.T) {
	tests := []struct {
		name   string
		window Window
		want   string
	}{
		{name: "default reference", window: defaultWindow, want: "2016-08-23"},
		{name: "crosses leap day", window: Window{ReferenceDate: time.Date(2016, 3, 1, 0, 0, 0, 0, time.UTC), LookbackDays: 365}, want: "2015-03-02"},
		{name: "short window", window: Window{ReferenceDate: time.Date(2017, 1, 10, 0, 0, 0, 0, time.UTC), LookbackDays: 10}, want: "2016-12-31"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.window.Since(); got != tt.want {
				t.Errorf("Since() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestPrecipitation(t *testing.T) {
	svc, _ := newSeededService(t)

	got, err := svc.Precipitation(context.Background())
	if err != nil {
		t.Fatalf("Precipitation: %v", err)
	}
	want := types.PrecipitationByDate{
		"2016-08-23": f(0.7), // later row wins
		"2017-01-01": f(10),
		"2017-01-15": nil,
		"2017-01-31": f(0),
		"2017-02-01": f(0.4),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Precipitation mismatch (-want +got):\n%s", diff)
	}
	since := defaultWindow.Since()
	for date := range got {
		if date < since {
			t.Errorf("date %s is before the window start %s", date, since)
		}
	}
}

func TestStations_MatchesStationTable(t *testing.T) {
	svc, repo := newSeededService(t)
	ctx := context.Background()

	got, err := svc.Stations(ctx)
	if err != nil {
		t.Fatalf("Stations: %v", err)
	}
	summary, err := repo.GetSummary(ctx)
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	if int64(len(got)) != summary.Stations {
		t.Errorf("len(Stations) = %d; want %d", len(got), summary.Stations)
	}
	if diff := cmp.Diff([]string{"USC00519397", "USC00519281"}, got); diff != "" {
		t.Errorf("Stations mismatch (-want +got):\n%s", diff)
	}
}

func TestMostActiveStationTemperatures(t *testing.T) {
	svc, _ := newSeededService(t)

	got, err := svc.MostActiveStationTemperatures(context.Background())
	if err != nil {
		t.Fatalf("MostActiveStationTemperatures: %v", err)
	}
	// Both stations have 4 rows; the tie goes to USC00519281.
	want := []types.TemperatureObservation{
		{Date: "2016-08-23", Tobs: f(71)},
		{Date: "2017-01-01", Tobs: f(10)},
		{Date: "2017-01-15", Tobs: f(20)},
		{Date: "2017-01-31", Tobs: f(30)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("MostActiveStationTemperatures mismatch (-want +got):\n%s", diff)
	}
}

func TestMostActiveStationTemperatures_EmptyDataset(t *testing.T) {
	svc := NewService(repository.NewRepository(dbtest.Open(t)), defaultWindow, nil)

	got, err := svc.MostActiveStationTemperatures(context.Background())
	if err != nil {
		t.Fatalf("MostActiveStationTemperatures: %v", err)
	}
	b, _ := json.Marshal(got)
	if string(b) != "[]" {
		t.Errorf("json = %s; want []", b)
	}
}

func TestTemperatureStatsBetween_Scenario(t *testing.T) {
	svc, _ := newSeededService(t)

	got, err := svc.TemperatureStatsBetween(context.Background(), "2017-01-01", "2017-01-31")
	if err != nil {
		t.Fatalf("TemperatureStatsBetween: %v", err)
	}
	b, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "[10,20,30]" {
		t.Errorf("json = %s; want [10,20,30]", b)
	}
}

func TestTemperatureStatsBetween_Ordered(t *testing.T) {
	svc, _ := newSeededService(t)
	ranges := [][2]string{
		{"2016-01-01", "2018-01-01"},
		{"2016-08-22", "2016-08-23"},
		{"2017-01-15", "2017-02-01"},
		{"2017-02-01", "2017-02-01"},
	}
	for _, r := range ranges {
		got, err := svc.TemperatureStatsBetween(context.Background(), r[0], r[1])
		if err != nil {
			t.Fatalf("TemperatureStatsBetween(%s, %s): %v", r[0], r[1], err)
		}
		if got.Min == nil || got.Avg == nil || got.Max == nil {
			t.Fatalf("TemperatureStatsBetween(%s, %s) has nulls on a non-empty window", r[0], r[1])
		}
		if !(*got.Min <= *got.Avg && *got.Avg <= *got.Max) {
			t.Errorf("TemperatureStatsBetween(%s, %s) = [%v %v %v]; want min <= avg <= max", r[0], r[1], *got.Min, *got.Avg, *got.Max)
		}
	}
}

func TestTemperatureStatsFrom_MinDateMatchesUnbounded(t *testing.T) {
	svc, repo := newSeededService(t)
	ctx := context.Background()

	summary, err := repo.GetSummary(ctx)
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	got, err := svc.TemperatureStatsFrom(ctx, summary.FirstDate)
	if err != nil {
		t.Fatalf("TemperatureStatsFrom: %v", err)
	}
	unbounded, err := repo.GetTemperatureStats(ctx, "", "")
	if err != nil {
		t.Fatalf("GetTemperatureStats: %v", err)
	}
	if diff := cmp.Diff(unbounded, got); diff != "" {
		t.Errorf("stats from first date differ from unbounded (-want +got):\n%s", diff)
	}
}

func TestTemperatureStats_EmptyWindowIsNull(t *testing.T) {
	svc, _ := newSeededService(t)
	ctx := context.Background()

	from, err := svc.TemperatureStatsFrom(ctx, "2030-01-01")
	if err != nil {
		t.Fatalf("TemperatureStatsFrom: %v", err)
	}
	between, err := svc.TemperatureStatsBetween(ctx, "2030-01-01", "2030-02-01")
	if err != nil {
		t.Fatalf("TemperatureStatsBetween: %v", err)
	}
	for _, stats := range []types.TemperatureStats{from, between} {
		b, _ := json.Marshal(stats)
		if string(b) != "[null,null,null]" {
			t.Errorf("json = %s; want [null,null,null]", b)
		}
	}
}

func TestTemperatureStats_InvalidInput(t *testing.T) {
	svc, _ := newSeededService(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		start, end string
		bounded    bool
		want       error
	}{
		{name: "garbage start", start: "yesterday", want: ErrInvalidDate},
		{name: "impossible date", start: "2017-02-30", want: ErrInvalidDate},
		{name: "no dashes", start: "20170101", want: ErrInvalidDate},
		{name: "garbage end", start: "2017-01-01", end: "soon", bounded: true, want: ErrInvalidDate},
		{name: "end before start", start: "2017-02-01", end: "2017-01-01", bounded: true, want: ErrInvalidRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if tt.bounded {
				_, err = svc.TemperatureStatsBetween(ctx, tt.start, tt.end)
			} else {
				_, err = svc.TemperatureStatsFrom(ctx, tt.start)
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v; want %v", err, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2017-01-01", want: "2017-01-01"},
		{in: " 2016-08-23 ", want: "2016-08-23"},
		{in: "2017-01-01T12:30:00Z", want: "2017-01-01"},
		{in: "2016-02-29", want: "2016-02-29"},
		{in: "2017-02-29", wantErr: true},
		{in: "2017-1-1", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate("start", tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDate) {
					t.Fatalf("ParseDate(%q) err = %v; want ErrInvalidDate", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDate(%q) err = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseDate(%q) = %q; want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestReads_AreIdempotent(t *testing.T) {
	svc, _ := newSeededService(t)
	ctx := context.Background()

	reads := map[string]func() (any, error){
		"precipitation": func() (any, error) { return svc.Precipitation(ctx) },
		"stations":      func() (any, error) { return svc.Stations(ctx) },
		"tobs":          func() (any, error) { return svc.MostActiveStationTemperatures(ctx) },
		"stats":         func() (any, error) { return svc.TemperatureStatsBetween(ctx, "2016-01-01", "2017-12-31") },
	}
	for name, read := range reads {
		t.Run(name, func(t *testing.T) {
			first, err := read()
			if err != nil {
				t.Fatalf("first read: %v", err)
			}
			second, err := read()
			if err != nil {
				t.Fatalf("second read: %v", err)
			}
			a, _ := json.Marshal(first)
			b, _ := json.Marshal(second)
			if string(a) != string(b) {
				t.Errorf("reads differ:\n%s\n%s", a, b)
			}
		})
	}
}

type failingRepo struct {
	repository.ClimateRepository
	err error
}

func (r failingRepo) GetPrecipitation(context.Context, string) ([]types.Precipitation, error) {
	return nil, r.err
}

func (r failingRepo) GetStationIDs(context.Context) ([]string, error) {
	return nil, r.err
}

func (r failingRepo) GetMostActiveStation(context.Context) (types.StationActivity, bool, error) {
	return types.StationActivity{}, false, r.err
}

func (r failingRepo) GetTemperatureStats(context.Context, string, string) (types.TemperatureStats, error) {
	return types.TemperatureStats{}, r.err
}

func TestService_PropagatesRepositoryErrors(t *testing.T) {
	boom := errors.New("disk I/O error")
	svc := NewService(failingRepo{err: boom}, defaultWindow, nil)
	ctx := context.Background()

	if _, err := svc.Precipitation(ctx); !errors.Is(err, boom) {
		t.Errorf("Precipitation err = %v", err)
	}
	if _, err := svc.Stations(ctx); !errors.Is(err, boom) {
		t.Errorf("Stations err = %v", err)
	}
	if _, err := svc.MostActiveStationTemperatures(ctx); !errors.Is(err, boom) {
		t.Errorf("MostActiveStationTemperatures err = %v", err)
	}
	if _, err := svc.TemperatureStatsFrom(ctx, "2017-01-01"); !errors.Is(err, boom) {
		t.Errorf("TemperatureStatsFrom err = %v", err)
	}
	if _, err := svc.TemperatureStatsBetween(ctx, "2017-01-01", "2017-01-02"); !errors.Is(err, boom) {
		t.Errorf("TemperatureStatsBetween err = %v", err)
	}
}

package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"surfsup-server/internal/app"
	"surfsup-server/internal/db"
	"surfsup-server/internal/modules/climate/repository"
	"surfsup-server/internal/modules/climate/service"
)

func newQueryCmd(s *state) *cobra.Command {
	queryCmd := &cobra.Command{
		Use:     "query",
		Aliases: []string{"q"},
		Short:   "Run an API query and print its JSON",
		Long: `Run one of the API queries against the dataset and print the JSON the
HTTP route would return.

Examples:
  surfsup query precipitation
  surfsup query stations
  surfsup query tobs
  surfsup query stats 2017-01-01
  surfsup query stats 2017-01-01 2017-01-31`,
	}

	queryCmd.AddCommand(
		&cobra.Command{
			Use:   "precipitation",
			Short: "Precipitation by date for the last 12 months",
			Args:  cobra.NoArgs,
			RunE: s.withService(func(cmd *cobra.Command, svc service.ClimateService, args []string) (any, error) {
				return svc.Precipitation(cmd.Context())
			}),
		},
		&cobra.Command{
			Use:   "stations",
			Short: "Station identifiers",
			Args:  cobra.NoArgs,
			RunE: s.withService(func(cmd *cobra.Command, svc service.ClimateService, args []string) (any, error) {
				return svc.Stations(cmd.Context())
			}),
		},
		&cobra.Command{
			Use:   "tobs",
			Short: "Temperature observations of the most active station for the last 12 months",
			Args:  cobra.NoArgs,
			RunE: s.withService(func(cmd *cobra.Command, svc service.ClimateService, args []string) (any, error) {
				return svc.MostActiveStationTemperatures(cmd.Context())
			}),
		},
		&cobra.Command{
			Use:   "stats <start> [end]",
			Short: "Min, avg and max temperature from start, or between start and end",
			Args:  cobra.RangeArgs(1, 2),
			RunE: s.withService(func(cmd *cobra.Command, svc service.ClimateService, args []string) (any, error) {
				if len(args) == 2 {
					return svc.TemperatureStatsBetween(cmd.Context(), args[0], args[1])
				}
				return svc.TemperatureStatsFrom(cmd.Context(), args[0])
			}),
		},
	)
	return queryCmd
}

type serviceFunc func(cmd *cobra.Command, svc service.ClimateService, args []string) (any, error)

// withService opens the dataset for the duration of one command and prints
// the result of fn as JSON.
func (s *state) withService(fn serviceFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		gdb, err := openDataset(cmd, s)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close(gdb) }()

		svc := service.NewService(repository.NewRepository(gdb), app.Window(s.cfg), s.logger)
		out, err := fn(cmd, svc, args)
		if err != nil {
			return err
		}
		return printJSON(cmd, out)
	}
}

func openDataset(cmd *cobra.Command, s *state) (*gorm.DB, error) {
	return app.OpenDataset(cmd.Context(), s.cfg, s.logger)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

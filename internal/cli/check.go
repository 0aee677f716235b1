package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"surfsup-server/internal/db"
	"surfsup-server/internal/modules/climate/repository"
)

func newCheckCmd(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the dataset schema and print a summary",
		Long: `Open the dataset read-only, verify the station and measurement tables
carry every column the API reads, and print station and measurement counts
with the measurement date range.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gdb, err := openDataset(cmd, s)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close(gdb) }()

			summary, err := repository.NewRepository(gdb).GetSummary(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, summary)
		},
	}
}

func newVersionCmd(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", appName, s.version)
			return err
		},
	}
}

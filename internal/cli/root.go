package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"surfsup-server/internal/config"
	"surfsup-server/internal/logging"
)

const appName = "surfsup"

// state is shared by every subcommand; PersistentPreRunE fills cfg and logger.
type state struct {
	version string
	dbPath  string
	addr    string
	verbose bool

	cfg    config.Config
	logger *slog.Logger
}

// NewRootCmd builds the command tree. Without a subcommand it serves HTTP.
func NewRootCmd(version string) *cobra.Command {
	s := &state{version: version}

	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "Hawaii climate JSON API",
		Long: `Read-only JSON API over the Hawaii climate dataset (station and
measurement tables). Without a subcommand it starts the HTTP server.

Configuration comes from the environment (APP_ENV, LOG_LEVEL, HTTP_ADDR,
SQLITE_PATH, DB_DSN, REFERENCE_DATE, LOOKBACK_DAYS, ...). Flags override it.`,
		SilenceUsage:      true,
		PersistentPreRunE: s.setup,
		RunE:              s.runServe,
		Args:              cobra.NoArgs,
	}

	rootCmd.PersistentFlags().StringVar(&s.dbPath, "db", "", "Path to the sqlite dataset (overrides SQLITE_PATH and DB_DSN)")
	rootCmd.PersistentFlags().BoolVarP(&s.verbose, "verbose", "v", false, "Enable verbose (debug) logging")
	rootCmd.Flags().StringVar(&s.addr, "addr", "", "HTTP listen address (overrides HTTP_ADDR)")

	rootCmd.AddCommand(
		newServeCmd(s),
		newQueryCmd(s),
		newCheckCmd(s),
		newVersionCmd(s),
	)
	return rootCmd
}

// Execute runs the command tree against os.Args.
func Execute(version string) error {
	return NewRootCmd(version).Execute()
}

func (s *state) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}
	if s.dbPath != "" {
		cfg.SQLitePath = s.dbPath
		cfg.SQLiteDSN = ""
	}
	if s.addr != "" {
		cfg.HTTPAddr = s.addr
	}
	if s.verbose {
		cfg.LogLevel = slog.LevelDebug
	}
	s.cfg = cfg

	// Logs go to stderr so query output on stdout stays machine readable.
	s.logger = logging.New(cmd.ErrOrStderr(), cfg, s.version, appName)
	slog.SetDefault(s.logger)
	return nil
}

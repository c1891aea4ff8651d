package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/Domenick1991/airops/config"
	"github.com/Domenick1991/airops/internal/logging"
	"github.com/Domenick1991/airops/internal/repository/gormstore"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	flagDatabaseURL      = "database-url"
	flagLogLevel         = "log-level"
	configKeyDatabaseURL = "database_url"
	configKeyLogLevel    = "log_level"
	envPrefix            = "AIRLINECTL"
	defaultDatabaseURL   = "sqlite://airops.db"
)

type runtimeConfig struct {
	DatabaseURL string
	LogLevel    string
}

// session is the per-invocation state shared by every subcommand.
type session struct {
	cfg     runtimeConfig
	store   *gormstore.Store
	logger  *zap.Logger
	cleanup func() error
}

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "airlinectl: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	s := &session{}
	v := viper.New()

	cmd := &cobra.Command{
		Use:           "airlinectl",
		Short:         "Operate the airline booking database from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, v, &s.cfg); err != nil {
				return err
			}
			return s.open(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return s.close()
		},
	}

	cmd.PersistentFlags().String(flagDatabaseURL, defaultDatabaseURL, "database URL (postgres://, mysql://, sqlite:// or a SQLite path)")
	cmd.PersistentFlags().String(flagLogLevel, "warn", "log level")

	cmd.AddCommand(
		newMigrateCommand(s),
		newPlaneCommand(s),
		newPilotCommand(s),
		newFlightCommand(s),
		newTechnicianCommand(s),
		newRepairCommand(s),
		newBookCommand(s),
		newSeatsCommand(s),
		newReportCommand(s),
	)
	return cmd
}

func loadConfig(cmd *cobra.Command, v *viper.Viper, cfg *runtimeConfig) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlag(configKeyDatabaseURL, cmd.Flags().Lookup(flagDatabaseURL)); err != nil {
		return err
	}
	if err := v.BindPFlag(configKeyLogLevel, cmd.Flags().Lookup(flagLogLevel)); err != nil {
		return err
	}

	cfg.DatabaseURL = v.GetString(configKeyDatabaseURL)
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = defaultDatabaseURL
	}
	cfg.LogLevel = v.GetString(configKeyLogLevel)
	return nil
}

func (s *session) open(ctx context.Context) error {
	logger, err := logging.New(config.LoggingConfig{Level: s.cfg.LogLevel})
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	s.logger = logger

	db, cleanup, driver, err := gormstore.Open(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database open: %w", err)
	}
	if err := gormstore.Migrate(db); err != nil {
		_ = cleanup()
		return fmt.Errorf("migrate %s: %w", driver, err)
	}
	s.logger.Debug("database ready", zap.String("driver", driver))
	s.store = gormstore.New(db)
	s.cleanup = cleanup
	return nil
}

func (s *session) close() error {
	if s.logger != nil {
		_ = s.logger.Sync()
	}
	if s.cleanup == nil {
		return nil
	}
	err := s.cleanup()
	s.cleanup = nil
	return err
}

func printJSON(cmd *cobra.Command, value any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

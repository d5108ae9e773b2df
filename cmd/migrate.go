package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/Dosada05/pool-tournament-manager/config"
	"github.com/Dosada05/pool-tournament-manager/db"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(logger *slog.Logger, conn *sql.DB) error {
				n, err := db.MigrateUp(conn)
				if err != nil {
					return err
				}
				logger.Info("migrations applied", slog.Int("count", n))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back migrations (default: the last one)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					return fmt.Errorf("steps must be a positive integer, got %q", args[0])
				}
				steps = n
			}
			return withDatabase(func(logger *slog.Logger, conn *sql.DB) error {
				n, err := db.MigrateDown(conn, steps)
				if err != nil {
					return err
				}
				logger.Info("migrations rolled back", slog.Int("count", n))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show which migrations are applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(_ *slog.Logger, conn *sql.DB) error {
				statuses, err := db.Status(conn)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, s := range statuses {
					state := "pending"
					if s.Applied {
						state = "applied"
					}
					fmt.Fprintf(out, "%-40s %s\n", s.ID, state)
				}
				return nil
			})
		},
	})

	return cmd
}

// withDatabase connects using only the database settings, so migrations run without storage config.
func withDatabase(fn func(logger *slog.Logger, conn *sql.DB) error) error {
	logger := newLogger(slog.LevelInfo)

	dsn, err := config.LoadDatabaseURL()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	conn, err := db.Connect(dsn, 5*time.Second)
	if err != nil {
		return err
	}
	defer conn.Close()

	return fn(logger, conn)
}

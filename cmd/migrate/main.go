package main

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	_ "github.com/lib/pq"
	"github.com/smartfertilizer/backend/internal/infrastructure/config"
	"github.com/smartfertilizer/backend/internal/infrastructure/logger"
	"github.com/smartfertilizer/backend/internal/infrastructure/migration"
	"github.com/smartfertilizer/backend/internal/infrastructure/persistence"
	"github.com/smartfertilizer/backend/migrations"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	migrationsPath string
	logLevel       string
	confirmDrop    bool

	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "SmartFertilizer database migration tool",
	Long: `Apply and inspect the versioned postgres schema.

By default the migrations compiled into the binary are used. Pass --path to
read them from a directory instead.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logger.New(&logger.Config{
			Level:      logLevel,
			Format:     "console",
			Output:     "stdout",
			TimeFormat: "2006-01-02 15:04:05",
		})
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		log = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.Database.Driver == "sqlite" {
			return autoMigrateSQLite(cfg)
		}
		return withMigrator(cfg, (*migration.Migrator).Up)
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back all migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPostgres((*migration.Migrator).Down)
	},
}

var stepCmd = &cobra.Command{
	Use:   "step <n>",
	Short: "Apply n migrations (negative rolls back)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid step count %q", args[0])
		}
		return runPostgres(func(m *migration.Migrator) error { return m.Steps(n) })
	},
}

var gotoCmd = &cobra.Command{
	Use:   "goto <version>",
	Short: "Migrate to a specific version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		return runPostgres(func(m *migration.Migrator) error { return m.GoTo(uint(version)) })
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPostgres(func(m *migration.Migrator) error {
			status, err := m.Status()
			if err != nil {
				return err
			}
			if !status.Applied {
				log.Info("No migrations applied")
				return nil
			}
			log.Info("Current migration version",
				zap.Uint("version", status.Version),
				zap.Bool("dirty", status.Dirty),
			)
			return nil
		})
	},
}

var forceCmd = &cobra.Command{
	Use:   "force <version>",
	Short: "Record a version without running it (clears a dirty state)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		return runPostgres(func(m *migration.Migrator) error { return m.Force(version) })
	},
}

var createCmd = &cobra.Command{
	Use:   "create <name> [description]",
	Short: "Create the next sequential migration pair",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := migrationsPath
		if dir == "" {
			dir = "migrations"
		}
		description := ""
		if len(args) > 1 {
			description = args[1]
		}
		f, err := migration.Create(dir, args[0], description, time.Now())
		if err != nil {
			return err
		}
		log.Info("Migration created",
			zap.Uint("version", f.Version),
			zap.String("up_file", f.UpPath),
			zap.String("down_file", f.DownPath),
		)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		found, err := migration.List(source().FS)
		if err != nil {
			return err
		}
		if len(found) == 0 {
			log.Info("No migrations found")
			return nil
		}
		for _, m := range found {
			rollback := ""
			if !m.HasDown {
				rollback = " (no rollback)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %06d %s%s\n", m.Version, m.Name, rollback)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&migrationsPath, "path", "", "Read migrations from this directory instead of the embedded set")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	downCmd.Flags().BoolVar(&confirmDrop, "confirm", false, "Confirm rolling back every migration")
	downCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if !confirmDrop {
			return fmt.Errorf("down removes all tables; rerun with --confirm")
		}
		return nil
	}

	rootCmd.AddCommand(upCmd, downCmd, stepCmd, gotoCmd, versionCmd, forceCmd, createCmd, listCmd)
}

func source() migration.Source {
	if migrationsPath != "" {
		return migration.Source{FS: os.DirFS(migrationsPath), Path: migrationsPath}
	}
	return migration.Source{FS: migrations.FS}
}

func runPostgres(fn func(*migration.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Database.Driver != "postgres" {
		return fmt.Errorf("versioned migrations require postgres, configured driver is %q", cfg.Database.Driver)
	}
	return withMigrator(cfg, fn)
}

func withMigrator(cfg *config.Config, fn func(*migration.Migrator) error) error {
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	m, err := migration.New(db, source(), log)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Error closing migrator", zap.Error(err))
		}
	}()
	return fn(m)
}

func autoMigrateSQLite(cfg *config.Config) error {
	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := persistence.AutoMigrate(db.DB); err != nil {
		return fmt.Errorf("failed to migrate sqlite schema: %w", err)
	}
	log.Info("SQLite schema migrated", zap.String("path", cfg.Database.Path))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

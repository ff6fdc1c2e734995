// Command bakeryimport loads the bakery CSV exports (Matlist.csv,
// Recipehead.csv, Recipeline.csv) into a SQLite or PostgreSQL database.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/bakeryimport/internal/config"
	"github.com/JonMunkholm/bakeryimport/internal/core"
	_ "github.com/JonMunkholm/bakeryimport/internal/core/tables" // Register all tables
	"github.com/JonMunkholm/bakeryimport/internal/logging"
	"github.com/JonMunkholm/bakeryimport/internal/store"
)

// app carries what every subcommand needs once the root has loaded it.
type app struct {
	cfg     *config.Config
	envFile string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if core.IsUserFacing(err) {
			fmt.Fprintln(os.Stderr, core.FormatUserError(err))
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "bakeryimport",
		Short:         "Import bakery CSV exports into a database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Environment file to load if present")

	root.AddCommand(
		newImportCmd(a),
		newServeCmd(a),
		newScriptCmd(a),
		newTablesCmd(a),
	)
	return root
}

// load reads the env file, configuration and logging setup.
func (a *app) load() error {
	// Overload lets the env file win over variables already set.
	envErr := godotenv.Overload(a.envFile)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	if envErr == nil {
		slog.Debug("loaded env file", "path", a.envFile)
	}
	slog.Debug("configuration loaded", "config", cfg.String())
	return nil
}

// storeConfig converts the database section for the store package.
func (a *app) storeConfig() store.Config {
	return store.Config{
		MaxOpenConns: a.cfg.Database.MaxOpenConns,
		BusyTimeout:  a.cfg.Database.BusyTimeout,
		ForeignKeys:  a.cfg.Database.ForeignKeys,
		PGMaxConns:   int32(a.cfg.Database.PGMaxConns),
	}
}

// newService wires the importer and session service from configuration.
func (a *app) newService() *core.Service {
	importer := core.NewImporter(store.Opener(a.storeConfig()), a.cfg.Import.StrictNumeric)
	return core.NewService(importer, a.cfg.Import.SessionRetention)
}

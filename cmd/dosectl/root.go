package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dose/internal/logging"
	"dose/internal/storage"
	"dose/pkg/dose"
)

const defaultDBPath = "dose.db"

type app struct {
	verbose   bool
	storeKind string
	dbPath    string
	logger    *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}
	root := &cobra.Command{
		Use:           "dosectl",
		Short:         "Run and inspect digital organism simulations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "info"
			if a.verbose {
				level = "debug"
			}
			logger, err := logging.New(logging.Options{Level: level})
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log per-generation detail")
	root.PersistentFlags().StringVar(&a.storeKind, "store", storage.KindSQLite, "store backend: memory or sqlite")
	root.PersistentFlags().StringVar(&a.dbPath, "db", defaultDBPath, "sqlite database path")

	root.AddCommand(
		a.newRunCmd(),
		a.newValidateCmd(),
		a.newRunsCmd(),
		a.newWorldsCmd(),
		newVersionsCmd(),
		newSimsCmd(),
	)
	return root
}

func (a *app) client() (*dose.Client, error) {
	return a.open(a.dbPath)
}

// runClient opens the database_file of the run configuration unless --db was
// given explicitly.
func (a *app) runClient(cmd *cobra.Command, databaseFile string) (*dose.Client, error) {
	path := a.dbPath
	if flag := cmd.Flag("db"); databaseFile != "" && (flag == nil || !flag.Changed) {
		path = databaseFile
	}
	return a.open(path)
}

func (a *app) open(dbPath string) (*dose.Client, error) {
	return dose.New(dose.Options{StoreKind: a.storeKind, DBPath: dbPath, Logger: a.logger})
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

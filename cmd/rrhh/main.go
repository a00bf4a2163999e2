// Command rrhh runs the batch tasks of the HR app: CSV imports, seeding and
// schema migration.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/grupocs/rrhh/internal/config"
	"github.com/grupocs/rrhh/internal/db"
	"github.com/grupocs/rrhh/internal/importer"
	"github.com/grupocs/rrhh/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// env is what every subcommand needs once connected.
type env struct {
	db     *gorm.DB
	log    *zap.Logger
	dbCfg  config.DatabaseConfig
	useSQL bool
}

type connectFunc func() (*env, error)

func main() {
	_ = godotenv.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd(connect).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func connect() (*env, error) {
	cfg := config.Load()
	log, err := logging.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		return nil, err
	}
	conn, err := db.Open(cfg.Database, log)
	if err != nil {
		return nil, err
	}
	return &env{db: conn, log: log, dbCfg: cfg.Database, useSQL: cfg.App.Migrations}, nil
}

func newRootCmd(connectFn connectFunc) *cobra.Command {
	var e *env
	root := &cobra.Command{
		Use:           "rrhh",
		Short:         "Batch tasks for the RRHH app",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			e, err = connectFn()
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e != nil {
				_ = e.log.Sync()
			}
		},
	}
	get := func() *env { return e }

	root.AddCommand(
		importCmd("import-trabajadores", "Import or complete workers from a CSV sheet", get,
			func(im *importer.Importer, ctx context.Context, r io.Reader) (importer.Result, error) {
				return im.Trabajadores(ctx, r)
			}),
		importCargosCmd(get),
		importCmd("import-cargos-trabajadores", "Assign cargos to existing workers by name", get,
			func(im *importer.Importer, ctx context.Context, r io.Reader) (importer.Result, error) {
				return im.CargosTrabajadores(ctx, r)
			}),
		importCmd("import-contratos", "Import contracts for existing workers", get,
			func(im *importer.Importer, ctx context.Context, r io.Reader) (importer.Result, error) {
				return im.Contratos(ctx, r)
			}),
		seedCmd(get),
		migrateCmd(get),
	)
	return root
}

type importFunc func(im *importer.Importer, ctx context.Context, r io.Reader) (importer.Result, error)

func importCmd(use, short string, get func() *env, fn importFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <archivo.csv>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := get()
			res, err := runImport(cmd.Context(), e, args[0], fn)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.String())
			return nil
		},
	}
}

func importCargosCmd(get func() *env) *cobra.Command {
	var realinear bool
	cmd := &cobra.Command{
		Use:   "import-cargos <archivo.csv>",
		Short: "Import the cargo catalogue keeping the sheet's ids",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := get()
			res, err := runImport(cmd.Context(), e, args[0], func(im *importer.Importer, ctx context.Context, r io.Reader) (importer.Result, error) {
				return im.Cargos(ctx, r)
			})
			if err != nil {
				return err
			}
			if realinear {
				if err := importer.New(e.db, e.log).RealinearSecuencia(cmd.Context()); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.String())
			return nil
		},
	}
	cmd.Flags().BoolVar(&realinear, "realinear-secuencia", true, "Move the cargos id sequence past the imported ids (PostgreSQL)")
	return cmd
}

func runImport(ctx context.Context, e *env, path string, fn importFunc) (importer.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return importer.Result{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	res, err := fn(importer.New(e.db, e.log), ctx, f)
	if err != nil {
		return res, fmt.Errorf("import %s: %w", path, err)
	}
	e.log.Info("import finished", zap.String("file", path), zap.Stringer("result", res))
	return res, nil
}

func seedCmd(get func() *env) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the reference catalogue (idempotent)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := get()
			if err := db.Seed(e.db.WithContext(cmd.Context())); err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "seed ok")
			return nil
		},
	}
}

func migrateCmd(get func() *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := get()
			if err := db.MigrateFor(e.db, e.dbCfg, e.useSQL); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrate ok")
			return nil
		},
	}
}

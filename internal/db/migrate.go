package db

import (
	"embed"
	"errors"
	"fmt"

	migrate "github.com/golang-migrate/migrate/v4"
	// Registers the postgres driver for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/grupocs/rrhh/internal/config"
	"github.com/grupocs/rrhh/internal/models"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// IndiceContratoVigente enforces one VIGENTE contract per worker and employer.
const IndiceContratoVigente = "ux_contratos_vigente"

// Migrate runs AutoMigrate for all models and creates the partial unique index
// that gorm tags cannot express.
func Migrate(db *gorm.DB) error {
	modelsToMigrate := []any{
		&models.Empleador{}, &models.Mutual{}, &models.EmpleadorMutual{},
		&models.AFP{}, &models.Salud{}, &models.Banco{}, &models.CajaCompensacion{},
		&models.Cargo{}, &models.Obra{}, &models.Trabajador{},
		&models.Contrato{}, &models.DocumentoLaboral{},
	}
	for _, m := range modelsToMigrate {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	stmt := fmt.Sprintf(
		"CREATE UNIQUE INDEX IF NOT EXISTS %s ON contratos (trabajador_id, empleador_id) WHERE estado_contrato = 'VIGENTE'",
		IndiceContratoVigente)
	if err := db.Exec(stmt).Error; err != nil {
		return fmt.Errorf("create %s: %w", IndiceContratoVigente, err)
	}
	return checkTables(db)
}

// MigrateSQL applies the versioned PostgreSQL migrations embedded in the binary.
func MigrateSQL(dsn string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, ToURLDSN(NormalizeDSN(dsn)))
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

func checkTables(db *gorm.DB) error {
	for _, table := range []string{"empleadores", "obras", "trabajadores", "contratos", "documentos_laborales"} {
		if !db.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}

// MigrateFor picks the schema path for the configured driver: versioned SQL
// when useSQL is set on PostgreSQL, AutoMigrate otherwise.
func MigrateFor(db *gorm.DB, cfg config.DatabaseConfig, useSQL bool) error {
	if useSQL && cfg.Driver() == "postgres" {
		if err := MigrateSQL(cfg.URL); err != nil {
			return err
		}
		return checkTables(db)
	}
	return Migrate(db)
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/grupocs/rrhh/internal/config"
	"github.com/grupocs/rrhh/internal/db"
	"github.com/grupocs/rrhh/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testEnv(t *testing.T) (*env, connectFunc) {
	t.Helper()
	cfg := config.DatabaseConfig{URL: "file:" + t.Name() + "?mode=memory&cache=shared"}
	log := zaptest.NewLogger(t)
	conn, err := db.Open(cfg, log)
	require.NoError(t, err)
	e := &env{db: conn, log: log, dbCfg: cfg}
	return e, func() (*env, error) { return e, nil }
}

func execute(t *testing.T, fn connectFunc, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(fn)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "datos.csv")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestMigrateAndSeed(t *testing.T) {
	e, fn := testEnv(t)

	out, err := execute(t, fn, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "migrate ok")

	_, err = execute(t, fn, "seed")
	require.NoError(t, err)

	var afps, again int64
	require.NoError(t, e.db.Model(&models.AFP{}).Count(&afps).Error)
	assert.Positive(t, afps)
	_, err = execute(t, fn, "seed")
	require.NoError(t, err)
	require.NoError(t, e.db.Model(&models.AFP{}).Count(&again).Error)
	assert.Equal(t, afps, again)
}

func TestImportCargosCommand(t *testing.T) {
	e, fn := testEnv(t)
	require.NoError(t, db.Migrate(e.db))

	path := writeCSV(t, "id;nombre;descripcion;categoria\n1;Jornal;;Obra gruesa\n2;Carpintero;;\n")
	out, err := execute(t, fn, "import-cargos", path)
	require.NoError(t, err)
	assert.Contains(t, out, "creados=2")

	var c models.Cargo
	require.NoError(t, e.db.First(&c, 2).Error)
	assert.Equal(t, "Carpintero", c.Nombre)
}

func TestImportTrabajadoresCommand(t *testing.T) {
	e, fn := testEnv(t)
	require.NoError(t, db.Migrate(e.db))
	require.NoError(t, e.db.Create(&models.Obra{Nombre: "Edificio Norte", Codigo: "OB-1"}).Error)

	path := writeCSV(t, "rut,nombres,ap_paterno,obra\n12.345.671-8,Ana,Pérez,edificio norte\n9.876.543-3,Luis,Soto,Otra obra\n")
	out, err := execute(t, fn, "import-trabajadores", path)
	require.NoError(t, err)
	assert.Contains(t, out, "creados=1")
	assert.Contains(t, out, "obra_desconocida=1")
}

func TestImportRequiresFile(t *testing.T) {
	e, fn := testEnv(t)
	require.NoError(t, db.Migrate(e.db))

	_, err := execute(t, fn, "import-contratos")
	assert.Error(t, err)

	_, err = execute(t, fn, "import-contratos", filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorContains(t, err, "missing.csv")
}

package db

import (
	"testing"
	"time"

	"github.com/grupocs/rrhh/internal/config"
	"github.com/grupocs/rrhh/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := config.DatabaseConfig{URL: "file:" + t.Name() + "?mode=memory&cache=shared"}
	d, err := Open(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, Migrate(d))
	return d
}

func TestSeedIdempotent(t *testing.T) {
	d := setupTestDB(t)
	require.NoError(t, Seed(d))
	require.NoError(t, Seed(d))

	cat, err := LoadCatalogo()
	require.NoError(t, err)

	var afp, salud, bancos, cajas, mutuales int64
	d.Model(&models.AFP{}).Count(&afp)
	d.Model(&models.Salud{}).Count(&salud)
	d.Model(&models.Banco{}).Count(&bancos)
	d.Model(&models.CajaCompensacion{}).Count(&cajas)
	d.Model(&models.Mutual{}).Count(&mutuales)
	assert.EqualValues(t, len(cat.AFP), afp)
	assert.EqualValues(t, len(cat.Salud), salud)
	assert.EqualValues(t, len(cat.Bancos), bancos)
	assert.EqualValues(t, len(cat.CajasCompensacion), cajas)
	assert.EqualValues(t, len(cat.Mutuales), mutuales)

	var fonasa models.Salud
	require.NoError(t, d.Where("nombre = ?", "FONASA").First(&fonasa).Error)
	assert.Equal(t, models.SaludFonasa, fonasa.Tipo)
}

func TestSeedFillsMissingBankCode(t *testing.T) {
	d := setupTestDB(t)
	require.NoError(t, d.Create(&models.Banco{Nombre: "Banco de Chile"}).Error)
	require.NoError(t, Seed(d))

	var b models.Banco
	require.NoError(t, d.Where("nombre = ?", "Banco de Chile").First(&b).Error)
	assert.Equal(t, "001", b.CodigoSBIF)

	var n int64
	d.Model(&models.Banco{}).Where("nombre = ?", "Banco de Chile").Count(&n)
	assert.EqualValues(t, 1, n)
}

func seedContrato(t *testing.T, d *gorm.DB, estado string) (models.Trabajador, models.Empleador) {
	t.Helper()
	emp := models.Empleador{RazonSocial: "Constructora Valencia"}
	require.NoError(t, d.Create(&emp).Error)
	obra := models.Obra{Nombre: "Quintero", Codigo: "Q-01", EmpleadorID: &emp.ID, Estado: models.ObraActiva}
	require.NoError(t, d.Create(&obra).Error)
	tr := models.Trabajador{RUT: "12.345.671-8", Nombres: "Ana", ApPaterno: "Pérez", ObraID: obra.ID}
	require.NoError(t, d.Create(&tr).Error)
	c := models.Contrato{TrabajadorID: tr.ID, EmpleadorID: &emp.ID, EstadoContrato: estado}
	require.NoError(t, d.Create(&c).Error)
	return tr, emp
}

func TestPartialIndexRejectsSecondVigente(t *testing.T) {
	d := setupTestDB(t)
	tr, emp := seedContrato(t, d, models.ContratoVigente)

	err := d.Create(&models.Contrato{TrabajadorID: tr.ID, EmpleadorID: &emp.ID, EstadoContrato: models.ContratoVigente}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	// TERMINADO rows are outside the index.
	err = d.Create(&models.Contrato{TrabajadorID: tr.ID, EmpleadorID: &emp.ID, EstadoContrato: models.ContratoTerminado}).Error
	assert.NoError(t, err)
}

func TestDeleteContratoCascadesDocuments(t *testing.T) {
	d := setupTestDB(t)
	tr, _ := seedContrato(t, d, models.ContratoVigente)

	var c models.Contrato
	require.NoError(t, d.Where("trabajador_id = ?", tr.ID).First(&c).Error)
	f := datatypes.Date(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	doc := models.DocumentoLaboral{ContratoID: c.ID, TipoDocumento: "CONTRATOS", NombreArchivo: "x.pdf", FechaDocumento: &f}
	require.NoError(t, d.Create(&doc).Error)

	require.NoError(t, d.Delete(&c).Error)
	var n int64
	d.Model(&models.DocumentoLaboral{}).Where("contrato_id = ?", c.ID).Count(&n)
	assert.EqualValues(t, 0, n)
}

func TestDSNHelpers(t *testing.T) {
	assert.Equal(t, "host=db user=u dbname=rrhh sslmode=disable", NormalizeDSN(`"host=db   user=u dbname=rrhh"`))
	assert.Equal(t, "postgres://u:p@db:5432/rrhh?sslmode=disable",
		ToURLDSN("host=db port=5432 user=u password=p dbname=rrhh sslmode=disable"))
	assert.Equal(t, "host=db password=*** dbname=x", MaskDSN("host=db password=secret dbname=x"))
	assert.Equal(t, "postgres://u:***@db/rrhh", MaskDSN("postgres://u:secret@db/rrhh"))
}

func TestWithForeignKeys(t *testing.T) {
	assert.Equal(t, "rrhh.db?_foreign_keys=on", withForeignKeys("rrhh.db"))
	assert.Equal(t, "file:x?mode=memory&_foreign_keys=on", withForeignKeys("file:x?mode=memory"))
}

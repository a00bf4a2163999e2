package importer

import (
	"context"
	"strings"
	"testing"

	"github.com/grupocs/rrhh/internal/config"
	"github.com/grupocs/rrhh/internal/db"
	"github.com/grupocs/rrhh/internal/models"
	"github.com/grupocs/rrhh/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := config.DatabaseConfig{URL: "file:" + t.Name() + "?mode=memory&cache=shared"}
	d, err := db.Open(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(d))
	require.NoError(t, db.Seed(d))
	return d
}

func seedObra(t *testing.T, d *gorm.DB, nombre, codigo string) models.Obra {
	t.Helper()
	o := models.Obra{Nombre: nombre, Codigo: codigo}
	require.NoError(t, d.Create(&o).Error)
	return o
}

func TestNormalizarEncabezado(t *testing.T) {
	cases := map[string]string{
		"Ap. Paterno":          "ap_paterno",
		"Correo electrónico":   "correo_electronico",
		"Dirección Trabajador": "direccion_trabajador",
		"  RUT ":               "rut",
		"FECHA_INICIO":         "fecha_inicio",
		"Fecha Término":        "fecha_termino",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizarEncabezado(in), in)
	}
}

func TestLeerCSVSniffsDelimiterAndBOM(t *testing.T) {
	filas, err := leerCSV(strings.NewReader("\ufeffRUT;Nombres\n1-9;Ana\n;\n"))
	require.NoError(t, err)
	require.Len(t, filas, 1)
	assert.Equal(t, "1-9", filas[0].get("rut"))
	assert.Equal(t, "Ana", filas[0].get("nombres"))

	filas, err = leerCSV(strings.NewReader("id,nombre\n7,Jornal\n"))
	require.NoError(t, err)
	require.Len(t, filas, 1)
	assert.Equal(t, "Jornal", filas[0].get("nombre"))
}

func TestParsers(t *testing.T) {
	for _, s := range []string{"01-03-2024", "2024-03-01", "01/03/2024"} {
		d, ok := parseFecha(s)
		require.True(t, ok, s)
		assert.Equal(t, "2024-03-01", models.FormatoFecha(d, ""))
	}
	d, ok := parseFecha("31-31-2024")
	assert.False(t, ok)
	assert.Nil(t, d)

	m, ok := parseMonto("$ 450.000,50")
	require.True(t, ok)
	assert.InDelta(t, 450000.5, *m, 0.001)
	_, ok = parseMonto("abc")
	assert.False(t, ok)

	n, ok := parseEntero("1.200")
	require.True(t, ok)
	assert.Equal(t, 1200, *n)

	assert.Equal(t, "F", normalizarSexo("femenino"))
	assert.Equal(t, "", normalizarSexo("x"))
}

const csvTrabajadores = `RUT;Nombres;Ap. Paterno;Ap. Materno;Obra;Sexo;Vigencia mes;Fecha Nacimiento;Banco;Correo electrónico
12.345.671-8;Ana María;Pérez;Soto;edificio norte;Femenino;SI;15-04-1990;Banco Inexistente;ana@example.com
9.876.543-2;Luis;Rojas;Vega;Obra Fantasma;M;SI;;;
7.654.321-K;;;;Edificio Norte;;;;;
5.555.555-5;Pedro;Díaz;Mora;;M;NO;1985-02-30;;
`

func TestImportTrabajadores(t *testing.T) {
	d := setupTestDB(t)
	obra := seedObra(t, d, "Edificio Norte", "OB-1")
	core, logs := observer.New(zap.InfoLevel)
	im := New(d, zap.New(core))

	res, err := im.Trabajadores(context.Background(), strings.NewReader(csvTrabajadores))
	require.NoError(t, err)
	assert.Equal(t, 4, res.Filas)
	assert.Equal(t, 1, res.Creados)
	assert.Equal(t, 3, res.Saltados)
	assert.Equal(t, 1, res.Motivos["obra_desconocida"])
	assert.Equal(t, 1, res.Motivos["sin_nombre"])
	assert.Equal(t, 1, res.Motivos["sin_obra"])

	var ana models.Trabajador
	require.NoError(t, d.Where("rut = ?", "12.345.671-8").First(&ana).Error)
	assert.Equal(t, obra.ID, ana.ObraID)
	assert.Equal(t, "F", ana.Sexo)
	assert.Equal(t, "8", ana.DV)
	assert.Equal(t, models.TrabajadorVigente, ana.EstadoTrabajador)
	assert.Equal(t, "1990-04-15", models.FormatoFecha(ana.FechaNacimiento, ""))
	assert.Nil(t, ana.BancoID)

	assert.Equal(t, 1, logs.FilterMessage("banco no encontrado").Len())
	assert.Equal(t, 3, logs.FilterMessage(Saltado).Len())
	assert.Equal(t, 1, logs.FilterMessage(Creado).Len())
}

func TestImportTrabajadoresFillOnly(t *testing.T) {
	d := setupTestDB(t)
	obra := seedObra(t, d, "Edificio Norte", "OB-1")
	existing := models.Trabajador{RUT: "12.345.671-8", Nombres: "Ana", ApPaterno: "Pérez", ObraID: obra.ID, Correo: "old@example.com"}
	require.NoError(t, d.Create(&existing).Error)

	csv := "rut,nombres,ap_materno,correo,banco\n12.345.671-8,Otra,Soto,new@example.com,Banco de Chile\n"
	res, err := New(d, zaptest.NewLogger(t)).Trabajadores(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Actualizados)

	var got models.Trabajador
	require.NoError(t, d.Preload("Banco").First(&got, existing.ID).Error)
	assert.Equal(t, "Ana", got.Nombres)
	assert.Equal(t, "Soto", got.ApMaterno)
	assert.Equal(t, "old@example.com", got.Correo)
	require.NotNil(t, got.Banco)
	assert.Equal(t, "Banco de Chile", got.Banco.Nombre)
}

func TestImportCargos(t *testing.T) {
	d := setupTestDB(t)
	require.NoError(t, d.Create(&models.Cargo{ID: 3, Nombre: "Jornal", Categoria: "Obra gruesa"}).Error)

	csv := "id,nombre,descripcion,categoria\n3,Peón,Apoyo general,Terminaciones\n12,Carpintero,,\nx,Malo,,\n13,,,\n"
	res, err := New(d, zaptest.NewLogger(t)).Cargos(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Creados)
	assert.Equal(t, 1, res.Actualizados)
	assert.Equal(t, 1, res.Motivos["id_invalido"])
	assert.Equal(t, 1, res.Motivos["sin_nombre"])

	var c models.Cargo
	require.NoError(t, d.First(&c, 3).Error)
	assert.Equal(t, "Jornal", c.Nombre)
	assert.Equal(t, "Apoyo general", c.Descripcion)
	assert.Equal(t, "Obra gruesa", c.Categoria)

	var carpintero models.Cargo
	require.NoError(t, d.First(&carpintero, 12).Error)
	assert.Equal(t, "Carpintero", carpintero.Nombre)
	require.NoError(t, New(d, nil).RealinearSecuencia(context.Background()))
}

func TestImportCargosTrabajadores(t *testing.T) {
	d := setupTestDB(t)
	obra := seedObra(t, d, "Edificio Norte", "OB-1")
	maestro := models.Cargo{ID: 1, Nombre: "Maestro Primera"}
	jornal := models.Cargo{ID: 2, Nombre: "Jornal"}
	require.NoError(t, d.Create(&maestro).Error)
	require.NoError(t, d.Create(&jornal).Error)
	libre := models.Trabajador{RUT: "1-9", Nombres: "A", ApPaterno: "B", ObraID: obra.ID}
	ocupado := models.Trabajador{RUT: "2-7", Nombres: "C", ApPaterno: "D", ObraID: obra.ID, CargoID: &jornal.ID}
	require.NoError(t, d.Create(&libre).Error)
	require.NoError(t, d.Create(&ocupado).Error)

	csv := "rut,cargo\n1-9,maestro primera\n2-7,Maestro Primera\n3-5,Jornal\n1-9,\n"
	res, err := New(d, zaptest.NewLogger(t)).CargosTrabajadores(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Actualizados)
	assert.Equal(t, 1, res.Motivos["cargo_distinto"])
	assert.Equal(t, 1, res.Motivos["trabajador_no_encontrado"])
	assert.Equal(t, 1, res.Motivos["sin_cargo"])

	require.NoError(t, d.First(&libre, libre.ID).Error)
	require.NotNil(t, libre.CargoID)
	assert.Equal(t, maestro.ID, *libre.CargoID)
	require.NoError(t, d.First(&ocupado, ocupado.ID).Error)
	assert.Equal(t, jornal.ID, *ocupado.CargoID)
}

func TestImportContratos(t *testing.T) {
	d := setupTestDB(t)
	obra := seedObra(t, d, "Edificio Norte", "OB-1")
	emp := models.Empleador{RazonSocial: "Constructora Andes SpA"}
	require.NoError(t, d.Create(&emp).Error)
	require.NoError(t, d.Create(&models.Cargo{ID: 1, Nombre: "Jornal"}).Error)
	tr := models.Trabajador{RUT: "12.345.671-8", Nombres: "Ana", ApPaterno: "Pérez", ObraID: obra.ID}
	require.NoError(t, d.Create(&tr).Error)

	csv := `RUT;OBRA;EMPLEADOR;CARGO;TIPO_CONTRATO;FECHA_INICIO;SUELDO_BASE;HORAS_SEMANALES
12.345.671-8;Edificio Norte;constructora andes spa;Jornal;indefinido;01-03-2024;550.000;44
12.345.671-8;Edificio Norte;Constructora Andes SpA;Jornal;PLAZO_FIJO;01-06-2024;;
12.345.671-8;Edificio Norte;Constructora Andes SpA;Jornal;INDEFINIDO;01-03-2024;;45
12.345.671-8;Edificio Norte;Otra SpA;Jornal;INDEFINIDO;01-03-2024;;
`
	res, err := New(d, zaptest.NewLogger(t)).Contratos(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Creados)
	assert.Equal(t, 1, res.Actualizados)
	assert.Equal(t, 1, res.Motivos["vigente_existente"])
	assert.Equal(t, 1, res.Motivos["empleador_no_encontrado"])

	var cs []models.Contrato
	require.NoError(t, d.Find(&cs).Error)
	require.Len(t, cs, 1)
	assert.Equal(t, "INDEFINIDO", cs[0].TipoContrato)
	require.NotNil(t, cs[0].SueldoBase)
	assert.InDelta(t, 550000, *cs[0].SueldoBase, 0.001)
	require.NotNil(t, cs[0].HorasSemanales)
	assert.Equal(t, 44, *cs[0].HorasSemanales)
}

func TestImportRollsBackOnContextCancel(t *testing.T) {
	d := setupTestDB(t)
	seedObra(t, d, "Edificio Norte", "OB-1")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(d, zaptest.NewLogger(t)).Trabajadores(ctx, strings.NewReader(csvTrabajadores))
	require.Error(t, err)
	var n int64
	d.Model(&models.Trabajador{}).Count(&n)
	assert.Zero(t, n)
}

func TestImportedTrabajadorCanBeEdited(t *testing.T) {
	d := setupTestDB(t)
	seedObra(t, d, "Edificio Norte", "OB-1")
	jornal := models.Cargo{ID: 5, Nombre: "Jornal"}
	require.NoError(t, d.Create(&jornal).Error)

	csv := "rut,dv,nombres,ap_paterno,ap_materno,obra\n5123456,7,Luis,Soto,Rojas,EDIFICIO NORTE\n"
	res, err := New(d, zaptest.NewLogger(t)).Trabajadores(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, 1, res.Creados, res.String())

	svc := services.NewTrabajadorService(d)
	var imported models.Trabajador
	require.NoError(t, d.Where("rut = ?", "5123456").First(&imported).Error)
	tr, err := svc.Get(context.Background(), imported.ID)
	require.NoError(t, err)
	tr.CargoID, tr.Cargo = &jornal.ID, nil
	tr.Telefono = "+56 9 1234 5678"
	require.NoError(t, svc.Update(context.Background(), tr))

	var got models.Trabajador
	require.NoError(t, d.First(&got, imported.ID).Error)
	assert.Equal(t, "+56 9 1234 5678", got.Telefono)
	assert.Equal(t, "7", got.DV)
	assert.Equal(t, "5123456", got.RUT)
}

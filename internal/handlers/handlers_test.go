package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/grupocs/rrhh/internal/config"
	"github.com/grupocs/rrhh/internal/db"
	"github.com/grupocs/rrhh/internal/docs"
	"github.com/grupocs/rrhh/internal/models"
	"github.com/grupocs/rrhh/internal/services"
	"github.com/grupocs/rrhh/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type testEnv struct {
	db         *gorm.DB
	mux        *http.ServeMux
	trabajador models.Trabajador
	empleador  models.Empleador
	obra       models.Obra
	cargo      models.Cargo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := zaptest.NewLogger(t)
	d, err := db.Open(config.DatabaseConfig{URL: "file:" + t.Name() + "?mode=memory&cache=shared"}, log)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(d))

	e := &testEnv{db: d, mux: http.NewServeMux()}
	e.empleador = models.Empleador{RazonSocial: "Constructora Andes SpA"}
	require.NoError(t, d.Create(&e.empleador).Error)
	e.obra = models.Obra{Nombre: "Edificio Norte", Codigo: "OB-1", EmpleadorID: &e.empleador.ID, Estado: models.ObraActiva}
	require.NoError(t, d.Create(&e.obra).Error)
	e.cargo = models.Cargo{ID: 4, Nombre: "Maestro"}
	require.NoError(t, d.Create(&e.cargo).Error)
	e.trabajador = models.Trabajador{
		RUT: "12.345.671-8", Nombres: "Ana María", ApPaterno: "Pérez", ApMaterno: "Muñoz",
		ObraID: e.obra.ID, CargoID: &e.cargo.ID, EstadoTrabajador: models.TrabajadorVigente,
	}
	require.NoError(t, d.Create(&e.trabajador).Error)

	flash := session.NewFlashes("test")
	locator := docs.NewLocator("/srv/DOCUMENTACION LABORAL", config.DefaultBasePathTmpl)
	cs := services.NewContratoService(d)
	ts := services.NewTrabajadorService(d)
	cat := services.NewCatalogoService(d)
	ch := NewContratoHandler(cs, ts, cat, flash, log)
	dh := NewDocumentoHandler(services.NewDocumentoService(d, locator), cs, flash, log)

	e.mux.HandleFunc("GET /contratos/nuevo", ch.New)
	e.mux.HandleFunc("POST /contratos/nuevo", ch.Create)
	e.mux.HandleFunc("GET /contratos/{id}", ch.View)
	e.mux.HandleFunc("GET /documentos/contrato/{id}", dh.List)
	e.mux.HandleFunc("POST /documentos/contrato/{id}/nuevo", dh.Create)
	return e
}

func (e *testEnv) post(target string, v url.Values, accept string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(v.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	w := httptest.NewRecorder()
	e.mux.ServeHTTP(w, req)
	return w
}

func (e *testEnv) contratoForm() url.Values {
	return url.Values{
		"trabajador_id": {fmt.Sprint(e.trabajador.ID)},
		"empleador_id":  {fmt.Sprint(e.empleador.ID)},
		"obra_id":       {fmt.Sprint(e.obra.ID)},
		"cargo_id":      {fmt.Sprint(e.cargo.ID)},
		"tipo_contrato": {"indefinido"},
		"fecha_inicio":  {"01-03-2024"},
		"sueldo_base":   {"650000,5"},
	}
}

func TestContratoCreateRedirectsToTrabajador(t *testing.T) {
	e := newTestEnv(t)

	w := e.post("/contratos/nuevo", e.contratoForm(), "")
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	assert.Equal(t, fmt.Sprintf("/trabajadores/%d", e.trabajador.ID), w.Header().Get("Location"))

	var c models.Contrato
	require.NoError(t, e.db.Where("trabajador_id = ?", e.trabajador.ID).First(&c).Error)
	assert.Equal(t, "INDEFINIDO", c.TipoContrato)
	assert.Equal(t, models.ContratoVigente, c.EstadoContrato)
	require.NotNil(t, c.SueldoBase)
	assert.InDelta(t, 650000.5, *c.SueldoBase, 0.001)
	assert.Equal(t, "2024-03-01", models.FormatoFecha(c.FechaInicio, ""))
}

func TestContratoSecondVigenteConflicts(t *testing.T) {
	e := newTestEnv(t)
	require.Equal(t, http.StatusSeeOther, e.post("/contratos/nuevo", e.contratoForm(), "").Code)

	w := e.post("/contratos/nuevo", e.contratoForm(), "application/json")
	assert.Equal(t, http.StatusConflict, w.Code)
	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "El trabajador ya tiene un contrato vigente con este empleador.", body["error"])

	var n int64
	require.NoError(t, e.db.Model(&models.Contrato{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestContratoFormRerendersOnValidation(t *testing.T) {
	e := newTestEnv(t)
	v := e.contratoForm()
	v.Del("tipo_contrato")

	w := e.post("/contratos/nuevo", v, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Debes indicar el tipo de contrato.")
}

func TestContratoNewPrefillsFromTrabajador(t *testing.T) {
	e := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/contratos/nuevo?trabajador_id=%d", e.trabajador.ID), nil)
	w := httptest.NewRecorder()
	e.mux.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, fmt.Sprintf(`<option value="%d" selected>Edificio Norte</option>`, e.obra.ID))
	assert.Contains(t, body, fmt.Sprintf(`<option value="%d" selected>Constructora Andes SpA</option>`, e.empleador.ID))

	req = httptest.NewRequest(http.MethodGet, "/contratos/nuevo", nil)
	w = httptest.NewRecorder()
	e.mux.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDocumentoCreateJSON(t *testing.T) {
	e := newTestEnv(t)
	require.Equal(t, http.StatusSeeOther, e.post("/contratos/nuevo", e.contratoForm(), "").Code)
	var c models.Contrato
	require.NoError(t, e.db.First(&c).Error)

	target := fmt.Sprintf("/documentos/contrato/%d/nuevo", c.ID)
	w := e.post(target, url.Values{"tipo_documento": {"anexos"}, "fecha_documento": {"2024-06-15"}}, "application/json")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var doc struct {
		NombreArchivo string `json:"nombre_archivo"`
		Carpeta       string `json:"carpeta"`
		RutaServidor  string `json:"ruta_servidor"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&doc))
	assert.Equal(t, "ANEXOS_MUNOZ_2024-06-15.pdf", doc.NombreArchivo)
	assert.True(t, strings.HasSuffix(doc.Carpeta, "/12345671-8_PEREZ_MUNOZ_ANA_MARIA/ANEXOS"), doc.Carpeta)
	assert.True(t, strings.HasPrefix(doc.RutaServidor, "/srv/DOCUMENTACION LABORAL/EMPLEADORES/"), doc.RutaServidor)

	w = e.post(target, url.Values{"tipo_documento": {"OTRO"}}, "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.post("/documentos/contrato/999/nuevo", url.Values{"tipo_documento": {"ANEXOS"}}, "application/json")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFormParsers(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(url.Values{
		"monto":  {" 1.234,5 "},
		"coma":   {"12,75"},
		"fecha1": {"15-04-1990"},
		"fecha2": {"15/04/1990"},
		"fecha3": {"1990-02-30"},
		"id":     {"0"},
		"flag":   {"on"},
	}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	assert.Nil(t, formDecimal(req, "monto"))
	require.NotNil(t, formDecimal(req, "coma"))
	assert.InDelta(t, 12.75, *formDecimal(req, "coma"), 0.0001)
	assert.Equal(t, "1990-04-15", models.FormatoFecha(formFecha(req, "fecha1"), ""))
	assert.Equal(t, "1990-04-15", models.FormatoFecha(formFecha(req, "fecha2"), ""))
	assert.Nil(t, formFecha(req, "fecha3"))
	assert.Nil(t, formUint(req, "id"))
	assert.True(t, formBool(req, "flag"))
	assert.False(t, formBool(req, "missing"))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusConflict, statusFor(services.ErrRUTDuplicado))
	assert.Equal(t, http.StatusConflict, statusFor(fmt.Errorf("wrap: %w", services.ErrContratoVigente)))
	assert.Equal(t, http.StatusNotFound, statusFor(services.ErrNotFound))
	assert.Equal(t, http.StatusBadRequest, statusFor(&services.ValidationError{Message: "x"}))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
	assert.Equal(t, "x", mensajeError(&services.ValidationError{Message: "x"}))
}

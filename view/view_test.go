package view

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/grupocs/rrhh/i18n"
	"github.com/grupocs/rrhh/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatMonto(t *testing.T) {
	v := 1234567.4
	assert.Equal(t, "$1.234.567", formatMonto(&v))
	small := 950.0
	assert.Equal(t, "$950", formatMonto(&small))
	assert.Equal(t, "", formatMonto(nil))

	neg := -123.0
	assert.Equal(t, "-$123", formatMonto(&neg))
	big := -1234567.6
	assert.Equal(t, "-$1.234.568", formatMonto(&big))
	tiny := -0.2
	assert.Equal(t, "$0", formatMonto(&tiny))
}

func TestPageURLKeepsFilters(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/contratos/?estado=VIGENTE&page=1", nil)
	assert.Equal(t, "/contratos/?estado=VIGENTE&page=3", string(pageURL(r, 3)))
}

func TestRenderStatusUsesLayoutAndLanguage(t *testing.T) {
	ResetForTests()
	r := httptest.NewRequest(http.MethodGet, "/obras/", nil)
	r = r.WithContext(i18n.WithLang(r.Context(), "en"))
	w := httptest.NewRecorder()

	err := RenderStatus(w, r, http.StatusUnprocessableEntity, "obras/lista.html", map[string]any{
		"Obras": []models.Obra{{ID: 1, Nombre: "Edificio Norte", Codigo: "OB-1", Estado: models.ObraActiva}},
		"Filtro": struct {
			Q           string
			Estado      string
			EmpleadorID uint
		}{},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "<title>Job sites | RRHH</title>")
	assert.Contains(t, body, "Edificio Norte")
	assert.Contains(t, body, `lang="en"`)
}

func TestRenderMissingTemplate(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	assert.Error(t, RenderStatus(w, r, http.StatusOK, "no-such.html", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

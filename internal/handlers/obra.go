package handlers

import (
	"net/http"
	"strings"

	"github.com/grupocs/rrhh/httpx"
	"github.com/grupocs/rrhh/internal/models"
	"github.com/grupocs/rrhh/internal/services"
	"github.com/grupocs/rrhh/session"
	"go.uber.org/zap"
)

type ObraHandler struct {
	base
	obras       *services.ObraService
	empleadores *services.EmpleadorService
}

func NewObraHandler(obras *services.ObraService, es *services.EmpleadorService, flash *session.Flashes, log *zap.Logger) *ObraHandler {
	return &ObraHandler{base: base{flash: flash, log: log}, obras: obras, empleadores: es}
}

func (h *ObraHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := services.ObraFiltro{
		Estado:      strings.ToUpper(strings.TrimSpace(q.Get("estado"))),
		EmpleadorID: queryUint(r, "empleador_id"),
		Q:           q.Get("q"),
	}
	list, err := h.obras.List(r.Context(), f)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, list)
		return
	}
	emps, err := h.empleadores.List(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "obras/lista.html", map[string]any{
		"Obras":       list,
		"Filtro":      f,
		"Empleadores": emps,
	})
}

func (h *ObraHandler) New(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, &models.Obra{Estado: models.ObraActiva}, nil, "")
}

func (h *ObraHandler) Create(w http.ResponseWriter, r *http.Request) {
	o := &models.Obra{
		Nombre:      formString(r, "nombre"),
		Codigo:      formString(r, "codigo"),
		CentroCosto: formString(r, "centro_costo"),
		Comuna:      formString(r, "comuna"),
		EmpleadorID: formUint(r, "empleador_id"),
		Estado:      strings.ToUpper(formString(r, "estado")),
		FechaInicio: formFecha(r, "fecha_inicio"),
		FechaCierre: formFecha(r, "fecha_cierre"),
	}
	if err := h.obras.Create(r.Context(), o); err != nil {
		h.renderForm(w, r, statusFor(err), o, violaciones(err), mensajeError(err))
		return
	}
	h.redirect(w, r, "/obras/", "Obra creada correctamente.")
}

func (h *ObraHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, o *models.Obra, errs map[string]string, msg string) {
	if httpx.WantsJSON(r) && status >= 400 {
		httpx.JSONError(w, status, msg, errs)
		return
	}
	emps, err := h.empleadores.List(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, status, "obras/form.html", map[string]any{
		"Obra":        o,
		"Empleadores": emps,
		"Errors":      errs,
		"Error":       msg,
	})
}

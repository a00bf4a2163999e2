package handlers

import (
	"net/http"

	"github.com/grupocs/rrhh/httpx"
	"github.com/grupocs/rrhh/internal/models"
	"github.com/grupocs/rrhh/internal/services"
	"github.com/grupocs/rrhh/session"
	"go.uber.org/zap"
)

type EmpleadorHandler struct {
	base
	empleadores *services.EmpleadorService
	catalogo    *services.CatalogoService
}

func NewEmpleadorHandler(es *services.EmpleadorService, cat *services.CatalogoService, flash *session.Flashes, log *zap.Logger) *EmpleadorHandler {
	return &EmpleadorHandler{base: base{flash: flash, log: log}, empleadores: es, catalogo: cat}
}

// empleadorFila is one row of the employer listing.
type empleadorFila struct {
	models.Empleador
	Mutual string `json:"mutual,omitempty"`
}

func (h *EmpleadorHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.empleadores.List(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	filas := make([]empleadorFila, len(list))
	for i, e := range list {
		filas[i] = empleadorFila{Empleador: e, Mutual: services.MutualVigente(e)}
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, filas)
		return
	}
	h.render(w, r, http.StatusOK, "empleadores/lista.html", map[string]any{"Empleadores": filas})
}

// View shows an employer with its job sites and current mutual.
func (h *EmpleadorHandler) View(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.notFound(w, r)
		return
	}
	e, err := h.empleadores.Get(r.Context(), id)
	if services.IsNotFound(err) {
		h.notFound(w, r)
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	fila := empleadorFila{Empleador: *e, Mutual: services.MutualVigente(*e)}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, fila)
		return
	}
	h.render(w, r, http.StatusOK, "empleadores/detalle.html", map[string]any{"Empleador": fila})
}

func (h *EmpleadorHandler) New(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, &models.Empleador{}, 0, nil, "")
}

func (h *EmpleadorHandler) Create(w http.ResponseWriter, r *http.Request) {
	e := &models.Empleador{
		RazonSocial: formString(r, "razon_social"),
		RUT:         formString(r, "rut"),
		Giro:        formString(r, "giro"),
		Direccion:   formString(r, "direccion"),
		Comuna:      formString(r, "comuna"),
	}
	mutualID := formUintValue(r, "mutual_id")
	if err := h.empleadores.Create(r.Context(), e, mutualID); err != nil {
		h.renderForm(w, r, statusFor(err), e, mutualID, violaciones(err), mensajeError(err))
		return
	}
	h.redirect(w, r, "/empleadores/", "Empleador creado correctamente.")
}

func (h *EmpleadorHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, e *models.Empleador, mutualID uint, errs map[string]string, msg string) {
	if httpx.WantsJSON(r) && status >= 400 {
		httpx.JSONError(w, status, msg, errs)
		return
	}
	opts, err := h.catalogo.Opciones(r.Context(), false)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, status, "empleadores/form.html", map[string]any{
		"Empleador": e,
		"MutualID":  mutualID,
		"Mutuales":  opts.Mutuales,
		"Errors":    errs,
		"Error":     msg,
	})
}

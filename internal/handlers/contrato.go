package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/grupocs/rrhh/httpx"
	"github.com/grupocs/rrhh/internal/models"
	"github.com/grupocs/rrhh/internal/services"
	"github.com/grupocs/rrhh/session"
	"go.uber.org/zap"
)

type ContratoHandler struct {
	base
	contratos    *services.ContratoService
	trabajadores *services.TrabajadorService
	catalogo     *services.CatalogoService
}

func NewContratoHandler(cs *services.ContratoService, ts *services.TrabajadorService, cat *services.CatalogoService,
	flash *session.Flashes, log *zap.Logger) *ContratoHandler {
	return &ContratoHandler{base: base{flash: flash, log: log}, contratos: cs, trabajadores: ts, catalogo: cat}
}

func (h *ContratoHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := services.ContratoFiltro{
		TrabajadorID: queryUint(r, "trabajador_id"),
		EmpleadorID:  queryUint(r, "empleador_id"),
		ObraID:       queryUint(r, "obra_id"),
		Estado:       strings.ToUpper(strings.TrimSpace(q.Get("estado"))),
		Q:            q.Get("q"),
	}
	list, err := h.contratos.List(r.Context(), f)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, list)
		return
	}
	opts, err := h.catalogo.Opciones(r.Context(), false)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "contratos/lista.html", map[string]any{
		"Contratos": list,
		"Filtro":    f,
		"Opciones":  opts,
		"Estados":   models.EstadosContrato,
	})
}

// New shows the contract form for ?trabajador_id=, defaulting obra and
// employer to the worker's current job site.
func (h *ContratoHandler) New(w http.ResponseWriter, r *http.Request) {
	t, ok := h.trabajador(w, r, queryUint(r, "trabajador_id"))
	if !ok {
		return
	}
	c := &models.Contrato{TrabajadorID: t.ID, EstadoContrato: models.ContratoVigente, CargoID: t.CargoID}
	if t.ObraID != 0 {
		obraID := t.ObraID
		c.ObraID = &obraID
		if t.Obra != nil {
			c.EmpleadorID = t.Obra.EmpleadorID
		}
	}
	h.renderForm(w, r, http.StatusOK, t, c, nil, "")
}

func (h *ContratoHandler) Create(w http.ResponseWriter, r *http.Request) {
	trabajadorID := formUintValue(r, "trabajador_id")
	if trabajadorID == 0 {
		trabajadorID = queryUint(r, "trabajador_id")
	}
	t, ok := h.trabajador(w, r, trabajadorID)
	if !ok {
		return
	}
	c := &models.Contrato{
		TrabajadorID:           t.ID,
		EmpleadorID:            formUint(r, "empleador_id"),
		ObraID:                 formUint(r, "obra_id"),
		CargoID:                formUint(r, "cargo_id"),
		TipoContrato:           strings.ToUpper(formString(r, "tipo_contrato")),
		FechaInicio:            formFecha(r, "fecha_inicio"),
		FechaTermino:           formFecha(r, "fecha_termino"),
		Jornada:                formString(r, "jornada"),
		HorasSemanales:         formInt(r, "horas_semanales"),
		SueldoBase:             formDecimal(r, "sueldo_base"),
		AsignacionMovilizacion: formDecimal(r, "asignacion_movilizacion"),
		AsignacionColacion:     formDecimal(r, "asignacion_colacion"),
		AsignacionHerramientas: formDecimal(r, "asignacion_herramientas"),
		EstadoContrato:         strings.ToUpper(formString(r, "estado_contrato")),
		CausalTermino:          formString(r, "causal_termino"),
		FechaFiniquito:         formFecha(r, "fecha_finiquito"),
	}
	if err := h.contratos.Create(r.Context(), c); err != nil {
		h.renderForm(w, r, statusFor(err), t, c, violaciones(err), mensajeError(err))
		return
	}
	h.log.Info("contrato creado", zap.Uint("id", c.ID), zap.Uint("trabajador_id", t.ID))
	h.redirect(w, r, "/trabajadores/"+strconv.FormatUint(uint64(t.ID), 10), "Contrato creado correctamente.")
}

func (h *ContratoHandler) View(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		h.notFound(w, r)
		return
	}
	c, err := h.contratos.Get(r.Context(), id)
	if services.IsNotFound(err) {
		h.notFound(w, r)
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, c)
		return
	}
	h.render(w, r, http.StatusOK, "contratos/detalle.html", map[string]any{"Contrato": c})
}

func (h *ContratoHandler) trabajador(w http.ResponseWriter, r *http.Request, id uint) (*models.Trabajador, bool) {
	if id == 0 {
		h.notFound(w, r)
		return nil, false
	}
	t, err := h.trabajadores.Get(r.Context(), id)
	if services.IsNotFound(err) {
		h.notFound(w, r)
		return nil, false
	}
	if err != nil {
		h.serverError(w, r, err)
		return nil, false
	}
	return t, true
}

func (h *ContratoHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, t *models.Trabajador, c *models.Contrato, errs map[string]string, msg string) {
	if httpx.WantsJSON(r) && status >= 400 {
		httpx.JSONError(w, status, msg, errs)
		return
	}
	opts, err := h.catalogo.Opciones(r.Context(), false)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, status, "contratos/form.html", map[string]any{
		"Trabajador": t,
		"Contrato":   c,
		"Opciones":   opts,
		"Errors":     errs,
		"Error":      msg,
		"Estados":    models.EstadosContrato,
		"Tipos":      models.TiposContrato,
	})
}

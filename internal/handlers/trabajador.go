package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/grupocs/rrhh/httpx"
	"github.com/grupocs/rrhh/internal/docs"
	"github.com/grupocs/rrhh/internal/models"
	"github.com/grupocs/rrhh/internal/services"
	"github.com/grupocs/rrhh/session"
	"go.uber.org/zap"
)

type TrabajadorHandler struct {
	base
	trabajadores *services.TrabajadorService
	obras        *services.ObraService
	catalogo     *services.CatalogoService
	locator      docs.Locator
}

func NewTrabajadorHandler(ts *services.TrabajadorService, obras *services.ObraService, cs *services.CatalogoService,
	locator docs.Locator, flash *session.Flashes, log *zap.Logger) *TrabajadorHandler {
	return &TrabajadorHandler{
		base:         base{flash: flash, log: log},
		trabajadores: ts,
		obras:        obras,
		catalogo:     cs,
		locator:      locator,
	}
}

// List is the home page: workers with filters and pagination.
func (h *TrabajadorHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	f := services.TrabajadorFiltro{
		Q:           q.Get("q"),
		ObraID:      queryUint(r, "obra_id"),
		Obra:        strings.TrimSpace(q.Get("obra")),
		CargoID:     queryUint(r, "cargo_id"),
		EmpleadorID: queryUint(r, "empleador_id"),
		Estado:      strings.ToUpper(strings.TrimSpace(q.Get("estado"))),
		Page:        page,
	}
	res, err := h.trabajadores.List(r.Context(), f)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, httpx.Page{
			Items: res.Items, Total: res.Total, Page: res.Page, PerPage: res.PerPage, TotalPages: res.TotalPages,
		})
		return
	}
	opts, err := h.catalogo.Opciones(r.Context(), false)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "index.html", map[string]any{
		"Pagina":   res,
		"Filtro":   f,
		"Opciones": opts,
		"Estados":  models.EstadosTrabajador,
	})
}

// New shows the registration form. Without an active job site there is
// nothing to assign the worker to, so the user is sent to the job sites page.
func (h *TrabajadorHandler) New(w http.ResponseWriter, r *http.Request) {
	activas, err := h.obras.Activas(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if len(activas) == 0 {
		h.redirectError(w, r, "/obras/", "Primero debes crear una obra activa.")
		return
	}
	h.renderForm(w, r, http.StatusOK, &models.Trabajador{}, nil, "")
}

func (h *TrabajadorHandler) Create(w http.ResponseWriter, r *http.Request) {
	t := &models.Trabajador{}
	bindTrabajador(r, t)
	if err := h.trabajadores.Create(r.Context(), t); err != nil {
		h.renderForm(w, r, statusFor(err), t, violaciones(err), mensajeError(err))
		return
	}
	h.log.Info("trabajador creado", zap.Uint("id", t.ID), zap.String("rut", t.RUT))
	h.redirect(w, r, "/trabajadores/"+strconv.FormatUint(uint64(t.ID), 10), "Trabajador creado correctamente.")
}

func (h *TrabajadorHandler) View(w http.ResponseWriter, r *http.Request) {
	t, ok := h.load(w, r)
	if !ok {
		return
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, t)
		return
	}
	h.render(w, r, http.StatusOK, "trabajadores/detalle.html", map[string]any{
		"Trabajador":         t,
		"EmpleadorPreferido": t.EmpleadorPreferido(),
		"Carpeta":            h.locator.CarpetaTrabajador(t),
	})
}

func (h *TrabajadorHandler) Edit(w http.ResponseWriter, r *http.Request) {
	t, ok := h.load(w, r)
	if !ok {
		return
	}
	h.renderForm(w, r, http.StatusOK, t, nil, "")
}

func (h *TrabajadorHandler) Update(w http.ResponseWriter, r *http.Request) {
	t, ok := h.load(w, r)
	if !ok {
		return
	}
	bindTrabajador(r, t)
	if err := h.trabajadores.Update(r.Context(), t); err != nil {
		h.renderForm(w, r, statusFor(err), t, violaciones(err), mensajeError(err))
		return
	}
	h.redirect(w, r, "/trabajadores/"+strconv.FormatUint(uint64(t.ID), 10), "Trabajador actualizado correctamente.")
}

// carpetaInfo is the JSON answer of the folder endpoint.
type carpetaInfo struct {
	TrabajadorID uint                 `json:"trabajador_id"`
	Empleador    string               `json:"empleador"`
	Carpeta      string               `json:"carpeta"`
	RutaServidor string               `json:"ruta_servidor"`
	Tipos        []carpetaTipoDetalle `json:"tipos"`
}

type carpetaTipoDetalle struct {
	Codigo   string `json:"codigo"`
	Etiqueta string `json:"etiqueta"`
	Carpeta  string `json:"carpeta"`
}

func (h *TrabajadorHandler) Carpeta(w http.ResponseWriter, r *http.Request) {
	t, ok := h.load(w, r)
	if !ok {
		return
	}
	info := carpetaInfo{
		TrabajadorID: t.ID,
		Empleador:    docs.SinEmpleador,
		Carpeta:      h.locator.CarpetaTrabajador(t),
	}
	if e := t.EmpleadorPreferido(); e != nil {
		info.Empleador = e.RazonSocial
	}
	info.RutaServidor = h.locator.ServerPath(info.Carpeta)
	for _, tipo := range models.TiposDocumento {
		info.Tipos = append(info.Tipos, carpetaTipoDetalle{
			Codigo: tipo.Codigo, Etiqueta: tipo.Etiqueta, Carpeta: h.locator.CarpetaTipo(t, tipo.Codigo),
		})
	}
	httpx.JSON(w, http.StatusOK, info)
}

func (h *TrabajadorHandler) load(w http.ResponseWriter, r *http.Request) (*models.Trabajador, bool) {
	id, ok := pathID(r)
	if !ok {
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

func (h *TrabajadorHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, t *models.Trabajador, errs map[string]string, msg string) {
	if httpx.WantsJSON(r) && status >= 400 {
		httpx.JSONError(w, status, msg, errs)
		return
	}
	opts, err := h.catalogo.Opciones(r.Context(), t.ID == 0)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, status, "trabajadores/form.html", map[string]any{
		"Trabajador": t,
		"Opciones":   opts,
		"Errors":     errs,
		"Error":      msg,
		"Estados":    models.EstadosTrabajador,
		"TiposCta":   models.TiposCuenta,
	})
}

// bindTrabajador copies the form into t. Association pointers are cleared so
// a changed id is not shadowed by a stale preloaded struct. The stored DV is
// kept when the form does not post one.
func bindTrabajador(r *http.Request, t *models.Trabajador) {
	t.RUT = formString(r, "rut")
	if _, ok := r.Form["dv"]; ok {
		t.DV = strings.ToUpper(formString(r, "dv"))
	}
	t.Nombres = formString(r, "nombres")
	t.ApPaterno = formString(r, "ap_paterno")
	t.ApMaterno = formString(r, "ap_materno")
	t.FechaNacimiento = formFecha(r, "fecha_nacimiento")
	t.Nacionalidad = formString(r, "nacionalidad")
	t.Sexo = strings.ToUpper(formString(r, "sexo"))
	t.EstadoCivil = formString(r, "estado_civil")

	t.Direccion = formString(r, "direccion")
	t.Comuna = formString(r, "comuna")
	t.Telefono = formString(r, "telefono")
	t.TelefonoEmergencia = formString(r, "telefono_emergencia")
	t.Correo = formString(r, "correo")

	t.BancoID, t.Banco = formUint(r, "banco_id"), nil
	t.TipoCuenta = formString(r, "tipo_cuenta")
	t.CuentaNumero = formString(r, "cuenta_numero")
	t.CuentaRUT = ""

	t.PagoTerceroActivo = formBool(r, "pago_tercero_activo")
	t.PagoTerceroRUT = formString(r, "pago_tercero_rut")
	t.PagoTerceroNombre = formString(r, "pago_tercero_nombre")
	t.PagoTerceroBancoID, t.PagoTerceroBanco = formUint(r, "pago_tercero_banco_id"), nil
	t.PagoTerceroTipoCuenta = formString(r, "pago_tercero_tipo_cuenta")
	t.PagoTerceroCuentaNumero = formString(r, "pago_tercero_cuenta_numero")

	t.AFPID, t.AFP = formUint(r, "afp_id"), nil
	t.SaludID, t.Salud = formUint(r, "salud_id"), nil
	t.UFPlanSalud = formDecimal(r, "uf_plan_salud")
	t.CajaCompensacionID, t.CajaCompensacion = formUint(r, "caja_compensacion_id"), nil

	t.APVActivo = formBool(r, "apv_activo")
	t.APVModalidad = formString(r, "apv_modalidad")
	t.APVValor = formDecimal(r, "apv_valor")
	t.APVInstitucion = formString(r, "apv_institucion")
	t.CAVActivo = formBool(r, "cav_activo")
	t.CAVModalidad = formString(r, "cav_modalidad")
	t.CAVValor = formDecimal(r, "cav_valor")
	t.CAVInstitucion = formString(r, "cav_institucion")

	if n := formInt(r, "num_cargas_familiares"); n != nil {
		t.NumCargasFamiliares = *n
	} else {
		t.NumCargasFamiliares = 0
	}
	t.EsExtranjero = formBool(r, "es_extranjero")
	t.EsDiscapacitado = formBool(r, "es_discapacitado")
	t.EsPensionado = formBool(r, "es_pensionado")

	t.TieneExamenPreocupacional = formBool(r, "tiene_examen_preocupacional")
	t.FechaExamenPreocupacional = formFecha(r, "fecha_examen_preocupacional")
	t.TieneCursoAltura = formBool(r, "tiene_curso_altura")
	t.FechaVencCursoAltura = formFecha(r, "fecha_venc_curso_altura")
	t.TieneInduccionObra = formBool(r, "tiene_induccion_obra")
	t.FechaInduccionObra = formFecha(r, "fecha_induccion_obra")

	t.ObraID, t.Obra = formUintValue(r, "obra_id"), nil
	t.CargoID, t.Cargo = formUint(r, "cargo_id"), nil
	t.EstadoTrabajador = strings.ToUpper(formString(r, "estado_trabajador"))
	t.TipoTrabajador = formString(r, "tipo_trabajador")
	t.FechaIngresoEmpresa = formFecha(r, "fecha_ingreso_empresa")
	t.FechaEgresoEmpresa = formFecha(r, "fecha_egreso_empresa")
}

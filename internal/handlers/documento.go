package handlers

import (
	"net/http"
	"strconv"

	"github.com/grupocs/rrhh/httpx"
	"github.com/grupocs/rrhh/internal/models"
	"github.com/grupocs/rrhh/internal/services"
	"github.com/grupocs/rrhh/session"
	"go.uber.org/zap"
)

type DocumentoHandler struct {
	base
	documentos *services.DocumentoService
	contratos  *services.ContratoService
}

func NewDocumentoHandler(ds *services.DocumentoService, cs *services.ContratoService, flash *session.Flashes, log *zap.Logger) *DocumentoHandler {
	return &DocumentoHandler{base: base{flash: flash, log: log}, documentos: ds, contratos: cs}
}

// documentoVista adds the resolved server path to a document.
type documentoVista struct {
	models.DocumentoLaboral
	RutaServidor string `json:"ruta_servidor"`
}

func (h *DocumentoHandler) List(w http.ResponseWriter, r *http.Request) {
	c, ok := h.contrato(w, r)
	if !ok {
		return
	}
	list, err := h.documentos.ListByContrato(r.Context(), c.ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	vista := make([]documentoVista, len(list))
	for i, d := range list {
		vista[i] = documentoVista{DocumentoLaboral: d, RutaServidor: h.documentos.ServerPath(d)}
	}
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusOK, vista)
		return
	}
	h.render(w, r, http.StatusOK, "documentos/lista.html", map[string]any{
		"Contrato":   c,
		"Documentos": vista,
	})
}

func (h *DocumentoHandler) New(w http.ResponseWriter, r *http.Request) {
	c, ok := h.contrato(w, r)
	if !ok {
		return
	}
	h.renderForm(w, r, http.StatusOK, c, services.NuevoDocumento{Extension: "pdf"}, nil, "")
}

func (h *DocumentoHandler) Create(w http.ResponseWriter, r *http.Request) {
	c, ok := h.contrato(w, r)
	if !ok {
		return
	}
	in := services.NuevoDocumento{
		Tipo:        formString(r, "tipo_documento"),
		FechaRef:    formFecha(r, "fecha_documento"),
		Extension:   formString(r, "extension"),
		RutaArchivo: formString(r, "ruta_archivo"),
		Estado:      formString(r, "estado"),
		Descripcion: formString(r, "descripcion"),
	}
	d, err := h.documentos.CreateForContrato(r.Context(), c.ID, in)
	if err != nil {
		h.renderForm(w, r, statusFor(err), c, in, violaciones(err), mensajeError(err))
		return
	}
	h.log.Info("documento registrado", zap.Uint("id", d.ID), zap.String("nombre", d.NombreArchivo))
	if httpx.WantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, documentoVista{DocumentoLaboral: *d, RutaServidor: h.documentos.ServerPath(*d)})
		return
	}
	h.redirect(w, r, "/documentos/contrato/"+strconv.FormatUint(uint64(c.ID), 10), "Documento registrado: "+d.NombreArchivo)
}

func (h *DocumentoHandler) contrato(w http.ResponseWriter, r *http.Request) (*models.Contrato, bool) {
	id, ok := pathID(r)
	if !ok {
		h.notFound(w, r)
		return nil, false
	}
	c, err := h.contratos.Get(r.Context(), id)
	if services.IsNotFound(err) {
		h.notFound(w, r)
		return nil, false
	}
	if err != nil {
		h.serverError(w, r, err)
		return nil, false
	}
	return c, true
}

func (h *DocumentoHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, c *models.Contrato, in services.NuevoDocumento, errs map[string]string, msg string) {
	if httpx.WantsJSON(r) && status >= 400 {
		httpx.JSONError(w, status, msg, errs)
		return
	}
	h.render(w, r, status, "documentos/form.html", map[string]any{
		"Contrato":  c,
		"Documento": in,
		"Tipos":     models.TiposDocumento,
		"Errors":    errs,
		"Error":     msg,
	})
}

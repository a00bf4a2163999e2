package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/grupocs/rrhh/httpx"
	"github.com/grupocs/rrhh/internal/services"
	"github.com/grupocs/rrhh/session"
	"github.com/grupocs/rrhh/view"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

func formString(r *http.Request, name string) string {
	return strings.TrimSpace(r.FormValue(name))
}

// formUint returns nil for empty, zero or malformed ids.
func formUint(r *http.Request, name string) *uint {
	n, err := strconv.ParseUint(formString(r, name), 10, 32)
	if err != nil || n == 0 {
		return nil
	}
	id := uint(n)
	return &id
}

func formUintValue(r *http.Request, name string) uint {
	if p := formUint(r, name); p != nil {
		return *p
	}
	return 0
}

func queryUint(r *http.Request, name string) uint {
	n, _ := strconv.ParseUint(strings.TrimSpace(r.URL.Query().Get(name)), 10, 32)
	return uint(n)
}

func formInt(r *http.Request, name string) *int {
	n, err := strconv.Atoi(formString(r, name))
	if err != nil {
		return nil
	}
	return &n
}

// formDecimal accepts both "1.5" and "1,5".
func formDecimal(r *http.Request, name string) *float64 {
	s := strings.ReplaceAll(formString(r, name), ",", ".")
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

var layoutsFecha = []string{"2006-01-02", "02-01-2006", "02/01/2006"}

func formFecha(r *http.Request, name string) *datatypes.Date {
	s := formString(r, name)
	if s == "" {
		return nil
	}
	for _, l := range layoutsFecha {
		if t, err := time.Parse(l, s); err == nil {
			d := datatypes.Date(t)
			return &d
		}
	}
	return nil
}

func formBool(r *http.Request, name string) bool {
	switch strings.ToLower(formString(r, name)) {
	case "on", "1", "true", "si", "sí", "yes":
		return true
	}
	return false
}

func pathID(r *http.Request) (uint, bool) {
	n, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

// base carries what every handler needs to answer.
type base struct {
	flash *session.Flashes
	log   *zap.Logger
}

func (b base) render(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) {
	if err := view.RenderStatus(w, r, status, name, data); err != nil {
		b.log.Error("render failed", zap.String("template", name), zap.Error(err))
	}
}

func (b base) redirect(w http.ResponseWriter, r *http.Request, to, msg string) {
	if msg != "" {
		b.flash.Success(w, msg)
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}

func (b base) redirectError(w http.ResponseWriter, r *http.Request, to, msg string) {
	b.flash.Error(w, msg)
	http.Redirect(w, r, to, http.StatusSeeOther)
}

func (b base) notFound(w http.ResponseWriter, r *http.Request) {
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	http.NotFound(w, r)
}

func (b base) serverError(w http.ResponseWriter, r *http.Request, err error) {
	b.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	if httpx.WantsJSON(r) {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	http.Error(w, "Error interno", http.StatusInternalServerError)
}

// statusFor maps service errors to the status a re-rendered form is sent with.
func statusFor(err error) int {
	switch {
	case services.IsConflict(err):
		return http.StatusConflict
	case services.IsNotFound(err):
		return http.StatusNotFound
	}
	if _, ok := services.AsValidation(err); ok {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// mensajeError is the user-facing text for a failed write.
func mensajeError(err error) string {
	if ve, ok := services.AsValidation(err); ok {
		return ve.Message
	}
	switch {
	case err == nil:
		return ""
	case services.IsNotFound(err):
		return "El registro no existe."
	case errors.Is(err, services.ErrRUTDuplicado):
		return "Ya existe un trabajador con ese RUT."
	case errors.Is(err, services.ErrCodigoObraDuplicado):
		return "Ya existe una obra con ese código."
	case errors.Is(err, services.ErrContratoVigente):
		return "El trabajador ya tiene un contrato vigente con este empleador."
	}
	return "No se pudo guardar. Intenta nuevamente."
}

func violaciones(err error) map[string]string {
	if ve, ok := services.AsValidation(err); ok {
		return ve.Violations
	}
	return nil
}

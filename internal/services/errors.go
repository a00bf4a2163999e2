package services

import (
	"errors"
	"strings"

	"github.com/grupocs/rrhh/validation"
	"gorm.io/gorm"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrRUTDuplicado        = errors.New("rut already registered")
	ErrCodigoObraDuplicado = errors.New("job site code already registered")
	ErrContratoVigente     = errors.New("worker already has an active contract with this employer")
)

// ValidationError carries the per-field violations of a rejected write plus
// the single message shown to the user.
type ValidationError struct {
	Violations validation.Violations
	Message    string
}

func (e *ValidationError) Error() string { return "validation failed: " + e.Message }

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// AsValidation unwraps a *ValidationError.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}

// isDuplicate matches unique violations from both drivers, translated or not.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint")
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// primerMensaje returns the message of the first field, in priority order,
// that has a violation. A "campo:codigo" entry only matches that code.
func primerMensaje(v validation.Violations, orden []campoMensaje, def string) string {
	for _, c := range orden {
		for _, f := range c.campos {
			campo, codigo, conCodigo := strings.Cut(f, ":")
			got, ok := v[campo]
			if ok && (!conCodigo || got == codigo) {
				return c.mensaje
			}
		}
	}
	return def
}

type campoMensaje struct {
	campos  []string
	mensaje string
}

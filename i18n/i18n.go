// Package i18n holds the UI message catalogue. Spanish is the default language.
package i18n

import (
	"context"
	"strings"
)

const Default = "es"

type langKey struct{}

var messages = map[string]map[string]string{
	"es": {
		"required":                "Requerido",
		"invalid_option":          "Opción no válida",
		"invalid_email":           "Correo no válido",
		"invalid_rut":             "RUT no válido",
		"invalid":                 "Valor no válido",
		"must_be_positive":        "Debe ser mayor o igual a cero",
		"not_found":               "No existe",
		"rut_duplicado":           "Ya existe un trabajador con ese RUT",
		"codigo_duplicado":        "Ya existe una obra con ese código",
		"contrato_vigente":        "Ya existe un contrato vigente con este empleador",
		"contrato_sin_trabajador": "El contrato no tiene trabajador asociado",
		"trabajadores":            "Trabajadores",
		"contratos":               "Contratos",
		"obras":                   "Obras",
		"empleadores":             "Empleadores",
		"documentos":              "Documentos",
		"buscar":                  "Buscar",
		"guardar":                 "Guardar",
		"nuevo":                   "Nuevo",
		"sin_resultados":          "Sin resultados",
	},
	"en": {
		"required":                "Required",
		"invalid_option":          "Invalid option",
		"invalid_email":           "Invalid email",
		"invalid_rut":             "Invalid RUT",
		"invalid":                 "Invalid value",
		"must_be_positive":        "Must be zero or greater",
		"not_found":               "Not found",
		"rut_duplicado":           "A worker with this RUT already exists",
		"codigo_duplicado":        "A job site with this code already exists",
		"contrato_vigente":        "An active contract with this employer already exists",
		"contrato_sin_trabajador": "The contract has no worker",
		"trabajadores":            "Workers",
		"contratos":               "Contracts",
		"obras":                   "Job sites",
		"empleadores":             "Employers",
		"documentos":              "Documents",
		"buscar":                  "Search",
		"guardar":                 "Save",
		"nuevo":                   "New",
		"sin_resultados":          "No results",
	},
}

// T translates code, falling back to Spanish and then to the code itself.
func T(lang, code string) string {
	if m, ok := messages[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := messages[Default][code]; ok {
		return s
	}
	return code
}

// DetectLanguage picks a supported language from an Accept-Language header.
func DetectLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.ToLower(strings.TrimSpace(strings.SplitN(part, ";", 2)[0]))
		base := strings.SplitN(tag, "-", 2)[0]
		if _, ok := messages[base]; ok {
			return base
		}
	}
	return Default
}

func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, langKey{}, lang)
}

func LangFromContext(ctx context.Context) string {
	if l, ok := ctx.Value(langKey{}).(string); ok && l != "" {
		return l
	}
	return Default
}

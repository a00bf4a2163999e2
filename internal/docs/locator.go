// Package docs maps workers and documents onto the synced labor-document tree.
package docs

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/grupocs/rrhh/internal/models"
)

const SinEmpleador = "SIN_EMPLEADOR"

// Locator builds logical folder paths from a template with the placeholders
// {empleador} and {carpeta_trabajador}, and resolves them under Root.
type Locator struct {
	Root     string
	Template string
}

func NewLocator(root, tmpl string) Locator {
	return Locator{Root: root, Template: tmpl}
}

func nombreEmpleador(e *models.Empleador) string {
	if e == nil {
		return SinEmpleador
	}
	s := strings.TrimSpace(strings.ReplaceAll(e.RazonSocial, "/", "-"))
	if s == "" {
		return SinEmpleador
	}
	return s
}

// CarpetaTrabajador returns the worker's logical folder. t.Contratos with
// their Empleador must be loaded to pick the employer.
func (l Locator) CarpetaTrabajador(t *models.Trabajador) string {
	r := strings.NewReplacer(
		"{empleador}", nombreEmpleador(t.EmpleadorPreferido()),
		"{carpeta_trabajador}", t.CarpetaTrabajador(),
	)
	return strings.Trim(r.Replace(l.Template), "/")
}

// CarpetaTipo is the worker folder followed by the document type.
func (l Locator) CarpetaTipo(t *models.Trabajador, tipo string) string {
	return path.Join(l.CarpetaTrabajador(t), strings.ToUpper(strings.TrimSpace(tipo)))
}

// ServerPath resolves a logical path on disk. When Root already names the
// first segment of the logical path that segment is not repeated.
func (l Locator) ServerPath(logical string) string {
	parts := strings.Split(strings.Trim(logical, "/"), "/")
	if len(parts) > 0 && filepath.Base(l.Root) == parts[0] {
		parts = parts[1:]
	}
	return filepath.Join(append([]string{l.Root}, parts...)...)
}

package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// TipoDocumento is a labor document category. Each one is also a folder
// inside the worker's directory in the synced tree.
type TipoDocumento struct {
	Codigo   string
	Etiqueta string
}

var TiposDocumento = []TipoDocumento{
	{"CONTRATOS", "Contratos"},
	{"ANEXOS", "Anexos"},
	{"FINIQUITOS", "Finiquitos"},
	{"PERMISOS", "Permisos / Licencias"},
	{"ACUERDOS", "Acuerdos"},
	{"CARTAS_AVISO", "Cartas de aviso"},
	{"AMONESTACIONES", "Amonestaciones"},
}

// EtiquetaTipoDocumento returns the display label, or the code itself when unknown.
func EtiquetaTipoDocumento(codigo string) string {
	for _, t := range TiposDocumento {
		if t.Codigo == codigo {
			return t.Etiqueta
		}
	}
	return codigo
}

func TipoDocumentoValido(codigo string) bool {
	for _, t := range TiposDocumento {
		if t.Codigo == codigo {
			return true
		}
	}
	return false
}

const SinFecha = "SIN_FECHA"

type DocumentoLaboral struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	ContratoID     uint            `gorm:"index;not null" json:"contrato_id"`
	Contrato       *Contrato       `json:"-"`
	TipoDocumento  string          `gorm:"size:50;not null" json:"tipo_documento"`
	FechaDocumento *datatypes.Date `json:"fecha_documento,omitempty"`
	Descripcion    string          `gorm:"size:255" json:"descripcion,omitempty"`
	NombreArchivo  string          `gorm:"size:255;not null" json:"nombre_archivo"`
	Carpeta        string          `gorm:"size:500" json:"carpeta"`
	RutaArchivo    string          `gorm:"size:500" json:"ruta_archivo,omitempty"`
	Estado         string          `gorm:"size:20;not null;default:VIGENTE" json:"estado"`
	CreadoPor      string          `gorm:"size:50" json:"creado_por,omitempty"`
	CreadoEn       time.Time       `gorm:"autoCreateTime" json:"creado_en"`
}

func (DocumentoLaboral) TableName() string { return "documentos_laborales" }

func (d DocumentoLaboral) Etiqueta() string { return EtiquetaTipoDocumento(d.TipoDocumento) }

// NombreArchivoDocumento builds TIPO_SEGUNDOAPELLIDO_YYYY-MM-DD.ext, using
// SIN_FECHA without a reference date and pdf without an extension.
func NombreArchivoDocumento(tipo, segundoApellido string, fecha *datatypes.Date, extension string) string {
	parts := []string{NormalizarNombre(tipo)}
	if ap := NormalizarNombre(segundoApellido); ap != "" {
		parts = append(parts, ap)
	}
	parts = append(parts, FormatoFecha(fecha, SinFecha))
	ext := strings.ToLower(strings.TrimLeft(strings.TrimSpace(extension), "."))
	if ext == "" {
		ext = "pdf"
	}
	return strings.Join(parts, "_") + "." + ext
}

// FormatoFecha renders a date column as YYYY-MM-DD, or def when nil.
func FormatoFecha(d *datatypes.Date, def string) string {
	if d == nil {
		return def
	}
	return time.Time(*d).Format("2006-01-02")
}

package models

import "gorm.io/datatypes"

const (
	ObraActiva  = "ACTIVA"
	ObraCerrada = "CERRADA"
)

// Obra is a construction job site. Every worker is assigned to one.
type Obra struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Nombre      string          `gorm:"size:120;not null" json:"nombre"`
	Codigo      string          `gorm:"size:50;uniqueIndex;not null" json:"codigo"`
	CentroCosto string          `gorm:"size:100" json:"centro_costo,omitempty"`
	Comuna      string          `gorm:"size:100" json:"comuna,omitempty"`
	EmpleadorID *uint           `gorm:"index" json:"empleador_id,omitempty"`
	Empleador   *Empleador      `json:"empleador,omitempty"`
	Estado      string          `gorm:"size:20;not null;default:ACTIVA" json:"estado"`
	FechaInicio *datatypes.Date `json:"fecha_inicio,omitempty"`
	FechaCierre *datatypes.Date `json:"fecha_cierre,omitempty"`
}

func (Obra) TableName() string { return "obras" }

func (o Obra) Activa() bool { return o.Estado == ObraActiva }

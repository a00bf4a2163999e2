package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	ContratoVigente   = "VIGENTE"
	ContratoTerminado = "TERMINADO"
)

var EstadosContrato = []string{ContratoVigente, ContratoTerminado}

// TiposContrato are the contract kinds offered by the form. Imports may carry others.
var TiposContrato = []string{"PLAZO FIJO", "INDEFINIDO", "POR OBRA"}

// Contrato is an employment contract. A worker may hold at most one VIGENTE
// contract per employer; the partial unique index ux_contratos_vigente backs this.
type Contrato struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	TrabajadorID uint        `gorm:"index;not null" json:"trabajador_id"`
	Trabajador   *Trabajador `json:"trabajador,omitempty"`
	EmpleadorID  *uint       `gorm:"index" json:"empleador_id,omitempty"`
	Empleador    *Empleador  `json:"empleador,omitempty"`
	ObraID       *uint       `gorm:"index" json:"obra_id,omitempty"`
	Obra         *Obra       `json:"obra,omitempty"`
	CargoID      *uint       `gorm:"index" json:"cargo_id,omitempty"`
	Cargo        *Cargo      `json:"cargo,omitempty"`

	TipoContrato string          `gorm:"size:30" json:"tipo_contrato,omitempty"`
	FechaInicio  *datatypes.Date `json:"fecha_inicio,omitempty"`
	FechaTermino *datatypes.Date `json:"fecha_termino,omitempty"`

	Jornada        string `gorm:"size:100" json:"jornada,omitempty"`
	HorasSemanales *int   `json:"horas_semanales,omitempty"`

	SueldoBase             *float64 `gorm:"type:decimal(10,2)" json:"sueldo_base,omitempty"`
	AsignacionMovilizacion *float64 `gorm:"type:decimal(10,2)" json:"asignacion_movilizacion,omitempty"`
	AsignacionColacion     *float64 `gorm:"type:decimal(10,2)" json:"asignacion_colacion,omitempty"`
	AsignacionHerramientas *float64 `gorm:"type:decimal(10,2)" json:"asignacion_herramientas,omitempty"`

	EstadoContrato string          `gorm:"size:20;not null;default:VIGENTE" json:"estado_contrato"`
	CausalTermino  string          `gorm:"size:250" json:"causal_termino,omitempty"`
	FechaFiniquito *datatypes.Date `json:"fecha_finiquito,omitempty"`

	Documentos []DocumentoLaboral `gorm:"constraint:OnDelete:CASCADE" json:"documentos,omitempty"`

	CreadoEn      time.Time `gorm:"autoCreateTime" json:"creado_en"`
	ActualizadoEn time.Time `gorm:"autoUpdateTime" json:"actualizado_en"`
}

func (Contrato) TableName() string { return "contratos" }

func (c Contrato) Vigente() bool { return c.EstadoContrato == ContratoVigente }

// ContratoPreferido returns, among contracts that name an employer, the most
// recent VIGENTE one by start date, else the most recent of any state, else nil.
// Missing start dates sort oldest; ties go to the higher id.
func ContratoPreferido(contratos []Contrato) *Contrato {
	var vigente, cualquiera *Contrato
	for i := range contratos {
		c := &contratos[i]
		if c.EmpleadorID == nil {
			continue
		}
		if masReciente(c, cualquiera) {
			cualquiera = c
		}
		if c.Vigente() && masReciente(c, vigente) {
			vigente = c
		}
	}
	if vigente != nil {
		return vigente
	}
	return cualquiera
}

func masReciente(a, b *Contrato) bool {
	if b == nil {
		return true
	}
	ta, tb := fechaOrden(a.FechaInicio), fechaOrden(b.FechaInicio)
	if ta.Equal(tb) {
		return a.ID > b.ID
	}
	return ta.After(tb)
}

func fechaOrden(d *datatypes.Date) time.Time {
	if d == nil {
		return time.Time{}
	}
	return time.Time(*d)
}

package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

const (
	TrabajadorVigente      = "VIGENTE"
	TrabajadorDesvinculado = "DESVINCULADO"
	TrabajadorSuspendido   = "SUSPENDIDO"
)

// Account types accepted for a worker's own bank account.
const (
	CuentaCorriente = "CORRIENTE"
	CuentaVista     = "VISTA"
	CuentaAhorro    = "AHORRO"
	CuentaRUT       = "CTA_RUT"
)

var TiposCuenta = []string{CuentaCorriente, CuentaVista, CuentaAhorro, CuentaRUT}

var EstadosTrabajador = []string{TrabajadorVigente, TrabajadorDesvinculado, TrabajadorSuspendido}

type Trabajador struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	RUT       string `gorm:"column:rut;size:12;uniqueIndex;not null" json:"rut"`
	DV        string `gorm:"column:dv;size:1" json:"dv,omitempty"`
	Nombres   string `gorm:"size:100;not null" json:"nombres"`
	ApPaterno string `gorm:"size:100;not null" json:"ap_paterno"`
	ApMaterno string `gorm:"size:100" json:"ap_materno"`

	FechaNacimiento *datatypes.Date `json:"fecha_nacimiento,omitempty"`
	Nacionalidad    string          `gorm:"size:50" json:"nacionalidad,omitempty"`
	Sexo            string          `gorm:"size:1" json:"sexo,omitempty"`
	EstadoCivil     string          `gorm:"size:20" json:"estado_civil,omitempty"`

	Direccion          string `gorm:"size:200" json:"direccion,omitempty"`
	Comuna             string `gorm:"size:100" json:"comuna,omitempty"`
	Telefono           string `gorm:"size:30" json:"telefono,omitempty"`
	TelefonoEmergencia string `gorm:"size:30" json:"telefono_emergencia,omitempty"`
	Correo             string `gorm:"size:120" json:"correo,omitempty"`

	BancoID      *uint  `gorm:"index" json:"banco_id,omitempty"`
	Banco        *Banco `json:"banco,omitempty"`
	TipoCuenta   string `gorm:"size:20" json:"tipo_cuenta,omitempty"`
	CuentaRUT    string `gorm:"column:cuenta_rut;size:20" json:"cuenta_rut,omitempty"`
	CuentaNumero string `gorm:"size:30" json:"cuenta_numero,omitempty"`

	PagoTerceroActivo       bool   `gorm:"not null;default:false" json:"pago_tercero_activo"`
	PagoTerceroRUT          string `gorm:"column:pago_tercero_rut;size:12" json:"pago_tercero_rut,omitempty"`
	PagoTerceroNombre       string `gorm:"size:150" json:"pago_tercero_nombre,omitempty"`
	PagoTerceroBancoID      *uint  `json:"pago_tercero_banco_id,omitempty"`
	PagoTerceroBanco        *Banco `gorm:"foreignKey:PagoTerceroBancoID" json:"-"`
	PagoTerceroTipoCuenta   string `gorm:"size:20" json:"pago_tercero_tipo_cuenta,omitempty"`
	PagoTerceroCuentaNumero string `gorm:"size:30" json:"pago_tercero_cuenta_numero,omitempty"`

	AFPID              *uint             `gorm:"column:afp_id;index" json:"afp_id,omitempty"`
	AFP                *AFP              `gorm:"foreignKey:AFPID" json:"afp,omitempty"`
	SaludID            *uint             `gorm:"index" json:"salud_id,omitempty"`
	Salud              *Salud            `json:"salud,omitempty"`
	UFPlanSalud        *float64          `gorm:"column:uf_plan_salud;type:decimal(6,2)" json:"uf_plan_salud,omitempty"`
	CajaCompensacionID *uint             `gorm:"index" json:"caja_compensacion_id,omitempty"`
	CajaCompensacion   *CajaCompensacion `json:"caja_compensacion,omitempty"`

	APVActivo      bool     `gorm:"column:apv_activo;not null;default:false" json:"apv_activo"`
	APVModalidad   string   `gorm:"column:apv_modalidad;size:20" json:"apv_modalidad,omitempty"`
	APVValor       *float64 `gorm:"column:apv_valor;type:decimal(10,2)" json:"apv_valor,omitempty"`
	APVInstitucion string   `gorm:"column:apv_institucion;size:120" json:"apv_institucion,omitempty"`

	CAVActivo      bool     `gorm:"column:cav_activo;not null;default:false" json:"cav_activo"`
	CAVModalidad   string   `gorm:"column:cav_modalidad;size:20" json:"cav_modalidad,omitempty"`
	CAVValor       *float64 `gorm:"column:cav_valor;type:decimal(10,2)" json:"cav_valor,omitempty"`
	CAVInstitucion string   `gorm:"column:cav_institucion;size:120" json:"cav_institucion,omitempty"`

	NumCargasFamiliares int  `gorm:"not null;default:0" json:"num_cargas_familiares"`
	EsExtranjero        bool `gorm:"not null;default:false" json:"es_extranjero"`
	EsDiscapacitado     bool `gorm:"not null;default:false" json:"es_discapacitado"`
	EsPensionado        bool `gorm:"not null;default:false" json:"es_pensionado"`

	TieneExamenPreocupacional bool            `gorm:"not null;default:false" json:"tiene_examen_preocupacional"`
	FechaExamenPreocupacional *datatypes.Date `json:"fecha_examen_preocupacional,omitempty"`
	TieneCursoAltura          bool            `gorm:"not null;default:false" json:"tiene_curso_altura"`
	FechaVencCursoAltura      *datatypes.Date `json:"fecha_venc_curso_altura,omitempty"`
	TieneInduccionObra        bool            `gorm:"not null;default:false" json:"tiene_induccion_obra"`
	FechaInduccionObra        *datatypes.Date `json:"fecha_induccion_obra,omitempty"`

	ObraID  uint   `gorm:"index;not null" json:"obra_id"`
	Obra    *Obra  `json:"obra,omitempty"`
	CargoID *uint  `gorm:"index" json:"cargo_id,omitempty"`
	Cargo   *Cargo `json:"cargo,omitempty"`

	EstadoTrabajador    string          `gorm:"size:20;not null;default:VIGENTE" json:"estado_trabajador"`
	TipoTrabajador      string          `gorm:"size:30" json:"tipo_trabajador,omitempty"`
	FechaIngresoEmpresa *datatypes.Date `json:"fecha_ingreso_empresa,omitempty"`
	FechaEgresoEmpresa  *datatypes.Date `json:"fecha_egreso_empresa,omitempty"`

	Contratos []Contrato `json:"contratos,omitempty"`

	CreadoEn      time.Time `gorm:"autoCreateTime" json:"creado_en"`
	ActualizadoEn time.Time `gorm:"autoUpdateTime" json:"actualizado_en"`
}

func (Trabajador) TableName() string { return "trabajadores" }

func (t Trabajador) NombreCompleto() string {
	return strings.Join(strings.Fields(t.Nombres+" "+t.ApPaterno+" "+t.ApMaterno), " ")
}

// RUTSinPuntos returns the tax id without thousands separators, keeping the DV hyphen.
func (t Trabajador) RUTSinPuntos() string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(t.RUT), ".", ""))
}

// CarpetaTrabajador is the canonical folder name used in the document tree,
// e.g. 12345671-8_PEREZ_SOTO_ANA_MARIA.
func (t Trabajador) CarpetaTrabajador() string {
	parts := []string{t.RUTSinPuntos()}
	for _, s := range []string{t.ApPaterno, t.ApMaterno, t.Nombres} {
		if n := NormalizarNombre(s); n != "" {
			parts = append(parts, n)
		}
	}
	return strings.Join(parts, "_")
}

// AplicarReglas enforces the write-time rules on banking and optional benefits:
// a CTA_RUT account number is derived from the worker's RUT, and disabled
// toggles leave their dependent fields empty.
func (t *Trabajador) AplicarReglas() {
	t.RUT = strings.TrimSpace(t.RUT)
	if t.DV == "" {
		t.DV = DVDesdeRUT(t.RUT)
	}
	if t.TipoCuenta == CuentaRUT {
		n := CuentaDesdeRUT(t.RUT)
		if t.DV != "" && DVDesdeRUT(t.RUT) == "" {
			// rut holds only the body, the check digit lives in dv.
			n = soloDigitos(t.RUT)
		}
		if n != "" {
			t.CuentaNumero = n
			t.CuentaRUT = n
		}
	}
	if !t.PagoTerceroActivo {
		t.PagoTerceroRUT = ""
		t.PagoTerceroNombre = ""
		t.PagoTerceroBancoID = nil
		t.PagoTerceroTipoCuenta = ""
		t.PagoTerceroCuentaNumero = ""
	}
	if !t.APVActivo {
		t.APVModalidad = ""
		t.APVValor = nil
		t.APVInstitucion = ""
	}
	if !t.CAVActivo {
		t.CAVModalidad = ""
		t.CAVValor = nil
		t.CAVInstitucion = ""
	}
	if t.EstadoTrabajador == "" {
		t.EstadoTrabajador = TrabajadorVigente
	}
}

// EmpleadorPreferido picks the employer used for the worker's document folder.
// Contratos (with Empleador) must be loaded.
func (t Trabajador) EmpleadorPreferido() *Empleador {
	c := ContratoPreferido(t.Contratos)
	if c == nil {
		return nil
	}
	return c.Empleador
}

// CuentaDesdeRUT returns the RUT body (no DV) as digits only. 12.345.671-8 -> 12345671.
// Returns "" when fewer than two characters are available.
func CuentaDesdeRUT(rut string) string {
	s := strings.ToUpper(strings.TrimSpace(rut))
	var body string
	if i := strings.LastIndex(s, "-"); i >= 0 {
		body = s[:i]
	} else {
		digits := soloDigitosYK(s)
		if len(digits) < 2 {
			return ""
		}
		body = digits[:len(digits)-1]
	}
	return soloDigitos(body)
}

// DVDesdeRUT extracts the check digit after the hyphen, if any.
func DVDesdeRUT(rut string) string {
	s := strings.ToUpper(strings.TrimSpace(rut))
	i := strings.LastIndex(s, "-")
	if i < 0 || i == len(s)-1 {
		return ""
	}
	return s[i+1 : i+2]
}

func soloDigitos(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func soloDigitosYK(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == 'K' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

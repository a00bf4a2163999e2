package models

// Empleador is one of the group's companies.
type Empleador struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	RazonSocial string `gorm:"size:200;not null" json:"razon_social"`
	RUT         string `gorm:"column:rut;size:20" json:"rut,omitempty"`
	Giro        string `gorm:"size:200" json:"giro,omitempty"`
	Direccion   string `gorm:"size:250" json:"direccion,omitempty"`
	Comuna      string `gorm:"size:100" json:"comuna,omitempty"`

	Obras     []Obra            `json:"-"`
	Contratos []Contrato        `json:"-"`
	Mutuales  []EmpleadorMutual `json:"-"`
}

func (Empleador) TableName() string { return "empleadores" }

// Mutual is a workplace-safety mutual (ACHS, IST, ...).
type Mutual struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Nombre string `gorm:"size:150;uniqueIndex;not null" json:"nombre"`
}

func (Mutual) TableName() string { return "mutuales" }

// EmpleadorMutual records which mutual an employer is affiliated to over time.
type EmpleadorMutual struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	EmpleadorID uint       `gorm:"index;not null" json:"empleador_id"`
	Empleador   *Empleador `json:"-"`
	MutualID    uint       `gorm:"index;not null" json:"mutual_id"`
	Mutual      *Mutual    `json:"mutual,omitempty"`
	Vigente     bool       `gorm:"not null;default:true" json:"vigente"`
}

func (EmpleadorMutual) TableName() string { return "empleador_mutual" }

type AFP struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Nombre string `gorm:"size:120;uniqueIndex;not null" json:"nombre"`
}

func (AFP) TableName() string { return "afp" }

const (
	SaludFonasa = "FONASA"
	SaludIsapre = "ISAPRE"
)

// Salud is FONASA or an ISAPRE; only ISAPRE plans carry a UF amount.
type Salud struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Nombre string `gorm:"size:120;uniqueIndex;not null" json:"nombre"`
	Tipo   string `gorm:"size:20;not null" json:"tipo"`
}

func (Salud) TableName() string { return "salud" }

type Banco struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Nombre     string `gorm:"size:120;uniqueIndex;not null" json:"nombre"`
	CodigoSBIF string `gorm:"column:codigo_sbif;size:10" json:"codigo_sbif,omitempty"`
}

func (Banco) TableName() string { return "bancos" }

type CajaCompensacion struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Nombre string `gorm:"size:150;uniqueIndex;not null" json:"nombre"`
}

func (CajaCompensacion) TableName() string { return "cajas_compensacion" }

// Cargo is a job position. Ids are kept stable across imports.
type Cargo struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Nombre      string `gorm:"size:150;not null" json:"nombre"`
	Descripcion string `gorm:"size:300" json:"descripcion,omitempty"`
	Categoria   string `gorm:"size:100" json:"categoria,omitempty"`
}

func (Cargo) TableName() string { return "cargos" }

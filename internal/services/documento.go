package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/grupocs/rrhh/internal/docs"
	"github.com/grupocs/rrhh/internal/models"
	"github.com/grupocs/rrhh/validation"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NuevoDocumento is the input for registering a labor document.
type NuevoDocumento struct {
	Tipo        string
	FechaRef    *datatypes.Date
	Extension   string
	RutaArchivo string
	Estado      string
	Descripcion string
	CreadoPor   string
}

type DocumentoService struct {
	db      *gorm.DB
	locator docs.Locator
}

func NewDocumentoService(db *gorm.DB, locator docs.Locator) *DocumentoService {
	return &DocumentoService{db: db, locator: locator}
}

// CreateForContrato names and stores the metadata of a document attached to
// a contract. Nothing is written to disk.
func (s *DocumentoService) CreateForContrato(ctx context.Context, contratoID uint, in NuevoDocumento) (*models.DocumentoLaboral, error) {
	tipo := strings.ToUpper(strings.TrimSpace(in.Tipo))
	if !models.TipoDocumentoValido(tipo) {
		v := validation.Violations{}
		v.Add("tipo_documento", "invalid_option")
		return nil, &ValidationError{Violations: v, Message: "Debes seleccionar el tipo de documento."}
	}

	var c models.Contrato
	err := s.db.WithContext(ctx).
		Preload("Trabajador.Contratos.Empleador").
		First(&c, contratoID).Error
	if err != nil {
		return nil, notFound(err)
	}
	if c.Trabajador == nil {
		v := validation.Violations{}
		v.Add("contrato_id", "contrato_sin_trabajador")
		return nil, &ValidationError{Violations: v, Message: "El contrato no tiene trabajador asociado."}
	}

	fecha := in.FechaRef
	if fecha == nil {
		fecha = c.FechaInicio
	}
	estado := in.Estado
	if estado == "" {
		estado = models.ContratoVigente
	}
	d := &models.DocumentoLaboral{
		ContratoID:     c.ID,
		TipoDocumento:  tipo,
		FechaDocumento: fecha,
		Descripcion:    strings.TrimSpace(in.Descripcion),
		NombreArchivo:  models.NombreArchivoDocumento(tipo, c.Trabajador.ApMaterno, fecha, in.Extension),
		Carpeta:        s.locator.CarpetaTipo(c.Trabajador, tipo),
		RutaArchivo:    strings.TrimSpace(in.RutaArchivo),
		Estado:         estado,
		CreadoPor:      in.CreadoPor,
	}
	if err := s.db.WithContext(ctx).Create(d).Error; err != nil {
		return nil, fmt.Errorf("create documento: %w", err)
	}
	return d, nil
}

// ListByContrato returns the contract's documents, newest reference date first.
func (s *DocumentoService) ListByContrato(ctx context.Context, contratoID uint) ([]models.DocumentoLaboral, error) {
	out := []models.DocumentoLaboral{}
	err := s.db.WithContext(ctx).Where("contrato_id = ?", contratoID).
		Order("fecha_documento DESC, id DESC").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list documentos: %w", err)
	}
	return out, nil
}

// ServerPath resolves a stored folder against the sync root.
func (s *DocumentoService) ServerPath(d models.DocumentoLaboral) string {
	return s.locator.ServerPath(d.Carpeta)
}

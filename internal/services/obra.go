package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/grupocs/rrhh/internal/models"
	"github.com/grupocs/rrhh/validation"
	"gorm.io/gorm"
)

type ObraService struct {
	db *gorm.DB
}

func NewObraService(db *gorm.DB) *ObraService {
	return &ObraService{db: db}
}

type obraReglas struct {
	Nombre string `form:"nombre" validate:"required"`
	Codigo string `form:"codigo" validate:"required"`
	Estado string `form:"estado" validate:"oneof=ACTIVA CERRADA"`
}

var ordenObra = []campoMensaje{
	{[]string{"nombre", "codigo"}, "Nombre y código son obligatorios."},
	{[]string{"estado"}, "El estado de la obra no es válido."},
}

// Create registers a job site. The code must be unique.
func (s *ObraService) Create(ctx context.Context, o *models.Obra) error {
	o.Nombre = strings.TrimSpace(o.Nombre)
	o.Codigo = strings.TrimSpace(o.Codigo)
	if o.Estado == "" {
		o.Estado = models.ObraActiva
	}
	v := validation.Struct(obraReglas{Nombre: o.Nombre, Codigo: o.Codigo, Estado: o.Estado})
	if o.EmpleadorID != nil && !exists(ctx, s.db, &models.Empleador{}, *o.EmpleadorID) {
		v.Add("empleador_id", "not_found")
	}
	if !v.Empty() {
		return &ValidationError{Violations: v, Message: primerMensaje(v, ordenObra, "Revisa los campos marcados.")}
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Obra{}).Where("codigo = ?", o.Codigo).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrCodigoObraDuplicado
		}
		if err := tx.Create(o).Error; err != nil {
			if isDuplicate(err) {
				return ErrCodigoObraDuplicado
			}
			return fmt.Errorf("create obra: %w", err)
		}
		return nil
	})
}

type ObraFiltro struct {
	Estado      string
	EmpleadorID uint
	Q           string
}

func (s *ObraService) List(ctx context.Context, f ObraFiltro) ([]models.Obra, error) {
	q := s.db.WithContext(ctx).Preload("Empleador")
	if f.Estado != "" {
		q = q.Where("estado = ?", f.Estado)
	}
	if f.EmpleadorID != 0 {
		q = q.Where("empleador_id = ?", f.EmpleadorID)
	}
	if term := strings.TrimSpace(f.Q); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("(LOWER(nombre) LIKE ? OR LOWER(codigo) LIKE ? OR LOWER(comuna) LIKE ?)", like, like, like)
	}
	out := []models.Obra{}
	if err := q.Order("nombre, id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list obras: %w", err)
	}
	return out, nil
}

// Activas lists the job sites new workers can be assigned to.
func (s *ObraService) Activas(ctx context.Context) ([]models.Obra, error) {
	out := []models.Obra{}
	err := s.db.WithContext(ctx).Where("estado = ?", models.ObraActiva).Order("nombre, id").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list obras activas: %w", err)
	}
	return out, nil
}

package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/grupocs/rrhh/internal/models"
	"github.com/grupocs/rrhh/validation"
	"gorm.io/gorm"
)

type EmpleadorService struct {
	db *gorm.DB
}

func NewEmpleadorService(db *gorm.DB) *EmpleadorService {
	return &EmpleadorService{db: db}
}

type empleadorReglas struct {
	RazonSocial string `form:"razon_social" validate:"required"`
	RUT         string `form:"rut" validate:"omitempty,rut"`
}

// Create registers an employer and, when mutualID is non-zero, its current
// mutual affiliation.
func (s *EmpleadorService) Create(ctx context.Context, e *models.Empleador, mutualID uint) error {
	e.RazonSocial = strings.TrimSpace(e.RazonSocial)
	e.RUT = strings.TrimSpace(e.RUT)
	v := validation.Struct(empleadorReglas{RazonSocial: e.RazonSocial, RUT: e.RUT})
	if mutualID != 0 && !exists(ctx, s.db, &models.Mutual{}, mutualID) {
		v.Add("mutual_id", "not_found")
	}
	if !v.Empty() {
		msg := "Revisa los campos marcados."
		if _, ok := v["razon_social"]; ok {
			msg = "La razón social es obligatoria."
		}
		return &ValidationError{Violations: v, Message: msg}
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(e).Error; err != nil {
			return fmt.Errorf("create empleador: %w", err)
		}
		if mutualID == 0 {
			return nil
		}
		em := models.EmpleadorMutual{EmpleadorID: e.ID, MutualID: mutualID, Vigente: true}
		if err := tx.Create(&em).Error; err != nil {
			return fmt.Errorf("create empleador_mutual: %w", err)
		}
		return nil
	})
}

func (s *EmpleadorService) Get(ctx context.Context, id uint) (*models.Empleador, error) {
	var e models.Empleador
	err := s.db.WithContext(ctx).
		Preload("Mutuales", "vigente = ?", true).Preload("Mutuales.Mutual").
		Preload("Obras", func(db *gorm.DB) *gorm.DB { return db.Order("nombre") }).
		First(&e, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

func (s *EmpleadorService) List(ctx context.Context) ([]models.Empleador, error) {
	out := []models.Empleador{}
	err := s.db.WithContext(ctx).
		Preload("Mutuales", "vigente = ?", true).Preload("Mutuales.Mutual").
		Order("razon_social, id").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list empleadores: %w", err)
	}
	return out, nil
}

// MutualVigente returns the name of the employer's current mutual, or "".
// Mutuales must be preloaded.
func MutualVigente(e models.Empleador) string {
	for _, m := range e.Mutuales {
		if m.Vigente && m.Mutual != nil {
			return m.Mutual.Nombre
		}
	}
	return ""
}

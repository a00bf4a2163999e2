package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/grupocs/rrhh/internal/models"
	"github.com/grupocs/rrhh/validation"
	"gorm.io/gorm"
)

type ContratoFiltro struct {
	TrabajadorID uint
	EmpleadorID  uint
	ObraID       uint
	Estado       string
	Q            string
}

type ContratoService struct {
	db *gorm.DB
}

func NewContratoService(db *gorm.DB) *ContratoService {
	return &ContratoService{db: db}
}

type contratoReglas struct {
	EmpleadorID  uint   `form:"empleador_id" validate:"required"`
	ObraID       uint   `form:"obra_id" validate:"required"`
	CargoID      uint   `form:"cargo_id" validate:"required"`
	TipoContrato string `form:"tipo_contrato" validate:"required"`
	FechaInicio  bool   `form:"fecha_inicio" validate:"required"`
	Estado       string `form:"estado_contrato" validate:"oneof=VIGENTE TERMINADO"`
}

var ordenContrato = []campoMensaje{
	{[]string{"empleador_id"}, "Debes seleccionar un empleador."},
	{[]string{"obra_id"}, "Debes seleccionar una obra."},
	{[]string{"cargo_id"}, "Debes seleccionar un cargo."},
	{[]string{"tipo_contrato"}, "Debes indicar el tipo de contrato."},
	{[]string{"fecha_inicio"}, "Debes indicar la fecha de inicio."},
	{[]string{"estado_contrato"}, "El estado del contrato no es válido."},
}

func deref(p *uint) uint {
	if p == nil {
		return 0
	}
	return *p
}

func (s *ContratoService) validar(ctx context.Context, c *models.Contrato) error {
	v := validation.Struct(contratoReglas{
		EmpleadorID:  deref(c.EmpleadorID),
		ObraID:       deref(c.ObraID),
		CargoID:      deref(c.CargoID),
		TipoContrato: strings.TrimSpace(c.TipoContrato),
		FechaInicio:  c.FechaInicio != nil,
		Estado:       c.EstadoContrato,
	})
	if c.HorasSemanales != nil && *c.HorasSemanales < 0 {
		v.Add("horas_semanales", "must_be_positive")
	}
	for field, val := range map[string]*float64{
		"sueldo_base":             c.SueldoBase,
		"asignacion_movilizacion": c.AsignacionMovilizacion,
		"asignacion_colacion":     c.AsignacionColacion,
		"asignacion_herramientas": c.AsignacionHerramientas,
	} {
		validation.NonNegative(field, val, v)
	}
	if id := deref(c.EmpleadorID); id != 0 && !exists(ctx, s.db, &models.Empleador{}, id) {
		v.Add("empleador_id", "not_found")
	}
	if id := deref(c.ObraID); id != 0 && !exists(ctx, s.db, &models.Obra{}, id) {
		v.Add("obra_id", "not_found")
	}
	if id := deref(c.CargoID); id != 0 && !exists(ctx, s.db, &models.Cargo{}, id) {
		v.Add("cargo_id", "not_found")
	}
	if v.Empty() {
		return nil
	}
	return &ValidationError{Violations: v, Message: primerMensaje(v, ordenContrato, "Revisa los campos marcados.")}
}

// Create stores a contract for an existing worker. A VIGENTE contract is
// rejected with ErrContratoVigente when the worker already holds one with the
// same employer; the existing contract is left untouched.
func (s *ContratoService) Create(ctx context.Context, c *models.Contrato) error {
	if c.EstadoContrato == "" {
		c.EstadoContrato = models.ContratoVigente
	}
	if c.TrabajadorID == 0 || !exists(ctx, s.db, &models.Trabajador{}, c.TrabajadorID) {
		return fmt.Errorf("trabajador %d: %w", c.TrabajadorID, ErrNotFound)
	}
	if err := s.validar(ctx, c); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return CreateContratoTx(tx, c)
	})
}

// CreateContratoTx runs the uniqueness check and insert inside tx. The
// partial unique index catches a concurrent insert that slips past the check.
func CreateContratoTx(tx *gorm.DB, c *models.Contrato) error {
	if c.Vigente() && c.EmpleadorID != nil {
		var n int64
		err := tx.Model(&models.Contrato{}).
			Where("trabajador_id = ? AND empleador_id = ? AND estado_contrato = ?", c.TrabajadorID, *c.EmpleadorID, models.ContratoVigente).
			Count(&n).Error
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrContratoVigente
		}
	}
	if err := tx.Create(c).Error; err != nil {
		if isDuplicate(err) {
			return ErrContratoVigente
		}
		return fmt.Errorf("create contrato: %w", err)
	}
	return nil
}

func (s *ContratoService) Get(ctx context.Context, id uint) (*models.Contrato, error) {
	var c models.Contrato
	err := s.db.WithContext(ctx).
		Preload("Trabajador").Preload("Empleador").Preload("Obra").Preload("Cargo").
		Preload("Documentos", func(db *gorm.DB) *gorm.DB {
			return db.Order("fecha_documento DESC, id DESC")
		}).
		First(&c, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// List returns contracts ordered by job site, worker surnames and newest start date.
func (s *ContratoService) List(ctx context.Context, f ContratoFiltro) ([]models.Contrato, error) {
	q := s.db.WithContext(ctx).Model(&models.Contrato{}).
		Select("contratos.*").
		Joins("JOIN trabajadores ON trabajadores.id = contratos.trabajador_id").
		Joins("LEFT JOIN obras ON obras.id = contratos.obra_id")
	if f.TrabajadorID != 0 {
		q = q.Where("contratos.trabajador_id = ?", f.TrabajadorID)
	}
	if f.EmpleadorID != 0 {
		q = q.Where("contratos.empleador_id = ?", f.EmpleadorID)
	}
	if f.ObraID != 0 {
		q = q.Where("contratos.obra_id = ?", f.ObraID)
	}
	if f.Estado != "" {
		q = q.Where("contratos.estado_contrato = ?", f.Estado)
	}
	q = buscarTrabajador(q, f.Q)
	out := []models.Contrato{}
	err := q.Preload("Trabajador").Preload("Empleador").Preload("Obra").Preload("Cargo").
		Order("obras.nombre, trabajadores.ap_paterno, trabajadores.ap_materno, contratos.fecha_inicio DESC, contratos.id DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list contratos: %w", err)
	}
	return out, nil
}

// Delete removes a contract and its documents.
func (s *ContratoService) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("contrato_id = ?", id).Delete(&models.DocumentoLaboral{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Contrato{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// IsConflict reports uniqueness failures that map to a 409.
func IsConflict(err error) bool {
	return errors.Is(err, ErrContratoVigente) || errors.Is(err, ErrRUTDuplicado) || errors.Is(err, ErrCodigoObraDuplicado)
}

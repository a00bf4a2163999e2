package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/grupocs/rrhh/internal/models"
	"github.com/grupocs/rrhh/validation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const PerPage = 25

// Pagina is one page of a listing. TotalPages is at least 1.
type Pagina[T any] struct {
	Items      []T
	Total      int64
	Page       int
	PerPage    int
	TotalPages int
}

func paginar(total int64, page, perPage int) (int, int) {
	pages := int((total + int64(perPage) - 1) / int64(perPage))
	if pages < 1 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	return page, pages
}

type TrabajadorFiltro struct {
	Q           string
	ObraID      uint
	Obra        string
	CargoID     uint
	EmpleadorID uint
	Estado      string
	Page        int
}

type TrabajadorService struct {
	db *gorm.DB
}

func NewTrabajadorService(db *gorm.DB) *TrabajadorService {
	return &TrabajadorService{db: db}
}

type trabajadorReglas struct {
	ObraID     uint   `form:"obra_id" validate:"required"`
	CargoID    uint   `form:"cargo_id" validate:"required"`
	RUT        string `form:"rut" validate:"required,rut"`
	Nombres    string `form:"nombres" validate:"required"`
	ApPaterno  string `form:"ap_paterno" validate:"required"`
	ApMaterno  string `form:"ap_materno" validate:"required"`
	Correo     string `form:"correo" validate:"omitempty,email"`
	Sexo       string `form:"sexo" validate:"omitempty,oneof=M F"`
	TipoCuenta string `form:"tipo_cuenta" validate:"omitempty,oneof=CORRIENTE VISTA AHORRO CTA_RUT"`
	Estado     string `form:"estado_trabajador" validate:"omitempty,oneof=VIGENTE DESVINCULADO SUSPENDIDO"`
	Cargas     int    `form:"num_cargas_familiares" validate:"gte=0"`
}

var ordenTrabajador = []campoMensaje{
	{[]string{"obra_id"}, "Debes seleccionar una obra."},
	{[]string{"cargo_id"}, "Debes seleccionar un cargo."},
	{[]string{"rut:invalid_rut"}, "El RUT ingresado no tiene un formato válido."},
	{[]string{"rut", "nombres", "ap_paterno", "ap_materno"}, "Completa todos los datos básicos del trabajador."},
}

func (s *TrabajadorService) validar(ctx context.Context, t *models.Trabajador) error {
	var cargoID uint
	if t.CargoID != nil {
		cargoID = *t.CargoID
	}
	v := validation.Struct(trabajadorReglas{
		ObraID:     t.ObraID,
		CargoID:    cargoID,
		RUT:        t.RUT,
		Nombres:    strings.TrimSpace(t.Nombres),
		ApPaterno:  strings.TrimSpace(t.ApPaterno),
		ApMaterno:  strings.TrimSpace(t.ApMaterno),
		Correo:     t.Correo,
		Sexo:       t.Sexo,
		TipoCuenta: t.TipoCuenta,
		Estado:     t.EstadoTrabajador,
		Cargas:     t.NumCargasFamiliares,
	})
	validation.NonNegative("uf_plan_salud", t.UFPlanSalud, v)
	if t.ObraID != 0 && !exists(ctx, s.db, &models.Obra{}, t.ObraID) {
		v.Add("obra_id", "not_found")
	}
	if cargoID != 0 && !exists(ctx, s.db, &models.Cargo{}, cargoID) {
		v.Add("cargo_id", "not_found")
	}
	if v.Empty() {
		return nil
	}
	return &ValidationError{Violations: v, Message: primerMensaje(v, ordenTrabajador, "Revisa los campos marcados.")}
}

// Create registers a new worker. Nothing is written when validation fails or
// the RUT is already taken.
func (s *TrabajadorService) Create(ctx context.Context, t *models.Trabajador) error {
	t.AplicarReglas()
	if err := s.validar(ctx, t); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Trabajador{}).Where("rut = ?", t.RUT).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrRUTDuplicado
		}
		if err := tx.Create(t).Error; err != nil {
			if isDuplicate(err) {
				return ErrRUTDuplicado
			}
			return fmt.Errorf("create trabajador: %w", err)
		}
		return nil
	})
}

// Update saves every editable column of t. t.ID must be set.
func (s *TrabajadorService) Update(ctx context.Context, t *models.Trabajador) error {
	t.AplicarReglas()
	if err := s.validar(ctx, t); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Trabajador{}).Where("rut = ? AND id <> ?", t.RUT, t.ID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrRUTDuplicado
		}
		// Associations are loaded for display; only the row itself is saved.
		if err := tx.Omit(clause.Associations).Save(t).Error; err != nil {
			if isDuplicate(err) {
				return ErrRUTDuplicado
			}
			return fmt.Errorf("update trabajador %d: %w", t.ID, err)
		}
		return nil
	})
}

// Get loads a worker with its references and contracts, newest first.
func (s *TrabajadorService) Get(ctx context.Context, id uint) (*models.Trabajador, error) {
	var t models.Trabajador
	err := s.db.WithContext(ctx).
		Preload("Obra.Empleador").Preload("Cargo").Preload("Banco").Preload("AFP").
		Preload("Salud").Preload("CajaCompensacion").
		Preload("Contratos", func(db *gorm.DB) *gorm.DB {
			return db.Order("fecha_inicio DESC, id DESC")
		}).
		Preload("Contratos.Empleador").Preload("Contratos.Obra").Preload("Contratos.Cargo").
		First(&t, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (s *TrabajadorService) filtrar(ctx context.Context, f TrabajadorFiltro) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Trabajador{}).
		Joins("JOIN obras ON obras.id = trabajadores.obra_id")
	q = buscarTrabajador(q, f.Q)
	if f.ObraID != 0 {
		q = q.Where("trabajadores.obra_id = ?", f.ObraID)
	}
	if f.Obra != "" {
		q = q.Where("obras.nombre = ?", f.Obra)
	}
	if f.CargoID != 0 {
		q = q.Where("trabajadores.cargo_id = ?", f.CargoID)
	}
	if f.EmpleadorID != 0 {
		q = q.Where("obras.empleador_id = ?", f.EmpleadorID)
	}
	if f.Estado != "" {
		q = q.Where("trabajadores.estado_trabajador = ?", f.Estado)
	}
	return q
}

// List returns one page of workers ordered by job site and surnames. Out of
// range pages are clamped.
func (s *TrabajadorService) List(ctx context.Context, f TrabajadorFiltro) (Pagina[models.Trabajador], error) {
	var total int64
	if err := s.filtrar(ctx, f).Count(&total).Error; err != nil {
		return Pagina[models.Trabajador]{}, fmt.Errorf("count trabajadores: %w", err)
	}
	page, pages := paginar(total, f.Page, PerPage)
	items := []models.Trabajador{}
	err := s.filtrar(ctx, f).
		Select("trabajadores.*").
		Preload("Obra").Preload("Cargo").
		Order("obras.nombre, trabajadores.ap_paterno, trabajadores.ap_materno, trabajadores.id").
		Limit(PerPage).Offset((page - 1) * PerPage).
		Find(&items).Error
	if err != nil {
		return Pagina[models.Trabajador]{}, fmt.Errorf("list trabajadores: %w", err)
	}
	return Pagina[models.Trabajador]{Items: items, Total: total, Page: page, PerPage: PerPage, TotalPages: pages}, nil
}

// buscarTrabajador matches term against the rut, names and both surnames of
// the joined trabajadores table.
func buscarTrabajador(q *gorm.DB, term string) *gorm.DB {
	term = strings.TrimSpace(term)
	if term == "" {
		return q
	}
	like := "%" + strings.ToLower(term) + "%"
	return q.Where("(LOWER(trabajadores.rut) LIKE ? OR LOWER(trabajadores.nombres) LIKE ? OR LOWER(trabajadores.ap_paterno) LIKE ? OR LOWER(trabajadores.ap_materno) LIKE ?)",
		like, like, like, like)
}

func exists(ctx context.Context, db *gorm.DB, model any, id uint) bool {
	var n int64
	if err := db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return false
	}
	return n > 0
}

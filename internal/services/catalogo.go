package services

import (
	"context"
	"fmt"

	"github.com/grupocs/rrhh/internal/models"
	"gorm.io/gorm"
)

// Opciones holds the choices offered by the worker and contract forms.
type Opciones struct {
	Obras       []models.Obra
	Cargos      []models.Cargo
	Empleadores []models.Empleador
	AFPs        []models.AFP
	Salud       []models.Salud
	Bancos      []models.Banco
	Cajas       []models.CajaCompensacion
	Mutuales    []models.Mutual
}

type CatalogoService struct {
	db *gorm.DB
}

func NewCatalogoService(db *gorm.DB) *CatalogoService {
	return &CatalogoService{db: db}
}

// Opciones loads every select list. With soloObrasActivas only ACTIVA job
// sites are offered.
func (s *CatalogoService) Opciones(ctx context.Context, soloObrasActivas bool) (*Opciones, error) {
	db := s.db.WithContext(ctx)
	o := &Opciones{}
	obras := db.Order("nombre")
	if soloObrasActivas {
		obras = obras.Where("estado = ?", models.ObraActiva)
	}
	steps := []struct {
		name string
		q    *gorm.DB
		dest any
	}{
		{"obras", obras, &o.Obras},
		{"cargos", db.Order("nombre"), &o.Cargos},
		{"empleadores", db.Order("razon_social"), &o.Empleadores},
		{"afp", db.Order("nombre"), &o.AFPs},
		{"salud", db.Order("tipo, nombre"), &o.Salud},
		{"bancos", db.Order("nombre"), &o.Bancos},
		{"cajas", db.Order("nombre"), &o.Cajas},
		{"mutuales", db.Order("nombre"), &o.Mutuales},
	}
	for _, st := range steps {
		if err := st.q.Find(st.dest).Error; err != nil {
			return nil, fmt.Errorf("load %s: %w", st.name, err)
		}
	}
	return o, nil
}

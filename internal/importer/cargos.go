package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/grupocs/rrhh/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Cargos loads job positions keyed by their numeric id.
func (im *Importer) Cargos(ctx context.Context, r io.Reader) (Result, error) {
	return im.run(ctx, "cargos", r, func(tx *gorm.DB, c *corrida) (func(f fila) error, error) {
		return func(f fila) error { return importarCargo(tx, c, f) }, nil
	})
}

func importarCargo(tx *gorm.DB, c *corrida, f fila) error {
	raw := f.get("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.saltado(f, "id_invalido", zap.String("id", raw))
		return nil
	}
	nombre := f.get("nombre")
	if nombre == "" {
		c.saltado(f, "sin_nombre", zap.Uint64("id", id))
		return nil
	}

	var cargo models.Cargo
	err = tx.First(&cargo, uint(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cargo = models.Cargo{ID: uint(id), Nombre: nombre, Descripcion: f.get("descripcion"), Categoria: f.get("categoria")}
		if err := tx.Create(&cargo).Error; err != nil {
			return fmt.Errorf("create cargo %d: %w", id, err)
		}
		c.creado(f, zap.Uint64("id", id), zap.String("nombre", nombre))
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup cargo %d: %w", id, err)
	}

	changed := llenar(&cargo.Descripcion, f.get("descripcion"))
	changed = llenar(&cargo.Categoria, f.get("categoria")) || changed
	if changed {
		if err := tx.Save(&cargo).Error; err != nil {
			return fmt.Errorf("update cargo %d: %w", id, err)
		}
	}
	c.actualizado(f, zap.Uint64("id", id), zap.String("nombre", cargo.Nombre))
	return nil
}

// RealinearSecuencia moves the postgres id sequence of cargos past the
// highest imported id. It is a no-op on other drivers.
func (im *Importer) RealinearSecuencia(ctx context.Context) error {
	if im.db.Dialector.Name() != "postgres" {
		return nil
	}
	err := im.db.WithContext(ctx).
		Exec("SELECT setval(pg_get_serial_sequence('cargos', 'id'), COALESCE((SELECT MAX(id) FROM cargos), 1))").Error
	if err != nil {
		return fmt.Errorf("realign cargos sequence: %w", err)
	}
	return nil
}

// CargosTrabajadores assigns a cargo, matched by name, to existing workers.
// A worker that already has a different cargo keeps it.
func (im *Importer) CargosTrabajadores(ctx context.Context, r io.Reader) (Result, error) {
	return im.run(ctx, "cargos-trabajadores", r, func(tx *gorm.DB, c *corrida) (func(f fila) error, error) {
		cargos, err := cargarIndice(tx, "cargos", "nombre")
		if err != nil {
			return nil, err
		}
		return func(f fila) error { return asignarCargo(tx, c, f, cargos) }, nil
	})
}

func asignarCargo(tx *gorm.DB, c *corrida, f fila, cargos indice) error {
	rut := f.get("rut")
	if rut == "" {
		c.saltado(f, "sin_rut")
		return nil
	}
	var t models.Trabajador
	err := tx.Where("rut = ?", rut).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.saltado(f, "trabajador_no_encontrado", zap.String("rut", rut))
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup trabajador %s: %w", rut, err)
	}

	nombre := f.get("cargo")
	if nombre == "" {
		c.saltado(f, "sin_cargo", zap.String("rut", rut))
		return nil
	}
	id, ok := cargos.buscar(nombre)
	if !ok {
		c.saltado(f, "cargo_no_encontrado", zap.String("rut", rut), zap.String("cargo", nombre))
		return nil
	}
	if t.CargoID != nil && *t.CargoID != id {
		c.saltado(f, "cargo_distinto", zap.String("rut", rut), zap.Uint("cargo_actual", *t.CargoID))
		return nil
	}
	if t.CargoID == nil {
		if err := tx.Model(&t).Update("cargo_id", id).Error; err != nil {
			return fmt.Errorf("assign cargo %s: %w", rut, err)
		}
	}
	c.actualizado(f, zap.String("rut", rut), zap.String("cargo", nombre))
	return nil
}

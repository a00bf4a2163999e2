package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/grupocs/rrhh/internal/models"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Trabajadores creates or completes workers keyed by rut. Existing values
// are never overwritten.
func (im *Importer) Trabajadores(ctx context.Context, r io.Reader) (Result, error) {
	return im.run(ctx, "trabajadores", r, func(tx *gorm.DB, c *corrida) (func(f fila) error, error) {
		obras, err := cargarIndice(tx, "obras", "nombre")
		if err != nil {
			return nil, err
		}
		bancos, err := cargarIndice(tx, "bancos", "nombre")
		if err != nil {
			return nil, err
		}
		return func(f fila) error { return importarTrabajador(tx, c, f, obras, bancos) }, nil
	})
}

func importarTrabajador(tx *gorm.DB, c *corrida, f fila, obras, bancos indice) error {
	rut := f.get("rut")
	if rut == "" {
		c.saltado(f, "sin_rut")
		return nil
	}
	log := zap.String("rut", rut)

	var t models.Trabajador
	err := tx.Where("rut = ?", rut).First(&t).Error
	nuevo := errors.Is(err, gorm.ErrRecordNotFound)
	if err != nil && !nuevo {
		return fmt.Errorf("lookup trabajador %s: %w", rut, err)
	}

	if obra := f.get("obra"); obra != "" {
		id, ok := obras.buscar(obra)
		if !ok {
			c.saltado(f, "obra_desconocida", log, zap.String("obra", obra))
			return nil
		}
		if nuevo {
			t.ObraID = id
		}
	} else if nuevo {
		c.saltado(f, "sin_obra", log)
		return nil
	}

	if nuevo {
		t.RUT = rut
		if f.get("nombres") == "" || f.get("ap_paterno") == "" {
			c.saltado(f, "sin_nombre", log)
			return nil
		}
	}

	llenar(&t.DV, f.get("dv"))
	llenar(&t.Nombres, f.get("nombres"))
	llenar(&t.ApPaterno, f.get("ap_paterno"))
	llenar(&t.ApMaterno, f.get("ap_materno"))
	llenar(&t.Nacionalidad, f.get("nacionalidad"))
	llenar(&t.Sexo, normalizarSexo(f.get("sexo")))
	llenar(&t.EstadoCivil, f.get("estado_civil"))
	llenar(&t.Direccion, f.get("direccion", "direccion_trabajador"))
	llenar(&t.Comuna, f.get("comuna", "comuna_trabajador"))
	llenar(&t.Telefono, f.get("telefono", "fono"))
	llenar(&t.TelefonoEmergencia, f.get("telefono_emergencia", "fono_emergencia"))
	llenar(&t.Correo, f.get("correo", "correo_electronico"))
	llenar(&t.CuentaNumero, f.get("cuenta_numero", "numero_cta_bancaria"))
	llenar(&t.EstadoTrabajador, estadoDesdeFila(f))
	if t.DV == "" {
		t.DV = models.DVDesdeRUT(t.RUT)
	}
	if t.EstadoTrabajador == "" {
		t.EstadoTrabajador = models.TrabajadorVigente
	}
	llenarFecha(c, f, &t.FechaNacimiento, "fecha_nacimiento")
	llenarFecha(c, f, &t.FechaIngresoEmpresa, "fecha_ingreso", "fecha_ingreso_empresa")

	if banco := f.get("banco"); banco != "" && t.BancoID == nil {
		if id, ok := bancos.buscar(banco); ok {
			t.BancoID = &id
		} else {
			c.aviso(f, "banco no encontrado", log, zap.String("banco", banco))
		}
	}

	if nuevo {
		if err := tx.Create(&t).Error; err != nil {
			return fmt.Errorf("create trabajador %s: %w", rut, err)
		}
		c.creado(f, log, zap.String("nombre", t.NombreCompleto()))
		return nil
	}
	if err := tx.Omit(clause.Associations).Save(&t).Error; err != nil {
		return fmt.Errorf("update trabajador %s: %w", rut, err)
	}
	c.actualizado(f, log, zap.String("nombre", t.NombreCompleto()))
	return nil
}

// estadoDesdeFila reads estado_trabajador, falling back to the vigencia_mes
// column (SI means VIGENTE, anything else DESVINCULADO).
func estadoDesdeFila(f fila) string {
	if e := strings.ToUpper(f.get("estado_trabajador")); e != "" {
		return e
	}
	switch strings.ToUpper(f.get("vigencia_mes")) {
	case "":
		return ""
	case "SI", "SÍ":
		return models.TrabajadorVigente
	default:
		return models.TrabajadorDesvinculado
	}
}

func llenarFecha(c *corrida, f fila, dst **datatypes.Date, alias ...string) {
	v := f.get(alias...)
	if *dst != nil || v == "" {
		return
	}
	d, ok := parseFecha(v)
	if !ok {
		c.aviso(f, "fecha inválida", zap.String("columna", alias[0]), zap.String("valor", v))
		return
	}
	*dst = d
}

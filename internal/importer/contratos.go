package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/grupocs/rrhh/internal/models"
	"github.com/grupocs/rrhh/internal/services"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type indicesContrato struct {
	trabajadores map[string]uint
	obras        indice
	empleadores  indice
	cargos       indice
}

// Contratos loads contracts keyed by worker, employer and start date. A row
// that would open a second VIGENTE contract for the same pair is skipped.
func (im *Importer) Contratos(ctx context.Context, r io.Reader) (Result, error) {
	return im.run(ctx, "contratos", r, func(tx *gorm.DB, c *corrida) (func(f fila) error, error) {
		var ix indicesContrato
		var err error
		if ix.obras, err = cargarIndice(tx, "obras", "nombre"); err != nil {
			return nil, err
		}
		if ix.empleadores, err = cargarIndice(tx, "empleadores", "razon_social"); err != nil {
			return nil, err
		}
		if ix.cargos, err = cargarIndice(tx, "cargos", "nombre"); err != nil {
			return nil, err
		}
		var ts []models.Trabajador
		if err := tx.Select("id", "rut").Find(&ts).Error; err != nil {
			return nil, fmt.Errorf("load trabajadores: %w", err)
		}
		ix.trabajadores = make(map[string]uint, len(ts))
		for _, t := range ts {
			ix.trabajadores[strings.TrimSpace(t.RUT)] = t.ID
		}
		c.log.Debug("reference data loaded",
			zap.Int("trabajadores", len(ix.trabajadores)),
			zap.Int("obras", len(ix.obras)),
			zap.Int("empleadores", len(ix.empleadores)),
			zap.Int("cargos", len(ix.cargos)))
		return func(f fila) error { return importarContrato(tx, c, f, ix) }, nil
	})
}

func importarContrato(tx *gorm.DB, c *corrida, f fila, ix indicesContrato) error {
	rut := f.get("rut")
	if rut == "" {
		c.saltado(f, "sin_rut")
		return nil
	}
	log := zap.String("rut", rut)
	trabajadorID, ok := ix.trabajadores[rut]
	if !ok {
		c.saltado(f, "trabajador_no_encontrado", log)
		return nil
	}
	nuevo := models.Contrato{TrabajadorID: trabajadorID}
	refs := []struct {
		motivo, valor string
		idx           indice
		dst           **uint
	}{
		{"obra_no_encontrada", f.get("obra"), ix.obras, &nuevo.ObraID},
		{"empleador_no_encontrado", f.get("empleador"), ix.empleadores, &nuevo.EmpleadorID},
		{"cargo_no_encontrado", f.get("cargo"), ix.cargos, &nuevo.CargoID},
	}
	for _, ref := range refs {
		id, ok := ref.idx.buscar(ref.valor)
		if !ok {
			c.saltado(f, ref.motivo, log, zap.String("valor", ref.valor))
			return nil
		}
		*ref.dst = &id
	}
	nuevo.TipoContrato = strings.ToUpper(f.get("tipo_contrato"))
	if nuevo.TipoContrato == "" {
		c.saltado(f, "sin_tipo_contrato", log)
		return nil
	}

	leerCamposContrato(c, f, &nuevo)

	var actual models.Contrato
	q := tx.Where("trabajador_id = ? AND empleador_id = ?", trabajadorID, *nuevo.EmpleadorID)
	if nuevo.FechaInicio == nil {
		q = q.Where("fecha_inicio IS NULL")
	} else {
		q = q.Where("fecha_inicio = ?", *nuevo.FechaInicio)
	}
	err := q.First(&actual).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := services.CreateContratoTx(tx, &nuevo); err != nil {
			if errors.Is(err, services.ErrContratoVigente) {
				c.saltado(f, "vigente_existente", log)
				return nil
			}
			return err
		}
		c.creado(f, log, zap.Uint("contrato_id", nuevo.ID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup contrato %s: %w", rut, err)
	}

	completarContrato(&actual, &nuevo)
	if err := tx.Omit(clause.Associations).Save(&actual).Error; err != nil {
		return fmt.Errorf("update contrato %d: %w", actual.ID, err)
	}
	c.actualizado(f, log, zap.Uint("contrato_id", actual.ID))
	return nil
}

func leerCamposContrato(c *corrida, f fila, k *models.Contrato) {
	fechas := []struct {
		dst   **datatypes.Date
		alias []string
	}{
		{&k.FechaInicio, []string{"fecha_inicio"}},
		{&k.FechaTermino, []string{"fecha_termino"}},
		{&k.FechaFiniquito, []string{"fecha_finiquito"}},
	}
	for _, fd := range fechas {
		llenarFecha(c, f, fd.dst, fd.alias...)
	}
	montos := []struct {
		dst   **float64
		alias []string
	}{
		{&k.SueldoBase, []string{"sueldo_base"}},
		{&k.AsignacionMovilizacion, []string{"asig_movilizacion", "asignacion_movilizacion"}},
		{&k.AsignacionColacion, []string{"asig_colacion", "asignacion_colacion"}},
		{&k.AsignacionHerramientas, []string{"asig_herramientas", "asignacion_herramientas"}},
	}
	for _, m := range montos {
		v := f.get(m.alias...)
		n, ok := parseMonto(v)
		if !ok {
			c.aviso(f, "monto inválido", zap.String("columna", m.alias[0]), zap.String("valor", v))
		}
		*m.dst = n
	}
	if v := f.get("horas_semanales"); v != "" {
		n, ok := parseEntero(v)
		if !ok {
			c.aviso(f, "entero inválido", zap.String("columna", "horas_semanales"), zap.String("valor", v))
		}
		k.HorasSemanales = n
	}
	k.Jornada = f.get("jornada")
	k.CausalTermino = f.get("causal_termino")
	k.EstadoContrato = strings.ToUpper(f.get("estado_contrato"))
	if k.EstadoContrato == "" {
		k.EstadoContrato = models.ContratoVigente
	}
}

// completarContrato copies into dst only the fields dst lacks.
func completarContrato(dst, src *models.Contrato) {
	if dst.ObraID == nil {
		dst.ObraID = src.ObraID
	}
	if dst.CargoID == nil {
		dst.CargoID = src.CargoID
	}
	llenar(&dst.TipoContrato, src.TipoContrato)
	llenar(&dst.Jornada, src.Jornada)
	llenar(&dst.CausalTermino, src.CausalTermino)
	for _, p := range []struct{ dst, src **datatypes.Date }{
		{&dst.FechaTermino, &src.FechaTermino},
		{&dst.FechaFiniquito, &src.FechaFiniquito},
	} {
		if *p.dst == nil {
			*p.dst = *p.src
		}
	}
	for _, p := range []struct{ dst, src **float64 }{
		{&dst.SueldoBase, &src.SueldoBase},
		{&dst.AsignacionMovilizacion, &src.AsignacionMovilizacion},
		{&dst.AsignacionColacion, &src.AsignacionColacion},
		{&dst.AsignacionHerramientas, &src.AsignacionHerramientas},
	} {
		if *p.dst == nil {
			*p.dst = *p.src
		}
	}
	if dst.HorasSemanales == nil {
		dst.HorasSemanales = src.HorasSemanales
	}
}

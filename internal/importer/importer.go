// Package importer loads spreadsheet exports into the database. Each run is
// one transaction; rows that cannot be applied are logged and skipped.
package importer

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/grupocs/rrhh/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	Creado      = "CREADO"
	Actualizado = "ACTUALIZADO"
	Saltado     = "SALTADO"
)

// Result counts row outcomes. Motivos breaks skipped rows down by reason.
type Result struct {
	Filas        int
	Creados      int
	Actualizados int
	Saltados     int
	Motivos      map[string]int
}

func (r Result) String() string {
	s := fmt.Sprintf("filas=%d creados=%d actualizados=%d saltados=%d", r.Filas, r.Creados, r.Actualizados, r.Saltados)
	keys := make([]string, 0, len(r.Motivos))
	for k := range r.Motivos {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s += fmt.Sprintf(" %s=%d", k, r.Motivos[k])
	}
	return s
}

type Importer struct {
	db  *gorm.DB
	log *zap.Logger
}

func New(db *gorm.DB, log *zap.Logger) *Importer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Importer{db: db, log: log}
}

// corrida tracks one import run.
type corrida struct {
	log *zap.Logger
	res Result
}

func (c *corrida) creado(f fila, fields ...zap.Field) {
	c.res.Creados++
	c.log.Info(Creado, append([]zap.Field{zap.Int("fila", f.n)}, fields...)...)
}

func (c *corrida) actualizado(f fila, fields ...zap.Field) {
	c.res.Actualizados++
	c.log.Info(Actualizado, append([]zap.Field{zap.Int("fila", f.n)}, fields...)...)
}

func (c *corrida) saltado(f fila, motivo string, fields ...zap.Field) {
	c.res.Saltados++
	c.res.Motivos[motivo]++
	c.log.Warn(Saltado, append([]zap.Field{zap.Int("fila", f.n), zap.String("motivo", motivo)}, fields...)...)
}

func (c *corrida) aviso(f fila, msg string, fields ...zap.Field) {
	c.log.Warn(msg, append([]zap.Field{zap.Int("fila", f.n)}, fields...)...)
}

// procesador is built once per run, inside the transaction, and then
// applied to every row.
type procesador func(tx *gorm.DB, c *corrida) (func(f fila) error, error)

// run parses r and applies the rows inside a single transaction.
func (im *Importer) run(ctx context.Context, nombre string, r io.Reader, p procesador) (Result, error) {
	filas, err := leerCSV(r)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", nombre, err)
	}
	c := &corrida{log: im.log.With(zap.String("import", nombre)), res: Result{Motivos: map[string]int{}}}
	c.log.Info("import started", zap.Int("filas", len(filas)))

	err = im.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fn, err := p(tx, c)
		if err != nil {
			return err
		}
		for _, f := range filas {
			if err := ctx.Err(); err != nil {
				return err
			}
			c.res.Filas++
			if err := fn(f); err != nil {
				return fmt.Errorf("row %d: %w", f.n, err)
			}
		}
		return nil
	})
	if err != nil {
		c.log.Error("import rolled back", zap.Error(err))
		return c.res, fmt.Errorf("%s: %w", nombre, err)
	}
	c.log.Info("import finished",
		zap.Int("creados", c.res.Creados),
		zap.Int("actualizados", c.res.Actualizados),
		zap.Int("saltados", c.res.Saltados))
	return c.res, nil
}

// indice maps lookup keys (see models.ClaveNombre) to ids.
type indice map[string]uint

func cargarIndice(tx *gorm.DB, table, column string) (indice, error) {
	var rows []struct {
		ID     uint
		Nombre string
	}
	if err := tx.Table(table).Select("id, " + column + " AS nombre").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("load %s: %w", table, err)
	}
	idx := make(indice, len(rows))
	for _, r := range rows {
		k := models.ClaveNombre(r.Nombre)
		if _, ok := idx[k]; !ok {
			idx[k] = r.ID
		}
	}
	return idx, nil
}

func (i indice) buscar(nombre string) (uint, bool) {
	id, ok := i[models.ClaveNombre(nombre)]
	return id, ok
}

package db

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/grupocs/rrhh/internal/models"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed seed.yaml
var seedYAML []byte

// Catalogo is the reference data shipped with the binary.
type Catalogo struct {
	AFP               []string    `yaml:"afp"`
	Salud             []SaludSeed `yaml:"salud"`
	CajasCompensacion []string    `yaml:"cajas_compensacion"`
	Mutuales          []string    `yaml:"mutuales"`
	Bancos            []BancoSeed `yaml:"bancos"`
}

type SaludSeed struct {
	Nombre string `yaml:"nombre"`
	Tipo   string `yaml:"tipo"`
}

type BancoSeed struct {
	CodigoSBIF string `yaml:"codigo_sbif"`
	Nombre     string `yaml:"nombre"`
}

// LoadCatalogo parses the embedded seed catalogue.
func LoadCatalogo() (*Catalogo, error) {
	var c Catalogo
	if err := yaml.Unmarshal(seedYAML, &c); err != nil {
		return nil, fmt.Errorf("parse seed catalogue: %w", err)
	}
	return &c, nil
}

// Seed inserts missing reference data. Running it again creates nothing new.
func Seed(db *gorm.DB) error {
	cat, err := LoadCatalogo()
	if err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		for _, nombre := range cat.AFP {
			if err := firstOrCreate(tx, &models.AFP{}, "nombre = ?", nombre, &models.AFP{Nombre: nombre}); err != nil {
				return err
			}
		}
		for _, s := range cat.Salud {
			if err := firstOrCreate(tx, &models.Salud{}, "nombre = ?", s.Nombre, &models.Salud{Nombre: s.Nombre, Tipo: s.Tipo}); err != nil {
				return err
			}
		}
		for _, nombre := range cat.CajasCompensacion {
			if err := firstOrCreate(tx, &models.CajaCompensacion{}, "nombre = ?", nombre, &models.CajaCompensacion{Nombre: nombre}); err != nil {
				return err
			}
		}
		for _, nombre := range cat.Mutuales {
			if err := firstOrCreate(tx, &models.Mutual{}, "nombre = ?", nombre, &models.Mutual{Nombre: nombre}); err != nil {
				return err
			}
		}
		for _, b := range cat.Bancos {
			if err := seedBanco(tx, b.CodigoSBIF, b.Nombre); err != nil {
				return err
			}
		}
		return nil
	})
}

func firstOrCreate(tx *gorm.DB, dest any, query string, arg any, row any) error {
	err := tx.Where(query, arg).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := tx.Create(row).Error; err != nil {
			return fmt.Errorf("seed %T %v: %w", row, arg, err)
		}
		return nil
	}
	return err
}

// seedBanco matches by SBIF code, then by name; an existing bank without a
// code gets it filled in.
func seedBanco(tx *gorm.DB, codigo, nombre string) error {
	var existing models.Banco
	err := tx.Where("codigo_sbif = ?", codigo).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	err = tx.Where("nombre = ?", nombre).First(&existing).Error
	switch {
	case err == nil:
		if existing.CodigoSBIF == "" {
			return tx.Model(&existing).Update("codigo_sbif", codigo).Error
		}
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return tx.Create(&models.Banco{Nombre: nombre, CodigoSBIF: codigo}).Error
	default:
		return err
	}
}

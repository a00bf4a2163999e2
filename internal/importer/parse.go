package importer

import (
	"strconv"
	"strings"
	"time"

	"gorm.io/datatypes"
)

var formatosFecha = []string{"02-01-2006", "2006-01-02", "02/01/2006"}

func parseFecha(s string) (*datatypes.Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	for _, layout := range formatosFecha {
		if t, err := time.Parse(layout, s); err == nil {
			d := datatypes.Date(t)
			return &d, true
		}
	}
	return nil, false
}

// parseEntero accepts thousands separators: "1.200" -> 1200.
func parseEntero(s string) (*int, bool) {
	s = strings.NewReplacer(".", "", ",", "", " ", "").Replace(strings.TrimSpace(s))
	if s == "" {
		return nil, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, false
	}
	return &n, true
}

// parseMonto reads Chilean formatted amounts: "450.000,50" -> 450000.5.
func parseMonto(s string) (*float64, bool) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	s = strings.ReplaceAll(strings.ReplaceAll(s, " ", ""), ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, false
	}
	return &v, true
}

func normalizarSexo(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(s, "M"):
		return "M"
	case strings.HasPrefix(s, "F"):
		return "F"
	}
	return ""
}

// llenar sets *dst only when it is empty. It reports whether it wrote.
func llenar(dst *string, v string) bool {
	v = strings.TrimSpace(v)
	if strings.TrimSpace(*dst) != "" || v == "" {
		return false
	}
	*dst = v
	return true
}

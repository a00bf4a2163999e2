package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/grupocs/rrhh/internal/models"
)

// fila is one CSV row keyed by normalized header.
type fila struct {
	n      int
	campos map[string]string
}

// get returns the first non-empty value among the given column aliases.
func (f fila) get(alias ...string) string {
	for _, a := range alias {
		if v := strings.TrimSpace(f.campos[a]); v != "" {
			return v
		}
	}
	return ""
}

// normalizarEncabezado maps "Correo electrónico" to "correo_electronico"
// and "Ap. Paterno" to "ap_paterno".
func normalizarEncabezado(h string) string {
	s := models.ClaveNombre(h)
	var b strings.Builder
	sep := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if sep && b.Len() > 0 {
				b.WriteByte('_')
			}
			sep = false
			b.WriteRune(r)
			continue
		}
		sep = true
	}
	return b.String()
}

func detectarSeparador(header []byte) rune {
	if bytes.Count(header, []byte(";")) > bytes.Count(header, []byte(",")) {
		return ';'
	}
	return ','
}

// leerCSV reads the whole file. Leading BOM is dropped and the delimiter is
// chosen from the header line.
func leerCSV(r io.Reader) ([]fila, error) {
	br := bufio.NewReader(r)
	if b, err := br.Peek(3); err == nil && bytes.Equal(b, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = br.Discard(3)
	}
	head, _ := br.Peek(4096)
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}

	cr := csv.NewReader(br)
	cr.Comma = detectarSeparador(head)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = normalizarEncabezado(h)
	}

	var out []fila
	for n := 1; ; n++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", n, err)
		}
		f := fila{n: n, campos: make(map[string]string, len(cols))}
		empty := true
		for i, v := range rec {
			if i >= len(cols) {
				break
			}
			if strings.TrimSpace(v) != "" {
				empty = false
			}
			if _, dup := f.campos[cols[i]]; !dup {
				f.campos[cols[i]] = v
			}
		}
		if !empty {
			out = append(out, f)
		}
	}
	return out, nil
}

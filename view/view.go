package view

import (
	"bytes"
	"crypto/sha1"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/grupocs/rrhh/i18n"
	"github.com/grupocs/rrhh/internal/models"
	"github.com/grupocs/rrhh/session"
	"gorm.io/datatypes"
)

//go:embed templates
var embedded embed.FS

var (
	templatesFS fs.FS = mustSub(embedded, "templates")
	tplCache          = struct {
		sync.RWMutex
		m map[string]*template.Template
	}{m: map[string]*template.Template{}}

	staticDir = "static"
)

func mustSub(f fs.FS, dir string) fs.FS {
	s, err := fs.Sub(f, dir)
	if err != nil {
		panic(err)
	}
	return s
}

// SetTemplatesDir serves templates from disk instead of the embedded copy,
// so edits show up without rebuilding when DEV=1.
func SetTemplatesDir(dir string) {
	if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
		templatesFS = os.DirFS(dir)
		ResetForTests()
	}
}

// ResetForTests clears the template cache.
func ResetForTests() {
	tplCache.Lock()
	tplCache.m = map[string]*template.Template{}
	tplCache.Unlock()
}

// Funcs returns the standard func map including i18n and simple helpers.
func Funcs(r *http.Request) template.FuncMap {
	lang := i18n.LangFromContext(r.Context())
	return template.FuncMap{
		"t":       func(code string) string { return i18n.T(lang, code) },
		"lang":    func() string { return lang },
		"asset":   versionedAsset,
		"fecha":   func(d *datatypes.Date) string { return models.FormatoFecha(d, "") },
		"monto":   formatMonto,
		"tipoDoc": models.EtiquetaTipoDocumento,
		"idEq": func(a *uint, b uint) bool {
			return a != nil && *a == b
		},
		"add":     func(a, b int) int { return a + b },
		"pageURL": func(page int) template.URL { return pageURL(r, page) },
		// dict creates a map from key-value pairs for passing to sub-templates.
		// Usage: {{ template "partial" (dict "Key1" val1 "Key2" val2) }}
		"dict": func(values ...any) map[string]any {
			if len(values)%2 != 0 {
				return nil
			}
			m := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					continue
				}
				m[key] = values[i+1]
			}
			return m
		},
	}
}

// pageURL keeps the current filters and replaces the page parameter.
func pageURL(r *http.Request, page int) template.URL {
	q := r.URL.Query()
	q.Set("page", strconv.Itoa(page))
	return template.URL(r.URL.Path + "?" + q.Encode())
}

// formatMonto renders pesos with dot thousands separators: 1234567 -> $1.234.567.
func formatMonto(v *float64) string {
	if v == nil {
		return ""
	}
	sign := ""
	if *v < 0 {
		sign = "-"
	}
	s := strconv.FormatInt(int64(math.Round(math.Abs(*v))), 10)
	if s == "0" {
		sign = ""
	}
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(c)
	}
	return sign + "$" + b.String()
}

// versionedAsset returns /static/<name>?v=<hash> for cache busting.
func versionedAsset(rel string) string {
	if strings.HasPrefix(rel, "http://") || strings.HasPrefix(rel, "https://") || strings.HasPrefix(rel, "//") {
		return rel
	}
	b, err := os.ReadFile(filepath.Join(staticDir, rel))
	if err != nil {
		return "/static/" + rel
	}
	h := sha1.Sum(b)
	return "/static/" + rel + "?v=" + fmt.Sprintf("%x", h[:8])
}

func load(r *http.Request, name string) (*template.Template, error) {
	devMode := os.Getenv("DEV") == "1"
	if !devMode {
		tplCache.RLock()
		t, ok := tplCache.m[name]
		tplCache.RUnlock()
		if ok {
			return t, nil
		}
	}
	// Funcs are rebound per request on a clone in RenderStatus.
	t, err := template.New("layout.html").Funcs(Funcs(r)).ParseFS(templatesFS, "layout.html", "partials/*.html", name)
	if err != nil {
		return nil, err
	}
	if !devMode {
		tplCache.Lock()
		tplCache.m[name] = t
		tplCache.Unlock()
	}
	return t, nil
}

// RenderStatus executes the page into a buffer first so a template error
// still produces a clean 500.
func RenderStatus(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) error {
	if data == nil {
		data = map[string]any{}
	}
	if _, exists := data["Year"]; !exists {
		data["Year"] = time.Now().Year()
	}
	if fl, ok := session.FromContext(r.Context()); ok {
		data["Flash"] = fl
	}
	data["Path"] = r.URL.Path

	t, err := load(r, name)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return err
	}
	t, err = t.Clone()
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return err
	}
	var buf bytes.Buffer
	if err := t.Funcs(Funcs(r)).Execute(&buf, data); err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}

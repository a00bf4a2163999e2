package main

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/grupocs/rrhh/httpx"
	"github.com/grupocs/rrhh/i18n"
	"github.com/grupocs/rrhh/internal/config"
	"github.com/grupocs/rrhh/internal/docs"
	"github.com/grupocs/rrhh/internal/handlers"
	"github.com/grupocs/rrhh/internal/services"
	"github.com/grupocs/rrhh/session"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux     *http.ServeMux
	handler http.Handler
	log     *zap.Logger
}

// NewApp wires services and handlers over db and returns the routed app.
func NewApp(db *gorm.DB, cfg *config.Config, log *zap.Logger) *App {
	app := &App{mux: http.NewServeMux(), log: log}

	flash := session.NewFlashes(cfg.App.SecretKey)
	locator := docs.NewLocator(cfg.Docs.Root, cfg.Docs.BasePathTmpl)

	ts := services.NewTrabajadorService(db)
	cs := services.NewContratoService(db)
	obras := services.NewObraService(db)
	es := services.NewEmpleadorService(db)
	cat := services.NewCatalogoService(db)
	ds := services.NewDocumentoService(db, locator)

	app.setupRoutes(routes{
		core:         handlers.NewCoreHandler(db),
		trabajadores: handlers.NewTrabajadorHandler(ts, obras, cat, locator, flash, log),
		contratos:    handlers.NewContratoHandler(cs, ts, cat, flash, log),
		obras:        handlers.NewObraHandler(obras, es, flash, log),
		empleadores:  handlers.NewEmpleadorHandler(es, cat, flash, log),
		documentos:   handlers.NewDocumentoHandler(ds, cs, flash, log),
	})

	var h http.Handler = flash.Middleware(withPreferences(app.mux))
	if len(cfg.Server.CORSOrigins) > 0 {
		h = cors.New(cors.Options{
			AllowedOrigins: cfg.Server.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		}).Handler(h)
	}
	app.handler = app.withRequestLog(app.withRecover(h))
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

type routes struct {
	core         *handlers.CoreHandler
	trabajadores *handlers.TrabajadorHandler
	contratos    *handlers.ContratoHandler
	obras        *handlers.ObraHandler
	empleadores  *handlers.EmpleadorHandler
	documentos   *handlers.DocumentoHandler
}

func (a *App) setupRoutes(h routes) {
	a.mux.HandleFunc("GET /{$}", h.trabajadores.List)
	a.mux.HandleFunc("GET /ping", h.core.Ping)
	a.mux.HandleFunc("GET /healthz", h.core.Healthz)

	// Workers
	a.mux.HandleFunc("GET /trabajadores/nuevo", h.trabajadores.New)
	a.mux.HandleFunc("POST /trabajadores/nuevo", h.trabajadores.Create)
	a.mux.HandleFunc("GET /trabajadores/{id}", h.trabajadores.View)
	a.mux.HandleFunc("GET /trabajadores/{id}/editar", h.trabajadores.Edit)
	a.mux.HandleFunc("POST /trabajadores/{id}/editar", h.trabajadores.Update)
	a.mux.HandleFunc("GET /trabajadores/{id}/carpeta", h.trabajadores.Carpeta)

	// Contracts
	a.mux.HandleFunc("GET /contratos/{$}", h.contratos.List)
	a.mux.HandleFunc("GET /contratos/nuevo", h.contratos.New)
	a.mux.HandleFunc("POST /contratos/nuevo", h.contratos.Create)
	a.mux.HandleFunc("GET /contratos/{id}", h.contratos.View)

	// Job sites and employers
	a.mux.HandleFunc("GET /obras/{$}", h.obras.List)
	a.mux.HandleFunc("GET /obras/nueva", h.obras.New)
	a.mux.HandleFunc("POST /obras/nueva", h.obras.Create)
	a.mux.HandleFunc("GET /empleadores/{$}", h.empleadores.List)
	a.mux.HandleFunc("GET /empleadores/nuevo", h.empleadores.New)
	a.mux.HandleFunc("POST /empleadores/nuevo", h.empleadores.Create)
	a.mux.HandleFunc("GET /empleadores/{id}", h.empleadores.View)

	// Labor documents
	a.mux.HandleFunc("GET /documentos/contrato/{id}", h.documentos.List)
	a.mux.HandleFunc("GET /documentos/contrato/{id}/nuevo", h.documentos.New)
	a.mux.HandleFunc("POST /documentos/contrato/{id}/nuevo", h.documentos.Create)

	a.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))
}

// statusRecorder keeps the response status for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// withRequestLog tags each request with an id and logs it once served.
func (a *App) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		a.log.Info("request",
			zap.String("request_id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

// withRecover answers a panicking handler with 500 instead of dropping the connection.
func (a *App) withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				a.log.Error("panic serving request", zap.Any("panic", v), zap.String("path", r.URL.Path))
				if httpx.WantsJSON(r) {
					httpx.JSONError(w, http.StatusInternalServerError, "internal error", nil)
					return
				}
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// withPreferences resolves the UI language from ?lang=, the lang cookie or
// Accept-Language, in that order.
func withPreferences(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := i18n.DetectLanguage(r.Header.Get("Accept-Language"))
		if c, err := r.Cookie("lang"); err == nil && c.Value != "" {
			lang = i18n.DetectLanguage(c.Value)
		}
		if q := r.URL.Query().Get("lang"); q != "" {
			lang = i18n.DetectLanguage(q)
			http.SetCookie(w, &http.Cookie{
				Name:     "lang",
				Value:    lang,
				Path:     "/",
				MaxAge:   86400 * 365,
				HttpOnly: true,
			})
		}
		next.ServeHTTP(w, r.WithContext(i18n.WithLang(r.Context(), lang)))
	})
}

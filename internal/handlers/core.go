package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/grupocs/rrhh/httpx"
	"gorm.io/gorm"
)

type CoreHandler struct {
	db *gorm.DB
}

func NewCoreHandler(db *gorm.DB) *CoreHandler {
	return &CoreHandler{db: db}
}

func (h *CoreHandler) Ping(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "RRHH app online 🤝"})
}

// Healthz checks that the database answers.
func (h *CoreHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.WithContext(ctx).Exec("SELECT 1").Error; err != nil {
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "error", "database": err.Error()})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok", "database": "ok"})
}

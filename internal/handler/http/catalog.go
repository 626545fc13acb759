package http

import (
	"log/slog"
	"net/http"

	"github.com/Luiza-Bandeira/VarandaJK/internal/domain"
	"github.com/Luiza-Bandeira/VarandaJK/internal/service"
	"github.com/Luiza-Bandeira/VarandaJK/pkg/httputil"
)

// CatalogHandler serves the menu.
type CatalogHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(svc *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: svc,
		logger:  logger,
	}
}

// GetMenu handles GET /api/v1/menu
func (h *CatalogHandler) GetMenu(w http.ResponseWriter, r *http.Request) {
	menu, err := h.service.Menu(r.Context())
	if err != nil {
		w.Header().Set("Cache-Control", "no-store")
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if loaded := h.service.LoadedAt(); !loaded.IsZero() {
		w.Header().Set("Last-Modified", loaded.Format(http.TimeFormat))
	}
	httputil.WriteData(w, http.StatusOK, menu)
}

// ListIcons handles GET /api/v1/menu/icons
func (h *CatalogHandler) ListIcons(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, domain.SupportedIcons())
}

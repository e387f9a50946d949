package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/wishwell/internal/service"
	"github.com/utafrali/wishwell/pkg/httputil"
	"github.com/utafrali/wishwell/pkg/middleware"
)

// SharedLinkHandler handles HTTP requests for shared link endpoints.
type SharedLinkHandler struct {
	service *service.SharedLinkService
	logger  *slog.Logger
}

// NewSharedLinkHandler creates a new shared link HTTP handler.
func NewSharedLinkHandler(svc *service.SharedLinkService, logger *slog.Logger) *SharedLinkHandler {
	return &SharedLinkHandler{
		service: svc,
		logger:  logger,
	}
}

// Create handles POST /api/v1/wishlists/{wishlistID}/share
func (h *SharedLinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	wishlistID, ok := httputil.ParseUUID(w, chi.URLParam(r, "wishlistID"))
	if !ok {
		return
	}

	link, err := h.service.GetOrCreateShareLink(r.Context(), middleware.UserIDFromContext(r.Context()), wishlistID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: link})
}

// Resolve handles GET /api/v1/shared-links/{code}
//
// The share code is a public capability: anonymous callers are welcome,
// authenticated non-owners get a visit recorded.
func (h *SharedLinkHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	resolved, err := h.service.ResolveShareLink(r.Context(), middleware.UserIDFromContext(r.Context()), code)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: resolved})
}

// SharedWithMe handles GET /api/v1/shared-with-me
func (h *SharedLinkHandler) SharedWithMe(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.ListSharedWithMe(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: groups})
}

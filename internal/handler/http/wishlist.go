package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/wishwell/internal/service"
	"github.com/utafrali/wishwell/pkg/httputil"
	"github.com/utafrali/wishwell/pkg/middleware"
	"github.com/utafrali/wishwell/pkg/validator"
)

// WishlistHandler handles HTTP requests for wishlist and item endpoints.
type WishlistHandler struct {
	service *service.WishlistService
	logger  *slog.Logger
}

// NewWishlistHandler creates a new wishlist HTTP handler.
func NewWishlistHandler(svc *service.WishlistService, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{
		service: svc,
		logger:  logger,
	}
}

// Create handles POST /api/v1/wishlists
func (h *WishlistHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateWishlistInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	wishlist, err := h.service.CreateWishlist(r.Context(), middleware.UserIDFromContext(r.Context()), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: wishlist})
}

// List handles GET /api/v1/wishlists
func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	wishlists, err := h.service.ListWishlists(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: wishlists})
}

// Get handles GET /api/v1/wishlists/{wishlistID}
func (h *WishlistHandler) Get(w http.ResponseWriter, r *http.Request) {
	wishlistID, ok := httputil.ParseUUID(w, chi.URLParam(r, "wishlistID"))
	if !ok {
		return
	}

	wishlist, err := h.service.GetWishlist(r.Context(), middleware.UserIDFromContext(r.Context()), wishlistID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: wishlist})
}

// Update handles PUT /api/v1/wishlists/{wishlistID}
func (h *WishlistHandler) Update(w http.ResponseWriter, r *http.Request) {
	wishlistID, ok := httputil.ParseUUID(w, chi.URLParam(r, "wishlistID"))
	if !ok {
		return
	}

	var req service.UpdateWishlistInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	wishlist, err := h.service.UpdateWishlist(r.Context(), middleware.UserIDFromContext(r.Context()), wishlistID, req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: wishlist})
}

// Reorder handles PUT /api/v1/wishlists/reorder
func (h *WishlistHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req service.ReorderWishlistsInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.service.ReorderWishlists(r.Context(), middleware.UserIDFromContext(r.Context()), req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "reordered"}})
}

// Delete handles DELETE /api/v1/wishlists/{wishlistID}
func (h *WishlistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	wishlistID, ok := httputil.ParseUUID(w, chi.URLParam(r, "wishlistID"))
	if !ok {
		return
	}

	if err := h.service.DeleteWishlist(r.Context(), middleware.UserIDFromContext(r.Context()), wishlistID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "deleted"}})
}

// ListItems handles GET /api/v1/wishlists/{wishlistID}/items
func (h *WishlistHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	wishlistID, ok := httputil.ParseUUID(w, chi.URLParam(r, "wishlistID"))
	if !ok {
		return
	}

	items, err := h.service.ListItems(r.Context(), middleware.UserIDFromContext(r.Context()), wishlistID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: items})
}

// AddItem handles POST /api/v1/wishlists/{wishlistID}/items
func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	wishlistID, ok := httputil.ParseUUID(w, chi.URLParam(r, "wishlistID"))
	if !ok {
		return
	}

	var req service.ItemInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	item, err := h.service.AddItem(r.Context(), middleware.UserIDFromContext(r.Context()), wishlistID, req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: item})
}

// UpdateItem handles PUT /api/v1/items/{itemID}
func (h *WishlistHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := httputil.ParseUUID(w, chi.URLParam(r, "itemID"))
	if !ok {
		return
	}

	var req service.ItemInput
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	item, err := h.service.UpdateItem(r.Context(), middleware.UserIDFromContext(r.Context()), itemID, req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: item})
}

// DeleteItem handles DELETE /api/v1/items/{itemID}
func (h *WishlistHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := httputil.ParseUUID(w, chi.URLParam(r, "itemID"))
	if !ok {
		return
	}

	if err := h.service.DeleteItem(r.Context(), middleware.UserIDFromContext(r.Context()), itemID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "deleted"}})
}

// ToggleReservation handles POST /api/v1/items/{itemID}/reserve
func (h *WishlistHandler) ToggleReservation(w http.ResponseWriter, r *http.Request) {
	itemID, ok := httputil.ParseUUID(w, chi.URLParam(r, "itemID"))
	if !ok {
		return
	}

	result, err := h.service.ToggleReservation(r.Context(), middleware.UserIDFromContext(r.Context()), itemID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: result})
}

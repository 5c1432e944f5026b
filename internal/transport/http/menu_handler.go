// Copyright 2026 The MenuQR Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/menuqr/menuqr/internal/menu"
	"github.com/menuqr/menuqr/internal/observability/logger"
	"github.com/menuqr/menuqr/internal/qr"
	"github.com/menuqr/menuqr/internal/tenant"
)

const maxUploadSize = 10 << 20 // 10 MiB

// ownerTenant resolves the restaurant bound to the authenticated owner
func (h *Handler) ownerTenant(w http.ResponseWriter, r *http.Request) (*tenant.Tenant, bool) {
	t, _, err := h.tenantService.ResolveOwnerTenant(r.Context(), GetPrincipalID(r.Context()))
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			respondError(w, http.StatusNotFound, "no restaurant is linked to this account")
			return nil, false
		}
		slog.ErrorContext(r.Context(), "failed to resolve owner tenant", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to load restaurant")
		return nil, false
	}
	return t, true
}

// GetOwnerRestaurant returns the owner's restaurant with its menu URL
func (h *Handler) GetOwnerRestaurant(w http.ResponseWriter, r *http.Request) {
	t, count, err := h.tenantService.ResolveOwnerTenant(r.Context(), GetPrincipalID(r.Context()))
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			respondError(w, http.StatusNotFound, "no restaurant is linked to this account")
			return
		}
		slog.ErrorContext(r.Context(), "failed to resolve owner tenant", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to load restaurant")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"slug":         t.Slug,
		"name":         t.Name,
		"logo_url":     t.LogoURL,
		"theme_color":  t.ThemeColor,
		"is_active":    t.IsActive,
		"menu_url":     qr.DeepLink(h.origin(r), t.Slug),
		"tenant_count": count,
	})
}

// ListOwnerMenu returns the owner's full menu, newest first
func (h *Handler) ListOwnerMenu(w http.ResponseWriter, r *http.Request) {
	t, ok := h.ownerTenant(w, r)
	if !ok {
		return
	}

	items, err := h.menuService.ListItems(r.Context(), t.Slug)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list menu items",
			logger.Error(err),
			logger.Slug(t.Slug),
		)
		respondError(w, http.StatusInternalServerError, "failed to list menu items")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"count": len(items),
	})
}

// CreateMenuItem adds a dish from a multipart form, optional photo included
func (h *Handler) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	t, ok := h.ownerTenant(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	in := menu.NewItem{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Price:       r.FormValue("price"),
		Category:    r.FormValue("category"),
	}

	file, header, err := r.FormFile("image")
	if err == nil {
		defer file.Close()
		in.Image = &menu.ImageUpload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        file,
		}
	}

	item, err := h.menuService.AddItem(r.Context(), t.Slug, in)
	if err != nil {
		switch {
		case errors.Is(err, menu.ErrMissingFields), errors.Is(err, menu.ErrInvalidPrice):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			slog.ErrorContext(r.Context(), "failed to create menu item",
				logger.Error(err),
				logger.Slug(t.Slug),
			)
			respondError(w, http.StatusInternalServerError, "failed to create menu item")
		}
		return
	}

	respondJSON(w, http.StatusCreated, item)
}

// ToggleMenuItem flips the sold-out flag on a dish
func (h *Handler) ToggleMenuItem(w http.ResponseWriter, r *http.Request) {
	t, ok := h.ownerTenant(w, r)
	if !ok {
		return
	}

	itemID := chi.URLParam(r, "itemID")
	item, err := h.menuService.ToggleAvailability(r.Context(), t.Slug, itemID)
	if err != nil {
		if errors.Is(err, menu.ErrItemNotFound) {
			respondError(w, http.StatusNotFound, "menu item not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to toggle menu item",
			logger.Error(err),
			logger.Slug(t.Slug),
			logger.ItemID(itemID),
		)
		respondError(w, http.StatusInternalServerError, "failed to toggle menu item")
		return
	}

	respondJSON(w, http.StatusOK, item)
}

// DeleteMenuItem removes a dish and its stored photo
func (h *Handler) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	t, ok := h.ownerTenant(w, r)
	if !ok {
		return
	}

	itemID := chi.URLParam(r, "itemID")
	if err := h.menuService.DeleteItem(r.Context(), t.Slug, itemID); err != nil {
		if errors.Is(err, menu.ErrItemNotFound) {
			respondError(w, http.StatusNotFound, "menu item not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to delete menu item",
			logger.Error(err),
			logger.Slug(t.Slug),
			logger.ItemID(itemID),
		)
		respondError(w, http.StatusInternalServerError, "failed to delete menu item")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "menu item deleted",
	})
}

// DownloadQR streams the printable QR code for the owner's menu URL
func (h *Handler) DownloadQR(w http.ResponseWriter, r *http.Request) {
	t, ok := h.ownerTenant(w, r)
	if !ok {
		return
	}

	png, err := qr.PNG(h.origin(r), t.Slug)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to render QR code",
			logger.Error(err),
			logger.Slug(t.Slug),
		)
		respondError(w, http.StatusInternalServerError, "failed to render QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", qr.FileName(t.Slug)))
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

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
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/menuqr/menuqr/internal/identity"
	"github.com/menuqr/menuqr/internal/observability/logger"
	"github.com/menuqr/menuqr/internal/qr"
	"github.com/menuqr/menuqr/internal/tenant"
)

// CreateTenantRequest represents tenant provisioning data
type CreateTenantRequest struct {
	Slug          string `json:"slug"`
	Name          string `json:"name"`
	OwnerEmail    string `json:"owner_email"`
	OwnerPassword string `json:"owner_password"`
	OwnerName     string `json:"owner_name"`
	ThemeColor    string `json:"theme_color"`
}

// CreateTenant provisions a restaurant and its owner account in one call
func (h *Handler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	var req CreateTenantRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.tenantService.ProvisionTenant(r.Context(), tenant.ProvisionRequest{
		Slug:          req.Slug,
		Name:          req.Name,
		OwnerEmail:    req.OwnerEmail,
		OwnerPassword: req.OwnerPassword,
		OwnerName:     req.OwnerName,
		ThemeColor:    req.ThemeColor,
	}, GetPrincipalID(r.Context()))
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to provision tenant",
			logger.Error(err),
			logger.Slug(req.Slug),
		)

		switch {
		case errors.Is(err, tenant.ErrDuplicateSlug):
			respondError(w, http.StatusConflict, "slug is already taken")
		case errors.Is(err, tenant.ErrMissingFields), errors.Is(err, tenant.ErrInvalidSlug):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, identity.ErrPrincipalAlreadyExists):
			respondError(w, http.StatusConflict, "owner email is already registered")
		case errors.Is(err, identity.ErrInvalidEmail), errors.Is(err, identity.ErrWeakPassword):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, tenant.ErrIdentityCreationFailed):
			respondError(w, http.StatusBadGateway, "failed to create owner account")
		default:
			respondError(w, http.StatusInternalServerError, "failed to provision tenant")
		}
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"slug":      t.Slug,
		"name":      t.Name,
		"owner_id":  t.OwnerID,
		"is_active": t.IsActive,
		"menu_url":  qr.DeepLink(h.origin(r), t.Slug),
	})
}

// ListTenants returns all tenants, newest first
func (h *Handler) ListTenants(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	tenants, err := h.tenantService.ListTenants(r.Context(), limit, offset)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list tenants", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list tenants")
		return
	}

	out := make([]map[string]any, 0, len(tenants))
	for _, t := range tenants {
		out = append(out, map[string]any{
			"slug":       t.Slug,
			"name":       t.Name,
			"owner_id":   t.OwnerID,
			"is_active":  t.IsActive,
			"created_at": t.CreatedAt,
			"menu_url":   qr.DeepLink(h.origin(r), t.Slug),
		})
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"tenants": out,
		"count":   len(out),
	})
}

// DeleteTenant removes a tenant, its menu and the owner's sessions
func (h *Handler) DeleteTenant(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	err := h.tenantService.DeleteTenant(r.Context(), slug, GetPrincipalID(r.Context()))
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			respondError(w, http.StatusNotFound, "tenant not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to delete tenant",
			logger.Error(err),
			logger.Slug(slug),
		)
		respondError(w, http.StatusInternalServerError, "failed to delete tenant")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "tenant deleted",
	})
}

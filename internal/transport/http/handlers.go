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
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/menuqr/menuqr/internal/audit"
	"github.com/menuqr/menuqr/internal/identity"
	"github.com/menuqr/menuqr/internal/menu"
	"github.com/menuqr/menuqr/internal/observability/logger"
	"github.com/menuqr/menuqr/internal/rbac"
	"github.com/menuqr/menuqr/internal/session"
	"github.com/menuqr/menuqr/internal/tenant"
	"github.com/menuqr/menuqr/internal/token"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Handler holds HTTP handlers and dependencies
type Handler struct {
	identityService *identity.Service
	sessionService  *session.Service
	tenantService   *tenant.Service
	menuService     *menu.Service
	tokenManager    *token.Manager
	auditLogger     audit.Logger
	sessionConfig   SessionConfig
	publicBaseURL   string
}

// SessionConfig holds session cookie configuration
type SessionConfig struct {
	CookieName     string
	CookieDomain   string
	CookiePath     string
	CookieSecure   bool
	CookieHTTPOnly bool
	CookieSameSite http.SameSite
}

// NewHandler creates a new HTTP handler
func NewHandler(
	identityService *identity.Service,
	sessionService *session.Service,
	tenantService *tenant.Service,
	menuService *menu.Service,
	tokenManager *token.Manager,
	auditLogger audit.Logger,
	sessionConfig SessionConfig,
	publicBaseURL string,
) *Handler {
	return &Handler{
		identityService: identityService,
		sessionService:  sessionService,
		tenantService:   tenantService,
		menuService:     menuService,
		tokenManager:    tokenManager,
		auditLogger:     auditLogger,
		sessionConfig:   sessionConfig,
		publicBaseURL:   publicBaseURL,
	}
}

// NewRouter creates a new HTTP router
func NewRouter(h *Handler, rateLimiter *RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(RateLimitMiddleware(rateLimiter))
	r.Use(func(handler http.Handler) http.Handler {
		return otelhttp.NewHandler(handler, "http_request",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	})
	r.Use(LoggingMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check
	r.Get("/health", h.HealthCheck)

	// Diner-facing routes, no authentication
	r.Get("/menu/{slug}", h.PublicMenuPage)

	r.Route("/api/v1", func(r chi.Router) {
		// Public menu API
		r.Get("/public/menu/{slug}", h.PublicMenu)

		// Authentication
		r.Post("/auth/login", h.Login)
		r.Post("/auth/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(h.AuthMiddleware)

			r.Get("/auth/me", h.GetCurrentPrincipal)
			r.Post("/auth/change-password", h.ChangePassword)

			// Owner console
			r.Route("/owner", func(r chi.Router) {
				r.Use(RequireRole(rbac.RoleOwner))

				r.Get("/restaurant", h.GetOwnerRestaurant)
				r.Get("/menu", h.ListOwnerMenu)
				r.Post("/menu/items", h.CreateMenuItem)
				r.Post("/menu/items/{itemID}/toggle", h.ToggleMenuItem)
				r.Delete("/menu/items/{itemID}", h.DeleteMenuItem)
				r.Get("/qr.png", h.DownloadQR)
			})

			// Super-admin console
			r.Route("/admin", func(r chi.Router) {
				r.Use(RequireRole(rbac.RolePlatformAdmin))

				r.Post("/tenants", h.CreateTenant)
				r.Get("/tenants", h.ListTenants)
				r.Delete("/tenants/{slug}", h.DeleteTenant)
			})
		})
	})

	return r
}

// HealthCheck returns the health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "menuqr",
	})
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates a principal, creates a session and issues a
// bearer token for API clients that prefer one over the cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	principal, err := h.identityService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if err == identity.ErrAccountLocked {
			respondError(w, http.StatusUnauthorized, "account temporarily locked")
			return
		}
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	sess, err := h.sessionService.Create(r.Context(), principal.ID, getIPAddress(r), r.UserAgent())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to create session", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	accessToken, expiresAt, err := h.tokenManager.Issue(principal.ID, principal.Role)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to issue access token", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	h.setSessionCookie(w, sess.ID)

	respondJSON(w, http.StatusOK, map[string]any{
		"principal_id": principal.ID,
		"email":        principal.Email,
		"role":         principal.Role,
		"access_token": accessToken,
		"expires_at":   expiresAt,
	})
}

// Logout destroys the current session
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID := h.getSessionFromCookie(r)
	if sessionID == "" {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	sess, err := h.sessionService.Get(r.Context(), sessionID)
	if err == nil {
		h.auditLogger.Log(r.Context(), audit.Event{
			Type:      audit.TypeLogout,
			ActorID:   sess.PrincipalID,
			Resource:  "session",
			IPAddress: getIPAddress(r),
			UserAgent: r.UserAgent(),
			Metadata:  map[string]any{"session_id": sess.ID},
		})
		h.sessionService.Delete(r.Context(), sessionID)
	}

	h.clearSessionCookie(w)

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "logged out successfully",
	})
}

// GetCurrentPrincipal returns the currently authenticated principal
func (h *Handler) GetCurrentPrincipal(w http.ResponseWriter, r *http.Request) {
	principalID := GetPrincipalID(r.Context())

	principal, err := h.identityService.GetPrincipal(r.Context(), principalID)
	if err != nil {
		respondError(w, http.StatusNotFound, "principal not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"principal_id": principal.ID,
		"email":        principal.Email,
		"display_name": principal.DisplayName,
		"role":         principal.Role,
	})
}

// ChangePasswordRequest represents password change data
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ChangePassword updates the password for the current principal
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	principalID := GetPrincipalID(r.Context())

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.identityService.ChangePassword(r.Context(), principalID, req.OldPassword, req.NewPassword)
	if err != nil {
		switch err {
		case identity.ErrInvalidCredentials:
			respondError(w, http.StatusUnauthorized, "invalid old password")
		case identity.ErrWeakPassword:
			respondError(w, http.StatusBadRequest, "new password does not meet security requirements")
		default:
			respondError(w, http.StatusInternalServerError, "failed to change password")
		}
		return
	}

	h.auditLogger.Log(r.Context(), audit.Event{
		Type:      audit.TypePasswordChanged,
		ActorID:   principalID,
		Resource:  "credentials",
		IPAddress: getIPAddress(r),
		UserAgent: r.UserAgent(),
	})

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "password changed successfully",
	})
}

// Helper functions
func (h *Handler) setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.sessionConfig.CookieName,
		Value:    sessionID,
		Path:     h.sessionConfig.CookiePath,
		Domain:   h.sessionConfig.CookieDomain,
		Secure:   h.sessionConfig.CookieSecure,
		HttpOnly: h.sessionConfig.CookieHTTPOnly,
		SameSite: h.sessionConfig.CookieSameSite,
		MaxAge:   86400, // 24 hours
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:   h.sessionConfig.CookieName,
		Value:  "",
		Path:   h.sessionConfig.CookiePath,
		Domain: h.sessionConfig.CookieDomain,
		MaxAge: -1,
	})
}

func (h *Handler) getSessionFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(h.sessionConfig.CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// origin returns the public base URL for deep links, falling back to
// the request host when none is configured.
func (h *Handler) origin(r *http.Request) string {
	if h.publicBaseURL != "" {
		return h.publicBaseURL
	}
	scheme := "https"
	if r.TLS == nil {
		scheme = "http"
	}
	return scheme + "://" + r.Host
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

func getIPAddress(r *http.Request) string {
	// Check X-Forwarded-For header first
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

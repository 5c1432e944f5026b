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

package tenant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/menuqr/menuqr/internal/audit"
	"github.com/menuqr/menuqr/internal/identity"
	"github.com/menuqr/menuqr/internal/rbac"
)

var (
	ErrMissingFields          = errors.New("name, slug, email and password are required")
	ErrInvalidSlug            = errors.New("slug must be lowercase letters, digits and hyphens")
	ErrIdentityCreationFailed = errors.New("failed to create owner identity")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// IdentityProvider is the subset of the identity service that
// provisioning needs: create an owner principal and, when the tenant
// write fails afterwards, compensate by deleting it again.
type IdentityProvider interface {
	ProvisionPrincipal(ctx context.Context, email, password, displayName, role string) (*identity.Principal, error)
	DeletePrincipal(ctx context.Context, id string) error
}

// ProvisionRequest carries everything needed to stand up a restaurant:
// the tenant itself plus the owner account created alongside it.
type ProvisionRequest struct {
	Slug          string
	Name          string
	OwnerEmail    string
	OwnerPassword string
	OwnerName     string
	ThemeColor    string
}

// Service provides tenant provisioning and management business logic
type Service struct {
	repo        Repository
	identities  IdentityProvider
	auditLogger audit.Logger
}

// NewService creates a new tenant service
func NewService(repo Repository, identities IdentityProvider, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		identities:  identities,
		auditLogger: auditLogger,
	}
}

// ProvisionTenant creates a new restaurant tenant together with its
// owning principal. The slug claim is a single atomic insert-if-absent,
// and a compensating delete of the principal runs when the tenant write
// fails, so a failed call never leaves an orphaned identity behind.
func (s *Service) ProvisionTenant(ctx context.Context, req ProvisionRequest, actorID string) (*Tenant, error) {
	if req.Name == "" || req.Slug == "" || req.OwnerEmail == "" || req.OwnerPassword == "" {
		return nil, ErrMissingFields
	}
	if !slugPattern.MatchString(req.Slug) {
		return nil, ErrInvalidSlug
	}

	// Advisory pre-check: fail fast on a taken slug before touching the
	// identity provider. The insert below remains the authority.
	if _, err := s.repo.GetBySlug(ctx, req.Slug); err == nil {
		return nil, ErrDuplicateSlug
	}

	displayName := req.OwnerName
	if displayName == "" {
		displayName = req.Name
	}

	owner, err := s.identities.ProvisionPrincipal(ctx, req.OwnerEmail, req.OwnerPassword, displayName, rbac.RoleOwner)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIdentityCreationFailed, err)
	}

	themeColor := req.ThemeColor
	if themeColor == "" {
		themeColor = DefaultThemeColor
	}

	now := time.Now()
	t := &Tenant{
		Slug:       req.Slug,
		Name:       req.Name,
		OwnerID:    owner.ID,
		LogoURL:    "",
		ThemeColor: themeColor,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.CreateIfAbsent(ctx, t); err != nil {
		// Compensate: the principal must not outlive the failed claim.
		if delErr := s.identities.DeletePrincipal(ctx, owner.ID); delErr != nil {
			slog.ErrorContext(ctx, "failed to roll back owner principal",
				"principal_id", owner.ID, "error", delErr.Error())
		}
		s.auditLogger.Log(ctx, audit.Event{
			Type:       audit.TypeProvisionRolledBack,
			TenantSlug: req.Slug,
			ActorID:    actorID,
			Resource:   "tenant",
			Metadata:   map[string]any{audit.AttrReason: err.Error()},
		})
		if errors.Is(err, ErrDuplicateSlug) {
			return nil, ErrDuplicateSlug
		}
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:       audit.TypeTenantProvisioned,
		TenantSlug: req.Slug,
		ActorID:    actorID,
		Resource:   "tenant",
		Metadata:   map[string]any{"name": req.Name, "owner_email": req.OwnerEmail},
	})

	return t, nil
}

// GetTenant retrieves a tenant by slug
func (s *Service) GetTenant(ctx context.Context, slug string) (*Tenant, error) {
	return s.repo.GetBySlug(ctx, slug)
}

// ResolveOwnerTenant finds the tenant bound to an authenticated
// principal. The store enforces one tenant per owner; should legacy
// data ever hold more, the lowest slug wins deterministically and the
// surplus count is reported so the console can surface it.
func (s *Service) ResolveOwnerTenant(ctx context.Context, ownerID string) (*Tenant, int, error) {
	tenants, err := s.repo.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, 0, err
	}
	if len(tenants) == 0 {
		return nil, 0, ErrTenantNotFound
	}
	if len(tenants) > 1 {
		slog.WarnContext(ctx, "principal owns multiple tenants",
			"owner_id", ownerID, "count", len(tenants))
	}
	return tenants[0], len(tenants), nil
}

// ListTenants lists tenants most recently created first
func (s *Service) ListTenants(ctx context.Context, limit, offset int) ([]*Tenant, error) {
	return s.repo.List(ctx, limit, offset)
}

// DeleteTenant removes a tenant and every dependent record (menu items,
// owner sessions) in one transaction.
func (s *Service) DeleteTenant(ctx context.Context, slug, actorID string) error {
	if err := s.repo.Delete(ctx, slug); err != nil {
		return err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:       audit.TypeTenantDeleted,
		TenantSlug: slug,
		ActorID:    actorID,
		Resource:   "tenant",
	})

	return nil
}

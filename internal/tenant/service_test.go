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
	"testing"

	"github.com/menuqr/menuqr/internal/audit"
	"github.com/menuqr/menuqr/internal/identity"
	"github.com/menuqr/menuqr/internal/rbac"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) CreateIfAbsent(ctx context.Context, t *Tenant) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *mockRepo) GetBySlug(ctx context.Context, slug string) (*Tenant, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Tenant), args.Error(1)
}

func (m *mockRepo) GetByOwner(ctx context.Context, ownerID string) ([]*Tenant, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Tenant), args.Error(1)
}

func (m *mockRepo) List(ctx context.Context, limit, offset int) ([]*Tenant, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*Tenant), args.Error(1)
}

func (m *mockRepo) Delete(ctx context.Context, slug string) error {
	args := m.Called(ctx, slug)
	return args.Error(0)
}

type mockIdentities struct {
	mock.Mock
}

func (m *mockIdentities) ProvisionPrincipal(ctx context.Context, email, password, displayName, role string) (*identity.Principal, error) {
	args := m.Called(ctx, email, password, displayName, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Principal), args.Error(1)
}

func (m *mockIdentities) DeletePrincipal(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockAudit struct {
	mock.Mock
}

func (m *mockAudit) Log(ctx context.Context, event audit.Event) {
	m.Called(ctx, event)
}

func provisionRequest() ProvisionRequest {
	return ProvisionRequest{
		Slug:          "rayhon",
		Name:          "Rayhon",
		OwnerEmail:    "owner@rayhon.uz",
		OwnerPassword: "s3cret-pass",
		OwnerName:     "Dilshod",
	}
}

// TestPurpose: Validates that provisioning creates the tenant bound to a
// freshly created owner principal with the owner role.
// Scope: Unit Test
// Expected: Tenant is active, carries the owner's ID and the default theme.
func TestTenant_Service_ProvisionTenant_Success(t *testing.T) {
	repo := new(mockRepo)
	ids := new(mockIdentities)
	auditLogger := new(mockAudit)
	service := NewService(repo, ids, auditLogger)

	ctx := context.Background()
	owner := &identity.Principal{ID: "principal-1", Email: "owner@rayhon.uz", Role: rbac.RoleOwner}

	repo.On("GetBySlug", ctx, "rayhon").Return(nil, ErrTenantNotFound)
	ids.On("ProvisionPrincipal", ctx, "owner@rayhon.uz", "s3cret-pass", "Dilshod", rbac.RoleOwner).Return(owner, nil)
	repo.On("CreateIfAbsent", ctx, mock.MatchedBy(func(tn *Tenant) bool {
		return tn.Slug == "rayhon" && tn.OwnerID == "principal-1" && tn.IsActive
	})).Return(nil)
	auditLogger.On("Log", ctx, mock.MatchedBy(func(e audit.Event) bool {
		return e.Type == audit.TypeTenantProvisioned && e.TenantSlug == "rayhon"
	})).Return()

	tn, err := service.ProvisionTenant(ctx, provisionRequest(), "admin-1")

	assert.NoError(t, err)
	assert.NotNil(t, tn)
	assert.Equal(t, "rayhon", tn.Slug)
	assert.Equal(t, "principal-1", tn.OwnerID)
	assert.Equal(t, DefaultThemeColor, tn.ThemeColor)
	assert.True(t, tn.IsActive)

	repo.AssertExpectations(t)
	ids.AssertExpectations(t)
}

func TestTenant_Service_ProvisionTenant_DuplicateSlug_NoPrincipalCreated(t *testing.T) {
	repo := new(mockRepo)
	ids := new(mockIdentities)
	auditLogger := new(mockAudit)
	service := NewService(repo, ids, auditLogger)

	ctx := context.Background()
	existing := &Tenant{Slug: "rayhon", Name: "Rayhon", OwnerID: "someone-else"}

	repo.On("GetBySlug", ctx, "rayhon").Return(existing, nil)

	tn, err := service.ProvisionTenant(ctx, provisionRequest(), "admin-1")

	assert.ErrorIs(t, err, ErrDuplicateSlug)
	assert.Nil(t, tn)

	// The identity provider must never have been touched.
	ids.AssertNotCalled(t, "ProvisionPrincipal", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "CreateIfAbsent", mock.Anything, mock.Anything)
}

func TestTenant_Service_ProvisionTenant_LostRace_RollsBackPrincipal(t *testing.T) {
	repo := new(mockRepo)
	ids := new(mockIdentities)
	auditLogger := new(mockAudit)
	service := NewService(repo, ids, auditLogger)

	ctx := context.Background()
	owner := &identity.Principal{ID: "principal-2", Email: "owner@rayhon.uz", Role: rbac.RoleOwner}

	repo.On("GetBySlug", ctx, "rayhon").Return(nil, ErrTenantNotFound)
	ids.On("ProvisionPrincipal", ctx, "owner@rayhon.uz", "s3cret-pass", "Dilshod", rbac.RoleOwner).Return(owner, nil)
	// Another provisioning call claimed the slug between the pre-check
	// and the insert.
	repo.On("CreateIfAbsent", ctx, mock.Anything).Return(ErrDuplicateSlug)
	ids.On("DeletePrincipal", ctx, "principal-2").Return(nil)
	auditLogger.On("Log", ctx, mock.MatchedBy(func(e audit.Event) bool {
		return e.Type == audit.TypeProvisionRolledBack
	})).Return()

	tn, err := service.ProvisionTenant(ctx, provisionRequest(), "admin-1")

	assert.ErrorIs(t, err, ErrDuplicateSlug)
	assert.Nil(t, tn)

	ids.AssertCalled(t, "DeletePrincipal", ctx, "principal-2")
}

func TestTenant_Service_ProvisionTenant_IdentityFailure(t *testing.T) {
	repo := new(mockRepo)
	ids := new(mockIdentities)
	auditLogger := new(mockAudit)
	service := NewService(repo, ids, auditLogger)

	ctx := context.Background()

	repo.On("GetBySlug", ctx, "rayhon").Return(nil, ErrTenantNotFound)
	ids.On("ProvisionPrincipal", ctx, "owner@rayhon.uz", "s3cret-pass", "Dilshod", rbac.RoleOwner).
		Return(nil, identity.ErrPrincipalAlreadyExists)

	tn, err := service.ProvisionTenant(ctx, provisionRequest(), "admin-1")

	assert.ErrorIs(t, err, ErrIdentityCreationFailed)
	assert.Nil(t, tn)
	repo.AssertNotCalled(t, "CreateIfAbsent", mock.Anything, mock.Anything)
}

func TestTenant_Service_ProvisionTenant_Validation(t *testing.T) {
	service := NewService(new(mockRepo), new(mockIdentities), new(mockAudit))
	ctx := context.Background()

	missing := provisionRequest()
	missing.OwnerEmail = ""
	_, err := service.ProvisionTenant(ctx, missing, "admin-1")
	assert.ErrorIs(t, err, ErrMissingFields)

	for _, slug := range []string{"Osh Markazi", "UPPER", "oq-", "-oq", "sho'x", "a--b", ""} {
		req := provisionRequest()
		req.Slug = slug
		_, err := service.ProvisionTenant(ctx, req, "admin-1")
		assert.Error(t, err, "slug %q should be rejected", slug)
	}

	for _, slug := range []string{"rayhon", "osh-markazi", "cafe42", "a"} {
		req := provisionRequest()
		req.Slug = slug
		assert.True(t, slugPattern.MatchString(slug), "slug %q should be accepted", req.Slug)
	}
}

func TestTenant_Service_ResolveOwnerTenant(t *testing.T) {
	repo := new(mockRepo)
	service := NewService(repo, new(mockIdentities), new(mockAudit))
	ctx := context.Background()

	repo.On("GetByOwner", ctx, "owner-1").Return([]*Tenant{
		{Slug: "anor", OwnerID: "owner-1"},
		{Slug: "rayhon", OwnerID: "owner-1"},
	}, nil)
	repo.On("GetByOwner", ctx, "owner-2").Return([]*Tenant{}, nil)

	// Two tenants: the lowest slug wins deterministically and the total
	// count is surfaced.
	tn, count, err := service.ResolveOwnerTenant(ctx, "owner-1")
	assert.NoError(t, err)
	assert.Equal(t, "anor", tn.Slug)
	assert.Equal(t, 2, count)

	_, _, err = service.ResolveOwnerTenant(ctx, "owner-2")
	assert.ErrorIs(t, err, ErrTenantNotFound)
}

func TestTenant_Service_DeleteTenant(t *testing.T) {
	repo := new(mockRepo)
	auditLogger := new(mockAudit)
	service := NewService(repo, new(mockIdentities), auditLogger)
	ctx := context.Background()

	repo.On("Delete", ctx, "rayhon").Return(nil)
	repo.On("Delete", ctx, "ghost").Return(ErrTenantNotFound)
	auditLogger.On("Log", ctx, mock.MatchedBy(func(e audit.Event) bool {
		return e.Type == audit.TypeTenantDeleted && e.TenantSlug == "rayhon" && e.ActorID == "admin-1"
	})).Return()

	assert.NoError(t, service.DeleteTenant(ctx, "rayhon", "admin-1"))
	assert.True(t, errors.Is(service.DeleteTenant(ctx, "ghost", "admin-1"), ErrTenantNotFound))

	auditLogger.AssertNumberOfCalls(t, "Log", 1)
}

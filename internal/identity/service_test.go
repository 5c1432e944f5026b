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

package identity

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/menuqr/menuqr/internal/audit"
	"github.com/menuqr/menuqr/internal/rbac"
	"github.com/stretchr/testify/assert"
)

// MockPrincipalRepository is a simple in-memory implementation of Repository
type MockPrincipalRepository struct {
	principals  map[string]*Principal
	credentials map[string]*Credentials
	failCreds   bool
}

func NewMockPrincipalRepository() *MockPrincipalRepository {
	return &MockPrincipalRepository{
		principals:  make(map[string]*Principal),
		credentials: make(map[string]*Credentials),
	}
}

func (m *MockPrincipalRepository) Create(ctx context.Context, p *Principal) error {
	m.principals[p.ID] = p
	return nil
}

func (m *MockPrincipalRepository) AddCredentials(ctx context.Context, c *Credentials) error {
	if m.failCreds {
		return assert.AnError
	}
	m.credentials[c.PrincipalID] = c
	return nil
}

func (m *MockPrincipalRepository) GetByID(ctx context.Context, id string) (*Principal, error) {
	p, ok := m.principals[id]
	if !ok {
		return nil, ErrPrincipalNotFound
	}
	return p, nil
}

func (m *MockPrincipalRepository) GetByEmail(ctx context.Context, email string) (*Principal, error) {
	for _, p := range m.principals {
		if strings.EqualFold(p.Email, email) {
			return p, nil
		}
	}
	return nil, ErrPrincipalNotFound
}

func (m *MockPrincipalRepository) GetCredentials(ctx context.Context, id string) (*Credentials, error) {
	c, ok := m.credentials[id]
	if !ok {
		return nil, ErrPrincipalNotFound
	}
	return c, nil
}

func (m *MockPrincipalRepository) UpdateLockout(ctx context.Context, id string, attempts int, lockedUntil *time.Time) error {
	p, ok := m.principals[id]
	if !ok {
		return ErrPrincipalNotFound
	}
	p.FailedLoginAttempts = attempts
	p.LockedUntil = lockedUntil
	return nil
}

func (m *MockPrincipalRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	c, ok := m.credentials[id]
	if !ok {
		return ErrPrincipalNotFound
	}
	c.PasswordHash = passwordHash
	return nil
}

func (m *MockPrincipalRepository) Delete(ctx context.Context, id string) error {
	if _, ok := m.principals[id]; !ok {
		return ErrPrincipalNotFound
	}
	delete(m.principals, id)
	delete(m.credentials, id)
	return nil
}

type nopAudit struct{}

func (nopAudit) Log(ctx context.Context, event audit.Event) {}

func testHasher() *PasswordHasher {
	// Deliberately cheap parameters to keep the suite fast.
	return NewPasswordHasher(8*1024, 1, 1, 16, 32)
}

func testService(repo Repository) *Service {
	return NewService(repo, testHasher(), nopAudit{}, 5, 15*time.Minute)
}

func TestPasswordHasher_RoundTrip(t *testing.T) {
	hasher := testHasher()

	encoded, err := hasher.Hash("correct horse battery")
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$"))

	ok, err := hasher.Verify("correct horse battery", encoded)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = hasher.Verify("wrong password", encoded)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordHasher_RejectsMalformedHash(t *testing.T) {
	hasher := testHasher()

	_, err := hasher.Verify("whatever", "not-a-hash")
	assert.Error(t, err)

	_, err = hasher.Verify("whatever", "$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA")
	assert.Error(t, err)
}

func TestIdentity_ProvisionPrincipal(t *testing.T) {
	repo := NewMockPrincipalRepository()
	service := testService(repo)
	ctx := context.Background()

	p, err := service.ProvisionPrincipal(ctx, "owner@rayhon.uz", "s3cret-pass", "Dilshod", rbac.RoleOwner)
	assert.NoError(t, err)
	assert.Equal(t, rbac.RoleOwner, p.Role)
	assert.Equal(t, "Dilshod", p.DisplayName)

	uid, err := uuid.Parse(p.ID)
	assert.NoError(t, err)
	assert.Equal(t, byte(7), byte(uid.Version()))

	// Credentials were stored alongside.
	_, err = repo.GetCredentials(ctx, p.ID)
	assert.NoError(t, err)

	// Duplicate email is rejected regardless of case.
	_, err = service.ProvisionPrincipal(ctx, "OWNER@rayhon.uz", "other-pass", "X", rbac.RoleOwner)
	assert.ErrorIs(t, err, ErrPrincipalAlreadyExists)
}

func TestIdentity_ProvisionPrincipal_Validation(t *testing.T) {
	service := testService(NewMockPrincipalRepository())
	ctx := context.Background()

	_, err := service.ProvisionPrincipal(ctx, "not-an-email", "s3cret-pass", "X", rbac.RoleOwner)
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = service.ProvisionPrincipal(ctx, "a@b.uz", "short", "X", rbac.RoleOwner)
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = service.ProvisionPrincipal(ctx, "a@b.uz", "s3cret-pass", "X", "superuser")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestIdentity_ProvisionPrincipal_CredentialFailureRollsBack(t *testing.T) {
	repo := NewMockPrincipalRepository()
	repo.failCreds = true
	service := testService(repo)

	_, err := service.ProvisionPrincipal(context.Background(), "a@b.uz", "s3cret-pass", "X", rbac.RoleOwner)
	assert.Error(t, err)
	assert.Empty(t, repo.principals, "no passwordless principal may remain")
}

func TestIdentity_Authenticate_Lockout(t *testing.T) {
	repo := NewMockPrincipalRepository()
	service := testService(repo)
	ctx := context.Background()

	p, err := service.ProvisionPrincipal(ctx, "owner@rayhon.uz", "s3cret-pass", "Dilshod", rbac.RoleOwner)
	assert.NoError(t, err)

	// Five wrong passwords trip the lock.
	for i := 0; i < 5; i++ {
		_, err := service.Authenticate(ctx, "owner@rayhon.uz", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	_, err = service.Authenticate(ctx, "owner@rayhon.uz", "s3cret-pass")
	assert.ErrorIs(t, err, ErrAccountLocked)

	// Expired lock clears on the next good login.
	past := time.Now().Add(-time.Minute)
	repo.principals[p.ID].LockedUntil = &past

	got, err := service.Authenticate(ctx, "owner@rayhon.uz", "s3cret-pass")
	assert.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, 0, repo.principals[p.ID].FailedLoginAttempts)
	assert.Nil(t, repo.principals[p.ID].LockedUntil)
}

func TestIdentity_Authenticate_UnknownEmail(t *testing.T) {
	service := testService(NewMockPrincipalRepository())

	_, err := service.Authenticate(context.Background(), "ghost@nowhere.uz", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestIdentity_ChangePassword(t *testing.T) {
	repo := NewMockPrincipalRepository()
	service := testService(repo)
	ctx := context.Background()

	p, err := service.ProvisionPrincipal(ctx, "owner@rayhon.uz", "s3cret-pass", "Dilshod", rbac.RoleOwner)
	assert.NoError(t, err)

	assert.ErrorIs(t, service.ChangePassword(ctx, p.ID, "wrong-old", "new-password"), ErrInvalidCredentials)
	assert.ErrorIs(t, service.ChangePassword(ctx, p.ID, "s3cret-pass", "tiny"), ErrWeakPassword)
	assert.NoError(t, service.ChangePassword(ctx, p.ID, "s3cret-pass", "new-password"))

	_, err = service.Authenticate(ctx, "owner@rayhon.uz", "new-password")
	assert.NoError(t, err)
}

func TestIdentity_Bootstrap_Idempotent(t *testing.T) {
	repo := NewMockPrincipalRepository()
	service := testService(repo)
	ctx := context.Background()

	// Unset credentials skip bootstrap entirely.
	assert.NoError(t, service.Bootstrap(ctx, "", "", ""))
	assert.Empty(t, repo.principals)

	assert.NoError(t, service.Bootstrap(ctx, "admin@menuqr.uz", "admin-pass-1", "Admin"))
	assert.Len(t, repo.principals, 1)

	// Second run is a no-op, not an error.
	assert.NoError(t, service.Bootstrap(ctx, "admin@menuqr.uz", "admin-pass-1", "Admin"))
	assert.Len(t, repo.principals, 1)

	admin, err := service.GetByEmail(ctx, "admin@menuqr.uz")
	assert.NoError(t, err)
	assert.Equal(t, rbac.RolePlatformAdmin, admin.Role)
}

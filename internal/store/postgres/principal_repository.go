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

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/menuqr/menuqr/internal/identity"
)

// PrincipalRepository implements identity.Repository
type PrincipalRepository struct {
	db *DB
}

// NewPrincipalRepository creates a new principal repository
func NewPrincipalRepository(db *DB) *PrincipalRepository {
	return &PrincipalRepository{db: db}
}

// Create inserts a new principal
func (r *PrincipalRepository) Create(ctx context.Context, p *identity.Principal) error {
	now := time.Now()
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO principals (id, email, display_name, role, failed_login_attempts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, $5, $6)
	`, p.ID, p.Email, p.DisplayName, p.Role, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert principal: %w", err)
	}

	p.CreatedAt = now
	p.UpdatedAt = now

	return nil
}

// AddCredentials stores credentials for a principal
func (r *PrincipalRepository) AddCredentials(ctx context.Context, c *identity.Credentials) error {
	now := time.Now()
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO credentials (principal_id, password_hash, updated_at)
		VALUES ($1, $2, $3)
	`, c.PrincipalID, c.PasswordHash, now)
	if err != nil {
		return fmt.Errorf("failed to insert credentials: %w", err)
	}

	c.UpdatedAt = now

	return nil
}

// GetByID retrieves a principal by ID
func (r *PrincipalRepository) GetByID(ctx context.Context, id string) (*identity.Principal, error) {
	return r.scanPrincipal(r.db.pool.QueryRow(ctx, `
		SELECT id, email, display_name, role, failed_login_attempts, locked_until, created_at, updated_at
		FROM principals
		WHERE id = $1
	`, id))
}

// GetByEmail retrieves a principal by email, case insensitive
func (r *PrincipalRepository) GetByEmail(ctx context.Context, email string) (*identity.Principal, error) {
	return r.scanPrincipal(r.db.pool.QueryRow(ctx, `
		SELECT id, email, display_name, role, failed_login_attempts, locked_until, created_at, updated_at
		FROM principals
		WHERE LOWER(email) = LOWER($1)
	`, email))
}

// GetCredentials retrieves credentials for a principal
func (r *PrincipalRepository) GetCredentials(ctx context.Context, id string) (*identity.Credentials, error) {
	c := &identity.Credentials{}
	err := r.db.pool.QueryRow(ctx, `
		SELECT principal_id, password_hash, updated_at
		FROM credentials
		WHERE principal_id = $1
	`, id).Scan(&c.PrincipalID, &c.PasswordHash, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("failed to query credentials: %w", err)
	}
	return c, nil
}

// UpdateLockout persists the failed-login counter and lock expiry
func (r *PrincipalRepository) UpdateLockout(ctx context.Context, id string, attempts int, lockedUntil *time.Time) error {
	_, err := r.db.pool.Exec(ctx, `
		UPDATE principals
		SET failed_login_attempts = $2, locked_until = $3, updated_at = $4
		WHERE id = $1
	`, id, attempts, lockedUntil, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update lockout state: %w", err)
	}
	return nil
}

// UpdatePassword replaces the stored password hash
func (r *PrincipalRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	tag, err := r.db.pool.Exec(ctx, `
		UPDATE credentials
		SET password_hash = $2, updated_at = $3
		WHERE principal_id = $1
	`, id, passwordHash, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return identity.ErrPrincipalNotFound
	}
	return nil
}

// Delete removes a principal and, via cascade, its credentials and sessions
func (r *PrincipalRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.pool.Exec(ctx, `DELETE FROM principals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete principal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return identity.ErrPrincipalNotFound
	}
	return nil
}

func (r *PrincipalRepository) scanPrincipal(row pgx.Row) (*identity.Principal, error) {
	p := &identity.Principal{}
	err := row.Scan(
		&p.ID, &p.Email, &p.DisplayName, &p.Role,
		&p.FailedLoginAttempts, &p.LockedUntil,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("failed to query principal: %w", err)
	}
	return p, nil
}

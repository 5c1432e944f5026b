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
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/menuqr/menuqr/internal/tenant"
)

// TenantRepository implements tenant.Repository
type TenantRepository struct {
	db *DB
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db *DB) *TenantRepository {
	return &TenantRepository{db: db}
}

// CreateIfAbsent claims the slug atomically. A concurrent insert of the
// same slug makes exactly one caller win; the loser gets ErrDuplicateSlug.
func (r *TenantRepository) CreateIfAbsent(ctx context.Context, t *tenant.Tenant) error {
	now := time.Now()
	tag, err := r.db.pool.Exec(ctx, `
		INSERT INTO tenants (slug, name, owner_id, logo_url, theme_color, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (slug) DO NOTHING
	`, t.Slug, t.Name, t.OwnerID, t.LogoURL, t.ThemeColor, t.IsActive, now, now)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// The slug conflict is absorbed by DO NOTHING, so a unique
			// violation here means the owner already holds a tenant.
			return tenant.ErrOwnerBound
		}
		return fmt.Errorf("failed to insert tenant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tenant.ErrDuplicateSlug
	}

	t.CreatedAt = now
	t.UpdatedAt = now

	return nil
}

// GetBySlug retrieves a tenant by slug
func (r *TenantRepository) GetBySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	return r.scanTenant(r.db.pool.QueryRow(ctx, `
		SELECT slug, name, owner_id, logo_url, theme_color, is_active, created_at, updated_at
		FROM tenants
		WHERE slug = $1
	`, slug))
}

// GetByOwner retrieves the tenants owned by a principal, slug order
func (r *TenantRepository) GetByOwner(ctx context.Context, ownerID string) ([]*tenant.Tenant, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT slug, name, owner_id, logo_url, theme_color, is_active, created_at, updated_at
		FROM tenants
		WHERE owner_id = $1
		ORDER BY slug ASC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tenants by owner: %w", err)
	}
	defer rows.Close()

	return r.collectTenants(rows)
}

// List retrieves tenants newest first. A non-positive limit returns
// everything.
func (r *TenantRepository) List(ctx context.Context, limit, offset int) ([]*tenant.Tenant, error) {
	if limit <= 0 {
		limit = 1000
	}
	rows, err := r.db.pool.Query(ctx, `
		SELECT slug, name, owner_id, logo_url, theme_color, is_active, created_at, updated_at
		FROM tenants
		ORDER BY created_at DESC, slug ASC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query tenants: %w", err)
	}
	defer rows.Close()

	return r.collectTenants(rows)
}

// Delete removes a tenant, its menu items (via cascade) and the owner's
// sessions in a single transaction.
func (r *TenantRepository) Delete(ctx context.Context, slug string) error {
	tx, err := r.db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var ownerID string
	err = tx.QueryRow(ctx, `SELECT owner_id FROM tenants WHERE slug = $1`, slug).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return tenant.ErrTenantNotFound
		}
		return fmt.Errorf("failed to query tenant owner: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM sessions WHERE principal_id = $1`, ownerID); err != nil {
		return fmt.Errorf("failed to delete owner sessions: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM tenants WHERE slug = $1`, slug); err != nil {
		return fmt.Errorf("failed to delete tenant: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit tenant deletion: %w", err)
	}

	return nil
}

func (r *TenantRepository) scanTenant(row pgx.Row) (*tenant.Tenant, error) {
	t := &tenant.Tenant{}
	err := row.Scan(
		&t.Slug, &t.Name, &t.OwnerID, &t.LogoURL,
		&t.ThemeColor, &t.IsActive, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to query tenant: %w", err)
	}
	return t, nil
}

func (r *TenantRepository) collectTenants(rows pgx.Rows) ([]*tenant.Tenant, error) {
	var tenants []*tenant.Tenant
	for rows.Next() {
		t := &tenant.Tenant{}
		err := rows.Scan(
			&t.Slug, &t.Name, &t.OwnerID, &t.LogoURL,
			&t.ThemeColor, &t.IsActive, &t.CreatedAt, &t.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

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

	"github.com/jackc/pgx/v5"
	"github.com/menuqr/menuqr/internal/menu"
)

// MenuRepository implements menu.Repository
type MenuRepository struct {
	db *DB
}

// NewMenuRepository creates a new menu repository
func NewMenuRepository(db *DB) *MenuRepository {
	return &MenuRepository{db: db}
}

// Create inserts a new menu item
func (r *MenuRepository) Create(ctx context.Context, item *menu.Item) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO menu_items (id, tenant_slug, name, description, price, category, image_url, is_available, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, item.ID, item.TenantSlug, item.Name, item.Description, item.Price,
		item.Category, item.ImageURL, item.IsAvailable, item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert menu item: %w", err)
	}
	return nil
}

// Get retrieves one item scoped to its tenant
func (r *MenuRepository) Get(ctx context.Context, slug, id string) (*menu.Item, error) {
	item := &menu.Item{}
	err := r.db.pool.QueryRow(ctx, `
		SELECT id, tenant_slug, name, description, price, category, image_url, is_available, created_at
		FROM menu_items
		WHERE tenant_slug = $1 AND id = $2
	`, slug, id).Scan(
		&item.ID, &item.TenantSlug, &item.Name, &item.Description,
		&item.Price, &item.Category, &item.ImageURL, &item.IsAvailable, &item.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, menu.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to query menu item: %w", err)
	}
	return item, nil
}

// ListBySlug retrieves a tenant's items, newest first with a stable tie-break
func (r *MenuRepository) ListBySlug(ctx context.Context, slug string) ([]*menu.Item, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, tenant_slug, name, description, price, category, image_url, is_available, created_at
		FROM menu_items
		WHERE tenant_slug = $1
		ORDER BY created_at DESC, id DESC
	`, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to query menu items: %w", err)
	}
	defer rows.Close()

	var items []*menu.Item
	for rows.Next() {
		item := &menu.Item{}
		err := rows.Scan(
			&item.ID, &item.TenantSlug, &item.Name, &item.Description,
			&item.Price, &item.Category, &item.ImageURL, &item.IsAvailable, &item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ToggleAvailability flips the availability flag in one atomic update
// and returns the new value.
func (r *MenuRepository) ToggleAvailability(ctx context.Context, slug, id string) (bool, error) {
	var available bool
	err := r.db.pool.QueryRow(ctx, `
		UPDATE menu_items
		SET is_available = NOT is_available
		WHERE tenant_slug = $1 AND id = $2
		RETURNING is_available
	`, slug, id).Scan(&available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, menu.ErrItemNotFound
		}
		return false, fmt.Errorf("failed to toggle availability: %w", err)
	}
	return available, nil
}

// Delete removes an item scoped to its tenant
func (r *MenuRepository) Delete(ctx context.Context, slug, id string) error {
	tag, err := r.db.pool.Exec(ctx, `
		DELETE FROM menu_items WHERE tenant_slug = $1 AND id = $2
	`, slug, id)
	if err != nil {
		return fmt.Errorf("failed to delete menu item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return menu.ErrItemNotFound
	}
	return nil
}

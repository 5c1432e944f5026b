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

package menu

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/menuqr/menuqr/internal/audit"
	"github.com/menuqr/menuqr/internal/blob"
	"github.com/menuqr/menuqr/internal/cache"
	"github.com/menuqr/menuqr/internal/tenant"
)

// TenantDirectory is the subset of tenant storage the menu service
// needs: existence and header data for a slug.
type TenantDirectory interface {
	GetBySlug(ctx context.Context, slug string) (*tenant.Tenant, error)
}

// NewItem carries owner-console form input for one new dish.
// Price arrives as the raw form string and is parsed here, before
// anything reaches the store.
type NewItem struct {
	Name        string
	Description string
	Price       string
	Category    string
	Image       *ImageUpload
}

// ImageUpload is an optional photo attached to a new item
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        io.Reader
}

// Menu is the public read-only projection of one tenant's menu.
// Unavailable items are included and flagged, not filtered: diners see
// "sold out", they don't see dishes vanish.
type Menu struct {
	Slug       string    `json:"slug"`
	Name       string    `json:"name"`
	LogoURL    string    `json:"logo_url"`
	ThemeColor string    `json:"theme_color"`
	Categories []string  `json:"categories"`
	Items      []*Item   `json:"items"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// FilterByCategory returns the items whose category equals cat.
// CategoryAll (or an empty string) returns the full set.
func (m *Menu) FilterByCategory(cat string) []*Item {
	if cat == "" || cat == CategoryAll {
		return m.Items
	}
	var out []*Item
	for _, it := range m.Items {
		if it.Category == cat {
			out = append(out, it)
		}
	}
	return out
}

// Service provides menu management business logic
type Service struct {
	repo        Repository
	tenants     TenantDirectory
	blobs       blob.Store
	cache       *cache.Cache // nil when the menu cache is disabled
	auditLogger audit.Logger
}

// NewService creates a new menu service
func NewService(repo Repository, tenants TenantDirectory, blobs blob.Store, menuCache *cache.Cache, auditLogger audit.Logger) *Service {
	return &Service{
		repo:        repo,
		tenants:     tenants,
		blobs:       blobs,
		cache:       menuCache,
		auditLogger: auditLogger,
	}
}

// AddItem validates the form input, uploads the optional image under a
// slug-namespaced, timestamp-prefixed path, and writes the item.
// The image upload is compensated (best effort) when the item write fails.
func (s *Service) AddItem(ctx context.Context, slug string, in NewItem) (*Item, error) {
	if in.Name == "" || in.Price == "" {
		return nil, ErrMissingFields
	}

	price, err := ParsePrice(in.Price)
	if err != nil {
		return nil, err
	}

	if _, err := s.tenants.GetBySlug(ctx, slug); err != nil {
		return nil, err
	}

	imageURL := ""
	if in.Image != nil {
		path := fmt.Sprintf("restaurants/%s/%d_%s", slug, time.Now().UnixMilli(), sanitizeFilename(in.Image.Filename))
		imageURL, err = s.blobs.Upload(ctx, path, in.Image.Data, in.Image.ContentType)
		if err != nil {
			return nil, fmt.Errorf("failed to upload image: %w", err)
		}
	}

	item := &Item{
		ID:          uuid.Must(uuid.NewV7()).String(),
		TenantSlug:  slug,
		Name:        in.Name,
		Description: in.Description,
		Price:       price,
		Category:    in.Category,
		ImageURL:    imageURL,
		IsAvailable: true,
		CreatedAt:   time.Now(),
	}

	if err := s.repo.Create(ctx, item); err != nil {
		if imageURL != "" {
			if remErr := s.blobs.Remove(ctx, imageURL); remErr != nil {
				slog.WarnContext(ctx, "failed to remove orphaned image", "url", imageURL, "error", remErr.Error())
			}
		}
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	s.invalidate(ctx, slug)

	s.auditLogger.Log(ctx, audit.Event{
		Type:       audit.TypeItemCreated,
		TenantSlug: slug,
		Resource:   item.ID,
		Metadata:   map[string]any{"name": item.Name, "category": item.Category},
	})

	return item, nil
}

// ListItems returns a tenant's items newest first
func (s *Service) ListItems(ctx context.Context, slug string) ([]*Item, error) {
	return s.repo.ListBySlug(ctx, slug)
}

// ToggleAvailability flips an item's availability flag in one atomic
// update and returns the resulting item state. Toggling twice restores
// the original value.
func (s *Service) ToggleAvailability(ctx context.Context, slug, id string) (*Item, error) {
	available, err := s.repo.ToggleAvailability(ctx, slug, id)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, slug)

	s.auditLogger.Log(ctx, audit.Event{
		Type:       audit.TypeAvailabilityToggled,
		TenantSlug: slug,
		Resource:   id,
		Metadata:   map[string]any{"is_available": available},
	})

	item, err := s.repo.Get(ctx, slug, id)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem removes an item and, best effort, its stored image
func (s *Service) DeleteItem(ctx context.Context, slug, id string) error {
	item, err := s.repo.Get(ctx, slug, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, slug, id); err != nil {
		return err
	}

	if item.ImageURL != "" {
		if err := s.blobs.Remove(ctx, item.ImageURL); err != nil {
			slog.WarnContext(ctx, "failed to remove item image", "url", item.ImageURL, "error", err.Error())
		}
	}

	s.invalidate(ctx, slug)

	s.auditLogger.Log(ctx, audit.Event{
		Type:       audit.TypeItemDeleted,
		TenantSlug: slug,
		Resource:   id,
		Metadata:   map[string]any{"name": item.Name},
	})

	return nil
}

// VisibleMenu builds the public projection for a slug: tenant header,
// every item (sold-out included, flagged), and the derived category
// list with the synthetic all-category first. Served from cache when
// one is configured.
func (s *Service) VisibleMenu(ctx context.Context, slug string) (*Menu, error) {
	if s.cache != nil {
		var cached Menu
		if err := s.cache.Get(ctx, cache.MenuKey(slug), &cached); err == nil {
			return &cached, nil
		}
	}

	t, err := s.tenants.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.ListBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	m := &Menu{
		Slug:       t.Slug,
		Name:       t.Name,
		LogoURL:    t.LogoURL,
		ThemeColor: t.ThemeColor,
		Categories: deriveCategories(items),
		Items:      items,
		FetchedAt:  time.Now(),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cache.MenuKey(slug), m); err != nil {
			slog.WarnContext(ctx, "failed to cache menu", "slug", slug, "error", err.Error())
		}
	}

	return m, nil
}

// ParsePrice converts raw form input to whole currency units.
// "12000" becomes 12000; anything non-numeric or negative is rejected
// before it can reach the store.
func ParsePrice(raw string) (int64, error) {
	price, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || price < 0 {
		return 0, ErrInvalidPrice
	}
	return price, nil
}

// deriveCategories returns the distinct categories in first-seen order,
// prefixed with the synthetic all-category.
func deriveCategories(items []*Item) []string {
	categories := []string{CategoryAll}
	seen := map[string]bool{}
	for _, it := range items {
		if it.Category == "" || seen[it.Category] {
			continue
		}
		seen[it.Category] = true
		categories = append(categories, it.Category)
	}
	return categories
}

func (s *Service) invalidate(ctx context.Context, slug string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.MenuKey(slug)); err != nil {
		slog.WarnContext(ctx, "failed to invalidate menu cache", "slug", slug, "error", err.Error())
	}
}

func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, " ", "_")
	if name == "" {
		name = "image"
	}
	return name
}

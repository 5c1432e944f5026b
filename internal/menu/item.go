package menu

import (
	"context"
	"errors"
	"time"
)

// Domain errors
var (
	ErrItemNotFound  = errors.New("menu item not found")
	ErrMissingFields = errors.New("item name and price are required")
	ErrInvalidPrice  = errors.New("price must be a non-negative whole number")
)

// Item is one dish on a tenant's menu. Price is in whole local
// currency units (so'm); ImageURL is empty when no photo was uploaded.
type Item struct {
	ID          string    `json:"id"`
	TenantSlug  string    `json:"-"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"image_url"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
}

// CategoryAll is the synthetic category matching every item
const CategoryAll = "Barchasi"

// DefaultCategories is the pick list offered in the owner console.
// Free text is still accepted; the list only saves typing.
var DefaultCategories = []string{
	"Quyuq taomlar",
	"Suyuq taomlar",
	"Fast Food",
	"Salatlar",
	"Ichimliklar",
	"Shirinliklar",
	"Choy va Qahva",
	"Qo'shimchalar",
}

// Repository defines the interface for menu item persistence
type Repository interface {
	// Create creates a new menu item
	Create(ctx context.Context, item *Item) error

	// Get retrieves one item scoped to its tenant
	Get(ctx context.Context, slug, id string) (*Item, error)

	// ListBySlug returns a tenant's items newest first
	// (created_at DESC, id DESC on equal timestamps)
	ListBySlug(ctx context.Context, slug string) ([]*Item, error)

	// ToggleAvailability atomically flips the availability flag and
	// returns the new value
	ToggleAvailability(ctx context.Context, slug, id string) (bool, error)

	// Delete removes an item
	Delete(ctx context.Context, slug, id string) error
}

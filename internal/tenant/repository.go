package tenant

import (
	"context"
	"errors"
)

var (
	ErrTenantNotFound = errors.New("tenant not found")
	ErrDuplicateSlug  = errors.New("slug is already taken")
	ErrOwnerBound     = errors.New("principal already owns a tenant")
)

// Repository defines the interface for tenant storage
type Repository interface {
	// CreateIfAbsent atomically claims the slug and writes the tenant.
	// Returns ErrDuplicateSlug when the slug is already taken and
	// ErrOwnerBound when the owner already has a tenant; there is no
	// separate read-then-write window.
	CreateIfAbsent(ctx context.Context, tenant *Tenant) error

	// GetBySlug retrieves a tenant by slug
	GetBySlug(ctx context.Context, slug string) (*Tenant, error)

	// GetByOwner retrieves all tenants owned by a principal, slug ascending
	GetByOwner(ctx context.Context, ownerID string) ([]*Tenant, error)

	// List lists tenants most recently created first
	List(ctx context.Context, limit, offset int) ([]*Tenant, error)

	// Delete removes the tenant together with its menu items and the
	// owner's sessions, in a single transaction
	Delete(ctx context.Context, slug string) error
}

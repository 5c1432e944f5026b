package tenant

import (
	"time"
)

// Tenant is one restaurant's isolated data partition. The slug is the
// document key, the public URL segment and the QR payload target; it
// is chosen once at provisioning and never renamed.
type Tenant struct {
	Slug       string    `json:"slug"`
	Name       string    `json:"name"`
	OwnerID    string    `json:"owner_id"`
	LogoURL    string    `json:"logo_url"`
	ThemeColor string    `json:"theme_color"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DefaultThemeColor is applied to newly provisioned tenants
const DefaultThemeColor = "#000000"

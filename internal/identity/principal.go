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
	"errors"
	"time"
)

// Domain errors
var (
	ErrPrincipalNotFound      = errors.New("principal not found")
	ErrPrincipalAlreadyExists = errors.New("principal already exists")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidEmail           = errors.New("invalid email address")
	ErrInvalidRole            = errors.New("invalid role")
	ErrWeakPassword           = errors.New("password does not meet security requirements")
	ErrAccountLocked          = errors.New("account is locked")
)

// Principal is an authenticated identity: a restaurant owner or the
// platform admin. The role is a stored attribute resolved at login,
// never derived from the email address.
type Principal struct {
	ID                  string     `json:"id"`
	Email               string     `json:"email"`
	DisplayName         string     `json:"display_name"`
	Role                string     `json:"role"`
	FailedLoginAttempts int        `json:"-"`
	LockedUntil         *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"-"`
}

// Credentials represents a principal's password credential
type Credentials struct {
	PrincipalID  string
	PasswordHash string
	UpdatedAt    time.Time
}

// Repository defines the interface for principal persistence
type Repository interface {
	// Create creates a new principal
	Create(ctx context.Context, p *Principal) error

	// AddCredentials adds credentials for a principal
	AddCredentials(ctx context.Context, c *Credentials) error

	// GetByID retrieves a principal by ID
	GetByID(ctx context.Context, id string) (*Principal, error)

	// GetByEmail retrieves a principal by email
	GetByEmail(ctx context.Context, email string) (*Principal, error)

	// GetCredentials retrieves a principal's credentials
	GetCredentials(ctx context.Context, id string) (*Credentials, error)

	// UpdateLockout updates lockout counters
	UpdateLockout(ctx context.Context, id string, failedAttempts int, lockedUntil *time.Time) error

	// UpdatePassword updates the stored password hash
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	// Delete removes a principal and its credentials.
	// Used by the provisioning rollback path.
	Delete(ctx context.Context, id string) error
}

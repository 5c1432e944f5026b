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
	"fmt"
	"log/slog"

	"github.com/menuqr/menuqr/internal/rbac"
)

// Bootstrap ensures the initial platform admin principal exists.
// It is idempotent: when a principal with the given email already
// exists nothing is changed, whatever its role.
func (s *Service) Bootstrap(ctx context.Context, adminEmail, adminPassword, adminName string) error {
	if adminEmail == "" || adminPassword == "" {
		slog.Info("bootstrap skipped, ADMIN_EMAIL/ADMIN_PASSWORD not set")
		return nil
	}

	if existing, err := s.repo.GetByEmail(ctx, adminEmail); err == nil && existing != nil {
		slog.Info("bootstrap admin already present", "principal_id", existing.ID)
		return nil
	}

	p, err := s.ProvisionPrincipal(ctx, adminEmail, adminPassword, adminName, rbac.RolePlatformAdmin)
	if err != nil {
		return fmt.Errorf("failed to bootstrap platform admin: %w", err)
	}

	slog.Info("bootstrap platform admin created", "principal_id", p.ID)
	return nil
}

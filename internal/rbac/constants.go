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

package rbac

// Roles are stored on the principal record and resolved once at login.
// Capability is never derived by comparing emails against a well-known
// address; the role column is the single source of truth.
const (
	// RolePlatformAdmin provisions and deletes restaurant tenants.
	RolePlatformAdmin = "platform_admin"

	// RoleOwner manages the menu of the single restaurant bound to the
	// principal via tenants.owner_id.
	RoleOwner = "owner"
)

// Valid reports whether role is one of the defined roles.
func Valid(role string) bool {
	return role == RolePlatformAdmin || role == RoleOwner
}

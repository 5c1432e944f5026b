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

package token

import (
	"testing"
	"time"

	"github.com/menuqr/menuqr/internal/rbac"
	"github.com/stretchr/testify/assert"
)

func TestToken_IssueAndVerify(t *testing.T) {
	m := NewManager("test-secret-at-least-32-bytes-long", "menuqr", 15*time.Minute)

	signed, exp, err := m.Issue("principal-1", rbac.RoleOwner)
	assert.NoError(t, err)
	assert.NotEmpty(t, signed)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), exp, 2*time.Second)

	claims, err := m.Verify(signed)
	assert.NoError(t, err)
	assert.Equal(t, "principal-1", claims.PrincipalID)
	assert.Equal(t, rbac.RoleOwner, claims.Role)
}

func TestToken_Verify_Rejections(t *testing.T) {
	m := NewManager("test-secret-at-least-32-bytes-long", "menuqr", 15*time.Minute)

	_, err := m.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Wrong signing key.
	other := NewManager("a-completely-different-signing-key", "menuqr", 15*time.Minute)
	signed, _, err := other.Issue("principal-1", rbac.RoleOwner)
	assert.NoError(t, err)
	_, err = m.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Wrong issuer.
	foreign := NewManager("test-secret-at-least-32-bytes-long", "someone-else", 15*time.Minute)
	signed, _, err = foreign.Issue("principal-1", rbac.RoleOwner)
	assert.NoError(t, err)
	_, err = m.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Expired.
	stale := NewManager("test-secret-at-least-32-bytes-long", "menuqr", -time.Minute)
	signed, _, err = stale.Issue("principal-1", rbac.RoleOwner)
	assert.NoError(t, err)
	_, err = m.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

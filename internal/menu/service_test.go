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
	"io"
	"strings"
	"testing"
	"time"

	"github.com/menuqr/menuqr/internal/audit"
	"github.com/menuqr/menuqr/internal/tenant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, item *Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *mockRepo) Get(ctx context.Context, slug, id string) (*Item, error) {
	args := m.Called(ctx, slug, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Item), args.Error(1)
}

func (m *mockRepo) ListBySlug(ctx context.Context, slug string) ([]*Item, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Item), args.Error(1)
}

func (m *mockRepo) ToggleAvailability(ctx context.Context, slug, id string) (bool, error) {
	args := m.Called(ctx, slug, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockRepo) Delete(ctx context.Context, slug, id string) error {
	args := m.Called(ctx, slug, id)
	return args.Error(0)
}

type mockTenants struct {
	mock.Mock
}

func (m *mockTenants) GetBySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenant.Tenant), args.Error(1)
}

type mockBlobs struct {
	mock.Mock
}

func (m *mockBlobs) Upload(ctx context.Context, path string, data io.Reader, contentType string) (string, error) {
	args := m.Called(ctx, path, data, contentType)
	return args.String(0), args.Error(1)
}

func (m *mockBlobs) Remove(ctx context.Context, rawURL string) error {
	args := m.Called(ctx, rawURL)
	return args.Error(0)
}

type mockAudit struct {
	mock.Mock
}

func (m *mockAudit) Log(ctx context.Context, event audit.Event) {
	m.Called(ctx, event)
}

func rayhon() *tenant.Tenant {
	return &tenant.Tenant{Slug: "rayhon", Name: "Rayhon", ThemeColor: "#aa0000", IsActive: true}
}

func TestParsePrice(t *testing.T) {
	price, err := ParsePrice("12000")
	assert.NoError(t, err)
	assert.Equal(t, int64(12000), price)

	price, err = ParsePrice(" 0 ")
	assert.NoError(t, err)
	assert.Equal(t, int64(0), price)

	for _, raw := range []string{"-1", "12.50", "12,000", "abc", "", "12000 so'm"} {
		_, err := ParsePrice(raw)
		assert.ErrorIs(t, err, ErrInvalidPrice, "price %q should be rejected", raw)
	}
}

func TestMenu_Service_AddItem(t *testing.T) {
	repo := new(mockRepo)
	tenants := new(mockTenants)
	blobs := new(mockBlobs)
	auditLogger := new(mockAudit)
	service := NewService(repo, tenants, blobs, nil, auditLogger)
	ctx := context.Background()

	tenants.On("GetBySlug", ctx, "rayhon").Return(rayhon(), nil)
	blobs.On("Upload", ctx, mock.MatchedBy(func(path string) bool {
		return strings.HasPrefix(path, "restaurants/rayhon/") && strings.HasSuffix(path, "_osh.jpg")
	}), mock.Anything, "image/jpeg").Return("https://blob.example/osh.jpg", nil)
	repo.On("Create", ctx, mock.MatchedBy(func(it *Item) bool {
		return it.TenantSlug == "rayhon" && it.Price == 25000 && it.IsAvailable && it.ImageURL == "https://blob.example/osh.jpg"
	})).Return(nil)
	auditLogger.On("Log", ctx, mock.MatchedBy(func(e audit.Event) bool {
		return e.Type == audit.TypeItemCreated && e.TenantSlug == "rayhon"
	})).Return()

	item, err := service.AddItem(ctx, "rayhon", NewItem{
		Name:     "Osh",
		Price:    "25000",
		Category: "Quyuq taomlar",
		Image: &ImageUpload{
			Filename:    "osh.jpg",
			ContentType: "image/jpeg",
			Data:        strings.NewReader("jpeg bytes"),
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, "Osh", item.Name)
	assert.True(t, item.IsAvailable)
	assert.NotEmpty(t, item.ID)
	repo.AssertExpectations(t)
	blobs.AssertExpectations(t)
}

func TestMenu_Service_AddItem_Validation(t *testing.T) {
	service := NewService(new(mockRepo), new(mockTenants), new(mockBlobs), nil, new(mockAudit))
	ctx := context.Background()

	_, err := service.AddItem(ctx, "rayhon", NewItem{Name: "", Price: "12000"})
	assert.ErrorIs(t, err, ErrMissingFields)

	_, err = service.AddItem(ctx, "rayhon", NewItem{Name: "Osh", Price: ""})
	assert.ErrorIs(t, err, ErrMissingFields)

	_, err = service.AddItem(ctx, "rayhon", NewItem{Name: "Osh", Price: "-5"})
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestMenu_Service_AddItem_RemovesOrphanedImage(t *testing.T) {
	repo := new(mockRepo)
	tenants := new(mockTenants)
	blobs := new(mockBlobs)
	auditLogger := new(mockAudit)
	service := NewService(repo, tenants, blobs, nil, auditLogger)
	ctx := context.Background()

	tenants.On("GetBySlug", ctx, "rayhon").Return(rayhon(), nil)
	blobs.On("Upload", ctx, mock.Anything, mock.Anything, "image/png").Return("https://blob.example/orphan.png", nil)
	repo.On("Create", ctx, mock.Anything).Return(assert.AnError)
	blobs.On("Remove", ctx, "https://blob.example/orphan.png").Return(nil)

	_, err := service.AddItem(ctx, "rayhon", NewItem{
		Name:  "Lagmon",
		Price: "30000",
		Image: &ImageUpload{Filename: "lagmon.png", ContentType: "image/png", Data: strings.NewReader("png")},
	})

	assert.Error(t, err)
	blobs.AssertCalled(t, "Remove", ctx, "https://blob.example/orphan.png")
}

func TestMenu_Service_ToggleAvailability(t *testing.T) {
	repo := new(mockRepo)
	auditLogger := new(mockAudit)
	service := NewService(repo, new(mockTenants), new(mockBlobs), nil, auditLogger)
	ctx := context.Background()

	repo.On("ToggleAvailability", ctx, "rayhon", "item-1").Return(false, nil).Once()
	repo.On("ToggleAvailability", ctx, "rayhon", "item-1").Return(true, nil).Once()
	repo.On("Get", ctx, "rayhon", "item-1").Return(&Item{ID: "item-1", IsAvailable: false}, nil).Once()
	repo.On("Get", ctx, "rayhon", "item-1").Return(&Item{ID: "item-1", IsAvailable: true}, nil).Once()
	auditLogger.On("Log", ctx, mock.MatchedBy(func(e audit.Event) bool {
		return e.Type == audit.TypeAvailabilityToggled
	})).Return()

	// Two toggles restore the original state.
	item, err := service.ToggleAvailability(ctx, "rayhon", "item-1")
	assert.NoError(t, err)
	assert.False(t, item.IsAvailable)

	item, err = service.ToggleAvailability(ctx, "rayhon", "item-1")
	assert.NoError(t, err)
	assert.True(t, item.IsAvailable)

	repo.On("ToggleAvailability", ctx, "rayhon", "ghost").Return(false, ErrItemNotFound)
	_, err = service.ToggleAvailability(ctx, "rayhon", "ghost")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestMenu_Service_DeleteItem_RemovesImage(t *testing.T) {
	repo := new(mockRepo)
	blobs := new(mockBlobs)
	auditLogger := new(mockAudit)
	service := NewService(repo, new(mockTenants), blobs, nil, auditLogger)
	ctx := context.Background()

	repo.On("Get", ctx, "rayhon", "item-1").Return(&Item{
		ID: "item-1", Name: "Osh", ImageURL: "https://blob.example/osh.jpg",
	}, nil)
	repo.On("Delete", ctx, "rayhon", "item-1").Return(nil)
	blobs.On("Remove", ctx, "https://blob.example/osh.jpg").Return(nil)
	auditLogger.On("Log", ctx, mock.MatchedBy(func(e audit.Event) bool {
		return e.Type == audit.TypeItemDeleted && e.Resource == "item-1"
	})).Return()

	assert.NoError(t, service.DeleteItem(ctx, "rayhon", "item-1"))
	blobs.AssertExpectations(t)
}

func TestMenu_Service_VisibleMenu(t *testing.T) {
	repo := new(mockRepo)
	tenants := new(mockTenants)
	service := NewService(repo, tenants, new(mockBlobs), nil, new(mockAudit))
	ctx := context.Background()

	now := time.Now()
	items := []*Item{
		{ID: "3", Name: "Choy", Category: "Ichimliklar", IsAvailable: true, CreatedAt: now},
		{ID: "2", Name: "Lagmon", Category: "Quyuq taomlar", IsAvailable: false, CreatedAt: now.Add(-time.Hour)},
		{ID: "1", Name: "Osh", Category: "Quyuq taomlar", IsAvailable: true, CreatedAt: now.Add(-2 * time.Hour)},
	}

	tenants.On("GetBySlug", ctx, "rayhon").Return(rayhon(), nil)
	repo.On("ListBySlug", ctx, "rayhon").Return(items, nil)

	m, err := service.VisibleMenu(ctx, "rayhon")
	assert.NoError(t, err)
	assert.Equal(t, "Rayhon", m.Name)
	assert.Equal(t, "#aa0000", m.ThemeColor)

	// Sold-out dishes stay on the menu, flagged.
	assert.Len(t, m.Items, 3)
	assert.False(t, m.Items[1].IsAvailable)

	// The synthetic all-category first, then distinct categories in
	// first-seen order.
	assert.Equal(t, []string{CategoryAll, "Ichimliklar", "Quyuq taomlar"}, m.Categories)
}

func TestMenu_Service_VisibleMenu_UnknownSlug(t *testing.T) {
	tenants := new(mockTenants)
	service := NewService(new(mockRepo), tenants, new(mockBlobs), nil, new(mockAudit))
	ctx := context.Background()

	tenants.On("GetBySlug", ctx, "ghost").Return(nil, tenant.ErrTenantNotFound)

	_, err := service.VisibleMenu(ctx, "ghost")
	assert.ErrorIs(t, err, tenant.ErrTenantNotFound)
}

func TestMenu_FilterByCategory(t *testing.T) {
	m := &Menu{Items: []*Item{
		{ID: "1", Category: "Ichimliklar"},
		{ID: "2", Category: "Quyuq taomlar"},
		{ID: "3", Category: "Ichimliklar"},
	}}

	assert.Len(t, m.FilterByCategory(CategoryAll), 3)
	assert.Len(t, m.FilterByCategory(""), 3)
	assert.Len(t, m.FilterByCategory("Ichimliklar"), 2)
	assert.Empty(t, m.FilterByCategory("Shirinliklar"))
}

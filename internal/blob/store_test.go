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

package blob

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStore_Upload(t *testing.T) {
	var gotPath, gotAuth, gotType string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := NewHTTPStore(srv.URL, "menu-images", "service-key")

	url, err := store.Upload(context.Background(), "restaurants/rayhon/1_osh.jpg",
		strings.NewReader("jpeg bytes"), "image/jpeg")

	assert.NoError(t, err)
	assert.Equal(t, "/storage/v1/object/menu-images/restaurants/rayhon/1_osh.jpg", gotPath)
	assert.Equal(t, "Bearer service-key", gotAuth)
	assert.Equal(t, "image/jpeg", gotType)
	assert.Equal(t, "jpeg bytes", string(gotBody))
	assert.Equal(t, srv.URL+"/storage/v1/object/public/menu-images/restaurants/rayhon/1_osh.jpg", url)
}

func TestHTTPStore_UploadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bucket not found", http.StatusBadRequest)
	}))
	defer srv.Close()

	store := NewHTTPStore(srv.URL, "menu-images", "service-key")

	_, err := store.Upload(context.Background(), "x.jpg", strings.NewReader("x"), "image/jpeg")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "bucket not found")
}

func TestHTTPStore_Remove(t *testing.T) {
	var gotMethod, gotPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := NewHTTPStore(srv.URL, "menu-images", "service-key")

	url := srv.URL + "/storage/v1/object/public/menu-images/restaurants/rayhon/1_osh.jpg"
	assert.NoError(t, store.Remove(context.Background(), url))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/storage/v1/object/menu-images/restaurants/rayhon/1_osh.jpg", gotPath)

	// Foreign URLs are ignored without a request.
	gotMethod = ""
	assert.NoError(t, store.Remove(context.Background(), "https://elsewhere.example/img.jpg"))
	assert.Empty(t, gotMethod)
}

func TestHTTPStore_RemoveToleratesMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	store := NewHTTPStore(srv.URL, "menu-images", "service-key")

	url := srv.URL + "/storage/v1/object/public/menu-images/gone.jpg"
	assert.NoError(t, store.Remove(context.Background(), url))
}

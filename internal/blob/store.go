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

// Package blob stores uploaded menu-item images in an HTTP object
// store and hands back publicly retrievable URLs.
package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Store is the object-store contract the menu service depends on
type Store interface {
	// Upload writes an object and returns its public URL
	Upload(ctx context.Context, path string, data io.Reader, contentType string) (string, error)

	// Remove deletes the object a previously returned URL points to.
	// URLs not produced by this store are ignored.
	Remove(ctx context.Context, rawURL string) error
}

// HTTPStore talks to a Supabase-compatible storage API
type HTTPStore struct {
	baseURL    string
	bucket     string
	serviceKey string
	httpClient *http.Client
}

// NewHTTPStore creates a store client for one bucket
func NewHTTPStore(baseURL, bucket, serviceKey string) *HTTPStore {
	return &HTTPStore{
		baseURL:    strings.TrimRight(baseURL, "/") + "/storage/v1",
		bucket:     bucket,
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

// Upload writes an object and returns its public URL
func (s *HTTPStore) Upload(ctx context.Context, path string, data io.Reader, contentType string) (string, error) {
	url := fmt.Sprintf("%s/object/%s/%s", s.baseURL, s.bucket, path)

	buf := &bytes.Buffer{}
	if _, err := io.Copy(buf, data); err != nil {
		return "", fmt.Errorf("read upload data: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, buf)
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("upload failed (%d): %s", resp.StatusCode, string(body))
	}

	return s.publicURL(path), nil
}

// Remove deletes the object behind a public URL issued by this store
func (s *HTTPStore) Remove(ctx context.Context, rawURL string) error {
	path, ok := s.pathForURL(rawURL)
	if !ok {
		return nil
	}

	url := fmt.Sprintf("%s/object/%s/%s", s.baseURL, s.bucket, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("create delete request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete failed (%d)", resp.StatusCode)
	}

	return nil
}

func (s *HTTPStore) publicURL(path string) string {
	return fmt.Sprintf("%s/object/public/%s/%s", s.baseURL, s.bucket, path)
}

func (s *HTTPStore) pathForURL(rawURL string) (string, bool) {
	prefix := fmt.Sprintf("%s/object/public/%s/", s.baseURL, s.bucket)
	if !strings.HasPrefix(rawURL, prefix) {
		return "", false
	}
	return strings.TrimPrefix(rawURL, prefix), true
}

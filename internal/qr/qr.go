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

// Package qr renders the per-restaurant QR code. The payload is the
// absolute public menu URL; the export is a print-ready opaque PNG.
package qr

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// ExportSize is the raster export dimension in pixels. Large enough
// that table-tent prints stay sharp.
const ExportSize = 1200

// DeepLink builds the public menu URL encoded in the QR code
func DeepLink(origin, slug string) string {
	return strings.TrimRight(origin, "/") + "/menu/" + slug
}

// PNG renders the deep link as an opaque square PNG of ExportSize
// pixels, at the highest error-correction level so a stained or
// crumpled print still scans.
func PNG(origin, slug string) ([]byte, error) {
	png, err := qrcode.Encode(DeepLink(origin, slug), qrcode.Highest, ExportSize)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}
	return png, nil
}

// FileName is the suggested download name for a tenant's QR export
func FileName(slug string) string {
	return slug + "-qr-menu.png"
}

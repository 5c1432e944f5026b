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

package http

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/menuqr/menuqr/internal/observability/logger"
	"github.com/menuqr/menuqr/internal/tenant"
)

// PublicMenu serves the diner-facing menu as JSON.
// An unknown slug is a 404; a backend outage is a 503. A diner scanning
// a stale QR code must be able to tell the difference.
func (h *Handler) PublicMenu(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	m, err := h.menuService.VisibleMenu(r.Context(), slug)
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			respondError(w, http.StatusNotFound, "restaurant not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to load public menu",
			logger.Error(err),
			logger.Slug(slug),
		)
		respondError(w, http.StatusServiceUnavailable, "menu is temporarily unavailable")
		return
	}

	respondJSON(w, http.StatusOK, m)
}

var menuPageTemplate = template.Must(template.New("menu").Parse(`<!DOCTYPE html>
<html lang="uz">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Name}}</title>
<style>
body { font-family: sans-serif; margin: 0; background: #fafafa; color: #222; }
header { background: {{.ThemeColor}}; color: #fff; padding: 1.5rem 1rem; }
header h1 { margin: 0; font-size: 1.4rem; }
header img { max-height: 48px; vertical-align: middle; margin-right: .75rem; }
nav { display: flex; gap: .5rem; overflow-x: auto; padding: .75rem 1rem; }
nav a { white-space: nowrap; padding: .3rem .8rem; border-radius: 1rem; background: #eee; color: inherit; text-decoration: none; font-size: .9rem; }
main { padding: 0 1rem 2rem; }
.item { background: #fff; border-radius: .5rem; padding: 1rem; margin-bottom: .75rem; box-shadow: 0 1px 2px rgba(0,0,0,.08); }
.item h3 { margin: 0 0 .25rem; font-size: 1rem; }
.item p { margin: 0 0 .5rem; font-size: .85rem; color: #666; }
.item img { width: 100%; border-radius: .4rem; margin-bottom: .5rem; }
.price { font-weight: bold; }
.soldout { opacity: .5; }
.soldout .price::after { content: " (tugadi)"; font-weight: normal; font-size: .8rem; }
</style>
</head>
<body>
<header>
{{if .LogoURL}}<img src="{{.LogoURL}}" alt="">{{end}}
<h1>{{.Name}}</h1>
</header>
<nav>
{{range .Categories}}<a href="#">{{.}}</a>{{end}}
</nav>
<main>
{{range .Items}}
<div class="item{{if not .IsAvailable}} soldout{{end}}">
{{if .ImageURL}}<img src="{{.ImageURL}}" alt="{{.Name}}">{{end}}
<h3>{{.Name}}</h3>
{{if .Description}}<p>{{.Description}}</p>{{end}}
<span class="price">{{.Price}} so'm</span>
</div>
{{end}}
</main>
</body>
</html>
`))

// PublicMenuPage serves the diner-facing menu as an HTML page, the
// target of the QR deep link.
func (h *Handler) PublicMenuPage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	m, err := h.menuService.VisibleMenu(r.Context(), slug)
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			http.Error(w, "restaurant not found", http.StatusNotFound)
			return
		}
		slog.ErrorContext(r.Context(), "failed to load public menu page",
			logger.Error(err),
			logger.Slug(slug),
		)
		http.Error(w, "menu is temporarily unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := menuPageTemplate.Execute(w, m); err != nil {
		slog.ErrorContext(r.Context(), "failed to render menu page",
			logger.Error(err),
			logger.Slug(slug),
		)
	}
}

// Package site serves the embedded job board pages.
package site

import (
	"context"
	"net/http"
)

// Register attaches the public listing at / and the admin console at
// /admin.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	files := http.FileServer(FS())
	mux.Handle("GET /", files)
	mux.Handle("GET /admin", NewPageHandler("admin.html"))
}

// PageHandler serves a single embedded page.
type PageHandler struct {
	name string
}

// NewPageHandler creates a handler for the embedded page name.
func NewPageHandler(name string) *PageHandler {
	return &PageHandler{name: name}
}

// ServeHTTP writes the page with Cache-Control: no-cache.
func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFileFS(w, r, staticSub, h.name)
}

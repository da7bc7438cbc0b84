package swagger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/knadh/koanf/parsers/yaml"
)

// Register attaches the API reference routes to mux.
// Routes:
//
//	GET /api-docs      -> ReDoc HTML
//	GET /openapi.yaml  -> embedded OpenAPI document
//	GET /openapi.json  -> the same document as JSON
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.HandleFunc("GET /api-docs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(indexHTML))
	})
	mux.Handle("GET /openapi.yaml", document("application/yaml; charset=utf-8", func() ([]byte, error) {
		return OpenAPI, nil
	}))
	mux.Handle("GET /openapi.json", document("application/json; charset=utf-8", openAPIJSON))
}

// document serves a body that never changes for the life of the process,
// answering conditional requests with 304.
func document(contentType string, build func() ([]byte, error)) http.HandlerFunc {
	var (
		once sync.Once
		body []byte
		etag string
		err  error
	)
	return func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() {
			body, err = build()
			sum := sha256.Sum256(body)
			etag = `"` + hex.EncodeToString(sum[:8]) + `"`
		})
		if err != nil {
			http.Error(w, "openapi document unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("ETag", etag)
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(body)
	}
}

func openAPIJSON() ([]byte, error) {
	doc, err := yaml.Parser().Unmarshal(OpenAPI)
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

// Minimal HTML that loads ReDoc and points it at /openapi.yaml.
const indexHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>APM Job Board API - ReDoc</title>
    <style>body{margin:0;padding:0}</style>
  </head>
  <body>
    <redoc id="redoc-container"></redoc>
    <script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>
    <script>Redoc.init('/openapi.yaml', { suppressWarnings: true }, document.getElementById('redoc-container'));</script>
  </body>
</html>`

package api

import (
	_ "embed"
	"net/http"
)

//go:embed static/openapi.json
var openAPISpec []byte

//go:embed static/docs.html
var docsPage []byte

func serveOpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(openAPISpec)
}

func serveDocs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(docsPage)
}

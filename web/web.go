// Package web embeds the landing and admin pages.
package web

import (
	"embed"
	"net/http"
)

//go:embed index.html admin.html
var pages embed.FS

// Handler serves the landing page at / and the admin page at /admin.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /admin", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, pages, "admin.html")
	})
	mux.Handle("GET /", http.FileServerFS(pages))
	return mux
}

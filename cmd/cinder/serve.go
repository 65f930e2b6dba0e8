package main

import (
	"net/http"
	"path/filepath"

	"github.com/cinderops/cinder/pkg/streamserver"
)

// playbookBasedir is the directory every relative path in a playbook
// (role lookups, copy/template sources) resolves against.
func playbookBasedir(playbookPath string) string {
	return filepath.Dir(playbookPath)
}

// serveStream runs srv's websocket endpoint on addr until the process
// exits; cinder has no other HTTP surface, so the whole mux is one
// route.
func serveStream(addr string, srv *streamserver.Server) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/events", srv.HandleWebSocket)
	return http.ListenAndServe(addr, mux)
}

package handler

import "net/http"

// ----- Handler: GET /admin/stream -----

// handleStream upgrades the connection to the live tick-broadcast websocket.
func (handler *AdminHTTPHandler) handleStream(w http.ResponseWriter, r *http.Request) {
	handler.hub.ServeHTTP(w, r)
}

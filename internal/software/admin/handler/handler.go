// Package handler adapts HTTP requests to the admin AdminService.
package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"dispatch-sim/internal/general/jwt"
	"dispatch-sim/internal/general/logger"
	"dispatch-sim/internal/general/websocket"
	"dispatch-sim/internal/ports"
)

// AdminHTTPHandler adapts HTTP requests to the AdminService.
type AdminHTTPHandler struct {
	svc    ports.AdminService
	logger *logger.Logger
	auth   *jwt.Manager
	hub    *websocket.Hub
}

// NewAdminHTTPHandler wires an HTTP handler around the AdminService. hub
// may be nil, in which case /admin/stream is not mounted.
func NewAdminHTTPHandler(svc ports.AdminService, log *logger.Logger, auth *jwt.Manager, hub *websocket.Hub) *AdminHTTPHandler {
	return &AdminHTTPHandler{svc: svc, logger: log, auth: auth, hub: hub}
}

// RegisterRoutes mounts admin endpoints on the provided mux.
func (handler *AdminHTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /admin/overview",
		jwt.AuthMiddlewareFunc(handler.auth, jwt.RoleOperator, jwt.RoleViewer)(handler.handleOverview),
	)
	mux.HandleFunc("GET /admin/vehicles",
		jwt.AuthMiddlewareFunc(handler.auth, jwt.RoleOperator, jwt.RoleViewer)(handler.handleVehicles),
	)
	mux.HandleFunc("GET /admin/health", handler.handleHealth)
	if handler.hub != nil {
		mux.HandleFunc("GET /admin/stream",
			jwt.AuthMiddlewareFunc(handler.auth, jwt.RoleOperator, jwt.RoleViewer)(handler.handleStream),
		)
	}
}

// ----- general helpers -----

// jsonResponse encodes data as the HTTP response body.
func (handler *AdminHTTPHandler) jsonResponse(ctx context.Context, w http.ResponseWriter, status int, data any) {
	var buf []byte
	var err error

	if data != nil {
		buf, err = json.Marshal(data)
		if err != nil {
			handler.logger.Error(ctx, "response_encode_failed", "failed to encode response", err, nil)
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
			return
		}
	} else {
		buf = []byte("{}")
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf)
}

// httpError sends a JSON error response with a message.
func (handler *AdminHTTPHandler) httpError(ctx context.Context, w http.ResponseWriter, status int, msg string, err error) {
	action := "request_failed"
	if status >= 500 {
		action = "http_internal_error"
	}
	handler.logger.Error(ctx, action, msg, err, nil)

	type errBody struct {
		Error string `json:"error"`
	}
	handler.jsonResponse(ctx, w, status, errBody{Error: msg})
}

// withReqID extracts or generates a request ID and adds it to the context.
func (handler *AdminHTTPHandler) withReqID(ctx context.Context, r *http.Request) context.Context {
	reqID := r.Header.Get("X-Request-ID")
	if strings.TrimSpace(reqID) == "" {
		reqID = randID()
	}
	return handler.logger.WithRequestID(ctx, reqID)
}

func randID() string {
	var b [12]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

package handler

import (
	"context"
	"net/http"
	"time"
)

// --- Handler: GET /admin/vehicles ---

func (handler *AdminHTTPHandler) handleVehicles(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	vehicles, err := handler.svc.GetVehicles(ctxWithTimeout)
	if err != nil {
		handler.httpError(ctxWithTimeout, w, http.StatusInternalServerError, "failed to fetch fleet listing", err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, vehicles)
}

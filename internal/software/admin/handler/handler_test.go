package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dispatch-sim/internal/general/jwt"
	"dispatch-sim/internal/general/logger"
	"dispatch-sim/internal/ports"
)

type stubAdminService struct {
	overview ports.SystemOverviewResult
	vehicles ports.VehiclesResult
	err      error
}

func (s stubAdminService) GetSystemOverview(context.Context) (ports.SystemOverviewResult, error) {
	return s.overview, s.err
}

func (s stubAdminService) GetVehicles(context.Context) (ports.VehiclesResult, error) {
	return s.vehicles, s.err
}

func newTestHandler(t *testing.T, svc ports.AdminService) (*AdminHTTPHandler, *jwt.Manager) {
	t.Helper()
	mgr := jwt.NewManager("test-secret", time.Hour)
	return NewAdminHTTPHandler(svc, logger.New("dispatch-sim-test"), mgr, nil), mgr
}

func TestRegisterRoutes_HealthIsUnauthenticated(t *testing.T) {
	handler, _ := newTestHandler(t, stubAdminService{})
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/admin/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRegisterRoutes_OverviewRequiresAuth(t *testing.T) {
	handler, _ := newTestHandler(t, stubAdminService{})
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/admin/overview", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestHandleOverview_ReturnsServiceResult(t *testing.T) {
	want := ports.SystemOverviewResult{
		TickIndex: 3,
		Metrics:   ports.OverviewMetrics{VehicleCount: 7, BookingsServed: 2},
	}
	handler, mgr := newTestHandler(t, stubAdminService{overview: want})
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	token, _, err := mgr.IssueOperatorToken("test", jwt.RoleOperator)
	if err != nil {
		t.Fatalf("IssueOperatorToken: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/overview", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var got ports.SystemOverviewResult
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.TickIndex != want.TickIndex || got.Metrics.VehicleCount != want.Metrics.VehicleCount {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestHandleVehicles_ServiceErrorMapsTo500(t *testing.T) {
	handler, mgr := newTestHandler(t, stubAdminService{err: context.DeadlineExceeded})
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	token, _, err := mgr.IssueOperatorToken("test", jwt.RoleViewer)
	if err != nil {
		t.Fatalf("IssueOperatorToken: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/vehicles", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

func TestRegisterRoutes_StreamNotMountedWithoutHub(t *testing.T) {
	handler, mgr := newTestHandler(t, stubAdminService{})
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	token, _, err := mgr.IssueOperatorToken("test", jwt.RoleOperator)
	if err != nil {
		t.Fatalf("IssueOperatorToken: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/stream", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d (no hub registered)", rec.Code, http.StatusNotFound)
	}
}

package jwt

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAuthMiddlewareFunc(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	operatorToken, _, err := m.IssueOperatorToken("dev-cli", RoleOperator)
	if err != nil {
		t.Fatalf("IssueOperatorToken: %v", err)
	}
	viewerToken, _, err := m.IssueOperatorToken("dev-cli", RoleViewer)
	if err != nil {
		t.Fatalf("IssueOperatorToken: %v", err)
	}

	var gotClaims *Claims
	next := func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = RequireClaims(r.Context())
		w.WriteHeader(http.StatusOK)
	}
	wrapped := AuthMiddlewareFunc(m, RoleOperator)(next)

	cases := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"valid operator token", "Bearer " + operatorToken, http.StatusOK},
		{"viewer forbidden", "Bearer " + viewerToken, http.StatusForbidden},
		{"missing header", "", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-real-token", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gotClaims = nil
			req := httptest.NewRequest(http.MethodGet, "/admin/overview", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			rec := httptest.NewRecorder()

			wrapped(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			if tc.wantStatus == http.StatusOK && gotClaims == nil {
				t.Error("expected claims to be attached to the request context")
			}
		})
	}
}

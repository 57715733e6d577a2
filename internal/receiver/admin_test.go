package receiver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	logs "github.com/danmuck/tcpevents/internal/logging"
	"github.com/danmuck/tcpevents/internal/testutil/testlog"
)

func adminRequest(t *testing.T, a *Admin, path, token string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	a.Handler().ServeHTTP(rr, req)
	var body map[string]any
	if path != "/metrics" {
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode %s body: %v (%s)", path, err, rr.Body.String())
		}
	}
	return rr.Code, body
}

func TestAdminDataRoutes(t *testing.T) {
	testlog.Start(t)
	gin.SetMode(gin.TestMode)
	svc := NewService(testConfig(), Options{})
	a := NewAdmin(svc, AdminConfig{}, zerolog.Nop())

	if code, body := adminRequest(t, a, "/health", ""); code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("unexpected health: %d %#v", code, body)
	}
	if code, _ := adminRequest(t, a, "/metrics", ""); code != http.StatusOK {
		t.Fatalf("unexpected metrics status: %d", code)
	}

	code, body := adminRequest(t, a, "/data/foo", "")
	if code != http.StatusNotFound || body["error"] != "not found" {
		t.Fatalf("expected not found, got %d %#v", code, body)
	}

	svc.Store().Put("foo", []any{int64(1), int64(2), int64(3)})
	code, body = adminRequest(t, a, "/data/foo", "")
	if code != http.StatusOK || body["literal"] != "[1, 2, 3]" || body["name"] != "foo" {
		t.Fatalf("unexpected data response: %d %#v", code, body)
	}

	code, body = adminRequest(t, a, "/data", "")
	names, _ := body["names"].([]any)
	if code != http.StatusOK || len(names) != 1 || names[0] != "foo" {
		t.Fatalf("unexpected names: %d %#v", code, body)
	}
	logs.Logf("receiver/admin: data routes served name=foo")
}

func TestAdminTokenGuardsData(t *testing.T) {
	testlog.Start(t)
	gin.SetMode(gin.TestMode)
	svc := NewService(testConfig(), Options{})
	a := NewAdmin(svc, AdminConfig{Token: "t0k"}, zerolog.Nop())

	if code, _ := adminRequest(t, a, "/data", ""); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", code)
	}
	if code, _ := adminRequest(t, a, "/data", "wrong"); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", code)
	}
	if code, _ := adminRequest(t, a, "/data", "t0k"); code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", code)
	}
	if code, _ := adminRequest(t, a, "/health", ""); code != http.StatusOK {
		t.Fatalf("health must stay open, got %d", code)
	}
}

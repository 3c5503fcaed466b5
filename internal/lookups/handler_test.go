package lookups

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestListLookups(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()
	_ = svc.Record(ctx, "  Zoning ", OutcomeNone)
	_ = svc.Record(ctx, "zoning", OutcomeNone)
	_ = svc.Record(ctx, "eviction", OutcomeExact)

	resp := httptest.NewRecorder()
	newTestRouter(svc).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/lookups?outcome=none&limit=500", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var payload struct {
		Items []Lookup `json:"items"`
		Limit int      `json:"limit"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Items) != 1 || payload.Items[0].Query != "zoning" || payload.Items[0].Count != 2 {
		t.Fatalf("unexpected items %+v", payload.Items)
	}
	if payload.Limit != MaxLimit {
		t.Fatalf("expected clamped limit, got %d", payload.Limit)
	}
}

func TestListLookupsRejectsBadInput(t *testing.T) {
	r := newTestRouter(NewService(NewMemoryRepo()))
	for _, path := range []string{"/api/v1/lookups?outcome=maybe", "/api/v1/lookups?limit=abc"} {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, resp.Code)
		}
	}
}

func TestServiceRecordValidation(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	if err := svc.Record(context.Background(), "x", "bogus"); err == nil {
		t.Fatalf("expected invalid outcome error")
	}
	if err := svc.Record(context.Background(), "   ", OutcomeNone); err != nil {
		t.Fatalf("expected blank query to be ignored, got %v", err)
	}
	var nilSvc *Service
	if err := nilSvc.Record(context.Background(), "x", OutcomeNone); err != nil {
		t.Fatalf("expected nil service to be a no-op, got %v", err)
	}
}

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"legallens-backend/internal/knowledge"
)

func getHealth(t *testing.T, svc *Service) Report {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var report Report
	if err := json.Unmarshal(resp.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return report
}

func TestHealthWithLoadedKnowledge(t *testing.T) {
	holder := knowledge.NewHolder(knowledge.EmbeddedSource{})
	if _, err := holder.Reload(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	report := getHealth(t, NewService(holder, nil))
	if report.Status != "healthy" || !report.DataLoaded {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.ExplanationsCount != 15 || report.RiskCategoriesCount != 5 || report.RiskyKeywordsCount != 22 {
		t.Fatalf("unexpected counts %+v", report)
	}
	if report.KnowledgeVersion == "" || report.LoadedAt == nil {
		t.Fatalf("expected version and loaded_at, got %+v", report)
	}
}

func TestHealthWithEmptyKnowledge(t *testing.T) {
	report := getHealth(t, NewService(knowledge.NewHolder(nil), nil))
	if report.Status != "healthy" || report.DataLoaded || report.ExplanationsCount != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.LoadedAt != nil {
		t.Fatalf("expected null loaded_at before first load")
	}
	if report.Database != "disabled" {
		t.Fatalf("expected database disabled, got %s", report.Database)
	}
}

type stubPinger struct{ err error }

func (p stubPinger) PingContext(ctx context.Context) error { return p.err }

func TestHealthReportsDatabase(t *testing.T) {
	holder := knowledge.NewHolder(nil)
	if got := getHealth(t, NewService(holder, stubPinger{})).Database; got != "ok" {
		t.Fatalf("expected ok, got %s", got)
	}
	report := getHealth(t, NewService(holder, stubPinger{err: errors.New("refused")}))
	if report.Database != "unavailable" || report.Status != "healthy" {
		t.Fatalf("unexpected report %+v", report)
	}
}

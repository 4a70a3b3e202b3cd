package leads

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apphttp "brandscope_backend/internal/http"
)

type fakeLister struct {
	leads     []Lead
	err       error
	lastLimit int
}

func (f *fakeLister) ListRecent(_ context.Context, limit int) ([]Lead, error) {
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.leads, nil
}

func newLeadsRouter(t *testing.T, svc lister) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m := &Module{svc: svc}
	engine := gin.New()
	v1 := engine.Group("/api/v1")
	m.RegisterRoutes(&apphttp.RouterContext{Engine: engine, Public: v1, Admin: v1.Group("/admin")})
	return engine
}

func getLeads(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	engine.ServeHTTP(rec, req)
	return rec
}

func TestListLeadsReturnsRecent(t *testing.T) {
	svc := &fakeLister{leads: []Lead{
		{ID: uuid.New(), Email: "owner@crescent.example", BrandName: "Crescent Dairy", Language: "fr", Status: "GENERATED", UpdatedAt: time.Now()},
		{ID: uuid.New(), Email: "ops@atlas.example", BrandName: "Atlas Retail", Language: "en", Status: "QUOTA_BLOCKED", UpdatedAt: time.Now()},
	}}
	engine := newLeadsRouter(t, svc)

	rec := getLeads(engine, "/api/v1/admin/leads")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Leads []LeadView `json:"leads"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Leads) != 2 {
		t.Fatalf("got %d leads, want 2", len(resp.Leads))
	}
	if resp.Leads[0].BrandName != "Crescent Dairy" || resp.Leads[0].Status != "GENERATED" {
		t.Errorf("first lead = %+v", resp.Leads[0])
	}
	if svc.lastLimit != 50 {
		t.Errorf("default limit = %d, want 50", svc.lastLimit)
	}
}

func TestListLeadsValidatesLimit(t *testing.T) {
	engine := newLeadsRouter(t, &fakeLister{})

	for _, path := range []string{
		"/api/v1/admin/leads?limit=0",
		"/api/v1/admin/leads?limit=201",
		"/api/v1/admin/leads?limit=abc",
	} {
		if rec := getLeads(engine, path); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", path, rec.Code)
		}
	}
}

func TestListLeadsRepositoryError(t *testing.T) {
	engine := newLeadsRouter(t, &fakeLister{err: errors.New("connection reset")})

	rec := getLeads(engine, "/api/v1/admin/leads")
	if rec.Code == http.StatusOK {
		t.Fatalf("expected error status, got 200 with body %s", rec.Body.String())
	}
}

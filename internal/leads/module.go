package leads

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apphttp "brandscope_backend/internal/http"
	"brandscope_backend/platform/httpkit"
)

// lister is the read surface the admin endpoint needs.
type lister interface {
	ListRecent(ctx context.Context, limit int) ([]Lead, error)
}

// Module exposes the operator-facing leads endpoints.
type Module struct {
	svc lister
}

func NewModule(svc *Service) *Module {
	return &Module{svc: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "leads" }

// RegisterRoutes mounts the leads routes on the admin group.
func (m *Module) RegisterRoutes(rc *apphttp.RouterContext) {
	rc.Admin.GET("/leads", m.listLeads)
}

// LeadView is the wire shape of a lead for operators.
type LeadView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	BrandName string    `json:"brandName"`
	Sector    string    `json:"sector,omitempty"`
	Language  string    `json:"language"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (m *Module) listLeads(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 200 {
			httpkit.Error(c, http.StatusBadRequest, "limit must be between 1 and 200", nil)
			return
		}
		limit = parsed
	}

	items, err := m.svc.ListRecent(c.Request.Context(), limit)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	views := make([]LeadView, 0, len(items))
	for _, l := range items {
		views = append(views, LeadView{
			ID:        l.ID.String(),
			Email:     l.Email,
			Phone:     l.Phone,
			BrandName: l.BrandName,
			Sector:    l.Sector,
			Language:  l.Language,
			Status:    l.Status,
			CreatedAt: l.CreatedAt,
			UpdatedAt: l.UpdatedAt,
		})
	}
	httpkit.OK(c, gin.H{"leads": views})
}

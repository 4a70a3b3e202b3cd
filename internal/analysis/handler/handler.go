// Package handler exposes the analysis HTTP endpoints.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"brandscope_backend/internal/analysis/domain"
	"brandscope_backend/internal/analysis/service"
	"brandscope_backend/internal/analysis/transport"
	"brandscope_backend/platform/config"
	"brandscope_backend/platform/httpkit"
	"brandscope_backend/platform/phone"
	"brandscope_backend/platform/sanitize"
	"brandscope_backend/platform/validator"
)

const quotaQueuedCode = "QUOTA_EXHAUSTED_QUEUED"

// Handler serves the public analysis submission endpoint and the admin
// pending-queue endpoints.
type Handler struct {
	svc *service.Service
	val *validator.Validator
	cfg config.AnalysisConfig
}

func New(svc *service.Service, val *validator.Validator, cfg config.AnalysisConfig) *Handler {
	return &Handler{svc: svc, val: val, cfg: cfg}
}

// RegisterPublicRoutes mounts the unauthenticated analysis routes.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/mini-analysis", h.SubmitMiniAnalysis)
}

// RegisterAdminRoutes mounts the operator routes.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/process-pending", h.ProcessPending)
	rg.GET("/pending", h.ListPending)
}

// SubmitMiniAnalysis handles POST /mini-analysis.
func (h *Handler) SubmitMiniAnalysis(c *gin.Context) {
	var req transport.MiniAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}

	lang, _ := domain.ParseLanguage(req.Language)
	analysisReq := domain.AnalysisRequest{
		BrandName:     sanitize.Text(req.BrandName),
		Sector:        sanitize.Text(req.Sector),
		HalalStatus:   sanitize.Text(req.HalalStatus),
		Description:   sanitize.Text(req.Description),
		TargetMarket:  sanitize.Text(req.TargetMarket),
		MainChallenge: sanitize.Text(req.MainChallenge),
		Email:         sanitize.Text(req.Email),
		Phone:         phone.NormalizeE164(req.Phone),
		Language:      lang,
	}
	meta := domain.ClientMeta{
		IPAddress:   c.ClientIP(),
		Referrer:    sanitize.Text(req.Referrer),
		UTMSource:   sanitize.Text(req.UTMSource),
		UTMMedium:   sanitize.Text(req.UTMMedium),
		UTMCampaign: sanitize.Text(req.UTMCampaign),
	}

	res, err := h.svc.Analyze(c.Request.Context(), analysisReq, meta)
	if err != nil {
		var quotaErr *service.QuotaQueuedError
		if errors.As(err, &quotaErr) {
			h.respondQuotaQueued(c, quotaErr)
			return
		}
		httpkit.HandleError(c, err)
		return
	}

	httpkit.OK(c, transport.NewMiniAnalysisResponse(res.Analysis))
}

func (h *Handler) respondQuotaQueued(c *gin.Context, quotaErr *service.QuotaQueuedError) {
	retryAfter := h.cfg.GetRetryAfterSeconds()
	c.Header("Retry-After", strconv.Itoa(retryAfter))
	httpkit.JSON(c, http.StatusTooManyRequests, transport.QuotaQueuedResponse{
		Error:             "analysis capacity temporarily exhausted",
		Code:              quotaQueuedCode,
		Queued:            true,
		RetryAfterSeconds: retryAfter,
		Messages:          transport.QuotaQueuedMessages(quotaErr.Language),
	})
}

// ProcessPending handles POST /admin/process-pending.
func (h *Handler) ProcessPending(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			httpkit.Error(c, http.StatusBadRequest, "limit must be between 1 and 100", nil)
			return
		}
		limit = parsed
	}

	summary, err := h.svc.Sweep(c.Request.Context(), limit)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.SweepResponse{
		Picked:    summary.Picked,
		Processed: summary.Processed,
		Requeued:  summary.Requeued,
		Failed:    summary.Failed,
		Details:   summary.Details,
	})
}

// ListPending handles GET /admin/pending.
func (h *Handler) ListPending(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 200 {
			httpkit.Error(c, http.StatusBadRequest, "limit must be between 1 and 200", nil)
			return
		}
		limit = parsed
	}

	pending, err := h.svc.ListRecentPending(c.Request.Context(), limit)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	views := make([]transport.PendingAnalysisView, 0, len(pending))
	for _, pa := range pending {
		views = append(views, transport.NewPendingAnalysisView(pa))
	}
	httpkit.OK(c, gin.H{"pending": views})
}

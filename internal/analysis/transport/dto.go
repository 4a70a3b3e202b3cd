// Package transport defines the wire-level request and response shapes for
// the analysis HTTP surface.
package transport

import (
	"time"

	"brandscope_backend/internal/analysis/domain"
	"brandscope_backend/internal/analysis/service"
)

// MiniAnalysisRequest is the public submission payload.
type MiniAnalysisRequest struct {
	BrandName     string `json:"brandName" validate:"required,min=1,max=200"`
	Sector        string `json:"sector" validate:"omitempty,max=50"`
	HalalStatus   string `json:"halalStatus" validate:"omitempty,max=50"`
	Description   string `json:"description" validate:"omitempty,max=2000"`
	TargetMarket  string `json:"targetMarket" validate:"omitempty,max=200"`
	MainChallenge string `json:"mainChallenge" validate:"omitempty,max=2000"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"omitempty,max=30"`
	Language      string `json:"language" validate:"omitempty,max=10"`

	Referrer    string `json:"referrer" validate:"omitempty,max=500"`
	UTMSource   string `json:"utmSource" validate:"omitempty,max=100"`
	UTMMedium   string `json:"utmMedium" validate:"omitempty,max=100"`
	UTMCampaign string `json:"utmCampaign" validate:"omitempty,max=100"`
}

// MiniAnalysisResponse is the success payload.
type MiniAnalysisResponse struct {
	ID        string    `json:"id"`
	BrandName string    `json:"brandName"`
	Sector    string    `json:"sector"`
	Language  string    `json:"language"`
	Analysis  string    `json:"analysis"`
	CreatedAt time.Time `json:"createdAt"`
}

// QuotaQueuedResponse is the 429 payload for a quota-parked request.
type QuotaQueuedResponse struct {
	Error             string            `json:"error"`
	Code              string            `json:"code"`
	Queued            bool              `json:"queued"`
	RetryAfterSeconds int               `json:"retryAfterSeconds"`
	Messages          map[string]string `json:"messages"`
}

// PendingAnalysisView is the admin projection of a pending row.
type PendingAnalysisView struct {
	ID          string     `json:"id"`
	BrandName   string     `json:"brandName"`
	Email       string     `json:"email"`
	Language    string     `json:"language"`
	Status      string     `json:"status"`
	RetryCount  int        `json:"retryCount"`
	LastError   string     `json:"lastError,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastRetryAt *time.Time `json:"lastRetryAt,omitempty"`
	ResolvedAt  *time.Time `json:"resolvedAt,omitempty"`
}

// SweepResponse reports one manual sweep run.
type SweepResponse struct {
	Picked    int                   `json:"picked"`
	Processed int                   `json:"processed"`
	Requeued  int                   `json:"requeued"`
	Failed    int                   `json:"failed"`
	Details   []service.SweepDetail `json:"details"`
}

// QuotaQueuedMessages carries the per-language user-facing text for the 429
// body. The requester's language is always present in the map.
func QuotaQueuedMessages(lang domain.Language) map[string]string {
	all := map[string]string{
		"en": "Our analysis capacity is temporarily exhausted. Your request has been queued and the result will be emailed to you.",
		"fr": "Notre capacité d'analyse est temporairement épuisée. Votre demande a été mise en file d'attente et le résultat vous sera envoyé par e-mail.",
		"es": "Nuestra capacidad de análisis está temporalmente agotada. Su solicitud ha sido puesta en cola y el resultado se le enviará por correo electrónico.",
		"ar": "قدرة التحليل لدينا مستنفدة مؤقتًا. تم وضع طلبك في قائمة الانتظار وسيتم إرسال النتيجة إليك عبر البريد الإلكتروني.",
	}
	if _, ok := all[string(lang)]; !ok {
		all[string(lang)] = all["en"]
	}
	return all
}

// NewMiniAnalysisResponse maps a completed analysis onto the wire shape.
func NewMiniAnalysisResponse(ca domain.CompletedAnalysis) MiniAnalysisResponse {
	return MiniAnalysisResponse{
		ID:        ca.ID.String(),
		BrandName: ca.BrandName,
		Sector:    ca.Sector,
		Language:  string(ca.Language),
		Analysis:  ca.Result,
		CreatedAt: ca.CreatedAt,
	}
}

// NewPendingAnalysisView maps a pending row onto the admin wire shape.
func NewPendingAnalysisView(pa domain.PendingAnalysis) PendingAnalysisView {
	return PendingAnalysisView{
		ID:          pa.ID.String(),
		BrandName:   pa.Request.BrandName,
		Email:       pa.Request.Email,
		Language:    string(pa.Request.Language),
		Status:      string(pa.Status),
		RetryCount:  pa.RetryCount,
		LastError:   pa.LastError,
		CreatedAt:   pa.CreatedAt,
		LastRetryAt: pa.LastRetryAt,
		ResolvedAt:  pa.ResolvedAt,
	}
}

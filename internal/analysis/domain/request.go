package domain

// AnalysisRequest is the structured brand-analysis request. It is stored whole
// (as JSON) inside a pending analysis so a queued request can be rebuilt into
// the exact same prompt later; keep the field set serialization-stable.
type AnalysisRequest struct {
	BrandName     string   `json:"brandName"`
	Sector        string   `json:"sector"`
	HalalStatus   string   `json:"halalStatus"`
	Description   string   `json:"description"`
	TargetMarket  string   `json:"targetMarket"`
	MainChallenge string   `json:"mainChallenge"`
	Email         string   `json:"email"`
	Phone         string   `json:"phone,omitempty"`
	Language      Language `json:"language"`
}

// ClientMeta is opaque request-origin metadata captured at the HTTP layer and
// passed through to pending analyses and lead records for campaign tracking.
type ClientMeta struct {
	IPAddress   string `json:"ipAddress,omitempty"`
	Referrer    string `json:"referrer,omitempty"`
	UTMSource   string `json:"utmSource,omitempty"`
	UTMMedium   string `json:"utmMedium,omitempty"`
	UTMCampaign string `json:"utmCampaign,omitempty"`
}

// Sector buckets recognized by the prompt builder. Anything else falls into
// the general bucket.
const (
	SectorFood   = "food"
	SectorRetail = "retail"
)

// HalalStatusCertified selects the halal ingredient whitelist; any other
// value selects the general whitelist.
const HalalStatusCertified = "certified"

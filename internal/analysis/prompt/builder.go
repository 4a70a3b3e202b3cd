// Package prompt assembles generation prompts from embedded reference data.
package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"brandscope_backend/internal/analysis/domain"
)

// LanguageFailureSentinel is the literal token the model is instructed to
// return when it cannot honor the language constraint. Callers scan model
// output for its presence; models sometimes wrap it in apology text.
const LanguageFailureSentinel = "LANGUAGE_COMPLIANCE_FAILURE"

// ErrMissingReferenceData is returned when the embedded reference data has no
// entry for a template the builder needs. With a well-formed reference.yaml
// this cannot happen for supported languages.
var ErrMissingReferenceData = fmt.Errorf("prompt: missing reference data")

//go:embed reference.yaml
var referenceYAML []byte

type referenceData struct {
	Sectors         map[string]string   `yaml:"sectors"`
	Whitelists      map[string][]string `yaml:"whitelists"`
	Preambles       map[string]string   `yaml:"preambles"`
	StrictPreambles map[string]string   `yaml:"strict_preambles"`
}

// Builder renders an AnalysisRequest into a model prompt. It is stateless
// after construction and safe for concurrent use.
type Builder struct {
	ref referenceData
}

func NewBuilder() (*Builder, error) {
	var ref referenceData
	if err := yaml.Unmarshal(referenceYAML, &ref); err != nil {
		return nil, fmt.Errorf("prompt: parse reference data: %w", err)
	}
	return &Builder{ref: ref}, nil
}

// Build renders the standard prompt for req.
func (b *Builder) Build(req domain.AnalysisRequest) (string, error) {
	preamble, ok := b.ref.Preambles[string(req.Language)]
	if !ok {
		return "", fmt.Errorf("%w: preamble for language %q", ErrMissingReferenceData, req.Language)
	}
	return b.render(preamble, req)
}

// BuildStrict renders the prompt with the hardened language preamble used for
// the single retry after a language compliance failure.
func (b *Builder) BuildStrict(req domain.AnalysisRequest) (string, error) {
	strict, ok := b.ref.StrictPreambles[string(req.Language)]
	if !ok {
		return "", fmt.Errorf("%w: strict preamble for language %q", ErrMissingReferenceData, req.Language)
	}
	preamble, ok := b.ref.Preambles[string(req.Language)]
	if !ok {
		return "", fmt.Errorf("%w: preamble for language %q", ErrMissingReferenceData, req.Language)
	}
	return b.render(strict+"\n"+preamble, req)
}

func (b *Builder) render(preamble string, req domain.AnalysisRequest) (string, error) {
	template, ok := b.ref.Sectors[req.Sector]
	if !ok {
		template, ok = b.ref.Sectors["general"]
		if !ok {
			return "", fmt.Errorf("%w: general sector template", ErrMissingReferenceData)
		}
	}

	whitelistKey := "general"
	if req.HalalStatus == domain.HalalStatusCertified {
		whitelistKey = "halal"
	}
	whitelist, ok := b.ref.Whitelists[whitelistKey]
	if !ok {
		return "", fmt.Errorf("%w: whitelist %q", ErrMissingReferenceData, whitelistKey)
	}

	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(preamble))
	sb.WriteString("\n\n")
	sb.WriteString(strings.TrimSpace(template))
	sb.WriteString("\n\nBrand details:\n")
	fmt.Fprintf(&sb, "- Brand name: %s\n", req.BrandName)
	fmt.Fprintf(&sb, "- Sector: %s\n", req.Sector)
	if req.HalalStatus != "" {
		fmt.Fprintf(&sb, "- Halal status: %s\n", req.HalalStatus)
	}
	if req.Description != "" {
		fmt.Fprintf(&sb, "- Description: %s\n", req.Description)
	}
	if req.TargetMarket != "" {
		fmt.Fprintf(&sb, "- Target market: %s\n", req.TargetMarket)
	}
	if req.MainChallenge != "" {
		fmt.Fprintf(&sb, "- Main challenge: %s\n", req.MainChallenge)
	}
	sb.WriteString("\nWhen recommending ingredients or sourcing claims, only draw from:\n")
	for _, item := range whitelist {
		fmt.Fprintf(&sb, "- %s\n", item)
	}
	return sb.String(), nil
}

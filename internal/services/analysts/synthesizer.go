package analysts

import (
	"context"
	"fmt"

	"AnalystDesk/internal/domain/models"
)

// HTTPSynthesizer posts all surviving opinions to the remote synthesis
// endpoint and decodes the final decision.
type HTTPSynthesizer struct {
	base *ServiceBase
}

func NewHTTPSynthesizer(base *ServiceBase) *HTTPSynthesizer {
	return &HTTPSynthesizer{base: base}
}

type synthesizeRequest struct {
	Subject  string                  `json:"subject"`
	Opinions []models.AnalystOpinion `json:"opinions"`
	Context  *models.ContextDigest   `json:"context,omitempty"`
}

func (s *HTTPSynthesizer) Synthesize(ctx context.Context, subject string, opinions []models.AnalystOpinion, digest *models.ContextDigest) (*models.FinalDecision, error) {
	var decision models.FinalDecision
	err := s.base.PostJSON(ctx, "/synthesize", nil, synthesizeRequest{
		Subject:  subject,
		Opinions: opinions,
		Context:  digest,
	}, &decision)
	if err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}
	return &decision, nil
}

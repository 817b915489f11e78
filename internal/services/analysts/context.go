package analysts

import (
	"context"
	"fmt"

	"AnalystDesk/internal/domain/models"
)

// HTTPContextProvider fetches the shared sentiment digest for a subject.
type HTTPContextProvider struct {
	base *ServiceBase
}

func NewHTTPContextProvider(base *ServiceBase) *HTTPContextProvider {
	return &HTTPContextProvider{base: base}
}

type collectRequest struct {
	Subject string `json:"subject"`
}

func (p *HTTPContextProvider) Collect(ctx context.Context, subject string) (*models.ContextDigest, error) {
	var digest models.ContextDigest
	if err := p.base.PostJSON(ctx, "/context", nil, collectRequest{Subject: subject}, &digest); err != nil {
		return nil, fmt.Errorf("context collect: %w", err)
	}
	digest.Subject = subject
	return &digest, nil
}

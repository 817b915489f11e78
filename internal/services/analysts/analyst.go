package analysts

import (
	"context"
	"fmt"

	"AnalystDesk/internal/domain/models"
)

// HTTPAnalyst calls one remote analyst endpoint. Each analyst id maps to its
// own path under the analysis service; the optional variant selects a model
// or prompt flavor on the remote side.
type HTTPAnalyst struct {
	base    *ServiceBase
	id      string
	variant string
}

func NewHTTPAnalyst(base *ServiceBase, id, variant string) *HTTPAnalyst {
	return &HTTPAnalyst{base: base, id: id, variant: variant}
}

type analyzeRequest struct {
	Subject string                `json:"subject"`
	Context *models.ContextDigest `json:"context,omitempty"`
}

func (a *HTTPAnalyst) Analyze(ctx context.Context, subject string, digest *models.ContextDigest) (models.AnalystOpinion, error) {
	var query map[string][]string
	if a.variant != "" {
		query = map[string][]string{"variant": {a.variant}}
	}

	var op models.AnalystOpinion
	err := a.base.PostJSON(ctx, "/analysts/"+a.id, query, analyzeRequest{Subject: subject, Context: digest}, &op)
	if err != nil {
		return models.AnalystOpinion{}, fmt.Errorf("analyst %s: %w", a.id, err)
	}
	// The provider id is authoritative on our side; remote payloads may omit it.
	op.ProviderID = a.id
	return op, nil
}

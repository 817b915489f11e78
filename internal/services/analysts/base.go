package analysts

import (
	"context"
	"fmt"
	"time"

	xhttp "AnalystDesk/pkg/http"
)

// ServiceBase centralizes HTTP client construction and JSON POST handling
// for the remote analysis endpoints.
type ServiceBase struct {
	baseURL string
	apiKey  string
	client  *xhttp.Client
}

// NewServiceBase builds an HTTP client for the analysis service.
func NewServiceBase(baseURL, apiKey string, timeout time.Duration) *ServiceBase {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ServiceBase{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

// PostJSON posts the payload to path under baseURL and decodes JSON into dest.
func (b *ServiceBase) PostJSON(ctx context.Context, path string, query map[string][]string, payload interface{}, dest interface{}) error {
	if b.client == nil || b.baseURL == "" {
		return fmt.Errorf("analysis http client not initialized")
	}
	headers := map[string]string{"Content-Type": "application/json"}
	if b.apiKey != "" {
		headers["Authorization"] = "Bearer " + b.apiKey
	}
	err := b.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodPost,
		URL:         b.baseURL + path,
		Headers:     headers,
		QueryParams: query,
		Body:        payload,
	}, dest)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	return nil
}

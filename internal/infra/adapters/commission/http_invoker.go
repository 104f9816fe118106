// File: internal/infra/adapters/commission/http_invoker.go
package commission

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"wellness-order-service/internal/domain/ports/adapter"
	"wellness-order-service/internal/infra/metrics"
)

var _ adapter.CommissionInvoker = (*HTTPInvoker)(nil)

// HTTPInvoker posts commission requests to the settlement service. Callers
// treat every failure as a logged warning; nothing here may surface to the
// purchaser or the payment provider.
type HTTPInvoker struct {
	url    string
	apiKey string
	client *http.Client
}

func NewHTTPInvoker(url, apiKey string) (*HTTPInvoker, error) {
	if url == "" {
		return nil, errors.New("commission url empty")
	}
	return &HTTPInvoker{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (i *HTTPInvoker) Invoke(ctx context.Context, req adapter.CommissionRequest) error {
	b, _ := json.Marshal(req)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, i.url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if i.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+i.apiKey)
	}

	resp, err := i.client.Do(httpReq)
	if err != nil {
		metrics.IncCommission("error")
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.IncCommission("error")
		return fmt.Errorf("commission http %d", resp.StatusCode)
	}
	metrics.IncCommission("ok")
	return nil
}

// NoopInvoker is wired when no commission endpoint is configured.
type NoopInvoker struct{}

func (NoopInvoker) Invoke(ctx context.Context, req adapter.CommissionRequest) error { return nil }

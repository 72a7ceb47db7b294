package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WebhookPublisher POSTs each event as JSON to a configured endpoint.
// Failures surface as errors so the caller can log them; they never block
// domain writes.
type WebhookPublisher struct {
	url   string
	httpc *http.Client
}

func NewWebhookPublisher(url string) *WebhookPublisher {
	return &WebhookPublisher{
		url:   url,
		httpc: &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *WebhookPublisher) Dispatch(ctx context.Context, ev Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := p.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook %s: %s", ev.Kind, resp.Status)
	}
	return nil
}

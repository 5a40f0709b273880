package publisher

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"sjsage522/gramrelay/logger"
	"sjsage522/gramrelay/pkg/errors"
)

// maxErrorBody bounds how much of a rejected response ends up in the error
const maxErrorBody = 256

// WebhookPublisher posts payloads to an incoming webhook URL
type WebhookPublisher struct {
	client *resty.Client
	url    string
}

// Ensure WebhookPublisher implements Publisher
var _ Publisher = (*WebhookPublisher)(nil)

// NewWebhookPublisher creates a publisher for webhookURL
func NewWebhookPublisher(webhookURL string, timeout time.Duration) *WebhookPublisher {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("Content-Type", "application/json")

	return &WebhookPublisher{
		client: client,
		url:    webhookURL,
	}
}

// Publish posts payload as the raw request body. Any non-2xx status is a failure.
func (p *WebhookPublisher) Publish(ctx context.Context, payload []byte) error {
	res, err := p.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(p.url)
	if err != nil {
		return errors.NewDelivery(p.url, "webhook request failed", err)
	}

	if res.StatusCode() < http.StatusOK || res.StatusCode() >= http.StatusMultipleChoices {
		body := res.String()
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return errors.NewDelivery(p.url, "webhook rejected payload",
			fmt.Errorf("status %d: %s", res.StatusCode(), body))
	}

	logger.ForPublisher().Debug().
		Int("status", res.StatusCode()).
		Dur("elapsed", res.Time()).
		Msg("Payload delivered")
	return nil
}

// Close releases idle connections
func (p *WebhookPublisher) Close() error {
	p.client.GetClient().CloseIdleConnections()
	return nil
}

package kioskAuth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Notifier defines a public type used by kioskAuth APIs.
//
// Notifier instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Notifier interface {
	// SendOTP delivers a plaintext code to the given address. The name is
	// the citizen's display name and may be empty.
	SendOTP(ctx context.Context, address, name, code string) error
}

// NoOpNotifier defines a public type used by kioskAuth APIs.
//
// NoOpNotifier instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type NoOpNotifier struct{}

// SendOTP describes the sendotp operation and its observable behavior.
//
// SendOTP may return an error when input validation, dependency calls, or security checks fail.
// SendOTP does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (NoOpNotifier) SendOTP(_ context.Context, _, _, _ string) error {
	return nil
}

// WebhookNotifier posts codes to an external delivery service. The service
// contract is a JSON POST and a JSON {"status": "success"|...} reply; any
// non-2xx response or non-success status is a delivery failure.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier describes the newwebhooknotifier operation and its observable behavior.
//
// NewWebhookNotifier may return an error when input validation, dependency calls, or security checks fail.
// NewWebhookNotifier does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewWebhookNotifier(url string, timeout time.Duration) (*WebhookNotifier, error) {
	if url == "" {
		return nil, errors.New("webhook url is required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &WebhookNotifier{
		url: url,
		client: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type webhookRequest struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	OTP   string `json:"otp"`
}

type webhookResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// SendOTP describes the sendotp operation and its observable behavior.
//
// SendOTP may return an error when input validation, dependency calls, or security checks fail.
// SendOTP does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (n *WebhookNotifier) SendOTP(ctx context.Context, address, name, code string) error {
	payload, err := json.Marshal(webhookRequest{
		Email: address,
		Name:  name,
		OTP:   code,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: webhook returned %d", ErrNotificationFailed, resp.StatusCode)
	}

	var decoded webhookResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}
	if decoded.Status != "success" {
		return fmt.Errorf("%w: %s", ErrNotificationFailed, decoded.Message)
	}

	return nil
}

package kioskAuth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewWebhookNotifierRequiresURL(t *testing.T) {
	if _, err := NewWebhookNotifier("", time.Second); err == nil {
		t.Fatal("expected error for empty url")
	}
}

func TestWebhookNotifierDelivers(t *testing.T) {
	var got webhookRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		_ = json.NewEncoder(w).Encode(webhookResponse{Status: "success"})
	}))
	defer srv.Close()

	notifier, err := NewWebhookNotifier(srv.URL, time.Second)
	if err != nil {
		t.Fatalf("NewWebhookNotifier failed: %v", err)
	}

	if err := notifier.SendOTP(context.Background(), "asha@example.com", "Asha Rao", "123456"); err != nil {
		t.Fatalf("SendOTP failed: %v", err)
	}
	if got.Email != "asha@example.com" || got.Name != "Asha Rao" || got.OTP != "123456" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestWebhookNotifierRejectsFailureReplies(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"non-2xx", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}},
		{"non-success status", func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(webhookResponse{Status: "error", Message: "mailbox full"})
		}},
		{"garbage body", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			notifier, err := NewWebhookNotifier(srv.URL, time.Second)
			if err != nil {
				t.Fatalf("NewWebhookNotifier failed: %v", err)
			}

			if err := notifier.SendOTP(context.Background(), "asha@example.com", "", "123456"); !errors.Is(err, ErrNotificationFailed) {
				t.Fatalf("expected ErrNotificationFailed, got %v", err)
			}
		})
	}
}

func TestWebhookNotifierHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server notices the client disconnect and
		// cancels the request context; otherwise Close deadlocks below.
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer srv.Close()

	notifier, err := NewWebhookNotifier(srv.URL, time.Minute)
	if err != nil {
		t.Fatalf("NewWebhookNotifier failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := notifier.SendOTP(ctx, "asha@example.com", "", "123456"); !errors.Is(err, ErrNotificationFailed) {
		t.Fatalf("expected ErrNotificationFailed on cancelled context, got %v", err)
	}
}

package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tebex-support-bot/internal/model"
	"tebex-support-bot/internal/service"
)

// fakePurchases embeds the interface so only the webhook path needs a body.
type fakePurchases struct {
	service.PurchaseService

	mu            sync.Mutex
	notifications []*model.PurchasePayload
}

func (f *fakePurchases) HandleNotification(ctx context.Context, payload *model.PurchasePayload) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notifications = append(f.notifications, payload)
}

func newTestServer(secret string) (*Server, *fakePurchases) {
	purchases := &fakePurchases{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(purchases, secret, logger), purchases
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer("")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestWebhookDeliversNotification(t *testing.T) {
	srv, purchases := newTestServer("hunter2")

	body := `{"action":"refund","transaction":"tbx-1234567890abcd-abc123","packageName":"EssentialsPro"}`
	req := httptest.NewRequest(http.MethodPost, "/webhook/tebex", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Secret", "hunter2")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, purchases.notifications, 1)
	assert.Equal(t, model.ActionRefund, purchases.notifications[0].Action)
	assert.Equal(t, "tbx-1234567890abcd-abc123", purchases.notifications[0].Transaction)
}

func TestWebhookRejectsBadSecret(t *testing.T) {
	srv, purchases := newTestServer("hunter2")

	body := `{"action":"refund","transaction":"tbx-1234567890abcd-abc123","packageName":"EssentialsPro"}`
	for _, secret := range []string{"", "wrong"} {
		req := httptest.NewRequest(http.MethodPost, "/webhook/tebex", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if secret != "" {
			req.Header.Set("X-Webhook-Secret", secret)
		}

		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	assert.Empty(t, purchases.notifications)
}

func TestWebhookRejectsMalformedPayload(t *testing.T) {
	srv, purchases := newTestServer("")

	for _, body := range []string{"not json", `{"action":""}`, `{"transaction":"tbx-x"}`} {
		req := httptest.NewRequest(http.MethodPost, "/webhook/tebex", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}

	assert.Empty(t, purchases.notifications)
}

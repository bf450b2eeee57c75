package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tebex-support-bot/internal/config"
	"tebex-support-bot/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) TebexClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewTebexClient(&config.Tebex{
		BaseApiURL: server.URL,
		Secret:     "store-secret",
	})
}

func TestVerifyPurchase(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payments/tbx-1234567890abcd-abc123", r.URL.Path)
		assert.Equal(t, "store-secret", r.Header.Get("X-Tebex-Secret"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": 1337,
			"amount": "19.99",
			"date": "2024-05-01T12:00:00+00:00",
			"status": "Complete",
			"currency": {"iso_4217": "USD", "symbol": "$"},
			"email": "steve@example.com",
			"player": {"id": 1, "name": "Steve", "uuid": "abc-123"},
			"packages": [{"id": 10, "name": "EssentialsPro", "quantity": 1}]
		}`))
	})

	payment, err := client.VerifyPurchase(context.Background(), "tbx-1234567890abcd-abc123")
	require.NoError(t, err)

	assert.Equal(t, model.TebexStatusComplete, payment.Status)
	assert.Equal(t, "19.99", payment.Amount)
	assert.Equal(t, "USD", payment.Currency.ISO4217)
	assert.Equal(t, "Steve", payment.Player.Name)
	require.Len(t, payment.Packages, 1)
	assert.Equal(t, "EssentialsPro", payment.Packages[0].Name)
}

func TestVerifyPurchaseNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.VerifyPurchase(context.Background(), "tbx-1234567890abcd-abc123")
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestVerifyPurchaseBadSecret(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.VerifyPurchase(context.Background(), "tbx-1234567890abcd-abc123")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestVerifyPurchaseServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.VerifyPurchase(context.Background(), "tbx-1234567890abcd-abc123")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPaymentNotFound)
	assert.Contains(t, err.Error(), "500")
}

func TestParsePurchasePayload(t *testing.T) {
	client := NewTebexClient(&config.Tebex{BaseApiURL: "http://unused", Secret: "x"})

	payload := client.ParsePurchasePayload(`{
		"action": "purchase",
		"transaction": "tbx-1234567890abcd-abc123",
		"packageName": "EssentialsPro",
		"purchaserName": "Steve",
		"discordId": " 123456789 ",
		"time": "15:04",
		"date": "May 1, 2024"
	}`)
	require.NotNil(t, payload)
	assert.Equal(t, model.ActionPurchase, payload.Action)
	assert.Equal(t, "123456789", payload.DiscordID)
	assert.NotZero(t, payload.Timestamp)

	assert.Nil(t, client.ParsePurchasePayload("not json at all"))
	assert.Nil(t, client.ParsePurchasePayload(`{"action": "purchase"}`))
	assert.Nil(t, client.ParsePurchasePayload(`{"transaction": "tbx-x", "packageName": "p"}`))
}

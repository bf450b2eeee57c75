package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tebex-support-bot/internal/config"
	"tebex-support-bot/internal/model"
)

var (
	// ErrPaymentNotFound means the storefront has no payment for the id (404).
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrUnauthorized means the configured Tebex secret was rejected (401).
	ErrUnauthorized = errors.New("tebex secret rejected")
)

// PurchaseVerifier is the slice of the Tebex API the services need.
type PurchaseVerifier interface {
	VerifyPurchase(ctx context.Context, transactionID string) (*model.TebexPayment, error)
}

type TebexClient interface {
	PurchaseVerifier
	ParsePurchasePayload(raw string) *model.PurchasePayload
}

type tebexClientImpl struct {
	httpClient *http.Client
	baseApiURL string
	secret     string
}

func NewTebexClient(tebexCfg *config.Tebex) TebexClient {
	return &tebexClientImpl{
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		baseApiURL: tebexCfg.BaseApiURL,
		secret:     tebexCfg.Secret,
	}
}

func (c *tebexClientImpl) VerifyPurchase(ctx context.Context, transactionID string) (*model.TebexPayment, error) {
	url := fmt.Sprintf("%s/payments/%s", c.baseApiURL, transactionID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("X-Tebex-Secret", c.secret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tebex request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrPaymentNotFound
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("tebex error %d: %s", resp.StatusCode, string(b))
	}

	var payment model.TebexPayment
	if err := json.NewDecoder(resp.Body).Decode(&payment); err != nil {
		return nil, fmt.Errorf("decode tebex response: %w", err)
	}

	return &payment, nil
}

// ParsePurchasePayload decodes a storefront purchase notification. Returns
// nil for anything that is not a well-formed payload; callers treat that as
// "not for us" and move on.
func (c *tebexClientImpl) ParsePurchasePayload(raw string) *model.PurchasePayload {
	var payload model.PurchasePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil
	}

	if payload.Action == "" || payload.PackageName == "" || payload.Transaction == "" {
		return nil
	}

	payload.DiscordID = strings.TrimSpace(payload.DiscordID)

	if payload.Timestamp == 0 {
		payload.Timestamp = utcTimestamp(payload.Time, payload.Date)
	}

	return &payload
}

// utcTimestamp rebuilds a unix timestamp from the notification's separate
// date ("Jan 2, 2006") and time ("15:04") fields.
func utcTimestamp(timeOfDay, date string) int64 {
	parsed, err := time.Parse("Jan 2, 2006 15:04", fmt.Sprintf("%s %s", date, timeOfDay))
	if err != nil {
		return time.Now().UTC().Unix()
	}
	return parsed.UTC().Unix()
}

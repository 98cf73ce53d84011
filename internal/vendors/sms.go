// Package vendors wraps the third-party APIs the marketplace depends on:
// SMS verification, screenshot capture and SEO metrics.
package vendors

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"postmarket/internal/models"
	"postmarket/internal/observability"

	"github.com/redis/go-redis/v9"
)

const (
	smsCodeTTL    = 10 * time.Minute
	smsCodeDigits = 6
)

// SMSClient sends verification codes through the SMS vendor and keeps the
// pending codes in Redis until they are checked or expire.
type SMSClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	rdb     *redis.Client
}

// NewSMSClient returns a configured SMS vendor client.
func NewSMSClient(baseURL, apiKey string, rdb *redis.Client) *SMSClient {
	return &SMSClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
		rdb:     rdb,
	}
}

func smsCodeKey(phone string) string {
	return "sms:code:" + phone
}

// generateCode produces a zero-padded numeric code.
func generateCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < smsCodeDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", smsCodeDigits, n), nil
}

// SendCode generates a verification code, stores it with a TTL and asks the
// vendor to deliver it. The code is single-use.
func (c *SMSClient) SendCode(ctx context.Context, phone string) error {
	if c.rdb == nil {
		return models.NewInternalError(fmt.Errorf("sms verification requires redis"))
	}

	code, err := generateCode()
	if err != nil {
		return models.NewInternalError(err)
	}
	if err := c.rdb.Set(ctx, smsCodeKey(phone), code, smsCodeTTL).Err(); err != nil {
		return models.NewInternalError(err)
	}

	body, err := json.Marshal(map[string]string{
		"to":   phone,
		"body": fmt.Sprintf("Your verification code is %s", code),
	})
	if err != nil {
		return models.NewInternalError(err)
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return models.NewInternalError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		observability.ObserveVendorRequest("sms", "error", start)
		return models.NewUpstreamError("SMS", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		observability.ObserveVendorRequest("sms", "error", start)
		return models.NewUpstreamError("SMS", fmt.Errorf("vendor returned status %d", resp.StatusCode))
	}
	observability.ObserveVendorRequest("sms", "ok", start)
	return nil
}

// CheckCode consumes the stored code for a phone number. A correct code is
// deleted so it cannot be replayed.
func (c *SMSClient) CheckCode(ctx context.Context, phone, code string) error {
	if c.rdb == nil {
		return models.NewInternalError(fmt.Errorf("sms verification requires redis"))
	}

	stored, err := c.rdb.Get(ctx, smsCodeKey(phone)).Result()
	if err == redis.Nil {
		return models.NewValidationError("Verification code expired or never sent")
	}
	if err != nil {
		return models.NewInternalError(err)
	}
	if stored != code {
		return models.NewValidationError("Incorrect verification code")
	}

	c.rdb.Del(ctx, smsCodeKey(phone))
	return nil
}

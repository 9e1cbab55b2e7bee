package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kelechio/storefront-backend/pkg/config"
)

const (
	// VerificationSuccess is the status PayPal returns for an authentic event.
	VerificationSuccess = "SUCCESS"

	responseBodyReadLimit int64 = 1 << 20
)

var errWebhookIDRequired = errors.New("paypal webhook id is required")

// Client talks to PayPal's webhook signature verification API. Verification
// is an outbound HTTP round-trip, so every call carries an explicit timeout;
// timeouts are reported as errors and the caller treats them as verification
// failure.
type Client struct {
	httpClient   *http.Client
	authURL      string
	verifyURL    string
	webhookID    string
	clientID     string
	clientSecret string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds the PayPal client from configuration.
func NewClient(cfg config.PayPalConfig, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.WebhookID) == "" {
		return nil, errWebhookIDRequired
	}

	timeout := cfg.VerifyTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	client := &Client{
		httpClient:   &http.Client{Timeout: timeout},
		authURL:      cfg.AuthURL,
		verifyURL:    cfg.VerifyURL,
		webhookID:    cfg.WebhookID,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// WebhookID returns the configured webhook id.
func (c *Client) WebhookID() string {
	return c.webhookID
}

// SignatureHeaders carries the transmission headers PayPal sends with each
// webhook delivery.
type SignatureHeaders struct {
	TransmissionID   string
	TransmissionTime string
	CertURL          string
	AuthAlgo         string
	TransmissionSig  string
}

// Complete reports whether every header required for verification is present.
func (h SignatureHeaders) Complete() bool {
	return h.TransmissionID != "" &&
		h.TransmissionTime != "" &&
		h.CertURL != "" &&
		h.AuthAlgo != "" &&
		h.TransmissionSig != ""
}

type verifyRequest struct {
	TransmissionID   string          `json:"transmission_id"`
	TransmissionTime string          `json:"transmission_time"`
	CertURL          string          `json:"cert_url"`
	AuthAlgo         string          `json:"auth_algo"`
	TransmissionSig  string          `json:"transmission_sig"`
	WebhookID        string          `json:"webhook_id"`
	WebhookEvent     json.RawMessage `json:"webhook_event"`
}

type verifyResponse struct {
	VerificationStatus string `json:"verification_status"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// VerifyWebhookSignature round-trips the transmission material through
// PayPal's verification endpoint and returns the verification status.
// Any transport failure (including timeout) surfaces as an error.
func (c *Client) VerifyWebhookSignature(ctx context.Context, headers SignatureHeaders, rawEvent []byte) (string, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return "", fmt.Errorf("acquiring paypal access token: %w", err)
	}

	payload := verifyRequest{
		TransmissionID:   headers.TransmissionID,
		TransmissionTime: headers.TransmissionTime,
		CertURL:          headers.CertURL,
		AuthAlgo:         headers.AuthAlgo,
		TransmissionSig:  headers.TransmissionSig,
		WebhookID:        c.webhookID,
		WebhookEvent:     json.RawMessage(rawEvent),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding verification request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building verification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling verification endpoint: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		return "", fmt.Errorf("reading verification response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("verification endpoint returned %d", resp.StatusCode)
	}

	var decoded verifyResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("decoding verification response: %w", err)
	}
	return decoded.VerificationStatus, nil
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.clientID, c.clientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("auth endpoint returned %d", resp.StatusCode)
	}

	var decoded tokenResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", err
	}
	if decoded.AccessToken == "" {
		return "", errors.New("auth response missing access token")
	}
	return decoded.AccessToken, nil
}

package paypal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kelechio/storefront-backend/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, verifyStatus string) (*Client, *int) {
	t.Helper()

	verifyCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		user, _, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "client-id", user)
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-123", "token_type": "Bearer"})
	})
	mux.HandleFunc("/verify", func(w http.ResponseWriter, r *http.Request) {
		verifyCalls++
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "WH-TEST", payload["webhook_id"])
		assert.Equal(t, "tid-1", payload["transmission_id"])

		json.NewEncoder(w).Encode(map[string]string{"verification_status": verifyStatus})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := NewClient(config.PayPalConfig{
		ClientID:      "client-id",
		ClientSecret:  "client-secret",
		WebhookID:     "WH-TEST",
		AuthURL:       server.URL + "/token",
		VerifyURL:     server.URL + "/verify",
		VerifyTimeout: 2 * time.Second,
	})
	require.NoError(t, err)
	return client, &verifyCalls
}

func testHeaders() SignatureHeaders {
	return SignatureHeaders{
		TransmissionID:   "tid-1",
		TransmissionTime: "2024-01-01T00:00:00Z",
		CertURL:          "https://api.paypal.com/cert",
		AuthAlgo:         "SHA256withRSA",
		TransmissionSig:  "sig",
	}
}

func TestVerifyWebhookSignatureSuccess(t *testing.T) {
	client, calls := newTestClient(t, VerificationSuccess)

	status, err := client.VerifyWebhookSignature(context.Background(), testHeaders(), []byte(`{"id":"WH-1"}`))
	require.NoError(t, err)
	assert.Equal(t, VerificationSuccess, status)
	assert.Equal(t, 1, *calls)
}

func TestVerifyWebhookSignatureFailureStatus(t *testing.T) {
	client, _ := newTestClient(t, "FAILURE")

	status, err := client.VerifyWebhookSignature(context.Background(), testHeaders(), []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "FAILURE", status)
}

func TestVerifyWebhookSignatureTimeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(slow.Close)

	client, err := NewClient(config.PayPalConfig{
		WebhookID:     "WH-TEST",
		AuthURL:       slow.URL,
		VerifyURL:     slow.URL,
		VerifyTimeout: 20 * time.Millisecond,
	})
	require.NoError(t, err)

	_, err = client.VerifyWebhookSignature(context.Background(), testHeaders(), []byte(`{}`))
	require.Error(t, err)
}

func TestSignatureHeadersComplete(t *testing.T) {
	t.Parallel()

	assert.True(t, testHeaders().Complete())

	partial := testHeaders()
	partial.CertURL = ""
	assert.False(t, partial.Complete())
}

func TestNewClientRequiresWebhookID(t *testing.T) {
	t.Parallel()

	_, err := NewClient(config.PayPalConfig{})
	require.Error(t, err)
}

package webhooks

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kelechio/storefront-backend/internal/notifications"
	"github.com/kelechio/storefront-backend/internal/payments"
	paystackwebhook "github.com/kelechio/storefront-backend/internal/webhooks/paystack"
	"github.com/kelechio/storefront-backend/pkg/logger"
)

type stubReconciler struct {
	result payments.Result
	err    error
	calls  int
}

func (s *stubReconciler) Reconcile(_ context.Context, _ payments.Payment) (payments.Result, error) {
	s.calls++
	return s.result, s.err
}

type nopSender struct{}

func (nopSender) SendPaymentSuccess(context.Context, notifications.Notice) error { return nil }
func (nopSender) SendPaymentFailed(context.Context, notifications.Notice) error  { return nil }

const secretKey = "sk_test_secret"

func newPaystackHandler(t *testing.T, rec *stubReconciler) http.HandlerFunc {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test"})
	notifier, err := notifications.NewService(nopSender{}, logg)
	require.NoError(t, err)
	svc, err := paystackwebhook.NewService(rec, notifier, nil, logg)
	require.NoError(t, err)
	return PaystackWebhook(svc, secretKey, logg)
}

func sign(body string) string {
	mac := hmac.New(sha512.New, []byte(secretKey))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

const paystackBody = `{"event":"charge.success","data":{"id":1,"reference":"REF111AAA222","status":"success","gateway_response":"Successful","amount":91025,"customer":{"email":"ada@example.com"}}}`

func TestPaystackWebhookRejectsBadSignature(t *testing.T) {
	rec := &stubReconciler{result: payments.ResultSuccessful}
	handler := newPaystackHandler(t, rec)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/paystack", strings.NewReader(paystackBody))
	req.Header.Set("x-paystack-signature", "deadbeef")
	w := httptest.NewRecorder()
	handler(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Zero(t, rec.calls)
}

func TestPaystackWebhookRejectsMissingSignature(t *testing.T) {
	rec := &stubReconciler{result: payments.ResultSuccessful}
	handler := newPaystackHandler(t, rec)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/paystack", strings.NewReader(paystackBody))
	w := httptest.NewRecorder()
	handler(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaystackWebhookAcknowledgesVerifiedEvent(t *testing.T) {
	rec := &stubReconciler{result: payments.ResultSuccessful}
	handler := newPaystackHandler(t, rec)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/paystack", strings.NewReader(paystackBody))
	req.Header.Set("x-paystack-signature", sign(paystackBody))
	w := httptest.NewRecorder()
	handler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, rec.calls)
}

func TestPaystackWebhookAcknowledgesIgnoredEvent(t *testing.T) {
	rec := &stubReconciler{result: payments.ResultSuccessful}
	handler := newPaystackHandler(t, rec)

	body := `{"event":"charge.failed","data":{"reference":"R"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/paystack", strings.NewReader(body))
	req.Header.Set("x-paystack-signature", sign(body))
	w := httptest.NewRecorder()
	handler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Zero(t, rec.calls)
}

func TestPaystackWebhookAcknowledgesProcessingFailure(t *testing.T) {
	rec := &stubReconciler{err: errors.New("db down")}
	handler := newPaystackHandler(t, rec)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/paystack", strings.NewReader(paystackBody))
	req.Header.Set("x-paystack-signature", sign(paystackBody))
	w := httptest.NewRecorder()
	handler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

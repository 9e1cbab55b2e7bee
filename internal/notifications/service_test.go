package notifications

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/kelechio/storefront-backend/pkg/logger"
)

type recordingSender struct {
	mu      sync.Mutex
	success []Notice
	failed  []Notice
	done    chan struct{}
	panics  bool
}

func newRecordingSender() *recordingSender {
	return &recordingSender{done: make(chan struct{}, 4)}
}

func (r *recordingSender) SendPaymentSuccess(_ context.Context, notice Notice) error {
	if r.panics {
		close(r.done)
		panic("boom")
	}
	r.mu.Lock()
	r.success = append(r.success, notice)
	r.mu.Unlock()
	r.done <- struct{}{}
	return nil
}

func (r *recordingSender) SendPaymentFailed(_ context.Context, notice Notice) error {
	r.mu.Lock()
	r.failed = append(r.failed, notice)
	r.mu.Unlock()
	r.done <- struct{}{}
	return nil
}

func waitDone(t *testing.T, ch chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not dispatched")
	}
}

func TestNotifyPaymentSuccessDispatchesAsync(t *testing.T) {
	sender := newRecordingSender()
	svc, err := NewService(sender, logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)

	notice := Notice{Name: "Ada", Email: "ada@example.com", TxRef: "ABC123", Amount: decimal.RequireFromString("910.25")}
	svc.NotifyPaymentSuccess(context.Background(), notice)
	waitDone(t, sender.done)

	sender.mu.Lock()
	defer sender.mu.Unlock()
	require.Len(t, sender.success, 1)
	require.Equal(t, "ada@example.com", sender.success[0].Email)
}

func TestNotifyPaymentFailedDispatchesAsync(t *testing.T) {
	sender := newRecordingSender()
	svc, _ := NewService(sender, logger.New(logger.Options{ServiceName: "test"}))

	svc.NotifyPaymentFailed(context.Background(), Notice{Email: "ada@example.com"})
	waitDone(t, sender.done)

	sender.mu.Lock()
	defer sender.mu.Unlock()
	require.Len(t, sender.failed, 1)
}

func TestNotifySurvivesCancelledCallerContext(t *testing.T) {
	sender := newRecordingSender()
	svc, _ := NewService(sender, logger.New(logger.Options{ServiceName: "test"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc.NotifyPaymentSuccess(ctx, Notice{Email: "ada@example.com"})
	waitDone(t, sender.done)
}

func TestNotifyRecoversSenderPanic(t *testing.T) {
	sender := newRecordingSender()
	sender.panics = true
	svc, _ := NewService(sender, logger.New(logger.Options{ServiceName: "test"}))

	require.NotPanics(t, func() {
		svc.NotifyPaymentSuccess(context.Background(), Notice{Email: "ada@example.com"})
		<-sender.done
		time.Sleep(50 * time.Millisecond)
	})
}

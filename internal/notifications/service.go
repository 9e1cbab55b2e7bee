package notifications

import (
	"context"
	stdErrors "errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kelechio/storefront-backend/pkg/logger"
)

// Notice is the payload for a payment outcome message. Amount is what the
// payer actually sent, not the order total.
type Notice struct {
	Name   string
	Email  string
	TxRef  string
	Amount decimal.Decimal
}

// Sender delivers payment outcome messages. Implementations own the channel
// (email provider, queue, log).
type Sender interface {
	SendPaymentSuccess(ctx context.Context, notice Notice) error
	SendPaymentFailed(ctx context.Context, notice Notice) error
}

// Service dispatches notifications without blocking the caller. Reconciliation
// outcomes must never depend on delivery, so sends run on their own goroutine
// with a detached context and a recover guard.
type Service struct {
	sender  Sender
	logg    *logger.Logger
	timeout time.Duration
}

const defaultSendTimeout = 15 * time.Second

func NewService(sender Sender, logg *logger.Logger) (*Service, error) {
	if sender == nil {
		return nil, stdErrors.New("sender is required")
	}
	if logg == nil {
		return nil, stdErrors.New("logger is required")
	}
	return &Service{sender: sender, logg: logg, timeout: defaultSendTimeout}, nil
}

func (s *Service) NotifyPaymentSuccess(ctx context.Context, notice Notice) {
	s.dispatch(ctx, notice, s.sender.SendPaymentSuccess, "payment success")
}

func (s *Service) NotifyPaymentFailed(ctx context.Context, notice Notice) {
	s.dispatch(ctx, notice, s.sender.SendPaymentFailed, "payment failure")
}

func (s *Service) dispatch(ctx context.Context, notice Notice, send func(context.Context, Notice) error, kind string) {
	ctx = s.logg.WithTxRef(context.WithoutCancel(ctx), notice.TxRef)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logg.Error(ctx, "notification sender panicked", nil)
			}
		}()

		sendCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		if err := send(sendCtx, notice); err != nil {
			s.logg.Error(ctx, "sending "+kind+" notification", err)
			return
		}
		s.logg.Info(ctx, kind+" notification dispatched")
	}()
}

// LogSender writes notifications to the structured log. Stands in for a real
// mail provider in dev and tests.
type LogSender struct {
	logg *logger.Logger
}

func NewLogSender(logg *logger.Logger) *LogSender {
	return &LogSender{logg: logg}
}

func (l *LogSender) SendPaymentSuccess(ctx context.Context, notice Notice) error {
	ctx = l.logg.WithFields(ctx, map[string]any{
		"email":  notice.Email,
		"amount": notice.Amount.StringFixed(2),
	})
	l.logg.Info(ctx, "payment received email")
	return nil
}

func (l *LogSender) SendPaymentFailed(ctx context.Context, notice Notice) error {
	ctx = l.logg.WithFields(ctx, map[string]any{
		"email":  notice.Email,
		"amount": notice.Amount.StringFixed(2),
	})
	l.logg.Info(ctx, "payment failed email")
	return nil
}

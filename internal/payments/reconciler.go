package payments

import (
	"context"
	stdErrors "errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kelechio/storefront-backend/internal/notifications"
	"github.com/kelechio/storefront-backend/internal/orders"
	"github.com/kelechio/storefront-backend/internal/stock"
	"github.com/kelechio/storefront-backend/pkg/db/models"
	"github.com/kelechio/storefront-backend/pkg/enums"
	"github.com/kelechio/storefront-backend/pkg/errors"
	"github.com/kelechio/storefront-backend/pkg/logger"
	"github.com/kelechio/storefront-backend/pkg/metrics"
)

// Result classifies what a reconciliation attempt did.
type Result string

const (
	// ResultSuccessful: payment covered the order, stock decremented.
	ResultSuccessful Result = "successful"
	// ResultFailed: payment fell short of the payable amount.
	ResultFailed Result = "failed"
	// ResultDuplicate: the order was already reconciled; nothing happened.
	ResultDuplicate Result = "duplicate"
	// ResultOrphan: no order carries the reference.
	ResultOrphan Result = "orphan"
)

// Payment is a gateway's claim that money moved for a transaction reference.
type Payment struct {
	Gateway   string
	TxRef     string
	Amount    decimal.Decimal
	PayerName string
	// PayerEmail falls back to the order's shipping email when the gateway
	// omits it.
	PayerEmail string
}

// TxRunner runs a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Reconciler settles gateway payment claims against pending orders. All state
// transitions go through a compare-and-swap on payment_status, so replayed and
// concurrent webhooks collapse to exactly one set of side effects.
type Reconciler interface {
	Reconcile(ctx context.Context, payment Payment) (Result, error)
}

type reconciler struct {
	tx       TxRunner
	orders   orders.Repository
	stock    stock.Decrementer
	notifier *notifications.Service
	logg     *logger.Logger

	shippingFee decimal.Decimal
}

type Options struct {
	Tx       TxRunner
	Orders   orders.Repository
	Stock    stock.Decrementer
	Notifier *notifications.Service
	Logger   *logger.Logger

	ShippingFee decimal.Decimal
}

func NewReconciler(opts Options) (Reconciler, error) {
	if opts.Tx == nil {
		return nil, stdErrors.New("transaction runner is required")
	}
	if opts.Orders == nil {
		return nil, stdErrors.New("orders repository is required")
	}
	if opts.Stock == nil {
		return nil, stdErrors.New("stock decrementer is required")
	}
	if opts.Notifier == nil {
		return nil, stdErrors.New("notifier is required")
	}
	if opts.Logger == nil {
		return nil, stdErrors.New("logger is required")
	}
	return &reconciler{
		tx:          opts.Tx,
		orders:      opts.Orders,
		stock:       opts.Stock,
		notifier:    opts.Notifier,
		logg:        opts.Logger,
		shippingFee: opts.ShippingFee,
	}, nil
}

func (r *reconciler) Reconcile(ctx context.Context, payment Payment) (Result, error) {
	ctx = r.logg.WithTxRef(ctx, payment.TxRef)

	order, err := r.orders.FindByTxRef(ctx, payment.TxRef)
	if err != nil {
		return "", errors.Wrap(errors.CodeInternal, err, "loading order for reconciliation")
	}
	if order == nil {
		r.logg.Warn(ctx, "payment received for unknown transaction reference")
		metrics.Reconciliations.WithLabelValues(payment.Gateway, metrics.ResultOrphan).Inc()
		return ResultOrphan, nil
	}

	if order.PaymentStatus.IsTerminal() {
		r.logg.Info(ctx, "order already reconciled, ignoring replay")
		metrics.Reconciliations.WithLabelValues(payment.Gateway, metrics.ResultDuplicate).Inc()
		return ResultDuplicate, nil
	}

	payable := orders.ComputeTotals(order, r.shippingFee).Total
	notice := r.buildNotice(order, payment)

	if payment.Amount.LessThan(payable) {
		rows, err := r.orders.SetPaymentStatusIf(ctx, payment.TxRef,
			enums.PaymentStatusPending, enums.PaymentStatusFailed)
		if err != nil {
			return "", errors.Wrap(errors.CodeInternal, err, "marking payment failed")
		}
		if rows == 0 {
			metrics.Reconciliations.WithLabelValues(payment.Gateway, metrics.ResultDuplicate).Inc()
			return ResultDuplicate, nil
		}
		r.logg.Warn(ctx, "payment amount below payable total")
		r.notifier.NotifyPaymentFailed(ctx, notice)
		metrics.Reconciliations.WithLabelValues(payment.Gateway, metrics.ResultFailed).Inc()
		return ResultFailed, nil
	}

	var swapped bool
	err = r.tx.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := r.orders.WithTx(tx).SetPaymentStatusIf(ctx, payment.TxRef,
			enums.PaymentStatusPending, enums.PaymentStatusSuccessful)
		if err != nil {
			return err
		}
		if rows == 0 {
			return nil
		}
		swapped = true
		return r.stock.DecrementForLines(ctx, tx, order.Items)
	})
	if err != nil {
		return "", errors.Wrap(errors.CodeInternal, err, "settling payment")
	}
	if !swapped {
		metrics.Reconciliations.WithLabelValues(payment.Gateway, metrics.ResultDuplicate).Inc()
		return ResultDuplicate, nil
	}

	r.logg.Info(ctx, "payment reconciled, stock decremented")
	r.notifier.NotifyPaymentSuccess(ctx, notice)
	metrics.Reconciliations.WithLabelValues(payment.Gateway, metrics.ResultSuccessful).Inc()
	return ResultSuccessful, nil
}

func (r *reconciler) buildNotice(order *models.Order, payment Payment) notifications.Notice {
	name := payment.PayerName
	if name == "" {
		name = order.FullName
	}
	email := payment.PayerEmail
	if email == "" {
		email = order.Email
	}
	return notifications.Notice{
		Name:   name,
		Email:  email,
		TxRef:  payment.TxRef,
		Amount: payment.Amount,
	}
}

package checkout

import (
	"context"
	stdErrors "errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kelechio/storefront-backend/internal/cart"
	"github.com/kelechio/storefront-backend/internal/coupons"
	"github.com/kelechio/storefront-backend/internal/orders"
	"github.com/kelechio/storefront-backend/internal/shipping"
	"github.com/kelechio/storefront-backend/pkg/db"
	"github.com/kelechio/storefront-backend/pkg/db/models"
	"github.com/kelechio/storefront-backend/pkg/enums"
	"github.com/kelechio/storefront-backend/pkg/errors"
	"github.com/kelechio/storefront-backend/pkg/logger"
	"github.com/kelechio/storefront-backend/pkg/types"
)

// Input is a checkout request for a registered user. CouponCode is optional;
// exactly one of ShippingID and Shipping must be set.
type Input struct {
	CouponCode    string
	ShippingID    *uuid.UUID
	Shipping      *shipping.AddressInput
	PaymentMethod enums.PaymentMethod
}

// Result is the assembled order with its computed amounts. The order's
// payment stays PENDING until a gateway webhook reconciles it.
type Result struct {
	Order  *models.Order
	Totals orders.Totals
}

// TxRunner runs a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service turns a user's cart into a pending order.
type Service interface {
	Checkout(ctx context.Context, userID uuid.UUID, input Input) (*Result, error)
}

type service struct {
	tx       TxRunner
	carts    cart.Repository
	orders   orders.Repository
	coupons  coupons.Service
	shipping shipping.Service
	logg     *logger.Logger

	shippingFee   decimal.Decimal
	txRefAttempts int
}

type Options struct {
	Tx       TxRunner
	Carts    cart.Repository
	Orders   orders.Repository
	Coupons  coupons.Service
	Shipping shipping.Service
	Logger   *logger.Logger

	ShippingFee   decimal.Decimal
	TxRefAttempts int
}

func NewService(opts Options) (Service, error) {
	if opts.Tx == nil {
		return nil, stdErrors.New("transaction runner is required")
	}
	if opts.Carts == nil {
		return nil, stdErrors.New("cart repository is required")
	}
	if opts.Orders == nil {
		return nil, stdErrors.New("orders repository is required")
	}
	if opts.Coupons == nil {
		return nil, stdErrors.New("coupons service is required")
	}
	if opts.Shipping == nil {
		return nil, stdErrors.New("shipping service is required")
	}
	if opts.Logger == nil {
		return nil, stdErrors.New("logger is required")
	}
	if opts.TxRefAttempts < 1 {
		opts.TxRefAttempts = 10
	}
	return &service{
		tx:            opts.Tx,
		carts:         opts.Carts,
		orders:        opts.Orders,
		coupons:       opts.Coupons,
		shipping:      opts.Shipping,
		logg:          opts.Logger,
		shippingFee:   opts.ShippingFee,
		txRefAttempts: opts.TxRefAttempts,
	}, nil
}

func (s *service) Checkout(ctx context.Context, userID uuid.UUID, input Input) (*Result, error) {
	if userID == uuid.Nil {
		return nil, errors.New(errors.CodeUnauthorized, "a registered user is required to checkout")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, errors.New(errors.CodeValidation, "invalid checkout payload").
			WithDetails(map[string]string{"payment_method": "Select a valid payment method"})
	}

	lines, err := s.carts.ListLines(ctx, types.UserIdentity(userID))
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "loading cart")
	}
	if len(lines) == 0 {
		return nil, errors.New(errors.CodeNotFound, "No Items in Cart")
	}

	var coupon *coupons.Validated
	if input.CouponCode != "" {
		coupon, err = s.coupons.Validate(ctx, input.CouponCode, userID)
		if err != nil {
			return nil, err
		}
	}

	address, err := s.shipping.Resolve(ctx, userID, shipping.Reference{
		AddressID: input.ShippingID,
		Address:   input.Shipping,
	})
	if err != nil {
		return nil, err
	}

	txRef, err := generateTxRef(ctx, s.orders.TxRefExists, s.txRefAttempts)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "generating transaction reference")
	}

	order := &models.Order{
		UserID:         userID,
		TxRef:          txRef,
		DeliveryStatus: enums.DeliveryStatusPending,
		PaymentStatus:  enums.PaymentStatusPending,
		PaymentMethod:  input.PaymentMethod,
		FullName:       address.FullName,
		Email:          address.Email,
		Phone:          address.Phone,
		Address:        address.Address,
		City:           address.City,
		State:          address.State,
		Country:        address.Country.Name,
		Zipcode:        address.Zipcode,
	}
	if coupon != nil {
		couponID := coupon.ID
		order.CouponID = &couponID
	}

	snapshots := make([]orders.LineSnapshot, 0, len(lines))
	for i := range lines {
		snapshots = append(snapshots, orders.LineSnapshot{
			LineID:    lines[i].ID,
			UnitPrice: lines[i].EffectiveUnitPrice(),
		})
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txOrders := s.orders.WithTx(tx)
		if err := txOrders.Create(ctx, order); err != nil {
			return err
		}
		return txOrders.AttachCartLines(ctx, order.ID, snapshots)
	})
	if err != nil {
		// A short re-parent claim means a concurrent checkout for the same
		// user already took the cart lines; the order row rolled back.
		if stdErrors.Is(err, orders.ErrLinesNotAttached) {
			return nil, errors.Wrap(errors.CodeConflict, err, "cart changed during checkout, retry")
		}
		// The partial unique index on (user, coupon) is the authoritative
		// reuse guard; a violation here means a concurrent checkout won.
		if coupon != nil && db.IsUniqueViolation(err) {
			return nil, errors.New(errors.CodeBusinessRule, "You've used this coupon already")
		}
		if db.IsUniqueViolation(err) {
			return nil, errors.Wrap(errors.CodeConflict, err, "order assembly collided, retry checkout")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "assembling order")
	}

	assembled, err := s.orders.FindByID(ctx, order.ID)
	if err != nil || assembled == nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "reloading assembled order")
	}

	ctx = s.logg.WithTxRef(ctx, assembled.TxRef)
	s.logg.Info(ctx, "order assembled from cart")

	return &Result{
		Order:  assembled,
		Totals: orders.ComputeTotals(assembled, s.shippingFee),
	}, nil
}

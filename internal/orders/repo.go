package orders

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kelechio/storefront-backend/pkg/db/models"
	"github.com/kelechio/storefront-backend/pkg/enums"
)

// ListFilter narrows ListByUser results.
type ListFilter struct {
	PaymentStatus  *enums.PaymentStatus
	DeliveryStatus *enums.DeliveryStatus
}

// Repository owns order rows and the cart-line re-parenting that turns cart
// state into order history.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, order *models.Order) error
	// FindByTxRef loads an order with lines, products and coupon, or nil
	// when the reference is unknown.
	FindByTxRef(ctx context.Context, txRef string) (*models.Order, error)
	// FindByID reloads an order with its lines after assembly.
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]models.Order, error)

	TxRefExists(ctx context.Context, txRef string) (bool, error)
	CouponUsedByUser(ctx context.Context, userID, couponID uuid.UUID) (bool, error)

	// AttachCartLines re-parents the given cart lines to the order in one
	// statement, freezing each line's unit price at the supplied snapshot.
	AttachCartLines(ctx context.Context, orderID uuid.UUID, lines []LineSnapshot) error

	// SetPaymentStatusIf flips payment_status only when the current value
	// matches expected, reporting how many rows changed. This is the
	// compare-and-swap all reconciliation side effects hang off.
	SetPaymentStatusIf(ctx context.Context, txRef string, expected, next enums.PaymentStatus) (int64, error)
}

// LineSnapshot pairs a cart line with the unit price frozen onto it.
type LineSnapshot struct {
	LineID    uuid.UUID
	UnitPrice decimal.Decimal
}

// ErrLinesNotAttached reports a re-parent that claimed fewer rows than
// requested: a concurrent checkout already attached some of the lines.
var ErrLinesNotAttached = errors.New("cart lines already attached to another order")

type repository struct {
	db *gorm.DB
}

// NewRepository builds an order repository backed by the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByTxRef(ctx context.Context, txRef string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Preload("Coupon").
		Where("tx_ref = ?", txRef).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Preload("Coupon").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]models.Order, error) {
	query := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Preload("Coupon").
		Where("user_id = ?", userID)
	if filter.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *filter.PaymentStatus)
	}
	if filter.DeliveryStatus != nil {
		query = query.Where("delivery_status = ?", *filter.DeliveryStatus)
	}

	var orders []models.Order
	if err := query.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) TxRefExists(ctx context.Context, txRef string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("tx_ref = ?", txRef).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) CouponUsedByUser(ctx context.Context, userID, couponID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("user_id = ? AND coupon_id = ?", userID, couponID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) AttachCartLines(ctx context.Context, orderID uuid.UUID, lines []LineSnapshot) error {
	if len(lines) == 0 {
		return nil
	}

	var builder strings.Builder
	args := make([]any, 0, len(lines)*2+1+len(lines))

	builder.WriteString("UPDATE order_items SET order_id = ?, unit_price = CASE id ")
	args = append(args, orderID)
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		builder.WriteString("WHEN ? THEN ? ")
		args = append(args, line.LineID, line.UnitPrice)
		ids = append(ids, line.LineID)
	}
	builder.WriteString("END WHERE id IN ? AND order_id IS NULL")
	args = append(args, ids)

	result := r.db.WithContext(ctx).Exec(builder.String(), args...)
	if result.Error != nil {
		return result.Error
	}
	// Anything short of a full claim means another order got there first;
	// the caller's transaction must roll back rather than commit a partial
	// line set.
	if result.RowsAffected != int64(len(lines)) {
		return ErrLinesNotAttached
	}
	return nil
}

func (r *repository) SetPaymentStatusIf(ctx context.Context, txRef string, expected, next enums.PaymentStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("tx_ref = ? AND payment_status = ?", txRef, expected).
		Update("payment_status", next)
	return result.RowsAffected, result.Error
}

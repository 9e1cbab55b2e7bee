package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kelechio/storefront-backend/pkg/db/models"
	"github.com/kelechio/storefront-backend/pkg/types"
)

// ErrLineOrdered reports a mutation against a line that has since been
// attached to an order. Ordered lines are historical and immutable.
var ErrLineOrdered = errors.New("cart line already attached to an order")

// Repository owns unattached order lines, i.e. cart state.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	// FindLine locates the cart line for an owner/product/variant triple,
	// or nil when the owner has no such line.
	FindLine(ctx context.Context, owner types.Identity, productID uuid.UUID, size, color *string) (*models.OrderItem, error)
	// ListLines returns the owner's cart lines with products preloaded,
	// oldest first.
	ListLines(ctx context.Context, owner types.Identity) ([]models.OrderItem, error)
	Create(ctx context.Context, line *models.OrderItem) error
	UpdateQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error
	Delete(ctx context.Context, lineID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a cart repository backed by the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func scopeOwner(query *gorm.DB, owner types.Identity) *gorm.DB {
	if owner.IsUser() {
		return query.Where("user_id = ?", *owner.UserID)
	}
	return query.Where("guest_id = ?", *owner.GuestID)
}

func matchVariant(query *gorm.DB, column string, value *string) *gorm.DB {
	if value == nil {
		return query.Where(column + " IS NULL")
	}
	return query.Where(column+" = ?", *value)
}

func (r *repository) FindLine(ctx context.Context, owner types.Identity, productID uuid.UUID, size, color *string) (*models.OrderItem, error) {
	query := r.db.WithContext(ctx).
		Where("order_id IS NULL").
		Where("product_id = ?", productID)
	query = scopeOwner(query, owner)
	query = matchVariant(query, "size", size)
	query = matchVariant(query, "color", color)

	var line models.OrderItem
	if err := query.First(&line).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &line, nil
}

func (r *repository) ListLines(ctx context.Context, owner types.Identity) ([]models.OrderItem, error) {
	query := r.db.WithContext(ctx).
		Preload("Product").
		Where("order_id IS NULL")
	query = scopeOwner(query, owner)

	var lines []models.OrderItem
	if err := query.Order("created_at ASC").Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repository) Create(ctx context.Context, line *models.OrderItem) error {
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *repository) UpdateQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error {
	result := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("id = ? AND order_id IS NULL", lineID).
		Update("quantity", quantity)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLineOrdered
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, lineID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND order_id IS NULL", lineID).
		Delete(&models.OrderItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLineOrdered
	}
	return nil
}

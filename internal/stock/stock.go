package stock

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kelechio/storefront-backend/pkg/db/models"
)

// Decrementer applies order quantities against product stock.
type Decrementer interface {
	// DecrementForLines subtracts each line's quantity from its product's
	// stock, clamping at zero. Products whose stock would not change are
	// left out of the write. Meant to run inside the reconciliation
	// transaction.
	DecrementForLines(ctx context.Context, tx *gorm.DB, lines []models.OrderItem) error
}

type decrementer struct{}

func NewDecrementer() Decrementer {
	return &decrementer{}
}

func (d *decrementer) DecrementForLines(ctx context.Context, tx *gorm.DB, lines []models.OrderItem) error {
	quantities := map[uuid.UUID]int{}
	for i := range lines {
		quantities[lines[i].ProductID] += lines[i].Quantity
	}
	if len(quantities) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(quantities))
	for id := range quantities {
		ids = append(ids, id)
	}

	var current []models.Product
	if err := tx.WithContext(ctx).
		Select("id", "in_stock").
		Where("id IN ?", ids).
		Find(&current).Error; err != nil {
		return err
	}

	type change struct {
		id   uuid.UUID
		next int
	}
	changes := make([]change, 0, len(current))
	for i := range current {
		next := current[i].InStock - quantities[current[i].ID]
		if next < 0 {
			next = 0
		}
		if next != current[i].InStock {
			changes = append(changes, change{id: current[i].ID, next: next})
		}
	}
	if len(changes) == 0 {
		return nil
	}

	var builder strings.Builder
	args := make([]any, 0, len(changes)*2+len(changes))
	builder.WriteString("UPDATE products SET in_stock = CASE id ")
	changedIDs := make([]uuid.UUID, 0, len(changes))
	for _, c := range changes {
		builder.WriteString("WHEN ? THEN ? ")
		args = append(args, c.id, c.next)
		changedIDs = append(changedIDs, c.id)
	}
	builder.WriteString("END WHERE id IN ?")
	args = append(args, changedIDs)

	return tx.WithContext(ctx).Exec(builder.String(), args...).Error
}

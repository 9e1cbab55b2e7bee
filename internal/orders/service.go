package orders

import (
	"context"
	stdErrors "errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kelechio/storefront-backend/pkg/db/models"
	"github.com/kelechio/storefront-backend/pkg/errors"
)

// View pairs an order with its computed amounts.
type View struct {
	Order  *models.Order
	Totals Totals
}

// Service exposes read access to a user's order history.
type Service interface {
	List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]View, error)
	Get(ctx context.Context, userID uuid.UUID, txRef string) (*View, error)
}

type service struct {
	repo        Repository
	shippingFee decimal.Decimal
}

func NewService(repo Repository, shippingFee decimal.Decimal) (Service, error) {
	if repo == nil {
		return nil, stdErrors.New("orders repository is required")
	}
	return &service{repo: repo, shippingFee: shippingFee}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]View, error) {
	found, err := s.repo.ListByUser(ctx, userID, filter)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "listing orders")
	}

	views := make([]View, 0, len(found))
	for i := range found {
		views = append(views, View{
			Order:  &found[i],
			Totals: ComputeTotals(&found[i], s.shippingFee),
		})
	}
	return views, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID, txRef string) (*View, error) {
	order, err := s.repo.FindByTxRef(ctx, txRef)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "loading order")
	}
	if order == nil || order.UserID != userID {
		return nil, errors.New(errors.CodeNotFound, "No order with that reference")
	}
	return &View{Order: order, Totals: ComputeTotals(order, s.shippingFee)}, nil
}

package cart

import (
	"context"
	stdErrors "errors"

	"github.com/kelechio/storefront-backend/internal/products"
	"github.com/kelechio/storefront-backend/pkg/db"
	"github.com/kelechio/storefront-backend/pkg/db/models"
	"github.com/kelechio/storefront-backend/pkg/errors"
	"github.com/kelechio/storefront-backend/pkg/logger"
	"github.com/kelechio/storefront-backend/pkg/types"
)

// Outcome reports what a toggle did to the cart.
type Outcome string

const (
	OutcomeAdded   Outcome = "added"
	OutcomeUpdated Outcome = "updated"
	OutcomeRemoved Outcome = "removed"
)

// ToggleInput is a cart mutation keyed by product slug. Quantity zero removes
// the matching line; any positive quantity replaces the line's quantity
// outright rather than incrementing it.
type ToggleInput struct {
	Slug     string
	Quantity int
	Size     string
	Color    string
}

// Service exposes the cart operations.
type Service interface {
	Toggle(ctx context.Context, owner types.Identity, input ToggleInput) (*models.OrderItem, Outcome, error)
	List(ctx context.Context, owner types.Identity) ([]models.OrderItem, error)
}

type service struct {
	repo     Repository
	products products.Repository
	logg     *logger.Logger
}

func NewService(repo Repository, productsRepo products.Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, stdErrors.New("cart repository is required")
	}
	if productsRepo == nil {
		return nil, stdErrors.New("products repository is required")
	}
	if logg == nil {
		return nil, stdErrors.New("logger is required")
	}
	return &service{repo: repo, products: productsRepo, logg: logg}, nil
}

func (s *service) Toggle(ctx context.Context, owner types.Identity, input ToggleInput) (*models.OrderItem, Outcome, error) {
	if !owner.Valid() {
		return nil, "", errors.New(errors.CodeUnauthorized, "a user or guest identity is required")
	}
	if input.Quantity < 0 {
		return nil, "", errors.New(errors.CodeValidation, "invalid cart payload").
			WithDetails(map[string]string{"quantity": "Quantity must not be negative"})
	}

	product, err := s.products.FindBySlug(ctx, input.Slug)
	if err != nil {
		return nil, "", errors.Wrap(errors.CodeInternal, err, "looking up product")
	}
	if product == nil {
		return nil, "", errors.New(errors.CodeNotFound, "Product does not exist!")
	}

	size, color, verr := resolveVariants(product, input.Size, input.Color)
	if verr != nil {
		return nil, "", verr
	}

	line, err := s.repo.FindLine(ctx, owner, product.ID, size, color)
	if err != nil {
		return nil, "", errors.Wrap(errors.CodeInternal, err, "looking up cart line")
	}

	if input.Quantity == 0 {
		if line == nil {
			return nil, OutcomeRemoved, nil
		}
		if err := s.repo.Delete(ctx, line.ID); err != nil {
			return nil, "", lineMutationError(err, "removing cart line")
		}
		s.logg.Info(ctx, "cart line removed")
		return nil, OutcomeRemoved, nil
	}

	if line != nil {
		if err := s.repo.UpdateQuantity(ctx, line.ID, input.Quantity); err != nil {
			return nil, "", lineMutationError(err, "updating cart line")
		}
		line.Quantity = input.Quantity
		line.Product = product
		return line, OutcomeUpdated, nil
	}

	line = &models.OrderItem{
		UserID:    owner.UserID,
		GuestID:   owner.GuestID,
		ProductID: product.ID,
		Product:   product,
		Quantity:  input.Quantity,
		Size:      size,
		Color:     color,
	}
	if err := s.repo.Create(ctx, line); err != nil {
		// A concurrent toggle on the same line loses the insert race;
		// fall back to updating the row that won.
		if db.IsUniqueViolation(err) {
			existing, ferr := s.repo.FindLine(ctx, owner, product.ID, size, color)
			if ferr != nil || existing == nil {
				return nil, "", errors.Wrap(errors.CodeInternal, err, "adding cart line")
			}
			if uerr := s.repo.UpdateQuantity(ctx, existing.ID, input.Quantity); uerr != nil {
				return nil, "", lineMutationError(uerr, "updating cart line")
			}
			existing.Quantity = input.Quantity
			existing.Product = product
			return existing, OutcomeUpdated, nil
		}
		return nil, "", errors.Wrap(errors.CodeInternal, err, "adding cart line")
	}
	return line, OutcomeAdded, nil
}

func (s *service) List(ctx context.Context, owner types.Identity) ([]models.OrderItem, error) {
	if !owner.Valid() {
		return nil, errors.New(errors.CodeUnauthorized, "a user or guest identity is required")
	}
	lines, err := s.repo.ListLines(ctx, owner)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "listing cart lines")
	}
	return lines, nil
}

// lineMutationError maps the ordered-line guard to a conflict; everything
// else stays an internal error.
func lineMutationError(err error, action string) error {
	if stdErrors.Is(err, ErrLineOrdered) {
		return errors.New(errors.CodeConflict, "Item has already been ordered")
	}
	return errors.Wrap(errors.CodeInternal, err, action)
}

// resolveVariants normalizes the requested size/color against the product's
// variant sets. Products without variants of a kind ignore that field.
func resolveVariants(product *models.Product, size, color string) (*string, *string, error) {
	fieldErrors := map[string]string{}

	var sizePtr *string
	if len(product.Sizes) > 0 {
		switch {
		case size == "":
			fieldErrors["size"] = "Enter a size"
		case !product.HasSize(size):
			fieldErrors["size"] = "Invalid size selected"
		default:
			sizePtr = &size
		}
	}

	var colorPtr *string
	if len(product.Colors) > 0 {
		switch {
		case color == "":
			fieldErrors["color"] = "Enter a color"
		case !product.HasColor(color):
			fieldErrors["color"] = "Invalid color selected"
		default:
			colorPtr = &color
		}
	}

	if len(fieldErrors) > 0 {
		return nil, nil, errors.New(errors.CodeValidation, "invalid cart payload").WithDetails(fieldErrors)
	}
	return sizePtr, colorPtr, nil
}

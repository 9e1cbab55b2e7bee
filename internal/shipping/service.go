package shipping

import (
	"context"
	stdErrors "errors"

	"github.com/google/uuid"

	"github.com/kelechio/storefront-backend/pkg/db/models"
	"github.com/kelechio/storefront-backend/pkg/errors"
	"github.com/kelechio/storefront-backend/pkg/logger"
)

// AddressInput is the inline address payload accepted at checkout and on the
// address book endpoints. Country is matched by name against the countries
// table.
type AddressInput struct {
	FullName string `json:"full_name" validate:"required,max=500"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,max=20"`
	Address  string `json:"address" validate:"required,max=1000"`
	City     string `json:"city" validate:"required,max=200"`
	State    string `json:"state" validate:"required,max=200"`
	Country  string `json:"country" validate:"required,max=200"`
	Zipcode  int    `json:"zipcode" validate:"required,gt=0"`
}

// Reference names the shipping destination for a checkout: either a saved
// address by id, or an inline address. Exactly one must be set.
type Reference struct {
	AddressID *uuid.UUID
	Address   *AddressInput
}

// Service resolves checkout destinations and manages the address book.
type Service interface {
	// Resolve turns a Reference into a concrete stored address with its
	// country preloaded. Inline addresses are get-or-created so repeated
	// checkouts with the same destination reuse one row.
	Resolve(ctx context.Context, userID uuid.UUID, ref Reference) (*models.ShippingAddress, error)

	List(ctx context.Context, userID uuid.UUID) ([]models.ShippingAddress, error)
	Get(ctx context.Context, userID, addressID uuid.UUID) (*models.ShippingAddress, error)
	Create(ctx context.Context, userID uuid.UUID, input AddressInput) (*models.ShippingAddress, error)
	Update(ctx context.Context, userID, addressID uuid.UUID, input AddressInput) (*models.ShippingAddress, error)
	Delete(ctx context.Context, userID, addressID uuid.UUID) error

	Countries(ctx context.Context) ([]models.Country, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, stdErrors.New("shipping repository is required")
	}
	if logg == nil {
		return nil, stdErrors.New("logger is required")
	}
	return &service{repo: repo, logg: logg}, nil
}

var errMissingAddress = errors.New(errors.CodeNotFound, "No Shipping Address with that ID")

func (s *service) Resolve(ctx context.Context, userID uuid.UUID, ref Reference) (*models.ShippingAddress, error) {
	if (ref.AddressID != nil) == (ref.Address != nil) {
		return nil, errors.New(errors.CodeValidation, "invalid shipping reference").
			WithDetails(map[string]string{
				"shipping": "Provide either shipping_id or a shipping address, not both",
			})
	}

	if ref.AddressID != nil {
		address, err := s.repo.FindByIDAndUser(ctx, *ref.AddressID, userID)
		if err != nil {
			return nil, errors.Wrap(errors.CodeInternal, err, "looking up shipping address")
		}
		if address == nil {
			return nil, errMissingAddress
		}
		return address, nil
	}

	candidate, err := s.buildAddress(ctx, userID, *ref.Address)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindMatch(ctx, candidate)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "matching shipping address")
	}
	if existing != nil {
		return existing, nil
	}

	if err := s.repo.Create(ctx, candidate); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "saving shipping address")
	}
	s.logg.Info(ctx, "shipping address created from checkout payload")
	return candidate, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]models.ShippingAddress, error) {
	addresses, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "listing shipping addresses")
	}
	return addresses, nil
}

func (s *service) Get(ctx context.Context, userID, addressID uuid.UUID) (*models.ShippingAddress, error) {
	address, err := s.repo.FindByIDAndUser(ctx, addressID, userID)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "looking up shipping address")
	}
	if address == nil {
		return nil, errMissingAddress
	}
	return address, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input AddressInput) (*models.ShippingAddress, error) {
	address, err := s.buildAddress(ctx, userID, input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, address); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "saving shipping address")
	}
	return address, nil
}

func (s *service) Update(ctx context.Context, userID, addressID uuid.UUID, input AddressInput) (*models.ShippingAddress, error) {
	address, err := s.Get(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}

	updated, err := s.buildAddress(ctx, userID, input)
	if err != nil {
		return nil, err
	}
	updated.ID = address.ID
	updated.CreatedAt = address.CreatedAt

	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "updating shipping address")
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, userID, addressID uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, addressID, userID)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "deleting shipping address")
	}
	if !deleted {
		return errMissingAddress
	}
	return nil
}

func (s *service) Countries(ctx context.Context) ([]models.Country, error) {
	countries, err := s.repo.ListCountries(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "listing countries")
	}
	return countries, nil
}

func (s *service) buildAddress(ctx context.Context, userID uuid.UUID, input AddressInput) (*models.ShippingAddress, error) {
	country, err := s.repo.FindCountryByName(ctx, input.Country)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "looking up country")
	}
	if country == nil {
		return nil, errors.New(errors.CodeValidation, "invalid shipping address").
			WithDetails(map[string]string{"country": "Invalid country selected"})
	}

	return &models.ShippingAddress{
		UserID:    userID,
		FullName:  input.FullName,
		Email:     input.Email,
		Phone:     input.Phone,
		Address:   input.Address,
		City:      input.City,
		State:     input.State,
		CountryID: country.ID,
		Country:   country,
		Zipcode:   input.Zipcode,
	}, nil
}

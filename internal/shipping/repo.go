package shipping

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kelechio/storefront-backend/pkg/db/models"
)

// Repository owns shipping addresses and the country reference data they
// point at.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	ListCountries(ctx context.Context) ([]models.Country, error)
	// FindCountryByName matches case-insensitively, or returns nil.
	FindCountryByName(ctx context.Context, name string) (*models.Country, error)

	// FindByIDAndUser returns the user's address with the given id, with
	// its country preloaded, or nil.
	FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*models.ShippingAddress, error)
	// FindMatch returns the user's address equal to candidate on every
	// field, or nil. Backs the get-or-create on inline checkout addresses.
	FindMatch(ctx context.Context, candidate *models.ShippingAddress) (*models.ShippingAddress, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.ShippingAddress, error)
	Create(ctx context.Context, address *models.ShippingAddress) error
	Update(ctx context.Context, address *models.ShippingAddress) error
	// Delete removes the user's address, reporting whether a row existed.
	Delete(ctx context.Context, id, userID uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListCountries(ctx context.Context) ([]models.Country, error) {
	var countries []models.Country
	err := r.db.WithContext(ctx).Order("name ASC").Find(&countries).Error
	return countries, err
}

func (r *repository) FindCountryByName(ctx context.Context, name string) (*models.Country, error) {
	var country models.Country
	err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&country).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &country, nil
}

func (r *repository) FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*models.ShippingAddress, error) {
	var address models.ShippingAddress
	err := r.db.WithContext(ctx).
		Preload("Country").
		Where("id = ? AND user_id = ?", id, userID).
		First(&address).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &address, nil
}

func (r *repository) FindMatch(ctx context.Context, candidate *models.ShippingAddress) (*models.ShippingAddress, error) {
	var address models.ShippingAddress
	err := r.db.WithContext(ctx).
		Preload("Country").
		Where(&models.ShippingAddress{
			UserID:    candidate.UserID,
			FullName:  candidate.FullName,
			Email:     candidate.Email,
			Phone:     candidate.Phone,
			Address:   candidate.Address,
			City:      candidate.City,
			State:     candidate.State,
			CountryID: candidate.CountryID,
			Zipcode:   candidate.Zipcode,
		}).
		First(&address).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &address, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.ShippingAddress, error) {
	var addresses []models.ShippingAddress
	err := r.db.WithContext(ctx).
		Preload("Country").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&addresses).Error
	return addresses, err
}

func (r *repository) Create(ctx context.Context, address *models.ShippingAddress) error {
	return r.db.WithContext(ctx).Create(address).Error
}

func (r *repository) Update(ctx context.Context, address *models.ShippingAddress) error {
	return r.db.WithContext(ctx).Save(address).Error
}

func (r *repository) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.ShippingAddress{})
	return result.RowsAffected > 0, result.Error
}

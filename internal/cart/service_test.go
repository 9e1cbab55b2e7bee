package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kelechio/storefront-backend/internal/products"
	"github.com/kelechio/storefront-backend/pkg/db/models"
	"github.com/kelechio/storefront-backend/pkg/errors"
	"github.com/kelechio/storefront-backend/pkg/logger"
	"github.com/kelechio/storefront-backend/pkg/types"
)

type stubProducts struct {
	bySlug map[string]*models.Product
}

func (s *stubProducts) WithTx(_ *gorm.DB) products.Repository { return s }

func (s *stubProducts) FindBySlug(_ context.Context, slug string) (*models.Product, error) {
	return s.bySlug[slug], nil
}

type stubCartRepo struct {
	lines       map[uuid.UUID]*models.OrderItem
	deleted     []uuid.UUID
	createFn    func(line *models.OrderItem) error
	mutationErr error
}

func newStubCartRepo() *stubCartRepo {
	return &stubCartRepo{lines: map[uuid.UUID]*models.OrderItem{}}
}

func (s *stubCartRepo) WithTx(_ *gorm.DB) Repository { return s }

func (s *stubCartRepo) FindLine(_ context.Context, owner types.Identity, productID uuid.UUID, size, color *string) (*models.OrderItem, error) {
	for _, line := range s.lines {
		if line.ProductID != productID {
			continue
		}
		if !sameOwner(line, owner) || !sameVariant(line.Size, size) || !sameVariant(line.Color, color) {
			continue
		}
		return line, nil
	}
	return nil, nil
}

func (s *stubCartRepo) ListLines(_ context.Context, owner types.Identity) ([]models.OrderItem, error) {
	var out []models.OrderItem
	for _, line := range s.lines {
		if sameOwner(line, owner) {
			out = append(out, *line)
		}
	}
	return out, nil
}

func (s *stubCartRepo) Create(_ context.Context, line *models.OrderItem) error {
	if s.createFn != nil {
		if err := s.createFn(line); err != nil {
			return err
		}
	}
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	s.lines[line.ID] = line
	return nil
}

func (s *stubCartRepo) UpdateQuantity(_ context.Context, lineID uuid.UUID, quantity int) error {
	if s.mutationErr != nil {
		return s.mutationErr
	}
	if line, ok := s.lines[lineID]; ok {
		line.Quantity = quantity
	}
	return nil
}

func (s *stubCartRepo) Delete(_ context.Context, lineID uuid.UUID) error {
	if s.mutationErr != nil {
		return s.mutationErr
	}
	delete(s.lines, lineID)
	s.deleted = append(s.deleted, lineID)
	return nil
}

func sameOwner(line *models.OrderItem, owner types.Identity) bool {
	if owner.IsUser() {
		return line.UserID != nil && *line.UserID == *owner.UserID
	}
	return line.GuestID != nil && *line.GuestID == *owner.GuestID
}

func sameVariant(a, b *string) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test"})
}

func variantProduct(slug string) *models.Product {
	return &models.Product{
		ID:           uuid.New(),
		Name:         "Variant Tee",
		Slug:         slug,
		PriceCurrent: decimal.RequireFromString("25.50"),
		Sizes:        []models.Size{{Value: "M"}, {Value: "L"}},
		Colors:       []models.Color{{Value: "Black"}},
	}
}

func TestToggleAddsNewLine(t *testing.T) {
	product := variantProduct("tee")
	repo := newStubCartRepo()
	svc, err := NewService(repo, &stubProducts{bySlug: map[string]*models.Product{"tee": product}}, testLogger())
	require.NoError(t, err)

	owner := types.UserIdentity(uuid.New())
	line, outcome, err := svc.Toggle(context.Background(), owner, ToggleInput{
		Slug: "tee", Quantity: 2, Size: "M", Color: "Black",
	})
	require.NoError(t, err)
	require.Equal(t, OutcomeAdded, outcome)
	require.Equal(t, 2, line.Quantity)
	require.Equal(t, "M", *line.Size)
	require.Len(t, repo.lines, 1)
}

func TestToggleReplacesQuantityOnExistingLine(t *testing.T) {
	product := variantProduct("tee")
	repo := newStubCartRepo()
	svc, _ := NewService(repo, &stubProducts{bySlug: map[string]*models.Product{"tee": product}}, testLogger())

	owner := types.UserIdentity(uuid.New())
	_, _, err := svc.Toggle(context.Background(), owner, ToggleInput{Slug: "tee", Quantity: 2, Size: "M", Color: "Black"})
	require.NoError(t, err)

	line, outcome, err := svc.Toggle(context.Background(), owner, ToggleInput{Slug: "tee", Quantity: 5, Size: "M", Color: "Black"})
	require.NoError(t, err)
	require.Equal(t, OutcomeUpdated, outcome)
	require.Equal(t, 5, line.Quantity)
	require.Len(t, repo.lines, 1)
}

func TestToggleZeroQuantityRemovesLine(t *testing.T) {
	product := variantProduct("tee")
	repo := newStubCartRepo()
	svc, _ := NewService(repo, &stubProducts{bySlug: map[string]*models.Product{"tee": product}}, testLogger())

	owner := types.GuestIdentity(uuid.New())
	_, _, err := svc.Toggle(context.Background(), owner, ToggleInput{Slug: "tee", Quantity: 1, Size: "L", Color: "Black"})
	require.NoError(t, err)

	_, outcome, err := svc.Toggle(context.Background(), owner, ToggleInput{Slug: "tee", Quantity: 0, Size: "L", Color: "Black"})
	require.NoError(t, err)
	require.Equal(t, OutcomeRemoved, outcome)
	require.Empty(t, repo.lines)

	// Removing an absent line is a no-op, not an error.
	_, outcome, err = svc.Toggle(context.Background(), owner, ToggleInput{Slug: "tee", Quantity: 0, Size: "L", Color: "Black"})
	require.NoError(t, err)
	require.Equal(t, OutcomeRemoved, outcome)
}

func TestToggleConflictsWhenLineAlreadyOrdered(t *testing.T) {
	product := variantProduct("tee")
	repo := newStubCartRepo()
	svc, _ := NewService(repo, &stubProducts{bySlug: map[string]*models.Product{"tee": product}}, testLogger())

	owner := types.UserIdentity(uuid.New())
	_, _, err := svc.Toggle(context.Background(), owner, ToggleInput{Slug: "tee", Quantity: 2, Size: "M", Color: "Black"})
	require.NoError(t, err)

	// A checkout re-parented the line between the read and the write.
	repo.mutationErr = ErrLineOrdered

	_, _, err = svc.Toggle(context.Background(), owner, ToggleInput{Slug: "tee", Quantity: 5, Size: "M", Color: "Black"})
	typed := errors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, errors.CodeConflict, typed.Code())
	require.Equal(t, "Item has already been ordered", typed.Message())

	_, _, err = svc.Toggle(context.Background(), owner, ToggleInput{Slug: "tee", Quantity: 0, Size: "M", Color: "Black"})
	require.Equal(t, errors.CodeConflict, errors.As(err).Code())
}

func TestToggleRejectsUnknownProduct(t *testing.T) {
	repo := newStubCartRepo()
	svc, _ := NewService(repo, &stubProducts{bySlug: map[string]*models.Product{}}, testLogger())

	_, _, err := svc.Toggle(context.Background(), types.UserIdentity(uuid.New()), ToggleInput{Slug: "ghost", Quantity: 1})
	typed := errors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, errors.CodeNotFound, typed.Code())
	require.Equal(t, "Product does not exist!", typed.Message())
}

func TestToggleValidatesVariants(t *testing.T) {
	product := variantProduct("tee")
	repo := newStubCartRepo()
	svc, _ := NewService(repo, &stubProducts{bySlug: map[string]*models.Product{"tee": product}}, testLogger())
	owner := types.UserIdentity(uuid.New())

	_, _, err := svc.Toggle(context.Background(), owner, ToggleInput{Slug: "tee", Quantity: 1, Color: "Black"})
	typed := errors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, errors.CodeValidation, typed.Code())
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	require.Equal(t, "Enter a size", details["size"])

	_, _, err = svc.Toggle(context.Background(), owner, ToggleInput{Slug: "tee", Quantity: 1, Size: "XXL", Color: "Green"})
	typed = errors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, "Invalid size selected", typed.Details().(map[string]string)["size"])
	require.Equal(t, "Invalid color selected", typed.Details().(map[string]string)["color"])
}

func TestToggleRejectsNegativeQuantityAndMissingIdentity(t *testing.T) {
	product := variantProduct("tee")
	repo := newStubCartRepo()
	svc, _ := NewService(repo, &stubProducts{bySlug: map[string]*models.Product{"tee": product}}, testLogger())

	_, _, err := svc.Toggle(context.Background(), types.UserIdentity(uuid.New()), ToggleInput{Slug: "tee", Quantity: -1})
	require.Equal(t, errors.CodeValidation, errors.As(err).Code())

	_, _, err = svc.Toggle(context.Background(), types.Identity{}, ToggleInput{Slug: "tee", Quantity: 1})
	require.Equal(t, errors.CodeUnauthorized, errors.As(err).Code())
}

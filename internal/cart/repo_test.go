package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kelechio/storefront-backend/pkg/db/models"
	"github.com/kelechio/storefront-backend/pkg/types"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.Country{}, &models.Size{}, &models.Color{},
		&models.Product{}, &models.Coupon{}, &models.Order{}, &models.OrderItem{},
	))
	return conn
}

func seedProduct(t *testing.T, conn *gorm.DB, slug string) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:         "Test Product",
		Slug:         slug,
		Desc:         "desc",
		PriceOld:     decimal.RequireFromString("120.00"),
		PriceCurrent: decimal.RequireFromString("99.99"),
		InStock:      5,
	}
	require.NoError(t, conn.Create(product).Error)
	return product
}

func TestRepositoryFindLineMatchesVariant(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	product := seedProduct(t, conn, "tee")
	owner := types.UserIdentity(uuid.New())
	sizeM := "M"

	require.NoError(t, repo.Create(ctx, &models.OrderItem{
		UserID:    owner.UserID,
		ProductID: product.ID,
		Quantity:  2,
		Size:      &sizeM,
	}))

	found, err := repo.FindLine(ctx, owner, product.ID, &sizeM, nil)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, 2, found.Quantity)

	// Different variant is a different line.
	sizeL := "L"
	miss, err := repo.FindLine(ctx, owner, product.ID, &sizeL, nil)
	require.NoError(t, err)
	require.Nil(t, miss)

	// Another owner never sees the line.
	other := types.UserIdentity(uuid.New())
	miss, err = repo.FindLine(ctx, other, product.ID, &sizeM, nil)
	require.NoError(t, err)
	require.Nil(t, miss)
}

func TestRepositoryListLinesExcludesOrderedLines(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	product := seedProduct(t, conn, "hoodie")
	owner := types.GuestIdentity(uuid.New())

	require.NoError(t, repo.Create(ctx, &models.OrderItem{
		GuestID:   owner.GuestID,
		ProductID: product.ID,
		Quantity:  1,
	}))

	orderID := uuid.New()
	require.NoError(t, conn.Create(&models.OrderItem{
		GuestID:   owner.GuestID,
		OrderID:   &orderID,
		ProductID: product.ID,
		Quantity:  3,
	}).Error)

	lines, err := repo.ListLines(ctx, owner)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	require.Nil(t, lines[0].OrderID)
	require.NotNil(t, lines[0].Product)
	require.Equal(t, "hoodie", lines[0].Product.Slug)
}

func TestRepositoryUpdateAndDelete(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	product := seedProduct(t, conn, "cap")
	owner := types.UserIdentity(uuid.New())

	line := &models.OrderItem{UserID: owner.UserID, ProductID: product.ID, Quantity: 1}
	require.NoError(t, repo.Create(ctx, line))

	require.NoError(t, repo.UpdateQuantity(ctx, line.ID, 4))
	found, err := repo.FindLine(ctx, owner, product.ID, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 4, found.Quantity)

	require.NoError(t, repo.Delete(ctx, line.ID))
	found, err = repo.FindLine(ctx, owner, product.ID, nil, nil)
	require.NoError(t, err)
	require.Nil(t, found)
}

func TestRepositoryRefusesMutatingOrderedLines(t *testing.T) {
	conn := openTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	product := seedProduct(t, conn, "scarf")
	owner := types.UserIdentity(uuid.New())

	line := &models.OrderItem{UserID: owner.UserID, ProductID: product.ID, Quantity: 2}
	require.NoError(t, repo.Create(ctx, line))

	// A checkout re-parents the line; from here on it is history.
	orderID := uuid.New()
	require.NoError(t, conn.Model(&models.OrderItem{}).
		Where("id = ?", line.ID).
		Update("order_id", orderID).Error)

	require.ErrorIs(t, repo.UpdateQuantity(ctx, line.ID, 7), ErrLineOrdered)
	require.ErrorIs(t, repo.Delete(ctx, line.ID), ErrLineOrdered)

	var kept models.OrderItem
	require.NoError(t, conn.First(&kept, "id = ?", line.ID).Error)
	require.Equal(t, 2, kept.Quantity)
	require.NotNil(t, kept.OrderID)
}

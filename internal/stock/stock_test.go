package stock

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
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Product{}, &models.OrderItem{}))
	return conn
}

func seedProduct(t *testing.T, conn *gorm.DB, slug string, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:         slug,
		Slug:         slug,
		Desc:         "d",
		PriceOld:     decimal.RequireFromString("10.00"),
		PriceCurrent: decimal.RequireFromString("8.00"),
		InStock:      stock,
	}
	require.NoError(t, conn.Create(product).Error)
	return product
}

func stockOf(t *testing.T, conn *gorm.DB, id uuid.UUID) int {
	t.Helper()
	var product models.Product
	require.NoError(t, conn.First(&product, "id = ?", id).Error)
	return product.InStock
}

func TestDecrementForLines(t *testing.T) {
	conn := openTestDB(t)
	ctx := context.Background()
	dec := NewDecrementer()

	plenty := seedProduct(t, conn, "plenty", 10)
	scarce := seedProduct(t, conn, "scarce", 2)
	empty := seedProduct(t, conn, "empty", 0)
	untouched := seedProduct(t, conn, "untouched", 7)

	lines := []models.OrderItem{
		{ProductID: plenty.ID, Quantity: 3},
		{ProductID: plenty.ID, Quantity: 1},
		{ProductID: scarce.ID, Quantity: 5},
		{ProductID: empty.ID, Quantity: 2},
	}
	require.NoError(t, dec.DecrementForLines(ctx, conn, lines))

	require.Equal(t, 6, stockOf(t, conn, plenty.ID))
	require.Equal(t, 0, stockOf(t, conn, scarce.ID))
	require.Equal(t, 0, stockOf(t, conn, empty.ID))
	require.Equal(t, 7, stockOf(t, conn, untouched.ID))
}

func TestDecrementForLinesNoLines(t *testing.T) {
	conn := openTestDB(t)
	require.NoError(t, NewDecrementer().DecrementForLines(context.Background(), conn, nil))
}

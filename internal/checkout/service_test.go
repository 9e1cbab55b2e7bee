package checkout

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kelechio/storefront-backend/internal/cart"
	"github.com/kelechio/storefront-backend/internal/coupons"
	"github.com/kelechio/storefront-backend/internal/orders"
	"github.com/kelechio/storefront-backend/internal/shipping"
	"github.com/kelechio/storefront-backend/pkg/db"
	"github.com/kelechio/storefront-backend/pkg/db/models"
	"github.com/kelechio/storefront-backend/pkg/enums"
	"github.com/kelechio/storefront-backend/pkg/errors"
	"github.com/kelechio/storefront-backend/pkg/logger"
	"github.com/kelechio/storefront-backend/pkg/types"
)

type fixture struct {
	conn    *gorm.DB
	carts   cart.Repository
	orders  orders.Repository
	service Service
	country *models.Country
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.Country{}, &models.Size{}, &models.Color{},
		&models.Product{}, &models.Coupon{}, &models.ShippingAddress{},
		&models.Order{}, &models.OrderItem{},
	))

	logg := logger.New(logger.Options{ServiceName: "test"})
	cartsRepo := cart.NewRepository(conn)
	ordersRepo := orders.NewRepository(conn)

	couponSvc, err := coupons.NewService(coupons.NewRepository(conn), ordersRepo)
	require.NoError(t, err)
	shippingSvc, err := shipping.NewService(shipping.NewRepository(conn), logg)
	require.NoError(t, err)

	svc, err := NewService(Options{
		Tx:            db.FromConn(conn),
		Carts:         cartsRepo,
		Orders:        ordersRepo,
		Coupons:       couponSvc,
		Shipping:      shippingSvc,
		Logger:        logg,
		ShippingFee:   decimal.RequireFromString("10"),
		TxRefAttempts: 10,
	})
	require.NoError(t, err)

	country := &models.Country{Name: "Nigeria", Code: "NG", PhoneCode: "+234"}
	require.NoError(t, conn.Create(country).Error)

	return &fixture{conn: conn, carts: cartsRepo, orders: ordersRepo, service: svc, country: country}
}

func (f *fixture) seedProduct(t *testing.T, slug, price string) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:         slug,
		Slug:         slug,
		Desc:         "d",
		PriceOld:     decimal.RequireFromString(price),
		PriceCurrent: decimal.RequireFromString(price),
		InStock:      5,
	}
	require.NoError(t, f.conn.Create(product).Error)
	return product
}

func (f *fixture) seedCartLine(t *testing.T, userID uuid.UUID, product *models.Product, qty int) *models.OrderItem {
	t.Helper()
	line := &models.OrderItem{UserID: &userID, ProductID: product.ID, Quantity: qty}
	require.NoError(t, f.carts.Create(context.Background(), line))
	return line
}

func inlineShipping() *shipping.AddressInput {
	return &shipping.AddressInput{
		FullName: "Ada Obi",
		Email:    "ada@example.com",
		Phone:    "+2348012345678",
		Address:  "12 Marina Road",
		City:     "Lagos",
		State:    "Lagos",
		Country:  "Nigeria",
		Zipcode:  100001,
	}
}

func TestCheckoutAssemblesOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	product := f.seedProduct(t, "lamp", "900.25")
	f.seedCartLine(t, userID, product, 1)

	result, err := f.service.Checkout(ctx, userID, Input{
		Shipping:      inlineShipping(),
		PaymentMethod: enums.PaymentMethodPaystack,
	})
	require.NoError(t, err)

	order := result.Order
	require.Len(t, order.TxRef, 12)
	require.Equal(t, enums.PaymentStatusPending, order.PaymentStatus)
	require.Equal(t, enums.DeliveryStatusPending, order.DeliveryStatus)
	require.Equal(t, "Nigeria", order.Country)
	require.Len(t, order.Items, 1)
	require.NotNil(t, order.Items[0].UnitPrice)
	require.True(t, order.Items[0].UnitPrice.Equal(decimal.RequireFromString("900.25")))

	require.True(t, result.Totals.Subtotal.Equal(decimal.RequireFromString("900.25")))
	require.True(t, result.Totals.ShippingFee.Equal(decimal.RequireFromString("10")))
	require.True(t, result.Totals.Total.Equal(decimal.RequireFromString("910.25")))

	// Cart is empty once lines become order history.
	lines, err := f.carts.ListLines(ctx, types.UserIdentity(userID))
	require.NoError(t, err)
	require.Empty(t, lines)
}

func TestCheckoutAppliesCouponDiscount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	product := f.seedProduct(t, "lamp", "900.25")
	f.seedCartLine(t, userID, product, 1)
	require.NoError(t, f.conn.Create(&models.Coupon{Code: "SAVE10", PercentageOff: 10}).Error)

	result, err := f.service.Checkout(ctx, userID, Input{
		CouponCode:    "SAVE10",
		Shipping:      inlineShipping(),
		PaymentMethod: enums.PaymentMethodPaypal,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Order.CouponID)
	require.True(t, result.Totals.Total.Equal(decimal.RequireFromString("819.225")),
		"got %s", result.Totals.Total)
}

func TestCheckoutFreezesUnitPrices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	product := f.seedProduct(t, "lamp", "100.00")
	f.seedCartLine(t, userID, product, 2)

	result, err := f.service.Checkout(ctx, userID, Input{
		Shipping:      inlineShipping(),
		PaymentMethod: enums.PaymentMethodPaystack,
	})
	require.NoError(t, err)

	// A later price change must not rewrite the order.
	require.NoError(t, f.conn.Model(&models.Product{}).
		Where("id = ?", product.ID).
		Update("price_current", decimal.RequireFromString("250.00")).Error)

	reloaded, err := f.orders.FindByTxRef(ctx, result.Order.TxRef)
	require.NoError(t, err)
	totals := orders.ComputeTotals(reloaded, decimal.RequireFromString("10"))
	require.True(t, totals.Subtotal.Equal(decimal.RequireFromString("200.00")))
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Checkout(context.Background(), uuid.New(), Input{
		Shipping:      inlineShipping(),
		PaymentMethod: enums.PaymentMethodPaystack,
	})
	typed := errors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, errors.CodeNotFound, typed.Code())
	require.Equal(t, "No Items in Cart", typed.Message())
}

func TestCheckoutRejectsCouponReuse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	product := f.seedProduct(t, "lamp", "50.00")
	require.NoError(t, f.conn.Create(&models.Coupon{Code: "ONCE", PercentageOff: 10}).Error)

	f.seedCartLine(t, userID, product, 1)
	_, err := f.service.Checkout(ctx, userID, Input{
		CouponCode:    "ONCE",
		Shipping:      inlineShipping(),
		PaymentMethod: enums.PaymentMethodPaystack,
	})
	require.NoError(t, err)

	f.seedCartLine(t, userID, product, 1)
	_, err = f.service.Checkout(ctx, userID, Input{
		CouponCode:    "ONCE",
		Shipping:      inlineShipping(),
		PaymentMethod: enums.PaymentMethodPaystack,
	})
	typed := errors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, errors.CodeBusinessRule, typed.Code())
	require.Equal(t, "You've used this coupon already", typed.Message())
}

// staleCartRepo serves a snapshot of lines regardless of their current state,
// standing in for a checkout whose cart read raced another checkout.
type staleCartRepo struct {
	cart.Repository
	lines []models.OrderItem
}

func (s *staleCartRepo) ListLines(context.Context, types.Identity) ([]models.OrderItem, error) {
	return s.lines, nil
}

func TestCheckoutRejectsConcurrentlyClaimedCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	product := f.seedProduct(t, "lamp", "100.00")
	line := f.seedCartLine(t, userID, product, 1)

	// First checkout claims the lines.
	_, err := f.service.Checkout(ctx, userID, Input{
		Shipping:      inlineShipping(),
		PaymentMethod: enums.PaymentMethodPaystack,
	})
	require.NoError(t, err)

	var stale models.OrderItem
	require.NoError(t, f.conn.First(&stale, "id = ?", line.ID).Error)

	logg := logger.New(logger.Options{ServiceName: "test"})
	couponSvc, err := coupons.NewService(coupons.NewRepository(f.conn), f.orders)
	require.NoError(t, err)
	shippingSvc, err := shipping.NewService(shipping.NewRepository(f.conn), logg)
	require.NoError(t, err)
	racer, err := NewService(Options{
		Tx:          db.FromConn(f.conn),
		Carts:       &staleCartRepo{Repository: f.carts, lines: []models.OrderItem{stale}},
		Orders:      f.orders,
		Coupons:     couponSvc,
		Shipping:    shippingSvc,
		Logger:      logg,
		ShippingFee: decimal.RequireFromString("10"),
	})
	require.NoError(t, err)

	// The loser's assembly must fail rather than commit a zero-line order.
	_, err = racer.Checkout(ctx, userID, Input{
		Shipping:      inlineShipping(),
		PaymentMethod: enums.PaymentMethodPaystack,
	})
	typed := errors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, errors.CodeConflict, typed.Code())

	var orderCount int64
	require.NoError(t, f.conn.Model(&models.Order{}).
		Where("user_id = ?", userID).
		Count(&orderCount).Error)
	require.EqualValues(t, 1, orderCount)
}

func TestCheckoutRejectsInvalidPaymentMethod(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Checkout(context.Background(), uuid.New(), Input{
		Shipping:      inlineShipping(),
		PaymentMethod: enums.PaymentMethod("CASH"),
	})
	require.Equal(t, errors.CodeValidation, errors.As(err).Code())
}

package orderControllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Ptamayo26/ferremas-final-sub001/checkout"
	"github.com/Ptamayo26/ferremas-final-sub001/models"
	"github.com/Ptamayo26/ferremas-final-sub001/payment"
	"github.com/Ptamayo26/ferremas-final-sub001/pricing"
	"github.com/Ptamayo26/ferremas-final-sub001/shipping"
)

var checkoutDiscount = pricing.Discount{Code: "FERIA10", Kind: pricing.Percentage, Value: 10}

func setupDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Product{}, &models.Cart{}, &models.CartItem{},
		&models.Order{}, &models.OrderItem{},
	))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, id uint, price int64, stock int) {
	require.NoError(t, db.Create(&models.Product{
		ID: id, Code: "FER-" + string(rune('0'+id)), Name: "Producto", Price: price,
		Weight: 1, Stock: stock,
	}).Error)
}

func anonymousRequest(items []models.CartItem) checkout.Request {
	return checkout.Request{
		CustomerName:  "Pedro Tamayo",
		RUT:           "12.345.678-5",
		Email:         "pedro@example.cl",
		Address:       models.Address{Region: "RM", Comuna: "Santiago", Street: "Av. Matta", Number: "123"},
		PaymentMethod: "transfer",
		Items:         items,
	}
}

func TestSubmit_AnonymousTransferOrder(t *testing.T) {
	db := setupDB(t)
	seedProduct(t, db, 1, 10000, 10)
	svc := NewService(db, payment.NewClient(nil))

	req := anonymousRequest([]models.CartItem{
		{ProductID: 1, ProductName: "Martillo carpintero", UnitPrice: 10000, Quantity: 2},
	})
	req.Shipping = &shipping.Selection{Carrier: "chilexpress", Service: "normal", Cost: 4990}

	res, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)
	assert.NotZero(t, res.OrderID)
	assert.Equal(t, models.OrderStatusPending, res.Status)
	assert.Empty(t, res.RedirectURL, "transfer is not gateway-routed")
	assert.Equal(t, int64(24990), res.Total)

	var order models.Order
	require.NoError(t, db.Preload("Items").First(&order, res.OrderID).Error)
	assert.Equal(t, int64(20000), order.Subtotal)
	assert.Equal(t, int64(16807), order.NetAmount)
	assert.Equal(t, int64(3193), order.TaxAmount)
	assert.Nil(t, order.UserID)
	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(10000), order.Items[0].UnitPrice)

	var product models.Product
	require.NoError(t, db.First(&product, 1).Error)
	assert.Equal(t, 8, product.Stock, "stock deducted inside the transaction")
}

func TestSubmit_EmptyCartRejected(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db, payment.NewClient(nil))

	_, err := svc.Submit(context.Background(), anonymousRequest(nil))
	assert.ErrorIs(t, err, checkout.ErrBusinessRejection)
}

func TestSubmit_InsufficientStockRejectedAndNothingPersisted(t *testing.T) {
	db := setupDB(t)
	seedProduct(t, db, 1, 10000, 1)
	svc := NewService(db, payment.NewClient(nil))

	req := anonymousRequest([]models.CartItem{
		{ProductID: 1, ProductName: "Martillo", UnitPrice: 10000, Quantity: 5},
	})
	_, err := svc.Submit(context.Background(), req)
	assert.ErrorIs(t, err, checkout.ErrBusinessRejection)

	var orders int64
	db.Model(&models.Order{}).Count(&orders)
	assert.Zero(t, orders)

	var product models.Product
	require.NoError(t, db.First(&product, 1).Error)
	assert.Equal(t, 1, product.Stock, "rollback restores the stock")
}

func TestSubmit_AuthenticatedRederivesFromRemoteCart(t *testing.T) {
	db := setupDB(t)
	seedProduct(t, db, 1, 10000, 10)

	userCart := models.Cart{UserID: "user-1", Items: []models.CartItem{
		{ProductID: 1, ProductName: "Martillo carpintero", UnitPrice: 10000, Quantity: 2},
	}}
	require.NoError(t, db.Create(&userCart).Error)

	svc := NewService(db, payment.NewClient(nil))
	req := anonymousRequest([]models.CartItem{
		// The client-side snapshot is ignored for authenticated checkouts.
		{ProductID: 1, ProductName: "Martillo carpintero", UnitPrice: 1, Quantity: 99},
	})
	req.CustomerID = "user-1"

	res, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(20000), res.Total, "totals come from the remote cart, not the client snapshot")

	var remaining int64
	db.Model(&models.CartItem{}).Where("cart_id = ?", userCart.CartID).Count(&remaining)
	assert.Zero(t, remaining, "authenticated cart cleared on success")
}

func TestSubmit_WebpayCreatesGatewayTransactionFirst(t *testing.T) {
	db := setupDB(t)
	seedProduct(t, db, 1, 10000, 10)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"url":   "https://gateway.example/pay",
			"token": "tok-1",
		})
	}))
	defer srv.Close()
	t.Setenv("GATEWAY_STORE_CODE", "597")
	t.Setenv("GATEWAY_API_KEY", "k")
	t.Setenv("GATEWAY_API_URL", srv.URL)
	t.Setenv("GATEWAY_RETURN_URL", "https://ferremas.cl/pago/retorno")

	svc := NewService(db, payment.NewClient(srv.Client()))
	req := anonymousRequest([]models.CartItem{
		{ProductID: 1, ProductName: "Martillo", UnitPrice: 10000, Quantity: 1},
	})
	req.PaymentMethod = PaymentMethodWebpay

	res, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "https://gateway.example/pay", res.RedirectURL)
	assert.Equal(t, "tok-1", res.GatewayToken)
	assert.Equal(t, models.OrderStatusAwaitingPayment, res.Status)
}

func TestSubmit_GatewayDownLeavesCartAlone(t *testing.T) {
	db := setupDB(t)
	seedProduct(t, db, 1, 10000, 10)

	userCart := models.Cart{UserID: "user-1", Items: []models.CartItem{
		{ProductID: 1, ProductName: "Martillo", UnitPrice: 10000, Quantity: 1},
	}}
	require.NoError(t, db.Create(&userCart).Error)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()
	t.Setenv("GATEWAY_STORE_CODE", "597")
	t.Setenv("GATEWAY_API_KEY", "k")
	t.Setenv("GATEWAY_API_URL", srv.URL)

	svc := NewService(db, payment.NewClient(srv.Client()))
	req := checkout.Request{
		CustomerID:    "user-1",
		CustomerName:  "P",
		RUT:           "12.345.678-5",
		Email:         "p@example.cl",
		PaymentMethod: PaymentMethodWebpay,
	}

	_, err := svc.Submit(context.Background(), req)
	require.Error(t, err)

	var remaining int64
	db.Model(&models.CartItem{}).Where("cart_id = ?", userCart.CartID).Count(&remaining)
	assert.Equal(t, int64(1), remaining, "failed submit never clears the cart")

	var orders int64
	db.Model(&models.Order{}).Count(&orders)
	assert.Zero(t, orders, "no order is created when the gateway create fails")
}

func TestSubmit_DiscountAppliedToOrder(t *testing.T) {
	db := setupDB(t)
	seedProduct(t, db, 1, 10000, 10)
	svc := NewService(db, payment.NewClient(nil))

	req := anonymousRequest([]models.CartItem{
		{ProductID: 1, ProductName: "Martillo", UnitPrice: 10000, Quantity: 2},
	})
	req.Discount = &checkoutDiscount
	res, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(18000), res.Total)

	var order models.Order
	require.NoError(t, db.First(&order, res.OrderID).Error)
	assert.Equal(t, "FERIA10", order.DiscountCode)
	assert.Equal(t, int64(2000), order.DiscountAmount)
}

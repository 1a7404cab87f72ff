package checkoutControllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ptamayo26/ferremas-final-sub001/cart"
	"github.com/Ptamayo26/ferremas-final-sub001/checkout"
	"github.com/Ptamayo26/ferremas-final-sub001/models"
	"github.com/Ptamayo26/ferremas-final-sub001/shipping"
)

type stubBoundary struct {
	result checkout.Result
	err    error
	got    checkout.Request
}

func (s *stubBoundary) Submit(ctx context.Context, req checkout.Request) (checkout.Result, error) {
	s.got = req
	return s.result, s.err
}

func setupRouter(t *testing.T, boundary checkout.Submitter) (*gin.Engine, *redis.Client) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	deps := Deps{
		Redis:    rdb,
		Notifier: cart.NewNotifier(),
		Boundary: boundary,
		Sessions: checkout.NewRegistry(),
		Rates:    shipping.DefaultTable(),
	}

	r := gin.New()
	r.POST("/checkout", StartCheckout(deps))
	r.PUT("/checkout/:checkoutID/customer", SetCustomer(deps))
	r.PUT("/checkout/:checkoutID/address", SetAddress(deps))
	r.PUT("/checkout/:checkoutID/shipping", SetShipping(deps))
	r.PUT("/checkout/:checkoutID/payment-method", SetPaymentMethod(deps))
	r.GET("/checkout/:checkoutID/preview", Preview(deps))
	r.POST("/checkout/:checkoutID/submit", Submit(deps))
	r.GET("/checkout/carriers", GetCarriers(deps))
	return r, rdb
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func startCheckout(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/checkout", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var res struct {
		CheckoutID string `json:"checkout_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.NotEmpty(t, res.CheckoutID)
	return res.CheckoutID
}

func seedAnonymousCart(t *testing.T, rdb *redis.Client, sessionID string) {
	t.Helper()
	store := cart.NewLocalStore(rdb, cart.NewNotifier(), sessionID)
	_, err := store.Add(context.Background(), cart.AddInput{
		ProductID: 1, ProductName: "Taladro percutor", UnitPrice: 10000, Quantity: 2,
	})
	require.NoError(t, err)
}

func TestCheckoutFlow_AnonymousSubmit(t *testing.T) {
	boundary := &stubBoundary{result: checkout.Result{
		OrderID: 7, OrderNumber: "FM-20260828-abc", Total: 24990, Status: models.OrderStatusPending,
	}}
	r, rdb := setupRouter(t, boundary)
	seedAnonymousCart(t, rdb, "sess-1")

	id := startCheckout(t, r)

	w := doJSON(t, r, http.MethodPut, "/checkout/"+id+"/customer", gin.H{
		"name": "Pedro Tamayo", "rut": "12.345.678-5", "email": "pedro@example.cl",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPut, "/checkout/"+id+"/address", models.Address{
		Region: "RM", Comuna: "Santiago", Street: "Av. Matta", Number: "123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPut, "/checkout/"+id+"/shipping", gin.H{"carrier": "chilexpress"})
	require.Equal(t, http.StatusOK, w.Code)
	var sel shipping.Selection
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sel))
	assert.Equal(t, int64(4990), sel.Cost)

	w = doJSON(t, r, http.MethodPut, "/checkout/"+id+"/payment-method", gin.H{"method": "transfer"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/checkout/"+id+"/submit?session_id=sess-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var res checkout.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "FM-20260828-abc", res.OrderNumber)

	// Anonymous snapshot travelled to the boundary.
	require.Len(t, boundary.got.Items, 1)
	assert.Equal(t, int64(10000), boundary.got.Items[0].UnitPrice)
	assert.Equal(t, 2, boundary.got.Items[0].Quantity)

	// Non-gateway success clears the anonymous cart.
	store := cart.NewLocalStore(rdb, cart.NewNotifier(), "sess-1")
	lines, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestCheckoutSubmit_ValidationErrorsKeepBuilding(t *testing.T) {
	boundary := &stubBoundary{}
	r, _ := setupRouter(t, boundary)
	id := startCheckout(t, r)

	w := doJSON(t, r, http.MethodPut, "/checkout/"+id+"/customer", gin.H{
		"name": "P", "rut": "12.345.678-0", "email": "no-at-sign",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/checkout/"+id+"/submit?session_id=sess-2", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Errors, "rut")
	assert.Contains(t, body.Errors, "email")
	assert.Contains(t, body.Errors, "payment_method")
	assert.Empty(t, boundary.got.RUT, "nothing reaches the boundary on validation failure")
}

func TestCheckoutSubmit_GatewayRedirectKeepsCart(t *testing.T) {
	boundary := &stubBoundary{result: checkout.Result{
		OrderID: 9, OrderNumber: "FM-20260828-def", Total: 11900,
		Status: models.OrderStatusAwaitingPayment, RedirectURL: "https://gw.example/pay", GatewayToken: "tok-9",
	}}
	r, rdb := setupRouter(t, boundary)
	seedAnonymousCart(t, rdb, "sess-3")

	id := startCheckout(t, r)
	doJSON(t, r, http.MethodPut, "/checkout/"+id+"/customer", gin.H{
		"name": "P", "rut": "12.345.678-5", "email": "p@example.cl",
	})
	doJSON(t, r, http.MethodPut, "/checkout/"+id+"/payment-method", gin.H{"method": "webpay"})

	w := doJSON(t, r, http.MethodPost, "/checkout/"+id+"/submit?session_id=sess-3", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var res checkout.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "https://gw.example/pay", res.RedirectURL)

	// The boundary got the routing refs the return flow needs to find this
	// checkout and its cart again.
	assert.Equal(t, id, boundary.got.CheckoutRef)
	assert.Equal(t, "sess-3", boundary.got.CartSessionID)

	// Cart survives until the payment is confirmed.
	store := cart.NewLocalStore(rdb, cart.NewNotifier(), "sess-3")
	lines, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestCheckoutPreview_ReflectsShippingAndCart(t *testing.T) {
	r, rdb := setupRouter(t, &stubBoundary{})
	seedAnonymousCart(t, rdb, "sess-4")

	id := startCheckout(t, r)
	doJSON(t, r, http.MethodPut, "/checkout/"+id+"/shipping", gin.H{"carrier": "starken"})

	w := doJSON(t, r, http.MethodGet, "/checkout/"+id+"/preview?session_id=sess-4", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Breakdown struct {
			Subtotal     int64 `json:"subtotal"`
			ShippingCost int64 `json:"shipping_cost"`
			Total        int64 `json:"total"`
		} `json:"breakdown"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(20000), body.Breakdown.Subtotal)
	assert.Equal(t, int64(3990), body.Breakdown.ShippingCost)
	assert.Equal(t, int64(23990), body.Breakdown.Total)
}

func TestSetShipping_UnknownCarrier(t *testing.T) {
	r, _ := setupRouter(t, &stubBoundary{})
	id := startCheckout(t, r)

	w := doJSON(t, r, http.MethodPut, "/checkout/"+id+"/shipping", gin.H{"carrier": "fedex"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionNotFound(t *testing.T) {
	r, _ := setupRouter(t, &stubBoundary{})
	w := doJSON(t, r, http.MethodPut, "/checkout/nope/payment-method", gin.H{"method": "transfer"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

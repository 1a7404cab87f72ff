package checkoutControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Ptamayo26/ferremas-final-sub001/cart"
	"github.com/Ptamayo26/ferremas-final-sub001/checkout"
	"github.com/Ptamayo26/ferremas-final-sub001/discount"
	"github.com/Ptamayo26/ferremas-final-sub001/metrics"
	"github.com/Ptamayo26/ferremas-final-sub001/models"
	"github.com/Ptamayo26/ferremas-final-sub001/shipping"
)

// Deps wires the checkout surface: the cart backends, the discount
// authority, the shipping strategies and the order boundary.
type Deps struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Notifier *cart.Notifier
	Boundary checkout.Submitter
	Sessions *checkout.Registry
	Discount *discount.Resolver
	Rates    shipping.StaticTable
	Quoters  []shipping.RateClient
}

func (d Deps) storeFor(c *gin.Context) cart.Store {
	userID := ""
	if v, exists := c.Get("user_id"); exists {
		userID, _ = v.(string)
	}
	return cart.ForIdentity(d.DB, d.Redis, d.Notifier, userID, c.Query("session_id"))
}

func (d Deps) session(c *gin.Context) (*checkout.Session, bool) {
	session, ok := d.Sessions.Get(c.Param("checkoutID"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "checkout not found"})
		return nil, false
	}
	return session, true
}

// POST /checkout
func StartCheckout(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := ""
		if v, exists := c.Get("user_id"); exists {
			userID, _ = v.(string)
		}

		id, session := deps.Sessions.Create(userID)
		c.JSON(http.StatusCreated, gin.H{
			"checkout_id": id,
			"state":       session.State(),
		})
	}
}

type customerInput struct {
	Name  string `json:"name"`
	RUT   string `json:"rut" binding:"required"`
	Email string `json:"email" binding:"required"`
}

// PUT /checkout/:checkoutID/customer
func SetCustomer(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := deps.session(c)
		if !ok {
			return
		}
		var input customerInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if err := session.SetCustomer(input.Name, input.RUT, input.Email); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"state": session.State()})
	}
}

// PUT /checkout/:checkoutID/address
func SetAddress(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := deps.session(c)
		if !ok {
			return
		}
		var addr models.Address
		if err := c.ShouldBindJSON(&addr); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if err := session.SetAddress(addr); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"state": session.State()})
	}
}

type shippingInput struct {
	Carrier string `json:"carrier" binding:"required"`
	Service string `json:"service"`
	Cost    *int64 `json:"cost"`
}

// PUT /checkout/:checkoutID/shipping
// A bare carrier name resolves against the static table; carrier + service +
// cost freezes a previously quoted option.
func SetShipping(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := deps.session(c)
		if !ok {
			return
		}
		var input shippingInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		var sel shipping.Selection
		if input.Cost != nil {
			sel = shipping.Selection{Carrier: input.Carrier, Service: input.Service, Cost: *input.Cost}
		} else {
			var err error
			sel, err = deps.Rates.Select(input.Carrier)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown carrier"})
				return
			}
		}

		if err := session.SetShipping(sel); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, sel)
	}
}

// PUT /checkout/:checkoutID/payment-method
func SetPaymentMethod(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := deps.session(c)
		if !ok {
			return
		}
		var input struct {
			Method string `json:"method" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if err := session.SetPaymentMethod(input.Method); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"state": session.State()})
	}
}

// POST /checkout/:checkoutID/discount
func ApplyDiscount(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := deps.session(c)
		if !ok {
			return
		}
		var input struct {
			Code string `json:"code" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		lines, err := deps.storeFor(c).List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Could not read cart"})
			return
		}

		d, err := deps.Discount.Validate(c.Request.Context(), input.Code, lines)
		if err != nil {
			// Invalid, expired and unreachable all read the same to the
			// customer.
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Código de descuento inválido o expirado"})
			return
		}

		if err := session.ApplyDiscount(d); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, d)
	}
}

// DELETE /checkout/:checkoutID/discount
func RemoveDiscount(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := deps.session(c)
		if !ok {
			return
		}
		if err := session.ClearDiscount(); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Discount removed"})
	}
}

// GET /checkout/:checkoutID/preview
// Live breakdown for display. The confirmed breakdown after payment is the
// one of record; this one is recomputed on every read.
func Preview(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := deps.session(c)
		if !ok {
			return
		}
		store := deps.storeFor(c)
		lines, err := store.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Could not read cart"})
			return
		}

		breakdown := session.Preview(lines)

		// The server-side summary is authoritative for the authenticated
		// cart; surface both so the client can reconcile its display.
		summary, err := store.Summary(c.Request.Context())
		if err == nil && summary.Subtotal != breakdown.Subtotal {
			c.JSON(http.StatusOK, gin.H{"breakdown": breakdown, "authoritative_subtotal": summary.Subtotal})
			return
		}
		c.JSON(http.StatusOK, gin.H{"breakdown": breakdown})
	}
}

// POST /checkout/quotes
func GetShippingQuotes(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req shipping.QuoteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		quotes, err := shipping.QuoteAll(c.Request.Context(), deps.Quoters, req)
		if err != nil {
			if errors.Is(err, shipping.ErrNoQuotes) {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No carrier could quote this shipment"})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, quotes)
	}
}

// GET /checkout/carriers
func GetCarriers(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, deps.Rates)
	}
}

// POST /checkout/:checkoutID/submit
func Submit(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := deps.session(c)
		if !ok {
			return
		}
		store := deps.storeFor(c)

		// Remember which anonymous cart fed this checkout so the payment
		// return flow can clear it once the gateway confirms.
		if sid := c.Query("session_id"); sid != "" {
			session.SetCartSession(sid)
		}

		result, err := session.Submit(c.Request.Context(), deps.Boundary, store)
		if err != nil {
			var verrs checkout.ValidationErrors
			switch {
			case errors.As(err, &verrs):
				metrics.CheckoutSubmits.WithLabelValues("rejected").Inc()
				c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": verrs})
			case errors.Is(err, checkout.ErrSubmitInFlight):
				c.JSON(http.StatusConflict, gin.H{"error": "Your order is already being processed"})
			case errors.Is(err, checkout.ErrBusinessRejection):
				metrics.CheckoutSubmits.WithLabelValues("rejected").Inc()
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			default:
				metrics.CheckoutSubmits.WithLabelValues("failed").Inc()
				c.JSON(http.StatusBadGateway, gin.H{"error": session.FailureMessage()})
			}
			return
		}

		metrics.CheckoutSubmits.WithLabelValues("accepted").Inc()

		// A non-gateway order is final now: the anonymous cart can go. The
		// gateway path keeps the cart until the payment is confirmed.
		if session.State() == checkout.StateDone && session.CustomerID == "" {
			if clearErr := store.Clear(c.Request.Context()); clearErr != nil {
				// The order exists either way; the stale cart is cosmetic.
				c.Error(clearErr)
			}
		}

		c.JSON(http.StatusOK, result)
	}
}

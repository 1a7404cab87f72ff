package paymentControllers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Ptamayo26/ferremas-final-sub001/cart"
	"github.com/Ptamayo26/ferremas-final-sub001/checkout"
	"github.com/Ptamayo26/ferremas-final-sub001/metrics"
	"github.com/Ptamayo26/ferremas-final-sub001/models"
	"github.com/Ptamayo26/ferremas-final-sub001/payment"
)

// Deps carries what the return flow needs: the confirmer for the token
// exchange, plus the session registry and the anonymous cart backend so a
// confirmed payment settles the checkout it came from.
type Deps struct {
	DB        *gorm.DB
	Redis     *redis.Client
	Notifier  *cart.Notifier
	Confirmer *payment.Confirmer
	Sessions  *checkout.Registry
}

// settle drives the originating checkout session out of
// AwaitingGatewayRedirect and, on the first successful confirm, clears the
// anonymous cart the order was built from. Replays leave the cart alone: the
// customer may already be filling a new one.
func (d Deps) settle(ctx context.Context, confirmed payment.ConfirmedOrder, paid bool) {
	if d.Sessions != nil && confirmed.CheckoutRef != "" {
		if session, ok := d.Sessions.Get(confirmed.CheckoutRef); ok {
			session.GatewayReturned(paid)
		}
	}

	if paid && !confirmed.Replayed && confirmed.CartSessionID != "" && d.Redis != nil {
		store := cart.NewLocalStore(d.Redis, d.Notifier, confirmed.CartSessionID)
		if err := store.Clear(ctx); err != nil {
			// The payment is settled either way; the stale cart is cosmetic.
			log.Printf("failed to clear cart %s after payment: %v", confirmed.CartSessionID, err)
		}
	}
}

// PaymentReturnHandler is where the gateway sends the customer back after the
// hosted payment page. The token is exchanged exactly once; reloading this URL
// replays the stored outcome instead of hitting the gateway again.
func PaymentReturnHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			// Webpay-style gateways use token_ws on the return redirect.
			token = c.Query("token_ws")
		}

		confirmed, err := deps.Confirmer.Confirm(c.Request.Context(), token)
		if err != nil {
			deps.writeConfirmError(c, confirmed, err)
			return
		}

		deps.settle(c.Request.Context(), confirmed, true)
		countConfirm(confirmed)
		c.JSON(http.StatusOK, confirmed)
	}
}

// WebhookHandler is the server-to-server variant of the return flow. The
// signature middleware has already authenticated the caller by the time this
// runs.
func WebhookHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Token string `json:"token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		confirmed, err := deps.Confirmer.Confirm(c.Request.Context(), body.Token)
		if err != nil {
			deps.writeConfirmError(c, confirmed, err)
			return
		}

		deps.settle(c.Request.Context(), confirmed, true)
		countConfirm(confirmed)
		c.JSON(http.StatusOK, gin.H{"order_number": confirmed.OrderNumber, "status": confirmed.Status})
	}
}

func countConfirm(confirmed payment.ConfirmedOrder) {
	outcome := "paid"
	if confirmed.Replayed {
		outcome = "replay"
	}
	metrics.PaymentConfirms.WithLabelValues(outcome).Inc()
}

func (d Deps) writeConfirmError(c *gin.Context, confirmed payment.ConfirmedOrder, err error) {
	switch {
	case errors.Is(err, payment.ErrTokenNotFound):
		metrics.PaymentConfirms.WithLabelValues("token_not_found").Inc()
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment token not found"})
	case errors.Is(err, payment.ErrConfirmationFailed):
		// The declined order still carries its routing refs; the session
		// moves to Failed, the cart stays.
		d.settle(c.Request.Context(), confirmed, false)
		metrics.PaymentConfirms.WithLabelValues("declined").Inc()
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "El pago no fue completado. Puedes reintentar el pago."})
	default:
		metrics.PaymentConfirms.WithLabelValues("error").Inc()
		c.JSON(http.StatusBadGateway, gin.H{"error": "Payment confirmation unavailable, please retry"})
	}
}

// GetOrderConfirmationHandler serves the confirmation view payload. Everything
// comes verbatim from the order row written at confirm time; nothing here
// recomputes a total.
func GetOrderConfirmationHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var order models.Order
		err := deps.DB.WithContext(c.Request.Context()).
			Preload("Items").
			Where("order_number = ?", c.Param("orderNumber")).
			First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
			return
		}

		c.JSON(http.StatusOK, payment.ConfirmedOrder{
			OrderNumber:    order.OrderNumber,
			Status:         order.Status,
			PaymentStatus:  order.PaymentStatus,
			CreatedAt:      order.CreatedAt,
			Items:          order.Items,
			Subtotal:       order.Subtotal,
			DiscountAmount: order.DiscountAmount,
			NetAmount:      order.NetAmount,
			TaxAmount:      order.TaxAmount,
			ShippingCost:   order.ShippingCost,
			Total:          order.TotalAmount,
		})
	}
}

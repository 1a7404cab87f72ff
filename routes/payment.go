package routes

import (
	"github.com/gin-gonic/gin"

	paymentControllers "github.com/Ptamayo26/ferremas-final-sub001/controllers/payment"
	"github.com/Ptamayo26/ferremas-final-sub001/middleware"
)

// SetupPaymentRoutes registers "/payment/*".
func SetupPaymentRoutes(r *gin.Engine, deps Deps) {
	paymentDeps := paymentControllers.Deps{
		DB:        deps.DB,
		Redis:     deps.Redis,
		Notifier:  deps.Notifier,
		Confirmer: deps.Confirmer,
		Sessions:  deps.Sessions,
	}

	paymentGroup := r.Group("/payment")
	{
		// Where the gateway redirects the customer back to.
		paymentGroup.GET("/return", paymentControllers.PaymentReturnHandler(paymentDeps))

		// Server-to-server confirmation; middleware verifies the signature.
		paymentGroup.POST("/webhook",
			middleware.GatewayWebhookAuth(),
			paymentControllers.WebhookHandler(paymentDeps),
		)

		// Confirmation view payload, rendered verbatim from the order row.
		paymentGroup.GET("/confirmation/:orderNumber", paymentControllers.GetOrderConfirmationHandler(paymentDeps))
	}
}

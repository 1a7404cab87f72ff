package orderControllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Ptamayo26/ferremas-final-sub001/checkout"
	"github.com/Ptamayo26/ferremas-final-sub001/models"
	"github.com/Ptamayo26/ferremas-final-sub001/payment"
	"github.com/Ptamayo26/ferremas-final-sub001/pricing"
)

// PaymentMethodWebpay is the gateway-routed method; everything else (e.g.
// "transfer") confirms without a redirect.
const PaymentMethodWebpay = "webpay"

// Service is the order boundary: it turns an accepted checkout request into
// a persisted order and, for gateway-routed methods, a redirect target.
type Service struct {
	db      *gorm.DB
	gateway *payment.Client
}

func NewService(db *gorm.DB, gateway *payment.Client) *Service {
	return &Service{db: db, gateway: gateway}
}

// generateOrderNumber builds a unique buy-order reference.
// Example: FM-20260828-5f3a9c1e
func generateOrderNumber() string {
	return fmt.Sprintf("FM-%s-%s", time.Now().Format("20060102"), uuid.NewString()[:8])
}

// Submit accepts a checkout request and creates the order inside one
// transaction: row-locked stock check and deduction, order insert with the
// computed breakdown, and (authenticated mode) cart clear. For webpay the
// gateway transaction is created before the order commits, so a gateway
// failure leaves the cart untouched.
func (s *Service) Submit(ctx context.Context, req checkout.Request) (checkout.Result, error) {
	lines := req.Items
	var cartID uint

	if req.CustomerID != "" {
		// Authenticated: the authoritative lines come from the remote cart,
		// whatever the client thinks it has.
		var userCart models.Cart
		err := s.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("added_at ASC, id ASC")
		}).Where("user_id = ?", req.CustomerID).First(&userCart).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return checkout.Result{}, fmt.Errorf("fetch cart: %w", err)
		}
		lines = userCart.Items
		cartID = userCart.CartID
	}

	if len(lines) == 0 {
		return checkout.Result{}, fmt.Errorf("%w: cart is empty", checkout.ErrBusinessRejection)
	}
	if strings.TrimSpace(req.Address.Street) == "" && req.Shipping != nil && req.Shipping.Cost > 0 {
		return checkout.Result{}, fmt.Errorf("%w: shipping address is missing", checkout.ErrBusinessRejection)
	}

	var shippingCost int64
	var carrier, service string
	if req.Shipping != nil {
		shippingCost = req.Shipping.Cost
		carrier = req.Shipping.Carrier
		service = req.Shipping.Service
	}
	breakdown := pricing.Compute(lines, req.Discount, shippingCost)

	orderNumber := generateOrderNumber()
	status := models.OrderStatusPending

	// Gateway transaction first: if the gateway is down the customer keeps
	// the cart and retries; no half-created order points at a dead redirect.
	var gatewayRes payment.CreateResult
	if req.PaymentMethod == PaymentMethodWebpay {
		returnURL := os.Getenv("GATEWAY_RETURN_URL")
		var err error
		gatewayRes, err = s.gateway.Create(ctx, breakdown.Total, orderNumber, req.CheckoutRef, returnURL)
		if err != nil {
			return checkout.Result{}, fmt.Errorf("create gateway transaction: %w", err)
		}
		status = models.OrderStatusAwaitingPayment
	}

	var discountCode string
	if req.Discount != nil {
		discountCode = req.Discount.Code
	}

	order := models.Order{
		OrderNumber:     orderNumber,
		CustomerRUT:     req.RUT,
		CustomerEmail:   req.Email,
		CustomerName:    req.CustomerName,
		Address:         req.Address,
		Subtotal:        breakdown.Subtotal,
		DiscountCode:    discountCode,
		DiscountAmount:  breakdown.DiscountAmount,
		NetAmount:       breakdown.Net,
		TaxAmount:       breakdown.Tax,
		ShippingCost:    breakdown.ShippingCost,
		TotalAmount:     breakdown.Total,
		ShippingCarrier: carrier,
		ShippingService: service,
		CheckoutRef:     req.CheckoutRef,
		CartSessionID:   req.CartSessionID,
		Status:          status,
		PaymentStatus:   models.PaymentStatusPending,
		PaymentMethod:   req.PaymentMethod,
		CreatedAt:       time.Now(),
	}
	if req.CustomerID != "" {
		order.UserID = &req.CustomerID
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, line := range lines {
			var product models.Product
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&product, "id = ?", line.ProductID).Error; err != nil {
				return fmt.Errorf("%w: product %d no longer exists", checkout.ErrBusinessRejection, line.ProductID)
			}
			if product.Stock < line.Quantity {
				return fmt.Errorf("%w: insufficient stock for %s", checkout.ErrBusinessRejection, line.ProductName)
			}

			product.Stock -= line.Quantity
			if err := tx.Save(&product).Error; err != nil {
				return err
			}

			order.Items = append(order.Items, models.OrderItem{
				ProductID:           line.ProductID,
				ProductName:         line.ProductName,
				ProductImage:        line.ProductImage,
				UnitPrice:           line.UnitPrice,
				DiscountedUnitPrice: line.DiscountedUnitPrice,
				Quantity:            line.Quantity,
			})
		}

		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		// Only the authenticated cart is cleared here; the anonymous cart
		// lives client-side and is cleared by its own store once the
		// submit succeeds.
		if cartID != 0 {
			if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return checkout.Result{}, err
	}

	return checkout.Result{
		OrderID:      order.ID,
		OrderNumber:  order.OrderNumber,
		Total:        order.TotalAmount,
		Status:       order.Status,
		RedirectURL:  gatewayRes.RedirectURL,
		GatewayToken: gatewayRes.Token,
	}, nil
}

// -------- Handlers --------

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// Map string to OrderStatus
func mapOrderStatus(status string) (models.OrderStatus, error) {
	for _, s := range []models.OrderStatus{
		models.OrderStatusPending,
		models.OrderStatusAwaitingPayment,
		models.OrderStatusConfirmed,
		models.OrderStatusReadyToShip,
		models.OrderStatusShipped,
		models.OrderStatusDelivered,
		models.OrderStatusReturned,
		models.OrderStatusCancelled,
	} {
		if strings.ToLower(status) == string(s) {
			return s, nil
		}
	}
	return "", errors.New("invalid order status")
}

func GetAllOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var orders []models.Order
		if err := db.
			Preload("Items").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

func GetUserOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDVal, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		userID := userIDVal.(string)

		var orders []models.Order
		if err := db.
			Where("user_id = ?", userID).
			Preload("Items").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// Get single order by numeric id or order number
func GetOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("orderID")
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "orderID is required"})
			return
		}

		var order models.Order
		if err := db.
			Preload("Items").
			Where("id = ? OR order_number = ?", id, id).
			First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

// Update order status (admin)
func UpdateOrderStatusHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("orderID")
		if orderID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "orderID is required"})
			return
		}
		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		newStatus, err := mapOrderStatus(req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := db.Model(&models.Order{}).Where("id = ?", orderID).
			Update("status", newStatus).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update order status"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Order status updated successfully"})
	}
}

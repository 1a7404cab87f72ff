package cartControllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Ptamayo26/ferremas-final-sub001/cart"
	"github.com/Ptamayo26/ferremas-final-sub001/metrics"
	"github.com/Ptamayo26/ferremas-final-sub001/models"
)

type CartItemInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

type UpdateQuantityInput struct {
	Quantity int `json:"quantity" binding:"required"`
}

// Deps carries what the handlers need to build a store per request.
type Deps struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Notifier *cart.Notifier
}

// storeFor resolves the cart backend for this request. The JWT middleware
// sets user_id for logged-in customers; anonymous requests carry their
// session id. This is the only mode decision in the whole cart surface.
func (d Deps) storeFor(c *gin.Context) cart.Store {
	userID := ""
	if v, exists := c.Get("user_id"); exists {
		userID, _ = v.(string)
	}
	sessionID := c.Query("session_id")
	return cart.ForIdentity(d.DB, d.Redis, d.Notifier, userID, sessionID)
}

func writeCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantity must be at least 1"})
	case errors.Is(err, cart.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, cart.ErrLineNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
	case errors.Is(err, cart.ErrNetwork):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Cart store unavailable, please retry"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cart operation failed"})
	}
}

// GET /cart
func GetCart(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := deps.storeFor(c).List(c.Request.Context())
		if err != nil {
			writeCartError(c, err)
			return
		}
		if items == nil {
			items = []models.CartItem{}
		}
		c.JSON(http.StatusOK, items)
	}
}

// GET /cart/summary
func GetCartSummary(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		sum, err := deps.storeFor(c).Summary(c.Request.Context())
		if err != nil {
			writeCartError(c, err)
			return
		}
		c.JSON(http.StatusOK, sum)
	}
}

// POST /cart
func AddCartItem(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		// Fetch product from DB: the line stores a snapshot, not a reference.
		var product models.Product
		if err := deps.DB.First(&product, "id = ?", input.ProductID).Error; err != nil {
			status := http.StatusInternalServerError
			errMsg := "Failed to validate product"
			if errors.Is(err, gorm.ErrRecordNotFound) {
				status = http.StatusBadRequest
				errMsg = "Product does not exist"
			}
			c.JSON(status, gin.H{"error": errMsg})
			return
		}

		item, err := deps.storeFor(c).Add(c.Request.Context(), cart.AddInput{
			ProductID:           product.ID,
			ProductName:         product.Name,
			ProductImage:        product.Image,
			UnitPrice:           product.Price,
			DiscountedUnitPrice: product.DiscountPrice,
			Quantity:            input.Quantity,
		})
		if err != nil {
			writeCartError(c, err)
			return
		}

		metrics.CartMutations.WithLabelValues("add").Inc()
		c.JSON(http.StatusCreated, item)
	}
}

// PUT /cart/:line_id
func UpdateCartItemQuantity(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		lineID, ok := parseLineID(c)
		if !ok {
			return
		}

		var input UpdateQuantityInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		if err := deps.storeFor(c).UpdateQuantity(c.Request.Context(), lineID, input.Quantity); err != nil {
			writeCartError(c, err)
			return
		}

		metrics.CartMutations.WithLabelValues("update_quantity").Inc()
		c.JSON(http.StatusOK, gin.H{"message": "Cart item updated"})
	}
}

// DELETE /cart/:line_id
func DeleteCartItem(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		lineID, ok := parseLineID(c)
		if !ok {
			return
		}

		if err := deps.storeFor(c).Remove(c.Request.Context(), lineID); err != nil {
			writeCartError(c, err)
			return
		}

		metrics.CartMutations.WithLabelValues("remove").Inc()
		c.JSON(http.StatusOK, gin.H{"message": "Cart item deleted"})
	}
}

func parseLineID(c *gin.Context) (uint, bool) {
	raw, err := strconv.ParseUint(c.Param("line_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid line_id"})
		return 0, false
	}
	return uint(raw), true
}

// DELETE /cart
func ClearCart(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := deps.storeFor(c).Clear(c.Request.Context()); err != nil {
			writeCartError(c, err)
			return
		}

		metrics.CartMutations.WithLabelValues("clear").Inc()
		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
	}
}

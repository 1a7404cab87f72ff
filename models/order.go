package models

import "time"

type OrderStatus string
type PaymentStatus string

const (
	// Order statuses (storefront flow)
	OrderStatusPending         OrderStatus = "pending"          // Order created, before payment routing
	OrderStatusAwaitingPayment OrderStatus = "awaiting_payment" // Sent to the gateway, waiting for the customer
	OrderStatusConfirmed       OrderStatus = "confirmed"        // Paid and confirmed
	OrderStatusReadyToShip     OrderStatus = "ready_to_ship"    // Packed and ready for dispatch
	OrderStatusShipped         OrderStatus = "shipped"          // Out for delivery
	OrderStatusDelivered       OrderStatus = "delivered"        // Customer received the items
	OrderStatusReturned        OrderStatus = "returned"         // Customer returned the items
	OrderStatusCancelled       OrderStatus = "cancelled"        // Cancelled before shipping

	// Payment statuses
	PaymentStatusPending  PaymentStatus = "pending"  // Payment not completed yet
	PaymentStatusPaid     PaymentStatus = "paid"     // Payment completed successfully
	PaymentStatusFailed   PaymentStatus = "failed"   // Payment attempt failed
	PaymentStatusRefunded PaymentStatus = "refunded" // Money returned to customer
)

type Order struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	OrderNumber string  `gorm:"uniqueIndex;not null" json:"order_number"`
	UserID      *string `json:"user_id,omitempty"` // nil for anonymous orders
	// Customer snapshot, filled for both modes. RUT and email are mandatory.
	CustomerRUT   string  `gorm:"column:customer_rut" json:"customer_rut"`
	CustomerEmail string  `json:"customer_email"`
	CustomerName  string  `json:"customer_name"`
	Address       Address `gorm:"embedded;embeddedPrefix:ship_" json:"address"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`

	// Price breakdown frozen at confirmation time, tax-inclusive pesos.
	Subtotal       int64  `json:"subtotal"`
	DiscountCode   string `json:"discount_code,omitempty"`
	DiscountAmount int64  `json:"discount_amount"`
	NetAmount      int64  `json:"net_amount"`
	TaxAmount      int64  `json:"tax_amount"`
	ShippingCost   int64  `json:"shipping_cost"`
	TotalAmount    int64  `json:"total_amount"`

	ShippingCarrier string `json:"shipping_carrier"`
	ShippingService string `json:"shipping_service"`

	// Routing refs back to the checkout that produced this order: the
	// payment return flow uses them to settle the session and clear the
	// anonymous cart. Never part of the payload.
	CheckoutRef   string `gorm:"index" json:"-"`
	CartSessionID string `json:"-"`

	Status        OrderStatus   `gorm:"type:VARCHAR(20);default:'pending'" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:VARCHAR(20);default:'pending'" json:"payment_status"`
	PaymentMethod string        `json:"payment_method"` // e.g. "webpay", "transfer"
	CreatedAt     time.Time     `json:"created_at"`
}

type OrderItem struct {
	ID                  uint   `gorm:"primaryKey" json:"id"`
	OrderID             uint   `gorm:"index" json:"-"`
	ProductID           uint   `json:"product_id"`
	ProductName         string `json:"product_name"`
	ProductImage        string `json:"product_image"`
	UnitPrice           int64  `json:"unit_price"`
	DiscountedUnitPrice *int64 `json:"discounted_unit_price,omitempty"`
	Quantity            int    `json:"quantity"`
}

// PaymentConfirmation is the idempotency record for the gateway confirm step.
// Token is unique: the first confirm writes the row, replays read it back.
type PaymentConfirmation struct {
	ID          uint      `gorm:"primaryKey"`
	Token       string    `gorm:"uniqueIndex;not null"`
	OrderID     uint      `gorm:"index"`
	Amount      int64
	Status      string // gateway status text, e.g. "AUTHORIZED"
	ConfirmedAt time.Time
}

package payment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/Ptamayo26/ferremas-final-sub001/models"
)

// ConfirmedOrder is the authoritative post-payment payload. The breakdown
// comes verbatim from the order row; the confirmation view renders it and
// never recomputes anything client-side.
type ConfirmedOrder struct {
	OrderNumber    string               `json:"order_number"`
	Status         models.OrderStatus   `json:"status"`
	PaymentStatus  models.PaymentStatus `json:"payment_status"`
	CreatedAt      time.Time            `json:"created_at"`
	Items          []models.OrderItem   `json:"items"`
	Subtotal       int64                `json:"subtotal"`
	DiscountAmount int64                `json:"discount_amount"`
	NetAmount      int64                `json:"net_amount"`
	TaxAmount      int64                `json:"tax_amount"`
	ShippingCost   int64                `json:"shipping_cost"`
	Total          int64                `json:"total"`

	// Routing refs and replay flag for the caller's bookkeeping, never
	// serialized to the customer.
	CheckoutRef   string `json:"-"`
	CartSessionID string `json:"-"`
	Replayed      bool   `json:"-"`
}

// Confirmer exchanges a return token for the confirmed order, exactly once
// per token value. The unique token column on payment_confirmations makes the
// exchange idempotent: the first confirm commits against the gateway and
// records the outcome, every replay (the customer reloading the return page)
// reads the record back without a second gateway call.
type Confirmer struct {
	db      *gorm.DB
	gateway *Client
}

func NewConfirmer(db *gorm.DB, gateway *Client) *Confirmer {
	return &Confirmer{db: db, gateway: gateway}
}

// Confirm exchanges the token. On ErrConfirmationFailed the routing refs of
// the declined order are still populated so the caller can settle the
// originating checkout.
func (c *Confirmer) Confirm(ctx context.Context, token string) (ConfirmedOrder, error) {
	if token == "" {
		return ConfirmedOrder{}, ErrTokenNotFound
	}

	// Replay? Serve the stored outcome.
	var existing models.PaymentConfirmation
	err := c.db.WithContext(ctx).Where("token = ?", token).First(&existing).Error
	if err == nil {
		return c.confirmedPayload(ctx, existing.OrderID, true)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return ConfirmedOrder{}, fmt.Errorf("lookup confirmation: %w", err)
	}

	outcome, err := c.gateway.commit(ctx, token)
	if err != nil {
		return ConfirmedOrder{}, err
	}

	var order models.Order
	err = c.db.WithContext(ctx).Where("order_number = ?", outcome.BuyOrder).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("gateway confirmed unknown buy order %s", outcome.BuyOrder)
		return ConfirmedOrder{}, ErrConfirmationFailed
	}
	if err != nil {
		return ConfirmedOrder{}, fmt.Errorf("fetch order: %w", err)
	}

	if outcome.Status != "AUTHORIZED" {
		// Declined. Mark the order failed; the customer restarts checkout,
		// this token is never retried.
		if updErr := c.db.WithContext(ctx).Model(&models.Order{}).
			Where("id = ?", order.ID).
			Update("payment_status", models.PaymentStatusFailed).Error; updErr != nil {
			log.Printf("failed to mark order %s as payment failed: %v", order.OrderNumber, updErr)
		}
		return ConfirmedOrder{
			CheckoutRef:   order.CheckoutRef,
			CartSessionID: order.CartSessionID,
		}, ErrConfirmationFailed
	}

	// First successful confirm: flip the order and write the idempotency
	// record in one transaction. A concurrent confirm for the same token
	// loses on the unique index and falls back to the replay path.
	txErr := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
			"status":         models.OrderStatusConfirmed,
			"payment_status": models.PaymentStatusPaid,
		}).Error; err != nil {
			return err
		}
		return tx.Create(&models.PaymentConfirmation{
			Token:       token,
			OrderID:     order.ID,
			Amount:      outcome.Amount,
			Status:      outcome.Status,
			ConfirmedAt: time.Now(),
		}).Error
	})
	if txErr != nil {
		var replay models.PaymentConfirmation
		if c.db.WithContext(ctx).Where("token = ?", token).First(&replay).Error == nil {
			return c.confirmedPayload(ctx, replay.OrderID, true)
		}
		return ConfirmedOrder{}, fmt.Errorf("record confirmation: %w", txErr)
	}

	return c.confirmedPayload(ctx, order.ID, false)
}

func (c *Confirmer) confirmedPayload(ctx context.Context, orderID uint, replayed bool) (ConfirmedOrder, error) {
	var order models.Order
	if err := c.db.WithContext(ctx).Preload("Items").First(&order, orderID).Error; err != nil {
		return ConfirmedOrder{}, fmt.Errorf("fetch confirmed order: %w", err)
	}

	return ConfirmedOrder{
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
		CheckoutRef:    order.CheckoutRef,
		CartSessionID:  order.CartSessionID,
		Replayed:       replayed,
	}, nil
}

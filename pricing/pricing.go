// Package pricing computes the price breakdown shown to the customer before
// an order exists. All amounts are tax-inclusive Chilean pesos. The confirmed
// breakdown returned by the payment gateway is always authoritative over
// anything computed here.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/Ptamayo26/ferremas-final-sub001/models"
)

// IVA rate. Prices are tax-inclusive, so the tax share of an amount X is
// X - round(X/1.19).
const TaxRatePercent = 19

var taxDivisor = decimal.New(100+TaxRatePercent, -2) // 1.19

type DiscountKind string

const (
	Percentage  DiscountKind = "percentage"
	FixedAmount DiscountKind = "fixed_amount"
)

// Discount is a validated discount code. Only the discount resolver creates
// one; it is immutable and lives in checkout-session memory only.
type Discount struct {
	Code  string       `json:"code"`
	Kind  DiscountKind `json:"kind"`
	Value int64        `json:"value"` // percent for Percentage, pesos for FixedAmount
}

// Breakdown is derived, never mutated in place. Total = Subtotal -
// DiscountAmount + ShippingCost; shipping is tax-exclusive and never part of
// the net/tax split.
type Breakdown struct {
	Subtotal       int64 `json:"subtotal"`
	DiscountAmount int64 `json:"discount_amount"`
	// Net/tax decomposition of the merchandise amount before and after the
	// discount. The two splits round independently; they are not additive
	// across the discount boundary.
	NetBeforeDiscount int64 `json:"net_before_discount"`
	TaxBeforeDiscount int64 `json:"tax_before_discount"`
	Net               int64 `json:"net"`
	Tax               int64 `json:"tax"`
	ShippingCost      int64 `json:"shipping_cost"`
	Total             int64 `json:"total"`
}

// Subtotal sums effective unit price × quantity over the lines.
func Subtotal(lines []models.CartItem) int64 {
	var sum int64
	for _, line := range lines {
		sum += line.EffectiveUnitPrice() * int64(line.Quantity)
	}
	return sum
}

// Decompose splits a tax-inclusive amount into its net and tax parts:
// net = round(X/1.19), tax = X - net.
func Decompose(amount int64) (net, tax int64) {
	net = decimal.NewFromInt(amount).Div(taxDivisor).Round(0).IntPart()
	return net, amount - net
}

// DiscountAmount resolves a discount against a subtotal. Percentage rounds,
// FixedAmount clamps to the subtotal: the discount can never exceed the
// amount it applies to, and that is a clamp, not an error.
func DiscountAmount(d *Discount, subtotal int64) int64 {
	if d == nil {
		return 0
	}
	switch d.Kind {
	case Percentage:
		return decimal.NewFromInt(subtotal).
			Mul(decimal.NewFromInt(d.Value)).
			Div(decimal.NewFromInt(100)).
			Round(0).IntPart()
	case FixedAmount:
		if d.Value > subtotal {
			return subtotal
		}
		return d.Value
	}
	return 0
}

// Compute builds the breakdown for the given lines, optional discount and
// shipping cost. It never fails: a nil discount means zero discount, a zero
// shipping cost means no shipping selected yet.
func Compute(lines []models.CartItem, d *Discount, shippingCost int64) Breakdown {
	subtotal := Subtotal(lines)
	discountAmount := DiscountAmount(d, subtotal)
	merchandise := subtotal - discountAmount

	netBefore, taxBefore := Decompose(subtotal)
	net, tax := Decompose(merchandise)

	return Breakdown{
		Subtotal:          subtotal,
		DiscountAmount:    discountAmount,
		NetBeforeDiscount: netBefore,
		TaxBeforeDiscount: taxBefore,
		Net:               net,
		Tax:               tax,
		ShippingCost:      shippingCost,
		Total:             merchandise + shippingCost,
	}
}

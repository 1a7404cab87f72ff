// Package discount validates discount codes against the remote discount
// authority. Eligibility can depend on the cart contents, so every validation
// ships a snapshot of the current lines along with the code.
package discount

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/Ptamayo26/ferremas-final-sub001/models"
	"github.com/Ptamayo26/ferremas-final-sub001/pricing"
)

// ErrInvalidOrExpiredCode covers every rejection: unknown code, expired code,
// ineligible cart, and transport failure all collapse to this one error. The
// distinction is deliberately not surfaced to the customer.
var ErrInvalidOrExpiredCode = errors.New("discount code is invalid or expired")

type lineSnapshot struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

type validateRequest struct {
	Code  string         `json:"code"`
	Items []lineSnapshot `json:"items"`
}

type validateResponse struct {
	Kind  string `json:"kind"` // "percentage" | "fixed_amount"
	Value int64  `json:"value"`
}

type Resolver struct {
	apiURL string
	client *http.Client
}

// NewResolver builds a resolver against the given endpoint. A nil client gets
// a default with a short timeout; validation blocks a checkout edit, it must
// not hang.
func NewResolver(apiURL string, client *http.Client) *Resolver {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Resolver{apiURL: apiURL, client: client}
}

// NewResolverFromEnv reads DISCOUNT_API_URL, failing fast when unset.
func NewResolverFromEnv() (*Resolver, error) {
	apiURL := os.Getenv("DISCOUNT_API_URL")
	if apiURL == "" {
		return nil, fmt.Errorf("discount configuration missing")
	}
	return NewResolver(apiURL, nil), nil
}

// Validate exchanges a code plus the current line items for a typed discount.
// A resolved discount is immutable and is never re-validated automatically;
// when the cart changes, only the amount is recomputed against the new
// subtotal until the customer clears and re-applies the code.
func (r *Resolver) Validate(ctx context.Context, code string, lines []models.CartItem) (*pricing.Discount, error) {
	snapshots := make([]lineSnapshot, 0, len(lines))
	for _, line := range lines {
		snapshots = append(snapshots, lineSnapshot{
			ProductID: line.ProductID,
			Name:      line.ProductName,
			Price:     line.EffectiveUnitPrice(),
			Quantity:  line.Quantity,
		})
	}

	body, err := json.Marshal(validateRequest{Code: code, Items: snapshots})
	if err != nil {
		return nil, fmt.Errorf("marshal validate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.apiURL, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("build validate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		log.Printf("discount validation transport error: %v", err)
		return nil, ErrInvalidOrExpiredCode
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrInvalidOrExpiredCode
	}

	var vr validateResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		log.Printf("discount validation bad response: %v", err)
		return nil, ErrInvalidOrExpiredCode
	}

	var kind pricing.DiscountKind
	switch vr.Kind {
	case string(pricing.Percentage):
		kind = pricing.Percentage
	case string(pricing.FixedAmount):
		kind = pricing.FixedAmount
	default:
		return nil, ErrInvalidOrExpiredCode
	}

	return &pricing.Discount{Code: code, Kind: kind, Value: vr.Value}, nil
}

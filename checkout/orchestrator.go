// Package checkout drives one checkout from cart to submitted order: the
// customer edits address, shipping and discount while the session is
// Building, then a single submit assembles the request for the order
// boundary. The session never touches the cart on failure, so a retry starts
// from everything already entered.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Ptamayo26/ferremas-final-sub001/cart"
	"github.com/Ptamayo26/ferremas-final-sub001/models"
	"github.com/Ptamayo26/ferremas-final-sub001/pricing"
	"github.com/Ptamayo26/ferremas-final-sub001/shipping"
)

type State string

const (
	StateBuilding                State = "building"
	StateSubmitting              State = "submitting"
	StateAwaitingGatewayRedirect State = "awaiting_gateway_redirect"
	StateDone                    State = "done"
	StateFailed                  State = "failed"
)

var (
	// ErrSubmitInFlight: a second submit arrived while one is in progress.
	// Rejected, never queued.
	ErrSubmitInFlight = errors.New("a submit is already in flight")
	// ErrBusinessRejection: the order boundary refused the request (empty
	// cart, missing address, out of stock).
	ErrBusinessRejection = errors.New("order was rejected")
)

// ValidationErrors maps field name → message. These never leave the Building
// state and are never sent over the network.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	return "validation failed: " + strings.Join(fields, ", ")
}

// Request is assembled once, at submit time. Authenticated checkouts carry no
// items (the order boundary re-derives them from the remote cart); anonymous
// checkouts embed the full line snapshot with prices frozen at this instant.
type Request struct {
	CustomerID    string // empty for anonymous
	CustomerName  string
	RUT           string
	Email         string
	Address       models.Address
	PaymentMethod string
	Discount      *pricing.Discount
	Shipping      *shipping.Selection
	Items         []models.CartItem
	// Routing refs persisted on the order so the payment return flow can
	// settle the originating session and anonymous cart.
	CheckoutRef   string
	CartSessionID string
}

// Result is what the order boundary answers. RedirectURL/GatewayToken are set
// only for gateway-routed payment methods.
type Result struct {
	OrderID      uint               `json:"order_id"`
	OrderNumber  string             `json:"order_number"`
	Total        int64              `json:"total"`
	Status       models.OrderStatus `json:"status"`
	RedirectURL  string             `json:"redirect_url,omitempty"`
	GatewayToken string             `json:"gateway_token,omitempty"`
}

// Submitter is the order boundary.
type Submitter interface {
	Submit(ctx context.Context, req Request) (Result, error)
}

// Session is one checkout in progress. All mutating calls are serialized by
// the session mutex; the submit itself runs outside the lock so a concurrent
// second submit is rejected, not queued behind the first.
type Session struct {
	mu    sync.Mutex
	state State

	// Ref is the registry id; set once at creation, before the session is
	// shared.
	Ref string

	CustomerID    string
	CustomerName  string
	RUT           string
	Email         string
	Address       models.Address
	PaymentMethod string

	discount    *pricing.Discount
	shipping    *shipping.Selection
	cartSession string

	failureMsg string
	result     Result
}

func NewSession(customerID string) *Session {
	return &Session{state: StateBuilding, CustomerID: customerID}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// FailureMessage is the user-visible message after a failed submit.
func (s *Session) FailureMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failureMsg
}

func (s *Session) Result() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// SetCustomer records the contact fields. Editable while Building or after a
// failure; a submit in flight freezes them.
func (s *Session) SetCustomer(name, rut, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSubmitting || s.state == StateAwaitingGatewayRedirect {
		return ErrSubmitInFlight
	}
	s.CustomerName, s.RUT, s.Email = name, rut, email
	s.state = StateBuilding
	return nil
}

func (s *Session) SetAddress(addr models.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSubmitting || s.state == StateAwaitingGatewayRedirect {
		return ErrSubmitInFlight
	}
	s.Address = addr
	s.state = StateBuilding
	return nil
}

func (s *Session) SetPaymentMethod(method string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSubmitting || s.state == StateAwaitingGatewayRedirect {
		return ErrSubmitInFlight
	}
	s.PaymentMethod = method
	s.state = StateBuilding
	return nil
}

// SetShipping freezes a shipping selection for the rest of the checkout.
func (s *Session) SetShipping(sel shipping.Selection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSubmitting || s.state == StateAwaitingGatewayRedirect {
		return ErrSubmitInFlight
	}
	s.shipping = &sel
	s.state = StateBuilding
	return nil
}

// ApplyDiscount records a resolved discount. The code is not re-validated
// when the cart changes afterwards; only the amount is recomputed against the
// new subtotal.
func (s *Session) ApplyDiscount(d *pricing.Discount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSubmitting || s.state == StateAwaitingGatewayRedirect {
		return ErrSubmitInFlight
	}
	s.discount = d
	s.state = StateBuilding
	return nil
}

func (s *Session) ClearDiscount() error {
	return s.ApplyDiscount(nil)
}

// SetCartSession records which anonymous cart this checkout draws from, so
// the payment return flow can clear it once the gateway confirms. Irrelevant
// for authenticated checkouts.
func (s *Session) SetCartSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cartSession = id
}

func (s *Session) Discount() *pricing.Discount {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.discount
}

func (s *Session) Shipping() *shipping.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shipping
}

// Preview recomputes the live breakdown for the current lines. Display only;
// the confirmed breakdown after payment is the one of record.
func (s *Session) Preview(lines []models.CartItem) pricing.Breakdown {
	s.mu.Lock()
	discount := s.discount
	var shippingCost int64
	if s.shipping != nil {
		shippingCost = s.shipping.Cost
	}
	s.mu.Unlock()
	return pricing.Compute(lines, discount, shippingCost)
}

// validate runs the local checks. Nothing is sent when any of them fails.
func (s *Session) validate() ValidationErrors {
	errs := ValidationErrors{}
	if !ValidRUT(s.RUT) {
		errs["rut"] = "RUT inválido"
	}
	if !validEmail(s.Email) {
		errs["email"] = "correo electrónico inválido"
	}
	if s.PaymentMethod == "" {
		errs["payment_method"] = "seleccione un método de pago"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Submit validates locally, assembles the request and sends it to the order
// boundary. Any error after validation transitions to Failed with a
// user-visible message; the cart is left untouched so the customer can retry
// without re-entering anything.
func (s *Session) Submit(ctx context.Context, boundary Submitter, store cart.Store) (Result, error) {
	s.mu.Lock()
	switch s.state {
	case StateSubmitting, StateAwaitingGatewayRedirect:
		s.mu.Unlock()
		return Result{}, ErrSubmitInFlight
	case StateDone:
		s.mu.Unlock()
		return s.result, nil
	}

	// RUT and email are mandatory in both modes. Field errors keep the
	// session in Building and no request goes out.
	if errs := s.validate(); errs != nil {
		s.state = StateBuilding
		s.mu.Unlock()
		return Result{}, errs
	}

	req := Request{
		CustomerID:    s.CustomerID,
		CustomerName:  s.CustomerName,
		RUT:           s.RUT,
		Email:         s.Email,
		Address:       s.Address,
		PaymentMethod: s.PaymentMethod,
		Discount:      s.discount,
		Shipping:      s.shipping,
		CheckoutRef:   s.Ref,
		CartSessionID: s.cartSession,
	}
	s.state = StateSubmitting
	s.mu.Unlock()

	fail := func(err error, msg string) (Result, error) {
		s.mu.Lock()
		s.state = StateFailed
		s.failureMsg = msg
		s.mu.Unlock()
		return Result{}, err
	}

	if req.CustomerID == "" {
		// Anonymous: snapshot the lines now. Later catalog price changes
		// must not reach this order.
		lines, err := store.List(ctx)
		if err != nil {
			return fail(err, "No pudimos leer tu carro. Intenta nuevamente.")
		}
		req.Items = lines
	}

	result, err := boundary.Submit(ctx, req)
	if err != nil {
		return fail(err, "No pudimos procesar tu pedido. Revisa los datos e intenta nuevamente.")
	}

	s.mu.Lock()
	s.result = result
	if result.RedirectURL != "" {
		s.state = StateAwaitingGatewayRedirect
	} else {
		s.state = StateDone
	}
	s.mu.Unlock()
	return result, nil
}

// GatewayReturned moves the session out of AwaitingGatewayRedirect once the
// customer comes back and the confirm step resolves.
func (s *Session) GatewayReturned(paid bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAwaitingGatewayRedirect {
		return
	}
	if paid {
		s.state = StateDone
	} else {
		s.state = StateFailed
		s.failureMsg = "El pago no fue completado. Puedes reintentar el pago."
	}
}

// ValidRUT checks a Chilean RUT: digits plus mod-11 check digit. Accepts
// dotted and plain forms ("12.345.678-5", "12345678-5").
func ValidRUT(rut string) bool {
	clean := strings.ToUpper(strings.NewReplacer(".", "", "-", "", " ", "").Replace(rut))
	if len(clean) < 2 {
		return false
	}
	body, dv := clean[:len(clean)-1], clean[len(clean)-1:]
	if len(body) < 7 || len(body) > 8 {
		return false
	}

	sum := 0
	factor := 2
	for i := len(body) - 1; i >= 0; i-- {
		c := body[i]
		if c < '0' || c > '9' {
			return false
		}
		sum += int(c-'0') * factor
		factor++
		if factor > 7 {
			factor = 2
		}
	}

	expected := 11 - sum%11
	var want string
	switch expected {
	case 11:
		want = "0"
	case 10:
		want = "K"
	default:
		want = fmt.Sprintf("%d", expected)
	}
	return dv == want
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	return strings.Contains(domain, ".") && !strings.ContainsAny(email, " \t")
}

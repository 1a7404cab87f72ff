// Package shipping resolves a carrier selection to a cost. Two strategies
// coexist: a static per-carrier table for the plain "pick a carrier" flow and
// live rate quotes fanned out to the configured carrier services. Picking a
// method is pure state; nothing here touches the cart.
package shipping

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

var ErrUnknownCarrier = errors.New("unknown carrier")

// Selection is a frozen shipping choice. Once it is recorded on a checkout
// session the cost does not move, even if the quote that produced it would
// come back different now.
type Selection struct {
	Carrier string `json:"carrier"`
	Service string `json:"service"`
	Cost    int64  `json:"cost"` // tax-exclusive pesos
}

// StaticTable maps carrier name → flat cost.
type StaticTable map[string]int64

// DefaultTable is the built-in rate card. SHIPPING_RATE_<CARRIER> env vars
// override individual entries.
func DefaultTable() StaticTable {
	table := StaticTable{
		"chilexpress":      4990,
		"starken":          3990,
		"correos":          2990,
		"retiro_en_tienda": 0,
	}
	for name := range table {
		env := "SHIPPING_RATE_" + strings.ToUpper(name)
		if v := os.Getenv(env); v != "" {
			cost, err := strconv.ParseInt(v, 10, 64)
			if err == nil && cost >= 0 {
				table[name] = cost
			}
		}
	}
	return table
}

// Cost looks up the flat rate for a carrier.
func (t StaticTable) Cost(carrier string) (int64, error) {
	cost, ok := t[strings.ToLower(carrier)]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCarrier, carrier)
	}
	return cost, nil
}

// Select freezes a static-table choice into a Selection.
func (t StaticTable) Select(carrier string) (Selection, error) {
	cost, err := t.Cost(carrier)
	if err != nil {
		return Selection{}, err
	}
	return Selection{Carrier: strings.ToLower(carrier), Service: "normal", Cost: cost}, nil
}

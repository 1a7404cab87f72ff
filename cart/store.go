// Package cart holds the two cart backends behind one contract: a
// session-keyed store for anonymous visitors and a database-backed store for
// logged-in customers. Callers never branch on the mode; ForIdentity picks
// the implementation.
package cart

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Ptamayo26/ferremas-final-sub001/models"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrUnauthenticated = errors.New("no authenticated identity for cart operation")
	ErrLineNotFound    = errors.New("cart line not found")
	// ErrNetwork wraps transport failures from the backing store. A failed
	// call never corrupts the caller's last known good snapshot.
	ErrNetwork = errors.New("cart store unreachable")
)

// AddInput is the product snapshot captured when a line is added. Prices are
// frozen here; later catalog changes do not touch existing lines.
type AddInput struct {
	ProductID           uint
	ProductName         string
	ProductImage        string
	UnitPrice           int64
	DiscountedUnitPrice *int64
	Quantity            int
}

// Summary mirrors the cart resumen: for the authenticated store the subtotal
// is server-computed and authoritative over any local sum.
type Summary struct {
	Subtotal  int64 `json:"subtotal"`
	Total     int64 `json:"total"`
	ItemCount int   `json:"item_count"`
}

// Store is the cart contract. List returns lines in insertion order. Add
// merges into an existing line for the same product instead of duplicating.
type Store interface {
	List(ctx context.Context) ([]models.CartItem, error)
	Add(ctx context.Context, input AddInput) (models.CartItem, error)
	UpdateQuantity(ctx context.Context, lineID uint, quantity int) error
	Remove(ctx context.Context, lineID uint) error
	Clear(ctx context.Context) error
	Summary(ctx context.Context) (Summary, error)
}

// ForIdentity selects the backend from the authentication state. This is the
// only place the mode decision lives.
func ForIdentity(db *gorm.DB, rdb *redis.Client, notifier *Notifier, userID, sessionID string) Store {
	if userID != "" {
		return NewRemoteStore(db, userID)
	}
	return NewLocalStore(rdb, notifier, sessionID)
}

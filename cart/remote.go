package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Ptamayo26/ferremas-final-sub001/models"
)

// RemoteStore is the authenticated cart, backed by the carts/cart_items
// tables. There is no change broadcast here: every mutation round-trips to
// the database and readers re-fetch to observe it.
type RemoteStore struct {
	db     *gorm.DB
	userID string
}

func NewRemoteStore(db *gorm.DB, userID string) *RemoteStore {
	return &RemoteStore{db: db, userID: userID}
}

// findOrCreateCart resolves the user's single cart row.
func (s *RemoteStore) findOrCreateCart(ctx context.Context) (models.Cart, error) {
	var cart models.Cart
	err := s.db.WithContext(ctx).Where("user_id = ?", s.userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = models.Cart{UserID: s.userID}
		if err := s.db.WithContext(ctx).Create(&cart).Error; err != nil {
			return models.Cart{}, fmt.Errorf("%w: create cart: %v", ErrNetwork, err)
		}
		return cart, nil
	}
	if err != nil {
		return models.Cart{}, fmt.Errorf("%w: fetch cart: %v", ErrNetwork, err)
	}
	return cart, nil
}

func (s *RemoteStore) List(ctx context.Context) ([]models.CartItem, error) {
	if s.userID == "" {
		return nil, ErrUnauthenticated
	}

	var cart models.Cart
	err := s.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("added_at ASC, id ASC")
	}).Where("user_id = ?", s.userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: fetch cart: %v", ErrNetwork, err)
	}
	return cart.Items, nil
}

// Add merges by product: an existing line for the same product has its
// quantity increased. The merge decision belongs to this store, not the
// caller.
func (s *RemoteStore) Add(ctx context.Context, input AddInput) (models.CartItem, error) {
	if s.userID == "" {
		return models.CartItem{}, ErrUnauthenticated
	}
	if input.Quantity < 1 {
		return models.CartItem{}, ErrInvalidQuantity
	}

	cart, err := s.findOrCreateCart(ctx)
	if err != nil {
		return models.CartItem{}, err
	}

	var item models.CartItem
	err = s.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cart.CartID, input.ProductID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		item = models.CartItem{
			CartID:              cart.CartID,
			ProductID:           input.ProductID,
			ProductName:         input.ProductName,
			ProductImage:        input.ProductImage,
			UnitPrice:           input.UnitPrice,
			DiscountedUnitPrice: input.DiscountedUnitPrice,
			Quantity:            input.Quantity,
			AddedAt:             time.Now(),
		}
		if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
			return models.CartItem{}, fmt.Errorf("%w: add item: %v", ErrNetwork, err)
		}
		return item, nil
	}
	if err != nil {
		return models.CartItem{}, fmt.Errorf("%w: fetch item: %v", ErrNetwork, err)
	}

	item.Quantity += input.Quantity
	item.AddedAt = time.Now()
	if err := s.db.WithContext(ctx).Save(&item).Error; err != nil {
		return models.CartItem{}, fmt.Errorf("%w: update item: %v", ErrNetwork, err)
	}
	return item, nil
}

func (s *RemoteStore) UpdateQuantity(ctx context.Context, lineID uint, quantity int) error {
	if s.userID == "" {
		return ErrUnauthenticated
	}
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	cart, err := s.findOrCreateCart(ctx)
	if err != nil {
		return err
	}

	result := s.db.WithContext(ctx).Model(&models.CartItem{}).
		Where("id = ? AND cart_id = ?", lineID, cart.CartID).
		Update("quantity", quantity)
	if result.Error != nil {
		return fmt.Errorf("%w: update quantity: %v", ErrNetwork, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrLineNotFound
	}
	return nil
}

func (s *RemoteStore) Remove(ctx context.Context, lineID uint) error {
	if s.userID == "" {
		return ErrUnauthenticated
	}

	cart, err := s.findOrCreateCart(ctx)
	if err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Where("id = ? AND cart_id = ?", lineID, cart.CartID).
		Delete(&models.CartItem{})
	if result.Error != nil {
		return fmt.Errorf("%w: delete item: %v", ErrNetwork, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrLineNotFound
	}
	return nil
}

func (s *RemoteStore) Clear(ctx context.Context) error {
	if s.userID == "" {
		return ErrUnauthenticated
	}

	cart, err := s.findOrCreateCart(ctx)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).
		Where("cart_id = ?", cart.CartID).
		Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("%w: clear cart: %v", ErrNetwork, err)
	}
	return nil
}

// Summary is the resumen endpoint's data: subtotal computed server-side, so
// it is authoritative over any sum the caller derives for display.
func (s *RemoteStore) Summary(ctx context.Context) (Summary, error) {
	if s.userID == "" {
		return Summary{}, ErrUnauthenticated
	}

	items, err := s.List(ctx)
	if err != nil {
		return Summary{}, err
	}

	var sum Summary
	for _, item := range items {
		sum.Subtotal += item.EffectiveUnitPrice() * int64(item.Quantity)
		sum.ItemCount += item.Quantity
	}
	sum.Total = sum.Subtotal
	return sum, nil
}

package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Ptamayo26/ferremas-final-sub001/models"
)

// Anonymous carts live for 30 days after the last mutation.
const localCartTTL = 30 * 24 * time.Hour

// LocalStore holds an anonymous visitor's cart as one JSON array under a
// well-known session key. Every mutation is persisted immediately and then
// broadcast, so other open views of the same cart re-read without polling.
// Writers are last-writer-wins; there is no locking.
type LocalStore struct {
	rdb      *redis.Client
	notifier *Notifier
	session  string
}

func NewLocalStore(rdb *redis.Client, notifier *Notifier, sessionID string) *LocalStore {
	return &LocalStore{rdb: rdb, notifier: notifier, session: sessionID}
}

func localCartKey(sessionID string) string {
	return fmt.Sprintf("ferremas:cart:%s", sessionID)
}

func (s *LocalStore) load(ctx context.Context) ([]models.CartItem, error) {
	data, err := s.rdb.Get(ctx, localCartKey(s.session)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // no cart yet
	}
	if err != nil {
		return nil, fmt.Errorf("%w: redis get: %v", ErrNetwork, err)
	}

	var items []models.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return items, nil
}

func (s *LocalStore) save(ctx context.Context, items []models.CartItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	if err := s.rdb.Set(ctx, localCartKey(s.session), data, localCartTTL).Err(); err != nil {
		return fmt.Errorf("%w: redis set: %v", ErrNetwork, err)
	}
	s.notifier.Broadcast(s.session)
	return nil
}

func (s *LocalStore) List(ctx context.Context) ([]models.CartItem, error) {
	return s.load(ctx)
}

// Add merges into an existing line for the same product by increasing its
// quantity; a new product appends, preserving insertion order.
func (s *LocalStore) Add(ctx context.Context, input AddInput) (models.CartItem, error) {
	if input.Quantity < 1 {
		return models.CartItem{}, ErrInvalidQuantity
	}

	items, err := s.load(ctx)
	if err != nil {
		return models.CartItem{}, err
	}

	for i := range items {
		if items[i].ProductID == input.ProductID {
			items[i].Quantity += input.Quantity
			items[i].AddedAt = time.Now()
			if err := s.save(ctx, items); err != nil {
				return models.CartItem{}, err
			}
			return items[i], nil
		}
	}

	item := models.CartItem{
		ID:                  nextLineID(items),
		ProductID:           input.ProductID,
		ProductName:         input.ProductName,
		ProductImage:        input.ProductImage,
		UnitPrice:           input.UnitPrice,
		DiscountedUnitPrice: input.DiscountedUnitPrice,
		Quantity:            input.Quantity,
		AddedAt:             time.Now(),
	}
	items = append(items, item)
	if err := s.save(ctx, items); err != nil {
		return models.CartItem{}, err
	}
	return item, nil
}

func (s *LocalStore) UpdateQuantity(ctx context.Context, lineID uint, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	items, err := s.load(ctx)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].ID == lineID {
			items[i].Quantity = quantity
			return s.save(ctx, items)
		}
	}
	return ErrLineNotFound
}

func (s *LocalStore) Remove(ctx context.Context, lineID uint) error {
	items, err := s.load(ctx)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].ID == lineID {
			items = append(items[:i], items[i+1:]...)
			return s.save(ctx, items)
		}
	}
	return ErrLineNotFound
}

func (s *LocalStore) Clear(ctx context.Context) error {
	if err := s.rdb.Del(ctx, localCartKey(s.session)).Err(); err != nil {
		return fmt.Errorf("%w: redis del: %v", ErrNetwork, err)
	}
	s.notifier.Broadcast(s.session)
	return nil
}

func (s *LocalStore) Summary(ctx context.Context) (Summary, error) {
	items, err := s.load(ctx)
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

func nextLineID(items []models.CartItem) uint {
	var max uint
	for _, item := range items {
		if item.ID > max {
			max = item.ID
		}
	}
	return max + 1
}

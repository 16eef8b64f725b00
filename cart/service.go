package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/junaidrashid-git/marinetex-api/models"
)

// Service loads a cart, applies one mutation and writes it back. Two writers
// on the same cart race; the last Set wins.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Get returns the cart for id, or an empty Turkish cart when none is stored.
func (s *Service) Get(ctx context.Context, id string) (*Cart, error) {
	data, err := s.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return &Cart{ID: id, Language: models.LangTR, Lines: []Line{}}, nil
	}
	if err != nil {
		return nil, err
	}
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	c.ID = id
	if c.Lines == nil {
		c.Lines = []Line{}
	}
	return &c, nil
}

func (s *Service) save(ctx context.Context, c *Cart) error {
	c.UpdatedAt = s.now()
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	return s.store.Set(ctx, c.ID, data)
}

func (s *Service) update(ctx context.Context, id string, fn func(*Cart)) (*Cart, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	fn(c)
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) AddItem(ctx context.Context, id string, sel Selection) (*Cart, error) {
	return s.update(ctx, id, func(c *Cart) { c.AddItem(sel) })
}

func (s *Service) UpdateQuantity(ctx context.Context, id, key string, n int) (*Cart, error) {
	return s.update(ctx, id, func(c *Cart) { c.UpdateQuantity(key, n) })
}

func (s *Service) RemoveItem(ctx context.Context, id, key string) (*Cart, error) {
	return s.update(ctx, id, func(c *Cart) { c.RemoveItem(key) })
}

func (s *Service) SwitchLanguage(ctx context.Context, id, lang string) (*Cart, error) {
	return s.update(ctx, id, func(c *Cart) { c.SwitchLanguage(lang) })
}

func (s *Service) Clear(ctx context.Context, id string) error {
	return s.store.Clear(ctx, id)
}

// Merge moves the lines of cart fromID into cart toID and deletes fromID.
// Lines priced in another currency are dropped. It reports whether anything
// was merged.
func (s *Service) Merge(ctx context.Context, fromID, toID string) (bool, error) {
	from, err := s.Get(ctx, fromID)
	if err != nil {
		return false, err
	}
	if len(from.Lines) == 0 {
		return false, nil
	}
	to, err := s.Get(ctx, toID)
	if err != nil {
		return false, err
	}
	if len(to.Lines) == 0 {
		to.Language = from.Language
	}
	merged := from.Language == to.Language
	if merged {
		to.Merge(from)
		if err := s.save(ctx, to); err != nil {
			return false, err
		}
	}
	if err := s.store.Clear(ctx, fromID); err != nil {
		return merged, err
	}
	return merged, nil
}

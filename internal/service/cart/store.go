package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/logger"
	"storefront/internal/storage"
)

// record is the persisted form of an Entry. Product carries the cached catalog fields so
// the cart can be rendered after a restart without a catalog round trip.
type record struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	Product   *domain.Product `json:"product,omitempty"`
}

// Store persists cart entries as a JSON array under a single key.
type Store struct {
	kv     storage.KV
	key    string
	logger *logger.Logger
}

func NewStore(kv storage.KV, key string, log *logger.Logger) *Store {
	return &Store{
		kv:     kv,
		key:    key,
		logger: logger.OrNop(log).With("component", "cart_store", "key", key),
	}
}

// Load returns the saved entries. Absent, unreadable or corrupt data yields an empty
// cart; individual records that cannot be rendered are dropped.
func (s *Store) Load(ctx context.Context) []Entry {
	raw, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Debug("no saved cart")
		} else {
			s.logger.Warn("cart load failed, starting empty", "error", err)
		}
		return []Entry{}
	}

	entries, dropped, err := decodeEntries(raw)
	if err != nil {
		s.logger.Warn("saved cart unreadable, starting empty", "error", err, "bytes", len(raw))
		return []Entry{}
	}
	if dropped > 0 {
		s.logger.Warn("dropped invalid cart records", "dropped", dropped)
	}
	return entries
}

// Save writes the full entry collection.
func (s *Store) Save(ctx context.Context, entries []Entry) error {
	raw, err := encodeEntries(entries)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		return fmt.Errorf("write cart: %w", err)
	}
	return nil
}

// Wipe deletes the saved cart.
func (s *Store) Wipe(ctx context.Context) error {
	if err := s.kv.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("wipe cart: %w", err)
	}
	return nil
}

func encodeEntries(entries []Entry) ([]byte, error) {
	records := make([]record, 0, len(entries))
	for _, e := range entries {
		p := e.Product
		records = append(records, record{ProductID: p.ID, Quantity: e.Quantity, Product: &p})
	}
	return json.Marshal(records)
}

// decodeEntries parses a saved cart. Records with an empty id, a quantity below 1, a
// missing product payload or a negative price are dropped; repeated ids merge into the
// first occurrence.
func decodeEntries(raw []byte) (entries []Entry, dropped int, err error) {
	var records []record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, 0, err
	}

	entries = make([]Entry, 0, len(records))
	for _, r := range records {
		id := r.ProductID
		if strings.TrimSpace(id) == "" || r.Quantity < 1 || r.Product == nil || r.Product.Price.IsNegative() {
			dropped++
			continue
		}
		if r.Product.ID == "" {
			r.Product.ID = id
		} else if r.Product.ID != id {
			dropped++
			continue
		}
		if i := indexOf(entries, id); i >= 0 {
			entries[i].Quantity += r.Quantity
			continue
		}
		entries = append(entries, Entry{Product: *r.Product, Quantity: r.Quantity})
	}
	return entries, dropped, nil
}

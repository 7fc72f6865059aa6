package cart

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/logger"
)

type persister interface {
	Load(ctx context.Context) []Entry
	Save(ctx context.Context, entries []Entry) error
}

type listener struct {
	id uint64
	fn func(Snapshot)
}

// Manager owns the cart. It is the only writer of both the in-memory entries and the
// persisted copy; every mutation is saved before the call returns.
//
// Operations are serialized, so a mutation together with its save and version bump is
// atomic with respect to other cart operations. Listeners run with no lock held, one
// change at a time and in mutation order; they may read the Manager and must not mutate it.
type Manager struct {
	mu sync.Mutex

	// notifyMu guards delivered; delivery of version v waits until v-1 is delivered.
	notifyMu   sync.Mutex
	notifyCond *sync.Cond
	delivered  uint64

	store  persister
	logger *logger.Logger

	entries             []Entry
	notificationVisible bool
	version             uint64

	listeners    []listener
	nextListener uint64
}

// New rehydrates the cart from store. The notification flag always starts hidden.
func New(ctx context.Context, store persister, log *logger.Logger) *Manager {
	m := &Manager{
		store:  store,
		logger: logger.OrNop(log).With("component", "cart"),
	}
	m.notifyCond = sync.NewCond(&m.notifyMu)
	m.entries = store.Load(ctx)
	if m.entries == nil {
		m.entries = []Entry{}
	}
	m.logger.Info("cart loaded", "entries", len(m.entries), "items", totalItems(m.entries))
	return m
}

// AddToCart increments the entry for product.ID in place, or appends a new entry with
// quantity 1, and shows the "item added" notification.
func (m *Manager) AddToCart(ctx context.Context, product domain.Product) {
	m.mu.Lock()
	if i := indexOf(m.entries, product.ID); i >= 0 {
		m.entries[i].Quantity++
	} else {
		m.entries = append(m.entries, Entry{Product: product, Quantity: 1})
	}
	m.notificationVisible = true
	m.persistLocked(ctx, "add")
	m.publishLocked()
}

// RemoveFromCart deletes the entry for productID. Unknown ids are ignored.
func (m *Manager) RemoveFromCart(ctx context.Context, productID string) {
	m.mu.Lock()
	i := indexOf(m.entries, productID)
	if i < 0 {
		m.mu.Unlock()
		m.logger.Debug("remove of absent product ignored", "product_id", productID)
		return
	}
	m.entries = append(m.entries[:i:i], m.entries[i+1:]...)
	m.persistLocked(ctx, "remove")
	m.publishLocked()
}

// ClearCart removes every entry.
func (m *Manager) ClearCart(ctx context.Context) {
	m.mu.Lock()
	m.entries = []Entry{}
	m.persistLocked(ctx, "clear")
	m.publishLocked()
}

// DismissNotification hides the "item added" notification. The flag is not persisted.
func (m *Manager) DismissNotification() {
	m.mu.Lock()
	if !m.notificationVisible {
		m.mu.Unlock()
		return
	}
	m.notificationVisible = false
	m.publishLocked()
}

// Entries returns a copy of the entries in first-add order.
func (m *Manager) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneEntries(m.entries)
}

func (m *Manager) TotalItems() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return totalItems(m.entries)
}

func (m *Manager) TotalPrice() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return totalPrice(m.entries)
}

func (m *Manager) NotificationVisible() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notificationVisible
}

// Version increases by one on every observable change.
func (m *Manager) Version() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version
}

func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Subscribe registers fn to receive a snapshot after every change. The returned func
// unregisters it and is safe to call more than once.
func (m *Manager) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	m.mu.Lock()
	m.nextListener++
	id := m.nextListener
	m.listeners = append(m.listeners, listener{id: id, fn: fn})
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			for i, l := range m.listeners {
				if l.id == id {
					m.listeners = append(m.listeners[:i:i], m.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

func (m *Manager) snapshotLocked() Snapshot {
	return Snapshot{
		Entries:             cloneEntries(m.entries),
		TotalItems:          totalItems(m.entries),
		TotalPrice:          totalPrice(m.entries),
		NotificationVisible: m.notificationVisible,
		Version:             m.version,
	}
}

// persistLocked saves the entries. A failed save leaves memory authoritative; the next
// successful save writes the full collection again.
func (m *Manager) persistLocked(ctx context.Context, op string) {
	if err := m.store.Save(ctx, m.entries); err != nil {
		m.logger.Error("cart save failed", "op", op, "entries", len(m.entries), "error", err)
	}
}

// publishLocked bumps the version and notifies listeners. It must be called with m.mu
// held and releases it.
func (m *Manager) publishLocked() {
	m.version++
	snap := m.snapshotLocked()
	fns := make([]func(Snapshot), len(m.listeners))
	for i, l := range m.listeners {
		fns[i] = l.fn
	}

	seq := m.version
	m.mu.Unlock()

	m.notifyMu.Lock()
	for m.delivered+1 != seq {
		m.notifyCond.Wait()
	}
	m.notifyMu.Unlock()
	defer func() {
		m.notifyMu.Lock()
		m.delivered = seq
		m.notifyCond.Broadcast()
		m.notifyMu.Unlock()
	}()

	for _, fn := range fns {
		fn(snap)
	}
}

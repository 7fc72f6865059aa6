package cart

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/storage"
)

const testKey = "storefront:cart"

func testProduct(id, price string) domain.Product {
	return domain.Product{ID: id, Name: "Product " + id, Price: decimal.RequireFromString(price)}
}

func newTestManager(t *testing.T) (*Manager, *storage.Memory) {
	t.Helper()
	kv := storage.NewMemory()
	return New(context.Background(), NewStore(kv, testKey, nil), nil), kv
}

// reload simulates a restart over the same storage.
func reload(kv storage.KV) *Manager {
	return New(context.Background(), NewStore(kv, testKey, nil), nil)
}

func assertTotals(t *testing.T, m *Manager, items int, price string) {
	t.Helper()
	if got := m.TotalItems(); got != items {
		t.Fatalf("expected totalItems %d, got %d", items, got)
	}
	if got := m.TotalPrice(); !got.Equal(decimal.RequireFromString(price)) {
		t.Fatalf("expected totalPrice %s, got %s", price, got)
	}
}

func entryIDs(entries []Entry) []string {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.Product.ID)
	}
	return ids
}

func TestManagerScenario(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	p1 := testProduct("p1", "49.99")
	p2 := testProduct("p2", "129.99")

	m.AddToCart(ctx, p1)
	assertTotals(t, m, 1, "49.99")

	m.AddToCart(ctx, p2)
	assertTotals(t, m, 2, "179.98")

	m.AddToCart(ctx, p1)
	assertTotals(t, m, 3, "229.97")
	if n := len(m.Entries()); n != 2 {
		t.Fatalf("expected 2 entries after merge, got %d", n)
	}

	m.RemoveFromCart(ctx, "p1")
	assertTotals(t, m, 1, "129.99")

	m.ClearCart(ctx)
	assertTotals(t, m, 0, "0")
}

func TestManagerAddMergesByID(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	p := testProduct("p1", "10")

	m.AddToCart(ctx, p)
	m.AddToCart(ctx, p)

	entries := m.Entries()
	if len(entries) != 1 || entries[0].Quantity != 2 {
		t.Fatalf("expected single entry with quantity 2, got %+v", entries)
	}
}

func TestManagerMergeIgnoresOtherFields(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	first := testProduct("p1", "10")
	renamed := first
	renamed.Name = "Renamed"
	renamed.Price = decimal.RequireFromString("99")
	other := testProduct("p2", "10")
	other.Name = first.Name

	m.AddToCart(ctx, first)
	m.AddToCart(ctx, renamed)
	m.AddToCart(ctx, other)

	entries := m.Entries()
	if len(entries) != 2 || entries[0].Quantity != 2 || entries[1].Quantity != 1 {
		t.Fatalf("expected merge strictly by id, got %+v", entries)
	}
	if entries[0].Product.Name != first.Name {
		t.Fatalf("merge must not replace the stored product, got %+v", entries[0].Product)
	}
}

func TestManagerOrderPreservedOnMerge(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	m.AddToCart(ctx, testProduct("a", "1"))
	m.AddToCart(ctx, testProduct("b", "2"))
	m.AddToCart(ctx, testProduct("a", "1"))

	ids := entryIDs(m.Entries())
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("expected order [a b], got %v", ids)
	}
}

func TestManagerRemoveUnknownIsNoop(t *testing.T) {
	ctx := context.Background()
	m, kv := newTestManager(t)
	m.AddToCart(ctx, testProduct("p1", "5.50"))
	before := m.Version()
	saved, _ := kv.Get(ctx, testKey)

	m.RemoveFromCart(ctx, "missing")

	assertTotals(t, m, 1, "5.50")
	if m.Version() != before {
		t.Fatalf("expected version unchanged, got %d want %d", m.Version(), before)
	}
	after, _ := kv.Get(ctx, testKey)
	if string(after) != string(saved) {
		t.Fatalf("expected persisted state unchanged")
	}
}

func TestManagerClearIdempotent(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	m.AddToCart(ctx, testProduct("p1", "1"))

	m.ClearCart(ctx)
	assertTotals(t, m, 0, "0")
	m.ClearCart(ctx)
	assertTotals(t, m, 0, "0")
	if len(m.Entries()) != 0 {
		t.Fatalf("expected empty cart")
	}
}

func TestManagerNotificationLifecycle(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	if m.NotificationVisible() {
		t.Fatalf("expected notification hidden initially")
	}

	m.AddToCart(ctx, testProduct("p1", "1"))
	if !m.NotificationVisible() {
		t.Fatalf("expected notification visible after add")
	}

	m.RemoveFromCart(ctx, "p1")
	if !m.NotificationVisible() {
		t.Fatalf("remove must not hide the notification")
	}
	m.ClearCart(ctx)
	if !m.NotificationVisible() {
		t.Fatalf("clear must not hide the notification")
	}

	m.DismissNotification()
	if m.NotificationVisible() {
		t.Fatalf("expected notification hidden after dismiss")
	}

	m.AddToCart(ctx, testProduct("p2", "1"))
	m.DismissNotification()
	m.RemoveFromCart(ctx, "p2")
	if m.NotificationVisible() {
		t.Fatalf("remove must not show the notification")
	}
}

func TestManagerDismissWhenHiddenDoesNotBumpVersion(t *testing.T) {
	m, _ := newTestManager(t)
	m.DismissNotification()
	if m.Version() != 0 {
		t.Fatalf("expected version 0, got %d", m.Version())
	}
}

func TestManagerRoundTripPersistence(t *testing.T) {
	ctx := context.Background()
	m, kv := newTestManager(t)
	desc := "Leather"
	p1 := testProduct("p1", "49.99")
	p1.Description = &desc
	p2 := testProduct("p2", "129.99")

	m.AddToCart(ctx, p1)
	m.AddToCart(ctx, p2)
	m.AddToCart(ctx, p1)

	reloaded := reload(kv)
	got := reloaded.Entries()
	if len(got) != 2 || got[0].Product.ID != "p1" || got[0].Quantity != 2 || got[1].Product.ID != "p2" || got[1].Quantity != 1 {
		t.Fatalf("unexpected entries after reload %+v", got)
	}
	if got[0].Product.Description == nil || *got[0].Product.Description != desc {
		t.Fatalf("expected cached product fields to survive reload, got %+v", got[0].Product)
	}
	assertTotals(t, reloaded, 3, "229.97")
}

func TestManagerEveryMutationIsDurable(t *testing.T) {
	ctx := context.Background()
	m, kv := newTestManager(t)

	m.AddToCart(ctx, testProduct("p1", "2"))
	assertTotals(t, reload(kv), 1, "2")

	m.AddToCart(ctx, testProduct("p2", "3"))
	assertTotals(t, reload(kv), 2, "5")

	m.RemoveFromCart(ctx, "p1")
	assertTotals(t, reload(kv), 1, "3")

	m.ClearCart(ctx)
	assertTotals(t, reload(kv), 0, "0")
}

func TestManagerNotificationResetOnReload(t *testing.T) {
	ctx := context.Background()
	m, kv := newTestManager(t)
	m.AddToCart(ctx, testProduct("p1", "1"))

	if reload(kv).NotificationVisible() {
		t.Fatalf("expected notification hidden after reload")
	}
}

type failingKV struct {
	storage.KV
	setErr error
	sets   int
}

func (f *failingKV) Set(ctx context.Context, key string, value []byte) error {
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	return f.KV.Set(ctx, key, value)
}

func TestManagerSaveFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	kv := &failingKV{KV: storage.NewMemory(), setErr: errors.New("disk full")}
	m := New(ctx, NewStore(kv, testKey, nil), nil)

	m.AddToCart(ctx, testProduct("p1", "10"))
	m.AddToCart(ctx, testProduct("p1", "10"))
	assertTotals(t, m, 2, "20")
	if kv.sets != 2 {
		t.Fatalf("expected a save attempt per mutation, got %d", kv.sets)
	}

	kv.setErr = nil
	m.AddToCart(ctx, testProduct("p2", "1"))
	assertTotals(t, reload(kv), 3, "21")
}

func TestManagerSubscribe(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	var got []Snapshot
	unsubscribe := m.Subscribe(func(s Snapshot) {
		// listeners may read the manager
		if m.Version() < s.Version {
			t.Errorf("listener saw version %d ahead of manager %d", s.Version, m.Version())
		}
		got = append(got, s)
	})

	m.AddToCart(ctx, testProduct("p1", "1.25"))
	m.AddToCart(ctx, testProduct("p1", "1.25"))
	m.RemoveFromCart(ctx, "absent")
	m.DismissNotification()
	unsubscribe()
	unsubscribe()
	m.ClearCart(ctx)

	if len(got) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(got))
	}
	for i, s := range got {
		if s.Version != uint64(i+1) {
			t.Fatalf("expected version %d, got %d", i+1, s.Version)
		}
	}
	if got[1].TotalItems != 2 || !got[1].TotalPrice.Equal(decimal.RequireFromString("2.5")) || !got[1].NotificationVisible {
		t.Fatalf("unexpected snapshot %+v", got[1])
	}
	if got[2].NotificationVisible {
		t.Fatalf("expected dismissed snapshot")
	}
}

func TestManagerEntriesReturnsCopy(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	m.AddToCart(ctx, testProduct("p1", "1"))

	entries := m.Entries()
	entries[0].Quantity = 99
	snap := m.Snapshot()
	snap.Entries[0].Quantity = 42

	if m.Entries()[0].Quantity != 1 {
		t.Fatalf("caller mutated manager state")
	}
}

func TestManagerConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	m, kv := newTestManager(t)
	p := testProduct("p1", "0.10")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.AddToCart(ctx, p)
		}()
	}
	wg.Wait()

	assertTotals(t, m, 50, "5")
	if m.Version() != 50 {
		t.Fatalf("expected version 50, got %d", m.Version())
	}
	assertTotals(t, reload(kv), 50, "5")
}

func TestManagerListenerReadingDuringConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	p := testProduct("p1", "1")

	var (
		last     uint64
		outOfSeq int
		calls    int
	)
	m.Subscribe(func(s Snapshot) {
		_ = m.TotalItems()
		_ = m.Snapshot()
		if s.Version != last+1 {
			outOfSeq++
		}
		last = s.Version
		calls++
	})

	const workers, perWorker = 16, 500
	done := make(chan struct{})
	go func() {
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < perWorker; j++ {
					m.AddToCart(ctx, p)
				}
			}()
		}
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatalf("concurrent adds with a reading listener did not complete")
	}

	if calls != workers*perWorker || outOfSeq != 0 {
		t.Fatalf("expected %d ordered deliveries, got %d (%d out of sequence)", workers*perWorker, calls, outOfSeq)
	}
	assertTotals(t, m, workers*perWorker, "8000")
}

func TestManagerTotalsNeverNegative(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	rng := rand.New(rand.NewSource(7))
	ids := []string{"a", "b", "c", "d"}
	prices := []string{"0", "0.01", "19.99", "149.99"}

	for i := 0; i < 500; i++ {
		id := ids[rng.Intn(len(ids))]
		switch rng.Intn(5) {
		case 0, 1, 2:
			m.AddToCart(ctx, testProduct(id, prices[rng.Intn(len(prices))]))
		case 3:
			m.RemoveFromCart(ctx, id)
		default:
			before := m.Snapshot()
			m.RemoveFromCart(ctx, "unknown-"+id)
			after := m.Snapshot()
			if before.TotalItems != after.TotalItems || !before.TotalPrice.Equal(after.TotalPrice) {
				t.Fatalf("removing an unknown id changed totals")
			}
		}
		snap := m.Snapshot()
		if snap.TotalItems < 0 || snap.TotalPrice.IsNegative() {
			t.Fatalf("negative totals %+v", snap)
		}
		seen := map[string]bool{}
		for _, e := range snap.Entries {
			if seen[e.Product.ID] || e.Quantity < 1 {
				t.Fatalf("invariant broken: %+v", snap.Entries)
			}
			seen[e.Product.ID] = true
		}
	}
}

package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"event-catalog-cli/model"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return OpenAt(t.TempDir())
}

func TestCart_RoundTrip(t *testing.T) {
	s := testStore(t)

	if cart := s.Cart(); len(cart) != 0 {
		t.Fatalf("expected empty cart on fresh store, got %+v", cart)
	}

	cart := []model.CartLine{{EventId: "a", Qty: 2}, {EventId: "b", Qty: 1}}
	if err := s.SaveCart(cart); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	loaded := s.Cart()
	if len(loaded) != 2 || loaded[0].EventId != "a" || loaded[0].Qty != 2 {
		t.Fatalf("unexpected cart: %+v", loaded)
	}
}

func TestCorruptPayloadDegradesToEmpty(t *testing.T) {
	dir := t.TempDir()
	s := OpenAt(dir)

	for _, key := range []string{"cart", "favEvents", "orders", "view"} {
		if err := os.WriteFile(filepath.Join(dir, key+".json"), []byte("{not json"), 0o644); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
	}

	if cart := s.Cart(); len(cart) != 0 {
		t.Fatalf("expected empty cart, got %+v", cart)
	}
	if fav := s.Favorites(); len(fav) != 0 {
		t.Fatalf("expected empty favorites, got %+v", fav)
	}
	if orders := s.Orders(); len(orders) != 0 {
		t.Fatalf("expected empty order log, got %+v", orders)
	}
	if mode := s.ViewMode(); mode != model.ViewGrid {
		t.Fatalf("expected grid default, got %q", mode)
	}
}

func TestToggleFavorite(t *testing.T) {
	s := testStore(t)

	on, err := s.ToggleFavorite("ev-1")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !on {
		t.Fatal("expected ev-1 to become a favorite")
	}

	if !s.Favorites()["ev-1"] {
		t.Fatal("expected ev-1 persisted as favorite")
	}

	on, err = s.ToggleFavorite("ev-1")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if on {
		t.Fatal("expected ev-1 removed from favorites")
	}
	if s.Favorites()["ev-1"] {
		t.Fatal("expected ev-1 gone after second toggle")
	}
}

func TestAppendOrder_IsAppendOnly(t *testing.T) {
	s := testStore(t)

	first := model.OrderRecord{Code: "EVT-1-1", Total: decimal.NewFromInt(100), Date: time.Now().UTC()}
	second := model.OrderRecord{Code: "EVT-2-2", Total: decimal.NewFromInt(50), Date: time.Now().UTC()}

	if err := s.AppendOrder(first); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if err := s.AppendOrder(second); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	orders := s.Orders()
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if orders[0].Code != "EVT-1-1" || orders[1].Code != "EVT-2-2" {
		t.Fatalf("order log out of order: %+v", orders)
	}
	if !orders[0].Total.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected total 100, got %s", orders[0].Total)
	}
}

func TestViewMode_RoundTripAndDefault(t *testing.T) {
	s := testStore(t)

	if mode := s.ViewMode(); mode != model.ViewGrid {
		t.Fatalf("expected grid default, got %q", mode)
	}

	if err := s.SaveViewMode(model.ViewList); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if mode := s.ViewMode(); mode != model.ViewList {
		t.Fatalf("expected list, got %q", mode)
	}
}

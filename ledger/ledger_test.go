package ledger

import (
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"event-catalog-cli/model"
)

func price(v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return d
}

func catalog() []model.EventRecord {
	return []model.EventRecord{
		{Id: "a", Title: "Jazz Night", City: "Lima", PriceFrom: price("50"), Stock: 2},
		{Id: "b", Title: "Rock Fest", City: "Bogota", PriceFrom: price("35.50"), Stock: 10},
	}
}

func TestAddItem_RejectsInvalidQuantity(t *testing.T) {
	cart := []model.CartLine{{EventId: "a", Qty: 1}}

	for _, qty := range []int{0, -3} {
		next, err := AddItem(cart, "a", qty, 2)
		if err != ErrInvalidQuantity {
			t.Fatalf("qty %d: expected ErrInvalidQuantity, got %v", qty, err)
		}
		if len(next) != 1 || next[0].Qty != 1 {
			t.Fatalf("qty %d: cart mutated: %+v", qty, next)
		}
	}
}

func TestAddItem_RejectsInsufficientStock(t *testing.T) {
	next, err := AddItem(nil, "a", 3, 2)
	if err != ErrInsufficientStock {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if len(next) != 0 {
		t.Fatalf("cart mutated: %+v", next)
	}
}

func TestAddItem_AppendsNewLine(t *testing.T) {
	next, err := AddItem(nil, "a", 2, 2)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(next) != 1 || next[0].EventId != "a" || next[0].Qty != 2 {
		t.Fatalf("unexpected cart: %+v", next)
	}
}

func TestAddItem_MergesAndCapsAtStock(t *testing.T) {
	cart := []model.CartLine{{EventId: "a", Qty: 1}}

	next, err := AddItem(cart, "a", 2, 2)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(next) != 1 {
		t.Fatalf("expected a single merged line, got %+v", next)
	}
	if next[0].Qty != 2 {
		t.Fatalf("expected merged qty capped at 2, got %d", next[0].Qty)
	}
	if cart[0].Qty != 1 {
		t.Fatalf("input cart mutated: %+v", cart)
	}
}

func TestAddItem_NeverExceedsStockLimit(t *testing.T) {
	var cart []model.CartLine
	var err error
	for i := 0; i < 5; i++ {
		cart, err = AddItem(cart, "b", 4, 10)
		if err != nil {
			t.Fatalf("add %d: expected nil error, got %v", i, err)
		}
	}
	if cart[0].Qty != 10 {
		t.Fatalf("expected qty capped at 10, got %d", cart[0].Qty)
	}
}

func TestRemoveItem(t *testing.T) {
	cart := []model.CartLine{{EventId: "a", Qty: 1}, {EventId: "b", Qty: 2}}

	next := RemoveItem(cart, "a")
	if len(next) != 1 || next[0].EventId != "b" {
		t.Fatalf("unexpected cart: %+v", next)
	}

	// absent id is a no-op
	next = RemoveItem(next, "zzz")
	if len(next) != 1 {
		t.Fatalf("remove of absent line changed the cart: %+v", next)
	}
}

func TestComputeTotal(t *testing.T) {
	cart := []model.CartLine{
		{EventId: "a", Qty: 2},
		{EventId: "b", Qty: 1},
	}
	total := ComputeTotal(cart, catalog())
	if !total.Equal(price("135.50")) {
		t.Fatalf("expected total 135.50, got %s", total)
	}
}

func TestComputeTotal_IgnoresDanglingLines(t *testing.T) {
	cart := []model.CartLine{
		{EventId: "a", Qty: 2},
		{EventId: "gone", Qty: 7},
	}
	total := ComputeTotal(cart, catalog())
	if !total.Equal(price("100")) {
		t.Fatalf("expected dangling line to contribute zero, got %s", total)
	}

	items := Resolve(cart, catalog())
	if len(items) != 1 || items[0].Event.Id != "a" {
		t.Fatalf("expected dangling line excluded from breakdown, got %+v", items)
	}
}

func TestCheckout_ClearsCartAndRecordsTotal(t *testing.T) {
	cart, err := AddItem(nil, "a", 2, 2)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	order, emptied := Checkout(cart, catalog(), now)

	if len(emptied) != 0 {
		t.Fatalf("expected empty cart after checkout, got %+v", emptied)
	}
	if !order.Total.Equal(price("100")) {
		t.Fatalf("expected order total 100, got %s", order.Total)
	}
	if !order.Date.Equal(now) {
		t.Fatalf("expected order date %s, got %s", now, order.Date)
	}
}

func TestConfirmationCodeFormat(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	pattern := regexp.MustCompile(fmt.Sprintf(`^EVT-%d-\d{1,3}$`, now.UnixMilli()))
	for i := 0; i < 20; i++ {
		code := ConfirmationCode(now)
		if !pattern.MatchString(code) {
			t.Fatalf("unexpected code %q", code)
		}
	}
}

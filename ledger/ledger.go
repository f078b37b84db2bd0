// Package ledger is the cart and order bookkeeping: line items, totals,
// checkout and confirmation codes. It never touches storage; callers persist
// the slices it returns.
package ledger

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"

	"event-catalog-cli/model"
)

var (
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrInsufficientStock = errors.New("not enough tickets available")
)

// AddItem returns a new cart with qty tickets of eventId added. A request
// for less than one ticket or for more than stockLimit is rejected without
// mutating anything. Adding to an existing line caps the merged quantity at
// stockLimit silently.
func AddItem(cart []model.CartLine, eventId string, qty int, stockLimit int) ([]model.CartLine, error) {
	if qty < 1 {
		return cart, ErrInvalidQuantity
	}
	if qty > stockLimit {
		return cart, ErrInsufficientStock
	}
	next := append([]model.CartLine{}, cart...)
	for i, line := range next {
		if line.EventId == eventId {
			next[i].Qty = min(line.Qty+qty, stockLimit)
			return next, nil
		}
	}
	return append(next, model.CartLine{EventId: eventId, Qty: qty}), nil
}

// RemoveItem returns the cart without eventId's line. Removing an absent line
// is a no-op, not an error.
func RemoveItem(cart []model.CartLine, eventId string) []model.CartLine {
	next := make([]model.CartLine, 0, len(cart))
	for _, line := range cart {
		if line.EventId != eventId {
			next = append(next, line)
		}
	}
	return next
}

// LineItem is a cart line resolved against the catalog for rendering.
type LineItem struct {
	Event    model.EventRecord
	Qty      int
	Subtotal decimal.Decimal
}

// Resolve joins cart lines with their events and computes subtotals. Lines
// whose event no longer exists in the catalog are dropped.
func Resolve(cart []model.CartLine, events []model.EventRecord) []LineItem {
	items := make([]LineItem, 0, len(cart))
	for _, line := range cart {
		ev, ok := findEvent(events, line.EventId)
		if !ok {
			continue
		}
		items = append(items, LineItem{
			Event:    ev,
			Qty:      line.Qty,
			Subtotal: ev.PriceFrom.Mul(decimal.NewFromInt(int64(line.Qty))),
		})
	}
	return items
}

// ComputeTotal sums qty times priceFrom over the resolvable lines. Dangling
// lines contribute zero.
func ComputeTotal(cart []model.CartLine, events []model.EventRecord) decimal.Decimal {
	total := decimal.Zero
	for _, item := range Resolve(cart, events) {
		total = total.Add(item.Subtotal)
	}
	return total
}

// Checkout confirms the purchase: it stamps a confirmation code, totals the
// cart and returns the order next to the emptied cart. The caller appends
// the order to the log and persists the empty cart.
func Checkout(cart []model.CartLine, events []model.EventRecord, now time.Time) (model.OrderRecord, []model.CartLine) {
	order := model.OrderRecord{
		Code:  ConfirmationCode(now),
		Total: ComputeTotal(cart, events),
		Date:  now.UTC(),
	}
	return order, []model.CartLine{}
}

// ConfirmationCode formats EVT-<epochMillis>-<0..999>. Uniqueness is
// best-effort via the millisecond timestamp, not a guarantee.
func ConfirmationCode(now time.Time) string {
	return fmt.Sprintf("EVT-%d-%d", now.UnixMilli(), rand.IntN(1000))
}

func findEvent(events []model.EventRecord, id string) (model.EventRecord, bool) {
	for _, ev := range events {
		if ev.Id == id {
			return ev, true
		}
	}
	return model.EventRecord{}, false
}

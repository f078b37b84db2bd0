package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine references an event by id. The reference is weak: the event may
// have left the catalog, in which case the line is ignored by totals and
// rendering rather than treated as an error.
type CartLine struct {
	EventId string `json:"id"`
	Qty     int    `json:"qty"`
}

// OrderRecord is one confirmed purchase in the append-only order log.
type OrderRecord struct {
	Code  string          `json:"code"`
	Total decimal.Decimal `json:"total"`
	Date  time.Time       `json:"date"`
}

// Buyer holds the checkout form fields. Collected locally, never sent
// anywhere.
type Buyer struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Document string `json:"document"`
}

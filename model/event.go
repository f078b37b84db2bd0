package model

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EventRecord is one entry of the catalog data file. Records are loaded once
// at startup and never mutated.
type EventRecord struct {
	Id          string          `json:"id"`
	Title       string          `json:"title"`
	City        string          `json:"city"`
	Venue       string          `json:"venue"`
	Datetime    time.Time       `json:"datetime"`
	Artists     []string        `json:"artists"`
	Images      []string        `json:"images"`
	PriceFrom   decimal.Decimal `json:"priceFrom"`
	Currency    string          `json:"currency"`
	Stock       int             `json:"stock"`
	SoldOut     bool            `json:"soldOut"`
	Description string          `json:"description"`
	Policies    *Policies       `json:"policies,omitempty"`
	Categories  []string        `json:"categories,omitempty"`
	Category    string          `json:"category,omitempty"`
	Map         *MapInfo        `json:"map,omitempty"`
}

type Policies struct {
	Age    string `json:"age"`
	Refund string `json:"refund"`
}

// MapInfo locates the venue: a ready embed URL, coordinates, or an address.
type MapInfo struct {
	Embed   string  `json:"embed,omitempty"`
	Address string  `json:"address,omitempty"`
	Lat     float64 `json:"lat,omitempty"`
	Lng     float64 `json:"lng,omitempty"`
}

// CategoryList returns the event's categories. Legacy records carry a single
// delimited string instead of a list; it is split on , ; or |.
func (e EventRecord) CategoryList() []string {
	if len(e.Categories) > 0 {
		return e.Categories
	}
	if strings.TrimSpace(e.Category) == "" {
		return nil
	}
	var categories []string
	for _, part := range strings.FieldsFunc(e.Category, func(r rune) bool {
		return r == ',' || r == ';' || r == '|'
	}) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			categories = append(categories, trimmed)
		}
	}
	return categories
}

// Free reports whether the event has no entry price.
func (e EventRecord) Free() bool {
	return !e.PriceFrom.IsPositive()
}

// URL resolves the map to an openable maps URL: the embed URL wins, then a
// lat/lng query, then an address query. Empty when nothing is set.
func (m *MapInfo) URL() string {
	if m == nil {
		return ""
	}
	if m.Embed != "" {
		return m.Embed
	}
	if m.Lat != 0 || m.Lng != 0 {
		return fmt.Sprintf("https://www.google.com/maps?q=%v,%v", m.Lat, m.Lng)
	}
	if strings.TrimSpace(m.Address) != "" {
		return "https://www.google.com/maps?q=" + url.QueryEscape(m.Address)
	}
	return ""
}

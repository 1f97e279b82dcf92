package models

import (
	"strings"
	"time"
)

// Modifier is a modifier kept attached to its parent item. Integrated
// modifiers contribute to the item's display name and attributes;
// non-integrated ones are informational only.
type Modifier struct {
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Integrated bool    `json:"integrated"`
}

// Item is a fully classified line item on an order.
type Item struct {
	Name             string     `json:"name"`
	FullName         string     `json:"fullName"`
	Size             string     `json:"size"`
	Quantity         int        `json:"quantity"`
	Price            float64    `json:"price"`
	Category         string     `json:"category"`
	SubCategory      string     `json:"subCategory,omitempty"`
	ProteinType      string     `json:"proteinType,omitempty"`
	Sauce            string     `json:"sauce,omitempty"`
	IsRiceBowl       bool       `json:"isRiceBowl"`
	IsUrbanBowl      bool       `json:"isUrbanBowl"`
	RiceSubstitution string     `json:"riceSubstitution,omitempty"`
	Modifiers        []Modifier `json:"modifiers,omitempty"`
}

// Order is the canonical consolidated view of one upstream order.
type Order struct {
	ID             string    `json:"id"`
	OrderNumber    string    `json:"orderNumber"`
	CustomerName   string    `json:"customerName"`
	OrderedAt      time.Time `json:"orderedAt"`
	ElapsedMinutes int       `json:"elapsedMinutes"`
	Items          []Item    `json:"items"`
	Completed      bool      `json:"completed"`
	CompletedAt    time.Time `json:"completedAt,omitempty"`
	IsNew          bool      `json:"isNew"`
	AddedAt        time.Time `json:"addedAt,omitempty"`
}

// OrderID builds the identity used everywhere an order is tracked:
// order number joined with customer name. Order numbers repeat across
// platforms, so the number alone is not unique.
func OrderID(orderNumber, customerName string) string {
	return strings.TrimSpace(orderNumber) + "_" + strings.TrimSpace(customerName)
}

// SetElapsed records the wait time observed at extraction and back-dates
// OrderedAt so the wait keeps advancing between extractions.
func (o *Order) SetElapsed(now time.Time, minutes int) {
	if minutes < 0 {
		minutes = 0
	}
	o.ElapsedMinutes = minutes
	o.OrderedAt = now.Add(-time.Duration(minutes) * time.Minute)
}

// Elapsed returns the current wait time in whole minutes. It prefers the
// back-dated OrderedAt timestamp and falls back to the last observed
// value when no timestamp was ever recorded.
func (o *Order) Elapsed(now time.Time) int {
	if o.OrderedAt.IsZero() {
		return o.ElapsedMinutes
	}
	m := int(now.Sub(o.OrderedAt) / time.Minute)
	if m < 0 {
		return 0
	}
	return m
}

// ItemCount returns the total quantity across all line items.
func (o *Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

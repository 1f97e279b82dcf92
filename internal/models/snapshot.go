package models

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
)

// SnapshotModifier is one modifier row as reported by the snapshot
// source, before classification.
type SnapshotModifier struct {
	Name         string  `mapstructure:"name" json:"name"`
	Price        float64 `mapstructure:"price" json:"price"`
	Quantity     int     `mapstructure:"quantity" json:"quantity"`
	SectionLabel string  `mapstructure:"sectionLabel" json:"sectionLabel"`
}

// SnapshotItem is one raw line item from the snapshot source.
type SnapshotItem struct {
	Name      string             `mapstructure:"name" json:"name"`
	Quantity  int                `mapstructure:"quantity" json:"quantity"`
	Price     float64            `mapstructure:"price" json:"price"`
	Size      string             `mapstructure:"size" json:"size"`
	Modifiers []SnapshotModifier `mapstructure:"modifiers" json:"modifiers"`
}

// OrderSnapshot is the raw per-order record produced by a snapshot
// source in one extraction pass. Items may be empty; PreviewText then
// carries whatever summary line the source could still read.
type OrderSnapshot struct {
	OrderNumber    string         `mapstructure:"orderNumber" json:"orderNumber"`
	CustomerName   string         `mapstructure:"customerName" json:"customerName"`
	ElapsedMinutes int            `mapstructure:"elapsedMinutes" json:"elapsedMinutes"`
	ElapsedText    string         `mapstructure:"elapsedText" json:"elapsedText,omitempty"`
	PreviewText    string         `mapstructure:"previewText" json:"previewText,omitempty"`
	Items          []SnapshotItem `mapstructure:"items" json:"items"`
}

// CachedItem is a line item recorded from upstream order traffic. Sizes
// and modifier detail here are authoritative when present.
type CachedItem struct {
	Name             string     `mapstructure:"name" json:"name"`
	Quantity         int        `mapstructure:"quantity" json:"quantity"`
	Price            float64    `mapstructure:"price" json:"price"`
	Size             string     `mapstructure:"size" json:"size"`
	RiceSubstitution string     `mapstructure:"riceSubstitution" json:"riceSubstitution,omitempty"`
	Modifiers        []Modifier `mapstructure:"modifiers" json:"modifiers,omitempty"`
}

// CachedOrder is one order captured from upstream traffic and held for
// fuzzy matching against live snapshots.
type CachedOrder struct {
	UpstreamID   string       `mapstructure:"upstreamId" json:"upstreamId"`
	OrderNumber  string       `mapstructure:"orderNumber" json:"orderNumber"`
	CustomerName string       `mapstructure:"customerName" json:"customerName"`
	Items        []CachedItem `mapstructure:"items" json:"items"`
	CachedAt     time.Time    `mapstructure:"cachedAt" json:"cachedAt"`
}

// ItemCount returns the total quantity across the cached line items.
func (c *CachedOrder) ItemCount() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// DecodeSnapshots converts a loosely typed payload (as produced by a
// JSON source or an upstream capture) into typed snapshot records.
// Numeric fields arrive as floats or strings depending on the source,
// so decoding is weakly typed on purpose.
func DecodeSnapshots(raw interface{}) ([]OrderSnapshot, error) {
	var snaps []OrderSnapshot
	if err := weakDecode(raw, &snaps); err != nil {
		return nil, fmt.Errorf("decoding order snapshots: %w", err)
	}
	return snaps, nil
}

// DecodeCachedOrder converts one captured upstream payload into a
// CachedOrder.
func DecodeCachedOrder(raw interface{}) (*CachedOrder, error) {
	var ord CachedOrder
	if err := weakDecode(raw, &ord); err != nil {
		return nil, fmt.Errorf("decoding cached order: %w", err)
	}
	return &ord, nil
}

func weakDecode(input, output interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           output,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeHookFunc(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

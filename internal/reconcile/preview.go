package reconcile

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	hourPattern   = regexp.MustCompile(`(\d+)\s*h`)
	minutePattern = regexp.MustCompile(`(\d+)\s*m`)
	qtyPrefix     = regexp.MustCompile(`^(\d+)\s*[x×]\s*`)
)

// ParseElapsed converts a wait-time label such as "19m", "1h 5m" or
// "1h" into whole minutes. Status-only labels ("Ready", "Printed")
// carry no digits and parse to zero.
func ParseElapsed(text string) int {
	lower := strings.ToLower(strings.TrimSpace(text))
	total := 0
	if m := hourPattern.FindStringSubmatch(lower); m != nil {
		h, _ := strconv.Atoi(m[1])
		total += h * 60
	}
	if m := minutePattern.FindStringSubmatch(lower); m != nil {
		mins, _ := strconv.Atoi(m[1])
		total += mins
	}
	return total
}

// PreviewItem is one entry parsed from a collapsed order's summary line.
type PreviewItem struct {
	Name     string
	Quantity int
}

// ParsePreviewItems splits a summary line like
// "2× Crispy Chicken Bao • Small Rice Bowl" into its entries. Bullet
// separators are preferred; comma separation is the fallback for
// sources that join with commas instead.
func ParsePreviewItems(text string) []PreviewItem {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	parts := strings.Split(text, "•")
	if len(parts) == 1 {
		parts = strings.Split(text, ",")
	}

	var items []PreviewItem
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		qty := 1
		if m := qtyPrefix.FindStringSubmatch(part); m != nil {
			qty, _ = strconv.Atoi(m[1])
			if qty <= 0 {
				qty = 1
			}
			part = strings.TrimSpace(part[len(m[0]):])
		}
		if part == "" {
			continue
		}
		items = append(items, PreviewItem{Name: part, Quantity: qty})
	}
	return items
}

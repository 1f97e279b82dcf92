package reconcile

import (
	"strings"

	"github.com/baohaus/expeditor/internal/models"
)

// NormalizeOrderNumber strips whitespace and a leading '#' so numbers
// compare equal regardless of which surface they were read from.
func NormalizeOrderNumber(n string) string {
	return strings.TrimPrefix(strings.TrimSpace(n), "#")
}

// FindMatch picks the cached order for a live order. Three rules are
// tried in fixed priority order and the first hit wins:
//
//  1. exact order number, '#' prefix ignored
//  2. same customer name and same total item count
//  3. customer name similarity alone
//
// Candidates are scanned in the order given, so with equally good
// matches the earliest-cached candidate wins deterministically.
func FindMatch(orderNumber, customerName string, itemCount int, candidates []*models.CachedOrder) *models.CachedOrder {
	number := NormalizeOrderNumber(orderNumber)
	if number != "" {
		for _, c := range candidates {
			if NormalizeOrderNumber(c.OrderNumber) == number {
				return c
			}
		}
	}

	name := strings.TrimSpace(customerName)
	if name != "" && itemCount > 0 {
		for _, c := range candidates {
			if strings.EqualFold(strings.TrimSpace(c.CustomerName), name) && c.ItemCount() == itemCount {
				return c
			}
		}
	}

	if name != "" {
		for _, c := range candidates {
			if SimilarNames(name, c.CustomerName) {
				return c
			}
		}
	}
	return nil
}

// SimilarNames reports whether two customer names plausibly refer to
// the same person: one contains the other, or their first tokens match
// and are long enough not to be initials.
func SimilarNames(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	af := strings.Fields(a)
	bf := strings.Fields(b)
	if len(af) > 0 && len(bf) > 0 {
		if len(af[0]) > 2 && len(bf[0]) > 2 && af[0] == bf[0] {
			return true
		}
	}
	return false
}

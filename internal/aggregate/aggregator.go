package aggregate

import (
	"sort"

	"github.com/baohaus/expeditor/internal/models"
)

// categoryRank fixes the display order of categories in aggregated
// views. Unknown categories sort last.
var categoryRank = map[string]int{
	"riceBowls":  0,
	"urbanBowls": 1,
	"bao":        2,
	"meals":      3,
	"appetizers": 4,
	"dumplings":  5,
	"desserts":   6,
	"drinks":     7,
	"sides":      8,
	"other":      9,
}

// Result is one deterministic aggregation pass over a set of orders.
type Result struct {
	Groups []models.ItemGroup
	byKey  map[string]int
}

// Rebuild aggregates every item across the given orders into canonical
// groups. It is a pure function of its input: the same orders always
// produce the same groups in the same sort order, so repeated rebuilds
// of unchanged state are byte-identical.
func Rebuild(orders []*models.Order) *Result {
	res := &Result{byKey: make(map[string]int)}
	for _, order := range orders {
		for _, item := range order.Items {
			key := ItemKey(item)
			idx, ok := res.byKey[key]
			if !ok {
				res.Groups = append(res.Groups, models.ItemGroup{
					Key:              key,
					Name:             item.Name,
					FullName:         item.FullName,
					Size:             item.Size,
					Category:         item.Category,
					SubCategory:      item.SubCategory,
					ProteinType:      item.ProteinType,
					Sauce:            item.Sauce,
					RiceSubstitution: item.RiceSubstitution,
				})
				idx = len(res.Groups) - 1
				res.byKey[key] = idx
			}
			g := &res.Groups[idx]
			g.TotalQuantity += item.Quantity
			g.BatchQuantity += item.Quantity
			g.Contributors = append(g.Contributors, models.Contribution{
				OrderID:      order.ID,
				OrderNumber:  order.OrderNumber,
				CustomerName: order.CustomerName,
				Quantity:     item.Quantity,
			})
		}
	}

	sort.SliceStable(res.Groups, func(i, j int) bool {
		a, b := res.Groups[i], res.Groups[j]
		ra, rb := rank(a.Category), rank(b.Category)
		if ra != rb {
			return ra < rb
		}
		if a.TotalQuantity != b.TotalQuantity {
			return a.TotalQuantity > b.TotalQuantity
		}
		return a.Key < b.Key
	})
	for i, g := range res.Groups {
		res.byKey[g.Key] = i
	}
	return res
}

func rank(category string) int {
	if r, ok := categoryRank[category]; ok {
		return r
	}
	return len(categoryRank)
}

// Get returns the group for a canonical key.
func (r *Result) Get(key string) (models.ItemGroup, bool) {
	idx, ok := r.byKey[key]
	if !ok {
		return models.ItemGroup{}, false
	}
	return r.Groups[idx], true
}

// ByCategory groups the result for category-first display, preserving
// the result's internal order inside each category.
func (r *Result) ByCategory() map[string][]models.ItemGroup {
	out := make(map[string][]models.ItemGroup)
	for _, g := range r.Groups {
		out[g.Category] = append(out[g.Category], g)
	}
	return out
}

// BySize groups the result by size, preserving the result's internal
// order inside each size bucket.
func (r *Result) BySize() map[string][]models.ItemGroup {
	out := make(map[string][]models.ItemGroup)
	for _, g := range r.Groups {
		out[g.Size] = append(out[g.Size], g)
	}
	return out
}

// TotalItems sums quantities across all groups.
func (r *Result) TotalItems() int {
	n := 0
	for _, g := range r.Groups {
		n += g.TotalQuantity
	}
	return n
}

package reconcile

import (
	"errors"
	"strings"
	"time"

	"github.com/baohaus/expeditor/internal/classify"
	"github.com/baohaus/expeditor/internal/models"
)

// ErrUnidentifiedOrder means a snapshot carried neither an order number
// nor a customer name, so there is nothing to track the order by.
var ErrUnidentifiedOrder = errors.New("reconcile: order has no number and no customer name")

// riceBaselineSize is the size a rice bowl carries when neither the
// snapshot nor the cache names one. A rice bowl always has a rice base.
var riceBaselineSize = strings.ToLower(models.DefaultRiceSubstitution)

// Reconciler merges one order's snapshot with its cached upstream
// record into a canonical Order. Detail precedence per item is fixed:
// expanded snapshot items first, cached upstream items next, the
// collapsed preview line last.
type Reconciler struct {
	taxonomy *classify.Taxonomy
}

func New(taxonomy *classify.Taxonomy) *Reconciler {
	return &Reconciler{taxonomy: taxonomy}
}

// Reconcile builds the canonical order for one snapshot. cached may be
// nil when no upstream record matched.
func (r *Reconciler) Reconcile(snap models.OrderSnapshot, cached *models.CachedOrder, now time.Time) (models.Order, error) {
	number := NormalizeOrderNumber(snap.OrderNumber)
	name := strings.TrimSpace(snap.CustomerName)
	if number == "" && name == "" {
		return models.Order{}, ErrUnidentifiedOrder
	}

	order := models.Order{
		ID:           models.OrderID(number, name),
		OrderNumber:  number,
		CustomerName: name,
	}

	minutes := snap.ElapsedMinutes
	if minutes == 0 && snap.ElapsedText != "" {
		minutes = ParseElapsed(snap.ElapsedText)
	}
	order.SetElapsed(now, minutes)

	switch {
	case len(snap.Items) > 0:
		for _, si := range snap.Items {
			order.Items = append(order.Items, r.buildItems(si, cached)...)
		}
	case cached != nil && len(cached.Items) > 0:
		for _, ci := range cached.Items {
			order.Items = append(order.Items, r.buildItems(cachedToSnapshot(ci), nil)...)
		}
	default:
		order.Items = r.itemsFromPreview(snap.PreviewText)
	}

	return order, nil
}

// buildItems classifies one raw line item and its modifiers, producing
// the item itself plus any modifiers promoted to standalone items.
func (r *Reconciler) buildItems(si models.SnapshotItem, cached *models.CachedOrder) []models.Item {
	name := strings.TrimSpace(si.Name)
	if name == "" {
		name = "Unknown Item"
	}
	qty := si.Quantity
	if qty <= 0 {
		qty = 1
	}

	var (
		integrated      []models.Modifier
		integratedNames []string
		sizeModNames    []string
		extras          []models.Item
	)
	for _, m := range si.Modifiers {
		switch classify.Classify(name, m.Name, m.SectionLabel) {
		case classify.Separate:
			extras = append(extras, r.standaloneItem(m, qty))
		case classify.SizeSelector:
			sizeModNames = append(sizeModNames, m.Name)
		default:
			integrated = append(integrated, models.Modifier{Name: m.Name, Price: m.Price, Integrated: true})
			integratedNames = append(integratedNames, m.Name)
		}
	}

	isRice := classify.IsRiceBowl(name)
	isUrban := classify.IsUrbanBowl(name)

	// Substitutions ride on integrated modifiers ("Substitute Rice"),
	// so size derivation sees both pools.
	sizeSources := append(append([]string{}, sizeModNames...), integratedNames...)
	size := classify.DeriveSize(name, si.Size, sizeSources)
	if size == models.NoSize && cached != nil {
		size = cachedSizeFor(name, sizeSources, cached)
	}
	if size == models.NoSize && isRice {
		size = riceBaselineSize
	}

	item := models.Item{
		Name:        name,
		FullName:    fullName(name, integratedNames),
		Size:        size,
		Quantity:    qty,
		Price:       si.Price,
		IsRiceBowl:  isRice,
		IsUrbanBowl: isUrban,
		Modifiers:   integrated,
		ProteinType: classify.DeriveProtein(name),
		Sauce:       classify.DeriveSauce(name, integratedNames, isRice || isUrban),
	}
	if isUrban {
		item.RiceSubstitution = classify.Substitution(integratedNames)
		if item.RiceSubstitution == "" {
			item.RiceSubstitution = models.DefaultRiceSubstitution
		}
	}

	info := r.taxonomy.Categorize(name)
	item.Category = info.Category
	item.SubCategory = info.SubCategory

	return append([]models.Item{item}, extras...)
}

// standaloneItem promotes a separate-class modifier to its own line
// item with the parent's quantity.
func (r *Reconciler) standaloneItem(m models.SnapshotModifier, parentQty int) models.Item {
	qty := m.Quantity
	if qty <= 0 {
		qty = parentQty
	}
	if qty <= 0 {
		qty = 1
	}
	name := strings.TrimSpace(m.Name)

	item := models.Item{
		Name:        name,
		FullName:    name,
		Size:        classify.DeriveSize(name, "", nil),
		Quantity:    qty,
		Price:       m.Price,
		ProteinType: classify.DeriveProtein(name),
		Sauce:       classify.DeriveSauce(name, nil, false),
	}
	info := r.taxonomy.Categorize(name)
	item.Category = info.Category
	item.SubCategory = info.SubCategory
	return item
}

func (r *Reconciler) itemsFromPreview(text string) []models.Item {
	var items []models.Item
	for _, pi := range ParsePreviewItems(text) {
		isRice := classify.IsRiceBowl(pi.Name)
		isUrban := classify.IsUrbanBowl(pi.Name)
		size := classify.DeriveSize(pi.Name, "", nil)
		if size == models.NoSize && isRice {
			size = riceBaselineSize
		}
		item := models.Item{
			Name:        pi.Name,
			FullName:    pi.Name,
			Size:        size,
			Quantity:    pi.Quantity,
			IsRiceBowl:  isRice,
			IsUrbanBowl: isUrban,
			ProteinType: classify.DeriveProtein(pi.Name),
			Sauce:       classify.DeriveSauce(pi.Name, nil, isRice || isUrban),
		}
		if isUrban {
			item.RiceSubstitution = models.DefaultRiceSubstitution
		}
		info := r.taxonomy.Categorize(pi.Name)
		item.Category = info.Category
		item.SubCategory = info.SubCategory
		items = append(items, item)
	}
	return items
}

// cachedSizeFor pulls a size from the matching cached line item when
// the snapshot had none. Cached sizes come from upstream payloads and
// are authoritative for sizing only.
func cachedSizeFor(itemName string, sizeSources []string, cached *models.CachedOrder) string {
	lower := strings.ToLower(itemName)
	for _, ci := range cached.Items {
		ciName := strings.ToLower(strings.TrimSpace(ci.Name))
		if ciName == "" {
			continue
		}
		if strings.Contains(lower, ciName) || strings.Contains(ciName, lower) {
			if s := classify.DeriveSize(itemName, ci.Size, sizeSources); s != models.NoSize {
				return s
			}
		}
	}
	return models.NoSize
}

func cachedToSnapshot(ci models.CachedItem) models.SnapshotItem {
	si := models.SnapshotItem{
		Name:     ci.Name,
		Quantity: ci.Quantity,
		Price:    ci.Price,
		Size:     ci.Size,
	}
	for _, m := range ci.Modifiers {
		si.Modifiers = append(si.Modifiers, models.SnapshotModifier{Name: m.Name, Price: m.Price})
	}
	return si
}

func fullName(base string, integratedNames []string) string {
	if len(integratedNames) == 0 {
		return base
	}
	return base + " (" + strings.Join(integratedNames, ", ") + ")"
}

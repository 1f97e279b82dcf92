package source

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/baohaus/expeditor/internal/models"
	"github.com/jaswdr/faker"
)

var fake = faker.New()

type menuTemplate struct {
	name      string
	price     float64
	modifiers []models.SnapshotModifier
}

// menu is a small fixed menu the simulation draws from. Section labels
// match the ones the live platform emits so simulated traffic exercises
// the same classification paths.
var menu = []menuTemplate{
	{
		name:  "Grilled Chicken Rice Bowl",
		price: 12.50,
		modifiers: []models.SnapshotModifier{
			{Name: "Small", SectionLabel: "Size Choice"},
			{Name: "Sesame Aioli", SectionLabel: "House Sauces"},
		},
	},
	{
		name:  "Steak Rice Bowl",
		price: 14.75,
		modifiers: []models.SnapshotModifier{
			{Name: "Large", SectionLabel: "Size Choice"},
			{Name: "Garlic Butter Fried Rice Substitute", Price: 2.00, SectionLabel: "Substitute Rice"},
		},
	},
	{
		name:  "Crispy Chicken Urban Bowl",
		price: 13.25,
		modifiers: []models.SnapshotModifier{
			{Name: "Garlic Butter Fried Rice", Price: 2.00, SectionLabel: "Substitute Rice"},
			{Name: "Boba", SectionLabel: "Boba Option"},
		},
	},
	{
		name:  "Pork Belly Bao",
		price: 6.50,
	},
	{
		name:  "Bao Out Meal",
		price: 19.95,
		modifiers: []models.SnapshotModifier{
			{Name: "Crispy Chicken Bao"},
			{Name: "3 piece Dumplings", SectionLabel: "Choice of 3 piece Dumplings"},
			{Name: "Bao-nut", SectionLabel: "Add a Dessert"},
		},
	},
	{
		name:  "Salmon Rice Bowl",
		price: 15.50,
		modifiers: []models.SnapshotModifier{
			{Name: "Medium", SectionLabel: "Size Choice - Salmon"},
			{Name: "Cucumber Lemon Soda", Price: 3.50, SectionLabel: "Add a Drink"},
		},
	},
	{
		name:  "Crab Rangoon",
		price: 7.25,
	},
}

type simulatedOrder struct {
	snapshot models.OrderSnapshot
	placedAt time.Time
}

// SimulatedSource fabricates a rolling set of live orders so the whole
// pipeline can run without an upstream feed. Orders age between passes,
// occasionally finish (disappear from the snapshot), and new ones
// arrive; a fraction stay collapsed and report only a preview line.
type SimulatedSource struct {
	rng    *rand.Rand
	active []*simulatedOrder
	nextNo int
	now    func() time.Time
}

func NewSimulatedSource(seed int64) *SimulatedSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &SimulatedSource{
		rng:    rand.New(rand.NewSource(seed)),
		nextNo: 100 + rand.New(rand.NewSource(seed)).Intn(400),
		now:    time.Now,
	}
}

func (s *SimulatedSource) Snapshot(ctx context.Context) ([]models.OrderSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := s.now()

	// Some orders get picked up between passes.
	kept := s.active[:0]
	for _, o := range s.active {
		if now.Sub(o.placedAt) > 5*time.Minute && s.rng.Float64() < 0.25 {
			continue
		}
		kept = append(kept, o)
	}
	s.active = kept

	for len(s.active) < 3 || (len(s.active) < 12 && s.rng.Float64() < 0.4) {
		s.active = append(s.active, s.newOrder(now))
	}

	snaps := make([]models.OrderSnapshot, 0, len(s.active))
	for _, o := range s.active {
		snap := o.snapshot
		snap.ElapsedMinutes = int(now.Sub(o.placedAt) / time.Minute)
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

func (s *SimulatedSource) newOrder(now time.Time) *simulatedOrder {
	s.nextNo++
	snap := models.OrderSnapshot{
		OrderNumber:  fmt.Sprintf("#%d", s.nextNo),
		CustomerName: fake.Person().FirstName() + " " + fake.Person().LastName(),
	}

	count := 1 + s.rng.Intn(3)
	if s.rng.Float64() < 0.2 {
		// Collapsed order: only the preview line is readable.
		preview := ""
		for i := 0; i < count; i++ {
			if i > 0 {
				preview += " • "
			}
			preview += menu[s.rng.Intn(len(menu))].name
		}
		snap.PreviewText = preview
	} else {
		for i := 0; i < count; i++ {
			tpl := menu[s.rng.Intn(len(menu))]
			snap.Items = append(snap.Items, models.SnapshotItem{
				Name:      tpl.name,
				Quantity:  1 + s.rng.Intn(2),
				Price:     tpl.price,
				Modifiers: tpl.modifiers,
			})
		}
	}

	// Back-date some arrivals so batches see a spread of wait times.
	placed := now.Add(-time.Duration(s.rng.Intn(18)) * time.Minute)
	return &simulatedOrder{snapshot: snap, placedAt: placed}
}

package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategorize(t *testing.T) {
	taxonomy := NewTaxonomy()

	tests := []struct {
		item         string
		wantCategory string
		wantSub      string
	}{
		{"Grilled Chicken Rice Bowl", "riceBowls", "Grilled Chicken"},
		{"Steak Rice Bowl", "riceBowls", "Steak"},
		{"Crispy Chicken Urban Bowl", "urbanBowls", "Crispy Chicken"},
		{"Pork Belly Bao", "bao", ""},
		{"Bao Out Meal", "meals", ""},
		{"Bowl of Rice Meal", "meals", ""},
		{"Crab Rangoon", "appetizers", ""},
		{"3 piece Pork Dumplings", "dumplings", ""},
		{"Cucumber Lemon Soda", "drinks", ""},
		{"Thai Iced Tea", "drinks", ""},
		{"Waffle Fries", "sides", ""},
		{"Garlic Butter Fried Rice", "sides", ""},
		{"Mochi Ice Cream", "desserts", ""},
		{"Mystery Plate", "other", ""},
	}

	for _, tt := range tests {
		t.Run(tt.item, func(t *testing.T) {
			info := taxonomy.Categorize(tt.item)
			assert.Equal(t, tt.wantCategory, info.Category)
			assert.Equal(t, tt.wantSub, info.SubCategory)
		})
	}
}

func TestCategorizeBaoNutIsDessertNotBao(t *testing.T) {
	taxonomy := NewTaxonomy()
	info := taxonomy.Categorize("Bao-nut")
	assert.Equal(t, "desserts", info.Category)
}

func TestCategorizeBowlWithoutProteinGetsGeneralSub(t *testing.T) {
	taxonomy := NewTaxonomy()
	info := taxonomy.Categorize("Garden Veggie Rice Bowl")
	assert.Equal(t, "riceBowls", info.Category)
	assert.Equal(t, "General", info.SubCategory)
}

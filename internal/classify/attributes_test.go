package classify

import (
	"testing"

	"github.com/baohaus/expeditor/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestDeriveSizeFromModifiers(t *testing.T) {
	size := DeriveSize("Steak Rice Bowl", "", []string{"Large"})
	assert.Equal(t, "large", size)
}

func TestDeriveSizeCompoundsSubstitution(t *testing.T) {
	mods := []string{"Small", "Garlic Butter Fried Rice Substitute"}
	size := DeriveSize("Steak Rice Bowl", "", mods)
	assert.Equal(t, "small - garlic butter fried rice substitute", size)

	// Modifier order must not matter.
	reversed := []string{"Garlic Butter Fried Rice Substitute", "Small"}
	assert.Equal(t, size, DeriveSize("Steak Rice Bowl", "", reversed))
}

func TestDeriveSizeSubstitutionWithoutBase(t *testing.T) {
	size := DeriveSize("Steak Rice Bowl", "", []string{"Garlic Butter Fried Rice Substitute"})
	assert.Equal(t, "garlic butter fried rice substitute", size)
}

func TestDeriveSizeUrbanBowlSentinel(t *testing.T) {
	size := DeriveSize("Crispy Chicken Urban Bowl", "large", []string{"Small"})
	assert.Equal(t, models.SizeUrban, size)
}

func TestDeriveSizeExplicitWinsOverNameScan(t *testing.T) {
	size := DeriveSize("Small Rice Bowl", "medium", nil)
	assert.Equal(t, "medium", size)
}

func TestDeriveSizeNameScanFallback(t *testing.T) {
	size := DeriveSize("Small Cucumber Lemon Soda", "", nil)
	assert.Equal(t, "small", size)
}

func TestDeriveSizeNoSizeSentinel(t *testing.T) {
	size := DeriveSize("Pork Belly Bao", "", nil)
	assert.Equal(t, models.NoSize, size)
}

func TestDeriveSizeKeepsCompoundExplicit(t *testing.T) {
	size := DeriveSize("Steak Rice Bowl", "Small - Garlic Butter Fried Rice", nil)
	assert.Equal(t, "small - garlic butter fried rice", size)
}

func TestDeriveProtein(t *testing.T) {
	tests := []struct {
		item string
		want string
	}{
		{"Pork Belly Bao", "Pork Belly"},
		{"Grilled Chicken Rice Bowl", "Grilled Chicken"},
		{"Crispy Chicken Urban Bowl", "Crispy Chicken"},
		{"Chicken Katsu Bao", "Chicken"},
		{"Steak Rice Bowl", "Steak"},
		{"Salmon Rice Bowl", "Salmon"},
		{"Shrimp Dumplings", "Shrimp"},
		{"Fish Sandwich", "Crispy Fish"},
		{"Tofu Urban Bowl", "Tofu"},
		{"Cauliflower Bites", "Cauliflower Nugget"},
		{"Waffle Fries", ""},
	}
	for _, tt := range tests {
		t.Run(tt.item, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveProtein(tt.item))
		})
	}
}

func TestDeriveSauceLongestMatchWins(t *testing.T) {
	sauce := DeriveSauce("Sweet Sriracha Aioli Bao", nil, false)
	assert.Equal(t, "Sweet Sriracha Aioli", sauce)
}

func TestDeriveSauceFromModifiers(t *testing.T) {
	sauce := DeriveSauce("Steak Rice Bowl", []string{"Garlic Sesame Fusion"}, true)
	assert.Equal(t, "Garlic Sesame Fusion", sauce)
}

func TestDeriveSauceDefaults(t *testing.T) {
	assert.Equal(t, "Original", DeriveSauce("Grilled Chicken Rice Bowl", nil, true))
	assert.Equal(t, "", DeriveSauce("Waffle Fries", nil, false))
}

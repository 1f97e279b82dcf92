package classify

import "strings"

// CategoryInfo places an item in the kitchen's display taxonomy.
type CategoryInfo struct {
	Category     string
	SubCategory  string
	DisplayLabel string
}

type categoryRule struct {
	category string
	label    string
	keywords []string
}

// Taxonomy maps item names to display categories. The rule order
// matters: bowls are claimed before anything else, and desserts are
// checked before bao so a bao-nut never lands in the bao section.
type Taxonomy struct {
	rules []categoryRule
}

func NewTaxonomy() *Taxonomy {
	return &Taxonomy{rules: []categoryRule{
		{"desserts", "Desserts", []string{"bao-nut", "baonut", "bao nut", "mochi", "ice cream", "cinnamon", "dessert"}},
		{"meals", "Meals", []string{"bao out", "bowl of rice meal", "meal"}},
		{"appetizers", "Appetizers", []string{"spring roll", "egg roll", "crab rangoon", "starter", "appetizer"}},
		{"dumplings", "Dumplings", []string{"dumpling"}},
		{"bao", "Bao", []string{"bao"}},
		{"drinks", "Drinks", []string{"tea", "coffee", "soda", "juice", "lemonade", "smoothie", "boba", "water", "drink"}},
		{"sides", "Sides", []string{"waffle fries", "fries", "fried rice", "white rice", "brown rice", "side"}},
	}}
}

// Categorize resolves the category for an item name. Bowls also get a
// protein subcategory so the kitchen can group bowls by protein line.
func (t *Taxonomy) Categorize(itemName string) CategoryInfo {
	if IsRiceBowl(itemName) {
		return bowlInfo("riceBowls", "Rice Bowls", itemName)
	}
	if IsUrbanBowl(itemName) {
		return bowlInfo("urbanBowls", "Urban Bowls", itemName)
	}

	lower := strings.ToLower(itemName)
	for _, rule := range t.rules {
		for _, kw := range rule.keywords {
			if keywordMatch(lower, kw) {
				return CategoryInfo{Category: rule.category, DisplayLabel: rule.label}
			}
		}
	}
	return CategoryInfo{Category: "other", DisplayLabel: "Other"}
}

func bowlInfo(category, label, itemName string) CategoryInfo {
	info := CategoryInfo{Category: category, DisplayLabel: label}
	if protein := DeriveProtein(itemName); protein != "" {
		info.SubCategory = protein
	} else {
		info.SubCategory = "General"
	}
	return info
}

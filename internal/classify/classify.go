package classify

import "strings"

// Class says how a modifier attaches to its parent item.
type Class int

const (
	// Integrated modifiers fold into the parent item's identity.
	Integrated Class = iota
	// Separate modifiers become their own line items.
	Separate
	// SizeSelector modifiers set the parent's size instead of adding food.
	SizeSelector
	// Conditional modifiers integrate only for urban bowls and separate
	// otherwise.
	Conditional
)

func (c Class) String() string {
	switch c {
	case Separate:
		return "separate"
	case SizeSelector:
		return "size-selector"
	case Conditional:
		return "conditional"
	default:
		return "integrated"
	}
}

// sectionClasses is the authoritative mapping from the section labels
// the ordering platform uses to a modifier class. Unknown labels fall
// through to name heuristics.
var sectionClasses = map[string]Class{
	"Size Choice":          SizeSelector,
	"Size Choice - Salmon": SizeSelector,

	"Add a Dessert":               Separate,
	"Add a Drink":                 Separate,
	"Side Addition":               Separate,
	"Choice of 3 piece Dumplings": Separate,

	"Substitute Rice":     Integrated,
	"Choice of Dressing":  Integrated,
	"Choice of Protein":   Integrated,
	"House Sauces":        Integrated,
	"Top Steak with Our Signature Sauces":  Integrated,
	"Top Salmon with Our Signature Sauces": Integrated,

	// Combo sub-selections keep the combo a single line item.
	"(Dessert)":         Integrated,
	"(Dumplings)":       Integrated,
	"(Small Rice Bowl)": Integrated,

	"Boba Option": Conditional,
}

// standaloneFoods are modifier names that are really their own dishes
// or drinks. Matched when the section label is unknown.
var standaloneFoods = []string{
	"bao-nut", "baonut", "bao nut",
	"mochi", "ice cream", "dessert",
	"tea", "coffee", "soda", "juice", "lemonade", "smoothie", "drink",
	"spring roll", "egg roll", "crab rangoon",
	"waffle fries",
	"dumpling",
}

// ClassifySection resolves a known section label. ok is false for
// labels not in the table.
func ClassifySection(label string) (Class, bool) {
	c, ok := sectionClasses[strings.TrimSpace(label)]
	return c, ok
}

// Classify determines how a modifier attaches to its parent item.
//
// Meal parents force every modifier separate: a meal is a priced bundle
// and each component must appear on the prep line individually. Urban
// bowls never take a size from a modifier, so a would-be size selector
// integrates instead and at most contributes a rice substitution.
func Classify(parentName, modifierName, sectionLabel string) Class {
	if IsMeal(parentName) {
		return Separate
	}

	class, known := ClassifySection(sectionLabel)
	if !known {
		class = classifyByName(modifierName)
	}

	switch class {
	case Conditional:
		if IsUrbanBowl(parentName) {
			return Integrated
		}
		return Separate
	case SizeSelector:
		if IsUrbanBowl(parentName) {
			return Integrated
		}
		return SizeSelector
	default:
		return class
	}
}

func classifyByName(modifierName string) Class {
	lower := strings.ToLower(strings.TrimSpace(modifierName))
	for _, food := range standaloneFoods {
		if keywordMatch(lower, food) {
			return Separate
		}
	}
	if sizeToken(lower) != "" || isSubstitutionName(lower) {
		return SizeSelector
	}
	return Integrated
}

// keywordMatch tests a keyword against a lowercased name. Multi-word
// keywords match as substrings; single words match whole tokens only,
// so "tea" never fires inside "steak". Token matching is prefix-based
// to absorb plurals.
func keywordMatch(lower, keyword string) bool {
	if strings.ContainsAny(keyword, " -") {
		return strings.Contains(lower, keyword)
	}
	for _, tok := range strings.Fields(lower) {
		if strings.HasPrefix(tok, keyword) {
			return true
		}
	}
	return false
}

package classify

import (
	"sort"
	"strings"

	"github.com/baohaus/expeditor/internal/models"
)

func IsRiceBowl(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "rice bowl") && !strings.Contains(lower, "urban")
}

func IsUrbanBowl(name string) bool {
	return strings.Contains(strings.ToLower(name), "urban bowl")
}

// IsMeal reports whether the item is a bundled meal whose modifiers are
// all standalone dishes.
func IsMeal(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "meal") || strings.Contains(lower, "bao out")
}

var sizeTokens = []string{"small", "medium", "large"}

func sizeToken(lower string) string {
	for _, t := range sizeTokens {
		if strings.Contains(lower, t) {
			return t
		}
	}
	return ""
}

func isSubstitutionName(lower string) bool {
	return strings.Contains(lower, "fried rice") ||
		strings.Contains(lower, "noodle") ||
		strings.Contains(lower, "substitute")
}

// DeriveSize resolves an item's size from, in order: the urban bowl
// sentinel, an explicit size field, size-bearing modifier names, and
// finally a size token in the item name itself. A rice substitution
// found among the modifiers compounds with the base size so "small with
// garlic butter fried rice" never aggregates with a plain small; a
// substitution with no base size stands in as the size on its own.
func DeriveSize(itemName, explicitSize string, modifierNames []string) string {
	if IsUrbanBowl(itemName) {
		return models.SizeUrban
	}

	base := normalizeSize(explicitSize)
	substitution := ""
	for _, m := range modifierNames {
		lower := strings.ToLower(strings.TrimSpace(m))
		if substitution == "" && isSubstitutionName(lower) {
			substitution = lower
			continue
		}
		if base == "" {
			base = sizeToken(lower)
		}
	}
	if base == "" {
		base = sizeToken(strings.ToLower(itemName))
	}
	if base == "" {
		if substitution != "" {
			return substitution
		}
		return models.NoSize
	}
	if substitution != "" && !strings.Contains(base, " - ") {
		return base + " - " + substitution
	}
	return base
}

func normalizeSize(s string) string {
	lower := strings.ToLower(strings.TrimSpace(s))
	if lower == "" || lower == models.NoSize {
		return ""
	}
	// Already-compounded sizes pass through untouched.
	if strings.Contains(lower, " - ") {
		return lower
	}
	if t := sizeToken(lower); t != "" {
		return t
	}
	return lower
}

// Substitution returns the first rice or noodle substitution among the
// modifier names, lowercased, or "".
func Substitution(modifierNames []string) string {
	for _, m := range modifierNames {
		lower := strings.ToLower(strings.TrimSpace(m))
		if isSubstitutionName(lower) {
			return lower
		}
	}
	return ""
}

type proteinRule struct {
	label    string
	keywords []string
}

// proteinRules are applied first match wins, so compound names like
// "grilled chicken" must precede the bare "chicken" rule.
var proteinRules = []proteinRule{
	{"Pork Belly", []string{"pork belly"}},
	{"Grilled Chicken", []string{"grilled", "chicken"}},
	{"Crispy Chicken", []string{"crispy", "chicken"}},
	{"Steak", []string{"steak"}},
	{"Salmon", []string{"salmon"}},
	{"Shrimp", []string{"shrimp"}},
	{"Crispy Fish", []string{"fish"}},
	{"Tofu", []string{"tofu"}},
	{"Cauliflower Nugget", []string{"cauliflower"}},
	{"Chicken", []string{"chicken"}},
}

// DeriveProtein extracts the protein label from an item name, or "".
func DeriveProtein(itemName string) string {
	lower := strings.ToLower(itemName)
	for _, rule := range proteinRules {
		matched := true
		for _, kw := range rule.keywords {
			if !strings.Contains(lower, kw) {
				matched = false
				break
			}
		}
		if matched {
			return rule.label
		}
	}
	return ""
}

// sauceVocabulary is matched longest name first so "sweet sriracha
// aioli" never resolves to a shorter sauce it happens to contain.
var sauceVocabulary = []string{
	"garlic sesame fusion",
	"sweet sriracha aioli",
	"jalapeño herb aioli",
	"chipotle aioli",
	"sesame aioli",
	"garlic aioli",
	"spicy yuzu",
	"sweet chili",
	"korean bbq",
	"teriyaki",
	"sriracha",
	"orange",
	"yuzu",
}

func init() {
	sort.Slice(sauceVocabulary, func(i, j int) bool {
		return len(sauceVocabulary[i]) > len(sauceVocabulary[j])
	})
}

// DeriveSauce scans the item name and its integrated modifier names for
// a known sauce. Bowls default to "Original" when nothing matches;
// everything else defaults to "".
func DeriveSauce(itemName string, modifierNames []string, isBowl bool) string {
	candidates := append([]string{itemName}, modifierNames...)
	for _, sauce := range sauceVocabulary {
		for _, c := range candidates {
			if strings.Contains(strings.ToLower(c), sauce) {
				return titleCase(sauce)
			}
		}
	}
	if isBowl {
		return "Original"
	}
	return ""
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if w == "bbq" {
			words[i] = "BBQ"
			continue
		}
		r := []rune(w)
		r[0] = []rune(strings.ToUpper(string(r[0])))[0]
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

package aggregate

import (
	"strings"

	"github.com/baohaus/expeditor/internal/models"
)

// Key builds the canonical identity string for an item from its name,
// size, category and rice substitution. Two items aggregate together
// exactly when their keys are byte-identical, so every field is trimmed
// and lowercased before joining. The substitution segment is present
// only when the item has one, keeping keys for unsubstituted items
// stable.
func Key(name, size, category, substitution string) string {
	parts := []string{
		strings.ToLower(strings.TrimSpace(name)),
		strings.ToLower(strings.TrimSpace(size)),
		strings.ToLower(strings.TrimSpace(category)),
	}
	if sub := strings.ToLower(strings.TrimSpace(substitution)); sub != "" {
		parts = append(parts, sub)
	}
	return strings.Join(parts, "|")
}

// ItemKey derives the canonical key for a classified item.
func ItemKey(item models.Item) string {
	return Key(item.Name, item.Size, item.Category, item.RiceSubstitution)
}

package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseElapsed(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"19m", 19},
		{"1h 5m", 65},
		{"1h", 60},
		{"2h 30m", 150},
		{"  7m  ", 7},
		{"Ready", 0},
		{"Printed", 0},
		{"", 0},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseElapsed(tt.text))
		})
	}
}

func TestParsePreviewItemsBullets(t *testing.T) {
	items := ParsePreviewItems("2× Crispy Chicken Bao • Small Rice Bowl • Bao-nut")
	assert.Len(t, items, 3)
	assert.Equal(t, PreviewItem{Name: "Crispy Chicken Bao", Quantity: 2}, items[0])
	assert.Equal(t, PreviewItem{Name: "Small Rice Bowl", Quantity: 1}, items[1])
	assert.Equal(t, PreviewItem{Name: "Bao-nut", Quantity: 1}, items[2])
}

func TestParsePreviewItemsCommaFallback(t *testing.T) {
	items := ParsePreviewItems("Pork Belly Bao, 3x Waffle Fries")
	assert.Len(t, items, 2)
	assert.Equal(t, "Pork Belly Bao", items[0].Name)
	assert.Equal(t, 3, items[1].Quantity)
	assert.Equal(t, "Waffle Fries", items[1].Name)
}

func TestParsePreviewItemsEmpty(t *testing.T) {
	assert.Nil(t, ParsePreviewItems(""))
	assert.Nil(t, ParsePreviewItems("  •  • "))
}

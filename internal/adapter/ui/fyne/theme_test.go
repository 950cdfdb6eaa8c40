package fyne

import (
	"image/color"
	"testing"

	"fyne.io/fyne/v2/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSliderPalette_DistinctColours(t *testing.T) {
	require.Len(t, SliderPalette, 8)

	seen := make(map[color.NRGBA]bool)
	for _, c := range SliderPalette {
		nrgba := color.NRGBAModel.Convert(c).(color.NRGBA)
		assert.False(t, seen[nrgba], "duplicate colour %v", nrgba)
		seen[nrgba] = true
	}
}

func TestPlayerTheme_Variant(t *testing.T) {
	night := newPlayerTheme(true, 0)
	day := newPlayerTheme(false, 0)

	assert.Equal(t, theme.VariantDark, night.variant)
	assert.Equal(t, theme.VariantLight, day.variant)
	assert.Equal(t,
		theme.DefaultTheme().Color(theme.ColorNameBackground, theme.VariantDark),
		night.Color(theme.ColorNameBackground, theme.VariantLight))
	assert.Equal(t,
		theme.DefaultTheme().Color(theme.ColorNameBackground, theme.VariantLight),
		day.Color(theme.ColorNameBackground, theme.VariantDark))
}

func TestPlayerTheme_PrimaryFollowsSliderColor(t *testing.T) {
	for i := range SliderPalette {
		th := newPlayerTheme(false, i)
		assert.Equal(t, SliderPalette[i], th.Color(theme.ColorNamePrimary, theme.VariantLight))
		assert.Equal(t, SliderPalette[i], th.Color(theme.ColorNameFocus, theme.VariantLight))
	}

	// Out of range indexes wrap instead of panicking.
	assert.Equal(t, SliderPalette[1], newPlayerTheme(false, len(SliderPalette)+1).primary)
	assert.Equal(t, SliderPalette[len(SliderPalette)-1], newPlayerTheme(false, -1).primary)
}

func TestPlayerTheme_SelectionIsTranslucentPrimary(t *testing.T) {
	th := newPlayerTheme(true, 2)

	sel, ok := th.Color(theme.ColorNameSelection, theme.VariantDark).(color.NRGBA)
	require.True(t, ok)
	assert.Equal(t, uint8(0x55), sel.A)
}

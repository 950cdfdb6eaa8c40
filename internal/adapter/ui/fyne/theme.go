package fyne

import (
	"image/color"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
	"github.com/lucasb-eyer/go-colorful"
)

// SliderPalette is the cycle of accent colours behind "Cycle Slider Color".
var SliderPalette = accentPalette(8)

// accentPalette spreads n colours evenly around the HCL hue circle.
func accentPalette(n int) []color.Color {
	out := make([]color.Color, n)
	for i := range out {
		hue := 210 + float64(i)*360/float64(n)
		out[i] = colorful.Hcl(hue, 0.55, 0.6).Clamped()
	}
	return out
}

// playerTheme forces the light or dark variant and replaces the primary
// colour, which fyne uses for slider bars, progress and selections.
type playerTheme struct {
	variant fyneapp.ThemeVariant
	primary color.Color
}

func newPlayerTheme(nightMode bool, sliderColor int) *playerTheme {
	t := &playerTheme{variant: theme.VariantLight}
	if nightMode {
		t.variant = theme.VariantDark
	}
	n := len(SliderPalette)
	t.primary = SliderPalette[((sliderColor%n)+n)%n]
	return t
}

func (t *playerTheme) Color(name fyneapp.ThemeColorName, _ fyneapp.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary, theme.ColorNameFocus:
		return t.primary
	case theme.ColorNameSelection:
		c, _ := colorful.MakeColor(t.primary)
		r, g, b := c.RGB255()
		return color.NRGBA{R: r, G: g, B: b, A: 0x55}
	default:
		return theme.DefaultTheme().Color(name, t.variant)
	}
}

func (t *playerTheme) Font(style fyneapp.TextStyle) fyneapp.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *playerTheme) Icon(name fyneapp.ThemeIconName) fyneapp.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *playerTheme) Size(name fyneapp.ThemeSizeName) float32 {
	return theme.DefaultTheme().Size(name)
}

var _ fyneapp.Theme = (*playerTheme)(nil)

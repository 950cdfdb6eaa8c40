package widgets

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// MenuArea wraps content and opens a pop-up menu on right-click.
type MenuArea struct {
	widget.BaseWidget

	content fyne.CanvasObject
	menu    func() *fyne.Menu
}

// NewMenuArea creates an area showing the menu built by menu on secondary taps.
func NewMenuArea(content fyne.CanvasObject, menu func() *fyne.Menu) *MenuArea {
	m := &MenuArea{content: content, menu: menu}
	m.ExtendBaseWidget(m)
	return m
}

// CreateRenderer implements fyne.Widget.
func (m *MenuArea) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(m.content)
}

// TappedSecondary implements fyne.SecondaryTappable (right-click).
func (m *MenuArea) TappedSecondary(pe *fyne.PointEvent) {
	if m.menu == nil {
		return
	}
	c := fyne.CurrentApp().Driver().CanvasForObject(m)
	if c == nil {
		return
	}
	widget.ShowPopUpMenuAtPosition(m.menu(), c, pe.AbsolutePosition)
}

var _ fyne.SecondaryTappable = (*MenuArea)(nil)

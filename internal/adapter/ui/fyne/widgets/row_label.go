package widgets

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// RowLabel is a table cell that reports double-taps with its row.
type RowLabel struct {
	widget.Label
	row          int
	doubleTapped func(row int)
}

// NewRowLabel creates a cell calling doubleTapped with the row it shows.
func NewRowLabel(doubleTapped func(row int)) *RowLabel {
	l := &RowLabel{row: -1, doubleTapped: doubleTapped}
	l.Truncation = fyne.TextTruncateEllipsis
	l.ExtendBaseWidget(l)
	return l
}

// SetRow binds the cell to a table row before its text is set.
func (l *RowLabel) SetRow(row int) {
	l.row = row
}

// Row returns the bound row, or -1.
func (l *RowLabel) Row() int {
	return l.row
}

// DoubleTapped implements fyne.DoubleTappable.
func (l *RowLabel) DoubleTapped(*fyne.PointEvent) {
	if l.doubleTapped != nil && l.row >= 0 {
		l.doubleTapped(l.row)
	}
}

var _ fyne.DoubleTappable = (*RowLabel)(nil)

package fyne

import (
	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/tejashwikalptaru/qtunes/internal/adapter/ui/fyne/widgets"
	"github.com/tejashwikalptaru/qtunes/internal/domain"
)

const checkColumnWidth = 36

// columnWidths are the default widths of domain.VisibleColumns.
var columnWidths = map[domain.Column]float32{
	domain.ColumnTitle:  240,
	domain.ColumnTrack:  60,
	domain.ColumnTime:   60,
	domain.ColumnArtist: 170,
	domain.ColumnAlbum:  170,
	domain.ColumnGenre:  110,
}

// songTable renders songs with one column per visible field and, for the
// library, a leading checkbox column. Its state is only touched on the UI
// goroutine.
type songTable struct {
	table     *widget.Table
	checkable bool

	rows    []domain.Song
	checked map[string]bool
	playing string

	onActivate func(path string)
	onCheck    func(path string, checked bool)
}

func newSongTable(checkable bool, onActivate func(string), onCheck func(string, bool)) *songTable {
	t := &songTable{
		checkable:  checkable,
		checked:    map[string]bool{},
		onActivate: onActivate,
		onCheck:    onCheck,
	}

	t.table = widget.NewTable(
		func() (int, int) { return len(t.rows), t.columnCount() },
		t.createCell,
		t.updateCell,
	)
	t.table.ShowHeaderRow = true
	t.table.CreateHeader = func() fyneapp.CanvasObject {
		return widget.NewLabelWithStyle("", fyneapp.TextAlignLeading, fyneapp.TextStyle{Bold: true})
	}
	t.table.UpdateHeader = t.updateHeader

	for i := 0; i < t.columnCount(); i++ {
		t.table.SetColumnWidth(i, t.columnWidth(i))
	}
	return t
}

func (t *songTable) columnCount() int {
	if t.checkable {
		return len(domain.VisibleColumns) + 1
	}
	return len(domain.VisibleColumns)
}

// field maps a table column to a song column; ok is false for the checkbox column.
func (t *songTable) field(col int) (domain.Column, bool) {
	if t.checkable {
		if col == 0 {
			return 0, false
		}
		col--
	}
	return domain.VisibleColumns[col], true
}

func (t *songTable) columnWidth(col int) float32 {
	c, ok := t.field(col)
	if !ok {
		return checkColumnWidth
	}
	return columnWidths[c]
}

func (t *songTable) createCell() fyneapp.CanvasObject {
	check := widget.NewCheck("", nil)
	label := widgets.NewRowLabel(t.activate)
	return container.NewStack(check, label)
}

func (t *songTable) updateCell(id widget.TableCellID, obj fyneapp.CanvasObject) {
	cell, ok := obj.(*fyneapp.Container)
	if !ok || len(cell.Objects) != 2 || id.Row < 0 || id.Row >= len(t.rows) {
		return
	}
	check := cell.Objects[0].(*widget.Check)
	label := cell.Objects[1].(*widgets.RowLabel)
	song := t.rows[id.Row]

	column, isField := t.field(id.Col)
	if !isField {
		label.Hide()
		check.Show()
		check.OnChanged = nil
		check.SetChecked(t.checked[song.Path])
		path := song.Path
		check.OnChanged = func(on bool) {
			if t.onCheck != nil {
				t.onCheck(path, on)
			}
		}
		return
	}

	check.Hide()
	label.Show()
	label.SetRow(id.Row)
	label.TextStyle = fyneapp.TextStyle{Bold: song.Path == t.playing}
	label.SetText(song.Field(column))
}

func (t *songTable) updateHeader(id widget.TableCellID, obj fyneapp.CanvasObject) {
	label, ok := obj.(*widget.Label)
	if !ok {
		return
	}
	if column, isField := t.field(id.Col); isField {
		label.SetText(column.Header())
		return
	}
	label.SetText("")
}

func (t *songTable) activate(row int) {
	if row < 0 || row >= len(t.rows) || t.onActivate == nil {
		return
	}
	t.onActivate(t.rows[row].Path)
}

// setRows replaces the rows. A nil checked map keeps the current checks.
func (t *songTable) setRows(rows []domain.Song, checked map[string]bool) {
	t.rows = rows
	if checked != nil {
		t.checked = checked
	}
	t.table.Refresh()
}

// setPlaying highlights the row of the song at path.
func (t *songTable) setPlaying(path string) {
	if t.playing == path {
		return
	}
	t.playing = path
	t.table.Refresh()
	if i := domain.IndexOfPath(t.rows, path); i >= 0 {
		t.table.ScrollTo(widget.TableCellID{Row: i, Col: 0})
	}
}

// allChecked reports whether every row is checked.
func (t *songTable) allChecked() bool {
	if len(t.rows) == 0 {
		return false
	}
	for _, s := range t.rows {
		if !t.checked[s.Path] {
			return false
		}
	}
	return true
}

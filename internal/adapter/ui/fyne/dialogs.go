package fyne

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/tejashwikalptaru/qtunes/internal/domain"
	"github.com/tejashwikalptaru/qtunes/res"
)

// FolderDialog is a helper for creating folder open dialogs.
type FolderDialog struct {
	window   fyne.Window
	callback func(string)
	logger   *slog.Logger
}

// NewFolderDialog creates a new folder dialog.
func NewFolderDialog(window fyne.Window, callback func(string), logger *slog.Logger) *FolderDialog {
	return &FolderDialog{
		window:   window,
		callback: callback,
		logger:   logger,
	}
}

// Show displays the folder dialog.
func (d *FolderDialog) Show() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			d.logger.Error("folder dialog error", slog.Any("error", err))
			return
		}
		if uri == nil {
			return // User cancelled
		}
		if d.callback != nil {
			d.callback(uri.Path())
		}
	}, d.window)
}

// ScanDialog shows scan progress with a Cancel button.
type ScanDialog struct {
	dialog   *dialog.CustomDialog
	bar      *widget.ProgressBar
	file     *widget.Label
	visible  bool
	hiding   bool
	onCancel func()
}

// NewScanDialog creates the scan dialog; onCancel runs when the user presses Cancel.
func NewScanDialog(window fyne.Window, onCancel func()) *ScanDialog {
	d := &ScanDialog{
		bar:      widget.NewProgressBar(),
		file:     widget.NewLabel("Looking for music..."),
		onCancel: onCancel,
	}
	d.file.Truncation = fyne.TextTruncateEllipsis

	content := container.NewVBox(d.file, d.bar)
	d.dialog = dialog.NewCustom("Loading Music Folder", "Cancel", content, window)
	d.dialog.Resize(fyne.NewSize(420, 140))
	d.dialog.SetOnClosed(func() {
		d.visible = false
		if d.hiding {
			d.hiding = false
			return
		}
		if d.onCancel != nil {
			d.onCancel()
		}
	})
	return d
}

// Update shows the dialog if needed and displays progress.
// Must be called on the UI goroutine.
func (d *ScanDialog) Update(p domain.ScanProgress) {
	if p.TotalFiles > 0 {
		d.bar.Max = float64(p.TotalFiles)
		d.bar.SetValue(float64(p.FilesScanned))
		d.file.SetText(fmt.Sprintf("%d of %d: %s", p.FilesScanned, p.TotalFiles, filepath.Base(p.CurrentFile)))
	} else {
		d.bar.SetValue(0)
		d.file.SetText("Looking for music...")
	}
	if !d.visible {
		d.visible = true
		d.dialog.Show()
	}
}

// Hide closes the dialog without cancelling the scan.
// Must be called on the UI goroutine.
func (d *ScanDialog) Hide() {
	if !d.visible {
		return
	}
	d.hiding = true
	d.dialog.Hide()
}

// ShowAbout displays the About dialog.
func ShowAbout(window fyne.Window) {
	body := widget.NewRichTextFromMarkdown(res.AboutContent)
	body.Wrapping = fyne.TextWrapWord
	about := dialog.NewCustom(res.AboutTitle, "Close", body, window)
	about.Resize(fyne.NewSize(380, 260))
	about.Show()
}

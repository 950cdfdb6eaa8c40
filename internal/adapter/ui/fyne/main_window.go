package fyne

import (
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/tejashwikalptaru/qtunes/internal/adapter/ui/fyne/widgets"
	"github.com/tejashwikalptaru/qtunes/internal/domain"
	"github.com/tejashwikalptaru/qtunes/internal/ports"
	"github.com/tejashwikalptaru/qtunes/res"
)

const (
	// APPNAME is the window title.
	APPNAME = "qTunes"
	WIDTH   = 1100
	HEIGHT  = 780
)

// WindowConfig sizes the coverflow and visualizer.
type WindowConfig struct {
	Bars            int
	FrameInterval   time.Duration
	VisualizerSpeed domain.VisualizerSpeed

	AlbumsShown int
	ShiftTime   time.Duration
	ThumbSize   uint
}

// MainWindow is the main UI window implementing ports.View.
//
// The MainWindow follows the MVP pattern:
// - It's a "dumb view" that just displays data
// - All business logic is in the Presenter
// - User interactions are forwarded to the Presenter
//
// View methods may be called from any goroutine; they hop onto the UI
// goroutine with fyne.Do.
type MainWindow struct {
	app    fyneapp.App
	window fyneapp.Window
	logger *slog.Logger
	cfg    WindowConfig

	// Top: coverflow and now playing
	coverflow   *widgets.Coverflow
	albumLabel  *widget.Label
	nowCover    *canvas.Image
	nowPlaying  *widget.Label
	albumLeft   *widget.Button
	albumRight  *widget.Button
	timeSlider  *widget.Slider
	timeLabel   *widget.Label
	volume      *widget.Slider
	prevButton  *widget.Button
	stopButton  *widget.Button
	playButton  *widget.Button
	pauseButton *widget.Button
	nextButton  *widget.Button
	repeat      *widget.Button
	shuffle     *widget.Button

	// Library
	selectAll    *widget.Check
	search       *widget.Entry
	panels       [3]*widget.List
	panelItems   [3][]string
	syncingPanel bool
	library      *songTable
	playlist     *songTable
	visualizer   *widgets.Visualizer
	tabs         *container.AppTabs
	scanDialog   *ScanDialog

	// Menus
	nightItem  *fyneapp.MenuItem
	speedItems map[domain.VisualizerSpeed]*fyneapp.MenuItem
	mainMenu   *fyneapp.MainMenu

	// State (UI goroutine only)
	mode    domain.PlayMode
	seeking bool

	presenter *Presenter
	closeOnce sync.Once
}

// NewMainWindow creates a new main window.
func NewMainWindow(app fyneapp.App, logger *slog.Logger, cfg WindowConfig) *MainWindow {
	w := &MainWindow{
		app:    app,
		logger: logger,
		cfg:    cfg,
	}

	w.window = app.NewWindow(APPNAME)
	w.window.SetMaster()
	w.window.Resize(fyneapp.NewSize(WIDTH, HEIGHT))
	return w
}

// SetPresenter connects the presenter to this view and builds the UI.
// This must be called before showing the window.
func (w *MainWindow) SetPresenter(presenter *Presenter) {
	w.presenter = presenter
	w.buildUI()
	w.addShortcuts()
}

// buildUI constructs the UI components.
func (w *MainWindow) buildUI() {
	p := w.presenter

	w.coverflow = widgets.NewCoverflow(w.cfg.AlbumsShown, w.cfg.ShiftTime, w.cfg.ThumbSize,
		p.AlbumCover, res.DefaultCover())
	w.albumLabel = widget.NewLabelWithStyle("", fyneapp.TextAlignCenter, fyneapp.TextStyle{Bold: true})
	w.coverflow.OnCentreChanged = func(album domain.AlbumEntry) {
		w.albumLabel.SetText(album.Name)
	}
	w.coverflow.OnChosen = func(album domain.AlbumEntry) {
		p.OnAlbumChosen(album.Name)
	}

	w.nowCover = canvas.NewImageFromImage(res.DefaultCover())
	w.nowCover.FillMode = canvas.ImageFillContain
	w.nowCover.SetMinSize(fyneapp.NewSize(56, 56))
	w.nowPlaying = widget.NewLabel("")
	w.nowPlaying.Truncation = fyneapp.TextTruncateEllipsis
	w.nowPlaying.TextStyle = fyneapp.TextStyle{Bold: true, Italic: true}

	// Control buttons
	w.albumLeft = widget.NewButtonWithIcon("", theme.NavigateBackIcon(), w.coverflow.ShiftLeft)
	w.albumRight = widget.NewButtonWithIcon("", theme.NavigateNextIcon(), w.coverflow.ShiftRight)
	w.prevButton = widget.NewButtonWithIcon("", theme.MediaSkipPreviousIcon(), p.OnPreviousClicked)
	w.stopButton = widget.NewButtonWithIcon("", theme.MediaStopIcon(), p.OnStopClicked)
	w.playButton = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), p.OnPlayClicked)
	w.pauseButton = widget.NewButtonWithIcon("", theme.MediaPauseIcon(), p.OnPauseClicked)
	w.nextButton = widget.NewButtonWithIcon("", theme.MediaSkipNextIcon(), p.OnNextClicked)
	w.repeat = widget.NewButtonWithIcon("Repeat", theme.MediaReplayIcon(), func() {
		p.OnRepeatToggled(w.mode != domain.PlayModeRepeat)
	})
	w.shuffle = widget.NewButtonWithIcon("Shuffle", theme.MediaMusicIcon(), func() {
		p.OnShuffleToggled(w.mode != domain.PlayModeShuffle)
	})

	w.volume = widget.NewSlider(0, 100)
	w.volume.OnChanged = p.OnVolumeChanged
	volumeHolder := container.NewBorder(nil, nil, widget.NewIcon(theme.VolumeUpIcon()), nil, w.volume)

	w.timeSlider = widget.NewSlider(0, 1)
	w.timeSlider.Step = 0.1
	w.timeSlider.OnChanged = func(float64) { w.seeking = true }
	w.timeSlider.OnChangeEnded = func(v float64) {
		w.seeking = false
		p.OnSeekRequested(v)
	}
	w.timeLabel = widget.NewLabel(timeText(0, 0))

	buttons := container.NewHBox(
		w.albumLeft, w.prevButton, w.stopButton, w.playButton, w.pauseButton, w.nextButton,
		w.repeat, w.shuffle,
	)
	controls := container.NewVBox(
		container.NewBorder(nil, nil, buttons, w.albumRight, volumeHolder),
		container.NewBorder(nil, nil, nil, w.timeLabel, w.timeSlider),
	)
	nowPlaying := container.NewBorder(nil, nil, w.nowCover, nil, w.nowPlaying)
	top := container.NewVBox(w.coverflow, w.albumLabel, nowPlaying, controls)

	// Search and select-all
	w.selectAll = widget.NewCheck("Select all", p.OnSelectAll)
	w.search = widget.NewEntry()
	w.search.SetPlaceHolder("Search...")
	w.search.OnChanged = p.OnSearch
	searchBar := container.NewBorder(nil, nil, w.selectAll, nil, w.search)

	// Panels and tables
	panelTitles := [3]string{"Genre", "Artist", "Album"}
	panelBoxes := make([]fyneapp.CanvasObject, 3)
	for i := range w.panels {
		w.panels[i] = w.newPanel(domain.Panel(i))
		panelBoxes[i] = container.NewBorder(
			widget.NewLabelWithStyle(panelTitles[i], fyneapp.TextAlignLeading, fyneapp.TextStyle{Bold: true}),
			nil, nil, nil, w.panels[i])
	}
	w.library = newSongTable(true, func(path string) {
		p.OnRowActivated(domain.SourceLibrary, path)
	}, func(path string, on bool) {
		p.OnSongChecked(path, on)
	})
	w.playlist = newSongTable(false, func(path string) {
		p.OnRowActivated(domain.SourcePlaylist, path)
	}, nil)

	libraryTab := container.NewVSplit(container.NewGridWithColumns(3, panelBoxes...), w.library.table)
	libraryTab.SetOffset(0.3)

	w.visualizer = widgets.NewVisualizer(w.cfg.Bars, w.cfg.FrameInterval, w.cfg.VisualizerSpeed.Interval(), p.Levels)
	visualizerTab := widgets.NewMenuArea(w.visualizer, w.speedMenu)

	w.tabs = container.NewAppTabs(
		container.NewTabItem("Library", libraryTab),
		container.NewTabItem("Playlist", w.playlist.table),
		container.NewTabItem("Visualizer", visualizerTab),
	)

	content := container.NewBorder(container.NewVBox(top, searchBar), nil, nil, nil, w.tabs)
	w.window.SetContent(container.NewPadded(content))

	w.scanDialog = NewScanDialog(w.window, p.OnCancelScan)

	w.mainMenu = fyneapp.NewMainMenu(w.createMenu()...)
	w.window.SetMainMenu(w.mainMenu)
}

func (w *MainWindow) newPanel(panel domain.Panel) *widget.List {
	list := widget.NewList(
		func() int { return len(w.panelItems[panel]) },
		func() fyneapp.CanvasObject {
			l := widget.NewLabel("")
			l.Truncation = fyneapp.TextTruncateEllipsis
			return l
		},
		func(id widget.ListItemID, obj fyneapp.CanvasObject) {
			if id < len(w.panelItems[panel]) {
				obj.(*widget.Label).SetText(w.panelItems[panel][id])
			}
		},
	)
	list.OnSelected = func(id widget.ListItemID) {
		if w.syncingPanel || id >= len(w.panelItems[panel]) {
			return
		}
		w.presenter.OnPanelSelected(panel, w.panelItems[panel][id])
	}
	return list
}

// createMenu creates the application menu.
func (w *MainWindow) createMenu() []*fyneapp.Menu {
	p := w.presenter

	loadFolder := fyneapp.NewMenuItem("Load Music Folder", w.handleLoadFolder)
	loadFolder.Shortcut = loadShortcut
	quit := fyneapp.NewMenuItem("Quit", w.Close)
	quit.Shortcut = quitShortcut
	quit.IsQuit = true
	file := fyneapp.NewMenu("File", loadFolder, fyneapp.NewMenuItemSeparator(), quit)

	w.speedItems = make(map[domain.VisualizerSpeed]*fyneapp.MenuItem)
	speedItems := make([]*fyneapp.MenuItem, 0, len(domain.VisualizerSpeeds))
	for _, speed := range domain.VisualizerSpeeds {
		item := fyneapp.NewMenuItem("Visualizer: "+speed.String(), func() {
			p.OnVisualizerSpeedChosen(speed)
		})
		item.Checked = speed == w.cfg.VisualizerSpeed
		w.speedItems[speed] = item
		speedItems = append(speedItems, item)
	}
	playback := fyneapp.NewMenu("Playback", speedItems...)

	w.nightItem = fyneapp.NewMenuItem("Night Mode", p.OnNightModeToggled)
	prefs := fyneapp.NewMenu("Preferences",
		w.nightItem,
		fyneapp.NewMenuItem("Cycle Slider Color", p.OnCycleSliderColor),
	)

	about := fyneapp.NewMenuItem("About", func() { ShowAbout(w.window) })
	about.Shortcut = aboutShortcut
	help := fyneapp.NewMenu("Help", about)

	return []*fyneapp.Menu{file, playback, prefs, help}
}

// speedMenu is the visualizer's right-click menu.
func (w *MainWindow) speedMenu() *fyneapp.Menu {
	items := make([]*fyneapp.MenuItem, 0, len(domain.VisualizerSpeeds))
	for _, speed := range domain.VisualizerSpeeds {
		items = append(items, w.speedItems[speed])
	}
	return fyneapp.NewMenu("Speed", items...)
}

// handleLoadFolder handles the "Load Music Folder" menu action.
func (w *MainWindow) handleLoadFolder() {
	NewFolderDialog(w.window, w.presenter.OnLoadFolder, w.logger).Show()
}

var (
	loadShortcut  = &desktop.CustomShortcut{KeyName: fyneapp.KeyL, Modifier: fyneapp.KeyModifierShortcutDefault}
	quitShortcut  = &desktop.CustomShortcut{KeyName: fyneapp.KeyQ, Modifier: fyneapp.KeyModifierShortcutDefault}
	aboutShortcut = &desktop.CustomShortcut{KeyName: fyneapp.KeyA, Modifier: fyneapp.KeyModifierShortcutDefault}
)

// addShortcuts adds keyboard shortcuts.
func (w *MainWindow) addShortcuts() {
	c := w.window.Canvas()
	c.AddShortcut(loadShortcut, func(fyneapp.Shortcut) { w.handleLoadFolder() })
	c.AddShortcut(quitShortcut, func(fyneapp.Shortcut) { w.Close() })
	c.AddShortcut(aboutShortcut, func(fyneapp.Shortcut) { ShowAbout(w.window) })

	// Plain keys reach the canvas only while no entry has focus.
	c.SetOnTypedKey(func(ev *fyneapp.KeyEvent) {
		switch ev.Name {
		case fyneapp.KeyLeft:
			w.coverflow.ShiftLeft()
		case fyneapp.KeyRight:
			w.coverflow.ShiftRight()
		case fyneapp.KeySpace:
			w.presenter.OnTogglePlayPause()
		}
	})
}

// ShowAndRun shows the window, starts the visualizer and runs the
// application until the window closes.
func (w *MainWindow) ShowAndRun() {
	w.visualizer.Start()
	w.window.ShowAndRun()
}

// SetOnBeforeClose registers fn to run when the window is about to close.
func (w *MainWindow) SetOnBeforeClose(fn func()) {
	w.window.SetCloseIntercept(func() {
		fn()
		w.Close()
	})
}

// Close stops the visualizer and closes the window.
// It's safe to call multiple times (idempotent).
func (w *MainWindow) Close() {
	w.closeOnce.Do(func() {
		if w.visualizer != nil {
			w.visualizer.Stop()
		}
		w.window.Close()
	})
}

// GetWindow returns the underlying Fyne window.
func (w *MainWindow) GetWindow() fyneapp.Window {
	return w.window
}

// ports.View implementation

// SetPanels replaces the panel lists and selects the active entries.
func (w *MainWindow) SetPanels(panels domain.Panels) {
	fyneapp.Do(func() {
		w.panelItems = [3][]string{panels.Genres, panels.Artists, panels.Albums}
		selected := [3]string{panels.Selection.Genre, panels.Selection.Artist, panels.Selection.Album}

		w.syncingPanel = true
		defer func() { w.syncingPanel = false }()
		for i, list := range w.panels {
			list.UnselectAll()
			list.Refresh()
			value := selected[i]
			if value == "" {
				value = domain.PanelAll
			}
			for id, item := range w.panelItems[i] {
				if item == value {
					list.Select(id)
					break
				}
			}
		}
	})
}

// SetTable replaces the rows of the library table.
func (w *MainWindow) SetTable(rows []domain.Song, checked map[string]bool) {
	fyneapp.Do(func() {
		w.library.setRows(rows, checked)
		w.selectAll.OnChanged = nil
		w.selectAll.SetChecked(w.library.allChecked())
		w.selectAll.OnChanged = w.presenter.OnSelectAll
	})
}

// SetPlaylist replaces the rows of the playlist tab.
func (w *MainWindow) SetPlaylist(songs []domain.Song) {
	fyneapp.Do(func() {
		w.playlist.setRows(songs, nil)
		w.tabs.Items[1].Text = fmt.Sprintf("Playlist (%d)", len(songs))
		w.tabs.Refresh()
	})
}

// SetAlbums replaces the coverflow contents.
func (w *MainWindow) SetAlbums(albums []domain.AlbumEntry) {
	fyneapp.Do(func() {
		w.coverflow.SetAlbums(albums)
		if len(albums) == 0 {
			w.albumLabel.SetText("")
		}
	})
}

// SetNowPlaying shows the current song and its artwork.
func (w *MainWindow) SetNowPlaying(song *domain.Song, cover []byte) {
	var img image.Image = res.DefaultCover()
	if c := decodeCover(cover); c != nil {
		img = c
	}

	fyneapp.Do(func() {
		w.nowCover.Image = img
		w.nowCover.Refresh()
		if song == nil {
			w.nowPlaying.SetText("")
			w.library.setPlaying("")
			w.playlist.setPlaying("")
			return
		}
		w.nowPlaying.SetText(fmt.Sprintf("%s - %s (%s)", song.Artist, song.Title, song.Album))
		w.library.setPlaying(song.Path)
		w.playlist.setPlaying(song.Path)
	})
}

// SetPlayState highlights the play or pause button.
func (w *MainWindow) SetPlayState(playing bool) {
	fyneapp.Do(func() {
		w.playButton.Importance = widget.MediumImportance
		w.pauseButton.Importance = widget.MediumImportance
		if playing {
			w.playButton.Importance = widget.HighImportance
		} else {
			w.pauseButton.Importance = widget.HighImportance
		}
		w.playButton.Refresh()
		w.pauseButton.Refresh()
	})
}

// SetProgress updates the time slider and label.
func (w *MainWindow) SetProgress(position, duration time.Duration) {
	fyneapp.Do(func() {
		w.timeLabel.SetText(timeText(position, duration))
		if w.seeking {
			return
		}
		w.timeSlider.Max = max(duration.Seconds(), 1)
		w.timeSlider.Value = position.Seconds()
		w.timeSlider.Refresh()
	})
}

// timeText renders "M:SS / M:SS".
func timeText(position, duration time.Duration) string {
	return domain.FormatDuration(position) + " / " + domain.FormatDuration(duration)
}

// SetVolume updates the volume slider.
func (w *MainWindow) SetVolume(volume float64) {
	fyneapp.Do(func() {
		// Convert from 0.0-1.0 to 0-100
		w.volume.Value = volume * 100.0
		w.volume.Refresh()
	})
}

// SetPlayMode highlights the repeat or shuffle button.
func (w *MainWindow) SetPlayMode(mode domain.PlayMode) {
	fyneapp.Do(func() {
		w.mode = mode
		w.repeat.Importance = widget.MediumImportance
		w.shuffle.Importance = widget.MediumImportance
		switch mode {
		case domain.PlayModeRepeat:
			w.repeat.Importance = widget.HighImportance
		case domain.PlayModeShuffle:
			w.shuffle.Importance = widget.HighImportance
		}
		w.repeat.Refresh()
		w.shuffle.Refresh()
	})
}

// SetAppearance applies night mode and the slider colour.
func (w *MainWindow) SetAppearance(nightMode bool, sliderColor int) {
	fyneapp.Do(func() {
		w.app.Settings().SetTheme(newPlayerTheme(nightMode, sliderColor))
		if w.nightItem != nil {
			w.nightItem.Checked = nightMode
			w.mainMenu.Refresh()
		}
	})
}

// SetVisualizerSpeed changes how often the bars get new targets.
func (w *MainWindow) SetVisualizerSpeed(speed domain.VisualizerSpeed) {
	w.visualizer.SetInterval(speed.Interval())
	fyneapp.Do(func() {
		for s, item := range w.speedItems {
			item.Checked = s == speed
		}
		w.mainMenu.Refresh()
	})
}

// ShowScanProgress shows or updates the scan dialog.
func (w *MainWindow) ShowScanProgress(progress domain.ScanProgress) {
	fyneapp.Do(func() { w.scanDialog.Update(progress) })
}

// HideScanProgress closes the scan dialog.
func (w *MainWindow) HideScanProgress() {
	fyneapp.Do(w.scanDialog.Hide)
}

// ShowNotification displays a system notification.
func (w *MainWindow) ShowNotification(title, message string) {
	w.app.SendNotification(fyneapp.NewNotification(title, message))
}

// ShowError displays an error dialog.
func (w *MainWindow) ShowError(title string, err error) {
	fyneapp.Do(func() {
		dialog.ShowError(fmt.Errorf("%s: %w", title, err), w.window)
	})
}

// Verify View implementation
var _ ports.View = (*MainWindow)(nil)

// Package ports define the UI interface for view abstraction.
// This interface allows the presenter to update the UI without depending on Fyne directly.
package ports

import (
	"time"

	"github.com/tejashwikalptaru/qtunes/internal/domain"
)

// View is the passive window driven by the presenter.
//
// The presenter receives events from the event bus and calls these methods
// to update the window. Methods may be called from any goroutine; the
// implementation is responsible for moving the work onto the UI thread.
type View interface {
	// SetPanels replaces the Genre, Artist and Album panel lists and marks the selection.
	SetPanels(panels domain.Panels)

	// SetTable replaces the rows of the song table. checked holds the paths
	// of songs in the playlist.
	SetTable(rows []domain.Song, checked map[string]bool)

	// SetPlaylist replaces the rows of the playlist tab.
	SetPlaylist(songs []domain.Song)

	// SetAlbums replaces the coverflow contents.
	SetAlbums(albums []domain.AlbumEntry)

	// SetNowPlaying shows the current song and its cover art.
	// A nil song clears the display; nil cover means the default cover.
	SetNowPlaying(song *domain.Song, cover []byte)

	// SetPlayState updates the play and pause buttons.
	SetPlayState(playing bool)

	// SetProgress updates the time slider and the "M:SS / M:SS" label.
	SetProgress(position, duration time.Duration)

	// SetVolume updates the volume slider (0.0 to 1.0).
	SetVolume(volume float64)

	// SetPlayMode updates the repeat and shuffle toggles.
	SetPlayMode(mode domain.PlayMode)

	// SetAppearance applies night mode and the slider colour index.
	SetAppearance(nightMode bool, sliderColor int)

	// SetVisualizerSpeed changes the visualizer update interval.
	SetVisualizerSpeed(speed domain.VisualizerSpeed)

	// ShowScanProgress shows or updates the scan dialog.
	ShowScanProgress(progress domain.ScanProgress)

	// HideScanProgress closes the scan dialog.
	HideScanProgress()

	// ShowNotification displays a short message.
	ShowNotification(title, message string)

	// ShowError displays an error dialog.
	ShowError(title string, err error)
}

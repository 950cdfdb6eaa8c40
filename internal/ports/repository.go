// Package ports define repository interfaces for data persistence abstraction.
// These interfaces enable the repository pattern and allow swapping persistence mechanisms.
package ports

import (
	"github.com/tejashwikalptaru/qtunes/internal/domain"
)

// PlaylistRepository persists the checked songs that make up the playlist.
//
// Thread-safety: Implementations must be thread-safe.
type PlaylistRepository interface {
	// SavePlaylist stores the checked song paths in check order.
	SavePlaylist(paths []string) error

	// LoadPlaylist returns the saved paths, or an empty slice if none were saved.
	LoadPlaylist() ([]string, error)

	// SaveLastPlayed stores the path of the most recently played song.
	SaveLastPlayed(path string) error

	// LoadLastPlayed returns the most recently played path, or "".
	LoadLastPlayed() (string, error)

	// Clear removes all saved playlist data.
	Clear() error
}

// LibraryRepository caches the scanned library between runs.
//
// Thread-safety: Implementations must be thread-safe.
type LibraryRepository interface {
	// Save replaces the cached library with songs scanned from root.
	Save(root string, songs []domain.Song) error

	// Load returns the cached root and songs in scan order.
	// An empty cache yields "" and an empty slice.
	Load() (string, []domain.Song, error)

	// Clear removes the cached library.
	Clear() error

	// Close releases the underlying storage.
	Close() error
}

// PreferencesRepository handles the persistence of user preferences.
// This abstracts the Fyne preferences storage.
//
// Thread-safety: Implementations must be thread-safe.
type PreferencesRepository interface {
	// SaveVolume persists the volume level.
	SaveVolume(volume float64) error

	// LoadVolume retrieves the saved volume level.
	// If no volume was saved, returns domain.DefaultVolume.
	LoadVolume() (float64, error)

	// SavePlayMode persists repeat/shuffle state.
	SavePlayMode(mode domain.PlayMode) error

	// LoadPlayMode retrieves the saved play mode, PlayModeNormal by default.
	LoadPlayMode() (domain.PlayMode, error)

	// SaveNightMode persists the night mode switch.
	SaveNightMode(enabled bool) error

	// LoadNightMode retrieves the night mode switch, false by default.
	LoadNightMode() (bool, error)

	// SaveSliderColor persists the index into the slider colour palette.
	SaveSliderColor(index int) error

	// LoadSliderColor retrieves the slider colour index, 0 by default.
	LoadSliderColor() (int, error)

	// SaveVisualizerSpeed persists the visualizer speed preset.
	SaveVisualizerSpeed(speed domain.VisualizerSpeed) error

	// LoadVisualizerSpeed retrieves the speed preset, SpeedNormal by default.
	LoadVisualizerSpeed() (domain.VisualizerSpeed, error)

	// SaveLastFolder persists the most recently loaded music folder.
	SaveLastFolder(path string) error

	// LoadLastFolder retrieves the last music folder, or "".
	LoadLastFolder() (string, error)

	// Clear removes all saved preferences.
	Clear() error
}

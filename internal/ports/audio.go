// Package ports define interfaces for dependency inversion.
// These interfaces allow the core business logic to remain independent of external frameworks.
package ports

import (
	"time"

	"github.com/tejashwikalptaru/qtunes/internal/domain"
)

// AudioEngine is the interface for audio playback engines.
// This abstracts the underlying audio library and allows for testing with mocks.
//
// Implementations must be thread-safe as they may be called from multiple goroutines.
type AudioEngine interface {
	// Lifecycle methods

	// Initialize opens the audio output.
	// sampleRate: Output sample rate in Hz (e.g., 44100 for CD quality)
	// bufferSize: Length of the output buffer; larger values trade latency for fewer underruns
	Initialize(sampleRate int, bufferSize time.Duration) error

	// Shutdown stops every track and releases the audio output.
	Shutdown() error

	// IsInitialized returns true if the engine has been successfully initialized.
	IsInitialized() bool

	// Track loading methods

	// Load opens an audio file and returns a handle to it. The track starts paused.
	Load(filePath string) (domain.TrackHandle, error)

	// Unload releases resources for a previously loaded track.
	Unload(handle domain.TrackHandle) error

	// Playback control methods

	// Play starts or resumes playback of the specified track.
	// A track that reached its end restarts from the beginning.
	Play(handle domain.TrackHandle) error

	// Pause pauses playback of the specified track, keeping its position.
	Pause(handle domain.TrackHandle) error

	// Stop stops playback of the specified track and unloads it.
	Stop(handle domain.TrackHandle) error

	// State query methods

	// Status returns the current playback status of the specified track.
	// A track that played to its end reports StatusStopped.
	Status(handle domain.TrackHandle) (domain.PlaybackStatus, error)

	// Position returns the current playback position within the track.
	Position(handle domain.TrackHandle) (time.Duration, error)

	// Duration returns the total duration of the specified track.
	Duration(handle domain.TrackHandle) (time.Duration, error)

	// Seek sets the playback position. The position must be within [0, Duration].
	Seek(handle domain.TrackHandle, position time.Duration) error

	// Volume control methods

	// SetVolume sets the playback volume from 0.0 (silent) to 1.0 (full volume).
	SetVolume(handle domain.TrackHandle, volume float64) error

	// GetVolume returns the current volume level for the specified track.
	GetVolume(handle domain.TrackHandle) (float64, error)

	// Visualization methods

	// Levels returns the loudness of the most recent output split into bands
	// equal slices, each in [0, 1]. A silent or paused track yields zeros.
	Levels(handle domain.TrackHandle, bands int) ([]float64, error)
}

// TagReader extracts song metadata from audio files.
type TagReader interface {
	// Read returns the song for path. Missing tags become domain.Placeholder;
	// an error is returned only when the file itself cannot be opened.
	Read(path string) (domain.Song, error)

	// CoverArt returns the image data and MIME type for the song at path,
	// falling back to artwork files in the song's folder.
	// Returns domain.ErrNoCoverArt when nothing is found.
	CoverArt(path string) ([]byte, string, error)
}

// Package domain contains core business models and logic with no external dependencies.
// This package defines the fundamental entities of the qTunes music player.
package domain

import (
	"time"
)

// Placeholder is shown for any tag field that could not be read.
const Placeholder = "N/A"

// PanelAll is the first entry of every filter panel and clears that level of filtering.
const PanelAll = "ALL"

// Song is one audio file discovered by a library scan.
// Records are built once during a scan and never mutated in place.
type Song struct {
	// ID is a name-based UUID derived from the file path
	ID string

	// Path is the absolute path to the audio file on the filesystem
	Path string

	Title  string
	Artist string
	Album  string
	Genre  string

	// Track is the track number as text, or Placeholder
	Track string

	// Time is the formatted duration (M:SS), or Placeholder
	Time string

	// Duration is the total length of the track
	Duration time.Duration

	// AlbumID groups songs of the same artist and album
	AlbumID string

	// Size is the file size in bytes
	Size int64

	// Format is the lower-case file extension without the dot
	Format string

	// HasCover reports whether embedded or folder art was found during the scan
	HasCover bool
}

// NewSong returns a song for path with every tag field set to Placeholder.
func NewSong(path string) Song {
	return Song{
		Path:   path,
		Title:  Placeholder,
		Artist: Placeholder,
		Album:  Placeholder,
		Genre:  Placeholder,
		Track:  Placeholder,
		Time:   Placeholder,
	}
}

// Field returns the text shown for the song in the given column.
func (s Song) Field(c Column) string {
	switch c {
	case ColumnTitle:
		return s.Title
	case ColumnTrack:
		return s.Track
	case ColumnTime:
		return s.Time
	case ColumnArtist:
		return s.Artist
	case ColumnAlbum:
		return s.Album
	case ColumnGenre:
		return s.Genre
	case ColumnPath:
		return s.Path
	default:
		return ""
	}
}

// Column identifies a field of the song table.
type Column int

const (
	ColumnTitle Column = iota
	ColumnTrack
	ColumnTime
	ColumnArtist
	ColumnAlbum
	ColumnGenre
	ColumnPath
)

// VisibleColumns are the columns shown in the song and playlist tables, in order.
var VisibleColumns = []Column{ColumnTitle, ColumnTrack, ColumnTime, ColumnArtist, ColumnAlbum, ColumnGenre}

// Header returns the column heading.
func (c Column) Header() string {
	switch c {
	case ColumnTitle:
		return "Name"
	case ColumnTrack:
		return "Track"
	case ColumnTime:
		return "Time"
	case ColumnArtist:
		return "Artist"
	case ColumnAlbum:
		return "Album"
	case ColumnGenre:
		return "Genre"
	case ColumnPath:
		return "Path"
	default:
		return ""
	}
}

// AlbumEntry is one album shown in the coverflow.
type AlbumEntry struct {
	ID     string
	Name   string
	Artist string

	// CoverPath is the first song of the album, used to load its artwork
	CoverPath string
}

// Panel identifies one of the three filter panels.
type Panel int

const (
	PanelGenre Panel = iota
	PanelArtist
	PanelAlbum
)

// Panels holds the contents and current selection of the filter panels.
type Panels struct {
	Genres  []string
	Artists []string
	Albums  []string

	// Selection is the active filter; empty fields mean ALL
	Selection Filter
}

// PlaybackState represents the current state of the music player.
type PlaybackState struct {
	// CurrentSong is the loaded song (nil if none)
	CurrentSong *Song

	// CurrentIndex is the index in the queue (-1 if no song)
	CurrentIndex int

	Status   PlaybackStatus
	Position time.Duration
	Duration time.Duration

	// Volume is the current volume level (0.0 to 1.0)
	Volume float64
}

// PlaybackStatus represents the current playback state.
type PlaybackStatus int

const (
	StatusStopped PlaybackStatus = iota
	StatusPlaying
	StatusPaused
)

// String returns a human-readable representation of the playback status.
func (s PlaybackStatus) String() string {
	switch s {
	case StatusStopped:
		return "stopped"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// PlayMode selects what happens when a song ends.
// Repeat and shuffle are mutually exclusive, so a single value holds both.
type PlayMode int

const (
	PlayModeNormal PlayMode = iota
	PlayModeRepeat
	PlayModeShuffle
)

// String returns the mode name.
func (m PlayMode) String() string {
	switch m {
	case PlayModeRepeat:
		return "repeat"
	case PlayModeShuffle:
		return "shuffle"
	default:
		return "normal"
	}
}

// ParsePlayMode converts a stored name back to a PlayMode. Unknown names map to normal.
func ParsePlayMode(s string) PlayMode {
	switch s {
	case "repeat":
		return PlayModeRepeat
	case "shuffle":
		return PlayModeShuffle
	default:
		return PlayModeNormal
	}
}

// QueueSource tells which table the playback queue follows.
type QueueSource int

const (
	SourceLibrary QueueSource = iota
	SourcePlaylist
)

// String returns the source name.
func (s QueueSource) String() string {
	if s == SourcePlaylist {
		return "playlist"
	}
	return "library"
}

// VisualizerSpeed is how often the bar visualizer picks new bar heights.
type VisualizerSpeed int

const (
	SpeedSlowest VisualizerSpeed = iota
	SpeedSlower
	SpeedNormal
	SpeedFaster
	SpeedFastest
)

// VisualizerSpeeds lists every speed in menu order.
var VisualizerSpeeds = []VisualizerSpeed{SpeedSlowest, SpeedSlower, SpeedNormal, SpeedFaster, SpeedFastest}

// Interval returns the time between new bar heights.
func (v VisualizerSpeed) Interval() time.Duration {
	switch v {
	case SpeedSlowest:
		return time.Second
	case SpeedSlower:
		return 750 * time.Millisecond
	case SpeedFaster:
		return 250 * time.Millisecond
	case SpeedFastest:
		return 100 * time.Millisecond
	default:
		return 500 * time.Millisecond
	}
}

// String returns the lower-case speed name.
func (v VisualizerSpeed) String() string {
	switch v {
	case SpeedSlowest:
		return "slowest"
	case SpeedSlower:
		return "slower"
	case SpeedFaster:
		return "faster"
	case SpeedFastest:
		return "fastest"
	default:
		return "normal"
	}
}

// ParseVisualizerSpeed converts a speed name. The boolean is false for unknown names.
func ParseVisualizerSpeed(s string) (VisualizerSpeed, bool) {
	for _, v := range VisualizerSpeeds {
		if v.String() == s {
			return v, true
		}
	}
	return SpeedNormal, false
}

// Preferences contain user preferences and settings.
type Preferences struct {
	// Volume is the saved volume level (0.0 to 1.0)
	Volume float64

	Mode            PlayMode
	NightMode       bool
	SliderColor     int
	VisualizerSpeed VisualizerSpeed

	// LastFolder is the most recently loaded music folder
	LastFolder string
}

// DefaultVolume is the volume used before any preference is stored.
const DefaultVolume = 0.8

// TrackHandle represents a handle to an audio track in the audio engine.
// This is an opaque identifier used by the audio engine to reference loaded tracks.
type TrackHandle int64

const (
	// InvalidTrackHandle represents an invalid or uninitialized track handle
	InvalidTrackHandle TrackHandle = 0
)

// ScanProgress represents the progress of a music library scan operation.
type ScanProgress struct {
	// CurrentFile is the file currently being scanned
	CurrentFile string

	// FilesScanned is the number of files processed so far
	FilesScanned int

	// TotalFiles is the total number of files to scan
	TotalFiles int
}

// Percentage returns the completion percentage (0-100), or -1 if total is unknown.
func (p ScanProgress) Percentage() float64 {
	if p.TotalFiles <= 0 {
		return -1
	}
	return float64(p.FilesScanned) / float64(p.TotalFiles) * 100.0
}

// ScanSummary totals a finished scan.
type ScanSummary struct {
	Root     string
	Songs    int
	Bytes    int64
	Duration time.Duration
	Elapsed  time.Duration
}

// Summarize totals the songs of a scan.
func Summarize(root string, songs []Song) ScanSummary {
	s := ScanSummary{Root: root, Songs: len(songs)}
	for i := range songs {
		s.Bytes += songs[i].Size
		s.Duration += songs[i].Duration
	}
	return s
}

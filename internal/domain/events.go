// Package domain defines events for the event-driven architecture.
// Events decouple the services from the presenter and the UI.
package domain

import (
	"time"
)

// Event is the base interface for all events in the system.
// All events must implement this interface to be published via the event bus.
type Event interface {
	// Type returns the event type identifier
	Type() EventType

	// Timestamp returns when the event occurred
	Timestamp() time.Time
}

// EventType is a string identifier for different event types.
type EventType string

// Event type constants define all possible events in the system.
const (
	// Playback events
	EventTrackLoaded    EventType = "track.loaded"
	EventTrackStarted   EventType = "track.started"
	EventTrackPaused    EventType = "track.paused"
	EventTrackStopped   EventType = "track.stopped"
	EventTrackCompleted EventType = "track.completed"
	EventTrackProgress  EventType = "track.progress"
	EventTrackError     EventType = "track.error"
	EventAutoNext       EventType = "track.auto_next"

	// Volume events
	EventVolumeChanged EventType = "volume.changed"

	// Playback mode events
	EventPlayModeChanged EventType = "playmode.changed"

	// Queue events
	EventQueueChanged EventType = "queue.changed"

	// Library scanning events
	EventScanStarted   EventType = "scan.started"
	EventScanProgress  EventType = "scan.progress"
	EventScanCompleted EventType = "scan.completed"
	EventScanCancelled EventType = "scan.cancelled"
	EventLibraryLoaded EventType = "library.loaded"

	// View synchronization events
	EventPanelsChanged   EventType = "panels.changed"
	EventTableChanged    EventType = "table.changed"
	EventPlaylistChanged EventType = "playlist.changed"

	// Appearance events
	EventAppearanceChanged      EventType = "appearance.changed"
	EventVisualizerSpeedChanged EventType = "visualizer.speed_changed"
)

// EventHandler is a function that handles events.
type EventHandler func(event Event)

// SubscriptionID uniquely identifies an event subscription.
type SubscriptionID string

// baseEvent provides common event functionality.
// All concrete events should embed this struct.
type baseEvent struct {
	timestamp time.Time
}

// Timestamp returns when the event occurred.
func (e baseEvent) Timestamp() time.Time {
	return e.timestamp
}

func newBaseEvent() baseEvent {
	return baseEvent{timestamp: time.Now()}
}

// TrackLoadedEvent is published when a song is loaded into the audio engine.
type TrackLoadedEvent struct {
	baseEvent
	Song     Song
	Handle   TrackHandle
	Duration time.Duration
	Index    int // Queue index
}

// Type returns the event type.
func (e TrackLoadedEvent) Type() EventType {
	return EventTrackLoaded
}

// NewTrackLoadedEvent creates a new TrackLoadedEvent.
func NewTrackLoadedEvent(song Song, handle TrackHandle, duration time.Duration, index int) TrackLoadedEvent {
	return TrackLoadedEvent{
		baseEvent: newBaseEvent(),
		Song:      song,
		Handle:    handle,
		Duration:  duration,
		Index:     index,
	}
}

// TrackStartedEvent is published when playback starts or resumes.
type TrackStartedEvent struct {
	baseEvent
	Song Song
}

// Type returns the event type.
func (e TrackStartedEvent) Type() EventType {
	return EventTrackStarted
}

// NewTrackStartedEvent creates a new TrackStartedEvent.
func NewTrackStartedEvent(song Song) TrackStartedEvent {
	return TrackStartedEvent{
		baseEvent: newBaseEvent(),
		Song:      song,
	}
}

// TrackPausedEvent is published when playback is paused.
type TrackPausedEvent struct {
	baseEvent
	Song     Song
	Position time.Duration
}

// Type returns the event type.
func (e TrackPausedEvent) Type() EventType {
	return EventTrackPaused
}

// NewTrackPausedEvent creates a new TrackPausedEvent.
func NewTrackPausedEvent(song Song, position time.Duration) TrackPausedEvent {
	return TrackPausedEvent{
		baseEvent: newBaseEvent(),
		Song:      song,
		Position:  position,
	}
}

// TrackStoppedEvent is published when playback is stopped.
type TrackStoppedEvent struct {
	baseEvent
	Song Song
}

// Type returns the event type.
func (e TrackStoppedEvent) Type() EventType {
	return EventTrackStopped
}

// NewTrackStoppedEvent creates a new TrackStoppedEvent.
func NewTrackStoppedEvent(song Song) TrackStoppedEvent {
	return TrackStoppedEvent{
		baseEvent: newBaseEvent(),
		Song:      song,
	}
}

// TrackCompletedEvent is published when a song reaches its end.
type TrackCompletedEvent struct {
	baseEvent
	Song Song
}

// Type returns the event type.
func (e TrackCompletedEvent) Type() EventType {
	return EventTrackCompleted
}

// NewTrackCompletedEvent creates a new TrackCompletedEvent.
func NewTrackCompletedEvent(song Song) TrackCompletedEvent {
	return TrackCompletedEvent{
		baseEvent: newBaseEvent(),
		Song:      song,
	}
}

// TrackProgressEvent is published periodically during playback.
type TrackProgressEvent struct {
	baseEvent
	Position time.Duration
	Duration time.Duration
}

// Type returns the event type.
func (e TrackProgressEvent) Type() EventType {
	return EventTrackProgress
}

// NewTrackProgressEvent creates a new TrackProgressEvent.
func NewTrackProgressEvent(position, duration time.Duration) TrackProgressEvent {
	return TrackProgressEvent{
		baseEvent: newBaseEvent(),
		Position:  position,
		Duration:  duration,
	}
}

// TrackErrorEvent is published when a song fails to load or play.
type TrackErrorEvent struct {
	baseEvent
	Song  Song
	Error error
}

// Type returns the event type.
func (e TrackErrorEvent) Type() EventType {
	return EventTrackError
}

// NewTrackErrorEvent creates a new TrackErrorEvent.
func NewTrackErrorEvent(song Song, err error) TrackErrorEvent {
	return TrackErrorEvent{
		baseEvent: newBaseEvent(),
		Song:      song,
		Error:     err,
	}
}

// AutoNextEvent is published when a song ends on its own and the queue must decide what plays next.
type AutoNextEvent struct {
	baseEvent
	Song  Song
	Index int
}

// Type returns the event type.
func (e AutoNextEvent) Type() EventType {
	return EventAutoNext
}

// NewAutoNextEvent creates a new AutoNextEvent.
func NewAutoNextEvent(song Song, index int) AutoNextEvent {
	return AutoNextEvent{
		baseEvent: newBaseEvent(),
		Song:      song,
		Index:     index,
	}
}

// VolumeChangedEvent is published when the volume changes.
type VolumeChangedEvent struct {
	baseEvent
	Volume float64
}

// Type returns the event type.
func (e VolumeChangedEvent) Type() EventType {
	return EventVolumeChanged
}

// NewVolumeChangedEvent creates a new VolumeChangedEvent.
func NewVolumeChangedEvent(volume float64) VolumeChangedEvent {
	return VolumeChangedEvent{
		baseEvent: newBaseEvent(),
		Volume:    volume,
	}
}

// PlayModeChangedEvent is published when repeat or shuffle is toggled.
type PlayModeChangedEvent struct {
	baseEvent
	Mode PlayMode
}

// Type returns the event type.
func (e PlayModeChangedEvent) Type() EventType {
	return EventPlayModeChanged
}

// NewPlayModeChangedEvent creates a new PlayModeChangedEvent.
func NewPlayModeChangedEvent(mode PlayMode) PlayModeChangedEvent {
	return PlayModeChangedEvent{
		baseEvent: newBaseEvent(),
		Mode:      mode,
	}
}

// QueueChangedEvent is published when the playback queue is replaced or its position moves.
type QueueChangedEvent struct {
	baseEvent
	Queue  []Song
	Index  int
	Source QueueSource
}

// Type returns the event type.
func (e QueueChangedEvent) Type() EventType {
	return EventQueueChanged
}

// NewQueueChangedEvent creates a new QueueChangedEvent.
func NewQueueChangedEvent(queue []Song, index int, source QueueSource) QueueChangedEvent {
	return QueueChangedEvent{
		baseEvent: newBaseEvent(),
		Queue:     queue,
		Index:     index,
		Source:    source,
	}
}

// ScanStartedEvent is published when a library scan starts.
type ScanStartedEvent struct {
	baseEvent
	Path string
}

// Type returns the event type.
func (e ScanStartedEvent) Type() EventType {
	return EventScanStarted
}

// NewScanStartedEvent creates a new ScanStartedEvent.
func NewScanStartedEvent(path string) ScanStartedEvent {
	return ScanStartedEvent{
		baseEvent: newBaseEvent(),
		Path:      path,
	}
}

// ScanProgressEvent is published for every file read during a scan.
type ScanProgressEvent struct {
	baseEvent
	Progress ScanProgress
}

// Type returns the event type.
func (e ScanProgressEvent) Type() EventType {
	return EventScanProgress
}

// NewScanProgressEvent creates a new ScanProgressEvent.
func NewScanProgressEvent(progress ScanProgress) ScanProgressEvent {
	return ScanProgressEvent{
		baseEvent: newBaseEvent(),
		Progress:  progress,
	}
}

// ScanCompletedEvent is published when a scan finishes.
type ScanCompletedEvent struct {
	baseEvent
	Summary ScanSummary
}

// Type returns the event type.
func (e ScanCompletedEvent) Type() EventType {
	return EventScanCompleted
}

// NewScanCompletedEvent creates a new ScanCompletedEvent.
func NewScanCompletedEvent(summary ScanSummary) ScanCompletedEvent {
	return ScanCompletedEvent{
		baseEvent: newBaseEvent(),
		Summary:   summary,
	}
}

// ScanCancelledEvent is published when a scan is cancelled.
type ScanCancelledEvent struct {
	baseEvent
	Reason string
}

// Type returns the event type.
func (e ScanCancelledEvent) Type() EventType {
	return EventScanCancelled
}

// NewScanCancelledEvent creates a new ScanCancelledEvent.
func NewScanCancelledEvent(reason string) ScanCancelledEvent {
	return ScanCancelledEvent{
		baseEvent: newBaseEvent(),
		Reason:    reason,
	}
}

// LibraryLoadedEvent is published when a scan or the library cache provides a new song list.
type LibraryLoadedEvent struct {
	baseEvent
	Root  string
	Songs []Song
}

// Type returns the event type.
func (e LibraryLoadedEvent) Type() EventType {
	return EventLibraryLoaded
}

// NewLibraryLoadedEvent creates a new LibraryLoadedEvent.
func NewLibraryLoadedEvent(root string, songs []Song) LibraryLoadedEvent {
	return LibraryLoadedEvent{
		baseEvent: newBaseEvent(),
		Root:      root,
		Songs:     songs,
	}
}

// PanelsChangedEvent is published when the genre, artist or album panels are rebuilt.
type PanelsChangedEvent struct {
	baseEvent
	Panels Panels
}

// Type returns the event type.
func (e PanelsChangedEvent) Type() EventType {
	return EventPanelsChanged
}

// NewPanelsChangedEvent creates a new PanelsChangedEvent.
func NewPanelsChangedEvent(panels Panels) PanelsChangedEvent {
	return PanelsChangedEvent{
		baseEvent: newBaseEvent(),
		Panels:    panels,
	}
}

// TableChangedEvent is published when the visible song table changes.
// Checked holds the paths of every checked song.
type TableChangedEvent struct {
	baseEvent
	Rows    []Song
	Checked map[string]bool
}

// Type returns the event type.
func (e TableChangedEvent) Type() EventType {
	return EventTableChanged
}

// NewTableChangedEvent creates a new TableChangedEvent.
func NewTableChangedEvent(rows []Song, checked map[string]bool) TableChangedEvent {
	return TableChangedEvent{
		baseEvent: newBaseEvent(),
		Rows:      rows,
		Checked:   checked,
	}
}

// PlaylistChangedEvent is published when songs are checked or unchecked.
type PlaylistChangedEvent struct {
	baseEvent
	Songs []Song
}

// Type returns the event type.
func (e PlaylistChangedEvent) Type() EventType {
	return EventPlaylistChanged
}

// NewPlaylistChangedEvent creates a new PlaylistChangedEvent.
func NewPlaylistChangedEvent(songs []Song) PlaylistChangedEvent {
	return PlaylistChangedEvent{
		baseEvent: newBaseEvent(),
		Songs:     songs,
	}
}

// AppearanceChangedEvent is published when night mode or the slider colour changes.
type AppearanceChangedEvent struct {
	baseEvent
	NightMode   bool
	SliderColor int
}

// Type returns the event type.
func (e AppearanceChangedEvent) Type() EventType {
	return EventAppearanceChanged
}

// NewAppearanceChangedEvent creates a new AppearanceChangedEvent.
func NewAppearanceChangedEvent(nightMode bool, sliderColor int) AppearanceChangedEvent {
	return AppearanceChangedEvent{
		baseEvent:   newBaseEvent(),
		NightMode:   nightMode,
		SliderColor: sliderColor,
	}
}

// VisualizerSpeedChangedEvent is published when a playback speed preset is chosen.
type VisualizerSpeedChangedEvent struct {
	baseEvent
	Speed VisualizerSpeed
}

// Type returns the event type.
func (e VisualizerSpeedChangedEvent) Type() EventType {
	return EventVisualizerSpeedChanged
}

// NewVisualizerSpeedChangedEvent creates a new VisualizerSpeedChangedEvent.
func NewVisualizerSpeedChangedEvent(speed VisualizerSpeed) VisualizerSpeedChangedEvent {
	return VisualizerSpeedChangedEvent{
		baseEvent: newBaseEvent(),
		Speed:     speed,
	}
}

package service

import (
	"log/slog"
	"sync"
	"time"

	"github.com/tejashwikalptaru/qtunes/internal/domain"
	"github.com/tejashwikalptaru/qtunes/internal/ports"
)

// DefaultUpdateInterval is how often progress events are published.
const DefaultUpdateInterval = 100 * time.Millisecond

// PlaybackService orchestrates audio playback of a single loaded song.
// The queue lives in PlaylistService; when a song plays to its end this
// service publishes AutoNextEvent and lets the queue decide what follows.
//
// All operations are thread-safe via sync.RWMutex. Events are published
// with the lock released so handlers may call back into the service.
type PlaybackService struct {
	// Dependencies (injected)
	logger *slog.Logger
	engine ports.AudioEngine
	bus    ports.EventBus

	// State
	currentSong    *domain.Song
	lastSong       *domain.Song // kept after Stop so Play can restart it
	currentHandle  domain.TrackHandle
	currentIndex   int // Index in the queue (managed by PlaylistService)
	volume         float64
	updateInterval time.Duration

	// Concurrency control
	mu            sync.RWMutex
	stopUpdate    chan struct{}
	updateRunning bool
	updateWg      sync.WaitGroup
	manualStop    bool // True if the user explicitly stopped playback
	hasPlayed     bool // True if the current song has been played
}

// NewPlaybackService creates a playback service and starts its update loop.
func NewPlaybackService(
	logger *slog.Logger,
	engine ports.AudioEngine,
	bus ports.EventBus,
	volume float64,
	updateInterval time.Duration,
) *PlaybackService {
	if volume < 0 || volume > 1 {
		volume = domain.DefaultVolume
	}
	if updateInterval <= 0 {
		updateInterval = DefaultUpdateInterval
	}
	service := &PlaybackService{
		logger:         logger,
		engine:         engine,
		bus:            bus,
		currentHandle:  domain.InvalidTrackHandle,
		currentIndex:   -1,
		volume:         volume,
		updateInterval: updateInterval,
		stopUpdate:     make(chan struct{}),
	}

	logger.Debug("playback service initialized", slog.Float64("volume", volume))
	service.startUpdateRoutine()

	return service
}

// LoadSong loads a song for playback, replacing the current one.
func (s *PlaybackService) LoadSong(song domain.Song, index int) error {
	s.mu.Lock()

	s.logger.Debug("loading song", slog.String("path", song.Path))

	var events []domain.Event
	if s.currentHandle != domain.InvalidTrackHandle {
		if ev, err := s.stopLocked(); err != nil {
			s.logger.Warn("failed to stop current song", slog.Any("error", err))
		} else if ev != nil {
			events = append(events, ev)
		}
	}

	handle, err := s.engine.Load(song.Path)
	if err != nil {
		s.mu.Unlock()
		s.logger.Warn("failed to load song", slog.String("path", song.Path), slog.Any("error", err))
		s.publish(append(events, domain.NewTrackErrorEvent(song, err))...)
		return err
	}

	if err := s.engine.SetVolume(handle, s.volume); err != nil {
		s.unloadQuietly(handle)
		s.mu.Unlock()
		s.publish(events...)
		return err
	}

	duration, err := s.engine.Duration(handle)
	if err != nil {
		s.unloadQuietly(handle)
		s.mu.Unlock()
		s.publish(events...)
		return err
	}

	s.currentSong = &song
	s.lastSong = &song
	s.currentHandle = handle
	s.currentIndex = index
	s.manualStop = false
	s.hasPlayed = false
	s.mu.Unlock()

	s.publish(append(events, domain.NewTrackLoadedEvent(song, handle, duration, index))...)
	return nil
}

func (s *PlaybackService) unloadQuietly(handle domain.TrackHandle) {
	if err := s.engine.Unload(handle); err != nil {
		s.logger.Warn("failed to unload song", slog.Any("error", err))
	}
}

// Play starts or resumes playback. After Stop it reloads the last song.
func (s *PlaybackService) Play() error {
	s.mu.RLock()
	handle := s.currentHandle
	last := s.lastSong
	index := s.currentIndex
	s.mu.RUnlock()

	if handle == domain.InvalidTrackHandle {
		if last == nil {
			return domain.ErrNoTrackLoaded
		}
		if err := s.LoadSong(*last, index); err != nil {
			return err
		}
	}

	s.mu.Lock()
	if s.currentHandle == domain.InvalidTrackHandle {
		s.mu.Unlock()
		return domain.ErrNoTrackLoaded
	}

	status, err := s.engine.Status(s.currentHandle)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if status == domain.StatusPlaying {
		s.mu.Unlock()
		return nil
	}

	if err := s.engine.Play(s.currentHandle); err != nil {
		s.mu.Unlock()
		return err
	}
	s.manualStop = false
	s.hasPlayed = true
	song := *s.currentSong
	s.mu.Unlock()

	s.logger.Debug("playing", slog.String("path", song.Path))
	s.publish(domain.NewTrackStartedEvent(song))
	return nil
}

// Pause pauses playback of the current song.
func (s *PlaybackService) Pause() error {
	s.mu.Lock()

	if s.currentHandle == domain.InvalidTrackHandle {
		s.mu.Unlock()
		return domain.ErrNoTrackLoaded
	}

	status, err := s.engine.Status(s.currentHandle)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if status != domain.StatusPlaying {
		s.mu.Unlock()
		return nil
	}

	position, err := s.engine.Position(s.currentHandle)
	if err != nil {
		position = 0
	}
	if err := s.engine.Pause(s.currentHandle); err != nil {
		s.mu.Unlock()
		return err
	}
	song := *s.currentSong
	s.mu.Unlock()

	s.publish(domain.NewTrackPausedEvent(song, position))
	return nil
}

// TogglePlayPause pauses a playing song and plays anything else.
func (s *PlaybackService) TogglePlayPause() error {
	if s.GetState().Status == domain.StatusPlaying {
		return s.Pause()
	}
	return s.Play()
}

// Stop stops playback and unloads the current song.
func (s *PlaybackService) Stop() error {
	s.mu.Lock()
	ev, err := s.stopLocked()
	s.mu.Unlock()

	if ev != nil {
		s.publish(ev)
	}
	return err
}

// stopLocked stops the current song; the caller holds the write lock and
// publishes the returned event after unlocking.
func (s *PlaybackService) stopLocked() (domain.Event, error) {
	if s.currentHandle == domain.InvalidTrackHandle {
		return nil, nil
	}

	s.manualStop = true
	s.hasPlayed = false
	song := s.currentSong

	err := s.engine.Stop(s.currentHandle)
	s.currentHandle = domain.InvalidTrackHandle
	s.currentSong = nil
	if err != nil {
		return nil, err
	}

	if song != nil {
		return domain.NewTrackStoppedEvent(*song), nil
	}
	return nil, nil
}

// SetVolume sets the playback volume (0.0 to 1.0).
func (s *PlaybackService) SetVolume(volume float64) error {
	if volume < 0.0 || volume > 1.0 {
		return domain.ErrInvalidVolume
	}

	s.mu.Lock()
	s.volume = volume
	if s.currentHandle != domain.InvalidTrackHandle {
		if err := s.engine.SetVolume(s.currentHandle, volume); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	s.mu.Unlock()

	s.publish(domain.NewVolumeChangedEvent(volume))
	return nil
}

// GetVolume returns the current volume (0.0 to 1.0).
func (s *PlaybackService) GetVolume() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.volume
}

// Seek sets the playback position.
func (s *PlaybackService) Seek(position time.Duration) error {
	s.mu.Lock()

	if s.currentHandle == domain.InvalidTrackHandle {
		s.mu.Unlock()
		return domain.ErrNoTrackLoaded
	}

	duration, err := s.engine.Duration(s.currentHandle)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if position < 0 || position > duration {
		s.mu.Unlock()
		return domain.ErrInvalidPosition
	}

	if err := s.engine.Seek(s.currentHandle, position); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.publish(domain.NewTrackProgressEvent(position, duration))
	return nil
}

// Levels returns per-band magnitudes of the playing audio in 0..1.
// Without a loaded song every band is zero.
func (s *PlaybackService) Levels(bands int) []float64 {
	s.mu.RLock()
	handle := s.currentHandle
	s.mu.RUnlock()

	if handle != domain.InvalidTrackHandle {
		if levels, err := s.engine.Levels(handle, bands); err == nil {
			return levels
		}
	}
	return make([]float64, max(bands, 0))
}

// GetState returns the current playback state.
func (s *PlaybackService) GetState() domain.PlaybackState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := domain.PlaybackState{
		CurrentIndex: s.currentIndex,
		Volume:       s.volume,
		Status:       domain.StatusStopped,
	}

	if s.currentSong != nil {
		song := *s.currentSong
		state.CurrentSong = &song
	}

	if s.currentHandle != domain.InvalidTrackHandle {
		if status, err := s.engine.Status(s.currentHandle); err == nil {
			state.Status = status
		}
		if position, err := s.engine.Position(s.currentHandle); err == nil {
			state.Position = position
		}
		if duration, err := s.engine.Duration(s.currentHandle); err == nil {
			state.Duration = duration
		}
	}

	return state
}

// Shutdown stops the update loop and the current song.
func (s *PlaybackService) Shutdown() error {
	s.mu.Lock()
	if s.updateRunning {
		close(s.stopUpdate)
		s.updateRunning = false
	}
	s.mu.Unlock()

	// Wait with the lock released; the loop may be waiting for it.
	s.updateWg.Wait()

	return s.Stop()
}

func (s *PlaybackService) publish(events ...domain.Event) {
	for _, e := range events {
		s.bus.Publish(e)
	}
}

// startUpdateRoutine starts a goroutine that periodically publishes progress events.
func (s *PlaybackService) startUpdateRoutine() {
	s.mu.Lock()
	if s.updateRunning {
		s.mu.Unlock()
		return
	}
	s.updateRunning = true
	s.updateWg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.updateWg.Done()
		ticker := time.NewTicker(s.updateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopUpdate:
				return
			case <-ticker.C:
				s.publishProgressUpdate()
			}
		}
	}()
}

// publishProgressUpdate publishes progress for a loaded song and detects
// when it has played to its end.
func (s *PlaybackService) publishProgressUpdate() {
	s.mu.Lock()

	if s.currentHandle == domain.InvalidTrackHandle || s.currentSong == nil {
		s.mu.Unlock()
		return
	}

	status, err := s.engine.Status(s.currentHandle)
	if err != nil {
		s.mu.Unlock()
		return
	}
	position, err := s.engine.Position(s.currentHandle)
	if err != nil {
		s.mu.Unlock()
		return
	}
	duration, err := s.engine.Duration(s.currentHandle)
	if err != nil {
		s.mu.Unlock()
		return
	}

	finished := status == domain.StatusStopped && !s.manualStop && s.hasPlayed
	song := *s.currentSong
	index := s.currentIndex
	if finished {
		// Fire once per play.
		s.hasPlayed = false
	}
	s.mu.Unlock()

	s.bus.Publish(domain.NewTrackProgressEvent(position, duration))

	if finished {
		s.logger.Debug("song finished", slog.String("path", song.Path))
		s.bus.Publish(domain.NewTrackCompletedEvent(song))
		s.bus.Publish(domain.NewAutoNextEvent(song, index))
	}
}

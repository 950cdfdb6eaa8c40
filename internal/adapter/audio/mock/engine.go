// Package mock provides an in-memory AudioEngine for tests.
// It tracks status, position and volume without producing sound.
package mock

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/tejashwikalptaru/qtunes/internal/domain"
	"github.com/tejashwikalptaru/qtunes/internal/ports"
)

// DefaultDuration is the length reported for files without an explicit duration.
const DefaultDuration = 3 * time.Minute

// Engine is a mock implementation of the AudioEngine interface.
//
// Thread-safety: This implementation is thread-safe.
type Engine struct {
	logger *slog.Logger

	initialized bool
	sampleRate  int
	bufferSize  time.Duration

	tracks     map[domain.TrackHandle]*mockTrack
	nextHandle domain.TrackHandle
	durations  map[string]time.Duration
	loadCalls  []string
	mu         sync.RWMutex

	failInitialize bool
	failLoad       bool
	failPlay       bool
}

type mockTrack struct {
	filePath string
	duration time.Duration
	position time.Duration
	volume   float64
	status   domain.PlaybackStatus
}

// NewEngine creates a new mock audio engine.
func NewEngine() *Engine {
	return &Engine{
		tracks:     make(map[domain.TrackHandle]*mockTrack),
		durations:  make(map[string]time.Duration),
		nextHandle: 1,
	}
}

// SetLogger sets the logger used to trace calls.
func (m *Engine) SetLogger(logger *slog.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = logger
}

// SetFailInitialize configures the mock to fail initialization.
func (m *Engine) SetFailInitialize(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failInitialize = fail
}

// SetFailLoad configures the mock to fail loading tracks.
func (m *Engine) SetFailLoad(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failLoad = fail
}

// SetFailPlay configures the mock to fail playback.
func (m *Engine) SetFailPlay(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failPlay = fail
}

// SetDuration sets the duration reported for tracks loaded from path.
func (m *Engine) SetDuration(path string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.durations[path] = d
}

// Initialize marks the engine ready.
func (m *Engine) Initialize(sampleRate int, bufferSize time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failInitialize {
		return domain.NewAudioEngineError("initialize", "", "mock initialization failed", nil)
	}
	if m.initialized {
		return domain.ErrAlreadyInitialized
	}

	m.initialized = true
	m.sampleRate = sampleRate
	m.bufferSize = bufferSize
	return nil
}

// Shutdown drops every track.
func (m *Engine) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return domain.ErrNotInitialized
	}
	m.initialized = false
	m.tracks = make(map[domain.TrackHandle]*mockTrack)
	return nil
}

// IsInitialized returns true if the engine is initialized.
func (m *Engine) IsInitialized() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.initialized
}

// SampleRate returns the rate passed to Initialize.
func (m *Engine) SampleRate() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sampleRate
}

// Load registers a paused track for filePath.
func (m *Engine) Load(filePath string) (domain.TrackHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return domain.InvalidTrackHandle, domain.ErrNotInitialized
	}
	m.loadCalls = append(m.loadCalls, filePath)
	if m.failLoad {
		return domain.InvalidTrackHandle, domain.NewAudioEngineError("load", filePath, "mock load failed", nil)
	}
	if filePath == "" {
		return domain.InvalidTrackHandle, domain.ErrFileNotFound
	}

	duration, ok := m.durations[filePath]
	if !ok {
		duration = DefaultDuration
	}

	handle := m.nextHandle
	m.nextHandle++
	m.tracks[handle] = &mockTrack{
		filePath: filePath,
		duration: duration,
		volume:   1.0,
		status:   domain.StatusStopped,
	}
	if m.logger != nil {
		m.logger.Debug("mock track loaded", slog.String("path", filePath), slog.Int64("handle", int64(handle)))
	}
	return handle, nil
}

// LoadCalls returns every path passed to Load, in order.
func (m *Engine) LoadCalls() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.loadCalls...)
}

func (m *Engine) track(handle domain.TrackHandle) (*mockTrack, error) {
	if !m.initialized {
		return nil, domain.ErrNotInitialized
	}
	t, ok := m.tracks[handle]
	if !ok {
		return nil, domain.ErrInvalidTrackHandle
	}
	return t, nil
}

// Unload forgets a track.
func (m *Engine) Unload(handle domain.TrackHandle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.track(handle); err != nil {
		return err
	}
	delete(m.tracks, handle)
	return nil
}

// Play starts or resumes playback. A finished track restarts from zero.
func (m *Engine) Play(handle domain.TrackHandle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failPlay {
		return domain.NewAudioEngineError("play", "", "mock play failed", nil)
	}
	t, err := m.track(handle)
	if err != nil {
		return err
	}
	if t.status == domain.StatusStopped && t.position >= t.duration {
		t.position = 0
	}
	t.status = domain.StatusPlaying
	return nil
}

// Pause pauses a playing track.
func (m *Engine) Pause(handle domain.TrackHandle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.track(handle)
	if err != nil {
		return err
	}
	if t.status == domain.StatusPlaying {
		t.status = domain.StatusPaused
	}
	return nil
}

// Stop stops and unloads a track.
func (m *Engine) Stop(handle domain.TrackHandle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.track(handle); err != nil {
		return err
	}
	delete(m.tracks, handle)
	return nil
}

// Status returns the playback status.
func (m *Engine) Status(handle domain.TrackHandle) (domain.PlaybackStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, err := m.track(handle)
	if err != nil {
		return domain.StatusStopped, err
	}
	return t.status, nil
}

// Position returns the current playback position.
func (m *Engine) Position(handle domain.TrackHandle) (time.Duration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, err := m.track(handle)
	if err != nil {
		return 0, err
	}
	return t.position, nil
}

// Duration returns the total track duration.
func (m *Engine) Duration(handle domain.TrackHandle) (time.Duration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, err := m.track(handle)
	if err != nil {
		return 0, err
	}
	return t.duration, nil
}

// Seek sets the playback position.
func (m *Engine) Seek(handle domain.TrackHandle, position time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.track(handle)
	if err != nil {
		return err
	}
	if position < 0 || position > t.duration {
		return domain.ErrInvalidPosition
	}
	t.position = position
	return nil
}

// SetVolume sets the playback volume.
func (m *Engine) SetVolume(handle domain.TrackHandle, volume float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, err := m.track(handle)
	if err != nil {
		return err
	}
	if volume < 0.0 || volume > 1.0 {
		return domain.ErrInvalidVolume
	}
	t.volume = volume
	return nil
}

// GetVolume returns the current volume.
func (m *Engine) GetVolume(handle domain.TrackHandle) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, err := m.track(handle)
	if err != nil {
		return 0, err
	}
	return t.volume, nil
}

// Levels returns a falling ramp scaled by volume while playing, zeros otherwise.
func (m *Engine) Levels(handle domain.TrackHandle, bands int) ([]float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, err := m.track(handle)
	if err != nil {
		return nil, err
	}
	if bands <= 0 {
		return nil, nil
	}
	out := make([]float64, bands)
	if t.status != domain.StatusPlaying {
		return out, nil
	}
	for i := range out {
		out[i] = t.volume * (1 - float64(i)/float64(bands))
	}
	return out, nil
}

// LoadedTracks returns the number of currently loaded tracks.
func (m *Engine) LoadedTracks() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tracks)
}

// ErrNotPlaying is returned by SimulateProgress for tracks that are not playing.
var ErrNotPlaying = errors.New("track is not playing")

// SimulateProgress advances a playing track by delta.
// Reaching the end stops the track the way a real engine does.
func (m *Engine) SimulateProgress(handle domain.TrackHandle, delta time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tracks[handle]
	if !ok {
		return domain.ErrInvalidTrackHandle
	}
	if t.status != domain.StatusPlaying {
		return ErrNotPlaying
	}

	t.position += delta
	if t.position >= t.duration {
		t.position = t.duration
		t.status = domain.StatusStopped
	}
	return nil
}

// SimulateEnd plays a track to its end.
func (m *Engine) SimulateEnd(handle domain.TrackHandle) error {
	m.mu.RLock()
	t, ok := m.tracks[handle]
	var remaining time.Duration
	if ok {
		remaining = t.duration - t.position
	}
	m.mu.RUnlock()
	if !ok {
		return domain.ErrInvalidTrackHandle
	}
	return m.SimulateProgress(handle, remaining)
}

var _ ports.AudioEngine = (*Engine)(nil)

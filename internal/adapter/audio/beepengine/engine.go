// Package beepengine implements the AudioEngine port on top of gopxl/beep.
// Every loaded track owns a pipeline of decoder, resampler, pause control,
// volume and level tap that is mixed into a single output sink.
package beepengine

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"

	"github.com/tejashwikalptaru/qtunes/internal/domain"
	"github.com/tejashwikalptaru/qtunes/internal/ports"
)

// resampleQuality is passed to beep.Resample when a file's rate differs from the output.
const resampleQuality = 4

// Engine plays audio files through a Sink.
//
// Thread-safety: This implementation is thread-safe. Engine state is guarded
// by mu; streamer state is guarded by the sink lock. mu is always taken first.
type Engine struct {
	logger *slog.Logger
	sink   Sink

	mu          sync.RWMutex
	initialized bool
	sampleRate  beep.SampleRate
	tracks      map[domain.TrackHandle]*track
	nextHandle  domain.TrackHandle
}

type track struct {
	path   string
	source beep.StreamSeekCloser
	format beep.Format

	ctrl   *beep.Ctrl
	volume *effects.Volume
	tap    *levelTap

	level  float64
	status domain.PlaybackStatus
	queued bool

	// ended is set from the sink's goroutine when the source runs dry.
	ended *atomic.Bool
}

// New creates an engine that plays through the system speaker.
func New(logger *slog.Logger) *Engine {
	return NewWithSink(logger, speakerSink{})
}

// NewWithSink creates an engine that mixes into sink.
func NewWithSink(logger *slog.Logger, sink Sink) *Engine {
	return &Engine{
		logger:     logger,
		sink:       sink,
		tracks:     make(map[domain.TrackHandle]*track),
		nextHandle: 1,
	}
}

// Initialize opens the output at sampleRate with a buffer of bufferSize.
func (e *Engine) Initialize(sampleRate int, bufferSize time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.initialized {
		return domain.ErrAlreadyInitialized
	}
	if sampleRate <= 0 {
		return domain.NewValidationError("sample_rate", sampleRate, "must be positive")
	}
	if bufferSize <= 0 {
		bufferSize = 100 * time.Millisecond
	}

	rate := beep.SampleRate(sampleRate)
	if err := e.sink.Init(rate, rate.N(bufferSize)); err != nil {
		return domain.NewAudioEngineError("initialize", "", "cannot open audio output", err)
	}

	e.sampleRate = rate
	e.initialized = true
	e.logger.Info("audio output opened", slog.Int("sample_rate", sampleRate), slog.Duration("buffer", bufferSize))
	return nil
}

// Shutdown stops every track and closes the output.
func (e *Engine) Shutdown() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return domain.ErrNotInitialized
	}

	e.sink.Clear()
	for handle, t := range e.tracks {
		e.closeTrack(t)
		delete(e.tracks, handle)
	}
	e.sink.Close()
	e.initialized = false
	e.logger.Info("audio output closed")
	return nil
}

// IsInitialized returns true once Initialize succeeded.
func (e *Engine) IsInitialized() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.initialized
}

// Load decodes the file header and prepares a paused pipeline.
func (e *Engine) Load(filePath string) (domain.TrackHandle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return domain.InvalidTrackHandle, domain.ErrNotInitialized
	}

	source, format, err := Decode(filePath)
	if err != nil {
		return domain.InvalidTrackHandle, domain.NewAudioEngineError("load", filePath, "cannot decode file", err)
	}

	t := &track{
		path:   filePath,
		source: source,
		format: format,
		level:  1.0,
		status: domain.StatusStopped,
		ended:  new(atomic.Bool),
	}
	e.buildPipeline(t)

	handle := e.nextHandle
	e.nextHandle++
	e.tracks[handle] = t

	e.logger.Debug("track loaded",
		slog.String("path", filePath),
		slog.Int("sample_rate", int(format.SampleRate)),
		slog.Int64("handle", int64(handle)))
	return handle, nil
}

// buildPipeline wires source into a fresh resampler, ctrl, volume and tap.
func (e *Engine) buildPipeline(t *track) {
	var s beep.Streamer = t.source
	if t.format.SampleRate != e.sampleRate {
		s = beep.Resample(resampleQuality, t.format.SampleRate, e.sampleRate, s)
	}
	t.ctrl = &beep.Ctrl{Streamer: s, Paused: true}
	t.volume = &effects.Volume{
		Streamer: t.ctrl,
		Base:     2,
		Volume:   levelToVolume(t.level),
		Silent:   t.level <= 0,
	}
	t.tap = &levelTap{Streamer: t.volume}
	t.queued = false
	t.ended = new(atomic.Bool)
}

func (e *Engine) lookup(handle domain.TrackHandle) (*track, error) {
	if !e.initialized {
		return nil, domain.ErrNotInitialized
	}
	t, ok := e.tracks[handle]
	if !ok {
		return nil, domain.ErrInvalidTrackHandle
	}
	return t, nil
}

// Unload stops a track and releases its file.
func (e *Engine) Unload(handle domain.TrackHandle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.lookup(handle)
	if err != nil {
		return err
	}
	e.closeTrack(t)
	delete(e.tracks, handle)
	return nil
}

// closeTrack detaches t from the mixer and closes its source. Requires mu.
func (e *Engine) closeTrack(t *track) {
	e.sink.Lock()
	t.ctrl.Streamer = nil
	e.sink.Unlock()
	if err := t.source.Close(); err != nil {
		e.logger.Warn("closing track failed", slog.String("path", t.path), slog.Any("error", err))
	}
}

// Play starts, resumes or restarts a track.
func (e *Engine) Play(handle domain.TrackHandle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.lookup(handle)
	if err != nil {
		return err
	}

	if t.ended.Load() {
		e.sink.Lock()
		err = t.source.Seek(0)
		e.sink.Unlock()
		if err != nil {
			return domain.NewAudioEngineError("play", t.path, "cannot rewind track", err)
		}
		e.buildPipeline(t)
	}

	e.sink.Lock()
	t.ctrl.Paused = false
	e.sink.Unlock()

	if !t.queued {
		ended := t.ended
		e.sink.Play(beep.Seq(t.tap, beep.Callback(func() { ended.Store(true) })))
		t.queued = true
	}
	t.status = domain.StatusPlaying
	return nil
}

// Pause pauses a playing track.
func (e *Engine) Pause(handle domain.TrackHandle) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.lookup(handle)
	if err != nil {
		return err
	}
	if t.status != domain.StatusPlaying || t.ended.Load() {
		return nil
	}

	e.sink.Lock()
	t.ctrl.Paused = true
	e.sink.Unlock()
	t.status = domain.StatusPaused
	return nil
}

// Stop stops and unloads a track.
func (e *Engine) Stop(handle domain.TrackHandle) error {
	return e.Unload(handle)
}

// Status reports playing, paused or stopped. A track that ran out reports stopped.
func (e *Engine) Status(handle domain.TrackHandle) (domain.PlaybackStatus, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	t, err := e.lookup(handle)
	if err != nil {
		return domain.StatusStopped, err
	}
	if t.ended.Load() {
		return domain.StatusStopped, nil
	}
	return t.status, nil
}

// Position returns the playback position in the source file.
func (e *Engine) Position(handle domain.TrackHandle) (time.Duration, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	t, err := e.lookup(handle)
	if err != nil {
		return 0, err
	}
	e.sink.Lock()
	pos := t.source.Position()
	e.sink.Unlock()
	return t.format.SampleRate.D(pos), nil
}

// Duration returns the length of the source file.
func (e *Engine) Duration(handle domain.TrackHandle) (time.Duration, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	t, err := e.lookup(handle)
	if err != nil {
		return 0, err
	}
	return t.format.SampleRate.D(t.source.Len()), nil
}

// Seek moves playback to position.
func (e *Engine) Seek(handle domain.TrackHandle, position time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.lookup(handle)
	if err != nil {
		return err
	}
	length := t.source.Len()
	sample := t.format.SampleRate.N(position)
	if position < 0 || sample > length {
		return domain.ErrInvalidPosition
	}

	e.sink.Lock()
	err = t.source.Seek(sample)
	e.sink.Unlock()
	if err != nil {
		return domain.NewAudioEngineError("seek", t.path, "seek failed", err)
	}
	if t.ended.Load() {
		e.buildPipeline(t)
		t.status = domain.StatusPaused
	}
	return nil
}

// SetVolume sets the level of one track, 0 silences it.
func (e *Engine) SetVolume(handle domain.TrackHandle, volume float64) error {
	if volume < 0 || volume > 1 {
		return domain.ErrInvalidVolume
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	t, err := e.lookup(handle)
	if err != nil {
		return err
	}
	t.level = volume

	e.sink.Lock()
	t.volume.Volume = levelToVolume(volume)
	t.volume.Silent = volume <= 0
	e.sink.Unlock()
	return nil
}

// GetVolume returns the level set by SetVolume.
func (e *Engine) GetVolume(handle domain.TrackHandle) (float64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	t, err := e.lookup(handle)
	if err != nil {
		return 0, err
	}
	return t.level, nil
}

// Levels returns per-band loudness of the most recent output of a playing track.
func (e *Engine) Levels(handle domain.TrackHandle, bands int) ([]float64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	t, err := e.lookup(handle)
	if err != nil {
		return nil, err
	}
	if bands <= 0 {
		return nil, nil
	}
	if t.status != domain.StatusPlaying || t.ended.Load() {
		return make([]float64, bands), nil
	}

	e.sink.Lock()
	window := t.tap.snapshot()
	e.sink.Unlock()
	return bandLevels(window, e.sampleRate, bands), nil
}

var _ ports.AudioEngine = (*Engine)(nil)

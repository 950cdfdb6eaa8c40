package service

import (
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/tejashwikalptaru/qtunes/internal/domain"
	"github.com/tejashwikalptaru/qtunes/internal/ports"
)

// PlaylistService manages the playback queue: which table it follows,
// navigation, and what happens when a song ends.
//
// The queue mirrors either the filtered song table or the checked
// playlist, following TableChanged or PlaylistChanged events for its
// source. All operations are thread-safe via sync.RWMutex.
type PlaylistService struct {
	// Dependencies (injected)
	logger   *slog.Logger
	playback *PlaybackService
	repo     ports.PlaylistRepository // nil disables last-played tracking
	bus      ports.EventBus

	// State
	queue        []domain.Song
	source       domain.QueueSource
	currentIndex int
	currentPath  string
	mode         domain.PlayMode
	intN         func(n int) int

	// Concurrency control
	mu sync.RWMutex

	// Event subscriptions
	subs []domain.SubscriptionID
}

// NewPlaylistService creates a queue following the library table.
func NewPlaylistService(
	logger *slog.Logger,
	playback *PlaybackService,
	repo ports.PlaylistRepository,
	bus ports.EventBus,
	mode domain.PlayMode,
) *PlaylistService {
	s := &PlaylistService{
		logger:       logger,
		playback:     playback,
		repo:         repo,
		bus:          bus,
		source:       domain.SourceLibrary,
		currentIndex: -1,
		mode:         mode,
		intN:         rand.IntN,
	}

	s.subs = append(s.subs,
		bus.Subscribe(domain.EventAutoNext, s.handleAutoNext),
		bus.Subscribe(domain.EventTableChanged, func(e domain.Event) {
			if ev, ok := e.(domain.TableChangedEvent); ok {
				s.follow(domain.SourceLibrary, ev.Rows)
			}
		}),
		bus.Subscribe(domain.EventPlaylistChanged, func(e domain.Event) {
			if ev, ok := e.(domain.PlaylistChangedEvent); ok {
				s.follow(domain.SourcePlaylist, ev.Songs)
			}
		}),
	)
	return s
}

func (s *PlaylistService) follow(source domain.QueueSource, songs []domain.Song) {
	s.mu.RLock()
	current := s.source
	s.mu.RUnlock()

	if current == source {
		s.SetQueue(songs, source)
	}
}

// SetQueue replaces the queue. The current song keeps playing; its index
// moves to its position in the new queue, or -1 if it is not there.
func (s *PlaylistService) SetQueue(songs []domain.Song, source domain.QueueSource) {
	s.mu.Lock()
	s.queue = slices.Clone(songs)
	s.source = source
	s.currentIndex = -1
	if s.currentPath != "" {
		s.currentIndex = domain.IndexOfPath(s.queue, s.currentPath)
	}
	ev := domain.NewQueueChangedEvent(slices.Clone(s.queue), s.currentIndex, source)
	s.mu.Unlock()

	s.bus.Publish(ev)
}

// PlayAt plays the song at index.
func (s *PlaylistService) PlayAt(index int) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.queue) {
		s.mu.Unlock()
		return domain.ErrInvalidIndex
	}
	song := s.queue[index]
	s.currentIndex = index
	s.currentPath = song.Path
	s.mu.Unlock()

	return s.play(song, index)
}

// PlayPath plays the queued song with path and returns its index.
func (s *PlaylistService) PlayPath(path string) (int, error) {
	s.mu.RLock()
	index := domain.IndexOfPath(s.queue, path)
	s.mu.RUnlock()

	if index < 0 {
		return -1, domain.ErrUnknownSelection
	}
	return index, s.PlayAt(index)
}

// Cue loads the queued song with path without starting it, so Play
// resumes where the last session stopped.
func (s *PlaylistService) Cue(path string) error {
	s.mu.Lock()
	index := domain.IndexOfPath(s.queue, path)
	if index < 0 {
		s.mu.Unlock()
		return domain.ErrUnknownSelection
	}
	song := s.queue[index]
	s.currentIndex = index
	s.currentPath = path
	s.mu.Unlock()

	return s.playback.LoadSong(song, index)
}

func (s *PlaylistService) play(song domain.Song, index int) error {
	if err := s.playback.LoadSong(song, index); err != nil {
		return err
	}
	if s.repo != nil {
		if err := s.repo.SaveLastPlayed(song.Path); err != nil {
			s.logger.Warn("failed to save last played", slog.Any("error", err))
		}
	}
	return s.playback.Play()
}

// Next plays the following row, wrapping to the first. With no current
// song it starts at the first row.
func (s *PlaylistService) Next() error {
	s.mu.RLock()
	n, cur := len(s.queue), s.currentIndex
	s.mu.RUnlock()

	if n == 0 {
		return domain.ErrQueueEmpty
	}
	if cur < 0 {
		return s.PlayAt(0)
	}
	return s.PlayAt((cur + 1) % n)
}

// Previous plays the preceding row, wrapping to the last. With no current
// song it starts at the last row.
func (s *PlaylistService) Previous() error {
	s.mu.RLock()
	n, cur := len(s.queue), s.currentIndex
	s.mu.RUnlock()

	if n == 0 {
		return domain.ErrQueueEmpty
	}
	if cur < 0 {
		return s.PlayAt(n - 1)
	}
	return s.PlayAt((cur - 1 + n) % n)
}

// SetRepeat turns repeat on or off. Turning it on turns shuffle off.
func (s *PlaylistService) SetRepeat(on bool) {
	s.mu.RLock()
	mode := s.mode
	s.mu.RUnlock()

	switch {
	case on:
		s.SetMode(domain.PlayModeRepeat)
	case mode == domain.PlayModeRepeat:
		s.SetMode(domain.PlayModeNormal)
	}
}

// SetShuffle turns shuffle on or off. Turning it on turns repeat off.
func (s *PlaylistService) SetShuffle(on bool) {
	s.mu.RLock()
	mode := s.mode
	s.mu.RUnlock()

	switch {
	case on:
		s.SetMode(domain.PlayModeShuffle)
	case mode == domain.PlayModeShuffle:
		s.SetMode(domain.PlayModeNormal)
	}
}

// SetMode sets the play mode and publishes PlayModeChangedEvent on change.
func (s *PlaylistService) SetMode(mode domain.PlayMode) {
	s.mu.Lock()
	if s.mode == mode {
		s.mu.Unlock()
		return
	}
	s.mode = mode
	s.mu.Unlock()

	s.logger.Debug("play mode changed", slog.String("mode", mode.String()))
	s.bus.Publish(domain.NewPlayModeChangedEvent(mode))
}

// Mode returns the current play mode.
func (s *PlaylistService) Mode() domain.PlayMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// Queue returns a copy of the current queue.
func (s *PlaylistService) Queue() []domain.Song {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.queue)
}

// CurrentIndex returns the queue index of the current song, or -1.
func (s *PlaylistService) CurrentIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentIndex
}

// Source returns the table the queue follows.
func (s *PlaylistService) Source() domain.QueueSource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// LastPlayed returns the path of the most recently played song from an
// earlier session, or "".
func (s *PlaylistService) LastPlayed() string {
	if s.repo == nil {
		return ""
	}
	path, err := s.repo.LoadLastPlayed()
	if err != nil {
		s.logger.Warn("failed to load last played", slog.Any("error", err))
		return ""
	}
	return path
}

// nextAfterEnd picks the row to play when the song at cur ends.
// ok is false when playback should stop.
func (s *PlaylistService) nextAfterEnd(cur, n int) (next int, ok bool) {
	switch s.mode {
	case domain.PlayModeRepeat:
		return cur, true
	case domain.PlayModeShuffle:
		if n == 1 {
			return 0, true
		}
		if cur < 0 {
			return s.intN(n), true
		}
		r := s.intN(n - 1)
		if r >= cur {
			r++
		}
		return r, true
	default:
		if cur+1 < n {
			return cur + 1, true
		}
		return 0, false
	}
}

// handleAutoNext is called when the playing song reaches its end.
func (s *PlaylistService) handleAutoNext(event domain.Event) {
	ev, ok := event.(domain.AutoNextEvent)
	if !ok {
		return
	}

	s.mu.Lock()
	if ev.Song.Path != s.currentPath || len(s.queue) == 0 {
		s.mu.Unlock()
		return
	}
	cur := s.currentIndex
	if cur < 0 && s.mode == domain.PlayModeRepeat {
		// The song left the queue; replay it anyway.
		s.mu.Unlock()
		if err := s.play(ev.Song, -1); err != nil {
			s.logger.Warn("repeat failed", slog.Any("error", err))
		}
		return
	}
	next, ok := s.nextAfterEnd(cur, len(s.queue))
	s.mu.Unlock()

	if !ok {
		s.logger.Debug("end of queue")
		if err := s.playback.Stop(); err != nil {
			s.logger.Warn("failed to stop at end of queue", slog.Any("error", err))
		}
		return
	}
	if err := s.PlayAt(next); err != nil {
		s.logger.Warn("auto-next failed", slog.Int("index", next), slog.Any("error", err))
	}
}

// Shutdown unsubscribes from the bus.
func (s *PlaylistService) Shutdown() error {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, id := range subs {
		s.bus.Unsubscribe(id)
	}
	return nil
}

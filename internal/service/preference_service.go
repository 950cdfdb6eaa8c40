package service

import (
	"log/slog"
	"sync"

	"github.com/tejashwikalptaru/qtunes/internal/domain"
	"github.com/tejashwikalptaru/qtunes/internal/ports"
)

// PreferenceService caches user preferences and saves every change.
// Volume and play mode are saved when their change events are published,
// so the playback and queue services need no repository of their own.
//
// All operations are thread-safe via sync.RWMutex.
type PreferenceService struct {
	// Dependencies (injected)
	logger     *slog.Logger
	repository ports.PreferencesRepository
	bus        ports.EventBus

	// Cached preferences
	prefs domain.Preferences

	// Concurrency control
	mu sync.RWMutex

	subs []domain.SubscriptionID
}

// NewPreferenceService loads the saved preferences. Unreadable values fall
// back to their defaults.
func NewPreferenceService(
	logger *slog.Logger,
	repository ports.PreferencesRepository,
	bus ports.EventBus,
	defaultSpeed domain.VisualizerSpeed,
) *PreferenceService {
	s := &PreferenceService{
		logger:     logger,
		repository: repository,
		bus:        bus,
		prefs: domain.Preferences{
			Volume:          domain.DefaultVolume,
			VisualizerSpeed: defaultSpeed,
		},
	}
	s.loadPreferences()

	s.subs = append(s.subs,
		bus.Subscribe(domain.EventVolumeChanged, func(e domain.Event) {
			if ev, ok := e.(domain.VolumeChangedEvent); ok {
				s.saveVolume(ev.Volume)
			}
		}),
		bus.Subscribe(domain.EventPlayModeChanged, func(e domain.Event) {
			if ev, ok := e.(domain.PlayModeChangedEvent); ok {
				s.savePlayMode(ev.Mode)
			}
		}),
	)

	logger.Debug("preference service initialized")
	return s
}

func (s *PreferenceService) loadPreferences() {
	s.mu.Lock()
	defer s.mu.Unlock()

	warn := func(name string, err error) {
		s.logger.Warn("failed to load preference", slog.String("name", name), slog.Any("error", err))
	}

	if v, err := s.repository.LoadVolume(); err == nil {
		s.prefs.Volume = v
	} else {
		warn("volume", err)
	}
	if m, err := s.repository.LoadPlayMode(); err == nil {
		s.prefs.Mode = m
	} else {
		warn("play_mode", err)
	}
	if n, err := s.repository.LoadNightMode(); err == nil {
		s.prefs.NightMode = n
	} else {
		warn("night_mode", err)
	}
	if c, err := s.repository.LoadSliderColor(); err == nil {
		s.prefs.SliderColor = c
	} else {
		warn("slider_color", err)
	}
	if f, err := s.repository.LoadLastFolder(); err == nil {
		s.prefs.LastFolder = f
	} else {
		warn("last_folder", err)
	}

	// The repository reports normal when nothing was saved, so only a
	// non-normal saved speed overrides the configured default.
	if v, err := s.repository.LoadVisualizerSpeed(); err != nil {
		warn("visualizer_speed", err)
	} else if v != domain.SpeedNormal {
		s.prefs.VisualizerSpeed = v
	}
}

// Preferences returns a snapshot of every preference.
func (s *PreferenceService) Preferences() domain.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

// Volume returns the saved volume (0.0 to 1.0).
func (s *PreferenceService) Volume() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs.Volume
}

func (s *PreferenceService) saveVolume(volume float64) {
	s.mu.Lock()
	s.prefs.Volume = volume
	s.mu.Unlock()

	if err := s.repository.SaveVolume(volume); err != nil {
		s.logger.Warn("failed to save volume", slog.Any("error", err))
	}
}

// PlayMode returns the saved play mode.
func (s *PreferenceService) PlayMode() domain.PlayMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs.Mode
}

func (s *PreferenceService) savePlayMode(mode domain.PlayMode) {
	s.mu.Lock()
	s.prefs.Mode = mode
	s.mu.Unlock()

	if err := s.repository.SavePlayMode(mode); err != nil {
		s.logger.Warn("failed to save play mode", slog.Any("error", err))
	}
}

// SetNightMode switches the dark theme on or off.
func (s *PreferenceService) SetNightMode(enabled bool) error {
	if err := s.repository.SaveNightMode(enabled); err != nil {
		return err
	}

	s.mu.Lock()
	s.prefs.NightMode = enabled
	ev := domain.NewAppearanceChangedEvent(s.prefs.NightMode, s.prefs.SliderColor)
	s.mu.Unlock()

	s.bus.Publish(ev)
	return nil
}

// ToggleNightMode flips night mode and returns the new state.
func (s *PreferenceService) ToggleNightMode() (bool, error) {
	enabled := !s.Preferences().NightMode
	return enabled, s.SetNightMode(enabled)
}

// CycleSliderColor advances the slider colour through a palette of n
// entries and returns the new index.
func (s *PreferenceService) CycleSliderColor(n int) (int, error) {
	if n <= 0 {
		return 0, domain.NewValidationError("palette", n, "must not be empty")
	}

	s.mu.RLock()
	next := (s.prefs.SliderColor + 1) % n
	s.mu.RUnlock()

	if err := s.repository.SaveSliderColor(next); err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.prefs.SliderColor = next
	ev := domain.NewAppearanceChangedEvent(s.prefs.NightMode, next)
	s.mu.Unlock()

	s.bus.Publish(ev)
	return next, nil
}

// SetVisualizerSpeed saves the speed preset.
func (s *PreferenceService) SetVisualizerSpeed(speed domain.VisualizerSpeed) error {
	if speed < domain.SpeedSlowest || speed > domain.SpeedFastest {
		return domain.NewValidationError("visualizer_speed", int(speed), "unknown speed")
	}
	if err := s.repository.SaveVisualizerSpeed(speed); err != nil {
		return err
	}

	s.mu.Lock()
	changed := s.prefs.VisualizerSpeed != speed
	s.prefs.VisualizerSpeed = speed
	s.mu.Unlock()

	if changed {
		s.bus.Publish(domain.NewVisualizerSpeedChangedEvent(speed))
	}
	return nil
}

// LastFolder returns the last loaded music folder.
func (s *PreferenceService) LastFolder() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs.LastFolder
}

// SetLastFolder saves the last loaded music folder.
func (s *PreferenceService) SetLastFolder(path string) error {
	if err := s.repository.SaveLastFolder(path); err != nil {
		return err
	}

	s.mu.Lock()
	s.prefs.LastFolder = path
	s.mu.Unlock()
	return nil
}

// ResetToDefaults clears every saved preference.
func (s *PreferenceService) ResetToDefaults() error {
	if err := s.repository.Clear(); err != nil {
		return err
	}

	s.mu.Lock()
	speed := s.prefs.VisualizerSpeed
	s.prefs = domain.Preferences{Volume: domain.DefaultVolume, VisualizerSpeed: domain.SpeedNormal}
	ev := domain.NewAppearanceChangedEvent(false, 0)
	s.mu.Unlock()

	s.bus.Publish(ev)
	if speed != domain.SpeedNormal {
		s.bus.Publish(domain.NewVisualizerSpeedChangedEvent(domain.SpeedNormal))
	}
	return nil
}

// Shutdown unsubscribes from the bus.
func (s *PreferenceService) Shutdown() error {
	for _, id := range s.subs {
		s.bus.Unsubscribe(id)
	}
	s.subs = nil
	return nil
}

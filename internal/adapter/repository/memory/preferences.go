package memory

import (
	"fmt"
	"sync"

	"fyne.io/fyne/v2"

	"github.com/tejashwikalptaru/qtunes/internal/domain"
	"github.com/tejashwikalptaru/qtunes/internal/ports"
)

const (
	keyVolume          = "preferences.volume"
	keyPlayMode        = "preferences.play_mode"
	keyNightMode       = "preferences.night_mode"
	keySliderColor     = "preferences.slider_color"
	keyVisualizerSpeed = "preferences.visualizer_speed"
	keyLastFolder      = "preferences.last_folder"
)

// PreferencesRepository implements ports.PreferencesRepository on top of
// Fyne preferences. Enum values are stored by name so reordering them does
// not corrupt saved settings.
//
// Thread-safe: All operations protected by sync.RWMutex.
type PreferencesRepository struct {
	prefs fyne.Preferences
	mu    sync.RWMutex
}

// NewPreferencesRepository creates a new preferences repository.
// The preferences parameter should be obtained from fyne.CurrentApp().Preferences().
func NewPreferencesRepository(prefs fyne.Preferences) *PreferencesRepository {
	return &PreferencesRepository{
		prefs: prefs,
	}
}

// SaveVolume persists the volume level.
func (r *PreferencesRepository) SaveVolume(volume float64) error {
	if volume < 0 || volume > 1 {
		return fmt.Errorf("%w: %v", domain.ErrInvalidVolume, volume)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.SetFloat(keyVolume, volume)
	return nil
}

// LoadVolume retrieves the saved volume level.
func (r *PreferencesRepository) LoadVolume() (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	volume := r.prefs.FloatWithFallback(keyVolume, domain.DefaultVolume)
	return min(max(volume, 0), 1), nil
}

// SavePlayMode persists repeat/shuffle state.
func (r *PreferencesRepository) SavePlayMode(mode domain.PlayMode) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.SetString(keyPlayMode, mode.String())
	return nil
}

// LoadPlayMode retrieves the saved play mode.
func (r *PreferencesRepository) LoadPlayMode() (domain.PlayMode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return domain.ParsePlayMode(r.prefs.String(keyPlayMode)), nil
}

// SaveNightMode persists the night mode switch.
func (r *PreferencesRepository) SaveNightMode(enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.SetBool(keyNightMode, enabled)
	return nil
}

// LoadNightMode retrieves the night mode switch.
func (r *PreferencesRepository) LoadNightMode() (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.prefs.BoolWithFallback(keyNightMode, false), nil
}

// SaveSliderColor persists the slider colour index.
func (r *PreferencesRepository) SaveSliderColor(index int) error {
	if index < 0 {
		return domain.NewValidationError("slider_color", index, "must not be negative")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.SetInt(keySliderColor, index)
	return nil
}

// LoadSliderColor retrieves the slider colour index.
func (r *PreferencesRepository) LoadSliderColor() (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return max(r.prefs.IntWithFallback(keySliderColor, 0), 0), nil
}

// SaveVisualizerSpeed persists the visualizer speed preset.
func (r *PreferencesRepository) SaveVisualizerSpeed(speed domain.VisualizerSpeed) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.SetString(keyVisualizerSpeed, speed.String())
	return nil
}

// LoadVisualizerSpeed retrieves the speed preset.
func (r *PreferencesRepository) LoadVisualizerSpeed() (domain.VisualizerSpeed, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	speed, ok := domain.ParseVisualizerSpeed(r.prefs.String(keyVisualizerSpeed))
	if !ok {
		return domain.SpeedNormal, nil
	}
	return speed, nil
}

// SaveLastFolder persists the most recently loaded music folder.
func (r *PreferencesRepository) SaveLastFolder(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.SetString(keyLastFolder, path)
	return nil
}

// LoadLastFolder retrieves the last music folder.
func (r *PreferencesRepository) LoadLastFolder() (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.prefs.String(keyLastFolder), nil
}

// Clear removes all saved preferences.
func (r *PreferencesRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, key := range []string{keyVolume, keyPlayMode, keyNightMode, keySliderColor, keyVisualizerSpeed, keyLastFolder} {
		r.prefs.RemoveValue(key)
	}
	return nil
}

var _ ports.PreferencesRepository = (*PreferencesRepository)(nil)

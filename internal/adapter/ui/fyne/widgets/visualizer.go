// Package widgets provides custom Fyne widgets for the qTunes window.
package widgets

import (
	"image"
	"image/color"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/lucasb-eyer/go-colorful"
	xdraw "golang.org/x/image/draw"
)

const (
	// DefaultBars is the number of bars drawn by the visualizer.
	DefaultBars = 9

	initialBarValue = 5
	maxBarValue     = 10
	lowerBarDecay   = 0.001
)

// Bars holds the heights of the visualizer.
//
// Every bar has an integer target in 1..10. Between retargets a shared
// "lower bar" offset sinks by a small amount per frame, so the bars droop
// until the next targets arrive.
type Bars struct {
	values []int
	lower  float64
}

// NewBars returns n bars at their resting height.
func NewBars(n int) *Bars {
	b := &Bars{values: make([]int, n)}
	for i := range b.values {
		b.values[i] = initialBarValue
	}
	return b
}

// Retarget sets new targets and resets the lower bar. levels in 0..1 are
// scaled to 1..10; missing levels take a random value from intN.
func (b *Bars) Retarget(levels []float64, intN func(int) int) {
	for i := range b.values {
		if i < len(levels) {
			l := math.Min(math.Max(levels[i], 0), 1)
			b.values[i] = 1 + int(math.Round(l*(maxBarValue-1)))
			continue
		}
		b.values[i] = intN(maxBarValue) + 1
	}
	b.lower = 0
}

// Decay lowers every bar by one frame's worth.
func (b *Bars) Decay() {
	b.lower -= lowerBarDecay
}

// Values returns the current integer targets.
func (b *Bars) Values() []int {
	return append([]int(nil), b.values...)
}

// Heights returns the drawn height of every bar as a fraction of the widget.
func (b *Bars) Heights() []float64 {
	out := make([]float64, len(b.values))
	for i, v := range b.values {
		out[i] = math.Min(math.Max(float64(v)/maxBarValue+b.lower, 0), 1)
	}
	return out
}

// BarColors returns a gradient across n bars, blended in HCL space.
func BarColors(n int) []color.Color {
	from := colorful.Color{R: 0, G: 1, B: 1}
	to := colorful.Color{R: 0.8, G: 0.2, B: 0.2}
	out := make([]color.Color, n)
	for i := range out {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		out[i] = from.BlendHcl(to, t).Clamped()
	}
	return out
}

// LevelSource supplies the playing song's band levels. ok is false while
// nothing plays, in which case the bars move randomly.
type LevelSource func(bands int) (levels []float64, ok bool)

// Visualizer is a widget that animates vertical bars.
// Frames are drawn every frame interval; targets change every speed interval.
type Visualizer struct {
	widget.BaseWidget

	raster *canvas.Raster
	colors []color.Color
	source LevelSource
	intN   func(int) int

	mu       sync.Mutex
	bars     *Bars
	frame    time.Duration
	interval time.Duration

	running  bool
	stop     chan struct{}
	retarget chan time.Duration
	wg       sync.WaitGroup
}

// NewVisualizer creates a visualizer with n bars.
func NewVisualizer(n int, frame, interval time.Duration, source LevelSource) *Visualizer {
	v := &Visualizer{
		colors:   BarColors(n),
		source:   source,
		intN:     rand.IntN,
		bars:     NewBars(n),
		frame:    frame,
		interval: interval,
		retarget: make(chan time.Duration, 1),
	}
	v.raster = canvas.NewRaster(v.draw)
	v.ExtendBaseWidget(v)
	return v
}

// CreateRenderer implements fyne.Widget.
func (v *Visualizer) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.raster)
}

// MinSize returns the minimum size of the visualizer.
func (v *Visualizer) MinSize() fyne.Size {
	return fyne.NewSize(300, 100)
}

// SetInterval changes how often new targets are picked.
func (v *Visualizer) SetInterval(d time.Duration) {
	v.mu.Lock()
	v.interval = d
	running := v.running
	v.mu.Unlock()

	if running {
		select {
		case v.retarget <- d:
		default:
		}
	}
}

// Start begins the animation. Calling Start twice is a no-op.
func (v *Visualizer) Start() {
	v.mu.Lock()
	if v.running {
		v.mu.Unlock()
		return
	}
	v.running = true
	v.stop = make(chan struct{})
	frame, interval, stop := v.frame, v.interval, v.stop
	v.wg.Add(1)
	v.mu.Unlock()

	go v.loop(frame, interval, stop)
}

func (v *Visualizer) loop(frame, interval time.Duration, stop <-chan struct{}) {
	defer v.wg.Done()

	frames := time.NewTicker(frame)
	defer frames.Stop()
	targets := time.NewTicker(interval)
	defer targets.Stop()

	for {
		select {
		case <-stop:
			return
		case d := <-v.retarget:
			targets.Reset(d)
		case <-targets.C:
			v.Step(true)
		case <-frames.C:
			v.Step(false)
		}
	}
}

// Step advances one frame, picking new targets first when retarget is set.
func (v *Visualizer) Step(retarget bool) {
	var levels []float64
	if retarget && v.source != nil {
		if l, ok := v.source(len(v.colors)); ok {
			levels = l
		}
	}

	v.mu.Lock()
	if retarget {
		v.bars.Retarget(levels, v.intN)
	} else {
		v.bars.Decay()
	}
	v.mu.Unlock()

	fyne.Do(v.raster.Refresh)
}

// Stop ends the animation and waits for its goroutine.
func (v *Visualizer) Stop() {
	v.mu.Lock()
	if !v.running {
		v.mu.Unlock()
		return
	}
	v.running = false
	close(v.stop)
	v.mu.Unlock()

	v.wg.Wait()
}

// Heights returns the current bar heights in 0..1.
func (v *Visualizer) Heights() []float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.bars.Heights()
}

// draw is the raster generator function that renders the bars.
func (v *Visualizer) draw(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(img, img.Bounds(), image.Black, image.Point{}, xdraw.Src)

	heights := v.Heights()
	n := len(heights)
	if n == 0 || w == 0 || h == 0 {
		return img
	}

	slot := float64(w) / float64(n)
	for i, height := range heights {
		x0 := int(float64(i)*slot + slot*0.1)
		x1 := int(float64(i+1)*slot - slot*0.1)
		top := h - int(height*float64(h))
		rect := image.Rect(x0, top, x1, h)
		xdraw.Draw(img, rect, image.NewUniform(v.colors[i]), image.Point{}, xdraw.Src)
	}
	return img
}

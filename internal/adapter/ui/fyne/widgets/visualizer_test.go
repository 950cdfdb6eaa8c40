package widgets

import (
	"image/color"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBars_StartAtRest(t *testing.T) {
	b := NewBars(DefaultBars)

	for _, v := range b.Values() {
		assert.Equal(t, 5, v)
	}
	for _, h := range b.Heights() {
		assert.InDelta(t, 0.5, h, 1e-9)
	}
}

func TestBars_RetargetFromLevels(t *testing.T) {
	b := NewBars(4)

	b.Retarget([]float64{0, 0.5, 1, 3}, func(int) int { return 0 })

	assert.Equal(t, []int{1, 6, 10, 10}, b.Values())
}

func TestBars_RetargetRandomWhenLevelsMissing(t *testing.T) {
	b := NewBars(3)

	var bounds []int
	b.Retarget([]float64{1}, func(n int) int {
		bounds = append(bounds, n)
		return n - 1
	})

	assert.Equal(t, []int{10, 10, 10}, b.Values())
	assert.Equal(t, []int{10, 10}, bounds)

	b.Retarget(nil, func(int) int { return 0 })
	assert.Equal(t, []int{1, 1, 1}, b.Values())
}

func TestBars_DecayLowersUntilRetarget(t *testing.T) {
	b := NewBars(1)

	for range 100 {
		b.Decay()
	}
	assert.InDelta(t, 0.4, b.Heights()[0], 1e-9)

	b.Retarget([]float64{1}, nil)
	assert.InDelta(t, 1.0, b.Heights()[0], 1e-9)
}

func TestBars_HeightsClamp(t *testing.T) {
	b := NewBars(1)
	b.Retarget([]float64{0}, nil)

	for range 1000 {
		b.Decay()
	}
	assert.Zero(t, b.Heights()[0])
}

func TestBarColors(t *testing.T) {
	colors := BarColors(DefaultBars)
	require.Len(t, colors, DefaultBars)

	first := color.NRGBAModel.Convert(colors[0]).(color.NRGBA)
	last := color.NRGBAModel.Convert(colors[DefaultBars-1]).(color.NRGBA)
	assert.NotEqual(t, first, last)
	assert.Equal(t, uint8(255), first.A)

	assert.Len(t, BarColors(1), 1)
	assert.Empty(t, BarColors(0))
}

func TestVisualizer_StepUsesSource(t *testing.T) {
	test.NewApp()

	v := NewVisualizer(3, time.Hour, time.Hour, func(bands int) ([]float64, bool) {
		return []float64{1, 1, 1}[:bands], true
	})

	v.Step(true)
	assert.Equal(t, []float64{1, 1, 1}, v.Heights())

	v.Step(false)
	for _, h := range v.Heights() {
		assert.InDelta(t, 1-lowerBarDecay, h, 1e-9)
	}
}

func TestVisualizer_StepWithoutPlayback(t *testing.T) {
	test.NewApp()

	v := NewVisualizer(3, time.Hour, time.Hour, func(int) ([]float64, bool) { return nil, false })
	v.intN = func(int) int { return 2 }

	v.Step(true)
	for _, h := range v.Heights() {
		assert.InDelta(t, 0.3, h, 1e-9)
	}
}

func TestVisualizer_StartStop(t *testing.T) {
	test.NewApp()

	v := NewVisualizer(DefaultBars, time.Millisecond, 2*time.Millisecond, nil)
	v.Start()
	v.Start()
	v.SetInterval(time.Millisecond)

	require.Eventually(t, func() bool {
		for _, h := range v.Heights() {
			if h != 0.5 {
				return true
			}
		}
		return false
	}, time.Second, time.Millisecond)

	v.Stop()
	v.Stop()
}

func TestVisualizer_DrawFillsBackground(t *testing.T) {
	test.NewApp()

	v := NewVisualizer(2, time.Hour, time.Hour, nil)
	img := v.draw(20, 10)

	assert.Equal(t, 20, img.Bounds().Dx())
	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Zero(t, r+g+b)
	assert.NotNil(t, v.draw(0, 0))
}

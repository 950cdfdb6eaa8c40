package widgets

import (
	"image"
	"image/color"
	"sync"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/qtunes/internal/domain"
)

func TestFlow_Empty(t *testing.T) {
	var f Flow

	assert.Equal(t, -1, f.Centre())
	assert.False(t, f.Begin(MotionRight))
	assert.Nil(t, f.Visible(5))
}

func TestFlow_ShiftRight(t *testing.T) {
	var f Flow
	f.SetCount(3)

	require.True(t, f.Begin(MotionRight))
	assert.False(t, f.Begin(MotionLeft), "second shift while one is running")

	f.Advance(0.5)
	assert.InDelta(t, 0.5, f.Position(), 1e-9)
	assert.Equal(t, 0, f.Centre())

	f.Advance(1)
	assert.Equal(t, 1, f.Centre())
	assert.Equal(t, MotionIdle, f.Motion())
	assert.InDelta(t, 1.0, f.Position(), 1e-9)
}

func TestFlow_EdgesStop(t *testing.T) {
	var f Flow
	f.SetCount(2)

	assert.False(t, f.Begin(MotionLeft))
	require.True(t, f.Begin(MotionRight))
	f.Advance(1)
	assert.False(t, f.Begin(MotionRight))

	require.True(t, f.Begin(MotionLeft))
	f.Advance(0.25)
	assert.InDelta(t, 0.75, f.Position(), 1e-9)
	f.Advance(2)
	assert.Equal(t, 0, f.Centre())
}

func TestFlow_AdvanceWhileIdleIsNoop(t *testing.T) {
	var f Flow
	f.SetCount(4)

	f.Advance(1)
	assert.Equal(t, 0, f.Centre())
}

func TestFlow_VisibleFarthestFirst(t *testing.T) {
	var f Flow
	f.SetCount(10)
	for range 4 {
		require.True(t, f.Begin(MotionRight))
		f.Advance(1)
	}

	slots := f.Visible(5)
	require.Len(t, slots, 5)
	assert.Equal(t, 4, slots[len(slots)-1].Index)
	assert.Zero(t, slots[len(slots)-1].Distance)
	assert.InDelta(t, 2, abs(slots[0].Distance), 1e-9)

	indexes := map[int]bool{}
	for _, s := range slots {
		indexes[s.Index] = true
	}
	assert.Equal(t, map[int]bool{2: true, 3: true, 4: true, 5: true, 6: true}, indexes)
}

func TestFlow_VisibleClipsAtStart(t *testing.T) {
	var f Flow
	f.SetCount(10)

	slots := f.Visible(5)
	require.Len(t, slots, 3)
	for _, s := range slots {
		assert.GreaterOrEqual(t, s.Index, 0)
	}
}

func TestFlow_SetCountRecentres(t *testing.T) {
	var f Flow
	f.SetCount(5)
	require.True(t, f.Begin(MotionRight))
	f.Advance(1)

	f.SetCount(2)
	assert.Equal(t, 0, f.Centre())
	assert.Equal(t, MotionIdle, f.Motion())
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func testAlbums(names ...string) []domain.AlbumEntry {
	out := make([]domain.AlbumEntry, 0, len(names))
	for _, n := range names {
		out = append(out, domain.AlbumEntry{ID: n, Name: n, CoverPath: "/m/" + n + "/1.mp3"})
	}
	return out
}

func solid(c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := range 64 {
		for x := range 64 {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestCoverflow_SetAlbumsCentresFirst(t *testing.T) {
	test.NewApp()

	var centred []string
	c := NewCoverflow(5, 10*time.Millisecond, 32, nil, solid(color.White))
	c.OnCentreChanged = func(a domain.AlbumEntry) { centred = append(centred, a.Name) }

	_, ok := c.Current()
	assert.False(t, ok)

	c.SetAlbums(testAlbums("A", "B", "C"))
	current, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, "A", current.Name)
	assert.Equal(t, []string{"A"}, centred)
}

func TestCoverflow_ShiftAnimates(t *testing.T) {
	test.NewApp()

	var mu sync.Mutex
	var centred []string
	c := NewCoverflow(5, 10*time.Millisecond, 32, nil, solid(color.White))
	c.SetAlbums(testAlbums("A", "B", "C"))
	c.OnCentreChanged = func(a domain.AlbumEntry) {
		mu.Lock()
		defer mu.Unlock()
		centred = append(centred, a.Name)
	}

	c.ShiftRight()

	require.Eventually(t, func() bool {
		current, _ := c.Current()
		return current.Name == "B"
	}, 2*time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(centred) == 1 && centred[0] == "B"
	}, 2*time.Second, 5*time.Millisecond)
}

func TestCoverflow_DoubleTapChoosesCentre(t *testing.T) {
	test.NewApp()

	var chosen string
	c := NewCoverflow(5, 10*time.Millisecond, 32, nil, solid(color.White))
	c.OnChosen = func(a domain.AlbumEntry) { chosen = a.Name }
	c.SetAlbums(testAlbums("A", "B"))
	c.Resize(fyne.NewSize(600, 200))

	c.DoubleTapped(&fyne.PointEvent{Position: fyne.NewPos(5, 100)})
	assert.Empty(t, chosen, "side covers are not chosen")

	c.DoubleTapped(&fyne.PointEvent{Position: fyne.NewPos(300, 100)})
	assert.Equal(t, "A", chosen)
}

func TestCoverflow_ThumbnailsAreCachedPerAlbum(t *testing.T) {
	test.NewApp()

	loads := map[string]int{}
	loader := func(a domain.AlbumEntry) image.Image {
		loads[a.ID]++
		if a.ID == "B" {
			return nil
		}
		return solid(color.RGBA{R: 255, A: 255})
	}
	c := NewCoverflow(3, 10*time.Millisecond, 16, loader, solid(color.White))
	albums := testAlbums("A", "B")
	c.SetAlbums(albums)

	thumb := c.thumbnail(albums[0])
	require.NotNil(t, thumb)
	assert.LessOrEqual(t, thumb.Bounds().Dx(), 16)
	c.thumbnail(albums[0])
	assert.Equal(t, 1, loads["A"])

	fallback := c.thumbnail(albums[1])
	require.NotNil(t, fallback)
	r, g, b, _ := fallback.At(8, 8).RGBA()
	assert.Greater(t, min(r, g, b), uint32(0xf000))
}

func TestCoverflow_DrawCentreCover(t *testing.T) {
	test.NewApp()

	c := NewCoverflow(3, 10*time.Millisecond, 16, nil, solid(color.RGBA{G: 255, A: 255}))
	c.SetAlbums(testAlbums("A"))

	img := c.draw(300, 100)
	r, g, _, _ := img.At(150, 50).RGBA()
	assert.Greater(t, g, uint32(0xf000))
	assert.Less(t, r, uint32(0x1000))
	_, _, _, a := img.At(0, 0).RGBA()
	assert.Zero(t, a)
}

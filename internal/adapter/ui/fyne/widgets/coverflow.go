package widgets

import (
	"image"
	"math"
	"sort"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/nfnt/resize"
	xdraw "golang.org/x/image/draw"

	"github.com/tejashwikalptaru/qtunes/internal/domain"
)

// Motion is the animation state of the coverflow.
type Motion int

const (
	MotionIdle Motion = iota
	MotionLeft
	MotionRight
)

// Flow tracks which album is centred and how far an animated shift has run.
type Flow struct {
	count  int
	centre int
	offset float64 // 0..1 progress of the running shift
	motion Motion
}

// SetCount replaces the number of albums and recentres on the first one.
func (f *Flow) SetCount(n int) {
	*f = Flow{count: n}
}

// Centre returns the index of the centred album, or -1 with no albums.
func (f *Flow) Centre() int {
	if f.count == 0 {
		return -1
	}
	return f.centre
}

// Motion returns the running animation, if any.
func (f *Flow) Motion() Motion {
	return f.motion
}

// Begin starts a shift. It reports false while another shift runs or when
// there is no album in that direction.
func (f *Flow) Begin(m Motion) bool {
	if f.motion != MotionIdle {
		return false
	}
	switch m {
	case MotionLeft:
		if f.centre <= 0 {
			return false
		}
	case MotionRight:
		if f.centre >= f.count-1 {
			return false
		}
	default:
		return false
	}
	f.motion = m
	f.offset = 0
	return true
}

// Advance sets the progress of the running shift. At 1 the shift completes
// and the new album is centred.
func (f *Flow) Advance(progress float64) {
	if f.motion == MotionIdle {
		return
	}
	f.offset = math.Min(math.Max(progress, 0), 1)
	if f.offset < 1 {
		return
	}
	if f.motion == MotionLeft {
		f.centre--
	} else {
		f.centre++
	}
	f.offset = 0
	f.motion = MotionIdle
}

// Position returns the fractional index at the centre of the view.
func (f *Flow) Position() float64 {
	switch f.motion {
	case MotionLeft:
		return float64(f.centre) - f.offset
	case MotionRight:
		return float64(f.centre) + f.offset
	default:
		return float64(f.centre)
	}
}

// Slot is one cover placed in the view.
type Slot struct {
	Index int
	// Distance from the centre in cover widths; negative is left
	Distance float64
}

// Visible returns the covers to draw for shown slots, farthest first so
// nearer covers are painted on top.
func (f *Flow) Visible(shown int) []Slot {
	if f.count == 0 || shown <= 0 {
		return nil
	}
	half := shown / 2
	pos := f.Position()
	first := max(int(math.Floor(pos))-half, 0)
	last := min(int(math.Ceil(pos))+half, f.count-1)

	var out []Slot
	for i := first; i <= last; i++ {
		d := float64(i) - pos
		if math.Abs(d) > float64(half)+0.5 {
			continue
		}
		out = append(out, Slot{Index: i, Distance: d})
	}
	sort.SliceStable(out, func(a, b int) bool {
		return math.Abs(out[a].Distance) > math.Abs(out[b].Distance)
	})
	return out
}

// CoverLoader returns the artwork for an album, or nil for the default cover.
type CoverLoader func(album domain.AlbumEntry) image.Image

// Coverflow shows album covers in a row with the selected one in front.
// Side covers shrink with their distance from the centre.
type Coverflow struct {
	widget.BaseWidget

	raster       *canvas.Raster
	loadCover    CoverLoader
	defaultCover image.Image

	shown     int
	shiftTime time.Duration
	thumbSize uint

	mu     sync.Mutex
	albums []domain.AlbumEntry
	flow   Flow
	thumbs map[string]image.Image

	// OnCentreChanged is called with the centred album after every shift.
	OnCentreChanged func(album domain.AlbumEntry)
	// OnChosen is called when the centred cover is double-tapped.
	OnChosen func(album domain.AlbumEntry)
}

// NewCoverflow creates a coverflow showing up to shown covers.
func NewCoverflow(shown int, shiftTime time.Duration, thumbSize uint, loader CoverLoader, defaultCover image.Image) *Coverflow {
	c := &Coverflow{
		loadCover:    loader,
		defaultCover: defaultCover,
		shown:        shown,
		shiftTime:    shiftTime,
		thumbSize:    thumbSize,
		thumbs:       make(map[string]image.Image),
	}
	c.raster = canvas.NewRaster(c.draw)
	c.ExtendBaseWidget(c)
	return c
}

// CreateRenderer implements fyne.Widget.
func (c *Coverflow) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(c.raster)
}

// MinSize returns the minimum size of the coverflow.
func (c *Coverflow) MinSize() fyne.Size {
	return fyne.NewSize(600, 220)
}

// SetAlbums replaces the albums and centres the first.
func (c *Coverflow) SetAlbums(albums []domain.AlbumEntry) {
	c.mu.Lock()
	c.albums = append([]domain.AlbumEntry(nil), albums...)
	c.flow.SetCount(len(albums))
	c.thumbs = make(map[string]image.Image)
	c.mu.Unlock()

	c.centreChanged()
	c.raster.Refresh()
}

// Current returns the centred album.
func (c *Coverflow) Current() (domain.AlbumEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.flow.Centre()
	if i < 0 {
		return domain.AlbumEntry{}, false
	}
	return c.albums[i], true
}

// ShiftLeft animates to the album left of the centre.
func (c *Coverflow) ShiftLeft() {
	c.shift(MotionLeft)
}

// ShiftRight animates to the album right of the centre.
func (c *Coverflow) ShiftRight() {
	c.shift(MotionRight)
}

func (c *Coverflow) shift(m Motion) {
	c.mu.Lock()
	ok := c.flow.Begin(m)
	c.mu.Unlock()
	if !ok {
		return
	}

	anim := fyne.NewAnimation(c.shiftTime, func(progress float32) {
		c.mu.Lock()
		c.flow.Advance(float64(progress))
		done := c.flow.Motion() == MotionIdle
		c.mu.Unlock()

		c.raster.Refresh()
		if done {
			c.centreChanged()
		}
	})
	anim.Curve = fyne.AnimationLinear
	anim.Start()
}

func (c *Coverflow) centreChanged() {
	if album, ok := c.Current(); ok && c.OnCentreChanged != nil {
		c.OnCentreChanged(album)
	}
}

// Tapped shifts toward a side cover.
func (c *Coverflow) Tapped(ev *fyne.PointEvent) {
	switch side := c.sideAt(ev.Position.X); {
	case side < 0:
		c.ShiftLeft()
	case side > 0:
		c.ShiftRight()
	}
}

// DoubleTapped chooses the centred album.
func (c *Coverflow) DoubleTapped(ev *fyne.PointEvent) {
	if c.sideAt(ev.Position.X) != 0 {
		return
	}
	if album, ok := c.Current(); ok && c.OnChosen != nil {
		c.OnChosen(album)
	}
}

// sideAt reports whether x falls left of (-1), on (0) or right of (1) the centre cover.
func (c *Coverflow) sideAt(x float32) int {
	w := c.Size().Width
	half := c.coverSide(c.Size()) / 2
	switch {
	case x < w/2-half:
		return -1
	case x > w/2+half:
		return 1
	default:
		return 0
	}
}

func (c *Coverflow) coverSide(size fyne.Size) float32 {
	return min(size.Height*0.9, size.Width/float32(max(c.shown, 1))*1.6)
}

// thumbnail returns the cached, resized cover of album i.
func (c *Coverflow) thumbnail(album domain.AlbumEntry) image.Image {
	c.mu.Lock()
	thumb, ok := c.thumbs[album.ID]
	c.mu.Unlock()
	if ok {
		return thumb
	}

	var img image.Image
	if c.loadCover != nil {
		img = c.loadCover(album)
	}
	if img == nil {
		img = c.defaultCover
	}
	if img == nil {
		return nil
	}
	thumb = resize.Thumbnail(c.thumbSize, c.thumbSize, img, resize.Lanczos3)

	c.mu.Lock()
	c.thumbs[album.ID] = thumb
	c.mu.Unlock()
	return thumb
}

// draw is the raster generator function that renders the visible covers.
func (c *Coverflow) draw(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return img
	}

	c.mu.Lock()
	slots := c.flow.Visible(c.shown)
	albums := c.albums
	c.mu.Unlock()

	side := float64(c.coverSide(fyne.NewSize(float32(w), float32(h))))
	spacing := float64(w) / float64(max(c.shown, 1))
	for _, s := range slots {
		thumb := c.thumbnail(albums[s.Index])
		if thumb == nil {
			continue
		}
		scale := 1 - 0.18*math.Abs(s.Distance)
		size := side * scale
		cx := float64(w)/2 + s.Distance*spacing
		cy := float64(h) / 2
		rect := image.Rect(int(cx-size/2), int(cy-size/2), int(cx+size/2), int(cy+size/2))
		xdraw.ApproxBiLinear.Scale(img, rect, thumb, thumb.Bounds(), xdraw.Over, nil)
	}
	return img
}

var (
	_ fyne.Tappable       = (*Coverflow)(nil)
	_ fyne.DoubleTappable = (*Coverflow)(nil)
)

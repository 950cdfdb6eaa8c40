package res

import (
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
)

// DefaultCoverSize is the side of the default cover in pixels.
const DefaultCoverSize = 256

var (
	coverOnce sync.Once
	cover     image.Image
)

// DefaultCover returns the artwork shown for songs and albums without any.
// It is a record on a dark gradient and is drawn once.
func DefaultCover() image.Image {
	coverOnce.Do(func() {
		cover = drawRecord(DefaultCoverSize)
	})
	return cover
}

func drawRecord(size int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	top := colorful.Color{R: 0.22, G: 0.24, B: 0.32}
	bottom := colorful.Color{R: 0.05, G: 0.05, B: 0.08}
	label := colorful.Hcl(20, 0.6, 0.55).Clamped()

	c := float64(size) / 2
	outer := c * 0.86
	inner := c * 0.3
	hole := c * 0.04

	for y := range size {
		bg := top.BlendLab(bottom, float64(y)/float64(size-1)).Clamped()
		for x := range size {
			d := math.Hypot(float64(x)-c+0.5, float64(y)-c+0.5)
			var px colorful.Color
			switch {
			case d <= hole:
				px = bg
			case d <= inner:
				px = label
			case d <= outer:
				// Grooves
				shade := 0.08 + 0.03*math.Sin(d*0.9)
				px = colorful.Color{R: shade, G: shade, B: shade + 0.01}
			default:
				px = bg
			}
			r, g, b := px.Clamped().RGB255()
			img.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: b, A: 0xff})
		}
	}
	return img
}

package beepengine

import (
	"math"

	"github.com/gopxl/beep/v2"
)

// windowSize is the number of recent mono samples kept for level analysis.
const windowSize = 1024

const (
	lowestBand  = 60.0
	highestBand = 12000.0
)

// levelTap passes audio through unchanged and remembers the most recent
// samples, downmixed to mono. It is only touched with the sink locked.
type levelTap struct {
	beep.Streamer
	ring [windowSize]float64
	pos  int
}

func (t *levelTap) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.Streamer.Stream(samples)
	for i := 0; i < n; i++ {
		t.ring[t.pos] = (samples[i][0] + samples[i][1]) / 2
		t.pos = (t.pos + 1) % windowSize
	}
	return n, ok
}

// snapshot returns the window in chronological order.
func (t *levelTap) snapshot() []float64 {
	out := make([]float64, windowSize)
	n := copy(out, t.ring[t.pos:])
	copy(out[n:], t.ring[:t.pos])
	return out
}

// bandFrequencies returns bands centre frequencies spaced logarithmically
// from 60 Hz up to 12 kHz or just below Nyquist, whichever is lower.
func bandFrequencies(sampleRate beep.SampleRate, bands int) []float64 {
	out := make([]float64, bands)
	top := math.Min(highestBand, float64(sampleRate)/2*0.9)
	ratio := 1.0
	if bands > 1 {
		ratio = math.Pow(top/lowestBand, 1/float64(bands-1))
	}
	for b := range out {
		out[b] = lowestBand * math.Pow(ratio, float64(b))
	}
	return out
}

// bandLevels measures the energy of window at each band frequency with the
// Goertzel algorithm. Results are in [0, 1].
func bandLevels(window []float64, sampleRate beep.SampleRate, bands int) []float64 {
	out := make([]float64, bands)
	if bands <= 0 || len(window) < 2 || sampleRate <= 0 {
		return out
	}

	n := float64(len(window))
	for b, freq := range bandFrequencies(sampleRate, bands) {
		coeff := 2 * math.Cos(2*math.Pi*freq/float64(sampleRate))

		var s1, s2 float64
		for i, x := range window {
			// Hann window
			w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/(n-1))
			s0 := x*w + coeff*s1 - s2
			s2, s1 = s1, s0
		}
		power := s1*s1 + s2*s2 - coeff*s1*s2
		amplitude := 4 * math.Sqrt(math.Max(power, 0)) / n
		out[b] = math.Min(1, math.Sqrt(amplitude))
	}
	return out
}

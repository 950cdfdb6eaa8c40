package tags

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	goflac "github.com/go-flac/go-flac"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
	"github.com/llehouerou/go-mp3"

	"github.com/tejashwikalptaru/qtunes/internal/domain"
)

// Duration returns the playing time of an audio file without decoding it
// where the container allows.
func Duration(path string) (time.Duration, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return mp3Duration(path)
	case ".flac":
		if d, err := flacStreamInfoDuration(path); err == nil {
			return d, nil
		}
		return decoderDuration(path, func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return flac.Decode(f) })
	case ".wav":
		return decoderDuration(path, func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return wav.Decode(f) })
	case ".ogg":
		return decoderDuration(path, func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return vorbis.Decode(f) })
	default:
		return 0, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func mp3Duration(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		return 0, err
	}
	rate := decoder.SampleRate()
	if rate == 0 {
		return 0, errors.New("mp3: invalid sample rate")
	}
	samples := max(decoder.SampleCount(), 0)
	return time.Duration(float64(samples) / float64(rate) * float64(time.Second)), nil
}

// flacStreamInfoDuration reads the sample rate and total samples from the
// STREAMINFO block.
func flacStreamInfoDuration(path string) (time.Duration, error) {
	file, err := goflac.ParseFile(path)
	if err != nil {
		return 0, err
	}
	for _, meta := range file.Meta {
		if meta.Type != goflac.StreamInfo || len(meta.Data) < 18 {
			continue
		}
		data := meta.Data
		sampleRate := int64(data[10])<<12 | int64(data[11])<<4 | int64(data[12])>>4
		totalSamples := int64(data[13]&0x0F)<<32 | int64(data[14])<<24 | int64(data[15])<<16 | int64(data[16])<<8 | int64(data[17])
		if sampleRate == 0 {
			return 0, errors.New("flac: zero sample rate")
		}
		return time.Duration(totalSamples) * time.Second / time.Duration(sampleRate), nil
	}
	return 0, errors.New("flac: no streaminfo block")
}

func decoderDuration(path string, decode func(*os.File) (beep.StreamSeekCloser, beep.Format, error)) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	stream, format, err := decode(f)
	if err != nil {
		_ = f.Close()
		return 0, err
	}
	defer stream.Close()
	return format.SampleRate.D(stream.Len()), nil
}

package audio

import (
	"context"
	"encoding/binary"
	"math"

	"github.com/austinkregel/onsetcli/internal/onset"
)

const (
	previewSampleRate  = 44100
	clickDurationSec   = 0.03
	clickFrequencyHz   = 1200.0
	clickAmplitude     = 0.8
)

// PreviewOnsets synthesizes a mono click track marking every onset in src
// and plays it through an Oto sink (spec.md's supplemented "combine/preview"
// surface; the onsets themselves are computed entirely offline by
// onset.Process). It blocks until playback finishes or ctx is canceled.
func PreviewOnsets(ctx context.Context, src *onset.AudioSource) error {
	samples := synthesizeClickTrack(src)

	out, err := NewOtoOutput(previewSampleRate, 1)
	if err != nil {
		return err
	}
	defer out.Close()

	pcm := make([]byte, len(samples)*2)
	for i, s := range samples {
		v := int16(clampSample(s) * 32767)
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(v))
	}

	const chunkSize = 4096
	for off := 0; off < len(pcm); off += chunkSize {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		end := off + chunkSize
		if end > len(pcm) {
			end = len(pcm)
		}
		if _, err := out.Write(pcm[off:end]); err != nil {
			return err
		}
	}
	out.Drain()
	return nil
}

// synthesizeClickTrack renders a silent buffer spanning src.Duration at
// previewSampleRate with a short decaying sine burst overlaid at each
// onset's time.
func synthesizeClickTrack(src *onset.AudioSource) []float64 {
	numSamples := int(src.Duration * previewSampleRate)
	if numSamples <= 0 {
		numSamples = 1
	}
	out := make([]float64, numSamples)

	clickLen := int(clickDurationSec * previewSampleRate)

	for _, f := range src.Frames {
		for _, o := range f.Onsets {
			start := int(o.Time * previewSampleRate)
			for i := 0; i < clickLen; i++ {
				idx := start + i
				if idx < 0 || idx >= numSamples {
					continue
				}
				decay := 1.0 - float64(i)/float64(clickLen)
				out[idx] += clickAmplitude * decay * math.Sin(2*math.Pi*clickFrequencyHz*float64(i)/previewSampleRate)
			}
		}
	}
	return out
}

func clampSample(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

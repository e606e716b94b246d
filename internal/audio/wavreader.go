package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Decoder is the capability onsetcli needs from any source reader: a path in,
// decoded planar PCM out. FFmpegDecoder and the native WAV fast path both
// satisfy it.
type Decoder interface {
	Decode(ctx context.Context, path string) (*Decoded, error)
}

// WAVReader decodes .wav files directly with github.com/go-audio/wav,
// skipping the ffmpeg subprocess entirely for the one container Go can read
// natively. Grounded on the go-audio/wav + go-audio/audio dependency pair
// carried by the linuxmatters podcast-processing repos in the examples pack.
type WAVReader struct {
	fallback Decoder
}

// NewWAVReader wraps fallback, which handles any non-WAV input.
func NewWAVReader(fallback Decoder) *WAVReader {
	return &WAVReader{fallback: fallback}
}

// Decode reads path as WAV if its extension says so, otherwise defers to the
// wrapped fallback decoder.
func (r *WAVReader) Decode(ctx context.Context, path string) (*Decoded, error) {
	if !strings.EqualFold(filepath.Ext(path), ".wav") {
		if r.fallback == nil {
			return nil, &DecodeFailedError{Path: path, Err: fmt.Errorf("not a wav file and no fallback decoder configured")}
		}
		return r.fallback.Decode(ctx, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeFailedError{Path: path, Err: err}
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		if r.fallback != nil {
			return r.fallback.Decode(ctx, path)
		}
		return nil, &DecodeFailedError{Path: path, Err: fmt.Errorf("invalid wav file")}
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, &DecodeFailedError{Path: path, Err: err}
	}

	return &Decoded{
		PCM:        deinterleave(buf),
		SampleRate: buf.Format.SampleRate,
		Channels:   buf.Format.NumChannels,
	}, nil
}

// deinterleave splits a go-audio IntBuffer's interleaved samples into one
// normalized []float64 per channel.
func deinterleave(buf *audio.IntBuffer) [][]float64 {
	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	numFrames := len(buf.Data) / channels

	fullScale := float64(int64(1) << uint(buf.SourceBitDepth-1))
	if buf.SourceBitDepth <= 0 {
		fullScale = float64(1 << 15) // assume 16-bit if the header omitted it
	}

	pcm := make([][]float64, channels)
	for ch := range pcm {
		pcm[ch] = make([]float64, numFrames)
	}

	for i := 0; i < numFrames; i++ {
		for ch := 0; ch < channels; ch++ {
			pcm[ch][i] = float64(buf.Data[i*channels+ch]) / fullScale
		}
	}
	return pcm
}

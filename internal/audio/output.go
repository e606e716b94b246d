package audio

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/hajimehoshi/oto/v2"
)

const (
	defaultBitDepth = 2 // 16-bit = 2 bytes per sample

	// maxBufferSize throttles Write so a producer can't race arbitrarily far
	// ahead of playback. 250ms at 44100Hz mono 16-bit.
	maxBufferSize = 22050
)

// OtoOutput is a PCM sink backed by the Oto library. Grounded on the
// teacher's own internal/audio/output.go; the real-time FFT
// visualization/analyzer hook has been dropped since onsetcli never renders
// a live spectrum, only a click-track preview of already-computed onsets.
type OtoOutput struct {
	context    *oto.Context
	player     oto.Player
	sampleRate int
	channels   int
	mu         sync.Mutex
	cond       *sync.Cond
	buffer     *bytes.Buffer
	closed     bool
}

// NewOtoOutput creates an Oto-based PCM sink at the given sample rate and
// channel count, 16-bit signed little-endian.
func NewOtoOutput(sampleRate, channels int) (*OtoOutput, error) {
	ctx, ready, err := oto.NewContext(sampleRate, channels, defaultBitDepth)
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-ready

	output := &OtoOutput{
		context:    ctx,
		sampleRate: sampleRate,
		channels:   channels,
		buffer:     &bytes.Buffer{},
	}
	output.cond = sync.NewCond(&output.mu)
	output.player = ctx.NewPlayer(output)

	return output, nil
}

// Read implements io.Reader for the Oto player to pull from.
func (o *OtoOutput) Read(p []byte) (n int, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed && o.buffer.Len() == 0 {
		return 0, io.EOF
	}
	if o.buffer.Len() == 0 {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}
	return o.buffer.Read(p)
}

// Write appends PCM bytes to the playback buffer, blocking while it is full
// so a producer can't race arbitrarily far ahead of playback.
func (o *OtoOutput) Write(data []byte) (int, error) {
	for {
		o.mu.Lock()
		if o.buffer.Len() < maxBufferSize {
			break
		}
		o.mu.Unlock()
		time.Sleep(10 * time.Millisecond)
	}
	defer o.mu.Unlock()

	n, err := o.buffer.Write(data)
	if err != nil {
		return n, err
	}
	if o.player != nil && !o.player.IsPlaying() {
		o.player.Play()
	}
	return n, nil
}

// IsPlaying reports whether audio is currently playing.
func (o *OtoOutput) IsPlaying() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.player != nil && o.player.IsPlaying()
}

// Drain blocks until the buffer has been fully consumed by playback.
func (o *OtoOutput) Drain() {
	for {
		o.mu.Lock()
		empty := o.buffer.Len() == 0
		o.mu.Unlock()
		if empty {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// Close releases the audio output resources.
func (o *OtoOutput) Close() error {
	o.mu.Lock()
	o.closed = true
	o.cond.Broadcast()
	o.mu.Unlock()

	if o.player != nil {
		return o.player.Close()
	}
	return nil
}

// SampleRate returns the sink's sample rate.
func (o *OtoOutput) SampleRate() int { return o.sampleRate }

// Channels returns the sink's channel count.
func (o *OtoOutput) Channels() int { return o.channels }

var _ io.Reader = (*OtoOutput)(nil)

package onset

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"math/bits"
)

// contentID derives a stable identifier for an AudioSource from its actual
// sample content rather than any caller-supplied path, so the same audio
// analyzed from two different locations (or after a rename) gets the same
// ID while AudioSource.URI still carries wherever it came from this time.
func contentID(pcm [][]float64, sampleRate, channels int) string {
	h := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(sampleRate))
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(channels))
	h.Write(buf[:])
	for _, ch := range pcm {
		for _, s := range ch {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(s))
			h.Write(buf[:])
		}
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// DefaultProcessor is the package's single concrete Processor
// implementation (Design Notes §9: capability interface, not a base/derived
// class pair).
type DefaultProcessor struct{}

// Process runs the full offline pipeline described in spec.md §§2-4 on a
// decoded PCM buffer and returns the resulting AudioSource, or a typed
// error for invalid configuration/input. A flat descriptor (silence or a
// perfectly steady signal) is not an error: it yields an AudioSource with
// frames populated and zero onsets.
func (DefaultProcessor) Process(pcm [][]float64, sampleRate int, channels int, fps float64, cfg *Config) (*AudioSource, error) {
	return Process(pcm, sampleRate, channels, fps, cfg)
}

// Process is the package-level convenience entry point; see
// DefaultProcessor.Process.
func Process(pcm [][]float64, sampleRate int, channels int, fps float64, cfg *Config) (*AudioSource, error) {
	cfg = cfg.withDefaults()

	if fps <= 0 {
		return nil, &InvalidConfigError{Reason: "fps must be strictly positive", Err: ErrInvalidConfig}
	}
	if cfg.FFTSize < 2 || bits.OnesCount(uint(cfg.FFTSize)) != 1 {
		return nil, &InvalidConfigError{Reason: "fft_size must be a power of two", Err: ErrInvalidConfig}
	}
	if len(pcm) == 0 {
		return nil, &InvalidConfigError{Reason: "pcm has no channels", Err: ErrEmptyPCM}
	}
	totalSamples := 0
	for _, ch := range pcm {
		if len(ch) > totalSamples {
			totalSamples = len(ch)
		}
	}
	if totalSamples == 0 {
		return &AudioSource{
			ID:            contentID(pcm, sampleRate, channels),
			SampleRate:    sampleRate,
			FPS:           fps,
			Channels:      channels,
			MaxLoudnessDB: loudnessFloorDB,
		}, nil
	}

	mono := mixdown(pcm)
	hop := computeHop(sampleRate, fps)
	rawFrames := iterateFrames(mono, hop, cfg.FFTSize)

	analyzer := newSpectralAnalyzer(cfg.FFTSize)
	novelty := newNoveltyTracker(cfg.FFTSize / 2)

	frames := make([]AudioFrame, len(rawFrames))
	descriptor := make([]float64, len(rawFrames))
	times := make([]float64, len(rawFrames))
	rmsVals := make([]float64, len(rawFrames))
	dbVals := make([]float64, len(rawFrames))

	for i, rf := range rawFrames {
		logMag := analyzer.analyze(rf.analysisSamples)
		d := novelty.descriptor(logMag)
		rms, db := measureFrame(rf.exactSamples)

		t := float64(rf.index) * float64(hop) / float64(sampleRate)

		frames[i] = AudioFrame{
			Index:        rf.index,
			Time:         t,
			ExactSamples: rf.exactSamples,
			RMS:          rms,
			LoudnessDB:   db,
		}
		descriptor[i] = d
		times[i] = t
		rmsVals[i] = rms
		dbVals[i] = db
	}

	refractoryFrames := int(roundHalfAwayFromZero(cfg.RefractorySeconds * fps))

	raw := pickPeaks(descriptor, times, rmsVals, dbVals, cfg.ThresholdHalfWindow, cfg.Sensitivity, refractoryFrames)

	kept := raw
	if cfg.ApplyHysteresis {
		kept = applyHysteresis(kept, cfg.HysteresisHigh, cfg.HysteresisLow)
	}
	if cfg.ApplyMinHitGap {
		kept = applyMinHitGap(kept, cfg.MinHitGapFrames)
	}

	frameIndices := make([]int, len(kept))
	for i, o := range kept {
		frameIndices[i] = o.FrameIndex
	}
	bpm := estimateTempo(frameIndices, fps)

	linkOnsets(kept)

	for i := range kept {
		o := kept[i]
		f := &frames[o.FrameIndex]
		f.Onset = &kept[i]
		f.Onsets = append(f.Onsets, o)
	}
	for i := range frames {
		frames[i].BPM = bpm
	}

	summary := normalizeFrames(frames)

	src := &AudioSource{
		ID:                   contentID(pcm, sampleRate, channels),
		SampleRate:           sampleRate,
		Duration:             float64(totalSamples) / float64(sampleRate),
		FPS:                  fps,
		Channels:             channels,
		Frames:               frames,
		AverageBPM:           bpm,
		AverageRMS:           summary.averageRMS,
		AverageLoudnessDB:    summary.averageLoudnessDB,
		MaxLoudnessDB:        summary.maxLoudnessDB,
		AverageOnsetLoudness: summary.averageOnsetLoudness,
	}

	return src, nil
}

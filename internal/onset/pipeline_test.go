package onset

import (
	"errors"
	"testing"
)

func silentPCM(sampleRate int, seconds float64) [][]float64 {
	return [][]float64{make([]float64, int(float64(sampleRate)*seconds))}
}

func TestProcessRejectsNonPositiveFPS(t *testing.T) {
	_, err := Process(silentPCM(48000, 1), 48000, 1, 0, nil)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestProcessRejectsNonPowerOfTwoFFTSize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FFTSize = 1000
	_, err := Process(silentPCM(48000, 1), 48000, 1, 60, cfg)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestProcessRejectsNoChannels(t *testing.T) {
	_, err := Process([][]float64{}, 48000, 1, 60, nil)
	if !errors.Is(err, ErrEmptyPCM) {
		t.Fatalf("expected ErrEmptyPCM, got %v", err)
	}
}

func TestProcessZeroSamplesIsNotAnError(t *testing.T) {
	src, err := Process([][]float64{{}}, 48000, 1, 60, nil)
	if err != nil {
		t.Fatalf("zero-length pcm must not be an error, got %v", err)
	}
	if len(src.Frames) != 0 {
		t.Errorf("expected zero frames, got %d", len(src.Frames))
	}
	if src.AverageBPM != 0 {
		t.Errorf("expected average bpm 0, got %v", src.AverageBPM)
	}
	if src.MaxLoudnessDB != loudnessFloorDB {
		t.Errorf("expected max loudness pinned to floor, got %v", src.MaxLoudnessDB)
	}
}

func TestProcessSilence(t *testing.T) {
	const sampleRate = 48000
	const fps = 60.0

	src, err := Process(silentPCM(sampleRate, 2.0), sampleRate, 1, fps, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(src.Frames) != 120 {
		t.Fatalf("expected 120 frames for 2.0s at 60fps, got %d", len(src.Frames))
	}
	for i, f := range src.Frames {
		if f.RMS != 0 {
			t.Errorf("frame %d: expected rms 0, got %v", i, f.RMS)
		}
		if f.LoudnessDB != loudnessFloorDB {
			t.Errorf("frame %d: expected loudness floor, got %v", i, f.LoudnessDB)
		}
		if f.Onset != nil {
			t.Errorf("frame %d: silence must never carry an onset", i)
		}
	}
	if src.AverageBPM != 0 {
		t.Errorf("expected average bpm 0 for silence, got %v", src.AverageBPM)
	}
}

func TestProcessShorterThanFFTSizeProducesSingleFrameNoOnset(t *testing.T) {
	const sampleRate = 48000
	pcm := [][]float64{make([]float64, 500)}

	cfg := DefaultConfig()
	cfg.FFTSize = 2048

	src, err := Process(pcm, sampleRate, 1, 60, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(src.Frames) != 1 {
		t.Fatalf("expected exactly 1 zero-padded frame, got %d", len(src.Frames))
	}
	if src.Frames[0].Onset != nil {
		t.Errorf("a single frame can never be a peak (no neighbors), got an onset")
	}
}

func TestProcessSingleImpulseProducesAtMostAFewOnsetsNearItsTime(t *testing.T) {
	const sampleRate = 48000
	const fps = 60.0
	const seconds = 1.0

	mono := make([]float64, int(sampleRate*seconds))
	impulseStart := int(0.5 * sampleRate)
	for i := impulseStart; i < impulseStart+400 && i < len(mono); i++ {
		mono[i] = 1.0
	}

	src, err := Process([][]float64{mono}, sampleRate, 1, fps, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var onsetFrames []int
	for _, f := range src.Frames {
		if f.Onset != nil {
			onsetFrames = append(onsetFrames, f.Index)
		}
	}
	if len(onsetFrames) == 0 {
		t.Fatalf("expected at least one onset near the impulse, got none")
	}

	wantFrame := 30 // round(0.5 * 60)
	for _, idx := range onsetFrames {
		if idx < wantFrame-5 || idx > wantFrame+5 {
			t.Errorf("onset frame %d too far from expected impulse frame %d", idx, wantFrame)
		}
	}
}

func TestProcessStereoOfDuplicateChannelsMatchesMono(t *testing.T) {
	const sampleRate = 48000
	mono := make([]float64, sampleRate)
	for i := range mono {
		if i%1600 < 200 {
			mono[i] = 0.8
		}
	}
	monoCopy := append([]float64(nil), mono...)
	stereo := [][]float64{mono, monoCopy}

	monoSrc, err := Process([][]float64{mono}, sampleRate, 1, 60, nil)
	if err != nil {
		t.Fatalf("unexpected error (mono): %v", err)
	}
	stereoSrc, err := Process(stereo, sampleRate, 2, 60, nil)
	if err != nil {
		t.Fatalf("unexpected error (stereo): %v", err)
	}

	if len(monoSrc.Frames) != len(stereoSrc.Frames) {
		t.Fatalf("expected identical frame counts, got mono=%d stereo=%d", len(monoSrc.Frames), len(stereoSrc.Frames))
	}
	for i := range monoSrc.Frames {
		if monoSrc.Frames[i].RMS != stereoSrc.Frames[i].RMS {
			t.Errorf("frame %d: rms mismatch mono=%v stereo=%v", i, monoSrc.Frames[i].RMS, stereoSrc.Frames[i].RMS)
		}
		if monoSrc.Frames[i].LoudnessDB != stereoSrc.Frames[i].LoudnessDB {
			t.Errorf("frame %d: loudness mismatch mono=%v stereo=%v", i, monoSrc.Frames[i].LoudnessDB, stereoSrc.Frames[i].LoudnessDB)
		}
	}
	if monoSrc.AverageBPM != stereoSrc.AverageBPM {
		t.Errorf("expected identical average bpm, got mono=%v stereo=%v", monoSrc.AverageBPM, stereoSrc.AverageBPM)
	}
}

func TestProcessIsDeterministic(t *testing.T) {
	const sampleRate = 48000
	mono := make([]float64, sampleRate)
	for i := range mono {
		if i%2000 < 150 {
			mono[i] = 0.9
		}
	}

	first, err := Process([][]float64{mono}, sampleRate, 1, 60, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Process([][]float64{append([]float64(nil), mono...)}, sampleRate, 1, 60, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first.Frames) != len(second.Frames) {
		t.Fatalf("expected identical frame counts across runs, got %d vs %d", len(first.Frames), len(second.Frames))
	}
	for i := range first.Frames {
		if first.Frames[i].RMS != second.Frames[i].RMS || first.Frames[i].LoudnessDB != second.Frames[i].LoudnessDB {
			t.Fatalf("frame %d: non-deterministic output between identical runs", i)
		}
		if (first.Frames[i].Onset == nil) != (second.Frames[i].Onset == nil) {
			t.Fatalf("frame %d: onset presence differs between identical runs", i)
		}
	}
	if first.AverageBPM != second.AverageBPM {
		t.Errorf("expected identical average bpm across runs, got %v vs %v", first.AverageBPM, second.AverageBPM)
	}
}

func TestProcessEveryOnsetFrameIndexMatchesItsFramePosition(t *testing.T) {
	const sampleRate = 48000
	mono := make([]float64, sampleRate)
	for i := range mono {
		if i%1600 < 200 {
			mono[i] = 0.8
		}
	}

	src, err := Process([][]float64{mono}, sampleRate, 1, 60, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, f := range src.Frames {
		if f.Onset != nil && f.Onset.FrameIndex != i {
			t.Errorf("frame %d carries onset with frame index %d", i, f.Onset.FrameIndex)
		}
	}
}

func TestProcessIDIsStableForIdenticalContentAndDistinctOtherwise(t *testing.T) {
	const sampleRate = 48000
	mono := make([]float64, sampleRate)
	for i := range mono {
		if i%2000 < 150 {
			mono[i] = 0.9
		}
	}
	other := make([]float64, sampleRate)
	for i := range other {
		if i%1000 < 80 {
			other[i] = 0.5
		}
	}

	first, err := Process([][]float64{mono}, sampleRate, 1, 60, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ID == "" {
		t.Fatal("expected a non-empty ID")
	}

	second, err := Process([][]float64{append([]float64(nil), mono...)}, sampleRate, 1, 60, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("expected identical content to yield the same ID, got %q vs %q", first.ID, second.ID)
	}

	third, err := Process([][]float64{other}, sampleRate, 1, 60, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ID == third.ID {
		t.Errorf("expected different content to yield different IDs, both were %q", first.ID)
	}
}

func TestDefaultProcessorDelegatesToProcess(t *testing.T) {
	const sampleRate = 48000
	pcm := silentPCM(sampleRate, 0.5)

	var p Processor = DefaultProcessor{}
	got, err := p.Process(pcm, sampleRate, 1, 60, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want, err := Process(pcm, sampleRate, 1, 60, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Frames) != len(want.Frames) {
		t.Errorf("expected DefaultProcessor to match package-level Process, frame counts %d vs %d", len(got.Frames), len(want.Frames))
	}
}

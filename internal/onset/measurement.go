package onset

import "math"

// measureFrame computes RMS and dB loudness from the exact (non-padded) hop
// samples (spec.md §4.E). rms is always >= 0; loudnessDB pins to the -140dB
// floor for near-silence rather than propagating -Inf.
func measureFrame(exactSamples []float64) (rms, loudnessDB float64) {
	if len(exactSamples) == 0 {
		return 0, loudnessFloorDB
	}

	var sumSq float64
	for _, s := range exactSamples {
		sumSq += s * s
	}
	rms = math.Sqrt(sumSq / float64(len(exactSamples)))

	if rms > 1e-7 {
		loudnessDB = 20 * math.Log10(rms)
	} else {
		loudnessDB = loudnessFloorDB
	}
	return rms, loudnessDB
}

func clamp01(v float64) float64 {
	if !isFinite(v) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

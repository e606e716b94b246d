package onset

// noveltyTracker computes the half-wave-rectified, high-frequency-weighted
// log-magnitude spectral flux descriptor (spec.md §4.D), carrying the
// previous frame's log-magnitude spectrum across calls.
type noveltyTracker struct {
	prevLogMag []float64
	hfRamp     []float64
	diff       []float64
}

func newNoveltyTracker(numBins int) *noveltyTracker {
	hf := make([]float64, numBins)
	for k := range hf {
		hf[k] = float64(k) / float64(numBins)
	}
	return &noveltyTracker{
		prevLogMag: make([]float64, numBins),
		hfRamp:     hf,
		diff:       make([]float64, numBins),
	}
}

// descriptor computes D[i] = sum_k max(logMag[k]-prevLogMag[k], 0) * hf[k],
// then stores logMag as prevLogMag for the next call.
func (n *noveltyTracker) descriptor(logMag []float64) float64 {
	var d float64
	for k, v := range logMag {
		diff := v - n.prevLogMag[k]
		if diff < 0 {
			diff = 0
		}
		n.diff[k] = diff * n.hfRamp[k]
		d += n.diff[k]
	}
	copy(n.prevLogMag, logMag)
	return d
}

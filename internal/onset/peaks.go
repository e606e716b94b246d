package onset

// pickPeaks implements the centered adaptive-threshold peak picker
// (spec.md §4.F). It returns raw onset candidates in strictly increasing
// frame order, already respecting the refractory period, but BEFORE the
// optional hysteresis/min-gap post-filters run.
//
// A flat descriptor (d_max <= d_min) is not an error: it simply yields zero
// onsets.
func pickPeaks(d []float64, frameTimes []float64, frameRMS []float64, frameDB []float64, halfWindow int, sensitivity float64, refractoryFrames int) []AudioOnset {
	f := len(d)
	if f == 0 {
		return nil
	}

	dMin, dMax := d[0], d[0]
	for _, v := range d {
		if v < dMin {
			dMin = v
		}
		if v > dMax {
			dMax = v
		}
	}
	if dMax <= dMin {
		return nil
	}
	dRange := dMax - dMin

	var onsets []AudioOnset
	lastOnsetFrame := -1 << 30 // effectively -infinity

	for i := 1; i < f-1; i++ {
		lo := i - halfWindow
		if lo < 0 {
			lo = 0
		}
		hi := i + halfWindow + 1
		if hi > f {
			hi = f
		}

		var windowSum float64
		for k := lo; k < hi; k++ {
			windowSum += d[k]
		}
		windowCount := (hi - lo) - 1
		if windowCount < 1 {
			windowCount = 1
		}
		localMean := (windowSum - d[i]) / float64(windowCount)
		threshold := localMean * sensitivity

		if !isFinite(d[i]) || !isFinite(threshold) {
			continue
		}

		isPeak := d[i] > threshold && d[i] > d[i-1] && d[i] > d[i+1]
		withinRefractory := (i - lastOnsetFrame) <= refractoryFrames
		if !isPeak || withinRefractory {
			continue
		}

		lastOnsetFrame = i

		loudnessNormalized := clamp01((frameDB[i] + 60) / 60)

		onsets = append(onsets, AudioOnset{
			Time:                 frameTimes[i],
			FrameIndex:           i,
			Descriptor:           d[i],
			ThresholdAtDetection: threshold,
			DescriptorNormalized: clamp01((d[i] - dMin) / dRange),
			RMS:                  frameRMS[i],
			LoudnessDB:           frameDB[i],
			LoudnessNormalized:   loudnessNormalized,
		})
	}

	return onsets
}

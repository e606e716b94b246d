package onset

// linkOnsets sets next_onset_frame/distance_to_next_onset on each onset
// except the last, which keeps its zero-value link fields (spec.md §4.I).
func linkOnsets(onsets []AudioOnset) {
	for k := 0; k < len(onsets)-1; k++ {
		onsets[k].NextOnsetFrame = onsets[k+1].FrameIndex
		onsets[k].DistanceToNextOnset = onsets[k+1].FrameIndex - onsets[k].FrameIndex
	}
}

// normalizationSummary holds the aggregate scalars computed over the full
// frame/onset set (spec.md §4.I).
type normalizationSummary struct {
	averageRMS           float64
	averageLoudnessDB    float64
	maxLoudnessDB        float64
	averageOnsetLoudness float64
}

// normalizeFrames fills in each frame's RMS/loudness normalized fields in
// place and returns the aggregate summary. An empty frame slice yields a
// zeroed summary with loudness pinned to the -140dB floor.
func normalizeFrames(frames []AudioFrame) normalizationSummary {
	if len(frames) == 0 {
		return normalizationSummary{maxLoudnessDB: loudnessFloorDB}
	}

	maxRMS := 0.0
	maxLoudnessDB := loudnessFloorDB
	for i := range frames {
		if frames[i].RMS > maxRMS {
			maxRMS = frames[i].RMS
		}
		if frames[i].LoudnessDB > maxLoudnessDB {
			maxLoudnessDB = frames[i].LoudnessDB
		}
	}

	var sumRMS, sumLoudness float64
	var onsetLoudnessSum float64
	var onsetCount int

	relDenom := maxLoudnessDB - loudnessFloorDB

	for i := range frames {
		f := &frames[i]

		if maxRMS > 0 {
			f.RMSNormalized = f.RMS / maxRMS
		} else {
			f.RMSNormalized = 0
		}

		f.LoudnessNormalized = clamp01((f.LoudnessDB + 60) / 60)

		if relDenom > 0 {
			f.RelativeLoudnessNormalized = clamp01((f.LoudnessDB - loudnessFloorDB) / relDenom)
		} else {
			f.RelativeLoudnessNormalized = 0
		}

		sumRMS += f.RMS
		sumLoudness += f.LoudnessDB

		if f.Onset != nil {
			onsetLoudnessSum += f.Onset.LoudnessDB
			onsetCount++
		}
	}

	summary := normalizationSummary{
		averageRMS:        sumRMS / float64(len(frames)),
		averageLoudnessDB: sumLoudness / float64(len(frames)),
		maxLoudnessDB:     maxLoudnessDB,
	}
	if onsetCount > 0 {
		summary.averageOnsetLoudness = onsetLoudnessSum / float64(onsetCount)
	}
	return summary
}

package onset

// applyHysteresis runs the Schmitt-trigger gate over onsets in time order
// (spec.md §4.G). high/low are clamped so high >= low + 0.01, matching the
// spec's "clamped" requirement.
func applyHysteresis(onsets []AudioOnset, high, low float64) []AudioOnset {
	if high < low+0.01 {
		high = low + 0.01
	}

	kept := make([]AudioOnset, 0, len(onsets))
	gateOpen := false

	for _, o := range onsets {
		n := o.DescriptorNormalized
		if gateOpen {
			if n < low {
				gateOpen = false
				continue
			}
			kept = append(kept, o)
			continue
		}
		if n >= high {
			gateOpen = true
			kept = append(kept, o)
		}
	}
	return kept
}

// applyMinHitGap deduplicates onsets that are closer than minGapFrames apart,
// keeping the stronger (by DescriptorNormalized) of each colliding pair
// (spec.md §4.G).
func applyMinHitGap(onsets []AudioOnset, minGapFrames int) []AudioOnset {
	if minGapFrames <= 0 || len(onsets) == 0 {
		return onsets
	}

	kept := make([]AudioOnset, 0, len(onsets))
	for _, cur := range onsets {
		if len(kept) == 0 {
			kept = append(kept, cur)
			continue
		}
		last := &kept[len(kept)-1]
		if cur.FrameIndex-last.FrameIndex < minGapFrames {
			if cur.DescriptorNormalized > last.DescriptorNormalized {
				*last = cur
			}
			continue
		}
		kept = append(kept, cur)
	}
	return kept
}

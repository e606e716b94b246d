package onset

import "testing"

func onsetAt(frame int, normalized float64) AudioOnset {
	return AudioOnset{FrameIndex: frame, DescriptorNormalized: normalized}
}

func TestApplyHysteresisOpensOnlyAboveHigh(t *testing.T) {
	onsets := []AudioOnset{
		onsetAt(0, 0.20), // below high, gate stays closed
		onsetAt(1, 0.30), // above high, opens gate
		onsetAt(2, 0.18), // above low, gate stays open
		onsetAt(3, 0.10), // below low, closes gate
		onsetAt(4, 0.25), // above high again, reopens
	}

	kept := applyHysteresis(onsets, 0.24, 0.17)

	wantFrames := []int{1, 2, 4}
	if len(kept) != len(wantFrames) {
		t.Fatalf("expected %d kept onsets, got %d", len(wantFrames), len(kept))
	}
	for i, w := range wantFrames {
		if kept[i].FrameIndex != w {
			t.Errorf("kept[%d]: expected frame %d, got %d", i, w, kept[i].FrameIndex)
		}
	}
}

func TestApplyHysteresisClampsInvertedThresholds(t *testing.T) {
	// high < low should be clamped so high >= low + 0.01 rather than letting
	// every onset through the gate.
	onsets := []AudioOnset{onsetAt(0, 0.5)}
	kept := applyHysteresis(onsets, 0.1, 0.3)

	if len(kept) != 1 {
		t.Fatalf("expected the single strong onset to still pass, got %d", len(kept))
	}
}

func TestApplyMinHitGapDisabledKeepsAll(t *testing.T) {
	onsets := []AudioOnset{onsetAt(0, 0.5), onsetAt(1, 0.9)}
	kept := applyMinHitGap(onsets, 0)
	if len(kept) != 2 {
		t.Errorf("minGapFrames=0 should disable the filter, got %d kept", len(kept))
	}
}

func TestApplyMinHitGapKeepsStrongerOfCollidingPair(t *testing.T) {
	onsets := []AudioOnset{
		onsetAt(10, 0.4),
		onsetAt(11, 0.9), // within gap of 2 frames, stronger
	}
	kept := applyMinHitGap(onsets, 2)

	if len(kept) != 1 {
		t.Fatalf("expected 1 surviving onset, got %d", len(kept))
	}
	if kept[0].FrameIndex != 11 || kept[0].DescriptorNormalized != 0.9 {
		t.Errorf("expected the stronger onset at frame 11 to survive, got frame %d val %v", kept[0].FrameIndex, kept[0].DescriptorNormalized)
	}
}

func TestApplyMinHitGapKeepsFarApartOnsets(t *testing.T) {
	onsets := []AudioOnset{onsetAt(0, 0.5), onsetAt(10, 0.5)}
	kept := applyMinHitGap(onsets, 2)

	if len(kept) != 2 {
		t.Errorf("expected both onsets to survive when well separated, got %d", len(kept))
	}
}

func TestApplyMinHitGapChainOfCollisions(t *testing.T) {
	onsets := []AudioOnset{
		onsetAt(0, 0.3),
		onsetAt(1, 0.9),
		onsetAt(2, 0.5),
	}
	kept := applyMinHitGap(onsets, 2)

	if len(kept) != 1 {
		t.Fatalf("expected a single survivor from a 3-way collision chain, got %d", len(kept))
	}
	if kept[0].FrameIndex != 1 {
		t.Errorf("expected frame 1 (strongest of the chain) to survive, got %d", kept[0].FrameIndex)
	}
}

package onset

import "testing"

func flatTimesRMSAndDB(n int) ([]float64, []float64, []float64) {
	times := make([]float64, n)
	rms := make([]float64, n)
	db := make([]float64, n)
	for i := range times {
		times[i] = float64(i) / 60.0
	}
	return times, rms, db
}

func TestPickPeaksFlatDescriptorYieldsNoOnsets(t *testing.T) {
	d := make([]float64, 20) // all zero -> d_max <= d_min
	times, rms, db := flatTimesRMSAndDB(20)

	onsets := pickPeaks(d, times, rms, db, 8, 1.2, 4)
	if onsets != nil {
		t.Errorf("expected no onsets for a flat descriptor, got %d", len(onsets))
	}
}

func TestPickPeaksSingleSpike(t *testing.T) {
	d := make([]float64, 20)
	d[10] = 1.0
	times, rms, db := flatTimesRMSAndDB(20)

	onsets := pickPeaks(d, times, rms, db, 8, 1.2, 4)
	if len(onsets) != 1 {
		t.Fatalf("expected exactly 1 onset, got %d", len(onsets))
	}
	if onsets[0].FrameIndex != 10 {
		t.Errorf("expected onset at frame 10, got %d", onsets[0].FrameIndex)
	}
	if onsets[0].DescriptorNormalized != 1.0 {
		t.Errorf("expected normalized descriptor 1.0, got %v", onsets[0].DescriptorNormalized)
	}
}

func TestPickPeaksBoundaryFramesNeverOnsets(t *testing.T) {
	d := make([]float64, 10)
	d[0] = 5.0
	d[len(d)-1] = 5.0

	times, rms, db := flatTimesRMSAndDB(10)
	onsets := pickPeaks(d, times, rms, db, 8, 1.2, 4)

	for _, o := range onsets {
		if o.FrameIndex == 0 || o.FrameIndex == len(d)-1 {
			t.Errorf("boundary frame %d must never be reported as an onset", o.FrameIndex)
		}
	}
}

func TestPickPeaksRefractorySuppressesCloseSecondSpike(t *testing.T) {
	d := make([]float64, 20)
	d[5] = 1.0
	d[7] = 1.0 // only 2 frames later

	times, rms, db := flatTimesRMSAndDB(20)
	onsets := pickPeaks(d, times, rms, db, 8, 1.2, 4) // refractory of 4 frames

	if len(onsets) != 1 {
		t.Fatalf("expected the second spike to be suppressed by the refractory period, got %d onsets", len(onsets))
	}
	if onsets[0].FrameIndex != 5 {
		t.Errorf("expected the surviving onset at frame 5, got %d", onsets[0].FrameIndex)
	}
}

func TestPickPeaksRespectsTwoSpikesOutsideRefractory(t *testing.T) {
	d := make([]float64, 20)
	d[5] = 1.0
	d[15] = 1.0

	times, rms, db := flatTimesRMSAndDB(20)
	onsets := pickPeaks(d, times, rms, db, 8, 1.2, 4)

	if len(onsets) != 2 {
		t.Fatalf("expected 2 onsets well outside the refractory window, got %d", len(onsets))
	}
}

func TestPickPeaksEmptyInput(t *testing.T) {
	if onsets := pickPeaks(nil, nil, nil, nil, 8, 1.2, 4); onsets != nil {
		t.Errorf("expected nil onsets for empty descriptor, got %d", len(onsets))
	}
}

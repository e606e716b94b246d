package onset

// mixdown reduces N-channel planar PCM to a single mono buffer by averaging
// channels per sample position (spec.md §4.A). For a single channel it
// returns the channel unchanged.
func mixdown(pcm [][]float64) []float64 {
	if len(pcm) == 1 {
		return pcm[0]
	}

	n := 0
	for _, ch := range pcm {
		if len(ch) > n {
			n = len(ch)
		}
	}

	mono := make([]float64, n)
	channels := float64(len(pcm))
	for i := 0; i < n; i++ {
		var sum float64
		for _, ch := range pcm {
			if i < len(ch) {
				sum += ch[i]
			}
		}
		mono[i] = sum / channels
	}
	return mono
}

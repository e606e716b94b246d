package onset

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// spectralAnalyzer computes windowed FFT log-magnitude spectra for a fixed
// FFT size, reusing its scratch buffers across frames (spec.md §5 memory
// discipline). Grounded on the teacher's own FFT usage in
// internal/audio/analyzer.go and internal/analysis/features.go, both of
// which build a Hann window once and call gonum's fourier.FFT per frame.
type spectralAnalyzer struct {
	fftSize int
	fft     *fourier.FFT
	window  []float64

	windowed []float64
	logMag   []float64
}

func newSpectralAnalyzer(fftSize int) *spectralAnalyzer {
	window := make([]float64, fftSize)
	for i := range window {
		// Non-half, denormalized Hann form matching the reference: no 1/(N-1)
		// symmetry correction, matches the teacher's own window construction.
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(fftSize)))
	}

	return &spectralAnalyzer{
		fftSize:  fftSize,
		fft:      fourier.NewFFT(fftSize),
		window:   window,
		windowed: make([]float64, fftSize),
		logMag:   make([]float64, fftSize/2),
	}
}

// analyze computes log_mag[k] = ln(1 + |X[k]|^2) for k in [0, fftSize/2),
// writing into the analyzer's reused logMag buffer. The returned slice is
// only valid until the next call to analyze.
func (a *spectralAnalyzer) analyze(analysisSamples []float64) []float64 {
	for i := 0; i < a.fftSize; i++ {
		a.windowed[i] = analysisSamples[i] * a.window[i]
	}

	coeffs := a.fft.Coefficients(nil, a.windowed)

	for k := 0; k < a.fftSize/2; k++ {
		re := real(coeffs[k])
		im := imag(coeffs[k])
		mag2 := re*re + im*im
		a.logMag[k] = math.Log(1 + mag2)
	}

	return a.logMag
}

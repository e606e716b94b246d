// Package onset implements an offline audio onset-detection and
// feature-extraction pipeline: decoded mono PCM in, a time series of
// per-frame loudness measurements plus detected transient events out.
package onset

import "errors"

// ErrInvalidConfig is wrapped by InvalidConfigError and can be matched with
// errors.Is.
var ErrInvalidConfig = errors.New("onset: invalid config")

// ErrEmptyPCM is wrapped by InvalidConfigError when the caller passes no
// channels at all. Channels that hold zero samples are not an error.
var ErrEmptyPCM = errors.New("onset: empty pcm")

// InvalidConfigError reports a configuration or input problem that prevents
// the pipeline from running at all (as opposed to a flat/silent signal,
// which is not an error — see Process).
type InvalidConfigError struct {
	Reason string
	Err    error
}

func (e *InvalidConfigError) Error() string {
	if e.Err != nil {
		return "onset: invalid config: " + e.Reason + ": " + e.Err.Error()
	}
	return "onset: invalid config: " + e.Reason
}

func (e *InvalidConfigError) Unwrap() error { return e.Err }

// Config tunes every stage of the pipeline. DefaultConfig returns the
// documented defaults; Process fills in zero-valued numeric tuning fields on
// a caller-supplied Config, but leaves ApplyHysteresis, ApplyMinHitGap and
// MinHitGapFrames as given (see withDefaults).
type Config struct {
	// FFTSize is the analysis window size in samples. Must be a power of
	// two. Default 2048.
	FFTSize int `json:"fftSize"`

	// Sensitivity multiplies the local mean to form the adaptive peak
	// threshold. Default 1.2.
	Sensitivity float64 `json:"sensitivity"`

	// RefractorySeconds is the minimum time after an accepted onset during
	// which no new onset may be accepted. Default 0.06.
	RefractorySeconds float64 `json:"refractorySeconds"`

	// ThresholdHalfWindow is the number of frames on each side of the
	// center frame used to compute the local adaptive threshold. Default 8.
	ThresholdHalfWindow int `json:"thresholdHalfWindow"`

	// ApplyHysteresis enables the Schmitt-trigger post-filter. Default false.
	ApplyHysteresis bool `json:"applyHysteresis"`

	// HysteresisHigh/HysteresisLow are the gate-open/gate-close thresholds
	// on descriptor_normalized. Defaults 0.24 / 0.17.
	HysteresisHigh float64 `json:"hysteresisHigh"`
	HysteresisLow  float64 `json:"hysteresisLow"`

	// ApplyMinHitGap enables the minimum-gap dedup post-filter. Default true.
	ApplyMinHitGap bool `json:"applyMinHitGap"`

	// MinHitGapFrames is the minimum frame distance between kept onsets.
	// Default 2.
	MinHitGapFrames int `json:"minHitGapFrames"`
}

// DefaultConfig returns the documented default configuration (spec.md §6).
func DefaultConfig() *Config {
	return &Config{
		FFTSize:             2048,
		Sensitivity:         1.2,
		RefractorySeconds:   0.06,
		ThresholdHalfWindow: 8,
		ApplyHysteresis:     false,
		HysteresisHigh:      0.24,
		HysteresisLow:       0.17,
		ApplyMinHitGap:      true,
		MinHitGapFrames:     2,
	}
}

// withDefaults returns a copy of cfg with zero-valued *numeric tuning*
// fields replaced by DefaultConfig's values. A nil cfg returns
// DefaultConfig() unchanged.
//
// The two boolean toggles (ApplyHysteresis, ApplyMinHitGap) and
// MinHitGapFrames are deliberately NOT defaulted here: for a bool, Go's zero
// value is indistinguishable from an explicit "off", and MinHitGapFrames=0
// is itself a legal value (spec.md §4.G: min_hit_gap_frames >= 0). Callers
// who want the documented defaults should start from DefaultConfig() and
// override individual fields, rather than constructing a bare &Config{}.
func (cfg *Config) withDefaults() *Config {
	def := DefaultConfig()
	if cfg == nil {
		return def
	}
	out := *cfg
	if out.FFTSize == 0 {
		out.FFTSize = def.FFTSize
	}
	if out.Sensitivity == 0 {
		out.Sensitivity = def.Sensitivity
	}
	if out.RefractorySeconds == 0 {
		out.RefractorySeconds = def.RefractorySeconds
	}
	if out.ThresholdHalfWindow == 0 {
		out.ThresholdHalfWindow = def.ThresholdHalfWindow
	}
	if out.HysteresisHigh == 0 {
		out.HysteresisHigh = def.HysteresisHigh
	}
	if out.HysteresisLow == 0 {
		out.HysteresisLow = def.HysteresisLow
	}
	return &out
}

// AudioOnset is a detected transient event, owned exclusively by the
// AudioFrame that carries it.
type AudioOnset struct {
	Time                    float64 `json:"time"`
	FrameIndex              int     `json:"frameIndex"`
	Descriptor              float64 `json:"descriptor"`
	ThresholdAtDetection    float64 `json:"thresholdAtDetection"`
	DescriptorNormalized    float64 `json:"descriptorNormalized"`
	RMS                     float64 `json:"rms"`
	LoudnessDB              float64 `json:"loudnessDb"`
	LoudnessNormalized      float64 `json:"loudnessNormalized"`
	DistanceToNextOnset     int     `json:"distanceToNextOnset"`
	NextOnsetFrame          int     `json:"nextOnsetFrame"`
}

// AudioFrame is a single analysis step.
type AudioFrame struct {
	Index          int          `json:"index"`
	Time           float64      `json:"time"`
	ExactSamples   []float64    `json:"-"`
	BPM            float64      `json:"bpm"`
	RMS            float64      `json:"rms"`
	RMSNormalized  float64      `json:"rmsNormalized"`
	LoudnessDB     float64      `json:"loudnessDb"`
	// LoudnessNormalized maps LoudnessDB through the fixed [-60, 0] dB window.
	LoudnessNormalized float64 `json:"loudnessNormalized"`
	// RelativeLoudnessNormalized maps LoudnessDB relative to the source's
	// observed maximum, against a -140dB floor.
	RelativeLoudnessNormalized float64       `json:"relativeLoudnessNormalized"`
	Onset                      *AudioOnset   `json:"onset,omitempty"`
	Onsets                     []AudioOnset  `json:"onsets,omitempty"`
}

// AudioSource is the pipeline's result value: an immutable aggregate owning
// its ordered frames.
type AudioSource struct {
	ID                   string       `json:"id"`
	SampleRate           int          `json:"sampleRate"`
	Duration             float64      `json:"duration"`
	FPS                  float64      `json:"fps"`
	Channels             int          `json:"channels"`
	Frames               []AudioFrame `json:"frames"`
	AverageBPM           float64      `json:"averageBpm"`
	AverageRMS           float64      `json:"averageRms"`
	AverageLoudnessDB    float64      `json:"averageLoudnessDb"`
	MaxLoudnessDB        float64      `json:"maxLoudnessDb"`
	AverageOnsetLoudness float64      `json:"averageOnsetLoudness"`
	URI                  string       `json:"uri,omitempty"`
}

// loudnessFloorDB is the convention lowest representable loudness, used in
// place of -Inf for digital silence.
const loudnessFloorDB = -140.0

// Processor is the core analysis capability. It covers Process only; the
// peripheral combine operation is not part of it and lives in package audio
// as FFmpegDecoder.Combine. This interface exists so the pipeline can be
// swapped or wrapped (e.g. a caching decorator) without callers depending on
// a concrete struct.
type Processor interface {
	Process(pcm [][]float64, sampleRate int, channels int, fps float64, cfg *Config) (*AudioSource, error)
}

package audio

import (
	"errors"
	"fmt"
)

// ErrDecodeFailed is wrapped by every DecodeFailedError and can be matched
// with errors.Is, regardless of which underlying decoder (native WAV reader
// or ffmpeg subprocess) produced it.
var ErrDecodeFailed = errors.New("audio: decode failed")

// DecodeFailedError reports that a source file could not be turned into PCM,
// whether by the native WAV reader or by shelling out to ffmpeg (spec.md §6).
type DecodeFailedError struct {
	Path string
	Err  error
}

func (e *DecodeFailedError) Error() string {
	return fmt.Sprintf("audio: decode failed for %s: %v", e.Path, e.Err)
}

// Unwrap exposes both ErrDecodeFailed (for errors.Is matching against the
// category) and the underlying cause, per Go 1.20+ multi-error unwrapping.
func (e *DecodeFailedError) Unwrap() []error { return []error{ErrDecodeFailed, e.Err} }

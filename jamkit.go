// Package jamkit contains the domain types of the jamkit audio core: drum and
// note addressing, the audio buffer/sink interfaces that the synthesis backend
// renders into, and export helpers. The actual signal processing lives in the
// synth package; the stateful, caller-facing instruments live in the engine
// package.
package jamkit

import "errors"

// SampleRate is the fixed render rate of the whole engine, in Hz.
const SampleRate = 44100

// ErrAudioDenied is returned (wrapped) by the engine gate when the audio
// device could not be unlocked. It is the only user-actionable failure of the
// core; callers should surface it and offer a retry.
var ErrAudioDenied = errors.New("audio output denied")

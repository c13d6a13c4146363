package synth

import "github.com/chewxy/math32"

// Waveform is the shape of a tonal oscillator. Always in lowercase, so the
// values can be used directly in preset files.
type Waveform string

const (
	WaveSine     Waveform = "sine"
	WaveTriangle Waveform = "triangle"
	WaveSawtooth Waveform = "sawtooth"
	WaveSquare   Waveform = "square"
)

func (w Waveform) valid() bool {
	switch w {
	case WaveSine, WaveTriangle, WaveSawtooth, WaveSquare:
		return true
	}
	return false
}

// oscSample evaluates one sample of the waveform at the given phase, with
// phase in [0, 1).
func oscSample(w Waveform, phase float32) float32 {
	switch w {
	case WaveSquare:
		if phase < 0.5 {
			return 1
		}
		return -1
	case WaveSawtooth:
		return 2*phase - 1
	case WaveTriangle:
		if phase < 0.5 {
			return 4*phase - 1
		}
		return 3 - 4*phase
	default:
		return math32.Sin(2 * math32.Pi * phase)
	}
}

// advancePhase steps an oscillator phase accumulator by freq and wraps it
// back into [0, 1).
func advancePhase(phase, freq float32) float32 {
	phase += freq / sampleRate
	return phase - math32.Floor(phase)
}

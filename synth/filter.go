package synth

import "github.com/chewxy/math32"

// FilterType selects which tap of the state-variable filter is used as the
// output.
type FilterType string

const (
	Lowpass  FilterType = "lowpass"
	Highpass FilterType = "highpass"
	Bandpass FilterType = "bandpass"
)

func (t FilterType) valid() bool {
	switch t {
	case Lowpass, Highpass, Bandpass:
		return true
	}
	return false
}

// FilterSpec configures a tone-shaping filter stage. Frequency is the cutoff
// in Hz. Resonance is the damping of the filter; 1 means no resonance,
// smaller values resonate more.
type FilterSpec struct {
	Type      FilterType `yaml:"type"`
	Frequency float32    `yaml:"frequency"`
	Resonance float32    `yaml:"resonance,omitempty"`
}

// svfState is one channel of Chamberlin state-variable filter state.
type svfState struct {
	low, band float32
}

// step advances the filter by one sample, returning all three taps.
func (s *svfState) step(in, f2, res float32) (low, band, high float32) {
	s.low += f2 * s.band
	high = in - s.low - res*s.band
	s.band += f2 * high
	return s.low, s.band, high
}

// filterCoef maps a cutoff frequency in Hz to the SVF frequency coefficient.
// The coefficient is capped to keep the filter stable near Nyquist.
func filterCoef(cutoff float32) float32 {
	if cutoff < 0 {
		cutoff = 0
	}
	f := 2 * math32.Sin(math32.Pi*cutoff/sampleRate)
	if f > 1.2 {
		f = 1.2
	}
	return f
}

// filterNode is a stereo tone filter stage on a chain's effects path.
type filterNode struct {
	spec  FilterSpec
	state [2]svfState
}

func newFilterNode(spec FilterSpec) *filterNode {
	if spec.Resonance <= 0 {
		spec.Resonance = 1
	}
	return &filterNode{spec: spec}
}

// process filters an interleaved stereo buffer in place.
func (f *filterNode) process(buf []float32) {
	f2 := filterCoef(f.spec.Frequency)
	res := f.spec.Resonance
	for i := 0; i < len(buf); i += 2 {
		for c := 0; c < 2; c++ {
			low, band, high := f.state[c].step(buf[i+c], f2, res)
			switch f.spec.Type {
			case Highpass:
				buf[i+c] = high
			case Bandpass:
				buf[i+c] = band
			default:
				buf[i+c] = low
			}
		}
	}
}

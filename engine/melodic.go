package engine

import (
	"sync"
	"time"

	"github.com/jamkit/jamkit"
	"github.com/jamkit/jamkit/synth"
)

const (
	// noteGate and chordGate are the fixed gate times of melodic triggers:
	// an eighth and a quarter note at the game's nominal 120 BPM.
	noteGate  = 250 * time.Millisecond
	chordGate = 500 * time.Millisecond

	filterFreqMin = 20
	filterFreqMax = 20000
)

// Melodic is a single polyphonic voice: many simultaneous notes share one
// timbre and one fixed effects chain. Timbre and effect parameters are
// mutable on the live chain.
type Melodic struct {
	synth   *synth.Synth
	gate    *Gate
	reports *Reports

	mu       sync.Mutex
	chain    *synth.Chain
	disposed bool
}

// NewMelodic builds the default melodic instrument from the embedded preset,
// which includes a tone filter stage.
func NewMelodic(s *synth.Synth, gate *Gate, reports *Reports) (*Melodic, error) {
	spec, err := MelodicSpec()
	if err != nil {
		return nil, err
	}
	return NewMelodicFromSpec(s, gate, reports, spec)
}

// defaultCompressor and defaultReverb fill in the dynamics and spatial
// stages when a melodic spec omits them; a melodic voice always carries
// both. Only the tone filter is optional.
var (
	defaultCompressor = synth.CompressorSpec{Attack: 0.003, Release: 0.25, Threshold: 0.5, Ratio: 0.75}
	defaultReverb     = synth.ReverbSpec{Wet: 0.2, Feedback: 0.84, Damp: 0.2}
)

// NewMelodicFromSpec builds a melodic instrument from an explicit chain
// spec. The tone filter stage exists only if the spec requests one; the
// dynamics and spatial stages are always present, defaulted in when the
// spec leaves them out.
func NewMelodicFromSpec(s *synth.Synth, gate *Gate, reports *Reports, spec synth.ChainSpec) (*Melodic, error) {
	if spec.Compressor == nil {
		comp := defaultCompressor
		spec.Compressor = &comp
	}
	if spec.Reverb == nil {
		rev := defaultReverb
		spec.Reverb = &rev
	}
	chain, err := s.NewChain(spec)
	if err != nil {
		return nil, err
	}
	return &Melodic{synth: s, gate: gate, reports: reports, chain: chain}, nil
}

// TriggerNote normalizes the note token, clamps velocity to [0, 1] and
// schedules a short attack+release. A token the backend rejects is reported
// and skipped; it never raises to the caller.
func (m *Melodic) TriggerNote(note string, velocity float64) {
	m.trigger([]string{note}, velocity, noteGate)
}

// TriggerChord triggers every note simultaneously with a longer gate. An
// empty list is a no-op.
func (m *Melodic) TriggerChord(notes []string, velocity float64) {
	if len(notes) == 0 {
		return
	}
	m.trigger(notes, velocity, chordGate)
}

func (m *Melodic) trigger(tokens []string, velocity float64, gate time.Duration) {
	if m.gate != nil && !m.gate.Active() {
		return
	}
	chain := m.liveChain()
	if chain == nil {
		return
	}
	if velocity < 0 {
		velocity = 0
	} else if velocity > 1 {
		velocity = 1
	}
	duration := synth.Samples(gate)
	notes := make([]synth.Note, 0, len(tokens))
	for _, token := range tokens {
		normalized := jamkit.NormalizeNote(token)
		freq, err := jamkit.NoteFreq(normalized)
		if err != nil {
			// lenient pass-through ends here: the backend rejected the
			// token, so this note is a silent no-op
			m.reports.send("melodic", Warning, "%v", err)
			continue
		}
		notes = append(notes, synth.Note{Freq: freq, Velocity: float32(velocity), Duration: duration})
	}
	if len(notes) > 0 {
		// one batch, one clock snapshot: the notes of a chord all start on
		// the same sample
		chain.TriggerAll(notes)
	}
}

// SetWaveform changes the oscillator shape used by subsequent triggers;
// already-sounding notes are unaffected. An unknown kind is reported and
// ignored.
func (m *Melodic) SetWaveform(w synth.Waveform) {
	chain := m.liveChain()
	if chain == nil {
		return
	}
	if err := chain.SetWaveform(w); err != nil {
		m.reports.send("melodic", Warning, "%v", err)
	}
}

// Waveform returns the shape used by subsequent triggers.
func (m *Melodic) Waveform() synth.Waveform {
	chain := m.liveChain()
	if chain == nil {
		return ""
	}
	return chain.Waveform()
}

// SetFilterFrequency moves the tone filter cutoff, clamped to [20, 20000]
// Hz, immediately audible on sounding notes.
func (m *Melodic) SetFilterFrequency(hz float64) {
	chain := m.liveChain()
	if chain == nil {
		return
	}
	if hz < filterFreqMin {
		hz = filterFreqMin
	} else if hz > filterFreqMax {
		hz = filterFreqMax
	}
	chain.SetFilterFrequency(float32(hz))
}

// FilterFrequency returns the tone filter cutoff in Hz.
func (m *Melodic) FilterFrequency() float64 {
	chain := m.liveChain()
	if chain == nil {
		return 0
	}
	return float64(chain.FilterFrequency())
}

// SetFilterType switches the tone filter among lowpass, highpass and
// bandpass. An unknown kind is reported and ignored.
func (m *Melodic) SetFilterType(t synth.FilterType) {
	chain := m.liveChain()
	if chain == nil {
		return
	}
	if err := chain.SetFilterType(t); err != nil {
		m.reports.send("melodic", Warning, "%v", err)
	}
}

// FilterType returns the current tone filter kind.
func (m *Melodic) FilterType() synth.FilterType {
	chain := m.liveChain()
	if chain == nil {
		return ""
	}
	return chain.FilterType()
}

// SetReverbWet sets the reverb wet mix, clamped to [0, 1], immediately
// audible on sounding notes.
func (m *Melodic) SetReverbWet(wet float64) {
	chain := m.liveChain()
	if chain == nil {
		return
	}
	if wet < 0 {
		wet = 0
	} else if wet > 1 {
		wet = 1
	}
	chain.SetReverbWet(float32(wet))
}

// ReverbWet returns the reverb wet mix.
func (m *Melodic) ReverbWet() float64 {
	chain := m.liveChain()
	if chain == nil {
		return 0
	}
	return float64(chain.ReverbWet())
}

// SetVolume converts a linear gain in [0, 1] to a logarithmic level on the
// instrument's amplitude.
func (m *Melodic) SetVolume(volume float64) {
	chain := m.liveChain()
	if chain == nil {
		return
	}
	chain.SetGain(float32(volume))
}

// Volume inverts SetVolume's conversion; the round trip is lossless to
// floating precision.
func (m *Melodic) Volume() float64 {
	chain := m.liveChain()
	if chain == nil {
		return 0
	}
	return float64(chain.Gain())
}

// ReleaseAll forces the release of every currently-sounding note without
// disposing the instrument. Used when leaving a view.
func (m *Melodic) ReleaseAll() {
	chain := m.liveChain()
	if chain == nil {
		return
	}
	chain.ReleaseAll()
}

// Dispose releases the voice pool and every node in the effects chain,
// exactly once. Idempotent.
func (m *Melodic) Dispose() {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return
	}
	m.disposed = true
	chain := m.chain
	m.chain = nil
	m.mu.Unlock()
	if chain != nil {
		chain.Dispose()
	}
}

func (m *Melodic) liveChain() *synth.Chain {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.chain
}

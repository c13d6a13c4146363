package synth_test

import (
	"testing"
	"time"

	"github.com/jamkit/jamkit"
	"github.com/jamkit/jamkit/synth"
)

func tonalSpec(voices int) synth.ChainSpec {
	return synth.ChainSpec{
		Archetype: synth.Tonal,
		Voices:    voices,
		Waveform:  synth.WaveSine,
		Envelope:  synth.EnvelopeSpec{Attack: 0.001, Decay: 0.01, Sustain: 0.5, Release: 0.05},
	}
}

func membraneSpec() synth.ChainSpec {
	return synth.ChainSpec{
		Archetype: synth.Membrane,
		Envelope:  synth.EnvelopeSpec{Attack: 0.001, Decay: 0.2, Sustain: 0, Release: 0.05},
		Membrane:  &synth.MembraneSpec{PitchDecay: 0.05, Octaves: 4},
	}
}

func noiseSpec() synth.ChainSpec {
	return synth.ChainSpec{
		Archetype:   synth.Noise,
		Envelope:    synth.EnvelopeSpec{Attack: 0.001, Decay: 0.1, Sustain: 0, Release: 0.05},
		NoiseCutoff: 8000,
	}
}

func maxAmplitude(buffer jamkit.AudioBuffer) float32 {
	var peak float32
	for _, frame := range buffer {
		for _, v := range frame {
			if v > peak {
				peak = v
			}
			if -v > peak {
				peak = -v
			}
		}
	}
	return peak
}

func TestNewChainValidation(t *testing.T) {
	tests := []struct {
		name string
		spec synth.ChainSpec
		ok   bool
	}{
		{"tonal", tonalSpec(4), true},
		{"membrane", membraneSpec(), true},
		{"noise", noiseSpec(), true},
		{"unknown archetype", synth.ChainSpec{Archetype: "fm"}, false},
		{"membrane without tuning", synth.ChainSpec{Archetype: synth.Membrane}, false},
		{"noise without cutoff", synth.ChainSpec{Archetype: synth.Noise}, false},
		{"bad waveform", synth.ChainSpec{Archetype: synth.Tonal, Waveform: "pulse"}, false},
		{"bad filter type", synth.ChainSpec{Archetype: synth.Tonal, ToneFilter: &synth.FilterSpec{Type: "notch", Frequency: 1000}}, false},
		{"sustain above unity", synth.ChainSpec{Archetype: synth.Tonal, Envelope: synth.EnvelopeSpec{Sustain: 1.5}}, false},
		{"negative sustain", synth.ChainSpec{Archetype: synth.Tonal, Envelope: synth.EnvelopeSpec{Sustain: -0.1}}, false},
		{"zero compressor threshold", synth.ChainSpec{Archetype: synth.Tonal, Compressor: &synth.CompressorSpec{Attack: 0.003, Release: 0.25, Ratio: 0.5}}, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := synth.NewSynth(synth.NewBus())
			_, err := s.NewChain(test.spec)
			if test.ok && err != nil {
				t.Fatalf("NewChain failed: %v", err)
			}
			if !test.ok && err == nil {
				t.Fatalf("NewChain accepted an invalid spec")
			}
		})
	}
}

func TestRenderArchetypes(t *testing.T) {
	specs := map[string]synth.ChainSpec{
		"tonal":    tonalSpec(4),
		"membrane": membraneSpec(),
		"noise":    noiseSpec(),
	}
	for name, spec := range specs {
		t.Run(name, func(t *testing.T) {
			s := synth.NewSynth(synth.NewBus())
			chain, err := s.NewChain(spec)
			if err != nil {
				t.Fatalf("NewChain failed: %v", err)
			}
			chain.Trigger(synth.Note{Freq: 220, Velocity: 0.8, Duration: synth.Samples(100 * time.Millisecond)})
			buffer := make(jamkit.AudioBuffer, synth.Samples(50*time.Millisecond))
			if err := s.Render(buffer); err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			peak := maxAmplitude(buffer)
			if peak == 0 {
				t.Fatalf("triggered %s chain rendered silence", name)
			}
			if peak > 1.5 {
				t.Fatalf("%s chain peak %v suspiciously loud", name, peak)
			}
			if !chain.Active() {
				t.Fatalf("%s chain not active while the gate is still open", name)
			}
		})
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	render := func() jamkit.AudioBuffer {
		s := synth.NewSynth(synth.NewBus())
		chain, err := s.NewChain(noiseSpec())
		if err != nil {
			t.Fatalf("NewChain failed: %v", err)
		}
		chain.Trigger(synth.Note{Velocity: 1, Duration: 500})
		buffer := make(jamkit.AudioBuffer, 1000)
		if err := s.Render(buffer); err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		return buffer
	}
	a, b := render(), render()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("renders diverge at frame %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestTriggerAtOffset(t *testing.T) {
	s := synth.NewSynth(synth.NewBus())
	chain, err := s.NewChain(tonalSpec(1))
	if err != nil {
		t.Fatalf("NewChain failed: %v", err)
	}
	offset := 20 * time.Millisecond
	chain.TriggerAt(synth.Note{Freq: 440, Velocity: 1, Duration: synth.Samples(50 * time.Millisecond)}, offset)
	buffer := make(jamkit.AudioBuffer, synth.Samples(40*time.Millisecond))
	if err := s.Render(buffer); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	at := synth.Samples(offset)
	if peak := maxAmplitude(buffer[:at]); peak != 0 {
		t.Errorf("sound before the scheduled offset, peak %v", peak)
	}
	if peak := maxAmplitude(buffer[at:]); peak == 0 {
		t.Errorf("silence after the scheduled offset")
	}
}

func TestTriggerOrderingAcrossRenders(t *testing.T) {
	s := synth.NewSynth(synth.NewBus())
	chain, err := s.NewChain(tonalSpec(1))
	if err != nil {
		t.Fatalf("NewChain failed: %v", err)
	}
	// schedule beyond the first render window; the event must survive into
	// the second
	chain.TriggerAt(synth.Note{Freq: 440, Velocity: 1, Duration: 2000}, 30*time.Millisecond)
	first := make(jamkit.AudioBuffer, synth.Samples(20*time.Millisecond))
	if err := s.Render(first); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if peak := maxAmplitude(first); peak != 0 {
		t.Fatalf("event fired a render too early, peak %v", peak)
	}
	second := make(jamkit.AudioBuffer, synth.Samples(20*time.Millisecond))
	if err := s.Render(second); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if peak := maxAmplitude(second); peak == 0 {
		t.Fatalf("event lost between renders")
	}
	if got := s.Now(); got != int64(len(first)+len(second)) {
		t.Fatalf("sample clock at %d after rendering %d frames", got, len(first)+len(second))
	}
}

func TestDisposeRemovesChain(t *testing.T) {
	s := synth.NewSynth(synth.NewBus())
	chain, err := s.NewChain(tonalSpec(1))
	if err != nil {
		t.Fatalf("NewChain failed: %v", err)
	}
	if s.NumChains() != 1 {
		t.Fatalf("expected 1 chain, got %d", s.NumChains())
	}
	chain.Trigger(synth.Note{Freq: 440, Velocity: 1, Duration: 1000})
	chain.Dispose()
	chain.Dispose() // second dispose is a no-op
	if !chain.Disposed() {
		t.Fatalf("chain not marked disposed")
	}
	if s.NumChains() != 0 {
		t.Fatalf("expected 0 chains after dispose, got %d", s.NumChains())
	}
	// pending events of the chain were dropped with it
	buffer := make(jamkit.AudioBuffer, 1000)
	if err := s.Render(buffer); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if peak := maxAmplitude(buffer); peak != 0 {
		t.Fatalf("disposed chain still sounding, peak %v", peak)
	}
	// triggering after dispose is a no-op, not a panic
	chain.Trigger(synth.Note{Freq: 440, Velocity: 1, Duration: 1000})
}

func TestFixedLevelIgnoresGain(t *testing.T) {
	s := synth.NewSynth(synth.NewBus())
	spec := tonalSpec(1)
	spec.FixedLevel = true
	chain, err := s.NewChain(spec)
	if err != nil {
		t.Fatalf("NewChain failed: %v", err)
	}
	if chain.HasGain() {
		t.Fatalf("fixed-level chain reports adjustable gain")
	}
	chain.SetGain(0.1)
	if got := chain.Gain(); got != 1 {
		t.Fatalf("fixed-level gain changed to %v", got)
	}
}

func TestBusMasterGainAndPeak(t *testing.T) {
	bus := synth.NewBus()
	s := synth.NewSynth(bus)
	chain, err := s.NewChain(tonalSpec(1))
	if err != nil {
		t.Fatalf("NewChain failed: %v", err)
	}
	chain.Trigger(synth.Note{Freq: 440, Velocity: 1, Duration: 2000})
	buffer := make(jamkit.AudioBuffer, 2000)
	if err := s.Render(buffer); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	loud := maxAmplitude(buffer)
	if bus.Peak() != loud {
		t.Errorf("bus peak %v does not match buffer peak %v", bus.Peak(), loud)
	}
	bus.SetMasterGain(0)
	chain.Trigger(synth.Note{Freq: 440, Velocity: 1, Duration: 2000})
	if err := s.Render(buffer); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if peak := maxAmplitude(buffer); peak != 0 {
		t.Errorf("zero master gain still sounding, peak %v", peak)
	}
}

func TestChainParameterRoundTrips(t *testing.T) {
	s := synth.NewSynth(synth.NewBus())
	spec := tonalSpec(2)
	spec.ToneFilter = &synth.FilterSpec{Type: synth.Lowpass, Frequency: 2000, Resonance: 1}
	spec.Reverb = &synth.ReverbSpec{Wet: 0.2, Feedback: 0.84, Damp: 0.2}
	chain, err := s.NewChain(spec)
	if err != nil {
		t.Fatalf("NewChain failed: %v", err)
	}
	if err := chain.SetWaveform(synth.WaveSquare); err != nil {
		t.Fatalf("SetWaveform failed: %v", err)
	}
	if got := chain.Waveform(); got != synth.WaveSquare {
		t.Errorf("waveform round-tripped to %q", got)
	}
	if err := chain.SetWaveform("pulse"); err == nil {
		t.Errorf("expected an error for an unknown waveform")
	}
	chain.SetFilterFrequency(1234)
	if got := chain.FilterFrequency(); got != 1234 {
		t.Errorf("filter frequency round-tripped to %v", got)
	}
	if err := chain.SetFilterType(synth.Highpass); err != nil {
		t.Fatalf("SetFilterType failed: %v", err)
	}
	if got := chain.FilterType(); got != synth.Highpass {
		t.Errorf("filter type round-tripped to %q", got)
	}
	chain.SetReverbWet(0.6)
	if got := chain.ReverbWet(); got != 0.6 {
		t.Errorf("reverb wet round-tripped to %v", got)
	}
}

func TestReleaseAllClosesGates(t *testing.T) {
	s := synth.NewSynth(synth.NewBus())
	chain, err := s.NewChain(tonalSpec(4))
	if err != nil {
		t.Fatalf("NewChain failed: %v", err)
	}
	long := synth.Samples(10 * time.Second)
	chain.Trigger(synth.Note{Freq: 261, Velocity: 1, Duration: long})
	chain.Trigger(synth.Note{Freq: 329, Velocity: 1, Duration: long})
	buffer := make(jamkit.AudioBuffer, 1000)
	if err := s.Render(buffer); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	chain.ReleaseAll()
	// render past the release stage; all voices must fall idle
	tail := make(jamkit.AudioBuffer, synth.Samples(200*time.Millisecond))
	if err := s.Render(tail); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if chain.Active() {
		t.Fatalf("voices still sounding after ReleaseAll and the release tail")
	}
}

package synth

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/viterin/vek/vek32"
)

// Archetype tags how a chain's source generates sound. The tag is chosen at
// construction and carried on the chain, so triggering dispatches on it
// instead of inspecting node types at runtime.
type Archetype string

const (
	// Membrane is a pitched sine source with a fast pitch-decay sweep,
	// imitating a struck drum head.
	Membrane Archetype = "membrane"
	// Noise is a white noise source shaped by an envelope and a fixed
	// high-pass filter whose cutoff encodes the brightness of the hit.
	Noise Archetype = "noise"
	// Tonal is a pool of identical oscillator voices sharing one envelope
	// configuration, for polyphonic melodic playing.
	Tonal Archetype = "tonal"
)

const defaultTonalVoices = 8

// ChainSpec declaratively describes one voice chain: the source archetype and
// its tuning, the envelope, and the optional effect stages. Specs are plain
// data and round-trip through YAML, which is how the engine's preset files
// are written.
type ChainSpec struct {
	Name      string       `yaml:"name,omitempty"`
	Archetype Archetype    `yaml:"archetype"`
	Envelope  EnvelopeSpec `yaml:"envelope"`

	// Voices is the polyphony of a tonal chain. Membrane and noise chains
	// always have exactly one voice.
	Voices   int      `yaml:"voices,omitempty"`
	Waveform Waveform `yaml:"waveform,omitempty"`

	// Membrane tuning; required when Archetype is Membrane.
	Membrane *MembraneSpec `yaml:"membrane,omitempty"`

	// NoiseCutoff is the fixed high-pass cutoff in Hz of a noise chain.
	NoiseCutoff float32 `yaml:"noisecutoff,omitempty"`

	// Optional effect stages, in processing order.
	ToneFilter *FilterSpec     `yaml:"tonefilter,omitempty"`
	Compressor *CompressorSpec `yaml:"compressor,omitempty"`
	Reverb     *ReverbSpec     `yaml:"reverb,omitempty"`

	// FixedLevel marks a chain whose amplitude is not adjustable after
	// construction; SetGain on such a chain is a silent no-op.
	FixedLevel bool `yaml:"fixedlevel,omitempty"`
}

// MembraneSpec tunes a membrane source. Octaves is the size of the initial
// pitch sweep above the base pitch; PitchDecay the sweep's decay time
// constant in seconds. A kick uses a longer decay and a larger sweep than a
// tom to read as lower and boomier.
type MembraneSpec struct {
	PitchDecay float32 `yaml:"pitchdecay"`
	Octaves    float32 `yaml:"octaves"`
}

// Validate checks that the spec describes a buildable chain.
func (spec *ChainSpec) Validate() error {
	switch spec.Archetype {
	case Membrane:
		if spec.Membrane == nil {
			return errors.New("membrane chain needs a membrane tuning")
		}
	case Noise:
		if spec.NoiseCutoff <= 0 {
			return errors.New("noise chain needs a positive noisecutoff")
		}
	case Tonal:
		if spec.Waveform != "" && !spec.Waveform.valid() {
			return fmt.Errorf("unknown waveform %q", spec.Waveform)
		}
	default:
		return fmt.Errorf("unknown archetype %q", spec.Archetype)
	}
	if sus := spec.Envelope.Sustain; sus < 0 || sus > 1 {
		return fmt.Errorf("envelope sustain %v outside [0, 1]", sus)
	}
	if spec.ToneFilter != nil && spec.ToneFilter.Type != "" && !spec.ToneFilter.Type.valid() {
		return fmt.Errorf("unknown filter type %q", spec.ToneFilter.Type)
	}
	if spec.Compressor != nil && spec.Compressor.Threshold <= 0 {
		return errors.New("compressor threshold must be positive")
	}
	return nil
}

// Note is one trigger request: a frequency (ignored by noise chains), a
// velocity in [0, 1] and the gate duration in samples before the voice
// releases on its own.
type Note struct {
	Freq     float32
	Velocity float32
	Duration int
}

// voice is the pooled per-voice runtime state. Voices are allocated once at
// chain construction; triggering only mutates them.
type voice struct {
	on       bool
	sustain  bool
	gateLeft int
	freq     float32
	vel      float32
	wave     Waveform
	phase    float32
	sweep    float32
	env      envState
	noise    noiseState
	hp       svfState
}

// Chain is one built voice chain: a source with its pooled voices, an
// envelope, the optional effect stages, and a connection to the shared bus.
// A chain is owned exclusively by one instrument and disposed with it.
type Chain struct {
	synth *Synth
	spec  ChainSpec

	voices []voice
	next   int

	tone *filterNode
	comp *compressorNode
	rev  *reverbNode

	wave      Waveform
	hpCoef    float32
	sweepCoef float32

	gainDB  float32
	hasGain bool

	disposed bool
}

// NewChain builds a chain from its spec and registers it on the synth, which
// wires the chain's output to the synth's bus. The chain never connects to
// any global default output.
func (s *Synth) NewChain(spec ChainSpec) (*Chain, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid chain spec: %w", err)
	}
	numVoices := 1
	if spec.Archetype == Tonal {
		numVoices = spec.Voices
		if numVoices <= 0 {
			numVoices = defaultTonalVoices
		}
	}
	wave := spec.Waveform
	if wave == "" {
		wave = WaveSine
	}
	c := &Chain{
		synth:   s,
		spec:    spec,
		voices:  make([]voice, numVoices),
		wave:    wave,
		hasGain: !spec.FixedLevel,
	}
	for i := range c.voices {
		c.voices[i].noise.seed = 1
	}
	if spec.Archetype == Noise {
		c.hpCoef = filterCoef(spec.NoiseCutoff)
	}
	if spec.Archetype == Membrane {
		c.sweepCoef = math32.Exp(-1 / (spec.Membrane.PitchDecay * sampleRate))
	}
	if spec.ToneFilter != nil {
		c.tone = newFilterNode(*spec.ToneFilter)
	}
	if spec.Compressor != nil {
		c.comp = newCompressorNode(*spec.Compressor)
	}
	if spec.Reverb != nil {
		c.rev = newReverbNode(*spec.Reverb)
	}
	s.addChain(c)
	return c, nil
}

// Spec returns a copy of the spec the chain was built from.
func (c *Chain) Spec() ChainSpec { return c.spec }

// Archetype returns the chain's source tag.
func (c *Chain) Archetype() Archetype { return c.spec.Archetype }

// startVoice claims a pooled voice for the note. Called with the synth lock
// held, at the scheduled sample.
func (c *Chain) startVoice(n Note) {
	if c.disposed {
		return
	}
	vel := n.Velocity
	if vel < 0 {
		vel = 0
	} else if vel > 1 {
		vel = 1
	}
	// prefer a free voice over stealing a sounding one
	idx := -1
	for i := 0; i < len(c.voices); i++ {
		j := (c.next + i) % len(c.voices)
		if !c.voices[j].on {
			idx = j
			break
		}
	}
	if idx < 0 {
		idx = c.next
	}
	c.next = (idx + 1) % len(c.voices)
	v := &c.voices[idx]
	seed := v.noise.seed
	*v = voice{
		on:       true,
		sustain:  true,
		gateLeft: n.Duration,
		freq:     n.Freq,
		vel:      vel,
		wave:     c.wave,
	}
	v.noise.seed = seed
	v.env.reset()
	if c.spec.Archetype == Membrane {
		v.sweep = c.spec.Membrane.Octaves
	}
}

// releaseAll closes the gate of every sounding voice. Called with the synth
// lock held.
func (c *Chain) releaseAll() {
	for i := range c.voices {
		c.voices[i].sustain = false
	}
}

// renderInto renders the chain into an interleaved stereo scratch buffer,
// overwriting it. Called with the synth lock held.
func (c *Chain) renderInto(buf []float32) {
	vek32.Zeros_Into(buf, len(buf))
	for i := range c.voices {
		v := &c.voices[i]
		if !v.on {
			continue
		}
		for j := 0; j < len(buf); j += 2 {
			if v.gateLeft > 0 {
				v.gateLeft--
				if v.gateLeft == 0 {
					v.sustain = false
				}
			}
			level := c.spec.Envelope.step(&v.env, v.sustain)
			if v.env.idle() {
				v.on = false
				break
			}
			var sample float32
			switch c.spec.Archetype {
			case Noise:
				_, _, high := v.hp.step(v.noise.sample(), c.hpCoef, 1)
				sample = high
			case Membrane:
				freq := v.freq * math32.Exp2(v.sweep)
				v.sweep *= c.sweepCoef
				v.phase = advancePhase(v.phase, freq)
				sample = oscSample(WaveSine, v.phase)
			default:
				v.phase = advancePhase(v.phase, v.freq)
				sample = oscSample(v.wave, v.phase)
			}
			sample *= level * v.vel
			buf[j] += sample
			buf[j+1] += sample
		}
	}
	if c.tone != nil {
		c.tone.process(buf)
	}
	if c.comp != nil {
		c.comp.process(buf)
	}
	if c.rev != nil {
		c.rev.process(buf)
	}
	if c.hasGain && c.gainDB != 0 {
		vek32.MulNumber_Inplace(buf, dbToLinear(c.gainDB))
	}
}

// active reports whether any voice is sounding. Called with the synth lock
// held.
func (c *Chain) active() bool {
	for i := range c.voices {
		if c.voices[i].on {
			return true
		}
	}
	return false
}

package engine

import (
	"sync"
	"time"

	"github.com/jamkit/jamkit"
	"github.com/jamkit/jamkit/synth"
)

const (
	// DefaultVelocity is the velocity of an unaccented hit.
	DefaultVelocity = 0.7

	drumVelocityMin = 0.1
	drumVelocityMax = 1.0

	// drumGate is the gate time of a drum hit. The drum envelopes carry the
	// actual decay; the gate only has to outlast the attack.
	drumGate = 50 * time.Millisecond
)

// DrumKit is the fixed catalog of eight percussive voices. Every chain is
// built once at construction and kept alive until Dispose; triggering never
// constructs nodes.
type DrumKit struct {
	synth   *synth.Synth
	gate    *Gate
	reports *Reports

	mu       sync.Mutex
	chains   map[jamkit.DrumType]*synth.Chain
	disposed bool
}

// NewDrumKit builds one chain per drum type from the embedded presets. A nil
// gate means ungated use, e.g. offline rendering.
func NewDrumKit(s *synth.Synth, gate *Gate, reports *Reports) (*DrumKit, error) {
	k := &DrumKit{
		synth:   s,
		gate:    gate,
		reports: reports,
		chains:  make(map[jamkit.DrumType]*synth.Chain, len(jamkit.DrumTypes)),
	}
	for _, d := range jamkit.DrumTypes {
		spec, err := DrumSpec(d)
		if err != nil {
			k.Dispose()
			return nil, err
		}
		chain, err := s.NewChain(spec)
		if err != nil {
			k.Dispose()
			return nil, err
		}
		k.chains[d] = chain
	}
	return k, nil
}

// Trigger schedules a drum hit as soon as possible. Velocity is clamped to
// [0.1, 1.0] before it reaches the backend. An unknown drum type is a no-op
// with a warning report; it never fails the caller.
func (k *DrumKit) Trigger(d jamkit.DrumType, velocity float64) {
	k.TriggerAt(d, velocity, 0)
}

// TriggerAt schedules a drum hit offset into the future, for playback of
// recorded data.
func (k *DrumKit) TriggerAt(d jamkit.DrumType, velocity float64, offset time.Duration) {
	if k.gate != nil && !k.gate.Active() {
		return
	}
	chain := k.chain(d)
	if chain == nil {
		k.reports.send("drumkit", Warning, "no voice for drum %v", d)
		return
	}
	note, ok := k.noteFor(d, velocity)
	if !ok {
		return
	}
	chain.TriggerAt(note, offset)
}

// noteFor maps a drum hit to concrete synthesis parameters: the clamped
// velocity and, for pitched voice types, the fixed concert pitch. Noise
// voices ignore pitch, so none is resolved for them.
func (k *DrumKit) noteFor(d jamkit.DrumType, velocity float64) (synth.Note, bool) {
	if velocity < drumVelocityMin {
		velocity = drumVelocityMin
	} else if velocity > drumVelocityMax {
		velocity = drumVelocityMax
	}
	note := synth.Note{Velocity: float32(velocity), Duration: synth.Samples(drumGate)}
	chain := k.chain(d)
	if chain != nil && chain.Archetype() == synth.Membrane {
		freq, err := jamkit.NoteFreq(jamkit.Pitch(d))
		if err != nil {
			k.reports.send("drumkit", Warning, "pitch for drum %v: %v", d, err)
			return synth.Note{}, false
		}
		note.Freq = freq
	}
	return note, true
}

// SetVolume converts a linear gain in [0, 1] to a logarithmic level on the
// drum's chain, independent of the master bus. Chains without an adjustable
// level silently ignore this; an unknown drum type is reported.
func (k *DrumKit) SetVolume(d jamkit.DrumType, volume float64) {
	chain := k.chain(d)
	if chain == nil {
		k.reports.send("drumkit", Warning, "no voice for drum %v", d)
		return
	}
	chain.SetGain(float32(volume))
}

// Volume returns the drum's chain level as a linear gain.
func (k *DrumKit) Volume(d jamkit.DrumType) float64 {
	chain := k.chain(d)
	if chain == nil {
		return 0
	}
	return float64(chain.Gain())
}

func (k *DrumKit) chain(d jamkit.DrumType) *synth.Chain {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.chains[d]
}

// Dispose releases every owned chain and clears the catalog. Idempotent.
func (k *DrumKit) Dispose() {
	k.mu.Lock()
	if k.disposed {
		k.mu.Unlock()
		return
	}
	k.disposed = true
	chains := k.chains
	k.chains = nil
	k.mu.Unlock()
	for _, c := range chains {
		c.Dispose()
	}
}

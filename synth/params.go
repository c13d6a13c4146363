package synth

import (
	"fmt"
	"time"

	"github.com/chewxy/math32"
)

// gainFloorDB is the level SetGain maps a zero linear gain to, so that the
// dB representation stays finite.
const gainFloorDB = -96

// Trigger schedules the note as soon as possible: it is applied at the next
// rendered sample. Fire and forget; it never blocks on audio.
func (c *Chain) Trigger(n Note) {
	c.synth.TriggerAt(c, n, 0)
}

// TriggerAt schedules the note offset into the future relative to the
// synth's current sample clock.
func (c *Chain) TriggerAt(n Note, offset time.Duration) {
	c.synth.TriggerAt(c, n, offset)
}

// TriggerAll schedules every note as soon as possible, all at the same
// sample. Chord triggers use this so the voices of one chord can never be
// split across render blocks.
func (c *Chain) TriggerAll(notes []Note) {
	c.synth.TriggerAllAt(c, notes, 0)
}

// ReleaseAll immediately closes the gate of every sounding voice on the
// chain, without disposing anything.
func (c *Chain) ReleaseAll() {
	c.synth.mu.Lock()
	defer c.synth.mu.Unlock()
	c.releaseAll()
}

// Active reports whether any of the chain's voices is currently sounding.
func (c *Chain) Active() bool {
	c.synth.mu.Lock()
	defer c.synth.mu.Unlock()
	return c.active()
}

// SetGain converts a linear gain in [0, 1] to a logarithmic level and applies
// it to the chain's amplitude, independent of the bus master gain. On a
// fixed-level chain this is a silent no-op.
func (c *Chain) SetGain(linear float32) {
	c.synth.mu.Lock()
	defer c.synth.mu.Unlock()
	if !c.hasGain {
		return
	}
	c.gainDB = linearToDB(linear)
}

// Gain returns the chain's amplitude as a linear gain, inverting the
// conversion done by SetGain.
func (c *Chain) Gain() float32 {
	c.synth.mu.Lock()
	defer c.synth.mu.Unlock()
	return dbToLinear(c.gainDB)
}

// HasGain reports whether the chain's amplitude is adjustable.
func (c *Chain) HasGain() bool { return c.hasGain }

// SetWaveform changes the oscillator shape shared by a tonal chain's voice
// pool. It takes effect on subsequent triggers; already-sounding notes keep
// the shape they were triggered with.
func (c *Chain) SetWaveform(w Waveform) error {
	if !w.valid() {
		return fmt.Errorf("unknown waveform %q", w)
	}
	c.synth.mu.Lock()
	defer c.synth.mu.Unlock()
	c.wave = w
	return nil
}

// Waveform returns the shape used by subsequent triggers.
func (c *Chain) Waveform() Waveform {
	c.synth.mu.Lock()
	defer c.synth.mu.Unlock()
	return c.wave
}

// SetFilterFrequency moves the tone filter cutoff, audible immediately on
// already-sounding notes. A chain built without a tone filter ignores this.
func (c *Chain) SetFilterFrequency(hz float32) {
	c.synth.mu.Lock()
	defer c.synth.mu.Unlock()
	if c.tone == nil {
		return
	}
	c.tone.spec.Frequency = hz
}

// FilterFrequency returns the tone filter cutoff, or 0 when the chain has no
// tone filter.
func (c *Chain) FilterFrequency() float32 {
	c.synth.mu.Lock()
	defer c.synth.mu.Unlock()
	if c.tone == nil {
		return 0
	}
	return c.tone.spec.Frequency
}

// SetFilterType switches the tone filter tap.
func (c *Chain) SetFilterType(t FilterType) error {
	if !t.valid() {
		return fmt.Errorf("unknown filter type %q", t)
	}
	c.synth.mu.Lock()
	defer c.synth.mu.Unlock()
	if c.tone == nil {
		return nil
	}
	c.tone.spec.Type = t
	return nil
}

// FilterType returns the current tone filter tap, or "" when the chain has
// no tone filter.
func (c *Chain) FilterType() FilterType {
	c.synth.mu.Lock()
	defer c.synth.mu.Unlock()
	if c.tone == nil {
		return ""
	}
	return c.tone.spec.Type
}

// SetReverbWet moves the reverb wet mix, audible immediately. A chain built
// without a reverb stage ignores this.
func (c *Chain) SetReverbWet(wet float32) {
	c.synth.mu.Lock()
	defer c.synth.mu.Unlock()
	if c.rev == nil {
		return
	}
	c.rev.spec.Wet = wet
}

// ReverbWet returns the reverb wet mix, or 0 when the chain has no reverb.
func (c *Chain) ReverbWet() float32 {
	c.synth.mu.Lock()
	defer c.synth.mu.Unlock()
	if c.rev == nil {
		return 0
	}
	return c.rev.spec.Wet
}

// Dispose unregisters the chain from the synth and releases every node it
// owns, exactly once. Disposing twice is a no-op.
func (c *Chain) Dispose() {
	c.synth.mu.Lock()
	defer c.synth.mu.Unlock()
	if c.disposed {
		return
	}
	c.disposed = true
	c.synth.removeChain(c)
	c.voices = nil
	c.tone = nil
	c.comp = nil
	c.rev = nil
}

// Disposed reports whether the chain has been disposed.
func (c *Chain) Disposed() bool {
	c.synth.mu.Lock()
	defer c.synth.mu.Unlock()
	return c.disposed
}

// linearToDB converts a linear gain in [0, 1] to decibels, with zero mapped
// to the finite gainFloorDB.
func linearToDB(linear float32) float32 {
	if linear < 0 {
		linear = 0
	} else if linear > 1 {
		linear = 1
	}
	if linear == 0 {
		return gainFloorDB
	}
	db := 20 * math32.Log10(linear)
	if db < gainFloorDB {
		db = gainFloorDB
	}
	return db
}

// dbToLinear inverts linearToDB; the floor maps back to zero.
func dbToLinear(db float32) float32 {
	if db <= gainFloorDB {
		return 0
	}
	return math32.Pow(10, db/20)
}

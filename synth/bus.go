package synth

import (
	"sync"

	"github.com/viterin/vek/vek32"

	"github.com/jamkit/jamkit"
)

// Bus is the shared output bus every chain terminates at. It is owned by the
// surrounding application, not by any chain: chains only append-mix into it
// and none may disconnect another. The master gain applies uniformly to
// everything on the bus.
type Bus struct {
	mu   sync.Mutex
	gain float32
	acc  []float32 // interleaved stereo accumulator for the current render
	peak float32
}

// NewBus returns a Bus with unity master gain.
func NewBus() *Bus {
	return &Bus{gain: 1}
}

// SetMasterGain sets the linear master gain applied to the mixed output.
func (b *Bus) SetMasterGain(gain float32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if gain < 0 {
		gain = 0
	}
	b.gain = gain
}

// MasterGain returns the current linear master gain.
func (b *Bus) MasterGain() float32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gain
}

// Peak returns the absolute peak amplitude of the most recently rendered
// block, after master gain. Useful for level meters.
func (b *Bus) Peak() float32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.peak
}

// begin prepares the accumulator for a render of n stereo frames.
func (b *Bus) begin(n int) {
	if cap(b.acc) < n*2 {
		b.acc = make([]float32, n*2)
	}
	b.acc = b.acc[:n*2]
	vek32.Zeros_Into(b.acc, n*2)
}

// accumulate mixes one chain's rendered segment into the bus at the given
// interleaved sample offset.
func (b *Bus) accumulate(segment []float32, offset int) {
	vek32.Add_Inplace(b.acc[offset:offset+len(segment)], segment)
}

// finish applies the master gain, updates the peak meter and copies the mix
// into the caller's buffer.
func (b *Bus) finish(buf jamkit.AudioBuffer) {
	b.mu.Lock()
	gain := b.gain
	b.mu.Unlock()
	vek32.MulNumber_Inplace(b.acc, gain)
	peak := vek32.Max(b.acc)
	if low := -vek32.Min(b.acc); low > peak {
		peak = low
	}
	for i := range buf {
		buf[i][0] = b.acc[i*2]
		buf[i][1] = b.acc[i*2+1]
	}
	b.mu.Lock()
	b.peak = peak
	b.mu.Unlock()
}

// Package synth is the pure-Go synthesis backend of jamkit. It renders a set
// of voice chains sample by sample into a shared bus, with sample-accurate
// scheduling of fire-and-forget trigger events.
package synth

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/jamkit/jamkit"
)

const sampleRate = jamkit.SampleRate

// Samples converts a duration to a whole number of samples.
func Samples(d time.Duration) int {
	return int(d * sampleRate / time.Second)
}

// event is one scheduled trigger. at is in samples on the synth clock; seq
// breaks ties so triggers issued in call order fire in call order.
type event struct {
	chain *Chain
	note  Note
	at    int64
	seq   int64
}

// Synth owns the registered chains and the pending event queue, and renders
// everything into its bus. All state is guarded by one mutex: triggering is
// cheap (append to the queue) and rendering happens on the player goroutine.
type Synth struct {
	mu     sync.Mutex
	bus    *Bus
	chains []*Chain
	events []event
	seq    int64
	now    int64

	scratch []float32
}

// NewSynth creates a synth rendering into the caller-supplied bus.
func NewSynth(bus *Bus) *Synth {
	return &Synth{bus: bus}
}

// Bus returns the shared output bus the synth renders into.
func (s *Synth) Bus() *Bus { return s.bus }

// Now returns the synth's sample clock: the total number of frames rendered
// so far. It is the monotonic "now" reference trigger offsets are relative
// to.
func (s *Synth) Now() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// TriggerAt schedules a note on a chain, offset into the future from the
// current sample clock. A zero or negative offset means "as soon as
// possible": the event fires at the next rendered sample. TriggerAt returns
// immediately after scheduling; it never waits for sound.
func (s *Synth) TriggerAt(c *Chain, n Note, offset time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.disposed {
		return
	}
	s.scheduleLocked(c, n, s.eventTimeLocked(offset))
	s.sortEventsLocked()
}

// TriggerAllAt schedules several notes on a chain under a single clock
// snapshot, so all of them fire at the same sample. Reading the clock once
// per note would let a concurrent Render advance it between two notes and
// split them across blocks.
func (s *Synth) TriggerAllAt(c *Chain, notes []Note, offset time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.disposed {
		return
	}
	at := s.eventTimeLocked(offset)
	for _, n := range notes {
		s.scheduleLocked(c, n, at)
	}
	s.sortEventsLocked()
}

func (s *Synth) eventTimeLocked(offset time.Duration) int64 {
	at := s.now
	if offset > 0 {
		at += int64(Samples(offset))
	}
	return at
}

func (s *Synth) scheduleLocked(c *Chain, n Note, at int64) {
	s.events = append(s.events, event{chain: c, note: n, at: at, seq: s.seq})
	s.seq++
}

func (s *Synth) sortEventsLocked() {
	slices.SortStableFunc(s.events, func(a, b event) int {
		if a.at != b.at {
			return int(a.at - b.at)
		}
		return int(a.seq - b.seq)
	})
}

// addChain registers a freshly built chain.
func (s *Synth) addChain(c *Chain) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chains = append(s.chains, c)
}

// removeChain unregisters a chain and drops its pending events. Called with
// the lock held, from Chain.Dispose.
func (s *Synth) removeChain(c *Chain) {
	s.chains = slices.DeleteFunc(s.chains, func(x *Chain) bool { return x == c })
	s.events = slices.DeleteFunc(s.events, func(e event) bool { return e.chain == c })
}

// NumChains returns the number of registered chains.
func (s *Synth) NumChains() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chains)
}

// Render renders len(buffer) frames of all chains into the buffer through
// the bus, firing scheduled events at their exact samples. Any panic in the
// signal path is recovered and returned as an error so a synthesis fault
// never crosses the boundary as a crash.
func (s *Synth) Render(buffer jamkit.AudioBuffer) (renderError error) {
	defer func() {
		if err := recover(); err != nil {
			renderError = fmt.Errorf("render panicked: %v", err)
		}
	}()
	if len(buffer) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(buffer)
	if cap(s.scratch) < n*2 {
		s.scratch = make([]float32, n*2)
	}
	s.bus.begin(n)
	offset := 0
	for offset < n {
		for len(s.events) > 0 && s.events[0].at <= s.now {
			e := s.events[0]
			s.events = s.events[1:]
			e.chain.startVoice(e.note)
		}
		seg := n - offset
		if len(s.events) > 0 {
			if d := int(s.events[0].at - s.now); d < seg {
				seg = d
			}
		}
		for _, c := range s.chains {
			c.renderInto(s.scratch[:seg*2])
			s.bus.accumulate(s.scratch[:seg*2], offset*2)
		}
		s.now += int64(seg)
		offset += seg
	}
	s.bus.finish(buffer)
	return nil
}

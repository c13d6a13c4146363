package engine

import (
	"sync"
	"time"

	"github.com/jamkit/jamkit"
	"github.com/jamkit/jamkit/synth"
)

const (
	feedbackVelocity = 0.5

	clickNote     = "C6"
	clickGate     = 30 * time.Millisecond
	errorNote     = "G2"
	errorGate     = 200 * time.Millisecond
	successGate   = 120 * time.Millisecond
	successOffset = 90 * time.Millisecond
)

// successNotes is the fixed ascending pattern of the success cue.
var successNotes = [...]string{"C5", "E5", "G5"}

// Feedback owns the three non-musical UI cue voices: click, success and
// error. Each voice is built lazily on first use and kept until DisposeAll.
// While the gate is not running, every call is a no-op that only reports.
type Feedback struct {
	synth   *synth.Synth
	gate    *Gate
	reports *Reports

	mu      sync.Mutex
	click   *synth.Chain
	success *synth.Chain
	err     *synth.Chain
}

// NewFeedback creates the feedback context. No chain is built until the
// first cue is played.
func NewFeedback(s *synth.Synth, gate *Gate, reports *Reports) *Feedback {
	return &Feedback{synth: s, gate: gate, reports: reports}
}

// PlayClick plays a single fixed high short tone.
func (f *Feedback) PlayClick() {
	chain := f.voice("click", &f.click)
	if chain == nil {
		return
	}
	f.play(chain, clickNote, clickGate, 0)
}

// PlaySuccess plays a fixed three-note ascending pattern with small fixed
// inter-note offsets.
func (f *Feedback) PlaySuccess() {
	chain := f.voice("success", &f.success)
	if chain == nil {
		return
	}
	for i, note := range successNotes {
		f.play(chain, note, successGate, time.Duration(i)*successOffset)
	}
}

// PlayError plays a single fixed low tone.
func (f *Feedback) PlayError() {
	chain := f.voice("error", &f.err)
	if chain == nil {
		return
	}
	f.play(chain, errorNote, errorGate, 0)
}

// voice returns the lazily-constructed chain for a cue, or nil when the cue
// must not sound (gate closed, build failure); nil is always a reported
// no-op, never a fault.
func (f *Feedback) voice(name string, slot **synth.Chain) *synth.Chain {
	if f.gate != nil && !f.gate.Active() {
		f.reports.send("feedback", Notify, "%s skipped: audio not running", name)
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if *slot != nil {
		return *slot
	}
	spec, err := feedbackSpec(name)
	if err != nil {
		f.reports.send("feedback", Warning, "%v", err)
		return nil
	}
	chain, err := f.synth.NewChain(spec)
	if err != nil {
		f.reports.send("feedback", Warning, "build %s voice: %v", name, err)
		return nil
	}
	*slot = chain
	return chain
}

func (f *Feedback) play(chain *synth.Chain, note string, gate, offset time.Duration) {
	freq, err := jamkit.NoteFreq(note)
	if err != nil {
		f.reports.send("feedback", Warning, "%v", err)
		return
	}
	chain.TriggerAt(synth.Note{Freq: freq, Velocity: feedbackVelocity, Duration: synth.Samples(gate)}, offset)
}

// DisposeAll releases all three voices and resets the lazy references, so
// subsequent use re-constructs them.
func (f *Feedback) DisposeAll() {
	f.mu.Lock()
	chains := []*synth.Chain{f.click, f.success, f.err}
	f.click, f.success, f.err = nil, nil, nil
	f.mu.Unlock()
	for _, c := range chains {
		if c != nil {
			c.Dispose()
		}
	}
}

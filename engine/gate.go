package engine

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jamkit/jamkit"
	"github.com/jamkit/jamkit/synth"
)

// GateState tracks the audio-permission handshake. Transitions are
// monotonic: Uninitialized → Initializing → Running, with Initializing
// falling back to Uninitialized only when the unlock fails. Running is
// terminal for the session; once audio is unlocked it stays unlocked.
type GateState int32

const (
	GateUninitialized GateState = iota
	GateInitializing
	GateRunning
)

func (s GateState) String() string {
	switch s {
	case GateInitializing:
		return "initializing"
	case GateRunning:
		return "running"
	default:
		return "uninitialized"
	}
}

// cueNote is the short confirmatory tone played when the unlock succeeds.
const (
	cueNoteName     = "C6"
	cueNoteDuration = 80 * time.Millisecond
	cueChainLinger  = 500 * time.Millisecond
)

// unlockTimeout bounds how long Unlock waits for the first frames to reach
// the device before declaring the unlock failed.
const unlockTimeout = time.Second

// Gate is the only component allowed to transition audio output from silent
// to active. Unlock must be called from a context backed by a genuine user
// gesture; the surrounding application is responsible for that precondition.
type Gate struct {
	state   atomic.Int32
	group   singleflight.Group
	synth   *synth.Synth
	open    func() (jamkit.AudioContext, error)
	reports *Reports

	mu     sync.Mutex
	ctx    jamkit.AudioContext
	player *Player
}

// NewGate creates a gate in the Uninitialized state. open is called once,
// during the first successful unlock, to acquire the audio device.
func NewGate(s *synth.Synth, open func() (jamkit.AudioContext, error), reports *Reports) *Gate {
	return &Gate{synth: s, open: open, reports: reports}
}

// State returns the current gate state.
func (g *Gate) State() GateState {
	return GateState(g.state.Load())
}

// Active reports whether audio output is running. Triggering components
// consult this before issuing sound, so gated triggers cost nothing.
func (g *Gate) Active() bool {
	return g.State() == GateRunning
}

// Unlock performs the audio unlock handshake: acquires the device, starts
// the render loop, confirms frames actually reach the device, and plays a
// short confirmatory cue before transitioning to Running. Concurrent calls
// while initializing are coalesced into one attempt, so exactly one cue is
// heard. Calling when already Running returns nil immediately. On failure
// the gate reverts to Uninitialized and the returned error wraps
// jamkit.ErrAudioDenied so the caller can offer a retry.
func (g *Gate) Unlock() error {
	if g.Active() {
		return nil
	}
	_, err, _ := g.group.Do("unlock", func() (any, error) {
		return nil, g.unlock()
	})
	return err
}

func (g *Gate) unlock() error {
	if g.Active() {
		return nil
	}
	g.state.Store(int32(GateInitializing))
	ctx, err := g.open()
	if err != nil {
		g.state.Store(int32(GateUninitialized))
		return fmt.Errorf("acquire audio device: %v: %w", err, jamkit.ErrAudioDenied)
	}
	player := NewPlayer(g.synth, ctx.Output(), g.reports)
	fail := func(cause string) error {
		player.Close()
		ctx.Close()
		g.state.Store(int32(GateUninitialized))
		return fmt.Errorf("%s: %w", cause, jamkit.ErrAudioDenied)
	}
	cue, err := g.cueChain()
	if err != nil {
		return fail(fmt.Sprintf("build unlock cue: %v", err))
	}
	freq, _ := jamkit.NoteFreq(cueNoteName)
	cue.Trigger(synth.Note{Freq: freq, Velocity: 0.5, Duration: synth.Samples(cueNoteDuration)})
	deadline := time.Now().Add(unlockTimeout)
	for player.Delivered() == 0 {
		if time.Now().After(deadline) {
			cue.Dispose()
			return fail("audio clock not advancing")
		}
		time.Sleep(5 * time.Millisecond)
	}
	// the cue chain is transient; its disposal is deferred past the tail
	// rather than awaited
	time.AfterFunc(cueChainLinger, cue.Dispose)
	g.mu.Lock()
	g.ctx = ctx
	g.player = player
	g.mu.Unlock()
	g.state.Store(int32(GateRunning))
	return nil
}

func (g *Gate) cueChain() (*synth.Chain, error) {
	return g.synth.NewChain(synth.ChainSpec{
		Name:      "unlock-cue",
		Archetype: synth.Tonal,
		Voices:    1,
		Waveform:  synth.WaveSine,
		Envelope:  synth.EnvelopeSpec{Attack: 0.005, Decay: 0.05, Sustain: 0, Release: 0.05},
	})
}

// Close stops playback and releases the audio device at application
// shutdown. The permission model has no Running → Uninitialized transition,
// so the gate state is left as is; Close is teardown, not a re-lock.
func (g *Gate) Close() error {
	g.mu.Lock()
	player, ctx := g.player, g.ctx
	g.player, g.ctx = nil, nil
	g.mu.Unlock()
	if player != nil {
		player.Close()
	}
	if ctx != nil {
		return ctx.Close()
	}
	return nil
}

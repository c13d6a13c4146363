package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/jamkit/jamkit"
	"github.com/jamkit/jamkit/synth"
)

// playerBufferFrames is the render block size. Small enough that triggers
// scheduled "as soon as possible" land within ~12 ms.
const playerBufferFrames = 512

// Player is the render loop: a goroutine that pulls frames from the synth
// and pushes them to the audio sink. The sink's backpressure paces the loop.
// The engine's trigger calls never touch the player; they only schedule
// events on the synth.
type Player struct {
	synth   *synth.Synth
	sink    jamkit.AudioSink
	reports *Reports

	delivered atomic.Int64
	bufPool   sync.Pool

	close     chan struct{}
	finished  chan struct{}
	closeOnce sync.Once
}

// NewPlayer starts the render loop on its own goroutine.
func NewPlayer(s *synth.Synth, sink jamkit.AudioSink, reports *Reports) *Player {
	p := &Player{
		synth:    s,
		sink:     sink,
		reports:  reports,
		close:    make(chan struct{}, 1),
		finished: make(chan struct{}),
		bufPool: sync.Pool{New: func() any {
			b := make(jamkit.AudioBuffer, playerBufferFrames)
			return &b
		}},
	}
	go p.run()
	return p
}

func (p *Player) run() {
	defer close(p.finished)
	for {
		select {
		case <-p.close:
			return
		default:
		}
		bufPtr := p.bufPool.Get().(*jamkit.AudioBuffer)
		buf := (*bufPtr)[:playerBufferFrames]
		if err := p.synth.Render(buf); err != nil {
			p.reports.send("player", Error, "synth.Render: %v", err)
			for i := range buf {
				buf[i] = [2]float32{}
			}
		}
		err := p.sink.WriteAudio(buf)
		p.bufPool.Put(bufPtr)
		if err != nil {
			p.reports.send("player", Error, "WriteAudio: %v", err)
			return
		}
		p.delivered.Add(playerBufferFrames)
	}
}

// Delivered returns the number of frames successfully written to the sink.
// The gate uses this to confirm the audio clock is actually advancing, not
// merely that the loop started.
func (p *Player) Delivered() int64 {
	return p.delivered.Load()
}

// Close stops the loop and closes the sink. Safe to call twice.
func (p *Player) Close() {
	p.closeOnce.Do(func() {
		close(p.close)
		// closing the sink unblocks a goroutine stuck in WriteAudio
		p.sink.Close()
		select {
		case <-p.finished:
		case <-time.After(3 * time.Second):
		}
	})
}

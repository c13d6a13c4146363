package oto

import (
	"fmt"
	"io"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/jamkit/jamkit"
)

type OtoContext oto.Context
type OtoOutput struct {
	player    *oto.Player
	pipe      *io.PipeWriter
	tmpBuffer []byte
}

const otoBufferDuration = 50 * time.Millisecond

// NewContext opens the system audio device for stereo float32 output at the
// engine sample rate. It blocks until the device is ready.
func NewContext() (*OtoContext, error) {
	op := &oto.NewContextOptions{
		SampleRate:   jamkit.SampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   otoBufferDuration,
	}
	context, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return (*OtoContext)(context), nil
}

// Output creates a sink for the context. Oto pulls samples through an
// io.Reader, so the sink bridges the push-style WriteAudio calls over a pipe;
// the pipe blocking on write is what paces the render loop.
func (c *OtoContext) Output() jamkit.AudioSink {
	pr, pw := io.Pipe()
	player := (*oto.Context)(c).NewPlayer(pr)
	player.Play()
	return &OtoOutput{player: player, pipe: pw, tmpBuffer: make([]byte, 0)}
}

func (c *OtoContext) Close() error {
	if err := (*oto.Context)(c).Suspend(); err != nil {
		return fmt.Errorf("cannot suspend oto context: %w", err)
	}
	return nil
}

func (o *OtoOutput) WriteAudio(buffer jamkit.AudioBuffer) error {
	// we reuse the old capacity tmpBuffer by setting its length to zero. then,
	// we save the tmpBuffer so we can reuse it next time
	o.tmpBuffer = FloatBufferToBytes(buffer, o.tmpBuffer[:0])
	if _, err := o.pipe.Write(o.tmpBuffer); err != nil {
		return fmt.Errorf("cannot write to player: %w", err)
	}
	return nil
}

// Close disposes of resources
func (o *OtoOutput) Close() error {
	o.pipe.Close()
	if err := o.player.Close(); err != nil {
		return fmt.Errorf("cannot close oto player: %w", err)
	}
	return nil
}

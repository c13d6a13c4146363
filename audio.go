package jamkit

// AudioBuffer is a buffer of stereo audio samples, in the [-1, 1] nominal
// range. AudioBuffer[i][0] is the left channel and AudioBuffer[i][1] the
// right.
type AudioBuffer [][2]float32

// AudioSink is something that can play stereo audio, typically a player
// created from an AudioContext. WriteAudio is allowed to block until the
// device has consumed enough of the buffer; this backpressure is what paces
// the render loop.
type AudioSink interface {
	WriteAudio(buffer AudioBuffer) error
	Close() error
}

// AudioContext represents the audio device / driver. Creating one may require
// a user gesture on some platforms, which is why the engine gate owns the
// creation handshake.
type AudioContext interface {
	Output() AudioSink
	Close() error
}

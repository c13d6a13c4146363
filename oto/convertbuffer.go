package oto

import (
	"encoding/binary"
	"math"

	"github.com/jamkit/jamkit"
)

// FloatBufferToBytes converts a stereo frame buffer to interleaved little
// endian float32 bytes, the format the oto player consumes. The recycle
// buffer is appended to and returned, so the caller can reuse its capacity.
func FloatBufferToBytes(buffer jamkit.AudioBuffer, recycle []byte) []byte {
	ret := recycle
	for _, frame := range buffer {
		ret = binary.LittleEndian.AppendUint32(ret, math.Float32bits(frame[0]))
		ret = binary.LittleEndian.AppendUint32(ret, math.Float32bits(frame[1]))
	}
	return ret
}

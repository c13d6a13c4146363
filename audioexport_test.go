package jamkit_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/jamkit/jamkit"
)

func TestWavHeader(t *testing.T) {
	buffer := jamkit.AudioBuffer{{0.5, -0.5}, {1, -1}}
	tests := []struct {
		name      string
		pcm16     bool
		chunkSize uint32
		format    uint16
		bits      uint16
		dataLen   int
	}{
		// 2 stereo frames = 4 samples; float32 carries the fact chunk
		{"float32", false, 66, 3, 32, 16},
		{"pcm16", true, 44, 1, 16, 8},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			wav, err := jamkit.Wav(buffer, test.pcm16)
			if err != nil {
				t.Fatalf("Wav failed: %v", err)
			}
			if len(wav) != int(8+test.chunkSize) {
				t.Fatalf("wav length %d, expected %d", len(wav), 8+test.chunkSize)
			}
			if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
				t.Fatalf("bad riff/wave magic: % x", wav[:12])
			}
			if got := binary.LittleEndian.Uint32(wav[4:8]); got != test.chunkSize {
				t.Errorf("chunk size %d, expected %d", got, test.chunkSize)
			}
			if got := binary.LittleEndian.Uint16(wav[20:22]); got != test.format {
				t.Errorf("wave format %d, expected %d", got, test.format)
			}
			if got := binary.LittleEndian.Uint16(wav[22:24]); got != 2 {
				t.Errorf("channel count %d, expected 2", got)
			}
			if got := binary.LittleEndian.Uint32(wav[24:28]); got != jamkit.SampleRate {
				t.Errorf("sample rate %d, expected %d", got, jamkit.SampleRate)
			}
			if got := binary.LittleEndian.Uint16(wav[34:36]); got != test.bits {
				t.Errorf("bits per sample %d, expected %d", got, test.bits)
			}
			raw, err := jamkit.Raw(buffer, test.pcm16)
			if err != nil {
				t.Fatalf("Raw failed: %v", err)
			}
			if len(raw) != test.dataLen {
				t.Fatalf("raw length %d, expected %d", len(raw), test.dataLen)
			}
			if !bytes.HasSuffix(wav, raw) {
				t.Errorf("wav data section does not match the raw output")
			}
		})
	}
}

func TestRawPCM16Clamps(t *testing.T) {
	raw, err := jamkit.Raw(jamkit.AudioBuffer{{2, -2}}, true)
	if err != nil {
		t.Fatalf("Raw failed: %v", err)
	}
	left := int16(binary.LittleEndian.Uint16(raw[0:2]))
	right := int16(binary.LittleEndian.Uint16(raw[2:4]))
	if left != 32767 {
		t.Errorf("overdriven left sample %d, expected 32767", left)
	}
	if right != -32768 {
		t.Errorf("overdriven right sample %d, expected -32768", right)
	}
}

// Package audio decodes synthesized speech and plays it back.
package audio

import (
	"encoding/binary"
	"fmt"
)

// Speech output format.
const (
	SampleRate    = 24000
	Channels      = 1
	BitsPerSample = 16
)

// DecodePCM16 converts little-endian signed 16-bit samples to floats by
// dividing each by 32768.
func DecodePCM16(raw []byte) ([]float32, error) {
	if len(raw)%2 != 0 {
		return nil, fmt.Errorf("decode audio: odd byte count %d", len(raw))
	}
	samples := make([]float32, len(raw)/2)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(raw[2*i:]))
		samples[i] = float32(v) / 32768.0
	}
	return samples, nil
}

// Duration returns the play time of raw PCM at SampleRate in milliseconds.
func Duration(raw []byte) int64 {
	frames := len(raw) / (BitsPerSample / 8 * Channels)
	return int64(frames) * 1000 / SampleRate
}

package audio

import (
	"encoding/binary"
	"io"
)

// WriteWAV writes raw PCM as a canonical RIFF/WAVE file.
func WriteWAV(w io.Writer, pcm []byte) error {
	byteRate := SampleRate * Channels * BitsPerSample / 8
	blockAlign := Channels * BitsPerSample / 8
	header := []any{
		[]byte("RIFF"),
		uint32(36 + len(pcm)),
		[]byte("WAVE"),
		[]byte("fmt "),
		uint32(16),
		uint16(1), // PCM
		uint16(Channels),
		uint32(SampleRate),
		uint32(byteRate),
		uint16(blockAlign),
		uint16(BitsPerSample),
		[]byte("data"),
		uint32(len(pcm)),
	}
	for _, field := range header {
		if err := binary.Write(w, binary.LittleEndian, field); err != nil {
			return err
		}
	}
	_, err := w.Write(pcm)
	return err
}

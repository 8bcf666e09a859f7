package speaker

import (
	"bytes"
	"encoding/binary"
)

// EncodeWAV converts float32 samples to a mono 16-bit PCM WAV file
func EncodeWAV(samples []float32, sampleRate uint32) []byte {
	pcm := make([]byte, len(samples)*2)
	for i, sample := range samples {
		// Clamp before scaling, loopback capture can overshoot [-1, 1]
		if sample > 1 {
			sample = 1
		} else if sample < -1 {
			sample = -1
		}
		v := int16(sample * 32767)
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(v))
	}

	buf := new(bytes.Buffer)

	dataSize := uint32(len(pcm))
	bitsPerSample := uint16(16)
	blockAlign := uint16(channels * uint32(bitsPerSample) / 8)
	byteRate := sampleRate * uint32(blockAlign)

	// RIFF header
	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	// fmt chunk
	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16)) // Chunk size
	binary.Write(buf, binary.LittleEndian, uint16(1))  // Audio format (PCM)
	binary.Write(buf, binary.LittleEndian, uint16(channels))
	binary.Write(buf, binary.LittleEndian, sampleRate)
	binary.Write(buf, binary.LittleEndian, byteRate)
	binary.Write(buf, binary.LittleEndian, blockAlign)
	binary.Write(buf, binary.LittleEndian, bitsPerSample)

	// data chunk
	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, dataSize)
	buf.Write(pcm)

	return buf.Bytes()
}

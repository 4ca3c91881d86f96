// Package audio provides small helpers for working with 16-bit PCM audio and
// the RIFF/WAV container. Streaming clients send raw PCM over the websocket;
// these helpers wrap it in a WAV container before it is handed to a
// speech-to-text provider, and validate WAV uploads on the batch endpoint.
package audio

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Default capture format used by the streaming transcription endpoint.
const (
	DefaultSampleRate = 16000
	DefaultChannels   = 1

	bitsPerSample = 16
	headerSize    = 44
)

// Format describes the sample rate and channel count of a PCM stream.
type Format struct {
	SampleRate int
	Channels   int
}

// EncodeWAV wraps raw 16-bit signed little-endian PCM data in a standard
// RIFF/WAV container. The returned byte slice is suitable for direct inclusion
// in a multipart form upload.
func EncodeWAV(pcm []byte, sampleRate, channels int) []byte {
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8
	dataSize := len(pcm)

	buf := make([]byte, headerSize+dataSize)

	// RIFF chunk descriptor
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize)) // file size minus 8
	copy(buf[8:12], "WAVE")

	// fmt sub-chunk
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)                 // sub-chunk size (PCM)
	binary.LittleEndian.PutUint16(buf[20:22], 1)                  // audio format: PCM
	binary.LittleEndian.PutUint16(buf[22:24], uint16(channels))   // num channels
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate)) // sample rate
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))   // byte rate
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign)) // block align
	binary.LittleEndian.PutUint16(buf[34:36], bitsPerSample)      // bits per sample

	// data sub-chunk
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))
	copy(buf[44:], pcm)

	return buf
}

// IsWAV reports whether data begins with a RIFF/WAVE header. It inspects only
// the container magic, not the sample format.
func IsWAV(data []byte) bool {
	return len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE"
}

// DecodeWAV extracts the raw PCM payload and format from a simple RIFF/WAV
// container holding 16-bit PCM. Extension chunks between "fmt " and "data"
// are skipped. Returns an error for non-WAV data, compressed formats, or a
// truncated data chunk.
func DecodeWAV(data []byte) ([]byte, Format, error) {
	if !IsWAV(data) {
		return nil, Format{}, fmt.Errorf("audio: not a RIFF/WAVE container")
	}
	if len(data) < headerSize {
		return nil, Format{}, fmt.Errorf("audio: truncated WAV header (%d bytes)", len(data))
	}

	audioFormat := binary.LittleEndian.Uint16(data[20:22])
	if audioFormat != 1 {
		return nil, Format{}, fmt.Errorf("audio: unsupported WAV format %d (want PCM)", audioFormat)
	}
	bps := binary.LittleEndian.Uint16(data[34:36])
	if bps != bitsPerSample {
		return nil, Format{}, fmt.Errorf("audio: unsupported bit depth %d (want %d)", bps, bitsPerSample)
	}
	f := Format{
		SampleRate: int(binary.LittleEndian.Uint32(data[24:28])),
		Channels:   int(binary.LittleEndian.Uint16(data[22:24])),
	}

	// Walk sub-chunks starting after the fmt chunk header until "data".
	fmtSize := int(binary.LittleEndian.Uint32(data[16:20]))
	off := 20 + fmtSize
	for off+8 <= len(data) {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		if id == "data" {
			if off+8+size > len(data) {
				return nil, Format{}, fmt.Errorf("audio: truncated data chunk (want %d bytes, have %d)", size, len(data)-off-8)
			}
			return data[off+8 : off+8+size], f, nil
		}
		off += 8 + size
	}
	return nil, Format{}, fmt.Errorf("audio: no data chunk found")
}

// Duration returns the duration in milliseconds of a raw 16-bit PCM buffer.
// Returns 0 for invalid inputs.
func Duration(pcm []byte, sampleRate, channels int) int {
	if sampleRate <= 0 || channels <= 0 {
		return 0
	}
	samples := len(pcm) / 2 / channels
	return samples * 1000 / sampleRate
}

// RMS returns the root-mean-square energy of a 16-bit signed little-endian
// PCM buffer, in sample units (0 to 32767). Returns 0 for buffers shorter
// than one sample. Useful for deciding whether a buffered stream segment is
// silence before spending a transcription call on it.
func RMS(pcm []byte) float64 {
	n := len(pcm) / 2
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		sample := int16(binary.LittleEndian.Uint16(pcm[i*2 : i*2+2]))
		v := float64(sample)
		sum += v * v
	}
	return math.Sqrt(sum / float64(n))
}

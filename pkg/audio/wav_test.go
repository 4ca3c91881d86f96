package audio_test

import (
	"encoding/binary"
	"testing"

	"github.com/vaanilabs/vaani/pkg/audio"
)

func TestEncodeWAVHeader(t *testing.T) {
	t.Parallel()
	pcm := make([]byte, 320) // 10 ms at 16 kHz mono
	wav := audio.EncodeWAV(pcm, 16000, 1)

	if len(wav) != 44+len(pcm) {
		t.Fatalf("length: got %d, want %d", len(wav), 44+len(pcm))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Errorf("missing RIFF/WAVE magic: %q %q", wav[0:4], wav[8:12])
	}
	if got := binary.LittleEndian.Uint32(wav[24:28]); got != 16000 {
		t.Errorf("sample rate: got %d, want 16000", got)
	}
	if got := binary.LittleEndian.Uint16(wav[22:24]); got != 1 {
		t.Errorf("channels: got %d, want 1", got)
	}
	if got := binary.LittleEndian.Uint32(wav[40:44]); got != uint32(len(pcm)) {
		t.Errorf("data size: got %d, want %d", got, len(pcm))
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()
	pcm := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}
	wav := audio.EncodeWAV(pcm, 8000, 2)

	got, f, err := audio.DecodeWAV(wav)
	if err != nil {
		t.Fatalf("DecodeWAV: %v", err)
	}
	if f.SampleRate != 8000 || f.Channels != 2 {
		t.Errorf("format: got %+v, want {8000 2}", f)
	}
	if string(got) != string(pcm) {
		t.Errorf("pcm payload: got %v, want %v", got, pcm)
	}
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	t.Parallel()
	if _, _, err := audio.DecodeWAV([]byte("not audio at all")); err == nil {
		t.Fatal("expected error for non-WAV data, got nil")
	}
}

func TestIsWAV(t *testing.T) {
	t.Parallel()
	if !audio.IsWAV(audio.EncodeWAV(nil, 16000, 1)) {
		t.Error("IsWAV returned false for encoded WAV")
	}
	if audio.IsWAV([]byte("RIFFxxxx")) {
		t.Error("IsWAV returned true for truncated header")
	}
}

func TestDuration(t *testing.T) {
	t.Parallel()
	pcm := make([]byte, 32000) // 1 s at 16 kHz mono 16-bit
	if got := audio.Duration(pcm, 16000, 1); got != 1000 {
		t.Errorf("Duration: got %d ms, want 1000", got)
	}
	if got := audio.Duration(pcm, 0, 1); got != 0 {
		t.Errorf("Duration with zero rate: got %d, want 0", got)
	}
}

func TestRMS(t *testing.T) {
	t.Parallel()
	if got := audio.RMS(nil); got != 0 {
		t.Errorf("RMS(nil): got %v, want 0", got)
	}

	// Constant-amplitude signal has RMS equal to that amplitude.
	pcm := make([]byte, 200)
	for i := 0; i < len(pcm); i += 2 {
		binary.LittleEndian.PutUint16(pcm[i:i+2], uint16(int16(1000)))
	}
	if got := audio.RMS(pcm); got < 999.9 || got > 1000.1 {
		t.Errorf("RMS: got %v, want 1000", got)
	}
}

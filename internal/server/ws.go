package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coder/websocket"

	"github.com/vaanilabs/vaani/pkg/audio"
)

// errSilentBuffer reports a flushed buffer whose energy is below the
// silence floor.
var errSilentBuffer = errors.New("no speech detected in buffered audio")

// streamControl is the JSON shape of text frames sent by streaming clients.
// A bare "flush" text frame is accepted as shorthand for {"type":"flush"}.
type streamControl struct {
	Type     string `json:"type"`
	Language string `json:"language,omitempty"`
}

// streamReply is the JSON text frame sent back after each flush.
type streamReply struct {
	transcribeResponse
	Result processResponse `json:"result"`
}

// streamError is sent when a flush cannot be completed. The stream stays
// open so the client can retry with fresh audio.
type streamError struct {
	Error string `json:"error"`
}

// handleStream upgrades to a websocket and runs a push-to-talk loop:
// binary frames accumulate raw 16 kHz mono PCM (or a complete WAV file),
// a "flush" text frame transcribes the buffer and replies with the
// transcript plus the processed intent.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if s.stt == nil {
		writeError(w, http.StatusServiceUnavailable, "no speech provider configured")
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.log.Warn("websocket accept failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream aborted")

	ctx := r.Context()
	s.metrics.ActiveStreams.Add(ctx, 1)
	defer s.metrics.ActiveStreams.Add(ctx, -1)

	var (
		buf      []byte
		langHint = r.URL.Query().Get("language")
	)
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			// Client hung up mid-stream. Buffered audio without a
			// flush is discarded.
			return
		}

		switch typ {
		case websocket.MessageBinary:
			if len(buf)+len(data) > maxAudioBytes {
				conn.Close(websocket.StatusMessageTooBig, "audio buffer exceeds 10 MiB")
				return
			}
			buf = append(buf, data...)

		case websocket.MessageText:
			ctl, err := parseStreamControl(data)
			if err != nil {
				if werr := writeStreamJSON(ctx, conn, streamError{Error: err.Error()}); werr != nil {
					return
				}
				continue
			}
			if ctl.Language != "" {
				langHint = ctl.Language
			}
			if ctl.Type != "flush" {
				continue
			}
			if len(buf) == 0 {
				if werr := writeStreamJSON(ctx, conn, streamError{Error: "flush with no buffered audio"}); werr != nil {
					return
				}
				continue
			}

			reply, err := s.flushStream(ctx, buf, langHint)
			buf = buf[:0]
			if errors.Is(err, errSilentBuffer) {
				if werr := writeStreamJSON(ctx, conn, streamError{Error: err.Error()}); werr != nil {
					return
				}
				continue
			}
			if err != nil {
				s.log.Warn("stream flush failed", slog.String("error", err.Error()))
				if werr := writeStreamJSON(ctx, conn, streamError{Error: "transcription failed: " + err.Error()}); werr != nil {
					return
				}
				continue
			}
			if err := writeStreamJSON(ctx, conn, reply); err != nil {
				return
			}
		}
	}
}

// silenceRMS is the energy floor below which a flushed buffer is treated as
// silence and never sent to the speech provider. Full scale for 16-bit audio
// is 32 767; 300 corresponds to near-silence.
const silenceRMS = 300.0

// flushStream wraps buffered PCM in a WAV container when needed, gates out
// silent buffers, then runs the full transcribe-and-process pipeline.
func (s *Server) flushStream(ctx context.Context, buf []byte, langHint string) (streamReply, error) {
	pcm, wav := buf, buf
	format := audio.Format{SampleRate: audio.DefaultSampleRate, Channels: audio.DefaultChannels}
	if audio.IsWAV(buf) {
		decoded, f, err := audio.DecodeWAV(buf)
		if err != nil {
			return streamReply{}, fmt.Errorf("decode wav: %w", err)
		}
		pcm, format = decoded, f
	} else {
		wav = audio.EncodeWAV(buf, format.SampleRate, format.Channels)
	}

	rms := audio.RMS(pcm)
	s.log.Debug("stream flush",
		slog.Int("duration_ms", audio.Duration(pcm, format.SampleRate, format.Channels)),
		slog.Float64("rms", rms),
	)
	if rms < silenceRMS {
		return streamReply{}, errSilentBuffer
	}

	tr, err := s.transcribe(ctx, wav, langHint)
	if err != nil {
		return streamReply{}, err
	}
	return streamReply{
		transcribeResponse: tr,
		Result:             s.process(ctx, tr.Transcription, tr.DetectedLanguage),
	}, nil
}

func parseStreamControl(data []byte) (streamControl, error) {
	if strings.TrimSpace(string(data)) == "flush" {
		return streamControl{Type: "flush"}, nil
	}
	var ctl streamControl
	if err := json.Unmarshal(data, &ctl); err != nil {
		return streamControl{}, err
	}
	return ctl, nil
}

func writeStreamJSON(ctx context.Context, conn *websocket.Conn, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, data)
}

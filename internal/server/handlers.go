package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vaanilabs/vaani/internal/booking"
	"github.com/vaanilabs/vaani/internal/nlu"
	"github.com/vaanilabs/vaani/pkg/provider/stt"
)

// errorBody is the JSON shape of every non-2xx API response.
type errorBody struct {
	Error string `json:"error"`
}

// transcribeResponse is the JSON body returned by /api/transcribe.
type transcribeResponse struct {
	Transcription    string       `json:"transcription"`
	DetectedLanguage nlu.Language `json:"detected_language"`
	NativeScript     string       `json:"native_script"`
}

// processRequest is the JSON body accepted by /api/process.
type processRequest struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

// stationsResponse is the JSON body returned by /api/stations.
type stationsResponse struct {
	Stations []string `json:"stations"`
	Count    int      `json:"count"`
}

// handleTranscribe accepts a multipart "audio" file, transcribes it through
// the configured speech provider, detects the language, and renders the
// transcript in native script.
func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if s.stt == nil {
		writeError(w, http.StatusServiceUnavailable, "no speech provider configured")
		return
	}

	if err := r.ParseMultipartForm(maxAudioBytes); err != nil {
		writeError(w, http.StatusBadRequest, "parse multipart form: "+err.Error())
		return
	}
	file, _, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, `missing "audio" form file`)
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(io.LimitReader(file, maxAudioBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read audio: "+err.Error())
		return
	}
	if len(audio) > maxAudioBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "audio exceeds 10 MiB limit")
		return
	}
	if len(audio) == 0 {
		writeError(w, http.StatusBadRequest, "empty audio upload")
		return
	}

	res, err := s.transcribe(r.Context(), audio, r.FormValue("language"))
	if err != nil {
		writeError(w, http.StatusBadGateway, "transcription failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// transcribe runs the speech provider and post-processes the transcript:
// language detection (provider hint wins when parseable) and native-script
// rendering.
func (s *Server) transcribe(ctx context.Context, audio []byte, langHint string) (transcribeResponse, error) {
	start := time.Now()
	result, err := s.stt.Transcribe(ctx, stt.Request{
		Audio:    audio,
		Language: langHint,
	})
	s.metrics.STTDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		s.metrics.RecordProviderError(ctx, s.stt.Name(), "stt")
		return transcribeResponse{}, err
	}
	s.metrics.RecordProviderRequest(ctx, s.stt.Name(), "stt", "ok")

	lang, parseErr := nlu.ParseLanguage(shortLanguage(result.Language))
	if parseErr != nil {
		lang = nlu.DetectLanguage(result.Text)
	}

	return transcribeResponse{
		Transcription:    result.Text,
		DetectedLanguage: lang,
		NativeScript:     s.translit.ToNativeScript(ctx, result.Text, lang),
	}, nil
}

// handleProcess classifies a text utterance and applies booking side
// effects.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "decode request: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, `"text" is required`)
		return
	}

	var lang nlu.Language
	if req.Language != "" {
		parsed, err := nlu.ParseLanguage(req.Language)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		lang = parsed
	}

	writeJSON(w, http.StatusOK, s.process(r.Context(), req.Text, lang))
}

// handleStations returns the canonical station catalog.
func (s *Server) handleStations(w http.ResponseWriter, _ *http.Request) {
	stations := s.catalog.Stations()
	writeJSON(w, http.StatusOK, stationsResponse{Stations: stations, Count: len(stations)})
}

// handleGetBooking returns one booking by ID.
func (s *Server) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	b, err := s.bookings.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			writeError(w, http.StatusNotFound, "booking not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// handleCancelBooking cancels one booking by ID.
func (s *Server) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	b, err := s.bookings.Cancel(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			writeError(w, http.StatusNotFound, "booking not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// shortLanguage reduces a BCP-47 style tag ("hi-IN") to its primary subtag.
func shortLanguage(code string) string {
	if i := strings.IndexAny(code, "-_"); i > 0 {
		return strings.ToLower(code[:i])
	}
	return strings.ToLower(code)
}

// writeJSON encodes v with the given status. Encoding failures are logged
// by the middleware layer via the status recorder; nothing more can be sent
// once the header is out.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError sends a JSON error body.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

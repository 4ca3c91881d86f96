package server_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/vaanilabs/vaani/internal/booking"
	"github.com/vaanilabs/vaani/internal/catalog"
	"github.com/vaanilabs/vaani/internal/nlu"
	"github.com/vaanilabs/vaani/internal/nlu/llmintent"
	"github.com/vaanilabs/vaani/internal/ragstore"
	"github.com/vaanilabs/vaani/internal/server"
	"github.com/vaanilabs/vaani/pkg/audio"
	embmock "github.com/vaanilabs/vaani/pkg/provider/embeddings/mock"
	llmmock "github.com/vaanilabs/vaani/pkg/provider/llm/mock"
	sttmock "github.com/vaanilabs/vaani/pkg/provider/stt/mock"
)

func newHandler(t *testing.T, opts ...server.Option) http.Handler {
	t.Helper()
	cat := catalog.Default()
	srv := server.New(nlu.NewProcessor(cat), cat, booking.NewService(), opts...)
	return srv.Routes()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(data)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

type bookingBody struct {
	ID       string `json:"booking_id"`
	From     string `json:"from_station"`
	To       string `json:"to_station"`
	Quantity int    `json:"quantity"`
	Price    int    `json:"price"`
	Status   string `json:"status"`
}

type processBody struct {
	Intent       string       `json:"intent"`
	Confidence   float64      `json:"confidence"`
	Language     string       `json:"language"`
	FromStation  string       `json:"from_station"`
	ToStation    string       `json:"to_station"`
	Quantity     int          `json:"quantity"`
	Booking      *bookingBody `json:"booking"`
	BookingError string       `json:"booking_error"`
}

func TestProcessBookTicketCreatesBooking(t *testing.T) {
	t.Parallel()

	h := newHandler(t)
	rec := doJSON(t, h, http.MethodPost, "/api/process",
		map[string]string{"text": "Book 2 tickets from Majestic to MG Road"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var got processBody
	decodeBody(t, rec, &got)

	if got.Intent != "book_ticket" {
		t.Fatalf("intent = %q, want book_ticket", got.Intent)
	}
	if got.Booking == nil {
		t.Fatal("booking = nil, want a created booking")
	}
	if got.Booking.From != "Majestic" || got.Booking.To != "MG Road" {
		t.Errorf("route = %q -> %q, want Majestic -> MG Road", got.Booking.From, got.Booking.To)
	}
	if got.Booking.Quantity != 2 {
		t.Errorf("quantity = %d, want 2", got.Booking.Quantity)
	}
	if got.Booking.Price <= 0 {
		t.Errorf("price = %d, want > 0", got.Booking.Price)
	}
	if !strings.HasPrefix(got.Booking.ID, "BM") {
		t.Errorf("booking id = %q, want BM prefix", got.Booking.ID)
	}
	if got.Booking.Status != "confirmed" {
		t.Errorf("status = %q, want confirmed", got.Booking.Status)
	}
}

func TestProcessIncompleteBookingHasNoSideEffect(t *testing.T) {
	t.Parallel()

	h := newHandler(t)
	rec := doJSON(t, h, http.MethodPost, "/api/process",
		map[string]string{"text": "Book a ticket to MG Road"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var got processBody
	decodeBody(t, rec, &got)
	if got.Intent != "book_ticket" {
		t.Fatalf("intent = %q, want book_ticket", got.Intent)
	}
	if got.Booking != nil {
		t.Errorf("booking = %+v, want nil with origin missing", got.Booking)
	}
}

func TestProcessRejectsEmptyText(t *testing.T) {
	t.Parallel()

	h := newHandler(t)
	if rec := doJSON(t, h, http.MethodPost, "/api/process", map[string]string{"text": "  "}); rec.Code != http.StatusBadRequest {
		t.Errorf("empty text: status = %d, want 400", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodPost, "/api/process",
		map[string]string{"text": "hello", "language": "fr"}); rec.Code != http.StatusBadRequest {
		t.Errorf("unsupported language: status = %d, want 400", rec.Code)
	}
}

func TestProcessLLMRecoversUnknownIntent(t *testing.T) {
	t.Parallel()

	classifier, err := llmintent.New(
		&llmmock.Provider{Response: "INTENT_FARE_INQUIRY"},
		&embmock.Provider{EmbedResult: []float32{0.1, 0.2, 0.3, 0.4}, DimensionsValue: 4},
		ragstore.NewMemoryStore(),
	)
	if err != nil {
		t.Fatalf("New classifier: %v", err)
	}

	h := newHandler(t, server.WithClassifier(classifier))
	rec := doJSON(t, h, http.MethodPost, "/api/process",
		map[string]string{"text": "zzz qqq unintelligible"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var got processBody
	decodeBody(t, rec, &got)
	if got.Intent != "fare_inquiry" {
		t.Fatalf("intent = %q, want fare_inquiry from the LLM path", got.Intent)
	}
	if got.Confidence != llmintent.Confidence {
		t.Errorf("confidence = %v, want %v", got.Confidence, llmintent.Confidence)
	}
}

func TestStations(t *testing.T) {
	t.Parallel()

	h := newHandler(t)
	rec := doJSON(t, h, http.MethodGet, "/api/stations", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got struct {
		Stations []string `json:"stations"`
		Count    int      `json:"count"`
	}
	decodeBody(t, rec, &got)
	if got.Count == 0 || len(got.Stations) != got.Count {
		t.Fatalf("count = %d with %d stations", got.Count, len(got.Stations))
	}
	found := false
	for _, s := range got.Stations {
		if s == "Majestic" {
			found = true
		}
	}
	if !found {
		t.Error("default catalog is missing Majestic")
	}
}

func TestBookingLookupAndCancel(t *testing.T) {
	t.Parallel()

	h := newHandler(t)
	rec := doJSON(t, h, http.MethodPost, "/api/process",
		map[string]string{"text": "Book a ticket from Indiranagar to Whitefield"})
	var created processBody
	decodeBody(t, rec, &created)
	if created.Booking == nil {
		t.Fatalf("no booking created: %s", rec.Body.String())
	}
	id := created.Booking.ID

	rec = doJSON(t, h, http.MethodGet, "/api/bookings/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status = %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodDelete, "/api/bookings/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel: status = %d", rec.Code)
	}
	var cancelled bookingBody
	decodeBody(t, rec, &cancelled)
	if cancelled.Status != "cancelled" {
		t.Errorf("status after cancel = %q, want cancelled", cancelled.Status)
	}

	if rec = doJSON(t, h, http.MethodGet, "/api/bookings/BM00000000", nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown id: status = %d, want 404", rec.Code)
	}
}

// tonePCM builds 16-bit PCM loud enough to pass the stream's silence gate.
func tonePCM(samples int) []byte {
	pcm := make([]byte, samples*2)
	for i := 0; i < samples; i++ {
		v := int16(8000)
		if i%2 == 1 {
			v = -8000
		}
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(v))
	}
	return pcm
}

func multipartAudio(t *testing.T, wav []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("audio", "utterance.wav")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(wav); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestTranscribe(t *testing.T) {
	t.Parallel()

	mock := &sttmock.Provider{Text: "Book a ticket from Majestic to MG Road", Language: "en-IN"}
	h := newHandler(t, server.WithSTT(mock))

	wav := audio.EncodeWAV(make([]byte, 3200), audio.DefaultSampleRate, audio.DefaultChannels)
	body, contentType := multipartAudio(t, wav)

	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var got struct {
		Transcription    string `json:"transcription"`
		DetectedLanguage string `json:"detected_language"`
		NativeScript     string `json:"native_script"`
	}
	decodeBody(t, rec, &got)
	if got.Transcription != mock.Text {
		t.Errorf("transcription = %q, want %q", got.Transcription, mock.Text)
	}
	if got.DetectedLanguage != "en" {
		t.Errorf("detected_language = %q, want en from the en-IN provider tag", got.DetectedLanguage)
	}
	if reqs := mock.Requests(); len(reqs) != 1 || !audio.IsWAV(reqs[0].Audio) {
		t.Errorf("provider saw %d requests, want 1 WAV request", len(reqs))
	}
}

func TestTranscribeErrors(t *testing.T) {
	t.Parallel()

	// No provider configured.
	h := newHandler(t)
	wav := audio.EncodeWAV(make([]byte, 320), audio.DefaultSampleRate, audio.DefaultChannels)
	body, contentType := multipartAudio(t, wav)
	req := httptest.NewRequest(http.MethodPost, "/api/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("no provider: status = %d, want 503", rec.Code)
	}

	// Missing the audio form file.
	h = newHandler(t, server.WithSTT(&sttmock.Provider{Text: "hi"}))
	var empty bytes.Buffer
	w := multipart.NewWriter(&empty)
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	req = httptest.NewRequest(http.MethodPost, "/api/transcribe", &empty)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing file: status = %d, want 400", rec.Code)
	}
}

func TestHealthAndMetricsRoutes(t *testing.T) {
	t.Parallel()

	h := newHandler(t)
	if rec := doJSON(t, h, http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
		t.Errorf("healthz: status = %d, want 200", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodGet, "/metrics", nil); rec.Code != http.StatusOK {
		t.Errorf("metrics: status = %d, want 200", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodGet, "/api/process", nil); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /api/process: status = %d, want 405", rec.Code)
	}
}

func TestStreamTranscribe(t *testing.T) {
	t.Parallel()

	mock := &sttmock.Provider{Text: "Book a ticket from Majestic to MG Road", Language: "en"}
	ts := httptest.NewServer(newHandler(t, server.WithSTT(mock)))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/transcribe"
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	if err := conn.Write(ctx, websocket.MessageBinary, tonePCM(1600)); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, []byte(`{"type":"flush"}`)); err != nil {
		t.Fatalf("write flush: %v", err)
	}

	typ, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read reply: %v", err)
	}
	if typ != websocket.MessageText {
		t.Fatalf("reply type = %v, want text", typ)
	}
	var reply struct {
		Transcription string      `json:"transcription"`
		Result        processBody `json:"result"`
	}
	if err := json.Unmarshal(data, &reply); err != nil {
		t.Fatalf("decode reply %q: %v", data, err)
	}
	if reply.Transcription != mock.Text {
		t.Errorf("transcription = %q, want %q", reply.Transcription, mock.Text)
	}
	if reply.Result.Intent != "book_ticket" {
		t.Errorf("intent = %q, want book_ticket", reply.Result.Intent)
	}
	if reqs := mock.Requests(); len(reqs) != 1 || !audio.IsWAV(reqs[0].Audio) {
		t.Errorf("provider saw %d requests, want 1 WAV-wrapped request", len(reqs))
	}
}

func TestStreamSilentBufferSkipped(t *testing.T) {
	t.Parallel()

	mock := &sttmock.Provider{Text: "should never be reached"}
	ts := httptest.NewServer(newHandler(t, server.WithSTT(mock)))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws/transcribe", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	// All-zero PCM is far below the silence floor.
	if err := conn.Write(ctx, websocket.MessageBinary, make([]byte, 3200)); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, []byte(`{"type":"flush"}`)); err != nil {
		t.Fatalf("write flush: %v", err)
	}
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read reply: %v", err)
	}
	var reply struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &reply); err != nil {
		t.Fatalf("decode reply %q: %v", data, err)
	}
	if !strings.Contains(reply.Error, "no speech") {
		t.Errorf("error = %q, want a no-speech report", reply.Error)
	}
	if reqs := mock.Requests(); len(reqs) != 0 {
		t.Errorf("provider saw %d requests, want 0 for a silent buffer", len(reqs))
	}
}

func TestStreamFlushWithoutAudio(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(newHandler(t, server.WithSTT(&sttmock.Provider{Text: "hi"})))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws/transcribe", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	if err := conn.Write(ctx, websocket.MessageText, []byte("flush")); err != nil {
		t.Fatalf("write flush: %v", err)
	}
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read reply: %v", err)
	}
	var reply struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &reply); err != nil {
		t.Fatalf("decode reply %q: %v", data, err)
	}
	if reply.Error == "" {
		t.Error("flush with empty buffer should report an error")
	}
}

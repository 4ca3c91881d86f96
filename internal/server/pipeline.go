package server

import (
	"context"
	"errors"
	"time"

	"github.com/vaanilabs/vaani/internal/booking"
	"github.com/vaanilabs/vaani/internal/nlu"
	"github.com/vaanilabs/vaani/internal/nlu/llmintent"
	"github.com/vaanilabs/vaani/internal/observe"
)

// processResponse is the JSON body returned by /api/process and the
// websocket stream: the classification result plus any booking side effect.
type processResponse struct {
	nlu.Result

	// Booking is set when the request created, cancelled, or looked up a
	// booking.
	Booking *booking.Booking `json:"booking,omitempty"`

	// BookingError explains why a referenced booking could not be acted on.
	BookingError string `json:"booking_error,omitempty"`
}

// process runs the full text pipeline: rule cascade, optional LLM intent
// recovery, and booking side effects for the actionable intents.
func (s *Server) process(ctx context.Context, text string, lang nlu.Language) processResponse {
	log := observe.Logger(ctx)

	start := time.Now()
	res := s.processor.Process(text, lang)
	s.metrics.NLUDuration.Record(ctx, time.Since(start).Seconds())

	source := "rules"
	if res.Intent == nlu.IntentUnknown && s.classifier != nil {
		llmStart := time.Now()
		intent, err := s.classifier.Classify(ctx, text)
		s.metrics.LLMDuration.Record(ctx, time.Since(llmStart).Seconds())

		if err != nil {
			// Keep the rule-based unknown; the LLM path is best-effort.
			log.Debug("llm intent recovery declined", "error", err)
		} else {
			res.Intent = intent
			res.Confidence = llmintent.Confidence
			res.Message = ""
			source = "llm"
		}
	}
	s.metrics.RecordIntent(ctx, string(res.Intent), string(res.Language), source)

	return s.applyBooking(ctx, res)
}

// applyBooking performs the booking side effect the classified intent calls
// for. Intents without complete entities pass through unchanged; the caller
// is expected to ask the user for the missing pieces.
func (s *Server) applyBooking(ctx context.Context, res nlu.Result) processResponse {
	out := processResponse{Result: res}
	log := observe.Logger(ctx)

	switch res.Intent {
	case nlu.IntentBookTicket:
		if res.FromStation == "" || res.ToStation == "" {
			return out
		}
		qty := res.Quantity
		if qty == 0 {
			qty = 1
		}
		b, err := s.bookings.Create(ctx, res.FromStation, res.ToStation, qty)
		if err != nil {
			log.Error("booking creation failed", "error", err)
			out.BookingError = err.Error()
			return out
		}
		s.metrics.BookingsCreated.Add(ctx, 1)
		out.Booking = &b

	case nlu.IntentCancelTicket:
		if res.BookingID == "" {
			return out
		}
		b, err := s.bookings.Cancel(ctx, res.BookingID)
		if err != nil {
			if errors.Is(err, booking.ErrNotFound) {
				out.BookingError = "booking " + res.BookingID + " not found"
			} else {
				out.BookingError = err.Error()
			}
			return out
		}
		out.Booking = &b

	case nlu.IntentBookingStatus:
		if res.BookingID == "" {
			return out
		}
		b, err := s.bookings.Get(ctx, res.BookingID)
		if err != nil {
			if errors.Is(err, booking.ErrNotFound) {
				out.BookingError = "booking " + res.BookingID + " not found"
			} else {
				out.BookingError = err.Error()
			}
			return out
		}
		out.Booking = &b
	}

	return out
}

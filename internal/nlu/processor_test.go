package nlu_test

import (
	"testing"

	"github.com/vaanilabs/vaani/internal/catalog"
	"github.com/vaanilabs/vaani/internal/nlu"
)

func newProcessor(t *testing.T) *nlu.Processor {
	t.Helper()
	return nlu.NewProcessor(catalog.Default())
}

func TestProcessBookTicketEnglish(t *testing.T) {
	t.Parallel()

	p := newProcessor(t)
	res := p.Process("Book a ticket from Majestic to MG Road", "")

	if res.Intent != nlu.IntentBookTicket {
		t.Fatalf("intent = %s, want book_ticket", res.Intent)
	}
	if res.Language != nlu.LangEnglish {
		t.Errorf("language = %s, want en", res.Language)
	}
	if res.FromStation != "Majestic" || res.ToStation != "MG Road" {
		t.Errorf("route = %q -> %q, want Majestic -> MG Road", res.FromStation, res.ToStation)
	}
	if res.Confidence != 0.9 {
		t.Errorf("confidence = %v, want 0.9 with both stations resolved", res.Confidence)
	}
	if res.Quantity != 1 {
		t.Errorf("quantity = %d, want default 1", res.Quantity)
	}
	if res.Entities[nlu.EntityFromStation] != "Majestic" {
		t.Errorf("entities[from_station] = %v, want Majestic", res.Entities[nlu.EntityFromStation])
	}
}

func TestProcessBookTicketHindi(t *testing.T) {
	t.Parallel()

	p := newProcessor(t)
	res := p.Process("मैजेस्टिक से एमजी रोड तक टिकट बुक करें", "")

	if res.Language != nlu.LangHindi {
		t.Errorf("language = %s, want hi", res.Language)
	}
	if res.Intent != nlu.IntentBookTicket {
		t.Fatalf("intent = %s, want book_ticket", res.Intent)
	}
	if res.FromStation != "Majestic" || res.ToStation != "MG Road" {
		t.Errorf("route = %q -> %q, want Majestic -> MG Road", res.FromStation, res.ToStation)
	}
}

func TestProcessBookTicketMixedScript(t *testing.T) {
	t.Parallel()

	// Speakers mix scripts freely: native station names around a roman
	// connective must still hit the cross-language "A to B" patterns.
	p := newProcessor(t)
	res := p.Process("मैजेस्टिक to एमजी रोड", "")

	if res.Intent != nlu.IntentBookTicket {
		t.Fatalf("intent = %s, want book_ticket", res.Intent)
	}
	if res.FromStation != "Majestic" || res.ToStation != "MG Road" {
		t.Errorf("route = %q -> %q, want Majestic -> MG Road", res.FromStation, res.ToStation)
	}
}

func TestProcessDefaultLanguageOption(t *testing.T) {
	t.Parallel()

	p := nlu.NewProcessor(catalog.Default(), nlu.WithDefaultLanguage(nlu.LangTamil))
	res := p.Process("xqzv wfpb", "")

	if res.Language != nlu.LangTamil {
		t.Errorf("language = %s, want the configured ta default for signal-free text", res.Language)
	}
}

func TestProcessCancelBeatsBooking(t *testing.T) {
	t.Parallel()

	p := newProcessor(t)
	res := p.Process("Cancel my ticket booking", "")

	if res.Intent != nlu.IntentCancelTicket {
		t.Fatalf("intent = %s, want cancel_ticket (cancel outranks booking)", res.Intent)
	}
	if res.Confidence != 0.9 {
		t.Errorf("confidence = %v, want 0.9", res.Confidence)
	}
}

func TestProcessFareInquiry(t *testing.T) {
	t.Parallel()

	p := newProcessor(t)
	res := p.Process("How much from Indiranagar to Whitefield?", "")

	if res.Intent != nlu.IntentFareInquiry {
		t.Fatalf("intent = %s, want fare_inquiry", res.Intent)
	}
	if res.Confidence != 0.95 {
		t.Errorf("confidence = %v, want 0.95 with both stations resolved", res.Confidence)
	}
	if res.FromStation != "Indiranagar" || res.ToStation != "Whitefield" {
		t.Errorf("route = %q -> %q, want Indiranagar -> Whitefield", res.FromStation, res.ToStation)
	}
}

func TestProcessFareInquirySingleStation(t *testing.T) {
	t.Parallel()

	p := newProcessor(t)
	res := p.Process("What is the fare to Jayanagar", "")

	if res.Intent != nlu.IntentFareInquiry {
		t.Fatalf("intent = %s, want fare_inquiry", res.Intent)
	}
	if res.Confidence != 0.9 {
		t.Errorf("confidence = %v, want base 0.9 with one station", res.Confidence)
	}
	if res.Entities[nlu.EntityStation] != "Jayanagar" {
		t.Errorf("entities[station] = %v, want Jayanagar", res.Entities[nlu.EntityStation])
	}
	if res.FromStation != "" || res.ToStation != "" {
		t.Errorf("route fields set with one station: %q -> %q", res.FromStation, res.ToStation)
	}
}

func TestProcessBookingStatusWithID(t *testing.T) {
	t.Parallel()

	p := newProcessor(t)
	res := p.Process("What is the status of my booking BM1A2B3C4D", "")

	if res.Intent != nlu.IntentBookingStatus {
		t.Fatalf("intent = %s, want booking_status", res.Intent)
	}
	if res.BookingID != "BM1A2B3C4D" {
		t.Errorf("booking id = %q, want BM1A2B3C4D", res.BookingID)
	}
}

func TestProcessBookTicketSingleStation(t *testing.T) {
	t.Parallel()

	p := newProcessor(t)
	res := p.Process("I need a ticket to Koramangala", "")

	if res.Intent != nlu.IntentBookTicket {
		t.Fatalf("intent = %s, want book_ticket", res.Intent)
	}
	if res.Confidence != 0.6 {
		t.Errorf("confidence = %v, want 0.6 with only one station", res.Confidence)
	}
	if res.Entities[nlu.EntityStation] != "Koramangala" {
		t.Errorf("entities[station] = %v, want Koramangala", res.Entities[nlu.EntityStation])
	}
}

func TestProcessUnknown(t *testing.T) {
	t.Parallel()

	p := newProcessor(t)
	res := p.Process("the weather is lovely today", "")

	if res.Intent != nlu.IntentUnknown {
		t.Fatalf("intent = %s, want unknown", res.Intent)
	}
	if res.Confidence != 0.1 {
		t.Errorf("confidence = %v, want 0.1", res.Confidence)
	}
	if res.Message == "" {
		t.Error("unknown result has no explanatory message")
	}
}

func TestProcessEmptyInput(t *testing.T) {
	t.Parallel()

	p := newProcessor(t)
	res := p.Process("", "")

	if res.Intent != nlu.IntentUnknown {
		t.Fatalf("intent = %s, want unknown for empty input", res.Intent)
	}
	if res.Language != nlu.LangEnglish {
		t.Errorf("language = %s, want en default", res.Language)
	}
}

func TestProcessExplicitLanguageSkipsDetection(t *testing.T) {
	t.Parallel()

	p := newProcessor(t)
	res := p.Process("Book a ticket from Majestic to MG Road", nlu.LangTamil)

	if res.Language != nlu.LangTamil {
		t.Errorf("language = %s, want caller-provided ta", res.Language)
	}
}

func TestProcessMarathiBooking(t *testing.T) {
	t.Parallel()

	p := newProcessor(t)
	res := p.Process("मेजेस्टिक पासून जयनगर पर्यंत तिकीट बुक करा", "")

	if res.Language != nlu.LangMarathi {
		t.Errorf("language = %s, want mr", res.Language)
	}
	if res.Intent != nlu.IntentBookTicket {
		t.Fatalf("intent = %s, want book_ticket", res.Intent)
	}
	if res.FromStation != "Majestic" || res.ToStation != "Jayanagar" {
		t.Errorf("route = %q -> %q, want Majestic -> Jayanagar", res.FromStation, res.ToStation)
	}
}

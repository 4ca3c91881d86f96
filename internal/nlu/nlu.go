// Package nlu is the rule-based language core: it detects which of the six
// supported languages an utterance is written in, normalizes the text, walks
// a priority-ordered intent cascade and extracts booking entities (stations,
// ticket quantity, booking IDs).
//
// Everything in this package is synchronous and pure over its inputs plus
// static tables loaded at construction, so a single [Processor] is safe for
// concurrent use without locking.
package nlu

import "fmt"

// Language identifies one of the supported languages by ISO 639-1 code.
type Language string

// Supported languages.
const (
	LangEnglish Language = "en"
	LangHindi   Language = "hi"
	LangMarathi Language = "mr"
	LangKannada Language = "kn"
	LangTamil   Language = "ta"
	LangTelugu  Language = "te"
)

// Languages lists all supported languages. The order is significant: it is
// the tie-break order for romanized vocabulary scoring in [DetectLanguage].
var Languages = []Language{LangHindi, LangMarathi, LangKannada, LangTamil, LangTelugu, LangEnglish}

// ParseLanguage validates a language code from config or an API request.
func ParseLanguage(code string) (Language, error) {
	for _, l := range Languages {
		if string(l) == code {
			return l, nil
		}
	}
	return "", fmt.Errorf("nlu: unsupported language code %q", code)
}

// Intent is the classified purpose of an utterance.
type Intent string

// Intents, in cascade priority order (highest first). book_ticket is matched
// last because its patterns are the broadest; unknown is the no-match result.
const (
	IntentCancelTicket   Intent = "cancel_ticket"
	IntentFareInquiry    Intent = "fare_inquiry"
	IntentRouteInquiry   Intent = "route_inquiry"
	IntentBookingStatus  Intent = "booking_status"
	IntentGeneralInquiry Intent = "general_inquiry"
	IntentBookTicket     Intent = "book_ticket"
	IntentUnknown        Intent = "unknown"
)

// Entity keys used in [Result.Entities].
const (
	EntityFromStation = "from_station"
	EntityToStation   = "to_station"
	EntityStation     = "station"
	EntityStations    = "stations"
	EntityQuantity    = "quantity"
	EntityBookingID   = "booking_id"
)

// Result is the outcome of processing one utterance. It is created fresh per
// call and never mutated after return.
//
// FromStation, ToStation, Quantity and BookingID mirror the corresponding
// Entities values so that callers consuming the JSON form can read them
// without digging into the entity map.
type Result struct {
	Intent     Intent         `json:"intent"`
	Confidence float64        `json:"confidence"`
	Entities   map[string]any `json:"entities"`
	Language   Language       `json:"language"`
	Text       string         `json:"text"`

	// Message explains a failed classification; set only for unknown.
	Message string `json:"message,omitempty"`

	FromStation string `json:"from_station,omitempty"`
	ToStation   string `json:"to_station,omitempty"`
	Quantity    int    `json:"quantity,omitempty"`
	BookingID   string `json:"booking_id,omitempty"`
}

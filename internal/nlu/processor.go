package nlu

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/vaanilabs/vaani/internal/catalog"
	"github.com/vaanilabs/vaani/internal/nlu/stationmatch"
)

// fallbackMessage is attached to every unknown result.
const fallbackMessage = "Could not understand the request. Please try again."

// bookingIDPattern recognises booking references: the canonical BM-prefixed
// form in any case, or a bare 8-12 character uppercase alphanumeric token
// (in practice a spoken digit run, since matching happens on lowercased
// text). The loose bare form deliberately stays case-sensitive so ordinary
// words cannot pass for booking IDs.
var bookingIDPattern = regexp.MustCompile(`(?i:bm[a-z0-9]{8})|[A-Z0-9]{8,12}`)

// Processor runs the full pipeline for one utterance: language detection,
// normalization, intent classification and entity extraction. Safe for
// concurrent use.
type Processor struct {
	rules       *RuleSet
	stations    *stationmatch.Matcher
	defaultLang Language
	log         *slog.Logger
}

// ProcessorOption customises a [Processor].
type ProcessorOption func(*Processor)

// WithRules replaces the compiled-in pattern set.
func WithRules(rs *RuleSet) ProcessorOption {
	return func(p *Processor) { p.rules = rs }
}

// WithStationMatcher replaces the default station matcher.
func WithStationMatcher(m *stationmatch.Matcher) ProcessorOption {
	return func(p *Processor) { p.stations = m }
}

// WithDefaultLanguage sets the language assumed when auto-detection finds
// no signal in the utterance. Defaults to English.
func WithDefaultLanguage(lang Language) ProcessorOption {
	return func(p *Processor) {
		if lang != "" {
			p.defaultLang = lang
		}
	}
}

// WithLogger sets the logger. Defaults to [slog.Default].
func WithLogger(l *slog.Logger) ProcessorOption {
	return func(p *Processor) { p.log = l }
}

// NewProcessor builds a Processor over the given station catalog.
func NewProcessor(cat *catalog.Catalog, opts ...ProcessorOption) *Processor {
	p := &Processor{
		rules:       DefaultRules(),
		stations:    stationmatch.New(cat),
		defaultLang: LangEnglish,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process classifies one utterance. An empty lang triggers language
// auto-detection. Process never panics; any failure while matching or
// extracting degrades to the unknown result.
func (p *Processor) Process(text string, lang Language) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("nlu: processing panicked, returning fallback result", "panic", r)
			res = p.fallback(text, lang)
		}
	}()

	if lang == "" {
		lang = DetectLanguageWithDefault(text, p.defaultLang)
		p.log.Debug("nlu: auto-detected language", "language", lang)
	}

	normalized := Normalize(text, lang)
	res = p.classify(normalized, lang)
	p.log.Debug("nlu: classified utterance",
		"intent", res.Intent, "confidence", res.Confidence, "language", lang)
	return res
}

// classify walks the rule cascade and runs the matched intent's entity
// handler.
func (p *Processor) classify(text string, lang Language) Result {
	res := Result{
		Intent:     IntentUnknown,
		Confidence: 0.1,
		Entities:   map[string]any{},
		Language:   lang,
		Text:       text,
	}

	cat, ok := p.rules.match(text)
	if !ok {
		res.Message = fallbackMessage
		return res
	}
	res.Intent = cat.intent
	res.Confidence = cat.confidence
	if h, ok := intentHandlers[cat.intent]; ok {
		h(p, text, &res)
	}
	return res
}

func (p *Processor) fallback(text string, lang Language) Result {
	if lang == "" {
		lang = p.defaultLang
	}
	return Result{
		Intent:     IntentUnknown,
		Confidence: 0.1,
		Entities:   map[string]any{},
		Language:   lang,
		Text:       text,
		Message:    fallbackMessage,
	}
}

// intentHandlers holds the per-intent entity extraction run after a cascade
// match. Handlers may raise or lower the confidence the cascade assigned.
var intentHandlers = map[Intent]func(*Processor, string, *Result){
	IntentCancelTicket: func(p *Processor, text string, res *Result) {
		extractBookingID(text, res)
		if stations := p.stations.Extract(text); len(stations) > 0 {
			res.Entities[EntityStations] = stations
		}
	},

	IntentFareInquiry: func(p *Processor, text string, res *Result) {
		stations := p.stations.Extract(text)
		switch {
		case len(stations) >= 2:
			setRoute(res, stations[0], stations[1])
			res.Confidence = 0.95
		case len(stations) == 1:
			res.Entities[EntityStation] = stations[0]
		}
		if qty := ExtractQuantity(text); qty > 1 {
			res.Entities[EntityQuantity] = qty
			res.Quantity = qty
		}
	},

	IntentRouteInquiry: func(p *Processor, text string, res *Result) {
		stations := p.stations.Extract(text)
		if len(stations) > 0 {
			res.Entities[EntityStations] = stations
		}
		if len(stations) >= 2 {
			setRoute(res, stations[0], stations[1])
		}
	},

	IntentBookingStatus: func(p *Processor, text string, res *Result) {
		extractBookingID(text, res)
	},

	IntentBookTicket: func(p *Processor, text string, res *Result) {
		stations := p.stations.Extract(text)
		switch {
		case len(stations) >= 2:
			setRoute(res, stations[0], stations[1])
			res.Confidence = 0.9
		case len(stations) == 1:
			res.Entities[EntityStation] = stations[0]
			res.Confidence = 0.6
		}
		qty := ExtractQuantity(text)
		res.Quantity = qty
		if qty > 1 {
			res.Entities[EntityQuantity] = qty
		}
	},
}

// setRoute records the first two extracted stations as origin and
// destination. Assignment is positional: whichever station the matcher saw
// first becomes the origin.
func setRoute(res *Result, from, to string) {
	res.Entities[EntityFromStation] = from
	res.Entities[EntityToStation] = to
	res.FromStation = from
	res.ToStation = to
}

func extractBookingID(text string, res *Result) {
	if m := bookingIDPattern.FindString(text); m != "" {
		id := strings.ToUpper(m)
		res.Entities[EntityBookingID] = id
		res.BookingID = id
	}
}

package nlu

import "strings"

// Unicode block boundaries for the supported native scripts. Devanagari is
// shared by Hindi and Marathi and needs keyword disambiguation.
const (
	devanagariLo, devanagariHi = 0x0900, 0x097F
	tamilLo, tamilHi           = 0x0B80, 0x0BFF
	teluguLo, teluguHi         = 0x0C00, 0x0C7F
	kannadaLo, kannadaHi       = 0x0C80, 0x0CFF
)

// Keyword sets used to split Devanagari text between Marathi and Hindi.
var (
	marathiDevanagariWords = []string{"पासून", "पर्यंत", "तिकीट", "किती", "मदत", "माहिती", "जाणे"}
	hindiDevanagariWords   = []string{"से", "तक", "टिकट", "कितना", "मदद", "जानकारी", "जाना"}
)

// Romanized vocabulary per language, scored by substring presence when the
// text carries no native script. Keyed in the order of [Languages] so that a
// tied score resolves to the earlier language.
var romanVocabulary = map[Language][]string{
	LangHindi:   {"se", "tak", "tikat", "kitna", "paisa", "rupya", "madad", "jankari", "jana", "karne", "chahiye", "kar", "karo"},
	LangMarathi: {"pasun", "paryant", "tikit", "kiti", "paise", "rupye", "madad", "mahiti", "jane", "karnya", "pahije", "kar", "kara"},
	LangKannada: {"ticket", "eshtu", "bele", "sahaya", "mahiti", "hogbeku", "madi"},
	LangTamil:   {"ticket", "evvalavu", "vilai", "udavi", "thakaval", "poganum", "seyya"},
	LangTelugu:  {"ticket", "enta", "dhara", "sahayam", "samacharam", "vellali", "cheya"},
	LangEnglish: {"book", "ticket", "travel", "from", "to", "station", "metro", "train", "price", "cost", "fare", "help", "information", "go", "need", "want"},
}

// romanStationNames is the last-resort signal for roman-script text: an
// utterance naming a local metro station with no other vocabulary hits is
// assumed to come from a Hindi speaker.
var romanStationNames = []string{
	"majestic", "indiranagar", "banashankari", "jayanagar",
	"whitefield", "electronic city", "mg road", "cubbon park",
}

// DetectLanguage guesses the language of text.
//
// Native script wins outright, checked in the order Kannada, Tamil, Telugu,
// Devanagari; Devanagari text is split between Marathi and Hindi by counting
// keyword hits, Hindi winning ties. Roman-script text falls back to
// vocabulary scoring across all six languages, then to station-name
// detection (Hindi), then to English.
func DetectLanguage(text string) Language {
	return DetectLanguageWithDefault(text, LangEnglish)
}

// DetectLanguageWithDefault is [DetectLanguage] with a configurable answer
// for text that carries no script, vocabulary, or station signal at all.
func DetectLanguageWithDefault(text string, def Language) Language {
	switch {
	case containsScript(text, kannadaLo, kannadaHi):
		return LangKannada
	case containsScript(text, tamilLo, tamilHi):
		return LangTamil
	case containsScript(text, teluguLo, teluguHi):
		return LangTelugu
	case containsScript(text, devanagariLo, devanagariHi):
		marathi := countContained(text, marathiDevanagariWords)
		hindi := countContained(text, hindiDevanagariWords)
		if marathi > hindi {
			return LangMarathi
		}
		return LangHindi
	}

	lower := strings.ToLower(text)

	best, bestScore := LangEnglish, 0
	for _, lang := range Languages {
		if score := countContained(lower, romanVocabulary[lang]); score > bestScore {
			best, bestScore = lang, score
		}
	}
	if bestScore > 0 {
		return best
	}

	for _, station := range romanStationNames {
		if strings.Contains(lower, station) {
			return LangHindi
		}
	}
	return def
}

// HasNativeScript reports whether text contains any character of lang's
// native script. English has no native script beyond Latin and always
// returns false.
func HasNativeScript(text string, lang Language) bool {
	switch lang {
	case LangHindi, LangMarathi:
		return containsScript(text, devanagariLo, devanagariHi)
	case LangKannada:
		return containsScript(text, kannadaLo, kannadaHi)
	case LangTamil:
		return containsScript(text, tamilLo, tamilHi)
	case LangTelugu:
		return containsScript(text, teluguLo, teluguHi)
	default:
		return false
	}
}

// containsScript reports whether any rune of text falls in [lo, hi].
func containsScript(text string, lo, hi rune) bool {
	for _, r := range text {
		if r >= lo && r <= hi {
			return true
		}
	}
	return false
}

// countContained counts how many of the given words occur as substrings of
// text. Each word counts at most once regardless of repetitions.
func countContained(text string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}

package nlu

import (
	"regexp"
	"strconv"
	"strings"
)

// maxTickets caps a single booking; anything larger is clamped.
const maxTickets = 10

var (
	digitRun = regexp.MustCompile(`\d+`)

	// Phrase forms like "for 3" or "3 passengers". Tried after bare digit
	// runs, before word numbers.
	quantityPhrases = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d+)\s+(?:people|passengers|persons|लोग|लोगों|व्यक्ति|जन)`),
		regexp.MustCompile(`(?i)for\s+(\d+)`),
		regexp.MustCompile(`(?i)(\d+)\s+(?:tickets?|टिकट|तिकीट|ಟಿಕೆಟ್|டிக்கெட்|టిక్కెట్)`),
	}
)

// numberWords maps spelled-out numbers to values across the six supported
// languages, native and roman script. Matched whole-word only.
var numberWords = map[string]int{
	// English
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,

	// Hindi (Devanagari)
	"एक": 1, "दो": 2, "तीन": 3, "चार": 4, "पांच": 5, "पाँच": 5,
	"छह": 6, "सात": 7, "आठ": 8, "नौ": 9, "दस": 10,

	// Hindi (romanized)
	"ek": 1, "do": 2, "teen": 3, "char": 4, "panch": 5, "paanch": 5,
	"chah": 6, "saat": 7, "aath": 8, "nau": 9, "das": 10,

	// Marathi (Devanagari)
	"दोन": 2, "पाच": 5, "सहा": 6, "नऊ": 9, "दहा": 10,
	"एका": 1, "दोघा": 2, "तिघा": 3, "चौघा": 4, "पाचजण": 5,

	// Marathi (romanized)
	"don": 2, "saha": 6, "daha": 10,
	"doghi": 2, "tighi": 3, "choghi": 4, "pachjan": 5,

	// Kannada
	"ಒಂದು": 1, "ಎರಡು": 2, "ಮೂರು": 3, "ನಾಲ್ಕು": 4, "ಐದು": 5,
	"ಆರು": 6, "ಏಳು": 7, "ಎಂಟು": 8, "ಒಂಬತ್ತು": 9, "ಹತ್ತು": 10,

	// Tamil
	"ஒன்று": 1, "இரண்டு": 2, "மூன்று": 3, "நான்கு": 4, "ஐந்து": 5,
	"ஆறு": 6, "ஏழு": 7, "எட்டு": 8, "ஒன்பது": 9, "பத்து": 10,

	// Telugu
	"ఒకటి": 1, "రెండు": 2, "మూడు": 3, "నాలుగు": 4, "ఐదు": 5,
	"ఆరు": 6, "ఏడు": 7, "ఎనిమిది": 8, "తొమ్మిది": 9, "పది": 10,
}

// ExtractQuantity pulls a ticket count out of text.
//
// Precedence: the first run of digits anywhere in the text, then quantity
// phrases, then spelled-out number words. Digit results are capped at
// maxTickets. With no quantity signal at all the answer is 1 ticket.
func ExtractQuantity(text string) int {
	if m := digitRun.FindString(text); m != "" {
		n, err := strconv.Atoi(m)
		if err != nil {
			// A digit run too long for int still exceeds the cap.
			return maxTickets
		}
		return min(n, maxTickets)
	}

	for _, re := range quantityPhrases {
		if m := re.FindStringSubmatch(text); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				return min(n, maxTickets)
			}
		}
	}

	for _, word := range strings.Fields(strings.ToLower(text)) {
		if n, ok := numberWords[word]; ok {
			return n
		}
	}
	return 1
}

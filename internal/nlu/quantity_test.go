package nlu_test

import (
	"testing"

	"github.com/vaanilabs/vaani/internal/nlu"
)

func TestExtractQuantity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want int
	}{
		{"digit", "Book 3 tickets from Majestic to MG Road", 3},
		{"first digit run wins", "2 tickets for 5 people", 2},
		{"digit capped at ten", "book 25 tickets", 10},
		{"overflowing digit run capped at ten", "book 99999999999999999999999 tickets", 10},
		{"english word", "book two tickets", 2},
		{"hindi word devanagari", "दो टिकट बुक करो", 2},
		{"hindi word romanized", "do tikat book karo", 2},
		{"kannada word", "ಎರಡು ಟಿಕೆಟ್", 2},
		{"tamil word", "மூன்று டிக்கெட்", 3},
		{"default one", "book a ticket to MG Road", 1},
		{"empty default one", "", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := nlu.ExtractQuantity(tt.text); got != tt.want {
				t.Errorf("ExtractQuantity(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

package nlu_test

import (
	"strings"
	"testing"

	"github.com/vaanilabs/vaani/internal/nlu"
)

func TestDefaultRules(t *testing.T) {
	t.Parallel()

	if nlu.DefaultRules() == nil {
		t.Fatal("DefaultRules() returned nil")
	}
}

func TestParseRulesMissingIntent(t *testing.T) {
	t.Parallel()

	_, err := nlu.ParseRules([]byte(`
intents:
  - intent: cancel_ticket
    patterns:
      en: ['cancel']
`))
	if err == nil {
		t.Fatal("ParseRules() with missing intents: got nil error")
	}
	if !strings.Contains(err.Error(), "missing intent") {
		t.Errorf("error %q does not mention the missing intent", err)
	}
}

func TestParseRulesBadPattern(t *testing.T) {
	t.Parallel()

	yaml := `
intents:
  - intent: cancel_ticket
    patterns: {en: ['cancel(']}
  - intent: fare_inquiry
    patterns: {en: ['fare']}
  - intent: route_inquiry
    patterns: {en: ['route']}
  - intent: booking_status
    patterns: {en: ['status']}
  - intent: general_inquiry
    patterns: {en: ['help']}
  - intent: book_ticket
    patterns: {en: ['book']}
`
	_, err := nlu.ParseRules([]byte(yaml))
	if err == nil {
		t.Fatal("ParseRules() with unbalanced regex: got nil error")
	}
}

func TestParseRulesRejectsUnknownKeys(t *testing.T) {
	t.Parallel()

	_, err := nlu.ParseRules([]byte("intents: []\nextras: true\n"))
	if err == nil {
		t.Fatal("ParseRules() with unknown top-level key: got nil error")
	}
}

package nlu

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"regexp"
	"sync"

	"gopkg.in/yaml.v3"
)

// categoryOrder fixes the cascade: intents are tried top to bottom and the
// first whose patterns match wins. The broad book_ticket patterns go last so
// that "cancel my ticket" never classifies as a booking. Base confidences
// are policy constants, not configuration; handlers may adjust them based on
// extracted entities.
var categoryOrder = []struct {
	intent     Intent
	confidence float64
}{
	{IntentCancelTicket, 0.9},
	{IntentFareInquiry, 0.9},
	{IntentRouteInquiry, 0.85},
	{IntentBookingStatus, 0.85},
	{IntentGeneralInquiry, 0.85},
	{IntentBookTicket, 0.8},
}

// RuleSet is a compiled, priority-ordered set of intent match patterns.
// Immutable after construction and safe for concurrent use.
type RuleSet struct {
	categories []category
}

type category struct {
	intent     Intent
	confidence float64
	patterns   []*regexp.Regexp
}

// rulesFile is the YAML shape of a pattern file. Patterns are grouped per
// language key purely for readability; matching flattens the groups.
type rulesFile struct {
	Intents []struct {
		Intent   string              `yaml:"intent"`
		Patterns map[string][]string `yaml:"patterns"`
	} `yaml:"intents"`
}

//go:embed rules.yaml
var defaultRulesYAML []byte

var (
	defaultRulesOnce sync.Once
	defaultRules     *RuleSet
)

// DefaultRules returns the compiled-in pattern set. The embedded file is
// compiled once; a malformed embedded file is a build defect and panics.
func DefaultRules() *RuleSet {
	defaultRulesOnce.Do(func() {
		rs, err := ParseRules(defaultRulesYAML)
		if err != nil {
			panic(fmt.Sprintf("nlu: embedded rules.yaml is invalid: %v", err))
		}
		defaultRules = rs
	})
	return defaultRules
}

// LoadRules reads and compiles a pattern YAML file from disk.
func LoadRules(path string) (*RuleSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("nlu: open rules %q: %w", path, err)
	}
	defer f.Close()

	rs, err := LoadRulesFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("nlu: parse rules %q: %w", path, err)
	}
	return rs, nil
}

// LoadRulesFromReader parses and compiles pattern YAML from an [io.Reader].
func LoadRulesFromReader(r io.Reader) (*RuleSet, error) {
	var rf rulesFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&rf); err != nil {
		return nil, fmt.Errorf("nlu: decode rules yaml: %w", err)
	}

	byIntent := make(map[Intent]map[string][]string, len(rf.Intents))
	for _, entry := range rf.Intents {
		byIntent[Intent(entry.Intent)] = entry.Patterns
	}

	rs := &RuleSet{categories: make([]category, 0, len(categoryOrder))}
	for _, co := range categoryOrder {
		groups, ok := byIntent[co.intent]
		if !ok {
			return nil, fmt.Errorf("nlu: rules file missing intent %q", co.intent)
		}
		cat := category{intent: co.intent, confidence: co.confidence}
		for _, patterns := range groups {
			for _, p := range patterns {
				re, err := regexp.Compile("(?i)" + p)
				if err != nil {
					return nil, fmt.Errorf("nlu: intent %s: compile pattern %q: %w", co.intent, p, err)
				}
				cat.patterns = append(cat.patterns, re)
			}
		}
		if len(cat.patterns) == 0 {
			return nil, fmt.Errorf("nlu: intent %s has no patterns", co.intent)
		}
		rs.categories = append(rs.categories, cat)
	}
	return rs, nil
}

// ParseRules parses and compiles pattern YAML from a byte slice.
func ParseRules(data []byte) (*RuleSet, error) {
	return LoadRulesFromReader(bytes.NewReader(data))
}

// match walks the cascade in priority order and returns the first category
// with any matching pattern.
func (rs *RuleSet) match(text string) (category, bool) {
	for _, cat := range rs.categories {
		for _, re := range cat.patterns {
			if re.MatchString(text) {
				return cat, true
			}
		}
	}
	return category{}, false
}

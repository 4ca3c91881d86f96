// Package stationmatch extracts metro station names from free text.
//
// Matching runs in three strictly ordered passes over the utterance: exact
// canonical-name substrings, then alias and transliteration hits, then fuzzy
// matching of individual tokens against canonical names. Later passes never
// re-add a station an earlier pass already found, and within a pass hits are
// ordered by their position in the text so that "from A to B" yields A
// before B.
package stationmatch

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/antzucaro/matchr"

	"github.com/vaanilabs/vaani/internal/catalog"
)

// defaultCutoff is the minimum Jaro-Winkler similarity for a fuzzy hit.
const defaultCutoff = 0.7

// minFuzzyRunes guards the fuzzy pass against short function words; tokens
// of four runes or fewer are never fuzzy-matched.
const minFuzzyRunes = 5

// defaultStopWords are frequent utterance words that must never fuzzy-match
// a station name ("travel" is one edit away from several localities).
var defaultStopWords = []string{
	"help", "information", "metro", "ticket", "tickets", "book", "booking",
	"travel", "station", "stations", "status", "cancel",
	"jankari", "chahiye", "karo", "kara", "lagega", "paisa", "se", "tak",
}

// Matcher finds station names in text. Immutable after construction and
// safe for concurrent use.
type Matcher struct {
	stations []string // canonical names, catalog order
	lowered  []string // parallel lowercased forms
	aliases  []catalog.Alias
	stop     map[string]struct{}
	cutoff   float64
}

// Option customises a [Matcher].
type Option func(*Matcher)

// WithCutoff overrides the fuzzy similarity cutoff.
func WithCutoff(cutoff float64) Option {
	return func(m *Matcher) { m.cutoff = cutoff }
}

// WithStopWords replaces the default fuzzy-pass stop word list.
func WithStopWords(words ...string) Option {
	return func(m *Matcher) {
		m.stop = make(map[string]struct{}, len(words))
		for _, w := range words {
			m.stop[strings.ToLower(w)] = struct{}{}
		}
	}
}

// New builds a Matcher over the given catalog.
func New(c *catalog.Catalog, opts ...Option) *Matcher {
	m := &Matcher{
		stations: c.Stations(),
		aliases:  c.Aliases(),
		cutoff:   defaultCutoff,
	}
	m.lowered = make([]string, len(m.stations))
	for i, s := range m.stations {
		m.lowered[i] = strings.ToLower(s)
	}
	WithStopWords(defaultStopWords...)(m)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type hit struct {
	station string
	pos     int
}

// Extract returns the canonical names of all stations mentioned in text, in
// first-found order with duplicates removed.
func (m *Matcher) Extract(text string) []string {
	lower := strings.ToLower(text)
	seen := make(map[string]struct{})
	var found []string

	add := func(hits []hit) {
		sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
		for _, h := range hits {
			if _, dup := seen[h.station]; dup {
				continue
			}
			seen[h.station] = struct{}{}
			found = append(found, h.station)
		}
	}

	// Pass 1: exact canonical names.
	var hits []hit
	for i, name := range m.lowered {
		if p := strings.Index(lower, name); p >= 0 {
			hits = append(hits, hit{m.stations[i], p})
		}
	}
	add(hits)

	// Pass 2: aliases and transliterations.
	hits = hits[:0]
	for _, a := range m.aliases {
		if p := strings.Index(lower, a.Alias); p >= 0 {
			hits = append(hits, hit{a.Station, p})
		}
	}
	add(hits)

	// Pass 3: fuzzy token matching for misspellings and ASR noise.
	hits = hits[:0]
	for pos, word := range strings.Fields(lower) {
		if utf8.RuneCountInString(word) < minFuzzyRunes {
			continue
		}
		if _, skip := m.stop[word]; skip {
			continue
		}
		if station, ok := m.closest(word); ok {
			hits = append(hits, hit{station, pos})
		}
	}
	add(hits)

	return found
}

// closest returns the canonical station most similar to word, if any clears
// the cutoff. Candidates less than half or more than double the token's
// length are excluded up front: Jaro-Winkler rewards shared prefixes even
// when the rest of a long name has nothing in common with the token.
func (m *Matcher) closest(word string) (string, bool) {
	best, bestScore := "", 0.0
	for i, name := range m.lowered {
		if len(name) > 2*len(word) || len(word) > 2*len(name) {
			continue
		}
		if score := matchr.JaroWinkler(word, name, false); score >= m.cutoff && score > bestScore {
			best, bestScore = m.stations[i], score
		}
	}
	return best, best != ""
}

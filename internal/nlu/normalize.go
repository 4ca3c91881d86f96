package nlu

import (
	"regexp"
	"strings"
)

var (
	basicPunct  = regexp.MustCompile(`[.,!?;:]`)
	nonWordLike = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	manySpaces  = regexp.MustCompile(`\s+`)
)

// Normalize lowercases text and strips punctuation for matching.
//
// For the Indian languages only basic punctuation is removed so that native
// script characters and combining marks survive untouched. For English
// everything outside letters, digits, underscore, whitespace and hyphen is
// dropped. Runs of whitespace collapse to a single space. Normalize is
// idempotent.
func Normalize(text string, lang Language) string {
	text = strings.ToLower(strings.TrimSpace(text))
	switch lang {
	case LangHindi, LangMarathi, LangKannada, LangTamil, LangTelugu:
		text = basicPunct.ReplaceAllString(text, " ")
	default:
		text = nonWordLike.ReplaceAllString(text, " ")
	}
	return strings.TrimSpace(manySpaces.ReplaceAllString(text, " "))
}

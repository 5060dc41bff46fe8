// Package textnorm turns raw article text into the normalized token stream
// every enrichment model consumes.
package textnorm

import (
	"context"
	"regexp"
	"strings"

	"veritascope/internal/inference"
)

var (
	urlPattern   = regexp.MustCompile(`https?://\S+|www\.\S+`)
	digitPattern = regexp.MustCompile(`\d+`)
	punctPattern = regexp.MustCompile(`[^\p{L}\s]`)
)

// Domain-specific stop list on top of the generic English stop words:
// publisher names, weekday names and generic news vocabulary that would
// otherwise dominate every topic.
var domainStopWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"say", "us", "news", "report", "government", "new",
		"trump", "people", "white", "house", "country", "donald", "united",
		"time", "week", "day", "today", "monday", "tuesday", "wednesday",
		"thursday", "friday", "saturday", "sunday", "year", "night", "oct", "season",
		"bbc", "cbs", "bloombergcom", "politico", "nbc", "company", "npr",
		"administration", "minister", "state", "party", "case", "president", "official", "states",
		"washington", "york", "point", "space", "south", "street", "way", "city", "los", "angeles", "china",
	} {
		domainStopWords[w] = struct{}{}
	}
}

// Normalizer cleans raw text into token streams. With a nil inference
// client it runs the plain pipeline only; with one, ContentWords restricts
// output to lemmatized noun/proper-noun tokens.
type Normalizer struct {
	inference *inference.Client
}

// New creates a Normalizer. The inference client may be nil.
func New(client *inference.Client) *Normalizer {
	return &Normalizer{inference: client}
}

// Clean strips URLs, punctuation and digits and lowercases the text.
func Clean(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = urlPattern.ReplaceAllString(text, "")
	text = punctPattern.ReplaceAllString(text, "")
	text = digitPattern.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}

// Tokenize runs the plain pipeline: clean, split, drop stop words and
// tokens shorter than three characters. Empty input yields an empty slice,
// never an error.
func (n *Normalizer) Tokenize(text string) []string {
	cleaned := Clean(text)
	if cleaned == "" {
		return []string{}
	}

	tokens := []string{}
	for _, word := range strings.Fields(cleaned) {
		if len(word) <= 2 {
			continue
		}
		if IsStopWord(word) {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

// ContentWords returns lemmatized noun and proper-noun tokens using the
// inference service's token analysis. Falls back to the plain pipeline when
// no client is configured or the service is unavailable; it never errors.
func (n *Normalizer) ContentWords(ctx context.Context, text string) []string {
	cleaned := Clean(text)
	if cleaned == "" {
		return []string{}
	}
	if n.inference == nil {
		return n.Tokenize(text)
	}

	analyzed, err := n.inference.Tokens(ctx, cleaned)
	if err != nil {
		return n.Tokenize(text)
	}

	tokens := []string{}
	for _, tok := range analyzed {
		lemma := strings.ToLower(strings.TrimSpace(tok.Lemma))
		if len(lemma) <= 2 {
			continue
		}
		if tok.POS != "NOUN" && tok.POS != "PROPN" {
			continue
		}
		if IsStopWord(lemma) {
			continue
		}
		tokens = append(tokens, lemma)
	}
	return tokens
}

// IsStopWord reports whether the word is in the English stop list or the
// domain stop list.
func IsStopWord(word string) bool {
	if _, ok := englishStopWords[word]; ok {
		return true
	}
	_, ok := domainStopWords[word]
	return ok
}

// Package textnorm implements the deterministic text-cleaning pipeline applied
// to source documents before chunking and to questions before cache lookup.
//
// The stages run in a fixed order: lowercase, strip HTML markup, strip URLs,
// Unicode NFKD, lowercase again, tokenize, drop punctuation tokens, drop
// stopwords, lemmatize, drop stopwords again, rejoin. Markup stripping must
// precede NFKD (entity decoding can emit composed characters), NFKD can emit
// capitals (modifier letters decompose to plain capitals) so lowercasing
// repeats after it, and a lemma can land on a stopword so the stopword filter
// repeats after lemmatization. Normalize is idempotent.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

var urlPattern = regexp.MustCompile(`(?m)(https?://\S+|www\.\S+)`)

// Normalize runs the full cleaning pipeline over text. It is a total
// function: malformed markup or encoding is handled best-effort, never an
// error.
func Normalize(text string) string {
	text = strings.ToLower(text)
	text = StripHTML(text)
	text = StripURLs(text)
	text = norm.NFKD.String(text)
	text = strings.ToLower(text)

	tokens := Tokenize(text)
	tokens = dropPunctuation(tokens)
	tokens = dropStopwords(tokens)
	for i, tok := range tokens {
		tokens[i] = Lemma(tok)
	}
	tokens = dropStopwords(tokens)
	return strings.Join(tokens, " ")
}

// StripHTML returns the text content of markup, dropping tags. Plain text
// without markup passes through unchanged apart from entity decoding.
func StripHTML(text string) string {
	if !strings.ContainsRune(text, '<') {
		return text
	}

	var b strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(text))
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			// io.EOF or malformed input ends the walk either way
			break
		}
		if tt == html.TextToken {
			b.Write(tokenizer.Text())
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// StripURLs removes URL-like substrings.
func StripURLs(text string) string {
	return urlPattern.ReplaceAllString(text, "")
}

// Tokenize splits text into word tokens, breaking off leading and trailing
// punctuation so it can be filtered as its own token.
func Tokenize(text string) []string {
	var tokens []string
	for _, field := range strings.Fields(text) {
		tokens = append(tokens, splitEdgePunct(field)...)
	}
	return tokens
}

func splitEdgePunct(field string) []string {
	runes := []rune(field)
	start, end := 0, len(runes)
	for start < end && isPunct(runes[start]) {
		start++
	}
	for end > start && isPunct(runes[end-1]) {
		end--
	}

	var parts []string
	for _, r := range runes[:start] {
		parts = append(parts, string(r))
	}
	if start < end {
		parts = append(parts, string(runes[start:end]))
	}
	for _, r := range runes[end:] {
		parts = append(parts, string(r))
	}
	return parts
}

func isPunct(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

func dropPunctuation(tokens []string) []string {
	kept := tokens[:0]
	for _, tok := range tokens {
		if !isAllPunct(tok) {
			kept = append(kept, tok)
		}
	}
	return kept
}

func isAllPunct(tok string) bool {
	for _, r := range tok {
		if !isPunct(r) {
			return false
		}
	}
	return len(tok) > 0
}

func dropStopwords(tokens []string) []string {
	kept := tokens[:0]
	for _, tok := range tokens {
		if !stopwords[tok] {
			kept = append(kept, tok)
		}
	}
	return kept
}

// Lemma reduces a token to a base form using noun-style suffix rules. At most
// one rule fires and no rule's output matches another rule, so Lemma is
// idempotent.
func Lemma(tok string) string {
	tok = strings.TrimSuffix(tok, "'s")
	tok = strings.TrimSuffix(tok, "’s")

	switch {
	case len(tok) > 4 && strings.HasSuffix(tok, "ies"):
		return tok[:len(tok)-3] + "y"
	case len(tok) > 3 && strings.HasSuffix(tok, "es") && hasSibilantStem(tok[:len(tok)-2]):
		return tok[:len(tok)-2]
	case len(tok) > 3 && strings.HasSuffix(tok, "s") &&
		!strings.HasSuffix(tok, "ss") && !strings.HasSuffix(tok, "us") && !strings.HasSuffix(tok, "is"):
		return tok[:len(tok)-1]
	}
	return tok
}

func hasSibilantStem(stem string) bool {
	return strings.HasSuffix(stem, "s") || strings.HasSuffix(stem, "x") ||
		strings.HasSuffix(stem, "z") || strings.HasSuffix(stem, "ch") ||
		strings.HasSuffix(stem, "sh")
}

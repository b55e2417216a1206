// Package chunker splits document text into bounded-size segments that fit a
// downstream model's context window.
package chunker

import (
	"regexp"
	"strings"
)

// TokenCounter reports how many tokens the downstream model sees in s. The
// provider's tokenizer is not available locally, so callers usually pass
// WordCount as an approximation.
type TokenCounter func(s string) int

// WordCount counts whitespace-delimited words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// A sentence ends at a run of terminators followed by whitespace or the end
// of the text. Terminators inside a word (decimals, versions, abbreviations
// like "3.5" or "v1.2") do not split.
var sentenceEnd = regexp.MustCompile(`[.!?]+(\s+|$)`)

// Chunker accumulates sentences into chunks of at most maxTokens tokens.
type Chunker struct {
	maxTokens int
	count     TokenCounter
}

func New(maxTokens int, count TokenCounter) *Chunker {
	if maxTokens <= 0 {
		maxTokens = 500
	}
	if count == nil {
		count = WordCount
	}
	return &Chunker{maxTokens: maxTokens, count: count}
}

// Chunk splits text at sentence boundaries, flushing the running buffer
// whenever the next sentence would push it past maxTokens. A single sentence
// that is itself over the limit falls back to fixed-size word windows; those
// windows are sized by word count, not re-counted as tokens, so they can
// overshoot when the counter is not word-based.
//
// Every chunk is non-empty, and the chunks' words concatenated in order
// reproduce the input's word sequence.
func (c *Chunker) Chunk(text string) []string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	var buf strings.Builder

	flush := func() {
		if buf.Len() > 0 {
			chunks = append(chunks, buf.String())
			buf.Reset()
		}
	}

	for _, sentence := range sentences {
		if c.count(sentence) > c.maxTokens {
			flush()
			chunks = append(chunks, c.hardSplit(sentence)...)
			continue
		}

		if buf.Len() > 0 && c.count(buf.String()+" "+sentence) > c.maxTokens {
			flush()
		}
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(sentence)
	}
	flush()

	return chunks
}

// hardSplit cuts an oversize sentence into windows of maxTokens words each.
func (c *Chunker) hardSplit(sentence string) []string {
	words := strings.Fields(sentence)

	var windows []string
	for start := 0; start < len(words); start += c.maxTokens {
		end := start + c.maxTokens
		if end > len(words) {
			end = len(words)
		}
		windows = append(windows, strings.Join(words[start:end], " "))
	}
	return windows
}

// splitSentences returns the trimmed sentences of text, including any
// trailing run with no terminal punctuation. The slices partition the input,
// so no word is ever dropped or split.
func splitSentences(text string) []string {
	var sentences []string
	last := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[last:loc[1]]); s != "" {
			sentences = append(sentences, s)
		}
		last = loc[1]
	}
	if tail := strings.TrimSpace(text[last:]); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

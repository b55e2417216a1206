package chunker

import (
	"strings"
	"testing"
)

func TestChunk_RespectsTokenBound(t *testing.T) {
	c := New(8, WordCount)
	text := "The slayer is a melee class. Awakening unlocks at level fifty. " +
		"Epic weapons drop in hell mode dungeons. Fatigue points reset every day at six."

	chunks := c.Chunk(text)
	if len(chunks) < 2 {
		t.Fatalf("chunks got %d, want at least 2", len(chunks))
	}
	for i, chunk := range chunks {
		if chunk == "" {
			t.Errorf("chunk %d is empty", i)
		}
		if n := WordCount(chunk); n > 8 {
			t.Errorf("chunk %d has %d words, want <= 8: %q", i, n, chunk)
		}
	}
}

func TestChunk_PreservesWordSequence(t *testing.T) {
	texts := []string{
		"One two three. Four five six seven! Eight nine? Ten eleven twelve thirteen fourteen fifteen.",
		// Terminators inside words must not split them.
		"The potion costs 3.5 gold at the shop. Patch v1.2 changed drop rates, e.g. for epics.",
	}

	c := New(5, WordCount)
	for _, text := range texts {
		chunks := c.Chunk(text)

		var got []string
		for _, chunk := range chunks {
			got = append(got, strings.Fields(chunk)...)
		}
		want := strings.Fields(text)
		if len(got) != len(want) {
			t.Fatalf("word count got %d, want %d for %q (chunks %v)", len(got), len(want), text, chunks)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("word %d got %q, want %q for %q", i, got[i], want[i], text)
			}
		}
	}
}

func TestChunk_OversizeSentenceHardSplits(t *testing.T) {
	c := New(3, WordCount)
	chunks := c.Chunk("one two three four five six seven eight.")

	if len(chunks) != 3 {
		t.Fatalf("chunks got %d, want 3: %v", len(chunks), chunks)
	}
	for i, chunk := range chunks {
		if n := WordCount(chunk); n > 3 {
			t.Errorf("chunk %d has %d words, want <= 3", i, n)
		}
	}
}

func TestChunk_TailWithoutTerminator(t *testing.T) {
	c := New(10, WordCount)
	chunks := c.Chunk("A full sentence here. And a trailing fragment with no period")

	joined := strings.Join(chunks, " ")
	if !strings.Contains(joined, "trailing fragment") {
		t.Errorf("tail was dropped: %v", chunks)
	}
}

func TestChunk_EmptyInput(t *testing.T) {
	c := New(10, WordCount)
	if chunks := c.Chunk(""); chunks != nil {
		t.Errorf("chunks got %v, want nil", chunks)
	}
	if chunks := c.Chunk("   \n  "); chunks != nil {
		t.Errorf("chunks got %v, want nil", chunks)
	}
}

func TestNew_Defaults(t *testing.T) {
	c := New(0, nil)
	if c.maxTokens != 500 {
		t.Errorf("maxTokens got %d, want 500", c.maxTokens)
	}
	if c.count == nil {
		t.Error("count is nil")
	}
}

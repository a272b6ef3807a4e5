package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sentences(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("Sentence number %d talks about proofing dough overnight.", i)
	}
	return strings.Join(parts, " ")
}

func numberedWords(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(words, " ")
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("abcd"))
	assert.Equal(t, 2, EstimateTokens("abcde"))
	assert.Equal(t, 100, EstimateTokens(strings.Repeat("a", 400)))
}

func TestChunk_ShortInput(t *testing.T) {
	c := New(DefaultOptions())

	assert.Empty(t, c.Chunk(""))
	assert.Empty(t, c.Chunk("   "))
	assert.Empty(t, c.Chunk("Too short to be worth embedding."))
}

func TestChunk_SingleSmallText(t *testing.T) {
	c := New(DefaultOptions())
	text := "This text is long enough to chunk but it is still a single piece."

	chunks := c.Chunk(text)

	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0].Text)
	assert.Equal(t, 0, chunks[0].Index)
}

func TestChunk_Sentences(t *testing.T) {
	c := New(DefaultOptions())
	text := sentences(60)

	chunks := c.Chunk(text)

	require.Greater(t, len(chunks), 1)
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		assert.Equal(t, i, ch.Index)
		assert.LessOrEqual(t, len(ch.Text), DefaultMaxChunkChars)
		assert.Greater(t, len(ch.Text), DefaultMinChunkChars)
		assert.True(t, strings.HasSuffix(ch.Text, "."), "chunk should end on a sentence boundary")
		texts[i] = ch.Text
	}
	assert.Equal(t, text, strings.Join(texts, " "))
}

func TestChunk_RespectsTargetSize(t *testing.T) {
	c := New(Options{MaxTokens: 50})
	chunks := c.Chunk(sentences(20))

	require.Greater(t, len(chunks), 1)
	for _, ch := range chunks[:len(chunks)-1] {
		// a chunk may overshoot the 160 char target by at most one sentence
		assert.LessOrEqual(t, len(ch.Text), 160+60)
	}
}

func TestChunk_ParagraphFallback(t *testing.T) {
	c := New(DefaultOptions())
	para := strings.Repeat("words without any terminal punctuation ", 20)
	text := para + "\n\n" + para + "\n\n" + para

	chunks := c.Chunk(text)

	require.NotEmpty(t, chunks)
	total := 0
	for _, ch := range chunks {
		total += len(strings.Fields(ch.Text))
	}
	assert.Equal(t, len(strings.Fields(text)), total)
}

func TestChunk_WordWindowFallback(t *testing.T) {
	c := New(DefaultOptions())
	text := numberedWords(1500)

	chunks := c.Chunk(text)

	require.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		prev := strings.Fields(chunks[i-1].Text)
		first := strings.Fields(chunks[i].Text)[0]
		assert.Contains(t, prev, first, "window %d should overlap the previous one", i)
	}

	last := strings.Fields(chunks[len(chunks)-1].Text)
	assert.Equal(t, "w1499", last[len(last)-1])
}

func TestChunk_OversizedSentenceIsWindowed(t *testing.T) {
	c := New(DefaultOptions())
	long := numberedWords(800) + "."
	text := "A short opener sentence here. " + long + " And a closing sentence."

	chunks := c.Chunk(text)

	require.Greater(t, len(chunks), 1)
	for _, ch := range chunks {
		assert.LessOrEqual(t, len(ch.Text), DefaultMaxChunkChars)
	}
}

func TestChunk_Deterministic(t *testing.T) {
	c := New(DefaultOptions())
	text := sentences(40)

	assert.Equal(t, c.Chunk(text), c.Chunk(text))
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"basic", "One. Two! Three?", []string{"One.", "Two!", "Three?"}},
		{"closing quote", `He said "stop." Then left.`, []string{`He said "stop."`, "Then left."}},
		{"decimal", "It costs 3.50 today. Cheap.", []string{"It costs 3.50 today.", "Cheap."}},
		{"no terminal", "no punctuation at all", []string{"no punctuation at all"}},
		{"ellipsis", "Wait... what?", []string{"Wait...", "what?"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitSentences(tt.in))
		})
	}
}

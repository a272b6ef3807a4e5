// Package chunker splits cleaned transcript text into bounded, embeddable chunks.
package chunker

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/killallgit/persona-api/internal/models"
)

const (
	DefaultMaxTokens     = 400
	DefaultMinChunkChars = 100
	DefaultMaxChunkChars = 2500
	DefaultMinInputChars = 50

	// targetRatio is the share of the token budget a chunk is filled to
	targetRatio = 0.8
	// charsPerToken is the divisor used by EstimateTokens
	charsPerToken = 4
	// windowOverlap is the fraction of words repeated between word windows
	windowOverlap = 0.1
	// minUsableSentence is the shortest unit counted as a real sentence
	minUsableSentence = 3
)

var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// Options bounds chunk sizes
type Options struct {
	MaxTokens     int
	MinChunkChars int
	MaxChunkChars int
	MinInputChars int
}

// DefaultOptions returns the standard chunking bounds
func DefaultOptions() Options {
	return Options{
		MaxTokens:     DefaultMaxTokens,
		MinChunkChars: DefaultMinChunkChars,
		MaxChunkChars: DefaultMaxChunkChars,
		MinInputChars: DefaultMinInputChars,
	}
}

// Chunker is stateless and safe for concurrent use
type Chunker struct {
	opts Options
}

// New creates a Chunker, filling unset options with defaults
func New(opts Options) *Chunker {
	d := DefaultOptions()
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = d.MaxTokens
	}
	if opts.MinChunkChars <= 0 {
		opts.MinChunkChars = d.MinChunkChars
	}
	if opts.MaxChunkChars <= 0 {
		opts.MaxChunkChars = d.MaxChunkChars
	}
	if opts.MinInputChars <= 0 {
		opts.MinInputChars = d.MinInputChars
	}
	return &Chunker{opts: opts}
}

// EstimateTokens approximates a token count as ceil(chars/4). It is not a
// tokenizer call; real counts vary by model and language.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + charsPerToken - 1) / charsPerToken
}

// targetChars is the fill level at which a chunk is closed
func (c *Chunker) targetChars() int {
	return int(float64(c.opts.MaxTokens*charsPerToken) * targetRatio)
}

func (c *Chunker) targetTokens() int {
	return int(float64(c.opts.MaxTokens) * targetRatio)
}

// Chunk splits text into ordered chunks. Input shorter than MinInputChars
// yields nil. The result is deterministic for identical input.
func (c *Chunker) Chunk(text string) []models.Chunk {
	text = strings.TrimSpace(text)
	if charLen(text) < c.opts.MinInputChars {
		return nil
	}

	var pieces []string
	if units := splitSentences(text); countUsable(units) >= 2 {
		pieces = c.accumulate(units)
	} else if units := splitParagraphs(text); countUsable(units) >= 2 {
		pieces = c.accumulate(units)
	} else {
		pieces = c.wordWindows(text)
	}

	chunks := make([]models.Chunk, 0, len(pieces))
	for i, p := range pieces {
		chunks = append(chunks, models.Chunk{Text: p, Index: i})
	}
	return chunks
}

// accumulate packs units into chunks up to the target size
func (c *Chunker) accumulate(units []string) []string {
	target := c.targetChars()

	// Units longer than the target are broken into word windows first
	var prepared []string
	for _, u := range units {
		if charLen(u) > target {
			prepared = append(prepared, c.wordWindows(u)...)
			continue
		}
		prepared = append(prepared, u)
	}

	var chunks []string
	var current strings.Builder

	for _, unit := range prepared {
		if current.Len() == 0 {
			current.WriteString(unit)
			continue
		}

		candidate := current.String() + " " + unit
		tooBig := EstimateTokens(candidate) > c.targetTokens() ||
			charLen(candidate) > c.opts.MaxChunkChars
		if tooBig && charLen(current.String()) > c.opts.MinChunkChars {
			chunks = append(chunks, current.String())
			current.Reset()
			current.WriteString(unit)
			continue
		}

		current.WriteString(" ")
		current.WriteString(unit)
	}

	return c.appendTail(chunks, current.String())
}

// appendTail keeps a short trailing piece by merging it into the previous
// chunk when that stays under the ceiling
func (c *Chunker) appendTail(chunks []string, tail string) []string {
	tail = strings.TrimSpace(tail)
	if tail == "" {
		return chunks
	}
	if charLen(tail) > c.opts.MinChunkChars || len(chunks) == 0 {
		return append(chunks, tail)
	}
	last := chunks[len(chunks)-1]
	if charLen(last)+1+charLen(tail) <= c.opts.MaxChunkChars {
		chunks[len(chunks)-1] = last + " " + tail
		return chunks
	}
	return append(chunks, tail)
}

// wordWindows splits text into target-sized windows of whole words, each
// repeating about 10% of the previous window's words
func (c *Chunker) wordWindows(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	target := c.targetChars()

	var windows []string
	start := 0
	for start < len(words) {
		end := start
		size := 0
		for end < len(words) {
			next := charLen(words[end])
			if end > start {
				next++
			}
			if size+next > target && end > start {
				break
			}
			size += next
			end++
		}

		windows = append(windows, strings.Join(words[start:end], " "))
		if end >= len(words) {
			break
		}

		overlap := int(float64(end-start) * windowOverlap)
		if overlap < 1 {
			overlap = 1
		}
		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}

	if len(windows) > 1 && charLen(windows[len(windows)-1]) <= c.opts.MinChunkChars {
		tail := windows[len(windows)-1]
		windows = windows[:len(windows)-1]
		return c.appendTail(windows, tail)
	}
	return windows
}

// splitSentences cuts after ., ! or ? (plus any closing quotes or brackets)
// when followed by whitespace or the end of text
func splitSentences(text string) []string {
	runes := []rune(text)
	var out []string
	start := 0

	for i := 0; i < len(runes); i++ {
		if !isTerminal(runes[i]) {
			continue
		}
		end := i + 1
		for end < len(runes) && (isTerminal(runes[end]) || isCloser(runes[end])) {
			end++
		}
		if end < len(runes) && !unicode.IsSpace(runes[end]) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start:end])); s != "" {
			out = append(out, s)
		}
		start = end
		i = end - 1
	}

	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		out = append(out, s)
	}
	return out
}

func splitParagraphs(text string) []string {
	var out []string
	for _, p := range paragraphBreak.Split(text, -1) {
		if p = strings.Join(strings.Fields(p), " "); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func countUsable(units []string) int {
	n := 0
	for _, u := range units {
		if charLen(u) >= minUsableSentence {
			n++
		}
	}
	return n
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isCloser(r rune) bool {
	return r == '"' || r == '\'' || r == ')' || r == ']' || r == '”' || r == '’'
}

func charLen(s string) int {
	return utf8.RuneCountInString(s)
}

// Package aligner maps chunk text back to subtitle timestamps.
package aligner

import (
	"math"
	"regexp"
	"strings"

	"github.com/killallgit/persona-api/internal/models"
	"github.com/killallgit/persona-api/pkg/transcript"
)

const (
	// fingerprintTokens is how many tokens a fingerprint keeps
	fingerprintTokens = 20
	// matchPrefixChars is the fingerprint prefix compared between texts
	matchPrefixChars = 50
	// minTokenLen drops short tokens like "a", "to", "um"
	minTokenLen = 3
	// minFingerprintChars keeps one-word segments from matching everything
	minFingerprintChars = 8
)

var (
	timestampRegex = regexp.MustCompile(`\d{1,2}:\d{2}(?::\d{2})?(?:[.,]\d+)?`)
	digitRegex     = regexp.MustCompile(`\d+`)
)

// Alignment is the time span assigned to a chunk, in whole seconds
type Alignment struct {
	Start   int  `json:"start"`
	End     int  `json:"end"`
	Matched bool `json:"matched"`
}

// Fingerprint normalizes text for approximate matching: lower-cased,
// timestamps and digits removed, tokens of two characters or fewer dropped,
// first 20 tokens kept.
func Fingerprint(text string) string {
	text = strings.ToLower(text)
	text = timestampRegex.ReplaceAllString(text, " ")
	text = digitRegex.ReplaceAllString(text, " ")

	tokens := make([]string, 0, fingerprintTokens)
	for _, tok := range strings.Fields(text) {
		if len([]rune(tok)) < minTokenLen {
			continue
		}
		tokens = append(tokens, tok)
		if len(tokens) == fingerprintTokens {
			break
		}
	}
	return strings.Join(tokens, " ")
}

// Align assigns a time span to one chunk. The first segment, in order, whose
// fingerprint shares a 50 character prefix with the chunk's wins. Without a
// match the chunk is placed proportionally by index across the transcript.
func Align(chunkText string, segments []transcript.Segment, chunkIndex, totalChunks int) Alignment {
	return newIndex(segments).align(chunkText, chunkIndex, totalChunks)
}

// AlignAll returns copies of chunks with StartSeconds and EndSeconds set.
// Chunks are left without times when there are no segments.
func AlignAll(chunks []models.Chunk, segments []transcript.Segment) []models.Chunk {
	out := make([]models.Chunk, len(chunks))
	copy(out, chunks)
	if len(segments) == 0 {
		return out
	}

	idx := newIndex(segments)
	for i := range out {
		a := idx.align(out[i].Text, i, len(out))
		start, end := a.Start, a.End
		out[i].StartSeconds = &start
		out[i].EndSeconds = &end
	}
	return out
}

// segmentIndex caches segment fingerprints across the chunks of one video
type segmentIndex struct {
	segments     []transcript.Segment
	fingerprints []string
}

func newIndex(segments []transcript.Segment) *segmentIndex {
	fps := make([]string, len(segments))
	for i, s := range segments {
		fps[i] = Fingerprint(transcript.Clean(s.Text))
	}
	return &segmentIndex{segments: segments, fingerprints: fps}
}

func (x *segmentIndex) align(chunkText string, chunkIndex, totalChunks int) Alignment {
	if len(x.segments) == 0 {
		return Alignment{}
	}

	chunkFP := Fingerprint(chunkText)
	if len(chunkFP) >= minFingerprintChars {
		for i, segFP := range x.fingerprints {
			if len(segFP) < minFingerprintChars {
				continue
			}
			if matches(chunkFP, segFP) {
				seg := x.segments[i]
				return Alignment{Start: seg.StartSeconds(), End: seg.EndSeconds(), Matched: true}
			}
		}
	}

	return x.proportional(chunkIndex, totalChunks)
}

func (x *segmentIndex) proportional(chunkIndex, totalChunks int) Alignment {
	if totalChunks <= 0 {
		totalChunks = 1
	}
	total := x.segments[len(x.segments)-1].End.Seconds()
	start := math.Floor(float64(chunkIndex) / float64(totalChunks) * total)
	end := math.Floor(float64(chunkIndex+1) / float64(totalChunks) * total)
	return Alignment{Start: int(start), End: int(end)}
}

// matches reports whether the first 50 characters of either fingerprint
// occur in the other
func matches(a, b string) bool {
	return strings.Contains(b, prefix(a)) || strings.Contains(a, prefix(b))
}

func prefix(s string) string {
	r := []rune(s)
	if len(r) > matchPrefixChars {
		return string(r[:matchPrefixChars])
	}
	return s
}

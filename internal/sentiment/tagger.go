// Package sentiment scores chunk text for emotional intensity. The result is
// metadata only; it never gates storage or retrieval.
package sentiment

import (
	"math"
	"strings"
	"unicode"

	"github.com/killallgit/persona-api/internal/models"
)

const (
	intensityScale      = 2.0
	highlightIntensity  = 0.3
	highlightExclaims   = 2
	highlightScoreFloor = 3
)

// Tag scores text against the lexicon.
//
// Comparative is score per token, intensity is min(|comparative|*2, 1), and
// a chunk is a highlight candidate when intensity exceeds 0.3, it carries at
// least two exclamations, or it scores above 3 with at least one exclamation.
func Tag(text string) models.Sentiment {
	tokens := tokenize(text)

	score := 0
	for i, tok := range tokens {
		v, ok := lexicon[tok]
		if !ok {
			continue
		}
		if i > 0 && negators[tokens[i-1]] {
			v = -v
		}
		score += v
	}

	var comparative float64
	if len(tokens) > 0 {
		comparative = float64(score) / float64(len(tokens))
	}

	result := models.Sentiment{
		Score:              score,
		Comparative:        comparative,
		ExclamationCount:   strings.Count(text, "!"),
		QuestionCount:      strings.Count(text, "?"),
		EmotionalIntensity: math.Min(math.Abs(comparative)*intensityScale, 1),
	}
	result.IsHighlightCandidate = result.EmotionalIntensity > highlightIntensity ||
		result.ExclamationCount >= highlightExclaims ||
		(result.Score > highlightScoreFloor && result.ExclamationCount >= 1)

	return result
}

// TagChunks fills in the sentiment of each chunk in place
func TagChunks(chunks []models.Chunk) {
	for i := range chunks {
		chunks[i].Sentiment = Tag(chunks[i].Text)
	}
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
}

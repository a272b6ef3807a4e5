package search

import (
	"sort"
	"strings"

	"github.com/killallgit/persona-api/internal/models"
)

const dedupPrefixChars = 100

// Weights scale each source's score and the literal-overlap boost
type Weights struct {
	Semantic float64
	Keyword  float64
	Overlap  float64
}

type candidate struct {
	result   models.SearchResult
	semantic float64
	keyword  float64
	order    int
}

// FuseAndRank merges semantic and keyword candidates into one ranked list.
// Candidates whose first 100 characters match are the same result; one found
// by both halves becomes a hybrid result carrying both weighted scores. Each
// score is then multiplied by (1 + overlap boost × number of query words
// literally present). Ties keep input order, semantic candidates first.
func FuseAndRank(query string, semantic, keyword []models.ScoredText, limit int, w Weights) []models.SearchResult {
	byKey := map[string]*candidate{}
	var ordered []*candidate

	add := func(st models.ScoredText, source models.SearchSource) {
		key := dedupKey(st.Text)
		if c, ok := byKey[key]; ok {
			if c.result.Source != source {
				c.result.Source = models.SourceHybrid
			}
			switch source {
			case models.SourceSemantic:
				c.semantic = max(c.semantic, st.Score)
			case models.SourceKeyword:
				c.keyword = max(c.keyword, st.Score)
			}
			c.result.Metadata = mergeMetadata(c.result.Metadata, st.Metadata)
			return
		}

		c := &candidate{
			result: models.SearchResult{
				Text:     st.Text,
				Source:   source,
				Metadata: mergeMetadata(nil, st.Metadata),
			},
			order: len(ordered),
		}
		if source == models.SourceSemantic {
			c.semantic = st.Score
		} else {
			c.keyword = st.Score
		}
		byKey[key] = c
		ordered = append(ordered, c)
	}

	for _, st := range semantic {
		add(st, models.SourceSemantic)
	}
	for _, st := range keyword {
		add(st, models.SourceKeyword)
	}

	words := queryWords(query)
	for _, c := range ordered {
		base := c.semantic*w.Semantic + c.keyword*w.Keyword
		c.result.Score = base * (1 + w.Overlap*float64(overlapCount(c.result.Text, words)))
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].result.Score > ordered[j].result.Score
	})

	if limit > 0 && len(ordered) > limit {
		ordered = ordered[:limit]
	}
	results := make([]models.SearchResult, len(ordered))
	for i, c := range ordered {
		results[i] = c.result
	}
	return results
}

// overlapCount counts query words present in text, case-insensitively
func overlapCount(text string, words []string) int {
	lower := strings.ToLower(text)
	n := 0
	for _, w := range words {
		if strings.Contains(lower, w) {
			n++
		}
	}
	return n
}

func dedupKey(text string) string {
	r := []rune(text)
	if len(r) > dedupPrefixChars {
		r = r[:dedupPrefixChars]
	}
	return string(r)
}

func mergeMetadata(dst, src map[string]interface{}) map[string]interface{} {
	if dst == nil {
		dst = make(map[string]interface{}, len(src))
	}
	for k, v := range src {
		if _, exists := dst[k]; !exists {
			dst[k] = v
		}
	}
	return dst
}

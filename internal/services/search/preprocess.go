package search

import (
	"sort"
	"strings"
	"unicode"
)

const maxKeywords = 5

var fillerWords = map[string]bool{
	"um": true, "uh": true, "umm": true, "uhh": true, "er": true, "erm": true, "hmm": true,
	"like": true, "basically": true, "actually": true, "literally": true, "just": true,
	"really": true, "kinda": true, "sorta": true, "please": true, "pls": true,
}

var fillerPhrases = []string{"you know", "i mean", "sort of", "kind of", "tell me about", "can you"}

var abbreviations = map[string]string{
	"ai":   "artificial intelligence",
	"ml":   "machine learning",
	"llm":  "large language model",
	"yt":   "youtube",
	"vid":  "video",
	"vids": "videos",
	"diy":  "do it yourself",
	"faq":  "frequently asked questions",
	"fav":  "favorite",
	"fave": "favorite",
	"rec":  "recommendation",
	"recs": "recommendations",
	"tbh":  "to be honest",
	"imo":  "in my opinion",
	"imho": "in my opinion",
	"btw":  "by the way",
	"ig":   "instagram",
	"pc":   "computer",
	"w/":   "with",
	"w/o":  "without",
}

var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true, "not": true, "you": true,
	"all": true, "any": true, "can": true, "had": true, "her": true, "was": true, "one": true,
	"our": true, "out": true, "has": true, "him": true, "his": true, "how": true, "its": true,
	"who": true, "did": true, "does": true, "what": true, "when": true, "where": true, "why": true,
	"with": true, "this": true, "that": true, "from": true, "they": true, "them": true, "have": true,
	"your": true, "about": true, "would": true, "there": true, "their": true, "which": true,
	"will": true, "been": true, "into": true, "than": true, "then": true, "some": true, "more": true,
}

// Query is a search query after preprocessing
type Query struct {
	Raw      string
	Semantic string
	Keyword  string
	Keywords []string
}

// Preprocess strips filler, expands abbreviations and extracts the most
// frequent keywords. With raw set, both halves use the query as typed.
func Preprocess(raw string, useRaw bool) Query {
	raw = strings.TrimSpace(raw)
	if useRaw {
		return Query{Raw: raw, Semantic: raw, Keyword: raw, Keywords: queryWords(raw)}
	}

	var words []string
	for _, word := range strings.Fields(strings.ToLower(raw)) {
		trimmed := strings.TrimFunc(word, func(r rune) bool {
			return unicode.IsPunct(r) && r != '/'
		})
		if trimmed != "" {
			words = append(words, trimmed)
		}
	}
	text := " " + strings.Join(words, " ") + " "
	for _, phrase := range fillerPhrases {
		text = strings.ReplaceAll(text, " "+phrase+" ", " ")
	}

	var expanded []string
	for _, word := range strings.Fields(text) {
		if fillerWords[word] {
			continue
		}
		if full, ok := abbreviations[word]; ok {
			expanded = append(expanded, full)
			continue
		}
		expanded = append(expanded, word)
	}

	semantic := strings.Join(expanded, " ")
	if semantic == "" {
		semantic = raw
	}
	keywords := extractKeywords(semantic, maxKeywords)
	keyword := strings.Join(keywords, " ")
	if keyword == "" {
		keyword = semantic
	}

	return Query{Raw: raw, Semantic: semantic, Keyword: keyword, Keywords: keywords}
}

// extractKeywords returns up to n non-stopword terms ordered by frequency,
// then by first appearance
func extractKeywords(text string, n int) []string {
	counts := map[string]int{}
	first := map[string]int{}
	for i, word := range tokenize(text) {
		if len(word) <= 2 || stopWords[word] {
			continue
		}
		if _, seen := first[word]; !seen {
			first[word] = i
		}
		counts[word]++
	}

	if len(counts) == 0 {
		return nil
	}
	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return first[words[i]] < first[words[j]]
	})
	if len(words) > n {
		words = words[:n]
	}
	return words
}

// queryWords returns the distinct lower-cased words longer than two
// characters, in order of appearance
func queryWords(query string) []string {
	seen := map[string]bool{}
	var words []string
	for _, w := range tokenize(query) {
		if len(w) <= 2 || seen[w] {
			continue
		}
		seen[w] = true
		words = append(words, w)
	}
	return words
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	})
}

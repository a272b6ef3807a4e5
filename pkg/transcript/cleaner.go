package transcript

import (
	"regexp"
	"strings"
)

// maxRepeatedPhrase is the longest phrase, in words, checked for stutter duplication
const maxRepeatedPhrase = 8

var (
	stageDirectionRegex = regexp.MustCompile(`\[[^\]]*\]|\((?i:music|applause|laughter|laughs|inaudible|silence)[^)]*\)|[♪♫]+`)
	punctuationTrim     = ".,!?;:\"'"
)

// Clean prepares raw transcript text for chunking: bracketed stage
// directions are dropped, phrases that some caption extractors emit twice in
// a row are collapsed, and whitespace is normalized.
func Clean(text string) string {
	text = stageDirectionRegex.ReplaceAllString(text, " ")
	words := strings.Fields(text)
	words = collapseRepeats(words)
	return strings.Join(words, " ")
}

// collapseRepeats drops the second copy of any phrase of 2 to
// maxRepeatedPhrase words that immediately repeats itself. Go's regexp has
// no backreferences, so this is a token scan.
func collapseRepeats(words []string) []string {
	out := make([]string, 0, len(words))
	for i := 0; i < len(words); {
		dropped := false
		for n := min(maxRepeatedPhrase, (len(words)-i)/2); n >= 2; n-- {
			if phraseEqual(words[i:i+n], words[i+n:i+2*n]) {
				words = append(words[:i+n:i+n], words[i+2*n:]...)
				dropped = true
				break
			}
		}
		if dropped {
			continue
		}
		out = append(out, words[i])
		i++
	}
	return out
}

func phraseEqual(a, b []string) bool {
	for i := range a {
		if !strings.EqualFold(strings.Trim(a[i], punctuationTrim), strings.Trim(b[i], punctuationTrim)) {
			return false
		}
	}
	return true
}

package aligner

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/killallgit/persona-api/internal/chunker"
	"github.com/killallgit/persona-api/internal/models"
	"github.com/killallgit/persona-api/pkg/transcript"
)

func seg(start, end int, text string) transcript.Segment {
	return transcript.Segment{
		Start: time.Duration(start) * time.Second,
		End:   time.Duration(end) * time.Second,
		Text:  text,
	}
}

func TestFingerprint(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases and drops short tokens", "So We Go To The Market", "the market"},
		{"strips timestamps", "00:01:02.500 welcome back everyone", "welcome back everyone"},
		{"strips digits", "top 10 recipes for 2024", "top recipes for"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fingerprint(tt.in))
		})
	}
}

func TestFingerprint_KeepsTwentyTokens(t *testing.T) {
	text := strings.Repeat("token ", 30)
	assert.Len(t, strings.Fields(Fingerprint(text)), 20)
}

func TestAlign_NoSegments(t *testing.T) {
	got := Align("any chunk text at all", nil, 3, 10)
	assert.Equal(t, Alignment{Start: 0, End: 0, Matched: false}, got)
}

func TestAlign_FirstMatchWins(t *testing.T) {
	segments := []transcript.Segment{
		seg(0, 10, "welcome back to the kitchen everyone"),
		seg(10, 20, "today we are baking sourdough bread together"),
		seg(20, 30, "today we are baking sourdough bread together"),
	}

	got := Align("Today we are baking sourdough bread together, so grab flour.", segments, 5, 6)

	assert.True(t, got.Matched)
	assert.Equal(t, 10, got.Start)
	assert.Equal(t, 20, got.End)
}

func TestAlign_ProportionalFallback(t *testing.T) {
	segments := []transcript.Segment{
		seg(0, 30, "welcome back to the kitchen everyone"),
		seg(30, 100, "today we are baking sourdough bread together"),
	}

	got := Align("completely unrelated words about motorcycles and engines", segments, 1, 4)

	assert.False(t, got.Matched)
	assert.Equal(t, 25, got.Start)
	assert.Equal(t, 50, got.End)
}

func TestAlign_ShortSegmentsDoNotMatchEverything(t *testing.T) {
	segments := []transcript.Segment{
		seg(0, 2, "yeah ok"),
		seg(2, 60, "something else entirely about gardening tips"),
	}

	got := Align("we talk about yeah okay the market and groceries", segments, 0, 2)

	assert.False(t, got.Matched)
}

func TestAlign_ChunkWithShortFingerprintFallsBack(t *testing.T) {
	segments := []transcript.Segment{
		seg(0, 40, "so we are at it again"),
		seg(40, 80, "the market"),
	}

	tests := []struct {
		name  string
		chunk string
	}{
		{"empty fingerprint", "um so 10 to 20 ok"},
		{"below the minimum", "so yes ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Less(t, len(Fingerprint(tt.chunk)), minFingerprintChars)
			got := Align(tt.chunk, segments, 1, 2)
			assert.Equal(t, Alignment{Start: 40, End: 80, Matched: false}, got)
		})
	}
}

func TestAlign_IgnoresStageDirectionsInSegments(t *testing.T) {
	segments := []transcript.Segment{
		seg(0, 5, "[Music]"),
		seg(5, 15, "[Music] welcome back to the channel everybody"),
	}

	got := Align("Welcome back to the channel everybody, today is special.", segments, 0, 1)

	assert.True(t, got.Matched)
	assert.Equal(t, 5, got.Start)
}

func TestAlignAll_StartsAreMonotonic(t *testing.T) {
	texts := []string{
		"first we gather flour water and salt",
		"then we mix everything into shaggy dough",
		"after resting we stretch and fold gently",
		"shaping builds surface tension before proofing",
		"finally bake inside preheated dutch oven",
	}
	segments := make([]transcript.Segment, len(texts))
	chunks := make([]models.Chunk, len(texts))
	for i, text := range texts {
		segments[i] = seg(i*20, (i+1)*20, text)
		chunks[i] = models.Chunk{Text: text + ". More commentary follows here.", Index: i}
	}

	aligned := AlignAll(chunks, segments)

	require.Len(t, aligned, len(chunks))
	for i := 1; i < len(aligned); i++ {
		require.NotNil(t, aligned[i].StartSeconds)
		assert.GreaterOrEqual(t, *aligned[i].StartSeconds, *aligned[i-1].StartSeconds)
	}
	assert.Nil(t, chunks[0].StartSeconds, "input chunks are not mutated")
}

func TestAlignAll_NoSegmentsLeavesTimesUnset(t *testing.T) {
	aligned := AlignAll([]models.Chunk{{Text: "hello there"}}, nil)

	require.Len(t, aligned, 1)
	assert.Nil(t, aligned[0].StartSeconds)
	assert.Nil(t, aligned[0].EndSeconds)
}

func TestChunkAndAlignScenario(t *testing.T) {
	segments := []transcript.Segment{
		seg(0, 30, "Welcome back to the workshop where we restore vintage motorcycles."),
		seg(30, 60, "Today the carburetor needs cleaning because the idle keeps stalling."),
		seg(60, 90, "Finally we reassemble everything and take the bike for a test ride."),
	}

	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.Text)
		b.WriteString(" ")
	}
	for b.Len() < 2000 {
		b.WriteString("We keep talking about tools and patience in the garage. ")
	}
	text := b.String()[:2000]

	chunks := chunker.New(chunker.DefaultOptions()).Chunk(text)
	require.NotEmpty(t, chunks)

	aligned := AlignAll(chunks, segments)

	require.NotNil(t, aligned[0].StartSeconds)
	assert.Equal(t, 0, *aligned[0].StartSeconds)
	assert.True(t, Align(aligned[0].Text, segments, 0, len(aligned)).Matched)
}

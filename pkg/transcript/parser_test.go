package transcript

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVTT(t *testing.T) {
	vttContent := `WEBVTT
Kind: captions
Language: en

00:00:00.000 --> 00:00:03.000
Welcome back to the <c>channel</c>.

intro-2
00:00:03.000 --> 00:00:06.000 align:start position:0%
Today we're building a
sourdough starter.

01:05.500 --> 01:10.000
Let's dive into the basics.`

	parsed, err := NewParser().Parse(vttContent, FormatVTT)
	require.NoError(t, err)
	require.Len(t, parsed.Segments, 3)

	assert.Equal(t, "Welcome back to the channel.", parsed.Segments[0].Text)
	assert.Equal(t, "Today we're building a sourdough starter.", parsed.Segments[1].Text)
	assert.Equal(t, 65500*time.Millisecond, parsed.Segments[2].Start)
	assert.Equal(t, 70*time.Second, parsed.Duration)
	assert.Contains(t, parsed.ToPlainText(), "sourdough starter")
}

func TestParseSRT(t *testing.T) {
	srtContent := "1\r\n00:00:00,000 --> 00:00:03,000\r\nWelcome to the show.\r\n\r\n" +
		"2\r\n00:00:03,000 --> 00:00:06,000\r\nToday we're discussing knife sharpening.\r\n\r\n" +
		"3\r\n00:00:06,000 --> 00:00:10,000\r\nLet's dive into the basics."

	parsed, err := NewParser().Parse(srtContent, FormatSRT)
	require.NoError(t, err)
	require.Len(t, parsed.Segments, 3)

	assert.Equal(t, "Today we're discussing knife sharpening.", parsed.Segments[1].Text)
	assert.Equal(t, 3, parsed.Segments[1].StartSeconds())
	assert.Equal(t, 6, parsed.Segments[1].EndSeconds())
	assert.Equal(t, 10*time.Second, parsed.Duration)
}

func TestParseJSON_SynthesizesEndTimes(t *testing.T) {
	jsonContent := `[
		{"offset": 0, "text": "first line"},
		{"offset": 4.5, "text": "second line"},
		{"offset": 9, "text": "last line"}
	]`

	parsed, err := NewParser().Parse(jsonContent, FormatJSON)
	require.NoError(t, err)
	require.Len(t, parsed.Segments, 3)

	assert.Equal(t, 4500*time.Millisecond, parsed.Segments[0].End)
	assert.Equal(t, 9*time.Second, parsed.Segments[1].End)
	assert.Equal(t, 19*time.Second, parsed.Segments[2].End, "last segment is padded")
	assert.Equal(t, 19*time.Second, parsed.Duration)
}

func TestParseJSON_SegmentsObject(t *testing.T) {
	jsonContent := `{"segments": [{"start": 1, "duration": 2, "text": "hello"}]}`

	parsed, err := NewParser().Parse(jsonContent, FormatJSON)
	require.NoError(t, err)
	require.Len(t, parsed.Segments, 1)
	assert.Equal(t, 3*time.Second, parsed.Segments[0].End)
}

func TestParseTimedText(t *testing.T) {
	xmlContent := `<?xml version="1.0" encoding="utf-8" ?><transcript>
<text start="0.5" dur="2.1">so today we&amp;#39;re making bread</text>
<text start="2.6" dur="3">first you need flour</text>
<text start="5.6">and water</text>
</transcript>`

	parsed, err := NewParser().Parse(xmlContent, FormatTimedText)
	require.NoError(t, err)
	require.Len(t, parsed.Segments, 3)

	assert.Equal(t, "so today we're making bread", parsed.Segments[0].Text)
	assert.Equal(t, 2600*time.Millisecond, parsed.Segments[0].End)
	assert.Equal(t, 15600*time.Millisecond, parsed.Segments[2].End)
}

func TestParsePlainText(t *testing.T) {
	parsed, err := NewParser().Parse("  Welcome to the channel.\n Today we cook.  ", FormatText)
	require.NoError(t, err)

	assert.Empty(t, parsed.Segments)
	assert.Equal(t, "Welcome to the channel. Today we cook.", parsed.FullText)
	assert.Zero(t, parsed.Duration)
}

func TestParseUnsupportedFormat(t *testing.T) {
	_, err := NewParser().Parse("x", TranscriptFormat("ass"))
	assert.Error(t, err)
}

func TestDisplayTimestamp(t *testing.T) {
	tests := []struct {
		start time.Duration
		want  string
	}{
		{0, "0:00"},
		{65 * time.Second, "1:05"},
		{3*time.Hour + 2*time.Minute + 9*time.Second, "3:02:09"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Segment{Start: tt.start}.DisplayTimestamp())
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		url         string
		contentType string
		content     string
		expected    TranscriptFormat
	}{
		{"https://example.com/captions.vtt", "", "", FormatVTT},
		{"https://example.com/captions.srt", "", "", FormatSRT},
		{"https://example.com/captions.json", "", "", FormatJSON},
		{"https://example.com/captions.txt", "", "", FormatText},
		{"https://example.com/timedtext?v=abc&fmt=vtt", "", "", FormatVTT},
		{"https://example.com/captions", "text/vtt", "", FormatVTT},
		{"https://example.com/captions", "application/x-subrip", "", FormatSRT},
		{"https://example.com/captions", "text/xml; charset=UTF-8", "", FormatTimedText},
		{"https://example.com/captions", "", "WEBVTT\n\n00:00:00.000 --> 00:00:03.000", FormatVTT},
		{"https://example.com/captions", "", "<transcript><text start=\"0\">hi</text></transcript>", FormatTimedText},
		{"https://example.com/captions", "", "1\n00:00:00,000 --> 00:00:03,000", FormatSRT},
		{"https://example.com/captions", "", "[{\"text\":\"test\"}]", FormatJSON},
		{"https://example.com/captions", "", "Just plain text", FormatText},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, detectFormat(tt.url, tt.contentType, tt.content), tt.url+" "+tt.contentType)
	}
}

package transcript

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// TranscriptFormat represents the format of a transcript
type TranscriptFormat string

const (
	FormatVTT       TranscriptFormat = "vtt"
	FormatSRT       TranscriptFormat = "srt"
	FormatJSON      TranscriptFormat = "json"
	FormatTimedText TranscriptFormat = "timedtext"
	FormatText      TranscriptFormat = "text"
)

// LastSegmentPad is the end time given to a final cue that has none
const LastSegmentPad = 10 * time.Second

// Segment is a single subtitle cue. Segments are immutable once parsed.
type Segment struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// StartSeconds returns the cue start in whole seconds
func (s Segment) StartSeconds() int {
	return int(math.Floor(s.Start.Seconds()))
}

// EndSeconds returns the cue end in whole seconds
func (s Segment) EndSeconds() int {
	return int(math.Floor(s.End.Seconds()))
}

// DisplayTimestamp renders the start as m:ss, or h:mm:ss past the hour
func (s Segment) DisplayTimestamp() string {
	return FormatTimestamp(s.Start)
}

// FormatTimestamp renders d the way video players show positions
func FormatTimestamp(d time.Duration) string {
	total := int(d.Seconds())
	h, m, sec := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}

// Transcript represents a parsed transcript
type Transcript struct {
	Format   TranscriptFormat
	Segments []Segment
	FullText string
	Duration time.Duration
}

// Parser handles parsing different transcript formats
type Parser struct{}

// NewParser creates a new transcript parser
func NewParser() *Parser {
	return &Parser{}
}

var (
	// Matches both SRT (00:00:01,000) and VTT (00:01.000 or 00:00:01.000) cue timings
	cueTimingRegex = regexp.MustCompile(`((?:\d{1,2}:)?\d{2}:\d{2}[.,]\d{3})\s*-->\s*((?:\d{1,2}:)?\d{2}:\d{2}[.,]\d{3})`)
	cueIndexRegex  = regexp.MustCompile(`^\d+$`)
	markupRegex    = regexp.MustCompile(`<[^>]*>`)
)

// Parse parses transcript content based on its format
func (p *Parser) Parse(content string, format TranscriptFormat) (*Transcript, error) {
	var (
		segments []Segment
		err      error
	)

	switch format {
	case FormatVTT, FormatSRT:
		segments = parseCues(content)
	case FormatJSON:
		segments, err = parseJSON(content)
	case FormatTimedText:
		segments, err = parseTimedText(content)
	case FormatText:
		return &Transcript{Format: FormatText, FullText: collapseSpaces(content)}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	if err != nil {
		return nil, err
	}

	return build(format, segments), nil
}

// build fills synthesized end times, full text and duration
func build(format TranscriptFormat, segments []Segment) *Transcript {
	kept := segments[:0]
	for _, seg := range segments {
		if seg.Text != "" {
			kept = append(kept, seg)
		}
	}
	segments = kept

	for i := range segments {
		if segments[i].End > segments[i].Start {
			continue
		}
		if i+1 < len(segments) && segments[i+1].Start > segments[i].Start {
			segments[i].End = segments[i+1].Start
		} else {
			segments[i].End = segments[i].Start + LastSegmentPad
		}
	}

	t := &Transcript{Format: format, Segments: segments}
	texts := make([]string, 0, len(segments))
	for _, seg := range segments {
		texts = append(texts, seg.Text)
	}
	t.FullText = strings.Join(texts, " ")
	if len(segments) > 0 {
		t.Duration = segments[len(segments)-1].End
	}
	return t
}

// parseCues handles SRT and WebVTT bodies, which differ only in headers and
// the millisecond separator
func parseCues(content string) []Segment {
	var segments []Segment
	var current *Segment
	var text []string

	flush := func() {
		if current != nil && len(text) > 0 {
			current.Text = cleanCueText(strings.Join(text, " "))
			segments = append(segments, *current)
		}
		current = nil
		text = text[:0]
	}

	for _, raw := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(raw)

		switch {
		case line == "":
			flush()
		case current == nil && (strings.HasPrefix(line, "WEBVTT") || strings.HasPrefix(line, "NOTE")):
		case cueTimingRegex.MatchString(line):
			flush()
			m := cueTimingRegex.FindStringSubmatch(line)
			start, _ := parseCueTimestamp(m[1])
			end, _ := parseCueTimestamp(m[2])
			current = &Segment{Start: start, End: end}
		case current == nil && cueIndexRegex.MatchString(line):
			// SRT sequence number or VTT cue identifier
		case current != nil:
			text = append(text, line)
		}
	}
	flush()

	return segments
}

type jsonCue struct {
	Start     float64 `json:"start"`
	StartTime float64 `json:"startTime"`
	Offset    float64 `json:"offset"`
	End       float64 `json:"end"`
	EndTime   float64 `json:"endTime"`
	Duration  float64 `json:"duration"`
	Text      string  `json:"text"`
	Body      string  `json:"body"`
}

// parseJSON accepts an array of cues or an object with a "segments" array.
// Times are seconds.
func parseJSON(content string) ([]Segment, error) {
	var cues []jsonCue
	if err := json.Unmarshal([]byte(content), &cues); err != nil {
		var obj struct {
			Segments []jsonCue `json:"segments"`
		}
		if err := json.Unmarshal([]byte(content), &obj); err != nil {
			return nil, fmt.Errorf("failed to parse JSON transcript: %w", err)
		}
		cues = obj.Segments
	}

	segments := make([]Segment, 0, len(cues))
	for _, c := range cues {
		start := firstNonZero(c.Start, c.StartTime, c.Offset)
		end := firstNonZero(c.End, c.EndTime)
		if end == 0 && c.Duration > 0 {
			end = start + c.Duration
		}
		text := c.Text
		if text == "" {
			text = c.Body
		}
		segments = append(segments, Segment{
			Start: seconds(start),
			End:   seconds(end),
			Text:  cleanCueText(text),
		})
	}
	return segments, nil
}

// parseTimedText parses the XML caption track served by YouTube:
// <transcript><text start="1.2" dur="3.4">...</text></transcript>
func parseTimedText(content string) ([]Segment, error) {
	var doc struct {
		Texts []struct {
			Start string `xml:"start,attr"`
			Dur   string `xml:"dur,attr"`
			Body  string `xml:",chardata"`
		} `xml:"text"`
	}
	if err := xml.Unmarshal([]byte(content), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse timedtext transcript: %w", err)
	}

	segments := make([]Segment, 0, len(doc.Texts))
	for _, t := range doc.Texts {
		start, _ := strconv.ParseFloat(t.Start, 64)
		dur, _ := strconv.ParseFloat(t.Dur, 64)
		seg := Segment{Start: seconds(start), Text: cleanCueText(html.UnescapeString(t.Body))}
		if dur > 0 {
			seg.End = seconds(start + dur)
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

// parseCueTimestamp parses [hh:]mm:ss.mmm with either '.' or ',' before the millis
func parseCueTimestamp(ts string) (time.Duration, error) {
	ts = strings.Replace(ts, ",", ".", 1)
	parts := strings.Split(ts, ":")
	if len(parts) == 2 {
		parts = append([]string{"0"}, parts...)
	}
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid cue timestamp: %s", ts)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hours in %s: %w", ts, err)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minutes in %s: %w", ts, err)
	}
	secs, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid seconds in %s: %w", ts, err)
	}

	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		seconds(secs), nil
}

func cleanCueText(text string) string {
	return collapseSpaces(markupRegex.ReplaceAllString(text, ""))
}

func collapseSpaces(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}

func firstNonZero(vals ...float64) float64 {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}

// ToPlainText converts a transcript to plain text format
func (t *Transcript) ToPlainText() string {
	if t.FullText != "" {
		return t.FullText
	}

	texts := make([]string, 0, len(t.Segments))
	for _, segment := range t.Segments {
		texts = append(texts, segment.Text)
	}
	return strings.Join(texts, " ")
}

package ingestion

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/killallgit/persona-api/internal/models"
	"github.com/killallgit/persona-api/internal/services/videosource"
)

// eligibleVideos keeps captioned videos inside the duration band, in
// listing order
func (o *Orchestrator) eligibleVideos(videos []videosource.Video) []videosource.Video {
	var out []videosource.Video
	for _, v := range videos {
		if v.HasCaptions && o.inDurationBand(v) {
			out = append(out, v)
		}
	}
	return out
}

func (o *Orchestrator) inDurationBand(v videosource.Video) bool {
	return v.DurationMinutes >= o.opts.MinVideoMinutes && v.DurationMinutes <= o.opts.MaxVideoMinutes
}

func (o *Orchestrator) usableDescription(text string) bool {
	return utf8.RuneCountInString(text) > o.opts.MinDescriptionLen
}

// durationBand renders the band as "2-25 minutes"
func (o *Orchestrator) durationBand() string {
	return strconv.FormatFloat(o.opts.MinVideoMinutes, 'f', -1, 64) + "-" +
		strconv.FormatFloat(o.opts.MaxVideoMinutes, 'f', -1, 64) + " minutes"
}

// eligibilityError explains which conditions the channel failed so the
// caller can fix them
func (o *Orchestrator) eligibilityError(videos []videosource.Video) error {
	band := o.durationBand()

	var captioned, inBand int
	for _, v := range videos {
		if v.HasCaptions {
			captioned++
		}
		if o.inDurationBand(v) {
			inBand++
		}
	}

	var unmet []string
	if len(videos) == 0 {
		unmet = append(unmet, "the channel has no videos")
	} else {
		if captioned == 0 {
			unmet = append(unmet, fmt.Sprintf("none of the %d videos have captions", len(videos)))
		}
		if inBand == 0 {
			unmet = append(unmet, fmt.Sprintf("none of the %d videos are %s long", len(videos), band))
		}
		if captioned > 0 && inBand > 0 {
			unmet = append(unmet, fmt.Sprintf("no video both has captions and is %s long", band))
		}
	}
	unmet = append(unmet, fmt.Sprintf("no description is longer than %d characters", o.opts.MinDescriptionLen))

	msg := fmt.Sprintf("channel is not eligible for ingestion: %s. Add captions to videos that are %s long, or provide a description longer than %d characters",
		strings.Join(unmet, "; "), band, o.opts.MinDescriptionLen)
	details := fmt.Sprintf("videos=%d captioned=%d in_duration_band=%d", len(videos), captioned, inBand)

	return models.NewEligibilityError("not_eligible", msg, details)
}

package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/killallgit/persona-api/internal/aligner"
	"github.com/killallgit/persona-api/internal/models"
	"github.com/killallgit/persona-api/internal/sentiment"
	"github.com/killallgit/persona-api/internal/services/videosource"
	"github.com/killallgit/persona-api/pkg/retry"
	"github.com/killallgit/persona-api/pkg/transcript"
)

var (
	// ErrNoTranscript marks a video whose captions could not be read
	ErrNoTranscript = errors.New("no transcript available")

	// ErrTranscriptTooShort marks a transcript that produced no chunks
	ErrTranscriptTooShort = errors.New("transcript too short to chunk")
)

// ingest does the work of one job. The returned result is never nil so
// partial counts survive a failure.
func (o *Orchestrator) ingest(ctx context.Context, job *models.Job) (*models.IngestionResult, error) {
	result := &models.IngestionResult{}

	listing, err := o.source.ListChannelVideos(ctx, job.ChannelID, o.opts.MaxVideos)
	if err != nil {
		return result, listingError(ctx, job.ChannelID, err)
	}

	o.updateCreator(ctx, job, func(c *models.Creator) {
		if listing.Channel.Title != "" {
			c.Name = listing.Channel.Title
		}
		c.Description = listing.Channel.Description
	})

	eligible := o.eligibleVideos(listing.Videos)
	contexts := o.contextSources(listing.Channel, job)
	if len(eligible) == 0 && len(contexts) == 0 {
		return result, o.eligibilityError(listing.Videos)
	}

	log.Printf("[INFO] Job %s: %d of %d videos eligible, %d context descriptions",
		job.ID, len(eligible), len(listing.Videos), len(contexts))

	result.TotalVideos = len(eligible)
	o.reportProgress(ctx, job.ID, 0, len(eligible))

	for i, video := range eligible {
		n, err := o.processVideo(ctx, job.CreatorID, video)
		if err != nil {
			if ctx.Err() != nil {
				return result, fmt.Errorf("video %s: %w", video.ID, err)
			}
			result.FailedVideos++
			log.Printf("[WARN] Job %s: video %s failed (%s): %v", job.ID, video.ID, retry.Classify(err), err)
		} else {
			result.ProcessedVideos++
			result.ProcessedChunks += n
		}
		o.reportProgress(ctx, job.ID, i+1, len(eligible))
	}

	n, err := o.rebuildChannelContext(ctx, job.CreatorID, contexts)
	if err != nil {
		if ctx.Err() != nil {
			return result, fmt.Errorf("channel context: %w", err)
		}
		log.Printf("[WARN] Job %s: channel context not rebuilt: %v", job.ID, err)
	}
	result.ContextChunks = n
	result.TotalChunks = result.ProcessedChunks + result.ContextChunks

	if result.ProcessedVideos == 0 && result.ContextChunks == 0 {
		return result, models.NewSystemError("no_content",
			fmt.Sprintf("no content could be ingested: all %d eligible videos failed", result.TotalVideos),
			"", nil)
	}

	if o.opts.RequireEntitlement {
		ok, err := o.entitlements.IsEntitled(ctx, job.TeamID, job.ChannelID)
		if err != nil || !ok {
			return result, models.NewEntitlementError("not_entitled",
				"team is no longer entitled to ingest this channel", err)
		}
	}

	return result, nil
}

// listingError classifies a failure to list the channel. Deadline errors are
// passed through so the caller can report the time limit.
func listingError(ctx context.Context, channelID string, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("listing channel %s: %w", channelID, err)
	}
	if errors.Is(err, videosource.ErrChannelNotFound) || retry.Classify(err) == retry.ClassUnavailable {
		return models.NewNotFoundError("channel_not_found",
			fmt.Sprintf("channel %s could not be found or is unavailable", channelID), "", err)
	}
	return models.NewSystemError("video_source_error",
		fmt.Sprintf("listing channel %s failed: %v", channelID, err), string(retry.Classify(err)), err)
}

// processVideo turns one video's captions into stored chunks and returns
// how many were written
func (o *Orchestrator) processVideo(ctx context.Context, creatorID string, video videosource.Video) (int, error) {
	t, err := o.source.GetTranscript(ctx, video.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrNoTranscript, err)
	}
	if t == nil {
		return 0, ErrNoTranscript
	}

	chunks := o.chunker.Chunk(transcript.Clean(t.FullText))
	if len(chunks) == 0 {
		return 0, ErrTranscriptTooShort
	}
	for i := range chunks {
		chunks[i].VideoID = video.ID
	}
	chunks = aligner.AlignAll(chunks, t.Segments)
	sentiment.TagChunks(chunks)

	embedded, err := o.embed(ctx, chunks, models.ContentTypeTranscript, video.Title, video.URL)
	if err != nil {
		return 0, err
	}
	if err := o.store(ctx, creatorID, video.ID, embedded); err != nil {
		return 0, err
	}
	return len(embedded), nil
}

func (o *Orchestrator) embed(ctx context.Context, chunks []models.Chunk, contentType models.ContentType, title, url string) ([]models.EmbeddedChunk, error) {
	out := make([]models.EmbeddedChunk, 0, len(chunks))
	for _, c := range chunks {
		vec, err := o.embedder.Embed(ctx, c.Text)
		if err != nil {
			return nil, fmt.Errorf("embedding chunk %d: %w", c.Index, err)
		}
		out = append(out, models.EmbeddedChunk{
			Chunk:       c,
			Vector:      vec,
			ContentType: contentType,
			VideoTitle:  title,
			VideoURL:    url,
		})
	}
	return out, nil
}

// store writes vectors first, then metadata, then drops chunk indexes the
// new version no longer has
func (o *Orchestrator) store(ctx context.Context, creatorID, videoID string, chunks []models.EmbeddedChunk) error {
	if err := o.vectors.Upsert(ctx, creatorID, videoID, chunks); err != nil {
		return fmt.Errorf("storing vectors: %w", err)
	}
	stale, err := o.documents.Replace(ctx, creatorID, videoID, chunks)
	if err != nil {
		return fmt.Errorf("storing chunk documents: %w", err)
	}
	if len(stale) > 0 {
		if err := o.vectors.DeleteIDs(ctx, stale); err != nil {
			log.Printf("[WARN] Could not delete %d stale vectors for video %s: %v", len(stale), videoID, err)
		}
	}
	return nil
}

// contextSource is one description used to build channel context chunks
type contextSource struct {
	title string
	text  string
}

func (o *Orchestrator) contextSources(ch videosource.Channel, job *models.Job) []contextSource {
	custom, _ := job.GetPayloadString(payloadCustomDescription)
	background, _ := job.GetPayloadString(payloadBackgroundText)

	candidates := []contextSource{
		{title: "Channel description", text: ch.Description},
		{title: "Custom description", text: custom},
		{title: "Background", text: background},
	}

	var usable []contextSource
	for _, c := range candidates {
		c.text = strings.TrimSpace(c.text)
		if o.usableDescription(c.text) {
			usable = append(usable, c)
		}
	}
	return usable
}

// rebuildChannelContext replaces the creator's channel context chunks. Old
// ones are removed even when no description qualifies any more.
func (o *Orchestrator) rebuildChannelContext(ctx context.Context, creatorID string, sources []contextSource) (int, error) {
	if err := o.vectors.DeleteByVideo(ctx, creatorID, models.ChannelContextVideoID); err != nil {
		return 0, fmt.Errorf("clearing context vectors: %w", err)
	}
	if err := o.documents.DeleteByVideo(ctx, creatorID, models.ChannelContextVideoID); err != nil {
		return 0, fmt.Errorf("clearing context documents: %w", err)
	}

	var all []models.EmbeddedChunk
	for _, src := range sources {
		chunks := o.chunker.Chunk(src.text)
		if len(chunks) == 0 {
			chunks = []models.Chunk{{Text: src.text}}
		}
		for i := range chunks {
			chunks[i].Index = len(all) + i
			chunks[i].VideoID = models.ChannelContextVideoID
		}
		sentiment.TagChunks(chunks)

		embedded, err := o.embed(ctx, chunks, models.ContentTypeChannelContext, src.title, "")
		if err != nil {
			return 0, err
		}
		all = append(all, embedded...)
	}
	if len(all) == 0 {
		return 0, nil
	}

	if err := o.store(ctx, creatorID, models.ChannelContextVideoID, all); err != nil {
		return 0, err
	}
	return len(all), nil
}

func (o *Orchestrator) reportProgress(ctx context.Context, jobID string, current, total int) {
	if err := o.jobs.UpdateProgress(ctx, jobID, models.JobProgress{Current: current, Total: total}); err != nil {
		log.Printf("[WARN] Could not update progress of job %s: %v", jobID, err)
	}
}

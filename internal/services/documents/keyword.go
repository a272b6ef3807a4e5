package documents

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/killallgit/persona-api/internal/models"
)

const (
	titleBoost = 2.0
	textBoost  = 1.0
)

// keywordDoc is the bleve document for a chunk
type keywordDoc struct {
	CreatorID    string `json:"creator_id"`
	VideoID      string `json:"video_id"`
	ContentType  string `json:"content_type"`
	ChunkIndex   int    `json:"chunk_index"`
	Text         string `json:"text"`
	VideoTitle   string `json:"video_title"`
	StartSeconds *int   `json:"start_seconds,omitempty"`
}

// KeywordIndex is a bleve full-text index over chunk documents
type KeywordIndex struct {
	index bleve.Index
}

// Ensure KeywordIndex implements KeywordSearcher interface
var _ KeywordSearcher = (*KeywordIndex)(nil)

// OpenKeywordIndex opens the index at path, creating it if missing. An empty
// path keeps the index in memory.
func OpenKeywordIndex(path string) (*KeywordIndex, error) {
	if path == "" {
		index, err := bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create in-memory bleve index: %w", err)
		}
		return &KeywordIndex{index: index}, nil
	}

	if _, err := os.Stat(path); err == nil {
		index, err := bleve.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open bleve index: %w", err)
		}
		return &KeywordIndex{index: index}, nil
	}

	index, err := bleve.New(path, buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create bleve index: %w", err)
	}
	return &KeywordIndex{index: index}, nil
}

// Index adds or replaces documents
func (k *KeywordIndex) Index(ctx context.Context, docs []*models.ChunkDocument) error {
	if len(docs) == 0 {
		return nil
	}
	batch := k.index.NewBatch()
	for _, d := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc := keywordDoc{
			CreatorID:    d.CreatorID,
			VideoID:      d.VideoID,
			ContentType:  string(d.ContentType),
			ChunkIndex:   d.ChunkIndex,
			Text:         d.Text,
			VideoTitle:   d.VideoTitle,
			StartSeconds: d.StartSeconds,
		}
		if err := batch.Index(d.ID, doc); err != nil {
			return fmt.Errorf("indexing chunk %s: %w", d.ID, err)
		}
	}
	if err := k.index.Batch(batch); err != nil {
		return fmt.Errorf("writing keyword batch: %w", err)
	}
	return nil
}

// Delete removes documents by ID
func (k *KeywordIndex) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	batch := k.index.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
	}
	if err := k.index.Batch(batch); err != nil {
		return fmt.Errorf("deleting keyword documents: %w", err)
	}
	return nil
}

// Search runs a full-text query restricted to one creator. Scores are
// normalized by the top hit so the best match scores 1.
func (k *KeywordIndex) Search(ctx context.Context, creatorID, query string, limit int) ([]models.ScoredText, error) {
	query = strings.TrimSpace(query)
	if query == "" || creatorID == "" {
		return []models.ScoredText{}, nil
	}
	if limit <= 0 {
		limit = 10
	}

	creatorQuery := bleve.NewTermQuery(creatorID)
	creatorQuery.SetField("creator_id")

	textQuery := bleve.NewMatchQuery(query)
	textQuery.SetField("text")
	textQuery.SetBoost(textBoost)
	titleQuery := bleve.NewMatchQuery(query)
	titleQuery.SetField("video_title")
	titleQuery.SetBoost(titleBoost)

	conjunction := bleve.NewConjunctionQuery(
		creatorQuery,
		bleve.NewDisjunctionQuery([]blevequery.Query{textQuery, titleQuery}...),
	)

	req := bleve.NewSearchRequestOptions(conjunction, limit, 0, false)
	req.Fields = []string{"creator_id", "video_id", "content_type", "chunk_index", "text", "video_title", "start_seconds"}

	res, err := k.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}

	results := make([]models.ScoredText, 0, len(res.Hits))
	for _, hit := range res.Hits {
		score := hit.Score
		if res.MaxScore > 0 {
			score = hit.Score / res.MaxScore
		}
		text, _ := hit.Fields["text"].(string)
		results = append(results, models.ScoredText{
			ID:       hit.ID,
			Text:     text,
			Score:    score,
			Metadata: hitMetadata(hit.Fields),
		})
	}
	return results, nil
}

// Count returns the number of indexed documents
func (k *KeywordIndex) Count() (uint64, error) {
	return k.index.DocCount()
}

func (k *KeywordIndex) Close() error {
	return k.index.Close()
}

func hitMetadata(fields map[string]interface{}) map[string]interface{} {
	md := map[string]interface{}{}
	for _, key := range []struct{ field, name string }{
		{"creator_id", "creatorId"},
		{"video_id", "videoId"},
		{"content_type", "contentType"},
		{"video_title", "videoTitle"},
	} {
		if v, ok := fields[key.field].(string); ok && v != "" {
			md[key.name] = v
		}
	}
	// bleve returns stored numbers as float64
	if v, ok := fields["chunk_index"].(float64); ok {
		md["chunkIndex"] = int(v)
	}
	if v, ok := fields["start_seconds"].(float64); ok {
		md["startSeconds"] = int(v)
	}
	return md
}

func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = "en"
	indexMapping.DefaultField = "text"

	docMapping := bleve.NewDocumentMapping()

	keywordField := func() *mapping.FieldMapping {
		f := bleve.NewTextFieldMapping()
		f.Store = true
		f.Index = true
		f.Analyzer = "keyword"
		return f
	}
	docMapping.AddFieldMappingsAt("creator_id", keywordField())
	docMapping.AddFieldMappingsAt("video_id", keywordField())
	docMapping.AddFieldMappingsAt("content_type", keywordField())

	textField := bleve.NewTextFieldMapping()
	textField.Store = true
	textField.Index = true
	docMapping.AddFieldMappingsAt("text", textField)

	titleField := bleve.NewTextFieldMapping()
	titleField.Store = true
	titleField.Index = true
	docMapping.AddFieldMappingsAt("video_title", titleField)

	numField := bleve.NewNumericFieldMapping()
	numField.Store = true
	numField.Index = false
	docMapping.AddFieldMappingsAt("chunk_index", numField)
	docMapping.AddFieldMappingsAt("start_seconds", numField)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

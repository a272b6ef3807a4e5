package vectors

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// vectorIndex records the dimension an index was created with
type vectorIndex struct {
	Name       string `gorm:"primaryKey"`
	Dimensions int    `gorm:"not null"`
	CreatedAt  time.Time
}

func (vectorIndex) TableName() string {
	return "vector_indexes"
}

// vectorRecord is one stored vector. Vectors are little-endian float32 blobs.
type vectorRecord struct {
	IndexName    string `gorm:"primaryKey"`
	ID           string `gorm:"primaryKey"`
	CreatorID    string `gorm:"not null;index:idx_vectors_creator_video,priority:1"`
	VideoID      string `gorm:"not null;index:idx_vectors_creator_video,priority:2"`
	ContentType  string
	ChunkIndex   int
	Text         string `gorm:"type:text"`
	VideoTitle   string
	StartSeconds *int
	Vector       []byte `gorm:"not null"`
}

func (vectorRecord) TableName() string {
	return "vector_records"
}

// LocalProvider keeps vectors in the metadata database and scores them in
// process. It suits development and single-node deployments with modest
// corpora; every query scans the creator's vectors.
type LocalProvider struct {
	db    *gorm.DB
	mu    sync.RWMutex
	index string
	dim   int
}

// NewLocalProvider creates a provider over db
func NewLocalProvider(db *gorm.DB) *LocalProvider {
	return &LocalProvider{db: db}
}

// Name identifies the provider
func (p *LocalProvider) Name() string {
	return "local"
}

// EnsureIndex migrates the vector tables and registers the index dimension
func (p *LocalProvider) EnsureIndex(ctx context.Context, name string, dim int) error {
	if dim <= 0 {
		return fmt.Errorf("index dimension must be positive, got %d", dim)
	}
	db := p.db.WithContext(ctx)
	if err := db.AutoMigrate(&vectorIndex{}, &vectorRecord{}); err != nil {
		return fmt.Errorf("migrating vector tables: %w", err)
	}

	var existing vectorIndex
	err := db.First(&existing, "name = ?", name).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := db.Create(&vectorIndex{Name: name, Dimensions: dim}).Error; err != nil {
			return fmt.Errorf("creating vector index: %w", err)
		}
	case err != nil:
		return fmt.Errorf("reading vector index: %w", err)
	case existing.Dimensions != dim:
		return fmt.Errorf("%w: index %q has %d, requested %d", ErrDimensionMismatch, name, existing.Dimensions, dim)
	}

	p.mu.Lock()
	p.index, p.dim = name, dim
	p.mu.Unlock()
	return nil
}

func (p *LocalProvider) current() (string, int, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.index == "" {
		return "", 0, ErrIndexNotReady
	}
	return p.index, p.dim, nil
}

// Upsert writes records, replacing existing IDs
func (p *LocalProvider) Upsert(ctx context.Context, records []Record) error {
	index, dim, err := p.current()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	rows := make([]vectorRecord, 0, len(records))
	for _, r := range records {
		if len(r.Vector) != dim {
			return fmt.Errorf("%w: record %s has %d, index has %d", ErrDimensionMismatch, r.ID, len(r.Vector), dim)
		}
		rows = append(rows, vectorRecord{
			IndexName:    index,
			ID:           r.ID,
			CreatorID:    r.Metadata.CreatorID,
			VideoID:      r.Metadata.VideoID,
			ContentType:  r.Metadata.ContentType,
			ChunkIndex:   r.Metadata.ChunkIndex,
			Text:         r.Metadata.Text,
			VideoTitle:   r.Metadata.VideoTitle,
			StartSeconds: r.Metadata.StartSeconds,
			Vector:       encodeVector(r.Vector),
		})
	}

	err = p.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rows).Error
	if err != nil {
		return fmt.Errorf("writing vectors: %w", err)
	}
	return nil
}

// Query scores every vector matching filter and returns the best topK
func (p *LocalProvider) Query(ctx context.Context, vector []float32, topK int, filter Filter, minScore float64) ([]Match, error) {
	index, dim, err := p.current()
	if err != nil {
		return nil, err
	}
	if len(vector) != dim {
		return nil, fmt.Errorf("%w: query has %d, index has %d", ErrDimensionMismatch, len(vector), dim)
	}

	var rows []vectorRecord
	q := p.scope(p.db.WithContext(ctx), index, filter).Order("creator_id, video_id, chunk_index")
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("reading vectors: %w", err)
	}

	matches := make([]Match, 0, len(rows))
	for _, row := range rows {
		score := cosine(vector, decodeVector(row.Vector))
		if score < minScore {
			continue
		}
		matches = append(matches, Match{
			ID:    row.ID,
			Score: score,
			Metadata: Metadata{
				CreatorID:    row.CreatorID,
				VideoID:      row.VideoID,
				ContentType:  row.ContentType,
				ChunkIndex:   row.ChunkIndex,
				Text:         row.Text,
				VideoTitle:   row.VideoTitle,
				StartSeconds: row.StartSeconds,
			},
		})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// DeleteMany removes records by ID
func (p *LocalProvider) DeleteMany(ctx context.Context, ids []string) error {
	index, _, err := p.current()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	err = p.db.WithContext(ctx).
		Where("index_name = ? AND id IN ?", index, ids).
		Delete(&vectorRecord{}).Error
	if err != nil {
		return fmt.Errorf("deleting vectors: %w", err)
	}
	return nil
}

// DeleteByFilter removes records matching filter
func (p *LocalProvider) DeleteByFilter(ctx context.Context, filter Filter) error {
	index, _, err := p.current()
	if err != nil {
		return err
	}
	if filter == (Filter{}) {
		return fmt.Errorf("refusing to delete with an empty filter")
	}
	if err := p.scope(p.db.WithContext(ctx), index, filter).Delete(&vectorRecord{}).Error; err != nil {
		return fmt.Errorf("deleting vectors: %w", err)
	}
	return nil
}

func (p *LocalProvider) scope(db *gorm.DB, index string, filter Filter) *gorm.DB {
	db = db.Where("index_name = ?", index)
	if filter.CreatorID != "" {
		db = db.Where("creator_id = ?", filter.CreatorID)
	}
	if filter.VideoID != "" {
		db = db.Where("video_id = ?", filter.VideoID)
	}
	if filter.ContentType != "" {
		db = db.Where("content_type = ?", filter.ContentType)
	}
	return db
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(x))
	}
	return buf
}

func decodeVector(b []byte) []float32 {
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

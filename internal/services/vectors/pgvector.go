package vectors

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

var tableNameRegex = regexp.MustCompile(`[^a-z0-9_]+`)

// PgxConn is the subset of pgxpool.Pool the provider uses
type PgxConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// PgvectorProvider stores vectors in Postgres with the pgvector extension
type PgvectorProvider struct {
	conn PgxConn

	mu    sync.RWMutex
	table string
}

// NewPgvectorPool opens a pgx pool for dsn
func NewPgvectorPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return pool, nil
}

// NewPgvectorProvider creates a provider over conn
func NewPgvectorProvider(conn PgxConn) *PgvectorProvider {
	return &PgvectorProvider{conn: conn}
}

// Name identifies the provider
func (p *PgvectorProvider) Name() string {
	return "pgvector"
}

// EnsureIndex creates the extension, table and indexes. The vector column's
// declared dimension is checked against dim when the table already exists.
func (p *PgvectorProvider) EnsureIndex(ctx context.Context, name string, dim int) error {
	table := tableName(name)

	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id TEXT PRIMARY KEY,
	creator_id TEXT NOT NULL,
	video_id TEXT NOT NULL,
	content_type TEXT NOT NULL DEFAULT 'transcript',
	chunk_index INTEGER NOT NULL,
	text TEXT NOT NULL,
	video_title TEXT,
	start_seconds INTEGER,
	embedding vector(%d) NOT NULL
)`, table, dim),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_creator_video_idx ON %s (creator_id, video_id)`, table, table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_embedding_idx ON %s USING hnsw (embedding vector_cosine_ops)`, table, table),
	}
	for _, stmt := range stmts {
		if _, err := p.conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensuring pgvector table: %w", err)
		}
	}

	var existing int
	err := p.conn.QueryRow(ctx,
		`SELECT atttypmod FROM pg_attribute WHERE attrelid = $1::regclass AND attname = 'embedding'`,
		table).Scan(&existing)
	if err != nil {
		return fmt.Errorf("reading pgvector dimension: %w", err)
	}
	if existing > 0 && existing != dim {
		return fmt.Errorf("%w: table %s has %d, requested %d", ErrDimensionMismatch, table, existing, dim)
	}

	p.mu.Lock()
	p.table = table
	p.mu.Unlock()
	return nil
}

func (p *PgvectorProvider) current() (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.table == "" {
		return "", ErrIndexNotReady
	}
	return p.table, nil
}

// Upsert writes records in a single batch round trip
func (p *PgvectorProvider) Upsert(ctx context.Context, records []Record) error {
	table, err := p.current()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	sql := fmt.Sprintf(`INSERT INTO %s (id, creator_id, video_id, content_type, chunk_index, text, video_title, start_seconds, embedding)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET
	creator_id = EXCLUDED.creator_id,
	video_id = EXCLUDED.video_id,
	content_type = EXCLUDED.content_type,
	chunk_index = EXCLUDED.chunk_index,
	text = EXCLUDED.text,
	video_title = EXCLUDED.video_title,
	start_seconds = EXCLUDED.start_seconds,
	embedding = EXCLUDED.embedding`, table)

	batch := &pgx.Batch{}
	for _, r := range records {
		m := r.Metadata
		batch.Queue(sql, r.ID, m.CreatorID, m.VideoID, m.ContentType, m.ChunkIndex, m.Text, m.VideoTitle, m.StartSeconds, pgvector.NewVector(r.Vector))
	}

	results := p.conn.SendBatch(ctx, batch)
	defer results.Close()
	for range records {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("upserting pgvector rows: %w", err)
		}
	}
	return nil
}

// Query ranks rows by cosine distance
func (p *PgvectorProvider) Query(ctx context.Context, vector []float32, topK int, filter Filter, minScore float64) ([]Match, error) {
	table, err := p.current()
	if err != nil {
		return nil, err
	}

	where, args := filterClause(filter, 4)
	args = append([]any{pgvector.NewVector(vector), topK, minScore}, args...)

	sql := fmt.Sprintf(`SELECT id, creator_id, video_id, content_type, chunk_index, text, COALESCE(video_title, ''), start_seconds,
       1 - (embedding <=> $1) AS score
FROM %s
WHERE 1 - (embedding <=> $1) >= $3%s
ORDER BY embedding <=> $1
LIMIT $2`, table, where)

	rows, err := p.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query pgvector: %w", err)
	}
	defer rows.Close()

	matches := make([]Match, 0, topK)
	for rows.Next() {
		var m Match
		md := &m.Metadata
		if err := rows.Scan(&m.ID, &md.CreatorID, &md.VideoID, &md.ContentType, &md.ChunkIndex, &md.Text, &md.VideoTitle, &md.StartSeconds, &m.Score); err != nil {
			return nil, fmt.Errorf("scan pgvector row: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pgvector rows: %w", err)
	}
	return matches, nil
}

// DeleteMany removes rows by ID
func (p *PgvectorProvider) DeleteMany(ctx context.Context, ids []string) error {
	table, err := p.current()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	if _, err := p.conn.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ANY($1)`, table), ids); err != nil {
		return fmt.Errorf("deleting pgvector rows: %w", err)
	}
	return nil
}

// DeleteByFilter removes rows matching filter
func (p *PgvectorProvider) DeleteByFilter(ctx context.Context, filter Filter) error {
	table, err := p.current()
	if err != nil {
		return err
	}
	where, args := filterClause(filter, 1)
	if where == "" {
		return fmt.Errorf("refusing to delete with an empty filter")
	}
	sql := fmt.Sprintf(`DELETE FROM %s WHERE TRUE%s`, table, where)
	if _, err := p.conn.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("deleting pgvector rows: %w", err)
	}
	return nil
}

// filterClause renders filter as " AND col = $n" terms numbered from first
func filterClause(filter Filter, first int) (string, []any) {
	var b strings.Builder
	var args []any
	add := func(col, val string) {
		if val == "" {
			return
		}
		args = append(args, val)
		fmt.Fprintf(&b, " AND %s = $%d", col, first+len(args)-1)
	}
	add("creator_id", filter.CreatorID)
	add("video_id", filter.VideoID)
	add("content_type", filter.ContentType)
	return b.String(), args
}

func tableName(index string) string {
	name := tableNameRegex.ReplaceAllString(strings.ToLower(index), "_")
	name = strings.Trim(name, "_")
	if name == "" {
		name = "chunks"
	}
	return "vec_" + name
}

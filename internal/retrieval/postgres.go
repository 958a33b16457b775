package retrieval

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore keeps embeddings in Postgres. Vectors are stored as JSON
// arrays and ranked by cosine similarity in process; corpus sizes here are a
// few thousand clauses per deployment, far below where a dedicated ANN index
// pays off.
type PostgresStore struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromDB wires an existing handle (shared with the session store).
func NewPostgresStoreFromDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Close() error { return s.db.Close() }

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	s.schemaOnce.Do(func() {
		const ddl = `
CREATE TABLE IF NOT EXISTS embeddings (
    id          TEXT PRIMARY KEY,
    collection  TEXT NOT NULL,
    session_id  TEXT NOT NULL DEFAULT '',
    body        TEXT NOT NULL,
    domain      TEXT NOT NULL DEFAULT '',
    name        TEXT NOT NULL DEFAULT '',
    url         TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    vector      JSONB NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS embeddings_collection_idx ON embeddings (collection);
CREATE INDEX IF NOT EXISTS embeddings_session_idx ON embeddings (session_id);
CREATE INDEX IF NOT EXISTS embeddings_domain_idx ON embeddings (collection, domain);`
		_, s.schemaErr = s.db.ExecContext(ctx, ddl)
	})
	return s.schemaErr
}

func (s *PostgresStore) Upsert(ctx context.Context, col Collection, recs ...Record) error {
	if err := s.ensureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	for _, rec := range recs {
		vec, err := json.Marshal(rec.Vector)
		if err != nil {
			return fmt.Errorf("encode vector: %w", err)
		}
		query, args, err := psql.Insert("embeddings").
			Columns("id", "collection", "session_id", "body", "domain", "name", "url", "description", "vector").
			Values(rec.ID, string(col), rec.SessionID, rec.Text, rec.Domain, rec.Name, rec.URL, rec.Description, vec).
			Suffix(`ON CONFLICT (id) DO UPDATE SET
                body = EXCLUDED.body,
                domain = EXCLUDED.domain,
                name = EXCLUDED.name,
                url = EXCLUDED.url,
                description = EXCLUDED.description,
                vector = EXCLUDED.vector`).
			ToSql()
		if err != nil {
			return fmt.Errorf("build upsert: %w", err)
		}
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert embedding: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) Search(ctx context.Context, col Collection, vector []float32, domain string, k int) ([]Record, []float64, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, nil, fmt.Errorf("ensure schema: %w", err)
	}
	builder := psql.Select("id", "session_id", "body", "domain", "name", "url", "description", "vector").
		From("embeddings").
		Where(sq.Eq{"collection": string(col)})
	if domain != "" {
		builder = builder.Where(sq.Eq{"domain": domain})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, nil, fmt.Errorf("build search: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("query embeddings: %w", err)
	}
	defer rows.Close()

	type scored struct {
		rec   Record
		score float64
	}
	var candidates []scored
	for rows.Next() {
		var rec Record
		var rawVec []byte
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Text, &rec.Domain, &rec.Name, &rec.URL, &rec.Description, &rawVec); err != nil {
			return nil, nil, fmt.Errorf("scan embedding: %w", err)
		}
		if err := json.Unmarshal(rawVec, &rec.Vector); err != nil {
			continue
		}
		candidates = append(candidates, scored{rec: rec, score: Cosine(vector, rec.Vector)})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("rows: %w", err)
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	if k > 0 && len(candidates) > k {
		candidates = candidates[:k]
	}
	recs := make([]Record, len(candidates))
	scores := make([]float64, len(candidates))
	for i, c := range candidates {
		recs[i] = c.rec
		scores[i] = c.score
	}
	return recs, scores, nil
}

func (s *PostgresStore) Count(ctx context.Context, col Collection) (int, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return 0, fmt.Errorf("ensure schema: %w", err)
	}
	query, args, err := psql.Select("COUNT(*)").From("embeddings").Where(sq.Eq{"collection": string(col)}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count embeddings: %w", err)
	}
	return n, nil
}

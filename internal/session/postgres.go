package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresStore persists sessions in Postgres.
type PostgresStore struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error
}

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

func NewPostgresStoreFromDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// DB exposes the handle so the vector store can share one connection pool.
func (s *PostgresStore) DB() *sql.DB { return s.db }

func (s *PostgresStore) Close() error { return s.db.Close() }

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	s.schemaOnce.Do(func() {
		const ddl = `
CREATE TABLE IF NOT EXISTS sessions (
    id          TEXT PRIMARY KEY,
    file_name   TEXT NOT NULL DEFAULT '',
    raw_text    TEXT NOT NULL DEFAULT '',
    processed   BOOLEAN NOT NULL DEFAULT FALSE,
    domain      TEXT NOT NULL DEFAULT '',
    uploaded_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    analysis    JSONB
);`
		_, s.schemaErr = s.db.ExecContext(ctx, ddl)
	})
	return s.schemaErr
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Session, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return Session{}, fmt.Errorf("ensure schema: %w", err)
	}
	query, args, err := psql.Select("id", "file_name", "raw_text", "processed", "domain", "uploaded_at", "analysis").
		From("sessions").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return Session{}, fmt.Errorf("build select: %w", err)
	}
	var out Session
	var analysis sql.Null[[]byte]
	row := s.db.QueryRowContext(ctx, query, args...)
	if err := row.Scan(&out.ID, &out.FileName, &out.RawText, &out.Processed, &out.Domain, &out.UploadedAt, &analysis); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, fmt.Errorf("scan session: %w", err)
	}
	if analysis.Valid {
		out.Analysis = json.RawMessage(analysis.V)
	}
	return out, nil
}

func (s *PostgresStore) Put(ctx context.Context, in Session) error {
	if err := s.ensureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	query, args, err := psql.Insert("sessions").
		Columns("id", "file_name", "raw_text", "processed", "domain", "uploaded_at").
		Values(in.ID, in.FileName, in.RawText, in.Processed, in.Domain, in.UploadedAt).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
            file_name = EXCLUDED.file_name,
            raw_text = EXCLUDED.raw_text,
            processed = EXCLUDED.processed,
            domain = EXCLUDED.domain`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

func (s *PostgresStore) MarkProcessed(ctx context.Context, id string) error {
	if err := s.ensureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	query, args, err := psql.Update("sessions").Set("processed", true).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) SaveAnalysis(ctx context.Context, id, domain string, analysis json.RawMessage) error {
	if err := s.ensureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	query, args, err := psql.Update("sessions").
		Set("domain", domain).
		Set("analysis", []byte(analysis)).
		Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

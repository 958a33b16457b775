// Package session persists per-upload metadata: the extracted document text,
// the processed gate, and the projected analysis report that the translate,
// simulate and chat operations reload later.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var ErrNotFound = errors.New("session not found")

// Session is the per-upload record keyed by session id. Analysis holds the
// projected final pipeline state once a run completes.
type Session struct {
	ID         string          `json:"id"`
	FileName   string          `json:"file_name"`
	RawText    string          `json:"raw_text"`
	Processed  bool            `json:"processed"`
	Domain     string          `json:"domain"`
	UploadedAt time.Time       `json:"uploaded_at"`
	Analysis   json.RawMessage `json:"analysis,omitempty"`
}

type Store interface {
	Get(ctx context.Context, id string) (Session, error)
	Put(ctx context.Context, s Session) error
	MarkProcessed(ctx context.Context, id string) error
	SaveAnalysis(ctx context.Context, id, domain string, analysis json.RawMessage) error
}

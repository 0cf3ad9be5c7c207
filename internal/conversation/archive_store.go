package conversation

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/calder-ai/lead-qualification-platform/pkg/logging"
)

// ArchiveStore persists finished transcripts to the relational database so a
// reset conversation is still auditable. It uses database/sql so it works
// against the lib/pq driver registered by the API binary.
type ArchiveStore struct {
	db     *sql.DB
	logger *logging.Logger
}

// NewArchiveStore creates a transcript archive backed by the given database.
func NewArchiveStore(db *sql.DB, logger *logging.Logger) *ArchiveStore {
	if db == nil {
		panic("conversation: archive db cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ArchiveStore{db: db, logger: logger}
}

// SaveTranscript writes one session's final state. Repeated archives of the
// same session append new rows; the archive is a log, not a keyed record.
func (s *ArchiveStore) SaveTranscript(ctx context.Context, sessionID string, state *SessionState) error {
	transcript, err := json.Marshal(state.Transcript)
	if err != nil {
		return fmt.Errorf("conversation: failed to encode transcript: %w", err)
	}

	const query = `
		INSERT INTO conversation_archive (session_id, stage, classification, routed, transcript, archived_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := s.db.ExecContext(ctx, query,
		sessionID,
		string(state.Stage),
		string(state.Classification),
		state.Routed,
		transcript,
		time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("conversation: failed to archive transcript: %w", err)
	}

	s.logger.Info("transcript archived", "session_id", sessionID, "turns", len(state.Transcript))
	return nil
}

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/andresmejia3/facepipe/internal/types"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
)

// PGStore keeps the encoding store in PostgreSQL with pgvector columns.
type PGStore struct {
	conn *pgx.Conn
}

// NewPGStore establishes a connection to the database and ensures the schema is initialized.
func NewPGStore(ctx context.Context, connString string) (*PGStore, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, err
	}

	// Initialize schema (Auto-Migration)
	if err := initSchema(ctx, conn); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	return &PGStore{conn: conn}, nil
}

// initSchema creates the tables and vector extension if they don't exist.
func initSchema(ctx context.Context, conn *pgx.Conn) error {
	query := `
		CREATE EXTENSION IF NOT EXISTS vector;
		CREATE TABLE IF NOT EXISTS encoding_runs (
			id TEXT PRIMARY KEY,
			model TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS face_encodings (
			position INT PRIMARY KEY,
			run_id TEXT NOT NULL REFERENCES encoding_runs(id) ON DELETE CASCADE,
			label TEXT NOT NULL,
			embedding VECTOR(128) NOT NULL
		);
		CREATE INDEX IF NOT EXISTS face_encodings_label_idx ON face_encodings (label);
	`
	_, err := conn.Exec(ctx, query)
	return err
}

// Close terminates the database connection.
func (s *PGStore) Close(ctx context.Context) {
	s.conn.Close(ctx)
}

// Save replaces the stored run and all of its encodings in one transaction.
func (s *PGStore) Save(ctx context.Context, enc *Encodings) error {
	if err := enc.Check(); err != nil {
		return err
	}

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Full overwrite: encodings cascade with their run.
	if _, err := tx.Exec(ctx, "DELETE FROM encoding_runs"); err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO encoding_runs (id, model, fingerprint, created_at)
		VALUES ($1, $2, $3, $4)
	`, enc.RunID, enc.Model, enc.Fingerprint, enc.CreatedAt)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for i, name := range enc.Names {
		vec := pgvector.NewVector(enc.Vectors[i][:])
		batch.Queue(`
			INSERT INTO face_encodings (position, run_id, label, embedding)
			VALUES ($1, $2, $3, $4::vector)
		`, i, enc.RunID, name, vec)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert encodings: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// Load reads the current run and its encodings in position order.
func (s *PGStore) Load(ctx context.Context) (*Encodings, error) {
	enc := &Encodings{}
	err := s.conn.QueryRow(ctx, `
		SELECT id, model, fingerprint, created_at FROM encoding_runs
		ORDER BY created_at DESC LIMIT 1
	`).Scan(&enc.RunID, &enc.Model, &enc.Fingerprint, &enc.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.conn.Query(ctx, `
		SELECT label, embedding::text FROM face_encodings
		WHERE run_id = $1 ORDER BY position ASC
	`, enc.RunID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var label, vecStr string
		if err := rows.Scan(&label, &vecStr); err != nil {
			return nil, err
		}
		var vec pgvector.Vector
		if err := vec.Scan(vecStr); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		var e types.Embedding
		if n := copy(e[:], vec.Slice()); n != types.EmbeddingSize {
			return nil, fmt.Errorf("%w: embedding for %q has %d dimensions", ErrCorrupt, label, n)
		}
		enc.Add(label, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return enc, nil
}

// Reset drops all application tables to clear the database state.
func (s *PGStore) Reset(ctx context.Context) error {
	_, err := s.conn.Exec(ctx, `
		DROP TABLE IF EXISTS face_encodings CASCADE;
		DROP TABLE IF EXISTS encoding_runs CASCADE;
	`)
	if err != nil {
		return err
	}
	return initSchema(ctx, s.conn)
}

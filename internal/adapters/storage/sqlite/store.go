package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/agribharat/agribharat-api/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	selected_language TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS consultations (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	type TEXT NOT NULL,
	question TEXT NOT NULL,
	response TEXT NOT NULL,
	language TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	UNIQUE(session_id, seq),
	FOREIGN KEY(session_id) REFERENCES sessions(id)
);`

// Store persists sessions and consultation history in a SQLite file.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
// Use ":memory:" for a throwaway database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite serializes writers; a single connection also keeps ":memory:" shared.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateSession(ctx context.Context, session *domain.Session) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO sessions (id, selected_language, created_at, updated_at) VALUES (?, ?, ?, ?)",
		string(session.ID), string(session.SelectedLanguage), session.CreatedAt.UTC(), session.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("sqlite CreateSession: %w", err)
	}
	return nil
}

func (s *Store) UpdateSession(ctx context.Context, session *domain.Session) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE sessions SET selected_language = ?, updated_at = ? WHERE id = ?",
		string(session.SelectedLanguage), session.UpdatedAt.UTC(), string(session.ID),
	)
	if err != nil {
		return fmt.Errorf("sqlite UpdateSession: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite UpdateSession: %w", err)
	}
	if n == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	var (
		lang             string
		created, updated time.Time
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT selected_language, created_at, updated_at FROM sessions WHERE id = ?", string(id),
	).Scan(&lang, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite GetSession: %w", err)
	}
	if !domain.Language(lang).Valid() {
		return nil, fmt.Errorf("sqlite GetSession: stored language %q is not supported", lang)
	}

	return &domain.Session{
		ID:               id,
		SelectedLanguage: domain.Language(lang),
		CreatedAt:        created,
		UpdatedAt:        updated,
	}, nil
}

func (s *Store) AppendConsultation(ctx context.Context, rec *domain.ConsultationRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO consultations (id, session_id, seq, type, question, response, language, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(rec.ID), string(rec.SessionID), rec.Seq, string(rec.Type),
		rec.Question, rec.Response, string(rec.Language), rec.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("sqlite AppendConsultation: %w", err)
	}
	return nil
}

func (s *Store) ListConsultations(ctx context.Context, sessionID domain.SessionID) ([]*domain.ConsultationRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, seq, type, question, response, language, created_at
		FROM consultations WHERE session_id = ? ORDER BY seq ASC`,
		string(sessionID),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite ListConsultations: %w", err)
	}
	defer rows.Close()

	var out []*domain.ConsultationRecord
	for rows.Next() {
		var (
			id, typ, lang string
			rec           domain.ConsultationRecord
		)
		if err := rows.Scan(&id, &rec.Seq, &typ, &rec.Question, &rec.Response, &lang, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite ListConsultations scan: %w", err)
		}
		rec.ID = domain.ConsultationID(id)
		rec.SessionID = sessionID
		rec.Type = domain.ConsultationType(typ)
		rec.Language = domain.Language(lang)
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite ListConsultations: %w", err)
	}
	return out, nil
}

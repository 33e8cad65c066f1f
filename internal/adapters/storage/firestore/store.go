package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/agribharat/agribharat-api/internal/domain"
)

type Store struct {
	client *firestore.Client
}

// NewStore creates a Firestore store.
// Uses the project passed (AGRI_GCP_PROJECT).
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) sessionsCol() *firestore.CollectionRef {
	return s.client.Collection("sessions")
}

func (s *Store) sessionDoc(id domain.SessionID) *firestore.DocumentRef {
	return s.sessionsCol().Doc(string(id))
}

func (s *Store) consultationsCol(sessionID domain.SessionID) *firestore.CollectionRef {
	return s.sessionDoc(sessionID).Collection("consultations")
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type sessionDoc struct {
	SelectedLanguage string    `firestore:"selected_language"`
	CreatedAt        time.Time `firestore:"created_at"`
	UpdatedAt        time.Time `firestore:"updated_at"`
}

type consultationDoc struct {
	Seq       int       `firestore:"seq"`
	Type      string    `firestore:"type"`
	Question  string    `firestore:"question"`
	Response  string    `firestore:"response"`
	Language  string    `firestore:"language"`
	CreatedAt time.Time `firestore:"created_at"`
}

// ─────────────────────────────────────────
// SessionStore implementation
// ─────────────────────────────────────────

func (s *Store) CreateSession(ctx context.Context, session *domain.Session) error {
	doc := sessionDoc{
		SelectedLanguage: string(session.SelectedLanguage),
		CreatedAt:        session.CreatedAt,
		UpdatedAt:        session.UpdatedAt,
	}

	_, err := s.sessionDoc(session.ID).Create(ctx, doc)
	if err != nil {
		return fmt.Errorf("firestore CreateSession: %w", err)
	}
	return nil
}

func (s *Store) UpdateSession(ctx context.Context, session *domain.Session) error {
	_, err := s.sessionDoc(session.ID).Update(ctx, []firestore.Update{
		{Path: "selected_language", Value: string(session.SelectedLanguage)},
		{Path: "updated_at", Value: session.UpdatedAt},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return domain.ErrSessionNotFound
		}
		return fmt.Errorf("firestore UpdateSession: %w", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	snap, err := s.sessionDoc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("firestore GetSession: %w", err)
	}

	var doc sessionDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetSession decode: %w", err)
	}
	if !domain.Language(doc.SelectedLanguage).Valid() {
		return nil, fmt.Errorf("firestore GetSession: stored language %q is not supported", doc.SelectedLanguage)
	}

	return &domain.Session{
		ID:               id,
		SelectedLanguage: domain.Language(doc.SelectedLanguage),
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
	}, nil
}

// ─────────────────────────────────────────
// ConsultationStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendConsultation(ctx context.Context, rec *domain.ConsultationRecord) error {
	doc := consultationDoc{
		Seq:       rec.Seq,
		Type:      string(rec.Type),
		Question:  rec.Question,
		Response:  rec.Response,
		Language:  string(rec.Language),
		CreatedAt: rec.CreatedAt,
	}

	// Create rather than Set: records are immutable once written.
	_, err := s.consultationsCol(rec.SessionID).Doc(string(rec.ID)).Create(ctx, doc)
	if err != nil {
		return fmt.Errorf("firestore AppendConsultation: %w", err)
	}
	return nil
}

func (s *Store) ListConsultations(ctx context.Context, sessionID domain.SessionID) ([]*domain.ConsultationRecord, error) {
	iter := s.consultationsCol(sessionID).OrderBy("seq", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var out []*domain.ConsultationRecord
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore ListConsultations: %w", err)
		}

		var doc consultationDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode consultationDoc: %w", err)
		}

		out = append(out, &domain.ConsultationRecord{
			ID:        domain.ConsultationID(snap.Ref.ID),
			SessionID: sessionID,
			Seq:       doc.Seq,
			Type:      domain.ConsultationType(doc.Type),
			Question:  doc.Question,
			Response:  doc.Response,
			Language:  domain.Language(doc.Language),
			CreatedAt: doc.CreatedAt,
		})
	}
	return out, nil
}

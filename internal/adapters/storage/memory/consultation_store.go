package memory

import (
	"context"
	"sync"

	"github.com/agribharat/agribharat-api/internal/domain"
)

type ConsultationStore struct {
	mu      sync.RWMutex
	records map[domain.SessionID][]domain.ConsultationRecord
}

func NewConsultationStore() *ConsultationStore {
	return &ConsultationStore{
		records: make(map[domain.SessionID][]domain.ConsultationRecord),
	}
}

func (s *ConsultationStore) AppendConsultation(_ context.Context, rec *domain.ConsultationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[rec.SessionID] = append(s.records[rec.SessionID], *rec)
	return nil
}

// ListConsultations returns copies so callers cannot edit stored history.
func (s *ConsultationStore) ListConsultations(_ context.Context, sessionID domain.SessionID) ([]*domain.ConsultationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs := s.records[sessionID]
	out := make([]*domain.ConsultationRecord, 0, len(recs))
	for i := range recs {
		rec := recs[i]
		out = append(out, &rec)
	}
	return out, nil
}

package consultation

import (
	"context"
	"fmt"
	"strings"

	"github.com/agribharat/agribharat-api/internal/domain"
)

const (
	ExportFilename    = "AgriBharat_Consultation_History.txt"
	ExportContentType = "text/plain"
)

// Export is a downloadable transcript. Empty is set, and Data left nil, when
// the session has no consultations yet.
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
	Empty       bool
	Count       int
}

// ExportHistory renders the session's history as plain text, most recent
// consultation first. It never mutates the session.
func (s *Service) ExportHistory(ctx context.Context, id domain.SessionID) (*Export, error) {
	if _, err := s.sessionStore.GetSession(ctx, id); err != nil {
		return nil, err
	}

	history, err := s.consultations.ListConsultations(ctx, id)
	if err != nil {
		return nil, err
	}

	if len(history) == 0 {
		return &Export{Empty: true}, nil
	}

	return &Export{
		Filename:    ExportFilename,
		ContentType: ExportContentType,
		Data:        []byte(FormatHistory(history)),
		Count:       len(history),
	}, nil
}

// FormatHistory renders records given in chronological order as transcript
// blocks in reverse order, separated by a blank line.
func FormatHistory(history []*domain.ConsultationRecord) string {
	blocks := make([]string, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		blocks = append(blocks, formatRecord(history[i]))
	}
	return strings.Join(blocks, "\n\n")
}

func formatRecord(rec *domain.ConsultationRecord) string {
	return fmt.Sprintf("--- Consultation ---\nType: %s\nLanguage: %s\nQuestion: %s\n\nResponse:\n%s",
		rec.Type, rec.Language, rec.Question, rec.Response)
}

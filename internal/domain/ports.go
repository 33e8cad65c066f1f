package domain

import "context"

// Advisor is the external advisory backend: one call per request type, each
// returning a single text response.
type Advisor interface {
	AnswerQuestion(ctx context.Context, question string, lang Language) (string, error)
	AnalyzeDisease(ctx context.Context, image Image, question string, lang Language) (string, error)
	AnalyzeMarket(ctx context.Context, cropName string, lang Language) (string, error)
	LookupSchemes(ctx context.Context, schemeQuery string, lang Language) (string, error)
}

// Prompt is what an LLM receives: a system instruction, the user content and
// an optional image.
type Prompt struct {
	System string
	User   string
	Image  *Image
}

// LLMClient defines how the application talks to a language model.
type LLMClient interface {
	GenerateReply(ctx context.Context, prompt Prompt) (string, error)
}

// SessionStore defines session persistence.
type SessionStore interface {
	CreateSession(ctx context.Context, session *Session) error
	UpdateSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, id SessionID) (*Session, error)
}

// ConsultationStore persists the append-only consultation history.
type ConsultationStore interface {
	AppendConsultation(ctx context.Context, rec *ConsultationRecord) error
	ListConsultations(ctx context.Context, sessionID SessionID) ([]*ConsultationRecord, error)
}

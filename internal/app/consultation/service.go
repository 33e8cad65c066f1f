package consultation

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/agribharat/agribharat-api/internal/domain"
	"github.com/agribharat/agribharat-api/internal/locale"
	"github.com/agribharat/agribharat-api/internal/observability"
)

// Service is the session controller: it owns per-session language and
// history, validates requests, dispatches them to the advisor and records
// each completed exchange.
type Service struct {
	advisor       domain.Advisor
	sessionStore  domain.SessionStore
	consultations domain.ConsultationStore
	texts         *locale.Table
	now           func() time.Time
	newID         func() string

	gatesMu sync.Mutex
	gates   map[domain.SessionID]*gate

	submitted metric.Int64Counter
}

func NewService(
	advisor domain.Advisor,
	sessionStore domain.SessionStore,
	consultations domain.ConsultationStore,
	texts *locale.Table,
) *Service {
	counter, err := otel.Meter(observability.InstrumentationName).Int64Counter(
		"agribharat.consultations",
		metric.WithDescription("Consultations submitted, by type and outcome"),
	)
	if err != nil {
		observability.Logger().Warn("failed to create counter", "error", err)
	}

	return &Service{
		advisor:       advisor,
		sessionStore:  sessionStore,
		consultations: consultations,
		texts:         texts,
		now:           time.Now,
		newID:         uuid.NewString,
		gates:         make(map[domain.SessionID]*gate),
		submitted:     counter,
	}
}

type StartSessionInput struct {
	Language string // optional, defaults to English
}

func (s *Service) StartSession(ctx context.Context, in StartSessionInput) (*domain.Session, error) {
	lang := domain.DefaultLanguage
	if strings.TrimSpace(in.Language) != "" {
		parsed, ok := domain.ParseLanguage(in.Language)
		if !ok {
			return nil, s.invalid(domain.DefaultLanguage, "language", locale.KeyUnsupportedLanguage)
		}
		lang = parsed
	}

	now := s.now()
	session := &domain.Session{
		ID:               domain.SessionID(s.newID()),
		SelectedLanguage: lang,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	log := observability.LoggerFromContext(ctx).With("session_id", session.ID)
	if err := s.sessionStore.CreateSession(ctx, session); err != nil {
		log.Error("failed to create session", "error", err)
		return nil, err
	}

	log.Info("session started", "language", lang)
	return session, nil
}

// SessionView is a session together with its chronological history.
type SessionView struct {
	Session *domain.Session
	History []*domain.ConsultationRecord
	Total   int
}

func (s *Service) GetSession(ctx context.Context, id domain.SessionID) (*SessionView, error) {
	session, err := s.sessionStore.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	history, err := s.consultations.ListConsultations(ctx, id)
	if err != nil {
		observability.LoggerFromContext(ctx).Error("failed to list consultations", "session_id", id, "error", err)
		return nil, err
	}

	return &SessionView{Session: session, History: history, Total: len(history)}, nil
}

// SessionLanguage returns the session's selected language, or English when
// the session cannot be read.
func (s *Service) SessionLanguage(ctx context.Context, id domain.SessionID) domain.Language {
	session, err := s.sessionStore.GetSession(ctx, id)
	if err != nil {
		return domain.DefaultLanguage
	}
	return session.SelectedLanguage
}

type SetLanguageOutput struct {
	Session *domain.Session
	// Refresh is set when the language changed and every visible label must be
	// re-rendered.
	Refresh bool
}

func (s *Service) SetLanguage(ctx context.Context, id domain.SessionID, language string) (*SetLanguageOutput, error) {
	session, err := s.sessionStore.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}

	lang, ok := domain.ParseLanguage(language)
	if !ok {
		return nil, s.invalid(session.SelectedLanguage, "language", locale.KeyUnsupportedLanguage)
	}

	if lang == session.SelectedLanguage {
		return &SetLanguageOutput{Session: session}, nil
	}

	log := observability.LoggerFromContext(ctx).With("session_id", id)

	previous := session.SelectedLanguage
	session.SelectedLanguage = lang
	session.UpdatedAt = s.now()
	if err := s.sessionStore.UpdateSession(ctx, session); err != nil {
		log.Error("failed to update session", "error", err)
		return nil, err
	}

	log.Info("language changed", "from", previous, "to", lang)
	return &SetLanguageOutput{Session: session, Refresh: true}, nil
}

// Outcome is the result of a successful submit.
type Outcome struct {
	Record   *domain.ConsultationRecord
	Response string
	// Image echoes the uploaded picture for disease analysis so it can be
	// shown next to the answer.
	Image *domain.Image
}

type TextQueryInput struct {
	SessionID domain.SessionID
	Question  string
	Language  string // empty means the session's selected language
}

func (s *Service) SubmitTextQuery(ctx context.Context, in TextQueryInput) (*Outcome, error) {
	session, lang, err := s.prepare(ctx, in.SessionID, in.Language)
	if err != nil {
		return nil, err
	}
	if isBlank(in.Question) {
		return nil, s.invalid(lang, "question", locale.KeyNoQuestion)
	}

	return s.dispatch(ctx, session, request{
		typ:      domain.TypeCropQuery,
		question: in.Question,
		lang:     lang,
		call: func(ctx context.Context) (string, error) {
			return s.advisor.AnswerQuestion(ctx, in.Question, lang)
		},
	})
}

type ImageQueryInput struct {
	SessionID domain.SessionID
	Image     []byte
	MimeType  string // declared by the uploader; used when the bytes are not recognised
	Question  string // optional; a localized default is used when blank
	Language  string
}

func (s *Service) SubmitImageQuery(ctx context.Context, in ImageQueryInput) (*Outcome, error) {
	session, lang, err := s.prepare(ctx, in.SessionID, in.Language)
	if err != nil {
		return nil, err
	}
	if len(in.Image) == 0 {
		return nil, s.invalid(lang, "image", locale.KeyNoImage)
	}
	mimeType := imageMimeType(in.Image, in.MimeType)

	question := in.Question
	if isBlank(question) {
		question = s.texts.Text(lang, locale.KeyImageQuestionPlaceholder)
	}
	image := domain.Image{Data: in.Image, MimeType: mimeType}

	out, err := s.dispatch(ctx, session, request{
		typ:      domain.TypeDiseaseAnalysis,
		question: question,
		lang:     lang,
		call: func(ctx context.Context) (string, error) {
			return s.advisor.AnalyzeDisease(ctx, image, question, lang)
		},
	})
	if err != nil {
		return nil, err
	}
	out.Image = &image
	return out, nil
}

type MarketQueryInput struct {
	SessionID domain.SessionID
	CropName  string
	Language  string
}

func (s *Service) SubmitMarketQuery(ctx context.Context, in MarketQueryInput) (*Outcome, error) {
	session, lang, err := s.prepare(ctx, in.SessionID, in.Language)
	if err != nil {
		return nil, err
	}
	if isBlank(in.CropName) {
		return nil, s.invalid(lang, "crop_name", locale.KeyNoCropName)
	}

	return s.dispatch(ctx, session, request{
		typ:      domain.TypeMarketAnalysis,
		question: "Market trends for " + in.CropName,
		lang:     lang,
		call: func(ctx context.Context) (string, error) {
			return s.advisor.AnalyzeMarket(ctx, in.CropName, lang)
		},
	})
}

type SchemeQueryInput struct {
	SessionID   domain.SessionID
	SchemeQuery string
	Language    string
}

func (s *Service) SubmitSchemeQuery(ctx context.Context, in SchemeQueryInput) (*Outcome, error) {
	session, lang, err := s.prepare(ctx, in.SessionID, in.Language)
	if err != nil {
		return nil, err
	}
	if isBlank(in.SchemeQuery) {
		return nil, s.invalid(lang, "scheme_query", locale.KeyNoSchemeQuery)
	}

	return s.dispatch(ctx, session, request{
		typ:      domain.TypeGovernmentSchemes,
		question: in.SchemeQuery,
		lang:     lang,
		call: func(ctx context.Context) (string, error) {
			return s.advisor.LookupSchemes(ctx, in.SchemeQuery, lang)
		},
	})
}

type request struct {
	typ      domain.ConsultationType
	question string
	lang     domain.Language
	call     func(ctx context.Context) (string, error)
}

// prepare loads the session and resolves the language in effect for this
// call: the explicit one if given, else the session's current selection.
func (s *Service) prepare(ctx context.Context, id domain.SessionID, language string) (*domain.Session, domain.Language, error) {
	session, err := s.sessionStore.GetSession(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if strings.TrimSpace(language) == "" {
		return session, session.SelectedLanguage, nil
	}
	lang, ok := domain.ParseLanguage(language)
	if !ok {
		return nil, "", s.invalid(session.SelectedLanguage, "language", locale.KeyUnsupportedLanguage)
	}
	return session, lang, nil
}

// dispatch runs one validated request under the session gate: the advisor
// call and the history append happen while no other submit for the same
// session can start.
func (s *Service) dispatch(ctx context.Context, session *domain.Session, req request) (*Outcome, error) {
	log := observability.LoggerFromContext(ctx).With(
		"session_id", session.ID,
		"type", req.typ,
		"language", req.lang,
	)

	release, err := s.acquire(ctx, session.ID)
	if err != nil {
		log.Warn("gave up waiting for in-flight request", "error", err)
		return nil, err
	}
	defer release()

	log.Info("dispatching consultation")
	start := s.now()

	// Once dispatched the advisor call runs to completion even if the caller
	// goes away.
	response, err := req.call(context.WithoutCancel(ctx))
	if err != nil {
		log.Error("advisor failed", "error", err, "elapsed_ms", s.now().Sub(start).Milliseconds())
		s.count(ctx, req.typ, "backend_error")
		return nil, &domain.BackendError{Capability: string(req.typ), Err: err}
	}

	storeCtx := context.WithoutCancel(ctx)
	existing, err := s.consultations.ListConsultations(storeCtx, session.ID)
	if err != nil {
		log.Error("failed to read history", "error", err)
		return nil, err
	}

	rec := &domain.ConsultationRecord{
		ID:        domain.ConsultationID(s.newID()),
		SessionID: session.ID,
		Seq:       len(existing),
		Type:      req.typ,
		Question:  req.question,
		Response:  response,
		Language:  req.lang,
		CreatedAt: s.now(),
	}
	if err := s.consultations.AppendConsultation(storeCtx, rec); err != nil {
		log.Error("failed to append consultation", "error", err)
		return nil, err
	}

	s.count(ctx, req.typ, "ok")
	log.Info("consultation recorded", "seq", rec.Seq, "elapsed_ms", s.now().Sub(start).Milliseconds())

	return &Outcome{Record: rec, Response: response}, nil
}

// gate admits one submit per session. refs counts the holder plus waiters;
// the entry is dropped when it reaches zero.
type gate struct {
	slot chan struct{}
	refs int
}

func (s *Service) acquire(ctx context.Context, id domain.SessionID) (func(), error) {
	s.gatesMu.Lock()
	g, ok := s.gates[id]
	if !ok {
		g = &gate{slot: make(chan struct{}, 1)}
		s.gates[id] = g
	}
	g.refs++
	s.gatesMu.Unlock()

	select {
	case g.slot <- struct{}{}:
		return func() {
			<-g.slot
			s.unref(id, g)
		}, nil
	case <-ctx.Done():
		s.unref(id, g)
		return nil, ctx.Err()
	}
}

func (s *Service) unref(id domain.SessionID, g *gate) {
	s.gatesMu.Lock()
	defer s.gatesMu.Unlock()

	g.refs--
	if g.refs == 0 {
		delete(s.gates, id)
	}
}

func (s *Service) invalid(lang domain.Language, field, key string) error {
	return &domain.ValidationError{
		Field:   field,
		Key:     key,
		Message: s.texts.Text(lang, key),
	}
}

func (s *Service) count(ctx context.Context, typ domain.ConsultationType, outcome string) {
	if s.submitted == nil {
		return
	}
	s.submitted.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", string(typ)),
		attribute.String("outcome", outcome),
	))
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// imageMimeType sniffs the payload and falls back to the declared type. Any
// non-empty payload is accepted; the type is only a hint for the advisor.
func imageMimeType(data []byte, declared string) string {
	if ct := http.DetectContentType(data); strings.HasPrefix(ct, "image/") {
		return ct
	}
	if declared = strings.TrimSpace(declared); declared != "" {
		return declared
	}
	return "application/octet-stream"
}

package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/agribharat/agribharat-api/internal/app/consultation"
	"github.com/agribharat/agribharat-api/internal/domain"
	"github.com/agribharat/agribharat-api/internal/locale"
	"github.com/agribharat/agribharat-api/internal/observability"
)

type Server struct {
	svc            *consultation.Service
	texts          *locale.Table
	maxUploadBytes int64
}

// NewServer builds the HTTP API with request-id, logging and CORS
// middlewares applied.
func NewServer(svc *consultation.Service, texts *locale.Table, maxUploadBytes int64) http.Handler {
	s := &Server{svc: svc, texts: texts, maxUploadBytes: maxUploadBytes}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		methodNotAllowed(w)
	})

	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/languages", s.handleLanguages).Methods(http.MethodGet)

	r.HandleFunc("/sessions", s.handleCreateSession).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}", s.handleGetSession).Methods(http.MethodGet)
	r.HandleFunc("/sessions/{id}/language", s.handleSetLanguage).Methods(http.MethodPut)

	r.HandleFunc("/sessions/{id}/queries/text", s.handleTextQuery).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}/queries/image", s.handleImageQuery).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}/queries/market", s.handleMarketQuery).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}/queries/schemes", s.handleSchemeQuery).Methods(http.MethodPost)

	r.HandleFunc("/sessions/{id}/history/export", s.handleExport).Methods(http.MethodGet)

	return chainMiddlewares(r, withCORS, withLogging, withRequestID)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type createSessionRequest struct {
	Language string `json:"language,omitempty"`
}

type sessionResponse struct {
	ID               string    `json:"id"`
	SelectedLanguage string    `json:"selected_language"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type consultationResponse struct {
	ID        string    `json:"id"`
	Seq       int       `json:"seq"`
	Type      string    `json:"type"`
	Question  string    `json:"question"`
	Response  string    `json:"response"`
	Language  string    `json:"language"`
	CreatedAt time.Time `json:"created_at"`
}

type getSessionResponse struct {
	Session            sessionResponse        `json:"session"`
	History            []consultationResponse `json:"history"`
	TotalConsultations int                    `json:"total_consultations"`
	// Localized labels for the client, in the session's language.
	TotalLabel     string `json:"total_consultations_label"`
	NoHistoryLabel string `json:"no_history_message,omitempty"`
}

type setLanguageRequest struct {
	Language string `json:"language"`
}

type setLanguageResponse struct {
	Language string `json:"language"`
	Refresh  bool   `json:"refresh"`
}

type textQueryRequest struct {
	Question string `json:"question"`
	Language string `json:"language,omitempty"`
}

type marketQueryRequest struct {
	CropName string `json:"crop_name"`
	Language string `json:"language,omitempty"`
}

type schemeQueryRequest struct {
	SchemeQuery string `json:"scheme_query"`
	Language    string `json:"language,omitempty"`
}

type imageResponse struct {
	MimeType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

type outcomeResponse struct {
	Response     string               `json:"response"`
	Consultation consultationResponse `json:"consultation"`
	Image        *imageResponse       `json:"image,omitempty"`
}

type languagesResponse struct {
	Languages []string `json:"languages"`
	Default   string   `json:"default"`
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLanguages(w http.ResponseWriter, _ *http.Request) {
	resp := languagesResponse{Default: string(domain.DefaultLanguage)}
	for _, l := range domain.Languages {
		resp.Languages = append(resp.Languages, string(l))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if !s.decode(w, r, &req) {
		return
	}

	session, err := s.svc.StartSession(r.Context(), consultation.StartSessionInput{Language: req.Language})
	if err != nil {
		s.writeError(w, r, "", req.Language, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSessionResponse(session))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)

	view, err := s.svc.GetSession(r.Context(), id)
	if err != nil {
		s.writeError(w, r, id, "", err)
		return
	}

	lang := view.Session.SelectedLanguage
	resp := getSessionResponse{
		Session:            toSessionResponse(view.Session),
		History:            make([]consultationResponse, 0, len(view.History)),
		TotalConsultations: view.Total,
		TotalLabel:         s.texts.Text(lang, locale.KeyTotalConsultations),
	}
	for _, rec := range view.History {
		resp.History = append(resp.History, toConsultationResponse(rec))
	}
	if view.Total == 0 {
		resp.NoHistoryLabel = s.texts.Text(lang, locale.KeyNoHistory)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetLanguage(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)

	var req setLanguageRequest
	if !s.decode(w, r, &req) {
		return
	}

	out, err := s.svc.SetLanguage(r.Context(), id, req.Language)
	if err != nil {
		s.writeError(w, r, id, "", err)
		return
	}

	writeJSON(w, http.StatusOK, setLanguageResponse{
		Language: string(out.Session.SelectedLanguage),
		Refresh:  out.Refresh,
	})
}

func (s *Server) handleTextQuery(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)

	var req textQueryRequest
	if !s.decode(w, r, &req) {
		return
	}

	out, err := s.svc.SubmitTextQuery(r.Context(), consultation.TextQueryInput{
		SessionID: id,
		Question:  req.Question,
		Language:  req.Language,
	})
	s.writeOutcome(w, r, id, req.Language, out, err)
}

func (s *Server) handleImageQuery(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{
				"error": fmt.Sprintf("image larger than %d bytes", s.maxUploadBytes),
			})
			return
		}
		badRequest(w, "invalid multipart body")
		return
	}

	language := r.FormValue("language")

	// A missing file is left to the service so the message is localized.
	var (
		data     []byte
		declared string
	)
	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		if !acceptedUpload(header) {
			lang := s.requestLanguage(r, id, language)
			s.writeError(w, r, id, language, &domain.ValidationError{
				Field:   "image",
				Key:     locale.KeyUnsupportedImage,
				Message: s.texts.Text(lang, locale.KeyUnsupportedImage),
			})
			return
		}
		declared = header.Header.Get("Content-Type")
		data, err = io.ReadAll(file)
		if err != nil {
			badRequest(w, "could not read image")
			return
		}
	case !errors.Is(err, http.ErrMissingFile):
		badRequest(w, "invalid image field")
		return
	}

	out, err := s.svc.SubmitImageQuery(r.Context(), consultation.ImageQueryInput{
		SessionID: id,
		Image:     data,
		MimeType:  declared,
		Question:  r.FormValue("question"),
		Language:  language,
	})
	s.writeOutcome(w, r, id, language, out, err)
}

func (s *Server) handleMarketQuery(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)

	var req marketQueryRequest
	if !s.decode(w, r, &req) {
		return
	}

	out, err := s.svc.SubmitMarketQuery(r.Context(), consultation.MarketQueryInput{
		SessionID: id,
		CropName:  req.CropName,
		Language:  req.Language,
	})
	s.writeOutcome(w, r, id, req.Language, out, err)
}

func (s *Server) handleSchemeQuery(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)

	var req schemeQueryRequest
	if !s.decode(w, r, &req) {
		return
	}

	out, err := s.svc.SubmitSchemeQuery(r.Context(), consultation.SchemeQueryInput{
		SessionID:   id,
		SchemeQuery: req.SchemeQuery,
		Language:    req.Language,
	})
	s.writeOutcome(w, r, id, req.Language, out, err)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)

	exp, err := s.svc.ExportHistory(r.Context(), id)
	if err != nil {
		s.writeError(w, r, id, "", err)
		return
	}

	if exp.Empty {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", exp.ContentType+"; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exp.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(exp.Data)
}

// ─────────────────────────────────────────────
// Consultation helpers
// ─────────────────────────────────────────────

// acceptedUpload lets through the photo formats the upload form offers: a
// .jpg, .jpeg or .png file name, or a JPEG/PNG part content type.
func acceptedUpload(h *multipart.FileHeader) bool {
	switch strings.ToLower(filepath.Ext(h.Filename)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	switch strings.ToLower(h.Header.Get("Content-Type")) {
	case "image/jpeg", "image/jpg", "image/png":
		return true
	}
	return false
}

func sessionID(r *http.Request) domain.SessionID {
	return domain.SessionID(mux.Vars(r)["id"])
}

func (s *Server) writeOutcome(w http.ResponseWriter, r *http.Request, id domain.SessionID, language string, out *consultation.Outcome, err error) {
	if err != nil {
		s.writeError(w, r, id, language, err)
		return
	}

	resp := outcomeResponse{
		Response:     out.Response,
		Consultation: toConsultationResponse(out.Record),
	}
	if out.Image != nil {
		resp.Image = &imageResponse{MimeType: out.Image.MimeType, Data: out.Image.Data}
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeError maps service errors to status codes. Messages get the error
// prefix of the language the request was made in.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, id domain.SessionID, requested string, err error) {
	lang := s.requestLanguage(r, id, requested)

	var (
		verr *domain.ValidationError
		berr *domain.BackendError
	)
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": s.texts.ErrorMessage(lang, verr.Message),
			"field": verr.Field,
		})
	case errors.As(err, &berr):
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error": s.texts.ErrorMessage(lang, berr.Error()),
		})
	case errors.Is(err, domain.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": s.texts.ErrorMessage(lang, s.texts.Text(lang, locale.KeySessionNotFound)),
		})
	default:
		internalError(w, r, err)
	}
}

// requestLanguage is the language a request was made in: the explicit one
// when valid, else the session's selection, else English.
func (s *Server) requestLanguage(r *http.Request, id domain.SessionID, requested string) domain.Language {
	if lang, ok := domain.ParseLanguage(requested); ok {
		return lang
	}
	if id != "" {
		return s.svc.SessionLanguage(r.Context(), id)
	}
	return domain.DefaultLanguage
}

// decode reads an optional JSON body; an empty body leaves v untouched.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	badRequest(w, "invalid JSON body")
	return false
}

func toSessionResponse(s *domain.Session) sessionResponse {
	return sessionResponse{
		ID:               string(s.ID),
		SelectedLanguage: string(s.SelectedLanguage),
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

func toConsultationResponse(rec *domain.ConsultationRecord) consultationResponse {
	return consultationResponse{
		ID:        string(rec.ID),
		Seq:       rec.Seq,
		Type:      string(rec.Type),
		Question:  rec.Question,
		Response:  rec.Response,
		Language:  string(rec.Language),
		CreatedAt: rec.CreatedAt,
	}
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	observability.LoggerFromContext(r.Context()).Error("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{
		"error": "not found",
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}

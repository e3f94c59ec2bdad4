package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PabloGalante/farum-router/internal/app/classification"
	"github.com/PabloGalante/farum-router/internal/domain"
	"github.com/PabloGalante/farum-router/internal/observability"
)

const (
	defaultUtteranceLimit = 20
	maxUtteranceLimit     = 500
)

type Server struct {
	svc *classification.Service
}

func NewServer(svc *classification.Service) http.Handler {
	s := &Server{svc: svc}
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealthz)

	// /classify → classify one utterance (POST)
	mux.HandleFunc("/classify", s.handleClassify)

	// /utterances?limit=N → recent utterances (GET)
	mux.HandleFunc("/utterances", s.handleUtterances)

	return chainMiddlewares(mux, withLogging, withCORS, withRequestID)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyResponse struct {
	Directives []string `json:"directives"`
	Attempts   int      `json:"attempts"`
}

type unresolvedResponse struct {
	Error    string   `json:"error"`
	Attempts int      `json:"attempts"`
	Last     []string `json:"last"`
}

type utteranceResponse struct {
	ID         string    `json:"id"`
	RequestID  string    `json:"request_id,omitempty"`
	Text       string    `json:"text"`
	ReceivedAt time.Time `json:"received_at"`
}

type utterancesResponse struct {
	Utterances []utteranceResponse `json:"utterances"`
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req classifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		badRequest(w, "text is required")
		return
	}

	res, err := s.svc.Classify(r.Context(), req.Text)
	if err != nil {
		s.classifyError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, classifyResponse{
		Directives: domain.Strings(res.Directives),
		Attempts:   res.Attempts,
	})
}

func (s *Server) classifyError(w http.ResponseWriter, r *http.Request, err error) {
	var unresolved *domain.UnresolvedError

	switch {
	case errors.Is(err, domain.ErrEmptyUtterance):
		badRequest(w, "text is required")
	case errors.As(err, &unresolved):
		writeJSON(w, http.StatusUnprocessableEntity, unresolvedResponse{
			Error:    "classification unresolved",
			Attempts: unresolved.Attempts,
			Last:     domain.Strings(unresolved.Last),
		})
	case errors.Is(err, domain.ErrProvider):
		observability.LoggerFromContext(r.Context()).Error("provider failure", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error": "model provider unavailable",
		})
	default:
		internalError(w, r, err)
	}
}

func (s *Server) handleUtterances(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	limit := defaultUtteranceLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			badRequest(w, "limit must be a positive integer")
			return
		}
		limit = min(n, maxUtteranceLimit)
	}

	entries, err := s.svc.RecentUtterances(r.Context(), limit)
	if err != nil {
		internalError(w, r, err)
		return
	}

	resp := utterancesResponse{Utterances: make([]utteranceResponse, 0, len(entries))}
	for _, e := range entries {
		resp.Utterances = append(resp.Utterances, utteranceResponse{
			ID:         string(e.ID),
			RequestID:  string(e.RequestID),
			Text:       e.Text,
			ReceivedAt: e.ReceivedAt,
		})
	}

	writeJSON(w, http.StatusOK, resp)
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
	observability.LoggerFromContext(r.Context()).Error("internal error", "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}

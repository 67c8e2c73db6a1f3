package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avelier/defi-advisor/assistant"
	"github.com/avelier/defi-advisor/market"
)

// defaultNewsQuery is used when /search is called without a query.
const defaultNewsQuery = "trump"

// SentimentSource provides the fear & greed reading for /sentiment.
type SentimentSource interface {
	FearGreed(ctx context.Context) (market.Index, error)
}

// Server exposes the HTTP API over the assistant service.
type Server struct {
	svc       *assistant.Service
	sentiment SentimentSource
	logger    *log.Logger
	handler   http.Handler
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type processRequest struct {
	InputText string `json:"input_text"`
}

type processResponse struct {
	IntentType string `json:"intent_type"`
}

type searchRequest struct {
	Query string `json:"query"`
}

type searchResponse struct {
	News    []searchItem `json:"news"`
	Summary string       `json:"summary"`
}

type searchItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Date    string `json:"date,omitempty"`
	Source  string `json:"source,omitempty"`
}

type defiInfoResponse struct {
	Result string `json:"result"`
}

// New constructs a Server over the injected services.
func New(svc *assistant.Service, sentiment SentimentSource, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{svc: svc, sentiment: sentiment, logger: logger}
	s.handler = s.requestLogger(s.routes())
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/openapi.yaml", s.handleOpenAPI)
	mux.HandleFunc("/process", s.handleProcess)
	mux.HandleFunc("/search", s.handleSearch)
	mux.HandleFunc("/defiInfo", s.handleDefiInfo)
	mux.HandleFunc("/sentiment", s.handleSentiment)
	return mux
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()[:8]
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Printf("[%s] %s %s (%s)", reqID, r.Method, r.URL.Path, time.Since(start).Round(time.Millisecond))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, http.MethodGet)
		return
	}

	s.writeJSON(w, http.StatusOK, messageResponse{Message: "ok"})
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, http.MethodPost)
		return
	}

	var req processRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	if strings.TrimSpace(req.InputText) == "" {
		s.writeError(w, http.StatusUnprocessableEntity, fmt.Errorf("input_text is required"))
		return
	}

	intent, err := s.svc.Classify(r.Context(), req.InputText)
	if err != nil {
		if errors.Is(err, assistant.ErrUnknownIntent) {
			s.writeError(w, http.StatusBadGateway, fmt.Errorf("classification failed: %w", err))
			return
		}
		s.writeError(w, http.StatusBadGateway, fmt.Errorf("classify input: %w", err))
		return
	}

	s.writeJSON(w, http.StatusOK, processResponse{IntentType: string(intent)})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, http.MethodPost)
		return
	}

	var req searchRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		query = defaultNewsQuery
	}

	digest, err := s.svc.NewsDigest(r.Context(), query)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, fmt.Errorf("news digest: %w", err))
		return
	}

	items := make([]searchItem, len(digest.News))
	for i, item := range digest.News {
		items[i] = searchItem(item)
	}

	s.writeJSON(w, http.StatusOK, searchResponse{News: items, Summary: digest.Summary})
}

func (s *Server) handleDefiInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, http.MethodPost)
		return
	}

	var req processRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	if strings.TrimSpace(req.InputText) == "" {
		s.writeError(w, http.StatusUnprocessableEntity, fmt.Errorf("input_text is required"))
		return
	}

	answer, err := s.svc.Answer(r.Context(), req.InputText)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, fmt.Errorf("answer question: %w", err))
		return
	}

	s.writeJSON(w, http.StatusOK, defiInfoResponse{Result: answer})
}

func (s *Server) handleSentiment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, http.MethodGet)
		return
	}

	if s.sentiment == nil {
		s.writeError(w, http.StatusNotImplemented, fmt.Errorf("sentiment source not configured"))
		return
	}

	index, err := s.sentiment.FearGreed(r.Context())
	if err != nil {
		s.writeError(w, http.StatusBadGateway, fmt.Errorf("fetch sentiment: %w", err))
		return
	}

	s.writeJSON(w, http.StatusOK, index)
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	s.writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed, use %s", allowed))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Printf("encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.logger.Printf("api error (%d): %v", status, err)
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}

	if dec.More() {
		return fmt.Errorf("request body must contain a single JSON object")
	}

	return nil
}

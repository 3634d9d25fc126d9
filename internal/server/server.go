// Package server exposes the sales assistant over HTTP: the chat endpoint,
// admin prospect views, an agent test endpoint, health and stats.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/acmeliving/sophie-go/internal/db"
	"github.com/acmeliving/sophie-go/internal/metrics"
	"github.com/acmeliving/sophie-go/internal/models"
	"github.com/acmeliving/sophie-go/internal/service"
)

// ChatHandler runs one conversation turn. Satisfied by service.ChatService.
type ChatHandler interface {
	HandleMessage(ctx context.Context, req service.ChatRequest) (*service.ChatResponse, error)
}

// ProspectDirectory serves the admin read endpoints. Satisfied by
// service.ProspectService.
type ProspectDirectory interface {
	List(ctx context.Context) ([]service.ProspectSummary, error)
	Detail(ctx context.Context, prospectID string) (*service.ProspectDetail, error)
}

// SpecialistRunner exposes individual pipeline stages for the test
// endpoint. Satisfied by agent.Pipeline.
type SpecialistRunner interface {
	ClassifyIntent(ctx context.Context, userMessage string, history []models.Turn) (models.Intent, error)
	RunSpecialist(ctx context.Context, intent models.Intent, state *models.ConversationState) error
}

// Server holds the HTTP handlers and the per-session turn serialization.
type Server struct {
	chat      ChatHandler
	prospects ProspectDirectory
	agents    SpecialistRunner
	collector *metrics.Collector
	logger    *slog.Logger

	mu    sync.Mutex
	locks map[string]*sessionLock
}

// sessionLock serializes turns for one session and counts holders so the
// entry can be dropped once the session goes idle.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func New(chat ChatHandler, prospects ProspectDirectory, agents SpecialistRunner, collector *metrics.Collector, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		chat:      chat,
		prospects: prospects,
		agents:    agents,
		collector: collector,
		logger:    logger,
		locks:     map[string]*sessionLock{},
	}
}

// Handler builds the route table wrapped in the logging middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /api/admin/prospects", s.handleListProspects)
	mux.HandleFunc("GET /api/admin/prospects/{id}", s.handleProspectDetail)
	mux.HandleFunc("POST /api/test/agent/{name}", s.handleTestAgent)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/chat/ws", s.handleChatWS)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	return s.logging(mux)
}

// lockSession blocks until this turn holds the session's lock. The
// pipeline is not safe for concurrent turns on the same session, so each
// in-flight turn holds its session's lock. The returned func releases it
// and removes the map entry once no other turn holds or waits on it.
func (s *Server) lockSession(sessionID string) func() {
	s.mu.Lock()
	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sessionLock{}
		s.locks[sessionID] = lock
	}
	lock.refs++
	s.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		s.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(s.locks, sessionID)
		}
		s.mu.Unlock()
	}
}

func (s *Server) runTurn(ctx context.Context, req service.ChatRequest) (*service.ChatResponse, error) {
	if req.SessionID != "" {
		unlock := s.lockSession(req.SessionID)
		defer unlock()
	}
	return s.chat.HandleMessage(ctx, req)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req service.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	resp, err := s.runTurn(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrEmptyMessage) {
			writeError(w, http.StatusBadRequest, "Message is required")
			return
		}
		s.logger.Error("chat turn failed", "session_id", req.SessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListProspects(w http.ResponseWriter, r *http.Request) {
	prospects, err := s.prospects.List(r.Context())
	if err != nil {
		s.logger.Error("list prospects failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"prospects": prospects})
}

func (s *Server) handleProspectDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	detail, err := s.prospects.Detail(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Prospect not found")
			return
		}
		s.logger.Error("prospect detail failed", "prospect_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// testAgents maps URL agent names to pipeline intents. "intent" runs the
// classifier instead of a responder.
var testAgents = map[string]models.Intent{
	"pricing":   models.IntentPricing,
	"tour":      models.IntentTourScheduling,
	"amenities": models.IntentAmenities,
	"financing": models.IntentFinancing,
	"general":   models.IntentGeneralInfo,
}

func (s *Server) handleTestAgent(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}

	if name == "intent" {
		intent, err := s.agents.ClassifyIntent(r.Context(), req.Message, nil)
		if err != nil {
			s.logger.Error("classifier test failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"agent":    name,
			"input":    req.Message,
			"output":   intent,
			"metadata": map[string]any{"intent": intent},
		})
		return
	}

	intent, ok := testAgents[name]
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid agent name. Available: intent, pricing, tour, amenities, financing, general")
		return
	}

	state := &models.ConversationState{
		SessionID:   uuid.NewString(),
		UserMessage: req.Message,
	}
	if err := s.agents.RunSpecialist(r.Context(), intent, state); err != nil {
		s.logger.Error("agent test failed", "agent", name, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"agent":       name,
		"input":       req.Message,
		"output":      state.AgentResponse,
		"rag_context": state.RAGContext,
		"metadata":    map[string]any{"intent": state.Intent},
	})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	if s.collector == nil {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, s.collector.Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

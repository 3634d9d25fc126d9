// Package service provides the business logic between the HTTP/CLI
// surfaces and the conversation pipeline: session and prospect lifecycle,
// turn persistence, knowledge seeding, and admin views.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/acmeliving/sophie-go/internal/db"
	"github.com/acmeliving/sophie-go/internal/models"
)

// ErrEmptyMessage is returned when a chat request carries no message.
var ErrEmptyMessage = errors.New("message is required")

// TurnRunner runs one conversation turn. Satisfied by agent.Pipeline.
type TurnRunner interface {
	RunTurn(ctx context.Context, state *models.ConversationState) error
}

// ChatStore is the persistence surface the chat flow needs. Satisfied by
// db.Client.
type ChatStore interface {
	CreateProspect(ctx context.Context) (*models.Prospect, error)
	GetProspect(ctx context.Context, id string) (*models.Prospect, error)
	UpdateProspect(ctx context.Context, p *models.Prospect) error
	CreateSession(ctx context.Context, prospectID string) (*models.Session, error)
	GetSession(ctx context.Context, id string) (*models.Session, error)
	SaveSession(ctx context.Context, s *models.Session) error
	InsertEvents(ctx context.Context, sessionID, extractedBy string, events []models.EnrichmentEvent) error
}

// ChatRequest is one inbound user message. SessionID and ProspectID are
// optional; unknown IDs get fresh records rather than an error so a client
// with a stale ID can always keep talking.
type ChatRequest struct {
	SessionID  string `json:"session_id,omitempty"`
	ProspectID string `json:"prospect_id,omitempty"`
	Message    string `json:"message"`
}

// ChatResponse is the reply for one turn.
type ChatResponse struct {
	SessionID     string                `json:"session_id"`
	ProspectID    string                `json:"prospect_id"`
	Response      string                `json:"response"`
	Intent        models.Intent         `json:"intent"`
	Understanding *models.Understanding `json:"current_understanding"`
}

// ChatService owns the per-turn persistence around the pipeline.
type ChatService struct {
	store  ChatStore
	runner TurnRunner

	now func() time.Time
}

func NewChatService(store ChatStore, runner TurnRunner) *ChatService {
	return &ChatService{
		store:  store,
		runner: runner,
		now:    time.Now,
	}
}

// HandleMessage runs one full turn: resolve prospect and session, execute
// the pipeline, persist history, understanding and events, and fill in
// prospect contact fields the conversation surfaced. Contact fields follow
// fill-in semantics: a value already on the prospect record is never
// overwritten by a later turn.
func (s *ChatService) HandleMessage(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, ErrEmptyMessage
	}

	prospect, err := s.resolveProspect(ctx, req.ProspectID)
	if err != nil {
		return nil, err
	}
	prospectID, err := models.RecordIDString(prospect.ID)
	if err != nil {
		return nil, err
	}

	session, err := s.resolveSession(ctx, req.SessionID, prospectID)
	if err != nil {
		return nil, err
	}
	sessionID, err := models.RecordIDString(session.ID)
	if err != nil {
		return nil, err
	}

	state := &models.ConversationState{
		SessionID:     sessionID,
		UserMessage:   req.Message,
		History:       session.History,
		Understanding: session.Understanding.Clone(),
	}

	if err := s.runner.RunTurn(ctx, state); err != nil {
		return nil, fmt.Errorf("run turn: %w", err)
	}

	now := s.now().UTC()
	session.History = append(session.History,
		models.Turn{Role: models.RoleUser, Content: req.Message, Timestamp: now},
		models.Turn{Role: models.RoleAssistant, Content: state.AgentResponse, Intent: state.Intent, Timestamp: now},
	)
	session.Understanding = state.Understanding
	if err := s.store.SaveSession(ctx, session); err != nil {
		return nil, err
	}

	if len(state.Events) > 0 {
		agentName := string(state.Intent) + "_agent"
		if err := s.store.InsertEvents(ctx, sessionID, agentName, state.Events); err != nil {
			// Events are an enrichment side-channel; the reply already
			// exists, so log and move on.
			slog.Error("failed to persist enrichment events",
				"session_id", sessionID, "error", err)
		}
	}

	if err := s.updateProspect(ctx, prospect, state); err != nil {
		slog.Error("failed to update prospect",
			"prospect_id", prospectID, "error", err)
	}

	return &ChatResponse{
		SessionID:     sessionID,
		ProspectID:    prospectID,
		Response:      state.AgentResponse,
		Intent:        state.Intent,
		Understanding: state.Understanding,
	}, nil
}

func (s *ChatService) resolveProspect(ctx context.Context, id string) (*models.Prospect, error) {
	if id != "" {
		prospect, err := s.store.GetProspect(ctx, id)
		if err == nil {
			return prospect, nil
		}
		if !errors.Is(err, db.ErrNotFound) {
			return nil, err
		}
	}
	return s.store.CreateProspect(ctx)
}

func (s *ChatService) resolveSession(ctx context.Context, id, prospectID string) (*models.Session, error) {
	if id != "" {
		session, err := s.store.GetSession(ctx, id)
		if err == nil {
			// A session ID presented with the wrong prospect gets a fresh
			// session instead of leaking another prospect's history.
			if session.Prospect != nil {
				if owner, idErr := models.RecordIDString(*session.Prospect); idErr == nil && owner == prospectID {
					return session, nil
				}
			}
		} else if !errors.Is(err, db.ErrNotFound) {
			return nil, err
		}
	}
	return s.store.CreateSession(ctx, prospectID)
}

// updateProspect copies newly learned contact details onto the prospect
// record and flags a scheduled tour, parsing the spoken date/time into a
// concrete timestamp when possible.
func (s *ChatService) updateProspect(ctx context.Context, prospect *models.Prospect, state *models.ConversationState) error {
	u := state.Understanding
	if u == nil {
		return nil
	}

	changed := false
	if u.Name != "" && prospect.FirstName == "" {
		parts := strings.SplitN(strings.TrimSpace(u.Name), " ", 2)
		prospect.FirstName = parts[0]
		if len(parts) > 1 {
			prospect.LastName = parts[1]
		}
		changed = true
	}
	if u.Email != "" && prospect.Email == "" {
		prospect.Email = u.Email
		changed = true
	}
	if u.Phone != "" && prospect.Phone == "" {
		prospect.Phone = u.Phone
		changed = true
	}
	if u.TourScheduled != "" {
		prospect.TourScheduled = true
		for _, ev := range state.Events {
			if ev.Type != models.EventTourScheduled {
				continue
			}
			if when := ParseTourDatetime(s.now(), ev.Data.Date, ev.Data.Time); !when.IsZero() {
				prospect.TourDatetime = &when
			}
			break
		}
		changed = true
	}

	if !changed {
		return nil
	}
	return s.store.UpdateProspect(ctx, prospect)
}

package service

import (
	"context"
	"time"

	"github.com/acmeliving/sophie-go/internal/models"
)

// AdminStore is the read surface for the admin views. Satisfied by
// db.Client.
type AdminStore interface {
	ListProspects(ctx context.Context) ([]models.Prospect, error)
	GetProspect(ctx context.Context, id string) (*models.Prospect, error)
	ListSessionsForProspect(ctx context.Context, prospectID string) ([]models.Session, error)
	ListEventsForProspect(ctx context.Context, prospectID string) ([]models.StoredEvent, error)
}

// ProspectSummary is one row in the admin prospect list.
type ProspectSummary struct {
	ProspectID      string                `json:"prospect_id"`
	FirstName       string                `json:"first_name"`
	LastName        string                `json:"last_name"`
	Email           string                `json:"email"`
	Phone           string                `json:"phone"`
	TourScheduled   bool                  `json:"tour_scheduled"`
	TourDatetime    *time.Time            `json:"tour_datetime"`
	TotalSessions   int                   `json:"total_sessions"`
	LastInteraction *time.Time            `json:"last_interaction"`
	Understanding   *models.Understanding `json:"current_understanding"`
}

// SessionView is one session in the prospect detail response.
type SessionView struct {
	SessionID       string                `json:"session_id"`
	History         []models.Turn         `json:"conversation_history"`
	Understanding   *models.Understanding `json:"current_understanding"`
	CreatedAt       time.Time             `json:"created_at"`
	LastInteraction time.Time             `json:"last_interaction"`
}

// EventView is one enrichment event in the prospect detail response.
type EventView struct {
	EventType        models.EventType `json:"event_type"`
	EventData        models.EventData `json:"event_data"`
	ExtractedByAgent string           `json:"extracted_by_agent"`
	SourceMessage    string           `json:"source_message"`
	Confidence       float64          `json:"confidence"`
	CreatedAt        time.Time        `json:"created_at"`
}

// ProspectDetail is the full admin view of one prospect.
type ProspectDetail struct {
	Prospect ProspectSummary `json:"prospect"`
	Sessions []SessionView   `json:"sessions"`
	Events   []EventView     `json:"enrichment_events"`
}

// ProspectService serves the admin read endpoints.
type ProspectService struct {
	store AdminStore
}

func NewProspectService(store AdminStore) *ProspectService {
	return &ProspectService{store: store}
}

// List returns every prospect with session counts and the understanding
// from their most recently updated session.
func (s *ProspectService) List(ctx context.Context) ([]ProspectSummary, error) {
	prospects, err := s.store.ListProspects(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]ProspectSummary, 0, len(prospects))
	for i := range prospects {
		p := &prospects[i]
		id, err := models.RecordIDString(p.ID)
		if err != nil {
			return nil, err
		}

		summary := summarizeProspect(id, p)
		sessions, err := s.store.ListSessionsForProspect(ctx, id)
		if err != nil {
			return nil, err
		}
		summary.TotalSessions = len(sessions)
		if len(sessions) > 0 {
			latest := sessions[0]
			summary.LastInteraction = &latest.UpdatedAt
			summary.Understanding = latest.Understanding
		}

		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// Detail returns one prospect with all sessions and enrichment events.
// Returns db.ErrNotFound (wrapped) for an unknown prospect.
func (s *ProspectService) Detail(ctx context.Context, prospectID string) (*ProspectDetail, error) {
	prospect, err := s.store.GetProspect(ctx, prospectID)
	if err != nil {
		return nil, err
	}

	detail := &ProspectDetail{
		Prospect: summarizeProspect(prospectID, prospect),
		Sessions: []SessionView{},
		Events:   []EventView{},
	}

	sessions, err := s.store.ListSessionsForProspect(ctx, prospectID)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		sess := &sessions[i]
		id, err := models.RecordIDString(sess.ID)
		if err != nil {
			return nil, err
		}
		detail.Sessions = append(detail.Sessions, SessionView{
			SessionID:       id,
			History:         sess.History,
			Understanding:   sess.Understanding,
			CreatedAt:       sess.StartedAt,
			LastInteraction: sess.UpdatedAt,
		})
	}

	events, err := s.store.ListEventsForProspect(ctx, prospectID)
	if err != nil {
		return nil, err
	}
	for _, ev := range events {
		detail.Events = append(detail.Events, EventView{
			EventType:        ev.Type,
			EventData:        ev.Data,
			ExtractedByAgent: ev.ExtractedByAgent,
			SourceMessage:    ev.SourceMessage,
			Confidence:       ev.Confidence,
			CreatedAt:        ev.CreatedAt,
		})
	}

	return detail, nil
}

func summarizeProspect(id string, p *models.Prospect) ProspectSummary {
	return ProspectSummary{
		ProspectID:    id,
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		Email:         p.Email,
		Phone:         p.Phone,
		TourScheduled: p.TourScheduled,
		TourDatetime:  p.TourDatetime,
	}
}

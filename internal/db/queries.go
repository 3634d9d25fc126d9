package db

import (
	"context"
	"fmt"

	"github.com/acmeliving/sophie-go/internal/models"
	"github.com/google/uuid"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// knowledgeHit is the row shape returned by the KNN search, with the cosine
// similarity projected alongside the record fields.
type knowledgeHit struct {
	ID              surrealmodels.RecordID `json:"id"`
	Category        string                 `json:"category"`
	Content         string                 `json:"content"`
	Metadata        map[string]any         `json:"metadata,omitempty"`
	SimilarityScore float64                `json:"similarity_score"`
}

// SearchKnowledge performs a KNN search over the knowledge table, optionally
// restricted to a category set. Results are ordered by cosine similarity.
func (c *Client) SearchKnowledge(ctx context.Context, embedding []float32, categories []string, topK int) ([]models.KnowledgeSnippet, error) {
	if topK <= 0 {
		topK = 5
	}

	categoryClause := ""
	if len(categories) > 0 {
		categoryClause = "AND category INSIDE $categories"
	}

	sql := fmt.Sprintf(`
		SELECT id, category, content, metadata,
			vector::similarity::cosine(embedding, $emb) AS similarity_score
		FROM knowledge
		WHERE embedding <|%d,40|> $emb %s
		ORDER BY similarity_score DESC
		LIMIT $limit
	`, topK, categoryClause)

	vars := map[string]any{
		"emb":   embedding,
		"limit": topK,
	}
	if len(categories) > 0 {
		vars["categories"] = categories
	}

	results, err := surrealdb.Query[[]knowledgeHit](ctx, c.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("search knowledge: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return []models.KnowledgeSnippet{}, nil
	}

	hits := (*results)[0].Result
	snippets := make([]models.KnowledgeSnippet, 0, len(hits))
	for _, hit := range hits {
		id, err := models.RecordIDString(hit.ID)
		if err != nil {
			return nil, fmt.Errorf("search knowledge: %w", err)
		}
		snippets = append(snippets, models.KnowledgeSnippet{
			ID:              id,
			Category:        hit.Category,
			Content:         hit.Content,
			Metadata:        hit.Metadata,
			SimilarityScore: hit.SimilarityScore,
		})
	}
	return snippets, nil
}

// CreateKnowledge inserts one fact with its embedding.
func (c *Client) CreateKnowledge(ctx context.Context, category, content string, metadata map[string]any, embedding []float32) (*models.Knowledge, error) {
	sql := `
		CREATE type::record("knowledge", $id) SET
			category = $category,
			content = $content,
			metadata = $metadata,
			embedding = $embedding
		RETURN AFTER
	`

	results, err := surrealdb.Query[[]models.Knowledge](ctx, c.db, sql, map[string]any{
		"id":        uuid.NewString(),
		"category":  category,
		"content":   content,
		"metadata":  metadata,
		"embedding": embedding,
	})
	if err != nil {
		return nil, fmt.Errorf("create knowledge: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("create knowledge: no result returned")
	}
	return &(*results)[0].Result[0], nil
}

// CountKnowledge returns the number of facts in the knowledge base.
func (c *Client) CountKnowledge(ctx context.Context) (int, error) {
	results, err := surrealdb.Query[[]struct {
		C int `json:"c"`
	}](ctx, c.db, `SELECT count() AS c FROM knowledge GROUP ALL`, nil)
	if err != nil {
		return 0, fmt.Errorf("count knowledge: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return 0, nil
	}
	return (*results)[0].Result[0].C, nil
}

// DeleteAllKnowledge clears the knowledge base (used before reseeding).
func (c *Client) DeleteAllKnowledge(ctx context.Context) error {
	if _, err := surrealdb.Query[any](ctx, c.db, `DELETE knowledge`, nil); err != nil {
		return fmt.Errorf("delete knowledge: %w", wrapQueryError(err))
	}
	return nil
}

// CreateProspect creates an empty prospect record.
func (c *Client) CreateProspect(ctx context.Context) (*models.Prospect, error) {
	results, err := surrealdb.Query[[]models.Prospect](ctx, c.db, `
		CREATE type::record("prospect", $id) RETURN AFTER
	`, map[string]any{"id": uuid.NewString()})
	if err != nil {
		return nil, fmt.Errorf("create prospect: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("create prospect: no result returned")
	}
	return &(*results)[0].Result[0], nil
}

// GetProspect retrieves a prospect by ID. Returns ErrNotFound if missing.
func (c *Client) GetProspect(ctx context.Context, id string) (*models.Prospect, error) {
	results, err := surrealdb.Query[[]models.Prospect](ctx, c.db, `
		SELECT * FROM type::record("prospect", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get prospect: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("get prospect %s: %w", id, ErrNotFound)
	}
	return &(*results)[0].Result[0], nil
}

// UpdateProspect writes contact and tour fields back to the prospect record.
func (c *Client) UpdateProspect(ctx context.Context, p *models.Prospect) error {
	id, err := models.RecordIDString(p.ID)
	if err != nil {
		return fmt.Errorf("update prospect: %w", err)
	}

	vars := map[string]any{
		"id":             id,
		"first_name":     orNil(p.FirstName),
		"last_name":      orNil(p.LastName),
		"email":          orNil(p.Email),
		"phone":          orNil(p.Phone),
		"tour_scheduled": p.TourScheduled,
	}
	var tourAt any
	if p.TourDatetime != nil {
		tourAt = *p.TourDatetime
	}
	vars["tour_datetime"] = tourAt

	_, err = surrealdb.Query[any](ctx, c.db, `
		UPDATE type::record("prospect", $id) SET
			first_name = $first_name,
			last_name = $last_name,
			email = $email,
			phone = $phone,
			tour_scheduled = $tour_scheduled,
			tour_datetime = $tour_datetime,
			updated_at = time::now()
	`, vars)
	if err != nil {
		return fmt.Errorf("update prospect: %w", wrapQueryError(err))
	}
	return nil
}

// ListProspects returns all prospects, newest first.
func (c *Client) ListProspects(ctx context.Context) ([]models.Prospect, error) {
	results, err := surrealdb.Query[[]models.Prospect](ctx, c.db, `
		SELECT * FROM prospect ORDER BY created_at DESC
	`, nil)
	if err != nil {
		return nil, fmt.Errorf("list prospects: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return []models.Prospect{}, nil
	}
	return (*results)[0].Result, nil
}

// CreateSession creates a session, optionally linked to a prospect.
func (c *Client) CreateSession(ctx context.Context, prospectID string) (*models.Session, error) {
	vars := map[string]any{"id": uuid.NewString()}
	prospectClause := ""
	if prospectID != "" {
		prospectClause = ", prospect = type::record(\"prospect\", $prospect)"
		vars["prospect"] = prospectID
	}

	sql := fmt.Sprintf(`
		CREATE type::record("session", $id) SET
			conversation_history = [],
			current_understanding = {}
			%s
		RETURN AFTER
	`, prospectClause)

	results, err := surrealdb.Query[[]models.Session](ctx, c.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("create session: no result returned")
	}
	return &(*results)[0].Result[0], nil
}

// GetSession retrieves a session by ID. Returns ErrNotFound if missing.
func (c *Client) GetSession(ctx context.Context, id string) (*models.Session, error) {
	results, err := surrealdb.Query[[]models.Session](ctx, c.db, `
		SELECT * FROM type::record("session", $id)
	`, map[string]any{"id": id})
	if err != nil {
		return nil, fmt.Errorf("get session: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, fmt.Errorf("get session %s: %w", id, ErrNotFound)
	}
	return &(*results)[0].Result[0], nil
}

// SaveSession persists the session's history and understanding after a turn.
func (c *Client) SaveSession(ctx context.Context, s *models.Session) error {
	id, err := models.RecordIDString(s.ID)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	_, err = surrealdb.Query[any](ctx, c.db, `
		UPDATE type::record("session", $id) SET
			conversation_history = $history,
			current_understanding = $understanding,
			updated_at = time::now()
	`, map[string]any{
		"id":            id,
		"history":       s.History,
		"understanding": s.Understanding,
	})
	if err != nil {
		return fmt.Errorf("save session: %w", wrapQueryError(err))
	}
	return nil
}

// ListSessionsForProspect returns all sessions for a prospect, most recently
// updated first.
func (c *Client) ListSessionsForProspect(ctx context.Context, prospectID string) ([]models.Session, error) {
	results, err := surrealdb.Query[[]models.Session](ctx, c.db, `
		SELECT * FROM session
		WHERE prospect = type::record("prospect", $prospect)
		ORDER BY updated_at DESC
	`, map[string]any{"prospect": prospectID})
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return []models.Session{}, nil
	}
	return (*results)[0].Result, nil
}

// InsertEvents stores the enrichment events extracted during one turn.
func (c *Client) InsertEvents(ctx context.Context, sessionID, extractedBy string, events []models.EnrichmentEvent) error {
	for _, ev := range events {
		_, err := surrealdb.Query[any](ctx, c.db, `
			CREATE type::record("enrichment_event", $id) SET
				session = type::record("session", $session),
				event_type = $event_type,
				event_data = $event_data,
				extracted_by_agent = $agent,
				source_message = $source,
				confidence = $confidence
		`, map[string]any{
			"id":         uuid.NewString(),
			"session":    sessionID,
			"event_type": string(ev.Type),
			"event_data": ev.Data,
			"agent":      extractedBy,
			"source":     ev.SourceMessage,
			"confidence": ev.Confidence,
		})
		if err != nil {
			return fmt.Errorf("insert event %s: %w", ev.Type, wrapQueryError(err))
		}
	}
	return nil
}

// ListEventsForProspect returns all events across a prospect's sessions,
// newest first.
func (c *Client) ListEventsForProspect(ctx context.Context, prospectID string) ([]models.StoredEvent, error) {
	results, err := surrealdb.Query[[]models.StoredEvent](ctx, c.db, `
		SELECT * FROM enrichment_event
		WHERE session.prospect = type::record("prospect", $prospect)
		ORDER BY created_at DESC
	`, map[string]any{"prospect": prospectID})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", wrapQueryError(err))
	}

	if results == nil || len(*results) == 0 {
		return []models.StoredEvent{}, nil
	}
	return (*results)[0].Result, nil
}

// orNil maps an empty string to nil so optional fields stay NONE in the
// database instead of becoming empty strings.
func orNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acmeliving/sophie-go/internal/db"
	"github.com/acmeliving/sophie-go/internal/metrics"
	"github.com/acmeliving/sophie-go/internal/models"
	"github.com/acmeliving/sophie-go/internal/service"
)

type fakeChat struct {
	resp *service.ChatResponse
	err  error
	last service.ChatRequest
}

func (f *fakeChat) HandleMessage(_ context.Context, req service.ChatRequest) (*service.ChatResponse, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type fakeDirectory struct {
	summaries []service.ProspectSummary
	detail    *service.ProspectDetail
	detailErr error
}

func (f *fakeDirectory) List(_ context.Context) ([]service.ProspectSummary, error) {
	return f.summaries, nil
}

func (f *fakeDirectory) Detail(_ context.Context, _ string) (*service.ProspectDetail, error) {
	if f.detailErr != nil {
		return nil, f.detailErr
	}
	return f.detail, nil
}

type fakeAgents struct {
	intent   models.Intent
	response string
}

func (f *fakeAgents) ClassifyIntent(_ context.Context, _ string, _ []models.Turn) (models.Intent, error) {
	return f.intent, nil
}

func (f *fakeAgents) RunSpecialist(_ context.Context, intent models.Intent, state *models.ConversationState) error {
	state.Intent = intent
	state.AgentResponse = f.response
	return nil
}

func newTestServer(chat ChatHandler, dir ProspectDirectory, agents SpecialistRunner) *httptest.Server {
	if chat == nil {
		chat = &fakeChat{resp: &service.ChatResponse{}}
	}
	if dir == nil {
		dir = &fakeDirectory{}
	}
	if agents == nil {
		agents = &fakeAgents{}
	}
	srv := New(chat, dir, agents, metrics.NewCollector(), nil)
	return httptest.NewServer(srv.Handler())
}

func TestChatEndpoint(t *testing.T) {
	chat := &fakeChat{resp: &service.ChatResponse{
		SessionID:  "s-1",
		ProspectID: "p-1",
		Response:   "Starts at $2,000 per month.",
		Intent:     models.IntentPricing,
	}}
	ts := newTestServer(chat, nil, nil)
	defer ts.Close()

	body := `{"message": "How much does it cost?"}`
	resp, err := http.Post(ts.URL+"/api/chat", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got service.ChatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "s-1", got.SessionID)
	assert.Equal(t, models.IntentPricing, got.Intent)
	assert.Equal(t, "How much does it cost?", chat.last.Message)
}

func TestChatEndpointEmptyMessage(t *testing.T) {
	ts := newTestServer(&fakeChat{err: service.ErrEmptyMessage}, nil, nil)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/chat", "application/json", strings.NewReader(`{"message": ""}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChatEndpointInvalidJSON(t *testing.T) {
	ts := newTestServer(nil, nil, nil)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/chat", "application/json", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListProspectsEndpoint(t *testing.T) {
	dir := &fakeDirectory{summaries: []service.ProspectSummary{
		{ProspectID: "p-1", FirstName: "Margaret", TotalSessions: 2},
	}}
	ts := newTestServer(nil, dir, nil)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/admin/prospects")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		Prospects []service.ProspectSummary `json:"prospects"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got.Prospects, 1)
	assert.Equal(t, "Margaret", got.Prospects[0].FirstName)
}

func TestProspectDetailNotFound(t *testing.T) {
	ts := newTestServer(nil, &fakeDirectory{detailErr: db.ErrNotFound}, nil)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/admin/prospects/missing")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTestAgentEndpoint(t *testing.T) {
	agents := &fakeAgents{response: "We have a pool and a fitness center."}
	ts := newTestServer(nil, nil, agents)
	defer ts.Close()

	body := `{"message": "Do you have a pool?"}`
	resp, err := http.Post(ts.URL+"/api/test/agent/amenities", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "amenities", got["agent"])
	assert.Equal(t, "We have a pool and a fitness center.", got["output"])
}

func TestTestAgentClassifier(t *testing.T) {
	ts := newTestServer(nil, nil, &fakeAgents{intent: models.IntentFinancing})
	defer ts.Close()

	body := `{"message": "Do you take Medicaid?"}`
	resp, err := http.Post(ts.URL+"/api/test/agent/intent", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "financing", got["output"])
}

func TestTestAgentUnknownName(t *testing.T) {
	ts := newTestServer(nil, nil, nil)
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/api/test/agent/bogus", "application/json", strings.NewReader(`{"message": "hi"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(nil, nil, nil)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStatsEndpoint(t *testing.T) {
	ts := newTestServer(nil, nil, nil)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/stats")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snap metrics.Snapshot
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
}

// blockingChat parks every HandleMessage call until released and counts how
// many are in flight at once.
type blockingChat struct {
	mu       sync.Mutex
	inFlight int
	peak     int
	release  chan struct{}
}

func (c *blockingChat) HandleMessage(_ context.Context, _ service.ChatRequest) (*service.ChatResponse, error) {
	c.mu.Lock()
	c.inFlight++
	if c.inFlight > c.peak {
		c.peak = c.inFlight
	}
	c.mu.Unlock()

	<-c.release

	c.mu.Lock()
	c.inFlight--
	c.mu.Unlock()
	return &service.ChatResponse{}, nil
}

func TestSameSessionTurnsSerialized(t *testing.T) {
	chat := &blockingChat{release: make(chan struct{})}
	srv := New(chat, &fakeDirectory{}, &fakeAgents{}, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = srv.runTurn(context.Background(), service.ChatRequest{SessionID: "s-1", Message: "hi"})
		}()
	}

	// Let the goroutines pile up on the session lock, then drain them.
	time.Sleep(50 * time.Millisecond)
	close(chat.release)
	wg.Wait()

	assert.Equal(t, 1, chat.peak, "turns for one session must never overlap")
}

func TestSessionLockEvictedWhenIdle(t *testing.T) {
	srv := New(&fakeChat{resp: &service.ChatResponse{}}, &fakeDirectory{}, &fakeAgents{}, nil, nil)

	for _, id := range []string{"s-1", "s-2", "s-3"} {
		_, err := srv.runTurn(context.Background(), service.ChatRequest{SessionID: id, Message: "hi"})
		require.NoError(t, err)
	}

	srv.mu.Lock()
	remaining := len(srv.locks)
	srv.mu.Unlock()
	assert.Zero(t, remaining, "idle sessions must not retain lock entries")
}

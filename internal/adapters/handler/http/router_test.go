package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/assembly/internal/adapters/eligibility"
	"github.com/vncsmyrnk/assembly/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/assembly/internal/core/domain"
	"github.com/vncsmyrnk/assembly/internal/core/services"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testServer struct {
	*httptest.Server
	clock   *testClock
	sweeper *services.Sweeper
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := &testClock{now: time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)}

	measureRepo := memory.NewMeasureRepository()
	ballotRepo := memory.NewBallotRepository()
	voterRepo := memory.NewVoterRepository()

	gate := services.NewEligibilityGate(eligibility.NewAllowOracle(), logger)
	sessions := services.NewSessionService(measureRepo, clock, logger)
	admission := services.NewAdmissionService(voterRepo, ballotRepo, sessions, gate, clock, logger)
	tally := services.NewTallyService(measureRepo, ballotRepo)

	handler := NewHandler(
		NewMeasureHandler(services.NewMeasureService(measureRepo, clock), sessions),
		NewBallotHandler(admission, tally),
		NewVoterHandler(services.NewVoterService(voterRepo, gate, clock)),
	)
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &testServer{
		Server:  srv,
		clock:   clock,
		sweeper: services.NewSweeper(sessions, time.Second, time.Second, logger),
	}
}

func (s *testServer) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, s.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func (s *testServer) createMeasure(t *testing.T) domain.Measure {
	t.Helper()
	resp, data := s.do(t, http.MethodPost, "/api/v1/measures", map[string]string{"title": "Replace the elevator"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	return decode[domain.Measure](t, data)
}

func (s *testServer) registerVoter(t *testing.T, nationalID string) domain.Voter {
	t.Helper()
	resp, data := s.do(t, http.MethodPost, "/api/v1/voters", map[string]string{"national_id": nationalID})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	return decode[domain.Voter](t, data)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	resp, _ := srv.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMeasureEndpoints(t *testing.T) {
	srv := newTestServer(t)
	m := srv.createMeasure(t)
	assert.Equal(t, domain.MeasureCreated, m.State)

	resp, data := srv.do(t, http.MethodGet, "/api/v1/measures/"+m.ID.String(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, m.ID, decode[domain.Measure](t, data).ID)

	resp, data = srv.do(t, http.MethodGet, "/api/v1/measures?page=1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]domain.Measure](t, data), 1)

	resp, _ = srv.do(t, http.MethodGet, "/api/v1/measures?page=zero", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, data = srv.do(t, http.MethodPost, "/api/v1/measures", map[string]string{"title": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_MEASURE", decode[errorResponse](t, data).Code)

	resp, _ = srv.do(t, http.MethodGet, "/api/v1/measures/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, data = srv.do(t, http.MethodGet, "/api/v1/measures/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "MEASURE_NOT_FOUND", decode[errorResponse](t, data).Code)
}

func TestSessionEndpoints(t *testing.T) {
	srv := newTestServer(t)
	m := srv.createMeasure(t)
	base := "/api/v1/measures/" + m.ID.String()

	resp, data := srv.do(t, http.MethodGet, base+"/session/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decode[sessionStatusResponse](t, data).Open)

	resp, data = srv.do(t, http.MethodPost, base+"/session", map[string]int{"duration_minutes": 5})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	opened := decode[domain.Measure](t, data)
	assert.Equal(t, 5*time.Minute, opened.ClosesAt.Sub(*opened.OpensAt))

	resp, data = srv.do(t, http.MethodPost, base+"/session", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "SESSION_ALREADY_OPEN", decode[errorResponse](t, data).Code)

	resp, data = srv.do(t, http.MethodGet, base+"/session/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[sessionStatusResponse](t, data).Open)

	resp, data = srv.do(t, http.MethodPost, base+"/session/close", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.MeasureClosed, decode[domain.Measure](t, data).State)

	resp, data = srv.do(t, http.MethodPost, base+"/session", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_TRANSITION", decode[errorResponse](t, data).Code)
}

func TestBallotFlow(t *testing.T) {
	srv := newTestServer(t)
	m := srv.createMeasure(t)
	base := "/api/v1/measures/" + m.ID.String()
	voter := srv.registerVoter(t, "529.982.247-25")
	late := srv.registerVoter(t, "11144477735")

	resp, data := srv.do(t, http.MethodPost, base+"/ballots", map[string]string{"voter_id": voter.ID.String(), "choice": "FOR"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "SESSION_NOT_OPEN", decode[errorResponse](t, data).Code)

	resp, _ = srv.do(t, http.MethodPost, base+"/session", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, data = srv.do(t, http.MethodPost, base+"/ballots", map[string]string{"voter_id": voter.ID.String(), "choice": "for"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	assert.Equal(t, domain.ChoiceFor, decode[domain.Ballot](t, data).Choice)

	resp, data = srv.do(t, http.MethodPost, base+"/ballots", map[string]string{"voter_id": voter.ID.String(), "choice": "AGAINST"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DUPLICATE_VOTE", decode[errorResponse](t, data).Code)

	resp, data = srv.do(t, http.MethodPost, base+"/ballots", map[string]string{"voter_id": voter.ID.String(), "choice": "ABSTAIN"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_CHOICE", decode[errorResponse](t, data).Code)

	resp, data = srv.do(t, http.MethodPost, base+"/ballots", map[string]string{"voter_id": uuid.NewString(), "choice": "FOR"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "VOTER_NOT_FOUND", decode[errorResponse](t, data).Code)

	srv.clock.Advance(61 * time.Second)
	closed, err := srv.sweeper.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{m.ID}, closed)

	resp, data = srv.do(t, http.MethodPost, base+"/ballots", map[string]string{"voter_id": late.ID.String(), "choice": "AGAINST"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "SESSION_NOT_OPEN", decode[errorResponse](t, data).Code)

	resp, data = srv.do(t, http.MethodGet, base+"/tally", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.Tally{MeasureID: m.ID, For: 1, Total: 1}, decode[domain.Tally](t, data))

	resp, data = srv.do(t, http.MethodGet, base+"/ballots", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]domain.Ballot](t, data), 1)
}

func TestInactiveVoterIsForbidden(t *testing.T) {
	srv := newTestServer(t)
	m := srv.createMeasure(t)
	base := "/api/v1/measures/" + m.ID.String()
	voter := srv.registerVoter(t, "52998224725")

	resp, data := srv.do(t, http.MethodPatch, "/api/v1/voters/"+voter.ID.String()+"/status?active=false", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decode[domain.Voter](t, data).Active)

	resp, _ = srv.do(t, http.MethodPost, base+"/session", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, data = srv.do(t, http.MethodPost, base+"/ballots", map[string]string{"voter_id": voter.ID.String(), "choice": "FOR"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "VOTER_INACTIVE", decode[errorResponse](t, data).Code)
}

func TestVoterEndpoints(t *testing.T) {
	srv := newTestServer(t)
	voter := srv.registerVoter(t, "529.982.247-25")
	assert.Equal(t, "52998224725", voter.NationalID)

	resp, data := srv.do(t, http.MethodPost, "/api/v1/voters", map[string]string{"national_id": "52998224725"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "NATIONAL_ID_TAKEN", decode[errorResponse](t, data).Code)

	resp, data = srv.do(t, http.MethodPost, "/api/v1/voters", map[string]string{"national_id": "12345678900"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_NATIONAL_ID", decode[errorResponse](t, data).Code)

	resp, data = srv.do(t, http.MethodGet, "/api/v1/voters/"+voter.ID.String(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, voter.ID, decode[domain.Voter](t, data).ID)

	resp, data = srv.do(t, http.MethodGet, "/api/v1/voters/national-id/52998224725", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, voter.ID, decode[domain.Voter](t, data).ID)

	resp, data = srv.do(t, http.MethodGet, "/api/v1/voters/national-id/52998224725/eligibility", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ABLE_TO_VOTE", decode[eligibilityResponse](t, data).Status)

	resp, data = srv.do(t, http.MethodGet, "/api/v1/voters/national-id/123/eligibility", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "UNAVAILABLE", decode[eligibilityResponse](t, data).Status)

	resp, _ = srv.do(t, http.MethodPatch, "/api/v1/voters/"+voter.ID.String()+"/status?active=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = srv.do(t, http.MethodGet, "/api/v1/voters/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListMeasuresRejectsOverflowingPage(t *testing.T) {
	srv := newTestServer(t)
	srv.createMeasure(t)

	resp, data := srv.do(t, http.MethodGet, "/api/v1/measures?page=1844674407370955161", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_PAGE", decode[errorResponse](t, data).Code)

	resp, _ = srv.do(t, http.MethodGet, "/api/v1/measures?page=99999999999999999999", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestOpenSessionRejectsOverflowingDuration(t *testing.T) {
	srv := newTestServer(t)
	m := srv.createMeasure(t)
	base := "/api/v1/measures/" + m.ID.String()

	for _, minutes := range []int64{153722868, 307445735} {
		resp, data := srv.do(t, http.MethodPost, base+"/session", map[string]int64{"duration_minutes": minutes})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "duration_minutes=%d", minutes)
		assert.Equal(t, "BAD_REQUEST", decode[errorResponse](t, data).Code)
	}

	resp, data := srv.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.MeasureCreated, decode[domain.Measure](t, data).State)

	resp, data = srv.do(t, http.MethodPost, base+"/session", map[string]int64{"duration_minutes": 153722867})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))
	opened := decode[domain.Measure](t, data)
	assert.Equal(t, time.Duration(153722867)*time.Minute, opened.ClosesAt.Sub(*opened.OpensAt))
}

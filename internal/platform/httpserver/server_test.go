package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pollregistry "agora/contexts/polling/poll-registry"
	registryhttp "agora/contexts/polling/poll-registry/transport/http"
)

func newTestServer() *Server {
	return New(pollregistry.NewInMemoryModule(nil, nil), nil, ":0")
}

func doRequest(t *testing.T, s *Server, method string, path string, user string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if user != "" {
		req.Header.Set("X-User-Id", user)
	}
	rec := httptest.NewRecorder()
	s.Mux().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) registryhttp.ErrorResponse {
	t.Helper()
	var resp registryhttp.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return resp
}

func mustCreatePoll(t *testing.T, s *Server, user string, question string) uint64 {
	t.Helper()
	body := fmt.Sprintf(`{"question": %q, "options": ["a", "b"]}`, question)
	rec := doRequest(t, s, http.MethodPost, "/v1/polls", user, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("create poll: status %d, body %s", rec.Code, rec.Body.String())
	}
	var resp registryhttp.CreatePollResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return resp.PollID
}

func TestCreatePollEndpoint(t *testing.T) {
	s := newTestServer()

	pollID := mustCreatePoll(t, s, "creator-1", "Coffee or tea?")
	if pollID != 0 {
		t.Fatalf("expected poll id 0, got %d", pollID)
	}

	rec := doRequest(t, s, http.MethodGet, fmt.Sprintf("/v1/polls/%d", pollID), "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get poll: status %d", rec.Code)
	}
	var poll registryhttp.PollResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &poll); err != nil {
		t.Fatalf("decode poll: %v", err)
	}
	if poll.Question != "Coffee or tea?" || len(poll.Options) != 2 {
		t.Fatalf("unexpected poll payload: %+v", poll)
	}
}

func TestCreatePollRequiresIdentity(t *testing.T) {
	s := newTestServer()

	rec := doRequest(t, s, http.MethodPost, "/v1/polls", "", `{"question": "q", "options": ["a", "b"]}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != "missing_user" {
		t.Fatalf("expected missing_user, got %s", resp.Code)
	}
}

func TestCreatePollRejectsBadPayloads(t *testing.T) {
	s := newTestServer()

	rec := doRequest(t, s, http.MethodPost, "/v1/polls", "creator-1", "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed JSON, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != "invalid_json" {
		t.Fatalf("expected invalid_json, got %s", resp.Code)
	}

	rec = doRequest(t, s, http.MethodPost, "/v1/polls", "creator-1", `{"question": "q", "options": ["only"]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for one option, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != "invalid_option_count" {
		t.Fatalf("expected invalid_option_count, got %s", resp.Code)
	}
}

func TestDuplicateQuestionConflicts(t *testing.T) {
	s := newTestServer()

	mustCreatePoll(t, s, "creator-1", "Same question")
	rec := doRequest(t, s, http.MethodPost, "/v1/polls", "creator-2", `{"question": "Same question", "options": ["a", "b"]}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != "duplicate_question" {
		t.Fatalf("expected duplicate_question, got %s", resp.Code)
	}
}

func TestVoteEndpoint(t *testing.T) {
	s := newTestServer()
	pollID := mustCreatePoll(t, s, "creator-1", "q1")
	path := fmt.Sprintf("/v1/polls/%d/votes", pollID)

	rec := doRequest(t, s, http.MethodPost, path, "voter-1", `{"option_index": 0}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("vote: status %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, s, http.MethodPost, path, "voter-1", `{"option_index": 1}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for repeat voter, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != "already_voted" {
		t.Fatalf("expected already_voted, got %s", resp.Code)
	}

	rec = doRequest(t, s, http.MethodPost, path, "voter-2", `{"option_index": 7}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for out-of-range option, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != "invalid_option" {
		t.Fatalf("expected invalid_option, got %s", resp.Code)
	}

	rec = doRequest(t, s, http.MethodPost, "/v1/polls/999/votes", "voter-2", `{"option_index": 0}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown poll, got %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodGet, fmt.Sprintf("/v1/polls/%d/ballot", pollID), "voter-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("ballot: status %d", rec.Code)
	}
	var ballot registryhttp.BallotResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &ballot); err != nil {
		t.Fatalf("decode ballot: %v", err)
	}
	if !ballot.HasVoted {
		t.Fatalf("expected has_voted=true for voter-1")
	}
}

func TestDeleteEndpoint(t *testing.T) {
	s := newTestServer()
	pollID := mustCreatePoll(t, s, "creator-1", "q1")
	path := fmt.Sprintf("/v1/polls/%d", pollID)

	rec := doRequest(t, s, http.MethodDelete, path, "intruder", "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-creator, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != "not_creator" {
		t.Fatalf("expected not_creator, got %s", resp.Code)
	}

	rec = doRequest(t, s, http.MethodDelete, path, "creator-1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodDelete, path, "creator-1", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on repeated delete, got %d", rec.Code)
	}
}

func TestPollIDMustBeNumeric(t *testing.T) {
	s := newTestServer()

	rec := doRequest(t, s, http.MethodGet, "/v1/polls/not-a-number", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric id, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != "invalid_poll_id" {
		t.Fatalf("expected invalid_poll_id, got %s", resp.Code)
	}
}

func TestResetEndpoint(t *testing.T) {
	s := newTestServer()
	mustCreatePoll(t, s, "creator-1", "q1")
	mustCreatePoll(t, s, "creator-1", "q2")

	rec := doRequest(t, s, http.MethodPost, "/v1/polls/reset", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodPost, "/v1/polls/reset", "operator", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodGet, "/v1/polls/count", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("count: status %d", rec.Code)
	}
	var count registryhttp.PollCountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &count); err != nil {
		t.Fatalf("decode count: %v", err)
	}
	if count.Count != 0 {
		t.Fatalf("expected count 0 after reset, got %d", count.Count)
	}
}

func TestLeaderboardEndpoint(t *testing.T) {
	s := newTestServer()
	p0 := mustCreatePoll(t, s, "creator-1", "q0")
	p1 := mustCreatePoll(t, s, "creator-1", "q1")

	rec := doRequest(t, s, http.MethodPost, fmt.Sprintf("/v1/polls/%d/votes", p1), "voter-1", `{"option_index": 0}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("vote: status %d", rec.Code)
	}

	rec = doRequest(t, s, http.MethodGet, "/v1/leaderboard", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("leaderboard: status %d", rec.Code)
	}
	var board registryhttp.LeaderboardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &board); err != nil {
		t.Fatalf("decode leaderboard: %v", err)
	}
	if len(board.Items) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(board.Items))
	}
	if board.Items[0].PollID != p1 || board.Items[0].Rank != 1 {
		t.Fatalf("expected poll %d ranked first, got %+v", p1, board.Items[0])
	}
	if board.Items[1].PollID != p0 || board.Items[1].Rank != 2 {
		t.Fatalf("expected poll %d ranked second, got %+v", p0, board.Items[1])
	}
}

package http

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/keio-howl/howlhub/internal/club"
	"github.com/keio-howl/howlhub/internal/config"
	"github.com/keio-howl/howlhub/internal/database"
	"github.com/keio-howl/howlhub/internal/game"
	"github.com/keio-howl/howlhub/internal/membership"
	"github.com/keio-howl/howlhub/internal/metrics"
	"github.com/keio-howl/howlhub/internal/notifier"
	"github.com/keio-howl/howlhub/internal/pubsub"
	"github.com/keio-howl/howlhub/internal/rating"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

const testAdminPassword = "test-admin-password"

// setupTestServer initializes a new server with a test database and mock clients.
func setupTestServer(t *testing.T) (*Server, *notifier.Mock, *pubsub.MockPubSubClient, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	clubStore := club.New(db)
	membershipStore := membership.New(db)
	games := game.NewManagerWithRand(rand.New(rand.NewSource(42)))
	cfg := config.Config{Admin: config.AdminConfig{Password: testAdminPassword}}

	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	metricsHandler := metrics.NewMetricsHandler(reg)
	notifierMock := notifier.NewMock()
	pubsubMock := pubsub.NewMock("TEST")

	server := NewServer(clubStore, membershipStore, games, metricsSvc, metricsHandler, cfg, notifierMock, pubsubMock)

	teardown := func() {
		if dbTeardown != nil {
			dbTeardown()
		}
		db.Close()
	}
	return server, notifierMock, pubsubMock, teardown
}

func postJSON(t *testing.T, server *Server, path string, body any, admin bool) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest("POST", path, bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if admin {
		req.Header.Set(adminPasswordHeader, testAdminPassword)
	}
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	return rr
}

func getPath(t *testing.T, server *Server, path string, admin bool) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest("GET", path, nil)
	require.NoError(t, err)
	if admin {
		req.Header.Set(adminPasswordHeader, testAdminPassword)
	}
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	return rr
}

func seedPlayers(t *testing.T, server *Server, names ...string) []string {
	t.Helper()
	ids := make([]string, 0, len(names))
	for i, name := range names {
		id := fmt.Sprintf("player-%d", i+1)
		require.NoError(t, server.Store.AddPlayer(id, fmt.Sprintf("s%04d", i+1), name))
		ids = append(ids, id)
	}
	return ids
}

// setupMockServer wires the server entirely with mocks, for error paths that
// a real store cannot produce.
func setupMockServer(t *testing.T, clubMock *club.MockStore, membershipMock *membership.MockStore) *Server {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewServer(
		clubMock,
		membershipMock,
		game.NewManagerWithRand(rand.New(rand.NewSource(42))),
		metrics.NewMock(),
		metrics.NewMetricsHandler(reg),
		config.Config{Admin: config.AdminConfig{Password: testAdminPassword}},
		notifier.NewMock(),
		pubsub.NewMock("TEST"),
	)
}

func TestHealthCheckHandler(t *testing.T) {
	server, _, _, teardown := setupTestServer(t)
	defer teardown()

	rr := getPath(t, server, "/health", false)

	assert.Equal(t, http.StatusOK, rr.Code, "handler returned wrong status code")
	assert.Equal(t, "OK!", rr.Body.String(), "handler returned unexpected body")
}

func TestAdminGate(t *testing.T) {
	server, _, _, teardown := setupTestServer(t)
	defer teardown()
	ids := seedPlayers(t, server, "Aoi", "Ren")

	// No credential: rejected, nothing written.
	body := recordMatchRequest{GameDate: "2026-04-18", Winners: ids[:1], Losers: ids[1:]}
	rr := postJSON(t, server, "/matches/record", body, false)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	matches, err := server.Store.GetMatchResults()
	require.NoError(t, err)
	assert.Empty(t, matches, "rejected request must not write to the ledger")

	// With the credential the same request succeeds.
	rr = postJSON(t, server, "/matches/record", body, true)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRecordMatchHandler_Validation(t *testing.T) {
	server, _, _, teardown := setupTestServer(t)
	defer teardown()
	ids := seedPlayers(t, server, "Aoi", "Ren")

	// Overlapping winner and loser sets are rejected.
	body := recordMatchRequest{GameDate: "2026-04-18", Winners: ids, Losers: ids[:1]}
	rr := postJSON(t, server, "/matches/record", body, true)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Empty participant sets are rejected.
	body = recordMatchRequest{GameDate: "2026-04-18"}
	rr = postJSON(t, server, "/matches/record", body, true)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	matches, err := server.Store.GetMatchResults()
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestUndoMatchHandler(t *testing.T) {
	server, _, _, teardown := setupTestServer(t)
	defer teardown()
	ids := seedPlayers(t, server, "Aoi", "Ren")

	// Undo on an empty ledger fails.
	rr := postJSON(t, server, "/matches/undo", struct{}{}, true)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	body := recordMatchRequest{GameDate: "2026-04-18", Winners: ids[:1], Losers: ids[1:]}
	rr = postJSON(t, server, "/matches/record", body, true)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = postJSON(t, server, "/matches/undo", struct{}{}, true)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, float64(2), resp["rows_removed"])

	matches, err := server.Store.GetMatchResults()
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestLeaderboardHandler(t *testing.T) {
	server, _, _, teardown := setupTestServer(t)
	defer teardown()
	ids := seedPlayers(t, server, "Aoi", "Ren")

	for i := 0; i < 3; i++ {
		body := recordMatchRequest{GameDate: "2026-04-18", Winners: ids[:1], Losers: ids[1:]}
		rr := postJSON(t, server, "/matches/record", body, true)
		require.Equal(t, http.StatusOK, rr.Code)
	}

	rr := getPath(t, server, "/leaderboard", false)
	require.Equal(t, http.StatusOK, rr.Code)

	var entries []rating.Entry
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "Aoi", entries[0].PlayerName)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 3, entries[0].Wins)
	assert.Greater(t, entries[0].Score, entries[1].Score)
}

func TestMembershipFlow(t *testing.T) {
	server, notifierMock, _, teardown := setupTestServer(t)
	defer teardown()

	app := membership.Application{
		StudentName:     "Taro Yamada",
		StudentIDNumber: "12345678",
		PlayerName:      "Howler",
		Faculty:         "Letters",
		Gender:          "male",
		Email:           "taro@keio.jp",
		TransferName:    "YAMADA TARO",
		TransferDate:    "2026-04-01",
	}

	rr := postJSON(t, server, "/membership/apply", app, false)
	require.Equal(t, http.StatusCreated, rr.Code)

	var req membership.Request
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &req))
	assert.Equal(t, 4, req.TermNumber)
	assert.Equal(t, membership.StatusPending, req.Status)

	// Pending listing requires the admin credential.
	rr = getPath(t, server, "/membership/pending", false)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = getPath(t, server, "/membership/pending", true)
	require.Equal(t, http.StatusOK, rr.Code)
	var pending []membership.Request
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &pending))
	require.Len(t, pending, 1)

	rr = postJSON(t, server, "/membership/approve", map[string]string{"request_id": req.ID}, true)
	require.Equal(t, http.StatusOK, rr.Code)

	// The new member is now a known player and the welcome went out.
	players, err := server.Store.GetActivePlayers()
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, "Howler", players[0].Name)
	require.Len(t, notifierMock.SendMembershipApprovedCalls, 1)

	// Approval is terminal.
	rr = postJSON(t, server, "/membership/approve", map[string]string{"request_id": req.ID}, true)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestMembershipApply_InvalidEmail(t *testing.T) {
	server, _, _, teardown := setupTestServer(t)
	defer teardown()

	app := membership.Application{
		StudentName:     "Taro Yamada",
		StudentIDNumber: "12345678",
		PlayerName:      "Howler",
		Faculty:         "Letters",
		Gender:          "male",
		Email:           "taro@example.com",
		TransferName:    "YAMADA TARO",
		TransferDate:    "2026-04-01",
	}

	rr := postJSON(t, server, "/membership/apply", app, false)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// startTwoPlayerSession opens a werewolf-versus-villager session and returns
// the werewolf's identifier, read back from the state response.
func startTwoPlayerSession(t *testing.T, server *Server, ids []string) string {
	t.Helper()
	body := gmStartRequest{
		PlayerIDs: ids,
		Roles:     map[game.Role]int{game.RoleWerewolf: 1, game.RoleVillager: 1},
	}
	rr := postJSON(t, server, "/gm/start", body, false)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var view sessionView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	for _, p := range view.Players {
		if p.Role == game.RoleWerewolf {
			return p.ID
		}
	}
	t.Fatal("no werewolf assigned")
	return ""
}

func TestGMSessionFlow(t *testing.T) {
	server, _, pubsubMock, teardown := setupTestServer(t)
	defer teardown()
	ids := seedPlayers(t, server, "Aoi", "Ren")

	wolfID := startTwoPlayerSession(t, server, ids)

	// Executing the werewolf ends the game for the village.
	rr := postJSON(t, server, "/gm/execute", map[string]string{"player_id": wolfID}, false)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var view sessionView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	assert.Equal(t, game.PhaseResult, view.Phase)
	assert.Equal(t, game.TeamVillage, view.Winner)
	require.Len(t, view.Winners, 1)
	require.Len(t, view.Losers, 1)

	// Commit with the admin password writes the ledger and publishes the result.
	commit := gmCommitRequest{Password: testAdminPassword, GameDate: "2026-04-18", Memo: "first howl"}
	rr = postJSON(t, server, "/gm/commit", commit, false)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	matches, err := server.Store.GetMatchResults()
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	require.Len(t, pubsubMock.SendMessageCalls, 1)
	assert.Equal(t, string(pubsub.EventNotifyResult), pubsubMock.SendMessageCalls[0].Topic)
	record, ok := pubsubMock.SendMessageCalls[0].Data.(notifier.ResultRecord)
	require.True(t, ok)
	assert.Equal(t, "village", record.WinningTeam)

	// The session is discarded after commit.
	rr = getPath(t, server, "/gm/state", false)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGMCommit_RequiresDecidedResult(t *testing.T) {
	server, _, pubsubMock, teardown := setupTestServer(t)
	defer teardown()
	ids := seedPlayers(t, server, "Aoi", "Ren", "Sora", "Yuki")

	body := gmStartRequest{
		PlayerIDs: ids,
		Roles:     map[game.Role]int{game.RoleWerewolf: 1, game.RoleVillager: 3},
	}
	rr := postJSON(t, server, "/gm/start", body, false)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	// A mid-game commit is rejected even with explicit winner and loser sets.
	commit := gmCommitRequest{
		Password: testAdminPassword,
		GameDate: "2026-04-18",
		Winners:  ids[:1],
		Losers:   ids[1:2],
	}
	rr = postJSON(t, server, "/gm/commit", commit, false)
	assert.Equal(t, http.StatusConflict, rr.Code)

	// Nothing was written or published, and the session is untouched.
	matches, err := server.Store.GetMatchResults()
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.Empty(t, pubsubMock.SendMessageCalls)

	rr = getPath(t, server, "/gm/state", false)
	require.Equal(t, http.StatusOK, rr.Code)
	var view sessionView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	assert.Equal(t, game.PhaseDay, view.Phase)
}

func TestGMCommit_BadPassword(t *testing.T) {
	server, _, pubsubMock, teardown := setupTestServer(t)
	defer teardown()
	ids := seedPlayers(t, server, "Aoi", "Ren")

	wolfID := startTwoPlayerSession(t, server, ids)
	rr := postJSON(t, server, "/gm/execute", map[string]string{"player_id": wolfID}, false)
	require.Equal(t, http.StatusOK, rr.Code)

	commit := gmCommitRequest{Password: "wrong", GameDate: "2026-04-18"}
	rr = postJSON(t, server, "/gm/commit", commit, false)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// Nothing was written or published, and the session survives.
	matches, err := server.Store.GetMatchResults()
	require.NoError(t, err)
	assert.Empty(t, matches)
	assert.Empty(t, pubsubMock.SendMessageCalls)

	rr = getPath(t, server, "/gm/state", false)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestGMStart_UnknownPlayer(t *testing.T) {
	server, _, _, teardown := setupTestServer(t)
	defer teardown()
	seedPlayers(t, server, "Aoi")

	body := gmStartRequest{
		PlayerIDs: []string{"player-1", "ghost"},
		Roles:     map[game.Role]int{game.RoleWerewolf: 1, game.RoleVillager: 1},
	}
	rr := postJSON(t, server, "/gm/start", body, false)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGMState_NoSession(t *testing.T) {
	server, _, _, teardown := setupTestServer(t)
	defer teardown()

	rr := getPath(t, server, "/gm/state", false)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestLeaderboardHandler_StoreError(t *testing.T) {
	clubMock := club.NewMock()
	clubMock.GetPlayerRecordsFunc = func() ([]club.PlayerRecord, error) {
		return nil, errors.New("store unreachable")
	}
	server := setupMockServer(t, clubMock, membership.NewMock())

	rr := getPath(t, server, "/leaderboard", false)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestMembershipApprove_StoreError(t *testing.T) {
	membershipMock := membership.NewMock()
	membershipMock.ApproveFunc = func(requestID string) (*membership.Request, error) {
		return nil, errors.New("store unreachable")
	}
	server := setupMockServer(t, club.NewMock(), membershipMock)

	rr := postJSON(t, server, "/membership/approve", map[string]string{"request_id": "req-1"}, true)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Len(t, membershipMock.ApproveCalls, 1)
}

func TestNotifyResultHandler(t *testing.T) {
	server, notifierMock, pubsubMock, teardown := setupTestServer(t)
	defer teardown()

	pubsubMock.ProcessMessageFunc = func(data []byte, returnValue any) error {
		return msgpack.Unmarshal(data, returnValue)
	}

	record := notifier.ResultRecord{
		GameDate:    "2026-04-18",
		WinningTeam: "werewolf",
		WinnerNames: []string{"Aoi"},
		LoserNames:  []string{"Ren"},
	}
	raw, err := msgpack.Marshal(record)
	require.NoError(t, err)

	wrapper := map[string]any{
		"subscription": "test-sub",
		"message": map[string]string{
			"data": base64.StdEncoding.EncodeToString(raw),
		},
	}

	rr := postJSON(t, server, "/notify-result", wrapper, false)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	require.Len(t, notifierMock.SendResultNotificationCalls, 1)
	assert.Equal(t, "werewolf", notifierMock.SendResultNotificationCalls[0].WinningTeam)
}

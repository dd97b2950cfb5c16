package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/keio-howl/howlhub/internal/club"
	"github.com/keio-howl/howlhub/internal/game"
	"github.com/keio-howl/howlhub/internal/membership"
	"github.com/keio-howl/howlhub/internal/notifier"
	"github.com/keio-howl/howlhub/internal/pubsub"
	"github.com/keio-howl/howlhub/internal/rating"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

// ClearStoreHandler wipes the roster and ledger. Kept behind the admin gate;
// intended for local development resets only.
func (s *Server) ClearStoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Received request to clear entire store")
		s.Store.Clear()
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Store cleared!")
		log.Info("Store cleared successfully")
	}
}

// respondJSON writes v as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.Error("Failed to decode request body", "error", err)
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func (s *Server) ListPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var players []club.PlayerInfo
		var err error
		if r.URL.Query().Get("all") == "true" {
			players, err = s.Store.GetAllPlayers()
		} else {
			players, err = s.Store.GetActivePlayers()
		}
		if err != nil {
			http.Error(w, "Failed to get players", http.StatusInternalServerError)
			log.Error("Failed to get players from store", "error", err)
			return
		}
		respondJSON(w, http.StatusOK, players)
	}
}

func (s *Server) DeactivatePlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		var body struct {
			PlayerID string `json:"player_id"`
		}
		if !decodeJSONBody(w, r, &body) {
			return
		}
		if body.PlayerID == "" {
			http.Error(w, "player_id is required", http.StatusBadRequest)
			return
		}
		if err := s.Store.DeactivatePlayer(body.PlayerID); err != nil {
			http.Error(w, "Failed to deactivate player", http.StatusInternalServerError)
			log.Error("Failed to deactivate player", "playerID", body.PlayerID, "error", err)
			return
		}
		log.Info("Player deactivated", "playerID", body.PlayerID)
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Player deactivated")
	}
}

// LeaderboardHandler serves the scored and ranked leaderboard computed over
// the full match ledger.
func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := s.Store.GetPlayerRecords()
		if err != nil {
			http.Error(w, "Failed to get player records", http.StatusInternalServerError)
			log.Error("Failed to get player records from store", "error", err)
			return
		}
		entries := rating.Leaderboard(records)

		if r.URL.Query().Get("notify") == "true" {
			isDryRun := isDryRunFromContext(r)
			if err := s.Notifier.SendLeaderboard(entries, isDryRun); err != nil {
				log.Error("Failed to send leaderboard notification", "error", err)
			}
		}

		respondJSON(w, http.StatusOK, entries)
	}
}

func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches, err := s.Store.GetMatchResults()
		if err != nil {
			http.Error(w, "Failed to get matches", http.StatusInternalServerError)
			log.Error("Failed to get matches from store", "error", err)
			return
		}
		respondJSON(w, http.StatusOK, matches)
	}
}

// recordMatchRequest is the manual ledger entry payload. Winners and losers
// are player identifiers.
type recordMatchRequest struct {
	GameDate string   `json:"game_date"`
	Memo     string   `json:"memo"`
	Winners  []string `json:"winners"`
	Losers   []string `json:"losers"`
}

func (s *Server) RecordMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		var body recordMatchRequest
		if !decodeJSONBody(w, r, &body) {
			return
		}
		if body.GameDate == "" {
			body.GameDate = time.Now().Format("2006-01-02")
		}

		createdAt, err := s.Store.RecordMatch(body.GameDate, body.Memo, body.Winners, body.Losers)
		if err != nil {
			if errors.Is(err, club.ErrNoParticipants) || errors.Is(err, club.ErrWinnerLoserOverlap) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "Failed to record match", http.StatusInternalServerError)
			log.Error("Failed to record match", "error", err)
			return
		}

		s.Metrics.IncMatchesRecorded()
		log.Info("Match recorded", "gameDate", body.GameDate, "winners", len(body.Winners), "losers", len(body.Losers))
		respondJSON(w, http.StatusOK, map[string]any{
			"created_at": createdAt,
			"players":    len(body.Winners) + len(body.Losers),
		})
	}
}

func (s *Server) UndoMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		createdAt, removed, err := s.Store.UndoLastMatch()
		if err != nil {
			if errors.Is(err, club.ErrLedgerEmpty) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "Failed to undo match", http.StatusInternalServerError)
			log.Error("Failed to undo match", "error", err)
			return
		}

		s.Metrics.IncMatchesUndone()
		log.Info("Undid last match", "createdAt", createdAt, "rows", removed)
		respondJSON(w, http.StatusOK, map[string]any{
			"created_at":   createdAt,
			"rows_removed": removed,
		})
	}
}

// ScheduleHandler reports the configured next event date and how many days
// remain until it, measured from the local wall clock.
func (s *Server) ScheduleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Cfg.NextEventDate == "" {
			respondJSON(w, http.StatusOK, map[string]any{
				"next_event_date": nil,
				"message":         "No upcoming event scheduled.",
			})
			return
		}
		eventDate, err := time.ParseInLocation("2006-01-02", s.Cfg.NextEventDate, time.Local)
		if err != nil {
			http.Error(w, "Invalid event date configured", http.StatusInternalServerError)
			log.Error("Invalid NEXT_EVENT_DATE", "value", s.Cfg.NextEventDate, "error", err)
			return
		}
		now := time.Now()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
		days := int(eventDate.Sub(today).Hours() / 24)
		respondJSON(w, http.StatusOK, map[string]any{
			"next_event_date": s.Cfg.NextEventDate,
			"days_until":      days,
		})
	}
}

func (s *Server) MembershipApplyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		var app membership.Application
		if !decodeJSONBody(w, r, &app) {
			return
		}

		req, err := s.Membership.Submit(app)
		if err != nil {
			if errors.Is(err, membership.ErrMissingFields) || errors.Is(err, membership.ErrInvalidEmail) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "Failed to submit application", http.StatusInternalServerError)
			log.Error("Failed to submit membership application", "error", err)
			return
		}

		s.Metrics.IncMembershipRequests()
		log.Info("Membership application submitted", "requestID", req.ID, "term", req.TermNumber)
		respondJSON(w, http.StatusCreated, req)
	}
}

func (s *Server) MembershipPendingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pending, err := s.Membership.ListPending()
		if err != nil {
			http.Error(w, "Failed to get pending requests", http.StatusInternalServerError)
			log.Error("Failed to list pending membership requests", "error", err)
			return
		}
		respondJSON(w, http.StatusOK, pending)
	}
}

func membershipErrorStatus(err error) int {
	switch {
	case errors.Is(err, membership.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, membership.ErrNotPending):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) MembershipApproveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		var body struct {
			RequestID string `json:"request_id"`
		}
		if !decodeJSONBody(w, r, &body) {
			return
		}

		req, err := s.Membership.Approve(body.RequestID)
		if err != nil {
			status := membershipErrorStatus(err)
			if status == http.StatusInternalServerError {
				log.Error("Failed to approve membership request", "requestID", body.RequestID, "error", err)
				http.Error(w, "Failed to approve request", status)
				return
			}
			http.Error(w, err.Error(), status)
			return
		}

		s.Metrics.IncMembershipApprovals()
		log.Info("Membership request approved", "requestID", req.ID, "player", req.PlayerName, "term", req.TermNumber)

		isDryRun := isDryRunFromContext(r)
		if err := s.Notifier.SendMembershipApproved(req.PlayerName, req.TermNumber, isDryRun); err != nil {
			// The approval itself is committed; the announcement is best effort.
			log.Error("Failed to send membership approval notification", "error", err)
		}

		respondJSON(w, http.StatusOK, req)
	}
}

func (s *Server) MembershipRejectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		var body struct {
			RequestID string `json:"request_id"`
		}
		if !decodeJSONBody(w, r, &body) {
			return
		}

		if err := s.Membership.Reject(body.RequestID); err != nil {
			status := membershipErrorStatus(err)
			if status == http.StatusInternalServerError {
				log.Error("Failed to reject membership request", "requestID", body.RequestID, "error", err)
				http.Error(w, "Failed to reject request", status)
				return
			}
			http.Error(w, err.Error(), status)
			return
		}

		log.Info("Membership request rejected", "requestID", body.RequestID)
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Request rejected")
	}
}

// sessionView is the full GM dashboard state for one render. The seer result
// is consumed by building the view, so it appears in exactly one response.
type sessionView struct {
	Phase        game.Phase           `json:"phase"`
	Turn         int                  `json:"turn"`
	Players      []game.SessionPlayer `json:"players"`
	Events       []game.Event         `json:"events"`
	Winner       game.Team            `json:"winner,omitempty"`
	SeerResult   *game.SeerResult     `json:"seer_result,omitempty"`
	MediumReport *game.MediumReport   `json:"medium_report,omitempty"`
	Winners      []string             `json:"winners,omitempty"`
	Losers       []string             `json:"losers,omitempty"`
}

func buildSessionView(session *game.Session) sessionView {
	view := sessionView{
		Phase:        session.Phase,
		Turn:         session.Turn,
		Players:      session.Players,
		Events:       session.Events,
		Winner:       session.Winner,
		SeerResult:   session.ConsumeSeerResult(),
		MediumReport: session.MediumReportFor(),
	}
	if session.Phase == game.PhaseResult {
		view.Winners, view.Losers = session.ResultBoard()
	}
	return view
}

func gameErrorStatus(err error) int {
	switch {
	case errors.Is(err, game.ErrNoSession):
		return http.StatusNotFound
	case errors.Is(err, game.ErrWrongPhase):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// gmStartRequest opens a session for the named players with the given role
// distribution, e.g. {"werewolf": 2, "seer": 1, "villager": 3}.
type gmStartRequest struct {
	PlayerIDs []string          `json:"player_ids"`
	Roles     map[game.Role]int `json:"roles"`
}

func (s *Server) GMStartHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		var body gmStartRequest
		if !decodeJSONBody(w, r, &body) {
			return
		}

		active, err := s.Store.GetActivePlayers()
		if err != nil {
			http.Error(w, "Failed to get players", http.StatusInternalServerError)
			log.Error("Failed to get active players", "error", err)
			return
		}
		byID := make(map[string]club.PlayerInfo, len(active))
		for _, p := range active {
			byID[p.ID] = p
		}

		participants := make([]club.PlayerInfo, 0, len(body.PlayerIDs))
		for _, id := range body.PlayerIDs {
			p, ok := byID[id]
			if !ok {
				http.Error(w, fmt.Sprintf("unknown or inactive player: %s", id), http.StatusBadRequest)
				return
			}
			participants = append(participants, p)
		}

		if _, err := s.Games.Start(participants, body.Roles); err != nil {
			http.Error(w, err.Error(), gameErrorStatus(err))
			return
		}
		s.Metrics.IncSessionsStarted()

		// Render through the manager lock, like every other session access.
		var view sessionView
		if err := s.Games.WithSession(func(session *game.Session) error {
			view = buildSessionView(session)
			return nil
		}); err != nil {
			http.Error(w, err.Error(), gameErrorStatus(err))
			return
		}
		respondJSON(w, http.StatusOK, view)
	}
}

func (s *Server) GMStateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var view sessionView
		err := s.Games.WithSession(func(session *game.Session) error {
			view = buildSessionView(session)
			return nil
		})
		if err != nil {
			http.Error(w, err.Error(), gameErrorStatus(err))
			return
		}
		respondJSON(w, http.StatusOK, view)
	}
}

func (s *Server) GMExecuteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		var body struct {
			PlayerID string `json:"player_id"`
		}
		if !decodeJSONBody(w, r, &body) {
			return
		}

		var view sessionView
		var finished bool
		err := s.Games.WithSession(func(session *game.Session) error {
			if err := session.Execute(body.PlayerID); err != nil {
				return err
			}
			finished = session.Phase == game.PhaseResult
			view = buildSessionView(session)
			return nil
		})
		if err != nil {
			http.Error(w, err.Error(), gameErrorStatus(err))
			return
		}

		if finished {
			s.Metrics.IncSessionsCompleted()
		}
		respondJSON(w, http.StatusOK, view)
	}
}

func (s *Server) GMNightHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		var actions game.NightActions
		if !decodeJSONBody(w, r, &actions) {
			return
		}

		var view sessionView
		var finished bool
		err := s.Games.WithSession(func(session *game.Session) error {
			if err := session.ResolveNight(actions); err != nil {
				return err
			}
			finished = session.Phase == game.PhaseResult
			view = buildSessionView(session)
			return nil
		})
		if err != nil {
			http.Error(w, err.Error(), gameErrorStatus(err))
			return
		}

		if finished {
			s.Metrics.IncSessionsCompleted()
		}
		respondJSON(w, http.StatusOK, view)
	}
}

// gmCommitRequest writes a finished session to the ledger. The admin
// credential is re-entered here rather than carried from the session start.
// Winners and losers default to the session's result board when omitted.
type gmCommitRequest struct {
	Password string   `json:"password"`
	GameDate string   `json:"game_date"`
	Memo     string   `json:"memo"`
	Winners  []string `json:"winners"`
	Losers   []string `json:"losers"`
}

func (s *Server) GMCommitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		var body gmCommitRequest
		if !decodeJSONBody(w, r, &body) {
			return
		}
		if !s.checkAdminPassword(body.Password) {
			log.Warn("Rejected commit with bad admin credential")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if body.GameDate == "" {
			body.GameDate = time.Now().Format("2006-01-02")
		}

		var record notifier.ResultRecord
		var createdAt string
		err := s.Games.WithSession(func(session *game.Session) error {
			// Commit is a RESULT-phase operation. A mid-game commit must not
			// touch the ledger or discard the live session, even when the
			// body carries explicit winner and loser sets.
			if session.Phase != game.PhaseResult {
				return fmt.Errorf("%w: commit requires a decided result", game.ErrWrongPhase)
			}
			winners, losers := body.Winners, body.Losers
			if len(winners) == 0 && len(losers) == 0 {
				winners, losers = session.ResultBoard()
			}

			at, err := s.Store.RecordMatch(body.GameDate, body.Memo, winners, losers)
			if err != nil {
				return err
			}
			createdAt = at

			nameOf := make(map[string]string, len(session.Players))
			for _, p := range session.Players {
				nameOf[p.ID] = p.Name
			}
			record = notifier.ResultRecord{
				GameDate:    body.GameDate,
				Memo:        body.Memo,
				WinningTeam: string(session.Winner),
				WinnerNames: resolveNames(winners, nameOf),
				LoserNames:  resolveNames(losers, nameOf),
			}
			return nil
		})
		if err != nil {
			if errors.Is(err, club.ErrNoParticipants) || errors.Is(err, club.ErrWinnerLoserOverlap) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			if errors.Is(err, game.ErrNoSession) || errors.Is(err, game.ErrWrongPhase) {
				http.Error(w, err.Error(), gameErrorStatus(err))
				return
			}
			http.Error(w, "Failed to commit result", http.StatusInternalServerError)
			log.Error("Failed to commit session result", "error", err)
			return
		}

		s.Metrics.IncMatchesRecorded()
		log.Info("Session result committed", "gameDate", body.GameDate, "winningTeam", record.WinningTeam)

		isDryRun := isDryRunFromContext(r)
		if isDryRun {
			log.Info("[Dry Run] Would publish result notification", "topic", pubsub.EventNotifyResult)
		} else if err := s.pubsub.SendMessage(pubsub.EventNotifyResult, record); err != nil {
			// The ledger write is committed; the notification is best effort.
			log.Error("Failed to publish result notification", "error", err)
		}

		s.Games.Reset()
		respondJSON(w, http.StatusOK, map[string]any{
			"created_at": createdAt,
			"record":     record,
		})
	}
}

func resolveNames(ids []string, nameOf map[string]string) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := nameOf[id]; ok {
			names = append(names, name)
		} else {
			names = append(names, id)
		}
	}
	return names
}

func (s *Server) GMResetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !requirePost(w, r) {
			return
		}
		s.Games.Reset()
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Session reset")
	}
}

func (s *Server) NotifyResultHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received notify result message", "body", string(bodyBytes))
		// Define a small struct to decode the incoming JSON's `data` field
		var pubsubMsg struct {
			Subscription string `json:"subscription"`
			Message      struct {
				Data string `json:"data"` // base64-encoded message payload
			} `json:"message"`
		}

		// Parse the outer JSON to get `data`
		if err := json.Unmarshal(bodyBytes, &pubsubMsg); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		// Decode base64 to raw MessagePack bytes
		rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}
		isDryRun := isDryRunFromContext(r)
		record := notifier.ResultRecord{}
		if err := s.pubsub.ProcessMessage(rawData, &record); err != nil {
			http.Error(w, "Invalid message payload", http.StatusBadRequest)
			return
		}
		if err := s.Notifier.SendResultNotification(record, isDryRun); err != nil {
			log.Error("Failed to notify result", "error", err)
			http.Error(w, "Failed to notify result", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

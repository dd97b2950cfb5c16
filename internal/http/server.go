package http

import (
	"net/http"

	"github.com/keio-howl/howlhub/internal/club"
	"github.com/keio-howl/howlhub/internal/config"
	"github.com/keio-howl/howlhub/internal/game"
	"github.com/keio-howl/howlhub/internal/membership"
	"github.com/keio-howl/howlhub/internal/metrics"
	"github.com/keio-howl/howlhub/internal/notifier"
	"github.com/keio-howl/howlhub/internal/pubsub"
)

func NewServer(store club.ClubStore, membershipStore membership.Store, games *game.Manager, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, notifier notifier.Notifier, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Store:          store,
		Membership:     membershipStore,
		Games:          games,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Notifier:       notifier,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// Admin-only routes add the credential gate on top of the common params
	// middleware.
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/clear", Chain(s.ClearStoreHandler(), paramsMiddleware, s.adminOnly))
	s.Router.Handle("/players", Chain(s.ListPlayersHandler(), paramsMiddleware))
	s.Router.Handle("/players/deactivate", Chain(s.DeactivatePlayerHandler(), paramsMiddleware, s.adminOnly))
	s.Router.Handle("/leaderboard", Chain(s.LeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("/matches", Chain(s.ListMatchesHandler(), paramsMiddleware))
	s.Router.Handle("/matches/record", Chain(s.RecordMatchHandler(), paramsMiddleware, s.adminOnly))
	s.Router.Handle("/matches/undo", Chain(s.UndoMatchHandler(), paramsMiddleware, s.adminOnly))
	s.Router.Handle("/schedule", Chain(s.ScheduleHandler(), paramsMiddleware))
	s.Router.Handle("/membership/apply", Chain(s.MembershipApplyHandler(), paramsMiddleware))
	s.Router.Handle("/membership/pending", Chain(s.MembershipPendingHandler(), paramsMiddleware, s.adminOnly))
	s.Router.Handle("/membership/approve", Chain(s.MembershipApproveHandler(), paramsMiddleware, s.adminOnly))
	s.Router.Handle("/membership/reject", Chain(s.MembershipRejectHandler(), paramsMiddleware, s.adminOnly))
	s.Router.Handle("/gm/start", Chain(s.GMStartHandler(), paramsMiddleware))
	s.Router.Handle("/gm/state", Chain(s.GMStateHandler(), paramsMiddleware))
	s.Router.Handle("/gm/execute", Chain(s.GMExecuteHandler(), paramsMiddleware))
	s.Router.Handle("/gm/night", Chain(s.GMNightHandler(), paramsMiddleware))
	s.Router.Handle("/gm/commit", Chain(s.GMCommitHandler(), paramsMiddleware))
	s.Router.Handle("/gm/reset", Chain(s.GMResetHandler(), paramsMiddleware))
	s.Router.Handle("/notify-result", Chain(s.NotifyResultHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

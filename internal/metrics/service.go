package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		MatchesRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "howl_matches_recorded_total",
			Help: "The total number of match result batches written to the ledger.",
		}),
		MatchesUndone: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "howl_matches_undone_total",
			Help: "The total number of undo operations applied to the ledger.",
		}),
		SessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "howl_gm_sessions_started_total",
			Help: "The total number of GM sessions started.",
		}),
		SessionsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "howl_gm_sessions_completed_total",
			Help: "The total number of GM sessions reaching a decided result.",
		}),
		MembershipRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "howl_membership_requests_total",
			Help: "The total number of membership applications submitted.",
		}),
		MembershipApprovals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "howl_membership_approvals_total",
			Help: "The total number of membership applications approved.",
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "howl_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "howl_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "howl_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.MatchesRecorded,
		s.MatchesUndone,
		s.SessionsStarted,
		s.SessionsCompleted,
		s.MembershipRequests,
		s.MembershipApprovals,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncMatchesRecorded() {
	s.MatchesRecorded.Inc()
}

func (s *Service) IncMatchesUndone() {
	s.MatchesUndone.Inc()
}

func (s *Service) IncSessionsStarted() {
	s.SessionsStarted.Inc()
}

func (s *Service) IncSessionsCompleted() {
	s.SessionsCompleted.Inc()
}

func (s *Service) IncMembershipRequests() {
	s.MembershipRequests.Inc()
}

func (s *Service) IncMembershipApprovals() {
	s.MembershipApprovals.Inc()
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}

package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service is the Prometheus-backed Metrics implementation.
type Service struct {
	MatchesRecorded     prometheus.Counter
	MatchesUndone       prometheus.Counter
	SessionsStarted     prometheus.Counter
	SessionsCompleted   prometheus.Counter
	MembershipRequests  prometheus.Counter
	MembershipApprovals prometheus.Counter
	SlackNotifSent      prometheus.Counter
	SlackNotifFailed    prometheus.Counter
	StartupTimeSeconds  prometheus.Gauge
}

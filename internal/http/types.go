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

type Server struct {
	Store          club.ClubStore
	Membership     membership.Store
	Games          *game.Manager
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Notifier       notifier.Notifier
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}

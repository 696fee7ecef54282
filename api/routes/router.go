package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/collabhub/projects-backend/api/controllers"
	"github.com/collabhub/projects-backend/api/middleware"
	"github.com/collabhub/projects-backend/internal/notifications"
	"github.com/collabhub/projects-backend/pkg/config"
	"github.com/collabhub/projects-backend/pkg/logger"
)

// RouterParams bundle the dependencies of the HTTP surface.
type RouterParams struct {
	Config               *config.Config
	Logger               *logger.Logger
	NotificationsService *notifications.Service
	Pingers              map[string]controllers.Pinger
	MetricsRegistry      *prometheus.Registry
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger
	svc := params.NotificationsService

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, params.Pingers))
	})

	if params.MetricsRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(
			params.MetricsRegistry,
			promhttp.HandlerOpts{},
		))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.UserContext(logg))

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(svc, logg))
			r.Get("/unviewed-count", controllers.UnviewedNotificationCount(svc, logg))
			r.Post("/{notificationId}/viewed", controllers.MarkNotificationViewed(svc, logg))
			r.Post("/viewed-all", controllers.MarkAllNotificationsViewed(svc, logg))
		})

		r.Route("/notification-settings", func(r chi.Router) {
			r.Get("/", controllers.GetNotificationSettings(svc, logg))
			r.Patch("/", controllers.UpdateNotificationSettings(svc, logg))
		})
	})

	return r
}

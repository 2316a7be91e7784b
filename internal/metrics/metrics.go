package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LoginsTotal counts successful credential logins by role.
	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eduonline_logins_total",
		Help: "Successful logins by role.",
	}, []string{"role"})

	// SessionsInvalidated counts sessions displaced by a newer login.
	SessionsInvalidated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eduonline_sessions_invalidated_total",
		Help: "Sessions invalidated because the identity logged in elsewhere.",
	})

	// CheckinsDenied counts rejected attendance check-ins by reason.
	CheckinsDenied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eduonline_checkins_denied_total",
		Help: "Attendance check-ins denied, by reason (fence, session, validation).",
	}, []string{"reason"})

	// AIFallbacks counts attempts that fell through to the next model.
	AIFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eduonline_ai_fallbacks_total",
		Help: "AI completion attempts that failed over to the next model.",
	}, []string{"model"})

	// NotificationsFanned counts notification jobs fanned out by the worker.
	NotificationsFanned = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eduonline_notifications_fanned_total",
		Help: "Notification payloads pushed to connected clients, by kind.",
	}, []string{"kind"})
)

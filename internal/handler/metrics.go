package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "espectral_registrations_total",
		Help: "Total number of successful user registrations.",
	})

	sessionsStartedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "espectral_sessions_started_total",
			Help: "Total number of started narrative sessions by scenario.",
		},
		[]string{"scenario"},
	)

	turnsPlayedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "espectral_turns_played_total",
		Help: "Total number of committed player turns.",
	})

	narrationFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "espectral_narration_failures_total",
		Help: "Total number of failed narrative generation calls surfaced to clients.",
	})

	tokensCreditedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "espectral_tokens_credited_total",
		Help: "Total number of tokens credited through confirmed payments.",
	})

	voiceRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "espectral_voice_requests_total",
			Help: "Total number of voice playback requests by status.",
		},
		[]string{"status"},
	)
)

package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registrationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notes_registrations_total",
		Help: "Number of successful user registrations.",
	})

	notesSavedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notes_saved_total",
		Help: "Number of successfully persisted note submissions.",
	}, []string{"operation"}) // create, update, delete

	validationFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notes_validation_failures_total",
		Help: "Number of note submissions rejected by schema validation.",
	})

	csrfRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notes_csrf_rejections_total",
		Help: "Number of requests rejected by CSRF validation.",
	})

	toastsDeliveredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notes_toasts_delivered_total",
		Help: "Number of one-shot toasts delivered to clients.",
	})
)

package notifier

import (
	"github.com/gimlet-io/build-notifier/pkg/cloudbuild"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsDecoded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "build_notifier_events_decoded_total",
		Help: "The total number of decoded build events",
	}, []string{"status"})

	eventsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "build_notifier_events_skipped_total",
		Help: "The total number of build events that did not produce a notification",
	}, []string{"reason"})

	notificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "build_notifier_notifications_total",
		Help: "Notification deliveries by result",
	}, []string{"result"})
)

// MetricsObserver counts handled builds in prometheus
type MetricsObserver struct{}

func (MetricsObserver) Decoded(eventID string, build *cloudbuild.Build) {
	eventsDecoded.WithLabelValues(build.Status.String()).Inc()
}

func (MetricsObserver) Ineligible(build *cloudbuild.Build) {
	eventsSkipped.WithLabelValues(OutcomeIneligible.String()).Inc()
}

func (MetricsObserver) Unrecognized(build *cloudbuild.Build) {
	eventsSkipped.WithLabelValues(OutcomeUnrecognized.String()).Inc()
}

func (MetricsObserver) Delivered(eventID string, build *cloudbuild.Build, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	notificationsSent.WithLabelValues(result).Inc()
}

package notifier

import (
	"github.com/gimlet-io/build-notifier/pkg/cloudbuild"
	log "github.com/sirupsen/logrus"
)

// Observer receives diagnostics about handled builds. Implementations must
// not block, the notifier calls them inline.
type Observer interface {
	Decoded(eventID string, build *cloudbuild.Build)
	Ineligible(build *cloudbuild.Build)
	Unrecognized(build *cloudbuild.Build)
	Delivered(eventID string, build *cloudbuild.Build, err error)
}

// Observers fans out to every observer in the list
type Observers []Observer

func (o Observers) Decoded(eventID string, build *cloudbuild.Build) {
	for _, observer := range o {
		observer.Decoded(eventID, build)
	}
}

func (o Observers) Ineligible(build *cloudbuild.Build) {
	for _, observer := range o {
		observer.Ineligible(build)
	}
}

func (o Observers) Unrecognized(build *cloudbuild.Build) {
	for _, observer := range o {
		observer.Unrecognized(build)
	}
}

func (o Observers) Delivered(eventID string, build *cloudbuild.Build, err error) {
	for _, observer := range o {
		observer.Delivered(eventID, build, err)
	}
}

// LogObserver writes diagnostics with logrus
type LogObserver struct {
	Logger log.FieldLogger
}

func NewLogObserver() *LogObserver {
	return &LogObserver{Logger: log.StandardLogger()}
}

func (l *LogObserver) Decoded(eventID string, build *cloudbuild.Build) {
	l.Logger.WithFields(log.Fields{
		"event":  eventID,
		"status": build.Status.String(),
	}).Infof("build event: %s", string(build.Raw))
}

func (l *LogObserver) Ineligible(build *cloudbuild.Build) {
	l.Logger.WithField("status", build.Status.String()).Debug("skipping build, status is not notified")
}

func (l *LogObserver) Unrecognized(build *cloudbuild.Build) {
	l.Logger.Warnf("build has neither substitutions nor resolved repo source, skipping: %s", string(build.Raw))
}

func (l *LogObserver) Delivered(eventID string, build *cloudbuild.Build, err error) {
	entry := l.Logger.WithFields(log.Fields{
		"event":  eventID,
		"build":  build.ID,
		"status": build.Status.String(),
	})
	if err != nil {
		entry.Errorf("could not deliver build notification: %s", err)
		return
	}
	entry.Info("build notification delivered")
}

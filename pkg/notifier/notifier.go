// Package notifier turns Cloud Build status events into chat notifications.
//
// Every event is handled in isolation: it is decoded, filtered by status,
// rendered and handed to the notifications manager. Diagnostics go through
// an Observer so the notifier itself holds no process wide state.
package notifier

import (
	"context"

	"github.com/gimlet-io/build-notifier/pkg/cloudbuild"
	"github.com/gimlet-io/build-notifier/pkg/notifications"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrDelivery wraps errors returned by the notification providers
var ErrDelivery = errors.New("notification delivery failed")

// Outcome tells what happened to an event
type Outcome int

const (
	// OutcomeMalformed is the zero value, an unset outcome never reads as rendered
	OutcomeMalformed Outcome = iota
	OutcomeRendered
	OutcomeIneligible
	OutcomeUnrecognized
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMalformed:
		return "malformed"
	case OutcomeRendered:
		return "rendered"
	case OutcomeIneligible:
		return "ineligible"
	case OutcomeUnrecognized:
		return "unrecognized"
	}
	return "unknown"
}

type Config struct {
	// Statuses that produce a notification, defaults to the terminal ones
	Statuses []cloudbuild.Status
}

type Notifier struct {
	statuses map[cloudbuild.Status]bool
	manager  notifications.Manager
	observer Observer
}

func New(config Config, manager notifications.Manager, observer Observer) *Notifier {
	statuses := config.Statuses
	if len(statuses) == 0 {
		statuses = cloudbuild.TerminalStatuses()
	}

	eligible := map[cloudbuild.Status]bool{}
	for _, s := range statuses {
		eligible[s] = true
	}

	if observer == nil {
		observer = Observers{}
	}

	return &Notifier{
		statuses: eligible,
		manager:  manager,
		observer: observer,
	}
}

// Eligible reports whether builds in the given status are notified about
func (n *Notifier) Eligible(status cloudbuild.Status) bool {
	return n.statuses[status]
}

// Render decides whether the build is notified about and renders the message if so
func (n *Notifier) Render(build *cloudbuild.Build) (notifications.Message, Outcome) {
	if !n.Eligible(build.Status) {
		n.observer.Ineligible(build)
		return nil, OutcomeIneligible
	}

	msg, err := notifications.MessageFromBuild(build)
	if err != nil {
		n.observer.Unrecognized(build)
		return nil, OutcomeUnrecognized
	}

	return msg, OutcomeRendered
}

// Handle processes one Pub/Sub message.
// Malformed events return an error wrapping cloudbuild.ErrMalformedEvent,
// failed deliveries one wrapping ErrDelivery.
func (n *Notifier) Handle(ctx context.Context, event cloudbuild.PubSubMessage) (Outcome, error) {
	build, err := cloudbuild.DecodeEvent(event)
	if err != nil {
		return OutcomeMalformed, err
	}

	eventID := event.MessageID
	if eventID == "" {
		eventID = uuid.NewString()
	}
	n.observer.Decoded(eventID, build)

	msg, outcome := n.Render(build)
	if outcome != OutcomeRendered {
		return outcome, nil
	}

	err = n.manager.Send(ctx, msg)
	n.observer.Delivered(eventID, build, err)
	if err != nil {
		return outcome, errors.WithMessagef(ErrDelivery, "%s", err)
	}

	return outcome, nil
}

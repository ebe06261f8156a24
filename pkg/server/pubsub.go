package server

import (
	"encoding/json"
	"net/http"

	"github.com/gimlet-io/build-notifier/pkg/cloudbuild"
	"github.com/gimlet-io/build-notifier/pkg/notifier"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// PushRequest is the body of a Pub/Sub push subscription delivery
type PushRequest struct {
	Message      cloudbuild.PubSubMessage `json:"message"`
	Subscription string                   `json:"subscription"`
}

func pubSubPush(w http.ResponseWriter, r *http.Request) {
	var push PushRequest
	err := json.NewDecoder(r.Body).Decode(&push)
	if err != nil {
		log.Errorf("cannot parse push request: %s", err)
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	n := ctx.Value("notifier").(*notifier.Notifier)

	outcome, err := n.Handle(ctx, push.Message)
	if outcome == notifier.OutcomeMalformed {
		log.Errorf("cannot decode build event %s: %s", push.Message.MessageID, err)
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if errors.Is(err, notifier.ErrDelivery) {
		// delivery is not retried, the message is acknowledged anyway
		log.Warnf("build event %s: %s", push.Message.MessageID, err)
	}

	if outcome != notifier.OutcomeRendered {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(""))
}

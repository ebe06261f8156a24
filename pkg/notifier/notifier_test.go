package notifier

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"testing"

	"github.com/gimlet-io/build-notifier/pkg/cloudbuild"
	"github.com/gimlet-io/build-notifier/pkg/notifications"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockManager struct {
	mock.Mock
}

func (m *mockManager) Send(ctx context.Context, msg notifications.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *mockManager) AddProvider(provider notifications.Provider) {
	m.Called(provider)
}

type recordingObserver struct {
	decoded      []string
	ineligible   []*cloudbuild.Build
	unrecognized []*cloudbuild.Build
	delivered    []error
}

func (r *recordingObserver) Decoded(eventID string, build *cloudbuild.Build) {
	r.decoded = append(r.decoded, eventID)
}

func (r *recordingObserver) Ineligible(build *cloudbuild.Build) {
	r.ineligible = append(r.ineligible, build)
}

func (r *recordingObserver) Unrecognized(build *cloudbuild.Build) {
	r.unrecognized = append(r.unrecognized, build)
}

func (r *recordingObserver) Delivered(eventID string, build *cloudbuild.Build, err error) {
	r.delivered = append(r.delivered, err)
}

const substitutionEvent = `{"status":"SUCCESS","logUrl":"http://x","startTime":"t0","finishTime":"t1","substitutions":{"REPO_NAME":"org_repo","BRANCH_NAME":"main","COMMIT_SHA":"abc123"}}`

const resolvedEvent = `{"status":"SUCCESS","logUrl":"http://x","startTime":"t0","finishTime":"t1","source":{"repoSource":{"branchName":"main"}},"sourceProvenance":{"resolvedRepoSource":{"repoName":"org_repo","commitSha":"abc123"}}}`

func pubSubMessage(build string) cloudbuild.PubSubMessage {
	return cloudbuild.PubSubMessage{
		Data:      base64.StdEncoding.EncodeToString([]byte(build)),
		MessageID: "1234",
	}
}

func sentSlackMessage(t *testing.T, manager *mockManager) *notifications.SlackMessage {
	manager.AssertNumberOfCalls(t, "Send", 1)
	msg := manager.Calls[0].Arguments.Get(1).(notifications.Message)
	slackMessage, err := msg.AsSlackMessage()
	assert.Nil(t, err)
	return slackMessage
}

func Test_HandleSubstitutionBuild(t *testing.T) {
	manager := &mockManager{}
	manager.On("Send", mock.Anything, mock.Anything).Return(nil)
	observer := &recordingObserver{}

	n := New(Config{}, manager, observer)
	outcome, err := n.Handle(context.Background(), pubSubMessage(substitutionEvent))
	assert.Nil(t, err)
	assert.Equal(t, OutcomeRendered, outcome)

	slackMessage := sentSlackMessage(t, manager)
	for _, expected := range []string{"github/org_repo", "main", "abc123", "t0", "t1"} {
		assert.True(t, strings.Contains(slackMessage.Text, expected), expected)
	}
	assert.Equal(t, "SUCCESS", slackMessage.Attachments[0].Fields[0].Value)

	assert.Equal(t, []string{"1234"}, observer.decoded)
	assert.Equal(t, []error{nil}, observer.delivered)
}

func Test_HandleResolvedBuild(t *testing.T) {
	manager := &mockManager{}
	manager.On("Send", mock.Anything, mock.Anything).Return(nil)

	n := New(Config{}, manager, nil)
	_, err := n.Handle(context.Background(), pubSubMessage(resolvedEvent))
	assert.Nil(t, err)

	slackMessage := sentSlackMessage(t, manager)
	assert.True(t, strings.Contains(slackMessage.Text, "org/repo"))
	assert.False(t, strings.Contains(slackMessage.Text, "org_repo"))
}

func Test_HandleIneligibleStatus(t *testing.T) {
	for _, status := range []string{"QUEUED", "WORKING", "PENDING", "STATUS_UNKNOWN", "NOT_A_STATUS"} {
		manager := &mockManager{}
		observer := &recordingObserver{}

		event := strings.Replace(substitutionEvent, `"SUCCESS"`, fmt.Sprintf(`"%s"`, status), 1)
		n := New(Config{}, manager, observer)
		outcome, err := n.Handle(context.Background(), pubSubMessage(event))
		assert.Nil(t, err, status)
		assert.Equal(t, OutcomeIneligible, outcome, status)
		manager.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
		assert.Len(t, observer.ineligible, 1, status)
		assert.Empty(t, observer.unrecognized, status)
	}
}

func Test_HandleUnrecognizedBuild(t *testing.T) {
	manager := &mockManager{}
	logger, hook := test.NewNullLogger()
	observer := &LogObserver{Logger: logger}

	n := New(Config{}, manager, observer)
	outcome, err := n.Handle(context.Background(), pubSubMessage(`{"status":"FAILURE","logUrl":"http://x"}`))
	assert.Nil(t, err, "unrecognized builds are not an error")
	assert.Equal(t, OutcomeUnrecognized, outcome)
	manager.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)

	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Contains(t, hook.LastEntry().Message, `"logUrl":"http://x"`, "the raw record is logged")
}

func Test_HandleMalformedEvent(t *testing.T) {
	manager := &mockManager{}
	observer := &recordingObserver{}

	n := New(Config{}, manager, observer)
	for _, data := range []string{"%%%", base64.StdEncoding.EncodeToString([]byte(`["SUCCESS"]`))} {
		outcome, err := n.Handle(context.Background(), cloudbuild.PubSubMessage{Data: data})
		assert.NotNil(t, err)
		assert.True(t, errors.Is(err, cloudbuild.ErrMalformedEvent))
		assert.Equal(t, OutcomeMalformed, outcome)
		assert.NotEqual(t, OutcomeRendered, outcome)
	}
	assert.Empty(t, observer.decoded)
	manager.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)

	var unset Outcome
	assert.Equal(t, OutcomeMalformed, unset)
	assert.Equal(t, "malformed", unset.String())
}

func Test_HandleUnexpectedFieldTypes(t *testing.T) {
	manager := &mockManager{}
	observer := &recordingObserver{}
	n := New(Config{}, manager, observer)

	outcome, err := n.Handle(context.Background(), pubSubMessage(strings.Replace(substitutionEvent, `"SUCCESS"`, `3`, 1)))
	assert.Nil(t, err, "a numeric status is skipped, not malformed")
	assert.Equal(t, OutcomeIneligible, outcome)
	manager.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)

	manager.On("Send", mock.Anything, mock.Anything).Return(nil)

	buildNum := strings.Replace(substitutionEvent, `"COMMIT_SHA":"abc123"`, `"COMMIT_SHA":"abc123","_BUILD_NUM":7`, 1)
	outcome, err = n.Handle(context.Background(), pubSubMessage(buildNum))
	assert.Nil(t, err)
	assert.Equal(t, OutcomeRendered, outcome)

	stringSource := strings.Replace(substitutionEvent, `"logUrl"`, `"source":"x","logUrl"`, 1)
	outcome, err = n.Handle(context.Background(), pubSubMessage(stringSource))
	assert.Nil(t, err)
	assert.Equal(t, OutcomeRendered, outcome)

	manager.AssertNumberOfCalls(t, "Send", 2)
	for _, call := range manager.Calls {
		assert.Equal(t, "github/org_repo", call.Arguments.Get(1).(notifications.Message).RepositoryName())
	}
	assert.Len(t, observer.decoded, 3)
}

func Test_HandleDeliveryFailure(t *testing.T) {
	manager := &mockManager{}
	manager.On("Send", mock.Anything, mock.Anything).Return(fmt.Errorf("slack: status 500"))
	observer := &recordingObserver{}

	n := New(Config{}, manager, observer)
	_, err := n.Handle(context.Background(), pubSubMessage(substitutionEvent))
	assert.True(t, errors.Is(err, ErrDelivery))
	assert.False(t, errors.Is(err, cloudbuild.ErrMalformedEvent))
	assert.Len(t, observer.delivered, 1)
	assert.NotNil(t, observer.delivered[0])
}

func Test_HandleGeneratesEventID(t *testing.T) {
	manager := &mockManager{}
	manager.On("Send", mock.Anything, mock.Anything).Return(nil)
	observer := &recordingObserver{}

	event := pubSubMessage(substitutionEvent)
	event.MessageID = ""
	n := New(Config{}, manager, observer)
	_, err := n.Handle(context.Background(), event)
	assert.Nil(t, err)
	assert.Len(t, observer.decoded, 1)
	assert.NotEmpty(t, observer.decoded[0])
}

func Test_Eligible(t *testing.T) {
	n := New(Config{}, notifications.NewDummyManager(), nil)
	for _, status := range cloudbuild.TerminalStatuses() {
		assert.True(t, n.Eligible(status), status.String())
	}
	assert.False(t, n.Eligible(cloudbuild.Queued))
	assert.False(t, n.Eligible(cloudbuild.Working))
	assert.False(t, n.Eligible(cloudbuild.StatusUnknown))

	n = New(Config{Statuses: []cloudbuild.Status{cloudbuild.Failure}}, notifications.NewDummyManager(), nil)
	assert.True(t, n.Eligible(cloudbuild.Failure))
	assert.False(t, n.Eligible(cloudbuild.Success))
}

func Test_RenderIsIdempotent(t *testing.T) {
	build, err := cloudbuild.Parse([]byte(resolvedEvent))
	assert.Nil(t, err)

	n := New(Config{}, notifications.NewDummyManager(), nil)
	first, outcome := n.Render(build)
	assert.Equal(t, OutcomeRendered, outcome)
	second, _ := n.Render(build)

	firstSlack, _ := first.AsSlackMessage()
	secondSlack, _ := second.AsSlackMessage()
	assert.Equal(t, firstSlack, secondSlack)
}

package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultSlackTimeout = 10 * time.Second

// SlackProvider posts to a Slack incoming webhook
type SlackProvider struct {
	WebhookURL string
	Client     *http.Client
}

// SlackMessage is the incoming webhook payload
type SlackMessage struct {
	Text        string       `json:"text"`
	Mrkdwn      bool         `json:"mrkdwn"`
	Attachments []Attachment `json:"attachments"`
}

type Attachment struct {
	Title     string  `json:"title"`
	TitleLink string  `json:"title_link"`
	Fields    []Field `json:"fields"`
}

type Field struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

func NewSlackProvider(webhookURL string, timeout time.Duration) *SlackProvider {
	if timeout <= 0 {
		timeout = defaultSlackTimeout
	}
	return &SlackProvider{
		WebhookURL: webhookURL,
		Client:     &http.Client{Timeout: timeout},
	}
}

func (s *SlackProvider) name() string {
	return "slack"
}

func (s *SlackProvider) send(ctx context.Context, msg Message) error {
	slackMessage, err := msg.AsSlackMessage()
	if err != nil {
		return fmt.Errorf("cannot create slack message: %s", err)
	}

	if slackMessage == nil {
		return nil
	}

	return s.post(ctx, slackMessage)
}

func (s *SlackProvider) post(ctx context.Context, msg *SlackMessage) error {
	b := new(bytes.Buffer)
	err := json.NewEncoder(b).Encode(msg)
	if err != nil {
		logrus.Errorf("could not encode message to slack: %v", err)
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.WebhookURL, b)
	if err != nil {
		return fmt.Errorf("invalid slack webhook url: %s", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: defaultSlackTimeout}
	}
	res, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("could not post to slack: %s", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		logrus.Infof("slack response: %s", string(body))
		return fmt.Errorf("could not post to slack, status: %d", res.StatusCode)
	}

	return nil
}

package config

import (
	"github.com/gimlet-io/build-notifier/pkg/cloudbuild"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Environ returns the settings from the environment.
func Environ() (*Config, error) {
	cfg := Config{}
	err := envconfig.Process("", &cfg)
	defaults(&cfg)

	return &cfg, err
}

func defaults(c *Config) {
	if c.Host == "" {
		c.Host = ":8080"
	}
	if c.MetricsHost == "" {
		c.MetricsHost = ":9001"
	}
	if c.Notifications.TimeoutSeconds == 0 {
		c.Notifications.TimeoutSeconds = 10
	}
}

// String returns the configuration in string format.
func (c *Config) String() string {
	out, _ := yaml.Marshal(c)
	return string(out)
}

type Config struct {
	Logging       Logging
	Host          string `envconfig:"HOST"`
	MetricsHost   string `envconfig:"METRICS_HOST"`
	Slack         Slack
	Discord       Discord
	Notifications Notifications
}

// Logging provides the logging configuration.
type Logging struct {
	Debug  bool `envconfig:"DEBUG"`
	Trace  bool `envconfig:"TRACE"`
	JSON   bool `envconfig:"LOGS_JSON"`
	Pretty bool `envconfig:"LOGS_PRETTY"`
}

type Slack struct {
	WebhookURL string `envconfig:"SLACK_WEBHOOK_URL"`
}

type Discord struct {
	Token     string `envconfig:"DISCORD_TOKEN"`
	ChannelID string `envconfig:"DISCORD_CHANNEL_ID"`
}

type Notifications struct {
	// Comma separated build statuses to notify about, terminal ones if empty
	Statuses       []cloudbuild.Status `envconfig:"NOTIFY_STATUSES"`
	TimeoutSeconds int                 `envconfig:"NOTIFICATIONS_TIMEOUT_SECONDS"`
}

func (c *Config) IsSlack() bool {
	return c.Slack.WebhookURL != ""
}

func (c *Config) IsDiscord() bool {
	return c.Discord.Token != "" && c.Discord.ChannelID != ""
}

// Validate checks that there is somewhere to deliver notifications to
func (c *Config) Validate() error {
	if !c.IsSlack() && !c.IsDiscord() {
		return errors.New("please provide the SLACK_WEBHOOK_URL variable")
	}
	if (c.Discord.Token == "") != (c.Discord.ChannelID == "") {
		return errors.New("DISCORD_TOKEN and DISCORD_CHANNEL_ID must be set together")
	}
	return nil
}

// Statuses returns the statuses to notify about
func (c *Config) Statuses() []cloudbuild.Status {
	if len(c.Notifications.Statuses) == 0 {
		return cloudbuild.TerminalStatuses()
	}
	return c.Notifications.Statuses
}

package notifications

import "github.com/gimlet-io/build-notifier/pkg/cloudbuild"

type Message interface {
	AsSlackMessage() (*SlackMessage, error)
	AsDiscordMessage() (*discordMessage, error)
	RepositoryName() string
	SHA() string
	Status() cloudbuild.Status
}

package notifications

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/gimlet-io/build-notifier/pkg/cloudbuild"
	"github.com/pkg/errors"
)

// ErrUnrecognizedSource is returned for builds that carry neither substitutions
// nor a resolved repo source
var ErrUnrecognizedSource = errors.New("build has no recognizable repository source")

const buildTextFormat = "Build for `%s` branch `%s` commit `%s` completed.\nStarted: `%s`\nFinished: `%s`"

const (
	logsTitle   = "Build logs"
	statusTitle = "Status"
)

type buildMessage struct {
	build  *cloudbuild.Build
	source cloudbuild.Source
}

// MessageFromBuild renders a build notification
func MessageFromBuild(build *cloudbuild.Build) (Message, error) {
	source := build.Source()
	if !source.Recognized() {
		return nil, ErrUnrecognizedSource
	}

	return &buildMessage{
		build:  build,
		source: source,
	}, nil
}

func (bm *buildMessage) text() string {
	return fmt.Sprintf(buildTextFormat,
		bm.source.Repository(),
		bm.source.Branch(),
		bm.source.CommitSHA(),
		bm.build.StartTime,
		bm.build.FinishTime,
	)
}

func (bm *buildMessage) AsSlackMessage() (*SlackMessage, error) {
	return &SlackMessage{
		Text:   bm.text(),
		Mrkdwn: true,
		Attachments: []Attachment{
			{
				Title:     logsTitle,
				TitleLink: bm.build.LogURL,
				Fields: []Field{
					{
						Title: statusTitle,
						Value: bm.build.Status.String(),
					},
				},
			},
		},
	}, nil
}

func (bm *buildMessage) AsDiscordMessage() (*discordMessage, error) {
	return &discordMessage{
		Text: bm.text(),
		Embed: &discordgo.MessageEmbed{
			Type:  discordgo.EmbedTypeRich,
			Title: logsTitle,
			URL:   bm.build.LogURL,
			Color: discordColor(bm.build.Status),
			Fields: []*discordgo.MessageEmbedField{
				{
					Name:   statusTitle,
					Value:  bm.build.Status.String(),
					Inline: true,
				},
			},
		},
	}, nil
}

func (bm *buildMessage) RepositoryName() string {
	return bm.source.Repository()
}

func (bm *buildMessage) SHA() string {
	return bm.source.CommitSHA()
}

func (bm *buildMessage) Status() cloudbuild.Status {
	return bm.build.Status
}

package notifications

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/gimlet-io/build-notifier/pkg/cloudbuild"
)

const (
	discordGreen  = 3066993
	discordRed    = 15158332
	discordYellow = 15844367
	discordGray   = 9807270
)

// DiscordProvider sends build notifications through a Discord bot
type DiscordProvider struct {
	Token     string
	ChannelID string
}

type discordMessage struct {
	Text  string                  `json:"text"`
	Embed *discordgo.MessageEmbed `json:"embed"`
}

func (d *DiscordProvider) name() string {
	return "discord"
}

func (d *DiscordProvider) send(ctx context.Context, msg Message) error {
	discordBot, err := discordgo.New("Bot " + d.Token)
	if err != nil {
		return fmt.Errorf("error creating Discord session, %s", err)
	}

	discordMessage, err := msg.AsDiscordMessage()
	if err != nil {
		return fmt.Errorf("cannot create discord message: %s", err)
	}

	return d.post(ctx, discordBot, discordMessage)
}

func (d *DiscordProvider) post(ctx context.Context, session *discordgo.Session, msg *discordMessage) error {
	_, err := session.ChannelMessageSendComplex(d.ChannelID, &discordgo.MessageSend{
		Content: msg.Text,
		Embeds:  []*discordgo.MessageEmbed{msg.Embed},
	}, discordgo.WithContext(ctx))
	return err
}

func discordColor(status cloudbuild.Status) int {
	switch status {
	case cloudbuild.Success:
		return discordGreen
	case cloudbuild.Failure, cloudbuild.InternalError:
		return discordRed
	case cloudbuild.Timeout, cloudbuild.Expired:
		return discordYellow
	default:
		return discordGray
	}
}

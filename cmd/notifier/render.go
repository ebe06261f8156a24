package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/enescakir/emoji"
	"github.com/fatih/color"
	"github.com/gimlet-io/build-notifier/pkg/cloudbuild"
	"github.com/gimlet-io/build-notifier/pkg/notifications"
	"github.com/gimlet-io/build-notifier/pkg/notifier"
	"github.com/urfave/cli/v2"
)

var renderCmd = cli.Command{
	Name:  "render",
	Usage: "Renders the Slack message for a build event without sending it",
	UsageText: `build-notifier render \
     -f build.json`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "file",
			Aliases:  []string{"f"},
			Usage:    "build json, or a Pub/Sub message with --envelope (mandatory)",
			Required: true,
		},
		&cli.BoolFlag{
			Name:  "envelope",
			Usage: "the file is a Pub/Sub message with base64 encoded data",
		},
		&cli.StringSliceFlag{
			Name:    "statuses",
			Usage:   "build statuses to notify about, NOTIFY_STATUSES environment variable alternatively",
			EnvVars: []string{"NOTIFY_STATUSES"},
		},
	},
	Action: render,
}

func render(c *cli.Context) error {
	content, err := os.ReadFile(c.String("file"))
	if err != nil {
		return fmt.Errorf("cannot read file %s", err)
	}

	build, err := readBuild(content, c.Bool("envelope"))
	if err != nil {
		return err
	}

	statuses, err := cloudbuild.ParseStatuses(c.StringSlice("statuses"))
	if err != nil {
		return err
	}

	n := notifier.New(notifier.Config{Statuses: statuses}, notifications.NewDummyManager(), nil)
	msg, outcome := n.Render(build)

	yellow := color.New(color.FgYellow).SprintFunc()
	switch outcome {
	case notifier.OutcomeIneligible:
		fmt.Printf("%v Build status %s is not notified about\n", emoji.Bookmark, yellow(build.Status.String()))
		return nil
	case notifier.OutcomeUnrecognized:
		fmt.Printf("%v Build has %s, it would be skipped\n", emoji.Warning, yellow("neither substitutions nor a resolved repo source"))
		return nil
	}

	slackMessage, err := msg.AsSlackMessage()
	if err != nil {
		return err
	}
	payload, err := json.MarshalIndent(slackMessage, "", "  ")
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen).SprintFunc()
	fmt.Printf("%v Slack message for %s:\n", emoji.Pager, green(msg.RepositoryName()))
	fmt.Println(string(payload))
	return nil
}

func readBuild(content []byte, envelope bool) (*cloudbuild.Build, error) {
	if !envelope {
		return cloudbuild.Parse(content)
	}

	var msg cloudbuild.PubSubMessage
	err := json.Unmarshal(content, &msg)
	if err != nil {
		return nil, fmt.Errorf("cannot parse pub/sub message %s", err)
	}
	return cloudbuild.DecodeEvent(msg)
}

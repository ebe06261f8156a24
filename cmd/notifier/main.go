package main

import (
	"fmt"
	"os"

	"github.com/enescakir/emoji"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:                 "build-notifier",
		Usage:                "forwards Cloud Build status events to Slack and Discord",
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			&serveCmd,
			&renderCmd,
		},
		Action: serve,
	}
	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %s\n", emoji.CrossMark, err.Error())
		os.Exit(1)
	}
}

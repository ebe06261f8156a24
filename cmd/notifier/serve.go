package main

import (
	"fmt"
	"net/http"
	"path"
	"runtime"
	"time"

	"github.com/gimlet-io/build-notifier/cmd/notifier/config"
	"github.com/gimlet-io/build-notifier/pkg/notifications"
	"github.com/gimlet-io/build-notifier/pkg/notifier"
	"github.com/gimlet-io/build-notifier/pkg/server"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var serveCmd = cli.Command{
	Name:   "serve",
	Usage:  "Serves the Pub/Sub push endpoint",
	Action: serve,
}

func serve(c *cli.Context) error {
	err := godotenv.Load(".env")
	if err != nil {
		log.Warnf("could not load .env file, relying on env vars")
	}

	config, err := config.Environ()
	if err != nil {
		return fmt.Errorf("invalid configuration: %s", err)
	}

	initLogger(config)
	if log.IsLevelEnabled(log.TraceLevel) {
		log.Traceln(config.String())
	}

	err = config.Validate()
	if err != nil {
		return err
	}

	n := newNotifier(config)

	metricsRouter := chi.NewRouter()
	metricsRouter.Get("/metrics", promhttp.Handler().ServeHTTP)
	go func() {
		err := http.ListenAndServe(config.MetricsHost, metricsRouter)
		log.Errorf("metrics server stopped: %s", err)
	}()

	r := server.SetupRouter(n)
	log.Infof("listening on %s", config.Host)
	return http.ListenAndServe(config.Host, r)
}

// newNotifier wires the notification providers configured in the environment
func newNotifier(config *config.Config) *notifier.Notifier {
	manager := notifications.NewManager()
	timeout := time.Duration(config.Notifications.TimeoutSeconds) * time.Second
	if config.IsSlack() {
		manager.AddProvider(notifications.NewSlackProvider(config.Slack.WebhookURL, timeout))
		log.Info("slack notifications enabled")
	}
	if config.IsDiscord() {
		manager.AddProvider(&notifications.DiscordProvider{
			Token:     config.Discord.Token,
			ChannelID: config.Discord.ChannelID,
		})
		log.Info("discord notifications enabled")
	}

	observer := notifier.Observers{
		notifier.NewLogObserver(),
		notifier.MetricsObserver{},
	}

	return notifier.New(notifier.Config{Statuses: config.Statuses()}, manager, observer)
}

// initLogger sets the log level and format
func initLogger(c *config.Config) {
	log.SetReportCaller(true)
	log.SetFormatter(newFormatter(c.Logging))

	if c.Logging.Debug {
		log.SetLevel(log.DebugLevel)
	}
	if c.Logging.Trace {
		log.SetLevel(log.TraceLevel)
	}
}

// newFormatter logs text for terminals, or json with Cloud Logging's
// severity and message keys when LOGS_JSON is set
func newFormatter(c config.Logging) log.Formatter {
	if c.JSON {
		return &log.JSONFormatter{
			PrettyPrint: c.Pretty,
			FieldMap: log.FieldMap{
				log.FieldKeyLevel: "severity",
				log.FieldKeyMsg:   "message",
			},
			CallerPrettyfier: func(f *runtime.Frame) (string, string) {
				return "", fmt.Sprintf("%s:%d", path.Base(f.File), f.Line)
			},
		}
	}

	return &log.TextFormatter{
		FullTimestamp: true,
		CallerPrettyfier: func(f *runtime.Frame) (string, string) {
			return "", fmt.Sprintf("[%s:%d]", path.Base(f.File), f.Line)
		},
	}
}

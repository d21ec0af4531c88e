package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/reaandrew/lintdetector/core"
	log "github.com/sirupsen/logrus"
)

// Version is set with -ldflags "-X main.Version=...".
var Version string

func setupLogging(debug bool) {
	log.SetOutput(os.Stderr)
	log.SetLevel(log.WarnLevel)
	if debug {
		log.SetLevel(log.DebugLevel)
	}
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})
}

func main() {
	if Version != "" {
		core.Version = Version
	}
	setupLogging(false)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	cli := &Cli{}
	err := cli.Execute(ctx)
	stop()
	if err != nil {
		log.Error(err)
	}
	os.Exit(int(core.ExitCodeFor(err)))
}

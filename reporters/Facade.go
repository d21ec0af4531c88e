package reporters

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/reaandrew/lintdetector/config"
	"github.com/reaandrew/lintdetector/core"
	"github.com/reaandrew/lintdetector/reportstorage"
	log "github.com/sirupsen/logrus"
)

var defaultConsoleExcludes = []string{"lite", "profiling-summary"}

// Facade renders every enabled report for a finished result.
type Facade struct {
	Console      []ConsoleReport
	Output       []OutputReport
	Destinations map[string]string
	Writer       io.Writer
	Storage      func(destination, reportFormat string) reportstorage.ReportStorage
}

// NewFacade selects the console reports enabled in cfg and one output report per
// destination. Destinations map report ids to file paths or http(s) URLs.
func NewFacade(cfg *config.Config, destinations map[string]string, writer io.Writer) (*Facade, error) {
	if writer == nil {
		writer = os.Stdout
	}
	facade := &Facade{
		Destinations: destinations,
		Writer:       writer,
		Storage:      reportstorage.CreateReportStorage,
	}

	consoleConfig := cfg.SubConfig("console-reports")
	if consoleConfig.Bool("active", true) {
		excluded := consoleConfig.StringList("exclude", defaultConsoleExcludes)
		for _, id := range ConsoleReportIDs() {
			if slices.Contains(excluded, id) {
				continue
			}
			report, err := CreateConsoleReport(id)
			if err != nil {
				return nil, err
			}
			facade.Console = append(facade.Console, report)
		}
	}

	outputConfig := cfg.SubConfig("output-reports")
	ids := make([]string, 0, len(destinations))
	for id := range destinations {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	excluded := outputConfig.StringList("exclude", nil)
	for _, id := range ids {
		report, err := CreateOutputReport(id)
		if err != nil {
			return nil, core.NewConfigurationError("%s", err.Error())
		}
		if !outputConfig.Bool("active", true) || slices.Contains(excluded, id) {
			log.WithField("report", id).Debug("Output report disabled by configuration")
			continue
		}
		facade.Output = append(facade.Output, report)
	}
	return facade, nil
}

// Run writes the output reports first so that write failures show up as
// notifications in the console reports. The returned result carries those
// notifications.
func (f *Facade) Run(result *core.AnalysisResult) *core.AnalysisResult {
	var notifications []core.Notification
	for _, report := range f.Output {
		destination := f.Destinations[report.ID()]
		if err := f.write(report, destination, result); err != nil {
			writeErr := &core.ReportWriteError{ReportID: report.ID(), Path: destination, Err: err}
			log.WithError(writeErr).Error("Failed to generate report")
			notifications = append(notifications, core.ErrorNotification(writeErr))
			continue
		}
		log.WithFields(log.Fields{"report": report.ID(), "path": destination}).Info("Successfully generated report")
	}
	result = result.WithNotifications(notifications...)

	for _, report := range f.Console {
		out, err := report.Render(result)
		if err != nil {
			log.WithError(err).WithField("report", report.ID()).Warn("Failed to render console report")
			continue
		}
		if strings.TrimSpace(out) == "" {
			continue
		}
		fmt.Fprintln(f.Writer, strings.TrimRight(out, "\n"))
	}
	return result
}

func (f *Facade) write(report OutputReport, destination string, result *core.AnalysisResult) error {
	data, err := report.Render(result)
	if err != nil {
		return err
	}
	return f.Storage(destination, report.ID()).Store(data)
}

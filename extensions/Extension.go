package extensions

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/reaandrew/lintdetector/config"
	"github.com/reaandrew/lintdetector/core"
	log "github.com/sirupsen/logrus"
)

// ReportingExtension post-processes a sealed result before reports render it.
// TransformIssues must not modify the slice it receives. Returning it unchanged
// tells the pipeline that nothing was transformed.
type ReportingExtension interface {
	ID() string
	// Priority orders extensions. Higher runs first.
	Priority() int
	Init(cfg *config.Config) error
	OnRawResult(result *core.AnalysisResult) error
	TransformIssues(issues []core.Issue) []core.Issue
	OnFinalResult(result *core.AnalysisResult) error
}

// Base implements every hook except ID as a no-op.
type Base struct{}

func (Base) Priority() int                                    { return 0 }
func (Base) Init(*config.Config) error                        { return nil }
func (Base) OnRawResult(*core.AnalysisResult) error           { return nil }
func (Base) TransformIssues(issues []core.Issue) []core.Issue { return issues }
func (Base) OnFinalResult(*core.AnalysisResult) error         { return nil }

// Sorted returns the extensions by descending priority. Ties keep their order.
func Sorted(extensions []ReportingExtension) []ReportingExtension {
	sorted := slices.Clone(extensions)
	slices.SortStableFunc(sorted, func(a, b ReportingExtension) int {
		return cmp.Compare(b.Priority(), a.Priority())
	})
	return sorted
}

// Init initializes every extension. Failures are configuration errors.
func Init(extensions []ReportingExtension, cfg *config.Config) error {
	for _, extension := range extensions {
		if err := extension.Init(cfg); err != nil {
			return fmt.Errorf("failed to initialize extension '%s': %w", extension.ID(), err)
		}
	}
	return nil
}

// Run feeds a sealed result through the extensions: every OnRawResult, then
// every TransformIssues in turn, then every OnFinalResult. Hook errors become
// error notifications on the returned result.
func Run(result *core.AnalysisResult, extensions []ReportingExtension) *core.AnalysisResult {
	ordered := Sorted(extensions)
	var notifications []core.Notification

	for _, extension := range ordered {
		if err := extension.OnRawResult(result); err != nil {
			log.WithError(err).WithField("extension", extension.ID()).Warn("Extension failed on raw result")
			notifications = append(notifications, core.ErrorNotification(fmt.Errorf("extension '%s': %w", extension.ID(), err)))
		}
	}

	current := result
	for _, extension := range ordered {
		issues := extension.TransformIssues(current.Issues)
		if sameSlice(issues, current.Issues) {
			continue
		}
		current = current.WithIssues(issues)
	}

	for _, extension := range ordered {
		if err := extension.OnFinalResult(current); err != nil {
			log.WithError(err).WithField("extension", extension.ID()).Warn("Extension failed on final result")
			notifications = append(notifications, core.ErrorNotification(fmt.Errorf("extension '%s': %w", extension.ID(), err)))
		}
	}

	core.SortNotifications(notifications)
	return current.WithNotifications(notifications...)
}

func sameSlice(a, b []core.Issue) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}

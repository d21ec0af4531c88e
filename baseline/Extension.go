package baseline

import (
	"slices"

	"github.com/reaandrew/lintdetector/config"
	"github.com/reaandrew/lintdetector/core"
	"github.com/reaandrew/lintdetector/extensions"
	log "github.com/sirupsen/logrus"
)

const SuppressReason = "baseline"

// Extension marks issues accepted by the baseline file as suppressed and, in
// create mode, writes the current issues back into that file.
type Extension struct {
	extensions.Base
	Path   string
	Create bool

	baseline *Baseline
}

func NewExtension(path string, create bool) *Extension {
	return &Extension{Path: path, Create: create}
}

func (e *Extension) ID() string { return "baseline" }

// Init loads the baseline when the file exists. A missing file disables filtering.
func (e *Extension) Init(*config.Config) error {
	if e.Path == "" || !Exists(e.Path) {
		return nil
	}
	loaded, err := Load(e.Path)
	if err != nil {
		return &core.ConfigurationError{Messages: []string{"invalid baseline"}, Err: err}
	}
	e.baseline = loaded
	log.WithFields(log.Fields{
		"path":   e.Path,
		"manual": len(loaded.ManuallySuppressedIssues),
	}).Debug("Loaded baseline")
	return nil
}

func (e *Extension) OnRawResult(result *core.AnalysisResult) error {
	if !e.Create || e.Path == "" {
		return nil
	}
	return e.createOrUpdate(result.ActiveIssues())
}

// createOrUpdate keeps the manually suppressed ids and replaces the current ones.
// No file is created for a run without issues.
func (e *Extension) createOrUpdate(issues []core.Issue) error {
	if len(issues) == 0 && !Exists(e.Path) {
		return nil
	}
	updated := New()
	if e.baseline != nil {
		for id := range e.baseline.ManuallySuppressedIssues {
			updated.ManuallySuppressedIssues[id] = struct{}{}
		}
	}
	for _, issue := range issues {
		updated.CurrentIssues[IssueID(issue)] = struct{}{}
	}
	if err := Save(e.Path, updated); err != nil {
		return err
	}
	log.WithFields(log.Fields{"path": e.Path, "issues": len(updated.CurrentIssues)}).Info("Baseline written")
	e.baseline = updated
	return nil
}

// TransformIssues returns the input slice itself when no issue is known.
func (e *Extension) TransformIssues(issues []core.Issue) []core.Issue {
	if e.baseline == nil || len(e.baseline.ManuallySuppressedIssues) == 0 {
		return issues
	}
	var out []core.Issue
	for i, issue := range issues {
		if !e.baseline.ManuallySuppressedIssues.Contains(IssueID(issue)) {
			continue
		}
		if out == nil {
			out = slices.Clone(issues)
		}
		out[i] = issue.WithSuppressReasons(SuppressReason)
	}
	if out == nil {
		return issues
	}
	return out
}

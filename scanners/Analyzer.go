package scanners

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/reaandrew/lintdetector/core"
	"github.com/reaandrew/lintdetector/rules"
	"github.com/reaandrew/lintdetector/suppress"
	"github.com/reaandrew/lintdetector/syntax"
	log "github.com/sirupsen/logrus"
)

// Analyzer runs the loaded rules over parsed files in two phases: every single-file
// rule per file, then every project rule once over all files.
type Analyzer struct {
	// Rules holds every loaded rule. Inactive ones are only listed in the result.
	Rules        []rules.LoadedRule
	Listeners    []FileProcessListener
	Suppression  suppress.Options
	FullAnalysis bool
	// Parallel spreads files over Workers goroutines. Workers <= 0 means runtime.NumCPU().
	Parallel bool
	Workers  int
}

type fileOutcome struct {
	issues        []core.Issue
	notifications []core.Notification
}

type scheduledRule struct {
	rules.LoadedRule
	chain suppress.Chain
}

// Analyze returns an open result whose issues are already in canonical order.
// Rule failures become notifications. The only errors returned are invalid
// suppression config and a cancelled context.
func (a *Analyzer) Analyze(ctx context.Context, files []*syntax.File) (*core.AnalysisResult, error) {
	result := core.NewAnalysisResult()
	result.Rules = rules.Instances(a.Rules)

	var fileRules, projectRules []scheduledRule
	for _, rule := range rules.Active(a.Rules) {
		chain, err := suppress.ForRule(rule, a.Suppression)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", rule.Instance.Key(), err)
		}
		project, err := a.isProjectRule(rule)
		if err != nil {
			result.AddNotifications(core.ErrorNotification(err))
			continue
		}
		if project {
			projectRules = append(projectRules, scheduledRule{rule, chain})
		} else {
			fileRules = append(fileRules, scheduledRule{rule, chain})
		}
	}

	listeners := listeners(a.Listeners)
	listeners.onStart(files)

	var outcomes []fileOutcome
	var err error
	if a.Parallel {
		outcomes, err = a.analyzeParallel(ctx, files, fileRules)
	} else {
		outcomes, err = a.analyzeSequential(ctx, files, fileRules)
	}
	if err != nil {
		return nil, err
	}
	outcomes = append(outcomes, a.analyzeProject(files, projectRules))

	for _, outcome := range outcomes {
		result.AddIssues(outcome.issues...)
		result.AddNotifications(outcome.notifications...)
	}
	listeners.onFinish(files, result)

	core.SortIssues(result.Issues)
	core.SortNotifications(result.Notifications)
	log.WithFields(log.Fields{
		"files":  len(files),
		"rules":  len(fileRules) + len(projectRules),
		"issues": len(result.Issues),
	}).Debug("Analysis finished")
	return result, nil
}

func (a *Analyzer) workers() int {
	if a.Workers > 0 {
		return a.Workers
	}
	return runtime.NumCPU()
}

func (a *Analyzer) analyzeSequential(ctx context.Context, files []*syntax.File, fileRules []scheduledRule) ([]fileOutcome, error) {
	outcomes := make([]fileOutcome, 0, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("analysis cancelled: %w", err)
		}
		outcomes = append(outcomes, a.analyzeFile(file, fileRules))
	}
	return outcomes, nil
}

func (a *Analyzer) analyzeParallel(ctx context.Context, files []*syntax.File, fileRules []scheduledRule) ([]fileOutcome, error) {
	queue := make(chan *syntax.File, 100)
	results := make(chan fileOutcome, 100)
	var cancelErr error

	var wg sync.WaitGroup
	for i := 0; i < a.workers(); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range queue {
				results <- a.analyzeFile(file, fileRules)
			}
		}()
	}

	// Started files always run to completion; cancellation only stops new dispatches.
	go func() {
		defer close(queue)
		for _, file := range files {
			if err := ctx.Err(); err != nil {
				cancelErr = err
				return
			}
			queue <- file
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	outcomes := make([]fileOutcome, 0, len(files))
	for outcome := range results {
		outcomes = append(outcomes, outcome)
	}
	if cancelErr != nil {
		return nil, fmt.Errorf("analysis cancelled: %w", cancelErr)
	}
	return outcomes, nil
}

func (a *Analyzer) analyzeFile(file *syntax.File, fileRules []scheduledRule) fileOutcome {
	listeners := listeners(a.Listeners)
	listeners.onProcess(file)

	var outcome fileOutcome
	for _, rule := range fileRules {
		if !rule.Filter.Accepts(file.Path) {
			continue
		}
		listeners.beforeRule(rule.Instance, file)
		start := time.Now()
		findings, err := a.runRule(rule.LoadedRule, file)
		listeners.afterRule(rule.Instance, file, time.Since(start), len(findings))
		if err != nil {
			log.WithError(err).Warn("Rule failed")
			outcome.notifications = append(outcome.notifications, core.ErrorNotification(err))
			continue
		}
		outcome.issues = append(outcome.issues, toIssues(rule, findings)...)
	}

	listeners.onProcessComplete(file, outcome.issues)
	return outcome
}

// runRule walks one fresh rule instance over one file. A panic or a
// Context.Fail inside the rule discards its findings for this file.
func (a *Analyzer) runRule(rule rules.LoadedRule, file *syntax.File) (findings []rules.Finding, err error) {
	defer func() {
		if r := recover(); r != nil {
			findings = nil
			err = &core.RuleExecutionError{
				RuleID: rule.Instance.ID, RuleSetID: rule.Instance.RuleSetID, Path: file.Path,
				Cause: fmt.Errorf("panic: %v", r),
			}
		}
	}()

	ctx := rules.NewContext(file, rule.Config, a.FullAnalysis)
	syntax.Walk(file, rule.New(a.FullAnalysis).Handlers(ctx))
	if ctx.Err() != nil {
		return nil, &core.RuleExecutionError{
			RuleID: rule.Instance.ID, RuleSetID: rule.Instance.RuleSetID, Path: file.Path, Cause: ctx.Err(),
		}
	}
	return ctx.Findings(), nil
}

func (a *Analyzer) analyzeProject(files []*syntax.File, projectRules []scheduledRule) fileOutcome {
	listeners := listeners(a.Listeners)
	var outcome fileOutcome
	for _, rule := range projectRules {
		var accepted []*syntax.File
		for _, file := range files {
			if rule.Filter.Accepts(file.Path) {
				accepted = append(accepted, file)
			}
		}
		listeners.beforeRule(rule.Instance, nil)
		start := time.Now()
		findings, err := a.runProjectRule(rule.LoadedRule, accepted)
		listeners.afterRule(rule.Instance, nil, time.Since(start), len(findings))
		if err != nil {
			log.WithError(err).Warn("Project rule failed")
			outcome.notifications = append(outcome.notifications, core.ErrorNotification(err))
			continue
		}
		outcome.issues = append(outcome.issues, toIssues(rule, findings)...)
	}
	return outcome
}

func (a *Analyzer) runProjectRule(rule rules.LoadedRule, files []*syntax.File) (findings []rules.Finding, err error) {
	defer func() {
		if r := recover(); r != nil {
			findings = nil
			err = &core.RuleExecutionError{RuleID: rule.Instance.ID, RuleSetID: rule.Instance.RuleSetID, Cause: fmt.Errorf("panic: %v", r)}
		}
	}()

	project := rule.New(a.FullAnalysis).(rules.ProjectRule)
	ctx := rules.NewProjectContext(files, rule.Config, a.FullAnalysis)
	project.VisitProject(ctx)
	if ctx.Err() != nil {
		return nil, &core.RuleExecutionError{RuleID: rule.Instance.ID, RuleSetID: rule.Instance.RuleSetID, Cause: ctx.Err()}
	}
	return ctx.Findings(), nil
}

func (a *Analyzer) isProjectRule(rule rules.LoadedRule) (project bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &core.RuleExecutionError{RuleID: rule.Instance.ID, RuleSetID: rule.Instance.RuleSetID, Cause: fmt.Errorf("panic: %v", r)}
		}
	}()
	return rule.Project(a.FullAnalysis), nil
}

func toIssues(rule scheduledRule, findings []rules.Finding) []core.Issue {
	issues := make([]core.Issue, 0, len(findings))
	for _, finding := range findings {
		issue := core.Issue{
			RuleInstance: rule.Instance,
			Entity:       finding.Entity,
			Message:      finding.Message,
			Severity:     rule.Instance.Severity,
			References:   finding.References,
		}
		issues = append(issues, rule.chain.Apply(issue, suppress.Candidate{Rule: rule.LoadedRule, Finding: finding}))
	}
	return issues
}

package core

import (
	"cmp"
	"maps"
	"slices"
)

// AnalysisResult aggregates everything one run produced.
// It accumulates during the run and is frozen by Seal before reporting.
// After sealing, derive modified copies with the With* helpers.
type AnalysisResult struct {
	Issues        []Issue        `json:"issues"`
	Rules         []RuleInstance `json:"rules"`
	Notifications []Notification `json:"notifications"`
	Metrics       []Metric       `json:"metrics"`
	UserData      map[string]any `json:"-"`

	sealed bool
}

func NewAnalysisResult() *AnalysisResult {
	return &AnalysisResult{UserData: map[string]any{}}
}

func (r *AnalysisResult) AddIssues(issues ...Issue) {
	r.mustBeOpen()
	r.Issues = append(r.Issues, issues...)
}

func (r *AnalysisResult) AddNotifications(notifications ...Notification) {
	r.mustBeOpen()
	r.Notifications = append(r.Notifications, notifications...)
}

func (r *AnalysisResult) AddMetrics(metrics ...Metric) {
	r.mustBeOpen()
	r.Metrics = append(r.Metrics, metrics...)
}

func (r *AnalysisResult) SetUserData(key string, value any) {
	r.mustBeOpen()
	if r.UserData == nil {
		r.UserData = map[string]any{}
	}
	r.UserData[key] = value
}

// Seal sorts the issues into their canonical order and freezes the result.
func (r *AnalysisResult) Seal() *AnalysisResult {
	SortIssues(r.Issues)
	r.sealed = true
	return r
}

func (r *AnalysisResult) Sealed() bool {
	return r.sealed
}

// WithIssues returns a sealed copy that carries the given issues in canonical order.
func (r *AnalysisResult) WithIssues(issues []Issue) *AnalysisResult {
	out := r.clone()
	out.Issues = slices.Clone(issues)
	SortIssues(out.Issues)
	return out
}

// WithNotifications returns a sealed copy with the notifications appended.
func (r *AnalysisResult) WithNotifications(notifications ...Notification) *AnalysisResult {
	if len(notifications) == 0 {
		return r
	}
	out := r.clone()
	out.Notifications = append(out.Notifications, notifications...)
	return out
}

func (r *AnalysisResult) WithUserData(key string, value any) *AnalysisResult {
	out := r.clone()
	out.UserData[key] = value
	return out
}

// ActiveIssues returns the issues that carry no suppression reason.
func (r *AnalysisResult) ActiveIssues() []Issue {
	var active []Issue
	for _, issue := range r.Issues {
		if !issue.Suppressed() {
			active = append(active, issue)
		}
	}
	return active
}

func (r *AnalysisResult) clone() *AnalysisResult {
	out := &AnalysisResult{
		Issues:        slices.Clone(r.Issues),
		Rules:         slices.Clone(r.Rules),
		Notifications: slices.Clone(r.Notifications),
		Metrics:       slices.Clone(r.Metrics),
		UserData:      maps.Clone(r.UserData),
		sealed:        true,
	}
	if out.UserData == nil {
		out.UserData = map[string]any{}
	}
	return out
}

func (r *AnalysisResult) mustBeOpen() {
	if r.sealed {
		panic("analysis result is sealed")
	}
}

// CompareIssues orders issues by rule set, rule, file, line and column.
// Signature and message break the remaining ties so the order is total.
func CompareIssues(a, b Issue) int {
	return cmp.Or(
		cmp.Compare(a.RuleInstance.RuleSetID, b.RuleInstance.RuleSetID),
		cmp.Compare(a.RuleInstance.ID, b.RuleInstance.ID),
		cmp.Compare(a.Entity.Location.Path, b.Entity.Location.Path),
		cmp.Compare(a.Entity.Location.Start.Line, b.Entity.Location.Start.Line),
		cmp.Compare(a.Entity.Location.Start.Column, b.Entity.Location.Start.Column),
		cmp.Compare(a.Entity.Signature, b.Entity.Signature),
		cmp.Compare(a.Message, b.Message),
	)
}

func SortIssues(issues []Issue) {
	slices.SortStableFunc(issues, CompareIssues)
}

// SortNotifications orders notifications by level then message.
func SortNotifications(notifications []Notification) {
	slices.SortStableFunc(notifications, func(a, b Notification) int {
		return cmp.Or(
			cmp.Compare(a.Level, b.Level),
			cmp.Compare(a.Message, b.Message),
		)
	})
}

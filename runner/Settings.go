package runner

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/reaandrew/lintdetector/core"
	"github.com/reaandrew/lintdetector/plugins"
	"github.com/reaandrew/lintdetector/rules"
)

var V = validator.New()

// Settings describe one analysis run.
type Settings struct {
	// Inputs are files or directories to analyze. Required unless RepoURL is set.
	Inputs   []string `validate:"required_without=RepoURL,dive,required"`
	RepoURL  string   `validate:"omitempty,url"`
	BasePath string

	ConfigPaths      []string `validate:"dive,required"`
	Policy           rules.RunPolicy
	DisabledRuleSets []string `validate:"dive,required"`

	PluginPaths []string `validate:"dive,required"`
	Plugins     []plugins.Descriptor

	// Reports maps report ids (xml, sarif, md, ...) to destinations.
	Reports map[string]string `validate:"dive,keys,required,endkeys,required"`

	BaselinePath   string `validate:"required_if=CreateBaseline true"`
	CreateBaseline bool

	Parallel     bool
	Workers      int `validate:"gte=0"`
	FullAnalysis bool

	Includes     []string
	Excludes     []string
	ChangedSince string

	SkipConfigValidation bool

	MaxIssues   *int
	MinSeverity string `validate:"omitempty,oneof=info warning error"`

	Progress bool
	Debug    bool

	// Output receives console reports, ProgressOutput the progress bar.
	Output         io.Writer
	ProgressOutput io.Writer
}

// Validate reports every invalid field as one ConfigurationError.
func (s Settings) Validate() error {
	err := V.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return &core.ConfigurationError{Messages: []string{"invalid settings"}, Err: err}
	}
	messages := make([]string, 0, len(fieldErrors))
	for _, fieldError := range fieldErrors {
		messages = append(messages, fmt.Sprintf("setting '%s' failed on '%s'", fieldError.Namespace(), fieldError.Tag()))
	}
	return &core.ConfigurationError{Messages: messages}
}

func (s Settings) runPolicy() rules.RunPolicy {
	if s.Policy == nil {
		return rules.DefaultPolicy{}
	}
	return s.Policy
}

func (s Settings) parseLimit() int {
	if !s.Parallel {
		return 1
	}
	if s.Workers > 0 {
		return s.Workers
	}
	return defaultWorkers()
}

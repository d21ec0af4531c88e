package rulesets

import (
	"fmt"
	"go/ast"

	"github.com/reaandrew/lintdetector/config"
	"github.com/reaandrew/lintdetector/core"
	"github.com/reaandrew/lintdetector/rules"
	"github.com/reaandrew/lintdetector/syntax"
)

const ComplexityRuleSetID = "complexity"

func ComplexityRuleSet() rules.RuleSet {
	return rules.RuleSet{
		ID: ComplexityRuleSetID,
		Rules: []rules.Descriptor{
			{
				ID:            "LongParameterList",
				Description:   "Flags functions with too many parameters.",
				URL:           docsURL(ComplexityRuleSetID, "LongParameterList"),
				DefaultActive: true,
				ActiveSince:   "0.1.0",
				Severity:      core.SeverityWarning,
				ConfigKeys:    map[string]any{"functionThreshold": 6},
				Factory:       newLongParameterList,
			},
			{
				ID:            "LongMethod",
				Description:   "Flags functions whose body spans too many lines.",
				URL:           docsURL(ComplexityRuleSetID, "LongMethod"),
				DefaultActive: true,
				ActiveSince:   "0.1.0",
				Severity:      core.SeverityWarning,
				ConfigKeys:    map[string]any{"threshold": 60},
				Factory:       newLongMethod,
			},
			{
				ID:            "TooManyFunctions",
				Description:   "Flags files declaring too many functions and methods.",
				URL:           docsURL(ComplexityRuleSetID, "TooManyFunctions"),
				DefaultActive: false,
				Severity:      core.SeverityInfo,
				ConfigKeys:    map[string]any{"thresholdInFiles": 11},
				Factory:       newTooManyFunctions,
			},
		},
	}
}

type longParameterList struct {
	threshold int
}

func newLongParameterList(cfg *config.Config, _ bool) rules.Rule {
	return longParameterList{threshold: cfg.Int("functionThreshold", 6)}
}

func (r longParameterList) Handlers(ctx *rules.Context) syntax.Handlers {
	return syntax.Handlers{
		syntax.On(func(decl *ast.FuncDecl) {
			if count := decl.Type.Params.NumFields(); count >= r.threshold {
				ctx.Report(decl.Name, fmt.Sprintf("The function %s(%d) has too many parameters. The current threshold is set to %d.",
					syntax.DeclName(decl), count, r.threshold))
			}
		}),
	}
}

type longMethod struct {
	threshold int
}

func newLongMethod(cfg *config.Config, _ bool) rules.Rule {
	return longMethod{threshold: cfg.Int("threshold", 60)}
}

func (r longMethod) Handlers(ctx *rules.Context) syntax.Handlers {
	return syntax.Handlers{
		syntax.On(func(decl *ast.FuncDecl) {
			if decl.Body == nil {
				return
			}
			lines := ctx.File.Line(decl.Body.Rbrace) - ctx.File.Line(decl.Body.Lbrace) - 1
			if lines >= r.threshold {
				ctx.Report(decl.Name, fmt.Sprintf("The function %s is too long (%d). The maximum length is %d.",
					syntax.DeclName(decl), lines, r.threshold))
			}
		}),
	}
}

type tooManyFunctions struct {
	threshold int
	count     int
}

func newTooManyFunctions(cfg *config.Config, _ bool) rules.Rule {
	return &tooManyFunctions{threshold: cfg.Int("thresholdInFiles", 11)}
}

func (r *tooManyFunctions) Handlers(ctx *rules.Context) syntax.Handlers {
	return syntax.Handlers{
		syntax.On(func(*ast.FuncDecl) {
			r.count++
			if r.count == r.threshold {
				ctx.Report(ctx.File.AST.Name, fmt.Sprintf("File '%s' has %d functions or more. The maximum allowed is %d.",
					ctx.File.Path, r.threshold, r.threshold-1))
			}
		}),
	}
}

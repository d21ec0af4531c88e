package rulesets

import (
	"fmt"
	"go/ast"
	"go/token"
	"strings"

	"github.com/reaandrew/lintdetector/config"
	"github.com/reaandrew/lintdetector/core"
	"github.com/reaandrew/lintdetector/rules"
	"github.com/reaandrew/lintdetector/syntax"
)

const StyleRuleSetID = "style"

func StyleRuleSet() rules.RuleSet {
	return rules.RuleSet{
		ID: StyleRuleSetID,
		Rules: []rules.Descriptor{
			{
				ID:            "ForbiddenComment",
				Description:   "Flags comments containing markers such as TODO: or FIXME:.",
				URL:           docsURL(StyleRuleSetID, "ForbiddenComment"),
				DefaultActive: true,
				ActiveSince:   "0.1.0",
				Severity:      core.SeverityInfo,
				Aliases:       []string{"TodoComment"},
				ConfigKeys:    map[string]any{"comments": []any{"TODO:", "FIXME:", "STOPSHIP:"}},
				Factory:       newForbiddenComment,
			},
			{
				ID:            "EmptyBlock",
				Description:   "Flags empty if, else, for and range blocks.",
				URL:           docsURL(StyleRuleSetID, "EmptyBlock"),
				DefaultActive: true,
				ActiveSince:   "0.1.0",
				Severity:      core.SeverityWarning,
				Priority:      1,
				Factory:       newEmptyBlock,
			},
		},
	}
}

type forbiddenComment struct {
	markers []string
}

func newForbiddenComment(cfg *config.Config, _ bool) rules.Rule {
	return &forbiddenComment{markers: cfg.StringList("comments", []string{"TODO:", "FIXME:", "STOPSHIP:"})}
}

func (r *forbiddenComment) Handlers(ctx *rules.Context) syntax.Handlers {
	return syntax.Handlers{
		syntax.On(func(file *ast.File) {
			for _, group := range file.Comments {
				for _, comment := range group.List {
					for _, marker := range r.markers {
						if strings.Contains(comment.Text, marker) {
							ctx.Report(comment, fmt.Sprintf("This comment contains '%s' which has been forbidden.", marker))
							break
						}
					}
				}
			}
		}),
	}
}

type emptyBlock struct{}

func newEmptyBlock(*config.Config, bool) rules.Rule {
	return emptyBlock{}
}

func (emptyBlock) Handlers(ctx *rules.Context) syntax.Handlers {
	check := func(kind string, block *ast.BlockStmt) {
		if block == nil || len(block.List) > 0 || hasCommentWithin(ctx.File.AST, block.Lbrace, block.Rbrace) {
			return
		}
		ctx.Report(block, fmt.Sprintf("This empty %s block can be removed.", kind))
	}
	return syntax.Handlers{
		syntax.On(func(stmt *ast.IfStmt) {
			check("if", stmt.Body)
			if elseBlock, ok := stmt.Else.(*ast.BlockStmt); ok {
				check("else", elseBlock)
			}
		}),
		syntax.On(func(stmt *ast.ForStmt) { check("for", stmt.Body) }),
		syntax.On(func(stmt *ast.RangeStmt) { check("range", stmt.Body) }),
	}
}

func hasCommentWithin(file *ast.File, from, to token.Pos) bool {
	for _, group := range file.Comments {
		if group.Pos() > from && group.End() < to {
			return true
		}
	}
	return false
}

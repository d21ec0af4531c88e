package suppress

import (
	"go/ast"
	"strings"

	"github.com/reaandrew/lintdetector/rules"
)

const (
	suppressDirective = "lintdetector:suppress"
	nolintDirective   = "nolint"
)

// DirectiveSuppressor honours comment directives:
//
//	//lintdetector:suppress EmptyBlock,style:ForbiddenComment
//
// in the doc comment of an enclosing declaration, field or file, and
//
//	//nolint:EmptyBlock
//
// trailing on the finding's own line. A directive without ids suppresses everything.
type DirectiveSuppressor struct{}

func (DirectiveSuppressor) Suppress(candidate Candidate) (string, bool) {
	finding := candidate.Finding
	if finding.File == nil || finding.File.AST == nil || finding.Node == nil {
		return "", false
	}
	file := finding.File

	for _, node := range file.Enclosing(finding.Node.Pos(), finding.Node.End()) {
		if ids, ok := parseGroup(docOf(node), suppressDirective); ok && Matches(ids, candidate.Rule) {
			return "directive", true
		}
	}
	for _, group := range file.AST.Comments {
		if group.Pos() >= file.AST.Package {
			break
		}
		if ids, ok := parseGroup(group, suppressDirective); ok && Matches(ids, candidate.Rule) {
			return "directive", true
		}
	}

	line := file.Line(finding.Node.Pos())
	for _, group := range file.AST.Comments {
		for _, comment := range group.List {
			if file.Line(comment.Pos()) != line {
				continue
			}
			for _, prefix := range []string{nolintDirective, suppressDirective} {
				if ids, ok := parseComment(comment.Text, prefix); ok && Matches(ids, candidate.Rule) {
					return "directive", true
				}
			}
		}
	}
	return "", false
}

func docOf(node ast.Node) *ast.CommentGroup {
	switch n := node.(type) {
	case *ast.FuncDecl:
		return n.Doc
	case *ast.GenDecl:
		return n.Doc
	case *ast.TypeSpec:
		return n.Doc
	case *ast.ValueSpec:
		return n.Doc
	case *ast.Field:
		return n.Doc
	case *ast.File:
		return n.Doc
	}
	return nil
}

func parseGroup(group *ast.CommentGroup, prefix string) ([]string, bool) {
	if group == nil {
		return nil, false
	}
	for _, comment := range group.List {
		if ids, ok := parseComment(comment.Text, prefix); ok {
			return ids, true
		}
	}
	return nil, false
}

// parseComment reads "//<prefix> a,b" or "//<prefix>:a,b". Text after " - " or
// a second "//" is an explanation and ignored. No ids means every rule.
func parseComment(text, prefix string) ([]string, bool) {
	text = strings.TrimPrefix(text, "//")
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, prefix) {
		return nil, false
	}
	rest := text[len(prefix):]
	if rest != "" && rest[0] != ':' && rest[0] != ' ' && rest[0] != '\t' {
		return nil, false
	}
	rest = strings.TrimPrefix(rest, ":")
	if idx := strings.Index(rest, " - "); idx >= 0 {
		rest = rest[:idx]
	}
	if idx := strings.Index(rest, "//"); idx >= 0 {
		rest = rest[:idx]
	}

	ids := strings.FieldsFunc(rest, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	return ids, true
}

// Matches reports whether any id names the rule: its id, an alias, its rule set,
// "<ruleSet>:<rule>", "lintdetector:<rule>" or "all". An empty list matches every rule.
func Matches(ids []string, rule rules.LoadedRule) bool {
	if len(ids) == 0 {
		return true
	}
	names := []string{
		"all",
		rule.Instance.ID,
		rule.Instance.RuleSetID,
		rule.Instance.RuleSetID + ":" + rule.Instance.ID,
		"lintdetector:" + rule.Instance.ID,
	}
	names = append(names, rule.Aliases...)
	for _, id := range ids {
		for _, name := range names {
			if strings.EqualFold(id, name) {
				return true
			}
		}
	}
	return false
}

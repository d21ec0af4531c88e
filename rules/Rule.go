package rules

import (
	"go/ast"

	"github.com/reaandrew/lintdetector/config"
	"github.com/reaandrew/lintdetector/core"
	"github.com/reaandrew/lintdetector/syntax"
)

// Rule inspects one file at a time through a table of per-node-kind handlers.
// A fresh instance is created for every file, so rules may keep per-file state.
type Rule interface {
	Handlers(ctx *Context) syntax.Handlers
}

// ProjectRule runs once after all files were visited and sees the whole project.
// Its Handlers are not walked per file.
type ProjectRule interface {
	Rule
	VisitProject(ctx *ProjectContext)
}

// Factory creates a rule from its resolved config and the semantic analysis flag.
type Factory func(cfg *config.Config, fullAnalysis bool) Rule

// Finding is what a rule reports before it becomes a core.Issue.
type Finding struct {
	Entity     core.Entity
	Message    string
	References []core.Entity
	File       *syntax.File
	Node       ast.Node
}

// Context is handed to a rule for one file.
type Context struct {
	File         *syntax.File
	Config       *config.Config
	FullAnalysis bool

	findings []Finding
	err      error
}

func NewContext(file *syntax.File, cfg *config.Config, fullAnalysis bool) *Context {
	return &Context{File: file, Config: cfg, FullAnalysis: fullAnalysis}
}

// Report records a finding located at node.
func (c *Context) Report(node ast.Node, message string, references ...ast.Node) {
	c.findings = append(c.findings, newFinding(c.File, node, message, references))
}

// Fail aborts the rule for this file. The first error wins.
func (c *Context) Fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

func (c *Context) Findings() []Finding {
	return c.findings
}

func (c *Context) Err() error {
	return c.err
}

// ProjectContext is handed to a ProjectRule once per run.
type ProjectContext struct {
	Files        []*syntax.File
	Config       *config.Config
	FullAnalysis bool

	findings []Finding
	err      error
}

func NewProjectContext(files []*syntax.File, cfg *config.Config, fullAnalysis bool) *ProjectContext {
	return &ProjectContext{Files: files, Config: cfg, FullAnalysis: fullAnalysis}
}

func (c *ProjectContext) Report(file *syntax.File, node ast.Node, message string, references ...ast.Node) {
	c.findings = append(c.findings, newFinding(file, node, message, references))
}

func (c *ProjectContext) Fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

func (c *ProjectContext) Findings() []Finding {
	return c.findings
}

func (c *ProjectContext) Err() error {
	return c.err
}

func newFinding(file *syntax.File, node ast.Node, message string, references []ast.Node) Finding {
	finding := Finding{
		Entity:  core.Entity{Signature: file.Signature(node), Location: file.Location(node)},
		Message: message,
		File:    file,
		Node:    node,
	}
	for _, ref := range references {
		finding.References = append(finding.References, core.Entity{
			Signature: file.Signature(ref),
			Location:  file.Location(ref),
		})
	}
	return finding
}

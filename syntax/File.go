package syntax

import (
	"bytes"
	"go/ast"
	"go/token"
	"go/types"
	"path/filepath"
	"strings"
	"sync"

	"github.com/reaandrew/lintdetector/core"
	"golang.org/x/tools/go/ast/astutil"
	"golang.org/x/tools/go/ast/inspector"
)

// File is one parsed Go source file. Info and Pkg are only set when the file
// was loaded with type information.
type File struct {
	// Path is relative to the analysis base path when possible, slash separated.
	Path      string
	AbsPath   string
	Content   []byte
	Fset      *token.FileSet
	AST       *ast.File
	Info      *types.Info
	Pkg       *types.Package
	Generated bool

	inspectorOnce sync.Once
	inspector     *inspector.Inspector
}

func (f *File) HasSemantics() bool {
	return f.Info != nil && f.Pkg != nil
}

func (f *File) PackageName() string {
	if f.AST == nil || f.AST.Name == nil {
		return ""
	}
	return f.AST.Name.Name
}

// PackagePath is the import path with type information, the package name otherwise.
func (f *File) PackagePath() string {
	if f.Pkg != nil {
		return f.Pkg.Path()
	}
	return f.PackageName()
}

func (f *File) Lines() int {
	if len(f.Content) == 0 {
		return 0
	}
	lines := bytes.Count(f.Content, []byte("\n"))
	if f.Content[len(f.Content)-1] != '\n' {
		lines++
	}
	return lines
}

// Location converts a node's extent into a core.Location.
func (f *File) Location(node ast.Node) core.Location {
	return f.RangeLocation(node.Pos(), node.End())
}

func (f *File) RangeLocation(start, end token.Pos) core.Location {
	startPos := f.Fset.Position(start)
	endPos := f.Fset.Position(end)
	if !endPos.IsValid() {
		endPos = startPos
	}
	location := core.Location{
		Start: core.SourcePosition{Line: max(startPos.Line, 1), Column: max(startPos.Column, 1)},
		End:   core.SourcePosition{Line: max(endPos.Line, 1), Column: max(endPos.Column, 1)},
		Text:  core.TextRange{Start: startPos.Offset, End: max(endPos.Offset, startPos.Offset)},
		Path:  f.Path,
	}
	return location
}

// Line returns the 1-based line of pos.
func (f *File) Line(pos token.Pos) int {
	return f.Fset.Position(pos).Line
}

// Text returns the source text of node.
func (f *File) Text(node ast.Node) string {
	start := f.Fset.Position(node.Pos()).Offset
	end := f.Fset.Position(node.End()).Offset
	if start < 0 || end > len(f.Content) || start > end {
		return ""
	}
	return string(f.Content[start:end])
}

// Enclosing returns the path from node at pos up to the *ast.File, innermost first.
func (f *File) Enclosing(start, end token.Pos) []ast.Node {
	path, _ := astutil.PathEnclosingInterval(f.AST, start, end)
	return path
}

// EnclosingFuncs returns the function declarations that contain pos, innermost first.
// Function literals are skipped.
func (f *File) EnclosingFuncs(pos token.Pos) []*ast.FuncDecl {
	var funcs []*ast.FuncDecl
	for _, node := range f.Enclosing(pos, pos) {
		if decl, ok := node.(*ast.FuncDecl); ok {
			funcs = append(funcs, decl)
		}
	}
	return funcs
}

// Signature builds a stable identifier for node: file name, enclosing declaration
// and the node's own first source line. It does not depend on line numbers so it
// survives unrelated edits above the node.
func (f *File) Signature(node ast.Node) string {
	parts := []string{filepath.Base(f.Path)}
	if name := DeclName(f.enclosingDecl(node)); name != "" {
		parts = append(parts, name)
	}
	if text := firstLine(f.Text(node)); text != "" {
		parts = append(parts, text)
	}
	return strings.Join(parts, "$")
}

func (f *File) enclosingDecl(node ast.Node) ast.Node {
	for _, candidate := range f.Enclosing(node.Pos(), node.End()) {
		switch candidate.(type) {
		case *ast.FuncDecl, *ast.TypeSpec, *ast.ValueSpec:
			return candidate
		}
	}
	return nil
}

// DeclName renders "Recv.Name" for methods and the declared name for other declarations.
func DeclName(node ast.Node) string {
	switch decl := node.(type) {
	case *ast.FuncDecl:
		if recv := ReceiverTypeName(decl); recv != "" {
			return recv + "." + decl.Name.Name
		}
		return decl.Name.Name
	case *ast.TypeSpec:
		return decl.Name.Name
	case *ast.ValueSpec:
		var names []string
		for _, name := range decl.Names {
			names = append(names, name.Name)
		}
		return strings.Join(names, ",")
	}
	return ""
}

// ReceiverTypeName returns the receiver base type of a method without pointer or type parameters.
func ReceiverTypeName(decl *ast.FuncDecl) string {
	if decl.Recv == nil || len(decl.Recv.List) == 0 {
		return ""
	}
	expr := decl.Recv.List[0].Type
	for {
		switch t := expr.(type) {
		case *ast.StarExpr:
			expr = t.X
		case *ast.IndexExpr:
			expr = t.X
		case *ast.IndexListExpr:
			expr = t.X
		case *ast.ParenExpr:
			expr = t.X
		case *ast.Ident:
			return t.Name
		default:
			return ""
		}
	}
}

func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	text = strings.Join(strings.Fields(text), " ")
	if runes := []rune(text); len(runes) > 80 {
		text = string(runes[:80])
	}
	return text
}

func (f *File) nodeInspector() *inspector.Inspector {
	f.inspectorOnce.Do(func() {
		f.inspector = inspector.New([]*ast.File{f.AST})
	})
	return f.inspector
}

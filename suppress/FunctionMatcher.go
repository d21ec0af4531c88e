package suppress

import (
	"fmt"
	"go/ast"
	"go/types"
	"strings"
	"unicode"

	"github.com/reaandrew/lintdetector/syntax"
)

// FunctionMatcher matches function declarations by qualified name and,
// optionally, parameter types.
//
// Accepted forms:
//
//	Func
//	pkg.Func
//	pkg.Type.Method
//	github.com/org/repo/pkg.Type.Method
//	pkg.Func(int, string)
//
// The package may be given as package name or import path.
type FunctionMatcher struct {
	Package  string
	TypeName string
	FuncName string
	// Params is nil for name-only matchers.
	Params []string
	raw    string
}

// ParseFunctionMatcher parses one ignoreFunction entry.
func ParseFunctionMatcher(signature string) (FunctionMatcher, error) {
	raw := strings.TrimSpace(signature)
	if raw == "" {
		return FunctionMatcher{}, fmt.Errorf("empty function signature")
	}
	matcher := FunctionMatcher{raw: raw}

	name := raw
	if open := strings.Index(raw, "("); open >= 0 {
		if !strings.HasSuffix(raw, ")") {
			return FunctionMatcher{}, fmt.Errorf("'%s' doesn't match a function signature", signature)
		}
		name = strings.TrimSpace(raw[:open])
		matcher.Params = splitParams(raw[open+1 : len(raw)-1])
	}
	if name == "" || strings.ContainsAny(name, " ()") {
		return FunctionMatcher{}, fmt.Errorf("'%s' doesn't match a function signature", signature)
	}

	lastDot := strings.LastIndex(name, ".")
	if lastDot < 0 {
		matcher.FuncName = name
		return matcher, nil
	}
	matcher.FuncName = name[lastDot+1:]
	prefix := name[:lastDot]

	// Type names are recognised by their upper-case first letter.
	if secondDot := strings.LastIndex(prefix, "."); secondDot >= 0 && secondDot > strings.LastIndex(prefix, "/") {
		if candidate := prefix[secondDot+1:]; candidate != "" && unicode.IsUpper(rune(candidate[0])) {
			matcher.TypeName = candidate
			matcher.Package = prefix[:secondDot]
			return matcher, nil
		}
	}
	if !strings.Contains(prefix, "/") && prefix != "" && unicode.IsUpper(rune(prefix[0])) {
		matcher.TypeName = prefix
		return matcher, nil
	}
	matcher.Package = prefix
	if matcher.FuncName == "" || matcher.Package == "" {
		return FunctionMatcher{}, fmt.Errorf("'%s' doesn't match a function signature", signature)
	}
	return matcher, nil
}

func splitParams(list string) []string {
	params := []string{}
	for _, param := range strings.Split(list, ",") {
		if param = strings.TrimSpace(param); param != "" {
			params = append(params, strings.Join(strings.Fields(param), " "))
		}
	}
	return params
}

func (m FunctionMatcher) String() string {
	return m.raw
}

// Match reports whether decl in file is the function the matcher names.
// Parameter types are only compared when file has type information.
func (m FunctionMatcher) Match(file *syntax.File, decl *ast.FuncDecl) bool {
	if decl.Name.Name != m.FuncName {
		return false
	}
	if receiver := syntax.ReceiverTypeName(decl); receiver != m.TypeName {
		return false
	}
	if m.Package != "" && m.Package != file.PackageName() && m.Package != file.PackagePath() {
		return false
	}
	if m.Params == nil || !file.HasSemantics() {
		return true
	}
	return m.matchParams(file, decl)
}

func (m FunctionMatcher) matchParams(file *syntax.File, decl *ast.FuncDecl) bool {
	fn, ok := file.Info.Defs[decl.Name].(*types.Func)
	if !ok {
		return false
	}
	qualifier := func(pkg *types.Package) string { return pkg.Name() }
	signature := fn.Signature()
	params := signature.Params()
	if params.Len() != len(m.Params) {
		return false
	}
	for i := 0; i < params.Len(); i++ {
		var rendered string
		if signature.Variadic() && i == params.Len()-1 {
			rendered = "..." + types.TypeString(params.At(i).Type().(*types.Slice).Elem(), qualifier)
		} else {
			rendered = types.TypeString(params.At(i).Type(), qualifier)
		}
		if rendered != m.Params[i] {
			return false
		}
	}
	return true
}

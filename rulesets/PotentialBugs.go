package rulesets

import (
	"fmt"
	"go/ast"
	"go/types"

	"github.com/reaandrew/lintdetector/config"
	"github.com/reaandrew/lintdetector/core"
	"github.com/reaandrew/lintdetector/rules"
	"github.com/reaandrew/lintdetector/syntax"
)

const PotentialBugsRuleSetID = "potential-bugs"

var defaultAllowedCalls = []string{
	"fmt.Print", "fmt.Printf", "fmt.Println",
	"fmt.Fprint", "fmt.Fprintf", "fmt.Fprintln",
}

func PotentialBugsRuleSet() rules.RuleSet {
	return rules.RuleSet{
		ID: PotentialBugsRuleSetID,
		Rules: []rules.Descriptor{
			{
				ID:                "IgnoredError",
				Description:       "Flags calls whose error result is silently dropped.",
				URL:               docsURL(PotentialBugsRuleSetID, "IgnoredError"),
				DefaultActive:     true,
				ActiveSince:       "0.1.0",
				Severity:          core.SeverityError,
				RequiresSemantics: true,
				Priority:          5,
				ConfigKeys:        map[string]any{"allowedCalls": toAnyList(defaultAllowedCalls)},
				Factory:           newIgnoredError,
			},
		},
	}
}

type ignoredError struct {
	allowed map[string]bool
}

func newIgnoredError(cfg *config.Config, _ bool) rules.Rule {
	allowed := map[string]bool{}
	for _, name := range cfg.StringList("allowedCalls", defaultAllowedCalls) {
		allowed[name] = true
	}
	return ignoredError{allowed: allowed}
}

func (r ignoredError) Handlers(ctx *rules.Context) syntax.Handlers {
	if !ctx.File.HasSemantics() {
		return nil
	}
	errorType := types.Universe.Lookup("error").Type()
	return syntax.Handlers{
		syntax.On(func(stmt *ast.ExprStmt) {
			call, ok := stmt.X.(*ast.CallExpr)
			if !ok {
				return
			}
			if r.allowed[calleeName(ctx.File.Info, call)] {
				return
			}
			switch result := ctx.File.Info.TypeOf(call).(type) {
			case *types.Tuple:
				if result.Len() > 0 && types.Identical(result.At(result.Len()-1).Type(), errorType) {
					ctx.Report(call, fmt.Sprintf("The error returned by %s is ignored.", ctx.File.Text(call.Fun)))
				}
			case nil:
			default:
				if types.Identical(result, errorType) {
					ctx.Report(call, fmt.Sprintf("The error returned by %s is ignored.", ctx.File.Text(call.Fun)))
				}
			}
		}),
	}
}

// calleeName renders "pkg.Func" or "pkg.Type.Method" for statically known callees.
func calleeName(info *types.Info, call *ast.CallExpr) string {
	var ident *ast.Ident
	switch fun := call.Fun.(type) {
	case *ast.Ident:
		ident = fun
	case *ast.SelectorExpr:
		ident = fun.Sel
	default:
		return ""
	}
	fn, ok := info.Uses[ident].(*types.Func)
	if !ok || fn.Pkg() == nil {
		return ""
	}
	if recv := fn.Signature().Recv(); recv != nil {
		recvType := recv.Type()
		if ptr, ok := recvType.(*types.Pointer); ok {
			recvType = ptr.Elem()
		}
		if named, ok := recvType.(*types.Named); ok {
			return fn.Pkg().Name() + "." + named.Obj().Name() + "." + fn.Name()
		}
	}
	return fn.Pkg().Name() + "." + fn.Name()
}

func toAnyList(values []string) []any {
	out := make([]any, len(values))
	for i, value := range values {
		out[i] = value
	}
	return out
}

package syntax

import (
	"go/ast"
	"reflect"
)

// Handler reacts to one kind of syntax node.
type Handler struct {
	kind  reflect.Type
	visit func(ast.Node) bool
}

// Handlers is a table of per-kind handlers. A rule returns only the kinds it cares about.
type Handlers []Handler

// On registers fn for nodes of type T. T is usually a pointer type such as
// *ast.FuncDecl; interface types such as ast.Expr match every implementing node.
func On[T ast.Node](fn func(T)) Handler {
	return Handler{
		kind: reflect.TypeFor[T](),
		visit: func(node ast.Node) bool {
			typed, ok := node.(T)
			if ok {
				fn(typed)
			}
			return ok
		},
	}
}

func (h Handler) Kind() reflect.Type {
	return h.kind
}

// Walk visits every node of the file once in depth-first order and dispatches it
// to the handlers registered for its dynamic type.
func Walk(file *File, handlers Handlers) {
	if file == nil || file.AST == nil || len(handlers) == 0 {
		return
	}

	byKind := map[reflect.Type][]Handler{}
	var byInterface []Handler
	var filter []ast.Node
	for _, handler := range handlers {
		if handler.kind.Kind() == reflect.Interface {
			byInterface = append(byInterface, handler)
			continue
		}
		if _, seen := byKind[handler.kind]; !seen {
			if sample, ok := newNode(handler.kind); ok {
				filter = append(filter, sample)
			}
		}
		byKind[handler.kind] = append(byKind[handler.kind], handler)
	}
	if len(byInterface) > 0 {
		filter = nil
	}

	file.nodeInspector().Preorder(filter, func(node ast.Node) {
		for _, handler := range byKind[reflect.TypeOf(node)] {
			handler.visit(node)
		}
		for _, handler := range byInterface {
			handler.visit(node)
		}
	})
}

func newNode(kind reflect.Type) (ast.Node, bool) {
	if kind.Kind() != reflect.Pointer {
		return nil, false
	}
	node, ok := reflect.New(kind.Elem()).Interface().(ast.Node)
	return node, ok
}

package syntax

import (
	"go/ast"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `package sample

type Server struct{}

func (s *Server) Start(port int) error {
	if port == 0 {
	}
	return nil
}

func helper() {}
`

func TestWalkDispatchesByNodeKind(t *testing.T) {
	file, err := ParseSource("sample.go", []byte(sample))
	require.NoError(t, err)

	var funcs []string
	var ifs int
	var idents int
	Walk(file, Handlers{
		On(func(decl *ast.FuncDecl) { funcs = append(funcs, DeclName(decl)) }),
		On(func(*ast.IfStmt) { ifs++ }),
	})
	Walk(file, Handlers{
		On(func(expr ast.Expr) {
			if _, ok := expr.(*ast.Ident); ok {
				idents++
			}
		}),
	})

	assert.Equal(t, []string{"Server.Start", "helper"}, funcs)
	assert.Equal(t, 1, ifs)
	assert.Greater(t, idents, 5)
}

func TestWalkWithoutHandlersDoesNothing(t *testing.T) {
	file, err := ParseSource("sample.go", []byte(sample))
	require.NoError(t, err)
	assert.NotPanics(t, func() { Walk(file, nil) })
}

func TestLocationAndSignature(t *testing.T) {
	file, err := ParseSource("pkg/sample.go", []byte(sample))
	require.NoError(t, err)

	var ifStmt *ast.IfStmt
	Walk(file, Handlers{On(func(stmt *ast.IfStmt) { ifStmt = stmt })})
	require.NotNil(t, ifStmt)

	location := file.Location(ifStmt)
	assert.Equal(t, "pkg/sample.go", location.Path)
	assert.Equal(t, 6, location.Start.Line)
	assert.Equal(t, 2, location.Start.Column)
	assert.Equal(t, 7, location.End.Line)
	assert.True(t, location.Valid())
	assert.GreaterOrEqual(t, location.Text.End, location.Text.Start)

	assert.Equal(t, "sample.go$Server.Start$if port == 0 {", file.Signature(ifStmt))
}

func TestSignatureIsStableAcrossLineShifts(t *testing.T) {
	shifted := "package sample\n\n// a comment\n// another\n" + sample[len("package sample\n"):]
	first, err := ParseSource("sample.go", []byte(sample))
	require.NoError(t, err)
	second, err := ParseSource("sample.go", []byte(shifted))
	require.NoError(t, err)

	signatureOf := func(file *File) string {
		var sig string
		Walk(file, Handlers{On(func(stmt *ast.IfStmt) { sig = file.Signature(stmt) })})
		return sig
	}
	assert.Equal(t, signatureOf(first), signatureOf(second))
}

func TestLines(t *testing.T) {
	file, err := ParseSource("sample.go", []byte(sample))
	require.NoError(t, err)
	assert.Equal(t, 11, file.Lines())
}

func TestRelativePath(t *testing.T) {
	assert.Equal(t, "a/b.go", RelativePath("/repo", "/repo/a/b.go"))
	assert.Equal(t, "/elsewhere/b.go", RelativePath("/repo", "/elsewhere/b.go"))
}

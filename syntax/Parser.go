package syntax

import (
	"context"
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-enry/go-enry/v2"
	log "github.com/sirupsen/logrus"
	"golang.org/x/tools/go/packages"
)

// Parser turns one source file into a syntax tree, with type information when
// the implementation can resolve it.
type Parser interface {
	Parse(ctx context.Context, path string) (*File, error)
}

// NewParser returns the light parser, or the type-aware parser for full analysis.
func NewParser(basePath string, fullAnalysis bool) Parser {
	if fullAnalysis {
		return NewPackagesParser(basePath)
	}
	return NewGoParser(basePath)
}

// GoParser parses files on their own with go/parser. Files carry no type information.
type GoParser struct {
	BasePath string
	fset     *token.FileSet
}

func NewGoParser(basePath string) *GoParser {
	return &GoParser{BasePath: basePath, fset: token.NewFileSet()}
}

func (p *GoParser) Parse(_ context.Context, path string) (*File, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}
	content, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	tree, err := parser.ParseFile(p.fset, absPath, content, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", path, err)
	}
	return &File{
		Path:      RelativePath(p.BasePath, absPath),
		AbsPath:   absPath,
		Content:   content,
		Fset:      p.fset,
		AST:       tree,
		Generated: enry.IsGenerated(absPath, content),
	}, nil
}

// PackagesParser loads the package that contains each requested file through
// golang.org/x/tools/go/packages so rules can use go/types information.
// Packages are loaded once and shared by all of their files. When a package
// cannot be type-checked the file falls back to the light parser.
type PackagesParser struct {
	BasePath string
	fset     *token.FileSet
	fallback *GoParser

	mu     sync.Mutex
	loaded map[string]*File
	failed map[string]bool
}

func NewPackagesParser(basePath string) *PackagesParser {
	fset := token.NewFileSet()
	return &PackagesParser{
		BasePath: basePath,
		fset:     fset,
		fallback: &GoParser{BasePath: basePath, fset: fset},
		loaded:   map[string]*File{},
		failed:   map[string]bool{},
	}
}

const loadMode = packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
	packages.NeedSyntax | packages.NeedTypes | packages.NeedTypesInfo

func (p *PackagesParser) Parse(ctx context.Context, path string) (*File, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if file, ok := p.loaded[absPath]; ok {
		return file, nil
	}
	dir := filepath.Dir(absPath)
	if !p.failed[dir] {
		if err := p.loadPackageOf(ctx, absPath); err != nil {
			log.WithFields(log.Fields{"dir": dir, "error": err}).Debug("Falling back to syntax-only parsing")
			p.failed[dir] = true
		}
		if file, ok := p.loaded[absPath]; ok {
			return file, nil
		}
	}
	return p.fallback.Parse(ctx, absPath)
}

func (p *PackagesParser) loadPackageOf(ctx context.Context, absPath string) error {
	cfg := &packages.Config{
		Context: ctx,
		Mode:    loadMode,
		Dir:     filepath.Dir(absPath),
		Fset:    p.fset,
		Tests:   true,
	}
	pkgs, err := packages.Load(cfg, "file="+absPath)
	if err != nil {
		return fmt.Errorf("failed to load package for %s: %w", absPath, err)
	}
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 || pkg.Types == nil {
			continue
		}
		for i, compiled := range pkg.CompiledGoFiles {
			if i >= len(pkg.Syntax) {
				break
			}
			if _, done := p.loaded[compiled]; done {
				continue
			}
			content, err := os.ReadFile(compiled)
			if err != nil {
				continue
			}
			p.loaded[compiled] = &File{
				Path:      RelativePath(p.BasePath, compiled),
				AbsPath:   compiled,
				Content:   content,
				Fset:      p.fset,
				AST:       pkg.Syntax[i],
				Info:      pkg.TypesInfo,
				Pkg:       pkg.Types,
				Generated: enry.IsGenerated(compiled, content),
			}
		}
	}
	if _, ok := p.loaded[absPath]; !ok {
		return fmt.Errorf("package containing %s has errors", absPath)
	}
	return nil
}

// RelativePath renders path relative to base with forward slashes, or the
// cleaned absolute path when it lies outside base.
func RelativePath(base, path string) string {
	if base != "" {
		if absBase, err := filepath.Abs(base); err == nil {
			if rel, err := filepath.Rel(absBase, path); err == nil && !startsWithParent(rel) {
				return filepath.ToSlash(rel)
			}
		}
	}
	return filepath.ToSlash(filepath.Clean(path))
}

func startsWithParent(rel string) bool {
	return rel == ".." || len(rel) > 2 && rel[:3] == ".."+string(filepath.Separator)
}

// ParseSource parses in-memory content as if it were stored at path.
func ParseSource(path string, content []byte) (*File, error) {
	fset := token.NewFileSet()
	tree, err := parser.ParseFile(fset, path, content, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", path, err)
	}
	return &File{
		Path:      filepath.ToSlash(path),
		AbsPath:   path,
		Content:   content,
		Fset:      fset,
		AST:       tree,
		Generated: enry.IsGenerated(path, content),
	}, nil
}

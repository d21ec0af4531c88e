package suppress

import (
	"sync"

	"github.com/reaandrew/lintdetector/core"
	log "github.com/sirupsen/logrus"
)

// FunctionSuppressor hides findings located inside the body of a listed function.
type FunctionSuppressor struct {
	matchers []FunctionMatcher
	warnOnce sync.Once
}

// NewFunctionSuppressor parses the signatures. It returns nil when the list is empty.
func NewFunctionSuppressor(signatures []string) (*FunctionSuppressor, error) {
	if len(signatures) == 0 {
		return nil, nil
	}
	suppressor := &FunctionSuppressor{}
	for _, signature := range signatures {
		matcher, err := ParseFunctionMatcher(signature)
		if err != nil {
			return nil, &core.ConfigurationError{Messages: []string{"ignoreFunction"}, Err: err}
		}
		suppressor.matchers = append(suppressor.matchers, matcher)
	}
	return suppressor, nil
}

func (s *FunctionSuppressor) Suppress(candidate Candidate) (string, bool) {
	file := candidate.Finding.File
	node := candidate.Finding.Node
	if file == nil || node == nil {
		return "", false
	}
	if !file.HasSemantics() {
		s.warnOnce.Do(func() {
			for _, matcher := range s.matchers {
				if matcher.Params != nil {
					log.WithField("rule", candidate.Rule.Instance.Key()).
						Debug("ignoreFunction parameter types need full analysis, matching by name only")
					return
				}
			}
		})
	}
	for _, decl := range file.EnclosingFuncs(node.Pos()) {
		if decl.Body == nil || node.Pos() < decl.Body.Lbrace || node.End() > decl.Body.Rbrace+1 {
			continue
		}
		for _, matcher := range s.matchers {
			if matcher.Match(file, decl) {
				return "ignoreFunction", true
			}
		}
	}
	return "", false
}

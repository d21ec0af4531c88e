package plugins

import (
	"fmt"
	"plugin"

	"github.com/reaandrew/lintdetector/extensions"
	"github.com/reaandrew/lintdetector/rules"
	log "github.com/sirupsen/logrus"
)

// SymbolName is the function every plugin module exports. Its type must be
// func() []plugins.Descriptor.
const SymbolName = "LintdetectorPlugins"

// Descriptor is what a plugin contributes to a run.
type Descriptor struct {
	Name       string
	RuleSets   []rules.Provider
	Extensions []extensions.ReportingExtension
}

// Loader resolves plugin locations into descriptors.
type Loader interface {
	Load(paths []string) ([]Descriptor, error)
}

// SharedObjectLoader opens Go plugins built with -buildmode=plugin.
type SharedObjectLoader struct{}

func (SharedObjectLoader) Load(paths []string) ([]Descriptor, error) {
	var descriptors []Descriptor
	for _, path := range paths {
		module, err := plugin.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open plugin %s: %w", path, err)
		}
		symbol, err := module.Lookup(SymbolName)
		if err != nil {
			return nil, fmt.Errorf("plugin %s does not export %s: %w", path, SymbolName, err)
		}
		provide, ok := symbol.(func() []Descriptor)
		if !ok {
			return nil, fmt.Errorf("plugin %s: %s has type %T, want func() []plugins.Descriptor", path, SymbolName, symbol)
		}
		loaded := provide()
		log.WithFields(log.Fields{"path": path, "descriptors": len(loaded)}).Debug("Loaded plugin")
		descriptors = append(descriptors, loaded...)
	}
	return descriptors, nil
}

// Preloaded serves descriptors that were linked into the binary. Paths are ignored.
type Preloaded []Descriptor

func (p Preloaded) Load([]string) ([]Descriptor, error) {
	return p, nil
}

// Providers flattens the rule set providers of all descriptors.
func Providers(descriptors []Descriptor) []rules.Provider {
	var providers []rules.Provider
	for _, descriptor := range descriptors {
		providers = append(providers, descriptor.RuleSets...)
	}
	return providers
}

// Extensions flattens the reporting extensions of all descriptors.
func Extensions(descriptors []Descriptor) []extensions.ReportingExtension {
	var all []extensions.ReportingExtension
	for _, descriptor := range descriptors {
		all = append(all, descriptor.Extensions...)
	}
	return all
}

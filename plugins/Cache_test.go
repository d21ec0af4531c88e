package plugins

import (
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/reaandrew/lintdetector/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingLoader struct {
	calls atomic.Int32
	fail  bool
}

func (l *countingLoader) Load(paths []string) ([]Descriptor, error) {
	l.calls.Add(1)
	time.Sleep(10 * time.Millisecond)
	if l.fail {
		return nil, errors.New("cannot open")
	}
	return []Descriptor{{Name: filepath.Base(paths[0])}}, nil
}

func TestCacheLoadsEachKeyOnceUnderConcurrency(t *testing.T) {
	loader := &countingLoader{}
	cache := NewCache(loader)
	dir := t.TempDir()
	a := filepath.Join(dir, "a.so")
	b := filepath.Join(dir, "b.so")

	const workers = 32
	modules := make([]*Module, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			paths := []string{a, b}
			if i%2 == 1 {
				paths = []string{b, a, filepath.Join(dir, ".", "a.so")}
			}
			module, err := cache.Get(paths)
			assert.NoError(t, err)
			modules[i] = module
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), loader.calls.Load())
	for _, module := range modules {
		assert.Same(t, modules[0], module)
	}
	assert.Equal(t, []string{a, b}, modules[0].Paths)
}

func TestCacheDistinctKeysGetDistinctModules(t *testing.T) {
	loader := &countingLoader{}
	cache := NewCache(loader)
	dir := t.TempDir()

	first, err := cache.Get([]string{filepath.Join(dir, "a.so")})
	require.NoError(t, err)
	second, err := cache.Get([]string{filepath.Join(dir, "a.so"), filepath.Join(dir, "b.so")})
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.NotEqual(t, first.Key, second.Key)
	assert.Equal(t, int32(2), loader.calls.Load())
}

func TestCacheDoesNotKeepFailedLoads(t *testing.T) {
	loader := &countingLoader{fail: true}
	cache := NewCache(loader)

	_, err := cache.Get([]string{"x.so"})
	assert.EqualError(t, err, "cannot open")
	_, err = cache.Get([]string{"x.so"})
	assert.Error(t, err)
	assert.Equal(t, int32(2), loader.calls.Load())
}

func TestPreloadedAndFlattening(t *testing.T) {
	provider := rules.Provider{ID: "custom", New: func() rules.RuleSet { return rules.RuleSet{ID: "custom"} }}
	descriptors, err := Preloaded{{Name: "one", RuleSets: []rules.Provider{provider}}, {Name: "two"}}.Load(nil)
	require.NoError(t, err)

	assert.Len(t, descriptors, 2)
	require.Len(t, Providers(descriptors), 1)
	assert.Equal(t, "custom", Providers(descriptors)[0].ID)
	assert.Empty(t, Extensions(descriptors))
}

func TestSharedObjectLoaderReportsMissingFiles(t *testing.T) {
	_, err := SharedObjectLoader{}.Load([]string{filepath.Join(t.TempDir(), "missing.so")})
	assert.ErrorContains(t, err, "failed to open plugin")
}

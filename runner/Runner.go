package runner

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/reaandrew/lintdetector/baseline"
	"github.com/reaandrew/lintdetector/config"
	"github.com/reaandrew/lintdetector/core"
	"github.com/reaandrew/lintdetector/extensions"
	"github.com/reaandrew/lintdetector/plugins"
	"github.com/reaandrew/lintdetector/policy"
	"github.com/reaandrew/lintdetector/reporters"
	"github.com/reaandrew/lintdetector/rules"
	"github.com/reaandrew/lintdetector/rulesets"
	"github.com/reaandrew/lintdetector/scanners"
	"github.com/reaandrew/lintdetector/suppress"
	"github.com/reaandrew/lintdetector/syntax"
	"github.com/reaandrew/lintdetector/utils"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var pluginCache = plugins.Default()

func defaultWorkers() int {
	return runtime.NumCPU()
}

// Run executes one analysis: it resolves configuration, loads rules, analyzes the
// inputs, applies reporting extensions, writes reports and evaluates the build
// policy. A policy violation is returned together with the result.
func Run(ctx context.Context, settings Settings) (*core.AnalysisResult, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if settings.Debug {
		log.SetLevel(log.DebugLevel)
	}

	if settings.RepoURL != "" {
		destination, err := cloneInput(ctx, settings.RepoURL)
		if err != nil {
			return nil, err
		}
		settings.Inputs = []string{destination}
		settings.BasePath = destination
	}
	if settings.BasePath == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current working directory: %w", err)
		}
		settings.BasePath = cwd
	}

	runID := utils.NewRunID()
	logger := log.WithField("run", runID)
	started := time.Now()

	env, err := prepare(settings)
	if err != nil {
		return nil, err
	}
	cfg, registry := env.cfg, env.registry

	buildPolicy, err := resolvePolicy(cfg, settings)
	if err != nil {
		return nil, err
	}
	facade, err := reporters.NewFacade(cfg, settings.Reports, settings.Output)
	if err != nil {
		return nil, err
	}
	exts := reportingExtensions(settings, env.descriptors)
	if err := extensions.Init(exts, cfg); err != nil {
		return nil, err
	}

	loaded, err := rules.Load(registry, settings.runPolicy(), cfg, settings.FullAnalysis)
	if err != nil {
		return nil, err
	}

	paths, err := scanners.FileCollector{
		BasePath:     settings.BasePath,
		Includes:     settings.Includes,
		Excludes:     settings.Excludes,
		ChangedSince: settings.ChangedSince,
	}.Collect(settings.Inputs)
	if err != nil {
		return nil, &core.ConfigurationError{Messages: []string{"invalid inputs"}, Err: err}
	}

	parser := syntax.NewParser(settings.BasePath, settings.FullAnalysis)
	files, parseNotifications, err := parseFiles(ctx, parser, paths, settings.parseLimit())
	if err != nil {
		return nil, err
	}

	profiling := scanners.NewRuleProfilingListener()
	listeners := []scanners.FileProcessListener{scanners.NewMetricsListener(), profiling}
	if settings.Progress {
		listeners = append(listeners, scanners.NewProgressListener(utils.NewBarProgressReporter("Analyzing", settings.ProgressOutput)))
	}
	analyzer := &scanners.Analyzer{
		Rules:        loaded,
		Listeners:    listeners,
		Suppression:  suppress.Options{SuppressGenerated: cfg.SubConfig("processors").Bool("suppressGenerated", true)},
		FullAnalysis: settings.FullAnalysis,
		Parallel:     settings.Parallel,
		Workers:      settings.Workers,
	}
	result, err := analyzer.Analyze(ctx, files)
	if err != nil {
		return nil, err
	}
	result.AddNotifications(parseNotifications...)
	core.SortNotifications(result.Notifications)
	result.SetUserData(core.RunIDKey, runID)
	result.Seal()

	result = extensions.Run(result, exts)
	result = facade.Run(result)

	logger.WithFields(log.Fields{
		"issues":   len(result.ActiveIssues()),
		"duration": time.Since(started),
		"policy":   buildPolicy.String(),
	}).Info("Analysis complete")

	return result, buildPolicy.Evaluate(result)
}

// LoadRules resolves the rules a run with settings would consider, active or not,
// without collecting or analyzing any file.
func LoadRules(settings Settings) ([]rules.LoadedRule, error) {
	env, err := prepare(settings)
	if err != nil {
		return nil, err
	}
	return rules.Load(env.registry, settings.runPolicy(), env.cfg, settings.FullAnalysis)
}

// ValidateConfig loads the configuration and checks it against every registered rule set.
func ValidateConfig(settings Settings) error {
	settings.SkipConfigValidation = false
	_, err := prepare(settings)
	return err
}

type environment struct {
	cfg         *config.Config
	registry    *rules.Registry
	descriptors []plugins.Descriptor
}

func prepare(settings Settings) (environment, error) {
	cfg, err := config.LoadAll(settings.ConfigPaths)
	if err != nil {
		return environment{}, err
	}
	descriptors, err := loadPlugins(settings)
	if err != nil {
		return environment{}, err
	}
	registry := rules.NewRegistry(rulesets.InitializeProviders()...)
	registry.AddExternal(plugins.Providers(descriptors)...)
	registry.SetDisabled(settings.DisabledRuleSets)

	if err := validateConfig(cfg, registry, settings); err != nil {
		return environment{}, err
	}
	return environment{cfg: cfg, registry: registry, descriptors: descriptors}, nil
}

func cloneInput(ctx context.Context, repoURL string) (string, error) {
	destination, err := utils.CloneDestination(repoURL)
	if err != nil {
		return "", &core.ConfigurationError{Messages: []string{fmt.Sprintf("repository '%s'", repoURL)}, Err: err}
	}
	if err := utils.CloneRepository(ctx, repoURL, destination); err != nil {
		return "", fmt.Errorf("failed to clone %s: %w", repoURL, err)
	}
	return destination, nil
}

func loadPlugins(settings Settings) ([]plugins.Descriptor, error) {
	descriptors := append([]plugins.Descriptor{}, settings.Plugins...)
	if len(settings.PluginPaths) == 0 {
		return descriptors, nil
	}
	module, err := pluginCache.Get(settings.PluginPaths)
	if err != nil {
		return nil, &core.ConfigurationError{Messages: []string{"failed to load plugins"}, Err: err}
	}
	log.WithField("plugins", module.Key).Debug("Loaded plugin module")
	return append(descriptors, module.Descriptors...), nil
}

func validateConfig(cfg *config.Config, registry *rules.Registry, settings Settings) error {
	validation := cfg.SubConfig("config")
	if settings.SkipConfigValidation || !validation.Bool("validation", true) {
		return nil
	}
	known, err := config.KnownPatterns(validation.StringList("excludes", nil)...)
	if err != nil {
		return &core.ConfigurationError{Messages: []string{"config>excludes"}, Err: err}
	}
	return config.Validate(cfg, registry.ReferenceConfig(), known)
}

// resolvePolicy reads the build policy from cfg. MaxIssues and MinSeverity in
// settings take precedence.
func resolvePolicy(cfg *config.Config, settings Settings) (policy.Policy, error) {
	buildPolicy, err := policy.FromConfig(cfg)
	if err != nil {
		return policy.Policy{}, err
	}
	if settings.MaxIssues != nil {
		minSeverity, hasMin := buildPolicy.MinSeverity()
		buildPolicy = policy.FromMaxIssues(*settings.MaxIssues)
		if hasMin {
			buildPolicy = buildPolicy.WithMinSeverity(minSeverity)
		}
	}
	if settings.MinSeverity != "" {
		severity, err := core.ParseSeverity(settings.MinSeverity)
		if err != nil {
			return policy.Policy{}, &core.ConfigurationError{Messages: []string{"min severity"}, Err: err}
		}
		buildPolicy = buildPolicy.WithMinSeverity(severity)
	}
	return buildPolicy, nil
}

func reportingExtensions(settings Settings, descriptors []plugins.Descriptor) []extensions.ReportingExtension {
	var exts []extensions.ReportingExtension
	if settings.BaselinePath != "" {
		exts = append(exts, baseline.NewExtension(settings.BaselinePath, settings.CreateBaseline))
	}
	return append(exts, plugins.Extensions(descriptors)...)
}

// parseFiles parses paths with at most limit files in flight. Files that fail to
// parse are skipped and reported as warnings.
func parseFiles(ctx context.Context, parser syntax.Parser, paths []string, limit int) ([]*syntax.File, []core.Notification, error) {
	parsed := make([]*syntax.File, len(paths))
	failures := make([]error, len(paths))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(limit)
	for i, path := range paths {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			file, err := parser.Parse(groupCtx, path)
			if err != nil {
				failures[i] = err
				return nil
			}
			parsed[i] = file
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, nil, fmt.Errorf("parsing cancelled: %w", err)
	}

	files := make([]*syntax.File, 0, len(paths))
	var notifications []core.Notification
	for i, file := range parsed {
		if failures[i] != nil {
			log.WithError(failures[i]).WithField("path", paths[i]).Warn("Skipping file that failed to parse")
			notifications = append(notifications, core.NewNotification(core.NotificationWarning,
				fmt.Sprintf("failed to parse %s: %v", paths[i], failures[i])))
			continue
		}
		files = append(files, file)
	}
	return files, notifications, nil
}

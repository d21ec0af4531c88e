package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/reaandrew/lintdetector/core"
	"github.com/reaandrew/lintdetector/rules"
	"github.com/reaandrew/lintdetector/runner"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultSettingsFilename = ".lintdetector"
	envPrefix               = "LINTDETECTOR"
)

// Cli represents the command-line interface
type Cli struct {
	settingsFile string
	debug        bool

	configPaths      []string
	basePath         string
	reports          []string
	baselinePath     string
	parallel         bool
	workers          int
	fullAnalysis     bool
	runRule          string
	disableDefaults  bool
	disabledRuleSets []string
	pluginPaths      []string
	includes         []string
	excludes         []string
	changedSince     string
	skipValidation   bool
	maxIssues        int
	minSeverity      string
	progress         bool
	repoURL          string

	out   io.Writer
	args  []string
	viper *viper.Viper
}

// Execute sets up and runs the root command
func (cli *Cli) Execute(ctx context.Context) error {
	if cli.out == nil {
		cli.out = os.Stdout
	}
	cli.viper = viper.New()
	rootCmd := &cobra.Command{
		Use:           core.ToolName,
		Short:         "lintdetector runs configurable static analysis rules over Go source code.",
		Version:       core.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.initializeConfig(cmd); err != nil {
				return err
			}
			setupLogging(cli.debug)
			return nil
		},
	}
	rootCmd.SetOut(cli.out)
	rootCmd.PersistentFlags().StringVar(&cli.settingsFile, "settings", "", "Settings file (default ./.lintdetector.yaml)")
	rootCmd.PersistentFlags().BoolVar(&cli.debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		cli.createAnalyzeCommand(),
		cli.createBaselineCommand(),
		cli.createRulesCommand(),
		cli.createValidateConfigCommand(),
		cli.createVersionCommand(),
	)
	if cli.args != nil {
		rootCmd.SetArgs(cli.args)
	}
	return rootCmd.ExecuteContext(ctx)
}

func (cli *Cli) createAnalyzeCommand() *cobra.Command {
	analyzeCmd := &cobra.Command{
		Use:   "analyze [PATH...]",
		Short: "Analyze Go files or directories (defaults to the current directory).",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := cli.settings(cmd, cli.inputs(args))
			if err != nil {
				return err
			}
			_, err = runner.Run(cmd.Context(), settings)
			return err
		},
	}
	cli.addAnalysisFlags(analyzeCmd.Flags())
	analyzeCmd.Flags().StringVar(&cli.baselinePath, "baseline", "", "Baseline file whose manually suppressed issues are hidden")
	return analyzeCmd
}

func (cli *Cli) createBaselineCommand() *cobra.Command {
	baselineCmd := &cobra.Command{
		Use:   "create-baseline [PATH...]",
		Short: "Analyze and write every current issue into the baseline file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := cli.settings(cmd, cli.inputs(args))
			if err != nil {
				return err
			}
			settings.CreateBaseline = true
			_, err = runner.Run(cmd.Context(), settings)
			if core.ExitCodeFor(err) == core.ExitPolicyViolation {
				log.WithError(err).Info("Ignoring build policy while creating a baseline")
				return nil
			}
			return err
		},
	}
	cli.addAnalysisFlags(baselineCmd.Flags())
	baselineCmd.Flags().StringVar(&cli.baselinePath, "baseline", "", "Baseline file to create or update (required)")
	return baselineCmd
}

func (cli *Cli) createRulesCommand() *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "List the registered rules and whether the configuration activates them.",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := cli.settings(cmd, nil)
			if err != nil {
				return err
			}
			loaded, err := runner.LoadRules(settings)
			if err != nil {
				return err
			}
			cli.printRules(loaded)
			return nil
		},
	}
	cli.addRuleFlags(rulesCmd.Flags())
	return rulesCmd
}

func (cli *Cli) createValidateConfigCommand() *cobra.Command {
	validateCmd := &cobra.Command{
		Use:   "validate-config",
		Short: "Check the configuration files for unknown or misplaced properties.",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := cli.settings(cmd, nil)
			if err != nil {
				return err
			}
			if err := runner.ValidateConfig(settings); err != nil {
				return err
			}
			fmt.Fprintln(cli.out, "Configuration is valid.")
			return nil
		},
	}
	cli.addRuleFlags(validateCmd.Flags())
	return validateCmd
}

func (cli *Cli) createVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cli.out, "%s %s\n", core.ToolName, core.Version)
		},
	}
}

func (cli *Cli) addRuleFlags(flags *pflag.FlagSet) {
	flags.StringSliceVarP(&cli.configPaths, "config", "c", nil, "Analysis config files (yaml or toml), later files override earlier ones")
	flags.StringSliceVar(&cli.pluginPaths, "plugins", nil, "Plugin shared objects providing extra rule sets")
	flags.StringSliceVar(&cli.disabledRuleSets, "disable-ruleset", nil, "Rule set ids to skip")
	flags.BoolVar(&cli.disableDefaults, "disable-default-rulesets", false, "Only run rule sets provided by plugins")
	flags.StringVar(&cli.runRule, "run-rule", "", "Run a single rule given as '<ruleSet>:<rule>'")
	flags.BoolVar(&cli.fullAnalysis, "full-analysis", false, "Load packages with type information for rules that need it")
}

func (cli *Cli) addAnalysisFlags(flags *pflag.FlagSet) {
	cli.addRuleFlags(flags)
	flags.StringVar(&cli.basePath, "base-path", "", "Path reported locations are relative to (default current directory)")
	flags.StringSliceVarP(&cli.reports, "report", "r", nil, "Output reports as '<id>:<destination>', e.g. sarif:out.sarif")
	flags.BoolVar(&cli.parallel, "parallel", false, "Analyze files in parallel")
	flags.IntVar(&cli.workers, "workers", 0, "Number of parallel workers (default number of CPUs)")
	flags.StringSliceVar(&cli.includes, "includes", nil, "Globs of files to analyze")
	flags.StringSliceVar(&cli.excludes, "excludes", nil, "Globs of files to skip")
	flags.StringVar(&cli.changedSince, "changed-since", "", "Only analyze files changed in git since this date, e.g. '2 weeks ago'")
	flags.BoolVar(&cli.skipValidation, "skip-config-validation", false, "Do not validate the configuration")
	flags.IntVar(&cli.maxIssues, "max-issues", -1, "Fail when more issues are found (overrides build>maxIssues)")
	flags.StringVar(&cli.minSeverity, "min-severity", "", "Only count issues at or above this severity towards max-issues")
	flags.BoolVar(&cli.progress, "progress", false, "Show a progress bar")
	flags.StringVar(&cli.repoURL, "repo", "", "Clone and analyze this git repository instead of local paths")
}

func (cli *Cli) settings(cmd *cobra.Command, args []string) (runner.Settings, error) {
	settings := runner.Settings{
		Inputs:               args,
		RepoURL:              cli.repoURL,
		BasePath:             cli.basePath,
		ConfigPaths:          cli.configPaths,
		DisabledRuleSets:     cli.disabledRuleSets,
		PluginPaths:          cli.pluginPaths,
		BaselinePath:         cli.baselinePath,
		Parallel:             cli.parallel,
		Workers:              cli.workers,
		FullAnalysis:         cli.fullAnalysis,
		Includes:             cli.includes,
		Excludes:             cli.excludes,
		ChangedSince:         cli.changedSince,
		SkipConfigValidation: cli.skipValidation,
		MinSeverity:          cli.minSeverity,
		Progress:             cli.progress,
		Debug:                cli.debug,
		Output:               cli.out,
	}
	if flag := cmd.Flags().Lookup("max-issues"); flag != nil && flag.Changed {
		maxIssues := cli.maxIssues
		settings.MaxIssues = &maxIssues
	}

	switch {
	case cli.runRule != "":
		single, err := rules.ParseSingleRule(cli.runRule)
		if err != nil {
			return runner.Settings{}, &core.ConfigurationError{Messages: []string{"--run-rule"}, Err: err}
		}
		settings.Policy = single
	case cli.disableDefaults:
		settings.Policy = rules.DisableDefaultRuleSets{}
	}

	reports, err := parseReports(cli.reports)
	if err != nil {
		return runner.Settings{}, err
	}
	settings.Reports = reports
	return settings, nil
}

// inputs defaults to the current directory unless a repository is analyzed.
func (cli *Cli) inputs(args []string) []string {
	if len(args) == 0 && cli.repoURL == "" {
		return []string{"."}
	}
	return args
}

// parseReports reads '<id>:<destination>' pairs. Destinations may contain colons.
func parseReports(values []string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	reports := make(map[string]string, len(values))
	for _, value := range values {
		id, destination, ok := strings.Cut(value, ":")
		if !ok || strings.TrimSpace(id) == "" || strings.TrimSpace(destination) == "" {
			return nil, core.NewConfigurationError("expected --report '<id>:<destination>', got '%s'", value)
		}
		reports[strings.TrimSpace(id)] = strings.TrimSpace(destination)
	}
	return reports, nil
}

func (cli *Cli) printRules(loaded []rules.LoadedRule) {
	t := table.NewWriter()
	t.SetOutputMirror(cli.out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Rule Set", "Rule", "Active", "Severity", "Since", "Description"})
	for _, rule := range loaded {
		t.AppendRow(table.Row{
			rule.Instance.RuleSetID,
			rule.Instance.ID,
			rule.Instance.Active,
			rule.Instance.Severity,
			rule.Descriptor.ActiveSince,
			rule.Descriptor.Description,
		})
	}
	t.AppendFooter(table.Row{"", "Total", len(rules.Active(loaded)), "", "", fmt.Sprintf("%d rules", len(loaded))})
	t.Render()
}

func (cli *Cli) initializeConfig(cmd *cobra.Command) error {
	v := cli.viper
	if cli.settingsFile != "" {
		v.SetConfigFile(cli.settingsFile)
	} else {
		v.SetConfigName(defaultSettingsFilename)
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return core.NewConfigurationError("failed to read settings: %v", err)
		}
		log.Debug("No settings file found")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	bindFlags(v, cmd)
	return nil
}

// bindFlags applies settings file and environment values to every flag the user did not set.
func bindFlags(v *viper.Viper, cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if !f.Changed && v.IsSet(f.Name) {
			if err := setFlag(cmd.Flags(), f, v.Get(f.Name)); err != nil {
				log.WithError(err).WithField("flag", f.Name).Warn("Could not apply setting")
			}
		}
		if err := v.BindPFlag(f.Name, f); err != nil {
			log.WithError(err).WithField("flag", f.Name).Error("Could not bind flag")
		}
	})
}

func setFlag(flags *pflag.FlagSet, f *pflag.Flag, value any) error {
	if list, ok := value.([]any); ok {
		for _, item := range list {
			if err := flags.Set(f.Name, fmt.Sprintf("%v", item)); err != nil {
				return err
			}
		}
		return nil
	}
	return flags.Set(f.Name, fmt.Sprintf("%v", value))
}

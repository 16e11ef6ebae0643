package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/clickplan/internal/config"
	"github.com/mrz1836/clickplan/internal/constants"
	"github.com/mrz1836/clickplan/internal/tui"
)

// ConfigSource is where a configuration value came from.
type ConfigSource string

const (
	// SourceDefault is a built-in default.
	SourceDefault ConfigSource = "default"
	// SourceGlobal is ~/.clickplan/config.yaml.
	SourceGlobal ConfigSource = "global"
	// SourceProject is .clickplan/config.yaml.
	SourceProject ConfigSource = "project"
	// SourceEnv is a CLICKPLAN_* environment variable.
	SourceEnv ConfigSource = "env"
)

// ConfigValueWithSource is one configuration value and its source.
type ConfigValueWithSource struct {
	Key    string       `json:"key"`
	Value  any          `json:"value"`
	Source ConfigSource `json:"source"`
}

// AnnotatedConfig is the effective configuration by section.
type AnnotatedConfig struct {
	Run   []ConfigValueWithSource `json:"run"`
	Match []ConfigValueWithSource `json:"match"`
	Task  []ConfigValueWithSource `json:"task"`
	Log   []ConfigValueWithSource `json:"log"`
}

// AddConfigCommand adds the config command group to the root command.
func AddConfigCommand(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect clickplan configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		Long: `Display the effective configuration and where each value comes from:
  - default: built-in default
  - global:  ~/.clickplan/config.yaml (or $CLICKPLAN_HOME/config.yaml)
  - project: .clickplan/config.yaml
  - env:     CLICKPLAN_* environment variable

Examples:
  clickplan config show
  clickplan config show --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd.Context(), cmd.Flag("output").Value.String(), cmd.OutOrStdout())
		},
	})
	root.AddCommand(cmd)
}

func runConfigShow(ctx context.Context, format string, w io.Writer) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	out := tui.NewOutput(w, format)
	cfg, err := config.Load(ctx)
	if err != nil {
		return reportError(format, out, fmt.Errorf("failed to load configuration: %w", err))
	}

	annotated := buildAnnotatedConfig(cfg)
	if format == constants.OutputFormatJSON {
		return out.JSON(annotated)
	}
	renderAnnotatedConfig(w, annotated)
	return nil
}

// buildAnnotatedConfig pairs every value of cfg with its source.
func buildAnnotatedConfig(cfg *config.Config) *AnnotatedConfig {
	s := sourceResolver{
		global:  loadGlobalConfigOnly(),
		project: loadConfigFile(config.ProjectConfigPath()),
	}

	return &AnnotatedConfig{
		Run: []ConfigValueWithSource{
			s.resolve("run.delay", cfg.Run.Delay.String()),
			s.resolve("run.random_order", cfg.Run.RandomOrder),
			s.resolve("run.ignore_failure", cfg.Run.IgnoreFailure),
			s.resolve("run.seed", cfg.Run.Seed),
			s.resolve("run.confirm", cfg.Run.Confirm),
		},
		Match: []ConfigValueWithSource{
			s.resolve("match.ratio", cfg.Match.Ratio),
			s.resolve("match.consistency", cfg.Match.Consistency),
		},
		Task: []ConfigValueWithSource{
			s.resolve("task.button", cfg.Task.Button),
			s.resolve("task.retries", cfg.Task.Retries),
			s.resolve("task.retry_interval", cfg.Task.RetryInterval.String()),
			s.resolve("task.jitter", cfg.Task.Jitter),
			s.resolve("task.jitter_margin", cfg.Task.JitterMargin),
		},
		Log: []ConfigValueWithSource{
			s.resolve("log.max_size_mb", cfg.Log.MaxSizeMB),
			s.resolve("log.max_backups", cfg.Log.MaxBackups),
			s.resolve("log.max_age_days", cfg.Log.MaxAgeDays),
			s.resolve("log.compress", cfg.Log.Compress),
		},
	}
}

// configValues holds the dotted keys set by one config file.
type configValues map[string]bool

type sourceResolver struct {
	global  configValues
	project configValues
}

// resolve reports the highest-precedence source that sets key.
func (s sourceResolver) resolve(key string, value any) ConfigValueWithSource {
	v := ConfigValueWithSource{Key: key[strings.IndexByte(key, '.')+1:], Value: value, Source: SourceDefault}
	envKey := constants.EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	switch {
	case os.Getenv(envKey) != "":
		v.Source = SourceEnv
	case s.project[key]:
		v.Source = SourceProject
	case s.global[key]:
		v.Source = SourceGlobal
	}
	return v
}

func loadGlobalConfigOnly() configValues {
	path, err := config.GlobalConfigPath()
	if err != nil {
		return nil
	}
	return loadConfigFile(path)
}

// loadConfigFile returns the keys set in the YAML file at path, or nil
// when it cannot be read.
func loadConfigFile(path string) configValues {
	data, err := os.ReadFile(path) //nolint:gosec // config file path
	if err != nil {
		return nil
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil
	}
	keys := make(configValues)
	flattenKeys("", doc, keys)
	return keys
}

func flattenKeys(prefix string, m map[string]any, keys configValues) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			flattenKeys(key, nested, keys)
			continue
		}
		keys[key] = true
	}
}

// configShowStyles styles the text form of config show.
type configShowStyles struct {
	header  lipgloss.Style
	section lipgloss.Style
	key     lipgloss.Style
	dim     lipgloss.Style
	sources map[ConfigSource]lipgloss.Style
}

func newConfigShowStyles() *configShowStyles {
	return &configShowStyles{
		header:  lipgloss.NewStyle().Bold(true).Foreground(tui.ColorPrimary),
		section: lipgloss.NewStyle().Bold(true),
		key:     lipgloss.NewStyle().Foreground(tui.ColorPrimary),
		dim:     lipgloss.NewStyle().Foreground(tui.ColorMuted),
		sources: map[ConfigSource]lipgloss.Style{
			SourceEnv:     lipgloss.NewStyle().Foreground(tui.ColorError),
			SourceProject: lipgloss.NewStyle().Foreground(tui.ColorWarning),
			SourceGlobal:  lipgloss.NewStyle().Foreground(tui.ColorSuccess),
			SourceDefault: lipgloss.NewStyle().Foreground(tui.ColorMuted),
		},
	}
}

func renderAnnotatedConfig(w io.Writer, a *AnnotatedConfig) {
	tui.CheckNoColor()
	styles := newConfigShowStyles()

	_, _ = fmt.Fprintln(w, styles.header.Render("Effective clickplan configuration"))
	_, _ = fmt.Fprintln(w, styles.dim.Render("Sources: ")+
		styles.sources[SourceEnv].Render("env")+" > "+
		styles.sources[SourceProject].Render("project")+" > "+
		styles.sources[SourceGlobal].Render("global")+" > "+
		styles.sources[SourceDefault].Render("default"))
	_, _ = fmt.Fprintln(w)

	sections := []struct {
		name   string
		values []ConfigValueWithSource
	}{
		{"run", a.Run},
		{"match", a.Match},
		{"task", a.Task},
		{"log", a.Log},
	}
	for _, s := range sections {
		_, _ = fmt.Fprintln(w, styles.section.Render(s.name+":"))
		for _, v := range s.values {
			_, _ = fmt.Fprintf(w, "  %s: %v  %s\n",
				styles.key.Render(v.Key), v.Value,
				styles.sources[v.Source].Render("# "+string(v.Source)))
		}
		_, _ = fmt.Fprintln(w)
	}

	_, _ = fmt.Fprintln(w, styles.dim.Render("Configuration files:"))
	if globalPath, err := config.GlobalConfigPath(); err == nil {
		_, _ = fmt.Fprintln(w, styles.dim.Render("  Global:  "+describeConfigFile(globalPath)))
	}
	projectPath := config.ProjectConfigPath()
	if abs, err := filepath.Abs(projectPath); err == nil {
		projectPath = abs
	}
	_, _ = fmt.Fprintln(w, styles.dim.Render("  Project: "+describeConfigFile(projectPath)))
}

func describeConfigFile(path string) string {
	if _, err := os.Stat(path); err != nil {
		return path + " (not found)"
	}
	return path
}

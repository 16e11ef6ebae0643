// Package plan loads automation plans from YAML or JSON files and builds
// them into runnable task groups.
//
// A plan lists groups; each group lists tasks. A task either acts on a
// visual target described by one or more template images, or sleeps.
// Template paths are resolved relative to the plan file.
//
// Import rules:
//   - CAN import: internal/actions, internal/config, internal/domain, internal/errors,
//     internal/locator, internal/task, internal/vision, std lib
//   - MUST NOT import: internal/cli, internal/desktop
package plan

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mrz1836/clickplan/internal/errors"
)

// Plan is the file form of an automation plan.
type Plan struct {
	Name        string      `yaml:"name" json:"name"`
	Description string      `yaml:"description,omitempty" json:"description,omitempty"`
	Match       *MatchSpec  `yaml:"match,omitempty" json:"match,omitempty"`
	Groups      []GroupSpec `yaml:"groups" json:"groups"`

	path string
}

// GroupSpec describes one task group. Unset run settings fall back to the
// run section of the configuration.
type GroupSpec struct {
	Name          string     `yaml:"name" json:"name"`
	Description   string     `yaml:"description,omitempty" json:"description,omitempty"`
	Delay         string     `yaml:"delay,omitempty" json:"delay,omitempty"`
	RandomOrder   *bool      `yaml:"random_order,omitempty" json:"random_order,omitempty"`
	IgnoreFailure *bool      `yaml:"ignore_failure,omitempty" json:"ignore_failure,omitempty"`
	Tasks         []TaskSpec `yaml:"tasks" json:"tasks"`
}

// TaskSpec describes one task. Unset click settings fall back to the task
// section of the configuration.
type TaskSpec struct {
	Name          string      `yaml:"name" json:"name"`
	Action        string      `yaml:"action,omitempty" json:"action,omitempty"`
	Templates     []string    `yaml:"templates,omitempty" json:"templates,omitempty"`
	Window        *WindowSpec `yaml:"window,omitempty" json:"window,omitempty"`
	Button        string      `yaml:"button,omitempty" json:"button,omitempty"`
	Retries       *int        `yaml:"retries,omitempty" json:"retries,omitempty"`
	RetryInterval string      `yaml:"retry_interval,omitempty" json:"retry_interval,omitempty"`
	Jitter        *bool       `yaml:"jitter,omitempty" json:"jitter,omitempty"`
	JitterMargin  *int        `yaml:"jitter_margin,omitempty" json:"jitter_margin,omitempty"`
	Match         *MatchSpec  `yaml:"match,omitempty" json:"match,omitempty"`

	// Duration is the pause of a sleep task.
	Duration string `yaml:"duration,omitempty" json:"duration,omitempty"`
}

// WindowSpec scopes a task to one window, by process id or process name.
type WindowSpec struct {
	PID     int    `yaml:"pid,omitempty" json:"pid,omitempty"`
	Process string `yaml:"process,omitempty" json:"process,omitempty"`
}

// MatchSpec overrides matcher thresholds.
type MatchSpec struct {
	Ratio       *float64 `yaml:"ratio,omitempty" json:"ratio,omitempty"`
	Consistency *float64 `yaml:"consistency,omitempty" json:"consistency,omitempty"`
}

// ActionSleep is the plan-only action of a SleepTask.
const ActionSleep = "sleep"

// Load reads and parses the plan at path. The format is detected from the
// extension: .json is JSON, anything else YAML. Unknown fields are errors.
// Load does not validate; call Validate.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path) //nolint:gosec // plan path comes from the user
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", errors.ErrPlanNotFound, path)
		}
		return nil, fmt.Errorf("read plan %s: %w", path, err)
	}

	p, err := Parse(data, detectFormat(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	p.path = abs
	return p, nil
}

// Parse decodes a plan document. format is "json" or "yaml". Relative
// template paths of a parsed plan resolve against the working directory.
func Parse(data []byte, format string) (*Plan, error) {
	var p Plan
	var err error
	if format == "json" {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&p)
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&p)
	}

	if stderrors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: plan is empty", errors.ErrPlanParseError)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrPlanParseError, err)
	}
	return &p, nil
}

// Path returns the absolute path the plan was loaded from, or "" for a
// parsed plan.
func (p *Plan) Path() string {
	return p.path
}

// Dir returns the directory relative template paths resolve against.
func (p *Plan) Dir() string {
	if p.path == "" {
		return "."
	}
	return filepath.Dir(p.path)
}

// GroupNames returns the group names in plan order.
func (p *Plan) GroupNames() []string {
	names := make([]string, len(p.Groups))
	for i, g := range p.Groups {
		names[i] = g.Name
	}
	return names
}

// TemplatePath resolves a template path of the plan.
func (p *Plan) TemplatePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.Dir(), path)
}

// detectFormat returns "json" for .json files and "yaml" otherwise.
func detectFormat(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return "json"
	}
	return "yaml"
}

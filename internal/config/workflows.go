package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	ErrWorkflowsFileNotFound = errors.New("workflows file not found")
	ErrWorkflowsFileParsing  = errors.New("workflows file parsing failed")
)

// WorkflowTargets is the optional workflows.yml override file. It lets
// deployments point individual validation types at different workflow files
// or branches without touching the environment.
type WorkflowTargets struct {
	Branch string `yaml:"branch"`
	Docker string `yaml:"docker"`
	OSSF   string `yaml:"ossf"`
	Azd    string `yaml:"azd"`
}

// LoadWorkflowTargets loads and parses a workflows.yml file.
func LoadWorkflowTargets(path string) (*WorkflowTargets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrWorkflowsFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to read workflows file %s: %w", path, err)
	}

	targets := &WorkflowTargets{}
	if err := yaml.Unmarshal(data, targets); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWorkflowsFileParsing, err)
	}
	return targets, nil
}

// apply overrides the env-derived workflow coordinates with any non-empty
// values from the file.
func (w *WorkflowTargets) apply(gh *GitHubConfig) {
	if w.Branch != "" {
		gh.Branch = w.Branch
	}
	if w.Docker != "" {
		gh.DockerWorkflow = w.Docker
	}
	if w.OSSF != "" {
		gh.OSSFWorkflow = w.OSSF
	}
	if w.Azd != "" {
		gh.AzdWorkflow = w.Azd
	}
}

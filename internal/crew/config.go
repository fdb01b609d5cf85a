package crew

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// AgentConfig describes one agent in agents.yaml
type AgentConfig struct {
	Role      string `yaml:"role" validate:"required"`
	Goal      string `yaml:"goal" validate:"required"`
	Backstory string `yaml:"backstory" validate:"required"`
}

// TaskConfig describes one task in tasks.yaml
type TaskConfig struct {
	Description    string `yaml:"description" validate:"required"`
	ExpectedOutput string `yaml:"expected_output" validate:"required"`
	// Agent optionally names the agent entry the task belongs to
	Agent string `yaml:"agent"`
}

var validate = validator.New()

// LoadAgents reads a mapping of agent name to descriptor
func LoadAgents(path string) (map[string]AgentConfig, error) {
	return loadDescriptors[AgentConfig](path)
}

// LoadTasks reads a mapping of task name to descriptor
func LoadTasks(path string) (map[string]TaskConfig, error) {
	return loadDescriptors[TaskConfig](path)
}

func loadDescriptors[T any](path string) (map[string]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var out map[string]T
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s defines no entries", path)
	}

	names := make([]string, 0, len(out))
	for name := range out {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		entry := out[name]
		if err := validate.Struct(entry); err != nil {
			return nil, fmt.Errorf("%s: entry %q is invalid: %s", path, name, describeValidation(err))
		}
	}

	return out, nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		missing = append(missing, strings.ToLower(fe.Field())+" is "+fe.Tag())
	}
	return strings.Join(missing, ", ")
}

package crew

import (
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Task is a unit of work assigned to one agent
type Task struct {
	Name           string
	Description    string
	ExpectedOutput string
	Agent          *Agent
}

func NewTask(name string, cfg TaskConfig, agent *Agent) *Task {
	return &Task{
		Name:           name,
		Description:    cfg.Description,
		ExpectedOutput: cfg.ExpectedOutput,
		Agent:          agent,
	}
}

// Interpolate returns a copy with {name} placeholders replaced from inputs.
// Placeholders without an input are left as they are.
func (t *Task) Interpolate(inputs map[string]string) *Task {
	out := *t
	out.Description = interpolate(t.Description, inputs)
	out.ExpectedOutput = interpolate(t.ExpectedOutput, inputs)
	return &out
}

func interpolate(text string, inputs map[string]string) string {
	if len(inputs) == 0 || !strings.Contains(text, "{") {
		return text
	}
	return placeholderPattern.ReplaceAllStringFunc(text, func(m string) string {
		if v, ok := inputs[m[1:len(m)-1]]; ok {
			return v
		}
		return m
	})
}

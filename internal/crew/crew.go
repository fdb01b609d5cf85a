package crew

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"agentic-rag/internal/logging"
)

// Process decides how tasks are scheduled. Only sequential execution exists.
type Process int

const (
	Sequential Process = iota
)

func (p Process) String() string {
	switch p {
	case Sequential:
		return "sequential"
	default:
		return fmt.Sprintf("process(%d)", int(p))
	}
}

// TaskOutput is the result of one task in a run
type TaskOutput struct {
	Name     string        `json:"name"`
	Agent    string        `json:"agent"`
	Raw      string        `json:"raw"`
	Duration time.Duration `json:"duration"`
}

// Output is the result of a whole run. Raw is the last task's output.
type Output struct {
	Raw   string       `json:"raw"`
	Tasks []TaskOutput `json:"tasks"`
}

// Crew runs a fixed list of tasks with their agents
type Crew struct {
	agents  []*Agent
	tasks   []*Task
	process Process
}

// New checks that every task has an agent from agents and returns the crew
func New(agents []*Agent, tasks []*Task, process Process) (*Crew, error) {
	if len(tasks) == 0 {
		return nil, errors.New("crew needs at least one task")
	}
	if process != Sequential {
		return nil, fmt.Errorf("unsupported process %s", process)
	}

	for _, t := range tasks {
		if t.Agent == nil {
			return nil, fmt.Errorf("task %q has no agent", t.Name)
		}
		if !containsAgent(agents, t.Agent) {
			return nil, fmt.Errorf("task %q is assigned to agent %q which is not part of the crew", t.Name, t.Agent.Role)
		}
	}

	return &Crew{agents: agents, tasks: tasks, process: process}, nil
}

func (c *Crew) Agents() []*Agent {
	return c.agents
}

// Kickoff runs the tasks in order. Each task sees the outputs of the tasks
// before it. The first error ends the run.
func (c *Crew) Kickoff(ctx context.Context, inputs map[string]string) (*Output, error) {
	out := &Output{Tasks: make([]TaskOutput, 0, len(c.tasks))}
	var prior []string

	for _, t := range c.tasks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		task := t.Interpolate(inputs)
		agent := t.Agent.Interpolate(inputs)
		start := time.Now()
		logging.Debug("crew: starting task %s with agent %q", task.Name, agent.Role)

		raw, err := agent.Execute(ctx, task, strings.Join(prior, "\n\n"))
		if err != nil {
			logging.Warn("crew: task %s failed: %v", task.Name, err)
			return nil, fmt.Errorf("task %s: %w", task.Name, err)
		}

		elapsed := time.Since(start)
		logging.Info("crew: task %s finished in %s (%d chars)", task.Name, elapsed.Round(time.Millisecond), len(raw))

		out.Tasks = append(out.Tasks, TaskOutput{
			Name:     task.Name,
			Agent:    agent.Role,
			Raw:      raw,
			Duration: elapsed,
		})
		prior = append(prior, raw)
		out.Raw = raw
	}

	return out, nil
}

func containsAgent(agents []*Agent, a *Agent) bool {
	for _, candidate := range agents {
		if candidate == a {
			return true
		}
	}
	return false
}

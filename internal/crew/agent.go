package crew

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"agentic-rag/internal/logging"
)

const DefaultMaxIterations = 4

// Agent is a role-bound worker that completes tasks with an LLM and,
// optionally, tools.
type Agent struct {
	Role      string
	Goal      string
	Backstory string
	Tools     []Tool
	LLM       LLM

	// MaxIterations bounds the number of tool calls per task
	MaxIterations int
	Verbose       bool
}

func NewAgent(cfg AgentConfig, llm LLM, tools ...Tool) *Agent {
	return &Agent{
		Role:          strings.TrimSpace(cfg.Role),
		Goal:          strings.TrimSpace(cfg.Goal),
		Backstory:     strings.TrimSpace(cfg.Backstory),
		Tools:         tools,
		LLM:           llm,
		MaxIterations: DefaultMaxIterations,
	}
}

// Interpolate returns a copy with {name} placeholders in the role, goal and
// backstory replaced from inputs
func (a *Agent) Interpolate(inputs map[string]string) *Agent {
	out := *a
	out.Role = interpolate(a.Role, inputs)
	out.Goal = interpolate(a.Goal, inputs)
	out.Backstory = interpolate(a.Backstory, inputs)
	return &out
}

// Tool returns the agent's tool with the given name
func (a *Agent) Tool(name string) (Tool, bool) {
	for _, t := range a.Tools {
		if strings.EqualFold(t.Name(), name) {
			return t, true
		}
	}
	return nil, false
}

// Execute works on a task until the model gives a final answer. contextText
// carries the output of earlier tasks and may be empty.
func (a *Agent) Execute(ctx context.Context, task *Task, contextText string) (string, error) {
	if a.LLM == nil {
		return "", fmt.Errorf("agent %q has no LLM", a.Role)
	}

	messages := []Message{
		{Role: RoleSystem, Content: a.systemPrompt()},
		{Role: RoleUser, Content: taskPrompt(task, contextText)},
	}

	if len(a.Tools) == 0 {
		reply, err := a.LLM.Chat(ctx, messages)
		if err != nil {
			return "", fmt.Errorf("agent %q: %w", a.Role, err)
		}
		return parseStep(reply).finalOrRaw(reply), nil
	}

	maxIter := a.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	for i := 0; i < maxIter; i++ {
		reply, err := a.LLM.Chat(ctx, messages)
		if err != nil {
			return "", fmt.Errorf("agent %q: %w", a.Role, err)
		}

		s := parseStep(reply)
		if s.IsFinal {
			a.trace("final answer after %d tool call(s)", i)
			return s.Final, nil
		}

		observation, err := a.observe(ctx, s)
		if err != nil {
			return "", fmt.Errorf("agent %q: %w", a.Role, err)
		}
		a.trace("action=%s input=%s observation=%d chars", s.Action, string(s.Input), len(observation))

		messages = append(messages,
			Message{Role: RoleAssistant, Content: strings.TrimSpace(truncateAtObservation(reply))},
			Message{Role: RoleUser, Content: observationMarker + " " + observation},
		)
	}

	messages = append(messages, Message{
		Role:    RoleUser,
		Content: "You have reached the maximum number of tool uses. Do not use any more tools. Give your best " + finalAnswerMarker + " now using what you have gathered.",
	})

	reply, err := a.LLM.Chat(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("agent %q: %w", a.Role, err)
	}
	a.trace("forced final answer after %d tool call(s)", maxIter)

	return parseStep(reply).finalOrRaw(reply), nil
}

func (a *Agent) observe(ctx context.Context, s step) (string, error) {
	tool, ok := a.Tool(s.Action)
	if !ok {
		return fmt.Sprintf("Error: %q is not a valid tool. Use one of [%s].", s.Action, strings.Join(a.toolNames(), ", ")), nil
	}
	if s.InputErr != nil {
		return fmt.Sprintf("Error: %v.", s.InputErr), nil
	}
	return invoke(ctx, tool, s.Input)
}

func (a *Agent) trace(format string, v ...interface{}) {
	if a.Verbose {
		logging.Debug("[agent %s] "+format, append([]interface{}{a.Role}, v...)...)
	}
}

func (a *Agent) toolNames() []string {
	names := make([]string, len(a.Tools))
	for i, t := range a.Tools {
		names[i] = t.Name()
	}
	return names
}

func (a *Agent) systemPrompt() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are %s. %s\nYour personal goal is: %s\n", a.Role, a.Backstory, a.Goal)

	if len(a.Tools) == 0 {
		sb.WriteString("\nAnswer directly. Start your reply with \"" + finalAnswerMarker + "\" followed by your complete answer.")
		return sb.String()
	}

	sb.WriteString("\nYou ONLY have access to the following tools:\n")
	for _, t := range a.Tools {
		fmt.Fprintf(&sb, "- %s: %s\n", t.Name(), t.Description())
		if schema := t.Schema(); len(schema) > 0 {
			fmt.Fprintf(&sb, "  Arguments JSON schema: %s\n", compactJSON(schema))
		}
	}

	sb.WriteString(`
To use a tool, reply in exactly this format and then stop:

Thought: what you need to find out
Action: the tool name, one of [` + strings.Join(a.toolNames(), ", ") + `]
Action Input: a JSON object matching the tool's arguments schema

You will then receive an Observation with the result. Once you know the answer, reply:

Thought: I now know the final answer
Final Answer: the complete answer to the task`)

	return sb.String()
}

func taskPrompt(task *Task, contextText string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Current Task: %s\n\n", strings.TrimSpace(task.Description))
	fmt.Fprintf(&sb, "This is the expected criteria for your final answer: %s\n", strings.TrimSpace(task.ExpectedOutput))
	if strings.TrimSpace(contextText) != "" {
		fmt.Fprintf(&sb, "\nThis is the context you're working with:\n%s\n", contextText)
	}
	sb.WriteString("\nBegin!")
	return sb.String()
}

func compactJSON(raw []byte) string {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return string(raw)
	}
	return string(out)
}

func (s step) finalOrRaw(reply string) string {
	if s.IsFinal {
		return s.Final
	}
	return strings.TrimSpace(reply)
}

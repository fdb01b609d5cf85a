package crew

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTask() *Task {
	return &Task{Name: "t", Description: "Find facts about go", ExpectedOutput: "a list of facts"}
}

func TestAgentWithoutToolsAnswersInOneCall(t *testing.T) {
	llm := &scriptedLLM{replies: []string{"Final Answer: done"}}
	agent := NewAgent(AgentConfig{Role: "Writer", Goal: "write", Backstory: "writes"}, llm)

	out, err := agent.Execute(context.Background(), testTask(), "prior context")
	require.NoError(t, err)

	assert.Equal(t, "done", out)
	require.Len(t, llm.calls, 1)
	assert.Contains(t, llm.calls[0][0].Content, "You are Writer.")
	assert.NotContains(t, llm.calls[0][0].Content, "Action Input")
	assert.Contains(t, llm.calls[0][1].Content, "prior context")
}

func TestAgentToolLoop(t *testing.T) {
	tool := &echoTool{name: "web_search"}
	llm := &scriptedLLM{replies: []string{
		"Thought: look it up\nAction: web_search\nAction Input: {\"query\": \"go 1.22\"}",
		"Thought: I now know the final answer\nFinal Answer: loopvar semantics changed",
	}}
	agent := NewAgent(AgentConfig{Role: "Retriever", Goal: "g", Backstory: "b"}, llm, tool)

	out, err := agent.Execute(context.Background(), testTask(), "")
	require.NoError(t, err)

	assert.Equal(t, "loopvar semantics changed", out)
	assert.Equal(t, []string{"go 1.22"}, tool.runs)
	require.Len(t, llm.calls, 2)

	second := llm.calls[1]
	last := second[len(second)-1]
	assert.Equal(t, RoleUser, last.Role)
	assert.Equal(t, "Observation: result for go 1.22", last.Content)
	assert.Contains(t, second[0].Content, "web_search: echoes the query")
}

func TestAgentRecoversFromBadToolUse(t *testing.T) {
	tool := &echoTool{name: "web_search"}
	llm := &scriptedLLM{replies: []string{
		"Action: calculator\nAction Input: {\"x\": 1}",
		"Action: web_search\nAction Input: {\"query\": \"\"}",
		"Final Answer: gave up",
	}}
	agent := NewAgent(AgentConfig{Role: "R", Goal: "g", Backstory: "b"}, llm, tool)

	out, err := agent.Execute(context.Background(), testTask(), "")
	require.NoError(t, err)
	assert.Equal(t, "gave up", out)
	assert.Empty(t, tool.runs)

	obs1 := llm.calls[1][len(llm.calls[1])-1].Content
	assert.Contains(t, obs1, `"calculator" is not a valid tool`)
	obs2 := llm.calls[2][len(llm.calls[2])-1].Content
	assert.Contains(t, obs2, "invalid arguments")
}

func TestAgentToolFailureBecomesObservation(t *testing.T) {
	tool := &echoTool{name: "web_search", fail: errors.New("rate limited")}
	llm := &scriptedLLM{replies: []string{
		"Action: web_search\nAction Input: {\"query\": \"a\"}",
		"Final Answer: no web today",
	}}
	agent := NewAgent(AgentConfig{Role: "R", Goal: "g", Backstory: "b"}, llm, tool)

	out, err := agent.Execute(context.Background(), testTask(), "")
	require.NoError(t, err)
	assert.Equal(t, "no web today", out)
	assert.Contains(t, llm.calls[1][len(llm.calls[1])-1].Content, "rate limited")
}

func TestAgentForcedAnswerAfterMaxIterations(t *testing.T) {
	tool := &echoTool{name: "web_search"}
	action := "Action: web_search\nAction Input: {\"query\": \"again\"}"
	llm := &scriptedLLM{replies: []string{action, action, "Final Answer: forced"}}
	agent := NewAgent(AgentConfig{Role: "R", Goal: "g", Backstory: "b"}, llm, tool)
	agent.MaxIterations = 2

	out, err := agent.Execute(context.Background(), testTask(), "")
	require.NoError(t, err)

	assert.Equal(t, "forced", out)
	assert.Len(t, tool.runs, 2)
	require.Len(t, llm.calls, 3)
	last := llm.calls[2][len(llm.calls[2])-1]
	assert.True(t, strings.Contains(last.Content, "maximum number of tool uses"))
}

func TestAgentPropagatesLLMError(t *testing.T) {
	llm := &scriptedLLM{err: errors.New("connection refused")}
	agent := NewAgent(AgentConfig{Role: "R", Goal: "g", Backstory: "b"}, llm, &echoTool{name: "web_search"})

	_, err := agent.Execute(context.Background(), testTask(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestValidateArgs(t *testing.T) {
	schema := (&echoTool{}).Schema()

	assert.NoError(t, ValidateArgs(schema, []byte(`{"query":"ok"}`)))
	assert.Error(t, ValidateArgs(schema, []byte(`{"q":"missing"}`)))
	assert.Error(t, ValidateArgs(schema, []byte(`{not json}`)))
	assert.NoError(t, ValidateArgs(nil, []byte(`[1,2]`)))
}

func TestAgentIgnoresActionSuffixInProse(t *testing.T) {
	tool := &echoTool{name: "web_search"}
	llm := &scriptedLLM{replies: []string{"Thought: the interaction: done\nFinal Answer: 42"}}
	agent := NewAgent(AgentConfig{Role: "R", Goal: "g", Backstory: "b"}, llm, tool)

	out, err := agent.Execute(context.Background(), testTask(), "")
	require.NoError(t, err)

	assert.Equal(t, "42", out)
	assert.Len(t, llm.calls, 1)
	assert.Empty(t, tool.runs)
}

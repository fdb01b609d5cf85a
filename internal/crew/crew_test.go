package crew

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKickoffRunsTasksSequentially(t *testing.T) {
	retrieverLLM := &scriptedLLM{replies: []string{"Final Answer: facts about rust"}}
	writerLLM := &scriptedLLM{replies: []string{"Final Answer: Rust is a language."}}

	retriever := NewAgent(AgentConfig{Role: "Retriever", Goal: "g", Backstory: "b"}, retrieverLLM)
	writer := NewAgent(AgentConfig{Role: "Writer", Goal: "g", Backstory: "b"}, writerLLM)

	retrieval := NewTask("retrieval_task", TaskConfig{Description: "Retrieve info for {query}", ExpectedOutput: "facts"}, retriever)
	response := NewTask("response_task", TaskConfig{Description: "Answer {query} from {missing}", ExpectedOutput: "answer"}, writer)

	c, err := New([]*Agent{retriever, writer}, []*Task{retrieval, response}, Sequential)
	require.NoError(t, err)

	out, err := c.Kickoff(context.Background(), map[string]string{"query": "what is rust"})
	require.NoError(t, err)

	assert.Equal(t, "Rust is a language.", out.Raw)
	require.Len(t, out.Tasks, 2)
	assert.Equal(t, "retrieval_task", out.Tasks[0].Name)
	assert.Equal(t, "Retriever", out.Tasks[0].Agent)

	assert.Contains(t, retrieverLLM.calls[0][1].Content, "Retrieve info for what is rust")
	writerPrompt := writerLLM.calls[0][1].Content
	assert.Contains(t, writerPrompt, "Answer what is rust from {missing}")
	assert.Contains(t, writerPrompt, "facts about rust")

	// templates are not mutated by kickoff
	assert.Equal(t, "Retrieve info for {query}", retrieval.Description)
}

func TestKickoffStopsOnFirstError(t *testing.T) {
	failing := NewAgent(AgentConfig{Role: "A", Goal: "g", Backstory: "b"}, &scriptedLLM{err: errors.New("boom")})
	never := &scriptedLLM{}
	second := NewAgent(AgentConfig{Role: "B", Goal: "g", Backstory: "b"}, never)

	c, err := New([]*Agent{failing, second}, []*Task{
		NewTask("one", TaskConfig{Description: "d", ExpectedOutput: "e"}, failing),
		NewTask("two", TaskConfig{Description: "d", ExpectedOutput: "e"}, second),
	}, Sequential)
	require.NoError(t, err)

	_, err = c.Kickoff(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "task one")
	assert.Empty(t, never.calls)
}

func TestNewRejectsForeignAgent(t *testing.T) {
	inCrew := NewAgent(AgentConfig{Role: "A"}, &scriptedLLM{})
	outside := NewAgent(AgentConfig{Role: "B"}, &scriptedLLM{})

	_, err := New([]*Agent{inCrew}, []*Task{{Name: "t", Agent: outside}}, Sequential)
	assert.Error(t, err)

	_, err = New([]*Agent{inCrew}, nil, Sequential)
	assert.Error(t, err)
}

func TestLoadAgentsAndTasks(t *testing.T) {
	dir := t.TempDir()
	agentsPath := filepath.Join(dir, "agents.yaml")
	tasksPath := filepath.Join(dir, "tasks.yaml")

	require.NoError(t, os.WriteFile(agentsPath, []byte(`
retriever_agent:
  role: Retriever for {query}
  goal: Find things
  backstory: Seasoned researcher
`), 0644))
	require.NoError(t, os.WriteFile(tasksPath, []byte(`
retrieval_task:
  description: Look up {query}
  expected_output: Facts
  agent: retriever_agent
`), 0644))

	agents, err := LoadAgents(agentsPath)
	require.NoError(t, err)
	assert.Equal(t, "Find things", agents["retriever_agent"].Goal)

	tasks, err := LoadTasks(tasksPath)
	require.NoError(t, err)
	assert.Equal(t, "retriever_agent", tasks["retrieval_task"].Agent)
}

func TestLoadDescriptorErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadAgents(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("retriever_agent: [oops"), 0644))
	_, err = LoadAgents(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")

	incomplete := filepath.Join(dir, "incomplete.yaml")
	require.NoError(t, os.WriteFile(incomplete, []byte("retrieval_task:\n  description: only this\n"), 0644))
	_, err = LoadTasks(incomplete)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expectedoutput is required")
}

func TestShippedConfigFilesLoad(t *testing.T) {
	agents, err := LoadAgents(filepath.Join("..", "..", "config", "agents.yaml"))
	require.NoError(t, err)
	assert.Contains(t, agents, "retriever_agent")
	assert.Contains(t, agents, "response_synthesizer_agent")

	tasks, err := LoadTasks(filepath.Join("..", "..", "config", "tasks.yaml"))
	require.NoError(t, err)
	assert.Contains(t, tasks, "retrieval_task")
	assert.Contains(t, tasks, "response_task")
}

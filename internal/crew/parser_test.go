package crew

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStep(t *testing.T) {
	tests := []struct {
		name       string
		reply      string
		wantFinal  bool
		wantAnswer string
		wantAction string
		wantInput  string
		wantErr    bool
	}{
		{
			name:       "final answer",
			reply:      "Thought: I know it\nFinal Answer: Paris is the capital.",
			wantFinal:  true,
			wantAnswer: "Paris is the capital.",
		},
		{
			name:       "plain text is final",
			reply:      "  Just an answer.  ",
			wantFinal:  true,
			wantAnswer: "Just an answer.",
		},
		{
			name:       "action with json input",
			reply:      "Thought: search\nAction: web_search\nAction Input: {\"query\": \"go generics\"}",
			wantAction: "web_search",
			wantInput:  `{"query": "go generics"}`,
		},
		{
			name:       "action input in code fence",
			reply:      "Action: `document_search`\nAction Input: ```json\n{\"query\": \"revenue\"}\n```",
			wantAction: "document_search",
			wantInput:  `{"query": "revenue"}`,
		},
		{
			name:       "hallucinated observation is dropped",
			reply:      "Action: web_search\nAction Input: {\"query\": \"x\"}\nObservation: made up\nFinal Answer: made up",
			wantAction: "web_search",
			wantInput:  `{"query": "x"}`,
		},
		{
			name:       "trailing comma and single quotes repaired",
			reply:      "Action: web_search\nAction Input: {'query': 'x',}",
			wantAction: "web_search",
			wantInput:  `{"query": "x"}`,
		},
		{
			name:       "missing input",
			reply:      "Action: web_search",
			wantAction: "web_search",
			wantErr:    true,
		},
		{
			name:       "non json input",
			reply:      "Action: web_search\nAction Input: go generics",
			wantAction: "web_search",
			wantErr:    true,
		},
		{
			name:       "word ending in action inside a thought",
			reply:      "Thought: I reviewed the transaction: it looks complete\nFinal Answer: the fee is 3%",
			wantFinal:  true,
			wantAnswer: "the fee is 3%",
		},
		{
			name:       "interaction inside a thought",
			reply:      "Thought: the interaction: done\nFinal Answer: 42",
			wantFinal:  true,
			wantAnswer: "42",
		},
		{
			name:       "indented action line",
			reply:      "Thought: the extraction: failed, search instead\n  Action: web_search\n  Action Input: {\"query\": \"x\"}",
			wantAction: "web_search",
			wantInput:  `{"query": "x"}`,
		},
		{
			name:       "action mentioned after final answer",
			reply:      "Final Answer: The next Action: is up to you.",
			wantFinal:  true,
			wantAnswer: "The next Action: is up to you.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := parseStep(tt.reply)
			assert.Equal(t, tt.wantFinal, s.IsFinal)
			if tt.wantFinal {
				assert.Equal(t, tt.wantAnswer, s.Final)
				return
			}
			assert.Equal(t, tt.wantAction, s.Action)
			if tt.wantErr {
				assert.Error(t, s.InputErr)
				return
			}
			assert.NoError(t, s.InputErr)
			assert.JSONEq(t, tt.wantInput, string(s.Input))
		})
	}
}

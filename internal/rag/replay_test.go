package rag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReplay(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "empty", text: "", want: nil},
		{name: "single line", text: "hello", want: []string{"hello"}},
		{
			name: "lines accumulate",
			text: "# Title\n\n- one\n- two",
			want: []string{"# Title", "# Title\n", "# Title\n\n- one", "# Title\n\n- one\n- two"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Replay(tt.text)
			assert.Equal(t, tt.want, got)
			if len(got) > 0 {
				assert.Equal(t, tt.text, got[len(got)-1])
			}
		})
	}
}

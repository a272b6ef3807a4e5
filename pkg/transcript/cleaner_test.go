package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "drops bracketed stage directions",
			input: "[Music] hey everyone [Applause] welcome back",
			want:  "hey everyone welcome back",
		},
		{
			name:  "drops parenthesized sound cues",
			input: "so (laughs) that was fun (Music playing) anyway ♪♪",
			want:  "so that was fun anyway",
		},
		{
			name:  "collapses whitespace",
			input: "  lots\n\nof \t space  ",
			want:  "lots of space",
		},
		{
			name:  "removes immediate phrase repeats",
			input: "so today we so today we are going to talk about bread",
			want:  "so today we are going to talk about bread",
		},
		{
			name:  "repeat check ignores case and punctuation",
			input: "Welcome back. welcome back to the kitchen",
			want:  "Welcome back. to the kitchen",
		},
		{
			name:  "keeps single repeated words",
			input: "I know that that is true",
			want:  "I know that that is true",
		},
		{
			name:  "collapses repeated chains",
			input: "make sure you make sure you make sure you subscribe",
			want:  "make sure you subscribe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.input))
		})
	}
}

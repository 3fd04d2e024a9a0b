package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "collapses spaces", input: "a   b    c", expected: "a b c"},
		{name: "collapses tabs and newlines", input: "a\t\tb\nc", expected: "a b c"},
		{name: "trims", input: "   hello   ", expected: "hello"},
		{name: "empty", input: "", expected: ""},
		{name: "only whitespace", input: " \t \n ", expected: ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Normalize(tc.input))
		})
	}
}

func TestLooseEquals(t *testing.T) {
	assert.True(t, LooseEquals("Question", "question"))
	assert.True(t, LooseEquals("  ANSWER  key ", "answer key"))
	assert.True(t, LooseEquals("a\tb", "A B"))
	assert.False(t, LooseEquals("question", "questions"))
	assert.True(t, LooseEquals("", "  "))
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("abc", "abc"))
	assert.Equal(t, 1.0, Similarity("ABC", " abc "))
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 0.0, Similarity("abc", "xyz"))

	// One substitution out of nine characters.
	got := Similarity("answerkey", "anserkeyy")
	assert.Greater(t, got, 0.7)
	assert.Less(t, got, 1.0)

	// Symmetric.
	assert.Equal(t, Similarity("2003_openexam", "2010_openexam"), Similarity("2010_openexam", "2003_openexam"))
}

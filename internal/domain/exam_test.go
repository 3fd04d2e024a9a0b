package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validQuestion() Question {
	return Question{
		Number: 1,
		Stem:   "What color is the sky?",
		Choices: []Choice{
			{Label: "A", Text: "Blue"},
			{Label: "B", Text: "Green"},
		},
	}
}

func TestQuestionValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		q := validQuestion()
		assert.NoError(t, q.Validate())
	})

	t.Run("empty stem", func(t *testing.T) {
		q := validQuestion()
		q.Stem = "   "
		assert.Error(t, q.Validate())
	})

	t.Run("too few choices", func(t *testing.T) {
		q := validQuestion()
		q.Choices = q.Choices[:1]
		assert.Error(t, q.Validate())
	})

	t.Run("too many choices", func(t *testing.T) {
		q := validQuestion()
		q.Choices = []Choice{
			{Label: "A", Text: "a"}, {Label: "B", Text: "b"}, {Label: "C", Text: "c"},
			{Label: "D", Text: "d"}, {Label: "E", Text: "e"},
		}
		assert.NoError(t, q.Validate())
		q.Choices = append(q.Choices, Choice{Label: "F", Text: "f"})
		assert.Error(t, q.Validate())
	})

	t.Run("duplicate labels", func(t *testing.T) {
		q := validQuestion()
		q.Choices = []Choice{{Label: "A", Text: "a"}, {Label: "A", Text: "b"}}
		assert.Error(t, q.Validate())
	})

	t.Run("descending labels", func(t *testing.T) {
		q := validQuestion()
		q.Choices = []Choice{{Label: "B", Text: "b"}, {Label: "A", Text: "a"}}
		assert.Error(t, q.Validate())
	})

	t.Run("invalid label", func(t *testing.T) {
		q := validQuestion()
		q.Choices = []Choice{{Label: "A", Text: "a"}, {Label: "X", Text: "x"}}
		assert.Error(t, q.Validate())
	})

	t.Run("non-positive number", func(t *testing.T) {
		q := validQuestion()
		q.Number = 0
		assert.Error(t, q.Validate())
	})
}

func TestAnswerKeyAdd(t *testing.T) {
	t.Run("valid entries in order", func(t *testing.T) {
		key := NewAnswerKey()
		added, err := key.Add(1, "a")
		require.NoError(t, err)
		assert.True(t, added)
		added, err = key.Add(2, " C ")
		require.NoError(t, err)
		assert.True(t, added)

		assert.Equal(t, 2, key.Len())
		entry, ok := key.Get(1)
		require.True(t, ok)
		assert.Equal(t, "A", entry.Answer)
		assert.Equal(t, []int{1, 2}, key.Numbers())
	})

	t.Run("first valid occurrence wins", func(t *testing.T) {
		key := NewAnswerKey()
		_, err := key.Add(1, "A")
		require.NoError(t, err)
		added, err := key.Add(1, "B")
		require.NoError(t, err)
		assert.False(t, added)

		entry, _ := key.Get(1)
		assert.Equal(t, "A", entry.Answer)
	})

	t.Run("out of range letter rejected", func(t *testing.T) {
		key := NewAnswerKey()
		_, err := key.Add(1, "F")
		require.Error(t, err)

		var domainErr *DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, ErrInvalidAnswerValue, domainErr.Code)
		assert.Equal(t, 0, key.Len())
	})

	t.Run("multi character answer rejected", func(t *testing.T) {
		key := NewAnswerKey()
		_, err := key.Add(1, "AB")
		assert.Error(t, err)
	})

	t.Run("non-positive number rejected", func(t *testing.T) {
		key := NewAnswerKey()
		_, err := key.Add(0, "A")
		assert.Error(t, err)
	})
}

func TestAnswerKeyEntries(t *testing.T) {
	key := NewAnswerKey()
	_, _ = key.Add(3, "C")
	_, _ = key.Add(1, "A")

	entries := key.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, AnswerKeyEntry{QuestionNumber: 3, Answer: "C"}, entries[0])
	assert.Equal(t, AnswerKeyEntry{QuestionNumber: 1, Answer: "A"}, entries[1])
}

func TestIsChoiceLabel(t *testing.T) {
	for _, label := range []string{"A", "B", "C", "D", "E"} {
		assert.True(t, IsChoiceLabel(label))
	}
	for _, label := range []string{"F", "a", "", "AB", "1"} {
		assert.False(t, IsChoiceLabel(label), "label %q", label)
	}
}

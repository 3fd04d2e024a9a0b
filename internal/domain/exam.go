package domain

import (
	"fmt"
	"strings"
)

// ValidationError represents a validation error
type ValidationError struct {
	message string
}

func (e *ValidationError) Error() string {
	return e.message
}

func NewValidationError(message string) error {
	return &ValidationError{message: message}
}

// ChoiceLabels is the set of labels a choice may carry, in order.
const ChoiceLabels = "ABCDE"

// IsChoiceLabel reports whether s is a single valid choice label A-E.
func IsChoiceLabel(s string) bool {
	return len(s) == 1 && strings.Contains(ChoiceLabels, s)
}

// Choice represents a single labeled answer choice of a question
type Choice struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Question represents one multiple-choice question extracted from a test document
type Question struct {
	Number  int      `json:"number"`
	Stem    string   `json:"stem"`
	Choices []Choice `json:"choices"`
}

// Validate validates the question invariants: non-empty stem, 2-5 choices
// with unique labels drawn from A-E in ascending order.
func (q *Question) Validate() error {
	if q.Number < 1 {
		return NewValidationError(fmt.Sprintf("question number must be positive, got %d", q.Number))
	}
	if strings.TrimSpace(q.Stem) == "" {
		return NewValidationError(fmt.Sprintf("question %d has an empty stem", q.Number))
	}
	if len(q.Choices) < 2 || len(q.Choices) > 5 {
		return NewValidationError(fmt.Sprintf("question %d has %d choices, want 2-5", q.Number, len(q.Choices)))
	}
	prev := -1
	for _, c := range q.Choices {
		if !IsChoiceLabel(c.Label) {
			return NewValidationError(fmt.Sprintf("question %d has invalid choice label %q", q.Number, c.Label))
		}
		idx := strings.Index(ChoiceLabels, c.Label)
		if idx <= prev {
			return NewValidationError(fmt.Sprintf("question %d choice labels are not unique ascending", q.Number))
		}
		prev = idx
		if strings.TrimSpace(c.Text) == "" {
			return NewValidationError(fmt.Sprintf("question %d choice %s has empty text", q.Number, c.Label))
		}
	}
	return nil
}

// AnswerKeyEntry maps a question number to its correct answer letter
type AnswerKeyEntry struct {
	QuestionNumber int    `json:"question_number"`
	Answer         string `json:"answer"`
}

// AnswerKey is a collection of answer key entries built incrementally while
// scanning a source document. The first valid entry for a question number
// wins; later duplicates are ignored so garbled or repeated rows cannot
// overwrite a validated answer.
type AnswerKey struct {
	entries map[int]AnswerKeyEntry
	order   []int
}

// NewAnswerKey creates an empty AnswerKey
func NewAnswerKey() *AnswerKey {
	return &AnswerKey{entries: make(map[int]AnswerKeyEntry)}
}

// Add records an answer for a question number. It returns an error if the
// number is not positive or the answer is not exactly one of A-E; out of
// range answers are rejected, never coerced. Adding a number that is already
// present is a no-op and reports false.
func (k *AnswerKey) Add(number int, answer string) (bool, error) {
	if number < 1 {
		return false, NewInvalidInputError(fmt.Sprintf("question number must be positive, got %d", number))
	}
	answer = strings.ToUpper(strings.TrimSpace(answer))
	if !IsChoiceLabel(answer) {
		return false, NewInvalidAnswerValueError(answer)
	}
	if _, exists := k.entries[number]; exists {
		return false, nil
	}
	k.entries[number] = AnswerKeyEntry{QuestionNumber: number, Answer: answer}
	k.order = append(k.order, number)
	return true, nil
}

// Get returns the entry for a question number, if present
func (k *AnswerKey) Get(number int) (AnswerKeyEntry, bool) {
	e, ok := k.entries[number]
	return e, ok
}

// Len returns the number of entries in the key
func (k *AnswerKey) Len() int {
	return len(k.entries)
}

// Numbers returns the question numbers in first-seen order
func (k *AnswerKey) Numbers() []int {
	out := make([]int, len(k.order))
	copy(out, k.order)
	return out
}

// Entries returns all entries in first-seen order
func (k *AnswerKey) Entries() []AnswerKeyEntry {
	out := make([]AnswerKeyEntry, 0, len(k.order))
	for _, n := range k.order {
		out = append(out, k.entries[n])
	}
	return out
}

// Submission maps question numbers to the user's chosen labels. A missing
// number means the question was left unanswered.
type Submission map[int]string

// IncorrectAnswer records one wrongly answered question in a score report
type IncorrectAnswer struct {
	QuestionNumber int    `json:"question_number"`
	UserAnswer     string `json:"user_answer"`
	CorrectAnswer  string `json:"correct_answer"`
}

// ScoreReport is the immutable outcome of scoring a submission against an
// answer key. Unscored lists questions that were present in the test but
// absent from the key; they are excluded from the percentage denominator.
type ScoreReport struct {
	AttemptID      string            `json:"attempt_id"`
	TotalQuestions int               `json:"total_questions"`
	CorrectCount   int               `json:"correct_count"`
	Incorrect      []IncorrectAnswer `json:"incorrect"`
	Unanswered     []int             `json:"unanswered"`
	Unscored       []int             `json:"unscored"`
	Percentage     float64           `json:"percentage"`
}

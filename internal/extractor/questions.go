// Package extractor turns line-oriented exam text and tabular answer-key
// data into the structured domain model. It never reads PDF or spreadsheet
// binary formats itself; the adapters in internal/adapter supply lines and
// rows.
package extractor

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"exam-grader/internal/domain"
	"exam-grader/internal/logger"
	"exam-grader/internal/textutil"

	"go.uber.org/zap"
)

// DefaultMaxChoiceGapLines is how many consecutive unrecognized lines are
// still appended to the last choice before the rest of the block is treated
// as trailing noise.
const DefaultMaxChoiceGapLines = 3

var (
	questionRe = regexp.MustCompile(`^(?:[Qq]uestion\s+)?(\d+)[.):]\s*(.*)$`)
	choiceRe   = regexp.MustCompile(`^(?:\[\s*[Xx✓☑]?\s*\]\s*)?([A-E])[.)]\s*(.+)$`)
	// inlineChoiceRe locates "A. text" tokens embedded in a stem line,
	// optionally preceded by a checkbox marker.
	inlineChoiceRe = regexp.MustCompile(`(?:\[\s*[Xx✓☑]?\s*\]\s*)?\b([A-E])[.)]\s+`)
	checkboxRe     = regexp.MustCompile(`\[\s*[Xx✓☑]?\s*\]`)
	pageNumberRe   = regexp.MustCompile(`^(?i:page\s+)?\d+$`)
)

// Anomaly describes a recoverable irregularity found during extraction,
// such as a numbering regression or a question with too few choices.
type Anomaly struct {
	QuestionNumber int    `json:"question_number"`
	Reason         string `json:"reason"`
}

// QuestionResult holds the extracted questions plus every anomaly that was
// observed. Anomalies are reported, not fatal.
type QuestionResult struct {
	Questions []domain.Question `json:"questions"`
	Anomalies []Anomaly         `json:"anomalies,omitempty"`
}

// Options tunes the line-classification heuristics of the question
// extractor.
type Options struct {
	// MaxChoiceGapLines bounds how far choice text may wrap across
	// unrecognized lines. Zero means the default.
	MaxChoiceGapLines int
}

// QuestionExtractor parses a test document's text lines into questions.
type QuestionExtractor struct {
	opts Options
}

// NewQuestionExtractor creates an extractor with the given options.
func NewQuestionExtractor(opts Options) *QuestionExtractor {
	if opts.MaxChoiceGapLines <= 0 {
		opts.MaxChoiceGapLines = DefaultMaxChoiceGapLines
	}
	return &QuestionExtractor{opts: opts}
}

// ExtractQuestions parses lines with default options.
func ExtractQuestions(lines []string) (*QuestionResult, error) {
	return NewQuestionExtractor(Options{}).Extract(lines)
}

// accumulator carries the question currently being assembled while the
// extractor scans lines. choices preserves document order; seen guards
// against duplicate labels (first occurrence wins).
type accumulator struct {
	number   int
	stem     []string
	choices  []domain.Choice
	seen     map[string]bool
	gapLines int
}

func newAccumulator(number int, stem string) *accumulator {
	acc := &accumulator{number: number, seen: make(map[string]bool)}
	if stem != "" {
		acc.stem = append(acc.stem, stem)
	}
	return acc
}

func (a *accumulator) addChoice(label, text string) bool {
	if a.seen[label] {
		return false
	}
	a.seen[label] = true
	a.choices = append(a.choices, domain.Choice{Label: label, Text: text})
	return true
}

// Extract scans lines sequentially, classifying each as a new question, a
// choice, or a continuation of the current stem/choice, and emits validated
// questions sorted by number. A numbering regression or an unscorable
// question surfaces as an anomaly; only a document with zero valid
// questions is an error.
func (e *QuestionExtractor) Extract(lines []string) (*QuestionResult, error) {
	log := logger.Get()
	result := &QuestionResult{}
	var cur *accumulator
	lastNumber := 0

	emit := func() {
		if cur == nil {
			return
		}
		q, anomaly := e.finish(cur)
		if anomaly != nil {
			result.Anomalies = append(result.Anomalies, *anomaly)
			log.Warn("question dropped during extraction",
				zap.Int("question_number", anomaly.QuestionNumber),
				zap.String("reason", anomaly.Reason),
			)
			cur = nil
			return
		}
		result.Questions = append(result.Questions, *q)
		cur = nil
	}

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		// Standalone page numbers and page headers are layout noise.
		if pageNumberRe.MatchString(line) {
			continue
		}

		if m := questionRe.FindStringSubmatch(line); m != nil {
			number, err := strconv.Atoi(m[1])
			if err == nil && number > 0 {
				emit()
				if lastNumber != 0 && number <= lastNumber {
					result.Anomalies = append(result.Anomalies, Anomaly{
						QuestionNumber: number,
						Reason:         fmt.Sprintf("numbering regression: %d follows %d", number, lastNumber),
					})
					log.Warn("question numbering regression",
						zap.Int("question_number", number),
						zap.Int("previous_number", lastNumber),
					)
				}
				lastNumber = number
				cur = newAccumulator(number, "")
				e.consumeQuestionLine(cur, m[2])
				continue
			}
		}

		if cur == nil {
			// Prose before the first question (instructions, headers).
			continue
		}

		if m := choiceRe.FindStringSubmatch(line); m != nil {
			cur.gapLines = 0
			cur.addChoice(m[1], strings.TrimSpace(m[2]))
			continue
		}

		// Continuation line: stem if no choice started yet, otherwise
		// wrapped text of the last choice.
		if len(cur.choices) == 0 {
			cur.stem = append(cur.stem, line)
			continue
		}
		cur.gapLines++
		if cur.gapLines <= e.opts.MaxChoiceGapLines {
			last := &cur.choices[len(cur.choices)-1]
			last.Text = textutil.Normalize(last.Text + " " + line)
		}
	}
	emit()

	if len(result.Questions) == 0 {
		return result, domain.NewMalformedDocumentError("no questions found in document")
	}
	sort.SliceStable(result.Questions, func(i, j int) bool {
		return result.Questions[i].Number < result.Questions[j].Number
	})
	return result, nil
}

// consumeQuestionLine seeds the accumulator from the text that follows the
// question number. When the line carries two or more inline choice tokens
// the text before the first token becomes the stem and each token becomes a
// choice; otherwise the whole text starts the stem.
func (e *QuestionExtractor) consumeQuestionLine(acc *accumulator, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	marks := inlineChoiceRe.FindAllStringSubmatchIndex(text, -1)
	if len(marks) < 2 {
		acc.stem = append(acc.stem, text)
		return
	}
	if stem := strings.TrimSpace(text[:marks[0][0]]); stem != "" {
		acc.stem = append(acc.stem, stem)
	}
	for i, m := range marks {
		label := text[m[2]:m[3]]
		end := len(text)
		if i+1 < len(marks) {
			end = marks[i+1][0]
		}
		choiceText := strings.TrimSpace(text[m[1]:end])
		if choiceText != "" {
			acc.addChoice(label, choiceText)
		}
	}
}

// finish validates and converts an accumulator into a question, or reports
// why it cannot be scored.
func (e *QuestionExtractor) finish(acc *accumulator) (*domain.Question, *Anomaly) {
	if len(acc.choices) < 2 {
		return nil, &Anomaly{
			QuestionNumber: acc.number,
			Reason:         fmt.Sprintf("only %d choices detected, need at least 2", len(acc.choices)),
		}
	}
	stem := textutil.Normalize(checkboxRe.ReplaceAllString(strings.Join(acc.stem, " "), ""))
	choices := make([]domain.Choice, len(acc.choices))
	copy(choices, acc.choices)
	sort.SliceStable(choices, func(i, j int) bool {
		return choices[i].Label < choices[j].Label
	})
	q := &domain.Question{Number: acc.number, Stem: stem, Choices: choices}
	if err := q.Validate(); err != nil {
		return nil, &Anomaly{QuestionNumber: acc.number, Reason: err.Error()}
	}
	// Labels must form a consecutive run from A so submissions can refer to
	// every listed choice.
	for i, c := range choices {
		if c.Label != string(domain.ChoiceLabels[i]) {
			return nil, &Anomaly{
				QuestionNumber: acc.number,
				Reason:         fmt.Sprintf("choice labels are not consecutive from A: %s at position %d", c.Label, i),
			}
		}
	}
	return q, nil
}

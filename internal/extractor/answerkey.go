package extractor

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"exam-grader/internal/domain"
	"exam-grader/internal/logger"
	"exam-grader/internal/textutil"

	"go.uber.org/zap"
)

// Header aliases accepted for the tabular variant, checked via loose
// comparison so "Question", "questions" and "Q" all resolve the same column.
var (
	questionHeaderAliases = []string{"question", "questions", "q", "no", "number"}
	answerHeaderAliases   = []string{"answer", "answers", "key", "correct"}
)

var (
	standaloneAnswerRe = regexp.MustCompile(`^(\d+)[.):]?\s+([A-Za-z])[.)]?$`)
	compactAnswerRe    = regexp.MustCompile(`(\d+)[.)]\s*([A-Ea-e])\b`)
	labelledAnswerRes  = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^question\s+(\d+)\s*:?\s+([A-Ea-e])\b`),
		regexp.MustCompile(`(?i)^q\s*(\d+)\s*:?\s+([A-Ea-e])\b`),
		regexp.MustCompile(`(?i)^(\d+)[.)]\s*answer\s*:?\s+([A-Ea-e])\b`),
	}
	checkedAnswerRe  = regexp.MustCompile(`\[[Xx✓☑]\s*\]\s*([A-E])[.)]`)
	questionNumberRe = regexp.MustCompile(`^(\d+)[.):]`)
	markedChoiceRe   = regexp.MustCompile(`^([A-E])[.)]`)
)

// MarkedLine pairs a text line with a highlight state supplied by an
// external highlight-detection collaborator.
type MarkedLine struct {
	Text   string
	Marked bool
}

// KeyResult holds an extracted answer key plus diagnostics for every
// skipped row or line.
type KeyResult struct {
	Key       *domain.AnswerKey
	Anomalies []Anomaly
}

// ExtractAnswerKeyFromTable builds an answer key from tabular rows with a
// header row. Columns are selected by header alias; when no header matches,
// the first column is treated as the question number and the second as the
// answer. Rows that do not yield a positive question number and a single
// A-E letter are skipped with a diagnostic, never fatal.
func ExtractAnswerKeyFromTable(rows [][]string) (*KeyResult, error) {
	log := logger.Get()
	result := &KeyResult{Key: domain.NewAnswerKey()}
	if len(rows) == 0 {
		return result, domain.NewMalformedDocumentError("answer key table is empty")
	}

	numberCol, answerCol, headerMatched := locateColumns(rows[0])
	start := 0
	if headerMatched {
		start = 1
	}

	for i := start; i < len(rows); i++ {
		row := rows[i]
		if numberCol >= len(row) || answerCol >= len(row) {
			result.report(0, fmt.Sprintf("row %d has %d cells, need columns %d and %d", i+1, len(row), numberCol+1, answerCol+1))
			continue
		}
		number, err := parsePositiveInt(row[numberCol])
		if err != nil {
			result.report(0, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		added, err := result.Key.Add(number, row[answerCol])
		if err != nil {
			result.report(number, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		if !added {
			result.report(number, fmt.Sprintf("row %d: duplicate entry for question %d, first occurrence kept", i+1, number))
		}
	}

	if result.Key.Len() == 0 {
		return result, domain.NewMalformedDocumentError("no valid answer rows found in table")
	}
	log.Debug("answer key extracted from table",
		zap.Int("entries", result.Key.Len()),
		zap.Int("skipped", len(result.Anomalies)),
	)
	return result, nil
}

// ExtractAnswerKeyFromText builds an answer key from a key document's text
// lines, recognizing checkbox markers, labelled answers ("Question 4: D"),
// standalone pairs ("3) B", "3 B") and compact multi-pair lines
// ("1. A 2. B"). The first valid match per question number wins.
func ExtractAnswerKeyFromText(lines []string) (*KeyResult, error) {
	marked := make([]MarkedLine, len(lines))
	for i, l := range lines {
		marked[i] = MarkedLine{Text: l}
	}
	return ExtractAnswerKeyFromMarkedLines(marked)
}

// ExtractAnswerKeyFromMarkedLines is the text variant with per-line
// highlight state. A highlighted choice line counts as the answer of the
// nearest preceding question number, the way a filled checkbox does.
// Checkbox and highlight attribution runs over the whole document before
// the looser listing patterns, so a letter embedded in question prose
// ("5. A mammal is ...") cannot claim a number whose filled checkbox
// appears on a later line.
func ExtractAnswerKeyFromMarkedLines(lines []MarkedLine) (*KeyResult, error) {
	log := logger.Get()
	result := &KeyResult{Key: domain.NewAnswerKey()}

	// Pass 1: filled checkboxes and highlighted choice lines, attributed to
	// the nearest preceding question number.
	lastQuestion := 0
	for i, ml := range lines {
		line := strings.TrimSpace(ml.Text)
		if line == "" || isKeyHeaderLine(line) {
			continue
		}
		if m := questionNumberRe.FindStringSubmatch(line); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				lastQuestion = n
			}
		}

		if m := checkedAnswerRe.FindStringSubmatch(line); m != nil {
			if lastQuestion > 0 {
				result.add(lastQuestion, m[1], i+1)
			}
			continue
		}
		if ml.Marked && lastQuestion > 0 {
			if m := markedChoiceRe.FindStringSubmatch(line); m != nil {
				result.add(lastQuestion, m[1], i+1)
			}
		}
	}

	// Pass 2: labelled, standalone and compact listings. First-wins keeps
	// every answer the checkbox pass already recorded.
	for i, ml := range lines {
		line := strings.TrimSpace(ml.Text)
		if line == "" || isKeyHeaderLine(line) {
			continue
		}
		if matched := matchLabelled(line, result, i+1); matched {
			continue
		}
		if m := standaloneAnswerRe.FindStringSubmatch(line); m != nil {
			n, _ := strconv.Atoi(m[1])
			result.add(n, m[2], i+1)
			continue
		}
		// Compact lines can carry several pairs; very long lines are
		// almost certainly question prose, not a key listing.
		if len(line) <= 200 {
			for _, m := range compactAnswerRe.FindAllStringSubmatch(line, -1) {
				n, _ := strconv.Atoi(m[1])
				result.add(n, m[2], i+1)
			}
		}
	}

	if result.Key.Len() == 0 {
		return result, domain.NewMalformedDocumentError("no answers found in key document")
	}
	log.Debug("answer key extracted from text",
		zap.Int("entries", result.Key.Len()),
		zap.Int("skipped", len(result.Anomalies)),
	)
	return result, nil
}

func matchLabelled(line string, result *KeyResult, lineNo int) bool {
	for _, re := range labelledAnswerRes {
		if m := re.FindStringSubmatch(line); m != nil {
			n, _ := strconv.Atoi(m[1])
			result.add(n, m[2], lineNo)
			return true
		}
	}
	return false
}

func (r *KeyResult) add(number int, answer string, lineNo int) {
	if number < 1 {
		return
	}
	added, err := r.Key.Add(number, answer)
	if err != nil {
		r.report(number, fmt.Sprintf("line %d: %v", lineNo, err))
		return
	}
	_ = added // later occurrences are silently superseded by the first
}

func (r *KeyResult) report(number int, reason string) {
	r.Anomalies = append(r.Anomalies, Anomaly{QuestionNumber: number, Reason: reason})
	logger.Get().Warn("answer key entry skipped",
		zap.Int("question_number", number),
		zap.String("reason", reason),
	)
}

// locateColumns finds the question and answer columns by header alias.
// It reports whether a header row was recognized; when it was not, the
// positional fallback (column 1 = number, column 2 = answer) applies and
// the first row is treated as data.
func locateColumns(header []string) (numberCol, answerCol int, matched bool) {
	numberCol, answerCol = -1, -1
	for i, cell := range header {
		switch {
		case numberCol < 0 && matchesAnyAlias(cell, questionHeaderAliases):
			numberCol = i
		case answerCol < 0 && matchesAnyAlias(cell, answerHeaderAliases):
			answerCol = i
		}
	}
	if numberCol >= 0 && answerCol >= 0 {
		return numberCol, answerCol, true
	}
	return 0, 1, false
}

func matchesAnyAlias(cell string, aliases []string) bool {
	for _, alias := range aliases {
		if textutil.LooseEquals(cell, alias) {
			return true
		}
	}
	return false
}

func isKeyHeaderLine(line string) bool {
	switch strings.ToLower(textutil.Normalize(line)) {
	case "questions answers", "answers", "answer key", "key":
		return true
	}
	return false
}

// parsePositiveInt parses a positive integer cell value, accepting integral
// floats such as "3.0" the way spreadsheet readers render numeric cells.
func parsePositiveInt(cell string) (int, error) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, errors.New("empty question number cell")
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 {
			return 0, fmt.Errorf("question number must be positive, got %d", n)
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) || int(f) < 1 {
		return 0, fmt.Errorf("question number cell %q is not a positive integer", cell)
	}
	return int(f), nil
}

// Package scoring computes a score breakdown for a submission against an
// extracted answer key. Score is a pure function: the same questions, key
// and submission always produce an identical report.
package scoring

import (
	"math"
	"strings"

	"exam-grader/internal/domain"
	"exam-grader/internal/logger"

	"go.uber.org/zap"
)

// Score walks the questions in order and classifies each as correct,
// incorrect, unanswered, or unscored. A question absent from the key is
// unscored: it is excluded from the percentage denominator and surfaced in
// the report rather than counted wrong. The percentage is rounded to one
// decimal place; a zero denominator yields 0 with a diagnostic, not a
// division fault.
func Score(questions []domain.Question, key *domain.AnswerKey, submission domain.Submission) *domain.ScoreReport {
	report := &domain.ScoreReport{
		TotalQuestions: len(questions),
		Incorrect:      []domain.IncorrectAnswer{},
		Unanswered:     []int{},
		Unscored:       []int{},
	}

	for _, q := range questions {
		entry, ok := key.Get(q.Number)
		if !ok {
			report.Unscored = append(report.Unscored, q.Number)
			continue
		}
		user, answered := submission[q.Number]
		userLetter := strings.ToUpper(strings.TrimSpace(user))
		if !answered || userLetter == "" {
			report.Unanswered = append(report.Unanswered, q.Number)
			continue
		}
		if userLetter == entry.Answer {
			report.CorrectCount++
			continue
		}
		report.Incorrect = append(report.Incorrect, domain.IncorrectAnswer{
			QuestionNumber: q.Number,
			UserAnswer:     userLetter,
			CorrectAnswer:  entry.Answer,
		})
	}

	denominator := report.TotalQuestions - len(report.Unscored)
	if denominator <= 0 {
		logger.Get().Warn("no scorable questions, reporting zero percentage",
			zap.Int("total_questions", report.TotalQuestions),
			zap.Int("unscored", len(report.Unscored)),
		)
		return report
	}
	pct := float64(report.CorrectCount) / float64(denominator) * 100
	report.Percentage = math.Round(pct*10) / 10
	return report
}

package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"exam-grader/internal/adapter/pdftext"
	"exam-grader/internal/adapter/tablereader"
	"exam-grader/internal/cache"
	"exam-grader/internal/config"
	"exam-grader/internal/domain"
	"exam-grader/internal/dto"
	"exam-grader/internal/extractor"
	"exam-grader/internal/logger"
	"exam-grader/internal/matcher"
	"exam-grader/internal/scoring"
	"exam-grader/internal/util"

	"go.uber.org/zap"
)

// keyExtPrecedence orders key file formats when one test name matches
// several files: spreadsheets carry cleaner keys than PDFs.
var keyExtPrecedence = map[string]int{
	".xlsx": 0,
	".xls":  1,
	".pdf":  2,
	".txt":  3,
}

// ExamService exposes the extraction-and-scoring pipeline to the serving
// layer.
type ExamService interface {
	ListTests(ctx context.Context) (*dto.TestListResponse, error)
	GetTest(ctx context.Context, name string) (*dto.TestResponse, error)
	Submit(ctx context.Context, name string, answers domain.Submission) (*dto.ScoreResponse, error)
}

// examService implements ExamService
type examService struct {
	cfg     *config.Config
	lines   pdftext.LineSource
	rows    tablereader.RowSource
	cache   domain.Cache
	matcher *matcher.Matcher
}

// NewExamService creates a new instance of examService
func NewExamService(
	cfg *config.Config,
	lines pdftext.LineSource,
	rows tablereader.RowSource,
	cacheAdapter domain.Cache,
	m *matcher.Matcher,
) ExamService {
	return &examService{
		cfg:     cfg,
		lines:   lines,
		rows:    rows,
		cache:   cacheAdapter,
		matcher: m,
	}
}

// ListTests scans the configured test directory for PDF documents. The
// scan is read-only and idempotent, safe to repeat per request.
func (s *examService) ListTests(ctx context.Context) (*dto.TestListResponse, error) {
	entries, err := os.ReadDir(s.cfg.Dirs.Tests)
	if err != nil {
		return nil, domain.NewInternalError("Failed to read test directory", err)
	}
	resp := &dto.TestListResponse{Tests: []dto.TestSummary{}}
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		base := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		resp.Tests = append(resp.Tests, dto.TestSummary{Name: base, File: entry.Name()})
	}
	sort.Slice(resp.Tests, func(i, j int) bool { return resp.Tests[i].Name < resp.Tests[j].Name })
	return resp, nil
}

// GetTest extracts the questions of a test document, serving from the
// content-hash keyed cache when possible.
func (s *examService) GetTest(ctx context.Context, name string) (*dto.TestResponse, error) {
	result, err := s.extractQuestions(ctx, name)
	if err != nil {
		return nil, err
	}
	return toTestResponse(name, result), nil
}

// Submit matches the test with its answer key, extracts both models and
// scores the submission. Questions without a key entry are excluded from
// the denominator and surfaced as unscored rather than counted wrong.
func (s *examService) Submit(ctx context.Context, name string, answers domain.Submission) (*dto.ScoreResponse, error) {
	result, err := s.extractQuestions(ctx, name)
	if err != nil {
		return nil, err
	}

	keyPath, err := s.findKeyFile(name)
	if err != nil {
		return nil, err
	}
	keyResult, err := s.extractKey(ctx, keyPath)
	if err != nil {
		return nil, err
	}

	report := scoring.Score(result.Questions, keyResult.Key, answers)
	report.AttemptID = util.NewULID()

	for _, n := range report.Unscored {
		logger.Get().Warn("question has no key entry, excluded from score",
			zap.String("error_code", string(domain.ErrUnscorableQuestion)),
			zap.String("test", name),
			zap.Int("question_number", n),
		)
	}

	return toScoreResponse(name, filepath.Base(keyPath), report), nil
}

// extractQuestions loads the test document and runs question extraction,
// consulting the cache under the document's content hash first.
func (s *examService) extractQuestions(ctx context.Context, name string) (*extractor.QuestionResult, error) {
	path, err := s.resolveTestPath(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewInternalError("Failed to read test file", err)
	}

	cacheKey := cache.GenerateCacheKey("exam", "questions", util.ContentHash(data))
	if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
		var result extractor.QuestionResult
		if err := json.Unmarshal([]byte(cached), &result); err == nil {
			return &result, nil
		}
		// A corrupt entry is dropped and re-extracted.
		_ = s.cache.Delete(ctx, cacheKey)
	}

	lines, err := s.lines.Lines(ctx, path)
	if err != nil {
		return nil, domain.NewInternalError("Failed to extract text from test document", err)
	}
	result, err := extractor.ExtractQuestions(lines)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(result); err == nil {
		if err := s.cache.Set(ctx, cacheKey, string(encoded), s.cfg.Cache.TTL); err != nil {
			logger.Get().Warn("failed to cache extraction result", zap.Error(err))
		}
	}
	return result, nil
}

// extractKey dispatches to the tabular or text key extractor by file
// extension.
func (s *examService) extractKey(ctx context.Context, path string) (*extractor.KeyResult, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
		rows, err := s.rows.Rows(path)
		if err != nil {
			return nil, domain.NewInternalError("Failed to read answer key spreadsheet", err)
		}
		return extractor.ExtractAnswerKeyFromTable(rows)
	case ".pdf":
		lines, err := s.lines.Lines(ctx, path)
		if err != nil {
			return nil, domain.NewInternalError("Failed to extract text from answer key", err)
		}
		return extractor.ExtractAnswerKeyFromText(lines)
	case ".txt":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, domain.NewInternalError("Failed to read answer key file", err)
		}
		return extractor.ExtractAnswerKeyFromText(strings.Split(string(data), "\n"))
	}
	return nil, domain.NewInvalidInputError("Unsupported answer key format: " + filepath.Ext(path))
}

// findKeyFile scans the key directory and fuzzy-matches candidates against
// the test name. When one matched base name exists in several formats the
// extension precedence picks one; an exact precedence collision is
// ambiguous and reported instead of guessed at.
func (s *examService) findKeyFile(testName string) (string, error) {
	entries, err := os.ReadDir(s.cfg.Dirs.Keys)
	if err != nil {
		return "", domain.NewInternalError("Failed to read key directory", err)
	}

	groups := make(map[string][]string)
	candidates := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "~$") {
			continue
		}
		if _, ok := keyExtPrecedence[strings.ToLower(filepath.Ext(name))]; !ok {
			continue
		}
		base := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
		if len(groups[base]) == 0 {
			candidates = append(candidates, name)
		}
		groups[base] = append(groups[base], name)
	}

	match, err := s.matcher.BestMatch(testName, candidates)
	if err != nil {
		return "", err
	}

	base := strings.ToLower(strings.TrimSuffix(match, filepath.Ext(match)))
	group := groups[base]
	sort.Slice(group, func(i, j int) bool {
		return keyExtPrecedence[strings.ToLower(filepath.Ext(group[i]))] <
			keyExtPrecedence[strings.ToLower(filepath.Ext(group[j]))]
	})
	if len(group) > 1 {
		first := keyExtPrecedence[strings.ToLower(filepath.Ext(group[0]))]
		second := keyExtPrecedence[strings.ToLower(filepath.Ext(group[1]))]
		if first == second {
			return "", domain.NewAmbiguousKeyMatchError(testName, group[:2])
		}
	}
	return filepath.Join(s.cfg.Dirs.Keys, group[0]), nil
}

func (s *examService) resolveTestPath(name string) (string, error) {
	// Reject path traversal before touching the filesystem.
	if name == "" || strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return "", domain.NewInvalidInputError("Invalid test name")
	}
	file := name
	if !strings.EqualFold(filepath.Ext(file), ".pdf") {
		file += ".pdf"
	}
	path := filepath.Join(s.cfg.Dirs.Tests, file)
	if _, err := os.Stat(path); err != nil {
		return "", domain.NewNotFoundError("Test not found: " + name)
	}
	return path, nil
}

func toTestResponse(name string, result *extractor.QuestionResult) *dto.TestResponse {
	resp := &dto.TestResponse{Name: name, Questions: make([]dto.QuestionResponse, 0, len(result.Questions))}
	for _, q := range result.Questions {
		choices := make([]dto.ChoiceResponse, 0, len(q.Choices))
		for _, c := range q.Choices {
			choices = append(choices, dto.ChoiceResponse{Label: c.Label, Text: c.Text})
		}
		resp.Questions = append(resp.Questions, dto.QuestionResponse{
			Number:  q.Number,
			Stem:    q.Stem,
			Choices: choices,
		})
	}
	for _, a := range result.Anomalies {
		resp.Anomalies = append(resp.Anomalies, dto.AnomalyResponse{
			QuestionNumber: a.QuestionNumber,
			Reason:         a.Reason,
		})
	}
	return resp
}

func toScoreResponse(testName, keyFile string, report *domain.ScoreReport) *dto.ScoreResponse {
	incorrect := make([]dto.IncorrectAnswerResponse, 0, len(report.Incorrect))
	for _, ia := range report.Incorrect {
		incorrect = append(incorrect, dto.IncorrectAnswerResponse{
			QuestionNumber: ia.QuestionNumber,
			UserAnswer:     ia.UserAnswer,
			CorrectAnswer:  ia.CorrectAnswer,
		})
	}
	return &dto.ScoreResponse{
		AttemptID:      report.AttemptID,
		TestName:       testName,
		KeyFile:        keyFile,
		TotalQuestions: report.TotalQuestions,
		CorrectCount:   report.CorrectCount,
		Incorrect:      incorrect,
		Unanswered:     report.Unanswered,
		Unscored:       report.Unscored,
		Percentage:     report.Percentage,
	}
}

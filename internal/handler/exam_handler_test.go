package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"exam-grader/internal/domain"
	"exam-grader/internal/dto"
	"exam-grader/internal/handler"
	"exam-grader/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Manual Mocks ---

type MockExamService struct {
	ListTestsFunc func(ctx context.Context) (*dto.TestListResponse, error)
	GetTestFunc   func(ctx context.Context, name string) (*dto.TestResponse, error)
	SubmitFunc    func(ctx context.Context, name string, answers domain.Submission) (*dto.ScoreResponse, error)
}

func (m *MockExamService) ListTests(ctx context.Context) (*dto.TestListResponse, error) {
	if m.ListTestsFunc != nil {
		return m.ListTestsFunc(ctx)
	}
	panic("MockExamService.ListTestsFunc not implemented")
}

func (m *MockExamService) GetTest(ctx context.Context, name string) (*dto.TestResponse, error) {
	if m.GetTestFunc != nil {
		return m.GetTestFunc(ctx, name)
	}
	panic("MockExamService.GetTestFunc not implemented")
}

func (m *MockExamService) Submit(ctx context.Context, name string, answers domain.Submission) (*dto.ScoreResponse, error) {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, name, answers)
	}
	panic("MockExamService.SubmitFunc not implemented")
}

func newTestApp(svc *MockExamService) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(),
	})
	h := handler.NewExamHandler(svc)
	h.RegisterRoutes(app.Group("/api"))
	return app
}

func TestExamHandler_ListTests(t *testing.T) {
	mockSvc := &MockExamService{
		ListTestsFunc: func(ctx context.Context) (*dto.TestListResponse, error) {
			return &dto.TestListResponse{Tests: []dto.TestSummary{
				{Name: "2003_OpenExam", File: "2003_OpenExam.pdf"},
			}}, nil
		},
	}
	app := newTestApp(mockSvc)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/tests", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body dto.TestListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Tests, 1)
	assert.Equal(t, "2003_OpenExam", body.Tests[0].Name)
}

func TestExamHandler_GetTest(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		var requestedName string
		mockSvc := &MockExamService{
			GetTestFunc: func(ctx context.Context, name string) (*dto.TestResponse, error) {
				requestedName = name
				return &dto.TestResponse{
					Name: name,
					Questions: []dto.QuestionResponse{
						{Number: 1, Stem: "What is the powerhouse of the cell?", Choices: []dto.ChoiceResponse{
							{Label: "A", Text: "Nucleus"},
							{Label: "B", Text: "Mitochondria"},
						}},
					},
				}, nil
			},
		}
		app := newTestApp(mockSvc)

		resp, err := app.Test(httptest.NewRequest("GET", "/api/tests/2003_OpenExam", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "2003_OpenExam", requestedName)

		var body dto.TestResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Len(t, body.Questions, 1)
		assert.Equal(t, "B", body.Questions[0].Choices[1].Label)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockSvc := &MockExamService{
			GetTestFunc: func(ctx context.Context, name string) (*dto.TestResponse, error) {
				return nil, domain.NewNotFoundError("Test not found: " + name)
			},
		}
		app := newTestApp(mockSvc)

		resp, err := app.Test(httptest.NewRequest("GET", "/api/tests/missing", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

		var body middleware.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, string(domain.ErrNotFound), body.Code)
	})

	t.Run("MalformedDocument", func(t *testing.T) {
		mockSvc := &MockExamService{
			GetTestFunc: func(ctx context.Context, name string) (*dto.TestResponse, error) {
				return nil, domain.NewMalformedDocumentError("No questions found in document")
			},
		}
		app := newTestApp(mockSvc)

		resp, err := app.Test(httptest.NewRequest("GET", "/api/tests/garbled", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	})
}

func TestExamHandler_SubmitAnswers(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		var gotSubmission domain.Submission
		mockSvc := &MockExamService{
			SubmitFunc: func(ctx context.Context, name string, answers domain.Submission) (*dto.ScoreResponse, error) {
				gotSubmission = answers
				return &dto.ScoreResponse{
					AttemptID:      "01HGZ8VNRYXS8QKNJV5GRWPWDQ",
					TestName:       name,
					KeyFile:        "2003_OpenExam_Key.xlsx",
					TotalQuestions: 2,
					CorrectCount:   1,
					Incorrect: []dto.IncorrectAnswerResponse{
						{QuestionNumber: 2, UserAnswer: "B", CorrectAnswer: "A"},
					},
					Unanswered: []int{},
					Unscored:   []int{},
					Percentage: 50.0,
				}, nil
			},
		}
		app := newTestApp(mockSvc)

		bodyBytes, err := json.Marshal(dto.SubmitAnswersRequest{Answers: map[string]string{
			"1": "b",
			"2": "B",
			"3": "",
		}})
		require.NoError(t, err)
		req := httptest.NewRequest("POST", "/api/tests/2003_OpenExam/answers", bytes.NewReader(bodyBytes))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		// Labels are uppercased, blank labels dropped as unanswered.
		assert.Equal(t, domain.Submission{1: "B", 2: "B"}, gotSubmission)

		var body dto.ScoreResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, 50.0, body.Percentage)
		assert.NotEmpty(t, body.AttemptID)
	})

	t.Run("InvalidLabel", func(t *testing.T) {
		mockSvc := &MockExamService{
			SubmitFunc: func(ctx context.Context, name string, answers domain.Submission) (*dto.ScoreResponse, error) {
				assert.Fail(t, "Submit should not be called for an invalid label")
				return nil, nil
			},
		}
		app := newTestApp(mockSvc)

		bodyBytes, err := json.Marshal(dto.SubmitAnswersRequest{Answers: map[string]string{"1": "F"}})
		require.NoError(t, err)
		req := httptest.NewRequest("POST", "/api/tests/2003_OpenExam/answers", bytes.NewReader(bodyBytes))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("InvalidQuestionNumber", func(t *testing.T) {
		mockSvc := &MockExamService{}
		app := newTestApp(mockSvc)

		bodyBytes, err := json.Marshal(dto.SubmitAnswersRequest{Answers: map[string]string{"zero": "A"}})
		require.NoError(t, err)
		req := httptest.NewRequest("POST", "/api/tests/2003_OpenExam/answers", bytes.NewReader(bodyBytes))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("InvalidBody", func(t *testing.T) {
		mockSvc := &MockExamService{}
		app := newTestApp(mockSvc)

		req := httptest.NewRequest("POST", "/api/tests/2003_OpenExam/answers", bytes.NewReader([]byte("not json")))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("AmbiguousKey", func(t *testing.T) {
		mockSvc := &MockExamService{
			SubmitFunc: func(ctx context.Context, name string, answers domain.Submission) (*dto.ScoreResponse, error) {
				return nil, domain.NewAmbiguousKeyMatchError(name, []string{"a_key.xlsx", "A_KEY.xlsx"})
			},
		}
		app := newTestApp(mockSvc)

		bodyBytes, err := json.Marshal(dto.SubmitAnswersRequest{Answers: map[string]string{"1": "A"}})
		require.NoError(t, err)
		req := httptest.NewRequest("POST", "/api/tests/2003_OpenExam/answers", bytes.NewReader(bodyBytes))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

		var body middleware.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, string(domain.ErrAmbiguousKeyMatch), body.Code)
	})
}

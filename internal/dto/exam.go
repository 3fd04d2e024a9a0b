package dto

// TestSummary describes one test document available for taking
type TestSummary struct {
	Name string `json:"name"`
	File string `json:"file"`
}

// TestListResponse is the response for listing available tests
type TestListResponse struct {
	Tests []TestSummary `json:"tests"`
}

// ChoiceResponse is one labeled choice of a question
type ChoiceResponse struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// QuestionResponse is one extracted question
type QuestionResponse struct {
	Number  int              `json:"number"`
	Stem    string           `json:"stem"`
	Choices []ChoiceResponse `json:"choices"`
}

// AnomalyResponse reports an extraction irregularity to the caller
type AnomalyResponse struct {
	QuestionNumber int    `json:"question_number,omitempty"`
	Reason         string `json:"reason"`
}

// TestResponse is the full extracted form of a test document
type TestResponse struct {
	Name      string             `json:"name"`
	Questions []QuestionResponse `json:"questions"`
	Anomalies []AnomalyResponse  `json:"anomalies,omitempty"`
}

// SubmitAnswersRequest carries the user's chosen labels keyed by question
// number. Missing numbers are unanswered.
type SubmitAnswersRequest struct {
	Answers map[string]string `json:"answers"`
}

// IncorrectAnswerResponse records one wrongly answered question
type IncorrectAnswerResponse struct {
	QuestionNumber int    `json:"question_number"`
	UserAnswer     string `json:"user_answer"`
	CorrectAnswer  string `json:"correct_answer"`
}

// ScoreResponse is the score breakdown returned after submitting answers
type ScoreResponse struct {
	AttemptID      string                    `json:"attempt_id"`
	TestName       string                    `json:"test_name"`
	KeyFile        string                    `json:"key_file"`
	TotalQuestions int                       `json:"total_questions"`
	CorrectCount   int                       `json:"correct_count"`
	Incorrect      []IncorrectAnswerResponse `json:"incorrect"`
	Unanswered     []int                     `json:"unanswered"`
	Unscored       []int                     `json:"unscored"`
	Percentage     float64                   `json:"percentage"`
}

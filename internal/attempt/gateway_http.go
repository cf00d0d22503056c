package attempt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/shravanthakurgit/synergiaprep/internal/model"
)

// HTTPGateway implements Gateway over the platform REST API. The session
// token is injected at construction and sent as a bearer credential on
// every call.
type HTTPGateway struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPGateway creates a gateway for the API at baseURL, e.g.
// "https://api.synergiaprep.in/api/v1".
func NewHTTPGateway(baseURL, token string) *HTTPGateway {
	return &HTTPGateway{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// envelope mirrors the API response wrapper.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// FetchExamPaper implements Gateway.
func (g *HTTPGateway) FetchExamPaper(ctx context.Context, examID uuid.UUID) (*model.ExamPaper, error) {
	var paper model.ExamPaper
	err := g.do(ctx, http.MethodGet, fmt.Sprintf("/exams/%s", examID), nil, &paper)
	if err != nil {
		return nil, err
	}
	return &paper, nil
}

// RecordSubmission implements Gateway.
func (g *HTTPGateway) RecordSubmission(ctx context.Context, req model.RecordSubmissionRequest) (model.SubmissionReceipt, error) {
	var receipt model.SubmissionReceipt
	err := g.do(ctx, http.MethodPost, "/user-submissions", req, &receipt)
	return receipt, err
}

// ScoreSubmission implements Gateway.
func (g *HTTPGateway) ScoreSubmission(ctx context.Context, receipt model.SubmissionReceipt) (*model.AttemptResult, error) {
	var result model.AttemptResult
	path := fmt.Sprintf("/user-submissions/%s/score", receipt.SubmissionID)
	if err := g.do(ctx, http.MethodPost, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GenerateReport implements Gateway.
func (g *HTTPGateway) GenerateReport(ctx context.Context, result *model.AttemptResult) error {
	path := fmt.Sprintf("/reports/exams/%s/generate-report", result.ExamID)
	req := model.GenerateReportRequest{SubmissionID: result.SubmissionID}
	return g.do(ctx, http.MethodPost, path, req, nil)
}

// do performs one API round trip, unwrapping the response envelope. Any
// non-2xx status or envelope error is returned as an error.
func (g *HTTPGateway) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%s %s: status %d, undecodable body", method, path, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || env.Error != nil {
		code := "UNKNOWN"
		if env.Error != nil {
			code = env.Error.Code
		}
		return fmt.Errorf("%s %s: status %d, code %s", method, path, resp.StatusCode, code)
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}

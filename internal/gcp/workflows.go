package gcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	executions "cloud.google.com/go/workflows/executions/apiv1"
	"cloud.google.com/go/workflows/executions/apiv1/executionspb"
	"github.com/Lllllllleong/documentexplorer/internal/models"
	"golang.org/x/oauth2/google"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// WorkflowLauncher starts executions of one Cloud Workflows workflow.
type WorkflowLauncher struct {
	client *executions.Client
	parent string
}

// NewWorkflowLauncher creates an executions client for the given workflow.
func NewWorkflowLauncher(ctx context.Context, projectID, location, workflowID string) (*WorkflowLauncher, error) {
	if projectID == "" || location == "" || workflowID == "" {
		return nil, fmt.Errorf("NewWorkflowLauncher: projectID, location and workflowID cannot be empty")
	}
	client, err := executions.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Workflows Executions client: %w", err)
	}
	return &WorkflowLauncher{
		client: client,
		parent: fmt.Sprintf("projects/%s/locations/%s/workflows/%s", projectID, location, workflowID),
	}, nil
}

// Start creates an execution whose argument is the JSON encoding of argument and
// returns the execution name.
func (l *WorkflowLauncher) Start(ctx context.Context, argument interface{}) (string, error) {
	payloadBytes, err := json.Marshal(argument)
	if err != nil {
		return "", fmt.Errorf("failed to marshal workflow payload: %w", err)
	}
	req := &executionspb.CreateExecutionRequest{
		Parent: l.parent,
		Execution: &executionspb.Execution{
			Argument: string(payloadBytes),
		},
	}
	exec, err := l.client.CreateExecution(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to trigger workflow execution: %w", err)
	}
	return exec.GetName(), nil
}

func (l *WorkflowLauncher) Close() error {
	return l.client.Close()
}

// CallbackSignaler resumes a workflow step waiting on a callback endpoint. The task
// token is the callback URL the workflow created with events.create_callback_endpoint.
type CallbackSignaler struct {
	httpClient *http.Client
}

// NewCallbackSignaler uses Application Default Credentials to call callback URLs.
func NewCallbackSignaler(ctx context.Context) (*CallbackSignaler, error) {
	client, err := google.DefaultClient(ctx, cloudPlatformScope)
	if err != nil {
		return nil, fmt.Errorf("failed to create authenticated HTTP client: %w", err)
	}
	return &CallbackSignaler{httpClient: client}, nil
}

// NewCallbackSignalerWithClient posts callbacks with the given client.
func NewCallbackSignalerWithClient(client *http.Client) *CallbackSignaler {
	return &CallbackSignaler{httpClient: client}
}

// SendTaskSuccess resumes the waiting step with output.
func (s *CallbackSignaler) SendTaskSuccess(ctx context.Context, taskToken string, output *models.TextResponse) error {
	return s.post(ctx, taskToken, models.CallbackPayload{Status: models.CallbackSuccess, Output: output})
}

// SendTaskFailure resumes the waiting step with an error category and cause.
func (s *CallbackSignaler) SendTaskFailure(ctx context.Context, taskToken, errorName, cause string) error {
	return s.post(ctx, taskToken, models.CallbackPayload{Status: models.CallbackFailure, Error: errorName, Cause: cause})
}

func (s *CallbackSignaler) post(ctx context.Context, taskToken string, payload models.CallbackPayload) error {
	u, err := url.Parse(taskToken)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return fmt.Errorf("task token is not a callback URL")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal callback payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build callback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("callback request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("callback returned %s: %s", resp.Status, bytes.TrimSpace(msg))
	}
	return nil
}

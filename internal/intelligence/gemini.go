package intelligence

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrUpstream covers every generation failure: transport errors, a
// malformed provider envelope, or a reply that is not valid JSON.
var ErrUpstream = errors.New("could not generate tasks")

// Plan is the structured reply the provider is instructed to produce.
// Off-topic queries come back with Error set instead of Tasks.
type Plan struct {
	Tasks []PlanTask `json:"tasks,omitempty"`
	Error string     `json:"error,omitempty"`
}

type PlanTask struct {
	Task  string   `json:"task"`
	Steps []string `json:"steps"`
}

type Provider interface {
	GeneratePlan(ctx context.Context, query string) (*Plan, error)
}

const taskPrompt = `
  context: Activity or goal description provided by the user,

  output_format: JSON,

  Role: You are TODO List API Service that will be called billion of user

  instructions: Based on the given context, generate a detailed and algorithmic TODO list.
  Each task should be broken down into step-by-step actions necessary to achieve the goal.
  Ensure that the tasks are organized logically and comprehensively. Provide the output in
  proper JSON format as {"tasks": [{"task": "...", "steps": ["..."]}]}.

  Constraint: The input received should be related to generating a TODO list task. If the
  user gives input that doesn't have any relation with a TODO list task, return an error
  message in form of JSON format as {"error": "..."}. Make sure the result you give is
  consistent with the previous result you gave to the user.
`

// GeminiClient is a thin client for the Generative Language REST API.
// One inbound request makes exactly one outbound call; nothing is retried.
type GeminiClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewGeminiClient(apiKey, baseURL, model string, timeout time.Duration) *GeminiClient {
	return &GeminiClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (g *GeminiClient) GeneratePlan(ctx context.Context, query string) (*Plan, error) {
	body := geminiRequest{
		Contents: []geminiContent{
			{
				Parts: []geminiPart{
					{Text: taskPrompt},
					{Text: fmt.Sprintf("query:%s", query)},
				},
			},
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: provider returned status %d", ErrUpstream, resp.StatusCode)
	}

	var envelope geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	text, err := extractText(&envelope)
	if err != nil {
		return nil, err
	}

	var plan Plan
	if err := json.Unmarshal([]byte(text), &plan); err != nil {
		return nil, fmt.Errorf("%w: reply is not valid JSON", ErrUpstream)
	}

	if plan.Error == "" && len(plan.Tasks) == 0 {
		return nil, ErrUpstream
	}

	return &plan, nil
}

// extractText pulls the textual payload out of the provider's nested
// response envelope.
func extractText(envelope *geminiResponse) (string, error) {
	if len(envelope.Candidates) == 0 || len(envelope.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty provider response", ErrUpstream)
	}
	return envelope.Candidates[0].Content.Parts[0].Text, nil
}

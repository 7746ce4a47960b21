package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/yithril/docpipeline/internal/infrastructure/resilience"
)

// Config describes the connection to the model server.
type Config struct {
	BaseURL       string
	ClassifyModel string
	MaxConcurrent int64
	Timeout       time.Duration
}

// Client talks to an Ollama-compatible model server. Concurrent
// requests are capped so a burst of pipeline runs cannot overload the
// server; callers queue on the semaphore in arrival order.
type Client struct {
	baseURL       string
	classifyModel string
	httpClient    *http.Client
	exec          *resilience.Executor
	sem           *semaphore.Weighted
}

func New(cfg Config, exec *resilience.Executor) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 2
	}
	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		classifyModel: cfg.ClassifyModel,
		httpClient:    &http.Client{Timeout: timeout},
		exec:          exec,
		sem:           semaphore.NewWeighted(maxConcurrent),
	}
}

// ClassifyZeroShot scores the text against every candidate label.
// Scores are clamped to [0,1]; labels the model omits score zero.
func (c *Client) ClassifyZeroShot(ctx context.Context, text string, labels []string) (map[string]float64, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer c.sem.Release(1)

	var raw string
	err := c.exec.Execute(ctx, "classify_zero_shot", func(ctx context.Context) error {
		reqBody := map[string]any{
			"model":  c.classifyModel,
			"prompt": buildZeroShotPrompt(text, labels),
			"stream": false,
			"format": "json",
		}
		var err error
		raw, err = c.generate(ctx, reqBody, "classify_zero_shot")
		return err
	}, classifyInferenceError)
	if err != nil {
		return nil, wrapTemporaryIfNeeded("inference.classify_zero_shot", err)
	}

	return parseScores(raw, labels)
}

// Generate runs a completion with a hard output-token cap.
func (c *Client) Generate(ctx context.Context, model, prompt string, maxTokens int) (string, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer c.sem.Release(1)

	var out string
	err := c.exec.Execute(ctx, "generate", func(ctx context.Context) error {
		reqBody := map[string]any{
			"model":  model,
			"prompt": prompt,
			"stream": false,
		}
		if maxTokens > 0 {
			reqBody["options"] = map[string]any{"num_predict": maxTokens}
		}
		var err error
		out, err = c.generate(ctx, reqBody, "generate")
		return err
	}, classifyInferenceError)
	if err != nil {
		return "", wrapTemporaryIfNeeded("inference.generate", err)
	}
	return out, nil
}

func (c *Client) generate(ctx context.Context, reqBody map[string]any, operation string) (string, error) {
	var response struct {
		Response string `json:"response"`
	}
	if err := c.postJSON(ctx, "/api/generate", reqBody, &response, operation); err != nil {
		return "", err
	}
	return strings.TrimSpace(response.Response), nil
}

// parseScores decodes the model's JSON verdict and restricts it to the
// requested label set.
func parseScores(raw string, labels []string) (map[string]float64, error) {
	var decoded map[string]float64
	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &decoded); err != nil {
		return nil, fmt.Errorf("parse zero-shot scores: %w", err)
	}

	scores := make(map[string]float64, len(labels))
	for _, label := range labels {
		v := decoded[label]
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		scores[label] = v
	}
	return scores, nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}

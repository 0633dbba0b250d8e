package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/compliancehq/kyc-verifier/internal/analysis"
	"github.com/compliancehq/kyc-verifier/internal/prepare"
)

// Analyze implements analysis.Engine using text-only chat/completions.
// Retries stay inside this call; the pipeline sees a single attempt.
func (c *Client) Analyze(ctx context.Context, docs []prepare.DocumentContent, task analysis.TaskKind) (analysis.RawResult, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("engine.analyze.start",
		"req_id", rid,
		"task", string(task),
		"model", c.cfg.Model,
		"documents", len(docs),
	)

	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"messages": []map[string]any{
			{"role": "system", "content": systemPrompt(task)},
			{"role": "user", "content": userPrompt(docs, task)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := c.postWithRetry(ctx, rid, endpoint, body)
	if err != nil {
		c.logger.Error("engine.analyze.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return analysis.RawResult{}, err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("engine.analyze.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return analysis.RawResult{}, fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		c.logger.Error("engine.analyze.no_choices",
			"req_id", rid,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return analysis.RawResult{}, fmt.Errorf("no choices in openai response")
	}
	content := strings.TrimSpace(cc.Choices[0].Message.Content)

	c.logger.Info("engine.analyze.ok",
		"req_id", rid,
		"task", string(task),
		"response_len", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return analysis.RawResult{Text: content}, nil
}

// postWithRetry retries transport errors and retryable statuses with
// exponential backoff, respecting context cancellation between attempts.
func (c *Client) postWithRetry(ctx context.Context, rid, url string, body map[string]any) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.cfg.RetryBackoff << (attempt - 1)
			c.logger.Warn("engine.analyze.retry",
				"req_id", rid, "attempt", attempt, "backoff", backoff.String(), "error", lastErr,
			)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		raw, status, err := c.post(ctx, url, body)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !retryable(status, err) {
			return nil, err
		}
	}
	return nil, lastErr
}

func retryable(status int, err error) bool {
	if status == 0 {
		// Transport error; retry unless the context is gone.
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	return status == http.StatusTooManyRequests || status >= 500
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, int, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("openai http error: %w", err)
	}
	defer func(body io.ReadCloser) {
		if cerr := body.Close(); cerr != nil {
			c.logger.Warn("engine.analyze.body_close_error", "error", cerr)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, fmt.Errorf("openai status %d: %s", resp.StatusCode, string(raw))
	}
	return raw, resp.StatusCode, nil
}

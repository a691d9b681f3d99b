package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"vitalis/internal/services"
)

// ChatMessage is one message in a completion request
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RawToolCall is a tool call as returned by the completion API
type RawToolCall struct {
	Name      string
	Arguments json.RawMessage
}

// CompletionResult is the parsed completion response
type CompletionResult struct {
	Content   string
	ToolCalls []RawToolCall
}

// CompletionClient calls an OpenAI-compatible chat completions API with the
// agent's tool schema. Non-streaming: the decision path makes exactly one
// call per invocation and needs the whole response.
type CompletionClient struct {
	providers  *services.ProviderService
	httpClient *http.Client
	timeout    time.Duration
}

// NewCompletionClient creates a completion client
func NewCompletionClient(providers *services.ProviderService, timeout time.Duration) *CompletionClient {
	return &CompletionClient{
		providers: providers,
		httpClient: &http.Client{
			Timeout: timeout + 5*time.Second, // ctx deadline fires first
		},
		timeout: timeout,
	}
}

// Complete makes one completion call with the given messages and tools.
// Any failure or timeout is returned as-is: the caller fails the whole
// invocation with zero side effects and does not retry.
func (c *CompletionClient) Complete(ctx context.Context, model string, messages []ChatMessage, tools []map[string]any) (*CompletionResult, error) {
	resolved, err := c.providers.Resolve(model)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if limiter := c.providers.Limiter(resolved.Provider.Name); limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	requestBody := map[string]any{
		"model":    resolved.Model,
		"messages": messages,
		"stream":   false,
	}
	if len(tools) > 0 {
		requestBody["tools"] = tools
		requestBody["tool_choice"] = "auto"
	}

	bodyBytes, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := strings.TrimSuffix(resolved.Provider.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+resolved.APIKey)

	start := time.Now()
	if m := services.GetMetrics(); m != nil {
		m.CompletionRequests.Inc()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if m := services.GetMetrics(); m != nil {
			m.CompletionErrors.WithLabelValues("transport").Inc()
		}
		return nil, fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	if m := services.GetMetrics(); m != nil {
		m.CompletionLatency.Observe(time.Since(start).Seconds())
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		if m := services.GetMetrics(); m != nil {
			m.CompletionErrors.WithLabelValues(fmt.Sprintf("http_%d", resp.StatusCode)).Inc()
		}
		return nil, fmt.Errorf("completion request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var raw struct {
		Choices []struct {
			Message struct {
				Content   string `json:"content"`
				ToolCalls []struct {
					Function struct {
						Name      string          `json:"name"`
						Arguments json.RawMessage `json:"arguments"`
					} `json:"function"`
				} `json:"tool_calls"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse completion response: %w", err)
	}
	if len(raw.Choices) == 0 {
		return nil, fmt.Errorf("completion response contained no choices")
	}

	msg := raw.Choices[0].Message
	result := &CompletionResult{Content: msg.Content}
	for _, tc := range msg.ToolCalls {
		args := tc.Function.Arguments
		// Some providers double-encode arguments as a JSON string
		if len(args) > 0 && args[0] == '"' {
			var unquoted string
			if err := json.Unmarshal(args, &unquoted); err == nil {
				args = json.RawMessage(unquoted)
			}
		}
		result.ToolCalls = append(result.ToolCalls, RawToolCall{
			Name:      tc.Function.Name,
			Arguments: args,
		})
	}

	log.Printf("✅ [COMPLETION] %s/%s responded in %s (tokens=%d/%d, tool_calls=%d)",
		resolved.Provider.Name, resolved.Model, time.Since(start).Round(time.Millisecond),
		raw.Usage.PromptTokens, raw.Usage.CompletionTokens, len(result.ToolCalls))

	return result, nil
}

package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/quorumlabs/peerpanel/src/ai/core"
	"github.com/quorumlabs/peerpanel/src/webclient"
)

const (
	anthropicEndpoint = "https://api.anthropic.com/v1/messages"
	defaultModel      = "claude-sonnet-4-5"
	defaultMaxTokens  = 2000
)

func init() {
	core.RegisterProvider("anthropic", newClient, "claude")
}

type client struct {
	apiKey     string
	httpClient *http.Client
	defaults   core.Options
}

func newClient(cfg core.FactoryConfig) (core.Client, error) {
	if cfg.ClaudeKey == "" {
		return nil, fmt.Errorf("anthropic: API key not configured")
	}

	return &client{
		apiKey:     cfg.ClaudeKey,
		httpClient: webclient.NewDefault(120 * time.Second),
		defaults: core.Options{
			Model:               valueOrDefault(cfg.Model, defaultModel),
			Temperature:         orFloat(cfg.Temperature, 0.7),
			MaxCompletionTokens: orInt(cfg.MaxCompletionTokens, defaultMaxTokens),
			SystemPrompt:        cfg.SystemPrompt,
		},
	}, nil
}

func (c *client) Complete(ctx context.Context, messages []core.Message, opts core.Options) (string, error) {
	merged := c.defaults.Merge(opts)

	// Anthropic takes system text separately from the turn list.
	var system []string
	if merged.SystemPrompt != "" {
		system = append(system, merged.SystemPrompt)
	}
	var turns []map[string]interface{}
	for _, m := range messages {
		if m.Role == core.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		role := core.RoleUser
		if m.Role == core.RoleAssistant {
			role = core.RoleAssistant
		}
		turns = append(turns, map[string]interface{}{
			"role": role,
			"content": []map[string]string{
				{"type": "text", "text": m.Content},
			},
		})
	}

	body := map[string]interface{}{
		"model":       merged.Model,
		"max_tokens":  merged.MaxCompletionTokens,
		"temperature": merged.Temperature,
		"messages":    turns,
	}
	if len(system) > 0 {
		body["system"] = strings.Join(system, "\n\n")
	}

	respBody, err := c.post(ctx, body)
	if err != nil {
		return "", err
	}

	text := extractText(respBody.Content)
	if text == "" {
		return "", fmt.Errorf("anthropic: empty response")
	}
	return text, nil
}

func (c *client) post(ctx context.Context, payload map[string]interface{}) (*anthropicResponse, error) {
	bodyBytes, _ := json.Marshal(payload)
	_, body, err := webclient.DoWithRetry(ctx, 3, 2*time.Second, func() (int, []byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicEndpoint, bytes.NewBuffer(bodyBytes))
		if err != nil {
			return 0, nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", "2023-06-01")
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return 0, nil, err
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return resp.StatusCode, nil, err
		}
		if resp.StatusCode != http.StatusOK {
			return resp.StatusCode, b, fmt.Errorf("status %d", resp.StatusCode)
		}
		return resp.StatusCode, b, nil
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic API error: %w", err)
	}

	var result anthropicResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func extractText(chunks []anthropicContent) string {
	var b strings.Builder
	for _, chunk := range chunks {
		if chunk.Text != "" {
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(chunk.Text)
		}
	}
	return strings.TrimSpace(b.String())
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicResponse struct {
	Content []anthropicContent `json:"content"`
}

func valueOrDefault(val, def string) string {
	if strings.TrimSpace(val) != "" {
		return val
	}
	return def
}

func orInt(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func orFloat(v, def float64) float64 {
	if v != 0 {
		return v
	}
	return def
}

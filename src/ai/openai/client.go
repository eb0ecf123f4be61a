package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/quorumlabs/peerpanel/src/ai/core"
	"github.com/quorumlabs/peerpanel/src/webclient"
)

const (
	endpoint           = "https://api.openai.com/v1/chat/completions"
	defaultModel       = "gpt-4-turbo-preview"
	defaultMaxTokens   = 2000
	defaultTemperature = 0.7
)

func init() {
	core.RegisterProvider("openai", newClient, "gpt4", "chatgpt")
}

type client struct {
	apiKey     string
	httpClient *http.Client
	defaults   core.Options
}

func newClient(cfg core.FactoryConfig) (core.Client, error) {
	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("openai: API key not configured")
	}

	return &client{
		apiKey:     cfg.OpenAIKey,
		httpClient: webclient.NewDefault(120 * time.Second),
		defaults: core.Options{
			Model:               valueOrDefault(cfg.Model, defaultModel),
			Temperature:         orFloat(cfg.Temperature, defaultTemperature),
			MaxCompletionTokens: orInt(cfg.MaxCompletionTokens, defaultMaxTokens),
			SystemPrompt:        cfg.SystemPrompt,
		},
	}, nil
}

func (c *client) Complete(ctx context.Context, messages []core.Message, opts core.Options) (string, error) {
	merged := c.defaults.Merge(opts)

	payload := make([]map[string]string, 0, len(messages)+1)
	if merged.SystemPrompt != "" && !hasSystem(messages) {
		payload = append(payload, map[string]string{"role": core.RoleSystem, "content": merged.SystemPrompt})
	}
	for _, m := range messages {
		payload = append(payload, map[string]string{"role": m.Role, "content": m.Content})
	}

	reqBody := map[string]interface{}{
		"model":       merged.Model,
		"messages":    payload,
		"temperature": merged.Temperature,
		"max_tokens":  merged.MaxCompletionTokens,
	}
	bodyBytes, _ := json.Marshal(reqBody)

	_, body, err := webclient.DoWithRetry(ctx, 3, 2*time.Second, func() (int, []byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(bodyBytes))
		if err != nil {
			return 0, nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
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
		return "", fmt.Errorf("openai API error: %w", err)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("openai: empty response")
	}
	return result.Choices[0].Message.Content, nil
}

func hasSystem(messages []core.Message) bool {
	for _, m := range messages {
		if m.Role == core.RoleSystem {
			return true
		}
	}
	return false
}

func valueOrDefault(val, def string) string {
	if val != "" {
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

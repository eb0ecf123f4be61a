package gemini

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
	endpointFmt        = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s"
	defaultModel       = "gemini-pro"
	defaultMaxTokens   = 2000
	defaultTemperature = 0.7
)

func init() {
	core.RegisterProvider("gemini", newClient, "google")
}

type client struct {
	apiKey     string
	httpClient *http.Client
	defaults   core.Options
}

func newClient(cfg core.FactoryConfig) (core.Client, error) {
	if cfg.GeminiKey == "" {
		return nil, fmt.Errorf("gemini: API key not configured")
	}

	return &client{
		apiKey:     cfg.GeminiKey,
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

	var system []string
	if merged.SystemPrompt != "" {
		system = append(system, merged.SystemPrompt)
	}
	var contents []map[string]interface{}
	for _, m := range messages {
		switch m.Role {
		case core.RoleSystem:
			system = append(system, m.Content)
		case core.RoleAssistant:
			contents = append(contents, geminiTurn("model", m.Content))
		default:
			contents = append(contents, geminiTurn("user", m.Content))
		}
	}

	body := map[string]interface{}{
		"contents": contents,
		"generationConfig": map[string]interface{}{
			"temperature":     merged.Temperature,
			"maxOutputTokens": merged.MaxCompletionTokens,
		},
	}
	if len(system) > 0 {
		body["system_instruction"] = map[string]interface{}{
			"parts": []map[string]string{{"text": strings.Join(system, "\n\n")}},
		}
	}
	bodyBytes, _ := json.Marshal(body)

	endpoint := fmt.Sprintf(endpointFmt, merged.Model, c.apiKey)
	_, respBody, err := webclient.DoWithRetry(ctx, 3, 2*time.Second, func() (int, []byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(bodyBytes))
		if err != nil {
			return 0, nil, err
		}
		req.Header.Set("Content-Type", "application/json")
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
		return "", fmt.Errorf("gemini API error: %w", err)
	}

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", err
	}
	if len(result.Candidates) == 0 {
		return "", fmt.Errorf("gemini: empty response")
	}

	var b strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(part.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("gemini: empty response")
	}
	return text, nil
}

func geminiTurn(role, text string) map[string]interface{} {
	return map[string]interface{}{
		"role":  role,
		"parts": []map[string]string{{"text": text}},
	}
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

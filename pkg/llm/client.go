package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"academy-scheduler/config"
)

var ErrNotConfigured = errors.New("llm: gateway not configured")

// Gateway is a chat-completion endpoint. Callers must not assume the response
// is valid JSON even when the prompt asks for it.
type Gateway interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

type client struct {
	baseUrl string
	apiKey  string
	model   string
	http    *http.Client
}

func NewClient(cfg config.LLM) (Gateway, error) {
	if cfg.BaseUrl == "" || cfg.ApiKey == "" {
		return nil, ErrNotConfigured
	}
	return &client{
		baseUrl: cfg.BaseUrl,
		apiKey:  cfg.ApiKey,
		model:   cfg.Model,
		http:    &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (c *client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	body := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseUrl+"/chat/completions", bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("llm: gateway returned %d", res.StatusCode)
	}

	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("llm: empty completion")
	}
	return resp.Choices[0].Message.Content, nil
}

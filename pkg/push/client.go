package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"academy-scheduler/config"
)

var ErrNotConfigured = errors.New("push: gateway not configured")

type Notification struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Icon  string            `json:"icon,omitempty"`
	Data  map[string]string `json:"data,omitempty"`
}

type Result struct {
	UserId uuid.UUID
	Err    error
}

// Sender delivers push notifications with a per-recipient outcome. Only total
// gateway unavailability surfaces as the second return value.
type Sender interface {
	Send(ctx context.Context, userIds []uuid.UUID, n Notification) ([]Result, error)
}

type client struct {
	baseUrl string
	appId   string
	apiKey  string
	http    *http.Client
}

func NewClient(cfg config.Push) (Sender, error) {
	if cfg.BaseUrl == "" || cfg.AppId == "" || cfg.ApiKey == "" {
		return nil, ErrNotConfigured
	}
	return &client{
		baseUrl: cfg.BaseUrl,
		appId:   cfg.AppId,
		apiKey:  cfg.ApiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (c *client) Send(ctx context.Context, userIds []uuid.UUID, n Notification) ([]Result, error) {
	ids := make([]string, 0, len(userIds))
	for _, id := range userIds {
		ids = append(ids, id.String())
	}

	body := map[string]interface{}{
		"app_id":                    c.appId,
		"include_external_user_ids": ids,
		"headings":                  map[string]string{"en": n.Title},
		"contents":                  map[string]string{"en": n.Body},
		"data":                      n.Data,
	}
	if n.Icon != "" {
		body["chrome_web_icon"] = n.Icon
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseUrl+"/notifications", bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Basic "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("push: gateway returned %d", res.StatusCode)
	}

	// The gateway reports recipients it could not target; everyone else is
	// considered delivered.
	var resp struct {
		Errors struct {
			InvalidExternalUserIds []string `json:"invalid_external_user_ids"`
		} `json:"errors"`
	}
	respBody, _ := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	_ = json.Unmarshal(respBody, &resp)

	invalid := make(map[string]bool, len(resp.Errors.InvalidExternalUserIds))
	for _, id := range resp.Errors.InvalidExternalUserIds {
		invalid[id] = true
	}

	results := make([]Result, 0, len(userIds))
	for _, id := range userIds {
		r := Result{UserId: id}
		if invalid[id.String()] {
			r.Err = fmt.Errorf("push: no registered device for user %s", id)
		}
		results = append(results, r)
	}
	return results, nil
}

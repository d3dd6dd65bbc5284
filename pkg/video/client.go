package video

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"academy-scheduler/config"
)

var ErrNotConfigured = errors.New("video: provider not configured")

const (
	RecordingStatusFinished   = "finished"
	RecordingStatusInProgress = "in-progress"
)

type Room struct {
	Name string `json:"name"`
	Url  string `json:"url"`
}

type Recording struct {
	Id           string `json:"id"`
	RoomName     string `json:"room_name"`
	Status       string `json:"status"`
	DownloadLink string `json:"download_link"`
	Duration     int    `json:"duration"`
}

// Provider is the video-conferencing room API. Room names that do not exist
// yield empty recording lists, not errors.
type Provider interface {
	CreateRoom(ctx context.Context, name string, expiry time.Time) (*Room, error)
	ListRecordings(ctx context.Context, roomName string) ([]Recording, error)
	GetRecording(ctx context.Context, id string) (*Recording, error)
	GetTranscript(ctx context.Context, recordingId string) (string, error)
}

type client struct {
	baseUrl string
	apiKey  string
	http    *http.Client
}

func NewClient(cfg config.Video) (Provider, error) {
	if cfg.BaseUrl == "" || cfg.ApiKey == "" {
		return nil, ErrNotConfigured
	}
	return &client{
		baseUrl: cfg.BaseUrl,
		apiKey:  cfg.ApiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (c *client) CreateRoom(ctx context.Context, name string, expiry time.Time) (*Room, error) {
	body := map[string]interface{}{
		"name": name,
		"properties": map[string]interface{}{
			"exp":              expiry.Unix(),
			"enable_recording": "cloud",
		},
	}

	var room Room
	if err := c.do(ctx, http.MethodPost, "/rooms", body, &room); err != nil {
		return nil, err
	}

	return &room, nil
}

func (c *client) ListRecordings(ctx context.Context, roomName string) ([]Recording, error) {
	var resp struct {
		Data []Recording `json:"data"`
	}
	path := "/recordings?room_name=" + url.QueryEscape(roomName)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	return resp.Data, nil
}

func (c *client) GetRecording(ctx context.Context, id string) (*Recording, error) {
	var rec Recording
	if err := c.do(ctx, http.MethodGet, "/recordings/"+url.PathEscape(id), nil, &rec); err != nil {
		return nil, err
	}

	return &rec, nil
}

func (c *client) GetTranscript(ctx context.Context, recordingId string) (string, error) {
	var resp struct {
		Link string `json:"link"`
	}
	path := "/recordings/" + url.PathEscape(recordingId) + "/transcript-link"
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return "", err
	}
	if resp.Link == "" {
		return "", nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resp.Link, nil)
	if err != nil {
		return "", err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("video: transcript fetch returned %d", res.StatusCode)
	}

	text, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return "", err
	}
	return string(text), nil
}

func (c *client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseUrl+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		zerolog.Ctx(ctx).Debug().Int("status", res.StatusCode).Str("path", path).Bytes("body", raw).Msg("video provider error response")
		return fmt.Errorf("video: %s %s returned %d", method, path, res.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}

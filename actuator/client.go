package actuator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tnicklin/actuator_loglevels/models"
)

var _ Client = (*DefaultClient)(nil)

const loggersPath = "/actuator/loggers/"

// DefaultClient calls /actuator/loggers over HTTP with basic auth.
type DefaultClient struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

type Params struct {
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client
}

// New creates a new actuator client.
func New(p Params) *DefaultClient {
	httpClient := p.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &DefaultClient{
		baseURL:   strings.TrimRight(p.BaseURL, "/"),
		userAgent: p.UserAgent,
		http:      httpClient,
	}
}

func (c *DefaultClient) SetLoggerLevel(ctx context.Context, creds models.Credentials, name, level string) (int, error) {
	endpoint, err := c.loggerURL(name)
	if err != nil {
		return 0, err
	}

	body, err := json.Marshal(setLevelRequest{ConfiguredLevel: level})
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.decorate(req, creds)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused for the next directive.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

	return resp.StatusCode, nil
}

func (c *DefaultClient) LoggerLevel(ctx context.Context, creds models.Credentials, name string) (LoggerLevels, error) {
	endpoint, err := c.loggerURL(name)
	if err != nil {
		return LoggerLevels{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return LoggerLevels{}, err
	}
	c.decorate(req, creds)

	resp, err := c.http.Do(req)
	if err != nil {
		return LoggerLevels{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return LoggerLevels{}, fmt.Errorf("actuator: status %d: %s", resp.StatusCode, string(body))
	}

	var levels LoggerLevels
	if err = json.NewDecoder(resp.Body).Decode(&levels); err != nil {
		return LoggerLevels{}, err
	}
	return levels, nil
}

func (c *DefaultClient) loggerURL(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("actuator: logger name is empty")
	}
	if c.baseURL == "" {
		return "", fmt.Errorf("actuator: base url is empty")
	}
	if _, err := url.Parse(c.baseURL); err != nil {
		return "", fmt.Errorf("actuator: base url: %w", err)
	}
	return c.baseURL + loggersPath + url.PathEscape(name), nil
}

func (c *DefaultClient) decorate(req *http.Request, creds models.Credentials) {
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.SetBasicAuth(creds.Username, creds.Password)
}

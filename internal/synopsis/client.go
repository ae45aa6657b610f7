package synopsis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNotFound is returned when upstream has no synopsis for the title.
var ErrNotFound = errors.New("synopsis: not found")

// Result is the information used to fill an anime's description.
type Result struct {
	Description string
	Source      string
}

// Client looks up a synopsis by anime title.
type Client interface {
	Fetch(ctx context.Context, title string) (*Result, error)
}

// Disabled is the Client used when no provider is configured.
type Disabled struct{}

// Fetch always reports ErrNotFound.
func (Disabled) Fetch(context.Context, string) (*Result, error) {
	return nil, ErrNotFound
}

// HTTPClient implements Client over HTTP.
type HTTPClient struct {
	baseURL *url.URL
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

// NewHTTPClient constructs a new HTTP-backed synopsis client.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) (*HTTPClient, error) {
	if logger == nil {
		logger = slog.Default()
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse synopsis url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("parse synopsis url: %q is not absolute", baseURL)
	}
	return &HTTPClient{
		baseURL: parsed,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		logger: logger,
	}, nil
}

// Fetch retrieves the synopsis for title.
func (c *HTTPClient) Fetch(ctx context.Context, title string) (*Result, error) {
	endpoint := c.baseURL.JoinPath("synopsis")
	q := endpoint.Query()
	q.Set("title", title)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var payload apiResponse
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, fmt.Errorf("decode synopsis response: %w", err)
		}
		result := convertToResult(payload)
		if result == nil {
			return nil, ErrNotFound
		}
		return result, nil
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		c.logger.Warn("synopsis_unexpected_status", slog.Int("status", resp.StatusCode), slog.String("title", title))
		return nil, fmt.Errorf("synopsis: upstream returned %d", resp.StatusCode)
	}
}

type apiResponse struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Synopsis    *string `json:"synopsis"`
	Source      *string `json:"source"`
}

// convertToResult prefers description over synopsis and returns nil when
// neither carries text.
func convertToResult(payload apiResponse) *Result {
	text := ""
	for _, candidate := range []*string{payload.Description, payload.Synopsis} {
		if candidate != nil && strings.TrimSpace(*candidate) != "" {
			text = strings.TrimSpace(*candidate)
			break
		}
	}
	if text == "" {
		return nil
	}

	source := "SynopsisAPI"
	if payload.Source != nil && strings.TrimSpace(*payload.Source) != "" {
		source = strings.TrimSpace(*payload.Source)
	}
	return &Result{Description: text, Source: source}
}

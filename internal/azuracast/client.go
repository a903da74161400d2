package azuracast

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/username/tibr-player/pkg/backoff"
	"go.uber.org/zap"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodySize    = 1 << 20
	maxErrorBody   = 512
)

// Client represents AzuraCast public API client
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	retrier    *backoff.Retrier
	logger     *zap.Logger
}

// NewClient creates a new AzuraCast API client
func NewClient(baseURL, userAgent string, timeout time.Duration, retrier *backoff.Retrier, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if retrier == nil {
		retrier = backoff.New(0, 0, logger)
	}

	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		retrier: retrier,
		logger:  logger,
	}
}

// GetStations returns all public stations
func (c *Client) GetStations(ctx context.Context) ([]Station, error) {
	var stations []Station
	err := c.retrier.Do(ctx, "Error fetching channels", func(ctx context.Context) error {
		return c.doRequest(ctx, "/stations", &stations)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get stations: %w", err)
	}

	c.logger.Info("Stations retrieved", zap.Int("count", len(stations)))

	return stations, nil
}

// GetNowPlaying returns now-playing info for a station
func (c *Client) GetNowPlaying(ctx context.Context, shortcode string) (*NowPlaying, error) {
	if shortcode == "" {
		return nil, fmt.Errorf("station shortcode is required")
	}

	var np NowPlaying
	path := "/nowplaying/" + url.PathEscape(shortcode)
	err := c.retrier.Do(ctx, "Error fetching now playing for "+shortcode, func(ctx context.Context) error {
		return c.doRequest(ctx, path, &np)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get now playing for %s: %w", shortcode, err)
	}

	fields := []zap.Field{zap.String("station", shortcode)}
	if np.NowPlaying != nil {
		fields = append(fields,
			zap.String("artist", np.NowPlaying.Song.Artist),
			zap.String("title", np.NowPlaying.Song.Title))
	}
	c.logger.Debug("Now playing retrieved", fields...)

	return &np, nil
}

// doRequest performs a single GET request and decodes the JSON body
func (c *Client) doRequest(ctx context.Context, path string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := string(body)
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(msg)}
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}

package ndbc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/swell-api/internal/domain"
)

// DefaultBaseURL is the NDBC realtime feed root.
const DefaultBaseURL = "https://www.ndbc.noaa.gov/data/realtime2"

// maxFeedBytes caps a feed read; the 45-day realtime files stay well under 1 MiB.
const maxFeedBytes = 1 << 20

// Client retrieves raw station feeds. It implements pipeline.Feed.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a feed client. An empty baseURL selects the public NDBC
// endpoint.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     60 * time.Second,
			},
		},
		logger: logger,
	}
}

// Fetch retrieves the raw text feed for a station, bounded by timeout. The
// per-call timeout is the only cancellation path; failures come back as a
// *domain.FetchError classified as timeout, upstream status, or transport.
func (c *Client) Fetch(ctx context.Context, station string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	u := fmt.Sprintf("%s/%s.txt", c.baseURL, strings.ToUpper(station))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", &domain.FetchError{Station: station, Kind: domain.FetchTransport, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &domain.FetchError{Station: station, Kind: classifyTransport(err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &domain.FetchError{Station: station, Kind: domain.FetchUpstreamStatus, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return "", &domain.FetchError{Station: station, Kind: classifyTransport(err), Err: err}
	}

	return string(body), nil
}

// classifyTransport separates deadline expiry from other connection failures.
func classifyTransport(err error) domain.FetchKind {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return domain.FetchTimeout
	}
	return domain.FetchTransport
}

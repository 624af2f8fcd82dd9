// Package upstream is the client of the football statistics API.
//
// It issues plain GETs against the live-events list and the per-match
// statistics endpoint. There is no retry: the next reconciliation tick is the
// retry. Identical concurrent requests share one round trip.
package upstream

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"golang.org/x/sync/singleflight"

	"github.com/okian/matchboard/internal/domain/model"
	"github.com/okian/matchboard/pkg/logger"
	"github.com/okian/matchboard/pkg/metrics"
)

const (
	// DefaultBaseURL is the public API root.
	DefaultBaseURL = "https://www.sofascore.com/api/v1"

	livePath    = "/sport/football/events/live"
	maxBodySize = 4 << 20
)

// Client fetches live matches and statistics.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	headers    map[string]string
	flight     singleflight.Group
	log        logger.Logger
}

// NewClient creates a client for baseURL (DefaultBaseURL when empty).
func NewClient(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		timeout:    10 * time.Second,
		headers:    map[string]string{"accept": "application/json"},
		log:        logger.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LiveMatches returns the current live list in upstream order.
func (c *Client) LiveMatches(ctx context.Context) ([]model.Match, error) {
	var env liveEnvelope
	if err := c.getJSON(ctx, "live", livePath, &env); err != nil {
		return nil, errors.Wrap(err, "fetch live matches")
	}
	out := make([]model.Match, 0, len(env.Events))
	for _, e := range env.Events {
		out = append(out, e.toModel())
	}
	return out, nil
}

// Statistics returns the flattened statistics of one match for period p.
// A period missing from the payload yields an empty result. Any failure is
// marked with model.ErrStatsFetchFailed.
func (c *Client) Statistics(ctx context.Context, matchID int64, p model.Period) ([]model.StatItem, error) {
	var env statsEnvelope
	path := "/event/" + strconv.FormatInt(matchID, 10) + "/statistics"
	if err := c.getJSON(ctx, "statistics", path, &env); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "fetch statistics match=%d period=%s", matchID, p), model.ErrStatsFetchFailed)
	}
	return env.flatten(p), nil
}

// getJSON joins or starts the flight for url. The round trip is detached from
// ctx so one caller giving up does not fail the others sharing it; it is still
// bounded by the client timeout.
func (c *Client) getJSON(ctx context.Context, endpoint, path string, target any) error {
	url := c.baseURL + path
	ch := c.flight.DoChan(url, func() (any, error) {
		return c.fetch(context.WithoutCancel(ctx), endpoint, url)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "wait for upstream")
	case res = <-ch:
	}
	out, err, shared := res.Val, res.Err, res.Shared
	if err != nil {
		return err
	}
	if shared {
		c.log.Debug(ctx, "shared upstream response", logger.String("url", url))
	}

	raw, ok := out.([]byte)
	if !ok {
		return errors.Newf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return errors.Mark(errors.Wrap(err, "decode payload"), ErrDecode)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, endpoint, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest(endpoint, "error", msSince(start))
		metrics.RecordErrorByComponent("upstream", "transport")
		return nil, errors.Wrap(err, "send request")
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	metrics.RecordUpstreamRequest(endpoint, strconv.Itoa(resp.StatusCode), msSince(start))
	if err != nil {
		return nil, errors.Wrap(err, "read response body")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.RecordErrorByComponent("upstream", "status")
		return nil, errors.Mark(errors.Newf("status=%d body=%s", resp.StatusCode, abbreviate(raw)), ErrUpstreamStatus)
	}
	return raw, nil
}

func abbreviate(raw []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(raw))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}

package datasource

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// DefaultTableURL is the published race results table
const DefaultTableURL = "https://raw.githubusercontent.com/myblood-tempest/zed-champions-race-data/refs/heads/main/race_results.csv"

const maxPayloadBytes = 64 << 20

// RemoteTable fetches the CSV record table over HTTP
type RemoteTable struct {
	httpClient *RateLimitedHTTPClient
	url        string
	token      string
}

// NewRemoteTable creates a fetcher for the table at url
func NewRemoteTable(httpClient *RateLimitedHTTPClient, url, token string) *RemoteTable {
	if url == "" {
		url = DefaultTableURL
	}
	return &RemoteTable{
		httpClient: httpClient,
		url:        url,
		token:      token,
	}
}

// Name returns the fetcher name
func (t *RemoteTable) Name() string {
	return "remote_table"
}

// Reset closes the client's circuit breaker
func (t *RemoteTable) Reset() {
	t.httpClient.Reset()
}

// Fetch downloads the raw payload
func (t *RemoteTable) Fetch(ctx context.Context) ([]byte, error) {
	headers := map[string]string{"Accept": "text/csv, text/plain"}
	if t.token != "" {
		headers["Authorization"] = "token " + t.token
	}

	resp, err := t.httpClient.Get(ctx, t.url, headers)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
			return nil, NewSourceError(t.Name(), ErrCodeTimeout, "request timed out", err)
		}
		return nil, NewSourceError(t.Name(), ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		code := ErrCodeNetworkError
		if resp.StatusCode >= 500 {
			code = ErrCodeServerError
		}
		return nil, NewSourceError(t.Name(), code, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		if ctx.Err() != nil {
			return nil, NewSourceError(t.Name(), ErrCodeTimeout, "reading body timed out", err)
		}
		return nil, NewSourceError(t.Name(), ErrCodeNetworkError, "failed to read body", err)
	}

	return body, nil
}

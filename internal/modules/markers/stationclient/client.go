// Package stationclient talks to the remote station service. Every call is a
// single HTTP round-trip without retries.
package stationclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const maxResponseBytes = 4 << 20

// Client is the station service client. URL is the collection endpoint, e.g.
// https://host/api/stations.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

func New(collectionURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return NewWithHTTP(collectionURL, &http.Client{Timeout: timeout}, logger)
}

func NewWithHTTP(collectionURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		url:        collectionURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// FetchAll loads every station. Malformed records are skipped and logged; a
// non-2xx status, transport failure or non-array body yields a *FetchError.
func (c *Client) FetchAll(ctx context.Context) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &FetchError{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	body, status, err := c.do(req)
	if err != nil {
		return nil, &FetchError{StatusCode: status, Err: err}
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &FetchError{StatusCode: status, Err: fmt.Errorf("parse json: %w", err)}
	}

	out := make([]Record, 0, len(raw))
	for i, item := range raw {
		rec, err := decodeRecord(item)
		if err != nil {
			c.logger.Warn("skipping malformed station record", "index", i, "error", err)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// Create posts a new station. The returned record is zero when the service
// answers without a parseable station body.
func (c *Client) Create(ctx context.Context, p Payload) (Record, error) {
	body, status, err := c.send(ctx, http.MethodPost, c.url, p)
	if err != nil {
		return Record{}, &CreateError{StatusCode: status, Err: err}
	}
	return c.decodeReply(body), nil
}

// Update sends a partial update for the station with the given remote id.
func (c *Client) Update(ctx context.Context, id string, patch Payload) (Record, error) {
	if id == "" {
		return Record{}, &UpdateError{Err: errors.New("empty station id")}
	}
	body, status, err := c.send(ctx, http.MethodPut, c.url+"/"+url.PathEscape(id), patch)
	if err != nil {
		return Record{}, &UpdateError{ID: id, StatusCode: status, Err: err}
	}
	return c.decodeReply(body), nil
}

func (c *Client) send(ctx context.Context, method, target string, p Payload) ([]byte, int, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, 0, fmt.Errorf("encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("http request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Debug("close station response body", "error", err)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return body, resp.StatusCode, nil
}

func (c *Client) decodeReply(body []byte) Record {
	if len(bytes.TrimSpace(body)) == 0 {
		return Record{}
	}
	rec, err := decodeRecord(body)
	if err != nil {
		c.logger.Debug("station reply is not a record", "error", err)
		return Record{}
	}
	return rec
}

// Package weighclient is the Billing aggregator's only outbound dependency:
// a small HTTP client abstraction over the weigh engine's read endpoints,
// grounded on core/storage.go's timeout-bound http.Client constructor shape.
// It replaces hard-coded hostnames/ports in aggregation logic with a single
// configurable endpoint, timeout, and a typed result sum of
// {Ok(payload), NotFound, UpstreamFailure}.
package weighclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"weighstation/internal/clock"
)

// Status distinguishes the three outcomes the billing aggregator's
// partial-failure policy acts on.
type Status int

const (
	StatusOk Status = iota
	StatusNotFound
	StatusUpstreamFailure
)

// Client calls the weigh engine's read endpoints over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a Client bound to baseURL with the given outbound timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// ItemResult mirrors weigh's GET /item/{id} response.
type ItemResult struct {
	ID       string  `json:"id"`
	Tara     any     `json:"tara"`
	Sessions []int64 `json:"sessions"`
}

// ItemResponse is the typed Ok/NotFound/UpstreamFailure result of Item.
type ItemResponse struct {
	Status Status
	Item   *ItemResult
}

// Item calls GET /item/{id}?from&to.
func (c *Client) Item(ctx context.Context, id string, from, to time.Time) ItemResponse {
	q := url.Values{"from": {clock.Format(from)}, "to": {clock.Format(to)}}
	var out ItemResult
	status := c.get(ctx, fmt.Sprintf("/item/%s?%s", url.PathEscape(id), q.Encode()), &out)
	if status != StatusOk {
		return ItemResponse{Status: status}
	}
	return ItemResponse{Status: StatusOk, Item: &out}
}

// SessionResult mirrors weigh's GET /session/{id} response, loosely typed
// since the shape depends on whether the session is a truck or container.
type SessionResult struct {
	ID      int64  `json:"id"`
	Truck   string `json:"truck"`
	Bruto   int    `json:"bruto"`
	Neto    any    `json:"neto"`
	Produce string `json:"produce"`
}

// SessionResponse is the typed Ok/NotFound/UpstreamFailure result of Session.
type SessionResponse struct {
	Status  Status
	Session *SessionResult
}

// Session calls GET /session/{id}.
func (c *Client) Session(ctx context.Context, id int64) SessionResponse {
	var out SessionResult
	status := c.get(ctx, fmt.Sprintf("/session/%d", id), &out)
	if status != StatusOk {
		return SessionResponse{Status: status}
	}
	return SessionResponse{Status: StatusOk, Session: &out}
}

// WeightRow mirrors one element of weigh's GET /weight response.
type WeightRow struct {
	ID      int64  `json:"id"`
	Produce string `json:"produce"`
}

// WeightRowsResponse is the typed Ok/NotFound/UpstreamFailure result of
// WeightRows.
type WeightRowsResponse struct {
	Status Status
	Rows   []WeightRow
}

// WeightRows calls GET /weight?from&to to build the session→produce mapping
// bill assembly needs.
func (c *Client) WeightRows(ctx context.Context, from, to time.Time) WeightRowsResponse {
	q := url.Values{"from": {clock.Format(from)}, "to": {clock.Format(to)}}
	var out []WeightRow
	status := c.get(ctx, "/weight?"+q.Encode(), &out)
	if status != StatusOk {
		return WeightRowsResponse{Status: status}
	}
	return WeightRowsResponse{Status: StatusOk, Rows: out}
}

func (c *Client) get(ctx context.Context, path string, out any) Status {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return StatusUpstreamFailure
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return StatusUpstreamFailure
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return StatusNotFound
	case resp.StatusCode >= 500:
		return StatusUpstreamFailure
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return StatusUpstreamFailure
		}
		return StatusOk
	default:
		return StatusUpstreamFailure
	}
}

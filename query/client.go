package query

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

// Client issues GraphQL queries against the indexer ("query node").
type Client struct {
	URL     string
	http    *http.Client
	limiter *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRateLimit caps the request rate sent to the query node.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst) }
}

// New returns a client for the GraphQL endpoint at url.
func New(url string, opts ...Option) *Client {
	c := &Client{
		URL:     url,
		http:    &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(8), 4),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Error carries the messages of a GraphQL error response.
type Error struct {
	Messages []string
}

func (e *Error) Error() string {
	return "graphql: " + strings.Join(e.Messages, "; ")
}

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// do posts the query and returns the "data" member of the response.
func (c *Client) do(ctx context.Context, query string, vars map[string]any) (gjson.Result, error) {
	if c == nil || c.URL == "" {
		return gjson.Result{}, fmt.Errorf("query node not configured")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return gjson.Result{}, err
	}

	body, err := json.Marshal(request{Query: query, Variables: vars})
	if err != nil {
		return gjson.Result{}, fmt.Errorf("encode query: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return gjson.Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("query node: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return gjson.Result{}, fmt.Errorf("query node: %s", resp.Status)
	}
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, fmt.Errorf("query node: invalid json response")
	}

	res := gjson.ParseBytes(raw)
	if errs := res.Get("errors"); errs.Exists() && len(errs.Array()) > 0 {
		e := &Error{}
		for _, item := range errs.Array() {
			e.Messages = append(e.Messages, item.Get("message").String())
		}
		return gjson.Result{}, e
	}
	return res.Get("data"), nil
}

func stringList(r gjson.Result) []string {
	var out []string
	for _, v := range r.Array() {
		out = append(out, v.String())
	}
	return out
}

// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package character

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/staranto/rmctl/internal/metrics"
)

// DefaultBaseURL is the public API root.
const DefaultBaseURL = "https://rickandmortyapi.com/api"

var (
	// ErrInvalidURL is returned when the base URL or a next link is unusable.
	ErrInvalidURL = errors.New("invalid url")
	// ErrNoData is returned when the API answers with an empty body.
	ErrNoData = errors.New("no data")
)

// APIError is a non-2xx answer. The API reports problems as {"error": "..."}.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("api returned status %d: %s", e.StatusCode, e.Message)
}

// Query narrows a character listing. Zero fields are omitted.
type Query struct {
	Name    string
	Status  string
	Species string
	Type    string
	Gender  string
	Page    int
}

// Values renders q as API query parameters.
func (q Query) Values() url.Values {
	v := url.Values{}
	for k, s := range map[string]string{
		"name":    q.Name,
		"status":  q.Status,
		"species": q.Species,
		"type":    q.Type,
		"gender":  q.Gender,
	} {
		if s != "" {
			v.Set(k, s)
		}
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	return v
}

// Filtered reports whether q narrows the listing by any attribute.
func (q Query) Filtered() bool {
	return q.Name != "" || q.Status != "" || q.Species != "" || q.Type != "" || q.Gender != ""
}

// Client talks to the character endpoint.
type Client struct {
	baseURL   string
	http      *http.Client
	userAgent string
	metrics   *metrics.Metrics
}

// Option customizes a new Client.
type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New returns a Client for DefaultBaseURL unless overridden.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client is pointed at.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// List fetches a single page of characters matching q.
func (c *Client) List(ctx context.Context, q Query) (Page, error) {
	u, err := url.Parse(c.baseURL + "/character")
	if err != nil || u.Scheme == "" || u.Host == "" {
		return Page{}, fmt.Errorf("%w: %s", ErrInvalidURL, c.baseURL)
	}
	u.RawQuery = q.Values().Encode()
	return c.get(ctx, u.String())
}

// ListAll follows next links starting from q until maxPages pages have been
// read (maxPages <= 0 reads them all). It returns the typed characters and
// the concatenated raw results as one JSON array.
func (c *Client) ListAll(ctx context.Context, q Query, maxPages int) ([]Character, bytes.Buffer, error) {
	var raw bytes.Buffer

	first := true
	characters, err := Paginate(ctx, maxPages, func(ctx context.Context, next string) ([]Character, string, error) {
		var (
			page Page
			err  error
		)
		if first {
			first = false
			page, err = c.List(ctx, q)

			// The API answers a search without matches with a 404.
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound && q.Filtered() {
				log.Debugf("no characters match %s", q.Values().Encode())
				return nil, "", nil
			}
		} else {
			page, err = c.get(ctx, next)
		}
		if err != nil {
			return nil, "", err
		}
		appendRaw(&raw, page.Raw)
		return page.Results, page.Info.Next, nil
	})
	if err != nil {
		return nil, bytes.Buffer{}, err
	}

	if raw.Len() == 0 {
		raw.WriteString("[]")
	} else {
		raw.WriteByte(']')
	}

	return characters, raw, nil
}

// appendRaw splices the elements of a JSON array into an array being built in
// buf. buf is left without its closing bracket.
func appendRaw(buf *bytes.Buffer, arr []byte) {
	for _, item := range gjson.ParseBytes(arr).Array() {
		if buf.Len() == 0 {
			buf.WriteByte('[')
		} else {
			buf.WriteByte(',')
		}
		buf.WriteString(item.Raw)
	}
}

func (c *Client) get(ctx context.Context, rawURL string) (Page, error) {
	log.Debugf("GET %s", rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Page{}, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.CharacterRequest("error")
		return Page{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()
	c.metrics.CharacterRequest(strconv.Itoa(resp.StatusCode))

	var doc bytes.Buffer
	if _, err := doc.ReadFrom(resp.Body); err != nil {
		return Page{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Page{}, &APIError{
			StatusCode: resp.StatusCode,
			Message:    gjson.GetBytes(doc.Bytes(), "error").String(),
		}
	}

	if len(bytes.TrimSpace(doc.Bytes())) == 0 {
		return Page{}, ErrNoData
	}

	var page Page
	if err := json.Unmarshal(doc.Bytes(), &page); err != nil {
		return Page{}, fmt.Errorf("failed to decode characters: %w", err)
	}
	page.Raw = []byte(gjson.GetBytes(doc.Bytes(), "results").Raw)

	log.Debugf("page has %d results, next=%q", len(page.Results), page.Info.Next)
	return page, nil
}

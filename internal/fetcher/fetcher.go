// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"net/url"
	"time"

	// Codecs available to the default decoder.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/apex/log"
	"github.com/google/uuid"

	"github.com/staranto/rmctl/internal/cache"
	"github.com/staranto/rmctl/internal/metrics"
)

const defaultTimeout = 15 * time.Second

// Decoder turns a raw payload into a bitmap and the codec name that decoded
// it.
type Decoder interface {
	Decode(data []byte) (image.Image, string, error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(data []byte) (image.Image, string, error)

func (f DecoderFunc) Decode(data []byte) (image.Image, string, error) {
	return f(data)
}

// StdDecoder decodes with the image package registry (jpeg, png and gif).
var StdDecoder Decoder = DecoderFunc(func(data []byte) (image.Image, string, error) {
	return image.Decode(bytes.NewReader(data))
})

// Fetcher resolves image URLs to decoded images, consulting the image store
// before going to the network.
type Fetcher struct {
	store     *cache.ImageStore
	client    *http.Client
	decoder   Decoder
	metrics   *metrics.Metrics
	userAgent string
}

// Option customizes a new Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the default client, which has a 15s timeout.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

func WithDecoder(d Decoder) Option {
	return func(f *Fetcher) {
		if d != nil {
			f.decoder = d
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Fetcher) { f.metrics = m }
}

func WithUserAgent(ua string) Option {
	return func(f *Fetcher) { f.userAgent = ua }
}

// New returns a Fetcher backed by store. The store is shared, not owned.
func New(store *cache.ImageStore, opts ...Option) *Fetcher {
	f := &Fetcher{
		store:   store,
		client:  &http.Client{Timeout: defaultTimeout},
		decoder: StdDecoder,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.store == nil {
		f.store = cache.New()
	}
	return f
}

// Store returns the image store the fetcher reads and populates.
func (f *Fetcher) Store() *cache.ImageStore {
	return f.store
}

// Fetch resolves rawURL in the background and invokes onComplete exactly once
// with the image, or with nil if the URL is invalid, the request fails or the
// payload does not decode. Cache hits are delivered the same way as misses.
// onComplete runs on the fetch goroutine; callers that own UI state must hand
// the result over to their own loop.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, onComplete func(*cache.Image)) {
	go func() {
		img, _, err := f.Load(ctx, rawURL)
		if err != nil {
			img = nil
		}
		if onComplete != nil {
			onComplete(img)
		}
	}()
}

// FetchChan is Fetch with the result delivered on a channel. Exactly one value
// is sent and the channel is then closed.
func (f *Fetcher) FetchChan(ctx context.Context, rawURL string) <-chan *cache.Image {
	ch := make(chan *cache.Image, 1)
	f.Fetch(ctx, rawURL, func(img *cache.Image) {
		ch <- img
		close(ch)
	})
	return ch
}

// Load synchronously resolves rawURL. cached reports whether the image came
// from the store. Failures are returned as ErrInvalidURL, ErrDecode,
// *TransportError or *StatusError.
func (f *Fetcher) Load(ctx context.Context, rawURL string) (img *cache.Image, cached bool, err error) {
	logger := log.WithFields(log.Fields{
		"fetch": uuid.NewString()[:8],
		"url":   rawURL,
	})

	if img, ok := f.store.Get(rawURL); ok {
		logger.Debug("image cache hit")
		f.metrics.CacheHit()
		return img, true, nil
	}
	f.metrics.CacheMiss()

	u, err := parseImageURL(rawURL)
	if err != nil {
		logger.WithError(err).Debug("rejecting image url")
		f.metrics.FetchFailed(metrics.ReasonInvalidURL)
		return nil, false, err
	}

	data, err := f.get(ctx, u)
	if err != nil {
		logger.WithError(err).Warn("image fetch failed")
		var se *StatusError
		if errors.As(err, &se) {
			f.metrics.FetchFailed(metrics.ReasonStatus)
		} else {
			f.metrics.FetchFailed(metrics.ReasonTransport)
		}
		return nil, false, err
	}

	bitmap, format, err := f.decoder.Decode(data)
	if err != nil || bitmap == nil {
		logger.WithError(err).Warnf("failed to decode %d bytes", len(data))
		f.metrics.FetchFailed(metrics.ReasonDecode)
		if err == nil {
			return nil, false, ErrDecode
		}
		return nil, false, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	img = &cache.Image{
		Key:    rawURL,
		Format: format,
		Size:   len(data),
		Bitmap: bitmap,
	}
	f.store.Set(rawURL, img)
	logger.WithField("format", format).Debugf("image cached (%d bytes)", len(data))

	return img, false, nil
}

// get performs exactly one GET and returns the body.
func (f *Fetcher) get(ctx context.Context, u *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &TransportError{URL: u.String(), Err: err}
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		f.metrics.FetchDone(0, time.Since(start))
		return nil, &TransportError{URL: u.String(), Err: err}
	}
	defer resp.Body.Close()

	var body bytes.Buffer
	n, err := body.ReadFrom(resp.Body)
	f.metrics.FetchDone(int(n), time.Since(start))
	if err != nil {
		return nil, &TransportError{URL: u.String(), Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: u.String(), StatusCode: resp.StatusCode}
	}

	return body.Bytes(), nil
}

// parseImageURL accepts only absolute http(s) URLs with a host.
func parseImageURL(rawURL string) (*url.URL, error) {
	if rawURL == "" {
		return nil, ErrInvalidURL
	}
	u, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidURL, rawURL)
	}
	return u, nil
}

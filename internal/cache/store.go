// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"image"
	"sort"
	"sync"

	"github.com/apex/log"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Image is a decoded image held by the store. Key is the clear-text URL the
// image was fetched from.
type Image struct {
	// Key is the source URL, used verbatim as the cache key.
	Key string
	// Format is the codec name reported by the decoder (jpeg, png, gif).
	Format string
	// Size is the length of the raw payload in bytes.
	Size int
	// Bitmap is the decoded image.
	Bitmap image.Image
}

// Bounds returns the pixel dimensions of the decoded image, or zeroes when
// there is no bitmap.
func (i *Image) Bounds() (width, height int) {
	if i == nil || i.Bitmap == nil {
		return 0, 0
	}
	b := i.Bitmap.Bounds()
	return b.Dx(), b.Dy()
}


// ImageStore maps URL strings to decoded images. Keys are never normalized, so
// two spellings of the same URL are two entries. By default the store is
// unbounded and lives for the life of the process.
type ImageStore struct {
	mu     sync.Mutex
	images map[string]*Image

	// bounded is set when WithMaxEntries asked for a limit and replaces images.
	bounded    *lru.Cache[string, *Image]
	maxEntries int
}

// Option customizes a new ImageStore.
type Option func(*ImageStore)

// WithMaxEntries bounds the store to n entries, evicting the least recently
// used entry when full. n <= 0 leaves the store unbounded.
func WithMaxEntries(n int) Option {
	return func(s *ImageStore) {
		if n > 0 {
			s.maxEntries = n
		}
	}
}

// New returns an empty ImageStore.
func New(opts ...Option) *ImageStore {
	s := &ImageStore{}
	for _, opt := range opts {
		opt(s)
	}

	if s.maxEntries > 0 {
		c, err := lru.NewWithEvict(s.maxEntries, func(key string, _ *Image) {
			log.Debugf("evicted %s", key)
		})
		if err == nil {
			s.bounded = c
			return s
		}
		log.WithError(err).Warn("falling back to an unbounded image store")
	}

	s.images = make(map[string]*Image)
	return s
}

// Get returns the image stored under key, if any.
func (s *ImageStore) Get(key string) (*Image, bool) {
	if s.bounded != nil {
		return s.bounded.Get(key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	img, ok := s.images[key]
	return img, ok
}

// Set inserts or overwrites the image stored under key. A nil image is
// ignored so that a hit always yields something renderable.
func (s *ImageStore) Set(key string, img *Image) {
	if img == nil {
		return
	}

	if s.bounded != nil {
		s.bounded.Add(key, img)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[key] = img
}

// Delete removes key from the store. Deleting an absent key is a no-op.
func (s *ImageStore) Delete(key string) {
	if s.bounded != nil {
		s.bounded.Remove(key)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.images, key)
}

// Clear drops every entry.
func (s *ImageStore) Clear() {
	if s.bounded != nil {
		s.bounded.Purge()
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = make(map[string]*Image)
}

// Len returns the number of stored images.
func (s *ImageStore) Len() int {
	if s.bounded != nil {
		return s.bounded.Len()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.images)
}

// Keys returns the stored keys in lexical order.
func (s *ImageStore) Keys() []string {
	var keys []string
	if s.bounded != nil {
		keys = s.bounded.Keys()
	} else {
		s.mu.Lock()
		keys = make([]string, 0, len(s.images))
		for k := range s.images {
			keys = append(keys, k)
		}
		s.mu.Unlock()
	}

	sort.Strings(keys)
	return keys
}

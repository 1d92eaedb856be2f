// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package cache

import (
	"fmt"
	"image"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newImage(key string) *Image {
	return &Image{
		Key:    key,
		Format: "png",
		Size:   16,
		Bitmap: image.NewRGBA(image.Rect(0, 0, 2, 3)),
	}
}

func TestImageStore_SetGet(t *testing.T) {
	s := New()
	img := newImage("https://example.com/1.jpeg")

	s.Set(img.Key, img)

	got, ok := s.Get(img.Key)
	require.True(t, ok)
	assert.Same(t, img, got)
	assert.Equal(t, 1, s.Len())
}

func TestImageStore_GetAbsent(t *testing.T) {
	s := New()

	got, ok := s.Get("https://example.com/missing.jpeg")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestImageStore_Overwrite(t *testing.T) {
	s := New()
	first := newImage("k")
	second := newImage("k")

	s.Set("k", first)
	s.Set("k", second)

	got, ok := s.Get("k")
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.Equal(t, 1, s.Len())
}

func TestImageStore_KeysAreNotNormalized(t *testing.T) {
	s := New()
	keys := []string{
		"https://example.com/a.jpeg",
		"https://example.com/a.jpeg/",
		"https://example.com/a.jpeg?x=1&y=2",
		"https://example.com/a.jpeg?y=2&x=1",
	}
	for _, k := range keys {
		s.Set(k, newImage(k))
	}

	assert.Equal(t, len(keys), s.Len())
	for _, k := range keys {
		got, ok := s.Get(k)
		require.True(t, ok, k)
		assert.Equal(t, k, got.Key)
	}
}

func TestImageStore_SetNilIgnored(t *testing.T) {
	s := New()
	s.Set("k", nil)

	_, ok := s.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestImageStore_DeleteClear(t *testing.T) {
	s := New()
	s.Set("a", newImage("a"))
	s.Set("b", newImage("b"))

	s.Delete("a")
	s.Delete("not-there")
	_, ok := s.Get("a")
	assert.False(t, ok)
	assert.Equal(t, []string{"b"}, s.Keys())

	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Keys())
}

func TestImageStore_Keys(t *testing.T) {
	s := New()
	for _, k := range []string{"c", "a", "b"} {
		s.Set(k, newImage(k))
	}
	assert.Equal(t, []string{"a", "b", "c"}, s.Keys())
}

func TestImageStore_MaxEntries(t *testing.T) {
	s := New(WithMaxEntries(2))

	s.Set("a", newImage("a"))
	s.Set("b", newImage("b"))

	// Touch a so that b becomes the eviction candidate.
	_, ok := s.Get("a")
	require.True(t, ok)

	s.Set("c", newImage("c"))

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"a", "c"}, s.Keys())
}

func TestImageStore_BoundedOperations(t *testing.T) {
	tests := []struct {
		name string
		ops  func(s *ImageStore)
		want []string
	}{
		{
			name: "oldest evicted first",
			ops: func(s *ImageStore) {
				for _, k := range []string{"a", "b", "c", "d"} {
					s.Set(k, newImage(k))
				}
			},
			want: []string{"b", "c", "d"},
		},
		{
			name: "overwrite promotes",
			ops: func(s *ImageStore) {
				for _, k := range []string{"a", "b", "c", "a", "d"} {
					s.Set(k, newImage(k))
				}
			},
			want: []string{"a", "c", "d"},
		},
		{
			name: "miss does not promote",
			ops: func(s *ImageStore) {
				for _, k := range []string{"a", "b", "c"} {
					s.Set(k, newImage(k))
				}
				_, _ = s.Get("z")
				s.Set("d", newImage("d"))
			},
			want: []string{"b", "c", "d"},
		},
		{
			name: "delete frees a slot",
			ops: func(s *ImageStore) {
				for _, k := range []string{"a", "b", "c"} {
					s.Set(k, newImage(k))
				}
				s.Delete("b")
				s.Set("d", newImage("d"))
			},
			want: []string{"a", "c", "d"},
		},
		{
			name: "clear empties",
			ops: func(s *ImageStore) {
				s.Set("a", newImage("a"))
				s.Clear()
				s.Set("b", newImage("b"))
			},
			want: []string{"b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(WithMaxEntries(3))
			tt.ops(s)
			assert.Equal(t, tt.want, s.Keys())
			assert.Equal(t, len(tt.want), s.Len())
		})
	}
}

func TestImageStore_MaxEntriesZeroIsUnbounded(t *testing.T) {
	s := New(WithMaxEntries(0))
	for i := 0; i < 100; i++ {
		k := fmt.Sprintf("k%d", i)
		s.Set(k, newImage(k))
	}
	assert.Equal(t, 100, s.Len())
}

func TestImageStore_Concurrent(t *testing.T) {
	s := New()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			k := fmt.Sprintf("https://example.com/%d.jpeg", i%8)
			s.Set(k, newImage(k))
			_, _ = s.Get(k)
			_ = s.Keys()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 8, s.Len())
}

func TestImage_Bounds(t *testing.T) {
	w, h := newImage("k").Bounds()
	assert.Equal(t, 2, w)
	assert.Equal(t, 3, h)

	var nilImage *Image
	w, h = nilImage.Bounds()
	assert.Zero(t, w)
	assert.Zero(t, h)
}

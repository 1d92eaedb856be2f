// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package preview

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestClampWidth(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, DefaultWidth},
		{-3, DefaultWidth},
		{1, MinWidth},
		{4, 4},
		{80, 80},
		{500, MaxWidth},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampWidth(tt.in), "ClampWidth(%d)", tt.in)
	}
}

func TestSize(t *testing.T) {
	tests := []struct {
		name       string
		img        image.Image
		width      int
		cols, rows int
	}{
		{"nil", nil, 10, 0, 0},
		{"empty", image.NewRGBA(image.Rect(0, 0, 0, 0)), 10, 0, 0},
		{"square portrait", solid(300, 300, color.White), 20, 20, 10},
		{"wide", solid(200, 100, color.White), 40, 40, 10},
		{"odd pixel rows round up", solid(10, 10, color.White), 5, 5, 3},
		{"never wider than source", solid(8, 8, color.White), 50, 8, 4},
		{"very flat keeps one row", solid(400, 1, color.White), 10, 10, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols, rows := Size(tt.img, tt.width)
			assert.Equal(t, tt.cols, cols)
			assert.Equal(t, tt.rows, rows)
		})
	}
}

func TestRender(t *testing.T) {
	out := Render(solid(300, 300, color.RGBA{R: 0x97, G: 0xce, B: 0x4c, A: 0xff}), 12)

	lines := strings.Split(ansi.Strip(out), "\n")
	assert.Len(t, lines, 6)
	for _, line := range lines {
		assert.Equal(t, strings.Repeat(upperHalf, 12), line)
	}
}

func TestRender_Nil(t *testing.T) {
	assert.Equal(t, "", Render(nil, 10))
}

func TestRender_OffsetBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(10, 10, 20, 20))
	lines := strings.Split(ansi.Strip(Render(img, 4)), "\n")
	assert.Len(t, lines, 2)
}

func TestHex(t *testing.T) {
	assert.Equal(t, "#97ce4c", Hex(color.RGBA{R: 0x97, G: 0xce, B: 0x4c, A: 0xff}))
	assert.Equal(t, "#000000", Hex(color.Transparent))
	assert.Equal(t, "#ffffff", Hex(color.White))
}

// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package preview

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
)

const (
	MinWidth     = 4
	MaxWidth     = 200
	DefaultWidth = 32

	upperHalf = "▀"
)

// ClampWidth bounds w to [MinWidth, MaxWidth]. Zero or less yields
// DefaultWidth.
func ClampWidth(w int) int {
	switch {
	case w <= 0:
		return DefaultWidth
	case w < MinWidth:
		return MinWidth
	case w > MaxWidth:
		return MaxWidth
	}
	return w
}

// Size returns the number of columns and text rows Render uses for img at
// the given width.
func Size(img image.Image, width int) (cols, rows int) {
	if img == nil {
		return 0, 0
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return 0, 0
	}

	cols = ClampWidth(width)
	if cols > b.Dx() {
		cols = b.Dx()
	}

	// Terminal cells are roughly twice as tall as wide and each holds two
	// pixel rows, so the pixel height scales with the width.
	pixelRows := b.Dy() * cols / b.Dx()
	if pixelRows < 1 {
		pixelRows = 1
	}
	return cols, (pixelRows + 1) / 2
}

// Render returns img scaled to width columns with nearest neighbour sampling.
// A nil or empty image renders as "".
func Render(img image.Image, width int) string {
	cols, rows := Size(img, width)
	if cols == 0 {
		return ""
	}

	b := img.Bounds()
	pixelRows := rows * 2

	sample := func(x, y int) color.Color {
		sx := b.Min.X + x*b.Dx()/cols
		sy := b.Min.Y + y*b.Dy()/pixelRows
		if sy >= b.Max.Y {
			sy = b.Max.Y - 1
		}
		return img.At(sx, sy)
	}

	var sb strings.Builder
	for row := 0; row < rows; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}
		for col := 0; col < cols; col++ {
			top := sample(col, row*2)
			bottom := sample(col, row*2+1)
			sb.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(Hex(top))).
				Background(lipgloss.Color(Hex(bottom))).
				Render(upperHalf))
		}
	}

	return sb.String()
}

// Hex formats c as #rrggbb, compositing any transparency onto black.
func Hex(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}

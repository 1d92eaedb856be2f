// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package preview draws decoded images in a terminal. Each text cell covers
// two vertically stacked pixels: the upper half block glyph takes the top
// pixel as its foreground and the bottom pixel as its background.
package preview

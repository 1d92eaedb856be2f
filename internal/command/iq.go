// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"time"

	"github.com/apex/log"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/staranto/rmctl/internal/fetcher"
	"github.com/staranto/rmctl/internal/meta"
	"github.com/staranto/rmctl/internal/metrics"
	"github.com/staranto/rmctl/internal/preview"
)

// ImageRow is one resolved portrait as emitted by iq.
type ImageRow struct {
	Pass    int     `json:"pass"`
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Image   string  `json:"image"`
	Format  string  `json:"format"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Bytes   int     `json:"bytes"`
	Cached  bool    `json:"cached"`
	OK      bool    `json:"ok"`
	Error   string  `json:"error"`
	Elapsed float64 `json:"elapsed"`
}

// imageTarget is an image to resolve and the character it belongs to, if any.
type imageTarget struct {
	ID   int
	Name string
	URL  string
}

// resolveImages runs one pass over targets through f, at most concurrency at
// a time. Rows come back in target order.
func resolveImages(ctx context.Context, f *fetcher.Fetcher, targets []imageTarget, concurrency int, pass int) []ImageRow {
	rows := make([]ImageRow, len(targets))

	var g errgroup.Group
	g.SetLimit(concurrency)

	for i, target := range targets {
		g.Go(func() error {
			start := time.Now()
			img, cached, err := f.Load(ctx, target.URL)

			row := ImageRow{
				Pass:    pass,
				ID:      target.ID,
				Name:    target.Name,
				Image:   target.URL,
				Cached:  cached,
				OK:      err == nil,
				Elapsed: float64(time.Since(start).Microseconds()) / 1000,
			}
			if err != nil {
				row.Error = err.Error()
			} else {
				row.Format = img.Format
				row.Bytes = img.Size
				row.Width, row.Height = img.Bounds()
			}
			rows[i] = row
			return nil
		})
	}
	_ = g.Wait()

	return rows
}

// imageTargets returns the positional URLs, or the portraits of the
// characters matching the selection flags when there are none.
func imageTargets(ctx context.Context, cmd *cli.Command, m meta.Meta) ([]imageTarget, error) {
	if cmd.Args().Len() > 0 {
		var targets []imageTarget
		for _, u := range cmd.Args().Slice() {
			targets = append(targets, imageTarget{URL: u})
		}
		return targets, nil
	}

	characters, _, err := NewCharacterClient(cmd, m).ListAll(ctx, QueryFromCommand(cmd), cmd.Int("pages"))
	if err != nil {
		return nil, err
	}

	targets := make([]imageTarget, 0, len(characters))
	for _, c := range characters {
		targets = append(targets, imageTarget{ID: c.ID, Name: c.Name, URL: c.Image})
	}
	return targets, nil
}

// IqCommandAction is the action handler for the "iq" subcommand. It resolves
// character portraits through the shared image store and reports one row per
// image and pass.
func IqCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	f := NewFetcher(m)

	defaults := []string{"id", "name", "format", "width", "height", "bytes::h", "cached", "ok"}
	if cmd.Int("repeat") > 1 {
		defaults = append([]string{"pass"}, defaults...)
	}

	runner := &QueryActionRunner{
		CommandName:  "iq",
		SchemaType:   reflect.TypeOf(ImageRow{}),
		DefaultAttrs: defaults,
		FetchFn: func(ctx context.Context, cmd *cli.Command) (bytes.Buffer, error) {
			targets, err := imageTargets(ctx, cmd, m)
			if err != nil {
				return bytes.Buffer{}, err
			}

			var rows []ImageRow
			for pass := 1; pass <= cmd.Int("repeat"); pass++ {
				passCtx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
				rows = append(rows, resolveImages(passCtx, f, targets, cmd.Int("concurrency"), pass)...)
				cancel()
				log.Debugf("pass %d done, %d images in store", pass, f.Store().Len())
			}

			var raw bytes.Buffer
			if err := json.NewEncoder(&raw).Encode(rows); err != nil {
				return bytes.Buffer{}, fmt.Errorf("failed to encode image rows: %w", err)
			}
			return raw, nil
		},
		AfterFn: func(ctx context.Context, cmd *cli.Command) error {
			w := Writer(cmd)
			if cmd.Bool("preview") {
				writePreviews(w, f, cmd)
			}
			if cmd.Bool("stats") {
				writeStats(w, m.Metrics, f.Store().Len())
			}
			return nil
		},
	}
	return runner.Run(ctx, cmd)
}

// writePreviews draws every image in the store, in key order.
func writePreviews(w io.Writer, f *fetcher.Fetcher, cmd *cli.Command) {
	width := PreviewWidth(cmd.Int("width"))
	for _, key := range f.Store().Keys() {
		img, ok := f.Store().Get(key)
		if !ok {
			continue
		}
		fmt.Fprintln(w, key)
		fmt.Fprintln(w, preview.Render(img.Bitmap, width))
	}
}

// writeStats prints the cache and fetch counters.
func writeStats(w io.Writer, m *metrics.Metrics, entries int) {
	rows := [][]string{{"cache entries", "", humanize.Comma(int64(entries))}}
	for _, s := range m.Snapshot() {
		value := humanize.Ftoa(s.Value)
		if s.Name == "rmctl_image_fetch_bytes_total" {
			value = humanize.Bytes(uint64(s.Value))
		}
		rows = append(rows, []string{s.Name, s.Labels, value})
	}

	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		Headers("Metric", "Labels", "Value").
		BorderHeader(false).
		Rows(rows...)

	fmt.Fprintln(w, t)
}

// PreviewWidth resolves a --width value. Zero means fit the terminal, or the
// default width when stdout is not a terminal.
func PreviewWidth(width int) int {
	if width > 0 {
		return preview.ClampWidth(width)
	}
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if cols, _, err := term.GetSize(fd); err == nil {
			return preview.ClampWidth(cols / 2)
		}
	}
	return preview.DefaultWidth
}

// IqCommandBuilder constructs the cli.Command definition for the "iq" command,
// wiring flags, metadata, and the action/validator handlers.
func IqCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	flags := append(NewSelectionFlags("iq"), NewFetchFlags("iq")...)
	flags = append(flags,
		&cli.IntFlag{
			Name:    "repeat",
			Aliases: []string{"r"},
			Usage:   "resolve the images this many times",
			Value:   1,
			Validator: func(value int) error {
				return FlagValidators(value, PositiveValidator)
			},
		},
		&cli.BoolFlag{
			Name:        "preview",
			Usage:       "draw each image in the terminal",
			HideDefault: true,
		},
		&cli.BoolFlag{
			Name:        "stats",
			Usage:       "print cache and fetch counters",
			HideDefault: true,
		},
	)

	return (&QueryCommandBuilder{
		Name:      "iq",
		Usage:     "image query",
		UsageText: `rmctl iq [URL...] [options]`,
		Flags:     flags,
		Action:    IqCommandAction,
		Meta:      meta,
	}).Build()
}

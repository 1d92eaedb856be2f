// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT
package command

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/rmctl/internal/cache"
	"github.com/staranto/rmctl/internal/config"
	"github.com/staranto/rmctl/internal/meta"
	"github.com/staranto/rmctl/internal/metrics"
	"github.com/staranto/rmctl/internal/version"
)

// httpTimeout bounds a single request when the config does not set
// http_timeout.
const httpTimeout = 30 * time.Second

func InitApp(ctx context.Context, args []string) (*cli.Command, error) {

	// The arg[1] immediately following the binary (arg[0]) is the rmctl
	// subcommand and also represents the namespace key to be used when retrieving
	// config values. arg[1] could be -h/--help, so ignore it if it appears to be
	// a flag.
	var ns string
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		ns = args[1]
	}

	config.Config.Namespace = ns
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Debug("running without a config file")
	}

	timeout := httpTimeout
	if s, err := config.GetString("http_timeout"); err == nil {
		if d, err := time.ParseDuration(s); err == nil {
			timeout = d
		}
	}

	// The store lives for the life of the process and is shared by every
	// command that resolves portraits.
	maxEntries, _ := config.GetInt("cache.max_entries", 0)

	meta := meta.Meta{
		Args:       args,
		Config:     cfg,
		Context:    ctx,
		HTTPClient: &http.Client{Timeout: timeout},
		Metrics:    metrics.New(),
		Store:      cache.New(cache.WithMaxEntries(maxEntries)),
		UserAgent:  version.UserAgent(),
	}

	app := &cli.Command{
		Name:  "rmctl",
		Usage: "Rick and Morty character control",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "rmctl version info",
				HideDefault: true,
			},
		},
	}

	app.Commands = append(app.Commands,
		BrowseCommandBuilder(app, meta),
		CqCommandBuilder(app, meta),
		IqCommandBuilder(app, meta),
		CompletionCommandBuilder(app, meta),
	)

	// Make sure flags are sorted for the --help text.
	for _, cmd := range app.Commands {
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
	}

	return app, nil
}

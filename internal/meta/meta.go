// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package meta

import (
	"context"
	"net/http"

	"github.com/staranto/rmctl/internal/cache"
	"github.com/staranto/rmctl/internal/config"
	"github.com/staranto/rmctl/internal/metrics"
)

// Meta are the meta-options that are available on all or most commands. The
// image store and metrics are created once per process and shared by every
// command that resolves portraits.
type Meta struct {
	Args       []string
	Config     config.Type
	Context    context.Context
	HTTPClient *http.Client
	Metrics    *metrics.Metrics
	Store      *cache.ImageStore
	UserAgent  string
}

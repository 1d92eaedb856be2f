// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package character

import (
	"context"
	"fmt"
)

// PageFetcher fetches the page identified by next and returns its items and
// the link to the following page. next is empty on the first call; an empty
// returned link ends pagination.
type PageFetcher[T any] func(ctx context.Context, next string) ([]T, string, error)

// Paginate[T] drives a PageFetcher until there are no more pages or maxPages
// pages have been read. maxPages <= 0 means no limit.
func Paginate[T any](ctx context.Context, maxPages int, fetch PageFetcher[T]) ([]T, error) {
	var (
		results []T
		next    string
		seen    = map[string]bool{}
	)

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		items, link, err := fetch(ctx, next)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch page %d: %w", page, err)
		}
		results = append(results, items...)

		if link == "" || (maxPages > 0 && page >= maxPages) {
			break
		}

		// A server handing back a link we've already followed would loop forever.
		if seen[link] {
			return nil, fmt.Errorf("pagination loop at %s", link)
		}
		seen[link] = true
		next = link
	}

	return results, nil
}

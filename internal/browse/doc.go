// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package browse is the interactive character browser. A scrollable list of
// characters sits next to a half-block preview of the selected character's
// portrait. Portraits are resolved lazily through the image fetcher, and
// results are posted back into the program so model state only changes on
// the UI loop.
package browse

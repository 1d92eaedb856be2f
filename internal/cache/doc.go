// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package cache provides the in-memory image store used to avoid refetching
// character portraits that have already been downloaded and decoded.
package cache

// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package driller

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// segmentRegex splits a path segment into its key and optional [n] index.
var segmentRegex = regexp.MustCompile(`^(.*?)(?:\[(\d+)\])?$`)

// Driller resolves path against doc. Segments are separated by '.', and each
// may carry an explicit [n] index. A single-element array is transparently
// unwrapped, both when drilling through it and when it is the final value, so
// "items.id" works against {"items":[{"id":1}]}. A missing path yields the
// zero gjson.Result.
func Driller(doc string, path string) gjson.Result {
	current := gjson.Parse(doc)

	for _, segment := range strings.Split(path, ".") {
		parts := segmentRegex.FindStringSubmatch(segment)
		if parts == nil {
			return gjson.Result{}
		}
		key, index := parts[1], parts[2]

		current = unwrap(current)
		if key != "" {
			current = current.Get(escape(key))
		}
		if !current.Exists() {
			return gjson.Result{}
		}

		if index != "" {
			if !current.IsArray() {
				return gjson.Result{}
			}
			i, _ := strconv.Atoi(index)
			items := current.Array()
			if i >= len(items) {
				return gjson.Result{}
			}
			current = items[i]
		}
	}

	return unwrap(current)
}

func unwrap(r gjson.Result) gjson.Result {
	if r.IsArray() {
		if items := r.Array(); len(items) == 1 {
			return items[0]
		}
	}
	return r
}

// escape protects gjson path syntax characters that may legitimately appear
// in a key.
func escape(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '*', '?', '|', '#', '@', '!', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package output

import (
	"sort"
	"strings"
)

// sortKey is one parsed entry of a --sort spec.
type sortKey struct {
	name          string
	descending    bool
	caseSensitive bool
}

// parseSortSpec splits a --sort spec such as "-status,!name" into keys. A
// leading - sorts descending and a leading ! compares case-sensitively; the
// two may appear in either order.
func parseSortSpec(spec string) []sortKey {
	var keys []sortKey
	for _, field := range strings.Split(spec, ",") {
		field = strings.TrimSpace(field)
		key := sortKey{}
		for len(field) > 0 && (field[0] == '-' || field[0] == '!') {
			if field[0] == '-' {
				key.descending = true
			} else {
				key.caseSensitive = true
			}
			field = field[1:]
		}
		if field == "" {
			continue
		}
		key.name = field
		keys = append(keys, key)
	}
	return keys
}

// SortDataset sorts rows in place by the keys in spec. Rows equal on every
// key keep their relative order. Missing values sort after present ones
// regardless of direction.
func SortDataset(rows []map[string]interface{}, spec string) {
	keys := parseSortSpec(spec)
	if len(keys) == 0 {
		return
	}

	sort.SliceStable(rows, func(i, j int) bool {
		for _, key := range keys {
			c := compareValues(rows[i][key.name], rows[j][key.name], key.caseSensitive)
			if c == 0 {
				continue
			}
			if key.descending && !isMissing(rows[i][key.name]) && !isMissing(rows[j][key.name]) {
				c = -c
			}
			return c < 0
		}
		return false
	})
}

func isMissing(v interface{}) bool {
	return v == nil
}

// compareValues orders two cell values. Numbers compare numerically, anything
// else compares by its string form.
func compareValues(a, b interface{}, caseSensitive bool) int {
	switch {
	case isMissing(a) && isMissing(b):
		return 0
	case isMissing(a):
		return 1
	case isMissing(b):
		return -1
	}

	if fa, ok := a.(float64); ok {
		if fb, ok := b.(float64); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			default:
				return 0
			}
		}
	}

	sa, sb := InterfaceToString(a), InterfaceToString(b)
	if !caseSensitive {
		sa, sb = strings.ToLower(sa), strings.ToLower(sb)
	}
	return strings.Compare(sa, sb)
}

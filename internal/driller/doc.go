// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package driller walks JSON documents by dotted path so commands can pull
// nested character attributes such as location.name or episode[0].
package driller

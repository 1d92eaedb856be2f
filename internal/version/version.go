// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package version

import "fmt"

// Version is stamped at build time with
// -ldflags "-X github.com/staranto/rmctl/internal/version.Version=v1.2.3".
var Version = "dev"

// UserAgent is sent with every API and image request.
func UserAgent() string {
	return fmt.Sprintf("rmctl/%s", Version)
}

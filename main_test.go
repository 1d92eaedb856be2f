// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/staranto/rmctl/internal/config"
)

func TestMangleArguments(t *testing.T) {
	t.Setenv(config.EnvVar, filepath.Join("internal", "config", "testdata", "sets.yaml"))
	config.Config = config.Type{}
	t.Cleanup(func() { config.Config = config.Type{} })

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "defaults applied",
			args: []string{"rmctl", "cq", "--name", "rick"},
			want: []string{"rmctl", "cq", "--attrs", "id,name,status", "--sort", "name", "--name", "rick"},
		},
		{
			name: "named set replaces defaults",
			args: []string{"rmctl", "cq", "@dead", "-o", "json"},
			want: []string{"rmctl", "cq", "--status", "dead", "-o", "json"},
		},
		{
			name: "single string set",
			args: []string{"rmctl", "iq", "--stats"},
			want: []string{"rmctl", "iq", "--concurrency", "8", "--stats"},
		},
		{
			name: "unknown set",
			args: []string{"rmctl", "cq", "@nope", "--pages", "0"},
			want: []string{"rmctl", "cq", "--pages", "0"},
		},
		{
			name: "malformed set ignored",
			args: []string{"rmctl", "cq", "@broken"},
			want: []string{"rmctl", "cq"},
		},
		{
			name: "no sets for command",
			args: []string{"rmctl", "browse"},
			want: []string{"rmctl", "browse"},
		},
		{
			name: "help short circuits",
			args: []string{"rmctl", "cq", "--name", "rick", "-h"},
			want: []string{"rmctl", "cq", "--help"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mangleArguments(tt.args))
		})
	}
}

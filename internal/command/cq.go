// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"context"
	"reflect"

	"github.com/urfave/cli/v3"

	"github.com/staranto/rmctl/internal/character"
	"github.com/staranto/rmctl/internal/meta"
)

// CqCommandAction is the action handler for the "cq" subcommand. It lists
// characters matching the selection flags, supporting short-circuit behavior
// for --tldr and --schema, and emits results according to common output/attr
// flags.
func CqCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner{
		CommandName:  "cq",
		SchemaType:   reflect.TypeOf(character.Character{}),
		DefaultAttrs: []string{"id", "name", "status", "species"},
		FetchFn: func(ctx context.Context, cmd *cli.Command) (bytes.Buffer, error) {
			client := NewCharacterClient(cmd, GetMeta(cmd))
			_, raw, err := client.ListAll(ctx, QueryFromCommand(cmd), cmd.Int("pages"))
			return raw, err
		},
	}
	return runner.Run(ctx, cmd)
}

// CqCommandBuilder constructs the cli.Command definition for the "cq" command,
// wiring flags, metadata, and the action/validator handlers.
func CqCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "cq",
		Usage:     "character query",
		UsageText: `rmctl cq [options]`,
		Flags:     NewSelectionFlags("cq"),
		Action:    CqCommandAction,
		Meta:      meta,
	}).Build()
}

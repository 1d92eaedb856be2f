// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"os"

	"github.com/apex/log"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/staranto/rmctl/internal/browse"
	"github.com/staranto/rmctl/internal/meta"
)

// ErrNotTerminal is returned when browse is started without a terminal on
// stdout.
var ErrNotTerminal = errors.New("browse needs an interactive terminal, try cq or iq instead")

// BrowseCommandAction is the action handler for the "browse" subcommand. It
// lists the characters matching the selection flags and opens the
// interactive browser over them.
func BrowseCommandAction(ctx context.Context, cmd *cli.Command) error {
	if ShortCircuitTLDR(ctx, cmd, "browse") {
		return nil
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return ErrNotTerminal
	}

	m := GetMeta(cmd)

	characters, _, err := NewCharacterClient(cmd, m).ListAll(ctx, QueryFromCommand(cmd), cmd.Int("pages"))
	if err != nil {
		return err
	}
	log.Debugf("browsing %d characters", len(characters))

	model := browse.New(ctx, NewFetcher(m), characters, cmd.Int("width"))
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	model.SetSend(p.Send)

	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// BrowseCommandBuilder constructs the cli.Command definition for the
// "browse" command.
func BrowseCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	flags := append(NewSelectionFlags("browse"), NewWidthFlag("browse"), NewAPIFlag("browse"), newTLDRFlag())

	return &cli.Command{
		Name:      "browse",
		Usage:     "browse characters and their portraits",
		UsageText: `rmctl browse [options]`,
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags:  flags,
		Action: BrowseCommandAction,
	}
}

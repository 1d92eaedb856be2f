// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"reflect"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/rmctl/internal/attrs"
	"github.com/staranto/rmctl/internal/character"
	"github.com/staranto/rmctl/internal/fetcher"
	"github.com/staranto/rmctl/internal/filters"
	"github.com/staranto/rmctl/internal/meta"
	"github.com/staranto/rmctl/internal/output"
)

// ShortCircuitTLDR checks the --tldr flag and, if present and available,
// runs `tldr rmctl <subcmd>` and returns true so the caller can exit early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if cmd.Bool("tldr") {
		if _, err := exec.LookPath("tldr"); err == nil {
			c := exec.CommandContext(ctx, "tldr", "rmctl", subcmd)
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			_ = c.Run()
		}
		return true
	}
	return false
}

// DumpSchemaIfRequested prints the attribute schema for the provided type
// when --schema is set, and returns true if it handled the request.
func DumpSchemaIfRequested(cmd *cli.Command, t reflect.Type) bool {
	if cmd.Bool("schema") && t != nil {
		output.DumpSchema(Writer(cmd), t)
		return true
	}
	return false
}

// BuildAttrs constructs an AttrList with defaults and optional extras from
// --attrs, then applies the global transform spec.
func BuildAttrs(cmd *cli.Command, defaults ...string) (al attrs.AttrList) {
	//nolint:errcheck
	{
		for _, d := range defaults {
			al.Set(d)
		}
		if extras := cmd.String("attrs"); extras != "" {
			al.Set(extras)
		}
		al.SetGlobalTransformSpec()
	}
	return
}

// Writer returns the writer results go to. Tests swap the root command's
// Writer for a buffer.
func Writer(cmd *cli.Command) io.Writer {
	if cmd != nil && cmd.Root() != nil && cmd.Root().Writer != nil {
		return cmd.Root().Writer
	}
	return os.Stdout
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// QueryFromCommand builds the server side character query. Selection flags
// win over native filters (_name=rick) given in --filter.
func QueryFromCommand(cmd *cli.Command) character.Query {
	native := filters.Native(cmd.String("filter"))

	pick := func(flag string) string {
		if v := cmd.String(flag); v != "" {
			return v
		}
		return native[flag]
	}

	return character.Query{
		Name:    pick("name"),
		Status:  strings.ToLower(pick("status")),
		Species: pick("species"),
		Type:    pick("type"),
		Gender:  strings.ToLower(pick("gender")),
	}
}

// NewCharacterClient returns a character client for the --api root, sharing
// the process wide HTTP client and metrics.
func NewCharacterClient(cmd *cli.Command, m meta.Meta) *character.Client {
	return character.New(
		character.WithBaseURL(cmd.String("api")),
		character.WithHTTPClient(m.HTTPClient),
		character.WithUserAgent(m.UserAgent),
		character.WithMetrics(m.Metrics),
	)
}

// NewFetcher returns an image fetcher over the process wide image store.
func NewFetcher(m meta.Meta) *fetcher.Fetcher {
	return fetcher.New(m.Store,
		fetcher.WithHTTPClient(m.HTTPClient),
		fetcher.WithUserAgent(m.UserAgent),
		fetcher.WithMetrics(m.Metrics),
	)
}

// QueryCommandBuilder is a helper that constructs a cli.Command for query
// subcommands (cq, iq) using a consistent pattern. The builder wires
// metadata, adds the api, tldr, schema and global flags and sets up
// validators.
type QueryCommandBuilder struct {
	Name      string
	Usage     string
	UsageText string
	Flags     []cli.Flag
	Action    func(context.Context, *cli.Command) error
	Meta      meta.Meta
}

// Build returns a configured cli.Command from the builder.
func (qcb *QueryCommandBuilder) Build() *cli.Command {
	flags := append([]cli.Flag{}, qcb.Flags...)
	flags = append(flags, NewAPIFlag(qcb.Name), newTLDRFlag(), newSchemaFlag())
	flags = append(flags, NewGlobalFlags(qcb.Name)...)

	return &cli.Command{
		Name:      qcb.Name,
		Usage:     qcb.Usage,
		UsageText: qcb.UsageText,
		Metadata: map[string]any{
			"meta": qcb.Meta,
		},
		Flags: flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: qcb.Action,
	}
}

// QueryActionRunner encapsulates the common query action pattern for all
// query subcommands. FetchFn supplies the dataset as a JSON array; everything
// else (short circuits, attrs, output) is shared. AfterFn, when set, runs once
// the results have been written.
type QueryActionRunner struct {
	CommandName  string
	SchemaType   reflect.Type
	DefaultAttrs []string
	FetchFn      func(context.Context, *cli.Command) (bytes.Buffer, error)
	AfterFn      func(context.Context, *cli.Command) error
}

// Run executes the query action with the provided context and command.
func (qar *QueryActionRunner) Run(
	ctx context.Context,
	cmd *cli.Command,
) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args)

	if ShortCircuitTLDR(ctx, cmd, qar.CommandName) {
		return nil
	}
	if DumpSchemaIfRequested(cmd, qar.SchemaType) {
		return nil
	}

	attrs := BuildAttrs(cmd, qar.DefaultAttrs...)
	log.Debugf("attrs: %v", attrs.String())

	raw, err := qar.FetchFn(ctx, cmd)
	if err != nil {
		return err
	}

	output.SliceDiceSpit(raw, attrs, cmd, "", Writer(cmd))

	if qar.AfterFn != nil {
		return qar.AfterFn(ctx, cmd)
	}
	return nil
}

// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"os/exec"
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/rmctl/internal/character"
	"github.com/staranto/rmctl/internal/config"
)

func init() {
	cfg, _ = config.Load()
}

var cfg config.Type

// newSchemaFlag returns a fresh --schema flag. Flags hold their parsed value
// and are not shared between commands.
func newSchemaFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "schema",
		Usage:       "dump the schema",
		HideDefault: true,
	}
}

func newTLDRFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "tldr",
		Usage:       "show tldr page",
		Hidden:      !pathHas("tldr"),
		HideDefault: true,
	}
}

// configSources builds a value chain of env vars followed by the namespaced
// and then the global key in the config file.
func configSources(ns string, key string, envs ...string) cli.ValueSourceChain {
	chain := cli.NewValueSourceChain()
	for _, e := range envs {
		chain.Chain = append(chain.Chain, cli.EnvVar(e))
	}
	if ns != "" {
		chain.Chain = append(chain.Chain, yaml.YAML(ns+"."+key, altsrc.StringSourcer(cfg.Source)))
	}
	chain.Chain = append(chain.Chain, yaml.YAML(key, altsrc.StringSourcer(cfg.Source)))
	return chain
}

func NewGlobalFlags(ns string) (flags []cli.Flag) {
	flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "attrs",
			Aliases: []string{"a"},
			Usage:   "comma-separated list of attributes to include in results",
		},
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: configSources(ns, "color"),
			Value:   false,
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
		},
		&cli.BoolFlag{
			Name:        "local",
			Aliases:     []string{"l"},
			Usage:       "show timestamps in the configured timezone",
			Sources:     configSources(ns, "local"),
			HideDefault: true,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format",
			Sources: configSources(ns, "output"),
			Value:   "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of attributes to sort the results by",
			Sources: configSources(ns, "sort"),
		},
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: configSources(ns, "titles"),
			Value:   false,
		},
	}

	return
}

// NewAPIFlag constructs the --api flag naming the API root. It is resolved
// from RMCTL_API, then the namespaced and global "api" config keys.
func NewAPIFlag(ns string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "api",
		Usage:   "API root to query",
		Sources: configSources(ns, "api", "RMCTL_API"),
		Value:   character.DefaultBaseURL,
		Validator: func(value string) error {
			return FlagValidators(value, JammedFlagValidator, URLValidator)
		},
	}
}

// NewSelectionFlags constructs the flags that narrow the character listing on
// the server side.
func NewSelectionFlags(ns string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "name",
			Aliases: []string{"n"},
			Usage:   "characters whose name contains this text",
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator)
			},
		},
		&cli.StringFlag{
			Name:  "status",
			Usage: "alive, dead or unknown",
			Validator: func(value string) error {
				return FlagValidators(value, StatusValidator)
			},
		},
		&cli.StringFlag{
			Name:  "species",
			Usage: "characters of this species",
		},
		&cli.StringFlag{
			Name:  "type",
			Usage: "characters of this type or subspecies",
		},
		&cli.StringFlag{
			Name:  "gender",
			Usage: "female, male, genderless or unknown",
			Validator: func(value string) error {
				return FlagValidators(value, GenderValidator)
			},
		},
		&cli.IntFlag{
			Name:    "pages",
			Aliases: []string{"p"},
			Usage:   "maximum number of result pages to read, 0 for all",
			Sources: configSources(ns, "pages"),
			Value:   1,
			Validator: func(value int) error {
				return FlagValidators(value, NonNegativeValidator)
			},
		},
	}
}

// NewFetchFlags constructs the flags shared by commands that resolve images.
func NewFetchFlags(ns string) []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "concurrency",
			Aliases: []string{"j"},
			Usage:   "number of images fetched at once",
			Sources: configSources(ns, "concurrency", "RMCTL_CONCURRENCY"),
			Value:   4,
			Validator: func(value int) error {
				return FlagValidators(value, PositiveValidator)
			},
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Usage:   "timeout for each pass over the images",
			Sources: configSources(ns, "timeout"),
			Value:   30 * time.Second,
			Validator: func(value time.Duration) error {
				return FlagValidators(value, PositiveDurationValidator)
			},
		},
		NewWidthFlag(ns),
	}
}

// NewWidthFlag constructs the --width flag for portrait previews.
func NewWidthFlag(ns string) *cli.IntFlag {
	return &cli.IntFlag{
		Name:    "width",
		Aliases: []string{"W"},
		Usage:   "preview width in columns, 0 to fit the terminal",
		Sources: configSources(ns, "width"),
		Value:   0,
		Validator: func(value int) error {
			return FlagValidators(value, NonNegativeValidator)
		},
	}
}

// pathHas reports whether target is an executable on PATH.
func pathHas(target string) bool {
	_, err := exec.LookPath(target)
	return err == nil
}

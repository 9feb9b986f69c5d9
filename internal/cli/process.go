package cli

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"dbsubst/internal/diff"
	"dbsubst/internal/processor"
)

func validate(cfg Config) error {
	if cfg.Source == "" {
		return errors.New("--source is required")
	}
	if cfg.DB && cfg.Rotate {
		return errors.New("--db and --rotate are mutually exclusive")
	}
	if cfg.Random && cfg.Replace != "" {
		return errors.New("--random and --replace are mutually exclusive")
	}
	if (cfg.DB || cfg.Rotate) && cfg.Find != "" {
		return errors.New("--find is not used with --db or --rotate")
	}
	return nil
}

func newProcessCmd(cfg *Config, code *int, stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Replace text in the source file and write the result to a new file",
		Long: `Reads the source file, replaces every occurrence of --find with --replace
(or, with --db, the quoted value after REPLACE on the first line) and writes
the result to --output. The output defaults to the source name with today's
date inserted before the extension, next to the source. An existing output
file is never overwritten and the source is never modified.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validate(*cfg); err != nil {
				return err
			}
			c, err := runProcess(cmd, *cfg, stdout)
			*code = c
			return err
		},
	}

	fs := cmd.Flags()
	addSourceFlag(fs, cfg)
	fs.StringVarP(&cfg.Output, "output", "o", "", "Output file; a bare name is placed next to the source (default <name>_YYYY_MM_DD<ext>)")
	fs.StringVar(&cfg.Find, "find", "", "Literal text to find")
	fs.StringVar(&cfg.Replace, "replace", "", "Replacement text")
	fs.BoolVar(&cfg.Random, "random", false, "Use a generated random string as the replacement")
	fs.BoolVar(&cfg.DB, "db", false, "Replace the REPLACE \"...\" password on the first line")
	fs.BoolVar(&cfg.Rotate, "rotate", false, "Rotate the BY and REPLACE passwords across the whole file")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "Preview changes only")
	fs.IntVar(&cfg.Context, "context", 3, "Number of context lines in the dry-run diff")
	fs.BoolVar(&cfg.StrictEOL, "strict-eol", false, "Treat a single trailing final newline difference as a change")
	addCharsetFlags(fs, cfg)
	return cmd
}

func runProcess(cmd *cobra.Command, cfg Config, stdout io.Writer) (int, error) {
	ctx := cmd.Context()
	log := zerolog.Ctx(ctx)
	out := newStatus(stdout, cfg.NoColor)

	p, err := processor.New(cfg.options())
	if err != nil {
		return ExitError, err
	}
	if err := p.SetSource(ctx, cfg.Source); err != nil {
		return ExitError, err
	}

	output := cfg.Output
	if output == "" {
		if output, err = p.DefaultOutputName(); err != nil {
			return ExitError, err
		}
	}

	replace := cfg.Replace
	if cfg.Random {
		if replace, err = p.Generate(cfg.Length, cfg.Charset); err != nil {
			return ExitError, err
		}
		log.Debug().Int("length", len(replace)).Msg("generated replacement")
	}

	if err := p.Configure(ctx, cfg.Find, replace, output, cfg.mode()); err != nil {
		return ExitError, err
	}
	req := p.Request()

	if cfg.DryRun {
		res, err := p.Preview(ctx)
		if err != nil {
			return ExitError, err
		}
		preview, changed, err := diff.Diff(res.Before, res.After, diff.Options{
			Color:     !cfg.NoColor && isTerminal(stdout),
			Context:   cfg.Context,
			FromName:  req.Source,
			ToName:    req.Output,
			StrictEOL: cfg.StrictEOL,
		})
		if err != nil {
			return ExitError, err
		}
		if !changed {
			out.Info("no changes: %s", req.Source)
			return ExitOK, nil
		}
		out.Plain(fmt.Sprintf("file: %s  (replacements: %d)", req.Source, res.Replacements))
		_, _ = io.WriteString(stdout, preview)
		return ExitChanges, nil
	}

	res, err := p.Process(ctx)
	if err != nil {
		return ExitError, err
	}
	if p.Generated() != "" {
		out.Plain("generated: " + p.Generated())
	}
	out.Success("processed: %s -> %s (replacements: %d)", res.Source, res.Output, res.Replacements)
	return ExitOK, nil
}

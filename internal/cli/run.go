package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gitlab.com/tozd/go/errors"

	"dbsubst/internal/naming"
	"dbsubst/internal/processor"
	"dbsubst/internal/randstr"
	"dbsubst/internal/textenc"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitChanges = 1 // dry run found changes
	ExitError   = 2
)

// Config holds every flag value. The command line resolves it fully before
// the processor is called.
type Config struct {
	Source    string
	Output    string
	Find      string
	Replace   string
	Random    bool
	Length    int
	Charset   randstr.Charset
	DB        bool
	Rotate    bool
	DryRun    bool
	Encoding  string
	NoColor   bool
	Context   int
	StrictEOL bool
	Debug     bool
	Quiet     bool
}

// clock is replaced in tests.
var clock naming.Clock = naming.SystemClock

func (c Config) mode() processor.Mode {
	switch {
	case c.Rotate:
		return processor.ModeDBRotate
	case c.DB:
		return processor.ModeDBPassword
	}
	return processor.ModeReplace
}

func (c Config) options() processor.Options {
	return processor.Options{
		Clock:        clock,
		Encoding:     c.Encoding,
		RandomLength: c.Length,
		Charset:      c.Charset,
	}
}

func addCharsetFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.IntVar(&cfg.Length, "length", 10, "Length of generated strings")
	fs.BoolVar(&cfg.Charset.Upper, "upper", true, "Include uppercase letters A-Z in generated strings")
	fs.BoolVar(&cfg.Charset.Lower, "lower", true, "Include lowercase letters a-z in generated strings")
	fs.BoolVar(&cfg.Charset.Digits, "digits", true, "Include digits 0-9 in generated strings")
}

func addSourceFlag(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.Source, "source", "s", "", "Source file (required)")
}

func newLogger(w io.Writer, cfg *Config) zerolog.Logger {
	level := zerolog.InfoLevel
	switch {
	case cfg.Quiet:
		level = zerolog.Disabled
	case cfg.Debug:
		level = zerolog.DebugLevel
	}
	cw := zerolog.ConsoleWriter{Out: w, NoColor: cfg.NoColor, TimeFormat: "15:04:05"}
	return zerolog.New(cw).Level(level).With().Timestamp().Logger()
}

func newRootCmd(cfg *Config, code *int, stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "dbsubst",
		Short:         "Find and replace text in a file, writing the result to a new file",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.Debug && cfg.Quiet {
				return errors.New("--debug and --quiet are mutually exclusive")
			}
			if _, err := textenc.New(cfg.Encoding); err != nil {
				return err
			}
			logger := newLogger(stderr, cfg)
			cmd.SetContext(logger.WithContext(cmd.Context()))
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.BoolVar(&cfg.Debug, "debug", false, "Enable debug logging")
	pf.BoolVarP(&cfg.Quiet, "quiet", "q", false, "Disable logging")
	pf.BoolVar(&cfg.NoColor, "no-color", false, "Disable ANSI colors in output")
	pf.StringVar(&cfg.Encoding, "encoding", textenc.Default, "Text encoding of the source and output files")

	root.AddCommand(
		newProcessCmd(cfg, code, stdout),
		newGenerateCmd(cfg, stdout),
		newNameCmd(cfg, stdout),
	)
	return root
}

// Run executes the CLI with the provided args and writers, returning the exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	var cfg Config
	code := ExitOK

	root := newRootCmd(&cfg, &code, stdout, stderr)
	root.SetArgs(args)

	if err := root.ExecuteContext(context.Background()); err != nil {
		newStatus(stderr, cfg.NoColor || !isTerminal(stderr)).Error(title(err), err)
		return ExitError
	}
	return code
}

func title(err error) string {
	t := processor.KindOf(err)
	if t == "Unexpected Error" {
		// flag and argument errors from the command line itself
		return "Invalid Input"
	}
	return t
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func newGenerateCmd(cfg *Config, stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print a random string built from the selected character classes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := processor.New(cfg.options())
			if err != nil {
				return err
			}
			s, err := p.Generate(cfg.Length, cfg.Charset)
			if err != nil {
				return err
			}
			zerolog.Ctx(cmd.Context()).Debug().
				Int("length", cfg.Length).
				Str("classes", strings.Join(cfg.Charset.Names(), ", ")).
				Msg("generated random string")
			newStatus(stdout, true).Plain(s)
			return nil
		},
	}
	addCharsetFlags(cmd.Flags(), cfg)
	return cmd
}

func newNameCmd(cfg *Config, stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "name",
		Short: "Print the dated default output name for a source file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := processor.New(cfg.options())
			if err != nil {
				return err
			}
			if err := p.SetSource(cmd.Context(), cfg.Source); err != nil {
				return err
			}
			name, err := p.DefaultOutputName()
			if err != nil {
				return err
			}
			newStatus(stdout, true).Plain(name)
			return nil
		},
	}
	addSourceFlag(cmd.Flags(), cfg)
	return cmd
}

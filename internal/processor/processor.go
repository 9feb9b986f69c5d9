package processor

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"dbsubst/internal/apply"
	"dbsubst/internal/naming"
	"dbsubst/internal/randstr"
	"dbsubst/internal/textenc"
)

// State is a step of the Processor lifecycle.
type State int

const (
	StateIdle State = iota
	StateSourceSet
	StateConfigured
	StateProcessed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSourceSet:
		return "source-set"
	case StateConfigured:
		return "configured"
	case StateProcessed:
		return "processed"
	}
	return "unknown"
}

// Mode selects the transformation applied by Process.
type Mode int

const (
	// ModeReplace is literal find/replace over the whole file.
	ModeReplace Mode = iota
	// ModeDBPassword rewrites the REPLACE literal on the first line.
	ModeDBPassword
	// ModeDBRotate rotates the BY and REPLACE values across the file.
	ModeDBRotate
)

func (m Mode) String() string {
	switch m {
	case ModeReplace:
		return "replace"
	case ModeDBPassword:
		return "db"
	case ModeDBRotate:
		return "rotate"
	}
	return "unknown"
}

// IsDB reports whether m targets the first-line password pattern.
func (m Mode) IsDB() bool { return m == ModeDBPassword || m == ModeDBRotate }

// Request is the fully resolved description of one processing action.
type Request struct {
	Source  string
	Output  string
	Find    string
	Replace string
	Mode    Mode
}

// Result describes a transformation. Before/After are only populated by
// Preview.
type Result struct {
	Source       string
	Output       string
	Mode         Mode
	Before       string
	After        string
	Replacements int
	Bytes        int
	Changed      bool
}

// Options are caller-resolved settings for a Processor.
type Options struct {
	Clock        naming.Clock
	Encoding     string
	RandomLength int
	Charset      randstr.Charset
}

// DefaultOptions matches the command line defaults.
func DefaultOptions() Options {
	return Options{
		Clock:        naming.SystemClock,
		Encoding:     textenc.Default,
		RandomLength: 10,
		Charset:      randstr.All,
	}
}

// Processor sequences set-source, configure and process for one file. It is
// not safe for concurrent use.
type Processor struct {
	opts  Options
	codec textenc.Codec

	state     State
	source    string
	req       Request
	generated string
}

// New returns an idle Processor.
func New(opts Options) (*Processor, error) {
	if opts.Clock == nil {
		opts.Clock = naming.SystemClock
	}
	codec, err := textenc.New(opts.Encoding)
	if err != nil {
		return nil, withKind(ErrInvalidArgument, err)
	}
	return &Processor{opts: opts, codec: codec}, nil
}

// State returns the current lifecycle state.
func (p *Processor) State() State { return p.state }

// Request returns the configured request, including any password resolved
// during Configure.
func (p *Processor) Request() Request { return p.req }

// Generated returns the last string produced by Generate, if any.
func (p *Processor) Generated() string { return p.generated }

// SetSource records path as the source file after checking that it is an
// existing, readable regular file, and derives the default output name.
func (p *Processor) SetSource(ctx context.Context, path string) error {
	if p.state == StateConfigured {
		return errors.Errorf("%w: cannot change source while configured; clear first", ErrInvalidState)
	}
	if path == "" {
		return errors.Errorf("%w: no source file specified", ErrInvalidArgument)
	}
	info, err := os.Stat(path)
	if err != nil {
		return errors.Errorf("%w: source file %q: %v", ErrNotFound, path, err)
	}
	if !info.Mode().IsRegular() {
		return errors.Errorf("%w: source %q is not a regular file", ErrNotFound, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return errors.Errorf("%w: source file %q is not readable: %v", ErrNotFound, path, err)
	}
	_ = f.Close()

	name, err := naming.DefaultOutputName(path, p.opts.Clock)
	if err != nil {
		return withKind(ErrInvalidState, err)
	}

	p.source = path
	p.req = Request{Source: path}
	p.state = StateSourceSet
	zerolog.Ctx(ctx).Debug().Str("source", path).Str("default_output", name).Msg("source set")
	return nil
}

// DefaultOutputName returns the dated output name for the current source.
// It is recomputed on each call so a date rollover is observed.
func (p *Processor) DefaultOutputName() (string, error) {
	if p.source == "" {
		return "", errors.Errorf("%w: no source file has been set", ErrInvalidState)
	}
	name, err := naming.DefaultOutputName(p.source, p.opts.Clock)
	if err != nil {
		return "", withKind(ErrInvalidState, err)
	}
	return name, nil
}

// Generate produces a random string and remembers it as the last generated
// value. It does not change the lifecycle state.
func (p *Processor) Generate(length int, cs randstr.Charset) (string, error) {
	s, err := randstr.Generate(length, cs)
	if err != nil {
		return "", generateErr(err)
	}
	p.generated = s
	return s, nil
}

// generateErr maps randstr failures onto the processor's kinds: bad
// arguments stay invalid input, anything else is a failure of the random
// source.
func generateErr(err error) error {
	if errors.Is(err, randstr.ErrInvalidArgument) {
		return withKind(ErrInvalidArgument, err)
	}
	return withKind(ErrIOFailure, err)
}

// Configure validates and stores the processing request. A bare output file
// name is placed next to the source. In the DB modes an empty replace value
// is filled with a generated password.
func (p *Processor) Configure(ctx context.Context, find, replace, output string, mode Mode) error {
	switch p.state {
	case StateIdle:
		return errors.Errorf("%w: no source file has been set", ErrInvalidState)
	case StateProcessed:
		return errors.Errorf("%w: already processed; set a source again or clear", ErrInvalidState)
	}

	out, err := p.resolveOutput(output)
	if err != nil {
		return err
	}

	switch mode {
	case ModeReplace:
		if find == "" && replace == "" {
			return errors.Errorf("%w: specify text to find or replace", ErrInvalidArgument)
		}
	case ModeDBPassword, ModeDBRotate:
		if replace == "" {
			replace, err = p.Generate(p.opts.RandomLength, p.opts.Charset)
			if err != nil {
				return err
			}
			zerolog.Ctx(ctx).Debug().Int("length", len(replace)).Msg("generated db password")
		}
		if err := validatePassword(replace); err != nil {
			return err
		}
	default:
		return errors.Errorf("%w: unknown mode %d", ErrInvalidArgument, mode)
	}

	p.req = Request{Source: p.source, Output: out, Find: find, Replace: replace, Mode: mode}
	p.state = StateConfigured
	zerolog.Ctx(ctx).Debug().Str("output", out).Stringer("mode", mode).Msg("configured")
	return nil
}

func (p *Processor) resolveOutput(output string) (string, error) {
	if output == "" {
		return "", errors.Errorf("%w: no output file name specified", ErrInvalidArgument)
	}
	if filepath.Base(output) == output {
		output = filepath.Join(filepath.Dir(p.source), output)
	}
	same, err := samePath(p.source, output)
	if err != nil {
		return "", withKind(ErrIOFailure, err)
	}
	if same {
		return "", errors.Errorf("%w: output %q would overwrite the source file", ErrInvalidArgument, output)
	}
	return output, nil
}

func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, errors.Errorf("resolving %q: %w", a, err)
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, errors.Errorf("resolving %q: %w", b, err)
	}
	if absA == absB {
		return true, nil
	}
	ia, err := os.Stat(absA)
	if err != nil {
		return false, nil
	}
	ib, err := os.Stat(absB)
	if err != nil {
		return false, nil
	}
	return os.SameFile(ia, ib), nil
}

// Preview computes the transformation without writing anything.
func (p *Processor) Preview(ctx context.Context) (Result, error) {
	if p.state != StateConfigured {
		return Result{}, errors.Errorf("%w: processor is %s, not configured", ErrInvalidState, p.state)
	}
	before, err := p.readSource()
	if err != nil {
		return Result{}, err
	}
	after, n, err := Transform(before, p.req)
	if err != nil {
		return Result{}, err
	}
	zerolog.Ctx(ctx).Debug().Int("replacements", n).Msg("preview computed")
	return Result{
		Source:       p.req.Source,
		Output:       p.req.Output,
		Mode:         p.req.Mode,
		Before:       before,
		After:        after,
		Replacements: n,
		Bytes:        len(after),
		Changed:      before != after,
	}, nil
}

// Process reads the source, applies the configured transformation and
// writes the result to the output path, which must not exist. The source is
// never modified. On failure the processor stays configured.
func (p *Processor) Process(ctx context.Context) (Result, error) {
	if p.state != StateConfigured {
		return Result{}, errors.Errorf("%w: processor is %s, not configured", ErrInvalidState, p.state)
	}
	log := zerolog.Ctx(ctx)

	before, err := p.readSource()
	if err != nil {
		return Result{}, err
	}
	after, n, err := Transform(before, p.req)
	if err != nil {
		return Result{}, err
	}
	data, err := p.codec.Encode(after)
	if err != nil {
		return Result{}, withKind(ErrIOFailure, errors.Errorf("encoding output: %w", err))
	}

	if err := apply.WriteNew(p.req.Output, data, apply.Options{Mode: 0o644}); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return Result{}, errors.Errorf("%w: output file %q already exists", ErrAlreadyExists, p.req.Output)
		}
		return Result{}, withKind(ErrIOFailure, errors.Errorf("writing output file: %w", err))
	}

	p.state = StateProcessed
	log.Info().
		Str("source", p.req.Source).
		Str("output", p.req.Output).
		Stringer("mode", p.req.Mode).
		Int("replacements", n).
		Int("bytes", len(data)).
		Msg("file processed")

	return Result{
		Source:       p.req.Source,
		Output:       p.req.Output,
		Mode:         p.req.Mode,
		Replacements: n,
		Bytes:        len(data),
		Changed:      before != after,
	}, nil
}

// Clear returns the processor to idle, discarding the source, the request
// and any generated string.
func (p *Processor) Clear() {
	p.state = StateIdle
	p.source = ""
	p.req = Request{}
	p.generated = ""
}

func (p *Processor) readSource() (string, error) {
	data, err := os.ReadFile(p.source)
	if err != nil {
		return "", withKind(ErrIOFailure, errors.Errorf("reading source file: %w", err))
	}
	text, err := p.codec.Decode(data)
	if err != nil {
		return "", withKind(ErrIOFailure, errors.Errorf("reading source file: %w", err))
	}
	// binary check on decoded text; raw NULs are normal in multi-byte encodings
	if strings.IndexByte(text, 0x00) >= 0 {
		return "", errors.Errorf("%w: binary file: %s", ErrIOFailure, p.source)
	}
	return text, nil
}

// Transform applies req's mode to content. It is pure.
func Transform(content string, req Request) (string, int, error) {
	switch req.Mode {
	case ModeReplace:
		after, n := ReplaceAll(content, req.Find, req.Replace)
		return after, n, nil
	case ModeDBPassword:
		after, err := ReplaceDBPassword(content, req.Replace)
		if err != nil {
			return "", 0, err
		}
		return after, 1, nil
	case ModeDBRotate:
		return RotateDBPasswords(content, req.Replace)
	}
	return "", 0, errors.Errorf("%w: unknown mode %d", ErrInvalidArgument, req.Mode)
}

// Package driver implements the command-line front end: argument parsing
// (via the teacher's own github.com/mna/mainer), per-file pipeline
// orchestration, and the single external-toolchain invocation at the end.
package driver

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mna/mainer"
)

const binName = "minicc"

var (
	shortUsage = fmt.Sprintf(`
usage: %s OUTPUT SOURCE... [--lex|--parse|--validate|--tacky|--codegen] [-c]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s OUTPUT SOURCE... [--lex|--parse|--validate|--tacky|--codegen] [-c]
       %[1]s -h|--help
       %[1]s -v|--version

Ahead-of-time compiler for a C subset, targeting x86-64 AT&T assembly.

OUTPUT is the path of the final binary (or object file, with -c).
Each SOURCE "PATH.EXT" is compiled in sequence to "PATH.s"; the
accumulated assembly files are then handed to the system toolchain to
produce OUTPUT, unless a stop-at flag below short-circuits first.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
       -c                        Produce an object file, don't link.
       --lex                     Stop after lexing; print the token
                                 stream for each source file.
       --parse                   Stop after parsing; print the AST.
       --validate                Stop after the resolver/labeler/type
                                 checker passes; print the annotated AST.
       --tacky                   Stop after TAC lowering; print the IR.
       --codegen                 Stop after instruction selection and
                                 legalization; print the pseudo-assembly
                                 IR (see lang/emit.DumpAsmIR).

The stop-at flags are mutually exclusive and suppress both assembly
emission to disk and toolchain invocation.
`, binName)
)

// Cmd is the mainer.Cmd implementation for minicc. At most one of the
// stop-at flags may be set; Validate enforces that.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	ObjectOnly    bool `flag:"c"`
	Lex           bool `flag:"lex"`
	Parse         bool `flag:"parse"`
	ValidateStage bool `flag:"validate"`
	Tacky         bool `flag:"tacky"`
	Codegen       bool `flag:"codegen"`

	args []string
}

func (c *Cmd) SetArgs(args []string)    { c.args = args }
func (c *Cmd) SetFlags(map[string]bool) {}

// stopAt returns the name of the single set stop-at flag, or "" for a full
// compile.
func (c *Cmd) stopAt() string {
	switch {
	case c.Lex:
		return "lex"
	case c.Parse:
		return "parse"
	case c.ValidateStage:
		return "validate"
	case c.Tacky:
		return "tacky"
	case c.Codegen:
		return "codegen"
	default:
		return ""
	}
}

// Validate satisfies mainer.Cmd: it runs after flags and positional args are
// parsed, before Main dispatches.
func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}

	n := 0
	for _, set := range []bool{c.Lex, c.Parse, c.ValidateStage, c.Tacky, c.Codegen} {
		if set {
			n++
		}
	}
	if n > 1 {
		return errors.New("--lex, --parse, --validate, --tacky, and --codegen are mutually exclusive")
	}

	if len(c.args) < 1 {
		return errors.New("missing OUTPUT path")
	}
	if len(c.args) < 2 {
		return errors.New("at least one SOURCE file must be provided")
	}
	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{EnvVars: false, EnvPrefix: binName + "_"}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}
	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	output := c.args[0]
	sources := c.args[1:]
	if err := Compile(ctx, stdio, output, sources, c.stopAt(), c.ObjectOnly); err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return mainer.Failure
	}
	return mainer.Success
}


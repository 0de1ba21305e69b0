package driver

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mna/mainer"
	"github.com/mna/minicc/lang/ast"
	"github.com/mna/minicc/lang/codegen"
	"github.com/mna/minicc/lang/emit"
	"github.com/mna/minicc/lang/labeler"
	"github.com/mna/minicc/lang/lexer"
	"github.com/mna/minicc/lang/mint"
	"github.com/mna/minicc/lang/parser"
	"github.com/mna/minicc/lang/resolver"
	"github.com/mna/minicc/lang/tacky"
	"github.com/mna/minicc/lang/typecheck"
)

// Compile runs every source file through the pipeline in sequence, sharing
// a single mint across files for cross-file name uniqueness, and finally
// invokes the external toolchain on the accumulated assembly files, unless
// stopAt names an earlier stage to halt at. Each file's pipeline aborts at
// its first error; Compile itself aborts at the first failing file and
// never invokes the toolchain for a partially-failed batch.
func Compile(ctx context.Context, stdio mainer.Stdio, output string, sources []string, stopAt string, objectOnly bool) error {
	m := mint.New()
	var asmFiles []string

	for _, src := range sources {
		asmPath, err := compileFile(stdio, src, stopAt, m)
		if err != nil {
			return fmt.Errorf("%s: %w", src, err)
		}
		if stopAt != "" {
			continue
		}
		asmFiles = append(asmFiles, asmPath)
	}

	if stopAt != "" {
		return nil
	}
	return runToolchain(ctx, asmFiles, output, objectOnly)
}

func compileFile(stdio mainer.Stdio, src string, stopAt string, m *mint.Mint) (string, error) {
	source, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}

	toks, err := lexer.Tokenize(source)
	if err != nil {
		return "", err
	}
	if stopAt == "lex" {
		for _, tv := range toks {
			fmt.Fprintln(stdio.Stdout, tv.Token)
		}
		return "", nil
	}

	prog, err := parser.Parse(source)
	if err != nil {
		return "", err
	}
	if stopAt == "parse" {
		printer := ast.Printer{Output: stdio.Stdout}
		return "", printer.Print(prog)
	}

	if err := resolver.Resolve(prog, m); err != nil {
		return "", err
	}
	if err := labeler.Label(prog, m); err != nil {
		return "", err
	}
	table, err := typecheck.Check(prog)
	if err != nil {
		return "", err
	}
	if stopAt == "validate" {
		printer := ast.Printer{Output: stdio.Stdout}
		return "", printer.Print(prog)
	}

	tac := tacky.Lower(prog, table, m)
	if stopAt == "tacky" {
		return "", tacky.Dump(stdio.Stdout, tac)
	}

	asm := codegen.Select(tac)
	codegen.Legalize(asm)
	if stopAt == "codegen" {
		return "", emit.DumpAsmIR(stdio.Stdout, asm)
	}

	asmPath := outputAsmPath(src)
	f, err := os.Create(asmPath)
	if err != nil {
		return "", fmt.Errorf("write assembly: %w", err)
	}
	defer f.Close()
	if err := emit.Emit(f, asm, table); err != nil {
		return "", fmt.Errorf("write assembly: %w", err)
	}
	return asmPath, nil
}

// outputAsmPath derives PATH.s from PATH.EXT, per the output file
// convention: strip the last extension and append ".s".
func outputAsmPath(src string) string {
	return strings.TrimSuffix(src, filepath.Ext(src)) + ".s"
}

// runToolchain invokes the system C compiler/assembler/linker exactly once
// on the accumulated assembly files, the one external-toolchain call the
// whole pipeline makes.
func runToolchain(ctx context.Context, asmFiles []string, output string, objectOnly bool) error {
	args := append([]string{}, asmFiles...)
	args = append(args, "-o", output)
	if objectOnly {
		args = append(args, "-c")
	}
	cmd := exec.CommandContext(ctx, "cc", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("toolchain: %w", err)
	}
	return nil
}

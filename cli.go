package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/og-lang/ogc/sexy"
	"github.com/peterh/liner"
)

func showUsage() {
	fmt.Fprintf(os.Stderr, `ogc - the og compiler back end (type checker and postfix code generator)

Usage:
    ogc <command> [arguments]

Commands:
    check <file>    Type-check an og program given as an S-expression tree
    build <file>    Compile a program to a postfix listing
    dump <file>     Print the postfix listing and symbol layout
    repl            Enter top-level items interactively
    help            Show this help message

Examples:
    ogc check hello.og.sx
    ogc build -o hello.pf hello.og.sx
    ogc build -format bin -o hello.pfo hello.og.sx
    ogc dump -log-level debug hello.og.sx

Use "ogc <command> -h" for more information about a command.
`)
}

// logFlags registers the logging flags on fs and returns a constructor
// for the logger they describe.
func logFlags(fs *flag.FlagSet) func() *slog.Logger {
	level := fs.String("log-level", "warn", "Log level: debug, info, warn or error")
	format := fs.String("log-format", "text", "Log format: text or json")
	return func() *slog.Logger {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(*level)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid log level %q\n", *level)
			os.Exit(1)
		}
		opts := &slog.HandlerOptions{Level: lvl}
		if *format == "json" {
			return slog.New(slog.NewJSONHandler(os.Stderr, opts))
		}
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
}

func readProgram(filename string) *Program {
	src, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file %s: %v\n", filename, err)
		os.Exit(1)
	}
	prog, err := DecodeProgram(string(src))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading program %s: %v\n", filename, err)
		os.Exit(1)
	}
	return prog
}

func checkCommand(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	verbose := fs.Bool("v", false, "Show verbose checking details")
	entry := fs.String("entry", "og", "Name of the entry function")
	logger := logFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ogc check [-v] [-entry name] <file>\n")
		fmt.Fprintf(os.Stderr, "Type-check an og program\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: expected exactly one file argument\n")
		fs.Usage()
		os.Exit(1)
	}

	filename := fs.Arg(0)
	if *verbose {
		fmt.Printf("Checking %s...\n", filename)
	}

	opts := DefaultOptions()
	opts.Entry = *entry
	opts.Logger = logger()

	prog := readProgram(filename)
	_, diags := CheckProgram(prog, opts)
	if diags.HasErrors() {
		fmt.Printf("Type checking errors in %s:\n%s\n", filename, diags.String())
		os.Exit(1)
	}

	fmt.Printf("%s: no errors found\n", filename)
	if *verbose {
		fmt.Printf("%d top-level items\n", len(prog.Decls))
	}
}

func buildCommand(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	output := fs.String("o", "", "Output file path (default: <filename>.pf, or .pfo for -format bin)")
	format := fs.String("format", "text", "Output format: text or bin")
	entry := fs.String("entry", "og", "Name of the entry function")
	verbose := fs.Bool("v", false, "Show verbose compilation details")
	logger := logFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ogc build [-o output] [-format text|bin] [-entry name] [-v] <file>\n")
		fmt.Fprintf(os.Stderr, "Compile an og program to a postfix listing\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: expected exactly one file argument\n")
		fs.Usage()
		os.Exit(1)
	}
	if *format != "text" && *format != "bin" {
		fmt.Fprintf(os.Stderr, "Error: unknown format %q\n", *format)
		os.Exit(1)
	}

	filename := fs.Arg(0)

	outputFile := *output
	if outputFile == "" {
		base := strings.TrimSuffix(filename, filepath.Ext(filename))
		if *format == "bin" {
			outputFile = base + ".pfo"
		} else {
			outputFile = base + ".pf"
		}
	}

	if *verbose {
		fmt.Printf("Compiling %s to %s...\n", filename, outputFile)
	}

	opts := DefaultOptions()
	opts.Entry = *entry
	opts.Logger = logger()

	result, err := Compile(readProgram(filename), opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Compilation failed:\n%v\n", err)
		os.Exit(1)
	}

	var data []byte
	if *format == "bin" {
		data = EncodeListing(result.Listing.Instrs)
	} else {
		data = []byte(result.Listing.String() + "\n")
	}
	if err := os.WriteFile(outputFile, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output file %s: %v\n", outputFile, err)
		os.Exit(1)
	}

	fmt.Printf("Generated %s (%d instructions, %d bytes)\n", outputFile, len(result.Listing.Instrs), len(data))
	if *verbose && len(result.Externs) > 0 {
		fmt.Printf("External references: %s\n", strings.Join(result.Externs, ", "))
	}
}

func dumpCommand(args []string) {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	entry := fs.String("entry", "og", "Name of the entry function")
	logger := logFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ogc dump [-entry name] <file>\n")
		fmt.Fprintf(os.Stderr, "Print the postfix listing and symbol layout of an og program\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: expected exactly one file argument\n")
		fs.Usage()
		os.Exit(1)
	}

	opts := DefaultOptions()
	opts.Entry = *entry
	opts.Logger = logger()

	prog := readProgram(fs.Arg(0))
	result, err := Compile(prog, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Compilation failed:\n%v\n", err)
		os.Exit(1)
	}
	writeDump(os.Stdout, prog, result)
}

// writeDump prints the listing followed by the layout of every declared
// variable.
func writeDump(w io.Writer, prog *Program, result *Result) {
	fmt.Fprintln(w, result.Listing.String())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "; symbols")
	fmt.Fprintln(w, SymbolLayout(prog, result.Info))
}

const (
	promptMain  = "og> "
	promptCont  = "... "
	historyFile = ".ogc_history"
)

// replCommand accepts top-level items one at a time. Each accepted item
// joins the session program and the whole program is recompiled.
func replCommand(args []string) {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	logger := logFlags(fs)
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	opts := DefaultOptions()
	opts.Logger = logger()

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Println("ogc repl: enter (var ...) or (func ...) items; :listing, :reset, :quit")

	var items []string
	for {
		code, ok := readItem(ln)
		if !ok {
			fmt.Println()
			return
		}
		code = strings.TrimSpace(code)
		switch code {
		case "":
			continue
		case ":quit":
			return
		case ":reset":
			items = nil
			continue
		case ":listing":
			code = ""
		default:
			if strings.HasPrefix(code, ":") {
				fmt.Println("unknown command. Type :quit to exit.")
				continue
			}
		}

		candidate := items
		if code != "" {
			candidate = append(items[:len(items):len(items)], code)
		}
		prog, err := DecodeProgram("(program\n" + strings.Join(candidate, "\n") + "\n)")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		result, err := Compile(prog, opts)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		items = candidate
		if code != "" {
			ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		}
		fmt.Println(result.Listing.String())
	}
}

// readItem reads lines until they form a complete S-expression.
func readItem(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		if _, err := sexy.Parse(src); errors.Is(err, sexy.ErrIncomplete) {
			continue
		}
		return src, true
	}
}

func main() {
	if len(os.Args) < 2 {
		showUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "check":
		checkCommand(args)
	case "build":
		buildCommand(args)
	case "dump":
		dumpCommand(args)
	case "repl":
		replCommand(args)
	case "help", "-h", "--help":
		showUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		showUsage()
		os.Exit(1)
	}
}

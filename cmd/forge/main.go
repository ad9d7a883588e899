package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	forge "github.com/ruby-rust-perl/forge"
)

const (
	appName     = "forge"
	historyFile = ".forge_history"
	promptMain  = "==> "
	promptCont  = "... "
)

var banner = fmt.Sprintf("Forge %s REPL\nCtrl+C cancels input, Ctrl+D exits. Type :quit to exit.", forge.Version)

func red(s string) string  { return "\x1b[31m" + s + "\x1b[0m" }
func blue(s string) string { return "\x1b[94m" + s + "\x1b[0m" }

func main() {
	dumpAST := flag.Bool("ast", false, "parse the file and dump its AST instead of running it")
	flag.Usage = usage
	flag.Parse()
	args := flag.Args()

	switch {
	case len(args) == 0:
		if *dumpAST {
			fmt.Fprintf(os.Stderr, "%s: --ast requires a file\n", appName)
			os.Exit(2)
		}
		os.Exit(runRepl())
	case args[0] == "version":
		fmt.Println(forge.Version)
	case len(args) == 1:
		os.Exit(runFile(args[0], *dumpAST))
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Forge %s

Usage:
  %s                 Start the REPL.
  %s <file.forge>    Run a script.
  %s --ast <file>    Parse a script and dump its AST.
  %s version         Print the version.
`, forge.Version, appName, appName, appName, appName)
}

// -----------------------------------------------------------------------------
// script mode
// -----------------------------------------------------------------------------

func runFile(file string, dumpAST bool) int {
	src, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, file, err)
		return 1
	}

	stmts, errs := forge.Parse(string(src))
	if len(errs) > 0 {
		fmt.Fprint(os.Stderr, forge.RenderAll(errs, string(src)))
		return 1
	}

	if dumpAST {
		forge.DumpAST(os.Stdout, stmts)
		return 0
	}

	ip := forge.NewInterpreter()
	if _, err := ip.EvalProgram(stmts, forge.NewEnv(ip.Global)); err != nil {
		fmt.Fprint(os.Stderr, forge.Render(err, string(src)))
		return 1
	}
	return 0
}

// -----------------------------------------------------------------------------
// repl
// -----------------------------------------------------------------------------

func runRepl() int {
	fmt.Println(banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	ip := forge.NewInterpreter()
	ip.ReadLine = func() (string, error) { return ln.Prompt("") }

	for {
		code, ok := readByParseProbe(ln, promptMain, promptCont)
		if !ok {
			fmt.Println()
			break
		}

		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			if strings.ToLower(trimmed) == ":quit" {
				return 0
			}
			fmt.Println("unknown command. Type :quit to exit.")
			continue
		}

		v, err := ip.EvalPersistentSource(code)
		if err != nil {
			fmt.Fprintln(os.Stderr, red(forge.Render(err, code)))
			ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
			continue
		}
		if v.Tag != forge.VTNull {
			fmt.Println(blue(forge.FormatValue(v)))
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}

	return 0
}

// readByParseProbe reads lines until the buffered input parses, or fails for
// a reason other than running out of input. An incomplete parse keeps the
// continuation prompt going.
func readByParseProbe(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = ln.Prompt(prompt)
		} else {
			line, err = ln.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		_, errs := forge.Parse(src)
		if len(errs) == 0 {
			return src, true
		}
		if forge.IsIncomplete(errs) {
			continue
		}
		return src, true
	}
}

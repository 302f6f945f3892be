package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/dop251/goja"
	"github.com/peterh/liner"

	"expando/pkg/driver"
	"expando/pkg/errors"
	"expando/pkg/jsvm"
)

const (
	exitUsage    = 64 // command line usage error
	exitSoftware = 70 // compile or runtime failure

	historyFile = ".expando_history"
	promptMain  = "expando> "
	promptCont  = "....... "
)

func main() {
	exprFlag := flag.String("e", "", "Compile the given source and print the JavaScript")
	outputFlag := flag.String("o", "", "Output file (default: input file with .js extension)")
	configFlag := flag.String("config", "", "Path to an expando.yaml config file")
	runFlag := flag.Bool("run", false, "Evaluate the compiled JavaScript instead of writing it")
	declFlag := flag.String("declaration", "", "Declaration keyword: let or var (overrides config)")
	flag.Parse()

	config, err := loadConfig(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(exitUsage)
	}
	if *declFlag != "" {
		config.Declaration = *declFlag
		if err := config.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			os.Exit(exitUsage)
		}
	}

	if *exprFlag != "" {
		os.Exit(runExpression(*exprFlag, config, *runFlag))
	}

	switch {
	case flag.NArg() == 0:
		os.Exit(runRepl(config))
	case *outputFlag != "" && flag.NArg() > 1:
		fmt.Fprintf(os.Stderr, "Usage: expando [-o output] <input>; -o takes a single input\n")
		os.Exit(exitUsage)
	case *runFlag:
		if flag.NArg() > 1 {
			fmt.Fprintf(os.Stderr, "Usage: expando -run <input>\n")
			os.Exit(exitUsage)
		}
		os.Exit(runFile(flag.Arg(0), config))
	case flag.NArg() == 1:
		os.Exit(writeFile(flag.Arg(0), *outputFlag, config))
	default:
		os.Exit(writeFiles(flag.Args(), config))
	}
}

func loadConfig(path string) (driver.Config, error) {
	if path != "" {
		return driver.LoadConfig(path)
	}
	wd, err := os.Getwd()
	if err != nil {
		return driver.DefaultConfig(), nil
	}
	return driver.LoadDefaultConfig(wd)
}

func runExpression(src string, config driver.Config, run bool) int {
	if run {
		value, errs := driver.RunString(src, config, os.Stdout)
		if len(errs) > 0 {
			errors.DisplayErrors(src, errs)
			return exitSoftware
		}
		printValue(os.Stdout, value)
		return 0
	}
	code, errs := driver.EmitJavaScript(src, config)
	if len(errs) > 0 {
		errors.DisplayErrors(src, errs)
		return exitSoftware
	}
	fmt.Print(code)
	return 0
}

func runFile(filename string, config driver.Config) int {
	value, errs := driver.RunFile(filename, config, os.Stdout)
	if len(errs) > 0 {
		errors.DisplayErrors(readSource(filename), errs)
		return exitSoftware
	}
	printValue(os.Stdout, value)
	return 0
}

func writeFile(input, output string, config driver.Config) int {
	written, errs := driver.WriteJavaScriptFile(input, output, config)
	if len(errs) > 0 {
		errors.DisplayErrors(readSource(input), errs)
		return exitSoftware
	}
	fmt.Printf("JavaScript code written to %s\n", written)
	return 0
}

func writeFiles(inputs []string, config driver.Config) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results, _, err := driver.CompileFiles(ctx, inputs, config)
	status := 0
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		status = exitSoftware
	}
	for _, r := range results {
		if len(r.Errors) > 0 {
			fmt.Fprintf(os.Stderr, "%s:\n", r.Path)
			errors.DisplayErrors(r.Source, r.Errors)
			status = exitSoftware
			continue
		}
		output := driver.OutputPath(r.Path)
		if err := os.WriteFile(output, []byte(r.Output), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing JavaScript file: %s\n", err)
			status = exitSoftware
			continue
		}
		fmt.Printf("JavaScript code written to %s\n", output)
	}
	return status
}

func readSource(filename string) string {
	content, err := os.ReadFile(filename)
	if err != nil {
		return ""
	}
	return string(content)
}

func printValue(w io.Writer, v goja.Value) {
	if !jsvm.IsUndefined(v) {
		fmt.Fprintln(w, jsvm.Inspect(v))
	}
}

func runRepl(config driver.Config) int {
	fmt.Println("expando (Ctrl+D to exit, :quit to leave)")

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

	session := driver.NewSession(config, os.Stdout)
	for {
		src, ok := readInput(ln)
		if !ok {
			fmt.Println()
			return 0
		}
		trimmed := strings.TrimSpace(src)
		if trimmed == "" {
			continue
		}
		if trimmed == ":quit" {
			return 0
		}

		code, value, errs := session.Eval(src)
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		if code != "" {
			fmt.Print(code)
		}
		if len(errs) > 0 {
			errors.DisplayErrors(src, errs)
			continue
		}
		printValue(os.Stdout, value)
	}
}

// readInput reads lines until the input is complete: open brackets, a
// trailing arrow or an indented block keep the prompt going until a blank
// line.
func readInput(ln *liner.State) (string, bool) {
	var lines []string
	for {
		prompt := promptMain
		if len(lines) > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if stderrors.Is(err, io.EOF) {
			if len(lines) > 0 {
				return strings.Join(lines, "\n"), true
			}
			return "", false
		}
		if err != nil {
			return "", true
		}
		if len(lines) > 0 && strings.TrimSpace(line) == "" {
			return strings.Join(lines, "\n"), true
		}
		lines = append(lines, line)
		if !needsMore(lines) {
			return strings.Join(lines, "\n"), true
		}
	}
}

func needsMore(lines []string) bool {
	depth := 0
	inString := byte(0)
	for _, line := range lines {
		for i := 0; i < len(line); i++ {
			ch := line[i]
			switch {
			case inString != 0:
				if ch == '\\' {
					i++
				} else if ch == inString {
					inString = 0
				}
			case ch == '"' || ch == '\'':
				inString = ch
			case ch == '#':
				i = len(line)
			case ch == '(' || ch == '[' || ch == '{':
				depth++
			case ch == ')' || ch == ']' || ch == '}':
				depth--
			}
		}
	}
	if depth > 0 {
		return true
	}
	last := strings.TrimSpace(lines[len(lines)-1])
	if strings.HasSuffix(last, "->") || strings.HasSuffix(last, "=>") {
		return true
	}
	return len(lines) > 1
}

package driver

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"testing"

	"expando/pkg/jsvm"
)

const scriptsDebug = false

// Expectation is the expected outcome of a script.
type Expectation struct {
	ResultType string // "value", "runtime_error", "compile_error"
	Value      string // expected value or error message substring
}

var expectRegex = regexp.MustCompile(`^#\s*(expect(?:_runtime_error|_compile_error)?):\s*(.*)`)

// parseExpectation looks for a comment like
//
//	# expect: value
//	# expect_runtime_error: message
//	# expect_compile_error: message
func parseExpectation(scriptContent string) (*Expectation, error) {
	scanner := bufio.NewScanner(strings.NewReader(scriptContent))
	for scanner.Scan() {
		matches := expectRegex.FindStringSubmatch(scanner.Text())
		if len(matches) != 3 {
			continue
		}
		value := strings.TrimSpace(matches[2])
		switch matches[1] {
		case "expect":
			return &Expectation{ResultType: "value", Value: value}, nil
		case "expect_runtime_error":
			return &Expectation{ResultType: "runtime_error", Value: value}, nil
		case "expect_compile_error":
			return &Expectation{ResultType: "compile_error", Value: value}, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading script content: %w", err)
	}
	return nil, fmt.Errorf("no expectation comment found (e.g., # expect: value)")
}

func TestScripts(t *testing.T) {
	scriptDir := filepath.Join("testdata", "scripts")
	files, err := filepath.Glob(filepath.Join(scriptDir, "*.coffee"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatalf("no scripts in %s", scriptDir)
	}
	sort.Strings(files)

	for _, scriptPath := range files {
		t.Run(filepath.Base(scriptPath), func(t *testing.T) {
			content, err := os.ReadFile(scriptPath)
			if err != nil {
				t.Fatalf("Failed to read script file %q: %v", scriptPath, err)
			}
			expectation, err := parseExpectation(string(content))
			if err != nil {
				t.Fatalf("%s: %v", scriptPath, err)
			}

			code, errs := EmitJavaScriptFile(scriptPath, DefaultConfig())
			if scriptsDebug {
				fmt.Printf("--- %s ---\n%s", scriptPath, code)
			}
			if len(errs) > 0 {
				if expectation.ResultType != "compile_error" {
					t.Fatalf("Unexpected compile errors: %v", errs)
				}
				var all strings.Builder
				for _, e := range errs {
					all.WriteString(e.Error() + "\n")
					if strings.Contains(e.Error(), expectation.Value) {
						return
					}
				}
				t.Errorf("Expected compile error containing %q, but got errors:\n%s", expectation.Value, all.String())
				return
			}
			if expectation.ResultType == "compile_error" {
				t.Fatalf("Expected compile error containing %q, but compilation succeeded:\n%s", expectation.Value, code)
			}

			session := NewSession(DefaultConfig(), &strings.Builder{})
			_, value, errs := session.Eval(string(content))
			if len(errs) > 0 {
				if expectation.ResultType != "runtime_error" {
					t.Fatalf("Unexpected runtime error: %v\n%s", errs[0], code)
				}
				if !strings.Contains(errs[0].Error(), expectation.Value) {
					t.Errorf("Expected runtime error containing %q, got %q", expectation.Value, errs[0].Error())
				}
				return
			}
			if expectation.ResultType == "runtime_error" {
				t.Fatalf("Expected runtime error containing %q, but execution succeeded", expectation.Value)
			}

			if result, ok := session.Result(); ok {
				value = result
			}
			if got := jsvm.Inspect(value); got != expectation.Value {
				t.Errorf("Expected %s, got %s\n%s", expectation.Value, got, code)
			}
		})
	}
}

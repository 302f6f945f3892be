package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"expando/pkg/compiler"
	"expando/pkg/js"
)

// ConfigFileName is looked up in the working directory when no -config
// flag is given.
const ConfigFileName = "expando.yaml"

// hintNames lists the temporaries whose base names can be overridden.
var hintNames = []string{"adjustedLength", "args", "array", "obj", "rest", "val"}

// Config controls code generation and CompileFiles.
type Config struct {
	// Declaration is the keyword for emitted declarations: "let" or "var".
	Declaration string `yaml:"declaration"`
	// Indent is one level of indentation in the output.
	Indent string `yaml:"indent"`
	// Hints maps a temporary ("array", "val", ...) to another base name.
	Hints map[string]string `yaml:"hints"`
	// Workers bounds parallel compilation; zero means one per CPU.
	Workers int `yaml:"workers"`

	// Path is the file the config was loaded from, if any.
	Path string `yaml:"-"`
}

// DefaultConfig returns the configuration used without a config file.
func DefaultConfig() Config {
	return Config{Declaration: "let", Indent: js.DefaultIndent}
}

// LoadConfig reads a YAML config file. Unknown keys are errors.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return Config{}, fmt.Errorf("config: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	config := DefaultConfig()
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", abs, err)
	}
	config.Path = abs
	config.normalize()
	if err := config.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", abs, err)
	}
	return config, nil
}

// LoadDefaultConfig loads ConfigFileName from dir when it exists and
// returns DefaultConfig otherwise.
func LoadDefaultConfig(dir string) (Config, error) {
	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

func (c *Config) normalize() {
	c.Declaration = strings.TrimSpace(c.Declaration)
	if c.Declaration == "" {
		c.Declaration = "let"
	}
	if c.Indent == "" {
		c.Indent = js.DefaultIndent
	}
	for hint, base := range c.Hints {
		c.Hints[hint] = strings.TrimSpace(base)
	}
}

// Validate checks the declaration keyword and the hint table.
func (c Config) Validate() error {
	switch c.Declaration {
	case "", "let", "var":
	default:
		return fmt.Errorf("unsupported declaration keyword %q (want let or var)", c.Declaration)
	}
	if strings.Trim(c.Indent, " \t") != "" {
		return fmt.Errorf("indent must be spaces or tabs, got %q", c.Indent)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}

	hints := make([]string, 0, len(c.Hints))
	for hint := range c.Hints {
		hints = append(hints, hint)
	}
	sort.Strings(hints)
	for _, hint := range hints {
		i := sort.SearchStrings(hintNames, hint)
		if i == len(hintNames) || hintNames[i] != hint {
			return fmt.Errorf("unknown hint %q (known: %s)", hint, strings.Join(hintNames, ", "))
		}
		if !js.IsIdentifier(c.Hints[hint]) {
			return fmt.Errorf("hint %s: %q is not an identifier", hint, c.Hints[hint])
		}
	}
	return nil
}

// Options converts the config for the compiler.
func (c Config) Options() compiler.Options {
	return compiler.Options{Keyword: c.Declaration, Hints: c.Hints}
}

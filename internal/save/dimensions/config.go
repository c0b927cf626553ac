package dimensions

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

const (
	KindOverworld = "overworld"
	KindNether    = "nether"
	KindEnd       = "end"
)

// Config decides how a world directory is scanned for dimensions and what
// each discovered dimension is called.
type Config struct {
	// Recursive walks the whole world tree instead of only its direct
	// subdirectories.
	Recursive  bool            `yaml:"recursive"`
	// IgnoreDirs prunes directory names from the recursive walk.
	IgnoreDirs []string        `yaml:"ignore_dirs,omitempty"`
	Dimensions []DimensionSpec `yaml:"dimensions"`
}

type DimensionSpec struct {
	// Dir is slash-separated and relative to the world root.
	Dir  string `yaml:"dir"`
	Kind string `yaml:"kind"`
}

const schemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "recursive": {"type": "boolean"},
    "ignore_dirs": {"type": "array", "items": {"type": "string", "minLength": 1}},
    "dimensions": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["dir", "kind"],
        "properties": {
          "dir": {"type": "string", "minLength": 1},
          "kind": {"type": "string", "minLength": 1}
        }
      }
    }
  }
}`

var schema = jsonschema.MustCompileString("dimensions.schema.json", schemaJSON)

func Default() Config {
	return Config{
		Recursive:  false,
		IgnoreDirs: []string{"poi", "entities"},
		Dimensions: []DimensionSpec{
			{Dir: "region", Kind: KindOverworld},
			{Dir: "DIM-1/region", Kind: KindNether},
			{Dir: "DIM1/region", Kind: KindEnd},
		},
	}
}

// Load reads a dimensions YAML file. A blank path yields the defaults.
func Load(p string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(p) == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return cfg, err
	}
	return Parse(b)
}

func Parse(b []byte) (Config, error) {
	cfg := Default()
	if err := validateSchema(b); err != nil {
		return cfg, fmt.Errorf("dimensions.yaml: %w", err)
	}
	var parsed Config
	if err := yaml.Unmarshal(b, &parsed); err != nil {
		return cfg, fmt.Errorf("dimensions.yaml: %w", err)
	}
	if len(parsed.Dimensions) == 0 {
		parsed.Dimensions = cfg.Dimensions
	}
	if parsed.IgnoreDirs == nil {
		parsed.IgnoreDirs = cfg.IgnoreDirs
	}
	parsed.Normalize()
	if err := parsed.Validate(); err != nil {
		return cfg, fmt.Errorf("dimensions.yaml: %w", err)
	}
	return parsed, nil
}

// validateSchema checks the document shape before it is bound to Config, so
// typos in keys are reported instead of silently dropped.
func validateSchema(b []byte) error {
	var doc any
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return err
	}
	if doc == nil {
		return nil
	}
	// Round-trip through JSON so the validator sees plain JSON types.
	j, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(j, &v); err != nil {
		return err
	}
	return schema.Validate(v)
}

func (c *Config) Normalize() {
	if c == nil {
		return
	}
	for i := range c.Dimensions {
		c.Dimensions[i].Dir = cleanRel(c.Dimensions[i].Dir)
		c.Dimensions[i].Kind = strings.TrimSpace(c.Dimensions[i].Kind)
	}
	for i := range c.IgnoreDirs {
		c.IgnoreDirs[i] = strings.TrimSpace(c.IgnoreDirs[i])
	}
}

func (c Config) Validate() error {
	seen := map[string]bool{}
	kinds := map[string]string{}
	for _, d := range c.Dimensions {
		if d.Dir == "" || d.Dir == "." {
			return fmt.Errorf("dimension dir must not be empty")
		}
		if strings.HasPrefix(d.Dir, "../") || d.Dir == ".." {
			return fmt.Errorf("dimension dir %s escapes the world root", d.Dir)
		}
		if d.Kind == "" {
			return fmt.Errorf("dimension %s kind must not be empty", d.Dir)
		}
		if seen[d.Dir] {
			return fmt.Errorf("duplicate dimension dir: %s", d.Dir)
		}
		seen[d.Dir] = true
		// Kinds key per-dimension state downstream, so two dirs cannot share one.
		if prev, ok := kinds[d.Kind]; ok {
			return fmt.Errorf("dimension kind %s used by both %s and %s", d.Kind, prev, d.Dir)
		}
		kinds[d.Kind] = d.Dir
	}
	for _, name := range c.IgnoreDirs {
		if name == "" || strings.Contains(name, "/") {
			return fmt.Errorf("ignore_dirs entry %q must be a single directory name", name)
		}
	}
	return nil
}

// KindOf names the dimension stored at rel (relative to the world root).
// Unmapped directories are named by their relative path.
func (c Config) KindOf(rel string) string {
	if kind, ok := c.Match(rel); ok {
		return kind
	}
	return cleanRel(rel)
}

// Match reports the configured kind for rel, if any.
func (c Config) Match(rel string) (string, bool) {
	rel = cleanRel(rel)
	for _, d := range c.Dimensions {
		if d.Dir == rel {
			return d.Kind, true
		}
	}
	return "", false
}

func (c Config) Ignored(name string) bool {
	for _, n := range c.IgnoreDirs {
		if n == name {
			return true
		}
	}
	return false
}

func cleanRel(p string) string {
	p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
	if p == "" {
		return ""
	}
	return path.Clean(p)
}

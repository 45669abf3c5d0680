package project

import (
	"fmt"
	"go/token"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
)

// Config is the parsed modbind.toml. Keys absent from the file keep the
// values of Default.
type Config struct {
	// Path is the file the config was read from; empty for defaults.
	Path     string         `toml:"-"`
	Generate GenerateConfig `toml:"generate"`
	Tool     ToolConfig     `toml:"tool"`
	Packages PackagesConfig `toml:"packages"`
}

type GenerateConfig struct {
	Prefix     string `toml:"prefix"`
	Output     string `toml:"output"`
	Runtime    string `toml:"runtime"`
	NameConst  string `toml:"name_const"`
	ExtendFunc string `toml:"extend_func"`
	MakeFunc   string `toml:"make_func"`
	FileGuards bool   `toml:"file_guards"`
}

type ToolConfig struct {
	// Requires is a semver constraint on the modbind version, e.g. ">= 0.1.0".
	Requires string `toml:"requires"`
}

type PackagesConfig struct {
	// Dirs are the package directories processed when no argument is given,
	// relative to the config file.
	Dirs []string `toml:"dirs"`
}

func Default() Config {
	return Config{
		Generate: GenerateConfig{
			Prefix:     "modbind",
			Output:     "zz_modbind.go",
			Runtime:    "modbind/rt",
			NameConst:  "ModuleName",
			ExtendFunc: "ExtendModule",
			MakeFunc:   "MakeModule",
			FileGuards: true,
		},
	}
}

// Root is the directory of the config file, or "" for defaults.
func (c Config) Root() string {
	if c.Path == "" {
		return ""
	}
	return filepath.Dir(c.Path)
}

// Load parses path on top of Default and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		slices.Sort(keys)
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Discover loads the nearest modbind.toml above startDir. Without one it
// returns Default and ok=false.
func Discover(startDir string) (cfg Config, ok bool, err error) {
	path, ok, err := FindConfig(startDir)
	if err != nil {
		return Config{}, false, err
	}
	if !ok {
		return Default(), false, nil
	}
	cfg, err = Load(path)
	if err != nil {
		return Config{}, true, err
	}
	return cfg, true, nil
}

// Validate checks that generated identifiers and file names are usable.
func (c Config) Validate() error {
	g := c.Generate
	for _, f := range []struct{ key, value string }{
		{"prefix", g.Prefix},
		{"name_const", g.NameConst},
		{"extend_func", g.ExtendFunc},
		{"make_func", g.MakeFunc},
	} {
		if !token.IsIdentifier(f.value) {
			return fmt.Errorf("[generate].%s must be a Go identifier, got %q", f.key, f.value)
		}
	}
	if slices.Contains([]string{g.NameConst, g.MakeFunc}, g.ExtendFunc) || g.NameConst == g.MakeFunc {
		return fmt.Errorf("[generate] name_const, extend_func and make_func must differ")
	}
	if filepath.Base(g.Output) != g.Output || !strings.HasSuffix(g.Output, ".go") || strings.HasSuffix(g.Output, "_test.go") {
		return fmt.Errorf("[generate].output must be a plain .go file name, got %q", g.Output)
	}
	if strings.TrimSpace(g.Runtime) == "" {
		return fmt.Errorf("[generate].runtime must not be empty")
	}
	if c.Tool.Requires != "" {
		if _, err := semver.NewConstraint(c.Tool.Requires); err != nil {
			return fmt.Errorf("[tool].requires: %w", err)
		}
	}
	return nil
}

// CheckTool verifies that version satisfies [tool].requires.
func (c Config) CheckTool(version string) error {
	if c.Tool.Requires == "" {
		return nil
	}
	constraint, err := semver.NewConstraint(c.Tool.Requires)
	if err != nil {
		return fmt.Errorf("[tool].requires: %w", err)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("modbind version %q is not a semantic version: %w", version, err)
	}
	// prerelease builds are compared by their release part
	if v.Prerelease() != "" {
		rel, _ := v.SetPrerelease("")
		v = &rel
	}
	if ok, errs := constraint.Validate(v); !ok {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return fmt.Errorf("modbind %s does not satisfy [tool].requires %q: %s", version, c.Tool.Requires, strings.Join(msgs, "; "))
	}
	return nil
}

// PackageDirs resolves [packages].dirs against the config root.
func (c Config) PackageDirs() []string {
	out := make([]string, 0, len(c.Packages.Dirs))
	for _, d := range c.Packages.Dirs {
		if !filepath.IsAbs(d) {
			d = filepath.Join(c.Root(), filepath.FromSlash(d))
		}
		out = append(out, d)
	}
	return out
}

// Digest fingerprints every setting that affects generated output.
func (c Config) Digest() Digest {
	g := c.Generate
	return HashString(strings.Join([]string{
		g.Prefix, g.Output, g.Runtime, g.NameConst, g.ExtendFunc, g.MakeFunc,
		fmt.Sprint(g.FileGuards),
	}, "\x00"))
}

// Command jaqc drives the resolver over a pre-parsed module or def body
// supplied as JSON, since lexing and parsing a surface syntax are out of
// scope for this module. It exists to exercise compile_module/compile_def
// end to end and to give the resolver a small, real entry point rather
// than only a library API.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opal-lang/jaq/config"
	"github.com/opal-lang/jaq/internal/cache"
	"github.com/opal-lang/jaq/resolve"
)

type moduleOutput struct {
	Table       interface{}          `json:"table"`
	Top         interface{}          `json:"top"`
	Diagnostics []resolve.Diagnostic `json:"diagnostics"`
	CacheHit    bool                 `json:"cacheHit"`
}

type defOutput struct {
	Body        interface{}          `json:"body"`
	Diagnostics []resolve.Diagnostic `json:"diagnostics"`
}

func main() {
	var configPath string
	var modulePath string
	var defPath string

	root := &cobra.Command{
		Use:   "jaqc",
		Short: "Resolve a pre-parsed module or def body into name-free IR",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "resolver config YAML file (default: built-in defaults)")

	moduleCmd := &cobra.Command{
		Use:   "module",
		Short: "Resolve a pre-parsed module (compile_module)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return runModule(modulePath, cfg)
		},
	}
	moduleCmd.Flags().StringVarP(&modulePath, "file", "f", "-", "module JSON file, or - for stdin")

	defCmd := &cobra.Command{
		Use:   "def",
		Short: "Resolve a standalone def body against the built-in registry (compile_def)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDef(defPath)
		},
	}
	defCmd.Flags().StringVarP(&defPath, "file", "f", "-", "def body JSON file, or - for stdin")

	root.AddCommand(moduleCmd, defCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := config.Load(data)
	if err != nil {
		return config.Config{}, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// moduleCache is in-memory and process-lifetime. A jaqc invocation
// compiles a single input, so each run starts with an empty cache and
// a hit cannot carry over from an earlier run. Only diagnostic-free
// compiles are cached.
var moduleCache = cache.New()

func runModule(path string, cfg config.Config) error {
	data, err := readInput(path)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	key, err := cache.KeyOf(string(data))
	if err != nil {
		return fmt.Errorf("hashing input: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if entry, hit := moduleCache.Get(key); hit {
		return enc.Encode(moduleOutput{Table: entry.Table, Top: entry.Top, CacheHit: true})
	}

	var wm wireModule
	if err := json.Unmarshal(data, &wm); err != nil {
		return fmt.Errorf("parsing module JSON: %w", err)
	}
	mod, err := wm.toAST()
	if err != nil {
		return fmt.Errorf("decoding module: %w", err)
	}

	diags := &resolve.Diagnostics{}
	table, top := resolve.ModuleWithLimits(mod, cfg.MaxDefDepth, diags)
	if diags.Empty() {
		moduleCache.Put(key, &cache.Entry{Table: table, Top: top})
	}

	return enc.Encode(moduleOutput{Table: table, Top: top, Diagnostics: diags.Items()})
}

func runDef(path string) error {
	data, err := readInput(path)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	var wd wireDefBody
	if err := json.Unmarshal(data, &wd); err != nil {
		return fmt.Errorf("parsing def JSON: %w", err)
	}
	preBoundVars, args, body, err := wd.toAST()
	if err != nil {
		return fmt.Errorf("decoding def: %w", err)
	}

	registry := defaultBuiltins()
	diags := &resolve.Diagnostics{}
	result := resolve.Def(registry.Lookup, preBoundVars, args, body, diags)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(defOutput{Body: result, Diagnostics: diags.Items()})
}

func readInput(path string) ([]byte, error) {
	if path == "-" || path == "" {
		return os.ReadFile("/dev/stdin")
	}
	return os.ReadFile(path)
}

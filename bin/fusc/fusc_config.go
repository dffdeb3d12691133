// Copyright (c) 2024 John Millikin <john@john-millikin.com>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"

	"go.fus-lang.org/fus/compiler"
)

const defaultConfigPath = "fusc.toml"

type config struct {
	Compiler compilerConfig `toml:"compiler"`
	Inputs   inputsConfig   `toml:"inputs"`
	Codegen  codegenConfig  `toml:"codegen"`
	Watch    watchConfig    `toml:"watch"`
}

type compilerConfig struct {
	CanRebind bool `toml:"can_rebind"`
	CanRedef  bool `toml:"can_redef"`
	Debug     bool `toml:"debug"`
}

type inputsConfig struct {
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

type codegenConfig struct {
	PluginPath string `toml:"plugin_path"`
	Language   string `toml:"language"`
	Output     string `toml:"output"`
}

type watchConfig struct {
	Debounce time.Duration `toml:"debounce"`
}

// loadConfig reads the config file at path. An empty path reads fusc.toml
// from the working directory if it exists.
func loadConfig(path string) (*config, error) {
	required := path != ""
	if path == "" {
		path = defaultConfigPath
	}

	var cfg config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			applyDefaults(&cfg)
			return &cfg, nil
		}
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for ii, key := range undecoded {
			keys[ii] = key.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *config) {
	if len(cfg.Inputs.Include) == 0 {
		cfg.Inputs.Include = []string{"*.fus"}
	}
	if strings.TrimSpace(cfg.Codegen.Language) == "" {
		cfg.Codegen.Language = "c"
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 200 * time.Millisecond
	}
}

func validateConfig(cfg *config) error {
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	if strings.ContainsAny(cfg.Codegen.Language, "/\\:") {
		return fmt.Errorf("invalid codegen.language %q", cfg.Codegen.Language)
	}
	return nil
}

func (cfg *config) compileOptions(log *slog.Logger) *compiler.CompileOptions {
	return compiler.NewCompileOptions(
		compiler.WithRebind(cfg.Compiler.CanRebind),
		compiler.WithRedef(cfg.Compiler.CanRedef),
		compiler.WithDebug(cfg.Compiler.Debug),
		compiler.WithLogger(log),
	)
}

// compileFlags are shared by the commands that compile their inputs.
// Set flags override the config file.
type compileFlags struct {
	configPath string
	debug      bool
	rebind     bool
	redef      bool
	include    []string
	exclude    []string
}

func (f *compileFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.configPath, "config", "", "config file (default ./fusc.toml if present)")
	flags.BoolVarP(&f.debug, "debug", "D", false, "log debug output and dump compiler state")
	flags.BoolVar(&f.rebind, "rebind", false, "allow \"from\" to rebind a name")
	flags.BoolVar(&f.redef, "redef", false, "allow typedefs to be redefined")
	flags.StringSliceVar(&f.include, "include", nil, "glob of file names to compile within directories")
	flags.StringSliceVar(&f.exclude, "exclude", nil, "glob of file or directory names to skip")
}

func (f *compileFlags) load() (*config, error) {
	cfg, err := loadConfig(f.configPath)
	if err != nil {
		return nil, err
	}
	cfg.Compiler.Debug = cfg.Compiler.Debug || f.debug
	cfg.Compiler.CanRebind = cfg.Compiler.CanRebind || f.rebind
	cfg.Compiler.CanRedef = cfg.Compiler.CanRedef || f.redef
	if len(f.include) > 0 {
		cfg.Inputs.Include = f.include
	}
	cfg.Inputs.Exclude = append(cfg.Inputs.Exclude, f.exclude...)
	return cfg, nil
}

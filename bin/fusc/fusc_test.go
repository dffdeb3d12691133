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
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.fus-lang.org/fus/compiler"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestInputFilterExpand(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"b.fus":            "",
		"a.fus":            "",
		"notes.txt":        "",
		"sub/c.fus":        "",
		"vendor/d.fus":     "",
		"sub/skip_me.fus":  "",
		"explicit.typedef": "",
	})

	filter, err := newInputFilter([]string{"*.fus"}, []string{"vendor", "skip_*"})
	require.NoError(t, err)

	got, err := filter.expand([]string{
		filepath.Join(dir, "explicit.typedef"),
		dir,
		filepath.Join(dir, "a.fus"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "explicit.typedef"),
		filepath.Join(dir, "a.fus"),
		filepath.Join(dir, "b.fus"),
		filepath.Join(dir, "sub", "c.fus"),
	}, got)
}

func TestInputFilterErrors(t *testing.T) {
	t.Parallel()
	_, err := newInputFilter([]string{"[unclosed"}, nil)
	assert.ErrorContains(t, err, "invalid include pattern")

	filter, err := newInputFilter([]string{"*.fus"}, nil)
	require.NoError(t, err)
	_, err = filter.expand([]string{filepath.Join(t.TempDir(), "missing.fus")})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "fusc.toml")
	writeFiles(t, dir, map[string]string{"fusc.toml": `
[compiler]
can_rebind = true

[inputs]
include = ["*.fus", "*.fusdef"]
exclude = ["testdata"]

[codegen]
plugin_path = "/opt/fusc/plugins"
language = "go"

[watch]
debounce = "1s"
`})

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.Compiler.CanRebind)
	assert.False(t, cfg.Compiler.CanRedef)
	assert.Equal(t, []string{"*.fus", "*.fusdef"}, cfg.Inputs.Include)
	assert.Equal(t, []string{"testdata"}, cfg.Inputs.Exclude)
	assert.Equal(t, "/opt/fusc/plugins", cfg.Codegen.PluginPath)
	assert.Equal(t, "go", cfg.Codegen.Language)
	assert.Equal(t, time.Second, cfg.Watch.Debounce)
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "fusc.toml")
	writeFiles(t, dir, map[string]string{"fusc.toml": ""})

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"*.fus"}, cfg.Inputs.Include)
	assert.Equal(t, "c", cfg.Codegen.Language)
	assert.Equal(t, 200*time.Millisecond, cfg.Watch.Debounce)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"unknown.toml":  "[compiler]\ncan_rebnd = true\n",
		"language.toml": "[codegen]\nlanguage = \"../c\"\n",
		"syntax.toml":   "[compiler\n",
	})

	_, err := loadConfig(filepath.Join(dir, "unknown.toml"))
	assert.ErrorContains(t, err, "unknown keys: compiler.can_rebnd")

	_, err = loadConfig(filepath.Join(dir, "language.toml"))
	assert.ErrorContains(t, err, "invalid codegen.language")

	_, err = loadConfig(filepath.Join(dir, "syntax.toml"))
	assert.Error(t, err)

	_, err = loadConfig(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCompileFlagsOverrideConfig(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "fusc.toml")
	writeFiles(t, dir, map[string]string{"fusc.toml": `
[inputs]
include = ["*.fusdef"]
exclude = ["a"]
`})

	flags := compileFlags{
		configPath: path,
		redef:      true,
		include:    []string{"*.fus"},
		exclude:    []string{"b"},
	}
	cfg, err := flags.load()
	require.NoError(t, err)
	assert.True(t, cfg.Compiler.CanRedef)
	assert.False(t, cfg.Compiler.CanRebind)
	assert.Equal(t, []string{"*.fus"}, cfg.Inputs.Include)
	assert.Equal(t, []string{"a", "b"}, cfg.Inputs.Exclude)
}

func TestCompileCommand(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"geom/point.fus": "typedef point: struct: (x (int)) (y (int))\n",
		"geom/line.fus":  "typedef line: struct: (a (inplace @point)) (b (inplace @point))\n",
	})
	outPath := filepath.Join(dir, "graph.json")

	var stdout, stderr bytes.Buffer
	cmd := &cmdCompile{
		cmdIO:        cmdIO{stdout: &stdout, stderr: &stderr},
		compileFlags: compileFlags{configPath: writeEmptyConfig(t, dir)},
		outPath:      outPath,
	}
	rc := cmd.run(context.Background(), []string{filepath.Join(dir, "geom")})
	require.Equal(t, 0, rc, stderr.String())
	assert.Contains(t, stderr.String(), "msg=compiling")
	assert.Contains(t, stderr.String(), "msg=\"done compiling\"")

	buf, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var graph compiler.Graph
	require.NoError(t, json.Unmarshal(buf, &graph))
	assert.Equal(t, []string{"point", "line"}, graph.InplaceOrder)
	require.Len(t, graph.Defs, 2)
	assert.Equal(t, "point", graph.Defs[0].Name)
	assert.Empty(t, stdout.String())
}

func TestCompileCommandStdout(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.fus": "typedef a: int\n"})

	var stdout, stderr bytes.Buffer
	cmd := &cmdCompile{
		cmdIO:        cmdIO{stdout: &stdout, stderr: &stderr},
		compileFlags: compileFlags{configPath: writeEmptyConfig(t, dir)},
		outPath:      "-",
	}
	rc := cmd.run(context.Background(), []string{filepath.Join(dir, "a.fus")})
	require.Equal(t, 0, rc, stderr.String())

	var graph compiler.Graph
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &graph))
	require.Len(t, graph.Defs, 1)
	assert.Equal(t, "int", graph.Defs[0].Tag)
}

func TestCompileCommandErrors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"bad.fus": "typedef a: struct: (b (inplace int)) (c (@missing))\n",
	})

	var stderr bytes.Buffer
	cmd := &cmdCompile{
		cmdIO:        cmdIO{stderr: &stderr},
		compileFlags: compileFlags{configPath: writeEmptyConfig(t, dir)},
	}
	rc := cmd.run(context.Background(), []string{filepath.Join(dir, "bad.fus")})
	assert.Equal(t, 1, rc)
	assert.Contains(t, stderr.String(), "E4000: Def is undefined: missing")
	assert.Contains(t, stderr.String(), "E4001: \"inplace\" reference not allowed to: int")
	assert.Contains(t, stderr.String(), "...while validating field b of: a")

	stderr.Reset()
	rc = cmd.run(context.Background(), nil)
	assert.Equal(t, 1, rc)
	assert.Contains(t, stderr.String(), "usage: fusc compile")

	stderr.Reset()
	rc = cmd.run(context.Background(), []string{filepath.Join(dir, "empty")})
	assert.Equal(t, 1, rc)
}

func TestCompileCommandDebugDump(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.fus": "typedef a: int\n"})

	var stderr bytes.Buffer
	cmd := &cmdCompile{
		cmdIO: cmdIO{stderr: &stderr},
		compileFlags: compileFlags{
			configPath: writeEmptyConfig(t, dir),
			debug:      true,
		},
	}
	rc := cmd.run(context.Background(), []string{filepath.Join(dir, "a.fus")})
	require.Equal(t, 0, rc, stderr.String())
	assert.Contains(t, stderr.String(), "strings:")
	assert.Contains(t, stderr.String(), "defs:\n    a: int\n")
	assert.Contains(t, stderr.String(), "level=DEBUG")
}

func TestCompileWatch(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	src := filepath.Join(dir, "a.fus")
	writeFiles(t, dir, map[string]string{"a.fus": "typedef a: int\n"})

	filter, err := newInputFilter([]string{"*.fus"}, nil)
	require.NoError(t, err)

	changed := make(chan []string, 4)
	w, err := newWatcher(newTestLogger(), 20*time.Millisecond, filter, func(paths []string) {
		changed <- paths
	})
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.watch([]string{dir}))

	require.NoError(t, os.WriteFile(src, []byte("typedef a: bool\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644))

	select {
	case paths := <-changed:
		assert.Equal(t, []string{src}, paths)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestTokenTreeCommand(t *testing.T) {
	t.Parallel()
	var stdout, stderr bytes.Buffer
	cmd := &cmdTokenTree{
		cmdIO:  cmdIO{stdout: &stdout, stderr: &stderr},
		inline: true,
		stdin:  bytes.NewBufferString("typedef p: struct: (x (int))\n"),
	}
	rc := cmd.run(context.Background(), []string{"-"})
	require.Equal(t, 0, rc, stderr.String())
	assert.Equal(t, "typedef\np\n(struct ((x (int))))\n", stdout.String())

	stderr.Reset()
	cmd.stdin = bytes.NewBufferString("a )")
	rc = cmd.run(context.Background(), []string{"-"})
	assert.Equal(t, 1, rc)
	assert.Contains(t, stderr.String(), "-: row 1: col 3:")
}

func TestOutPath(t *testing.T) {
	t.Parallel()
	got, err := outPath("out", []string{"include", "types.h"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("out", "include", "types.h"), got)

	for _, parts := range [][]string{
		nil,
		{""},
		{"."},
		{"a", ".."},
		{"/etc"},
		{"a/b"},
		{"a\\b"},
	} {
		_, err := outPath("out", parts)
		assert.Error(t, err, "%#v", parts)
	}
}

func TestWriteOutputFilesChecksAllPaths(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "out")
	err := writeOutputFiles(dir, []*outputFile{
		{Path: []string{"ok.h"}, Content: "ok"},
		{Path: []string{".."}, Content: "bad"},
	})
	assert.Error(t, err)
	_, statErr := os.Stat(dir)
	assert.ErrorIs(t, statErr, os.ErrNotExist)

	require.NoError(t, writeOutputFiles(dir, []*outputFile{
		{Path: []string{"sub", "types.h"}, Content: "typedef int x;\n"},
	}))
	buf, err := os.ReadFile(filepath.Join(dir, "sub", "types.h"))
	require.NoError(t, err)
	assert.Equal(t, "typedef int x;\n", string(buf))
}

func TestLocatePlugin(t *testing.T) {
	t.Parallel()
	first, second := t.TempDir(), t.TempDir()
	writeFiles(t, second, map[string]string{"fusc-codegen-c.wasm": ""})

	searchPath := first + string(filepath.ListSeparator) + second
	got, err := locatePlugin(searchPath, "c")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(second, "fusc-codegen-c.wasm"), got)

	_, err = locatePlugin(searchPath, "go")
	assert.ErrorContains(t, err, "fusc-codegen-go.wasm not found")
}

func TestLocatePluginEnv(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"fusc-codegen-c.wasm": ""})

	t.Setenv(pluginPathEnv, "")
	_, err := locatePlugin("", "c")
	assert.ErrorContains(t, err, "No plugin path set")

	t.Setenv(pluginPathEnv, dir)
	got, err := locatePlugin("", "c")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "fusc-codegen-c.wasm"), got)
}

func TestDecodeResponse(t *testing.T) {
	t.Parallel()
	response, err := decodeResponse([]byte(`{"files":[{"path":["a.h"],"content":"x"}]}`))
	require.NoError(t, err)
	require.Len(t, response.Files, 1)
	assert.Equal(t, []string{"a.h"}, response.Files[0].Path)

	_, err = decodeResponse([]byte("not json"))
	assert.ErrorContains(t, err, "Invalid plugin response")
}

func TestCodegenCommandErrors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.fus": "typedef a: int\n"})
	input := filepath.Join(dir, "a.fus")

	var stderr bytes.Buffer
	cmd := &cmdCodegen{
		cmdIO:        cmdIO{stderr: &stderr},
		compileFlags: compileFlags{configPath: writeEmptyConfig(t, dir)},
	}
	assert.Equal(t, 1, cmd.run(context.Background(), []string{input}))
	assert.Contains(t, stderr.String(), "No output directory specified")

	stderr.Reset()
	cmd.outDir = filepath.Join(dir, "out")
	cmd.pluginPath = filepath.Join(dir, "plugins")
	assert.Equal(t, 1, cmd.run(context.Background(), []string{input}))
	assert.Contains(t, stderr.String(), "fusc-codegen-c.wasm not found")

	stderr.Reset()
	writeFiles(t, dir, map[string]string{"plugins/fusc-codegen-c.wasm": "not wasm"})
	assert.Equal(t, 1, cmd.run(context.Background(), []string{input}))
	_, err := os.Stat(cmd.outDir)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func writeEmptyConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "fusc.toml")
	if _, err := os.Stat(path); err != nil {
		require.NoError(t, os.WriteFile(path, nil, 0o644))
	}
	return path
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

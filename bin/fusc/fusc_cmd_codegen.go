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
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	wasm "github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"go.fus-lang.org/fus/compiler"
)

const pluginPathEnv = "FUSC_CODEGEN_PLUGIN_PATH"

// codegenRequest is passed to the plugin as JSON.
type codegenRequest struct {
	Language string          `json:"language"`
	Graph    *compiler.Graph `json:"graph"`
}

type codegenResponse struct {
	Error string        `json:"error,omitempty"`
	Files []*outputFile `json:"files"`
}

type outputFile struct {
	Path    []string `json:"path"`
	Content string   `json:"content"`
}

type cmdCodegen struct {
	cmdIO
	compileFlags
	outDir     string
	pluginPath string
	language   string
}

func (*cmdCodegen) help() *commandHelp {
	return &commandHelp{
		usage:   "codegen [flags] FILE|DIR...",
		summary: "Compile type definitions and run a code generator plugin",
	}
}

func (cmd *cmdCodegen) flags(flags *pflag.FlagSet) {
	cmd.compileFlags.register(flags)
	flags.StringVarP(&cmd.outDir, "output", "o", "", "directory to write generated files to")
	flags.StringVar(&cmd.pluginPath, "plugin-path", "", "colon-separated directories to search for plugins")
	flags.StringVarP(&cmd.language, "language", "l", "", "language to generate (default \"c\")")
}

func (cmd *cmdCodegen) run(ctx context.Context, argv []string) int {
	if len(argv) < 1 {
		fmt.Fprintln(cmd.errOut(), "usage: fusc codegen [flags] FILE|DIR...")
		return 1
	}

	cfg, err := cmd.compileFlags.load()
	if err != nil {
		fmt.Fprintln(cmd.errOut(), err)
		return 1
	}
	if cmd.outDir != "" {
		cfg.Codegen.Output = cmd.outDir
	}
	if cmd.pluginPath != "" {
		cfg.Codegen.PluginPath = cmd.pluginPath
	}
	if cmd.language != "" {
		cfg.Codegen.Language = cmd.language
	}
	if cfg.Codegen.Output == "" {
		fmt.Fprintln(cmd.errOut(), "No output directory specified (set --output=)")
		return 1
	}
	log := cmd.logger(cfg.Compiler.Debug)

	filter, err := newInputFilter(cfg.Inputs.Include, cfg.Inputs.Exclude)
	if err != nil {
		fmt.Fprintln(cmd.errOut(), err)
		return 1
	}
	c, ok := compileInputs(log, cfg, filter, argv, cmd.errOut())
	if !ok {
		return 1
	}

	request, err := json.Marshal(&codegenRequest{
		Language: cfg.Codegen.Language,
		Graph:    compiler.ExportGraph(c),
	})
	if err != nil {
		fmt.Fprintln(cmd.errOut(), err)
		return 1
	}

	pluginPath, err := locatePlugin(cfg.Codegen.PluginPath, cfg.Codegen.Language)
	if err != nil {
		fmt.Fprintln(cmd.errOut(), err)
		return 1
	}
	pluginBin, err := os.ReadFile(pluginPath)
	if err != nil {
		fmt.Fprintln(cmd.errOut(), err)
		return 1
	}
	log.Debug("running plugin", "path", pluginPath, "request_bytes", len(request))

	response, err := runPlugin(ctx, pluginBin, request, cmd.errOut())
	if err != nil {
		fmt.Fprintln(cmd.errOut(), err)
		return 1
	}
	if response.Error != "" {
		fmt.Fprintln(cmd.errOut(), strings.TrimRight(response.Error, "\n"))
		return 1
	}
	if len(response.Files) == 0 {
		fmt.Fprintln(cmd.errOut(), "Plugin did not generate any output files")
		return 1
	}
	if err := writeOutputFiles(cfg.Codegen.Output, response.Files); err != nil {
		fmt.Fprintln(cmd.errOut(), err)
		return 1
	}
	log.Info("generated", "files", len(response.Files), "output", cfg.Codegen.Output)
	return 0
}

// runPlugin passes request to a plugin's fusc_codegen_generate export and
// decodes its response. The plugin writes a pointer to its response, a
// little-endian uint32 length followed by that many bytes of JSON, into
// memory allocated with fusc_codegen_allocate.
func runPlugin(ctx context.Context, pluginBin []byte, request []byte, stderr io.Writer) (*codegenResponse, error) {
	runtimeConfig := wasm.NewRuntimeConfigInterpreter()
	runtimeConfig = runtimeConfig.WithMemoryLimitPages(16384)
	runtime := wasm.NewRuntimeWithConfig(ctx, runtimeConfig)
	defer runtime.Close(ctx)

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, runtime); err != nil {
		return nil, err
	}

	pluginExe, err := runtime.CompileModule(ctx, pluginBin)
	if err != nil {
		return nil, err
	}
	moduleConfig := wasm.NewModuleConfig().WithStderr(stderr)
	plugin, err := runtime.InstantiateModule(ctx, pluginExe, moduleConfig)
	if err != nil {
		return nil, err
	}
	mem := plugin.Memory()
	if mem == nil {
		return nil, errors.New("Plugin does not export its memory")
	}

	wasmAlloc := plugin.ExportedFunction("fusc_codegen_allocate")
	wasmGenerate := plugin.ExportedFunction("fusc_codegen_generate")
	if wasmAlloc == nil || wasmGenerate == nil {
		return nil, errors.New("Plugin does not export fusc_codegen_allocate and fusc_codegen_generate")
	}

	results, err := wasmAlloc.Call(ctx, uint64(len(request)))
	if err != nil {
		return nil, err
	}
	requestPtr := uint32(results[0])
	if !mem.Write(requestPtr, request) {
		return nil, errors.New("Failed to write request message")
	}

	results, err = wasmAlloc.Call(ctx, 4)
	if err != nil {
		return nil, err
	}
	responsePtrPtr := uint32(results[0])

	results, err = wasmGenerate.Call(
		ctx,
		uint64(requestPtr),
		uint64(len(request)),
		uint64(responsePtrPtr),
	)
	if err != nil {
		return nil, err
	}
	rc := uint8(results[0])

	responsePtr, ok := mem.ReadUint32Le(responsePtrPtr)
	if !ok {
		return nil, errors.New("Failed to read response pointer")
	}
	header, ok := mem.Read(responsePtr, 4)
	if !ok {
		return nil, errors.New("Failed to read response message length")
	}
	responseBuf, ok := mem.Read(responsePtr+4, binary.LittleEndian.Uint32(header))
	if !ok {
		return nil, errors.New("Failed to read response message")
	}

	response, err := decodeResponse(responseBuf)
	if err != nil {
		return nil, err
	}
	if rc != 0 && response.Error == "" {
		response.Error = fmt.Sprintf("Plugin failed with status %d", rc)
	}
	return response, nil
}

func decodeResponse(buf []byte) (*codegenResponse, error) {
	var response codegenResponse
	if err := json.Unmarshal(buf, &response); err != nil {
		return nil, fmt.Errorf("Invalid plugin response: %w", err)
	}
	return &response, nil
}

func locatePlugin(searchPath, language string) (string, error) {
	if searchPath == "" {
		searchPath = os.Getenv(pluginPathEnv)
	}
	if searchPath == "" {
		return "", fmt.Errorf("No plugin path set, use --plugin-path= or $%s", pluginPathEnv)
	}
	basename := fmt.Sprintf("fusc-codegen-%s.wasm", language)
	for _, dir := range filepath.SplitList(searchPath) {
		if dir == "" {
			continue
		}
		pluginPath := filepath.Join(dir, basename)
		if _, err := os.Stat(pluginPath); err == nil {
			return pluginPath, nil
		}
	}
	return "", fmt.Errorf("Codegen plugin %s not found in plugin path", basename)
}

func outPath(outDir string, parts []string) (string, error) {
	if len(parts) == 0 {
		return "", fmt.Errorf("Invalid output path %#v: empty", parts)
	}
	for _, part := range parts {
		if part == "" || part == "." || part == ".." {
			return "", fmt.Errorf("Invalid output path %#v: bad path component %q", parts, part)
		}
		if part[0] == '/' || filepath.IsAbs(part) {
			return "", fmt.Errorf("Invalid output path %#v: absolute path component %q", parts, part)
		}
		if strings.ContainsAny(part, "/\\") {
			return "", fmt.Errorf("Invalid output path %#v: component %q contains a path separator", parts, part)
		}
	}
	return filepath.Join(append([]string{outDir}, parts...)...), nil
}

// writeOutputFiles checks every path before writing any file.
func writeOutputFiles(outDir string, files []*outputFile) error {
	paths := make([]string, len(files))
	for ii, file := range files {
		path, err := outPath(outDir, file.Path)
		if err != nil {
			return err
		}
		paths[ii] = path
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	for ii, file := range files {
		if err := os.MkdirAll(filepath.Dir(paths[ii]), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(paths[ii], []byte(file.Content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

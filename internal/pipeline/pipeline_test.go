package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
	"github.com/tpglitch/BatPU-2-SE/internal/encoder"
	"github.com/tpglitch/BatPU-2-SE/internal/format"
	"github.com/tpglitch/BatPU-2-SE/internal/options"
	"github.com/tpglitch/BatPU-2-SE/internal/parser"
	"github.com/tpglitch/BatPU-2-SE/internal/schematic"
	"github.com/tpglitch/BatPU-2-SE/internal/symbols"
)

const testSource = `
define LIMIT 10
start:
  ldi r1 LIMIT
loop:
  dec r1
  brh notzero loop
  jmp start
`

func TestNew(t *testing.T) {
	logger := log.NewTestLogger(t)
	p := New(logger)

	assert.NotNil(t, p)
	assert.NotNil(t, p.logger)
	assert.NotNil(t, p.detector)
	assert.NotNil(t, p.loader)
}

func TestExecuteWithSource(t *testing.T) {
	logger := log.NewTestLogger(t)
	p := New(logger)

	var buf bytes.Buffer
	asmOpts := options.NewAssembler(options.Program{})
	result, err := p.ExecuteWithSource(context.Background(), "prog.as", "start: ldi r0 5\njmp start\n",
		options.Program{}, asmOpts, &buf)
	assert.NoError(t, err)

	assert.Len(t, result.Words, 2)
	assert.Equal(t, uint16(0x8005), result.Words[0].Value)
	assert.Equal(t, uint16(0xA000), result.Words[1].Value)
	assert.Len(t, result.Symbols, 1)
	assert.Equal(t, "start", result.Symbols[0].Name)
	assert.Equal(t, 0, result.Symbols[0].Value)
	assert.Equal(t, "1000000000000101\n1010000000000000\n", buf.String())
}

func TestExecuteWithSource_Outputs(t *testing.T) {
	logger := log.NewTestLogger(t)
	p := New(logger)
	var dump bytes.Buffer
	p.dump = &dump

	dir := t.TempDir()
	opts := options.Program{
		Parameters: options.Parameters{
			Output:    filepath.Join(dir, "prog.mc"),
			Schematic: filepath.Join(dir, "prog.schem"),
			Symbols:   filepath.Join(dir, "prog.sym"),
		},
		Flags: options.Flags{Verify: true, Dump: true},
	}
	asmOpts := options.NewAssembler(opts)

	output, err := os.Create(opts.Output)
	assert.NoError(t, err)
	defer func() { _ = output.Close() }()

	result, err := p.ExecuteWithSource(context.Background(), "prog.as", testSource, opts, asmOpts, output)
	assert.NoError(t, err)
	assert.Len(t, result.Words, 4)

	syms, err := os.ReadFile(opts.Symbols)
	assert.NoError(t, err)
	assert.True(t, strings.Contains(string(syms), "start label 0\n"))
	assert.True(t, strings.Contains(string(syms), "loop label 1\n"))
	assert.True(t, strings.Contains(string(syms), "limit constant 10\n"))

	file, err := os.Open(opts.Schematic)
	assert.NoError(t, err)
	defer func() { _ = file.Close() }()
	schem, err := schematic.Decode(file)
	assert.NoError(t, err)
	assert.Equal(t, 1024, schem.Metadata.Words)

	assert.True(t, strings.Contains(dump.String(), "statements (7):"))
}

func TestExecuteWithSource_Formats(t *testing.T) {
	logger := log.NewTestLogger(t)
	p := New(logger)

	tests := []struct {
		name   string
		format string
		output string
		want   string
	}{
		{"explicit hex", format.Hex, "", "8005\na000\n"},
		{"hex from extension", "", "prog.hex", "8005\na000\n"},
		{"binary from extension", "", "prog.bin", "\x05\x80\x00\xa0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			opts := options.Program{Parameters: options.Parameters{Output: tt.output}}
			asmOpts := options.NewAssembler(opts)
			asmOpts.Format = tt.format

			_, err := p.ExecuteWithSource(context.Background(), "prog.as", "start: ldi r0 5\njmp start\n",
				opts, asmOpts, &buf)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestExecuteWithSource_Errors(t *testing.T) {
	logger := log.NewTestLogger(t)
	p := New(logger)
	asmOpts := options.NewAssembler(options.Program{})

	tests := []struct {
		name   string
		source string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "syntax error",
			source: "ldi r1 (5\n",
			check: func(t *testing.T, err error) {
				t.Helper()
				var target *parser.SyntaxError
				assert.True(t, errors.As(err, &target))
				assert.ErrorContains(t, err, "parsing")
			},
		},
		{
			name:   "duplicate label",
			source: "a:\na:\n",
			check: func(t *testing.T, err error) {
				t.Helper()
				var target *symbols.DuplicateSymbolError
				assert.True(t, errors.As(err, &target))
			},
		},
		{
			name:   "immediate out of range",
			source: "ldi r1 256\n",
			check: func(t *testing.T, err error) {
				t.Helper()
				var target *encoder.OperandRangeError
				assert.True(t, errors.As(err, &target))
				assert.ErrorContains(t, err, "encoding")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			_, err := p.ExecuteWithSource(context.Background(), "prog.as", tt.source, options.Program{}, asmOpts, &buf)
			tt.check(t, err)
			assert.Equal(t, 0, buf.Len())
		})
	}
}

func TestExecute(t *testing.T) {
	logger := log.NewTestLogger(t)
	p := New(logger)

	path := filepath.Join(t.TempDir(), "prog.as")
	assert.NoError(t, os.WriteFile(path, []byte(testSource), 0600))

	var buf bytes.Buffer
	opts := options.Program{Parameters: options.Parameters{Input: path}}
	result, err := p.Execute(context.Background(), opts, options.NewAssembler(opts), &buf)
	assert.NoError(t, err)
	assert.Len(t, result.Words, 4)

	opts.Input = filepath.Join(t.TempDir(), "missing.as")
	_, err = p.Execute(context.Background(), opts, options.NewAssembler(opts), &buf)
	assert.ErrorContains(t, err, "loading source")
}

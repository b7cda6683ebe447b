package app

import (
	"bytes"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
	"github.com/tpglitch/BatPU-2-SE/internal/options"
	"github.com/tpglitch/BatPU-2-SE/internal/parser"
	"github.com/tpglitch/BatPU-2-SE/internal/program"
	"github.com/tpglitch/BatPU-2-SE/internal/symbols"
)

func TestDump(t *testing.T) {
	statements, err := parser.ParseAll("prog.as", "start:\n  ldi r1 5\n  jmp start\n")
	assert.NoError(t, err)
	table, err := symbols.Build(statements, symbols.Options{})
	assert.NoError(t, err)

	var buf bytes.Buffer
	assert.NoError(t, Dump(&buf, statements, table.Export()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "statements (3):\n"))
	assert.True(t, strings.Contains(out, "prog.as:2:3"))
	assert.True(t, strings.Contains(out, "symbols (1):"))
	assert.True(t, strings.Contains(out, `"start"`))
}

func TestPrintInfo(t *testing.T) {
	logger := log.NewTestLogger(t)
	app := &program.Program{
		Words: []program.Word{{Address: 0, Width: 1, Value: 0x8005}},
		End:   1,
		Limit: 1024,
	}

	PrintInfo(logger, options.Program{Parameters: options.Parameters{Input: "prog.as"}}, app)
	PrintInfo(logger, options.Program{Flags: options.Flags{Quiet: true}}, app)
}

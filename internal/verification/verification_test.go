package verification

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
	"github.com/tpglitch/BatPU-2-SE/internal/format"
	"github.com/tpglitch/BatPU-2-SE/internal/options"
	"github.com/tpglitch/BatPU-2-SE/internal/program"
	"github.com/tpglitch/BatPU-2-SE/internal/schematic"
	"github.com/tpglitch/BatPU-2-SE/internal/writer"
)

// quietLogger discards all output, the mismatch tests expect error records
// that would fail a test logger.
func quietLogger() *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Output = io.Discard
	cfg.Level = log.DebugLevel
	return log.NewWithConfig(cfg)
}

func testProgram() *program.Program {
	words := []program.Word{
		{Address: 0, Width: 1, Value: 0x8005, Type: program.InstructionWord},
		{Address: 1, Width: 1, Value: 0x2123, Type: program.InstructionWord},
		{Address: 4, Width: 1, Value: 0xA000, Type: program.InstructionWord},
	}
	return &program.Program{
		Words:     words,
		End:       5,
		Limit:     1024,
		Checksums: program.Checksums{Words: program.Checksum(words)},
	}
}

func writeMachineCode(t *testing.T, app *program.Program) string {
	t.Helper()
	var buf bytes.Buffer
	assert.NoError(t, writer.New(app, &buf, writer.Options{}).WriteMachineCode())
	path := filepath.Join(t.TempDir(), "prog.mc")
	assert.NoError(t, os.WriteFile(path, buf.Bytes(), 0600))
	return path
}

func writeSchematic(t *testing.T, app *program.Program, opts schematic.Options) string {
	t.Helper()
	schem, err := schematic.Make(context.Background(), app.Words, opts)
	assert.NoError(t, err)

	var buf bytes.Buffer
	_, err = schem.WriteTo(&buf)
	assert.NoError(t, err)
	path := filepath.Join(t.TempDir(), "prog.schem")
	assert.NoError(t, os.WriteFile(path, buf.Bytes(), 0600))
	return path
}

func TestVerifyOutput(t *testing.T) {
	logger := log.NewTestLogger(t)
	app := testProgram()

	opts := options.Program{
		Parameters: options.Parameters{
			Output:    writeMachineCode(t, app),
			Schematic: writeSchematic(t, app, schematic.DefaultOptions()),
		},
	}
	assert.NoError(t, VerifyOutput(logger, opts, format.MachineCode, app))
}

func TestVerifyOutput_ConsoleOutput(t *testing.T) {
	logger := log.NewTestLogger(t)
	err := VerifyOutput(logger, options.Program{}, format.MachineCode, testProgram())
	assert.ErrorContains(t, err, "can not verify console output")

	opts := options.Program{Parameters: options.Parameters{Output: "prog.hex"}}
	err = VerifyOutput(logger, opts, format.Hex, testProgram())
	assert.ErrorContains(t, err, "can not verify console output")
}

func TestVerifySchematic(t *testing.T) {
	logger := log.NewTestLogger(t)
	app := testProgram()

	byteOpts := schematic.DefaultOptions()
	byteOpts.Unit = schematic.UnitByte
	byteOpts.ByteOrder = schematic.BigEndian
	byteOpts.Fill = false
	byteOpts.Columns = 2

	tests := []struct {
		name string
		opts schematic.Options
	}{
		{"default placement", schematic.DefaultOptions()},
		{"byte cells without fill", byteOpts},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSchematic(t, app, tt.opts)
			assert.NoError(t, VerifySchematic(logger, path, app))
		})
	}
}

func TestVerifySchematic_Mismatch(t *testing.T) {
	logger := quietLogger()
	app := testProgram()
	opts := schematic.DefaultOptions()
	opts.Fill = false
	path := writeSchematic(t, app, opts)

	changed := testProgram()
	changed.Words[1].Value = 0x2124
	err := VerifySchematic(logger, path, changed)
	assert.ErrorContains(t, err, "1 word mismatches")

	missing := testProgram()
	missing.Words = missing.Words[:2]
	err = VerifySchematic(logger, path, missing)
	assert.ErrorContains(t, err, "mismatched word counts")
}

func TestVerifyMachineCode_Mismatch(t *testing.T) {
	logger := quietLogger()
	path := writeMachineCode(t, testProgram())

	changed := testProgram()
	changed.Words[2].Value = 0xA001
	err := VerifyMachineCode(logger, path, changed)
	assert.ErrorContains(t, err, "1 word mismatches")
}

package detector

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
	"github.com/tpglitch/BatPU-2-SE/internal/format"
	"github.com/tpglitch/BatPU-2-SE/internal/options"
)

func TestDetect(t *testing.T) {
	logger := log.NewTestLogger(t)
	d := New(logger)

	tests := []struct {
		name       string
		formatOpt  string
		outputFile string
		wantFormat string
	}{
		{
			name:       "explicit hex format option",
			formatOpt:  format.Hex,
			outputFile: "program.mc",
			wantFormat: format.Hex,
		},
		{
			name:       "explicit binary format option",
			formatOpt:  format.Binary,
			outputFile: "",
			wantFormat: format.Binary,
		},
		{
			name:       "detect from .hex extension",
			outputFile: "program.hex",
			wantFormat: format.Hex,
		},
		{
			name:       "detect from .bin extension",
			outputFile: "program.bin",
			wantFormat: format.Binary,
		},
		{
			name:       "console output defaults to machine code",
			outputFile: "",
			wantFormat: format.MachineCode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := options.Assembler{Format: tt.formatOpt}
			got := d.Detect(opts, tt.outputFile)
			assert.Equal(t, tt.wantFormat, got)
		})
	}
}

func TestDetectFromFile(t *testing.T) {
	logger := log.NewTestLogger(t)
	d := New(logger)

	tests := []struct {
		name       string
		filename   string
		wantFormat string
	}{
		{".mc extension", "program.mc", format.MachineCode},
		{".HEX extension (uppercase)", "PROGRAM.HEX", format.Hex},
		{".bin extension", "out/program.bin", format.Binary},
		{"no extension", "program", format.MachineCode},
		{".txt extension", "program.txt", format.MachineCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.detectFromFile(tt.filename)
			assert.Equal(t, tt.wantFormat, got)
		})
	}
}

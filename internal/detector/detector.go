// Package detector handles program output format detection.
package detector

import (
	"path/filepath"
	"strings"

	"github.com/retroenv/retrogolib/log"
	"github.com/tpglitch/BatPU-2-SE/internal/format"
	"github.com/tpglitch/BatPU-2-SE/internal/options"
)

// Detector handles output format detection from file extensions and options.
type Detector struct {
	logger *log.Logger
}

// New creates a new format detector.
func New(logger *log.Logger) *Detector {
	return &Detector{
		logger: logger,
	}
}

// Detect determines the program output format from options or file auto-detection.
// It first checks if a format is explicitly specified in options, otherwise
// attempts to detect the format from the output filename extension.
func (d *Detector) Detect(opts options.Assembler, output string) string {
	if opts.Format != "" {
		return opts.Format
	}

	name := d.detectFromFile(output)
	d.logger.Debug("Auto-detected output format",
		log.String("format", name),
		log.String("file", output))
	return name
}

// detectFromFile determines the format based on file extension.
func (d *Detector) detectFromFile(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".hex":
		return format.Hex
	case ".bin":
		return format.Binary
	default:
		// console output and unknown extensions use the machine code text format
		return format.MachineCode
	}
}

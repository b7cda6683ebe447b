// Package fileprocessor handles file loading and processing operations
package fileprocessor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
	"github.com/tpglitch/BatPU-2-SE/internal/format"
	"github.com/tpglitch/BatPU-2-SE/internal/options"
	"github.com/tpglitch/BatPU-2-SE/internal/pipeline"
)

// SchematicExtension is the file extension of Sponge schematic files.
const SchematicExtension = ".schem"

// ProcessFile handles the complete file processing workflow
func ProcessFile(ctx context.Context, logger *log.Logger, opts options.Program, asmOptions options.Assembler) error {
	writer, err := createWriter(opts)
	if err != nil {
		return fmt.Errorf("creating writer: %w", err)
	}
	defer func() {
		if closer, ok := writer.(io.Closer); ok && writer != os.Stdout {
			_ = closer.Close()
		}
	}()

	p := pipeline.New(logger)
	if _, err := p.Execute(ctx, opts, asmOptions, writer); err != nil {
		return fmt.Errorf("assembling: %w", err)
	}
	return nil
}

// GetFilesToProcess returns list of files to process based on options
func GetFilesToProcess(opts *options.Program) ([]string, error) {
	if opts.Batch != "" {
		matches, err := filepath.Glob(opts.Batch)
		if err != nil {
			return nil, fmt.Errorf("globbing batch pattern: %w", err)
		}
		return matches, nil
	}
	return []string{opts.Input}, nil
}

// GenerateOutputFilename generates the program output filename for a given
// input file and output format.
func GenerateOutputFilename(inputFile, outputFormat string) string {
	if outputFormat == "" {
		outputFormat = format.MachineCode
	}
	return replaceExtension(inputFile, format.Extension(outputFormat))
}

// GenerateSchematicFilename generates the schematic filename for a given input file.
func GenerateSchematicFilename(inputFile string) string {
	return replaceExtension(inputFile, SchematicExtension)
}

// GenerateSymbolsFilename generates the symbol listing filename for a given input file.
func GenerateSymbolsFilename(inputFile string) string {
	return replaceExtension(inputFile, ".sym")
}

func replaceExtension(path, ext string) string {
	current := filepath.Ext(path)
	return path[:len(path)-len(current)] + ext
}

func createWriter(opts options.Program) (io.Writer, error) {
	if opts.Output == "" {
		return os.Stdout, nil
	}

	file, err := os.Create(opts.Output)
	if err != nil {
		return nil, fmt.Errorf("creating output file %s: %w", opts.Output, err)
	}
	return file, nil
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	logger.Info("batpu", log.String("version", buildinfo.Version(version, commit, date)))
	if date != "" && !strings.Contains(date, "unknown") {
		logger.Debug("Build", log.String("date", date))
	}
}

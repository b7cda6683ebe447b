// Package verification verifies that the written output files recreate the assembled program.
package verification

import (
	"errors"
	"fmt"
	"os"

	"github.com/retroenv/retrogolib/log"
	"github.com/tpglitch/BatPU-2-SE/internal/format"
	"github.com/tpglitch/BatPU-2-SE/internal/loader"
	"github.com/tpglitch/BatPU-2-SE/internal/options"
	"github.com/tpglitch/BatPU-2-SE/internal/program"
	"github.com/tpglitch/BatPU-2-SE/internal/schematic"
)

// maxLoggedMismatches limits the number of logged word mismatches.
const maxLoggedMismatches = 10

// VerifyOutput verifies that the written machine code and schematic files
// decode to the words of the assembled program.
func VerifyOutput(logger *log.Logger, opts options.Program, outputFormat string, app *program.Program) error {
	verifyProgram := opts.Output != "" && outputFormat == format.MachineCode
	if !verifyProgram && opts.Schematic == "" {
		return errors.New("can not verify console output, a machine code or schematic output file is required")
	}

	if verifyProgram {
		if err := VerifyMachineCode(logger, opts.Output, app); err != nil {
			return fmt.Errorf("verifying program file: %w", err)
		}
	}
	if opts.Schematic != "" {
		if err := VerifySchematic(logger, opts.Schematic, app); err != nil {
			return fmt.Errorf("verifying schematic file: %w", err)
		}
	}
	return nil
}

// VerifyMachineCode reads back a machine code file and compares it with the
// program image.
func VerifyMachineCode(logger *log.Logger, path string, app *program.Program) error {
	words, err := loader.New().LoadMachineCode(path)
	if err != nil {
		return fmt.Errorf("loading machine code: %w", err)
	}

	expected := program.Fill(app.Words, app.LastUsedAddress())
	return checkWordsEqual(logger, expected, words)
}

// VerifySchematic decodes a schematic file, recovers the placed words using
// the stored placement and compares them with the program words.
func VerifySchematic(logger *log.Logger, path string, app *program.Program) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening schematic file: %w", err)
	}
	defer func() { _ = file.Close() }()

	schem, err := schematic.Decode(file)
	if err != nil {
		return fmt.Errorf("decoding schematic: %w", err)
	}
	words, err := schem.Words()
	if err != nil {
		return fmt.Errorf("recovering words: %w", err)
	}

	placement := schem.Metadata.Placement
	expected := app.Words
	if placement.Fill {
		expected = program.Fill(app.Words, placement.Limit)
	}

	if err := checkWordsEqual(logger, expected, words); err != nil {
		return err
	}

	checksum := program.Checksum(expected)
	if schem.Metadata.Checksum != checksum {
		return fmt.Errorf("checksum mismatch, expected %08x but got %08x", checksum, schem.Metadata.Checksum)
	}
	return nil
}

func checkWordsEqual(logger *log.Logger, expected, got []program.Word) error {
	if len(expected) != len(got) {
		return fmt.Errorf("mismatched word counts, %d != %d", len(expected), len(got))
	}

	var diffs uint64
	for i := range expected {
		if expected[i].Address == got[i].Address && expected[i].Value == got[i].Value {
			continue
		}

		diffs++
		if diffs <= maxLoggedMismatches {
			logger.Error("Word mismatch",
				log.Int("address", expected[i].Address),
				log.Int("got_address", got[i].Address),
				log.Hex("expected", expected[i].Value),
				log.Hex("got", got[i].Value))
		}
	}
	if diffs == 0 {
		return nil
	}
	return fmt.Errorf("%d word mismatches", diffs)
}

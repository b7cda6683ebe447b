// Package main implements a converter of BatPU-2 machine code files to schematics
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
	"github.com/tpglitch/BatPU-2-SE/internal/config"
	"github.com/tpglitch/BatPU-2-SE/internal/fileprocessor"
	"github.com/tpglitch/BatPU-2-SE/internal/loader"
	"github.com/tpglitch/BatPU-2-SE/internal/options"
	"github.com/tpglitch/BatPU-2-SE/internal/program"
	"github.com/tpglitch/BatPU-2-SE/internal/schematic"
	"github.com/tpglitch/BatPU-2-SE/internal/verification"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

type optionFlags struct {
	input  string
	output string
	config string

	verify bool
	quiet  bool

	schematic options.SchematicFlags
	explicit  set.Set[string]
}

func main() {
	opts := readArguments()

	if !opts.quiet {
		printBanner()
	}

	logger := config.CreateLogger(false, opts.quiet)
	if err := convertFile(logger, opts); err != nil {
		fmt.Println(fmt.Errorf("converting failed: %w", err))
		os.Exit(1)
	}
}

func readArguments() optionFlags {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	opts := optionFlags{}

	flags.StringVar(&opts.output, "o", "", "name of the output .schem file, defaults to the input name with .schem extension")
	flags.StringVar(&opts.config, "c", "", "CUE config file with schematic settings")
	flags.BoolVar(&opts.verify, "verify", false, "verify the generated schematic by decoding it and comparing it to the input")
	flags.BoolVar(&opts.quiet, "q", false, "perform operations quietly")
	flags.StringVar(&opts.schematic.Unit, "unit", "bit", "schematic cell unit (bit/byte)")
	flags.StringVar(&opts.schematic.ByteOrder, "byteorder", "little", "byte order of words in the schematic (little/big)")
	flags.IntVar(&opts.schematic.Columns, "columns", 32, "number of words per schematic row")
	flags.IntVar(&opts.schematic.PaletteCap, "cap", 0, "maximum number of schematic palette entries, 0 for no limit")
	flags.BoolVar(&opts.schematic.NoFill, "nofill", false, "do not pad unused program memory with zero words")

	err := flags.Parse(os.Args[1:])
	args := flags.Args()

	if err != nil || len(args) == 0 {
		printBanner()
		fmt.Printf("usage: mcschem [options] <machine code file>\n\n")
		flags.PrintDefaults()
		os.Exit(1)
	}
	opts.input = args[0]
	if opts.output == "" {
		opts.output = fileprocessor.GenerateSchematicFilename(opts.input)
	}

	opts.explicit = set.New[string]()
	flags.Visit(func(f *flag.Flag) {
		opts.explicit.Add(f.Name)
	})
	return opts
}

func printBanner() {
	fmt.Println("[----------------------------------------------]")
	fmt.Println("[ mcschem - BatPU-2 machine code to schematic  ]")
	fmt.Printf("[----------------------------------------------]\n\n")
	fmt.Printf("version: %s\n\n", buildinfo.Version(version, commit, date))
}

func convertFile(logger *log.Logger, opts optionFlags) error {
	asmOptions := options.NewAssembler(options.Program{SchematicFlags: opts.schematic})
	if opts.config != "" {
		file, err := config.Load(opts.config)
		if err != nil {
			return err
		}
		file.Apply(&asmOptions, opts.explicit)
	}

	words, err := loader.New().LoadMachineCode(opts.input)
	if err != nil {
		return fmt.Errorf("loading machine code: %w", err)
	}

	schem, err := schematic.Make(app.Context(), words, asmOptions.Schematic)
	if err != nil {
		return fmt.Errorf("generating schematic: %w", err)
	}

	outputFile, err := os.Create(opts.output)
	if err != nil {
		return fmt.Errorf("creating file '%s': %w", opts.output, err)
	}
	if _, err = schem.WriteTo(outputFile); err != nil {
		_ = outputFile.Close()
		return fmt.Errorf("writing schematic: %w", err)
	}
	if err = outputFile.Close(); err != nil {
		return fmt.Errorf("closing file: %w", err)
	}

	logger.Info("Schematic written",
		log.String("file", opts.output),
		log.Int("words", len(words)),
		log.Int("palette", len(schem.Palette)))

	if opts.verify {
		if err = verification.VerifySchematic(logger, opts.output, &program.Program{Words: words}); err != nil {
			return err
		}
		logger.Info("Schematic matched input file")
	}
	return nil
}

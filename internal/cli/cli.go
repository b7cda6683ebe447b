// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/retroenv/retrogolib/set"
	"github.com/tpglitch/BatPU-2-SE/internal/config"
	"github.com/tpglitch/BatPU-2-SE/internal/format"
	"github.com/tpglitch/BatPU-2-SE/internal/options"
)

// ParseFlags parses command line flags and returns program and assembler options
func ParseFlags() (options.Program, options.Assembler, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || (len(args) == 0 && opts.Batch == "" && opts.Input == "") {
		return opts, options.Assembler{}, &UsageError{flags: flags}
	}

	if err := validateArgs(flags, args); err != nil {
		return opts, options.Assembler{}, err
	}

	if err := normalizeOptions(&opts); err != nil {
		return opts, options.Assembler{}, err
	}

	if opts.Batch == "" && len(args) > 0 {
		opts.Input = args[0]
	}

	asmOptions := options.NewAssembler(opts)
	if opts.Config != "" {
		file, err := config.Load(opts.Config)
		if err != nil {
			return opts, options.Assembler{}, err
		}
		file.Apply(&asmOptions, explicitFlags(flags))
	}

	return opts, asmOptions, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: batpu [options] <file to assemble>\n\n")
	e.flags.PrintDefaults()
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(flags *flag.FlagSet, args []string) error {
	for i, arg := range args {
		if i > 0 && arg[0] == '-' {
			return &UsageError{
				flags: flags,
				msg:   fmt.Sprintf("Potential argument %s found after file to assemble, please pass the file to assemble as last argument", arg),
			}
		}
	}
	return nil
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program) error {
	if opts.Format == "" {
		return nil
	}
	name, err := format.Normalize(opts.Format)
	if err != nil {
		return err
	}
	opts.Format = name
	return nil
}

// explicitFlags returns the names of all flags that were passed on the
// command line.
func explicitFlags(flags *flag.FlagSet) set.Set[string] {
	explicit := set.New[string]()
	flags.Visit(func(f *flag.Flag) {
		explicit.Add(f.Name)
	})
	return explicit
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Input, "i", "", "name of the input assembly file")
	flags.StringVar(&opts.Output, "o", "", "name of the output program file, printed on console if no name given")
	flags.StringVar(&opts.Schematic, "schem", "", "name of the output .schem schematic file")
	flags.StringVar(&opts.Symbols, "sym", "", "name of the output symbol listing file")
	flags.StringVar(&opts.Config, "c", "", "CUE config file with assembler and schematic settings")
	flags.StringVar(&opts.Batch, "batch", "", "process a batch of given path and file mask and automatically name the outputs, for example *.as")
	flags.StringVar(&opts.Format, "f", "", "program output format (mc/hex/bin), detected from the output file extension if not set")
	flags.IntVar(&opts.Workers, "workers", 0, "number of parallel workers, defaults to the CPU count")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
	flags.BoolVar(&opts.Verify, "verify", false, "verify the written outputs by decoding them and comparing them to the program")
	flags.BoolVar(&opts.Dump, "dump", false, "print the parsed statements and the symbol table")

	flags.IntVar(&opts.Origin, "origin", 0, "start address of the program")
	flags.StringVar(&opts.Unit, "unit", "bit", "schematic cell unit (bit/byte)")
	flags.StringVar(&opts.ByteOrder, "byteorder", "little", "byte order of words in schematics and binary output (little/big)")
	flags.IntVar(&opts.Columns, "columns", 32, "number of words per schematic row")
	flags.IntVar(&opts.PaletteCap, "cap", 0, "maximum number of schematic palette entries, 0 for no limit")
	flags.BoolVar(&opts.NoFill, "nofill", false, "do not pad unused program memory with zero words in schematics")
}

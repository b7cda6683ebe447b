// Package loader handles source and machine code file loading operations.
package loader

import (
	"bytes"
	"fmt"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/tpglitch/BatPU-2-SE/internal/program"
)

// NotTextError is returned for input files that are not plain text.
type NotTextError struct {
	Path     string
	MimeType string
}

func (e *NotTextError) Error() string {
	return fmt.Sprintf("file %s is not a text file but %s", e.Path, e.MimeType)
}

// Loader handles loading input files from disk.
type Loader struct{}

// New creates a new file loader.
func New() *Loader {
	return &Loader{}
}

// Load reads an assembly source file. Files that are not detected as plain
// text, like a binary passed by accident, are rejected.
func (l *Loader) Load(path string) (string, error) {
	content, err := l.read(path)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// LoadMachineCode reads a BatPU machine code file containing one 16 digit
// binary word per line.
func (l *Loader) LoadMachineCode(path string) ([]program.Word, error) {
	content, err := l.read(path)
	if err != nil {
		return nil, err
	}

	words, err := program.ReadMachineCode(path, bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parsing machine code: %w", err)
	}
	return words, nil
}

func (l *Loader) read(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	if len(content) == 0 {
		return content, nil
	}

	mtype := mimetype.Detect(content)
	for t := mtype; t != nil; t = t.Parent() {
		if t.Is("text/plain") {
			return content, nil
		}
	}
	return nil, &NotTextError{Path: path, MimeType: mtype.String()}
}

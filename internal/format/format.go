// Package format defines the available program output formats.
package format

import (
	"fmt"
	"strings"
)

const (
	MachineCode = "mc"  // one 16 digit binary word per line
	Hex         = "hex" // one 4 digit hex word per line
	Binary      = "bin" // 2 bytes per word in the configured byte order
)

// Names contains all supported format names.
var Names = []string{MachineCode, Hex, Binary}

// Extension returns the file extension including the dot for the format.
func Extension(name string) string {
	return "." + name
}

// Normalize returns the lower case format name and an error for unsupported
// formats.
func Normalize(name string) (string, error) {
	name = strings.ToLower(name)
	for _, valid := range Names {
		if name == valid {
			return name, nil
		}
	}
	return "", fmt.Errorf("unsupported format '%s', valid options: %s", name, strings.Join(Names, ", "))
}

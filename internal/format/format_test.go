package format

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "mc", want: MachineCode},
		{input: "HEX", want: Hex},
		{input: "Bin", want: Binary},
		{input: "asm", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if tt.wantErr {
				assert.ErrorContains(t, err, "unsupported format")
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".mc", Extension(MachineCode))
	assert.Equal(t, ".bin", Extension(Binary))
}

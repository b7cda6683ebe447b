package encoder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/tpglitch/BatPU-2-SE/internal/parser"
	"github.com/tpglitch/BatPU-2-SE/internal/program"
	"github.com/tpglitch/BatPU-2-SE/internal/symbols"
)

func assemble(t *testing.T, src string, workers int) ([]program.Word, *symbols.Table, error) {
	t.Helper()
	statements, err := parser.ParseAll("test.as", src)
	assert.NoError(t, err)
	table, err := symbols.Build(statements, symbols.Options{})
	assert.NoError(t, err)
	words, err := Assemble(context.Background(), statements, table, Options{Workers: workers})
	return words, table, err
}

func TestEncodeInstructions(t *testing.T) {
	tests := []struct {
		src      string
		expected uint16
	}{
		{"nop", 0x0000},
		{"hlt", 0x1000},
		{"add r1 r2 r3", 0x2123},
		{"sub r4, r5, r6", 0x3456},
		{"nor r1 r0 r2", 0x4102},
		{"rsh r1 r2", 0x7102},
		{"ldi r1 5", 0x8105},
		{"ldi r1 255", 0x81FF},
		{"ldi r1 -128", 0x8180},
		{"adi r2 -1", 0x92FF},
		{"jmp 513", 0xA201},
		{"brh ne 3", 0xB403},
		{"brh >= 3", 0xB803},
		{"cal 7", 0xC007},
		{"ret", 0xD000},
		{"lod r1 r2", 0xE120},
		{"lod r1 r2 -1", 0xE12F},
		{"str r3 r4 7", 0xF347},
		{"ldi r1 'a'", 0x8101},
		{"ldi r1 pixel_x", 0x81F0},
		{"ldi r1 (1 << 4 | 2)", 0x8112},
		{"cmp r1 r2", 0x3120},
		{"mov r1 r2", 0x2102},
		{"lsh r1 r2", 0x2112},
		{"inc r3", 0x9301},
		{"dec r3", 0x93FF},
		{"not r1 r2", 0x4102},
		{"neg r1 r2", 0x3012},
	}

	for _, test := range tests {
		t.Run(test.src, func(t *testing.T) {
			words, _, err := assemble(t, test.src, 1)
			assert.NoError(t, err)
			assert.Len(t, words, 1)
			assert.Equal(t, test.expected, words[0].Value)
			assert.True(t, words[0].IsType(program.InstructionWord))
		})
	}
}

func TestForwardReference(t *testing.T) {
	src := `
	jmp end
	nop
end:
	hlt
`
	words, table, err := assemble(t, src, 2)
	assert.NoError(t, err)
	assert.Len(t, words, 3)

	end, ok := table.Get("end")
	assert.True(t, ok)
	assert.Equal(t, 2, end.Value)
	assert.Equal(t, uint16(0xA002), words[0].Value)
	assert.True(t, words[2].IsType(program.LabelTarget))
	assert.False(t, words[1].IsType(program.LabelTarget))
}

func TestEndToEnd(t *testing.T) {
	src := `
start: LDI R0, 5
       JMP start
`
	words, table, err := assemble(t, src, 0)
	assert.NoError(t, err)

	exported := table.Export()
	assert.Len(t, exported, 1)
	assert.Equal(t, "start", exported[0].Name)
	assert.Equal(t, 0, exported[0].Value)

	assert.Len(t, words, 2)
	assert.Equal(t, 0, words[0].Address)
	assert.Equal(t, words[0].Width, words[1].Address)
	assert.Equal(t, uint16(0x8005), words[0].Value)
	assert.Equal(t, uint16(0xA000), words[1].Value)
}

func TestDataWords(t *testing.T) {
	src := `
define base 0x100
	dw 1, -1, 0xffff
	dw base, (base + 2)
`
	words, _, err := assemble(t, src, 1)
	assert.NoError(t, err)
	assert.Len(t, words, 5)

	expected := []uint16{1, 0xFFFF, 0xFFFF, 0x100, 0x102}
	for i, word := range words {
		assert.Equal(t, i, word.Address)
		assert.Equal(t, expected[i], word.Value)
		assert.True(t, word.IsType(program.DataWord))
	}
}

func TestAddressMonotonicity(t *testing.T) {
	src := `
	nop
	org 8
	hlt
	align 4
	reserve 2
	dw 1 2
	align 16
	ret
`
	words, _, err := assemble(t, src, 4)
	assert.NoError(t, err)

	addresses := make([]int, 0, len(words))
	for _, word := range words {
		addresses = append(addresses, word.Address)
	}
	assert.Equal(t, []int{0, 8, 14, 15, 16}, addresses)
}

func TestEncodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		check func(t *testing.T, err error)
	}{
		{
			name: "immediate out of range",
			src:  "ldi r1 300",
			check: func(t *testing.T, err error) {
				t.Helper()
				var rangeErr *OperandRangeError
				assert.True(t, errors.As(err, &rangeErr))
				assert.Equal(t, 300, rangeErr.Value)
				assert.Equal(t, 255, rangeErr.Max)
				assert.Equal(t, "immediate", rangeErr.Field)
			},
		},
		{
			name: "negative address",
			src:  "jmp -1",
			check: func(t *testing.T, err error) {
				t.Helper()
				var rangeErr *OperandRangeError
				assert.True(t, errors.As(err, &rangeErr))
				assert.Equal(t, "address", rangeErr.Field)
			},
		},
		{
			name: "offset out of range",
			src:  "lod r1 r2 8",
			check: func(t *testing.T, err error) {
				t.Helper()
				var rangeErr *OperandRangeError
				assert.True(t, errors.As(err, &rangeErr))
				assert.Equal(t, -8, rangeErr.Min)
			},
		},
		{
			name: "unknown mnemonic",
			src:  "nop\nfoo r1",
			check: func(t *testing.T, err error) {
				t.Helper()
				var mnemonicErr *UnknownMnemonicError
				assert.True(t, errors.As(err, &mnemonicErr))
				assert.Equal(t, "foo", mnemonicErr.Mnemonic)
				assert.Equal(t, 2, mnemonicErr.Pos.Line)
			},
		},
		{
			name: "missing operand",
			src:  "add r1 r2",
			check: func(t *testing.T, err error) {
				t.Helper()
				var arityErr *ArityError
				assert.True(t, errors.As(err, &arityErr))
				assert.Equal(t, 3, arityErr.Min)
				assert.Equal(t, 2, arityErr.Got)
			},
		},
		{
			name: "number as register",
			src:  "add r1 r2 5",
			check: func(t *testing.T, err error) {
				t.Helper()
				var kindErr *OperandKindError
				assert.True(t, errors.As(err, &kindErr))
				assert.Equal(t, parser.ImmediateOperand, kindErr.Kind)
			},
		},
		{
			name: "register as immediate",
			src:  "ldi r1 r2",
			check: func(t *testing.T, err error) {
				t.Helper()
				var kindErr *OperandKindError
				assert.True(t, errors.As(err, &kindErr))
				assert.Equal(t, parser.RegisterOperand, kindErr.Kind)
			},
		},
		{
			name: "undefined symbol",
			src:  "jmp nowhere",
			check: func(t *testing.T, err error) {
				t.Helper()
				var undefinedErr *symbols.UndefinedSymbolError
				assert.True(t, errors.As(err, &undefinedErr))
				assert.Equal(t, "nowhere", undefinedErr.Name)
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, _, err := assemble(t, test.src, 1)
			assert.Error(t, err)
			test.check(t, err)
		})
	}
}

func TestFirstErrorIsReported(t *testing.T) {
	var builder strings.Builder
	for range 100 {
		builder.WriteString("nop\n")
	}
	builder.WriteString("ldi r1 300\n")
	for range 100 {
		builder.WriteString("nop\n")
	}
	builder.WriteString("ldi r1 400\n")

	for _, workers := range []int{1, 3, 16} {
		_, _, err := assemble(t, builder.String(), workers)
		var rangeErr *OperandRangeError
		assert.True(t, errors.As(err, &rangeErr))
		assert.Equal(t, 300, rangeErr.Value)
		assert.Equal(t, 101, rangeErr.Pos.Line)
	}
}

func TestDeterminism(t *testing.T) {
	var builder strings.Builder
	builder.WriteString("define step 3\nloop:\n")
	for i := range 200 {
		fmt.Fprintf(&builder, "ldi r%d %d\n", i%16, i)
		fmt.Fprintf(&builder, "adi r%d step\n", i%16)
	}
	builder.WriteString("brh ne loop\nhlt\n")

	reference, _, err := assemble(t, builder.String(), 1)
	assert.NoError(t, err)
	assert.Len(t, reference, 402)

	for _, workers := range []int{2, 8, 64} {
		words, _, err := assemble(t, builder.String(), workers)
		assert.NoError(t, err)
		assert.Equal(t, reference, words)
	}
}

func TestAddressDrift(t *testing.T) {
	statements, err := parser.ParseAll("test.as", "nop\nnop")
	assert.NoError(t, err)
	table, err := symbols.Build(statements, symbols.Options{})
	assert.NoError(t, err)

	// encode a different statement list than the table was built from
	statements = append(statements, statements[0])
	_, err = Assemble(context.Background(), statements, table, Options{})
	var driftErr *AddressDriftError
	assert.True(t, errors.As(err, &driftErr))
	assert.Equal(t, 2, driftErr.Index)
}

func TestCanceledContext(t *testing.T) {
	statements, err := parser.ParseAll("test.as", "nop\nhlt")
	assert.NoError(t, err)
	table, err := symbols.Build(statements, symbols.Options{})
	assert.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Assemble(ctx, statements, table, Options{Workers: 1})
	assert.True(t, errors.Is(err, context.Canceled))
}

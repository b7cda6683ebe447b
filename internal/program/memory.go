package program

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tpglitch/BatPU-2-SE/internal/parser"
)

// Image returns a dense memory image of the given size, unused addresses are zero.
func (p *Program) Image(size int) []uint16 {
	image := make([]uint16, size)
	for _, word := range p.Words {
		if word.Address >= 0 && word.Address < size {
			image[word.Address] = word.Value
		}
	}
	return image
}

// LastUsedAddress returns the address following the last emitted word.
func (p *Program) LastUsedAddress() int {
	if len(p.Words) == 0 {
		return 0
	}
	last := p.Words[len(p.Words)-1]
	return last.Address + last.Width
}

// Filled returns the words of the program with all unused addresses up to the
// limit padded with zero words. The program itself is not modified.
func (p *Program) Filled() []Word {
	return Fill(p.Words, p.Limit)
}

// Fill returns the address ordered words with all unused addresses up to the
// limit padded with zero words.
func Fill(words []Word, limit int) []Word {
	filled := make([]Word, 0, max(limit, len(words)))
	next := 0
	for _, word := range words {
		for ; next < word.Address; next++ {
			filled = append(filled, Word{Address: next, Width: 1, Type: FillWord})
		}
		filled = append(filled, word)
		next = word.Address + word.Width
	}
	for ; next < limit; next++ {
		filled = append(filled, Word{Address: next, Width: 1, Type: FillWord})
	}
	return filled
}

// ReadMachineCode reads a BatPU machine code file containing one 16 character
// binary word per line, the line number defines the address. Empty lines are skipped.
func ReadMachineCode(name string, reader io.Reader) ([]Word, error) {
	var words []Word
	scanner := bufio.NewScanner(reader)
	line := 0

	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		pos := parser.Pos{File: name, Line: line, Column: 1}
		if len(text) != 16 {
			return nil, &parser.SyntaxError{Pos: pos, Cause: fmt.Sprintf("expected 16 binary digits, got %d characters", len(text))}
		}
		value, err := strconv.ParseUint(text, 2, 16)
		if err != nil {
			return nil, &parser.SyntaxError{Pos: pos, Cause: fmt.Sprintf("invalid binary word '%s'", text)}
		}

		words = append(words, Word{
			Address: len(words),
			Width:   1,
			Value:   uint16(value),
			Type:    DataWord,
			Pos:     pos,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading machine code: %w", err)
	}
	return words, nil
}

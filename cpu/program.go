package cpu

import (
	"fmt"
	"io"
	"iter"
	"strings"
)

// Line is one line of assembled source and the bytes it produced.
type Line struct {
	LineNo  int      // Source line number, 1 based.
	Address int      // Address of the first byte.
	Words   []string // Source words, labels removed.
	Bytes   []byte   // Assembled bytes.
}

// Program is an assembled listing.
type Program struct {
	Lines []Line
}

// Debug locates an address within a Program.
type Debug struct {
	*Line
	Index int // Offset of the address within Line.Bytes.
}

// Debug returns the line that assembled the byte at addr.
// dbg.Line is nil if no line covers addr.
func (prog *Program) Debug(addr int) (dbg Debug) {
	for n, line := range prog.Lines {
		if addr >= line.Address && addr < line.Address+len(line.Bytes) {
			dbg = Debug{
				Line:  &prog.Lines[n],
				Index: addr - line.Address,
			}
			break
		}
	}

	return
}

// Bytes iterates over every assembled byte and its address.
func (prog *Program) Bytes() iter.Seq2[int, byte] {
	return func(yield func(addr int, value byte) bool) {
		for _, line := range prog.Lines {
			for n, value := range line.Bytes {
				if !yield(line.Address+n, value) {
					return
				}
			}
		}
	}
}

// Binary returns the memory image of the program, starting at address 0.
func (prog *Program) Binary() (image []byte) {
	for addr, value := range prog.Bytes() {
		if addr >= len(image) {
			image = append(image, make([]byte, addr+1-len(image))...)
		}
		image[addr] = value
	}

	return
}

// WriteImage writes the program in the one-byte-per-line binary format,
// with the source of each line as a comment on its first byte.
func (prog *Program) WriteImage(w io.Writer) (err error) {
	for _, line := range prog.Lines {
		for n, value := range line.Bytes {
			text := fmt.Sprintf("%08b", value)
			if n == 0 && len(line.Words) > 0 && !isBinaryWord(line.Words[0]) {
				text += " # " + strings.Join(line.Words, " ")
			}
			_, err = fmt.Fprintln(w, text)
			if err != nil {
				return
			}
		}
	}

	return
}

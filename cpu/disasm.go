package cpu

import (
	"fmt"
	"iter"
	"strings"
)

// Size returns the bytes the instruction occupies.
// Bytes that are not valid opcodes are listed as single data bytes.
func (instr Instruction) Size() int {
	if !instr.Opcode.Valid() {
		return 1
	}
	return 1 + instr.Argc
}

// Listing returns a disassembly line: address, raw bytes, and source form.
func (instr Instruction) Listing() string {
	raw := []string{fmt.Sprintf("%02X", uint8(instr.Opcode))}
	for n := range instr.Size() - 1 {
		raw = append(raw, fmt.Sprintf("%02X", instr.Args[n]))
	}

	text := instr.String()
	if !instr.Opcode.Valid() {
		text = fmt.Sprintf("DB 0x%02x", uint8(instr.Opcode))
	}

	return fmt.Sprintf("%02X: %-8s  %v", instr.Pc, strings.Join(raw, " "), text)
}

// Disassemble iterates over the instructions of a memory image.
// Operands past the end of the image read as zero.
func Disassemble(image []byte) iter.Seq[Instruction] {
	return func(yield func(instr Instruction) bool) {
		for pc := 0; pc < len(image); {
			instr := Instruction{
				Decoded: Opcode(image[pc]).Decode(),
				Pc:      pc,
			}
			for n := range instr.Size() - 1 {
				if pc+1+n < len(image) {
					instr.Args[n] = image[pc+1+n]
				}
			}
			if !yield(instr) {
				return
			}
			pc += instr.Size()
		}
	}
}

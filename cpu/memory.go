package cpu

import (
	"errors"
)

const (
	MEMORY_SIZE    = 256  // Addressable bytes.
	REGISTER_COUNT = 8    // General purpose registers.
	REG_SP         = 7    // Register reserved as the stack pointer.
	SP_INIT        = 0xf4 // Initial stack pointer, below the top of memory.
)

// Memory is the system's memory bank.
type Memory [MEMORY_SIZE]byte

// Read returns the byte at addr.
func (m *Memory) Read(addr int) (value byte, err error) {
	if addr < 0 || addr >= len(m) {
		err = ErrOutOfRange
		return
	}

	value = m[addr]
	return
}

// Write stores the low 8 bits of value at addr.
func (m *Memory) Write(addr int, value int) (err error) {
	if addr < 0 || addr >= len(m) {
		err = ErrOutOfRange
		return
	}

	m[addr] = byte(value)
	return
}

// Load clears memory, then writes image starting at address 0.
// Memory is left untouched if the image does not fit.
func (m *Memory) Load(image []byte) (err error) {
	if len(image) > len(m) {
		err = errors.Join(ErrLoad, ErrOutOfRange)
		return
	}

	clear(m[:])
	copy(m[:], image)

	return
}

// Registers is the general purpose register file.
type Registers [REGISTER_COUNT]byte

// Read returns the value of register index.
func (r *Registers) Read(index int) (value byte, err error) {
	if index < 0 || index >= len(r) {
		err = ErrOutOfRange
		return
	}

	value = r[index]
	return
}

// Write stores the low 8 bits of value in register index.
func (r *Registers) Write(index int, value int) (err error) {
	if index < 0 || index >= len(r) {
		err = ErrOutOfRange
		return
	}

	r[index] = byte(value)
	return
}

// Flags is the condition code register. Only CMP sets it.
type Flags uint8

const (
	FL_E    = Flags(1 << 0) // Equal
	FL_G    = Flags(1 << 1) // Greater
	FL_L    = Flags(1 << 2) // Less
	FL_MASK = FL_E | FL_G | FL_L
)

// compareFlags returns the flags for a comparison of a against b.
func compareFlags(a, b byte) Flags {
	switch {
	case a == b:
		return FL_E
	case a < b:
		return FL_L
	default:
		return FL_G
	}
}

// String returns the set flags as letters, '-' for clear.
func (fl Flags) String() string {
	out := []byte("---")
	if fl&FL_L != 0 {
		out[0] = 'L'
	}
	if fl&FL_G != 0 {
		out[1] = 'G'
	}
	if fl&FL_E != 0 {
		out[2] = 'E'
	}
	return string(out)
}
